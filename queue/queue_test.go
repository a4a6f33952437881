package queue

import (
	"context"
	"testing"
	"time"

	"github.com/pbanos/grove/tree"
)

func TestMemQueueOrder(t *testing.T) {
	ctx := context.Background()
	q := New()
	defer q.Stop(ctx)
	for i := 0; i < 5; i++ {
		err := q.Push(ctx, &Task{Index: i, Seed: int64(i * 10), Builder: tree.Builder{FeaturesPerSplit: 1, MaxDepth: 5}})
		if err != nil {
			t.Fatalf("Push returned error: %v", err)
		}
	}
	for i := 0; i < 5; i++ {
		task, tctx, cancel, err := q.Pull(ctx)
		if err != nil {
			t.Fatalf("Pull returned error: %v", err)
		}
		if task == nil || task.Index != i || task.ID() != string(rune('0'+i)) {
			t.Fatalf("expected task %d, got %v", i, task)
		}
		if tctx == nil || cancel == nil {
			t.Fatalf("expected task context and cancel function")
		}
		cancel()
		if i < 3 {
			if err = q.Complete(ctx, task.ID()); err != nil {
				t.Fatalf("Complete returned error: %v", err)
			}
		}
	}
	task, _, _, err := q.Pull(ctx)
	if task != nil || err != nil {
		t.Errorf("expected nothing to pull, got %v %v", task, err)
	}
	pending, running, err := q.Count(ctx)
	if err != nil || pending != 0 || running != 2 {
		t.Errorf("expected 0 pending and 2 running tasks, got %d %d %v", pending, running, err)
	}
}

func TestMemQueueDrop(t *testing.T) {
	ctx := context.Background()
	q := New()
	defer q.Stop(ctx)
	q.Push(ctx, &Task{Index: 0})
	q.Push(ctx, &Task{Index: 1})
	task, _, cancel, _ := q.Pull(ctx)
	cancel()
	if err := q.Drop(ctx, task.ID()); err != nil {
		t.Fatalf("Drop returned error: %v", err)
	}
	q.Push(ctx, &Task{Index: 2})
	var order []int
	for {
		task, _, cancel, err := q.Pull(ctx)
		if err != nil {
			t.Fatalf("Pull returned error: %v", err)
		}
		if task == nil {
			break
		}
		cancel()
		order = append(order, task.Index)
		q.Complete(ctx, task.ID())
	}
	if len(order) != 3 || order[0] != 1 || order[1] != 0 || order[2] != 2 {
		t.Errorf("expected tasks 1, 0 and 2, got %v", order)
	}
	if err := WaitFor(ctx, q, time.Millisecond); err != nil {
		t.Errorf("WaitFor returned error: %v", err)
	}
}

func TestWaitForCancelled(t *testing.T) {
	q := New()
	q.Push(context.Background(), &Task{Index: 0})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := WaitFor(ctx, q, time.Millisecond); err == nil {
		t.Errorf("expected WaitFor to fail with a pending task")
	}
}

func TestStopCancelsPulledTasks(t *testing.T) {
	ctx := context.Background()
	q := New()
	q.Push(ctx, &Task{Index: 0})
	_, tctx, cancel, err := q.Pull(ctx)
	if err != nil {
		t.Fatalf("Pull returned error: %v", err)
	}
	defer cancel()
	q.Stop(ctx)
	select {
	case <-tctx.Done():
	case <-time.After(time.Second):
		t.Errorf("expected task context to be cancelled on Stop")
	}
}
