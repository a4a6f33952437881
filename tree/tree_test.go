package tree

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

// sexTree predicts survival for females (feature 1 > 0) except
// for third class ones (feature 0 > 2).
func sexTree() *Tree {
	return New(
		NewSplit(1, 0,
			NewLeaf(0),
			NewSplit(0, 2, NewLeaf(1), NewLeaf(0)),
		), 4)
}

func TestPredict(t *testing.T) {
	tr := sexTree()
	testCases := []struct {
		row      []float64
		expected int
	}{
		{[]float64{1, 0, 0, 0}, 0},
		{[]float64{1, 1, 0, 0}, 1},
		{[]float64{2, 1, 0, 0}, 1},
		{[]float64{3, 1, 1, 0}, 0},
	}
	for _, tc := range testCases {
		class, err := tr.Predict(tc.row)
		if err != nil {
			t.Fatalf("Predict(%v) returned error: %v", tc.row, err)
		}
		if class != tc.expected {
			t.Errorf("Predict(%v): expected %d, got %d", tc.row, tc.expected, class)
		}
	}
}

func TestPredictShapeMismatch(t *testing.T) {
	_, err := sexTree().Predict([]float64{1, 0, 0})
	var sme *ShapeMismatchError
	if !errors.As(err, &sme) {
		t.Fatalf("expected *ShapeMismatchError, got %T %v", err, err)
	}
	if sme.Expected != 4 || sme.Got != 3 {
		t.Errorf("expected mismatch 4/3, got %d/%d", sme.Expected, sme.Got)
	}
}

func TestTraverse(t *testing.T) {
	tr := sexTree()
	var topdown, bottomup []int
	collect := func(s *[]int) func(context.Context, *Node, int) error {
		return func(_ context.Context, n *Node, depth int) error {
			*s = append(*s, depth)
			return nil
		}
	}
	if err := tr.Traverse(context.Background(), false, collect(&topdown)); err != nil {
		t.Fatalf("Traverse returned error: %v", err)
	}
	if err := tr.Traverse(context.Background(), true, collect(&bottomup)); err != nil {
		t.Fatalf("Traverse returned error: %v", err)
	}
	if expected := []int{0, 1, 1, 2, 2}; !reflect.DeepEqual(topdown, expected) {
		t.Errorf("expected top-down depths %v, got %v", expected, topdown)
	}
	if expected := []int{1, 2, 2, 1, 0}; !reflect.DeepEqual(bottomup, expected) {
		t.Errorf("expected bottom-up depths %v, got %v", expected, bottomup)
	}
	if tr.Depth() != 2 || tr.Leaves() != 3 {
		t.Errorf("expected depth 2 and 3 leaves, got %d and %d", tr.Depth(), tr.Leaves())
	}
	stop := errors.New("stop")
	err := tr.Traverse(context.Background(), false, func(context.Context, *Node, int) error { return stop })
	if err != stop {
		t.Errorf("expected traversal to stop with %v, got %v", stop, err)
	}
}

func TestFormat(t *testing.T) {
	s := sexTree().Format([]string{"Pclass", "Sex"})
	for _, expected := range []string{"[Sex <= 0]", "[Pclass <= 2]", "[class 1]"} {
		if !strings.Contains(s, expected) {
			t.Errorf("expected %q in\n%s", expected, s)
		}
	}
	if !strings.Contains(sexTree().String(), "[#1 <= 0]") {
		t.Errorf("expected feature indices without names, got\n%s", sexTree())
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	tr := sexTree()
	if err := s.Store(ctx, 3, tr); err != nil {
		t.Fatalf("Store returned error: %v", err)
	}
	got, err := s.Get(ctx, 3)
	if err != nil || got != tr {
		t.Errorf("expected stored tree, got %v %v", got, err)
	}
	got, err = s.Get(ctx, 4)
	if err != nil || got != nil {
		t.Errorf("expected no tree, got %v %v", got, err)
	}
	if err = s.Delete(ctx, 3); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if got, _ = s.Get(ctx, 3); got != nil {
		t.Errorf("expected deleted tree to be gone, got %v", got)
	}
	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err = s.Store(cancelled, 1, tr); err != context.Canceled {
		t.Errorf("expected %v, got %v", context.Canceled, err)
	}
	if err = s.Close(ctx); err != nil {
		t.Errorf("Close returned error: %v", err)
	}
}
