package grove

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"time"

	"github.com/pbanos/grove/dataset"
	"github.com/pbanos/grove/queue"
	"github.com/pbanos/grove/tree"
	"golang.org/x/sync/errgroup"
)

// DefaultEmptyQueueSleep is how long workers wait before
// pulling again from a queue with no pending tasks but
// some running ones.
const DefaultEmptyQueueSleep = 100 * time.Millisecond

type options struct {
	queue           queue.Queue
	store           tree.Store
	logger          Logger
	emptyQueueSleep time.Duration
}

// Option customizes how Train grows a forest
type Option func(*options)

// WithQueue makes Train push the tasks to grow the trees to
// the given queue instead of an in-memory one
func WithQueue(q queue.Queue) Option {
	return func(o *options) {
		o.queue = q
	}
}

// WithStore makes Train keep the grown trees in the given
// store instead of an in-memory one
func WithStore(s tree.Store) Option {
	return func(o *options) {
		o.store = s
	}
}

// WithLogger makes Train report the progress of its workers
// to the given logger
func WithLogger(l Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithEmptyQueueSleep sets how long workers wait for running
// tasks to complete before pulling again
func WithEmptyQueueSleep(d time.Duration) Option {
	return func(o *options) {
		o.emptyQueueSleep = d
	}
}

/*
Train takes a context, a labeled dataset, a configuration and options and
grows a forest from the dataset.

The dataset is checked to have labeled rows and the configuration is
validated before any task is pushed: Train returns dataset.ErrEmptyDataset,
dataset.ErrUnlabeledDataset or a *tree.ConfigurationError without doing any
work otherwise. Then Seed pushes
the tasks for the trees to the queue and Workers goroutines consume them with
Work. Once all of them are done the trees are collected in index order.

Forests grown from equal datasets with equal configurations are equal.
*/
func Train(ctx context.Context, ds *dataset.Dataset, c *Config, opts ...Option) (*Forest, error) {
	if ds.Count() == 0 {
		return nil, dataset.ErrEmptyDataset
	}
	if !ds.Labeled() {
		return nil, dataset.ErrUnlabeledDataset
	}
	err := c.Validate(ds.FeatureCount())
	if err != nil {
		return nil, err
	}
	o := &options{emptyQueueSleep: DefaultEmptyQueueSleep, logger: nopLogger{}}
	for _, opt := range opts {
		opt(o)
	}
	if o.queue == nil {
		o.queue = queue.New()
		defer o.queue.Stop(context.Background())
	}
	if o.store == nil {
		o.store = tree.NewMemoryStore()
	}
	err = Seed(ctx, c, o.queue)
	if err != nil {
		return nil, fmt.Errorf("seeding forest: %v", err)
	}
	workers := c.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	o.logger.Logf("Growing %d trees with %d workers...", c.TreeCount, workers)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			return Work(gctx, ds, o.queue, o.store, o.logger, o.emptyQueueSleep)
		})
	}
	err = g.Wait()
	if err != nil {
		return nil, err
	}
	return Collect(ctx, o.store, int(c.TreeCount), ds.FeatureCount())
}

/*
TreeSeed takes the base seed of a forest and the index of one of its trees
and returns the seed for the source of random numbers used to grow that tree.
Seeds are mixed with the SplitMix64 finalizer so that the streams of
neighbouring trees are unrelated.
*/
func TreeSeed(seed uint64, index int) int64 {
	z := seed + (uint64(index)+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return int64(z ^ (z >> 31))
}

// Seed takes a context, a configuration and a queue and
// pushes a task to grow every tree of the forest to the
// queue, so that workers that consume from the queue
// afterwards grow the forest. It returns an error if a
// task cannot be pushed to the queue.
func Seed(ctx context.Context, c *Config, q queue.Queue) error {
	b := c.Builder()
	for i := 0; i < int(c.TreeCount); i++ {
		task := &queue.Task{Index: i, Seed: TreeSeed(c.Seed, i), Builder: b}
		err := q.Push(ctx, task)
		if err != nil {
			return err
		}
	}
	return nil
}

// GrowTree takes a context, a task and a labeled dataset and
// grows the tree for the task: a bootstrap sample of the
// dataset is drawn with a source of random numbers seeded
// with the task's seed, and the task's builder grows the
// tree from it with the same source.
func GrowTree(ctx context.Context, task *queue.Task, ds *dataset.Dataset) (*tree.Tree, error) {
	r := rand.New(rand.NewSource(task.Seed))
	sample := ds.Bootstrap(r)
	return task.Builder.Build(ctx, sample, r)
}

// Work takes a context, a dataset, a queue, a tree store,
// a logger and an emptyQueueSleep duration and enters a loop
// in which it:
//   * pulls a task for the queue,
//   * grows its tree from the dataset using GrowTree
//   * stores the tree with the task index in the store
//   * marks the task as completed on the queue
//
// If at some point no task can be pulled from the queue and
// the sum of tasks running and pending on the queue is 0, the
// worker ends returning nil. If no task can be pulled but the
// sum is not 0, then the worker will sleep for the given
// emptyQueueSleep duration and then retry.
//
// Work will return a non-nil error if the given context
// times out or is cancelled, if GrowTree returns a non-nil
// error or if an operation with the given queue or store
// returns a non-nil error.
func Work(ctx context.Context, ds *dataset.Dataset, q queue.Queue, s tree.Store, l Logger, emptyQueueSleep time.Duration) error {
	for {
		task, tctx, tcf, err := q.Pull(ctx)
		if err != nil {
			return err
		}
		if task == nil {
			p, r, err := q.Count(ctx)
			if err != nil {
				return err
			}
			if r+p == 0 {
				break
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(emptyQueueSleep):
			}
			continue
		}
		mctx, cancel := mergeCtxCancel(tctx, ctx)
		err = workTask(mctx, task, ds, q, s, l)
		cancel()
		tcf()
		if err != nil {
			return err
		}
		err = ctx.Err()
		if err != nil {
			return err
		}
	}
	return nil
}

func workTask(ctx context.Context, task *queue.Task, ds *dataset.Dataset, q queue.Queue, s tree.Store, l Logger) error {
	defer func() {
		q.Drop(context.Background(), task.ID())
	}()
	t, err := GrowTree(ctx, task, ds)
	if err != nil {
		return fmt.Errorf("growing tree %d: %v", task.Index, err)
	}
	err = s.Store(ctx, task.Index, t)
	if err != nil {
		return fmt.Errorf("storing tree %d: %v", task.Index, err)
	}
	l.Logf("Grew tree %d: depth %d, %d leaves", task.Index, t.Depth(), t.Leaves())
	return q.Complete(ctx, task.ID())
}

// Collect takes a context, a tree store, a number of trees
// and a number of features and returns the forest made of
// the trees in the store with indices from 0 to count-1, or
// an error if any of them is missing, classifies rows with
// a different number of features or cannot be retrieved.
func Collect(ctx context.Context, s tree.Store, count, features int) (*Forest, error) {
	trees := make([]*tree.Tree, count)
	for i := range trees {
		t, err := s.Get(ctx, i)
		if err != nil {
			return nil, fmt.Errorf("collecting tree %d: %v", i, err)
		}
		if t == nil {
			return nil, fmt.Errorf("collecting tree %d: not found in store", i)
		}
		if t.Features != features {
			return nil, fmt.Errorf("collecting tree %d: %v", i, &tree.ShapeMismatchError{Expected: features, Got: t.Features})
		}
		trees[i] = t
	}
	return NewForest(trees, features), nil
}

func mergeCtxCancel(ctx1, ctx2 context.Context) (context.Context, context.CancelFunc) {
	mctx, cancel := context.WithCancel(ctx1)
	go func() {
		select {
		case <-mctx.Done():
		case <-ctx2.Done():
			cancel()
		}
	}()
	return mctx, cancel
}
