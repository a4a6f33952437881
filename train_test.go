package grove

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/pbanos/grove/dataset"
	"github.com/pbanos/grove/feature"
	"github.com/pbanos/grove/queue"
	queuejson "github.com/pbanos/grove/queue/json"
	"github.com/pbanos/grove/queue/redisq"
	"github.com/pbanos/grove/tree"
	treejson "github.com/pbanos/grove/tree/json"
	"github.com/pbanos/grove/tree/redisstore"
	redis "gopkg.in/redis.v5"
)

// passengers returns a training dataset where women and first
// class passengers tend to survive
func passengers(t *testing.T) *dataset.Dataset {
	var records []feature.Record
	for i := 0; i < 60; i++ {
		class := 1 + i%3
		sex := []string{"male", "female"}[(i/3)%2]
		sibsp := i % 4
		parch := (i / 4) % 3
		survived := 0
		if (sex == "female" && class < 3) || (class == 1 && parch > 0) || i%11 == 0 {
			survived = 1
		}
		records = append(records, feature.Record{
			"PassengerId": fmt.Sprint(i + 1),
			"Pclass":      fmt.Sprint(class),
			"Sex":         sex,
			"SibSp":       fmt.Sprint(sibsp),
			"Parch":       fmt.Sprint(parch),
			"Survived":    fmt.Sprint(survived),
		})
	}
	features, label := feature.Passenger()
	ds, err := dataset.Assemble(records, features, label)
	if err != nil {
		t.Fatalf("dataset.Assemble returned error: %v", err)
	}
	return ds
}

func testConfig() *Config {
	c := DefaultConfig()
	c.TreeCount = 25
	c.FeaturesPerSplit = 2
	c.Seed = 42
	return c
}

func TestTrainIsDeterministic(t *testing.T) {
	ds := passengers(t)
	ctx := context.Background()
	var forests []*Forest
	for _, workers := range []int{1, 4} {
		c := testConfig()
		c.Workers = workers
		f, err := Train(ctx, ds, c)
		if err != nil {
			t.Fatalf("Train with %d workers returned error: %v", workers, err)
		}
		if len(f.Trees) != 25 || f.Features != 4 {
			t.Fatalf("expected forest of 25 trees over 4 features, got %v", f)
		}
		forests = append(forests, f)
	}
	if !reflect.DeepEqual(forests[0], forests[1]) {
		t.Errorf("expected equal forests for equal seeds regardless of workers")
	}
	p1, err := forests[0].Predict(ctx, ds)
	if err != nil {
		t.Fatalf("Predict returned error: %v", err)
	}
	p2, err := forests[1].Predict(ctx, ds)
	if err != nil {
		t.Fatalf("Predict returned error: %v", err)
	}
	if !reflect.DeepEqual(p1, p2) {
		t.Errorf("expected equal predictions, got %v and %v", p1, p2)
	}
	accuracy, err := forests[0].Test(ctx, ds)
	if err != nil {
		t.Fatalf("Test returned error: %v", err)
	}
	if accuracy < 0.7 {
		t.Errorf("expected training accuracy of at least 0.7, got %f", accuracy)
	}
}

func TestTrainSeedsDiffer(t *testing.T) {
	ds := passengers(t)
	c1, c2 := testConfig(), testConfig()
	c2.Seed = 43
	f1, err := Train(context.Background(), ds, c1)
	if err != nil {
		t.Fatalf("Train returned error: %v", err)
	}
	f2, err := Train(context.Background(), ds, c2)
	if err != nil {
		t.Fatalf("Train returned error: %v", err)
	}
	if reflect.DeepEqual(f1, f2) {
		t.Errorf("expected different forests for different seeds")
	}
}

func TestTrainOnRedis(t *testing.T) {
	ctx := context.Background()
	ds := passengers(t)
	c := testConfig()
	c.Workers = 3
	expected, err := Train(ctx, ds, c)
	if err != nil {
		t.Fatalf("Train returned error: %v", err)
	}
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rc.Close()
	q := redisq.New("forest:queue", rc, time.Minute, queuejson.New())
	defer q.Stop(ctx)
	s := redisstore.New(rc, "forest:tree", treejson.New())
	f, err := Train(ctx, ds, c, WithQueue(q), WithStore(s), WithEmptyQueueSleep(time.Millisecond))
	if err != nil {
		t.Fatalf("Train on redis returned error: %v", err)
	}
	if !reflect.DeepEqual(f, expected) {
		t.Errorf("expected forest grown on redis to equal the one grown in memory")
	}
	p, r, err := q.Count(ctx)
	if err != nil || p != 0 || r != 0 {
		t.Errorf("expected empty queue after training, got %d %d %v", p, r, err)
	}
	for i := 0; i < int(c.TreeCount); i++ {
		if !mr.Exists(fmt.Sprintf("forest:tree:%d", i)) {
			t.Errorf("expected tree %d on redis, got keys %v", i, mr.Keys())
		}
	}
}

type countingQueue struct {
	queue.Queue
	lock   sync.Mutex
	pushes int
}

func (cq *countingQueue) Push(ctx context.Context, t *queue.Task) error {
	cq.lock.Lock()
	cq.pushes++
	cq.lock.Unlock()
	return cq.Queue.Push(ctx, t)
}

func TestTrainValidatesFirst(t *testing.T) {
	ds := passengers(t)
	noTrees := testConfig()
	noTrees.TreeCount = 0
	tooManyFeatures := testConfig()
	tooManyFeatures.FeaturesPerSplit = 5
	badCriterion := testConfig()
	badCriterion.Criterion = "variance"
	for _, c := range []*Config{noTrees, tooManyFeatures, badCriterion} {
		q := &countingQueue{Queue: queue.New()}
		f, err := Train(context.Background(), ds, c, WithQueue(q))
		var ce *tree.ConfigurationError
		if !errors.As(err, &ce) {
			t.Errorf("%v: expected *tree.ConfigurationError, got %T %v", c, err, err)
		}
		if f != nil || q.pushes != 0 {
			t.Errorf("%v: expected no work done, got forest %v and %d tasks", c, f, q.pushes)
		}
	}
	features, label := feature.Passenger()
	empty, err := dataset.Assemble(nil, features, label)
	if err != nil {
		t.Fatalf("dataset.Assemble returned error: %v", err)
	}
	q := &countingQueue{Queue: queue.New()}
	_, err = Train(context.Background(), empty, testConfig(), WithQueue(q))
	if err != dataset.ErrEmptyDataset || q.pushes != 0 {
		t.Errorf("expected %v and no work done, got %v and %d tasks", dataset.ErrEmptyDataset, err, q.pushes)
	}
}

func TestTrainRejectsDatasetsWithoutRowsOrLabels(t *testing.T) {
	noRows, err := dataset.New(nil, []int{})
	if err != nil {
		t.Fatalf("dataset.New returned error: %v", err)
	}
	var records []feature.Record
	for i := 0; i < 3; i++ {
		records = append(records, feature.Record{"Pclass": "1", "Sex": "female", "SibSp": "0", "Parch": "0"})
	}
	features, _ := feature.Passenger()
	noLabels, err := dataset.Assemble(records, features, nil)
	if err != nil {
		t.Fatalf("dataset.Assemble returned error: %v", err)
	}
	testCases := []struct {
		ds       *dataset.Dataset
		expected error
	}{
		{noRows, dataset.ErrEmptyDataset},
		{noLabels, dataset.ErrUnlabeledDataset},
	}
	for _, tc := range testCases {
		q := &countingQueue{Queue: queue.New()}
		f, err := Train(context.Background(), tc.ds, DefaultConfig(), WithQueue(q))
		if err != tc.expected || f != nil || q.pushes != 0 {
			t.Errorf("%v: expected %v and no work done, got %v, %v and %d tasks", tc.ds, tc.expected, f, err, q.pushes)
		}
	}
}

func TestTrainCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f, err := Train(ctx, passengers(t), testConfig())
	if err == nil || f != nil {
		t.Errorf("expected cancelled training to fail, got %v %v", f, err)
	}
}

type recordingLogger struct {
	lock  sync.Mutex
	lines []string
}

func (rl *recordingLogger) Logf(format string, a ...interface{}) {
	rl.lock.Lock()
	defer rl.lock.Unlock()
	rl.lines = append(rl.lines, fmt.Sprintf(format, a...))
}

func TestTrainWithStoreAndLogger(t *testing.T) {
	s := tree.NewMemoryStore()
	l := &recordingLogger{}
	c := testConfig()
	c.TreeCount = 3
	f, err := Train(context.Background(), passengers(t), c, WithStore(s), WithLogger(l), WithEmptyQueueSleep(0))
	if err != nil {
		t.Fatalf("Train returned error: %v", err)
	}
	for i := 0; i < 3; i++ {
		st, err := s.Get(context.Background(), i)
		if err != nil || st != f.Trees[i] {
			t.Errorf("expected tree %d in store, got %v %v", i, st, err)
		}
	}
	if len(l.lines) != 4 {
		t.Errorf("expected a line per tree and a starting line, got %v", l.lines)
	}
}

func TestCollectMissingTree(t *testing.T) {
	ctx := context.Background()
	s := tree.NewMemoryStore()
	s.Store(ctx, 0, tree.New(tree.NewLeaf(1), 4))
	s.Store(ctx, 2, tree.New(tree.NewLeaf(1), 4))
	if _, err := Collect(ctx, s, 3, 4); err == nil {
		t.Errorf("expected error collecting a forest with a missing tree")
	}
	s.Store(ctx, 1, tree.New(tree.NewLeaf(0), 3))
	if _, err := Collect(ctx, s, 3, 4); err == nil {
		t.Errorf("expected error collecting a forest with a tree of a different shape")
	}
}

func TestTreeSeed(t *testing.T) {
	seen := make(map[int64]bool)
	for i := 0; i < 1000; i++ {
		s := TreeSeed(0, i)
		if seen[s] {
			t.Fatalf("seed for tree %d repeated", i)
		}
		seen[s] = true
		if s != TreeSeed(0, i) {
			t.Fatalf("seed for tree %d changed", i)
		}
	}
	if TreeSeed(1, 0) == TreeSeed(0, 0) {
		t.Errorf("expected different base seeds to give different tree seeds")
	}
}
