package queue

import (
	"fmt"
	"strconv"

	"github.com/pbanos/grove/tree"
)

// Task represents a tree to be grown for a forest.
// It carries everything a worker needs besides the
// training dataset, so that workers on different
// machines grow the same tree for the same task.
type Task struct {
	// The position of the tree in the forest
	Index int
	// The seed for the source of random numbers used
	// to draw the bootstrap sample and the candidate
	// features of every split.
	Seed int64
	// The parameters to grow the tree
	Builder tree.Builder
}

// ID returns a string that identifies the
// task, the index of its tree.
func (t *Task) ID() string {
	return strconv.Itoa(t.Index)
}

func (t *Task) String() string {
	return fmt.Sprintf("{Task %d seed: %d}", t.Index, t.Seed)
}
