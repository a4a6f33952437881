/*
Package tree implements binary decision trees over rows of numeric features:
how they are grown from a dataset, how they predict the class of a row and
where they are kept while a forest is being grown.
*/
package tree

import (
	"context"
	"fmt"
	"strings"
)

// Tree represents a classification tree. It is composed of
// its root node and the number of features of the rows it
// was grown from, and thus of the rows it can classify.
type Tree struct {
	Root     *Node
	Features int
}

// New takes the root Node and a number of features and returns
// a tree that classifies rows with that number of features.
func New(root *Node, features int) *Tree {
	return &Tree{root, features}
}

// Predict takes a row and returns the class of the leaf it reaches when
// going down from the root of the tree, or a *ShapeMismatchError if the row
// does not have the number of features the tree was grown from.
func (t *Tree) Predict(row []float64) (int, error) {
	if t == nil || t.Root == nil {
		return 0, fmt.Errorf("nil tree cannot predict rows")
	}
	if len(row) != t.Features {
		return 0, &ShapeMismatchError{Expected: t.Features, Got: len(row)}
	}
	n := t.Root
	for !n.Leaf() {
		if n.Feature < 0 || n.Feature >= len(row) {
			return 0, fmt.Errorf("node splits on feature %d, rows have %d", n.Feature, len(row))
		}
		if row[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Class, nil
}

// Traverse takes a context, bottomup boolean and an
// error-returning function that takes a context, a node
// and its depth as parameters, and goes through the tree
// running the function with the context and every
// traversed node.
// Traverse will call the function with a parent node before
// calling it for its children if bottomup is false, and
// call it after its children if bottomup is true.
// If the given context times out or is cancelled, the context
// error is returned. If the call to the function returns an
// error, the traversing is aborted and the error is returned.
// Otherwise, when the traversing is over, nil is returned.
func (t *Tree) Traverse(ctx context.Context, bottomup bool, f func(context.Context, *Node, int) error) error {
	if t.Root == nil {
		return nil
	}
	return t.traverse(ctx, t.Root, 0, bottomup, f)
}

func (t *Tree) traverse(ctx context.Context, n *Node, depth int, bottomup bool, f func(context.Context, *Node, int) error) error {
	err := ctx.Err()
	if err != nil {
		return err
	}
	if !bottomup {
		err = f(ctx, n, depth)
		if err != nil {
			return err
		}
	}
	if !n.Leaf() {
		for _, sn := range []*Node{n.Left, n.Right} {
			err = t.traverse(ctx, sn, depth+1, bottomup, f)
			if err != nil {
				return err
			}
		}
	}
	if bottomup {
		return f(ctx, n, depth)
	}
	return nil
}

// Depth returns the depth of the deepest leaf of the tree,
// 0 for a tree that is only a leaf.
func (t *Tree) Depth() int {
	var depth int
	t.Traverse(context.Background(), false, func(_ context.Context, _ *Node, d int) error {
		if d > depth {
			depth = d
		}
		return nil
	})
	return depth
}

// Leaves returns the number of leaves of the tree
func (t *Tree) Leaves() int {
	var leaves int
	t.Traverse(context.Background(), false, func(_ context.Context, n *Node, _ int) error {
		if n.Leaf() {
			leaves++
		}
		return nil
	})
	return leaves
}

func (t *Tree) String() string {
	return t.Format(nil)
}

// Format returns a drawing of the tree using the given feature
// names to describe splits, or feature indices for features
// without a name.
func (t *Tree) Format(names []string) string {
	if t.Root == nil {
		return ""
	}
	return subtreeString(t.Root, names)
}

func subtreeString(n *Node, names []string) string {
	var result string
	if n.Leaf() {
		result = fmt.Sprintf("[class %d]{ samples: %d }\n", n.Class, n.Samples)
	} else {
		name := fmt.Sprintf("#%d", n.Feature)
		if n.Feature >= 0 && n.Feature < len(names) {
			name = names[n.Feature]
		}
		result = fmt.Sprintf("[%s <= %g]{ samples: %d }\n|\n", name, n.Threshold, n.Samples)
	}
	if n.Leaf() {
		return result
	}
	subtrees := []*Node{n.Left, n.Right}
	for i, sn := range subtrees {
		for j, line := range strings.Split(subtreeString(sn, names), "\n") {
			if len(line) > 0 {
				if j == 0 {
					result = fmt.Sprintf("%s|__%s\n", result, line)
				} else {
					if i == len(subtrees)-1 {
						result = fmt.Sprintf("%s   %s\n", result, line)
					} else {
						result = fmt.Sprintf("%s|  %s\n", result, line)
					}
				}
			}
		}
	}
	return result
}
