package grove

import (
	"context"
	"fmt"
	"runtime"

	"github.com/pbanos/grove/dataset"
	"github.com/pbanos/grove/tree"
	"golang.org/x/sync/errgroup"
)

/*
Forest is an ensemble of classification trees that predicts the class of a
row by majority vote of its trees. Trees are kept in the order of their
indices. Features is the number of features of the rows the forest
classifies, and Names and Label optionally hold the names of those features
and of the class they predict.

A Forest is not modified by any of its methods, so it can be used to predict
from several goroutines at the same time.
*/
type Forest struct {
	Trees    []*tree.Tree
	Features int
	Names    []string
	Label    string
}

// NewForest takes a slice of trees and the number of features
// of the rows they classify and returns a forest with them.
func NewForest(trees []*tree.Tree, features int) *Forest {
	return &Forest{Trees: trees, Features: features}
}

/*
Predict takes a context and a dataset and returns the class the forest
predicts for each row in the dataset, in the same order.

It returns a *tree.ConfigurationError if the forest has no trees and a
*tree.ShapeMismatchError if the rows of the dataset do not have the number
of features the forest was grown with. Datasets without rows get an empty
slice of predictions.
*/
func (f *Forest) Predict(ctx context.Context, ds *dataset.Dataset) ([]int, error) {
	if len(f.Trees) == 0 {
		return nil, &tree.ConfigurationError{Parameter: "forest", Reason: "has no trees"}
	}
	n := ds.Count()
	if n == 0 {
		return []int{}, nil
	}
	if ds.FeatureCount() != f.Features {
		return nil, &tree.ShapeMismatchError{Expected: f.Features, Got: ds.FeatureCount()}
	}
	labels := make([]int, n)
	workers := runtime.NumCPU()
	chunk := (n + workers - 1) / workers
	g, gctx := errgroup.WithContext(ctx)
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		start := start
		g.Go(func() error {
			votes := make([]int, len(f.Trees))
			for i := start; i < end; i++ {
				err := gctx.Err()
				if err != nil {
					return err
				}
				for j, t := range f.Trees {
					votes[j], err = t.Predict(ds.Row(i))
					if err != nil {
						return fmt.Errorf("predicting row %d with tree %d: %v", i, j, err)
					}
				}
				labels[i] = Vote(votes)
			}
			return nil
		})
	}
	err := g.Wait()
	if err != nil {
		return nil, err
	}
	return labels, nil
}

/*
Test takes a context and a labeled dataset and returns the fraction of its
rows whose label the forest predicts correctly, or an error if the forest
cannot predict the dataset classes.
*/
func (f *Forest) Test(ctx context.Context, ds *dataset.Dataset) (float64, error) {
	if !ds.Labeled() {
		return 0.0, dataset.ErrUnlabeledDataset
	}
	if ds.Count() == 0 {
		return 0.0, dataset.ErrEmptyDataset
	}
	predictions, err := f.Predict(ctx, ds)
	if err != nil {
		return 0.0, err
	}
	var hits int
	for i, p := range predictions {
		if p == ds.Label(i) {
			hits++
		}
	}
	return float64(hits) / float64(ds.Count()), nil
}

// Vote takes the classes predicted by the trees of a forest
// and returns the most voted one, the lowest class among
// those tied. It returns 0 when there are no votes.
func Vote(classes []int) int {
	counts := make(map[int]int)
	var winner, max int
	for _, c := range classes {
		counts[c]++
		count := counts[c]
		if count > max || (count == max && c < winner) {
			winner = c
			max = count
		}
	}
	return winner
}

func (f *Forest) String() string {
	return fmt.Sprintf("{Forest trees: %d features: %d}", len(f.Trees), f.Features)
}
