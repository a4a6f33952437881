package tree

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	"github.com/pbanos/grove/dataset"
)

const (
	// DefaultMinSplit is the minimum number of rows a node needs
	// to be split when a Builder does not set one.
	DefaultMinSplit = 2
	// gains this close to zero are rounding noise, not improvements
	gainTolerance = 1e-12
)

/*
Builder holds the parameters to grow a decision tree:
  * FeaturesPerSplit is the number of features drawn at random (without
    replacement) as candidates for every split.
  * MaxDepth is the depth at which nodes become leaves no matter what.
    The root is at depth 0.
  * MinSplit is the minimum number of rows a node needs to be split,
    DefaultMinSplit if 0.
  * Criterion is the impurity measure the splits minimize, Gini if empty.
  * MinimumGain is the decrease in impurity a split must exceed to be
    made. With 0, any decrease is enough.
*/
type Builder struct {
	FeaturesPerSplit int       `json:"m"`
	MaxDepth         int       `json:"depth"`
	MinSplit         int       `json:"minSplit,omitempty"`
	Criterion        Criterion `json:"criterion,omitempty"`
	MinimumGain      float64   `json:"minGain,omitempty"`
}

type split struct {
	feature   int
	threshold float64
	impurity  float64
}

type grower struct {
	*Builder
	ds       *dataset.Dataset
	r        *rand.Rand
	classes  int
	minSplit int
	features []int
	sorted   []int
	left     []int
	right    []int
}

/*
Validate takes the number of features of the rows a tree is to be grown
from and returns a *ConfigurationError if the builder parameters are not
valid for them.
*/
func (b *Builder) Validate(features int) error {
	if b.FeaturesPerSplit < 1 {
		return &ConfigurationError{"features per split", fmt.Sprintf("must be at least 1, got %d", b.FeaturesPerSplit)}
	}
	if b.FeaturesPerSplit > features {
		return &ConfigurationError{"features per split", fmt.Sprintf("%d exceeds the %d features of the rows", b.FeaturesPerSplit, features)}
	}
	if b.MaxDepth < 1 {
		return &ConfigurationError{"max depth", fmt.Sprintf("must be at least 1, got %d", b.MaxDepth)}
	}
	if b.MinSplit < 0 {
		return &ConfigurationError{"min split", fmt.Sprintf("must not be negative, got %d", b.MinSplit)}
	}
	if !b.Criterion.Valid() {
		return &ConfigurationError{"criterion", fmt.Sprintf("unknown criterion %q", string(b.Criterion))}
	}
	if b.MinimumGain < 0 {
		return &ConfigurationError{"minimum gain", fmt.Sprintf("must not be negative, got %f", b.MinimumGain)}
	}
	return nil
}

/*
Build takes a context, a labeled dataset and a source of random numbers and
grows a tree from the dataset's rows. Equal datasets, parameters and random
sources always produce equal trees.

Nodes become leaves predicting the majority class of their rows (the lowest
class on ties) when they are at MaxDepth, have fewer than MinSplit rows, all
their rows share a class, or no split of their rows decreases the impurity by
more than MinimumGain. Otherwise FeaturesPerSplit features are drawn at random
and every value of a row of the node for those features is tried as threshold,
keeping the feature and threshold with the lowest weighted impurity.

Build returns dataset.ErrEmptyDataset for datasets without rows,
dataset.ErrUnlabeledDataset for datasets without labels, a
*ConfigurationError if the parameters are invalid for the dataset, and the
context error if the context is done before the tree is complete.
*/
func (b *Builder) Build(ctx context.Context, ds *dataset.Dataset, r *rand.Rand) (*Tree, error) {
	if ds.Count() == 0 {
		return nil, dataset.ErrEmptyDataset
	}
	if !ds.Labeled() {
		return nil, dataset.ErrUnlabeledDataset
	}
	err := b.Validate(ds.FeatureCount())
	if err != nil {
		return nil, err
	}
	g := &grower{
		Builder:  b,
		ds:       ds,
		r:        r,
		classes:  ds.Classes(),
		minSplit: b.MinSplit,
		features: make([]int, ds.FeatureCount()),
		sorted:   make([]int, ds.Count()),
	}
	if g.minSplit == 0 {
		g.minSplit = DefaultMinSplit
	}
	g.left = make([]int, g.classes)
	g.right = make([]int, g.classes)
	indices := make([]int, ds.Count())
	for i := range indices {
		indices[i] = i
	}
	root, err := g.grow(ctx, indices, 0)
	if err != nil {
		return nil, err
	}
	return New(root, ds.FeatureCount()), nil
}

func (g *grower) grow(ctx context.Context, indices []int, depth int) (*Node, error) {
	err := ctx.Err()
	if err != nil {
		return nil, err
	}
	counts := g.count(indices)
	n := &Node{
		Class:    majority(counts),
		Samples:  len(indices),
		Impurity: g.Criterion.Impurity(counts, len(indices)),
	}
	if depth >= g.MaxDepth || len(indices) < g.minSplit || counts[n.Class] == len(indices) {
		return n, nil
	}
	s := g.bestSplit(indices, counts)
	if s == nil || n.Impurity-s.impurity <= g.MinimumGain+gainTolerance {
		return n, nil
	}
	var leftIndices, rightIndices []int
	for _, i := range indices {
		if g.ds.Row(i)[s.feature] <= s.threshold {
			leftIndices = append(leftIndices, i)
		} else {
			rightIndices = append(rightIndices, i)
		}
	}
	n.Feature = s.feature
	n.Threshold = s.threshold
	n.Left, err = g.grow(ctx, leftIndices, depth+1)
	if err != nil {
		return nil, err
	}
	n.Right, err = g.grow(ctx, rightIndices, depth+1)
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (g *grower) count(indices []int) []int {
	counts := make([]int, g.classes)
	for _, i := range indices {
		counts[g.ds.Label(i)]++
	}
	return counts
}

/*
bestSplit returns the split with the lowest weighted impurity among the
candidate features, or nil if every candidate leaves one side empty.
Rows are sorted by the feature value and swept once, so every distinct
value but the greatest is evaluated as threshold.
*/
func (g *grower) bestSplit(indices []int, counts []int) *split {
	var best *split
	n := len(indices)
	sorted := g.sorted[:n]
	for _, f := range g.drawFeatures() {
		copy(sorted, indices)
		sort.SliceStable(sorted, func(a, b int) bool {
			return g.ds.Row(sorted[a])[f] < g.ds.Row(sorted[b])[f]
		})
		for c := range g.left {
			g.left[c] = 0
		}
		for i := 0; i < n-1; i++ {
			g.left[g.ds.Label(sorted[i])]++
			v := g.ds.Row(sorted[i])[f]
			if v == g.ds.Row(sorted[i+1])[f] {
				continue
			}
			for c := range g.right {
				g.right[c] = counts[c] - g.left[c]
			}
			nl, nr := i+1, n-i-1
			impurity := (float64(nl)*g.Criterion.Impurity(g.left, nl) + float64(nr)*g.Criterion.Impurity(g.right, nr)) / float64(n)
			if best == nil || impurity < best.impurity {
				best = &split{feature: f, threshold: v, impurity: impurity}
			}
		}
	}
	return best
}

// drawFeatures returns FeaturesPerSplit distinct feature indices
// drawn uniformly at random with a partial Fisher-Yates shuffle.
func (g *grower) drawFeatures() []int {
	for i := range g.features {
		g.features[i] = i
	}
	for i := 0; i < g.FeaturesPerSplit; i++ {
		j := i + g.r.Intn(len(g.features)-i)
		g.features[i], g.features[j] = g.features[j], g.features[i]
	}
	return g.features[:g.FeaturesPerSplit]
}
