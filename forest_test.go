package grove

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/pbanos/grove/dataset"
	"github.com/pbanos/grove/tree"
)

func leafForest(classes ...int) *Forest {
	var trees []*tree.Tree
	for _, c := range classes {
		trees = append(trees, tree.New(tree.NewLeaf(c), 4))
	}
	return NewForest(trees, 4)
}

func TestMajorityVote(t *testing.T) {
	f := leafForest(1, 1, 0)
	ds, err := dataset.New([]dataset.Row{{3, 1, 1, 0}, {1, 0, 0, 0}}, nil)
	if err != nil {
		t.Fatalf("dataset.New returned error: %v", err)
	}
	labels, err := f.Predict(context.Background(), ds)
	if err != nil {
		t.Fatalf("Predict returned error: %v", err)
	}
	if !reflect.DeepEqual(labels, []int{1, 1}) {
		t.Errorf("expected labels [1 1], got %v", labels)
	}
	testCases := []struct {
		votes    []int
		expected int
	}{
		{[]int{1, 1, 0}, 1},
		{[]int{0, 1}, 0},
		{[]int{1, 0}, 0},
		{[]int{2, 1, 2, 1, 0}, 1},
		{[]int{}, 0},
	}
	for _, tc := range testCases {
		if got := Vote(tc.votes); got != tc.expected {
			t.Errorf("Vote(%v): expected %d, got %d", tc.votes, tc.expected, got)
		}
	}
}

func TestPredictOrder(t *testing.T) {
	sexTree := tree.New(tree.NewSplit(1, 0, tree.NewLeaf(0), tree.NewLeaf(1)), 4)
	f := NewForest([]*tree.Tree{sexTree, sexTree, sexTree}, 4)
	var rows []dataset.Row
	var expected []int
	for i := 0; i < 1000; i++ {
		rows = append(rows, dataset.Row{3, float64(i % 2), 0, 0})
		expected = append(expected, i%2)
	}
	ds, err := dataset.New(rows, nil)
	if err != nil {
		t.Fatalf("dataset.New returned error: %v", err)
	}
	labels, err := f.Predict(context.Background(), ds)
	if err != nil {
		t.Fatalf("Predict returned error: %v", err)
	}
	if !reflect.DeepEqual(labels, expected) {
		t.Errorf("expected predictions in row order")
	}
}

func TestPredictErrors(t *testing.T) {
	ctx := context.Background()
	narrow, err := dataset.New([]dataset.Row{{3, 1, 1}}, nil)
	if err != nil {
		t.Fatalf("dataset.New returned error: %v", err)
	}
	_, err = leafForest(1).Predict(ctx, narrow)
	var sme *tree.ShapeMismatchError
	if !errors.As(err, &sme) || sme.Expected != 4 || sme.Got != 3 {
		t.Errorf("expected shape mismatch 4/3, got %T %v", err, err)
	}
	_, err = NewForest(nil, 4).Predict(ctx, narrow)
	var ce *tree.ConfigurationError
	if !errors.As(err, &ce) {
		t.Errorf("expected *tree.ConfigurationError, got %T %v", err, err)
	}
	empty, err := dataset.New(nil, nil)
	if err != nil {
		t.Fatalf("dataset.New returned error: %v", err)
	}
	labels, err := leafForest(1).Predict(ctx, empty)
	if err != nil || len(labels) != 0 {
		t.Errorf("expected no predictions, got %v %v", labels, err)
	}
	if _, err = leafForest(1).Test(ctx, narrow); err == nil {
		t.Errorf("expected error testing with an unlabeled dataset")
	}
}

func TestResults(t *testing.T) {
	results := Results([]int{0, 1, 1}, 892)
	expected := []Prediction{{892, 0}, {893, 1}, {894, 1}}
	if !reflect.DeepEqual(results, expected) {
		t.Errorf("expected %v, got %v", expected, results)
	}
	if len(Results(nil, DefaultOffset)) != 0 {
		t.Errorf("expected no results for no labels")
	}
}

func TestJSONForest(t *testing.T) {
	f, err := Train(context.Background(), passengers(t), testConfig())
	if err != nil {
		t.Fatalf("Train returned error: %v", err)
	}
	f.Names = []string{"Pclass", "Sex", "SibSp", "Parch"}
	f.Label = "Survived"
	buf := &bytes.Buffer{}
	if err = WriteJSONForest(buf, f); err != nil {
		t.Fatalf("WriteJSONForest returned error: %v", err)
	}
	read, err := ReadJSONForest(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("ReadJSONForest returned error: %v", err)
	}
	if !reflect.DeepEqual(f, read) {
		t.Errorf("expected forest read to equal forest written")
	}
	unnamed := leafForest(0)
	buf.Reset()
	if err = WriteJSONForest(buf, unnamed); err != nil {
		t.Fatalf("WriteJSONForest returned error: %v", err)
	}
	if !strings.Contains(buf.String(), `"features":["#0","#1","#2","#3"]`) {
		t.Errorf("expected features named by index, got %s", buf.String())
	}
	for _, doc := range []string{
		`{"features":[],"trees":[]}`,
		`{"features":["a","b"],"trees":[{"features":3,"root":{"c":0}}]}`,
		`{"features":["a"],"trees":[null]}`,
		`{"features":`,
	} {
		if _, err = ReadJSONForest(strings.NewReader(doc)); err == nil {
			t.Errorf("expected error reading %s", doc)
		}
	}
}

func TestParseConfig(t *testing.T) {
	c, err := ParseConfig([]byte("tree_count: 10\nseed: 7\ncriterion: entropy\n"))
	if err != nil {
		t.Fatalf("ParseConfig returned error: %v", err)
	}
	expected := DefaultConfig()
	expected.TreeCount = 10
	expected.Seed = 7
	expected.Criterion = "entropy"
	if !reflect.DeepEqual(c, expected) {
		t.Errorf("expected %v, got %v", expected, c)
	}
	if _, err = ParseConfig([]byte("trees: 10\n")); err == nil {
		t.Errorf("expected error parsing unknown keys")
	}
	if err = DefaultConfig().Validate(4); err != nil {
		t.Errorf("expected default configuration to be valid, got %v", err)
	}
}
