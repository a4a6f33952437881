package grove

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pbanos/grove/tree"
	jsontree "github.com/pbanos/grove/tree/json"
)

type jsonForest struct {
	Features []string         `json:"features"`
	Label    string           `json:"label,omitempty"`
	Trees    []*jsontree.Tree `json:"trees"`
}

/*
WriteJSONForest takes a writer and a forest and writes the forest to the
writer as a JSON object with the names of its features ("features"), the
name of the class it predicts ("label") and its trees ("trees"). Features
without a name are written as their index prefixed with #.
*/
func WriteJSONForest(w io.Writer, f *Forest) error {
	jf := &jsonForest{Features: make([]string, f.Features), Label: f.Label}
	for i := range jf.Features {
		if i < len(f.Names) {
			jf.Features[i] = f.Names[i]
		} else {
			jf.Features[i] = fmt.Sprintf("#%d", i)
		}
	}
	for i, t := range f.Trees {
		jt, err := jsontree.FromTree(t)
		if err != nil {
			return fmt.Errorf("encoding tree %d: %v", i, err)
		}
		jf.Trees = append(jf.Trees, jt)
	}
	enc := json.NewEncoder(w)
	err := enc.Encode(jf)
	if err != nil {
		return fmt.Errorf("writing forest: %v", err)
	}
	return nil
}

/*
ReadJSONForest takes a reader with a forest written by WriteJSONForest and
returns the forest, or an error if it cannot be read or any of its trees
classifies rows with a different number of features than the forest.
*/
func ReadJSONForest(r io.Reader) (*Forest, error) {
	jf := &jsonForest{}
	err := json.NewDecoder(r).Decode(jf)
	if err != nil {
		return nil, fmt.Errorf("reading forest: %v", err)
	}
	if len(jf.Features) == 0 {
		return nil, fmt.Errorf("reading forest: no features")
	}
	f := &Forest{Features: len(jf.Features), Names: jf.Features, Label: jf.Label}
	for i, jt := range jf.Trees {
		if jt == nil {
			return nil, fmt.Errorf("reading forest: tree %d is null", i)
		}
		t, err := jt.Tree()
		if err != nil {
			return nil, fmt.Errorf("reading forest: tree %d: %v", i, err)
		}
		if t.Features != f.Features {
			return nil, fmt.Errorf("reading forest: tree %d: %v", i, &tree.ShapeMismatchError{Expected: f.Features, Got: t.Features})
		}
		f.Trees = append(f.Trees, t)
	}
	return f, nil
}
