package json

import (
	"reflect"
	"testing"

	"github.com/pbanos/grove/tree"
)

func TestTreeEncoding(t *testing.T) {
	root := tree.NewSplit(1, 0, tree.NewLeaf(0), tree.NewSplit(0, 2.5, tree.NewLeaf(1), tree.NewLeaf(0)))
	root.Samples = 10
	root.Impurity = 0.48
	tr := tree.New(root, 4)
	ted := New()
	data, err := ted.Encode(tr)
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	decoded, err := ted.Decode(data)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if !reflect.DeepEqual(tr, decoded) {
		t.Errorf("expected\n%v\ngot\n%v\nfrom %s", tr, decoded, data)
	}
}

func TestTreeDecodingErrors(t *testing.T) {
	testCases := []struct {
		name string
		data string
	}{
		{"no root", `{"features":4}`},
		{"no features", `{"root":{"c":1}}`},
		{"single child", `{"features":2,"root":{"c":0,"f":1,"t":0,"l":{"c":0}}}`},
		{"no threshold", `{"features":2,"root":{"c":0,"f":1,"l":{"c":0},"r":{"c":1}}}`},
		{"feature out of range", `{"features":2,"root":{"c":0,"f":2,"t":0,"l":{"c":0},"r":{"c":1}}}`},
		{"malformed", `{"features":2,"root":`},
	}
	for _, tc := range testCases {
		if _, err := New().Decode([]byte(tc.data)); err == nil {
			t.Errorf("%s: expected error decoding %s", tc.name, tc.data)
		}
	}
	if _, err := New().Encode(&tree.Tree{Features: 2}); err == nil {
		t.Errorf("expected error encoding a tree without root")
	}
}
