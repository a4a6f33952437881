/*
Package json encodes trees as JSON documents and decodes them back.
*/
package json

import (
	"encoding/json"
	"fmt"

	"github.com/pbanos/grove/tree"
)

/*
TreeEncodeDecoder is an interface for objects
that allow encoding trees into slices of
bytes and decoding them back to trees.
*/
type TreeEncodeDecoder interface {

	//Encode receives a *tree.Tree
	// and returns a slice of bytes with the tree
	//encoded or an error if the encoding could not
	//be performed for some reason.
	Encode(*tree.Tree) ([]byte, error)

	//Decode receives a slice of bytes
	//and returns a *tree.Tree decoded from the
	//slice of bytes or an error if the decoding
	//could not be performed for some reason.
	Decode([]byte) (*tree.Tree, error)
}

type treeEncodeDecoder struct{}

/*
Tree is the JSON representation of a tree.Tree: an object with
a "features" property with the number of features of the rows
it classifies and a "root" property with its root node.
*/
type Tree struct {
	Features int   `json:"features"`
	Root     *Node `json:"root"`
}

/*
Node is the JSON representation of a tree.Node. Leaves only have
the class ("c") and training information ("n" samples and "i"
impurity). Internal nodes also have the feature index ("f"),
threshold ("t") and left and right subtrees ("l" and "r").
*/
type Node struct {
	Class     int      `json:"c"`
	Feature   *int     `json:"f,omitempty"`
	Threshold *float64 `json:"t,omitempty"`
	Left      *Node    `json:"l,omitempty"`
	Right     *Node    `json:"r,omitempty"`
	Samples   int      `json:"n,omitempty"`
	Impurity  float64  `json:"i,omitempty"`
}

// New returns a TreeEncodeDecoder that encodes trees as
// JSON objects as described by the Tree type.
func New() TreeEncodeDecoder {
	return &treeEncodeDecoder{}
}

func (ted *treeEncodeDecoder) Encode(t *tree.Tree) ([]byte, error) {
	jt, err := FromTree(t)
	if err != nil {
		return nil, err
	}
	return json.Marshal(jt)
}

func (ted *treeEncodeDecoder) Decode(data []byte) (*tree.Tree, error) {
	jt := &Tree{}
	err := json.Unmarshal(data, jt)
	if err != nil {
		return nil, err
	}
	return jt.Tree()
}

// FromTree takes a tree and returns its JSON representation
// or an error if the tree has no root.
func FromTree(t *tree.Tree) (*Tree, error) {
	if t == nil || t.Root == nil {
		return nil, fmt.Errorf("encoding tree: no root node")
	}
	return &Tree{Features: t.Features, Root: fromNode(t.Root)}, nil
}

func fromNode(n *tree.Node) *Node {
	jn := &Node{Class: n.Class, Samples: n.Samples, Impurity: n.Impurity}
	if !n.Leaf() {
		feature, threshold := n.Feature, n.Threshold
		jn.Feature = &feature
		jn.Threshold = &threshold
		jn.Left = fromNode(n.Left)
		jn.Right = fromNode(n.Right)
	}
	return jn
}

// Tree returns the tree.Tree the JSON representation stands
// for or an error if it is not a valid tree.
func (jt *Tree) Tree() (*tree.Tree, error) {
	if jt.Root == nil {
		return nil, fmt.Errorf("decoding tree: no root node")
	}
	if jt.Features < 1 {
		return nil, fmt.Errorf("decoding tree: invalid number of features %d", jt.Features)
	}
	root, err := jt.Root.node(jt.Features)
	if err != nil {
		return nil, fmt.Errorf("decoding tree: %v", err)
	}
	return tree.New(root, jt.Features), nil
}

func (jn *Node) node(features int) (*tree.Node, error) {
	n := &tree.Node{Class: jn.Class, Samples: jn.Samples, Impurity: jn.Impurity}
	if jn.Left == nil && jn.Right == nil {
		return n, nil
	}
	if jn.Left == nil || jn.Right == nil || jn.Feature == nil || jn.Threshold == nil {
		return nil, fmt.Errorf("internal node must have feature, threshold and both subtrees")
	}
	if *jn.Feature < 0 || *jn.Feature >= features {
		return nil, fmt.Errorf("node splits on feature %d out of %d", *jn.Feature, features)
	}
	n.Feature = *jn.Feature
	n.Threshold = *jn.Threshold
	var err error
	n.Left, err = jn.Left.node(features)
	if err != nil {
		return nil, err
	}
	n.Right, err = jn.Right.node(features)
	if err != nil {
		return nil, err
	}
	return n, nil
}
