package tree

/*
Node is a node of the tree
*/
type Node struct {
	// The class predicted for rows that reach the node. Internal
	// nodes keep the majority class of their training rows too.
	Class int
	// The index in the row of the feature the node splits on.
	// Only meaningful for internal nodes.
	Feature int
	// Rows whose value for Feature is lower than or equal to the
	// threshold continue on the Left subtree, the rest on the Right one.
	Threshold float64
	// The subtrees of an internal node, both nil for leaves.
	// They are owned by this node alone.
	Left, Right *Node
	// The number of training rows that reached the node
	Samples int
	// The impurity of the labels of the training rows that
	// reached the node
	Impurity float64
}

// Leaf returns whether the node is a leaf of the tree
func (n *Node) Leaf() bool {
	return n.Left == nil || n.Right == nil
}

// NewLeaf returns a leaf node predicting the given class
func NewLeaf(class int) *Node {
	return &Node{Class: class}
}

// NewSplit returns an internal node sending rows with a value for the
// given feature lower than or equal to the threshold to the left subtree
// and the rest to the right one.
func NewSplit(feature int, threshold float64, left, right *Node) *Node {
	return &Node{Feature: feature, Threshold: threshold, Left: left, Right: right}
}
