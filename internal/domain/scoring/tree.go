package scoring

import "fmt"

// TreeNode is one node of a binary decision tree stored as a flat slice.
// Internal nodes send a sample left when its feature value is <= Threshold.
type TreeNode struct {
	FeatureIdx int     `yaml:"feature_idx" json:"feature_idx"`
	Feature    string  `yaml:"feature,omitempty" json:"feature,omitempty"`
	Threshold  float64 `yaml:"threshold" json:"threshold"`
	LeftChild  int     `yaml:"left_child" json:"left_child"`
	RightChild int     `yaml:"right_child" json:"right_child"`
	Value      float64 `yaml:"value" json:"value"`
	IsLeaf     bool    `yaml:"is_leaf" json:"is_leaf"`
}

// Tree is a decision tree rooted at Nodes[0].
type Tree struct {
	Nodes []TreeNode `yaml:"nodes" json:"nodes"`
}

// validate rejects trees that could index out of range or loop. Children must
// sit after their parent, which every pre-order export satisfies.
func (t Tree) validate() error {
	if len(t.Nodes) == 0 {
		return fmt.Errorf("%w: empty tree", ErrInvalidArtifact)
	}
	for i, n := range t.Nodes {
		if n.IsLeaf {
			continue
		}
		for _, c := range [2]int{n.LeftChild, n.RightChild} {
			if c <= i || c >= len(t.Nodes) {
				return fmt.Errorf("%w: node %d has child %d", ErrInvalidArtifact, i, c)
			}
		}
	}
	return nil
}

// walk follows the tree to a leaf. value returns the split feature's value
// for an internal node.
func (t Tree) walk(value func(TreeNode) (float64, error)) (float64, error) {
	idx := 0
	for {
		n := t.Nodes[idx]
		if n.IsLeaf {
			return n.Value, nil
		}
		v, err := value(n)
		if err != nil {
			return 0, err
		}
		if v <= n.Threshold {
			idx = n.LeftChild
		} else {
			idx = n.RightChild
		}
	}
}
