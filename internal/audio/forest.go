package audio

import "fmt"

// Tree is a decision tree stored as a flat node array; node 0 is the root.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Node is one tree node. Feature is -1 at leaves, where Probs holds the
// class distribution. Interior nodes send x[Feature] <= Threshold left.
type Node struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold"`
	Left      int       `json:"left"`
	Right     int       `json:"right"`
	Probs     []float64 `json:"probs,omitempty"`
}

// classify walks the tree and returns the reached leaf's class distribution.
// The vector must already be preprocessed.
func (t Tree) classify(x []float64) []float64 {
	i := 0
	for {
		node := t.Nodes[i]
		if node.Feature < 0 {
			return node.Probs
		}
		if x[node.Feature] <= node.Threshold {
			i = node.Left
		} else {
			i = node.Right
		}
	}
}

// validate checks node indices, feature references and leaf distributions
// against the artifact's feature and label counts.
func (t Tree) validate(numFeatures, numLabels int) error {
	if len(t.Nodes) == 0 {
		return fmt.Errorf("empty tree")
	}
	for i, node := range t.Nodes {
		if node.Feature < 0 {
			if len(node.Probs) != numLabels {
				return fmt.Errorf("node %d: leaf has %d probabilities, want %d", i, len(node.Probs), numLabels)
			}
			continue
		}
		if node.Feature >= numFeatures {
			return fmt.Errorf("node %d: feature index %d out of range", i, node.Feature)
		}
		// Children must exist and point forward, which also rules out cycles.
		if node.Left <= i || node.Left >= len(t.Nodes) {
			return fmt.Errorf("node %d: bad left child %d", i, node.Left)
		}
		if node.Right <= i || node.Right >= len(t.Nodes) {
			return fmt.Errorf("node %d: bad right child %d", i, node.Right)
		}
	}
	return nil
}
