package ml

import (
	"fmt"

	"github.com/bibbank/creditrisk/internal/domain/model"
)

// Node is one decision tree node. A node with Leaf set returns Value, the
// positive-class probability of its training samples. A split sends the row
// left when the numeric value is <= Threshold, or, for categorical splits,
// when the level is one of Categories.
type Node struct {
	Feature    string   `json:"feature,omitempty"`
	Categories []string `json:"categories,omitempty"`
	Threshold  float64  `json:"threshold,omitempty"`
	Value      float64  `json:"value,omitempty"`
	Left       int      `json:"left,omitempty"`
	Right      int      `json:"right,omitempty"`
	Leaf       bool     `json:"leaf,omitempty"`
}

// Tree is a flat node array rooted at index 0.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// ForestModel averages the leaf probabilities of its trees. Missing numeric
// inputs take the value from Impute, or 0 when absent there.
type ForestModel struct {
	Impute map[string]float64 `json:"impute,omitempty"`
	Trees  []Tree             `json:"trees"`
}

// PredictProba implements Model.
func (m *ForestModel) PredictProba(row model.FeatureRow) (float64, error) {
	var sum float64
	for i, tree := range m.Trees {
		p, err := m.walk(tree, row)
		if err != nil {
			return 0, fmt.Errorf("tree %d: %w", i, err)
		}
		sum += p
	}
	return sum / float64(len(m.Trees)), nil
}

func (m *ForestModel) walk(tree Tree, row model.FeatureRow) (float64, error) {
	idx := 0
	// A well-formed tree reaches a leaf in fewer steps than it has nodes.
	for steps := 0; steps <= len(tree.Nodes); steps++ {
		n := tree.Nodes[idx]
		if n.Leaf {
			return n.Value, nil
		}

		left, err := m.goesLeft(n, row)
		if err != nil {
			return 0, err
		}
		if left {
			idx = n.Left
		} else {
			idx = n.Right
		}
	}
	return 0, fmt.Errorf("node walk did not terminate")
}

func (m *ForestModel) goesLeft(n Node, row model.FeatureRow) (bool, error) {
	if len(n.Categories) > 0 {
		level, ok := categoricalValue(row, n.Feature)
		if !ok {
			return false, nil
		}
		for _, c := range n.Categories {
			if c == level {
				return true, nil
			}
		}
		return false, nil
	}

	x, ok, err := numericValue(row, n.Feature)
	if err != nil {
		return false, err
	}
	if !ok {
		x = m.Impute[n.Feature]
	}
	return x <= n.Threshold, nil
}

// Columns implements Model.
func (m *ForestModel) Columns() []string {
	var cols []string
	seen := make(map[string]struct{})
	for _, tree := range m.Trees {
		for _, n := range tree.Nodes {
			if n.Leaf || n.Feature == "" {
				continue
			}
			if _, ok := seen[n.Feature]; ok {
				continue
			}
			seen[n.Feature] = struct{}{}
			cols = append(cols, n.Feature)
		}
	}
	return cols
}

func (m *ForestModel) validate() error {
	if len(m.Trees) == 0 {
		return fmt.Errorf("forest model has no trees")
	}
	for i, tree := range m.Trees {
		if len(tree.Nodes) == 0 {
			return fmt.Errorf("tree %d has no nodes", i)
		}
		for j, n := range tree.Nodes {
			if n.Leaf {
				if n.Value < 0 || n.Value > 1 {
					return fmt.Errorf("tree %d node %d: leaf value %v outside [0,1]", i, j, n.Value)
				}
				continue
			}
			if n.Feature == "" {
				return fmt.Errorf("tree %d node %d: split without a feature", i, j)
			}
			if n.Left <= 0 || n.Left >= len(tree.Nodes) || n.Right <= 0 || n.Right >= len(tree.Nodes) {
				return fmt.Errorf("tree %d node %d: child index out of range", i, j)
			}
		}
	}
	return nil
}
