package lineage

import (
	"github.com/GoSim-25-26J-441/image-studio-backend/internal/artifacts/domain"
)

// Walk visits nodes depth-first in pre-order. Returning false from fn stops the walk.
func Walk(f Forest, fn func(*Node) bool) {
	stack := make([]*Node, 0, len(f.Roots))
	for i := len(f.Roots) - 1; i >= 0; i-- {
		stack = append(stack, f.Roots[i])
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(n) {
			return
		}
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, n.Children[i])
		}
	}
}

// Find returns the node with the given id anywhere in the forest.
func Find(f Forest, id string) (*Node, bool) {
	var found *Node
	Walk(f, func(n *Node) bool {
		if n.ID() == id {
			found = n
			return false
		}
		return true
	})
	return found, found != nil
}

// ParentOf resolves the "compare to parent" action against the flat collection,
// not the forest, so a parent cut loose by cycle breaking is still found.
func ParentOf(artifacts []domain.Artifact, selected domain.Artifact) (domain.Artifact, error) {
	if !selected.HasParent() {
		return domain.Artifact{}, domain.ErrNoParent
	}
	for _, a := range artifacts {
		if a.ID == selected.ParentID {
			return a, nil
		}
	}
	return domain.Artifact{}, domain.ErrParentNotLoaded
}

// Row is a flattened node for list-style rendering.
type Row struct {
	Artifact domain.Artifact `json:"artifact"`
	Depth    int             `json:"depth"`
	Selected bool            `json:"selected"`
	Children int             `json:"children"`
}

// Flatten lists the forest in pre-order with indentation depth and selection.
func Flatten(f Forest, selectedID string) []Row {
	rows := make([]Row, 0, len(f.Roots))
	Walk(f, func(n *Node) bool {
		rows = append(rows, Row{
			Artifact: n.Artifact,
			Depth:    n.Depth,
			Selected: selectedID != "" && n.ID() == selectedID,
			Children: len(n.Children),
		})
		return true
	})
	return rows
}
