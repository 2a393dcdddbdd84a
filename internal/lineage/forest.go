// Package lineage rebuilds artifact version trees from a flat collection.
//
// Everything here is a pure function of its input: callers pass a snapshot of a
// session's collection and get back a fresh forest.
package lineage

import (
	"github.com/GoSim-25-26J-441/image-studio-backend/internal/artifacts/domain"
)

// Node is one artifact in the forest together with the artifacts derived from it.
type Node struct {
	Artifact domain.Artifact `json:"artifact"`
	Depth    int             `json:"depth"`
	Children []*Node         `json:"children"`
}

// ID returns the artifact id held by the node.
func (n *Node) ID() string { return n.Artifact.ID }

// Forest is the result of BuildForest.
//
// Duplicates lists ids that appeared more than once in the input (only the first
// record is kept). Broken lists ids whose parent link was cut to break a cycle.
type Forest struct {
	Roots      []*Node  `json:"roots"`
	Duplicates []string `json:"duplicates,omitempty"`
	Broken     []string `json:"broken,omitempty"`
}

// BuildForest links every artifact under its parent and returns the roots in
// input order. An artifact whose parent is missing from the input is a root.
// Every distinct id appears exactly once in the result.
func BuildForest(artifacts []domain.Artifact) Forest {
	var f Forest

	nodes := make(map[string]*Node, len(artifacts))
	order := make([]*Node, 0, len(artifacts))
	for _, a := range artifacts {
		if _, seen := nodes[a.ID]; seen {
			f.Duplicates = append(f.Duplicates, a.ID)
			continue
		}
		n := &Node{Artifact: a, Children: []*Node{}}
		nodes[a.ID] = n
		order = append(order, n)
	}

	parent := make(map[string]*Node, len(order))
	for _, n := range order {
		if !n.Artifact.HasParent() {
			continue
		}
		p, ok := nodes[n.Artifact.ParentID]
		if !ok {
			continue
		}
		if hasChild(p, n.ID()) {
			continue
		}
		p.Children = append(p.Children, n)
		parent[n.ID()] = p
	}

	// Anything not reachable from a parentless node hangs off a cycle. For each
	// cycle, cut the link of the member that comes first in the input.
	pos := make(map[string]int, len(order))
	reached := make(map[string]bool, len(order))
	for i, n := range order {
		pos[n.ID()] = i
		if _, linked := parent[n.ID()]; !linked {
			mark(n, reached)
		}
	}
	for _, n := range order {
		if reached[n.ID()] {
			continue
		}
		cut := cycleHead(n, parent, pos)
		p := parent[cut.ID()]
		p.Children = removeChild(p.Children, cut.ID())
		delete(parent, cut.ID())
		f.Broken = append(f.Broken, cut.ID())
		mark(cut, reached)
	}

	for _, n := range order {
		if _, linked := parent[n.ID()]; !linked {
			f.Roots = append(f.Roots, n)
		}
	}
	for _, r := range f.Roots {
		setDepth(r, 0)
	}
	if f.Roots == nil {
		f.Roots = []*Node{}
	}
	return f
}

// Size returns the number of nodes in the forest.
func (f Forest) Size() int {
	count := 0
	Walk(f, func(*Node) bool {
		count++
		return true
	})
	return count
}

func hasChild(p *Node, id string) bool {
	for _, c := range p.Children {
		if c.ID() == id {
			return true
		}
	}
	return false
}

func removeChild(children []*Node, id string) []*Node {
	out := children[:0]
	for _, c := range children {
		if c.ID() != id {
			out = append(out, c)
		}
	}
	return out
}

// cycleHead follows parent links from n until one repeats, then returns the
// cycle member with the lowest input position.
func cycleHead(n *Node, parent map[string]*Node, pos map[string]int) *Node {
	seen := map[string]bool{}
	cur := n
	for !seen[cur.ID()] {
		seen[cur.ID()] = true
		cur = parent[cur.ID()]
	}
	best := cur
	for x := parent[cur.ID()]; x != cur; x = parent[x.ID()] {
		if pos[x.ID()] < pos[best.ID()] {
			best = x
		}
	}
	return best
}

func mark(n *Node, reached map[string]bool) {
	stack := []*Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if reached[cur.ID()] {
			continue
		}
		reached[cur.ID()] = true
		stack = append(stack, cur.Children...)
	}
}

func setDepth(n *Node, depth int) {
	n.Depth = depth
	for _, c := range n.Children {
		setDepth(c, depth+1)
	}
}
