package lineage

import (
	"fmt"
	"strings"
)

// ToDOT renders the forest as a Graphviz digraph, parent -> child.
func ToDOT(f Forest, title, selectedID string) string {
	var b strings.Builder
	b.WriteString("digraph lineage {\n  rankdir=TB;\n  node [shape=box, style=rounded];\n")
	if title != "" {
		b.WriteString(fmt.Sprintf(`  labelloc="t"; label="%s"; fontname="Helvetica";`, escape(title)))
		b.WriteString("\n")
	}

	Walk(f, func(n *Node) bool {
		style := `style="rounded,filled",fillcolor="#eef6ff"`
		if n.Depth == 0 {
			style = `style="rounded,filled",fillcolor="#fff3cd"`
		}
		if n.ID() == selectedID {
			style += `,penwidth=3`
		}
		b.WriteString(fmt.Sprintf(`  "%s" [label="%s", %s];`+"\n", escape(n.ID()), escape(label(n)), style))
		return true
	})

	Walk(f, func(n *Node) bool {
		for _, c := range n.Children {
			b.WriteString(fmt.Sprintf(`  "%s" -> "%s";`+"\n", escape(n.ID()), escape(c.ID())))
		}
		return true
	})

	b.WriteString("}\n")
	return b.String()
}

func label(n *Node) string {
	p := n.Artifact.Prompt
	if r := []rune(p); len(r) > 32 {
		p = string(r[:32]) + "..."
	}
	if p == "" {
		return n.ID()
	}
	return p
}

func escape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`).Replace(s)
}
