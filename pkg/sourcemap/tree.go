package sourcemap

import (
	"github.com/charmbracelet/lipgloss/tree"
)

// CycleMark is appended to a module that is already being expanded higher
// up the same branch.
const CycleMark = " ↺"

// Tree builds the nested requires of script. maxDepth counts levels
// including the root (1 prints only the root); 0 means no limit. A module
// already on the current branch is shown with [CycleMark] and not expanded
// again. Labels are the ids [RequireMap.Document] gives the same instances.
func (m *RequireMap) Tree(script *Node, maxDepth int) *tree.Tree {
	ids, _ := m.IDs()
	label := func(n *Node) string {
		if id, ok := ids[n]; ok {
			return id
		}
		return n.ID()
	}
	return m.subtree(script, label, maxDepth, 1, make(map[*Node]bool))
}

func (m *RequireMap) subtree(n *Node, label func(*Node) string, maxDepth, depth int, branch map[*Node]bool) *tree.Tree {
	t := tree.Root(label(n))
	if maxDepth > 0 && depth >= maxDepth {
		return t
	}
	branch[n] = true
	defer delete(branch, n)

	for _, d := range m.Requires[n] {
		if branch[d.Module] {
			t.Child(label(d.Module) + CycleMark)
			continue
		}
		t.Child(m.subtree(d.Module, label, maxDepth, depth+1, branch))
	}
	return t
}
