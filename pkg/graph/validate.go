package graph

import (
	"github.com/matzehuels/reveal/pkg/errors"
)

// Validate checks structural constraints that do not depend on the
// simulation: every node is present and has a unique, non-empty id, and no
// link entry is null.
func Validate(doc *Document) error {
	seen := make(map[string]struct{}, len(doc.Nodes))
	for i, n := range doc.Nodes {
		if n == nil {
			return errors.New(errors.ErrCodeInvalidDocument, "node %d is null", i)
		}
		if n.ID == "" {
			return errors.New(errors.ErrCodeInvalidDocument, "node %d has no id", i)
		}
		if _, dup := seen[n.ID]; dup {
			return errors.New(errors.ErrCodeDuplicateNode, "duplicate node id %q", n.ID)
		}
		seen[n.ID] = struct{}{}
	}
	for i, l := range doc.Links {
		if l == nil {
			return errors.New(errors.ErrCodeInvalidDocument, "link %d is null", i)
		}
	}
	return nil
}

// Index maps node ids to nodes. Later duplicates win, matching a plain map
// built in document order.
func Index(nodes []*Node) map[string]*Node {
	m := make(map[string]*Node, len(nodes))
	for _, n := range nodes {
		m[n.ID] = n
	}
	return m
}

// Resolve points every link's Source and Target at the node with the
// matching id. The first link endpoint that names a missing node fails with
// UNRESOLVED_REFERENCE; no link is skipped, and on failure no link is
// touched.
func Resolve(nodes []*Node, links []*Link) error {
	byID := Index(nodes)
	for i, l := range links {
		for _, id := range [2]string{l.SourceID, l.TargetID} {
			if _, ok := byID[id]; !ok {
				return errors.New(errors.ErrCodeUnresolvedReference, "link %d: node not found: %q", i, id)
			}
		}
	}
	for i, l := range links {
		l.Index = i
		l.Source, l.Target = byID[l.SourceID], byID[l.TargetID]
	}
	return nil
}
