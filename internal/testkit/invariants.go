package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"cscpp/internal/source"
	"cscpp/internal/syntax"
)

// CheckSpanInvariants verifies spans of a parsed tree against its file:
// 1) every span is ordered and within the file content
// 2) every span points at sf
// 3) a non-empty child span lies inside its parent's non-empty span
func CheckSpanInvariants(t *syntax.Tree, sf *source.File) error {
	if t == nil || sf == nil {
		return fmt.Errorf("nil tree or file")
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}

	var failure error
	syntax.Inspect(t, t.Root, func(id syntax.NodeID, n *syntax.Node, ancestors []syntax.NodeID) bool {
		if failure != nil {
			return false
		}
		sp := n.Span
		switch {
		case sp.End < sp.Start:
			failure = fmt.Errorf("node %d (%s): inverted span %v", id, n, sp)
		case sp.End > lenContent:
			failure = fmt.Errorf("node %d (%s): span %v beyond content length %d", id, n, sp, lenContent)
		case sp.File != sf.ID:
			failure = fmt.Errorf("node %d (%s): span file %d, want %d", id, n, sp.File, sf.ID)
		}
		if failure != nil || len(ancestors) == 0 || sp.Empty() {
			return failure == nil
		}
		parent := t.Node(ancestors[len(ancestors)-1])
		if !parent.Span.Empty() && (sp.Start < parent.Span.Start || sp.End > parent.Span.End) {
			failure = fmt.Errorf("node %d (%s): span %v outside parent %s span %v", id, n, sp, parent, parent.Span)
		}
		return failure == nil
	})
	return failure
}

// CheckScopeBalanced fails when a traversal left a method, class or block open.
func CheckScopeBalanced(s interface{ Balanced() bool }) error {
	if !s.Balanced() {
		return fmt.Errorf("scope left unbalanced after traversal")
	}
	return nil
}
