package syntax

import (
	"fmt"
	"slices"

	"cscpp/internal/source"
)

// NodeID indexes Tree.Nodes, 1-based.
type NodeID uint32

const NoNodeID NodeID = 0

func (id NodeID) IsValid() bool { return id != NoNodeID }

// Node is one element of the tree. Text holds the name, token or
// construct label depending on Kind; Modifiers is only used by declarations.
type Node struct {
	Kind      Kind        `msgpack:"k" json:"kind"`
	Span      source.Span `msgpack:"sp" json:"span"`
	Text      string      `msgpack:"t,omitempty" json:"text,omitempty"`
	Modifiers []string    `msgpack:"m,omitempty" json:"modifiers,omitempty"`
	Children  []NodeID    `msgpack:"c,omitempty" json:"children,omitempty"`
}

// Tree is a read-only compilation unit. The translator never mutates it.
type Tree struct {
	Path  string `msgpack:"path" json:"path"`
	Nodes []Node `msgpack:"nodes" json:"nodes"`
	Root  NodeID `msgpack:"root" json:"root"`
}

// Node returns the node for id, or nil when id is out of range.
func (t *Tree) Node(id NodeID) *Node {
	if t == nil || !id.IsValid() || int(id) > len(t.Nodes) {
		return nil
	}
	return &t.Nodes[id-1]
}

// Children returns the child ids of id.
func (t *Tree) Children(id NodeID) []NodeID {
	if n := t.Node(id); n != nil {
		return n.Children
	}
	return nil
}

// Child returns the i-th child of id or NoNodeID.
func (t *Tree) Child(id NodeID, i int) NodeID {
	ch := t.Children(id)
	if i < 0 || i >= len(ch) {
		return NoNodeID
	}
	return ch[i]
}

func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Nodes)
}

// HasModifier reports whether node id carries mod.
func (t *Tree) HasModifier(id NodeID, mod string) bool {
	if n := t.Node(id); n != nil {
		return slices.Contains(n.Modifiers, mod)
	}
	return false
}

// Clone returns a deep copy of t.
func (t *Tree) Clone() *Tree {
	if t == nil {
		return nil
	}
	out := &Tree{Path: t.Path, Root: t.Root, Nodes: make([]Node, len(t.Nodes))}
	for i, n := range t.Nodes {
		n.Modifiers = slices.Clone(n.Modifiers)
		n.Children = slices.Clone(n.Children)
		out.Nodes[i] = n
	}
	return out
}

func (n *Node) String() string {
	if n.Text == "" {
		return n.Kind.String()
	}
	return fmt.Sprintf("%s(%s)", n.Kind, n.Text)
}
