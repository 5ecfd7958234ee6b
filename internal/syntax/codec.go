package syntax

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Encode serializes t to msgpack. The output is deterministic for equal trees.
func Encode(t *Tree) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.UseCompactInts(true)
	if err := enc.Encode(t); err != nil {
		return nil, fmt.Errorf("encode tree %q: %w", t.Path, err)
	}
	return buf.Bytes(), nil
}

// Decode is the inverse of Encode.
func Decode(data []byte) (*Tree, error) {
	var t Tree
	if err := msgpack.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode tree: %w", err)
	}
	return &t, nil
}

type dumpNode struct {
	ID        NodeID     `json:"id"`
	Kind      string     `json:"kind"`
	Text      string     `json:"text,omitempty"`
	Modifiers []string   `json:"modifiers,omitempty"`
	Span      [2]uint32  `json:"span"`
	Children  []dumpNode `json:"children,omitempty"`
}

// Dump renders the subtree at the root as indented JSON with kind names.
func Dump(t *Tree) ([]byte, error) {
	if t.Node(t.Root) == nil {
		return nil, fmt.Errorf("dump %q: tree has no root", t.Path)
	}
	view := struct {
		Path string   `json:"path"`
		Root dumpNode `json:"root"`
	}{Path: t.Path, Root: dumpOf(t, t.Root, 0)}
	return json.MarshalIndent(view, "", "  ")
}

func dumpOf(t *Tree, id NodeID, depth int) dumpNode {
	n := t.Node(id)
	out := dumpNode{
		ID:        id,
		Kind:      n.Kind.String(),
		Text:      n.Text,
		Modifiers: n.Modifiers,
		Span:      [2]uint32{n.Span.Start, n.Span.End},
	}
	// Dump only runs on validated trees; the bound keeps a corrupt one finite.
	if depth > 4096 {
		return out
	}
	for _, c := range n.Children {
		if t.Node(c) != nil {
			out.Children = append(out.Children, dumpOf(t, c, depth+1))
		}
	}
	return out
}
