package syntax

// Inspect walks the subtree at root in pre-order without recursion.
// fn receives the ancestors of id (outermost first); returning false skips
// the node's children. Nodes reachable twice are visited twice; use
// Validate to reject such trees.
func Inspect(t *Tree, root NodeID, fn func(id NodeID, n *Node, ancestors []NodeID) bool) {
	type frame struct {
		id    NodeID
		depth int
	}
	stack := []frame{{id: root}}
	var path []NodeID
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		path = path[:top.depth]

		n := t.Node(top.id)
		if n == nil {
			continue
		}
		if !fn(top.id, n, path) {
			continue
		}
		path = append(path, top.id)
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{id: n.Children[i], depth: top.depth + 1})
		}
	}
}

// Find returns every node of kind k under root in pre-order.
func Find(t *Tree, root NodeID, k Kind) []NodeID {
	var out []NodeID
	Inspect(t, root, func(id NodeID, n *Node, _ []NodeID) bool {
		if n.Kind == k {
			out = append(out, id)
		}
		return true
	})
	return out
}

// Depth returns the height of the subtree at root (a leaf has depth 1).
func Depth(t *Tree, root NodeID) int {
	best := 0
	Inspect(t, root, func(_ NodeID, _ *Node, ancestors []NodeID) bool {
		if d := len(ancestors) + 1; d > best {
			best = d
		}
		return true
	})
	return best
}
