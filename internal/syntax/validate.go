package syntax

import (
	"fmt"

	"cscpp/internal/diag"
	"cscpp/internal/source"
)

// Validate checks the structural layout every renderer relies on: child
// counts and kinds, non-empty names, and that each node has a single parent.
// Problems are reported as GenMalformedTree; the result is false if any was found.
func Validate(t *Tree, r diag.Reporter) bool {
	v := validator{tree: t, reporter: r, parent: make(map[NodeID]NodeID, t.Len())}
	root := t.Node(t.Root)
	if root == nil {
		v.fail(source.Span{}, "tree has no root node")
		return false
	}
	if root.Kind != KindCompilationUnit {
		v.fail(root.Span, fmt.Sprintf("root must be a CompilationUnit, got %s", root.Kind))
		return false
	}

	for i := range t.Nodes {
		id := NodeID(i + 1) // #nosec G115 -- Builder bounds len(Nodes)
		for _, c := range t.Nodes[i].Children {
			if t.Node(c) == nil {
				v.fail(t.Nodes[i].Span, fmt.Sprintf("%s has a dangling child %d", t.Nodes[i].Kind, c))
				continue
			}
			if c == t.Root {
				v.fail(t.Nodes[i].Span, "root appears as a child")
				continue
			}
			if prev, dup := v.parent[c]; dup {
				v.fail(t.Node(c).Span, fmt.Sprintf("node %d has two parents (%d and %d)", c, prev, id))
				continue
			}
			v.parent[c] = id
		}
	}
	if v.failed {
		return false
	}

	// Every node reachable from the root has exactly one parent now, so the
	// walk below terminates.
	Inspect(t, t.Root, func(id NodeID, n *Node, _ []NodeID) bool {
		v.checkNode(id, n)
		return true
	})
	return !v.failed
}

type validator struct {
	tree     *Tree
	reporter diag.Reporter
	parent   map[NodeID]NodeID
	failed   bool
}

func (v *validator) fail(sp source.Span, msg string) {
	v.failed = true
	if v.reporter != nil {
		v.reporter.Report(diag.GenMalformedTree, diag.SevError, sp, msg, nil)
	}
}

func (v *validator) checkNode(id NodeID, n *Node) {
	switch n.Kind {
	case KindCompilationUnit:
		ch := n.Children
		if len(ch) == 0 {
			v.fail(n.Span, "compilation unit has no top-level member")
			return
		}
		for _, c := range ch[:len(ch)-1] {
			v.expectKind(n, c, "using directive", KindUsingDirective)
		}
		last := v.tree.Node(ch[len(ch)-1])
		if last.Kind != KindNamespaceDecl && last.Kind != KindClassDecl && last.Kind != KindUnsupported {
			v.fail(last.Span, fmt.Sprintf("top-level member must be a namespace or class, got %s", last.Kind))
		}
	case KindUsingDirective, KindIdentifierName, KindLiteralExpr, KindPredefinedType:
		v.expectText(n)
		v.expectArity(n, 0)
	case KindUnsupported:
		v.expectText(n)
	case KindNamespaceDecl, KindClassDecl:
		v.expectText(n)
		for _, c := range n.Children {
			if k := v.tree.Node(c).Kind; !k.IsMember() || (n.Kind == KindNamespaceDecl && k == KindMethodDecl) {
				v.fail(v.tree.Node(c).Span, fmt.Sprintf("%s cannot contain %s", n.Kind, k))
			}
		}
	case KindMethodDecl:
		v.expectText(n)
		if v.expectArity(n, 3) {
			v.expectType(n, n.Children[0])
			v.expectKind(n, n.Children[1], "parameter list", KindParameterList)
			v.expectKind(n, n.Children[2], "body", KindBlock)
		}
	case KindParameterList:
		for _, c := range n.Children {
			v.expectKind(n, c, "parameter", KindParameter)
		}
	case KindParameter:
		v.expectText(n)
		if v.expectArity(n, 1) {
			v.expectType(n, n.Children[0])
		}
	case KindBlock:
		for _, c := range n.Children {
			if k := v.tree.Node(c).Kind; !k.IsStmt() {
				v.fail(v.tree.Node(c).Span, fmt.Sprintf("%s is not a statement", k))
			}
		}
	case KindExpressionStatement, KindArgument:
		if v.expectArity(n, 1) {
			v.expectExpr(n, n.Children[0])
		}
	case KindInvocationExpr:
		if v.expectArity(n, 2) {
			v.expectExpr(n, n.Children[0])
			v.expectKind(n, n.Children[1], "argument list", KindArgumentList)
		}
	case KindMemberAccessExpr:
		if v.expectArity(n, 2) {
			v.expectExpr(n, n.Children[0])
			v.expectKind(n, n.Children[1], "member name", KindIdentifierName)
		}
	case KindArgumentList:
		for _, c := range n.Children {
			v.expectKind(n, c, "argument", KindArgument)
		}
	case KindArrayType:
		if v.expectArity(n, 1) {
			v.expectType(n, n.Children[0])
		}
	default:
		v.fail(n.Span, fmt.Sprintf("node %d has invalid kind %s", id, n.Kind))
	}
}

func (v *validator) expectText(n *Node) {
	if n.Text == "" {
		v.fail(n.Span, fmt.Sprintf("%s has no name", n.Kind))
	}
}

func (v *validator) expectArity(n *Node, want int) bool {
	if len(n.Children) != want {
		v.fail(n.Span, fmt.Sprintf("%s must have %d children, got %d", n.Kind, want, len(n.Children)))
		return false
	}
	return true
}

func (v *validator) expectKind(parent *Node, c NodeID, role string, want Kind) {
	if got := v.tree.Node(c).Kind; got != want {
		v.fail(v.tree.Node(c).Span, fmt.Sprintf("%s %s: expected %s, got %s", parent.Kind, role, want, got))
	}
}

func (v *validator) expectType(parent *Node, c NodeID) {
	if got := v.tree.Node(c).Kind; !got.IsType() {
		v.fail(v.tree.Node(c).Span, fmt.Sprintf("%s: %s is not a type", parent.Kind, got))
	}
}

func (v *validator) expectExpr(parent *Node, c NodeID) {
	if got := v.tree.Node(c).Kind; !got.IsExpr() {
		v.fail(v.tree.Node(c).Span, fmt.Sprintf("%s: %s is not an expression", parent.Kind, got))
	}
}
