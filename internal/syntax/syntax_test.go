package syntax

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"cscpp/internal/diag"
	"cscpp/internal/source"
)

var spanZero source.Span

func sampleTree() *Tree {
	b := NewBuilder("Program.cs", 0, 0)
	call := b.ExprStmt(b.Invoke(b.Path("Console", "WriteLine"), b.Literal(`"hi"`)))
	m := b.Method([]string{"public", "static"}, b.Predefined("void"), "M", nil, b.Block(call))
	c := b.Class("C", nil, m)
	ns := b.Namespace("NS", c)
	root := b.Unit([]NodeID{b.Using("Foo")}, ns)
	return b.Finish(root)
}

func TestValidateAcceptsBuilderTree(t *testing.T) {
	bag := diag.NewBag(10)
	if !Validate(sampleTree(), diag.BagReporter{Bag: bag}) {
		t.Fatalf("expected valid tree, got %d diagnostics: %+v", bag.Len(), bag.Items())
	}
}

func TestValidateRejectsMalformed(t *testing.T) {
	cases := []struct {
		name  string
		build func(b *Builder) NodeID
		want  string
	}{
		{
			name:  "root is not a unit",
			build: func(b *Builder) NodeID { return b.Namespace("NS") },
			want:  "root must be a CompilationUnit",
		},
		{
			name:  "missing member",
			build: func(b *Builder) NodeID { return b.Unit(nil, NoNodeID) },
			want:  "no top-level member",
		},
		{
			name: "method without body",
			build: func(b *Builder) NodeID {
				m := b.Add(KindMethodDecl, spanZero, "M", b.Predefined("void"))
				return b.Unit(nil, b.Class("C", nil, m))
			},
			want: "must have 3 children",
		},
		{
			name: "statement in namespace",
			build: func(b *Builder) NodeID {
				return b.Unit(nil, b.Namespace("NS", b.Block()))
			},
			want: "cannot contain Block",
		},
		{
			name: "shared child",
			build: func(b *Builder) NodeID {
				c := b.Class("C", nil)
				ns := b.Namespace("NS", c, c)
				return b.Unit(nil, ns)
			},
			want: "two parents",
		},
		{
			name: "dangling child",
			build: func(b *Builder) NodeID {
				return b.Unit(nil, b.Namespace("NS", NodeID(999)))
			},
			want: "dangling child",
		},
		{
			name: "empty identifier",
			build: func(b *Builder) NodeID {
				stmt := b.ExprStmt(b.Ident(""))
				m := b.Method(nil, b.Predefined("void"), "M", nil, b.Block(stmt))
				return b.Unit(nil, b.Class("C", nil, m))
			},
			want: "IdentifierName has no name",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := NewBuilder("bad.cs", 0, 0)
			tree := b.Finish(tc.build(b))
			bag := diag.NewBag(10)
			if Validate(tree, diag.BagReporter{Bag: bag}) {
				t.Fatalf("expected validation failure")
			}
			found := false
			for _, d := range bag.Items() {
				if d.Code != diag.GenMalformedTree {
					t.Fatalf("unexpected code %s", d.Code.ID())
				}
				if strings.Contains(d.Message, tc.want) {
					found = true
				}
			}
			if !found {
				t.Fatalf("no diagnostic mentions %q: %+v", tc.want, bag.Items())
			}
		})
	}
}

func TestEncodeDecodeStable(t *testing.T) {
	tree := sampleTree()
	first, err := Encode(tree)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	back, err := Decode(first)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	second, err := Encode(back)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("re-encoded tree differs")
	}
	if back.Len() != tree.Len() || back.Root != tree.Root || back.Path != tree.Path {
		t.Fatalf("decoded tree header mismatch")
	}
	if got := back.Node(back.Root).Kind; got != KindCompilationUnit {
		t.Fatalf("decoded root kind = %s", got)
	}
}

func TestDumpUsesKindNames(t *testing.T) {
	out, err := Dump(sampleTree())
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}
	var view struct {
		Path string `json:"path"`
		Root struct {
			Kind     string `json:"kind"`
			Children []struct {
				Kind string `json:"kind"`
				Text string `json:"text"`
			} `json:"children"`
		} `json:"root"`
	}
	if err := json.Unmarshal(out, &view); err != nil {
		t.Fatalf("unmarshal dump: %v", err)
	}
	if view.Root.Kind != "CompilationUnit" || len(view.Root.Children) != 2 {
		t.Fatalf("unexpected dump root: %+v", view.Root)
	}
	if c := view.Root.Children[0]; c.Kind != "UsingDirective" || c.Text != "Foo" {
		t.Fatalf("unexpected first child: %+v", c)
	}
}

func TestInspectAncestorsAndFind(t *testing.T) {
	tree := sampleTree()
	methods := Find(tree, tree.Root, KindMethodDecl)
	if len(methods) != 1 {
		t.Fatalf("Find methods = %d, want 1", len(methods))
	}
	var names []string
	Inspect(tree, tree.Root, func(id NodeID, n *Node, ancestors []NodeID) bool {
		if id != methods[0] {
			return true
		}
		for _, a := range ancestors {
			names = append(names, tree.Node(a).Kind.String())
		}
		return false
	})
	if got := strings.Join(names, "/"); got != "CompilationUnit/NamespaceDecl/ClassDecl" {
		t.Fatalf("ancestors = %s", got)
	}
	if d := Depth(tree, tree.Root); d < 8 {
		t.Fatalf("Depth = %d, expected at least 8", d)
	}
}

type countingVisitor struct{ seen map[Kind]int }

func (c *countingVisitor) hit(n *Node) (string, error) {
	if n == nil {
		c.seen[KindInvalid]++
		return "", nil
	}
	c.seen[n.Kind]++
	return n.Kind.String(), nil
}

func (c *countingVisitor) VisitCompilationUnit(_ NodeID, n *Node) (string, error) { return c.hit(n) }
func (c *countingVisitor) VisitUsingDirective(_ NodeID, n *Node) (string, error)  { return c.hit(n) }
func (c *countingVisitor) VisitNamespaceDecl(_ NodeID, n *Node) (string, error)   { return c.hit(n) }
func (c *countingVisitor) VisitClassDecl(_ NodeID, n *Node) (string, error)       { return c.hit(n) }
func (c *countingVisitor) VisitMethodDecl(_ NodeID, n *Node) (string, error)      { return c.hit(n) }
func (c *countingVisitor) VisitParameterList(_ NodeID, n *Node) (string, error)   { return c.hit(n) }
func (c *countingVisitor) VisitParameter(_ NodeID, n *Node) (string, error)       { return c.hit(n) }
func (c *countingVisitor) VisitBlock(_ NodeID, n *Node) (string, error)           { return c.hit(n) }
func (c *countingVisitor) VisitExpressionStatement(_ NodeID, n *Node) (string, error) {
	return c.hit(n)
}
func (c *countingVisitor) VisitInvocationExpr(_ NodeID, n *Node) (string, error)   { return c.hit(n) }
func (c *countingVisitor) VisitMemberAccessExpr(_ NodeID, n *Node) (string, error) { return c.hit(n) }
func (c *countingVisitor) VisitArgumentList(_ NodeID, n *Node) (string, error)     { return c.hit(n) }
func (c *countingVisitor) VisitArgument(_ NodeID, n *Node) (string, error)         { return c.hit(n) }
func (c *countingVisitor) VisitIdentifierName(_ NodeID, n *Node) (string, error)   { return c.hit(n) }
func (c *countingVisitor) VisitLiteralExpr(_ NodeID, n *Node) (string, error)      { return c.hit(n) }
func (c *countingVisitor) VisitPredefinedType(_ NodeID, n *Node) (string, error)   { return c.hit(n) }
func (c *countingVisitor) VisitArrayType(_ NodeID, n *Node) (string, error)        { return c.hit(n) }
func (c *countingVisitor) VisitUnsupported(_ NodeID, n *Node) (string, error) {
	if n != nil && n.Kind != KindUnsupported {
		c.seen[KindInvalid]++
		return "", nil
	}
	return c.hit(n)
}

var _ Visitor[string] = (*countingVisitor)(nil)

// Each valid kind must reach its own method; only invalid kinds fall through
// to VisitUnsupported.
func TestDispatchIsExhaustive(t *testing.T) {
	b := NewBuilder("k.cs", 0, 0)
	ids := make(map[Kind]NodeID)
	for _, k := range Kinds() {
		ids[k] = b.Add(k, spanZero, "x")
	}
	bogus := b.Add(Kind(200), spanZero, "")
	tree := b.Finish(ids[KindCompilationUnit])

	v := &countingVisitor{seen: make(map[Kind]int)}
	for k, id := range ids {
		got, err := Dispatch[string](v, tree, id)
		if err != nil {
			t.Fatalf("Dispatch(%s): %v", k, err)
		}
		if got != k.String() {
			t.Fatalf("Dispatch(%s) reached %q", k, got)
		}
	}
	if _, err := Dispatch[string](v, tree, bogus); err != nil {
		t.Fatalf("Dispatch(bogus): %v", err)
	}
	if _, err := Dispatch[string](v, tree, NodeID(12345)); err != nil {
		t.Fatalf("Dispatch(missing): %v", err)
	}
	if v.seen[KindInvalid] != 2 {
		t.Fatalf("invalid kinds routed %d times, want 2", v.seen[KindInvalid])
	}
	for _, k := range Kinds() {
		if v.seen[k] != 1 {
			t.Fatalf("%s visited %d times", k, v.seen[k])
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	tree := sampleTree()
	cp := tree.Clone()
	cp.Nodes[0].Text = "changed"
	cp.Node(cp.Root).Children[0] = NoNodeID
	if tree.Nodes[0].Text == "changed" || tree.Node(tree.Root).Children[0] == NoNodeID {
		t.Fatalf("Clone shares storage with the original")
	}
}
