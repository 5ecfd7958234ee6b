package syntax

import (
	"fmt"

	"fortio.org/safecast"

	"cscpp/internal/source"
)

// Builder appends nodes bottom-up and produces a Tree.
// The frontend uses Add directly; tests use the shorthand constructors.
type Builder struct {
	path  string
	file  source.FileID
	nodes []Node
}

func NewBuilder(path string, file source.FileID, capHint uint) *Builder {
	if capHint == 0 {
		capHint = 1 << 6
	}
	return &Builder{
		path:  path,
		file:  file,
		nodes: make([]Node, 0, capHint),
	}
}

// Add allocates a node and returns its 1-based id.
func (b *Builder) Add(kind Kind, sp source.Span, text string, children ...NodeID) NodeID {
	sp.File = b.file
	b.nodes = append(b.nodes, Node{
		Kind:     kind,
		Span:     sp,
		Text:     text,
		Children: children,
	})
	n, err := safecast.Conv[uint32](len(b.nodes))
	if err != nil {
		panic(fmt.Errorf("node count overflow: %w", err))
	}
	return NodeID(n)
}

// SetModifiers replaces the modifier list of id.
func (b *Builder) SetModifiers(id NodeID, mods ...string) {
	b.node(id).Modifiers = append([]string(nil), mods...)
}

// AppendChild adds child to the end of parent's children.
func (b *Builder) AppendChild(parent, child NodeID) {
	p := b.node(parent)
	p.Children = append(p.Children, child)
}

// SetSpan overrides the span of id, keeping the builder's file.
func (b *Builder) SetSpan(id NodeID, sp source.Span) {
	sp.File = b.file
	b.node(id).Span = sp
}

// Node returns a node added so far, or nil.
func (b *Builder) Node(id NodeID) *Node {
	if !id.IsValid() || int(id) > len(b.nodes) {
		return nil
	}
	return &b.nodes[id-1]
}

func (b *Builder) node(id NodeID) *Node {
	if !id.IsValid() || int(id) > len(b.nodes) {
		panic(fmt.Errorf("syntax: builder has no node %d", id))
	}
	return &b.nodes[id-1]
}

// Len is the number of nodes added so far; it doubles as a mark for Rewind.
func (b *Builder) Len() int {
	return len(b.nodes)
}

// Rewind drops every node added after mark. Nodes before mark must not
// reference the dropped ones.
func (b *Builder) Rewind(mark int) {
	if mark < 0 || mark > len(b.nodes) {
		panic(fmt.Errorf("syntax: rewind to %d of %d nodes", mark, len(b.nodes)))
	}
	clear(b.nodes[mark:])
	b.nodes = b.nodes[:mark]
}

// Finish returns the tree rooted at root. The builder must not be reused.
func (b *Builder) Finish(root NodeID) *Tree {
	t := &Tree{Path: b.path, Nodes: b.nodes, Root: root}
	b.nodes = nil
	return t
}

func (b *Builder) Unit(usings []NodeID, member NodeID) NodeID {
	children := make([]NodeID, 0, len(usings)+1)
	children = append(children, usings...)
	if member.IsValid() {
		children = append(children, member)
	}
	return b.Add(KindCompilationUnit, source.Span{}, "", children...)
}

func (b *Builder) Using(name string) NodeID {
	return b.Add(KindUsingDirective, source.Span{}, name)
}

func (b *Builder) Namespace(name string, members ...NodeID) NodeID {
	return b.Add(KindNamespaceDecl, source.Span{}, name, members...)
}

func (b *Builder) Class(name string, mods []string, members ...NodeID) NodeID {
	id := b.Add(KindClassDecl, source.Span{}, name, members...)
	if len(mods) > 0 {
		b.SetModifiers(id, mods...)
	}
	return id
}

// Method builds a MethodDecl; a nil params list yields an empty ParameterList.
func (b *Builder) Method(mods []string, ret NodeID, name string, params []NodeID, body NodeID) NodeID {
	list := b.Add(KindParameterList, source.Span{}, "", params...)
	if !body.IsValid() {
		body = b.Block()
	}
	id := b.Add(KindMethodDecl, source.Span{}, name, ret, list, body)
	if len(mods) > 0 {
		b.SetModifiers(id, mods...)
	}
	return id
}

func (b *Builder) Param(typ NodeID, name string) NodeID {
	return b.Add(KindParameter, source.Span{}, name, typ)
}

func (b *Builder) Block(stmts ...NodeID) NodeID {
	return b.Add(KindBlock, source.Span{}, "", stmts...)
}

func (b *Builder) ExprStmt(expr NodeID) NodeID {
	return b.Add(KindExpressionStatement, source.Span{}, "", expr)
}

// Invoke wraps each argument expression in an Argument node.
func (b *Builder) Invoke(callee NodeID, args ...NodeID) NodeID {
	wrapped := make([]NodeID, 0, len(args))
	for _, a := range args {
		wrapped = append(wrapped, b.Add(KindArgument, source.Span{}, "", a))
	}
	list := b.Add(KindArgumentList, source.Span{}, "", wrapped...)
	return b.Add(KindInvocationExpr, source.Span{}, "", callee, list)
}

func (b *Builder) Member(left NodeID, name string) NodeID {
	return b.Add(KindMemberAccessExpr, source.Span{}, "", left, b.Ident(name))
}

// Path builds a left-nested member access chain: Path("A", "B", "C") is (A.B).C.
func (b *Builder) Path(first string, rest ...string) NodeID {
	id := b.Ident(first)
	for _, name := range rest {
		id = b.Member(id, name)
	}
	return id
}

func (b *Builder) Ident(name string) NodeID {
	return b.Add(KindIdentifierName, source.Span{}, name)
}

func (b *Builder) Literal(text string) NodeID {
	return b.Add(KindLiteralExpr, source.Span{}, text)
}

func (b *Builder) Predefined(keyword string) NodeID {
	return b.Add(KindPredefinedType, source.Span{}, keyword)
}

func (b *Builder) Array(elem NodeID) NodeID {
	return b.Add(KindArrayType, source.Span{}, "", elem)
}

func (b *Builder) Unsupported(construct string) NodeID {
	return b.Add(KindUnsupported, source.Span{}, construct)
}
