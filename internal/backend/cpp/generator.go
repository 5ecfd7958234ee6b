package cpp

import (
	"errors"
	"fmt"
	"strings"

	"cscpp/internal/diag"
	"cscpp/internal/symbols"
	"cscpp/internal/syntax"
	"cscpp/internal/types"
)

// Generator renders a syntax tree to C++ text. Rendering is post-order: a
// node's text is built only from the already rendered text of its children.
// A Generator renders one tree once; it records declarations in its Table.
type Generator struct {
	tree     *syntax.Tree
	table    *symbols.Table
	scope    *symbols.Scope
	mapper   *types.Mapper
	reporter diag.Reporter
	opts     Options

	depth      int
	quiet      int // >0 while rendering type names and member names
	methodBody syntax.NodeID
}

var (
	_ syntax.Visitor[string] = (*Generator)(nil)
	_ types.Renderer         = (*Generator)(nil)
)

// NewGenerator binds a generator to tree and the per-compilation state.
// reporter receives warnings only and may be nil.
func NewGenerator(tree *syntax.Tree, table *symbols.Table, scope *symbols.Scope, opts Options, reporter diag.Reporter) *Generator {
	g := &Generator{
		tree:     tree,
		table:    table,
		scope:    scope,
		reporter: reporter,
		opts:     opts,
	}
	g.mapper = types.NewMapper(g)
	return g
}

// Render returns the C++ text of the whole tree.
func (g *Generator) Render() (string, error) {
	return g.render(g.tree.Root)
}

// RenderType renders a node in type position; identifier reads are not counted.
func (g *Generator) RenderType(t *syntax.Tree, id syntax.NodeID) (string, error) {
	if t != g.tree {
		return "", fmt.Errorf("cpp: RenderType called with a foreign tree")
	}
	g.quiet++
	defer func() { g.quiet-- }()
	return g.render(id)
}

func (g *Generator) render(id syntax.NodeID) (string, error) {
	g.depth++
	defer func() { g.depth-- }()
	if g.depth > g.opts.maxDepth() {
		n := g.tree.Node(id)
		return "", newError(diag.GenNestingTooDeep, ErrNestingTooDeep, n, id,
			fmt.Sprintf("nesting exceeds %d levels", g.opts.maxDepth()))
	}
	return syntax.Dispatch[string](g, g.tree, id)
}

func (g *Generator) renderAll(ids []syntax.NodeID) ([]string, error) {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		text, err := g.render(id)
		if err != nil {
			return nil, err
		}
		out = append(out, text)
	}
	return out, nil
}

// renderLines renders statement-like children, giving each its own line.
func (g *Generator) renderLines(ids []syntax.NodeID) (string, error) {
	parts, err := g.renderAll(ids)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(p)
		if p != "" && !strings.HasSuffix(p, "\n") {
			b.WriteByte('\n')
		}
	}
	return b.String(), nil
}

func (g *Generator) indent(text string) string {
	prefix := g.opts.Indent()
	if prefix == "" || text == "" {
		return text
	}
	lines := strings.SplitAfter(text, "\n")
	var b strings.Builder
	b.Grow(len(text) + len(lines)*len(prefix))
	for _, line := range lines {
		if line != "" && line != "\n" {
			b.WriteString(prefix)
		}
		b.WriteString(line)
	}
	return b.String()
}

func (g *Generator) VisitCompilationUnit(id syntax.NodeID, n *syntax.Node) (string, error) {
	if len(n.Children) == 0 {
		return "", newError(diag.GenMalformedTree, ErrMalformedTree, n, id, "compilation unit has no top-level member")
	}
	var b strings.Builder
	usings := n.Children[:len(n.Children)-1]
	for _, u := range usings {
		text, err := g.render(u)
		if err != nil {
			return "", err
		}
		b.WriteString(text)
	}
	if len(usings) > 0 {
		b.WriteByte('\n')
	}
	member, err := g.render(n.Children[len(n.Children)-1])
	if err != nil {
		return "", err
	}
	b.WriteString(member)
	if member != "" && !strings.HasSuffix(member, "\n") {
		b.WriteByte('\n')
	}
	return b.String(), nil
}

func (g *Generator) VisitUsingDirective(_ syntax.NodeID, n *syntax.Node) (string, error) {
	for _, seg := range strings.Split(n.Text, ".") {
		g.table.RegisterStatic(seg)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "#include <%s.h>\n", strings.ReplaceAll(n.Text, ".", "/"))
	if g.opts.UsingNamespace {
		fmt.Fprintf(&b, "using namespace %s;\n", qualify(n.Text))
	}
	return b.String(), nil
}

func (g *Generator) VisitNamespaceDecl(_ syntax.NodeID, n *syntax.Node) (string, error) {
	for _, seg := range strings.Split(n.Text, ".") {
		g.table.RegisterStatic(seg)
	}
	body, err := g.renderLines(n.Children)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("namespace %s\n{\n%s}\n", qualify(n.Text), g.indent(body)), nil
}

func (g *Generator) VisitClassDecl(_ syntax.NodeID, n *syntax.Node) (string, error) {
	g.table.RegisterStatic(n.Text)
	mark := g.scope.EnterClass(n.Text)
	body, err := g.renderLines(n.Children)
	g.scope.LeaveClass(mark)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("class %s\n{\n%s};\n", n.Text, g.indent(body)), nil
}

func (g *Generator) VisitMethodDecl(id syntax.NodeID, n *syntax.Node) (string, error) {
	label, static, err := methodModifiers(id, n)
	if err != nil {
		return "", err
	}
	if static {
		g.table.RegisterStatic(n.Text)
	}

	mark := g.scope.EnterMethod(n.Text)
	owner := g.scope.Owner()
	defer g.scope.LeaveMethod(mark)

	ret, err := g.mapper.Classify(g.tree, n.Children[0])
	if err != nil {
		return "", err
	}
	params, err := g.render(n.Children[1])
	if err != nil {
		return "", err
	}
	outerBody := g.methodBody
	g.methodBody = n.Children[2]
	body, err := g.render(n.Children[2])
	g.methodBody = outerBody
	if err != nil {
		return "", err
	}
	g.reportUnused(owner)

	var b strings.Builder
	if label != "" {
		b.WriteString(label)
		b.WriteString(":\n")
	}
	if static {
		b.WriteString("static ")
	}
	fmt.Fprintf(&b, "%s %s(%s)\n{\n%s}\n", ret.Spelling, n.Text, params, g.indent(body))
	return b.String(), nil
}

// methodModifiers splits modifiers into the access-section label and the
// static flag. Modifiers with no C++ counterpart are dropped.
func methodModifiers(id syntax.NodeID, n *syntax.Node) (label string, static bool, err error) {
	for _, m := range n.Modifiers {
		var next string
		switch m {
		case "public":
			next = "public"
		case "private":
			next = "private"
		case "protected", "internal":
			next = "protected"
		case "static":
			static = true
			continue
		default:
			continue
		}
		if label != "" && label != next {
			return "", false, newError(diag.GenConflictingModifiers, ErrConflictingModifiers, n, id,
				fmt.Sprintf("method %q has conflicting access modifiers %s and %s", n.Text, label, next))
		}
		label = next
	}
	return label, static, nil
}

func (g *Generator) reportUnused(owner string) {
	if g.reporter == nil {
		return
	}
	for _, v := range g.table.CollectUnused(owner) {
		diag.ReportWarning(g.reporter, diag.GenUnusedParameter, v.Span,
			fmt.Sprintf("parameter %q of %s is never read", v.Name, owner)).Emit()
	}
}

func (g *Generator) VisitParameterList(_ syntax.NodeID, n *syntax.Node) (string, error) {
	return g.joinChildren(n.Children)
}

func (g *Generator) VisitArgumentList(_ syntax.NodeID, n *syntax.Node) (string, error) {
	return g.joinChildren(n.Children)
}

// joinChildren joins with a bare comma; an empty list is "".
func (g *Generator) joinChildren(ids []syntax.NodeID) (string, error) {
	parts, err := g.renderAll(ids)
	if err != nil {
		return "", err
	}
	return strings.Join(parts, ","), nil
}

func (g *Generator) VisitParameter(_ syntax.NodeID, n *syntax.Node) (string, error) {
	info, err := g.mapper.Classify(g.tree, n.Children[0])
	if err != nil {
		return "", err
	}
	if err := g.table.DeclareVariable(g.scope.Owner(), info.Spelling, n.Text, n.Span); err != nil {
		return "", g.duplicate(n, err)
	}
	return info.Spelling + " " + n.Text, nil
}

func (g *Generator) duplicate(n *syntax.Node, err error) error {
	e := &Error{
		Code: diag.GenDuplicateDeclaration,
		Span: n.Span,
		Msg:  err.Error(),
		Err:  err,
	}
	var dup *symbols.DuplicateError
	if errors.As(err, &dup) {
		msg := fmt.Sprintf("%q first declared here", dup.Name)
		if dup.PrevOwner != dup.Owner {
			msg = fmt.Sprintf("%q first declared here, in %s", dup.Name, dup.PrevOwner)
		}
		e.Notes = []diag.Note{{Span: dup.Prev, Msg: msg}}
	}
	return e
}

func (g *Generator) VisitBlock(id syntax.NodeID, n *syntax.Node) (string, error) {
	g.scope.EnterBlock()
	defer g.scope.LeaveBlock()
	body, err := g.renderLines(n.Children)
	if err != nil {
		return "", err
	}
	if id == g.methodBody {
		// the method supplies the braces
		return body, nil
	}
	return "{\n" + g.indent(body) + "}\n", nil
}

func (g *Generator) VisitExpressionStatement(_ syntax.NodeID, n *syntax.Node) (string, error) {
	expr, err := g.render(n.Children[0])
	if err != nil {
		return "", err
	}
	return expr + ";\n", nil
}

func (g *Generator) VisitInvocationExpr(_ syntax.NodeID, n *syntax.Node) (string, error) {
	callee, err := g.render(n.Children[0])
	if err != nil {
		return "", err
	}
	args, err := g.render(n.Children[1])
	if err != nil {
		return "", err
	}
	return callee + "(" + args + ")", nil
}

func (g *Generator) VisitArgument(_ syntax.NodeID, n *syntax.Node) (string, error) {
	return g.render(n.Children[0])
}

func (g *Generator) VisitMemberAccessExpr(_ syntax.NodeID, n *syntax.Node) (string, error) {
	left, err := g.render(n.Children[0])
	if err != nil {
		return "", err
	}
	g.quiet++
	right, err := g.render(n.Children[1])
	g.quiet--
	if err != nil {
		return "", err
	}
	return left + g.accessToken(n.Children[0]) + right, nil
}

// accessToken picks "::" for type-scoped left operands and an instance token
// otherwise. A declared variable is an instance even if its name was also
// registered as static.
func (g *Generator) accessToken(left syntax.NodeID) string {
	n := g.tree.Node(left)
	switch n.Kind {
	case syntax.KindIdentifierName:
		if n.Text == "this" {
			return "->"
		}
		_, isVar := g.table.LookupVariable(g.scope.Owner(), n.Text)
		switch {
		case isVar:
			return "."
		case g.table.IsStatic(n.Text):
			return "::"
		default:
			// not declared in this unit: an imported type such as Thread or PinMode
			return "::"
		}
	case syntax.KindMemberAccessExpr:
		if g.accessToken(n.Children[0]) == "::" {
			return "::"
		}
		return "."
	default:
		return "."
	}
}

func (g *Generator) VisitIdentifierName(_ syntax.NodeID, n *syntax.Node) (string, error) {
	if g.quiet == 0 {
		g.table.ReferenceIdentifier(g.scope, n.Text)
	}
	return n.Text, nil
}

func (g *Generator) VisitLiteralExpr(_ syntax.NodeID, n *syntax.Node) (string, error) {
	return n.Text, nil
}

func (g *Generator) VisitPredefinedType(_ syntax.NodeID, n *syntax.Node) (string, error) {
	return types.KeywordSpelling(n.Text), nil
}

func (g *Generator) VisitArrayType(_ syntax.NodeID, n *syntax.Node) (string, error) {
	elem, err := g.render(n.Children[0])
	if err != nil {
		return "", err
	}
	return types.ArraySpelling(elem), nil
}

func (g *Generator) VisitUnsupported(id syntax.NodeID, n *syntax.Node) (string, error) {
	construct := describe(id, n)
	if g.opts.Fallback != nil {
		return g.opts.Fallback.RenderUnsupported(g.tree, id, construct)
	}
	return "", newError(diag.GenUnsupportedConstruct, ErrUnsupportedConstruct, n, id,
		fmt.Sprintf("%s is not supported by the C++ translator", construct))
}

func describe(id syntax.NodeID, n *syntax.Node) string {
	switch {
	case n == nil:
		return fmt.Sprintf("missing node %d", id)
	case n.Kind == syntax.KindUnsupported && n.Text != "":
		return n.Text
	default:
		return n.Kind.String()
	}
}

// qualify converts a dotted C# name to a C++ scope path.
func qualify(dotted string) string {
	return strings.ReplaceAll(dotted, ".", "::")
}
