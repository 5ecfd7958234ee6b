package frontend

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"cscpp/internal/diag"
	"cscpp/internal/source"
	"cscpp/internal/syntax"
)

type memberContext uint8

const (
	ctxTop memberContext = iota
	ctxNamespace
	ctxClass
)

func (p *parser) parseUnit() syntax.NodeID {
	var members []syntax.NodeID
	for !p.atEOF() {
		before := p.pos
		if p.at("using") {
			p.parseUsing()
		} else if m := p.parseMember(ctxTop); m.IsValid() {
			members = append(members, m)
		}
		if p.pos == before && !p.atEOF() {
			p.advance()
		}
	}

	switch {
	case len(members) == 0 && !p.tooDeep:
		p.report(diag.SynMissingTopLevel, p.diagSpan(), "expected a namespace or class declaration")
	case len(members) > 1:
		first := p.b.Node(members[0]).Span
		for _, extra := range members[1:] {
			p.report(diag.SynMultipleTopLevel, p.b.Node(extra).Span,
				"only one top-level namespace or class is supported",
				diag.Note{Span: first, Msg: "first top-level declaration"})
		}
	}

	children := append([]syntax.NodeID(nil), p.usings...)
	if len(members) > 0 {
		children = append(children, members[0])
	}
	end, err := safecast.Conv[uint32](len(p.file.Content))
	if err != nil {
		panic(fmt.Errorf("file size overflow: %w", err))
	}
	return p.b.Add(syntax.KindCompilationUnit, source.Span{Start: 0, End: end}, "", children...)
}

// parseUsing handles "using A.B;". Aliases and "using static" are rejected.
// The directive is recorded on the unit wherever it appears.
func (p *parser) parseUsing() {
	start := p.advance()
	if p.at("static") || p.at("(") || (p.peekAt(1).Is("=") && p.peek().Kind == TokIdent) {
		p.report(diag.SynUnsupportedConstruct, p.cover(start.Span), "only plain using directives are supported")
		p.skipUntilSemicolon()
		return
	}
	name, ok := p.qualifiedName("module name")
	if !ok {
		p.skipUntilSemicolon()
		return
	}
	if _, ok := p.expect(";", diag.SynExpectSemicolon, nil); !ok {
		p.skipUntilSemicolon()
	}
	p.usings = append(p.usings, p.b.Add(syntax.KindUsingDirective, p.cover(start.Span), name))
}

// qualifiedName reads Ident ('.' Ident)* and returns it dotted.
func (p *parser) qualifiedName(what string) (string, bool) {
	first, ok := p.expectIdent(what)
	if !ok {
		return "", false
	}
	parts := []string{first.Text}
	for p.at(".") && p.peekAt(1).Kind == TokIdent {
		p.advance()
		seg, ok := p.expectIdent(what)
		if !ok {
			return "", false
		}
		parts = append(parts, seg.Text)
	}
	return strings.Join(parts, "."), true
}

func (p *parser) skipAttributes() {
	for p.at("[") {
		p.skipGroup()
	}
}

func (p *parser) parseModifiers() []string {
	var mods []string
	for {
		t := p.peek()
		if t.Kind != TokIdent {
			return mods
		}
		if _, ok := modifiers[t.keyword()]; !ok {
			return mods
		}
		mods = append(mods, p.advance().Text)
	}
}

func (p *parser) parseMember(ctx memberContext) syntax.NodeID {
	start := p.peek().Span
	ok := p.enter()
	defer p.leave()
	if !ok {
		return syntax.NoNodeID
	}

	p.skipAttributes()
	mods := p.parseModifiers()
	t := p.peek()
	switch {
	case t.Is("namespace"):
		if len(mods) > 0 {
			p.report(diag.SynModifierNotAllowed, p.cover(start), "namespaces take no modifiers")
		}
		if ctx == ctxClass {
			p.errf(diag.SynUnexpectedToken, "a namespace cannot be declared inside a class")
			p.skipMember()
			return syntax.NoNodeID
		}
		return p.parseNamespace(start)
	case t.Is("class"):
		return p.parseClass(start, mods)
	case unsupportedTypeDecls[t.keyword()] != "":
		return p.unsupportedMember(start, unsupportedTypeDecls[t.keyword()])
	case ctx == ctxClass:
		return p.parseClassMember(start, mods)
	case ctx == ctxNamespace:
		p.errf(diag.SynUnexpectedToken, "expected a class or namespace declaration, got %s", p.describe())
	default:
		p.errf(diag.SynUnexpectedTopLevel, "expected a namespace or class declaration, got %s", p.describe())
	}
	p.skipMember()
	return syntax.NoNodeID
}

func (p *parser) unsupportedMember(start source.Span, construct string) syntax.NodeID {
	p.skipMember()
	return p.b.Add(syntax.KindUnsupported, p.cover(start), construct)
}

func (p *parser) parseNamespace(start source.Span) syntax.NodeID {
	p.advance() // namespace
	name, ok := p.qualifiedName("namespace name")
	if !ok {
		p.skipMember()
		return syntax.NoNodeID
	}

	var members []syntax.NodeID
	if p.at(";") {
		// file-scoped: the rest of the file belongs to the namespace
		p.advance()
		for !p.atEOF() {
			members = p.parseNamespaceMember(members)
		}
		return p.b.Add(syntax.KindNamespaceDecl, p.cover(start), name, members...)
	}

	open, ok := p.expect("{", diag.SynExpectLBrace, nil)
	if !ok {
		p.skipMember()
		return syntax.NoNodeID
	}
	for !p.at("}") && !p.atEOF() {
		members = p.parseNamespaceMember(members)
	}
	p.expect("}", diag.SynExpectRBrace, &open)
	return p.b.Add(syntax.KindNamespaceDecl, p.cover(start), name, members...)
}

func (p *parser) parseNamespaceMember(members []syntax.NodeID) []syntax.NodeID {
	before := p.pos
	if p.at("using") {
		p.parseUsing()
	} else if m := p.parseMember(ctxNamespace); m.IsValid() {
		members = append(members, m)
	}
	if p.pos == before && !p.atEOF() {
		p.advance()
	}
	return members
}

func (p *parser) parseClass(start source.Span, mods []string) syntax.NodeID {
	p.advance() // class
	name, ok := p.expectIdent("class name")
	if !ok {
		p.skipMember()
		return syntax.NoNodeID
	}
	if p.at("<") {
		return p.unsupportedMember(start, "GenericClassDeclaration")
	}
	// base list and constraints carry no meaning for the translation
	for !p.at("{") && !p.atEOF() && !p.at("}") && !p.at(";") {
		p.advance()
	}
	open, ok := p.expect("{", diag.SynExpectLBrace, nil)
	if !ok {
		p.skipMember()
		return syntax.NoNodeID
	}

	p.classes = append(p.classes, name.Text)
	var members []syntax.NodeID
	for !p.at("}") && !p.atEOF() {
		before := p.pos
		if m := p.parseMember(ctxClass); m.IsValid() {
			members = append(members, m)
		}
		if p.pos == before && !p.atEOF() {
			p.advance()
		}
	}
	p.classes = p.classes[:len(p.classes)-1]
	p.expect("}", diag.SynExpectRBrace, &open)
	if p.at(";") {
		p.advance()
	}

	id := p.b.Add(syntax.KindClassDecl, p.cover(start), name.Text, members...)
	if len(mods) > 0 {
		p.b.SetModifiers(id, mods...)
	}
	return id
}

func (p *parser) currentClass() string {
	if len(p.classes) == 0 {
		return ""
	}
	return p.classes[len(p.classes)-1]
}

// parseClassMember parses a method. Fields, properties, constructors and the
// other member forms become Unsupported nodes.
func (p *parser) parseClassMember(start source.Span, mods []string) syntax.NodeID {
	t := p.peek()
	switch {
	case t.Is("~"):
		return p.unsupportedMember(start, "DestructorDeclaration")
	case t.Kind == TokIdent && t.Text == p.currentClass() && p.peekAt(1).Is("("):
		return p.unsupportedMember(start, "ConstructorDeclaration")
	case t.Is("implicit") || t.Is("explicit"):
		return p.unsupportedMember(start, "ConversionOperatorDeclaration")
	}
	for _, m := range mods {
		if m == "const" {
			return p.unsupportedMember(start, "FieldDeclaration")
		}
	}

	mark := p.b.Len()
	ret, ok := p.parseType()
	if !ok {
		p.skipMember()
		return syntax.NoNodeID
	}
	switch {
	case p.at("this"):
		p.b.Rewind(mark)
		return p.unsupportedMember(start, "IndexerDeclaration")
	case p.at("operator"):
		p.b.Rewind(mark)
		return p.unsupportedMember(start, "OperatorDeclaration")
	}
	name, ok := p.expectIdent("member name")
	if !ok {
		p.b.Rewind(mark)
		p.skipMember()
		return syntax.NoNodeID
	}

	construct := ""
	switch {
	case p.at("."):
		construct = "ExplicitInterfaceMember"
	case p.at("<"):
		construct = "GenericMethodDeclaration"
	case p.at("{") || p.at("=>"):
		construct = "PropertyDeclaration"
	case !p.at("("):
		construct = "FieldDeclaration"
	}
	if construct != "" {
		p.b.Rewind(mark)
		return p.unsupportedMember(start, construct)
	}

	params, ok := p.parseParams()
	if !ok {
		p.b.Rewind(mark)
		p.skipMember()
		return syntax.NoNodeID
	}
	switch {
	case p.at("=>"):
		construct = "ExpressionBodiedMethod"
	case p.at(";"):
		construct = "MethodWithoutBody"
	case !p.at("{"):
		p.errf(diag.SynExpectLBrace, "expected method body, got %s", p.describe())
		p.b.Rewind(mark)
		p.skipMember()
		return syntax.NoNodeID
	}
	if construct != "" {
		p.b.Rewind(mark)
		return p.unsupportedMember(start, construct)
	}

	body := p.parseBlock()
	if !body.IsValid() {
		return syntax.NoNodeID
	}
	id := p.b.Add(syntax.KindMethodDecl, p.cover(start), name.Text, ret, params, body)
	if len(mods) > 0 {
		p.b.SetModifiers(id, mods...)
	}
	return id
}

func (p *parser) parseParams() (syntax.NodeID, bool) {
	open, ok := p.expect("(", diag.SynExpectLParen, nil)
	if !ok {
		return syntax.NoNodeID, false
	}
	var params []syntax.NodeID
	for !p.at(")") && !p.atEOF() {
		param, ok := p.parseParam()
		if !ok {
			return syntax.NoNodeID, false
		}
		params = append(params, param)
		if p.at(",") {
			p.advance()
			continue
		}
		if !p.at(")") {
			break
		}
	}
	if _, ok := p.expect(")", diag.SynExpectRParen, &open); !ok {
		return syntax.NoNodeID, false
	}
	return p.b.Add(syntax.KindParameterList, p.cover(open.Span), "", params...), true
}

func (p *parser) parseParam() (syntax.NodeID, bool) {
	start := p.peek().Span
	p.skipAttributes()
	construct := ""
	for p.at("ref") || p.at("out") || p.at("in") || p.at("params") || p.at("this") || p.at("scoped") {
		construct = paramModifierConstruct(p.advance().Text)
	}
	typeStart := p.peek().Span
	mark := p.b.Len()
	typ, ok := p.parseType()
	if !ok {
		return syntax.NoNodeID, false
	}
	name, ok := p.expectIdent("parameter name")
	if !ok {
		return syntax.NoNodeID, false
	}
	if p.at("=") {
		p.skipExpr()
		construct = "OptionalParameter"
	}
	if construct != "" {
		// the parameter keeps its name; only its type position is unsupported
		p.b.Rewind(mark)
		sp := p.cover(typeStart)
		sp.End = name.Span.Start
		if sp.End < sp.Start {
			sp.End = sp.Start
		}
		typ = p.b.Add(syntax.KindUnsupported, sp, construct)
	}
	return p.b.Add(syntax.KindParameter, p.cover(start), name.Text, typ), true
}

func paramModifierConstruct(mod string) string {
	switch mod {
	case "params":
		return "ParamsParameter"
	case "this":
		return "ExtensionParameter"
	default:
		return "ByRefParameter"
	}
}
