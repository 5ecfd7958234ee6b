package frontend

import (
	"strings"

	"cscpp/internal/diag"
	"cscpp/internal/syntax"
)

// parseExpr parses the subset's expressions: names, literals, member access
// and invocation. Anything else, including any operator, turns the whole
// expression into an Unsupported node. NoNodeID means a syntax error.
func (p *parser) parseExpr() syntax.NodeID {
	start := p.peek().Span
	ok := p.enter()
	defer p.leave()
	if !ok {
		return syntax.NoNodeID
	}

	mark := p.b.Len()
	id, construct, ok := p.parsePostfix()
	if !ok {
		p.b.Rewind(mark)
		return syntax.NoNodeID
	}
	if construct == "" {
		// a stray word or literal is left for the caller to report
		if p.atExprEnd() || !p.atOperator() {
			return id
		}
		construct = operatorConstruct(p.peek().Text)
	}
	p.b.Rewind(mark)
	p.skipExpr()
	return p.b.Add(syntax.KindUnsupported, p.cover(start), construct)
}

func (p *parser) atExprEnd() bool {
	t := p.peek()
	return t.Kind == TokEOF || t.Is(",") || t.Is(")") || t.Is(";") || t.Is("]") || t.Is("}")
}

func (p *parser) atOperator() bool {
	t := p.peek()
	switch t.Kind {
	case TokPunct:
		return !t.Is("{")
	case TokIdent:
		return t.Text == "is" || t.Text == "as" || t.Text == "switch" || t.Text == "with"
	}
	return false
}

// parsePostfix returns either a node or the name of the unsupported construct
// found; ok is false after a reported syntax error.
func (p *parser) parsePostfix() (syntax.NodeID, string, bool) {
	start := p.peek().Span
	id, construct, ok := p.parsePrimary()
	if !ok || construct != "" {
		return id, construct, ok
	}
	for {
		switch {
		case p.at("."):
			p.advance()
			name, ok := p.expectIdent("member name after '.'")
			if !ok {
				return syntax.NoNodeID, "", false
			}
			right := p.b.Add(syntax.KindIdentifierName, name.Span, name.Text)
			id = p.b.Add(syntax.KindMemberAccessExpr, p.cover(start), "", id, right)
		case p.at("("):
			args, ok := p.parseArgs()
			if !ok {
				return syntax.NoNodeID, "", false
			}
			id = p.b.Add(syntax.KindInvocationExpr, p.cover(start), "", id, args)
		case p.at("["):
			return id, "ElementAccessExpression", true
		case p.at("?."):
			return id, "ConditionalAccessExpression", true
		case p.at("!") && (p.peekAt(1).Is(".") || p.peekAt(1).Is(";")):
			return id, "SuppressNullableWarningExpression", true
		case p.at("<") && p.looksLikeTypeArgs():
			return id, "GenericName", true
		default:
			return id, "", true
		}
	}
}

// looksLikeTypeArgs tells "F<int>(x)" from "a < b".
func (p *parser) looksLikeTypeArgs() bool {
	i := p.pos
	depth := 0
	for {
		t := p.tokAt(i)
		switch {
		case t.Is("<"):
			depth++
		case t.Is(">"):
			depth--
			if depth == 0 {
				next := p.tokAt(i + 1)
				return next.Is("(") || next.Is(".")
			}
		case t.Kind == TokIdent || t.Is(",") || t.Is(".") || t.Is("[") || t.Is("]"):
		default:
			return false
		}
		i++
	}
}

func (p *parser) parsePrimary() (syntax.NodeID, string, bool) {
	t := p.peek()
	switch {
	case t.Kind == TokString && strings.HasPrefix(t.Text, "$"):
		return syntax.NoNodeID, "InterpolatedStringExpression", true
	case t.Kind == TokNumber || t.Kind == TokString || t.Kind == TokChar:
		p.advance()
		return p.b.Add(syntax.KindLiteralExpr, t.Span, t.Text), "", true
	case t.Kind == TokIdent:
		switch {
		case t.Is("true") || t.Is("false") || t.Is("null"):
			p.advance()
			return p.b.Add(syntax.KindLiteralExpr, t.Span, t.Text), "", true
		case unsupportedPrimaries[t.keyword()] != "":
			return syntax.NoNodeID, unsupportedPrimaries[t.keyword()], true
		case t.Is("this") || isPredefined(t.keyword()) || t.isName():
			// predefined keywords stand for their type: string.Format
			p.advance()
			return p.b.Add(syntax.KindIdentifierName, t.Span, t.Text), "", true
		}
	case t.Is("("):
		return syntax.NoNodeID, "ParenthesizedExpression", true
	case t.Is("-") || t.Is("+") || t.Is("!") || t.Is("~") || t.Is("++") || t.Is("--") || t.Is("&") || t.Is("*"):
		return syntax.NoNodeID, "PrefixUnaryExpression", true
	case t.Is("$"):
		return syntax.NoNodeID, "InterpolatedStringExpression", true
	case t.Is("["):
		return syntax.NoNodeID, "CollectionExpression", true
	}
	p.errf(diag.SynExpectExpression, "expected expression, got %s", p.describe())
	return syntax.NoNodeID, "", false
}

func (p *parser) parseArgs() (syntax.NodeID, bool) {
	open := p.advance() // (
	ok := p.enter()
	defer p.leave()
	if !ok {
		return syntax.NoNodeID, false
	}

	var args []syntax.NodeID
	for !p.at(")") && !p.atEOF() {
		start := p.peek().Span
		var expr syntax.NodeID
		switch {
		case p.at("ref") || p.at("out") || p.at("in"):
			p.skipExpr()
			expr = p.b.Add(syntax.KindUnsupported, p.cover(start), "ByRefArgument")
		case p.peek().Kind == TokIdent && p.peekAt(1).Is(":") && !p.peekAt(2).Is(":"):
			p.skipExpr()
			expr = p.b.Add(syntax.KindUnsupported, p.cover(start), "NamedArgument")
		default:
			expr = p.parseExpr()
		}
		if !expr.IsValid() {
			return syntax.NoNodeID, false
		}
		args = append(args, p.b.Add(syntax.KindArgument, p.cover(start), "", expr))
		if p.at(",") {
			p.advance()
			if p.at(")") {
				p.errf(diag.SynExpectExpression, "expected argument after ','")
				return syntax.NoNodeID, false
			}
			continue
		}
		if !p.at(")") {
			break
		}
	}
	if _, ok := p.expect(")", diag.SynExpectRParen, &open); !ok {
		return syntax.NoNodeID, false
	}
	return p.b.Add(syntax.KindArgumentList, p.cover(open.Span), "", args...), true
}
