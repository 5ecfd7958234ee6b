package frontend

import (
	"cscpp/internal/diag"
	"cscpp/internal/syntax"
)

func (p *parser) parseBlock() syntax.NodeID {
	open, ok := p.expect("{", diag.SynExpectLBrace, nil)
	if !ok {
		return syntax.NoNodeID
	}
	ok = p.enter()
	defer p.leave()
	if !ok {
		return syntax.NoNodeID
	}

	var stmts []syntax.NodeID
	for !p.at("}") && !p.atEOF() {
		before := p.pos
		if s := p.parseStatement(); s.IsValid() {
			stmts = append(stmts, s)
		}
		if p.pos == before && !p.atEOF() {
			p.advance()
		}
	}
	if _, ok := p.expect("}", diag.SynExpectRBrace, &open); !ok {
		return syntax.NoNodeID
	}
	return p.b.Add(syntax.KindBlock, p.cover(open.Span), "", stmts...)
}

// parseStatement returns NoNodeID for empty statements and after errors.
func (p *parser) parseStatement() syntax.NodeID {
	t := p.peek()
	start := t.Span
	switch {
	case t.Is("{"):
		return p.parseBlock()
	case t.Is(";"):
		p.advance()
		return syntax.NoNodeID
	case unsupportedStatements[t.keyword()] != "":
		p.skipStatement()
		return p.b.Add(syntax.KindUnsupported, p.cover(start), unsupportedStatements[t.keyword()])
	case p.looksLikeLocalDecl():
		p.skipUntilSemicolon()
		return p.b.Add(syntax.KindUnsupported, p.cover(start), "LocalDeclarationStatement")
	}

	mark := p.b.Len()
	expr := p.parseExpr()
	if !expr.IsValid() {
		p.skipUntilSemicolon()
		return syntax.NoNodeID
	}
	if _, ok := p.expect(";", diag.SynExpectSemicolon, nil); !ok {
		p.b.Rewind(mark)
		p.skipUntilSemicolon()
		return syntax.NoNodeID
	}
	return p.b.Add(syntax.KindExpressionStatement, p.cover(start), "", expr)
}

// looksLikeLocalDecl scans "Type name" followed by '=', ';' or ','.
func (p *parser) looksLikeLocalDecl() bool {
	i := p.pos
	if !p.scanType(&i) {
		return false
	}
	name := p.tokAt(i)
	if !name.isName() {
		return false
	}
	next := p.tokAt(i + 1)
	return next.Is("=") || next.Is(";") || next.Is(",")
}

// scanType advances *i over a type without building nodes.
func (p *parser) scanType(i *int) bool {
	t := p.tokAt(*i)
	if !t.isName() && !isPredefined(t.keyword()) {
		return false
	}
	*i++
	for p.tokAt(*i).Is(".") && p.tokAt(*i+1).Kind == TokIdent {
		*i += 2
	}
	if p.tokAt(*i).Is("<") {
		depth := 0
		for {
			t := p.tokAt(*i)
			switch {
			case t.Is("<"):
				depth++
			case t.Is(">"):
				depth--
			case t.Kind == TokIdent || t.Is(",") || t.Is(".") || t.Is("[") || t.Is("]") || t.Is("?"):
			default:
				return false
			}
			*i++
			if depth == 0 {
				break
			}
		}
	}
	for {
		switch t := p.tokAt(*i); {
		case t.Is("?") || t.Is("*"):
			*i++
		case t.Is("["):
			j := *i + 1
			for p.tokAt(j).Is(",") {
				j++
			}
			if !p.tokAt(j).Is("]") {
				return true
			}
			*i = j + 1
		default:
			return true
		}
	}
}
