package frontend

import (
	"cscpp/internal/diag"
	"cscpp/internal/syntax"
)

// parseType parses predefined and dotted names with optional [] suffixes.
// Generic, nullable, pointer and multi-dimensional forms are consumed and
// yield one Unsupported node for the whole type.
func (p *parser) parseType() (syntax.NodeID, bool) {
	start := p.peek().Span
	mark := p.b.Len()
	t := p.peek()

	var id syntax.NodeID
	construct := ""
	switch {
	case isPredefined(t.keyword()):
		p.advance()
		id = p.b.Add(syntax.KindPredefinedType, t.Span, t.Text)
	case t.isName():
		p.advance()
		id = p.b.Add(syntax.KindIdentifierName, t.Span, t.Text)
		for p.at(".") && p.peekAt(1).isName() {
			p.advance()
			name := p.advance()
			right := p.b.Add(syntax.KindIdentifierName, name.Span, name.Text)
			id = p.b.Add(syntax.KindMemberAccessExpr, p.cover(start), "", id, right)
		}
		switch {
		case p.at("::"):
			construct = "AliasQualifiedName"
			p.advance()
			p.qualifiedName("type name")
		case p.at("<"):
			construct = "GenericName"
			p.skipAngles()
		}
	default:
		p.errf(diag.SynExpectType, "expected type, got %s", p.describe())
		return syntax.NoNodeID, false
	}

	for {
		switch {
		case p.at("?"):
			p.advance()
			if construct == "" {
				construct = "NullableType"
			}
		case p.at("*"):
			p.advance()
			if construct == "" {
				construct = "PointerType"
			}
		case p.at("[") && (p.peekAt(1).Is("]") || p.peekAt(1).Is(",")):
			open := p.advance()
			rank := 1
			for p.at(",") {
				p.advance()
				rank++
			}
			if _, ok := p.expect("]", diag.SynUnexpectedToken, &open); !ok {
				return syntax.NoNodeID, false
			}
			switch {
			case rank > 1 && construct == "":
				construct = "MultidimensionalArrayType"
			case construct == "":
				id = p.b.Add(syntax.KindArrayType, p.cover(start), "", id)
			}
		default:
			if construct != "" {
				p.b.Rewind(mark)
				id = p.b.Add(syntax.KindUnsupported, p.cover(start), construct)
			}
			return id, true
		}
	}
}
