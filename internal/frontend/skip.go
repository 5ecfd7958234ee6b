package frontend

// Recovery helpers. They keep brackets balanced so one bad construct does
// not derail the rest of the file.

func isOpener(t Token) bool {
	return t.Kind == TokPunct && (t.Text == "(" || t.Text == "[" || t.Text == "{")
}

func isCloser(t Token) bool {
	return t.Kind == TokPunct && (t.Text == ")" || t.Text == "]" || t.Text == "}")
}

// skipGroup consumes a bracketed group starting at the current token.
func (p *parser) skipGroup() {
	if !isOpener(p.peek()) {
		return
	}
	depth := 0
	for !p.atEOF() {
		t := p.advance()
		switch {
		case isOpener(t):
			depth++
		case isCloser(t):
			depth--
			if depth == 0 {
				return
			}
		}
	}
}

// skipAngles consumes a type argument list such as <int, List<T>>.
func (p *parser) skipAngles() {
	depth := 0
	for !p.atEOF() {
		t := p.advance()
		switch {
		case t.Is("<"):
			depth++
		case t.Is(">"):
			depth--
			if depth == 0 {
				return
			}
		case t.Is(";") || t.Is("{") || t.Is("}"):
			return
		}
	}
}

// skipUntilSemicolon consumes through the next ';' outside brackets. It stops
// before a '}' that closes the enclosing block.
func (p *parser) skipUntilSemicolon() {
	depth := 0
	for !p.atEOF() {
		t := p.peek()
		switch {
		case isOpener(t):
			depth++
		case isCloser(t):
			if depth == 0 {
				if t.Is("}") {
					return
				}
				break
			}
			depth--
		case depth == 0 && t.Is(";"):
			p.advance()
			return
		}
		p.advance()
	}
}

// skipMember consumes one member declaration: up to a ';' or through its
// braced body, including a trailing "= init;" after property accessors.
func (p *parser) skipMember() {
	depth := 0
	for !p.atEOF() {
		t := p.peek()
		switch {
		case isOpener(t):
			depth++
		case isCloser(t):
			if depth == 0 {
				if t.Is("}") {
					return
				}
				break
			}
			depth--
			if depth == 0 && t.Is("}") {
				p.advance()
				if p.at("=") {
					continue
				}
				if p.at(";") {
					p.advance()
				}
				return
			}
		case depth == 0 && t.Is(";"):
			p.advance()
			return
		}
		p.advance()
	}
}

// skipExpr consumes an expression up to ',' or ';' or an unmatched closer.
func (p *parser) skipExpr() {
	depth := 0
	for !p.atEOF() {
		t := p.peek()
		switch {
		case isOpener(t):
			depth++
		case isCloser(t):
			if depth == 0 {
				return
			}
			depth--
		case depth == 0 && (t.Is(",") || t.Is(";")):
			return
		}
		p.advance()
	}
}

// skipStatement consumes one statement, following the nesting of compound
// statements so their bodies go with them.
func (p *parser) skipStatement() {
	ok := p.enter()
	defer p.leave()
	if !ok {
		return
	}

	t := p.peek()
	if t.Is("{") {
		p.skipGroup()
		return
	}
	if t.Kind != TokIdent {
		p.skipUntilSemicolon()
		return
	}
	switch t.Text {
	case "if":
		p.advance()
		p.skipGroup()
		p.skipStatement()
		if p.at("else") {
			p.advance()
			p.skipStatement()
		}
	case "while", "for", "foreach", "lock", "fixed", "using":
		p.advance()
		if !p.at("(") {
			// using var x = ...;
			p.skipUntilSemicolon()
			return
		}
		p.skipGroup()
		p.skipStatement()
	case "switch":
		p.advance()
		p.skipGroup()
		p.skipGroup()
	case "do":
		p.advance()
		p.skipStatement()
		if p.at("while") {
			p.advance()
			p.skipGroup()
		}
		if p.at(";") {
			p.advance()
		}
	case "try":
		p.advance()
		p.skipGroup()
		for p.at("catch") {
			p.advance()
			if p.at("(") {
				p.skipGroup()
			}
			if p.at("when") {
				p.advance()
				p.skipGroup()
			}
			p.skipGroup()
		}
		if p.at("finally") {
			p.advance()
			p.skipGroup()
		}
	case "checked", "unchecked", "unsafe":
		p.advance()
		if p.at("{") {
			p.skipGroup()
			return
		}
		p.skipUntilSemicolon()
	default:
		p.skipUntilSemicolon()
	}
}
