package frontend

import (
	"fmt"

	"fortio.org/safecast"
	"github.com/alecthomas/participle/v2/lexer"
	"golang.org/x/text/unicode/norm"

	"cscpp/internal/diag"
	"cscpp/internal/source"
)

// Rule order matters: the first rule matching at a position wins, so each
// well-formed rule precedes its unterminated fallback.
var csLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*|/\*(?:[^*]|\*+[^*/])*\*+/`},
	{Name: "OpenComment", Pattern: `/\*[\s\S]*`},
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Directive", Pattern: `#[^\n]*`},
	{Name: "String", Pattern: `\$?@"(?:[^"]|"")*"|\$?"(?:\\.|[^"\\\n])*"`},
	{Name: "OpenString", Pattern: `\$?@?"[^\n]*`},
	{Name: "Char", Pattern: `'(?:\\.|[^'\\\n])+'`},
	{Name: "OpenChar", Pattern: `'[^\n]*`},
	{Name: "Number", Pattern: `(?:0[xX][0-9a-fA-F_]+|0[bB][01_]+|[0-9][0-9_]*(?:\.[0-9][0-9_]*)?(?:[eE][+-]?[0-9]+)?)(?:[uU][lL]?|[lL][uU]?|[fFdDmM])?`},
	{Name: "Ident", Pattern: `@?[\p{L}\p{Nl}_][\p{L}\p{Mn}\p{Mc}\p{Nd}\p{Pc}\p{Cf}]*`},
	{Name: "Punct", Pattern: `\?\?=|\?\?|\?\.|<<=|=>|==|!=|<=|>=|&&|\|\||\+\+|--|\+=|-=|\*=|/=|%=|&=|\|=|\^=|<<|::|[{}()\[\];,.<>=+\-*/%!&|^~?:$]`},
	{Name: "Unknown", Pattern: `.`},
})

// TokenKind classifies tokens. Keywords are Ident tokens; the parser tells
// them apart by text.
type TokenKind uint8

const (
	TokInvalid TokenKind = iota
	TokEOF
	TokIdent
	TokNumber
	TokString
	TokChar
	TokPunct
)

func (k TokenKind) String() string {
	switch k {
	case TokEOF:
		return "end of file"
	case TokIdent:
		return "identifier"
	case TokNumber:
		return "number"
	case TokString:
		return "string"
	case TokChar:
		return "character"
	case TokPunct:
		return "punctuation"
	default:
		return "invalid token"
	}
}

// Token is a lexed token with its byte span in the file.
type Token struct {
	Kind TokenKind
	Text string
	Span source.Span
	// Verbatim is set for @-prefixed identifiers, which never act as keywords.
	Verbatim bool
}

func (t Token) Is(text string) bool {
	return t.Kind != TokString && t.Kind != TokChar && !t.Verbatim && t.Text == text
}

// keyword is the token text when it may be a keyword, else "".
func (t Token) keyword() string {
	if t.Kind != TokIdent || t.Verbatim {
		return ""
	}
	return t.Text
}

// isName reports an identifier usable as a name.
func (t Token) isName() bool {
	return t.Kind == TokIdent && (t.Verbatim || !isReserved(t.Text))
}

// ruleKinds maps participle token types back to rule names.
var ruleKinds = func() map[lexer.TokenType]string {
	out := make(map[lexer.TokenType]string)
	for name, tt := range csLexer.Symbols() {
		out[tt] = name
	}
	return out
}()

// Tokenize lexes f. Comments, whitespace and preprocessor lines are dropped.
// Malformed tokens are reported and recovered from; the result always ends
// with a TokEOF token.
func Tokenize(f *source.File, r diag.Reporter) []Token {
	var toks []Token
	emit := func(code diag.Code, sp source.Span, msg string) {
		if r != nil {
			r.Report(code, diag.SevError, sp, msg, nil)
		}
	}
	end := spanAt(f, len(f.Content), 0)

	lex, err := csLexer.LexString(f.Path, string(f.Content))
	if err != nil {
		emit(diag.LexUnknownChar, spanAt(f, 0, 0), err.Error())
		return append(toks, Token{Kind: TokEOF, Span: end})
	}
	for {
		tok, err := lex.Next()
		if err != nil {
			emit(diag.LexUnknownChar, end, err.Error())
			break
		}
		if tok.EOF() {
			break
		}
		sp := spanAt(f, tok.Pos.Offset, len(tok.Value))
		switch ruleKinds[tok.Type] {
		case "Comment", "Whitespace", "Directive":
			continue
		case "OpenComment":
			emit(diag.LexUnterminatedBlock, sp, "unterminated block comment")
		case "OpenString":
			emit(diag.LexUnterminatedString, sp, "unterminated string literal")
			toks = append(toks, Token{Kind: TokString, Text: tok.Value + `"`, Span: sp})
		case "OpenChar":
			emit(diag.LexUnterminatedChar, sp, "unterminated character literal")
			toks = append(toks, Token{Kind: TokChar, Text: tok.Value, Span: sp})
		case "String":
			toks = append(toks, Token{Kind: TokString, Text: tok.Value, Span: sp})
		case "Char":
			toks = append(toks, Token{Kind: TokChar, Text: tok.Value, Span: sp})
		case "Number":
			toks = append(toks, Token{Kind: TokNumber, Text: tok.Value, Span: sp})
		case "Ident":
			toks = append(toks, Token{Kind: TokIdent, Text: identText(tok.Value), Span: sp, Verbatim: tok.Value[0] == '@'})
		case "Punct":
			toks = append(toks, Token{Kind: TokPunct, Text: tok.Value, Span: sp})
		default:
			emit(diag.LexUnknownChar, sp, fmt.Sprintf("unexpected character %q", tok.Value))
		}
	}
	return append(toks, Token{Kind: TokEOF, Span: end})
}

// identText drops the verbatim prefix and normalizes to NFC so that
// differently composed spellings name the same symbol.
func identText(s string) string {
	if len(s) > 1 && s[0] == '@' {
		s = s[1:]
	}
	if !norm.NFC.IsNormalString(s) {
		s = norm.NFC.String(s)
	}
	return s
}

func spanAt(f *source.File, offset, length int) source.Span {
	start, err := safecast.Conv[uint32](offset)
	if err != nil {
		panic(fmt.Errorf("token offset overflow: %w", err))
	}
	n, err := safecast.Conv[uint32](length)
	if err != nil {
		panic(fmt.Errorf("token length overflow: %w", err))
	}
	return source.Span{File: f.ID, Start: start, End: start + n}
}
