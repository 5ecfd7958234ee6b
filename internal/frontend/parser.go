package frontend

import (
	"fmt"

	"fortio.org/safecast"

	"cscpp/internal/diag"
	"cscpp/internal/source"
	"cscpp/internal/syntax"
)

// DefaultMaxDepth bounds nesting of blocks, expressions and declarations.
const DefaultMaxDepth = 512

type Options struct {
	// MaxDepth limits nesting; 0 means DefaultMaxDepth.
	MaxDepth int
	// MaxErrors stops reporting after that many errors; 0 means no limit.
	MaxErrors uint
	Reporter  diag.Reporter
}

// Result of parsing one file. Tree is always set; it is only fit for
// translation when Errors is zero.
type Result struct {
	Tree   *syntax.Tree
	Errors uint
}

func (r Result) OK() bool { return r.Errors == 0 }

type parser struct {
	file *source.File
	toks []Token
	pos  int
	b    *syntax.Builder
	opts Options

	errors   uint
	depth    int
	tooDeep  bool
	lastSpan source.Span
	usings   []syntax.NodeID // hoisted from namespaces
	classes  []string
}

// ParseFile parses f into a syntax tree. Constructs outside the translated
// subset become Unsupported nodes; real syntax errors are reported through
// opts.Reporter and counted in Result.Errors.
func ParseFile(f *source.File, opts Options) Result {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	counter := &countingReporter{next: opts.Reporter}
	toks := Tokenize(f, counter)
	capHint, err := safecast.Conv[uint](len(toks))
	if err != nil {
		capHint = 0
	}
	p := &parser{
		file: f,
		toks: toks,
		b:    syntax.NewBuilder(f.Path, f.ID, capHint),
		opts: opts,
	}
	p.lastSpan = source.Span{File: f.ID}
	p.errors = counter.errors
	root := p.parseUnit()
	return Result{Tree: p.b.Finish(root), Errors: p.errors}
}

type countingReporter struct {
	next   diag.Reporter
	errors uint
}

func (c *countingReporter) Report(code diag.Code, sev diag.Severity, sp source.Span, msg string, notes []diag.Note) {
	if sev == diag.SevError {
		c.errors++
	}
	if c.next != nil {
		c.next.Report(code, sev, sp, msg, notes)
	}
}

func (p *parser) peek() Token { return p.toks[p.pos] }

// peekAt looks n tokens ahead; past the end it returns EOF.
func (p *parser) peekAt(n int) Token {
	if i := p.pos + n; i < len(p.toks) {
		return p.toks[i]
	}
	return p.toks[len(p.toks)-1]
}

func (p *parser) tokAt(i int) Token {
	if i < len(p.toks) {
		return p.toks[i]
	}
	return p.toks[len(p.toks)-1]
}

func (p *parser) atEOF() bool { return p.peek().Kind == TokEOF }

func (p *parser) at(text string) bool { return p.peek().Is(text) }

func (p *parser) advance() Token {
	tok := p.peek()
	if tok.Kind != TokEOF {
		p.pos++
		p.lastSpan = tok.Span
	}
	return tok
}

// cover spans from start to the end of the last consumed token.
func (p *parser) cover(start source.Span) source.Span {
	end := p.lastSpan.End
	if end < start.Start {
		end = start.Start
	}
	return source.Span{File: p.file.ID, Start: start.Start, End: end}
}

// diagSpan is the current token, or the point after the last one at EOF.
func (p *parser) diagSpan() source.Span {
	if p.atEOF() {
		return source.Span{File: p.file.ID, Start: p.lastSpan.End, End: p.lastSpan.End}
	}
	return p.peek().Span
}

func (p *parser) report(code diag.Code, sp source.Span, msg string, notes ...diag.Note) {
	p.errors++
	if p.tooDeep && code != diag.SynNestingTooDeep {
		// the parse was abandoned; what follows is fallout
		return
	}
	if p.opts.Reporter == nil {
		return
	}
	if p.opts.MaxErrors > 0 && p.errors > p.opts.MaxErrors {
		return
	}
	p.opts.Reporter.Report(code, diag.SevError, sp, msg, notes)
}

func (p *parser) errf(code diag.Code, format string, args ...any) {
	p.report(code, p.diagSpan(), fmt.Sprintf(format, args...))
}

// describe names the current token for messages.
func (p *parser) describe() string {
	t := p.peek()
	if t.Kind == TokEOF {
		return "end of file"
	}
	return fmt.Sprintf("%q", t.Text)
}

// expect consumes text or reports code. An unmatched closer at EOF is
// reported as an unclosed delimiter pointing at open.
func (p *parser) expect(text string, code diag.Code, open *Token) (Token, bool) {
	if p.at(text) {
		return p.advance(), true
	}
	if open != nil && p.atEOF() {
		p.report(diag.SynUnclosedDelimiter, open.Span, fmt.Sprintf("unclosed %q", open.Text),
			diag.Note{Span: p.diagSpan(), Msg: fmt.Sprintf("expected %q before end of file", text)})
		return Token{}, false
	}
	p.errf(code, "expected %q, got %s", text, p.describe())
	return Token{}, false
}

func (p *parser) expectIdent(what string) (Token, bool) {
	t := p.peek()
	if t.isName() {
		return p.advance(), true
	}
	p.errf(diag.SynExpectIdentifier, "expected %s, got %s", what, p.describe())
	return Token{}, false
}

// enter bumps the nesting depth. Past the limit it reports once, abandons the
// rest of the file and returns false; callers then return NoNodeID.
func (p *parser) enter() bool {
	p.depth++
	if p.depth <= p.opts.MaxDepth {
		return true
	}
	if !p.tooDeep {
		p.tooDeep = true
		p.report(diag.SynNestingTooDeep, p.diagSpan(), fmt.Sprintf("nesting exceeds %d levels", p.opts.MaxDepth))
		p.pos = len(p.toks) - 1
	}
	return false
}

func (p *parser) leave() { p.depth-- }
