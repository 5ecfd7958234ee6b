package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"cscpp/internal/diag"
	"cscpp/internal/source"
)

const tabWidth = 4

// Pretty форматирует диагностики в человекочитаемый вид.
// Для каждого diag печатает:
//
//	<path>:<line>:<col>: <SEV> <CODE>: <Message>
//
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes.
// Diagnostics without a location print the header alone.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	if bag == nil {
		return
	}
	p := newPrettyPrinter(w, fs, opts)
	for _, d := range bag.Items() {
		p.diagnostic(d)
	}
}

type prettyPrinter struct {
	w    io.Writer
	fs   *source.FileSet
	opts PrettyOpts

	sev    map[diag.Severity]*color.Color
	code   *color.Color
	gutter *color.Color
	caret  *color.Color
	note   *color.Color
}

func newPrettyPrinter(w io.Writer, fs *source.FileSet, opts PrettyOpts) *prettyPrinter {
	p := &prettyPrinter{
		w:    w,
		fs:   fs,
		opts: opts,
		sev: map[diag.Severity]*color.Color{
			diag.SevError:   color.New(color.FgRed, color.Bold),
			diag.SevWarning: color.New(color.FgYellow, color.Bold),
			diag.SevInfo:    color.New(color.FgCyan, color.Bold),
		},
		code:   color.New(color.Bold),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgGreen, color.Bold),
		note:   color.New(color.FgCyan),
	}
	all := []*color.Color{p.code, p.gutter, p.caret, p.note}
	for _, c := range p.sev {
		all = append(all, c)
	}
	for _, c := range all {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p *prettyPrinter) diagnostic(d diag.Diagnostic) {
	sev, ok := p.sev[d.Severity]
	if !ok {
		sev = p.code
	}
	loc := location(p.fs, d.Primary, p.opts.PathMode, p.opts.BaseDir)
	if loc != "" {
		fmt.Fprintf(p.w, "%s: ", loc)
	}
	fmt.Fprintf(p.w, "%s %s: %s\n", sev.Sprint(d.Severity.String()), p.code.Sprint(d.Code.ID()), d.Message)
	p.snippet(d.Primary, p.opts.Context)

	if !p.opts.ShowNotes {
		return
	}
	for _, n := range d.Notes {
		fmt.Fprint(p.w, "  ")
		if nloc := location(p.fs, n.Span, p.opts.PathMode, p.opts.BaseDir); nloc != "" {
			fmt.Fprintf(p.w, "%s: ", nloc)
		}
		fmt.Fprintf(p.w, "%s: %s\n", p.note.Sprint("note"), n.Msg)
		p.snippet(n.Span, 0)
	}
}

// snippet prints the span's first line with context lines around it and an
// underline, aligned by display width.
func (p *prettyPrinter) snippet(sp source.Span, context int) {
	f := fileFor(p.fs, sp)
	if f == nil {
		return
	}
	start, end := p.fs.Resolve(sp)
	if context < 0 {
		context = 0
	}
	first := int(start.Line) - context
	if first < 1 {
		first = 1
	}
	last := int(start.Line) + context
	if n := len(f.LineIdx) + 1; last > n {
		last = n
	}
	width := len(strconv.Itoa(last))
	blank := strings.Repeat(" ", width)

	fmt.Fprintf(p.w, "%s %s\n", blank, p.gutter.Sprint("|"))
	for ln := first; ln <= last; ln++ {
		line := f.GetLine(uint32(ln)) // #nosec G115 -- bounded by the line index
		shown := p.clip(expandTabs(line))
		fmt.Fprintf(p.w, "%*d %s %s\n", width, ln, p.gutter.Sprint("|"), shown)
		if ln != int(start.Line) {
			continue
		}
		from := clampCol(line, start.Col)
		to := len(line)
		if end.Line == start.Line {
			to = clampCol(line, end.Col)
		}
		pad := runewidth.StringWidth(expandTabs(line[:from]))
		n := runewidth.StringWidth(expandTabs(line[from:max(from, to)]))
		if n < 1 {
			n = 1
		}
		if p.opts.Width > 0 && pad >= p.opts.Width {
			continue
		}
		mark := "^" + strings.Repeat("~", n-1)
		fmt.Fprintf(p.w, "%s %s %s%s\n", blank, p.gutter.Sprint("|"), strings.Repeat(" ", pad), p.caret.Sprint(mark))
	}
}

func (p *prettyPrinter) clip(line string) string {
	if p.opts.Width <= 0 {
		return line
	}
	return runewidth.Truncate(line, p.opts.Width, "…")
}

// clampCol converts a 1-based byte column to an offset within line.
func clampCol(line string, col uint32) int {
	off := int(col) - 1
	switch {
	case off < 0:
		return 0
	case off > len(line):
		return len(line)
	}
	return off
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}

// Short writes one line per diagnostic: <path>:<line>:<col>: <SEV> <CODE>: <Message>.
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	if bag == nil {
		return
	}
	for _, d := range bag.Items() {
		if loc := location(fs, d.Primary, opts.PathMode, opts.BaseDir); loc != "" {
			fmt.Fprintf(w, "%s: ", loc)
		}
		fmt.Fprintf(w, "%s %s: %s\n", d.Severity, d.Code.ID(), d.Message)
	}
}

// Render writes bag in the selected format. Pretty options are reused for
// the JSON path settings; notes go into JSON when ShowNotes is set.
func Render(w io.Writer, format Format, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) error {
	switch format {
	case FormatShort:
		Short(w, bag, fs, opts)
	case FormatJSON:
		return JSON(w, bag, fs, JSONOpts{
			IncludePositions: true,
			PathMode:         opts.PathMode,
			BaseDir:          opts.BaseDir,
			IncludeNotes:     opts.ShowNotes,
		})
	default:
		Pretty(w, bag, fs, opts)
	}
	return nil
}

// Summary counts errors and warnings: "2 errors, 1 warning". It is "" for a
// bag with neither.
func Summary(bag *diag.Bag) string {
	if bag == nil {
		return ""
	}
	var errs, warns int
	for _, d := range bag.Items() {
		switch d.Severity {
		case diag.SevError:
			errs++
		case diag.SevWarning:
			warns++
		}
	}
	var parts []string
	if errs > 0 {
		parts = append(parts, plural(errs, "error"))
	}
	if warns > 0 {
		parts = append(parts, plural(warns, "warning"))
	}
	return strings.Join(parts, ", ")
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}
