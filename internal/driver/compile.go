package driver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cscpp/internal/backend/cpp"
	"cscpp/internal/diag"
	"cscpp/internal/observ"
	"cscpp/internal/source"
	"cscpp/internal/symbols"
	"cscpp/internal/syntax"
	"cscpp/internal/trace"
)

// DefaultMaxDiagnostics caps a Result's bag when Flags leaves it unset.
const DefaultMaxDiagnostics = 100

// Flags configures one compilation. The zero value archives the tree.
type Flags struct {
	// GenerateOutput renders C++; when false the tree is serialized instead.
	GenerateOutput bool
	// DeviceProfile selects setup()/loop() over int main().
	DeviceProfile bool
	// Entry names the method the entry function calls; nil searches for Main.
	Entry *cpp.EntryPoint
	// SkipEntry renders the unit without an entry function.
	SkipEntry bool
	// MethodScopedVariables lets sibling methods reuse a variable name.
	// By default names are unique across the compilation.
	MethodScopedVariables bool
	Options               cpp.Options

	MaxDiagnostics int
	// Timings appends an OBS6001 phase report to the bag.
	Timings  bool
	Observer PhaseObserver
}

// Profile is the entry profile selected by f.
func (f Flags) Profile() cpp.Profile {
	if f.DeviceProfile {
		return cpp.ProfileDevice
	}
	return cpp.ProfileHosted
}

func (f Flags) newTable() *symbols.Table {
	if f.MethodScopedVariables {
		return symbols.NewMethodScopedTable()
	}
	return symbols.NewTable()
}

// Result is the outcome of one compilation. On failure Text and Archive are
// empty and Bag holds the error diagnostic.
type Result struct {
	Path    string
	Text    string
	Archive []byte
	Entry   cpp.EntryPoint
	Bag     *diag.Bag
	Symbols *symbols.Table
	Scope   *symbols.Scope
	Timing  observ.Report
}

// Output is Text or Archive, whichever the mode produced.
func (r *Result) Output() []byte {
	if r == nil {
		return nil
	}
	if r.Archive != nil {
		return r.Archive
	}
	return []byte(r.Text)
}

// Compile translates tree according to flags. Every error aborts the
// compilation; the returned error wraps a cpp sentinel where one applies and
// the same problem is in Result.Bag.
func Compile(ctx context.Context, tree *syntax.Tree, flags Flags) (*Result, error) {
	if tree == nil {
		return nil, errors.New("compile: nil tree")
	}
	maxDiag := flags.MaxDiagnostics
	if maxDiag <= 0 {
		maxDiag = DefaultMaxDiagnostics
	}
	res := &Result{
		Path:    tree.Path,
		Bag:     diag.NewBag(maxDiag),
		Symbols: flags.newTable(),
		Scope:   symbols.NewScope(),
	}
	c := &compilation{
		ctx:    ctx,
		tree:   tree,
		flags:  flags,
		res:    res,
		timer:  observ.NewTimer(),
		tracer: trace.FromContext(ctx),
	}
	span, ctx := trace.Start(ctx, trace.ScopeUnit, "compile:"+tree.Path)
	c.ctx = ctx

	err := c.run()
	res.Timing = c.timer.Report()
	if flags.Timings {
		appendTimingDiagnostic(res.Bag, timingPayload{Kind: "compile", Path: tree.Path, TotalMS: res.Timing.TotalMS, Phases: res.Timing.Phases})
	}
	if err != nil {
		res.Text, res.Archive = "", nil
		span.End("failed")
		return res, fmt.Errorf("compile %s: %w", tree.Path, err)
	}
	span.WithExtra("bytes", fmt.Sprint(len(res.Output()))).End("")
	return res, nil
}

type compilation struct {
	ctx    context.Context
	tree   *syntax.Tree
	flags  Flags
	res    *Result
	timer  *observ.Timer
	tracer trace.Tracer
}

func (c *compilation) run() error {
	if err := c.phase("validate", c.validate); err != nil {
		return err
	}
	if !c.flags.GenerateOutput {
		return c.phase("archive", c.archive)
	}
	if err := c.phase("render", c.render); err != nil {
		return err
	}
	if c.flags.SkipEntry {
		c.finish()
		return nil
	}
	if err := c.phase("entry", c.entry); err != nil {
		return err
	}
	c.finish()
	return nil
}

// phase checks for cancellation, then runs fn inside a trace span and a timer phase.
func (c *compilation) phase(name string, fn func() error) error {
	if err := c.ctx.Err(); err != nil {
		return err
	}
	c.notify(name, PhaseStart, 0)
	span := trace.Begin(c.tracer, trace.ScopeNode, name, trace.CurrentSpan(c.ctx))
	idx := c.timer.Begin(name)
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	detail := ""
	if err != nil {
		detail = err.Error()
		c.report(err)
	}
	c.timer.End(idx, detail)
	span.End(detail)
	c.notify(name, PhaseEnd, elapsed)
	return err
}

func (c *compilation) notify(name string, status PhaseStatus, elapsed time.Duration) {
	if c.flags.Observer == nil {
		return
	}
	c.flags.Observer(PhaseEvent{Path: c.tree.Path, Name: name, Status: status, Elapsed: elapsed})
}

// report moves err into the bag.
func (c *compilation) report(err error) {
	var gerr *cpp.Error
	switch {
	case errors.As(err, &gerr):
		c.res.Bag.Add(gerr.Diagnostic())
	case errors.Is(err, cpp.ErrMalformedTree):
		// Validate reported the details
	default:
		c.res.Bag.Add(diag.NewError(diag.GenMalformedTree, source.Span{}, err.Error()))
	}
}

func (c *compilation) validate() error {
	if !syntax.Validate(c.tree, diag.BagReporter{Bag: c.res.Bag}) {
		return cpp.ErrMalformedTree
	}
	if c.tracer != nil && c.tracer.Enabled() && c.tracer.Level().ShouldEmit(trace.ScopeNode) {
		detail := fmt.Sprintf("nodes=%d depth=%d", c.tree.Len(), syntax.Depth(c.tree, c.tree.Root))
		trace.Point(c.tracer, trace.ScopeNode, "tree", detail, trace.CurrentSpan(c.ctx))
	}
	return nil
}

func (c *compilation) archive() error {
	data, err := syntax.Encode(c.tree)
	if err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	c.res.Archive = data
	return nil
}

func (c *compilation) render() error {
	gen := cpp.NewGenerator(c.tree, c.res.Symbols, c.res.Scope, c.flags.Options, diag.BagReporter{Bag: c.res.Bag})
	text, err := gen.Render()
	if err != nil {
		return err
	}
	c.res.Text = text
	return nil
}

func (c *compilation) entry() error {
	ep, err := cpp.Discover(c.tree, c.flags.Entry)
	if err != nil {
		return err
	}
	c.res.Entry = ep
	c.res.Text = cpp.Synthesize(c.res.Text, ep, c.flags.Profile(), c.flags.Options.Indent())
	return nil
}

// finish applies line-ending conversion to the final text.
func (c *compilation) finish() {
	if c.flags.Options.CRLF {
		c.res.Text = strings.ReplaceAll(c.res.Text, "\n", "\r\n")
	}
}
