// Package buildpipeline runs the load, parse, compile and write stages over a
// set of C# sources and reports progress to a sink.
package buildpipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"cscpp/internal/diag"
	"cscpp/internal/driver"
	"cscpp/internal/frontend"
	"cscpp/internal/source"
	"cscpp/internal/syntax"
	"cscpp/internal/trace"
)

// ErrSyntax is returned when any source fails to parse.
var ErrSyntax = errors.New("syntax errors")

// Request configures one pipeline run.
type Request struct {
	Sources []string
	// BaseDir shortens paths in progress events.
	BaseDir string
	Flags   driver.Flags
	Parse   frontend.Options
	Jobs    int
	Cache   *driver.Cache
	// Layout receives the outputs; a zero Root skips the write stage.
	Layout   Layout
	Progress ProgressSink
}

// UnitResult is the outcome for one source file.
type UnitResult struct {
	Source string
	Tree   *syntax.Tree
	Result *driver.Result
	Cached bool
	// Output is the written path, if any.
	Output string
}

// Result of a run. Bag holds every diagnostic of every stage.
type Result struct {
	FileSet *source.FileSet
	Bag     *diag.Bag
	Units   []UnitResult
	Timings Timings
}

// Run executes the pipeline. Outputs are written only when every unit
// translated; on failure nothing is written and the error says which stage
// failed.
func Run(ctx context.Context, req *Request) (*Result, error) {
	if req == nil {
		return nil, errors.New("missing pipeline request")
	}
	if len(req.Sources) == 0 {
		return nil, errors.New("no sources to translate")
	}
	maxDiag := req.Flags.MaxDiagnostics
	if maxDiag <= 0 {
		maxDiag = driver.DefaultMaxDiagnostics
	}
	res := &Result{
		FileSet: source.NewFileSet(),
		Bag:     diag.NewBag(maxDiag),
		Units:   make([]UnitResult, len(req.Sources)),
	}
	r := &run{req: req, res: res, files: NormalizeProgressFiles(req.Sources, req.BaseDir)}
	r.base = req.BaseDir
	if r.base != "" {
		if abs, err := filepath.Abs(r.base); err == nil {
			r.base = abs
		}
	}
	emitQueued(req.Progress, r.files)

	stages := []struct {
		stage Stage
		fn    func(context.Context) error
	}{
		{StageLoad, r.load},
		{StageParse, r.parse},
		{StageCompile, r.compile},
	}
	if req.Layout.Root != "" {
		stages = append(stages, struct {
			stage Stage
			fn    func(context.Context) error
		}{StageWrite, r.write})
	}
	for _, st := range stages {
		if err := r.stage(ctx, st.stage, st.fn); err != nil {
			return res, err
		}
	}
	return res, nil
}

type run struct {
	req   *Request
	res   *Result
	files []string
	base  string
	ids   []source.FileID
}

func (r *run) stage(ctx context.Context, stage Stage, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	// compile reports per file from the phase observer and opens its own span
	perFile := stage != StageCompile
	if perFile {
		emitStage(r.req.Progress, r.files, stage, StatusWorking, nil, 0)
	} else {
		emitFile(r.req.Progress, "", stage, StatusWorking, nil, 0)
	}
	var err error
	if perFile {
		span, sctx := trace.Start(ctx, trace.ScopeStage, string(stage))
		err = fn(sctx)
		span.End(errDetail(err))
	} else {
		err = fn(ctx)
	}
	elapsed := time.Since(start)
	r.res.Timings.Set(stage, elapsed)
	if err != nil {
		emitFile(r.req.Progress, "", stage, StatusError, err, elapsed)
		return fmt.Errorf("%s: %w", stage, err)
	}
	if perFile {
		emitStage(r.req.Progress, r.files, stage, StatusDone, nil, elapsed)
	} else {
		emitFile(r.req.Progress, "", stage, StatusDone, nil, elapsed)
	}
	return nil
}

func (r *run) display(path string) string {
	return displayPath(path, r.base)
}

// load reads sources sequentially; FileSet is not safe for concurrent use.
func (r *run) load(context.Context) error {
	var failed int
	for i, path := range r.req.Sources {
		r.res.Units[i].Source = path
		id, err := r.res.FileSet.Load(path)
		if err != nil {
			failed++
			r.res.Bag.Add(diag.NewError(diag.IOLoadFileError, source.Span{}, fmt.Sprintf("cannot read %s: %v", path, err)))
			emitFile(r.req.Progress, r.display(path), StageLoad, StatusError, err, 0)
			continue
		}
		r.ids = append(r.ids, id)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d sources could not be read", failed, len(r.req.Sources))
	}
	return nil
}

// parse runs one parser per file; each gets its own bag, merged in source order.
func (r *run) parse(ctx context.Context) error {
	tracer := trace.FromContext(ctx)
	parent := trace.CurrentSpan(ctx)
	bags := make([]*diag.Bag, len(r.req.Sources))
	ok := make([]bool, len(r.req.Sources))
	var g errgroup.Group
	if r.req.Jobs > 0 {
		g.SetLimit(r.req.Jobs)
	}
	for i := range r.req.Sources {
		g.Go(func() error {
			f := r.res.FileSet.Get(r.ids[i])
			start := time.Now()
			span := trace.Begin(tracer, trace.ScopeUnit, "parse:"+f.Path, parent)
			bags[i] = diag.NewBag(int(r.res.Bag.Cap()))
			opts := r.req.Parse
			opts.Reporter = diag.BagReporter{Bag: bags[i]}
			pr := frontend.ParseFile(f, opts)
			r.res.Units[i].Tree = pr.Tree
			ok[i] = pr.OK()
			var err error
			if !pr.OK() {
				err = fmt.Errorf("%s: %d syntax errors", f.Path, pr.Errors)
			}
			span.End(errDetail(err))
			if err != nil {
				emitFile(r.req.Progress, r.display(r.req.Sources[i]), StageParse, StatusError, err, time.Since(start))
			}
			return nil
		})
	}
	_ = g.Wait()

	failed := false
	for i, b := range bags {
		r.res.Bag.Merge(b)
		if !ok[i] || b.HasErrors() {
			failed = true
		}
	}
	if failed {
		return ErrSyntax
	}
	return nil
}

func (r *run) compile(ctx context.Context) error {
	flags := r.req.Flags
	obs := &phaseObserver{
		sink:    r.req.Progress,
		display: make(map[string]string, len(r.res.Units)),
		next:    flags.Observer,
		started: make(map[string]bool, len(r.res.Units)),
	}
	units := make([]driver.Unit, len(r.res.Units))
	for i, u := range r.res.Units {
		units[i] = driver.Unit{Path: u.Source, Tree: u.Tree}
		obs.display[u.Tree.Path] = r.display(u.Source)
	}
	flags.Observer = obs.OnPhase

	results, err := driver.CompileBatch(ctx, units, flags, r.req.Jobs, r.req.Cache)
	for i, br := range results {
		u := &r.res.Units[i]
		u.Result, u.Cached = br.Result, br.Cached
		if br.Result != nil {
			r.res.Bag.Merge(br.Result.Bag)
		}
		status := StatusDone
		if br.Err != nil {
			status = StatusError
		}
		var elapsed time.Duration
		if br.Result != nil {
			elapsed = time.Duration(br.Result.Timing.TotalMS * float64(time.Millisecond))
		}
		emitFile(r.req.Progress, r.display(u.Source), StageCompile, status, br.Err, elapsed)
	}
	return err
}

func (r *run) write(ctx context.Context) error {
	single := len(r.res.Units) == 1
	tracer := trace.FromContext(ctx)
	for i := range r.res.Units {
		u := &r.res.Units[i]
		out := r.req.Layout.Path(u.Source, single)
		span := trace.Begin(tracer, trace.ScopeUnit, "write:"+out, trace.CurrentSpan(ctx))
		err := writeOutput(out, u.Result.Output())
		span.End(errDetail(err))
		if err != nil {
			r.res.Bag.Add(diag.NewError(diag.IOWriteFileError, source.Span{}, err.Error()))
			return err
		}
		u.Output = out
	}
	return nil
}

func writeOutput(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %q: %w", path, err)
	}
	return nil
}

func errDetail(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
