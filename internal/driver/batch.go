package driver

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"cscpp/internal/backend/cpp"
	"cscpp/internal/diag"
	"cscpp/internal/source"
	"cscpp/internal/symbols"
	"cscpp/internal/syntax"
	"cscpp/internal/trace"
)

// Unit is one tree of a batch. Path labels errors for a nil Tree.
type Unit struct {
	Path string
	Tree *syntax.Tree
}

// BatchResult pairs a unit's result with its error.
type BatchResult struct {
	Result *Result
	Err    error
	Cached bool
}

// CompileBatch compiles units concurrently, each with its own symbol table and
// scope. Results are index-aligned with units. A failing unit does not stop
// the others; the returned error joins all unit errors, or is the context's
// error when the batch was canceled.
func CompileBatch(ctx context.Context, units []Unit, flags Flags, jobs int, cache *Cache) ([]BatchResult, error) {
	if len(units) == 0 {
		return nil, nil
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	span, ctx := trace.Start(ctx, trace.ScopeStage, "compile")

	// индексы уникальны для каждой горутины, мьютекс не нужен
	results := make([]BatchResult, len(units))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(units)))
	for i, u := range units {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, cached, err := CompileCached(gctx, cache, u.Tree, flags)
			if err != nil && u.Tree == nil {
				err = fmt.Errorf("%s: %w", u.Path, err)
			}
			results[i] = BatchResult{Result: res, Err: err, Cached: cached}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.End("canceled")
		return results, err
	}
	if err := ctx.Err(); err != nil {
		span.End("canceled")
		return results, err
	}

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	span.End("")
	return results, errors.Join(errs...)
}

// CompileCached is Compile behind cache. Only successful results are stored.
// Cache read and write problems are reported as IO4003 warnings, never as
// failures. A hit carries empty symbols.
func CompileCached(ctx context.Context, cache *Cache, tree *syntax.Tree, flags Flags) (*Result, bool, error) {
	if cache == nil || tree == nil {
		res, err := Compile(ctx, tree, flags)
		return res, false, err
	}
	var cacheWarnings []diag.Diagnostic
	key, err := CacheKey(tree, flags)
	if err == nil {
		var payload CachedOutput
		hit, gerr := cache.Get(key, &payload)
		switch {
		case gerr != nil:
			cacheWarnings = append(cacheWarnings, cacheWarning(gerr))
		case hit:
			trace.Point(trace.FromContext(ctx), trace.ScopeUnit, "cache-hit", tree.Path, trace.CurrentSpan(ctx))
			return resultFromCache(tree.Path, &payload, flags), true, nil
		}
	} else {
		cacheWarnings = append(cacheWarnings, cacheWarning(err))
	}

	res, cerr := Compile(ctx, tree, flags)
	if res != nil {
		for _, w := range cacheWarnings {
			res.Bag.Add(w)
		}
	}
	if cerr != nil {
		return res, false, cerr
	}
	if err == nil {
		payload := &CachedOutput{
			Path:     res.Path,
			Text:     res.Text,
			Archive:  res.Archive,
			Warnings: warningsOf(res.Bag),
		}
		if res.Entry != (cpp.EntryPoint{}) {
			payload.Entry = res.Entry.String()
		}
		if perr := cache.Put(key, payload); perr != nil {
			res.Bag.Add(cacheWarning(perr))
		}
	}
	return res, false, nil
}

func resultFromCache(path string, payload *CachedOutput, flags Flags) *Result {
	maxDiag := flags.MaxDiagnostics
	if maxDiag <= 0 {
		maxDiag = DefaultMaxDiagnostics
	}
	res := &Result{
		Path:    path,
		Text:    payload.Text,
		Archive: payload.Archive,
		Bag:     diag.NewBag(maxDiag),
		Symbols: flags.newTable(),
		Scope:   symbols.NewScope(),
	}
	if payload.Entry != "" {
		if ep, err := cpp.ParseEntryPoint(payload.Entry); err == nil {
			res.Entry = ep
		}
	}
	for _, w := range payload.Warnings {
		res.Bag.Add(w)
	}
	return res
}

func warningsOf(bag *diag.Bag) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, d := range bag.Items() {
		if d.Severity == diag.SevWarning && d.Code != diag.IOCacheError {
			out = append(out, d)
		}
	}
	return out
}

func cacheWarning(err error) diag.Diagnostic {
	return diag.NewWarning(diag.IOCacheError, source.Span{}, "output cache: "+err.Error())
}
