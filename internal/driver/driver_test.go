package driver

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"cscpp/internal/backend/cpp"
	"cscpp/internal/diag"
	"cscpp/internal/syntax"
	"cscpp/internal/testkit"
	"cscpp/internal/trace"
)

func render(flags Flags) Flags {
	flags.GenerateOutput = true
	return flags
}

func TestCompileHostedScenario(t *testing.T) {
	entry := &cpp.EntryPoint{Namespace: "NS", Class: "C", Method: "M"}
	res, err := Compile(context.Background(), testkit.ScenarioTree(), render(Flags{Entry: entry}))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if res.Text != testkit.ScenarioHosted {
		t.Fatalf("hosted output:\n%s", res.Text)
	}
	if res.Entry != *entry {
		t.Fatalf("entry = %+v", res.Entry)
	}
	if !res.Scope.Balanced() {
		t.Fatalf("scope left unbalanced")
	}
}

func TestCompileDeviceScenario(t *testing.T) {
	entry := &cpp.EntryPoint{Namespace: "NS", Class: "C", Method: "M"}
	res, err := Compile(context.Background(), testkit.ScenarioTree(), render(Flags{Entry: entry, DeviceProfile: true}))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !strings.HasSuffix(res.Text, testkit.ScenarioDeviceTail) || strings.Contains(res.Text, "main()") {
		t.Fatalf("device output:\n%s", res.Text)
	}
}

func TestCompileArchiveMode(t *testing.T) {
	tree := testkit.ScenarioTree()
	want, err := syntax.Encode(tree)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	res, err := Compile(context.Background(), tree, Flags{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !bytes.Equal(res.Archive, want) || !bytes.Equal(res.Output(), want) {
		t.Fatalf("archive differs from the serialized tree")
	}
	if res.Text != "" || !res.Symbols.Empty() || !res.Scope.Balanced() {
		t.Fatalf("archive mode touched generator state: %+v", res)
	}
	back, err := syntax.Decode(res.Archive)
	if err != nil || back.Len() != tree.Len() {
		t.Fatalf("Decode: %v", err)
	}
}

func TestCompileDuplicateAborts(t *testing.T) {
	b := syntax.NewBuilder("dup.cs", 0, 0)
	params := []syntax.NodeID{b.Param(b.Predefined("int"), "x"), b.Param(b.Predefined("float"), "x")}
	tree := testkit.MethodTree(b, []string{"public", "static"}, params)

	res, err := Compile(context.Background(), tree, render(Flags{SkipEntry: true}))
	if !errors.Is(err, cpp.ErrDuplicateDeclaration) {
		t.Fatalf("expected ErrDuplicateDeclaration, got %v", err)
	}
	if res.Text != "" || len(res.Output()) != 0 {
		t.Fatalf("failed compilation produced output %q", res.Text)
	}
	d, ok := res.Bag.FirstError()
	if !ok || d.Code != diag.GenDuplicateDeclaration || len(d.Notes) != 1 {
		t.Fatalf("bag = %+v", res.Bag.Items())
	}
}

func twoMethodsTree() *syntax.Tree {
	b := syntax.NewBuilder("two.cs", 0, 0)
	a := b.Method([]string{"static"}, b.Predefined("void"), "A",
		[]syntax.NodeID{b.Param(b.Predefined("int"), "x")}, syntax.NoNodeID)
	m := b.Method([]string{"public", "static"}, b.Predefined("void"), "Main",
		[]syntax.NodeID{b.Param(b.Predefined("float"), "x")}, syntax.NoNodeID)
	return b.Finish(b.Unit(nil, b.Namespace("NS", b.Class("C", nil, a, m))))
}

func TestCompileDuplicateAcrossMethods(t *testing.T) {
	res, err := Compile(context.Background(), twoMethodsTree(), render(Flags{SkipEntry: true}))
	if !errors.Is(err, cpp.ErrDuplicateDeclaration) {
		t.Fatalf("expected ErrDuplicateDeclaration, got %v", err)
	}
	if len(res.Output()) != 0 {
		t.Fatalf("failed compilation produced output %q", res.Text)
	}

	res, err = Compile(context.Background(), twoMethodsTree(), render(Flags{SkipEntry: true, MethodScopedVariables: true}))
	if err != nil {
		t.Fatalf("method-scoped Compile: %v", err)
	}
	if !res.Symbols.MethodScoped() || len(res.Symbols.Variables()) != 2 {
		t.Fatalf("symbols = %+v", res.Symbols.Variables())
	}
	if !strings.Contains(res.Text, "void A(int x)") || !strings.Contains(res.Text, "void Main(float x)") {
		t.Fatalf("unexpected output:\n%s", res.Text)
	}
}

func TestCompileMalformedTree(t *testing.T) {
	b := syntax.NewBuilder("bad.cs", 0, 0)
	tree := b.Finish(b.Class("C", nil))
	res, err := Compile(context.Background(), tree, render(Flags{}))
	if !errors.Is(err, cpp.ErrMalformedTree) {
		t.Fatalf("expected ErrMalformedTree, got %v", err)
	}
	d, ok := res.Bag.FirstError()
	if !ok || d.Code != diag.GenMalformedTree {
		t.Fatalf("bag = %+v", res.Bag.Items())
	}
}

func TestCompileEntryErrors(t *testing.T) {
	tests := []struct {
		name  string
		mods  []string
		entry *cpp.EntryPoint
		want  error
	}{
		{"no main", nil, nil, cpp.ErrEntryPointNotFound},
		{"missing", nil, &cpp.EntryPoint{Namespace: "NS", Class: "C", Method: "Nope"}, cpp.ErrEntryPointNotFound},
		{"instance", []string{"public"}, &cpp.EntryPoint{Namespace: "NS", Class: "C", Method: "M"}, cpp.ErrEntryPointNotStatic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Compile(context.Background(), testkit.ScenarioTree(tt.mods...), render(Flags{Entry: tt.entry}))
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
			if res.Text != "" || !res.Bag.HasErrors() {
				t.Fatalf("expected no text and an error diagnostic")
			}
		})
	}
}

func TestCompileOptions(t *testing.T) {
	entry := &cpp.EntryPoint{Namespace: "NS", Class: "C", Method: "M"}

	res, err := Compile(context.Background(), testkit.ScenarioTree(), render(Flags{Entry: entry, Options: cpp.Options{CRLF: true}}))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if strings.Count(res.Text, "\n") != strings.Count(res.Text, "\r\n") {
		t.Fatalf("bare LF in CRLF output: %q", res.Text)
	}
	if strings.ReplaceAll(res.Text, "\r\n", "\n") != testkit.ScenarioHosted {
		t.Fatalf("CRLF output differs beyond line endings")
	}

	res, err = Compile(context.Background(), testkit.ScenarioTree(), render(Flags{SkipEntry: true}))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if strings.Contains(res.Text, "main") || !strings.HasSuffix(res.Text, "\t};\n}\n") {
		t.Fatalf("SkipEntry output:\n%s", res.Text)
	}
}

func TestCompileCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Compile(ctx, testkit.ScenarioTree(), render(Flags{}))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestCompileTimingsAndObserver(t *testing.T) {
	var mu sync.Mutex
	var phases []string
	flags := render(Flags{
		Entry:   &cpp.EntryPoint{Namespace: "NS", Class: "C", Method: "M"},
		Timings: true,
		Observer: func(ev PhaseEvent) {
			mu.Lock()
			defer mu.Unlock()
			if ev.Status == PhaseEnd {
				phases = append(phases, ev.Name)
			}
		},
	})
	res, err := Compile(context.Background(), testkit.ScenarioTree(), flags)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if got := strings.Join(phases, ","); got != "validate,render,entry" {
		t.Fatalf("phases = %s", got)
	}
	if len(res.Timing.Phases) != 3 {
		t.Fatalf("timing = %+v", res.Timing)
	}
	var found bool
	for _, d := range res.Bag.Items() {
		if d.Code == diag.ObsTimings && d.Severity == diag.SevInfo && len(d.Notes) == 1 && strings.Contains(d.Notes[0].Msg, `"kind":"compile"`) {
			found = true
		}
	}
	if !found {
		t.Fatalf("no timing diagnostic in %+v", res.Bag.Items())
	}
}

func TestCompileTraces(t *testing.T) {
	ring := trace.NewRingTracer(64, trace.LevelDebug)
	ctx := trace.WithTracer(context.Background(), ring)
	if _, err := Compile(ctx, testkit.ScenarioTree(), Flags{}); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	var names []string
	var shape string
	for _, ev := range ring.Snapshot() {
		if ev.Kind == trace.KindSpanBegin {
			names = append(names, ev.Name)
		}
		if ev.Kind == trace.KindPoint && ev.Name == "tree" {
			shape = ev.Detail
		}
	}
	if got := strings.Join(names, ","); got != "compile:Program.cs,validate,archive" {
		t.Fatalf("spans = %s", got)
	}
	if shape != "nodes=8 depth=5" {
		t.Fatalf("tree point = %q", shape)
	}
}

func TestCompileBatch(t *testing.T) {
	dup := syntax.NewBuilder("dup.cs", 0, 0)
	badTree := testkit.MethodTree(dup, nil, []syntax.NodeID{dup.Param(dup.Predefined("int"), "x"), dup.Param(dup.Predefined("int"), "x")})

	// the same owner C::M and parameter x in separate units must not collide
	mk := func(path string) *syntax.Tree {
		b := syntax.NewBuilder(path, 0, 0)
		return testkit.MethodTree(b, []string{"static"}, []syntax.NodeID{b.Param(b.Predefined("int"), "x")})
	}
	units := []Unit{
		{Path: "a.cs", Tree: mk("a.cs")},
		{Path: "dup.cs", Tree: badTree},
		{Path: "b.cs", Tree: mk("b.cs")},
		{Path: "nil.cs"},
	}
	results, err := CompileBatch(context.Background(), units, render(Flags{SkipEntry: true}), 2, nil)
	if !errors.Is(err, cpp.ErrDuplicateDeclaration) {
		t.Fatalf("batch error = %v", err)
	}
	if len(results) != len(units) {
		t.Fatalf("got %d results", len(results))
	}
	for _, i := range []int{0, 2} {
		if results[i].Err != nil || !strings.Contains(results[i].Result.Text, "void M(int x)") {
			t.Fatalf("unit %d: %v\n%v", i, results[i].Err, results[i].Result)
		}
	}
	if results[1].Err == nil || results[1].Result.Text != "" {
		t.Fatalf("dup unit should fail")
	}
	if results[3].Err == nil || !strings.Contains(results[3].Err.Error(), "nil.cs") {
		t.Fatalf("nil unit error = %v", results[3].Err)
	}
	if results[0].Result.Symbols == results[2].Result.Symbols {
		t.Fatalf("units share a symbol table")
	}
}

func TestCompileBatchEmpty(t *testing.T) {
	results, err := CompileBatch(context.Background(), nil, Flags{}, 0, nil)
	if results != nil || err != nil {
		t.Fatalf("empty batch = %v, %v", results, err)
	}
}
