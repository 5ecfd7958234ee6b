package cpp

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"cscpp/internal/diag"
	"cscpp/internal/source"
	"cscpp/internal/symbols"
	"cscpp/internal/syntax"
	"cscpp/internal/testkit"
)

func renderTree(t *testing.T, tree *syntax.Tree, opts Options) (string, *symbols.Table, *symbols.Scope, error) {
	t.Helper()
	table := symbols.NewTable()
	scope := symbols.NewScope()
	out, err := NewGenerator(tree, table, scope, opts, nil).Render()
	if berr := testkit.CheckScopeBalanced(scope); berr != nil {
		t.Fatalf("%v", berr)
	}
	return out, table, scope, err
}

func spanAt(start uint32) source.Span {
	return source.Span{Start: start, End: start + 1}
}

func mustRender(t *testing.T, tree *syntax.Tree, opts Options) string {
	t.Helper()
	out, _, _, err := renderTree(t, tree, opts)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	return out
}

func TestScenarioHosted(t *testing.T) {
	tree := testkit.ScenarioTree()
	unit := mustRender(t, tree, Options{})
	entry, err := Discover(tree, &EntryPoint{Namespace: "NS", Class: "C", Method: "M"})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	got := Synthesize(unit, entry, ProfileHosted, Options{}.Indent())
	if got != testkit.ScenarioHosted {
		t.Fatalf("hosted output mismatch:\nwant:\n%s\ngot:\n%s", testkit.ScenarioHosted, got)
	}
}

func TestScenarioDevice(t *testing.T) {
	tree := testkit.ScenarioTree()
	unit := mustRender(t, tree, Options{})
	got := Synthesize(unit, EntryPoint{Namespace: "NS", Class: "C", Method: "M"}, ProfileDevice, "\t")
	if !strings.HasSuffix(got, testkit.ScenarioDeviceTail) {
		t.Fatalf("device output has wrong tail:\n%s", got)
	}
	if strings.Contains(got, "int main()") {
		t.Fatalf("device output must not contain main:\n%s", got)
	}
	if !strings.HasPrefix(got, "#include <Foo.h>\n") {
		t.Fatalf("include must come first:\n%s", got)
	}
}

func TestListSeparators(t *testing.T) {
	for n := 0; n <= 4; n++ {
		t.Run(fmt.Sprintf("params=%d", n), func(t *testing.T) {
			b := syntax.NewBuilder("p.cs", 0, 0)
			params := make([]syntax.NodeID, 0, n)
			args := make([]syntax.NodeID, 0, n)
			for i := range n {
				params = append(params, b.Param(b.Predefined("int"), fmt.Sprintf("p%d", i)))
				args = append(args, b.Literal(fmt.Sprint(i)))
			}
			call := b.Invoke(b.Ident("f"), args...)
			tree := testkit.MethodTree(b, []string{"static"}, params, b.ExprStmt(call))

			g := NewGenerator(tree, symbols.NewTable(), symbols.NewScope(), Options{}, nil)
			method := syntax.Find(tree, tree.Root, syntax.KindMethodDecl)[0]
			for _, list := range []syntax.NodeID{tree.Child(method, 1), tree.Child(call, 1)} {
				text, err := g.render(list)
				if err != nil {
					t.Fatalf("render list: %v", err)
				}
				if n == 0 && text != "" {
					t.Fatalf("empty list rendered %q", text)
				}
				if got := strings.Count(text, ","); n > 0 && got != n-1 {
					t.Fatalf("%q has %d separators, want %d", text, got, n-1)
				}
				if strings.HasSuffix(text, ",") || strings.HasPrefix(text, ",") {
					t.Fatalf("stray separator in %q", text)
				}
			}
		})
	}
}

func TestModifierOrderDoesNotMatter(t *testing.T) {
	cases := []struct {
		mods  []string
		label string
	}{
		{[]string{"public", "static"}, "public:\n"},
		{[]string{"static", "public"}, "public:\n"},
		{[]string{"private", "static"}, "private:\n"},
		{[]string{"static", "protected"}, "protected:\n"},
		{[]string{"internal", "static"}, "protected:\n"},
	}
	for _, tc := range cases {
		t.Run(strings.Join(tc.mods, "_"), func(t *testing.T) {
			out := mustRender(t, testkit.ScenarioTree(tc.mods...), Options{Compact: true})
			want := tc.label + "static void M()\n"
			if !strings.Contains(out, want) {
				t.Fatalf("output lacks %q:\n%s", want, out)
			}
		})
	}
}

func TestMethodWithoutModifiers(t *testing.T) {
	out := mustRender(t, testkit.ScenarioTree("unsafe"), Options{Compact: true})
	if !strings.Contains(out, "{\nvoid M()\n{\n}\n};") {
		t.Fatalf("unexpected rendering:\n%s", out)
	}
}

func TestConflictingAccessModifiers(t *testing.T) {
	_, _, _, err := renderTree(t, testkit.ScenarioTree("public", "private", "static"), Options{})
	if !errors.Is(err, ErrConflictingModifiers) {
		t.Fatalf("expected ErrConflictingModifiers, got %v", err)
	}
	var gerr *Error
	if !errors.As(err, &gerr) || gerr.Code != diag.GenConflictingModifiers {
		t.Fatalf("expected *Error with GEN3006, got %#v", err)
	}
	// repeating the same label is harmless
	if _, _, _, err := renderTree(t, testkit.ScenarioTree("public", "public"), Options{}); err != nil {
		t.Fatalf("repeated label: %v", err)
	}
}

func TestDuplicateDeclaration(t *testing.T) {
	b := syntax.NewBuilder("dup.cs", 0, 0)
	first := b.Param(b.Predefined("int"), "x")
	second := b.Param(b.Predefined("float"), "x")
	b.SetSpan(first, spanAt(10))
	b.SetSpan(second, spanAt(20))
	tree := testkit.MethodTree(b, []string{"static"}, []syntax.NodeID{first, second})

	out, _, _, err := renderTree(t, tree, Options{})
	if out != "" {
		t.Fatalf("failed render produced output %q", out)
	}
	if !errors.Is(err, ErrDuplicateDeclaration) {
		t.Fatalf("expected ErrDuplicateDeclaration, got %v", err)
	}
	var gerr *Error
	if !errors.As(err, &gerr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	d := gerr.Diagnostic()
	if d.Code != diag.GenDuplicateDeclaration || d.Primary.Start != 20 {
		t.Fatalf("diagnostic = %+v", d)
	}
	if len(d.Notes) != 1 || d.Notes[0].Span.Start != 10 {
		t.Fatalf("expected note at the first declaration, got %+v", d.Notes)
	}
}

func sameParamTree() *syntax.Tree {
	b := syntax.NewBuilder("two.cs", 0, 0)
	x := b.Param(b.Predefined("int"), "x")
	b.SetSpan(x, spanAt(10))
	m1 := b.Method([]string{"static"}, b.Predefined("void"), "A", []syntax.NodeID{x}, syntax.NoNodeID)
	y := b.Param(b.Predefined("float"), "x")
	b.SetSpan(y, spanAt(30))
	m2 := b.Method([]string{"static"}, b.Predefined("void"), "B", []syntax.NodeID{y}, syntax.NoNodeID)
	return b.Finish(b.Unit(nil, b.Class("C", nil, m1, m2)))
}

func TestSameParameterNameInDifferentMethods(t *testing.T) {
	_, _, _, err := renderTree(t, sameParamTree(), Options{})
	if !errors.Is(err, ErrDuplicateDeclaration) {
		t.Fatalf("expected ErrDuplicateDeclaration, got %v", err)
	}
	var gerr *Error
	if !errors.As(err, &gerr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	d := gerr.Diagnostic()
	if d.Primary.Start != 30 || len(d.Notes) != 1 || d.Notes[0].Span.Start != 10 || !strings.Contains(d.Notes[0].Msg, "C::A") {
		t.Fatalf("diagnostic = %+v", d)
	}

	tree := sameParamTree()
	out, err := NewGenerator(tree, symbols.NewMethodScopedTable(), symbols.NewScope(), Options{}, nil).Render()
	if err != nil {
		t.Fatalf("method-scoped Render: %v", err)
	}
	if !strings.Contains(out, "static void A(int x)") || !strings.Contains(out, "static void B(float x)") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestRenderIsIdempotent(t *testing.T) {
	first := mustRender(t, testkit.ScenarioTree(), Options{})
	second := mustRender(t, testkit.ScenarioTree(), Options{})
	if first != second {
		t.Fatalf("renders differ:\n%s\n---\n%s", first, second)
	}
	tree := testkit.ScenarioTree()
	if a, b := mustRender(t, tree, Options{}), mustRender(t, tree, Options{}); a != b {
		t.Fatalf("same tree rendered differently")
	}
}

func TestUnsupportedConstruct(t *testing.T) {
	build := func() *syntax.Tree {
		b := syntax.NewBuilder("loop.cs", 0, 0)
		loop := b.Unsupported("WhileStatement")
		b.SetSpan(loop, spanAt(42))
		return testkit.MethodTree(b, []string{"static"}, nil, loop)
	}

	_, _, _, err := renderTree(t, build(), Options{})
	if !errors.Is(err, ErrUnsupportedConstruct) {
		t.Fatalf("expected ErrUnsupportedConstruct, got %v", err)
	}
	var gerr *Error
	if !errors.As(err, &gerr) || gerr.Span.Start != 42 || !strings.Contains(gerr.Msg, "WhileStatement") {
		t.Fatalf("error lacks construct or location: %#v", err)
	}

	out, _, _, err := renderTree(t, build(), Options{Fallback: CommentFallback, Compact: true})
	if err != nil {
		t.Fatalf("fallback render: %v", err)
	}
	if !strings.Contains(out, "{\n/* unsupported: WhileStatement */\n}\n") {
		t.Fatalf("fallback output:\n%s", out)
	}
}

func TestInvalidKindIsUnsupported(t *testing.T) {
	b := syntax.NewBuilder("bad.cs", 0, 0)
	bogus := b.Add(syntax.Kind(99), spanAt(0), "")
	tree := testkit.MethodTree(b, []string{"static"}, nil, b.ExprStmt(bogus))
	_, _, _, err := renderTree(t, tree, Options{})
	if !errors.Is(err, ErrUnsupportedConstruct) || !strings.Contains(err.Error(), "Kind(99)") {
		t.Fatalf("expected unsupported Kind(99), got %v", err)
	}
}

func TestDepthLimit(t *testing.T) {
	_, _, _, err := renderTree(t, testkit.DeepCallTree(DefaultMaxDepth+10), Options{})
	if !errors.Is(err, ErrNestingTooDeep) {
		t.Fatalf("expected ErrNestingTooDeep, got %v", err)
	}
	if _, _, _, err := renderTree(t, testkit.DeepCallTree(20), Options{}); err != nil {
		t.Fatalf("moderate depth: %v", err)
	}
	if _, _, _, err := renderTree(t, testkit.DeepCallTree(20), Options{MaxDepth: 8}); !errors.Is(err, ErrNestingTooDeep) {
		t.Fatalf("custom MaxDepth ignored: %v", err)
	}
}

func TestMemberAccessTokens(t *testing.T) {
	b := syntax.NewBuilder("access.cs", 0, 0)
	param := b.Param(b.Ident("SerialPort"), "sp")
	stmts := []syntax.NodeID{
		b.ExprStmt(b.Invoke(b.Member(b.Ident("sp"), "Open"))),
		b.ExprStmt(b.Invoke(b.Path("Thread", "Sleep"), b.Literal("10"))),
		b.ExprStmt(b.Invoke(b.Member(b.Ident("this"), "Go"))),
		b.ExprStmt(b.Invoke(b.Path("NS", "C", "M"))),
		b.ExprStmt(b.Invoke(b.Member(b.Invoke(b.Ident("Make")), "Run"))),
		b.ExprStmt(b.Invoke(b.Path("sp", "BaseStream", "Flush"))),
		b.ExprStmt(b.Invoke(b.Member(b.Literal(`"x"`), "Trim"))),
	}
	tree := testkit.MethodTree(b, []string{"static"}, []syntax.NodeID{param}, stmts...)

	out := mustRender(t, tree, Options{Compact: true})
	for _, want := range []string{
		"static void M(SerialPort sp)\n",
		"sp.Open();\n",
		"Thread::Sleep(10);\n",
		"this->Go();\n",
		"NS::C::M();\n",
		"Make().Run();\n",
		"sp.BaseStream.Flush();\n",
		`"x".Trim();` + "\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q", want)
		}
	}
}

func TestTypesAndKeywords(t *testing.T) {
	b := syntax.NewBuilder("types.cs", 0, 0)
	params := []syntax.NodeID{
		b.Param(b.Array(b.Predefined("byte")), "data"),
		b.Param(b.Path("System", "String"), "s"),
		b.Param(b.Array(b.Array(b.Predefined("int"))), "grid"),
	}
	tree := testkit.MethodTree(b, nil, params)
	out := mustRender(t, tree, Options{Compact: true})
	want := "void M(unsigned char * data,System::String s,int * * grid)\n"
	if !strings.Contains(out, want) {
		t.Fatalf("output lacks %q:\n%s", want, out)
	}
}

func TestNestedBlockAndStatic(t *testing.T) {
	b := syntax.NewBuilder("nested.cs", 0, 0)
	inner := b.Block(b.ExprStmt(b.Invoke(b.Ident("f"))))
	tree := testkit.MethodTree(b, []string{"public", "static"}, nil, inner)
	out, table, _, err := renderTree(t, tree, Options{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "\t\t{\n\t\t\t{\n\t\t\t\tf();\n\t\t\t}\n\t\t}\n") {
		t.Fatalf("nested block not braced:\n%s", out)
	}
	for _, name := range []string{"NS", "C", "M"} {
		if !table.IsStatic(name) {
			t.Errorf("%s should be registered as static", name)
		}
	}
	if got := table.References("C::M", "f"); got != 1 {
		t.Fatalf("reference count for f = %d, want 1", got)
	}
}

func TestUnusedParameterWarnings(t *testing.T) {
	b := syntax.NewBuilder("unused.cs", 0, 0)
	used := b.Param(b.Predefined("int"), "used")
	idle := b.Param(b.Predefined("int"), "idle")
	tree := testkit.MethodTree(b, []string{"static"}, []syntax.NodeID{used, idle},
		b.ExprStmt(b.Invoke(b.Ident("print"), b.Ident("used"))))

	bag := diag.NewBag(10)
	_, err := NewGenerator(tree, symbols.NewTable(), symbols.NewScope(), Options{}, diag.BagReporter{Bag: bag}).Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if bag.Len() != 1 {
		t.Fatalf("expected one warning, got %+v", bag.Items())
	}
	d := bag.Items()[0]
	if d.Code != diag.GenUnusedParameter || d.Severity != diag.SevWarning || !strings.Contains(d.Message, `"idle"`) {
		t.Fatalf("unexpected warning %+v", d)
	}
}

func TestUsingNamespaceOption(t *testing.T) {
	b := syntax.NewBuilder("using.cs", 0, 0)
	m := b.Method(nil, b.Predefined("void"), "M", nil, syntax.NoNodeID)
	tree := b.Finish(b.Unit([]syntax.NodeID{b.Using("System.Device.Gpio")}, b.Class("C", nil, m)))
	out := mustRender(t, tree, Options{UsingNamespace: true})
	if !strings.HasPrefix(out, "#include <System/Device/Gpio.h>\nusing namespace System::Device::Gpio;\n\nclass C\n") {
		t.Fatalf("unexpected header:\n%s", out)
	}
}
