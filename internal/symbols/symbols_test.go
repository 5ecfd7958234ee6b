package symbols

import (
	"errors"
	"testing"

	"cscpp/internal/source"
)

func TestRegisterStaticIsIdempotent(t *testing.T) {
	table := NewTable()
	table.RegisterStatic("Console")
	table.RegisterStatic("Console")
	if !table.IsStatic("Console") {
		t.Fatalf("Console should be static")
	}
	if table.IsStatic("console") {
		t.Fatalf("lookup must be case-sensitive")
	}
	if got := table.Statics(); len(got) != 1 || got[0] != "Console" {
		t.Fatalf("Statics() = %v", got)
	}
}

func TestDeclareVariableDuplicate(t *testing.T) {
	table := NewTable()
	first := source.Span{Start: 10, End: 11}
	second := source.Span{Start: 20, End: 21}

	if err := table.DeclareVariable("C::M", "int", "x", first); err != nil {
		t.Fatalf("first declaration: %v", err)
	}
	err := table.DeclareVariable("C::M", "float", "x", second)
	if !errors.Is(err, ErrDuplicateDeclaration) {
		t.Fatalf("expected ErrDuplicateDeclaration, got %v", err)
	}
	var dup *DuplicateError
	if !errors.As(err, &dup) {
		t.Fatalf("expected *DuplicateError, got %T", err)
	}
	if dup.Prev != first || dup.Span != second || dup.PrevType != "int" || dup.Type != "float" {
		t.Fatalf("unexpected duplicate details: %+v", dup)
	}

	// the first declaration wins
	v, ok := table.LookupVariable("C::M", "x")
	if !ok || v.Type != "int" {
		t.Fatalf("LookupVariable = %+v, %v", v, ok)
	}
	// names are unique across the compilation
	err = table.DeclareVariable("C::N", "float", "x", second)
	if !errors.As(err, &dup) || dup.Owner != "C::N" || dup.PrevOwner != "C::M" {
		t.Fatalf("declaration under another method: %v", err)
	}
	if _, ok := table.LookupVariable("C::N", "x"); ok {
		t.Fatalf("x of C::M must not be visible from C::N")
	}
	if vars := table.Variables(); len(vars) != 1 || vars[0].Owner != "C::M" {
		t.Fatalf("Variables = %+v", vars)
	}
}

func TestMethodScopedTable(t *testing.T) {
	table := NewMethodScopedTable()
	if !table.MethodScoped() || NewTable().MethodScoped() {
		t.Fatalf("MethodScoped mismatch")
	}
	if err := table.DeclareVariable("C::M", "int", "x", source.Span{}); err != nil {
		t.Fatalf("declare in M: %v", err)
	}
	if err := table.DeclareVariable("C::N", "float", "x", source.Span{}); err != nil {
		t.Fatalf("declare in N: %v", err)
	}
	if err := table.DeclareVariable("C::N", "int", "x", source.Span{}); !errors.Is(err, ErrDuplicateDeclaration) {
		t.Fatalf("repeat in N: %v", err)
	}
	v, ok := table.LookupVariable("C::N", "x")
	if !ok || v.Type != "float" {
		t.Fatalf("LookupVariable(C::N) = %+v, %v", v, ok)
	}
	vars := table.Variables()
	if len(vars) != 2 || vars[0].Owner != "C::M" || vars[1].Owner != "C::N" {
		t.Fatalf("Variables = %+v", vars)
	}
	if unused := table.CollectUnused("C::N"); len(unused) != 1 || unused[0].Type != "float" {
		t.Fatalf("CollectUnused = %+v", unused)
	}
}

func TestReferenceIdentifier(t *testing.T) {
	table := NewTable()
	scope := NewScope()

	if got := table.ReferenceIdentifier(scope, "x"); got != 0 {
		t.Fatalf("outside method: got %d, want 0", got)
	}
	if !table.Empty() {
		t.Fatalf("reference outside a method must not be recorded")
	}

	cm := scope.EnterClass("C")
	mm := scope.EnterMethod("M")
	for want := uint32(1); want <= 3; want++ {
		if got := table.ReferenceIdentifier(scope, "x"); got != want {
			t.Fatalf("count = %d, want %d", got, want)
		}
	}
	scope.LeaveMethod(mm)
	scope.LeaveClass(cm)

	if got := table.References("C::M", "x"); got != 3 {
		t.Fatalf("References = %d, want 3", got)
	}
	if owners := table.Owners(); len(owners) != 1 || owners[0] != "C::M" {
		t.Fatalf("Owners = %v", owners)
	}
}

func TestCollectUnused(t *testing.T) {
	table := NewTable()
	scope := NewScope()
	mark := scope.EnterMethod("M")
	for _, name := range []string{"a", "b", "c"} {
		if err := table.DeclareVariable(scope.Owner(), "int", name, source.Span{}); err != nil {
			t.Fatalf("declare %s: %v", name, err)
		}
	}
	table.ReferenceIdentifier(scope, "b")
	scope.LeaveMethod(mark)

	unused := table.CollectUnused("M")
	if len(unused) != 2 || unused[0].Name != "a" || unused[1].Name != "c" {
		t.Fatalf("CollectUnused = %+v", unused)
	}
	if got := table.CollectUnused("Other"); len(got) != 0 {
		t.Fatalf("unknown owner returned %+v", got)
	}
}

func TestScopeNestingRestoresOuterMethod(t *testing.T) {
	s := NewScope()
	if s.InMethod() || s.InClass() || s.CurrentMethod() != "" || s.CurrentClass() != "" {
		t.Fatalf("fresh scope must be empty")
	}

	outerClass := s.EnterClass("Outer")
	outer := s.EnterMethod("Run")
	if s.Owner() != "Outer::Run" {
		t.Fatalf("Owner = %q", s.Owner())
	}
	innerClass := s.EnterClass("Inner")
	inner := s.EnterMethod("Step")
	if s.CurrentMethod() != "Step" || s.CurrentClass() != "Inner" || s.Owner() != "Outer::Inner::Step" {
		t.Fatalf("inner scope = %q in %q (%q)", s.CurrentMethod(), s.CurrentClass(), s.Owner())
	}
	s.LeaveMethod(inner)
	s.LeaveClass(innerClass)
	if s.CurrentMethod() != "Run" || s.CurrentClass() != "Outer" {
		t.Fatalf("outer scope not restored: %q in %q", s.CurrentMethod(), s.CurrentClass())
	}
	s.LeaveMethod(outer)
	s.LeaveClass(outerClass)
	if !s.Balanced() {
		t.Fatalf("scope not balanced after leaving everything")
	}
}

func TestScopeBlockDepth(t *testing.T) {
	s := NewScope()
	s.EnterBlock()
	s.EnterBlock()
	if s.BlockDepth() != 2 {
		t.Fatalf("BlockDepth = %d", s.BlockDepth())
	}
	s.LeaveBlock()
	s.LeaveBlock()

	defer func() {
		if recover() == nil {
			t.Fatalf("LeaveBlock at depth 0 must panic")
		}
	}()
	s.LeaveBlock()
}

func TestScopeUnbalancedLeavePanics(t *testing.T) {
	s := NewScope()
	outer := s.EnterMethod("A")
	s.EnterMethod("B")
	defer func() {
		if recover() == nil {
			t.Fatalf("leaving the outer method first must panic")
		}
	}()
	s.LeaveMethod(outer)
}
