package symbols

import (
	"errors"
	"fmt"
	"slices"

	"cscpp/internal/source"
)

// ErrDuplicateDeclaration matches every *DuplicateError via errors.Is.
var ErrDuplicateDeclaration = errors.New("duplicate declaration")

// DuplicateError reports a variable declared twice. Owner is the method of
// the second declaration, PrevOwner that of the first.
type DuplicateError struct {
	Owner     string
	PrevOwner string
	Name      string
	Type      string
	PrevType  string
	Span      source.Span
	Prev      source.Span
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate declaration of %q as %s (already declared as %s)", e.Name, e.Type, e.PrevType)
}

func (e *DuplicateError) Unwrap() error { return ErrDuplicateDeclaration }

// Variable is a declared local or parameter.
type Variable struct {
	Owner string
	Name  string
	Type  string
	Span  source.Span
}

type varKey struct {
	owner string
	name  string
}

// Table holds the identifiers of one compilation: type-scoped names,
// declared variables and per-method reference counts. It is not safe for
// concurrent use; each compilation owns its own Table.
//
// Variable names are unique across the whole compilation: a parameter x in
// one method collides with x in any other. NewMethodScopedTable relaxes this
// to one namespace per owning method. Neither form scopes by block.
type Table struct {
	statics  map[string]struct{}
	vars     map[varKey]Variable
	varOrder []varKey
	refs     map[string]map[string]uint32
	byMethod bool
}

func NewTable() *Table {
	return &Table{
		statics: make(map[string]struct{}),
		vars:    make(map[varKey]Variable),
		refs:    make(map[string]map[string]uint32),
	}
}

// NewMethodScopedTable returns a Table whose variables are keyed by owning
// method, so sibling methods may reuse a parameter name.
func NewMethodScopedTable() *Table {
	t := NewTable()
	t.byMethod = true
	return t
}

// MethodScoped reports whether variables are keyed per method.
func (t *Table) MethodScoped() bool { return t.byMethod }

func (t *Table) key(owner, name string) varKey {
	if t.byMethod {
		return varKey{owner: owner, name: name}
	}
	return varKey{name: name}
}

// RegisterStatic marks name as type-scoped. Registering twice is a no-op.
func (t *Table) RegisterStatic(name string) {
	t.statics[name] = struct{}{}
}

func (t *Table) IsStatic(name string) bool {
	_, ok := t.statics[name]
	return ok
}

// Statics returns every registered name, sorted.
func (t *Table) Statics() []string {
	out := make([]string, 0, len(t.statics))
	for name := range t.statics {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// DeclareVariable records name under owner. A second declaration of the same
// name fails with *DuplicateError; the first declaration stays.
func (t *Table) DeclareVariable(owner, typ, name string, sp source.Span) error {
	key := t.key(owner, name)
	if prev, ok := t.vars[key]; ok {
		return &DuplicateError{
			Owner:     owner,
			PrevOwner: prev.Owner,
			Name:      name,
			Type:      typ,
			PrevType:  prev.Type,
			Span:      sp,
			Prev:      prev.Span,
		}
	}
	t.vars[key] = Variable{Owner: owner, Name: name, Type: typ, Span: sp}
	t.varOrder = append(t.varOrder, key)
	return nil
}

// LookupVariable finds name declared under owner. A variable of another
// method is not visible.
func (t *Table) LookupVariable(owner, name string) (Variable, bool) {
	v, ok := t.vars[t.key(owner, name)]
	if !ok || v.Owner != owner {
		return Variable{}, false
	}
	return v, true
}

// ReferenceIdentifier counts one read of name inside the current method and
// returns the new count. Outside a method nothing is recorded and 0 is returned.
func (t *Table) ReferenceIdentifier(s *Scope, name string) uint32 {
	if s == nil || !s.InMethod() {
		return 0
	}
	owner := s.Owner()
	counts := t.refs[owner]
	if counts == nil {
		counts = make(map[string]uint32)
		t.refs[owner] = counts
	}
	counts[name]++
	return counts[name]
}

// References returns how often name was read inside owner.
func (t *Table) References(owner, name string) uint32 {
	return t.refs[owner][name]
}

// CollectUnused lists variables of owner that were never read, in declaration
// order. It is advisory and never changes generated output.
func (t *Table) CollectUnused(owner string) []Variable {
	var out []Variable
	for _, key := range t.varOrder {
		v := t.vars[key]
		if v.Owner != owner {
			continue
		}
		if t.refs[owner][v.Name] == 0 {
			out = append(out, v)
		}
	}
	return out
}

// Variables returns all declared variables in declaration order.
func (t *Table) Variables() []Variable {
	out := make([]Variable, 0, len(t.varOrder))
	for _, key := range t.varOrder {
		out = append(out, t.vars[key])
	}
	return out
}

// Owners returns every method that has reference counts, sorted.
func (t *Table) Owners() []string {
	out := make([]string, 0, len(t.refs))
	for owner := range t.refs {
		out = append(out, owner)
	}
	slices.Sort(out)
	return out
}

// Empty reports whether nothing has been recorded.
func (t *Table) Empty() bool {
	return len(t.statics) == 0 && len(t.vars) == 0 && len(t.refs) == 0
}
