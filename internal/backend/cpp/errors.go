package cpp

import (
	"errors"

	"cscpp/internal/diag"
	"cscpp/internal/source"
	"cscpp/internal/symbols"
	"cscpp/internal/syntax"
)

var (
	// ErrDuplicateDeclaration is the same sentinel symbols.Table returns.
	ErrDuplicateDeclaration = symbols.ErrDuplicateDeclaration
	ErrUnsupportedConstruct = errors.New("unsupported construct")
	ErrEntryPointNotFound   = errors.New("entry point not found")
	ErrMultipleEntryPoints  = errors.New("multiple entry points")
	ErrEntryPointNotStatic  = errors.New("entry point is not static")
	ErrEntryPointSignature  = errors.New("entry point takes parameters")
	ErrConflictingModifiers = errors.New("conflicting access modifiers")
	ErrNestingTooDeep       = errors.New("nesting too deep")
	ErrMalformedTree        = errors.New("malformed syntax tree")
)

// Error is a failure of rendering or entry point resolution. It aborts the
// whole compilation; there is no partial output.
type Error struct {
	Code  diag.Code
	Span  source.Span
	Node  syntax.NodeID
	Msg   string
	Notes []diag.Note
	Err   error
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Err }

// Diagnostic converts e for a diag.Bag.
func (e *Error) Diagnostic() diag.Diagnostic {
	d := diag.NewError(e.Code, e.Span, e.Msg)
	d.Notes = append(d.Notes, e.Notes...)
	return d
}

func newError(code diag.Code, sentinel error, n *syntax.Node, id syntax.NodeID, msg string) *Error {
	e := &Error{Code: code, Node: id, Msg: msg, Err: sentinel}
	if n != nil {
		e.Span = n.Span
	}
	return e
}
