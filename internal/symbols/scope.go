package symbols

import (
	"fmt"
	"strings"
)

// ScopeMark is returned by Enter* and must be handed back to the matching Leave*.
type ScopeMark int

type methodFrame struct {
	name  string
	owner string
}

// Scope tracks the enclosing method, the enclosing class and the lexical
// block depth during one traversal. Enter/Leave pairs nest like the tree, so
// leaving a method restores whatever method (if any) enclosed it.
type Scope struct {
	methods    []methodFrame
	classes    []string
	blockDepth uint32
}

func NewScope() *Scope {
	return &Scope{
		methods: make([]methodFrame, 0, 4),
		classes: make([]string, 0, 4),
	}
}

func (s *Scope) InMethod() bool { return len(s.methods) > 0 }
func (s *Scope) InClass() bool  { return len(s.classes) > 0 }

// CurrentMethod returns the innermost method name or "".
func (s *Scope) CurrentMethod() string {
	if len(s.methods) == 0 {
		return ""
	}
	return s.methods[len(s.methods)-1].name
}

// CurrentClass returns the innermost class name or "".
func (s *Scope) CurrentClass() string {
	if len(s.classes) == 0 {
		return ""
	}
	return s.classes[len(s.classes)-1]
}

// Owner is the class-qualified name of the current method ("Outer::Inner::M"),
// or "" outside any method. Variables and reference counts are keyed by it.
func (s *Scope) Owner() string {
	if len(s.methods) == 0 {
		return ""
	}
	return s.methods[len(s.methods)-1].owner
}

func (s *Scope) EnterClass(name string) ScopeMark {
	mark := ScopeMark(len(s.classes))
	s.classes = append(s.classes, name)
	return mark
}

func (s *Scope) LeaveClass(mark ScopeMark) {
	if int(mark) != len(s.classes)-1 {
		panic(fmt.Sprintf("symbols: unbalanced LeaveClass: mark %d, depth %d", mark, len(s.classes)))
	}
	s.classes = s.classes[:mark]
}

func (s *Scope) EnterMethod(name string) ScopeMark {
	mark := ScopeMark(len(s.methods))
	owner := name
	if len(s.classes) > 0 {
		owner = strings.Join(s.classes, "::") + "::" + name
	}
	s.methods = append(s.methods, methodFrame{name: name, owner: owner})
	return mark
}

func (s *Scope) LeaveMethod(mark ScopeMark) {
	if int(mark) != len(s.methods)-1 {
		panic(fmt.Sprintf("symbols: unbalanced LeaveMethod: mark %d, depth %d", mark, len(s.methods)))
	}
	s.methods = s.methods[:mark]
}

func (s *Scope) EnterBlock() {
	s.blockDepth++
}

// LeaveBlock panics when no block is open; that is a generator bug, not bad input.
func (s *Scope) LeaveBlock() {
	if s.blockDepth == 0 {
		panic("symbols: LeaveBlock without matching EnterBlock")
	}
	s.blockDepth--
}

func (s *Scope) BlockDepth() uint32 { return s.blockDepth }

// Balanced reports whether every Enter has been matched by a Leave.
func (s *Scope) Balanced() bool {
	return len(s.methods) == 0 && len(s.classes) == 0 && s.blockDepth == 0
}
