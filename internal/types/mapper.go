package types

import (
	"slices"

	"cscpp/internal/syntax"
)

// builtins is the fixed, case-sensitive set of C++ scalar spellings.
var builtins = []string{
	"bool",
	"char",
	"unsigned char",
	"signed char",
	"int",
	"unsigned int",
	"signed int",
	"short",
	"unsigned short",
	"signed short",
	"float",
	"double",
}

// keywordSpelling maps C# keywords whose C++ spelling differs.
var keywordSpelling = map[string]string{
	"byte":   "unsigned char",
	"sbyte":  "signed char",
	"uint":   "unsigned int",
	"ushort": "unsigned short",
}

// Renderer turns a type node into target text. The C++ generator implements it.
type Renderer interface {
	RenderType(t *syntax.Tree, id syntax.NodeID) (string, error)
}

// Category classifies a type reference.
type Category uint8

const (
	CategoryInvalid Category = iota
	CategoryBuiltin
	CategoryArray
	CategoryComposite
)

func (c Category) String() string {
	switch c {
	case CategoryBuiltin:
		return "builtin"
	case CategoryArray:
		return "array"
	case CategoryComposite:
		return "composite"
	default:
		return "invalid"
	}
}

// Info is the result of classifying one type node.
type Info struct {
	Category Category
	Spelling string
}

// Builtin reports whether the type is one of the scalar spellings.
func (i Info) Builtin() bool { return i.Category == CategoryBuiltin }

// Mapper classifies type nodes by their rendered text. It does no semantic
// resolution: a user-defined class is simply composite.
type Mapper struct {
	renderer Renderer
}

func NewMapper(r Renderer) *Mapper {
	return &Mapper{renderer: r}
}

// Classify renders the type node and reports its category and spelling.
// Errors come only from the renderer.
func (m *Mapper) Classify(t *syntax.Tree, id syntax.NodeID) (Info, error) {
	n := t.Node(id)
	if n == nil {
		return Info{}, nil
	}
	text, err := m.renderer.RenderType(t, id)
	if err != nil {
		return Info{}, err
	}
	switch {
	case n.Kind == syntax.KindArrayType:
		return Info{Category: CategoryArray, Spelling: text}, nil
	case IsBuiltinName(text):
		return Info{Category: CategoryBuiltin, Spelling: text}, nil
	default:
		return Info{Category: CategoryComposite, Spelling: text}, nil
	}
}

// IsBuiltin is Classify reduced to the built-in test; render errors count as false.
func (m *Mapper) IsBuiltin(t *syntax.Tree, id syntax.NodeID) bool {
	info, err := m.Classify(t, id)
	return err == nil && info.Builtin()
}

// IsBuiltinName reports set membership of an already rendered spelling.
func IsBuiltinName(spelling string) bool {
	return slices.Contains(builtins, spelling)
}

// Builtins returns a copy of the scalar spelling set.
func Builtins() []string {
	return slices.Clone(builtins)
}

// KeywordSpelling maps a C# predefined type keyword to its C++ spelling.
// Keywords without a distinct spelling come back unchanged.
func KeywordSpelling(keyword string) string {
	if s, ok := keywordSpelling[keyword]; ok {
		return s
	}
	return keyword
}

// ArraySpelling renders an array of elem as a raw pointer.
func ArraySpelling(elem string) string {
	return elem + " *"
}
