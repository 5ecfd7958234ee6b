package cpp

import (
	"fmt"

	"cscpp/internal/syntax"
)

// DefaultMaxDepth bounds render recursion.
const DefaultMaxDepth = 512

// FallbackRenderer renders nodes outside the supported subset instead of failing.
type FallbackRenderer interface {
	RenderUnsupported(t *syntax.Tree, id syntax.NodeID, construct string) (string, error)
}

// FallbackFunc adapts a function to FallbackRenderer.
type FallbackFunc func(t *syntax.Tree, id syntax.NodeID, construct string) (string, error)

func (f FallbackFunc) RenderUnsupported(t *syntax.Tree, id syntax.NodeID, construct string) (string, error) {
	return f(t, id, construct)
}

// CommentFallback keeps going past unsupported constructs by leaving a
// C comment in their place.
var CommentFallback FallbackRenderer = FallbackFunc(func(_ *syntax.Tree, _ syntax.NodeID, construct string) (string, error) {
	return fmt.Sprintf("/* unsupported: %s */", construct), nil
})

// Options tunes rendering. The zero value renders tab-indented output with LF
// line endings and fails on unsupported constructs.
type Options struct {
	// Compact disables indentation.
	Compact bool
	// CRLF converts the final text to \r\n line endings.
	CRLF bool
	// MaxDepth limits render nesting; 0 means DefaultMaxDepth.
	MaxDepth int
	// UsingNamespace adds "using namespace X;" after each include.
	UsingNamespace bool
	// Fallback, when set, replaces the UnsupportedConstruct failure.
	Fallback FallbackRenderer
}

func (o Options) maxDepth() int {
	if o.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}

// Indent is the per-level indentation string.
func (o Options) Indent() string {
	if o.Compact {
		return ""
	}
	return "\t"
}
