// Package frontend turns C# source text into a syntax.Tree.
//
// The lexer is a participle rule set; the parser is hand-written recursive
// descent over the resulting tokens. Only the translated subset gets real
// nodes. Other well-formed constructs (locals, loops, operators, fields and
// so on) are consumed with bracket-balanced recovery and recorded as
// Unsupported nodes carrying the construct name, which the backend either
// rejects or renders through its fallback.
package frontend
