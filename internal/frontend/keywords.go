package frontend

// reserved keywords cannot be identifiers without the @ prefix.
var reserved = map[string]struct{}{}

func init() {
	for _, kw := range []string{
		"abstract", "as", "base", "bool", "break", "byte", "case", "catch", "char",
		"checked", "class", "const", "continue", "decimal", "default", "delegate",
		"do", "double", "else", "enum", "event", "explicit", "extern", "false",
		"finally", "fixed", "float", "for", "foreach", "goto", "if", "implicit",
		"in", "int", "interface", "internal", "is", "lock", "long", "namespace",
		"new", "null", "object", "operator", "out", "override", "params", "private",
		"protected", "public", "readonly", "ref", "return", "sbyte", "sealed",
		"short", "sizeof", "stackalloc", "static", "string", "struct", "switch",
		"this", "throw", "true", "try", "typeof", "uint", "ulong", "unchecked",
		"unsafe", "ushort", "using", "virtual", "void", "volatile", "while",
	} {
		reserved[kw] = struct{}{}
	}
}

func isReserved(s string) bool {
	_, ok := reserved[s]
	return ok
}

// isPredefined reports C# keywords that name a type.
func isPredefined(s string) bool {
	switch s {
	case "bool", "byte", "sbyte", "char", "decimal", "double", "float", "int", "uint",
		"long", "ulong", "short", "ushort", "object", "string", "void":
		return true
	default:
		return false
	}
}

// Declaration modifiers, kept in source order on the node.
var modifiers = map[string]struct{}{
	"public": {}, "private": {}, "protected": {}, "internal": {}, "static": {},
	"abstract": {}, "virtual": {}, "override": {}, "sealed": {}, "readonly": {},
	"extern": {}, "unsafe": {}, "async": {}, "new": {}, "partial": {},
	"const": {}, "volatile": {}, "file": {}, "required": {},
}

// Statements outside the subset, by leading keyword.
var unsupportedStatements = map[string]string{
	"if":        "IfStatement",
	"while":     "WhileStatement",
	"for":       "ForStatement",
	"foreach":   "ForEachStatement",
	"do":        "DoStatement",
	"switch":    "SwitchStatement",
	"return":    "ReturnStatement",
	"break":     "BreakStatement",
	"continue":  "ContinueStatement",
	"throw":     "ThrowStatement",
	"try":       "TryStatement",
	"lock":      "LockStatement",
	"goto":      "GotoStatement",
	"yield":     "YieldStatement",
	"checked":   "CheckedStatement",
	"unchecked": "CheckedStatement",
	"unsafe":    "UnsafeStatement",
	"fixed":     "FixedStatement",
	"using":     "UsingStatement",
	"const":     "LocalConstantDeclaration",
}

// Type-like declarations the translator does not cover.
var unsupportedTypeDecls = map[string]string{
	"struct":    "StructDeclaration",
	"interface": "InterfaceDeclaration",
	"enum":      "EnumDeclaration",
	"record":    "RecordDeclaration",
	"delegate":  "DelegateDeclaration",
	"event":     "EventDeclaration",
}

// Expression keywords that start an unsupported construct.
var unsupportedPrimaries = map[string]string{
	"new":        "ObjectCreationExpression",
	"base":       "BaseExpression",
	"typeof":     "TypeOfExpression",
	"sizeof":     "SizeOfExpression",
	"nameof":     "NameOfExpression",
	"default":    "DefaultExpression",
	"checked":    "CheckedExpression",
	"unchecked":  "CheckedExpression",
	"await":      "AwaitExpression",
	"stackalloc": "StackAllocExpression",
	"throw":      "ThrowExpression",
}

// operatorConstruct names the expression an operator token continues.
func operatorConstruct(op string) string {
	switch op {
	case "=", "+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "<<=", "??=":
		return "AssignmentExpression"
	case "++", "--":
		return "PostfixUnaryExpression"
	case "?":
		return "ConditionalExpression"
	case "=>":
		return "LambdaExpression"
	case "is", "as":
		return "TypeTestExpression"
	case "switch":
		return "SwitchExpression"
	case "with":
		return "WithExpression"
	default:
		return "BinaryExpression"
	}
}
