package syntax

import "fmt"

// Kind tags a Node. The set is closed: adding a kind requires a new
// Visitor method, which breaks every implementation until it is handled.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindCompilationUnit
	KindUsingDirective
	KindNamespaceDecl
	KindClassDecl
	KindMethodDecl
	KindParameterList
	KindParameter
	KindBlock
	KindExpressionStatement
	KindInvocationExpr
	KindMemberAccessExpr
	KindArgumentList
	KindArgument
	KindIdentifierName
	KindLiteralExpr
	KindPredefinedType
	KindArrayType
	// KindUnsupported stands for a construct outside the translated subset.
	// Node.Text names it, e.g. "WhileStatement".
	KindUnsupported

	kindCount
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "Invalid"
	case KindCompilationUnit:
		return "CompilationUnit"
	case KindUsingDirective:
		return "UsingDirective"
	case KindNamespaceDecl:
		return "NamespaceDecl"
	case KindClassDecl:
		return "ClassDecl"
	case KindMethodDecl:
		return "MethodDecl"
	case KindParameterList:
		return "ParameterList"
	case KindParameter:
		return "Parameter"
	case KindBlock:
		return "Block"
	case KindExpressionStatement:
		return "ExpressionStatement"
	case KindInvocationExpr:
		return "InvocationExpr"
	case KindMemberAccessExpr:
		return "MemberAccessExpr"
	case KindArgumentList:
		return "ArgumentList"
	case KindArgument:
		return "Argument"
	case KindIdentifierName:
		return "IdentifierName"
	case KindLiteralExpr:
		return "LiteralExpr"
	case KindPredefinedType:
		return "PredefinedType"
	case KindArrayType:
		return "ArrayType"
	case KindUnsupported:
		return "Unsupported"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Kinds lists every valid kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount-1)
	for k := KindCompilationUnit; k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

func (k Kind) IsValid() bool {
	return k > KindInvalid && k < kindCount
}

// IsExpr reports whether k may appear in expression position.
func (k Kind) IsExpr() bool {
	switch k {
	case KindInvocationExpr, KindMemberAccessExpr, KindIdentifierName, KindLiteralExpr, KindUnsupported:
		return true
	default:
		return false
	}
}

// IsType reports whether k may appear in type position.
func (k Kind) IsType() bool {
	switch k {
	case KindPredefinedType, KindArrayType, KindIdentifierName, KindMemberAccessExpr, KindUnsupported:
		return true
	default:
		return false
	}
}

// IsStmt reports whether k may appear inside a Block.
func (k Kind) IsStmt() bool {
	switch k {
	case KindExpressionStatement, KindBlock, KindUnsupported:
		return true
	default:
		return false
	}
}

// IsMember reports whether k may appear inside a namespace or class body.
func (k Kind) IsMember() bool {
	switch k {
	case KindNamespaceDecl, KindClassDecl, KindMethodDecl, KindUnsupported:
		return true
	default:
		return false
	}
}
