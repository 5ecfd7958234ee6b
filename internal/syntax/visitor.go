package syntax

// Visitor has one method per Kind. Implementations assert conformance with
//
//	var _ syntax.Visitor[string] = (*Generator)(nil)
//
// so a new Kind fails to compile until it is handled everywhere.
type Visitor[R any] interface {
	VisitCompilationUnit(id NodeID, n *Node) (R, error)
	VisitUsingDirective(id NodeID, n *Node) (R, error)
	VisitNamespaceDecl(id NodeID, n *Node) (R, error)
	VisitClassDecl(id NodeID, n *Node) (R, error)
	VisitMethodDecl(id NodeID, n *Node) (R, error)
	VisitParameterList(id NodeID, n *Node) (R, error)
	VisitParameter(id NodeID, n *Node) (R, error)
	VisitBlock(id NodeID, n *Node) (R, error)
	VisitExpressionStatement(id NodeID, n *Node) (R, error)
	VisitInvocationExpr(id NodeID, n *Node) (R, error)
	VisitMemberAccessExpr(id NodeID, n *Node) (R, error)
	VisitArgumentList(id NodeID, n *Node) (R, error)
	VisitArgument(id NodeID, n *Node) (R, error)
	VisitIdentifierName(id NodeID, n *Node) (R, error)
	VisitLiteralExpr(id NodeID, n *Node) (R, error)
	VisitPredefinedType(id NodeID, n *Node) (R, error)
	VisitArrayType(id NodeID, n *Node) (R, error)
	// VisitUnsupported receives KindUnsupported nodes and any kind that is
	// not valid. There is no silent default.
	VisitUnsupported(id NodeID, n *Node) (R, error)
}

// Dispatch routes node id of t to the matching Visitor method.
// A missing node is reported through VisitUnsupported with a nil node.
func Dispatch[R any](v Visitor[R], t *Tree, id NodeID) (R, error) {
	n := t.Node(id)
	if n == nil {
		return v.VisitUnsupported(id, nil)
	}
	switch n.Kind {
	case KindCompilationUnit:
		return v.VisitCompilationUnit(id, n)
	case KindUsingDirective:
		return v.VisitUsingDirective(id, n)
	case KindNamespaceDecl:
		return v.VisitNamespaceDecl(id, n)
	case KindClassDecl:
		return v.VisitClassDecl(id, n)
	case KindMethodDecl:
		return v.VisitMethodDecl(id, n)
	case KindParameterList:
		return v.VisitParameterList(id, n)
	case KindParameter:
		return v.VisitParameter(id, n)
	case KindBlock:
		return v.VisitBlock(id, n)
	case KindExpressionStatement:
		return v.VisitExpressionStatement(id, n)
	case KindInvocationExpr:
		return v.VisitInvocationExpr(id, n)
	case KindMemberAccessExpr:
		return v.VisitMemberAccessExpr(id, n)
	case KindArgumentList:
		return v.VisitArgumentList(id, n)
	case KindArgument:
		return v.VisitArgument(id, n)
	case KindIdentifierName:
		return v.VisitIdentifierName(id, n)
	case KindLiteralExpr:
		return v.VisitLiteralExpr(id, n)
	case KindPredefinedType:
		return v.VisitPredefinedType(id, n)
	case KindArrayType:
		return v.VisitArrayType(id, n)
	default:
		return v.VisitUnsupported(id, n)
	}
}
