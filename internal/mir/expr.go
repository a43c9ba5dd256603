package mir

// Expr is a mid-level expression. All operands are VarReferences
// (A-normal form); composite sub-expressions were bound to fresh
// variables by the desugar pass.
//
// This is a sealed interface - only types in this package implement it.
type Expr interface {
	ExprType() ExprType
	expr()
}

// VarReference refers to a variable or global function by name.
// A value type, not a pointer into a shared table.
type VarReference struct {
	Type             ExprType
	Name             string
	IsGlobalFunction bool
	MayThrow         bool
}

func (VarReference) expr()                {}
func (v VarReference) ExprType() ExprType { return v.Type }

// BoolLiteral is a true/false constant.
type BoolLiteral struct {
	Value bool
}

func (*BoolLiteral) expr()              {}
func (*BoolLiteral) ExprType() ExprType { return BoolType{} }

// IntLiteral is a 64-bit integer constant.
type IntLiteral struct {
	Value int64
}

func (*IntLiteral) expr()              {}
func (*IntLiteral) ExprType() ExprType { return IntType{} }

// TypeLiteral names a C++ type with named variable arguments spliced
// in by identifier.
type TypeLiteral struct {
	CppType string
	Args    map[string]VarReference
}

func (*TypeLiteral) expr()              {}
func (*TypeLiteral) ExprType() ExprType { return TypeType{} }

// FunctionCall applies a function-valued variable to arguments.
type FunctionCall struct {
	Fun  VarReference
	Args []VarReference
}

func (*FunctionCall) expr() {}
func (c *FunctionCall) ExprType() ExprType {
	return c.Fun.Type.(FunctionType).Returns
}

// MatchCase is one arm of a MatchExpr. The arm's logic is already
// outlined: Call invokes the synthesized arm function with the arm's
// free variables.
type MatchCase struct {
	TypePatterns    []string
	MatchedVarNames []string
	Call            *FunctionCall
}

// MatchExpr pattern-matches type-valued variables against per-arm
// patterns.
type MatchExpr struct {
	MatchedVars []VarReference
	Cases       []MatchCase
}

func (*MatchExpr) expr() {}
func (m *MatchExpr) ExprType() ExprType {
	return m.Cases[0].Call.ExprType()
}

// EqualityComparison is lhs == rhs on booleans, integers or types.
type EqualityComparison struct {
	LHS VarReference
	RHS VarReference
}

func (*EqualityComparison) expr()              {}
func (*EqualityComparison) ExprType() ExprType { return BoolType{} }

// SetEqualityComparison compares two list-backed sets by content,
// ignoring element order.
type SetEqualityComparison struct {
	LHS VarReference
	RHS VarReference
}

func (*SetEqualityComparison) expr()              {}
func (*SetEqualityComparison) ExprType() ExprType { return BoolType{} }

// AttributeAccess reads a field of a custom-type value.
type AttributeAccess struct {
	Var           VarReference
	AttributeName string
	Type          ExprType
}

func (*AttributeAccess) expr()                {}
func (a *AttributeAccess) ExprType() ExprType { return a.Type }

// NotExpr is boolean negation.
type NotExpr struct {
	Var VarReference
}

func (*NotExpr) expr()              {}
func (*NotExpr) ExprType() ExprType { return BoolType{} }

// UnaryMinusExpr negates an integer.
type UnaryMinusExpr struct {
	Var VarReference
}

func (*UnaryMinusExpr) expr()              {}
func (*UnaryMinusExpr) ExprType() ExprType { return IntType{} }

// IntComparisonExpr is an ordering comparison on integers.
type IntComparisonExpr struct {
	LHS VarReference
	RHS VarReference
	Op  string
}

func (*IntComparisonExpr) expr()              {}
func (*IntComparisonExpr) ExprType() ExprType { return BoolType{} }

// IntBinaryOpExpr is integer arithmetic.
type IntBinaryOpExpr struct {
	LHS VarReference
	RHS VarReference
	Op  string
}

func (*IntBinaryOpExpr) expr()              {}
func (*IntBinaryOpExpr) ExprType() ExprType { return IntType{} }

// ListExpr constructs a list from element variables.
type ListExpr struct {
	ElemType ExprType
	Elems    []VarReference
}

func (*ListExpr) expr()                {}
func (l *ListExpr) ExprType() ExprType { return ListType{Elem: l.ElemType} }

// AddToSetExpr produces Set with Elem added, if not already present by
// content equality. Both operands are list-backed sets.
type AddToSetExpr struct {
	Set  VarReference
	Elem VarReference
}

func (*AddToSetExpr) expr()                {}
func (a *AddToSetExpr) ExprType() ExprType { return a.Set.Type }

// ListConcatExpr is lhs + rhs on lists of the same element type.
type ListConcatExpr struct {
	LHS VarReference
	RHS VarReference
}

func (*ListConcatExpr) expr()                {}
func (c *ListConcatExpr) ExprType() ExprType { return c.LHS.Type }

// ListComprehension maps a named, already-outlined function over a
// list. Call's arguments are the outlined function's free variables;
// one of them is LoopVar, substituted per element.
type ListComprehension struct {
	ListVar VarReference
	LoopVar VarReference
	Call    *FunctionCall
}

func (*ListComprehension) expr() {}
func (c *ListComprehension) ExprType() ExprType {
	return ListType{Elem: c.Call.ExprType()}
}

// IntListSumExpr is sum() over a list of integers.
type IntListSumExpr struct {
	Var VarReference
}

func (*IntListSumExpr) expr()              {}
func (*IntListSumExpr) ExprType() ExprType { return IntType{} }

// BoolListAllExpr is all() over a list of booleans.
type BoolListAllExpr struct {
	Var VarReference
}

func (*BoolListAllExpr) expr()              {}
func (*BoolListAllExpr) ExprType() ExprType { return BoolType{} }

// BoolListAnyExpr is any() over a list of booleans.
type BoolListAnyExpr struct {
	Var VarReference
}

func (*BoolListAnyExpr) expr()              {}
func (*BoolListAnyExpr) ExprType() ExprType { return BoolType{} }

// IsInstanceExpr tests whether an error-channel value is an instance
// of a specific exception type.
type IsInstanceExpr struct {
	Var         VarReference
	CheckedType *CustomType
}

func (*IsInstanceExpr) expr()              {}
func (*IsInstanceExpr) ExprType() ExprType { return BoolType{} }

// SafeUncheckedCast narrows an error-channel value to the exception
// type an immediately preceding IsInstanceExpr established.
type SafeUncheckedCast struct {
	Var  VarReference
	Type *CustomType
}

func (*SafeUncheckedCast) expr()                {}
func (c *SafeUncheckedCast) ExprType() ExprType { return c.Type }

// ListToSetExpr deduplicates a list into a list-backed set.
type ListToSetExpr struct {
	Var VarReference
}

func (*ListToSetExpr) expr()                {}
func (l *ListToSetExpr) ExprType() ExprType { return l.Var.Type }

// SetToListExpr views a list-backed set as a list. Content-preserving;
// element order is unspecified.
type SetToListExpr struct {
	Var VarReference
}

func (*SetToListExpr) expr()                {}
func (s *SetToListExpr) ExprType() ExprType { return s.Var.Type }
