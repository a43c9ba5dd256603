package hir

// Expr is a front-end expression node. Every expression carries its
// statically-known type.
//
// This is a sealed interface - only types in this package implement it.
type Expr interface {
	ExprType() ExprType
	expr() // Marker method - seals interface to this package
}

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

// TypeLiteral names a C++ type, optionally with named argument
// expressions spliced into the type string by identifier, e.g.
// Type("std::pair<X, Y>", X: a, Y: b).
type TypeLiteral struct {
	CppType string
	Args    map[string]Expr
}

func (*TypeLiteral) expr()              {}
func (*TypeLiteral) ExprType() ExprType { return TypeType{} }

// VarReference refers to a variable or global function by name. It is a
// value type: copying one is cheap and carries no tree ownership.
//
// MayThrow marks references that, if called, may fail; it is what
// triggers error-checking call expansion during lowering.
type VarReference struct {
	Type             ExprType
	Name             string
	IsGlobalFunction bool
	MayThrow         bool
}

func (VarReference) expr()                {}
func (v VarReference) ExprType() ExprType { return v.Type }

// MatchCase is one arm of a MatchExpr. TypePatterns are C++ type
// pattern strings, one per matched expression; MatchedVarNames are the
// names the patterns bind, referenced by the arm's Expr.
type MatchCase struct {
	TypePatterns    []string
	MatchedVarNames []string
	Expr            Expr
}

// MatchExpr pattern-matches one or more type-valued expressions
// against per-arm patterns.
type MatchExpr struct {
	MatchedExprs []Expr
	Cases        []MatchCase
	Type         ExprType
}

func (*MatchExpr) expr()                {}
func (m *MatchExpr) ExprType() ExprType { return m.Type }

// FunctionCall applies a callable expression to arguments.
type FunctionCall struct {
	Fun  Expr
	Args []Expr
}

func (*FunctionCall) expr() {}
func (c *FunctionCall) ExprType() ExprType {
	return c.Fun.ExprType().(FunctionType).Returns
}

// EqualityComparison is lhs == rhs. Operand types are equal and
// comparable (the type checker guarantees it).
type EqualityComparison struct {
	LHS Expr
	RHS Expr
}

func (*EqualityComparison) expr()              {}
func (*EqualityComparison) ExprType() ExprType { return BoolType{} }

// AttributeAccess reads a field of a custom-type value.
type AttributeAccess struct {
	Expr          Expr
	AttributeName string
	Type          ExprType
}

func (*AttributeAccess) expr()                {}
func (a *AttributeAccess) ExprType() ExprType { return a.Type }

// ListExpr constructs a list from element expressions.
type ListExpr struct {
	ElemType ExprType
	Elems    []Expr
}

func (*ListExpr) expr()                {}
func (l *ListExpr) ExprType() ExprType { return ListType{Elem: l.ElemType} }

// SetExpr constructs a set from element expressions.
type SetExpr struct {
	ElemType ExprType
	Elems    []Expr
}

func (*SetExpr) expr()                {}
func (s *SetExpr) ExprType() ExprType { return SetType{Elem: s.ElemType} }

// AndExpr is the short-circuit boolean "and".
type AndExpr struct {
	LHS Expr
	RHS Expr
}

func (*AndExpr) expr()              {}
func (*AndExpr) ExprType() ExprType { return BoolType{} }

// OrExpr is the short-circuit boolean "or".
type OrExpr struct {
	LHS Expr
	RHS Expr
}

func (*OrExpr) expr()              {}
func (*OrExpr) ExprType() ExprType { return BoolType{} }

// NotExpr is boolean negation.
type NotExpr struct {
	Operand Expr
}

func (*NotExpr) expr()              {}
func (*NotExpr) ExprType() ExprType { return BoolType{} }

// IntUnaryMinusExpr negates an integer.
type IntUnaryMinusExpr struct {
	Operand Expr
}

func (*IntUnaryMinusExpr) expr()              {}
func (*IntUnaryMinusExpr) ExprType() ExprType { return IntType{} }

// IntComparisonExpr is an ordering comparison on integers.
// Op is one of "<", ">", "<=", ">=".
type IntComparisonExpr struct {
	LHS Expr
	RHS Expr
	Op  string
}

func (*IntComparisonExpr) expr()              {}
func (*IntComparisonExpr) ExprType() ExprType { return BoolType{} }

// IntBinaryOpExpr is integer arithmetic. Op is one of "+", "-", "*",
// "/", "%".
type IntBinaryOpExpr struct {
	LHS Expr
	RHS Expr
	Op  string
}

func (*IntBinaryOpExpr) expr()              {}
func (*IntBinaryOpExpr) ExprType() ExprType { return IntType{} }

// ListConcatExpr is lhs + rhs on lists of the same element type.
type ListConcatExpr struct {
	LHS  Expr
	RHS  Expr
	Type ListType
}

func (*ListConcatExpr) expr()                {}
func (c *ListConcatExpr) ExprType() ExprType { return c.Type }

// ListComprehension is [ResultElem for LoopVar in List].
type ListComprehension struct {
	List       Expr
	LoopVar    VarReference
	ResultElem Expr
}

func (*ListComprehension) expr() {}
func (c *ListComprehension) ExprType() ExprType {
	return ListType{Elem: c.ResultElem.ExprType()}
}

// SetComprehension is {ResultElem for LoopVar in Set}.
type SetComprehension struct {
	Set        Expr
	LoopVar    VarReference
	ResultElem Expr
}

func (*SetComprehension) expr() {}
func (c *SetComprehension) ExprType() ExprType {
	return SetType{Elem: c.ResultElem.ExprType()}
}

// IntListSumExpr is sum() over a list of integers.
type IntListSumExpr struct {
	List Expr
}

func (*IntListSumExpr) expr()              {}
func (*IntListSumExpr) ExprType() ExprType { return IntType{} }

// IntSetSumExpr is sum() over a set of integers.
type IntSetSumExpr struct {
	Set Expr
}

func (*IntSetSumExpr) expr()              {}
func (*IntSetSumExpr) ExprType() ExprType { return IntType{} }

// BoolListAllExpr is all() over a list of booleans.
type BoolListAllExpr struct {
	List Expr
}

func (*BoolListAllExpr) expr()              {}
func (*BoolListAllExpr) ExprType() ExprType { return BoolType{} }

// BoolSetAllExpr is all() over a set of booleans.
type BoolSetAllExpr struct {
	Set Expr
}

func (*BoolSetAllExpr) expr()              {}
func (*BoolSetAllExpr) ExprType() ExprType { return BoolType{} }

// BoolListAnyExpr is any() over a list of booleans.
type BoolListAnyExpr struct {
	List Expr
}

func (*BoolListAnyExpr) expr()              {}
func (*BoolListAnyExpr) ExprType() ExprType { return BoolType{} }

// BoolSetAnyExpr is any() over a set of booleans.
type BoolSetAnyExpr struct {
	Set Expr
}

func (*BoolSetAnyExpr) expr()              {}
func (*BoolSetAnyExpr) ExprType() ExprType { return BoolType{} }
