package lir

// Expr is a normalized expression. Still A-normal form: every operand
// is a VarReference.
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

type BoolLiteral struct {
	Value bool
}

func (*BoolLiteral) expr()              {}
func (*BoolLiteral) ExprType() ExprType { return BoolType{} }

type IntLiteral struct {
	Value int64
}

func (*IntLiteral) expr()              {}
func (*IntLiteral) ExprType() ExprType { return Int64Type{} }

// TypeLiteral names a C++ type with named variable arguments spliced
// in by identifier at template-generation time.
type TypeLiteral struct {
	CppType string
	Args    map[string]VarReference
}

func (*TypeLiteral) expr()              {}
func (*TypeLiteral) ExprType() ExprType { return TypeType{} }

// TemplateInstantiation instantiates a named runtime-library or
// custom-type template with variable arguments. The instantiation is
// itself a type value; use ClassMemberAccess to read a member.
type TemplateInstantiation struct {
	Template string
	Args     []VarReference
}

func (*TemplateInstantiation) expr()              {}
func (*TemplateInstantiation) ExprType() ExprType { return TypeType{} }

// ClassMemberAccess reads a member of a class value, either a field of
// a custom-type instance or the `type`/`value` member of an
// instantiated runtime-library template.
type ClassMemberAccess struct {
	Class      Expr
	MemberName string
	MemberType ExprType
}

func (*ClassMemberAccess) expr()                {}
func (a *ClassMemberAccess) ExprType() ExprType { return a.MemberType }

// FunctionCall applies a function-valued variable to arguments.
type FunctionCall struct {
	Fun  VarReference
	Args []VarReference
}

func (*FunctionCall) expr() {}
func (c *FunctionCall) ExprType() ExprType {
	return c.Fun.Type.(FunctionType).ReturnType
}

// MatchCase is one arm of a MatchExpr; Call invokes the outlined arm
// function. Pattern identifiers were obfuscated during desugaring.
type MatchCase struct {
	TypePatterns    []string
	MatchedVarNames []string
	Call            *FunctionCall
}

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

type NotExpr struct {
	Var VarReference
}

func (*NotExpr) expr()              {}
func (*NotExpr) ExprType() ExprType { return BoolType{} }

type UnaryMinusExpr struct {
	Var VarReference
}

func (*UnaryMinusExpr) expr()              {}
func (*UnaryMinusExpr) ExprType() ExprType { return Int64Type{} }

type IntComparisonExpr struct {
	LHS VarReference
	RHS VarReference
	Op  string
}

func (*IntComparisonExpr) expr()              {}
func (*IntComparisonExpr) ExprType() ExprType { return BoolType{} }

type IntBinaryOpExpr struct {
	LHS VarReference
	RHS VarReference
	Op  string
}

func (*IntBinaryOpExpr) expr()              {}
func (*IntBinaryOpExpr) ExprType() ExprType { return Int64Type{} }

// ListComprehension maps an outlined function over a type-level list.
// TransformTemplate names the backing runtime-library template,
// selected from the source and destination element kinds during
// normalization.
type ListComprehension struct {
	ListVar           VarReference
	LoopVar           VarReference
	Call              *FunctionCall
	TransformTemplate string
}

func (*ListComprehension) expr()              {}
func (*ListComprehension) ExprType() ExprType { return TypeType{} }

// IsInstanceExpr tests whether an error-channel value is an instance
// of a specific exception type. Template generation memoizes one
// detector template per checked type.
type IsInstanceExpr struct {
	Var         VarReference
	CheckedType *CustomType
}

func (*IsInstanceExpr) expr()              {}
func (*IsInstanceExpr) ExprType() ExprType { return BoolType{} }

// SafeUncheckedCast narrows an error-channel value to an exception
// type. Identity at the template level.
type SafeUncheckedCast struct {
	Var  VarReference
	Type *CustomType
}

func (*SafeUncheckedCast) expr()                {}
func (c *SafeUncheckedCast) ExprType() ExprType { return c.Type }
