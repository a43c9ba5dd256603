package mir

// ExprType is the static type of a mid-level expression.
//
// This is a sealed interface - only types in this package implement it.
// Relative to the front-end vocabulary, SetType is gone (sets are
// list-backed now) and ErrorOrVoidType appears: the type of the error
// channel, inhabited by either an exception value or the canonical
// non-error sentinel.
type ExprType interface {
	exprType()
}

// BoolType is the type of boolean values.
type BoolType struct{}

func (BoolType) exprType() {}

// IntType is the type of 64-bit integer values.
type IntType struct{}

func (IntType) exprType() {}

// TypeType is the type of type-valued expressions.
type TypeType struct{}

func (TypeType) exprType() {}

// BottomType is the type of expressions that never produce a value.
type BottomType struct{}

func (BottomType) exprType() {}

// ErrorOrVoidType is the error-channel type: either an exception value
// or the canonical non-error sentinel.
type ErrorOrVoidType struct{}

func (ErrorOrVoidType) exprType() {}

// ListType is a homogeneous list. List-backed sets use it too.
type ListType struct {
	Elem ExprType
}

func (ListType) exprType() {}

// FunctionType is the type of callable values.
type FunctionType struct {
	ArgTypes []ExprType
	Returns  ExprType
}

func (FunctionType) exprType() {}

// CustomType is a named record; identity is the name.
type CustomType struct {
	Name             string
	Fields           []CustomTypeField
	IsException      bool
	ExceptionMessage string
}

func (*CustomType) exprType() {}
func (*CustomType) topLevel() {}

// CustomTypeField is one field declaration of a CustomType.
type CustomTypeField struct {
	Name string
	Type ExprType
}

// TypesEqual reports structural equality; CustomTypes compare by name.
func TypesEqual(a, b ExprType) bool {
	switch a := a.(type) {
	case BoolType:
		_, ok := b.(BoolType)
		return ok
	case IntType:
		_, ok := b.(IntType)
		return ok
	case TypeType:
		_, ok := b.(TypeType)
		return ok
	case BottomType:
		_, ok := b.(BottomType)
		return ok
	case ErrorOrVoidType:
		_, ok := b.(ErrorOrVoidType)
		return ok
	case ListType:
		other, ok := b.(ListType)
		return ok && TypesEqual(a.Elem, other.Elem)
	case FunctionType:
		other, ok := b.(FunctionType)
		if !ok || len(a.ArgTypes) != len(other.ArgTypes) {
			return false
		}
		for i := range a.ArgTypes {
			if !TypesEqual(a.ArgTypes[i], other.ArgTypes[i]) {
				return false
			}
		}
		return TypesEqual(a.Returns, other.Returns)
	case *CustomType:
		other, ok := b.(*CustomType)
		return ok && a.Name == other.Name
	default:
		return false
	}
}
