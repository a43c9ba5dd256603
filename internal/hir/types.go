package hir

// ExprType is the static type of an expression.
//
// This is a sealed interface - only types in this package implement it.
// The vocabulary is a closed union with structural equality and no
// subtyping; use TypesEqual to compare.
type ExprType interface {
	exprType() // Marker method - seals interface to this package
}

// BoolType is the type of boolean values.
type BoolType struct{}

func (BoolType) exprType() {}

// IntType is the type of 64-bit integer values.
type IntType struct{}

func (IntType) exprType() {}

// TypeType is the type of type-valued expressions (C++ types as
// first-class values).
type TypeType struct{}

func (TypeType) exprType() {}

// BottomType is the type of expressions that never produce a value,
// such as calls to functions that always raise.
type BottomType struct{}

func (BottomType) exprType() {}

// ListType is a homogeneous list of Elem values.
type ListType struct {
	Elem ExprType
}

func (ListType) exprType() {}

// SetType is a homogeneous set of Elem values. Sets only exist in the
// front-end IR; the first lowering pass rewrites them to a list-backed
// representation.
type SetType struct {
	Elem ExprType
}

func (SetType) exprType() {}

// FunctionType is the type of callable values.
type FunctionType struct {
	ArgTypes []ExprType
	Returns  ExprType
}

func (FunctionType) exprType() {}

// CustomType is a named record with ordered, uniquely-named fields.
// Identity is the name, unique within a module. A CustomType tagged as
// an exception variant carries a fixed diagnostic message.
type CustomType struct {
	Name             string
	Fields           []CustomTypeField
	IsException      bool
	ExceptionMessage string
}

func (*CustomType) exprType() {}

// CustomTypeField is one field declaration of a CustomType.
type CustomTypeField struct {
	Name string
	Type ExprType
}

// TypesEqual reports structural equality of two types. CustomTypes
// compare by name, every other variant compares component-wise.
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
	case ListType:
		other, ok := b.(ListType)
		return ok && TypesEqual(a.Elem, other.Elem)
	case SetType:
		other, ok := b.(SetType)
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
