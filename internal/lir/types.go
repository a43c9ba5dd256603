package lir

// ExprType is the sealed union of static types at the normalized level.
// There is no list or set type here; collections are type-level values.
type ExprType interface {
	exprType()
}

type BoolType struct{}

type Int64Type struct{}

// TypeType is the type of C++ type values, including erased collections.
type TypeType struct{}

// BottomType is the return type of functions that never return normally.
type BottomType struct{}

// ErrorOrVoidType is the type of the error channel: either an exception
// instance or the void type.
type ErrorOrVoidType struct{}

type FunctionType struct {
	ArgTypes   []ExprType
	ReturnType ExprType
}

// CustomType names a user-defined value type. Constructor calls were
// rewritten away during normalization; the declaration survives so that
// template generation can emit the class template and its instance
// detector.
type CustomType struct {
	Name             string
	Fields           []CustomTypeField
	IsException      bool
	ExceptionMessage string
}

type CustomTypeField struct {
	Name string
	Type ExprType
}

func (BoolType) exprType()        {}
func (Int64Type) exprType()       {}
func (TypeType) exprType()        {}
func (BottomType) exprType()      {}
func (ErrorOrVoidType) exprType() {}
func (FunctionType) exprType()    {}
func (*CustomType) exprType()     {}

// TypesEqual reports structural equality. Custom types compare by name.
func TypesEqual(a, b ExprType) bool {
	switch x := a.(type) {
	case BoolType:
		_, ok := b.(BoolType)
		return ok
	case Int64Type:
		_, ok := b.(Int64Type)
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
	case FunctionType:
		y, ok := b.(FunctionType)
		if !ok || len(x.ArgTypes) != len(y.ArgTypes) {
			return false
		}
		for i := range x.ArgTypes {
			if !TypesEqual(x.ArgTypes[i], y.ArgTypes[i]) {
				return false
			}
		}
		return TypesEqual(x.ReturnType, y.ReturnType)
	case *CustomType:
		y, ok := b.(*CustomType)
		return ok && x.Name == y.Name
	}
	return false
}
