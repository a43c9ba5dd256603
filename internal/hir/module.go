package hir

// FunctionArgDecl is one declared function argument. Names are unique
// within a function.
type FunctionArgDecl struct {
	Name string
	Type ExprType
}

// FunctionDefn is a top-level function definition. Identity is the
// name, unique within a module. MayThrow is declared by the semantic
// analyzer and must agree with the MayThrow flag on every reference to
// the function.
type FunctionDefn struct {
	Name       string
	Args       []FunctionArgDecl
	ReturnType ExprType
	Body       []Stmt
	MayThrow   bool
}

// Module is an ordered front-end compilation unit. It is produced by
// external semantic analysis, owned by its producer and immutable once
// handed to the pipeline.
type Module struct {
	CustomTypes []*CustomType
	Functions   []*FunctionDefn
	Assertions  []*Assert
}

// CustomTypeByName returns the declared custom type with the given
// name, or nil.
func (m *Module) CustomTypeByName(name string) *CustomType {
	for _, ct := range m.CustomTypes {
		if ct.Name == name {
			return ct
		}
	}
	return nil
}
