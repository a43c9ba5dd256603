package lir

// TopLevel is one top-level element of a normalized module.
//
// This is a sealed interface - only CustomType, CheckIfErrorDefn,
// FunctionDefn, Assignment and Assert implement it.
type TopLevel interface {
	topLevel()
}

func (*CustomType) topLevel() {}

// ErrorSpec pairs an exception type with its diagnostic message.
type ErrorSpec struct {
	Type    *CustomType
	Message string
}

// CheckIfErrorDefn declares the error-classification check. Template
// generation turns it into the one template that static-asserts
// against every exception type.
type CheckIfErrorDefn struct {
	Errors []ErrorSpec
}

func (*CheckIfErrorDefn) topLevel() {}

// FunctionArgDecl is one declared function argument.
type FunctionArgDecl struct {
	Name string
	Type ExprType
}

// FunctionDefn is a normalized function, ready for template
// generation. MayThrow functions get an `error` member in their
// generated template; never-fail functions get none.
type FunctionDefn struct {
	Name        string
	Description string
	Args        []FunctionArgDecl
	Body        []Stmt
	ReturnType  ExprType
	MayThrow    bool
}

func (*FunctionDefn) topLevel() {}

// Module is the normalize pass's output.
type Module struct {
	Body []TopLevel
}
