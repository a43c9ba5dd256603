package mir

// TopLevel is one top-level element of a mid-level module.
//
// This is a sealed interface - only CustomType, CheckIfErrorDefn,
// FunctionDefn, Assignment and Assert implement it.
type TopLevel interface {
	topLevel()
}

// ErrorSpec pairs an exception type with its diagnostic message.
type ErrorSpec struct {
	Type    *CustomType
	Message string
}

// CheckIfErrorDefn is the synthesized module-level declaration of the
// error-classification check: the one place that knows every exception
// type and its message.
type CheckIfErrorDefn struct {
	Errors []ErrorSpec
}

func (*CheckIfErrorDefn) topLevel() {}

// FunctionArgDecl is one declared function argument.
type FunctionArgDecl struct {
	Name string
	Type ExprType
}

// FunctionDefn is a lowered function. Name is unique per module
// (synthesized functions draw from the compilation-wide identifier
// generator). Description is a human-readable note on the function's
// provenance, carried through to aid debugging of generated code.
// MayThrow functions carry an error channel next to their result;
// references to them go through error-checking call expansion.
type FunctionDefn struct {
	Name        string
	Description string
	Args        []FunctionArgDecl
	Body        []Stmt
	ReturnType  ExprType
	MayThrow    bool
}

func (*FunctionDefn) topLevel() {}

// Module is the desugar pass's output: an ordered body of top-level
// elements. Produced once, then consumed read-only.
type Module struct {
	Body []TopLevel
}
