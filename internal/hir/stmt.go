package hir

// Stmt is a front-end statement. Statement lists are ordered; order is
// evaluation order.
//
// This is a sealed interface - only types in this package implement it.
type Stmt interface {
	stmt() // Marker method - seals interface to this package
}

// Assignment binds a single variable.
type Assignment struct {
	LHS VarReference
	RHS Expr
}

func (*Assignment) stmt() {}

// UnpackingAssignment destructures a list into multiple variables.
// ErrorMessage is the diagnostic used when the list's length does not
// match at instantiation time.
type UnpackingAssignment struct {
	LHSList      []VarReference
	RHS          Expr
	ErrorMessage string
}

func (*UnpackingAssignment) stmt() {}

// IfStmt is a two-armed conditional. Both arms are statement lists.
type IfStmt struct {
	Cond Expr
	Then []Stmt
	Else []Stmt
}

func (*IfStmt) stmt() {}

// ReturnStmt returns a value from the enclosing function.
type ReturnStmt struct {
	Expr Expr
}

func (*ReturnStmt) stmt() {}

// RaiseStmt raises an exception value. Only exists in the front-end
// IR; the first lowering pass rewrites it to error-channel returns or
// handler dispatch.
type RaiseStmt struct {
	Expr Expr
}

func (*RaiseStmt) stmt() {}

// Assert checks a boolean expression at instantiation time.
type Assert struct {
	Expr    Expr
	Message string
}

func (*Assert) stmt() {}

// TryExcept guards TryBody with a single handler for CaughtType,
// binding the caught value to CaughtName inside ExceptBody. Only
// exists in the front-end IR.
type TryExcept struct {
	TryBody    []Stmt
	CaughtType *CustomType
	CaughtName string
	ExceptBody []Stmt
}

func (*TryExcept) stmt() {}

// AlwaysReturns reports whether every execution of stmts terminates the
// enclosing function (by return or raise).
func AlwaysReturns(stmts []Stmt) bool {
	if len(stmts) == 0 {
		return false
	}
	switch last := stmts[len(stmts)-1].(type) {
	case *ReturnStmt, *RaiseStmt:
		return true
	case *IfStmt:
		return AlwaysReturns(last.Then) && AlwaysReturns(last.Else)
	case *TryExcept:
		return AlwaysReturns(last.TryBody) && AlwaysReturns(last.ExceptBody)
	default:
		return false
	}
}
