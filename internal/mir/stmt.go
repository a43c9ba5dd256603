package mir

// Stmt is a mid-level statement.
//
// This is a sealed interface - only types in this package implement it.
type Stmt interface {
	stmt()
}

// Assignment binds one variable, or - for calls into possibly-failing
// functions - a result variable and an error variable at once
// (LHS2 non-nil).
type Assignment struct {
	LHS  VarReference
	LHS2 *VarReference
	RHS  Expr
}

func (*Assignment) stmt()     {}
func (*Assignment) topLevel() {}

// UnpackingAssignment destructures a list variable.
type UnpackingAssignment struct {
	LHSList      []VarReference
	RHS          VarReference
	ErrorMessage string
}

func (*UnpackingAssignment) stmt() {}

// IfStmt branches on a boolean variable.
type IfStmt struct {
	Cond VarReference
	Then []Stmt
	Else []Stmt
}

func (*IfStmt) stmt() {}

// ReturnStmt terminates the enclosing function. A plain return sets
// Result only; an error return sets Error only; a return forwarding a
// callee's channels sets both, and at runtime exactly one of the two
// carries a non-void value. A function that cannot fail always returns
// with Error nil.
type ReturnStmt struct {
	Result *VarReference
	Error  *VarReference
}

func (*ReturnStmt) stmt() {}

// Assert checks a boolean variable at instantiation time.
type Assert struct {
	Var     VarReference
	Message string
}

func (*Assert) stmt()     {}
func (*Assert) topLevel() {}

// AlwaysReturns reports whether every execution of stmts terminates
// the enclosing function.
func AlwaysReturns(stmts []Stmt) bool {
	if len(stmts) == 0 {
		return false
	}
	switch last := stmts[len(stmts)-1].(type) {
	case *ReturnStmt:
		return true
	case *IfStmt:
		return AlwaysReturns(last.Then) && AlwaysReturns(last.Else)
	default:
		return false
	}
}
