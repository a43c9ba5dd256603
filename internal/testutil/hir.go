// Package testutil provides builders for the front-end trees that the
// pass tests construct over and over.
package testutil

import "github.com/tmppy/tmppyc/internal/hir"

// Fn builds a function definition.
func Fn(name string, args []hir.FunctionArgDecl, returns hir.ExprType, body ...hir.Stmt) *hir.FunctionDefn {
	return &hir.FunctionDefn{
		Name:       name,
		Args:       args,
		ReturnType: returns,
		Body:       body,
	}
}

// FallibleFn builds a function definition carrying an error channel.
func FallibleFn(name string, args []hir.FunctionArgDecl, returns hir.ExprType, body ...hir.Stmt) *hir.FunctionDefn {
	fn := Fn(name, args, returns, body...)
	fn.MayThrow = true
	return fn
}

// Arg builds one argument declaration.
func Arg(name string, t hir.ExprType) hir.FunctionArgDecl {
	return hir.FunctionArgDecl{Name: name, Type: t}
}

// Ref builds a local variable reference.
func Ref(name string, t hir.ExprType) hir.VarReference {
	return hir.VarReference{Type: t, Name: name}
}

// FnRef builds a reference to a global function.
func FnRef(fn *hir.FunctionDefn) hir.VarReference {
	argTypes := make([]hir.ExprType, len(fn.Args))
	for i, arg := range fn.Args {
		argTypes[i] = arg.Type
	}
	return hir.VarReference{
		Type:             hir.FunctionType{ArgTypes: argTypes, Returns: fn.ReturnType},
		Name:             fn.Name,
		IsGlobalFunction: true,
		MayThrow:         fn.MayThrow,
	}
}

// Assign builds an assignment whose left-hand side takes the
// right-hand side's type.
func Assign(name string, rhs hir.Expr) *hir.Assignment {
	return &hir.Assignment{LHS: hir.VarReference{Type: rhs.ExprType(), Name: name}, RHS: rhs}
}

// Return builds a return statement.
func Return(e hir.Expr) *hir.ReturnStmt {
	return &hir.ReturnStmt{Expr: e}
}

// Module builds a module from function definitions.
func Module(fns ...*hir.FunctionDefn) *hir.Module {
	return &hir.Module{Functions: fns}
}
