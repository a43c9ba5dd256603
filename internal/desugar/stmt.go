package desugar

import (
	"fmt"

	"github.com/tmppy/tmppyc/internal/hir"
	"github.com/tmppy/tmppyc/internal/mir"
)

// stmtsToMIR lowers a statement list into w. A try/except consumes the
// statements that follow it (they move into the continuation
// function), so conversion stops there.
func stmtsToMIR(stmts []hir.Stmt, w *stmtWriter) error {
	for i, stmt := range stmts {
		switch s := stmt.(type) {
		case *hir.Assignment:
			if err := assignmentToMIR(s, w); err != nil {
				return err
			}
		case *hir.UnpackingAssignment:
			if err := unpackingAssignmentToMIR(s, w); err != nil {
				return err
			}
		case *hir.IfStmt:
			if err := ifStmtToMIR(s, w); err != nil {
				return err
			}
		case *hir.ReturnStmt:
			if err := returnStmtToMIR(s, w); err != nil {
				return err
			}
		case *hir.RaiseStmt:
			if err := raiseStmtToMIR(s, w); err != nil {
				return err
			}
		case *hir.Assert:
			if err := assertToMIR(s, w); err != nil {
				return err
			}
		case *hir.TryExcept:
			return tryExceptToMIR(s, stmts[i+1:], w)
		default:
			return fmt.Errorf("unsupported statement %T", stmt)
		}
	}
	return nil
}

func assignmentToMIR(assignment *hir.Assignment, w *stmtWriter) error {
	lhs, err := varReferenceToMIR(assignment.LHS, w)
	if err != nil {
		return err
	}
	rhs, err := exprToMIR(assignment.RHS, w)
	if err != nil {
		return err
	}
	w.write(&mir.Assignment{LHS: lhs, RHS: rhs})
	return nil
}

func unpackingAssignmentToMIR(assignment *hir.UnpackingAssignment, w *stmtWriter) error {
	lhsList := make([]mir.VarReference, len(assignment.LHSList))
	for i, lhs := range assignment.LHSList {
		converted, err := varReferenceToMIR(lhs, w)
		if err != nil {
			return err
		}
		lhsList[i] = converted
	}
	rhs, err := exprToMIR(assignment.RHS, w)
	if err != nil {
		return err
	}
	w.write(&mir.UnpackingAssignment{
		LHSList:      lhsList,
		RHS:          rhs,
		ErrorMessage: assignment.ErrorMessage,
	})
	return nil
}

func ifStmtToMIR(ifStmt *hir.IfStmt, w *stmtWriter) error {
	condVar, err := exprToMIR(ifStmt.Cond, w)
	if err != nil {
		return err
	}

	thenWriter := w.branch()
	if err := stmtsToMIR(ifStmt.Then, thenWriter); err != nil {
		return err
	}
	elseWriter := w.branch()
	if err := stmtsToMIR(ifStmt.Else, elseWriter); err != nil {
		return err
	}

	w.write(&mir.IfStmt{Cond: condVar, Then: thenWriter.stmts, Else: elseWriter.stmts})
	return nil
}

func returnStmtToMIR(ret *hir.ReturnStmt, w *stmtWriter) error {
	resultVar, err := exprToMIR(ret.Expr, w)
	if err != nil {
		return err
	}
	w.write(&mir.ReturnStmt{Result: &resultVar})
	return nil
}

func assertToMIR(assert *hir.Assert, w *stmtWriter) error {
	condVar, err := exprToMIR(assert.Expr, w)
	if err != nil {
		return err
	}
	w.write(&mir.Assert{Var: condVar, Message: assert.Message})
	return nil
}

// raiseStmtToMIR dispatches a raise to the innermost handler catching
// exactly the raised type, or turns it into an error return when no
// handler in scope matches.
func raiseStmtToMIR(raise *hir.RaiseStmt, w *stmtWriter) error {
	exceptionVar, err := exprToMIR(raise.Expr, w)
	if err != nil {
		return err
	}

	for i := len(w.fc.tryContexts) - 1; i >= 0; i-- {
		ctx := w.fc.tryContexts[i]
		if !mir.TypesEqual(ctx.caughtType, exceptionVar.Type) {
			continue
		}
		caught := mir.VarReference{
			Type: ctx.caughtType,
			Name: w.fc.obf.Obfuscate(ctx.caughtName),
		}
		w.write(&mir.Assignment{LHS: caught, RHS: exceptionVar})
		resultVar := w.fc.mod.newVar(ctx.handlerCall.ExprType())
		errVar := w.fc.mod.newVar(mir.ErrorOrVoidType{})
		w.write(&mir.Assignment{LHS: resultVar, LHS2: &errVar, RHS: ctx.handlerCall})
		w.write(&mir.ReturnStmt{Result: &resultVar, Error: &errVar})
		return nil
	}

	w.write(&mir.ReturnStmt{Error: &exceptionVar})
	return nil
}

// tryExceptToMIR splits a try/except and everything after it into
// three pieces:
//
//   - the statements after the block become a continuation function;
//   - the except body becomes a handler function, falling through into
//     the continuation when it does not always return;
//   - the try body is lowered in place with the handler pushed on the
//     stack, so raises and failing calls inside it dispatch to the
//     handler, and likewise falls through into the continuation.
//
// Both outlined functions take their free variables, computed on the
// lowered bodies, as parameters.
func tryExceptToMIR(tryExcept *hir.TryExcept, rest []hir.Stmt, w *stmtWriter) error {
	var contCall *mir.FunctionCall
	if len(rest) > 0 {
		contWriter := w.branch()
		if err := stmtsToMIR(rest, contWriter); err != nil {
			return err
		}
		var err error
		contCall, err = outlineHelper(w, contWriter.stmts,
			"(meta)function wrapping the code after a try-except statement")
		if err != nil {
			return err
		}
	}

	exceptWriter := w.branch()
	if err := stmtsToMIR(tryExcept.ExceptBody, exceptWriter); err != nil {
		return err
	}
	if contCall != nil && !hir.AlwaysReturns(tryExcept.ExceptBody) {
		resultVar := exceptWriter.newVarForExprChecked(contCall)
		exceptWriter.write(&mir.ReturnStmt{Result: &resultVar})
	}
	handlerCall, err := outlineHelper(w, exceptWriter.stmts,
		"(meta)function wrapping the code in an except block")
	if err != nil {
		return err
	}

	caughtType, err := w.fc.mod.customType(tryExcept.CaughtType)
	if err != nil {
		return err
	}
	w.fc.pushTryContext(tryExceptContext{
		caughtType:  caughtType,
		caughtName:  tryExcept.CaughtName,
		handlerCall: handlerCall,
	})
	err = stmtsToMIR(tryExcept.TryBody, w)
	w.fc.popTryContext()
	if err != nil {
		return err
	}

	if contCall != nil && !hir.AlwaysReturns(tryExcept.TryBody) {
		resultVar := w.newVarForExprChecked(contCall)
		w.write(&mir.ReturnStmt{Result: &resultVar})
	}
	return nil
}

// outlineHelper writes body as a new function over its free variables
// and returns the call forwarding them.
func outlineHelper(w *stmtWriter, body []mir.Stmt, description string) (*mir.FunctionCall, error) {
	if w.returnType == nil {
		return nil, fmt.Errorf("try-except at module scope")
	}

	forwarded := mir.FreeVariablesInStmts(body)
	argDecls := make([]mir.FunctionArgDecl, len(forwarded))
	argTypes := make([]mir.ExprType, len(forwarded))
	for i, fv := range forwarded {
		argDecls[i] = mir.FunctionArgDecl{Name: fv.Name, Type: fv.Type}
		argTypes[i] = fv.Type
	}

	name := w.fc.mod.gen.Next()
	w.fc.mod.writeFunction(&mir.FunctionDefn{
		Name:        name,
		Description: description,
		Args:        argDecls,
		Body:        body,
		ReturnType:  w.returnType,
		MayThrow:    true,
	})
	funRef := mir.VarReference{
		Type:             mir.FunctionType{ArgTypes: argTypes, Returns: w.returnType},
		Name:             name,
		IsGlobalFunction: true,
		MayThrow:         true,
	}
	return &mir.FunctionCall{Fun: funRef, Args: forwarded}, nil
}
