package loader

import (
	"cuelang.org/go/cue"

	"github.com/tmppy/tmppyc/internal/hir"
)

// parseStmts reads an ordered statement list. Assignments bind into
// the surrounding scope (function scoping, not block scoping), so a
// variable assigned inside an if branch stays visible afterwards.
func (ld *moduleLoader) parseStmts(v cue.Value, sc *scope) ([]hir.Stmt, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var stmts []hir.Stmt
	for iter.Next() {
		stmt, err := ld.parseStmt(iter.Value(), sc)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

func (ld *moduleLoader) parseStmt(v cue.Value, sc *scope) (hir.Stmt, error) {
	label, payload, err := nodeLabel(v)
	if err != nil {
		return nil, err
	}

	switch label {
	case "assign":
		to, err := payload.LookupPath(cue.ParsePath("to")).String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		value, err := ld.exprField(payload, "value", sc)
		if err != nil {
			return nil, err
		}
		lhs := hir.VarReference{Type: value.ExprType(), Name: to}
		sc.bind(lhs)
		return &hir.Assignment{LHS: lhs, RHS: value}, nil

	case "unpack":
		value, err := ld.exprField(payload, "value", sc)
		if err != nil {
			return nil, err
		}
		listType, ok := value.ExprType().(hir.ListType)
		if !ok {
			return nil, errAt(payload, "unpack", "value is not a list")
		}
		names, err := stringList(payload.LookupPath(cue.ParsePath("to")))
		if err != nil {
			return nil, err
		}
		if len(names) == 0 {
			return nil, errAt(payload, "unpack", "to is required")
		}
		msg, err := payload.LookupPath(cue.ParsePath("on_mismatch")).String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		lhsList := make([]hir.VarReference, len(names))
		for i, name := range names {
			lhsList[i] = hir.VarReference{Type: listType.Elem, Name: name}
			sc.bind(lhsList[i])
		}
		return &hir.UnpackingAssignment{LHSList: lhsList, RHS: value, ErrorMessage: msg}, nil

	case "if":
		cond, err := ld.exprField(payload, "cond", sc)
		if err != nil {
			return nil, err
		}
		then, err := ld.parseStmts(payload.LookupPath(cue.ParsePath("then")), sc)
		if err != nil {
			return nil, err
		}
		var elseStmts []hir.Stmt
		elseVal := payload.LookupPath(cue.ParsePath("else"))
		if elseVal.Exists() {
			if elseStmts, err = ld.parseStmts(elseVal, sc); err != nil {
				return nil, err
			}
		}
		return &hir.IfStmt{Cond: cond, Then: then, Else: elseStmts}, nil

	case "return":
		expr, err := ld.parseExpr(payload, sc)
		if err != nil {
			return nil, err
		}
		return &hir.ReturnStmt{Expr: expr}, nil

	case "raise":
		expr, err := ld.parseExpr(payload, sc)
		if err != nil {
			return nil, err
		}
		if _, ok := expr.ExprType().(*hir.CustomType); !ok {
			return nil, errAt(payload, "raise", "raised value is not a custom type")
		}
		return &hir.RaiseStmt{Expr: expr}, nil

	case "assert":
		cond, err := ld.exprField(payload, "cond", sc)
		if err != nil {
			return nil, err
		}
		msg, err := payload.LookupPath(cue.ParsePath("message")).String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return &hir.Assert{Expr: cond, Message: msg}, nil

	case "try":
		return ld.parseTry(payload, sc)
	}

	return nil, errAt(v, "stmt", "unknown statement kind %q", label)
}

func (ld *moduleLoader) parseTry(v cue.Value, sc *scope) (hir.Stmt, error) {
	body, err := ld.parseStmts(v.LookupPath(cue.ParsePath("body")), sc)
	if err != nil {
		return nil, err
	}

	catchVal := v.LookupPath(cue.ParsePath("catch"))
	if !catchVal.Exists() {
		return nil, errAt(v, "try", "catch is required")
	}
	typeName, err := catchVal.LookupPath(cue.ParsePath("type")).String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	caughtType, ok := ld.customTypes[typeName]
	if !ok {
		return nil, errAt(catchVal, "try", "unknown exception type %q", typeName)
	}
	caughtName, err := catchVal.LookupPath(cue.ParsePath("as")).String()
	if err != nil {
		return nil, formatCUEError(err)
	}

	// The caught value is only visible inside the handler.
	inner := sc.child()
	inner.bind(hir.VarReference{Type: caughtType, Name: caughtName})
	handler, err := ld.parseStmts(v.LookupPath(cue.ParsePath("handler")), inner)
	if err != nil {
		return nil, err
	}

	return &hir.TryExcept{
		TryBody:    body,
		CaughtType: caughtType,
		CaughtName: caughtName,
		ExceptBody: handler,
	}, nil
}
