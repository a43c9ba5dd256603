package desugar

import (
	"fmt"
	"sort"

	"github.com/tmppy/tmppyc/internal/hir"
	"github.com/tmppy/tmppyc/internal/mir"
	"github.com/tmppy/tmppyc/internal/names"
)

// exprToMIR lowers one front-end expression, writing any statements it
// needs into w and returning the variable holding the result.
func exprToMIR(expr hir.Expr, w *stmtWriter) (mir.VarReference, error) {
	switch e := expr.(type) {
	case hir.VarReference:
		return varReferenceToMIR(e, w)
	case *hir.MatchExpr:
		return matchExprToMIR(e, w)
	case *hir.BoolLiteral:
		return w.newVarForExpr(&mir.BoolLiteral{Value: e.Value}), nil
	case *hir.IntLiteral:
		return w.newVarForExpr(&mir.IntLiteral{Value: e.Value}), nil
	case *hir.TypeLiteral:
		return typeLiteralToMIR(e, w)
	case *hir.ListExpr:
		return listExprToMIR(e, w)
	case *hir.SetExpr:
		return setExprToMIR(e, w)
	case *hir.FunctionCall:
		return functionCallToMIR(e, w)
	case *hir.EqualityComparison:
		return equalityComparisonToMIR(e, w)
	case *hir.AttributeAccess:
		return attributeAccessToMIR(e, w)
	case *hir.AndExpr:
		return andExprToMIR(e, w)
	case *hir.OrExpr:
		return orExprToMIR(e, w)
	case *hir.NotExpr:
		operand, err := exprToMIR(e.Operand, w)
		if err != nil {
			return mir.VarReference{}, err
		}
		return w.newVarForExpr(&mir.NotExpr{Var: operand}), nil
	case *hir.IntUnaryMinusExpr:
		operand, err := exprToMIR(e.Operand, w)
		if err != nil {
			return mir.VarReference{}, err
		}
		return w.newVarForExpr(&mir.UnaryMinusExpr{Var: operand}), nil
	case *hir.IntComparisonExpr:
		lhs, rhs, err := operandsToMIR(e.LHS, e.RHS, w)
		if err != nil {
			return mir.VarReference{}, err
		}
		return w.newVarForExpr(&mir.IntComparisonExpr{LHS: lhs, RHS: rhs, Op: e.Op}), nil
	case *hir.IntBinaryOpExpr:
		lhs, rhs, err := operandsToMIR(e.LHS, e.RHS, w)
		if err != nil {
			return mir.VarReference{}, err
		}
		return w.newVarForExpr(&mir.IntBinaryOpExpr{LHS: lhs, RHS: rhs, Op: e.Op}), nil
	case *hir.ListConcatExpr:
		lhs, rhs, err := operandsToMIR(e.LHS, e.RHS, w)
		if err != nil {
			return mir.VarReference{}, err
		}
		return w.newVarForExpr(&mir.ListConcatExpr{LHS: lhs, RHS: rhs}), nil
	case *hir.ListComprehension:
		return listComprehensionToMIR(e, w)
	case *hir.SetComprehension:
		return setComprehensionToMIR(e, w)
	case *hir.IntListSumExpr:
		return unaryListOpToMIR(e.List, w, func(v mir.VarReference) mir.Expr {
			return &mir.IntListSumExpr{Var: v}
		})
	case *hir.IntSetSumExpr:
		return unaryListOpToMIR(e.Set, w, func(v mir.VarReference) mir.Expr {
			return &mir.IntListSumExpr{Var: v}
		})
	case *hir.BoolListAllExpr:
		return unaryListOpToMIR(e.List, w, func(v mir.VarReference) mir.Expr {
			return &mir.BoolListAllExpr{Var: v}
		})
	case *hir.BoolSetAllExpr:
		return unaryListOpToMIR(e.Set, w, func(v mir.VarReference) mir.Expr {
			return &mir.BoolListAllExpr{Var: v}
		})
	case *hir.BoolListAnyExpr:
		return unaryListOpToMIR(e.List, w, func(v mir.VarReference) mir.Expr {
			return &mir.BoolListAnyExpr{Var: v}
		})
	case *hir.BoolSetAnyExpr:
		return unaryListOpToMIR(e.Set, w, func(v mir.VarReference) mir.Expr {
			return &mir.BoolListAnyExpr{Var: v}
		})
	default:
		return mir.VarReference{}, fmt.Errorf("unsupported expression %T", expr)
	}
}

func operandsToMIR(lhs, rhs hir.Expr, w *stmtWriter) (mir.VarReference, mir.VarReference, error) {
	lhsVar, err := exprToMIR(lhs, w)
	if err != nil {
		return mir.VarReference{}, mir.VarReference{}, err
	}
	rhsVar, err := exprToMIR(rhs, w)
	if err != nil {
		return mir.VarReference{}, mir.VarReference{}, err
	}
	return lhsVar, rhsVar, nil
}

func unaryListOpToMIR(operand hir.Expr, w *stmtWriter, build func(mir.VarReference) mir.Expr) (mir.VarReference, error) {
	v, err := exprToMIR(operand, w)
	if err != nil {
		return mir.VarReference{}, err
	}
	return w.newVarForExpr(build(v)), nil
}

func varReferenceToMIR(v hir.VarReference, w *stmtWriter) (mir.VarReference, error) {
	t, err := w.fc.mod.typeOf(v.Type)
	if err != nil {
		return mir.VarReference{}, err
	}
	name := v.Name
	if !v.IsGlobalFunction {
		name = w.fc.obf.Obfuscate(v.Name)
	}
	return mir.VarReference{
		Type:             t,
		Name:             name,
		IsGlobalFunction: v.IsGlobalFunction,
		MayThrow:         v.MayThrow,
	}, nil
}

func typeLiteralToMIR(literal *hir.TypeLiteral, w *stmtWriter) (mir.VarReference, error) {
	argNames := make([]string, 0, len(literal.Args))
	for name := range literal.Args {
		argNames = append(argNames, name)
	}
	sort.Strings(argNames)

	args := make(map[string]mir.VarReference, len(argNames))
	for _, name := range argNames {
		argVar, err := exprToMIR(literal.Args[name], w)
		if err != nil {
			return mir.VarReference{}, err
		}
		args[name] = argVar
	}
	return w.newVarForExpr(&mir.TypeLiteral{CppType: literal.CppType, Args: args}), nil
}

func listExprToMIR(list *hir.ListExpr, w *stmtWriter) (mir.VarReference, error) {
	elemType, err := w.fc.mod.typeOf(list.ElemType)
	if err != nil {
		return mir.VarReference{}, err
	}
	elems := make([]mir.VarReference, len(list.Elems))
	for i, elemExpr := range list.Elems {
		elemVar, err := exprToMIR(elemExpr, w)
		if err != nil {
			return mir.VarReference{}, err
		}
		elems[i] = elemVar
	}
	return w.newVarForExpr(&mir.ListExpr{ElemType: elemType, Elems: elems}), nil
}

// setExprToMIR lowers a set literal onto its list backing: start from
// the empty list and fold the elements in through AddToSetExpr, which
// skips elements already present by content.
func setExprToMIR(set *hir.SetExpr, w *stmtWriter) (mir.VarReference, error) {
	elemType, err := w.fc.mod.typeOf(set.ElemType)
	if err != nil {
		return mir.VarReference{}, err
	}
	result := w.newVarForExpr(&mir.ListExpr{ElemType: elemType})

	elems := make([]mir.VarReference, len(set.Elems))
	for i, elemExpr := range set.Elems {
		elemVar, err := exprToMIR(elemExpr, w)
		if err != nil {
			return mir.VarReference{}, err
		}
		elems[i] = elemVar
	}
	for _, elemVar := range elems {
		result = w.newVarForExpr(&mir.AddToSetExpr{Set: result, Elem: elemVar})
	}
	return result, nil
}

func functionCallToMIR(call *hir.FunctionCall, w *stmtWriter) (mir.VarReference, error) {
	funVar, err := exprToMIR(call.Fun, w)
	if err != nil {
		return mir.VarReference{}, err
	}
	args := make([]mir.VarReference, len(call.Args))
	for i, argExpr := range call.Args {
		argVar, err := exprToMIR(argExpr, w)
		if err != nil {
			return mir.VarReference{}, err
		}
		args[i] = argVar
	}
	lowered := &mir.FunctionCall{Fun: funVar, Args: args}
	if funVar.MayThrow {
		return w.newVarForExprChecked(lowered), nil
	}
	return w.newVarForExpr(lowered), nil
}

func equalityComparisonToMIR(cmp *hir.EqualityComparison, w *stmtWriter) (mir.VarReference, error) {
	lhs, rhs, err := operandsToMIR(cmp.LHS, cmp.RHS, w)
	if err != nil {
		return mir.VarReference{}, err
	}
	// Set equality is by content, not by backing-list order.
	if _, isSet := cmp.LHS.ExprType().(hir.SetType); isSet {
		return w.newVarForExpr(&mir.SetEqualityComparison{LHS: lhs, RHS: rhs}), nil
	}
	return w.newVarForExpr(&mir.EqualityComparison{LHS: lhs, RHS: rhs}), nil
}

func attributeAccessToMIR(access *hir.AttributeAccess, w *stmtWriter) (mir.VarReference, error) {
	objVar, err := exprToMIR(access.Expr, w)
	if err != nil {
		return mir.VarReference{}, err
	}
	t, err := w.fc.mod.typeOf(access.Type)
	if err != nil {
		return mir.VarReference{}, err
	}
	return w.newVarForExpr(&mir.AttributeAccess{
		Var:           objVar,
		AttributeName: access.AttributeName,
		Type:          t,
	}), nil
}

// andExprToMIR rewrites short-circuit "and" into a branch that only
// evaluates the right side when the left side held:
//
//	y = f() and g()
//
// becomes
//
//	if f():
//	  x = g()
//	else:
//	  x = False
//	y = x
func andExprToMIR(expr *hir.AndExpr, w *stmtWriter) (mir.VarReference, error) {
	lhsVar, err := exprToMIR(expr.LHS, w)
	if err != nil {
		return mir.VarReference{}, err
	}

	thenWriter := w.branch()
	rhsVar, err := exprToMIR(expr.RHS, thenWriter)
	if err != nil {
		return mir.VarReference{}, err
	}

	w.write(&mir.IfStmt{
		Cond: lhsVar,
		Then: thenWriter.stmts,
		Else: []mir.Stmt{&mir.Assignment{LHS: rhsVar, RHS: &mir.BoolLiteral{Value: false}}},
	})
	return rhsVar, nil
}

// orExprToMIR mirrors andExprToMIR with the branches swapped.
func orExprToMIR(expr *hir.OrExpr, w *stmtWriter) (mir.VarReference, error) {
	lhsVar, err := exprToMIR(expr.LHS, w)
	if err != nil {
		return mir.VarReference{}, err
	}

	elseWriter := w.branch()
	rhsVar, err := exprToMIR(expr.RHS, elseWriter)
	if err != nil {
		return mir.VarReference{}, err
	}

	w.write(&mir.IfStmt{
		Cond: lhsVar,
		Then: []mir.Stmt{&mir.Assignment{LHS: rhsVar, RHS: &mir.BoolLiteral{Value: true}}},
		Else: elseWriter.stmts,
	})
	return rhsVar, nil
}

// matchExprToMIR outlines every arm into its own function taking the
// arm's free variables, and obfuscates the names the patterns bind so
// they can be spliced into pattern strings safely.
func matchExprToMIR(match *hir.MatchExpr, w *stmtWriter) (mir.VarReference, error) {
	matchedVars := make([]mir.VarReference, len(match.MatchedExprs))
	for i, matchedExpr := range match.MatchedExprs {
		matchedVar, err := exprToMIR(matchedExpr, w)
		if err != nil {
			return mir.VarReference{}, err
		}
		matchedVars[i] = matchedVar
	}

	resultType, err := w.fc.mod.typeOf(match.Type)
	if err != nil {
		return mir.VarReference{}, err
	}

	cases := make([]mir.MatchCase, len(match.Cases))
	for i, matchCase := range match.Cases {
		armWriter := &stmtWriter{fc: w.fc, returnType: resultType}
		armVar, err := exprToMIR(matchCase.Expr, armWriter)
		if err != nil {
			return mir.VarReference{}, err
		}
		armWriter.write(&mir.ReturnStmt{Result: &armVar})

		forwarded := mir.FreeVariablesInStmts(armWriter.stmts)
		argDecls := make([]mir.FunctionArgDecl, len(forwarded))
		argTypes := make([]mir.ExprType, len(forwarded))
		for j, fv := range forwarded {
			argDecls[j] = mir.FunctionArgDecl{Name: fv.Name, Type: fv.Type}
			argTypes[j] = fv.Type
		}

		armFunName := w.fc.mod.gen.Next()
		w.fc.mod.writeFunction(&mir.FunctionDefn{
			Name:        armFunName,
			Description: "(meta)function wrapping the code in a branch of a match expression",
			Args:        argDecls,
			Body:        armWriter.stmts,
			ReturnType:  armVar.Type,
			MayThrow:    true,
		})
		armFunRef := mir.VarReference{
			Type:             mir.FunctionType{ArgTypes: argTypes, Returns: armVar.Type},
			Name:             armFunName,
			IsGlobalFunction: true,
			MayThrow:         true,
		}

		replacements := make(map[string]string, len(matchCase.MatchedVarNames))
		obfuscatedNames := make([]string, len(matchCase.MatchedVarNames))
		for j, name := range matchCase.MatchedVarNames {
			obfuscatedNames[j] = w.fc.obf.Obfuscate(name)
			replacements[name] = obfuscatedNames[j]
		}
		patterns := make([]string, len(matchCase.TypePatterns))
		for j, pattern := range matchCase.TypePatterns {
			patterns[j] = names.ReplaceIdentifiers(pattern, replacements)
		}

		cases[i] = mir.MatchCase{
			TypePatterns:    patterns,
			MatchedVarNames: obfuscatedNames,
			Call:            &mir.FunctionCall{Fun: armFunRef, Args: forwarded},
		}
	}

	return w.newVarForExprChecked(&mir.MatchExpr{MatchedVars: matchedVars, Cases: cases}), nil
}

// outlinedComprehensionToMIR wraps the element expression in its own
// function over its free variables and rebuilds the comprehension as a
// call per element:
//
//	[f(x, y) * 2 for x in l]
//
// becomes
//
//	def g(x, y):
//	  return f(x, y) * 2
//	[g(x, y) for x in l]
func outlinedComprehensionToMIR(listVar mir.VarReference, loopVar hir.VarReference, resultElem hir.Expr, w *stmtWriter) (mir.VarReference, error) {
	resultElemType, err := w.fc.mod.typeOf(resultElem.ExprType())
	if err != nil {
		return mir.VarReference{}, err
	}

	helperWriter := &stmtWriter{fc: w.fc, returnType: resultElemType}
	elemVar, err := exprToMIR(resultElem, helperWriter)
	if err != nil {
		return mir.VarReference{}, err
	}
	helperWriter.write(&mir.ReturnStmt{Result: &elemVar})

	forwarded := mir.FreeVariablesInStmts(helperWriter.stmts)
	argDecls := make([]mir.FunctionArgDecl, len(forwarded))
	argTypes := make([]mir.ExprType, len(forwarded))
	for i, fv := range forwarded {
		argDecls[i] = mir.FunctionArgDecl{Name: fv.Name, Type: fv.Type}
		argTypes[i] = fv.Type
	}

	helperName := w.fc.mod.gen.Next()
	w.fc.mod.writeFunction(&mir.FunctionDefn{
		Name:        helperName,
		Description: "(meta)function wrapping the result expression in a list/set comprehension",
		Args:        argDecls,
		Body:        helperWriter.stmts,
		ReturnType:  resultElemType,
		MayThrow:    true,
	})
	helperRef := mir.VarReference{
		Type:             mir.FunctionType{ArgTypes: argTypes, Returns: resultElemType},
		Name:             helperName,
		IsGlobalFunction: true,
		MayThrow:         true,
	}

	loopVarMIR, err := varReferenceToMIR(loopVar, w)
	if err != nil {
		return mir.VarReference{}, err
	}
	return w.newVarForExprChecked(&mir.ListComprehension{
		ListVar: listVar,
		LoopVar: loopVarMIR,
		Call:    &mir.FunctionCall{Fun: helperRef, Args: forwarded},
	}), nil
}

func listComprehensionToMIR(compr *hir.ListComprehension, w *stmtWriter) (mir.VarReference, error) {
	listVar, err := exprToMIR(compr.List, w)
	if err != nil {
		return mir.VarReference{}, err
	}
	return outlinedComprehensionToMIR(listVar, compr.LoopVar, compr.ResultElem, w)
}

// setComprehensionToMIR views the set as a list, maps over it, and
// deduplicates the result back into a set.
func setComprehensionToMIR(compr *hir.SetComprehension, w *stmtWriter) (mir.VarReference, error) {
	setVar, err := exprToMIR(compr.Set, w)
	if err != nil {
		return mir.VarReference{}, err
	}
	listVar := w.newVarForExpr(&mir.SetToListExpr{Var: setVar})

	mapped, err := outlinedComprehensionToMIR(listVar, compr.LoopVar, compr.ResultElem, w)
	if err != nil {
		return mir.VarReference{}, err
	}
	return w.newVarForExpr(&mir.ListToSetExpr{Var: mapped}), nil
}
