package loader

import (
	"cuelang.org/go/cue"

	"github.com/tmppy/tmppyc/internal/hir"
)

// nodeLabel splits a one-label node struct into its kind and payload.
func nodeLabel(v cue.Value) (string, cue.Value, error) {
	iter, err := v.Fields()
	if err != nil {
		return "", cue.Value{}, formatCUEError(err)
	}
	if !iter.Next() {
		return "", cue.Value{}, errAt(v, "expr", "empty node")
	}
	label, payload := iter.Label(), iter.Value()
	if iter.Next() {
		return "", cue.Value{}, errAt(v, "expr", "node must have exactly one label, found %q and %q", label, iter.Label())
	}
	return label, payload, nil
}

func (ld *moduleLoader) parseExpr(v cue.Value, sc *scope) (hir.Expr, error) {
	label, payload, err := nodeLabel(v)
	if err != nil {
		return nil, err
	}

	switch label {
	case "bool":
		value, err := payload.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return &hir.BoolLiteral{Value: value}, nil

	case "int":
		value, err := payload.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return &hir.IntLiteral{Value: value}, nil

	case "type_literal":
		return ld.parseTypeLiteral(payload, sc)

	case "ref":
		return ld.parseRef(payload, sc)

	case "call":
		fun, err := ld.exprField(payload, "fun", sc)
		if err != nil {
			return nil, err
		}
		if _, ok := fun.ExprType().(hir.FunctionType); !ok {
			return nil, errAt(payload, "call", "fun is not function-typed")
		}
		args, err := ld.exprList(payload.LookupPath(cue.ParsePath("args")), sc)
		if err != nil {
			return nil, err
		}
		return &hir.FunctionCall{Fun: fun, Args: args}, nil

	case "eq":
		lhs, rhs, err := ld.binaryOperands(payload, sc)
		if err != nil {
			return nil, err
		}
		return &hir.EqualityComparison{LHS: lhs, RHS: rhs}, nil

	case "and":
		lhs, rhs, err := ld.binaryOperands(payload, sc)
		if err != nil {
			return nil, err
		}
		return &hir.AndExpr{LHS: lhs, RHS: rhs}, nil

	case "or":
		lhs, rhs, err := ld.binaryOperands(payload, sc)
		if err != nil {
			return nil, err
		}
		return &hir.OrExpr{LHS: lhs, RHS: rhs}, nil

	case "not":
		operand, err := ld.parseExpr(payload, sc)
		if err != nil {
			return nil, err
		}
		return &hir.NotExpr{Operand: operand}, nil

	case "neg":
		operand, err := ld.parseExpr(payload, sc)
		if err != nil {
			return nil, err
		}
		return &hir.IntUnaryMinusExpr{Operand: operand}, nil

	case "cmp":
		op, err := payload.LookupPath(cue.ParsePath("op")).String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		switch op {
		case "<", ">", "<=", ">=":
		default:
			return nil, errAt(payload, "cmp", "unknown comparison operator %q", op)
		}
		lhs, rhs, err := ld.binaryOperands(payload, sc)
		if err != nil {
			return nil, err
		}
		return &hir.IntComparisonExpr{LHS: lhs, RHS: rhs, Op: op}, nil

	case "arith":
		op, err := payload.LookupPath(cue.ParsePath("op")).String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		switch op {
		case "+", "-", "*", "/", "%":
		default:
			return nil, errAt(payload, "arith", "unknown arithmetic operator %q", op)
		}
		lhs, rhs, err := ld.binaryOperands(payload, sc)
		if err != nil {
			return nil, err
		}
		return &hir.IntBinaryOpExpr{LHS: lhs, RHS: rhs, Op: op}, nil

	case "attr":
		return ld.parseAttr(payload, sc)

	case "list":
		elem, elems, err := ld.collectionParts(payload, "list", sc)
		if err != nil {
			return nil, err
		}
		return &hir.ListExpr{ElemType: elem, Elems: elems}, nil

	case "set":
		elem, elems, err := ld.collectionParts(payload, "set", sc)
		if err != nil {
			return nil, err
		}
		return &hir.SetExpr{ElemType: elem, Elems: elems}, nil

	case "concat":
		lhs, rhs, err := ld.binaryOperands(payload, sc)
		if err != nil {
			return nil, err
		}
		listType, ok := lhs.ExprType().(hir.ListType)
		if !ok {
			return nil, errAt(payload, "concat", "operands are not lists")
		}
		return &hir.ListConcatExpr{LHS: lhs, RHS: rhs, Type: listType}, nil

	case "list_for":
		return ld.parseComprehension(payload, sc, false)

	case "set_for":
		return ld.parseComprehension(payload, sc, true)

	case "sum":
		operand, err := ld.parseExpr(payload, sc)
		if err != nil {
			return nil, err
		}
		switch operand.ExprType().(type) {
		case hir.ListType:
			return &hir.IntListSumExpr{List: operand}, nil
		case hir.SetType:
			return &hir.IntSetSumExpr{Set: operand}, nil
		}
		return nil, errAt(payload, "sum", "operand is not a list or set")

	case "all":
		operand, err := ld.parseExpr(payload, sc)
		if err != nil {
			return nil, err
		}
		switch operand.ExprType().(type) {
		case hir.ListType:
			return &hir.BoolListAllExpr{List: operand}, nil
		case hir.SetType:
			return &hir.BoolSetAllExpr{Set: operand}, nil
		}
		return nil, errAt(payload, "all", "operand is not a list or set")

	case "any":
		operand, err := ld.parseExpr(payload, sc)
		if err != nil {
			return nil, err
		}
		switch operand.ExprType().(type) {
		case hir.ListType:
			return &hir.BoolListAnyExpr{List: operand}, nil
		case hir.SetType:
			return &hir.BoolSetAnyExpr{Set: operand}, nil
		}
		return nil, errAt(payload, "any", "operand is not a list or set")

	case "match":
		return ld.parseMatch(payload, sc)
	}

	return nil, errAt(v, "expr", "unknown node kind %q", label)
}

func (ld *moduleLoader) exprField(v cue.Value, name string, sc *scope) (hir.Expr, error) {
	fieldVal := v.LookupPath(cue.ParsePath(name))
	if !fieldVal.Exists() {
		return nil, errAt(v, name, "%s is required", name)
	}
	return ld.parseExpr(fieldVal, sc)
}

func (ld *moduleLoader) exprList(v cue.Value, sc *scope) ([]hir.Expr, error) {
	if !v.Exists() {
		return nil, nil
	}
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var exprs []hir.Expr
	for iter.Next() {
		expr, err := ld.parseExpr(iter.Value(), sc)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
	}
	return exprs, nil
}

func (ld *moduleLoader) binaryOperands(v cue.Value, sc *scope) (hir.Expr, hir.Expr, error) {
	lhs, err := ld.exprField(v, "lhs", sc)
	if err != nil {
		return nil, nil, err
	}
	rhs, err := ld.exprField(v, "rhs", sc)
	if err != nil {
		return nil, nil, err
	}
	return lhs, rhs, nil
}

// parseRef resolves a variable reference. The short form is the bare
// name, resolved against the surrounding bindings; the structured form
// {name: ..., type: ..., may_throw?: ...} declares the reference
// in place, overriding whatever the scope knows.
func (ld *moduleLoader) parseRef(v cue.Value, sc *scope) (hir.Expr, error) {
	if name, err := v.String(); err == nil {
		ref, ok := sc.lookup(name)
		if !ok {
			return nil, errAt(v, "ref", "unbound name %q", name)
		}
		return ref, nil
	}

	name, err := v.LookupPath(cue.ParsePath("name")).String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	ref, bound := sc.lookup(name)
	ref.Name = name

	typeVal := v.LookupPath(cue.ParsePath("type"))
	if typeVal.Exists() {
		if ref.Type, err = ld.parseType(typeVal, "ref."+name); err != nil {
			return nil, err
		}
	} else if !bound {
		return nil, errAt(v, "ref", "unbound name %q needs an explicit type", name)
	}

	throwVal := v.LookupPath(cue.ParsePath("may_throw"))
	if throwVal.Exists() {
		if ref.MayThrow, err = throwVal.Bool(); err != nil {
			return nil, formatCUEError(err)
		}
	}
	return ref, nil
}

func (ld *moduleLoader) parseTypeLiteral(v cue.Value, sc *scope) (hir.Expr, error) {
	cppType, err := v.LookupPath(cue.ParsePath("cpp")).String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	args := make(map[string]hir.Expr)
	argsVal := v.LookupPath(cue.ParsePath("args"))
	if argsVal.Exists() {
		iter, err := argsVal.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			arg, err := ld.parseExpr(iter.Value(), sc)
			if err != nil {
				return nil, err
			}
			args[iter.Label()] = arg
		}
	}
	return &hir.TypeLiteral{CppType: cppType, Args: args}, nil
}

func (ld *moduleLoader) parseAttr(v cue.Value, sc *scope) (hir.Expr, error) {
	of, err := ld.exprField(v, "of", sc)
	if err != nil {
		return nil, err
	}
	name, err := v.LookupPath(cue.ParsePath("name")).String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	ct, ok := of.ExprType().(*hir.CustomType)
	if !ok {
		return nil, errAt(v, "attr", "attribute access on a non-record value")
	}
	for _, field := range ct.Fields {
		if field.Name == name {
			return &hir.AttributeAccess{Expr: of, AttributeName: name, Type: field.Type}, nil
		}
	}
	return nil, errAt(v, "attr", "%s has no field %q", ct.Name, name)
}

func (ld *moduleLoader) collectionParts(v cue.Value, field string, sc *scope) (hir.ExprType, []hir.Expr, error) {
	elemVal := v.LookupPath(cue.ParsePath("elem"))
	if !elemVal.Exists() {
		return nil, nil, errAt(v, field, "elem type is required")
	}
	elem, err := ld.parseType(elemVal, field+".elem")
	if err != nil {
		return nil, nil, err
	}
	elems, err := ld.exprList(v.LookupPath(cue.ParsePath("elems")), sc)
	if err != nil {
		return nil, nil, err
	}
	return elem, elems, nil
}

func (ld *moduleLoader) parseComprehension(v cue.Value, sc *scope, overSet bool) (hir.Expr, error) {
	source, err := ld.exprField(v, "in", sc)
	if err != nil {
		return nil, err
	}
	varName, err := v.LookupPath(cue.ParsePath("var")).String()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var elemType hir.ExprType
	if overSet {
		setType, ok := source.ExprType().(hir.SetType)
		if !ok {
			return nil, errAt(v, "set_for", "in is not a set")
		}
		elemType = setType.Elem
	} else {
		listType, ok := source.ExprType().(hir.ListType)
		if !ok {
			return nil, errAt(v, "list_for", "in is not a list")
		}
		elemType = listType.Elem
	}

	loopVar := hir.VarReference{Type: elemType, Name: varName}
	inner := sc.child()
	inner.bind(loopVar)
	result, err := ld.exprField(v, "result", inner)
	if err != nil {
		return nil, err
	}

	if overSet {
		return &hir.SetComprehension{Set: source, LoopVar: loopVar, ResultElem: result}, nil
	}
	return &hir.ListComprehension{List: source, LoopVar: loopVar, ResultElem: result}, nil
}

func (ld *moduleLoader) parseMatch(v cue.Value, sc *scope) (hir.Expr, error) {
	onVal := v.LookupPath(cue.ParsePath("on"))
	matched, err := ld.exprList(onVal, sc)
	if err != nil {
		return nil, err
	}
	if len(matched) == 0 {
		return nil, errAt(v, "match", "at least one matched expression is required")
	}

	casesVal := v.LookupPath(cue.ParsePath("cases"))
	if !casesVal.Exists() {
		return nil, errAt(v, "match", "cases are required")
	}
	iter, err := casesVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var cases []hir.MatchCase
	for iter.Next() {
		caseVal := iter.Value()
		patterns, err := stringList(caseVal.LookupPath(cue.ParsePath("patterns")))
		if err != nil {
			return nil, err
		}
		if len(patterns) != len(matched) {
			return nil, errAt(caseVal, "match", "case has %d patterns for %d matched expressions", len(patterns), len(matched))
		}
		binds, err := stringList(caseVal.LookupPath(cue.ParsePath("binds")))
		if err != nil {
			return nil, err
		}

		// Pattern bindings are type-valued.
		inner := sc.child()
		for _, bind := range binds {
			inner.bind(hir.VarReference{Type: hir.TypeType{}, Name: bind})
		}
		result, err := ld.exprField(caseVal, "result", inner)
		if err != nil {
			return nil, err
		}
		cases = append(cases, hir.MatchCase{
			TypePatterns:    patterns,
			MatchedVarNames: binds,
			Expr:            result,
		})
	}
	if len(cases) == 0 {
		return nil, errAt(v, "match", "at least one case is required")
	}

	return &hir.MatchExpr{
		MatchedExprs: matched,
		Cases:        cases,
		Type:         cases[0].Expr.ExprType(),
	}, nil
}

func stringList(v cue.Value) ([]string, error) {
	if !v.Exists() {
		return nil, nil
	}
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, s)
	}
	return out, nil
}
