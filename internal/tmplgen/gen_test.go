package tmplgen_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmppy/tmppyc/internal/lir"
	"github.com/tmppy/tmppyc/internal/names"
	"github.com/tmppy/tmppyc/internal/tmpl"
	"github.com/tmppy/tmppyc/internal/tmplgen"
)

func boolVar(name string) lir.VarReference {
	return lir.VarReference{Type: lir.BoolType{}, Name: name}
}

func generate(t *testing.T, body ...lir.TopLevel) *tmpl.Module {
	t.Helper()
	out, err := tmplgen.Module(&lir.Module{Body: body}, names.NewGenerator())
	require.NoError(t, err)
	return out
}

func templates(m *tmpl.Module) []*tmpl.TemplateDefn {
	var out []*tmpl.TemplateDefn
	for _, elem := range m.Body {
		if defn, ok := elem.(*tmpl.TemplateDefn); ok {
			out = append(out, defn)
		}
	}
	return out
}

func templateNamed(t *testing.T, m *tmpl.Module, name string) *tmpl.TemplateDefn {
	t.Helper()
	for _, defn := range templates(m) {
		if defn.Name == name {
			return defn
		}
	}
	t.Fatalf("no template named %s", name)
	return nil
}

func TestBoolNegationFunction(t *testing.T) {
	b := boolVar("b")
	out := generate(t, &lir.FunctionDefn{
		Name:       "negate",
		Args:       []lir.FunctionArgDecl{{Name: "x", Type: lir.BoolType{}}},
		ReturnType: lir.BoolType{},
		Body: []lir.Stmt{
			&lir.Assignment{LHS: b, RHS: &lir.NotExpr{Var: boolVar("x")}},
			&lir.ReturnStmt{Result: &b},
		},
	})

	defn := templateNamed(t, out, "Negate")
	require.Len(t, defn.Params, 1)
	assert.Equal(t, tmpl.Param{Name: "x", Kind: tmpl.KindBool}, defn.Params[0])
	assert.Empty(t, defn.Specializations)

	require.NotNil(t, defn.Main)
	require.Len(t, defn.Main.Body, 2)
	negation := defn.Main.Body[0].(*tmpl.ConstantDef)
	assert.Equal(t, "b", negation.Name)
	unary := negation.Expr.(*tmpl.UnaryOp)
	assert.Equal(t, "!", unary.Op)
	assert.Equal(t, "x", unary.Operand.(*tmpl.Name).Cpp)
	result := defn.Main.Body[1].(*tmpl.ConstantDef)
	assert.Equal(t, "value", result.Name)
	assert.Equal(t, "b", result.Expr.(*tmpl.Name).Cpp)
}

func TestErrorChannelMembers(t *testing.T) {
	res := lir.VarReference{Type: lir.TypeType{}, Name: "res"}
	errVar := lir.VarReference{Type: lir.ErrorOrVoidType{}, Name: "err"}
	out := generate(t, &lir.FunctionDefn{
		Name:       "may_fail",
		Args:       []lir.FunctionArgDecl{{Name: "t", Type: lir.TypeType{}}},
		ReturnType: lir.TypeType{},
		MayThrow:   true,
		Body: []lir.Stmt{
			&lir.Assignment{LHS: res, RHS: lir.VarReference{Type: lir.TypeType{}, Name: "t"}},
			&lir.Assignment{LHS: errVar, RHS: &lir.TypeLiteral{CppType: "void"}},
			&lir.ReturnStmt{Result: &res, Error: &errVar},
		},
	})

	defn := templateNamed(t, out, "MayFail")
	require.NotNil(t, defn.Main)
	body := defn.Main.Body
	require.Len(t, body, 4)
	assert.Equal(t, "type", body[2].(*tmpl.Typedef).Name)
	assert.Equal(t, "Res", body[2].(*tmpl.Typedef).Expr.(*tmpl.Name).Cpp)
	errMember := body[3].(*tmpl.Typedef)
	assert.Equal(t, "error", errMember.Name)
	assert.Equal(t, "Err", errMember.Expr.(*tmpl.Name).Cpp)
}

func TestErrorReturnDefinesResultPlaceholder(t *testing.T) {
	errVar := lir.VarReference{Type: lir.ErrorOrVoidType{}, Name: "err"}
	out := generate(t, &lir.FunctionDefn{
		Name:       "always_fails",
		Args:       []lir.FunctionArgDecl{{Name: "e", Type: lir.ErrorOrVoidType{}}},
		ReturnType: lir.BoolType{},
		MayThrow:   true,
		Body: []lir.Stmt{
			&lir.Assignment{LHS: errVar, RHS: lir.VarReference{Type: lir.ErrorOrVoidType{}, Name: "e"}},
			&lir.ReturnStmt{Error: &errVar},
		},
	})

	defn := templateNamed(t, out, "AlwaysFails")
	body := defn.Main.Body
	require.Len(t, body, 3)
	placeholder := body[1].(*tmpl.ConstantDef)
	assert.Equal(t, "value", placeholder.Name)
	assert.False(t, placeholder.Expr.(*tmpl.BoolLiteral).Value, "the result member still exists on the error path")
	errMember := body[2].(*tmpl.Typedef)
	assert.Equal(t, "error", errMember.Name)
	assert.Equal(t, "Err", errMember.Expr.(*tmpl.Name).Cpp)
}

func TestFallibleComprehensionAdapterForwardsErrorMember(t *testing.T) {
	elemFn := lir.VarReference{
		Type:             lir.FunctionType{ArgTypes: []lir.ExprType{lir.BoolType{}}, ReturnType: lir.BoolType{}},
		Name:             "g",
		IsGlobalFunction: true,
		MayThrow:         true,
	}
	loop := boolVar("x")
	res := lir.VarReference{Type: lir.TypeType{}, Name: "res"}
	errVar := lir.VarReference{Type: lir.ErrorOrVoidType{}, Name: "err"}
	out := generate(t, &lir.FunctionDefn{
		Name:       "map_g",
		Args:       []lir.FunctionArgDecl{{Name: "l", Type: lir.TypeType{}}},
		ReturnType: lir.TypeType{},
		MayThrow:   true,
		Body: []lir.Stmt{
			&lir.Assignment{LHS: res, LHS2: &errVar, RHS: &lir.ListComprehension{
				ListVar:           lir.VarReference{Type: lir.TypeType{}, Name: "l"},
				LoopVar:           loop,
				Call:              &lir.FunctionCall{Fun: elemFn, Args: []lir.VarReference{loop}},
				TransformTemplate: "TransformBoolListToBoolList",
			}},
			&lir.ReturnStmt{Result: &res, Error: &errVar},
		},
	})

	defn := templateNamed(t, out, "MapG")
	require.NotNil(t, defn.Main)
	body := defn.Main.Body
	adapter, ok := body[0].(*tmpl.TemplateDefn)
	require.True(t, ok, "the adapter is emitted ahead of the transform binding")

	adapterBody := adapter.Main.Body
	require.Len(t, adapterBody, 3)
	inner := adapterBody[0].(*tmpl.Typedef)
	assert.Equal(t, "G", inner.Expr.(*tmpl.Instantiation).Template.(*tmpl.Name).Cpp)
	assert.Equal(t, "value", adapterBody[1].(*tmpl.ConstantDef).Name)
	errMember := adapterBody[2].(*tmpl.Typedef)
	assert.Equal(t, "error", errMember.Name)
	forwarded := errMember.Expr.(*tmpl.MemberAccess)
	assert.Equal(t, "error", forwarded.MemberName)
	assert.Equal(t, inner.Name, forwarded.Class.(*tmpl.Name).Cpp, "the element call's error member flows through the adapter")

	transformAlias := body[1].(*tmpl.Typedef)
	instantiation := transformAlias.Expr.(*tmpl.Instantiation)
	assert.Equal(t, "TransformBoolListToBoolList", instantiation.Template.(*tmpl.Name).Cpp)
	assert.Equal(t, adapter.Name, instantiation.Args[1].(*tmpl.Name).Cpp)
	errRead := body[3].(*tmpl.Typedef)
	assert.Equal(t, "Err", errRead.Name)
	assert.Equal(t, "error", errRead.Expr.(*tmpl.MemberAccess).MemberName)
}

func TestConstantAssertAnchorsToFirstUsableParam(t *testing.T) {
	res := boolVar("ok")
	out := generate(t, &lir.FunctionDefn{
		Name: "checked",
		Args: []lir.FunctionArgDecl{
			{Name: "b", Type: lir.BoolType{}},
			{Name: "t", Type: lir.TypeType{}},
		},
		ReturnType: lir.BoolType{},
		Body: []lir.Stmt{
			&lir.Assignment{LHS: res, RHS: &lir.BoolLiteral{Value: true}},
			&lir.Assert{Var: res, Message: "must hold"},
			&lir.ReturnStmt{Result: &res},
		},
	})

	defn := templateNamed(t, out, "Checked")
	check := defn.Main.Body[1].(*tmpl.StaticAssert)
	assert.Equal(t, "must hold", check.Message)
	conjunct := check.Cond.(*tmpl.BinaryOp)
	assert.Equal(t, "&&", conjunct.Op)
	anchor := conjunct.LHS.(*tmpl.MemberAccess)
	inst := anchor.Class.(*tmpl.Instantiation)
	assert.Equal(t, "AlwaysTrueFromBool", inst.Template.(*tmpl.Name).Cpp)
	assert.Equal(t, "b", inst.Args[0].(*tmpl.Name).Cpp)
	assert.Equal(t, "ok", conjunct.RHS.(*tmpl.Name).Cpp)
}

func TestAssertReferencingAParamNeedsNoAnchor(t *testing.T) {
	arg := boolVar("b")
	res := boolVar("b")
	out := generate(t, &lir.FunctionDefn{
		Name:       "direct",
		Args:       []lir.FunctionArgDecl{{Name: "b", Type: lir.BoolType{}}},
		ReturnType: lir.BoolType{},
		Body: []lir.Stmt{
			&lir.Assert{Var: arg, Message: "b required"},
			&lir.ReturnStmt{Result: &res},
		},
	})

	defn := templateNamed(t, out, "Direct")
	check := defn.Main.Body[0].(*tmpl.StaticAssert)
	assert.Equal(t, "b", check.Cond.(*tmpl.Name).Cpp)
}

func TestUnanchorableAssertFails(t *testing.T) {
	fnType := lir.FunctionType{ArgTypes: []lir.ExprType{lir.BoolType{}}, ReturnType: lir.BoolType{}}
	res := boolVar("ok")
	_, err := tmplgen.Module(&lir.Module{Body: []lir.TopLevel{
		&lir.FunctionDefn{
			Name:       "only_templates",
			Args:       []lir.FunctionArgDecl{{Name: "f", Type: fnType}},
			ReturnType: lir.BoolType{},
			Body: []lir.Stmt{
				&lir.Assignment{LHS: res, RHS: &lir.BoolLiteral{Value: true}},
				&lir.Assert{Var: res, Message: "must hold"},
				&lir.ReturnStmt{Result: &res},
			},
		},
	}}, names.NewGenerator())

	var anchorErr *tmplgen.AssertAnchorError
	require.ErrorAs(t, err, &anchorErr)
	assert.Equal(t, "only_templates", anchorErr.Function)
}

func TestModuleScopeAssertIsBare(t *testing.T) {
	ok := boolVar("ok")
	out := generate(t,
		&lir.Assignment{LHS: ok, RHS: &lir.BoolLiteral{Value: true}},
		&lir.Assert{Var: ok, Message: "module invariant"},
	)

	require.Len(t, out.Body, 2)
	check := out.Body[1].(*tmpl.StaticAssert)
	assert.Equal(t, "ok", check.Cond.(*tmpl.Name).Cpp)
}

func TestIfBecomesBranchHelperWithBoolSpecializations(t *testing.T) {
	res := boolVar("res")
	x := boolVar("x")
	out := generate(t, &lir.FunctionDefn{
		Name:       "choose",
		Args:       []lir.FunctionArgDecl{{Name: "c", Type: lir.BoolType{}}, {Name: "x", Type: lir.BoolType{}}},
		ReturnType: lir.BoolType{},
		Body: []lir.Stmt{
			&lir.IfStmt{
				Cond: boolVar("c"),
				Then: []lir.Stmt{
					&lir.Assignment{LHS: res, RHS: &lir.NotExpr{Var: x}},
					&lir.ReturnStmt{Result: &res},
				},
			},
			&lir.ReturnStmt{Result: &x},
		},
	})

	defns := templates(out)
	require.Len(t, defns, 2, "the helper comes before the function")
	helper, fn := defns[0], defns[1]
	assert.Equal(t, "Choose", fn.Name)

	// Helper: free variables plus the bool selector, specialized on
	// true and false, declaration-only primary.
	assert.Nil(t, helper.Main)
	require.Len(t, helper.Specializations, 2)
	last := helper.Params[len(helper.Params)-1]
	assert.Equal(t, tmpl.KindBool, last.Kind)
	truePatterns := helper.Specializations[0].Patterns
	assert.True(t, truePatterns[len(truePatterns)-1].(*tmpl.BoolLiteral).Value)
	falsePatterns := helper.Specializations[1].Patterns
	assert.False(t, falsePatterns[len(falsePatterns)-1].(*tmpl.BoolLiteral).Value)

	// The non-returning else branch picked up the trailing return.
	elseBody := helper.Specializations[1].Body
	require.Len(t, elseBody, 1)
	assert.Equal(t, "value", elseBody[0].(*tmpl.ConstantDef).Name)

	// The function's own body reads the helper's result, passing the
	// condition as the last argument.
	result := fn.Main.Body[0].(*tmpl.ConstantDef)
	access := result.Expr.(*tmpl.MemberAccess)
	inst := access.Class.(*tmpl.Instantiation)
	assert.Equal(t, helper.Name, inst.Template.(*tmpl.Name).Cpp)
	assert.Equal(t, "c", inst.Args[len(inst.Args)-1].(*tmpl.Name).Cpp)
}

func TestBranchAssertAnchorsToForwardedCondition(t *testing.T) {
	ok := boolVar("ok")
	r := boolVar("r")
	out := generate(t, &lir.FunctionDefn{
		Name:       "guarded",
		Args:       []lir.FunctionArgDecl{{Name: "c", Type: lir.BoolType{}}},
		ReturnType: lir.BoolType{},
		Body: []lir.Stmt{
			&lir.IfStmt{
				Cond: boolVar("c"),
				Then: []lir.Stmt{
					&lir.Assignment{LHS: ok, RHS: &lir.BoolLiteral{Value: true}},
					&lir.Assert{Var: ok, Message: "must hold"},
					&lir.ReturnStmt{Result: &ok},
				},
			},
			&lir.Assignment{LHS: r, RHS: &lir.BoolLiteral{Value: false}},
			&lir.ReturnStmt{Result: &r},
		},
	})

	defns := templates(out)
	require.Len(t, defns, 2)
	helper := defns[0]

	// The branches bind all their variables locally, so the condition
	// gets forwarded as a parameter the assert can anchor to.
	require.Len(t, helper.Params, 2)
	assert.Equal(t, "c", helper.Params[0].Name)
	assert.Equal(t, tmpl.KindBool, helper.Params[0].Kind)

	thenBody := helper.Specializations[0].Body
	check := thenBody[1].(*tmpl.StaticAssert)
	anchor := check.Cond.(*tmpl.BinaryOp)
	require.Equal(t, "&&", anchor.Op)
	inst := anchor.LHS.(*tmpl.MemberAccess).Class.(*tmpl.Instantiation)
	assert.Equal(t, "AlwaysTrueFromBool", inst.Template.(*tmpl.Name).Cpp)
	assert.Equal(t, "c", inst.Args[0].(*tmpl.Name).Cpp)
}

func TestMatchArmEqualToParamsBecomesMainDefinition(t *testing.T) {
	armType := lir.FunctionType{ArgTypes: []lir.ExprType{lir.TypeType{}}, ReturnType: lir.BoolType{}}
	armCall := func(name string) *lir.FunctionCall {
		return &lir.FunctionCall{
			Fun:  lir.VarReference{Type: armType, Name: name, IsGlobalFunction: true, MayThrow: true},
			Args: []lir.VarReference{{Type: lir.TypeType{}, Name: "tmppy_internal_9"}},
		}
	}
	matched := lir.VarReference{Type: lir.TypeType{}, Name: "t"}
	res := boolVar("res")
	errVar := lir.VarReference{Type: lir.ErrorOrVoidType{}, Name: "err"}
	out := generate(t, &lir.FunctionDefn{
		Name:       "classify",
		Args:       []lir.FunctionArgDecl{{Name: "t", Type: lir.TypeType{}}},
		ReturnType: lir.BoolType{},
		MayThrow:   true,
		Body: []lir.Stmt{
			&lir.Assignment{LHS: res, LHS2: &errVar, RHS: &lir.MatchExpr{
				MatchedVars: []lir.VarReference{matched},
				Cases: []lir.MatchCase{
					{
						TypePatterns:    []string{"tmppy_internal_9*"},
						MatchedVarNames: []string{"tmppy_internal_9"},
						Call:            armCall("arm_ptr"),
					},
					{
						TypePatterns:    []string{"tmppy_internal_9"},
						MatchedVarNames: []string{"tmppy_internal_9"},
						Call:            armCall("arm_any"),
					},
				},
			}},
			&lir.ReturnStmt{Result: &res, Error: &errVar},
		},
	})

	defns := templates(out)
	require.Len(t, defns, 2)
	dispatch := defns[0]

	// The catch-all arm's pattern equals its parameter list, so it is
	// the primary definition; the pointer arm stays a specialization.
	require.NotNil(t, dispatch.Main)
	require.Len(t, dispatch.Specializations, 1)
	pointerPattern := dispatch.Specializations[0].Patterns[0].(*tmpl.PatternText)
	assert.Equal(t, "TmppyInternal9*", pointerPattern.Cpp)

	// Both arm bodies forward the result and error members.
	for _, spec := range append([]*tmpl.Specialization{dispatch.Main}, dispatch.Specializations...) {
		last := spec.Body[len(spec.Body)-1].(*tmpl.Typedef)
		assert.Equal(t, "error", last.Name)
	}
}

func TestCustomTypeTemplateDetectorAndCheckIfError(t *testing.T) {
	oops := &lir.CustomType{
		Name: "my_error",
		Fields: []lir.CustomTypeField{
			{Name: "payload", Type: lir.TypeType{}},
			{Name: "fatal", Type: lir.BoolType{}},
		},
		IsException:      true,
		ExceptionMessage: "my_error raised",
	}
	out := generate(t,
		oops,
		&lir.CheckIfErrorDefn{Errors: []lir.ErrorSpec{{Type: oops, Message: "my_error raised"}}},
	)

	defns := templates(out)
	require.Len(t, defns, 3)
	class, detector, check := defns[0], defns[1], defns[2]

	assert.Equal(t, "MyError", class.Name)
	require.Len(t, class.Params, 2)
	assert.Equal(t, tmpl.KindType, class.Params[0].Kind)
	assert.Equal(t, tmpl.KindBool, class.Params[1].Kind)
	payload := class.Main.Body[0].(*tmpl.Typedef)
	assert.Equal(t, "Payload", payload.Name)
	fatal := class.Main.Body[1].(*tmpl.ConstantDef)
	assert.Equal(t, "fatal", fatal.Name)

	// Detector: primary false, specialization over the class pattern
	// true.
	assert.False(t, detector.Main.Body[0].(*tmpl.ConstantDef).Expr.(*tmpl.BoolLiteral).Value)
	spec := detector.Specializations[0]
	pattern := spec.Patterns[0].(*tmpl.Instantiation)
	assert.Equal(t, "MyError", pattern.Template.(*tmpl.Name).Cpp)
	assert.True(t, spec.Body[0].(*tmpl.ConstantDef).Expr.(*tmpl.BoolLiteral).Value)

	// CheckIfError: negated detector assert per exception, then void.
	assert.Equal(t, "CheckIfError", check.Name)
	require.Len(t, check.Main.Body, 2)
	raised := check.Main.Body[0].(*tmpl.StaticAssert)
	assert.Equal(t, "my_error raised", raised.Message)
	negated := raised.Cond.(*tmpl.UnaryOp)
	assert.Equal(t, "!", negated.Op)
	detectorUse := negated.Operand.(*tmpl.MemberAccess).Class.(*tmpl.Instantiation)
	assert.Equal(t, detector.Name, detectorUse.Template.(*tmpl.Name).Cpp)
	void := check.Main.Body[1].(*tmpl.Typedef)
	assert.Equal(t, "type", void.Name)
	assert.Equal(t, "void", void.Expr.(*tmpl.TypeText).Cpp)
}

func TestFunctionValuedResultNestsATemplate(t *testing.T) {
	fnType := lir.FunctionType{ArgTypes: []lir.ExprType{lir.BoolType{}}, ReturnType: lir.BoolType{}}
	f := lir.VarReference{Type: fnType, Name: "f"}
	out := generate(t, &lir.FunctionDefn{
		Name:       "pick",
		Args:       []lir.FunctionArgDecl{{Name: "f", Type: fnType}},
		ReturnType: fnType,
		Body:       []lir.Stmt{&lir.ReturnStmt{Result: &f}},
	})

	defn := templateNamed(t, out, "Pick")
	body := defn.Main.Body
	// `struct type { ... }` cannot hold its own `using type`, so the
	// nested template gets a helper name plus an alias.
	require.Len(t, body, 2)
	helper := body[0].(*tmpl.TemplateDefn)
	assert.Equal(t, "type_Helper0", helper.Name)
	require.Len(t, helper.Params, 1)
	assert.Equal(t, "Param_0", helper.Params[0].Name)
	innerResult := helper.Main.Body[0].(*tmpl.ConstantDef)
	assert.Equal(t, "value", innerResult.Name)
	call := innerResult.Expr.(*tmpl.MemberAccess)
	assert.Equal(t, "F", call.Class.(*tmpl.Instantiation).Template.(*tmpl.Name).Cpp)

	alias := body[1].(*tmpl.AliasTemplate)
	assert.Equal(t, "type", alias.Name)
	assert.Equal(t, "type_Helper0", alias.Target.(*tmpl.Instantiation).Template.(*tmpl.Name).Cpp)
}

func TestUnpackingEmitsSizeAssertAndGets(t *testing.T) {
	intList := lir.VarReference{Type: lir.TypeType{}, Name: "l"}
	a := lir.VarReference{Type: lir.Int64Type{}, Name: "a"}
	b := lir.VarReference{Type: lir.Int64Type{}, Name: "b"}
	out := generate(t, &lir.FunctionDefn{
		Name:       "first_of_pair",
		Args:       []lir.FunctionArgDecl{{Name: "l", Type: lir.TypeType{}}},
		ReturnType: lir.Int64Type{},
		Body: []lir.Stmt{
			&lir.UnpackingAssignment{
				LHSList:      []lir.VarReference{a, b},
				RHS:          intList,
				ElemKind:     "Int64",
				ErrorMessage: "expected a pair",
			},
			&lir.ReturnStmt{Result: &a},
		},
	})

	defn := templateNamed(t, out, "FirstOfPair")
	body := defn.Main.Body
	require.Len(t, body, 4)

	check := body[0].(*tmpl.StaticAssert)
	assert.Equal(t, "expected a pair", check.Message)
	size := check.Cond.(*tmpl.BinaryOp)
	assert.Equal(t, "==", size.Op)
	sizeInst := size.LHS.(*tmpl.MemberAccess).Class.(*tmpl.Instantiation)
	assert.Equal(t, "Int64ListSize", sizeInst.Template.(*tmpl.Name).Cpp)
	assert.Equal(t, int64(2), size.RHS.(*tmpl.Int64Literal).Value)

	getA := body[1].(*tmpl.ConstantDef)
	assert.Equal(t, "a", getA.Name)
	getInst := getA.Expr.(*tmpl.MemberAccess).Class.(*tmpl.Instantiation)
	assert.Equal(t, "Int64ListGet", getInst.Template.(*tmpl.Name).Cpp)
	assert.Equal(t, int64(0), getInst.Args[1].(*tmpl.Int64Literal).Value)
}

func TestGeneratedHelperNamesAreUnique(t *testing.T) {
	gen := names.NewGenerator()
	res := boolVar("res")
	x := boolVar("x")
	branchy := func(name string) *lir.FunctionDefn {
		return &lir.FunctionDefn{
			Name:       name,
			Args:       []lir.FunctionArgDecl{{Name: "c", Type: lir.BoolType{}}, {Name: "x", Type: lir.BoolType{}}},
			ReturnType: lir.BoolType{},
			Body: []lir.Stmt{
				&lir.IfStmt{
					Cond: boolVar("c"),
					Then: []lir.Stmt{&lir.ReturnStmt{Result: &x}},
				},
				&lir.Assignment{LHS: res, RHS: &lir.NotExpr{Var: x}},
				&lir.ReturnStmt{Result: &res},
			},
		}
	}
	out, err := tmplgen.Module(&lir.Module{Body: []lir.TopLevel{branchy("f1"), branchy("f2")}}, gen)
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, defn := range templates(out) {
		assert.False(t, seen[defn.Name], "duplicate template name %s", defn.Name)
		seen[defn.Name] = true
	}
	assert.Len(t, seen, 4)
}
