package normalize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmppy/tmppyc/internal/lir"
	"github.com/tmppy/tmppyc/internal/mir"
	"github.com/tmppy/tmppyc/internal/normalize"
)

func singleAssignmentRHS(t *testing.T, rhs mir.Expr, lhsType mir.ExprType) lir.Expr {
	t.Helper()
	module := &mir.Module{Body: []mir.TopLevel{
		&mir.FunctionDefn{
			Name:       "probe",
			Body:       []mir.Stmt{&mir.Assignment{LHS: mir.VarReference{Type: lhsType, Name: "out"}, RHS: rhs}},
			ReturnType: lhsType,
		},
	}}
	out, err := normalize.Module(module)
	require.NoError(t, err)
	fn := out.Body[0].(*lir.FunctionDefn)
	require.Len(t, fn.Body, 1)
	return fn.Body[0].(*lir.Assignment).RHS
}

func TestListLiteralTemplatePerElementKind(t *testing.T) {
	tests := []struct {
		name     string
		elemType mir.ExprType
		want     string
	}{
		{"bool elements", mir.BoolType{}, "BoolList"},
		{"int elements", mir.IntType{}, "Int64List"},
		{"type elements", mir.TypeType{}, "List"},
		{"custom-type elements", &mir.CustomType{Name: "Pair"}, "List"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rhs := singleAssignmentRHS(t,
				&mir.ListExpr{ElemType: tt.elemType, Elems: []mir.VarReference{{Type: tt.elemType, Name: "x"}}},
				mir.ListType{Elem: tt.elemType})
			inst, ok := rhs.(*lir.TemplateInstantiation)
			require.True(t, ok)
			assert.Equal(t, tt.want, inst.Template)
			require.Len(t, inst.Args, 1)
			assert.Equal(t, "x", inst.Args[0].Name)
		})
	}
}

func TestListConcatReadsTypeMember(t *testing.T) {
	listT := mir.ListType{Elem: mir.IntType{}}
	rhs := singleAssignmentRHS(t,
		&mir.ListConcatExpr{
			LHS: mir.VarReference{Type: listT, Name: "l1"},
			RHS: mir.VarReference{Type: listT, Name: "l2"},
		},
		listT)

	access, ok := rhs.(*lir.ClassMemberAccess)
	require.True(t, ok)
	assert.Equal(t, "type", access.MemberName)
	assert.Equal(t, lir.TypeType{}, access.MemberType)
	inst := access.Class.(*lir.TemplateInstantiation)
	assert.Equal(t, "Int64ListConcat", inst.Template)
}

func TestSetOperationsPickKindedTemplates(t *testing.T) {
	boolList := mir.ListType{Elem: mir.BoolType{}}
	typeList := mir.ListType{Elem: mir.TypeType{}}

	add := singleAssignmentRHS(t, &mir.AddToSetExpr{
		Set:  mir.VarReference{Type: boolList, Name: "s"},
		Elem: mir.VarReference{Type: mir.BoolType{}, Name: "e"},
	}, boolList)
	assert.Equal(t, "AddToBoolSet",
		add.(*lir.ClassMemberAccess).Class.(*lir.TemplateInstantiation).Template)
	assert.Equal(t, "type", add.(*lir.ClassMemberAccess).MemberName)

	equals := singleAssignmentRHS(t, &mir.SetEqualityComparison{
		LHS: mir.VarReference{Type: typeList, Name: "a"},
		RHS: mir.VarReference{Type: typeList, Name: "b"},
	}, mir.BoolType{})
	equalsAccess := equals.(*lir.ClassMemberAccess)
	assert.Equal(t, "TypeSetEquals", equalsAccess.Class.(*lir.TemplateInstantiation).Template)
	assert.Equal(t, "value", equalsAccess.MemberName)
	assert.Equal(t, lir.BoolType{}, equalsAccess.MemberType)

	toSet := singleAssignmentRHS(t, &mir.ListToSetExpr{
		Var: mir.VarReference{Type: typeList, Name: "l"},
	}, typeList)
	assert.Equal(t, "TypeListToSet",
		toSet.(*lir.ClassMemberAccess).Class.(*lir.TemplateInstantiation).Template)
}

func TestSetToListIsIdentity(t *testing.T) {
	listT := mir.ListType{Elem: mir.IntType{}}
	rhs := singleAssignmentRHS(t, &mir.SetToListExpr{
		Var: mir.VarReference{Type: listT, Name: "s"},
	}, listT)

	v, ok := rhs.(lir.VarReference)
	require.True(t, ok)
	assert.Equal(t, "s", v.Name)
	assert.Equal(t, lir.TypeType{}, v.Type, "list types erase to the type-value type")
}

func TestReductionsReadValueMember(t *testing.T) {
	intList := mir.ListType{Elem: mir.IntType{}}
	boolList := mir.ListType{Elem: mir.BoolType{}}

	sum := singleAssignmentRHS(t, &mir.IntListSumExpr{
		Var: mir.VarReference{Type: intList, Name: "l"},
	}, mir.IntType{})
	sumAccess := sum.(*lir.ClassMemberAccess)
	assert.Equal(t, "Int64ListSum", sumAccess.Class.(*lir.TemplateInstantiation).Template)
	assert.Equal(t, "value", sumAccess.MemberName)
	assert.Equal(t, lir.Int64Type{}, sumAccess.MemberType)

	all := singleAssignmentRHS(t, &mir.BoolListAllExpr{
		Var: mir.VarReference{Type: boolList, Name: "l"},
	}, mir.BoolType{})
	assert.Equal(t, "BoolListAll", all.(*lir.ClassMemberAccess).Class.(*lir.TemplateInstantiation).Template)

	anyExpr := singleAssignmentRHS(t, &mir.BoolListAnyExpr{
		Var: mir.VarReference{Type: boolList, Name: "l"},
	}, mir.BoolType{})
	assert.Equal(t, "BoolListAny", anyExpr.(*lir.ClassMemberAccess).Class.(*lir.TemplateInstantiation).Template)
}

func TestConstructorCallBecomesInstantiation(t *testing.T) {
	pair := &mir.CustomType{
		Name: "Pair",
		Fields: []mir.CustomTypeField{
			{Name: "first", Type: mir.TypeType{}},
			{Name: "second", Type: mir.TypeType{}},
		},
	}
	ctorType := mir.FunctionType{
		ArgTypes: []mir.ExprType{mir.TypeType{}, mir.TypeType{}},
		Returns:  pair,
	}
	rhs := singleAssignmentRHS(t, &mir.FunctionCall{
		Fun: mir.VarReference{Type: ctorType, Name: "Pair", IsGlobalFunction: true},
		Args: []mir.VarReference{
			{Type: mir.TypeType{}, Name: "a"},
			{Type: mir.TypeType{}, Name: "b"},
		},
	}, pair)

	inst, ok := rhs.(*lir.TemplateInstantiation)
	require.True(t, ok, "constructor calls become template instantiations")
	assert.Equal(t, "Pair", inst.Template)
	require.Len(t, inst.Args, 2)
}

func TestOrdinaryCallStaysACall(t *testing.T) {
	fnType := mir.FunctionType{ArgTypes: []mir.ExprType{mir.BoolType{}}, Returns: mir.BoolType{}}
	rhs := singleAssignmentRHS(t, &mir.FunctionCall{
		Fun:  mir.VarReference{Type: fnType, Name: "negate", IsGlobalFunction: true},
		Args: []mir.VarReference{{Type: mir.BoolType{}, Name: "b"}},
	}, mir.BoolType{})

	call, ok := rhs.(*lir.FunctionCall)
	require.True(t, ok)
	assert.Equal(t, "negate", call.Fun.Name)
}

func TestComprehensionTransformTemplateFromKinds(t *testing.T) {
	intList := mir.ListType{Elem: mir.IntType{}}
	bodyType := mir.FunctionType{ArgTypes: []mir.ExprType{mir.IntType{}}, Returns: mir.BoolType{}}
	rhs := singleAssignmentRHS(t, &mir.ListComprehension{
		ListVar: mir.VarReference{Type: intList, Name: "xs"},
		LoopVar: mir.VarReference{Type: mir.IntType{}, Name: "x"},
		Call: &mir.FunctionCall{
			Fun:  mir.VarReference{Type: bodyType, Name: "is_even", IsGlobalFunction: true},
			Args: []mir.VarReference{{Type: mir.IntType{}, Name: "x"}},
		},
	}, mir.ListType{Elem: mir.BoolType{}})

	compr, ok := rhs.(*lir.ListComprehension)
	require.True(t, ok)
	assert.Equal(t, "TransformInt64ListToBoolList", compr.TransformTemplate)
}

func TestUnpackingAssignmentElemKind(t *testing.T) {
	intList := mir.ListType{Elem: mir.IntType{}}
	module := &mir.Module{Body: []mir.TopLevel{
		&mir.FunctionDefn{
			Name: "split",
			Args: []mir.FunctionArgDecl{{Name: "l", Type: intList}},
			Body: []mir.Stmt{
				&mir.UnpackingAssignment{
					LHSList: []mir.VarReference{
						{Type: mir.IntType{}, Name: "a"},
						{Type: mir.IntType{}, Name: "b"},
					},
					RHS:          mir.VarReference{Type: intList, Name: "l"},
					ErrorMessage: "expected a pair",
				},
			},
			ReturnType: mir.IntType{},
		},
	}}
	out, err := normalize.Module(module)
	require.NoError(t, err)

	fn := out.Body[0].(*lir.FunctionDefn)
	unpacking := fn.Body[0].(*lir.UnpackingAssignment)
	assert.Equal(t, "Int64", unpacking.ElemKind)
	assert.Equal(t, "expected a pair", unpacking.ErrorMessage)
	assert.Equal(t, lir.TypeType{}, unpacking.RHS.Type)
}

func TestModulePreservesTopLevelOrderAndCustomTypes(t *testing.T) {
	exc := &mir.CustomType{Name: "Oops", IsException: true, ExceptionMessage: "oops happened"}
	module := &mir.Module{Body: []mir.TopLevel{
		exc,
		&mir.CheckIfErrorDefn{Errors: []mir.ErrorSpec{{Type: exc, Message: "oops happened"}}},
		&mir.FunctionDefn{Name: "noop", ReturnType: mir.BoolType{}},
		&mir.Assert{Var: mir.VarReference{Type: mir.BoolType{}, Name: "ok"}, Message: "must hold"},
	}}
	out, err := normalize.Module(module)
	require.NoError(t, err)

	require.Len(t, out.Body, 4)
	ct := out.Body[0].(*lir.CustomType)
	assert.Equal(t, "Oops", ct.Name)
	check := out.Body[1].(*lir.CheckIfErrorDefn)
	require.Len(t, check.Errors, 1)
	assert.Same(t, ct, check.Errors[0].Type, "custom-type conversion is memoized")
	_, ok := out.Body[2].(*lir.FunctionDefn)
	assert.True(t, ok)
	_, ok = out.Body[3].(*lir.Assert)
	assert.True(t, ok)
}
