package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tmppy/tmppyc/internal/hir"
)

func TestFnRefCarriesSignature(t *testing.T) {
	fn := FallibleFn("f",
		[]hir.FunctionArgDecl{Arg("x", hir.BoolType{})}, hir.TypeType{},
		Return(Ref("x", hir.BoolType{})),
	)

	ref := FnRef(fn)
	assert.True(t, ref.IsGlobalFunction)
	assert.True(t, ref.MayThrow)
	assert.Equal(t, hir.FunctionType{
		ArgTypes: []hir.ExprType{hir.BoolType{}},
		Returns:  hir.TypeType{},
	}, ref.Type)
}

func TestAssignDerivesTypeFromRHS(t *testing.T) {
	assign := Assign("b", &hir.NotExpr{Operand: Ref("x", hir.BoolType{})})
	assert.Equal(t, hir.BoolType{}, assign.LHS.Type)
}
