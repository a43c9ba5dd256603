package emit_test

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/tmppy/tmppyc/internal/emit"
	"github.com/tmppy/tmppyc/internal/tmpl"
)

func assertGolden(t *testing.T, name string, module *tmpl.Module) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(emit.Module(module)))
}

func boolName(cpp string) *tmpl.Name {
	return &tmpl.Name{Cpp: cpp, NameKind: tmpl.KindBool}
}

func typeName(cpp string) *tmpl.Name {
	return &tmpl.Name{Cpp: cpp, NameKind: tmpl.KindType}
}

func TestNegationTemplate(t *testing.T) {
	params := []tmpl.Param{{Name: "x", Kind: tmpl.KindBool}}
	assertGolden(t, "negation", &tmpl.Module{Body: []tmpl.BodyElement{
		&tmpl.TemplateDefn{
			Name:   "Negate",
			Params: params,
			Main: &tmpl.Specialization{
				Params: params,
				Body: []tmpl.BodyElement{
					&tmpl.ConstantDef{Name: "b", Expr: &tmpl.UnaryOp{Op: "!", Operand: boolName("x"), ResultKind: tmpl.KindBool}},
					&tmpl.ConstantDef{Name: "value", Expr: boolName("b")},
				},
			},
		},
	}})
}

func TestBranchDispatchTemplate(t *testing.T) {
	specParams := []tmpl.Param{{Name: "x", Kind: tmpl.KindBool}}
	chooseParams := []tmpl.Param{{Name: "c", Kind: tmpl.KindBool}, {Name: "x", Kind: tmpl.KindBool}}
	assertGolden(t, "branch_dispatch", &tmpl.Module{Body: []tmpl.BodyElement{
		&tmpl.TemplateDefn{
			Name:   "TmppyInternal0",
			Params: []tmpl.Param{{Name: "x", Kind: tmpl.KindBool}, {Name: "TmppyInternal1", Kind: tmpl.KindBool}},
			Specializations: []*tmpl.Specialization{
				{
					Params:   specParams,
					Patterns: []tmpl.Expr{boolName("x"), &tmpl.BoolLiteral{Value: true}},
					Body: []tmpl.BodyElement{
						&tmpl.ConstantDef{Name: "value", Expr: &tmpl.UnaryOp{Op: "!", Operand: boolName("x"), ResultKind: tmpl.KindBool}},
					},
				},
				{
					Params:   specParams,
					Patterns: []tmpl.Expr{boolName("x"), &tmpl.BoolLiteral{Value: false}},
					Body: []tmpl.BodyElement{
						&tmpl.ConstantDef{Name: "value", Expr: boolName("x")},
					},
				},
			},
		},
		&tmpl.TemplateDefn{
			Name:   "Choose",
			Params: chooseParams,
			Main: &tmpl.Specialization{
				Params: chooseParams,
				Body: []tmpl.BodyElement{
					&tmpl.ConstantDef{Name: "value", Expr: &tmpl.MemberAccess{
						Class: &tmpl.Instantiation{
							Template: &tmpl.Name{Cpp: "TmppyInternal0", NameKind: tmpl.KindTemplate},
							Args:     []tmpl.Expr{boolName("x"), boolName("c")},
						},
						MemberName: "value",
						MemberKind: tmpl.KindBool,
					}},
				},
			},
		},
	}})
}

func TestErrorCheckAndMemberReads(t *testing.T) {
	classParams := []tmpl.Param{{Name: "Param1", Kind: tmpl.KindType}}
	checkParams := []tmpl.Param{{Name: "E", Kind: tmpl.KindType}}
	mayFailParams := []tmpl.Param{{Name: "b", Kind: tmpl.KindBool}, {Name: "T", Kind: tmpl.KindType}}
	assertGolden(t, "error_check", &tmpl.Module{Body: []tmpl.BodyElement{
		&tmpl.TemplateDefn{
			Name:   "MyError",
			Params: classParams,
			Main: &tmpl.Specialization{
				Params: classParams,
				Body: []tmpl.BodyElement{
					&tmpl.Typedef{Name: "Payload", Expr: typeName("Param1")},
				},
			},
		},
		&tmpl.TemplateDefn{
			Name:   "TmppyInternal0",
			Params: []tmpl.Param{{Name: "T", Kind: tmpl.KindType}},
			Main: &tmpl.Specialization{
				Params: []tmpl.Param{{Name: "T", Kind: tmpl.KindType}},
				Body: []tmpl.BodyElement{
					&tmpl.ConstantDef{Name: "value", Expr: &tmpl.BoolLiteral{Value: false}},
				},
			},
			Specializations: []*tmpl.Specialization{{
				Params: classParams,
				Patterns: []tmpl.Expr{&tmpl.Instantiation{
					Template: &tmpl.Name{Cpp: "MyError", NameKind: tmpl.KindTemplate},
					Args:     []tmpl.Expr{typeName("Param1")},
				}},
				Body: []tmpl.BodyElement{
					&tmpl.ConstantDef{Name: "value", Expr: &tmpl.BoolLiteral{Value: true}},
				},
			}},
		},
		&tmpl.TemplateDefn{
			Name:   "CheckIfError",
			Params: checkParams,
			Main: &tmpl.Specialization{
				Params: checkParams,
				Body: []tmpl.BodyElement{
					&tmpl.StaticAssert{
						Cond: &tmpl.UnaryOp{
							Op: "!",
							Operand: &tmpl.MemberAccess{
								Class: &tmpl.Instantiation{
									Template: &tmpl.Name{Cpp: "TmppyInternal0", NameKind: tmpl.KindTemplate},
									Args:     []tmpl.Expr{typeName("E")},
								},
								MemberName: "value",
								MemberKind: tmpl.KindBool,
							},
							ResultKind: tmpl.KindBool,
						},
						Message: "something went wrong",
					},
					&tmpl.Typedef{Name: "type", Expr: &tmpl.TypeText{Cpp: "void"}},
				},
			},
		},
		&tmpl.TemplateDefn{
			Name:   "MayFail",
			Params: mayFailParams,
			Main: &tmpl.Specialization{
				Params: mayFailParams,
				Body: []tmpl.BodyElement{
					&tmpl.StaticAssert{
						Cond: &tmpl.BinaryOp{
							Op: "&&",
							LHS: &tmpl.MemberAccess{
								Class: &tmpl.Instantiation{
									Template: &tmpl.Name{Cpp: "AlwaysTrueFromBool", NameKind: tmpl.KindTemplate},
									Args:     []tmpl.Expr{boolName("b")},
								},
								MemberName: "value",
								MemberKind: tmpl.KindBool,
							},
							RHS:        boolName("b"),
							ResultKind: tmpl.KindBool,
						},
						Message: "anchored",
					},
					&tmpl.Typedef{Name: "type", Expr: &tmpl.MemberAccess{
						Class: &tmpl.Instantiation{
							Template: &tmpl.Name{Cpp: "F", NameKind: tmpl.KindTemplate},
							Args:     []tmpl.Expr{typeName("T")},
						},
						MemberName: "type",
						MemberKind: tmpl.KindType,
					}},
					&tmpl.Typedef{Name: "error", Expr: &tmpl.TypeText{Cpp: "void"}},
				},
			},
		},
	}})
}

func TestNestedTemplateAndAlias(t *testing.T) {
	outerParams := []tmpl.Param{{Name: "x", Kind: tmpl.KindBool}}
	innerParams := []tmpl.Param{{Name: "Param_0", Kind: tmpl.KindBool}}
	assertGolden(t, "nested_template", &tmpl.Module{Body: []tmpl.BodyElement{
		&tmpl.TemplateDefn{
			Name:   "Pick",
			Params: outerParams,
			Main: &tmpl.Specialization{
				Params: outerParams,
				Body: []tmpl.BodyElement{
					&tmpl.TemplateDefn{
						Name:   "type_Helper0",
						Params: innerParams,
						Main: &tmpl.Specialization{
							Params: innerParams,
							Body: []tmpl.BodyElement{
								&tmpl.ConstantDef{Name: "value", Expr: &tmpl.MemberAccess{
									Class: &tmpl.Instantiation{
										Template: &tmpl.Name{Cpp: "F", NameKind: tmpl.KindTemplate},
										Args:     []tmpl.Expr{boolName("Param_0")},
									},
									MemberName: "value",
									MemberKind: tmpl.KindBool,
								}},
							},
						},
					},
					&tmpl.AliasTemplate{
						Name:   "type",
						Params: innerParams,
						Target: &tmpl.Instantiation{
							Template: &tmpl.Name{Cpp: "type_Helper0", NameKind: tmpl.KindTemplate},
							Args:     []tmpl.Expr{boolName("Param_0")},
						},
					},
				},
			},
		},
		&tmpl.ConstantDef{Name: "picked", Expr: &tmpl.MemberAccess{
			Class: &tmpl.Instantiation{
				Template: &tmpl.MemberAccess{
					Class:      typeName("H"),
					MemberName: "type",
					MemberKind: tmpl.KindTemplate,
				},
				Args: []tmpl.Expr{boolName("y")},
			},
			MemberName: "value",
			MemberKind: tmpl.KindBool,
		}},
		&tmpl.ConstantDef{Name: "answer", Expr: &tmpl.Int64Literal{Value: 42}},
		&tmpl.StaticAssert{Cond: boolName("picked"), Message: "module invariant"},
	}})
}
