package tmplgen

import (
	"fmt"
	"strconv"

	"github.com/tmppy/tmppyc/internal/lir"
	"github.com/tmppy/tmppyc/internal/tmpl"
)

// counter numbers helper and parameter names within one assignment.
// Both are template-scoped, so reuse across assignments is harmless.
type counter struct {
	prefix string
	n      int
}

func (c *counter) next() string {
	name := c.prefix + strconv.Itoa(c.n)
	c.n++
	return name
}

// assignElements is the kind-directed assignment: a bool or int64
// right-hand side becomes a constant definition, a type becomes an
// alias, and a function value becomes a nested template parameterized
// by the function's argument list, whose own body assigns the result
// of a synthetic call against those parameters. Currying is just this
// recursion applied again to the inner result.
func (fg *funcGen) assignElements(lhsName string, t lir.ExprType, rhs tmpl.Expr) ([]tmpl.BodyElement, error) {
	helpers := &counter{prefix: lhsName + "_Helper"}
	params := &counter{prefix: "Param_"}
	return fg.assignRec(lhsName, t, rhs, helpers, params)
}

func (fg *funcGen) assignRec(lhsName string, t lir.ExprType, rhs tmpl.Expr, helpers, params *counter) ([]tmpl.BodyElement, error) {
	switch kindOf(t) {
	case tmpl.KindBool, tmpl.KindInt64:
		return []tmpl.BodyElement{&tmpl.ConstantDef{Name: lhsName, Expr: rhs}}, nil
	case tmpl.KindType:
		return []tmpl.BodyElement{&tmpl.Typedef{Name: lhsName, Expr: rhs}}, nil
	}

	ft, ok := t.(lir.FunctionType)
	if !ok {
		return nil, fmt.Errorf("unsupported assignment type %T", t)
	}
	templateParams := make([]tmpl.Param, len(ft.ArgTypes))
	args := make([]tmpl.Expr, len(ft.ArgTypes))
	for i, argType := range ft.ArgTypes {
		name := params.next()
		templateParams[i] = paramFor(argType, name)
		args[i] = &tmpl.Name{Cpp: name, NameKind: kindOf(argType)}
	}
	innerName := resultMemberName(kindOf(ft.ReturnType))
	inner, err := fg.assignRec(innerName, ft.ReturnType, callOn(rhs, ft, args), helpers, params)
	if err != nil {
		return nil, err
	}

	if lhsName != "type" {
		return []tmpl.BodyElement{&tmpl.TemplateDefn{
			Name:   lhsName,
			Params: templateParams,
			Main:   &tmpl.Specialization{Params: templateParams, Body: inner},
		}}, nil
	}

	// `struct type { using type = ...; }` is illegal, so the nested
	// template gets a helper name and `type` becomes an alias for it.
	helperName := helpers.next()
	return []tmpl.BodyElement{
		&tmpl.TemplateDefn{
			Name:   helperName,
			Params: templateParams,
			Main:   &tmpl.Specialization{Params: templateParams, Body: inner},
		},
		&tmpl.AliasTemplate{
			Name:   "type",
			Params: templateParams,
			Target: &tmpl.Instantiation{
				Template: &tmpl.Name{Cpp: helperName, NameKind: tmpl.KindTemplate},
				Args:     args,
			},
		},
	}, nil
}
