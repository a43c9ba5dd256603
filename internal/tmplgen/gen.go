package tmplgen

import (
	"fmt"

	"github.com/tmppy/tmppyc/internal/lir"
	"github.com/tmppy/tmppyc/internal/names"
	"github.com/tmppy/tmppyc/internal/tmpl"
)

// Module generates the C++ template model for a normalized module.
// Synthesized helper templates draw their names from gen, the same
// generator the earlier passes used, so no template name can collide
// with a variable or function name from any pass.
func Module(module *lir.Module, gen *names.Generator) (*tmpl.Module, error) {
	g := &moduleGen{
		gen:         gen,
		customTypes: make(map[string]*lir.CustomType),
		detectors:   make(map[string]string),
	}
	for _, top := range module.Body {
		switch elem := top.(type) {
		case *lir.CustomType:
			if err := g.customTypeDefn(elem); err != nil {
				return nil, err
			}
		case *lir.CheckIfErrorDefn:
			if err := g.checkIfErrorDefn(elem); err != nil {
				return nil, err
			}
		case *lir.FunctionDefn:
			if err := g.functionDefn(elem); err != nil {
				return nil, fmt.Errorf("function %s: %w", elem.Name, err)
			}
		case *lir.Assignment:
			fg := &funcGen{mod: g}
			elems, err := fg.assignment(elem)
			if err != nil {
				return nil, err
			}
			g.body = append(g.body, elems...)
		case *lir.Assert:
			// Namespace scope: the assert is meant to be evaluated
			// right here, no anchoring.
			fg := &funcGen{mod: g}
			cond, err := fg.expr(elem.Var)
			if err != nil {
				return nil, err
			}
			g.body = append(g.body, &tmpl.StaticAssert{Cond: cond, Message: elem.Message})
		default:
			return nil, fmt.Errorf("unsupported top-level element %T", top)
		}
	}
	return &tmpl.Module{Body: g.body}, nil
}

type moduleGen struct {
	gen         *names.Generator
	customTypes map[string]*lir.CustomType
	detectors   map[string]string
	body        []tmpl.BodyElement
}

// kindOf classifies a static type for template generation. Everything
// that is not a bool, an integer or a function lives at the type level:
// C++ types, erased collections, custom-type instances and the error
// channel.
func kindOf(t lir.ExprType) tmpl.Kind {
	switch t.(type) {
	case lir.BoolType:
		return tmpl.KindBool
	case lir.Int64Type:
		return tmpl.KindInt64
	case lir.FunctionType:
		return tmpl.KindTemplate
	default:
		return tmpl.KindType
	}
}

// resultMemberName is the fixed member name holding a function's
// result: `value` for bool and int64 results, `type` for everything
// else.
func resultMemberName(k tmpl.Kind) string {
	if k == tmpl.KindBool || k == tmpl.KindInt64 {
		return "value"
	}
	return "type"
}

// memberSpelling maps a member name to its C++ spelling. The fixed
// protocol members `value`, `type` and `error` are already C++
// spellings; custom-type field names go through the kind-directed
// identifier transform.
func memberSpelling(name string, k tmpl.Kind) string {
	switch name {
	case "value", "type", "error":
		return name
	}
	return tmpl.CppIdentifier(k, name)
}

// spell returns the C++ name expression for a variable reference.
func spell(v lir.VarReference) *tmpl.Name {
	k := kindOf(v.Type)
	return &tmpl.Name{Cpp: tmpl.CppIdentifier(k, v.Name), NameKind: k}
}

// paramFor declares a template parameter for a variable of the given
// type. Function-typed parameters carry their own signature.
func paramFor(t lir.ExprType, name string) tmpl.Param {
	k := kindOf(t)
	p := tmpl.Param{Name: name, Kind: k}
	if ft, ok := t.(lir.FunctionType); ok {
		p.Args = make([]tmpl.Param, len(ft.ArgTypes))
		for i, at := range ft.ArgTypes {
			p.Args[i] = paramFor(at, "")
		}
	}
	return p
}

func paramForVar(v lir.VarReference) tmpl.Param {
	return paramFor(v.Type, spell(v).Cpp)
}

// customTypeDefn emits the class template for a custom type, one
// parameter per field, followed by the type's instance-detector
// template. Detectors are memoized here so that later isinstance
// checks and the error-classification check reuse the same template.
func (g *moduleGen) customTypeDefn(ct *lir.CustomType) error {
	if _, ok := g.customTypes[ct.Name]; ok {
		return fmt.Errorf("custom type %s declared twice", ct.Name)
	}
	g.customTypes[ct.Name] = ct
	cppName := tmpl.CppIdentifier(tmpl.KindType, ct.Name)

	params := make([]tmpl.Param, len(ct.Fields))
	var body []tmpl.BodyElement
	for i, field := range ct.Fields {
		paramName := fmt.Sprintf("Param%d", i+1)
		params[i] = paramFor(field.Type, paramName)
		k := kindOf(field.Type)
		member := tmpl.CppIdentifier(k, field.Name)
		paramRef := &tmpl.Name{Cpp: paramName, NameKind: k}
		switch k {
		case tmpl.KindBool, tmpl.KindInt64:
			body = append(body, &tmpl.ConstantDef{Name: member, Expr: paramRef})
		case tmpl.KindType:
			body = append(body, &tmpl.Typedef{Name: member, Expr: paramRef})
		case tmpl.KindTemplate:
			forwarded, err := g.forwardingAlias(member, field.Type.(lir.FunctionType), paramRef)
			if err != nil {
				return err
			}
			body = append(body, forwarded)
		}
	}
	g.body = append(g.body, &tmpl.TemplateDefn{
		Name:        cppName,
		Description: fmt.Sprintf("the %s value type", ct.Name),
		Params:      params,
		Main:        &tmpl.Specialization{Params: params, Body: body},
	})
	return g.detectorDefn(ct, cppName, params)
}

// forwardingAlias exposes a function-valued field as an alias template
// over the field's own argument list.
func (g *moduleGen) forwardingAlias(name string, ft lir.FunctionType, target tmpl.Expr) (tmpl.BodyElement, error) {
	params := make([]tmpl.Param, len(ft.ArgTypes))
	args := make([]tmpl.Expr, len(ft.ArgTypes))
	for i, at := range ft.ArgTypes {
		paramName := fmt.Sprintf("Param%d", i+1)
		params[i] = paramFor(at, paramName)
		args[i] = &tmpl.Name{Cpp: paramName, NameKind: kindOf(at)}
	}
	return &tmpl.AliasTemplate{
		Name:   name,
		Params: params,
		Target: &tmpl.Instantiation{Template: target, Args: args},
	}, nil
}

// detectorDefn synthesizes the instance-detector template for a custom
// type: the primary definition holds false, a specialization over the
// type's own parameter list holds true.
func (g *moduleGen) detectorDefn(ct *lir.CustomType, cppName string, params []tmpl.Param) error {
	detName := tmpl.CppIdentifier(tmpl.KindTemplate, g.gen.Next())
	g.detectors[ct.Name] = detName

	primaryParams := []tmpl.Param{{Name: "T", Kind: tmpl.KindType}}
	var pattern tmpl.Expr
	if len(params) == 0 {
		pattern = &tmpl.Name{Cpp: cppName, NameKind: tmpl.KindType}
	} else {
		args := make([]tmpl.Expr, len(params))
		for i, p := range params {
			args[i] = &tmpl.Name{Cpp: p.Name, NameKind: p.Kind}
		}
		pattern = &tmpl.Instantiation{
			Template: &tmpl.Name{Cpp: cppName, NameKind: tmpl.KindTemplate},
			Args:     args,
		}
	}
	g.body = append(g.body, &tmpl.TemplateDefn{
		Name:        detName,
		Description: fmt.Sprintf("instance check for %s", ct.Name),
		Params:      primaryParams,
		Main: &tmpl.Specialization{
			Params: primaryParams,
			Body: []tmpl.BodyElement{
				&tmpl.ConstantDef{Name: "value", Expr: &tmpl.BoolLiteral{Value: false}},
			},
		},
		Specializations: []*tmpl.Specialization{{
			Params:   params,
			Patterns: []tmpl.Expr{pattern},
			Body: []tmpl.BodyElement{
				&tmpl.ConstantDef{Name: "value", Expr: &tmpl.BoolLiteral{Value: true}},
			},
		}},
	})
	return nil
}

// checkIfErrorDefn emits the CheckIfError template. Each exception
// type contributes one static assert on the negated detector; the
// asserts depend on the template parameter, so the C++ compiler defers
// them to instantiation time, which is exactly when an unhandled error
// reaches the top level.
func (g *moduleGen) checkIfErrorDefn(defn *lir.CheckIfErrorDefn) error {
	params := []tmpl.Param{{Name: "E", Kind: tmpl.KindType}}
	var body []tmpl.BodyElement
	for _, spec := range defn.Errors {
		detName, ok := g.detectors[spec.Type.Name]
		if !ok {
			return fmt.Errorf("no detector for exception type %s", spec.Type.Name)
		}
		body = append(body, &tmpl.StaticAssert{
			Cond: &tmpl.UnaryOp{
				Op: "!",
				Operand: &tmpl.MemberAccess{
					Class: &tmpl.Instantiation{
						Template: &tmpl.Name{Cpp: detName, NameKind: tmpl.KindTemplate},
						Args:     []tmpl.Expr{&tmpl.Name{Cpp: "E", NameKind: tmpl.KindType}},
					},
					MemberName: "value",
					MemberKind: tmpl.KindBool,
				},
				ResultKind: tmpl.KindBool,
			},
			Message: spec.Message,
		})
	}
	body = append(body, &tmpl.Typedef{Name: "type", Expr: &tmpl.TypeText{Cpp: "void"}})
	g.body = append(g.body, &tmpl.TemplateDefn{
		Name:        "CheckIfError",
		Description: "the top-level error classification check",
		Params:      params,
		Main:        &tmpl.Specialization{Params: params, Body: body},
	})
	return nil
}

// functionDefn lowers one function into a class template. Branch and
// match helper templates end up in the module body ahead of the
// function that uses them.
func (g *moduleGen) functionDefn(fn *lir.FunctionDefn) error {
	if !lir.AlwaysReturns(fn.Body) {
		return fmt.Errorf("body does not always return")
	}
	params := make([]tmpl.Param, len(fn.Args))
	for i, arg := range fn.Args {
		params[i] = paramFor(arg.Type, tmpl.CppIdentifier(kindOf(arg.Type), arg.Name))
	}
	fg := &funcGen{
		mod:        g,
		name:       fn.Name,
		mayThrow:   fn.MayThrow,
		returnType: fn.ReturnType,
		params:     params,
	}
	body, err := fg.stmts(fn.Body)
	if err != nil {
		return err
	}
	g.body = append(g.body, &tmpl.TemplateDefn{
		Name:        tmpl.CppIdentifier(tmpl.KindTemplate, fn.Name),
		Description: fn.Description,
		Params:      params,
		Main:        &tmpl.Specialization{Params: params, Body: body},
	})
	return nil
}
