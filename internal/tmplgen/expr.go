package tmplgen

import (
	"fmt"

	"github.com/tmppy/tmppyc/internal/lir"
	"github.com/tmppy/tmppyc/internal/names"
	"github.com/tmppy/tmppyc/internal/tmpl"
)

// expr converts a normalized expression to the template model. The
// result is the expression's value; calls and comprehensions come back
// as member reads of their result member.
func (fg *funcGen) expr(expr lir.Expr) (tmpl.Expr, error) {
	switch e := expr.(type) {
	case lir.VarReference:
		return spell(e), nil
	case *lir.BoolLiteral:
		return &tmpl.BoolLiteral{Value: e.Value}, nil
	case *lir.IntLiteral:
		return &tmpl.Int64Literal{Value: e.Value}, nil
	case *lir.TypeLiteral:
		repl := make(map[string]string, len(e.Args))
		for name, argVar := range e.Args {
			repl[name] = spell(argVar).Cpp
		}
		return &tmpl.TypeText{Cpp: names.ReplaceIdentifiers(e.CppType, repl)}, nil
	case *lir.TemplateInstantiation:
		return fg.instantiation(e)
	case *lir.ClassMemberAccess:
		class, err := fg.expr(e.Class)
		if err != nil {
			return nil, err
		}
		k := kindOf(e.MemberType)
		return &tmpl.MemberAccess{
			Class:      class,
			MemberName: memberSpelling(e.MemberName, k),
			MemberKind: k,
		}, nil
	case *lir.FunctionCall:
		return fg.callRead(e)
	case *lir.MatchExpr:
		inst, err := fg.matchDispatch(e)
		if err != nil {
			return nil, err
		}
		k := kindOf(e.ExprType())
		return &tmpl.MemberAccess{Class: inst, MemberName: resultMemberName(k), MemberKind: k}, nil
	case *lir.EqualityComparison:
		return fg.equalityComparison(e)
	case *lir.NotExpr:
		return &tmpl.UnaryOp{Op: "!", Operand: spell(e.Var), ResultKind: tmpl.KindBool}, nil
	case *lir.UnaryMinusExpr:
		return &tmpl.UnaryOp{Op: "-", Operand: spell(e.Var), ResultKind: tmpl.KindInt64}, nil
	case *lir.IntComparisonExpr:
		return &tmpl.BinaryOp{Op: e.Op, LHS: spell(e.LHS), RHS: spell(e.RHS), ResultKind: tmpl.KindBool}, nil
	case *lir.IntBinaryOpExpr:
		return &tmpl.BinaryOp{Op: e.Op, LHS: spell(e.LHS), RHS: spell(e.RHS), ResultKind: tmpl.KindInt64}, nil
	case *lir.ListComprehension:
		inst, err := fg.comprehensionClass(e)
		if err != nil {
			return nil, err
		}
		return &tmpl.MemberAccess{Class: inst, MemberName: "type", MemberKind: tmpl.KindType}, nil
	case *lir.IsInstanceExpr:
		detName, ok := fg.mod.detectors[e.CheckedType.Name]
		if !ok {
			return nil, fmt.Errorf("no detector for type %s", e.CheckedType.Name)
		}
		return &tmpl.MemberAccess{
			Class: &tmpl.Instantiation{
				Template: &tmpl.Name{Cpp: detName, NameKind: tmpl.KindTemplate},
				Args:     []tmpl.Expr{spell(e.Var)},
			},
			MemberName: "value",
			MemberKind: tmpl.KindBool,
		}, nil
	case *lir.SafeUncheckedCast:
		// Identity at the template level: the value already is the
		// narrowed type.
		return spell(e.Var), nil
	default:
		return nil, fmt.Errorf("unsupported expression %T", expr)
	}
}

// instantiation resolves the template name: custom-type constructors
// go through the identifier transform, runtime-library templates keep
// their exact C++ names.
func (fg *funcGen) instantiation(e *lir.TemplateInstantiation) (tmpl.Expr, error) {
	templateName := e.Template
	_, isCustom := fg.mod.customTypes[e.Template]
	if isCustom {
		templateName = tmpl.CppIdentifier(tmpl.KindType, e.Template)
	}
	args := make([]tmpl.Expr, len(e.Args))
	for i, arg := range e.Args {
		args[i] = spell(arg)
	}
	return &tmpl.Instantiation{
		Template:                  &tmpl.Name{Cpp: templateName, NameKind: tmpl.KindTemplate},
		Args:                      args,
		MightTriggerStaticAsserts: isCustom,
	}, nil
}

func (fg *funcGen) equalityComparison(e *lir.EqualityComparison) (tmpl.Expr, error) {
	switch kindOf(e.LHS.Type) {
	case tmpl.KindBool, tmpl.KindInt64:
		return &tmpl.BinaryOp{Op: "==", LHS: spell(e.LHS), RHS: spell(e.RHS), ResultKind: tmpl.KindBool}, nil
	case tmpl.KindType:
		return &tmpl.MemberAccess{
			Class: &tmpl.Instantiation{
				Template: &tmpl.Name{Cpp: "std::is_same", NameKind: tmpl.KindTemplate},
				Args:     []tmpl.Expr{spell(e.LHS), spell(e.RHS)},
			},
			MemberName: "value",
			MemberKind: tmpl.KindBool,
		}, nil
	default:
		return nil, fmt.Errorf("equality comparison on function values")
	}
}

// callClass is the instantiation of a function's template against the
// call's arguments; members are read off it separately.
func (fg *funcGen) callClass(call *lir.FunctionCall) (tmpl.Expr, error) {
	if _, ok := call.Fun.Type.(lir.FunctionType); !ok {
		return nil, fmt.Errorf("call through non-function %s", call.Fun.Name)
	}
	args := make([]tmpl.Expr, len(call.Args))
	for i, arg := range call.Args {
		args[i] = spell(arg)
	}
	return &tmpl.Instantiation{
		Template:                  spell(call.Fun),
		Args:                      args,
		MightTriggerStaticAsserts: true,
	}, nil
}

// callRead instantiates a call and reads its result member.
func (fg *funcGen) callRead(call *lir.FunctionCall) (tmpl.Expr, error) {
	class, err := fg.callClass(call)
	if err != nil {
		return nil, err
	}
	k := kindOf(call.ExprType())
	return &tmpl.MemberAccess{Class: class, MemberName: resultMemberName(k), MemberKind: k}, nil
}

// callOn applies a template-valued expression to argument expressions
// and reads the result member, using the function type to pick the
// member and its kind. The assignment recursion uses this to build the
// synthetic inner call of a nested template.
func callOn(fun tmpl.Expr, ft lir.FunctionType, args []tmpl.Expr) tmpl.Expr {
	k := kindOf(ft.ReturnType)
	return &tmpl.MemberAccess{
		Class: &tmpl.Instantiation{
			Template:                  fun,
			Args:                      args,
			MightTriggerStaticAsserts: true,
		},
		MemberName: resultMemberName(k),
		MemberKind: k,
	}
}

// matchDispatch synthesizes the dispatch template for a match
// expression: parameters are the arms' forwarded free variables
// followed by the matched variables, with one partial specialization
// per arm rewriting the matched positions to the arm's patterns. An
// arm whose patterns are exactly its own parameters specializes
// nothing and becomes the primary definition instead. The returned
// expression is the dispatch instantiation; read the result and error
// members off it.
func (fg *funcGen) matchDispatch(m *lir.MatchExpr) (tmpl.Expr, error) {
	if len(m.Cases) == 0 {
		return nil, fmt.Errorf("match expression with no arms")
	}
	freeVars := matchFreeVars(m)
	freeParams := make([]tmpl.Param, len(freeVars))
	for i, v := range freeVars {
		freeParams[i] = paramForVar(v)
	}

	matchedParams := make([]tmpl.Param, len(m.MatchedVars))
	for i, v := range m.MatchedVars {
		matchedParams[i] = tmpl.Param{Name: spell(v).Cpp, Kind: tmpl.KindType}
	}
	params := append(append([]tmpl.Param{}, freeParams...), matchedParams...)

	helperName := tmpl.CppIdentifier(tmpl.KindTemplate, fg.mod.gen.Next())
	retType := m.ExprType()
	retKind := kindOf(retType)

	defn := &tmpl.TemplateDefn{
		Name:        helperName,
		Description: "match dispatch",
		Params:      params,
	}
	for _, mc := range m.Cases {
		spec, err := fg.matchArm(mc, freeParams, retType, retKind)
		if err != nil {
			return nil, err
		}
		if spec.Patterns == nil {
			if defn.Main != nil {
				return nil, fmt.Errorf("match expression with two unconstrained arms")
			}
			defn.Main = spec
		} else {
			defn.Specializations = append(defn.Specializations, spec)
		}
	}
	fg.mod.body = append(fg.mod.body, defn)

	args := make([]tmpl.Expr, 0, len(freeVars)+len(m.MatchedVars))
	for _, v := range freeVars {
		args = append(args, spell(v))
	}
	for _, v := range m.MatchedVars {
		args = append(args, spell(v))
	}
	return &tmpl.Instantiation{
		Template:                  &tmpl.Name{Cpp: helperName, NameKind: tmpl.KindTemplate},
		Args:                      args,
		MightTriggerStaticAsserts: true,
	}, nil
}

func (fg *funcGen) matchArm(mc lir.MatchCase, freeParams []tmpl.Param, retType lir.ExprType, retKind tmpl.Kind) (*tmpl.Specialization, error) {
	patternRepl := make(map[string]string, len(mc.MatchedVarNames))
	armParams := append([]tmpl.Param{}, freeParams...)
	for _, name := range mc.MatchedVarNames {
		cpp := tmpl.CppIdentifier(tmpl.KindType, name)
		patternRepl[name] = cpp
		armParams = append(armParams, tmpl.Param{Name: cpp, Kind: tmpl.KindType})
	}

	patterns := make([]tmpl.Expr, 0, len(freeParams)+len(mc.TypePatterns))
	for _, p := range freeParams {
		patterns = append(patterns, &tmpl.Name{Cpp: p.Name, NameKind: p.Kind})
	}
	for _, pattern := range mc.TypePatterns {
		patterns = append(patterns, &tmpl.PatternText{Cpp: names.ReplaceIdentifiers(pattern, patternRepl)})
	}
	if patternsEqualParams(patterns, armParams) {
		patterns = nil
	}

	armGen := &funcGen{
		mod:        fg.mod,
		name:       fg.name,
		mayThrow:   mc.Call.Fun.MayThrow,
		returnType: retType,
		params:     armParams,
	}
	class, err := armGen.callClass(mc.Call)
	if err != nil {
		return nil, err
	}
	body, err := armGen.resultFrom(class)
	if err != nil {
		return nil, err
	}
	return &tmpl.Specialization{Params: armParams, Patterns: patterns, Body: body}, nil
}

// patternsEqualParams reports whether a specialization's patterns are
// exactly its parameter names, in which case it specializes nothing.
func patternsEqualParams(patterns []tmpl.Expr, params []tmpl.Param) bool {
	texts := make(map[string]bool, len(patterns))
	for _, p := range patterns {
		switch e := p.(type) {
		case *tmpl.Name:
			texts[e.Cpp] = true
		case *tmpl.PatternText:
			texts[e.Cpp] = true
		default:
			return false
		}
	}
	if len(texts) != len(params) {
		return false
	}
	for _, p := range params {
		if !texts[p.Name] {
			return false
		}
	}
	return true
}

// matchFreeVars collects the variables the arms forward besides the
// pattern-bound ones, first-use order across arms.
func matchFreeVars(m *lir.MatchExpr) []lir.VarReference {
	matched := make(map[string]bool, len(m.MatchedVars))
	for _, v := range m.MatchedVars {
		matched[v.Name] = true
	}
	seen := make(map[string]bool)
	var out []lir.VarReference
	for _, mc := range m.Cases {
		bound := make(map[string]bool, len(mc.MatchedVarNames))
		for _, name := range mc.MatchedVarNames {
			bound[name] = true
		}
		for _, arg := range mc.Call.Args {
			if arg.IsGlobalFunction || bound[arg.Name] || matched[arg.Name] || seen[arg.Name] {
				continue
			}
			seen[arg.Name] = true
			out = append(out, arg)
		}
	}
	return out
}

// comprehensionClass lowers a comprehension onto its backing transform
// template. The outlined body function takes all its free variables;
// the transform wants a unary metafunction, so a local adapter
// template binds everything but the loop variable by referencing the
// enclosing template's parameters directly. When the body function
// carries an error channel the adapter forwards it member for member,
// so the transform's error fold sees each element's error and the
// enclosing binding can read the folded one off the transform.
func (fg *funcGen) comprehensionClass(e *lir.ListComprehension) (tmpl.Expr, error) {
	if _, ok := e.Call.Fun.Type.(lir.FunctionType); !ok {
		return nil, fmt.Errorf("comprehension body through non-function %s", e.Call.Fun.Name)
	}
	adapterName := tmpl.CppIdentifier(tmpl.KindTemplate, fg.mod.gen.Next())
	loopParam := paramForVar(e.LoopVar)

	elemType := e.Call.ExprType()
	elemKind := kindOf(elemType)
	adapterGen := &funcGen{
		mod:        fg.mod,
		name:       fg.name,
		mayThrow:   e.Call.Fun.MayThrow,
		returnType: elemType,
		params:     []tmpl.Param{loopParam},
	}
	var body []tmpl.BodyElement
	if adapterGen.mayThrow {
		class, err := adapterGen.callClass(e.Call)
		if err != nil {
			return nil, err
		}
		alias := tmpl.CppIdentifier(tmpl.KindType, fg.mod.gen.Next())
		body = append(body, &tmpl.Typedef{Name: alias, Expr: class})
		aliasRef := &tmpl.Name{Cpp: alias, NameKind: tmpl.KindType}
		elems, err := adapterGen.assignElements(resultMemberName(elemKind), elemType, &tmpl.MemberAccess{
			Class:      aliasRef,
			MemberName: resultMemberName(elemKind),
			MemberKind: elemKind,
		})
		if err != nil {
			return nil, err
		}
		body = append(body, elems...)
		body = append(body, &tmpl.Typedef{
			Name: "error",
			Expr: &tmpl.MemberAccess{Class: aliasRef, MemberName: "error", MemberKind: tmpl.KindType},
		})
	} else {
		read, err := adapterGen.callRead(e.Call)
		if err != nil {
			return nil, err
		}
		if body, err = adapterGen.assignElements(resultMemberName(elemKind), elemType, read); err != nil {
			return nil, err
		}
	}
	fg.pending = append(fg.pending, &tmpl.TemplateDefn{
		Name:        adapterName,
		Description: "per-element adapter for a comprehension",
		Params:      []tmpl.Param{loopParam},
		Main:        &tmpl.Specialization{Params: []tmpl.Param{loopParam}, Body: body},
	})

	return &tmpl.Instantiation{
		Template: &tmpl.Name{Cpp: e.TransformTemplate, NameKind: tmpl.KindTemplate},
		Args:     []tmpl.Expr{spell(e.ListVar), &tmpl.Name{Cpp: adapterName, NameKind: tmpl.KindTemplate}},
	}, nil
}
