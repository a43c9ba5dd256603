package tmplgen

import (
	"fmt"

	"github.com/tmppy/tmppyc/internal/lir"
	"github.com/tmppy/tmppyc/internal/tmpl"
)

// funcGen lowers the statements of one template body: a user function,
// a synthesized branch helper or a match-arm specialization. At module
// scope (namespace-scope assignments and asserts) returnType is nil
// and params is empty.
type funcGen struct {
	mod        *moduleGen
	name       string
	mayThrow   bool
	returnType lir.ExprType
	params     []tmpl.Param

	// pending holds locally scoped helper templates (comprehension
	// adapters) produced while converting an expression; the statement
	// that triggered them emits them first.
	pending []tmpl.BodyElement
}

func (fg *funcGen) takePending() []tmpl.BodyElement {
	pending := fg.pending
	fg.pending = nil
	return pending
}

func (fg *funcGen) paramNames() map[string]bool {
	bound := make(map[string]bool, len(fg.params))
	for _, p := range fg.params {
		bound[p.Name] = true
	}
	return bound
}

// stmts lowers a statement list. A return or an if statement
// terminates the list: everything after an if is merged into its
// non-returning branches before the if is outlined.
func (fg *funcGen) stmts(stmts []lir.Stmt) ([]tmpl.BodyElement, error) {
	var out []tmpl.BodyElement
	for i, stmt := range stmts {
		switch s := stmt.(type) {
		case *lir.Assignment:
			elems, err := fg.assignment(s)
			if err != nil {
				return nil, err
			}
			out = append(out, elems...)
		case *lir.UnpackingAssignment:
			elems, err := fg.unpacking(s)
			if err != nil {
				return nil, err
			}
			out = append(out, elems...)
		case *lir.Assert:
			cond, err := fg.expr(s.Var)
			if err != nil {
				return nil, err
			}
			anchoredCond, err := fg.anchored(cond)
			if err != nil {
				return nil, err
			}
			out = append(out, &tmpl.StaticAssert{Cond: anchoredCond, Message: s.Message})
		case *lir.ReturnStmt:
			elems, err := fg.returnStmt(s)
			if err != nil {
				return nil, err
			}
			return append(out, elems...), nil
		case *lir.IfStmt:
			elems, err := fg.ifStmt(s, stmts[i+1:])
			if err != nil {
				return nil, err
			}
			return append(out, elems...), nil
		default:
			return nil, fmt.Errorf("unsupported statement %T", stmt)
		}
	}
	return out, nil
}

// returnStmt defines the result member and, for functions carrying an
// error channel, the error member. A template instantiated on its
// error path must still define the result member: the caller reads
// both members unconditionally, so the result gets a placeholder.
func (fg *funcGen) returnStmt(s *lir.ReturnStmt) ([]tmpl.BodyElement, error) {
	retKind := kindOf(fg.returnType)
	member := resultMemberName(retKind)

	var out []tmpl.BodyElement
	if s.Result != nil {
		elems, err := fg.assignElements(member, fg.returnType, spell(*s.Result))
		if err != nil {
			return nil, err
		}
		out = append(out, elems...)
	} else {
		placeholder, err := placeholderFor(retKind)
		if err != nil {
			return nil, err
		}
		if retKind == tmpl.KindBool || retKind == tmpl.KindInt64 {
			out = append(out, &tmpl.ConstantDef{Name: member, Expr: placeholder})
		} else {
			out = append(out, &tmpl.Typedef{Name: member, Expr: placeholder})
		}
	}

	if s.Error != nil && !fg.mayThrow {
		return nil, fmt.Errorf("error return in a function with no error channel")
	}
	if fg.mayThrow {
		errExpr := tmpl.Expr(&tmpl.TypeText{Cpp: "void"})
		if s.Error != nil {
			errExpr = spell(*s.Error)
		}
		out = append(out, &tmpl.Typedef{Name: "error", Expr: errExpr})
	}
	return out, nil
}

// placeholderFor is the result member's value on error paths, where no
// real result exists but the member must still be defined.
func placeholderFor(k tmpl.Kind) (tmpl.Expr, error) {
	switch k {
	case tmpl.KindBool:
		return &tmpl.BoolLiteral{Value: false}, nil
	case tmpl.KindInt64:
		return &tmpl.Int64Literal{Value: 0}, nil
	case tmpl.KindType:
		return &tmpl.TypeText{Cpp: "void"}, nil
	default:
		return nil, fmt.Errorf("no placeholder for a function-valued result")
	}
}

// assignment lowers a single binding. A two-target binding (result
// plus error channel) instantiates the class expression once through a
// fresh alias and reads both members from it.
func (fg *funcGen) assignment(s *lir.Assignment) ([]tmpl.BodyElement, error) {
	lhsKind := kindOf(s.LHS.Type)
	lhsName := tmpl.CppIdentifier(lhsKind, s.LHS.Name)

	if s.LHS2 == nil {
		rhs, err := fg.expr(s.RHS)
		if err != nil {
			return nil, err
		}
		elems, err := fg.assignElements(lhsName, s.LHS.Type, rhs)
		if err != nil {
			return nil, err
		}
		return append(fg.takePending(), elems...), nil
	}

	class, err := fg.classExpr(s.RHS)
	if err != nil {
		return nil, err
	}
	out := fg.takePending()
	alias := tmpl.CppIdentifier(tmpl.KindType, fg.mod.gen.Next())
	out = append(out, &tmpl.Typedef{Name: alias, Expr: class})
	aliasRef := &tmpl.Name{Cpp: alias, NameKind: tmpl.KindType}
	elems, err := fg.assignElements(lhsName, s.LHS.Type, &tmpl.MemberAccess{
		Class:      aliasRef,
		MemberName: resultMemberName(lhsKind),
		MemberKind: lhsKind,
	})
	if err != nil {
		return nil, err
	}
	out = append(out, elems...)
	out = append(out, &tmpl.Typedef{
		Name: tmpl.CppIdentifier(tmpl.KindType, s.LHS2.Name),
		Expr: &tmpl.MemberAccess{Class: aliasRef, MemberName: "error", MemberKind: tmpl.KindType},
	})
	return out, nil
}

// classExpr converts the right-hand side of a two-target binding to
// the class whose result and error members get read. Only calls, match
// expressions and comprehensions carry an error channel.
func (fg *funcGen) classExpr(rhs lir.Expr) (tmpl.Expr, error) {
	switch e := rhs.(type) {
	case *lir.FunctionCall:
		return fg.callClass(e)
	case *lir.MatchExpr:
		return fg.matchDispatch(e)
	case *lir.ListComprehension:
		return fg.comprehensionClass(e)
	default:
		return nil, fmt.Errorf("expression %T cannot produce an error channel", rhs)
	}
}

// unpacking destructures a type-level list: a static assert pins the
// list's length, then each destination is read out positionally.
func (fg *funcGen) unpacking(s *lir.UnpackingAssignment) ([]tmpl.BodyElement, error) {
	list := spell(s.RHS)
	sizeCond := &tmpl.BinaryOp{
		Op: "==",
		LHS: &tmpl.MemberAccess{
			Class: &tmpl.Instantiation{
				Template: &tmpl.Name{Cpp: s.ElemKind + "ListSize", NameKind: tmpl.KindTemplate},
				Args:     []tmpl.Expr{list},
			},
			MemberName: "value",
			MemberKind: tmpl.KindInt64,
		},
		RHS:        &tmpl.Int64Literal{Value: int64(len(s.LHSList))},
		ResultKind: tmpl.KindBool,
	}
	anchoredCond, err := fg.anchored(sizeCond)
	if err != nil {
		return nil, err
	}
	out := []tmpl.BodyElement{&tmpl.StaticAssert{Cond: anchoredCond, Message: s.ErrorMessage}}

	for i, lhs := range s.LHSList {
		elemKind := kindOf(lhs.Type)
		get := &tmpl.MemberAccess{
			Class: &tmpl.Instantiation{
				Template: &tmpl.Name{Cpp: s.ElemKind + "ListGet", NameKind: tmpl.KindTemplate},
				Args:     []tmpl.Expr{list, &tmpl.Int64Literal{Value: int64(i)}},
			},
			MemberName: resultMemberName(elemKind),
			MemberKind: elemKind,
		}
		elems, err := fg.assignElements(tmpl.CppIdentifier(elemKind, lhs.Name), lhs.Type, get)
		if err != nil {
			return nil, err
		}
		out = append(out, elems...)
	}
	return out, nil
}

// ifStmt outlines a branch into a helper template over the branches'
// free variables plus a final bool parameter, specialized on true and
// false. The statements after the if belong to whichever branches fall
// through, so they are merged in before outlining; the enclosing
// statement list ends here.
func (fg *funcGen) ifStmt(s *lir.IfStmt, rest []lir.Stmt) ([]tmpl.BodyElement, error) {
	thenStmts := s.Then
	if !lir.AlwaysReturns(thenStmts) {
		thenStmts = append(append([]lir.Stmt{}, thenStmts...), rest...)
	}
	elseStmts := s.Else
	if !lir.AlwaysReturns(elseStmts) {
		elseStmts = append(append([]lir.Stmt{}, elseStmts...), rest...)
	}

	freeVars := unionVars(lir.FreeVariablesInStmts(thenStmts), lir.FreeVariablesInStmts(elseStmts))
	// The selector is pinned to a literal in each specialization's
	// pattern, so it is not nameable inside the branch bodies. A
	// constant assert in a branch still needs a bool or type
	// parameter to anchor to; forward the condition itself when the
	// free variables offer none.
	if !hasAnchorCandidate(freeVars) {
		freeVars = unionVars(freeVars, []lir.VarReference{s.Cond})
	}
	helperName := tmpl.CppIdentifier(tmpl.KindTemplate, fg.mod.gen.Next())
	selector := tmpl.Param{Name: tmpl.CppIdentifier(tmpl.KindBool, fg.mod.gen.Next()), Kind: tmpl.KindBool}

	freeParams := make([]tmpl.Param, len(freeVars))
	for i, v := range freeVars {
		freeParams[i] = paramForVar(v)
	}
	params := append(append([]tmpl.Param{}, freeParams...), selector)

	specFor := func(branch []lir.Stmt, taken bool) (*tmpl.Specialization, error) {
		branchGen := &funcGen{
			mod:        fg.mod,
			name:       fg.name,
			mayThrow:   fg.mayThrow,
			returnType: fg.returnType,
			params:     freeParams,
		}
		body, err := branchGen.stmts(branch)
		if err != nil {
			return nil, err
		}
		patterns := make([]tmpl.Expr, 0, len(params))
		for _, p := range freeParams {
			patterns = append(patterns, &tmpl.Name{Cpp: p.Name, NameKind: p.Kind})
		}
		patterns = append(patterns, &tmpl.BoolLiteral{Value: taken})
		return &tmpl.Specialization{Params: freeParams, Patterns: patterns, Body: body}, nil
	}
	thenSpec, err := specFor(thenStmts, true)
	if err != nil {
		return nil, err
	}
	elseSpec, err := specFor(elseStmts, false)
	if err != nil {
		return nil, err
	}
	fg.mod.body = append(fg.mod.body, &tmpl.TemplateDefn{
		Name:            helperName,
		Description:     "branch dispatch for an if statement",
		Params:          params,
		Specializations: []*tmpl.Specialization{thenSpec, elseSpec},
	})

	args := make([]tmpl.Expr, 0, len(freeVars)+1)
	for _, v := range freeVars {
		args = append(args, spell(v))
	}
	args = append(args, spell(s.Cond))
	return fg.resultFrom(&tmpl.Instantiation{
		Template:                  &tmpl.Name{Cpp: helperName, NameKind: tmpl.KindTemplate},
		Args:                      args,
		MightTriggerStaticAsserts: true,
	})
}

// resultFrom forwards the enclosing function's result protocol from an
// instantiated helper: the result member, and the error member when
// the function carries an error channel.
func (fg *funcGen) resultFrom(inst tmpl.Expr) ([]tmpl.BodyElement, error) {
	retKind := kindOf(fg.returnType)
	member := resultMemberName(retKind)

	class := inst
	var out []tmpl.BodyElement
	if fg.mayThrow {
		alias := tmpl.CppIdentifier(tmpl.KindType, fg.mod.gen.Next())
		out = append(out, &tmpl.Typedef{Name: alias, Expr: inst})
		class = &tmpl.Name{Cpp: alias, NameKind: tmpl.KindType}
	}
	elems, err := fg.assignElements(member, fg.returnType, &tmpl.MemberAccess{
		Class:      class,
		MemberName: member,
		MemberKind: retKind,
	})
	if err != nil {
		return nil, err
	}
	out = append(out, elems...)
	if fg.mayThrow {
		out = append(out, &tmpl.Typedef{
			Name: "error",
			Expr: &tmpl.MemberAccess{Class: class, MemberName: "error", MemberKind: tmpl.KindType},
		})
	}
	return out, nil
}

// anchored ties a constant assert condition to the first bool or type
// parameter of the enclosing template, deferring its evaluation to
// instantiation time. Conditions that already mention a parameter pass
// through; at module scope everything passes through.
func (fg *funcGen) anchored(cond tmpl.Expr) (tmpl.Expr, error) {
	if len(fg.params) == 0 {
		return cond, nil
	}
	if tmpl.ReferencesAnyOf(cond, fg.paramNames()) {
		return cond, nil
	}
	for _, p := range fg.params {
		var anchorTemplate string
		switch p.Kind {
		case tmpl.KindBool:
			anchorTemplate = "AlwaysTrueFromBool"
		case tmpl.KindType:
			anchorTemplate = "AlwaysTrueFromType"
		default:
			continue
		}
		return &tmpl.BinaryOp{
			Op: "&&",
			LHS: &tmpl.MemberAccess{
				Class: &tmpl.Instantiation{
					Template: &tmpl.Name{Cpp: anchorTemplate, NameKind: tmpl.KindTemplate},
					Args:     []tmpl.Expr{&tmpl.Name{Cpp: p.Name, NameKind: p.Kind}},
				},
				MemberName: "value",
				MemberKind: tmpl.KindBool,
			},
			RHS:        cond,
			ResultKind: tmpl.KindBool,
		}, nil
	}
	return nil, &AssertAnchorError{Function: fg.name}
}

// hasAnchorCandidate reports whether any of the variables would, as a
// template parameter, be usable to anchor a constant assert.
func hasAnchorCandidate(vars []lir.VarReference) bool {
	for _, v := range vars {
		switch kindOf(v.Type) {
		case tmpl.KindBool, tmpl.KindType:
			return true
		}
	}
	return false
}

// unionVars merges two free-variable lists, first-appearance order,
// names deduplicated.
func unionVars(a, b []lir.VarReference) []lir.VarReference {
	seen := make(map[string]bool, len(a)+len(b))
	var out []lir.VarReference
	for _, v := range a {
		if !seen[v.Name] {
			seen[v.Name] = true
			out = append(out, v)
		}
	}
	for _, v := range b {
		if !seen[v.Name] {
			seen[v.Name] = true
			out = append(out, v)
		}
	}
	return out
}
