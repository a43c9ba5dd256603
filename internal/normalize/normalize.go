package normalize

import (
	"fmt"

	"github.com/tmppy/tmppyc/internal/lir"
	"github.com/tmppy/tmppyc/internal/mir"
)

// Module normalizes a mid-level module. Top-level order is preserved.
func Module(module *mir.Module) (*lir.Module, error) {
	c := &converter{customTypes: make(map[string]*lir.CustomType)}
	out := &lir.Module{}
	for _, top := range module.Body {
		switch elem := top.(type) {
		case *mir.CustomType:
			converted, err := c.customType(elem)
			if err != nil {
				return nil, err
			}
			out.Body = append(out.Body, converted)
		case *mir.CheckIfErrorDefn:
			converted, err := c.checkIfErrorDefn(elem)
			if err != nil {
				return nil, err
			}
			out.Body = append(out.Body, converted)
		case *mir.FunctionDefn:
			converted, err := c.functionDefn(elem)
			if err != nil {
				return nil, fmt.Errorf("function %s: %w", elem.Name, err)
			}
			out.Body = append(out.Body, converted)
		case *mir.Assignment:
			converted, err := c.assignment(elem)
			if err != nil {
				return nil, err
			}
			out.Body = append(out.Body, converted)
		case *mir.Assert:
			v, err := c.varReference(elem.Var)
			if err != nil {
				return nil, err
			}
			out.Body = append(out.Body, &lir.Assert{Var: v, Message: elem.Message})
		default:
			return nil, fmt.Errorf("unsupported top-level element %T", top)
		}
	}
	return out, nil
}

type converter struct {
	customTypes map[string]*lir.CustomType
}

// elemKindName selects the runtime-library template-name prefix for an
// element type: "Bool", "Int64" or "Type". Everything that is not a
// bool or an integer lives at the type level once lists are erased.
func elemKindName(t mir.ExprType) (string, error) {
	switch t.(type) {
	case mir.BoolType:
		return "Bool", nil
	case mir.IntType:
		return "Int64", nil
	case mir.TypeType, mir.BottomType, mir.ErrorOrVoidType, mir.ListType, *mir.CustomType:
		return "Type", nil
	default:
		return "", fmt.Errorf("unsupported element type %T", t)
	}
}

func (c *converter) exprType(t mir.ExprType) (lir.ExprType, error) {
	switch x := t.(type) {
	case mir.BoolType:
		return lir.BoolType{}, nil
	case mir.IntType:
		return lir.Int64Type{}, nil
	case mir.TypeType:
		return lir.TypeType{}, nil
	case mir.BottomType:
		return lir.BottomType{}, nil
	case mir.ErrorOrVoidType:
		return lir.ErrorOrVoidType{}, nil
	case mir.ListType:
		// Lists are type-level values from here on.
		return lir.TypeType{}, nil
	case mir.FunctionType:
		argTypes := make([]lir.ExprType, len(x.ArgTypes))
		for i, at := range x.ArgTypes {
			converted, err := c.exprType(at)
			if err != nil {
				return nil, err
			}
			argTypes[i] = converted
		}
		returns, err := c.exprType(x.Returns)
		if err != nil {
			return nil, err
		}
		return lir.FunctionType{ArgTypes: argTypes, ReturnType: returns}, nil
	case *mir.CustomType:
		return c.customType(x)
	default:
		return nil, fmt.Errorf("unsupported type %T", t)
	}
}

func (c *converter) customType(ct *mir.CustomType) (*lir.CustomType, error) {
	if converted, ok := c.customTypes[ct.Name]; ok {
		return converted, nil
	}
	converted := &lir.CustomType{
		Name:             ct.Name,
		IsException:      ct.IsException,
		ExceptionMessage: ct.ExceptionMessage,
	}
	c.customTypes[ct.Name] = converted
	for _, field := range ct.Fields {
		fieldType, err := c.exprType(field.Type)
		if err != nil {
			return nil, err
		}
		converted.Fields = append(converted.Fields, lir.CustomTypeField{
			Name: field.Name,
			Type: fieldType,
		})
	}
	return converted, nil
}

func (c *converter) varReference(v mir.VarReference) (lir.VarReference, error) {
	t, err := c.exprType(v.Type)
	if err != nil {
		return lir.VarReference{}, err
	}
	return lir.VarReference{
		Type:             t,
		Name:             v.Name,
		IsGlobalFunction: v.IsGlobalFunction,
		MayThrow:         v.MayThrow,
	}, nil
}

func (c *converter) varReferences(vars []mir.VarReference) ([]lir.VarReference, error) {
	out := make([]lir.VarReference, len(vars))
	for i, v := range vars {
		converted, err := c.varReference(v)
		if err != nil {
			return nil, err
		}
		out[i] = converted
	}
	return out, nil
}

func (c *converter) expr(expr mir.Expr) (lir.Expr, error) {
	switch e := expr.(type) {
	case mir.VarReference:
		return c.varReference(e)
	case *mir.BoolLiteral:
		return &lir.BoolLiteral{Value: e.Value}, nil
	case *mir.IntLiteral:
		return &lir.IntLiteral{Value: e.Value}, nil
	case *mir.TypeLiteral:
		args := make(map[string]lir.VarReference, len(e.Args))
		for name, argVar := range e.Args {
			converted, err := c.varReference(argVar)
			if err != nil {
				return nil, err
			}
			args[name] = converted
		}
		return &lir.TypeLiteral{CppType: e.CppType, Args: args}, nil
	case *mir.ListExpr:
		return c.listExpr(e)
	case *mir.FunctionCall:
		return c.functionCall(e)
	case *mir.MatchExpr:
		return c.matchExpr(e)
	case *mir.EqualityComparison:
		lhs, rhs, err := c.operands(e.LHS, e.RHS)
		if err != nil {
			return nil, err
		}
		return &lir.EqualityComparison{LHS: lhs, RHS: rhs}, nil
	case *mir.SetEqualityComparison:
		return c.setEqualityComparison(e)
	case *mir.AttributeAccess:
		return c.attributeAccess(e)
	case *mir.NotExpr:
		v, err := c.varReference(e.Var)
		if err != nil {
			return nil, err
		}
		return &lir.NotExpr{Var: v}, nil
	case *mir.UnaryMinusExpr:
		v, err := c.varReference(e.Var)
		if err != nil {
			return nil, err
		}
		return &lir.UnaryMinusExpr{Var: v}, nil
	case *mir.IntComparisonExpr:
		lhs, rhs, err := c.operands(e.LHS, e.RHS)
		if err != nil {
			return nil, err
		}
		return &lir.IntComparisonExpr{LHS: lhs, RHS: rhs, Op: e.Op}, nil
	case *mir.IntBinaryOpExpr:
		lhs, rhs, err := c.operands(e.LHS, e.RHS)
		if err != nil {
			return nil, err
		}
		return &lir.IntBinaryOpExpr{LHS: lhs, RHS: rhs, Op: e.Op}, nil
	case *mir.ListConcatExpr:
		return c.listConcatExpr(e)
	case *mir.AddToSetExpr:
		return c.addToSetExpr(e)
	case *mir.ListComprehension:
		return c.listComprehension(e)
	case *mir.IntListSumExpr:
		return c.listReduction("Int64ListSum", e.Var, lir.Int64Type{})
	case *mir.BoolListAllExpr:
		return c.listReduction("BoolListAll", e.Var, lir.BoolType{})
	case *mir.BoolListAnyExpr:
		return c.listReduction("BoolListAny", e.Var, lir.BoolType{})
	case *mir.IsInstanceExpr:
		v, err := c.varReference(e.Var)
		if err != nil {
			return nil, err
		}
		checked, err := c.customType(e.CheckedType)
		if err != nil {
			return nil, err
		}
		return &lir.IsInstanceExpr{Var: v, CheckedType: checked}, nil
	case *mir.SafeUncheckedCast:
		v, err := c.varReference(e.Var)
		if err != nil {
			return nil, err
		}
		target, err := c.customType(e.Type)
		if err != nil {
			return nil, err
		}
		return &lir.SafeUncheckedCast{Var: v, Type: target}, nil
	case *mir.ListToSetExpr:
		return c.listToSetExpr(e)
	case *mir.SetToListExpr:
		// The set is its backing list.
		return c.varReference(e.Var)
	default:
		return nil, fmt.Errorf("unsupported expression %T", expr)
	}
}

func (c *converter) operands(lhs, rhs mir.VarReference) (lir.VarReference, lir.VarReference, error) {
	lhsVar, err := c.varReference(lhs)
	if err != nil {
		return lir.VarReference{}, lir.VarReference{}, err
	}
	rhsVar, err := c.varReference(rhs)
	if err != nil {
		return lir.VarReference{}, lir.VarReference{}, err
	}
	return lhsVar, rhsVar, nil
}

// listExpr lowers a list literal onto the kind-matched list template:
// [1, 2, x] becomes Int64List<1, 2, x>.
func (c *converter) listExpr(list *mir.ListExpr) (lir.Expr, error) {
	kind, err := elemKindName(list.ElemType)
	if err != nil {
		return nil, err
	}
	template := map[string]string{"Bool": "BoolList", "Int64": "Int64List", "Type": "List"}[kind]
	args, err := c.varReferences(list.Elems)
	if err != nil {
		return nil, err
	}
	return &lir.TemplateInstantiation{Template: template, Args: args}, nil
}

// functionCall maps calls through unchanged, except custom-type
// constructor calls, which become direct template instantiations of
// the type's class template.
func (c *converter) functionCall(call *mir.FunctionCall) (lir.Expr, error) {
	funType, ok := call.Fun.Type.(mir.FunctionType)
	if !ok {
		return nil, fmt.Errorf("call through non-function %s", call.Fun.Name)
	}
	if ct, isConstructor := funType.Returns.(*mir.CustomType); isConstructor && call.Fun.Name == ct.Name {
		args, err := c.varReferences(call.Args)
		if err != nil {
			return nil, err
		}
		return &lir.TemplateInstantiation{Template: ct.Name, Args: args}, nil
	}

	fun, err := c.varReference(call.Fun)
	if err != nil {
		return nil, err
	}
	args, err := c.varReferences(call.Args)
	if err != nil {
		return nil, err
	}
	return &lir.FunctionCall{Fun: fun, Args: args}, nil
}

func (c *converter) matchExpr(match *mir.MatchExpr) (lir.Expr, error) {
	matchedVars, err := c.varReferences(match.MatchedVars)
	if err != nil {
		return nil, err
	}
	cases := make([]lir.MatchCase, len(match.Cases))
	for i, mc := range match.Cases {
		call, err := c.functionCall(mc.Call)
		if err != nil {
			return nil, err
		}
		armCall, ok := call.(*lir.FunctionCall)
		if !ok {
			return nil, fmt.Errorf("match arm is not a function call")
		}
		cases[i] = lir.MatchCase{
			TypePatterns:    mc.TypePatterns,
			MatchedVarNames: mc.MatchedVarNames,
			Call:            armCall,
		}
	}
	return &lir.MatchExpr{MatchedVars: matchedVars, Cases: cases}, nil
}

// setEqualityComparison compares by content: BoolSetEquals<l, r>::value
// and friends.
func (c *converter) setEqualityComparison(cmp *mir.SetEqualityComparison) (lir.Expr, error) {
	listType, ok := cmp.LHS.Type.(mir.ListType)
	if !ok {
		return nil, fmt.Errorf("set comparison of non-list %s", cmp.LHS.Name)
	}
	kind, err := elemKindName(listType.Elem)
	if err != nil {
		return nil, err
	}
	lhs, rhs, err := c.operands(cmp.LHS, cmp.RHS)
	if err != nil {
		return nil, err
	}
	return &lir.ClassMemberAccess{
		Class: &lir.TemplateInstantiation{
			Template: kind + "SetEquals",
			Args:     []lir.VarReference{lhs, rhs},
		},
		MemberName: "value",
		MemberType: lir.BoolType{},
	}, nil
}

func (c *converter) attributeAccess(access *mir.AttributeAccess) (lir.Expr, error) {
	objVar, err := c.varReference(access.Var)
	if err != nil {
		return nil, err
	}
	memberType, err := c.exprType(access.Type)
	if err != nil {
		return nil, err
	}
	return &lir.ClassMemberAccess{
		Class:      objVar,
		MemberName: access.AttributeName,
		MemberType: memberType,
	}, nil
}

// listConcatExpr lowers l1 + l2 onto Int64ListConcat<l1, l2>::type and
// friends.
func (c *converter) listConcatExpr(concat *mir.ListConcatExpr) (lir.Expr, error) {
	listType, ok := concat.LHS.Type.(mir.ListType)
	if !ok {
		return nil, fmt.Errorf("concat of non-list %s", concat.LHS.Name)
	}
	kind, err := elemKindName(listType.Elem)
	if err != nil {
		return nil, err
	}
	templateNames := map[string]string{
		"Bool":  "BoolListConcat",
		"Int64": "Int64ListConcat",
		"Type":  "TypeListConcat",
	}
	lhs, rhs, err := c.operands(concat.LHS, concat.RHS)
	if err != nil {
		return nil, err
	}
	return &lir.ClassMemberAccess{
		Class: &lir.TemplateInstantiation{
			Template: templateNames[kind],
			Args:     []lir.VarReference{lhs, rhs},
		},
		MemberName: "type",
		MemberType: lir.TypeType{},
	}, nil
}

// addToSetExpr lowers onto AddToBoolSet<set, elem>::type and friends.
func (c *converter) addToSetExpr(add *mir.AddToSetExpr) (lir.Expr, error) {
	listType, ok := add.Set.Type.(mir.ListType)
	if !ok {
		return nil, fmt.Errorf("add to non-list set %s", add.Set.Name)
	}
	kind, err := elemKindName(listType.Elem)
	if err != nil {
		return nil, err
	}
	set, elem, err := c.operands(add.Set, add.Elem)
	if err != nil {
		return nil, err
	}
	return &lir.ClassMemberAccess{
		Class: &lir.TemplateInstantiation{
			Template: "AddTo" + kind + "Set",
			Args:     []lir.VarReference{set, elem},
		},
		MemberName: "type",
		MemberType: lir.TypeType{},
	}, nil
}

// listToSetExpr lowers onto BoolListToSet<l>::type and friends.
func (c *converter) listToSetExpr(expr *mir.ListToSetExpr) (lir.Expr, error) {
	listType, ok := expr.Var.Type.(mir.ListType)
	if !ok {
		return nil, fmt.Errorf("list-to-set of non-list %s", expr.Var.Name)
	}
	kind, err := elemKindName(listType.Elem)
	if err != nil {
		return nil, err
	}
	v, err := c.varReference(expr.Var)
	if err != nil {
		return nil, err
	}
	return &lir.ClassMemberAccess{
		Class: &lir.TemplateInstantiation{
			Template: kind + "ListToSet",
			Args:     []lir.VarReference{v},
		},
		MemberName: "type",
		MemberType: lir.TypeType{},
	}, nil
}

func (c *converter) listReduction(template string, list mir.VarReference, resultType lir.ExprType) (lir.Expr, error) {
	v, err := c.varReference(list)
	if err != nil {
		return nil, err
	}
	return &lir.ClassMemberAccess{
		Class: &lir.TemplateInstantiation{
			Template: template,
			Args:     []lir.VarReference{v},
		},
		MemberName: "value",
		MemberType: resultType,
	}, nil
}

// listComprehension keeps the comprehension node but fixes the backing
// transform template from the source and destination element kinds.
func (c *converter) listComprehension(compr *mir.ListComprehension) (lir.Expr, error) {
	listType, ok := compr.ListVar.Type.(mir.ListType)
	if !ok {
		return nil, fmt.Errorf("comprehension over non-list %s", compr.ListVar.Name)
	}
	srcKind, err := elemKindName(listType.Elem)
	if err != nil {
		return nil, err
	}
	dstKind, err := elemKindName(compr.Call.ExprType())
	if err != nil {
		return nil, err
	}

	listVar, err := c.varReference(compr.ListVar)
	if err != nil {
		return nil, err
	}
	loopVar, err := c.varReference(compr.LoopVar)
	if err != nil {
		return nil, err
	}
	call, err := c.functionCall(compr.Call)
	if err != nil {
		return nil, err
	}
	bodyCall, ok := call.(*lir.FunctionCall)
	if !ok {
		return nil, fmt.Errorf("comprehension body is not a function call")
	}
	return &lir.ListComprehension{
		ListVar:           listVar,
		LoopVar:           loopVar,
		Call:              bodyCall,
		TransformTemplate: fmt.Sprintf("Transform%sListTo%sList", srcKind, dstKind),
	}, nil
}

func (c *converter) assignment(assignment *mir.Assignment) (*lir.Assignment, error) {
	lhs, err := c.varReference(assignment.LHS)
	if err != nil {
		return nil, err
	}
	rhs, err := c.expr(assignment.RHS)
	if err != nil {
		return nil, err
	}
	out := &lir.Assignment{LHS: lhs, RHS: rhs}
	if assignment.LHS2 != nil {
		lhs2, err := c.varReference(*assignment.LHS2)
		if err != nil {
			return nil, err
		}
		out.LHS2 = &lhs2
	}
	return out, nil
}

func (c *converter) stmts(stmts []mir.Stmt) ([]lir.Stmt, error) {
	var out []lir.Stmt
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *mir.Assignment:
			converted, err := c.assignment(s)
			if err != nil {
				return nil, err
			}
			out = append(out, converted)
		case *mir.UnpackingAssignment:
			converted, err := c.unpackingAssignment(s)
			if err != nil {
				return nil, err
			}
			out = append(out, converted)
		case *mir.IfStmt:
			cond, err := c.varReference(s.Cond)
			if err != nil {
				return nil, err
			}
			thenStmts, err := c.stmts(s.Then)
			if err != nil {
				return nil, err
			}
			elseStmts, err := c.stmts(s.Else)
			if err != nil {
				return nil, err
			}
			out = append(out, &lir.IfStmt{Cond: cond, Then: thenStmts, Else: elseStmts})
		case *mir.ReturnStmt:
			converted := &lir.ReturnStmt{}
			if s.Result != nil {
				result, err := c.varReference(*s.Result)
				if err != nil {
					return nil, err
				}
				converted.Result = &result
			}
			if s.Error != nil {
				errVar, err := c.varReference(*s.Error)
				if err != nil {
					return nil, err
				}
				converted.Error = &errVar
			}
			out = append(out, converted)
		case *mir.Assert:
			v, err := c.varReference(s.Var)
			if err != nil {
				return nil, err
			}
			out = append(out, &lir.Assert{Var: v, Message: s.Message})
		default:
			return nil, fmt.Errorf("unsupported statement %T", stmt)
		}
	}
	return out, nil
}

func (c *converter) unpackingAssignment(assignment *mir.UnpackingAssignment) (*lir.UnpackingAssignment, error) {
	if len(assignment.LHSList) == 0 {
		return nil, fmt.Errorf("unpacking assignment with no destinations")
	}
	elemKind, err := elemKindName(assignment.LHSList[0].Type)
	if err != nil {
		return nil, err
	}
	lhsList, err := c.varReferences(assignment.LHSList)
	if err != nil {
		return nil, err
	}
	rhs, err := c.varReference(assignment.RHS)
	if err != nil {
		return nil, err
	}
	return &lir.UnpackingAssignment{
		LHSList:      lhsList,
		RHS:          rhs,
		ElemKind:     elemKind,
		ErrorMessage: assignment.ErrorMessage,
	}, nil
}

func (c *converter) functionDefn(fn *mir.FunctionDefn) (*lir.FunctionDefn, error) {
	returnType, err := c.exprType(fn.ReturnType)
	if err != nil {
		return nil, err
	}
	args := make([]lir.FunctionArgDecl, len(fn.Args))
	for i, arg := range fn.Args {
		argType, err := c.exprType(arg.Type)
		if err != nil {
			return nil, err
		}
		args[i] = lir.FunctionArgDecl{Name: arg.Name, Type: argType}
	}
	body, err := c.stmts(fn.Body)
	if err != nil {
		return nil, err
	}
	return &lir.FunctionDefn{
		Name:        fn.Name,
		Description: fn.Description,
		Args:        args,
		Body:        body,
		ReturnType:  returnType,
		MayThrow:    fn.MayThrow,
	}, nil
}

func (c *converter) checkIfErrorDefn(defn *mir.CheckIfErrorDefn) (*lir.CheckIfErrorDefn, error) {
	out := &lir.CheckIfErrorDefn{}
	for _, spec := range defn.Errors {
		converted, err := c.customType(spec.Type)
		if err != nil {
			return nil, err
		}
		out.Errors = append(out.Errors, lir.ErrorSpec{Type: converted, Message: spec.Message})
	}
	return out, nil
}
