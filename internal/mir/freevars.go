package mir

import "sort"

// FreeVariablesInStmts returns the unique free variables referenced by
// stmts, in order of first use. Global function references are not
// free variables; neither are names bound by comprehension loop
// variables or match-arm patterns, which are local to their node.
//
// A variable assigned in both arms of an if counts as bound for the
// statements that follow it; a variable assigned in only one arm does
// not.
//
// Synthesized helper functions (match-arm outlines, comprehension
// bodies, try continuations, except handlers) take exactly this set as
// their parameter list, in exactly this order.
func FreeVariablesInStmts(stmts []Stmt) []VarReference {
	c := &freeVarCollector{
		bound: make(map[string]bool),
		seen:  make(map[string]bool),
	}
	c.stmts(stmts)
	return c.free
}

type freeVarCollector struct {
	bound map[string]bool
	seen  map[string]bool
	free  []VarReference
}

func (c *freeVarCollector) stmts(stmts []Stmt) {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *Assignment:
			c.expr(s.RHS)
			c.bind(s.LHS)
			if s.LHS2 != nil {
				c.bind(*s.LHS2)
			}
		case *UnpackingAssignment:
			c.ref(s.RHS)
			for _, lhs := range s.LHSList {
				c.bind(lhs)
			}
		case *IfStmt:
			c.ref(s.Cond)
			thenBound := c.branch(s.Then)
			elseBound := c.branch(s.Else)
			// Bindings survive an if only when both arms make them.
			for name := range thenBound {
				if elseBound[name] {
					c.bound[name] = true
				}
			}
		case *ReturnStmt:
			if s.Result != nil {
				c.ref(*s.Result)
			}
			if s.Error != nil {
				c.ref(*s.Error)
			}
		case *Assert:
			c.ref(s.Var)
		}
	}
}

// branch collects free variables of a branch against the current bound
// set, then reports which names the branch newly bound.
func (c *freeVarCollector) branch(stmts []Stmt) map[string]bool {
	saved := make(map[string]bool, len(c.bound))
	for name := range c.bound {
		saved[name] = true
	}
	c.stmts(stmts)
	newlyBound := make(map[string]bool)
	for name := range c.bound {
		if !saved[name] {
			newlyBound[name] = true
		}
	}
	c.bound = saved
	return newlyBound
}

func (c *freeVarCollector) expr(expr Expr) {
	switch e := expr.(type) {
	case VarReference:
		c.ref(e)
	case *BoolLiteral, *IntLiteral:
	case *TypeLiteral:
		argNames := make([]string, 0, len(e.Args))
		for name := range e.Args {
			argNames = append(argNames, name)
		}
		sort.Strings(argNames)
		for _, name := range argNames {
			c.ref(e.Args[name])
		}
	case *FunctionCall:
		c.ref(e.Fun)
		c.refs(e.Args)
	case *MatchExpr:
		c.refs(e.MatchedVars)
		for _, mc := range e.Cases {
			patternBound := make(map[string]bool, len(mc.MatchedVarNames))
			for _, name := range mc.MatchedVarNames {
				patternBound[name] = true
			}
			c.ref(mc.Call.Fun)
			for _, arg := range mc.Call.Args {
				if !patternBound[arg.Name] {
					c.ref(arg)
				}
			}
		}
	case *EqualityComparison:
		c.ref(e.LHS)
		c.ref(e.RHS)
	case *SetEqualityComparison:
		c.ref(e.LHS)
		c.ref(e.RHS)
	case *AttributeAccess:
		c.ref(e.Var)
	case *NotExpr:
		c.ref(e.Var)
	case *UnaryMinusExpr:
		c.ref(e.Var)
	case *IntComparisonExpr:
		c.ref(e.LHS)
		c.ref(e.RHS)
	case *IntBinaryOpExpr:
		c.ref(e.LHS)
		c.ref(e.RHS)
	case *ListExpr:
		c.refs(e.Elems)
	case *AddToSetExpr:
		c.ref(e.Set)
		c.ref(e.Elem)
	case *ListConcatExpr:
		c.ref(e.LHS)
		c.ref(e.RHS)
	case *ListComprehension:
		c.ref(e.ListVar)
		c.ref(e.Call.Fun)
		for _, arg := range e.Call.Args {
			if arg.Name != e.LoopVar.Name {
				c.ref(arg)
			}
		}
	case *IntListSumExpr:
		c.ref(e.Var)
	case *BoolListAllExpr:
		c.ref(e.Var)
	case *BoolListAnyExpr:
		c.ref(e.Var)
	case *IsInstanceExpr:
		c.ref(e.Var)
	case *SafeUncheckedCast:
		c.ref(e.Var)
	case *ListToSetExpr:
		c.ref(e.Var)
	case *SetToListExpr:
		c.ref(e.Var)
	}
}

func (c *freeVarCollector) refs(vars []VarReference) {
	for _, v := range vars {
		c.ref(v)
	}
}

func (c *freeVarCollector) ref(v VarReference) {
	if v.IsGlobalFunction || c.bound[v.Name] || c.seen[v.Name] {
		return
	}
	c.seen[v.Name] = true
	c.free = append(c.free, v)
}

func (c *freeVarCollector) bind(v VarReference) {
	c.bound[v.Name] = true
}
