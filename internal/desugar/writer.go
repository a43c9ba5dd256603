package desugar

import (
	"fmt"

	"github.com/tmppy/tmppyc/internal/hir"
	"github.com/tmppy/tmppyc/internal/mir"
	"github.com/tmppy/tmppyc/internal/names"
)

// funWriter accumulates module-level output: every function definition
// produced during the pass, in creation order, plus the memoized
// custom-type conversions that keep pointer identity stable.
type funWriter struct {
	gen         *names.Generator
	isErrorFun  mir.VarReference
	functions   []*mir.FunctionDefn
	customTypes map[string]*mir.CustomType
}

func newFunWriter(gen *names.Generator) *funWriter {
	fw := &funWriter{
		gen:         gen,
		customTypes: make(map[string]*mir.CustomType),
	}
	fw.isErrorFun = mir.VarReference{
		Type: mir.FunctionType{
			ArgTypes: []mir.ExprType{mir.ErrorOrVoidType{}},
			Returns:  mir.BoolType{},
		},
		Name:             gen.Next(),
		IsGlobalFunction: true,
		MayThrow:         true,
	}
	fw.functions = append(fw.functions, fw.isErrorFunDefn())
	return fw
}

// isErrorFunDefn synthesizes the module's error test:
//
//	def is_error(x):
//	  v = Type('void')
//	  b = (x == v)
//	  b2 = not b
//	  return b2
func (fw *funWriter) isErrorFunDefn() *mir.FunctionDefn {
	fc := &funcCompilation{mod: fw, obf: names.NewObfuscator(fw.gen)}
	w := &stmtWriter{fc: fc, returnType: mir.BoolType{}}
	x := fw.newVar(mir.ErrorOrVoidType{})
	v := w.newVarForExpr(&mir.TypeLiteral{CppType: "void", Args: map[string]mir.VarReference{}})
	b := w.newVarForExpr(&mir.EqualityComparison{LHS: x, RHS: v})
	b2 := w.newVarForExpr(&mir.NotExpr{Var: b})
	w.write(&mir.ReturnStmt{Result: &b2})
	return &mir.FunctionDefn{
		Name:        fw.isErrorFun.Name,
		Description: "the is_error (meta)function",
		Args:        []mir.FunctionArgDecl{{Name: x.Name, Type: x.Type}},
		Body:        w.stmts,
		ReturnType:  mir.BoolType{},
		MayThrow:    true,
	}
}

func (fw *funWriter) newVar(t mir.ExprType) mir.VarReference {
	return mir.VarReference{Type: t, Name: fw.gen.Next()}
}

func (fw *funWriter) writeFunction(defn *mir.FunctionDefn) {
	fw.functions = append(fw.functions, defn)
}

func (fw *funWriter) typeOf(t hir.ExprType) (mir.ExprType, error) {
	switch x := t.(type) {
	case hir.BoolType:
		return mir.BoolType{}, nil
	case hir.IntType:
		return mir.IntType{}, nil
	case hir.TypeType:
		return mir.TypeType{}, nil
	case hir.BottomType:
		return mir.BottomType{}, nil
	case hir.ListType:
		elem, err := fw.typeOf(x.Elem)
		if err != nil {
			return nil, err
		}
		return mir.ListType{Elem: elem}, nil
	case hir.SetType:
		// Sets are list-backed from here on.
		elem, err := fw.typeOf(x.Elem)
		if err != nil {
			return nil, err
		}
		return mir.ListType{Elem: elem}, nil
	case hir.FunctionType:
		argTypes := make([]mir.ExprType, len(x.ArgTypes))
		for i, at := range x.ArgTypes {
			converted, err := fw.typeOf(at)
			if err != nil {
				return nil, err
			}
			argTypes[i] = converted
		}
		returns, err := fw.typeOf(x.Returns)
		if err != nil {
			return nil, err
		}
		return mir.FunctionType{ArgTypes: argTypes, Returns: returns}, nil
	case *hir.CustomType:
		return fw.customType(x)
	default:
		return nil, fmt.Errorf("unsupported type %T", t)
	}
}

func (fw *funWriter) customType(ct *hir.CustomType) (*mir.CustomType, error) {
	if converted, ok := fw.customTypes[ct.Name]; ok {
		return converted, nil
	}
	converted := &mir.CustomType{
		Name:             ct.Name,
		IsException:      ct.IsException,
		ExceptionMessage: ct.ExceptionMessage,
	}
	fw.customTypes[ct.Name] = converted
	for _, field := range ct.Fields {
		fieldType, err := fw.typeOf(field.Type)
		if err != nil {
			return nil, err
		}
		converted.Fields = append(converted.Fields, mir.CustomTypeField{
			Name: field.Name,
			Type: fieldType,
		})
	}
	return converted, nil
}

// tryExceptContext is one handler in scope while compiling a try body:
// the exception type it catches, the source-level name it binds, and
// the prepared call into the outlined handler function.
type tryExceptContext struct {
	caughtType  *mir.CustomType
	caughtName  string
	handlerCall *mir.FunctionCall
}

// funcCompilation is the state shared by every statement writer spawned
// while compiling one source function: the per-function obfuscation
// memo and the stack of try/except handlers currently in scope
// (innermost last). Branch writers and outlined helper bodies all see
// the same stack, so a raise buried in an if inside a try still finds
// its handler.
type funcCompilation struct {
	mod         *funWriter
	obf         *names.Obfuscator
	tryContexts []tryExceptContext
}

func (fc *funcCompilation) pushTryContext(ctx tryExceptContext) {
	fc.tryContexts = append(fc.tryContexts, ctx)
}

func (fc *funcCompilation) popTryContext() {
	fc.tryContexts = fc.tryContexts[:len(fc.tryContexts)-1]
}

// stmtWriter accumulates lowered statements for one block. returnType
// is the enclosing function's converted return type, or nil when
// writing module-scope statements, where no error channel exists.
type stmtWriter struct {
	fc         *funcCompilation
	returnType mir.ExprType
	stmts      []mir.Stmt
}

func (w *stmtWriter) branch() *stmtWriter {
	return &stmtWriter{fc: w.fc, returnType: w.returnType}
}

func (w *stmtWriter) write(stmt mir.Stmt) {
	w.stmts = append(w.stmts, stmt)
}

func (w *stmtWriter) newVarForExpr(expr mir.Expr) mir.VarReference {
	v := w.fc.mod.newVar(expr.ExprType())
	w.write(&mir.Assignment{LHS: v, RHS: expr})
	return v
}

// newVarForExprChecked binds expr's result and error channels and
// expands the error check:
//
//	x, err = <expr>
//	b = is_error(err)
//	if b:
//	  b1 = isinstance(err, CaughtType1)   # innermost handler first
//	  if b1:
//	    e1 = err  # cast
//	    res1, err1 = handler1(...)
//	    return res1, err1
//	  ...
//	  return None, err
//
// At module scope there is no error channel and the binding is plain.
func (w *stmtWriter) newVarForExprChecked(expr mir.Expr) mir.VarReference {
	if w.returnType == nil {
		return w.newVarForExpr(expr)
	}

	x := w.fc.mod.newVar(expr.ExprType())
	errVar := w.fc.mod.newVar(mir.ErrorOrVoidType{})
	w.write(&mir.Assignment{LHS: x, LHS2: &errVar, RHS: expr})
	b := w.newVarForExpr(&mir.FunctionCall{
		Fun:  w.fc.mod.isErrorFun,
		Args: []mir.VarReference{errVar},
	})

	outer := w.branch()
	for i := len(w.fc.tryContexts) - 1; i >= 0; i-- {
		ctx := w.fc.tryContexts[i]

		handled := w.branch()
		caught := mir.VarReference{
			Type: ctx.caughtType,
			Name: w.fc.obf.Obfuscate(ctx.caughtName),
		}
		handled.write(&mir.Assignment{
			LHS: caught,
			RHS: &mir.SafeUncheckedCast{Var: errVar, Type: ctx.caughtType},
		})
		res := w.fc.mod.newVar(w.returnType)
		handlerErr := w.fc.mod.newVar(mir.ErrorOrVoidType{})
		handled.write(&mir.Assignment{LHS: res, LHS2: &handlerErr, RHS: ctx.handlerCall})
		handled.write(&mir.ReturnStmt{Result: &res, Error: &handlerErr})

		bi := outer.newVarForExpr(&mir.IsInstanceExpr{Var: errVar, CheckedType: ctx.caughtType})
		outer.write(&mir.IfStmt{Cond: bi, Then: handled.stmts})
	}
	outer.write(&mir.ReturnStmt{Error: &errVar})

	w.write(&mir.IfStmt{Cond: b, Then: outer.stmts})
	return x
}
