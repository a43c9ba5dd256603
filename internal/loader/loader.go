package loader

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/tmppy/tmppyc/internal/hir"
)

// CompileError is a loading error carrying the CUE source position of
// the offending field.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func errAt(v cue.Value, field, format string, args ...any) error {
	return &CompileError{Field: field, Message: fmt.Sprintf(format, args...), Pos: v.Pos()}
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}
	return err
}

// LoadFile parses one CUE file into a front-end module.
func LoadFile(path string) (*hir.Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	ctx := cuecontext.New()
	return Module(ctx.CompileBytes(data, cue.Filename(path)))
}

// Module parses a CUE value of the form
//
//	types:     { <Name>: {fields: [...], exception?, message?} }
//	functions: { <name>: {args: [...], returns: ..., may_throw?, body: [...]} }
//	asserts:   [ {cond: ..., message: ...} ]
//
// into an hir.Module. Declaration order of types and functions is
// preserved.
func Module(v cue.Value) (*hir.Module, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	ld := &moduleLoader{
		customTypes: make(map[string]*hir.CustomType),
		functions:   make(map[string]hir.VarReference),
	}
	module := &hir.Module{}

	typesVal := v.LookupPath(cue.ParsePath("types"))
	if typesVal.Exists() {
		iter, err := typesVal.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			ct, err := ld.customType(iter.Label(), iter.Value())
			if err != nil {
				return nil, err
			}
			module.CustomTypes = append(module.CustomTypes, ct)
		}
	}

	fnsVal := v.LookupPath(cue.ParsePath("functions"))
	if fnsVal.Exists() {
		// Signatures first, so bodies can call any function in the
		// module regardless of declaration order.
		sigIter, err := fnsVal.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		var order []string
		for sigIter.Next() {
			name := sigIter.Label()
			if err := ld.functionSignature(name, sigIter.Value()); err != nil {
				return nil, err
			}
			order = append(order, name)
		}

		bodyIter, err := fnsVal.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for i := 0; bodyIter.Next(); i++ {
			fn, err := ld.functionBody(order[i], bodyIter.Value())
			if err != nil {
				return nil, fmt.Errorf("function %s: %w", order[i], err)
			}
			module.Functions = append(module.Functions, fn)
		}
	}

	assertsVal := v.LookupPath(cue.ParsePath("asserts"))
	if assertsVal.Exists() {
		iter, err := assertsVal.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		sc := ld.moduleScope()
		for iter.Next() {
			assertion, err := ld.assertion(iter.Value(), sc)
			if err != nil {
				return nil, fmt.Errorf("module-level assertion: %w", err)
			}
			module.Assertions = append(module.Assertions, assertion)
		}
	}

	return module, nil
}

// moduleLoader accumulates the name registries a module's bodies
// resolve against.
type moduleLoader struct {
	customTypes map[string]*hir.CustomType
	functions   map[string]hir.VarReference
}

func (ld *moduleLoader) customType(name string, v cue.Value) (*hir.CustomType, error) {
	if _, ok := ld.customTypes[name]; ok {
		return nil, errAt(v, "types."+name, "type declared twice")
	}
	ct := &hir.CustomType{Name: name}
	// Register before parsing fields: recursive types name themselves.
	ld.customTypes[name] = ct

	fieldsVal := v.LookupPath(cue.ParsePath("fields"))
	if fieldsVal.Exists() {
		decls, err := ld.namedTypeList(fieldsVal, "types."+name+".fields")
		if err != nil {
			return nil, err
		}
		for _, decl := range decls {
			ct.Fields = append(ct.Fields, hir.CustomTypeField{Name: decl.name, Type: decl.typ})
		}
	}

	excVal := v.LookupPath(cue.ParsePath("exception"))
	if excVal.Exists() {
		isException, err := excVal.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		ct.IsException = isException
	}
	if ct.IsException {
		msgVal := v.LookupPath(cue.ParsePath("message"))
		if !msgVal.Exists() {
			return nil, errAt(v, "types."+name, "exception types need a message")
		}
		msg, err := msgVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		ct.ExceptionMessage = msg
	}
	return ct, nil
}

func (ld *moduleLoader) functionSignature(name string, v cue.Value) error {
	if _, ok := ld.customTypes[name]; ok {
		return errAt(v, "functions."+name, "name already declares a type, whose constructor it would shadow")
	}
	if _, ok := ld.functions[name]; ok {
		return errAt(v, "functions."+name, "function declared twice")
	}

	var argTypes []hir.ExprType
	argsVal := v.LookupPath(cue.ParsePath("args"))
	if argsVal.Exists() {
		decls, err := ld.namedTypeList(argsVal, "functions."+name+".args")
		if err != nil {
			return err
		}
		for _, decl := range decls {
			argTypes = append(argTypes, decl.typ)
		}
	}

	returnsVal := v.LookupPath(cue.ParsePath("returns"))
	if !returnsVal.Exists() {
		return errAt(v, "functions."+name, "return type is required")
	}
	returns, err := ld.parseType(returnsVal, "functions."+name+".returns")
	if err != nil {
		return err
	}

	mayThrow := false
	throwVal := v.LookupPath(cue.ParsePath("may_throw"))
	if throwVal.Exists() {
		if mayThrow, err = throwVal.Bool(); err != nil {
			return formatCUEError(err)
		}
	}

	ld.functions[name] = hir.VarReference{
		Type:             hir.FunctionType{ArgTypes: argTypes, Returns: returns},
		Name:             name,
		IsGlobalFunction: true,
		MayThrow:         mayThrow,
	}
	return nil
}

func (ld *moduleLoader) functionBody(name string, v cue.Value) (*hir.FunctionDefn, error) {
	ref := ld.functions[name]
	funType := ref.Type.(hir.FunctionType)

	sc := ld.moduleScope()
	var args []hir.FunctionArgDecl
	argsVal := v.LookupPath(cue.ParsePath("args"))
	if argsVal.Exists() {
		decls, err := ld.namedTypeList(argsVal, "functions."+name+".args")
		if err != nil {
			return nil, err
		}
		for _, decl := range decls {
			args = append(args, hir.FunctionArgDecl{Name: decl.name, Type: decl.typ})
			sc.bind(hir.VarReference{Type: decl.typ, Name: decl.name})
		}
	}

	bodyVal := v.LookupPath(cue.ParsePath("body"))
	if !bodyVal.Exists() {
		return nil, errAt(v, "functions."+name, "body is required")
	}
	body, err := ld.parseStmts(bodyVal, sc)
	if err != nil {
		return nil, err
	}

	return &hir.FunctionDefn{
		Name:       name,
		Args:       args,
		ReturnType: funType.Returns,
		Body:       body,
		MayThrow:   ref.MayThrow,
	}, nil
}

func (ld *moduleLoader) assertion(v cue.Value, sc *scope) (*hir.Assert, error) {
	condVal := v.LookupPath(cue.ParsePath("cond"))
	if !condVal.Exists() {
		return nil, errAt(v, "asserts", "cond is required")
	}
	cond, err := ld.parseExpr(condVal, sc)
	if err != nil {
		return nil, err
	}
	msg, err := v.LookupPath(cue.ParsePath("message")).String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	return &hir.Assert{Expr: cond, Message: msg}, nil
}

// moduleScope is the outermost scope: global functions plus one
// constructor per custom type, named after the type and taking its
// fields in declaration order.
func (ld *moduleLoader) moduleScope() *scope {
	sc := &scope{vars: make(map[string]hir.VarReference)}
	for _, ref := range ld.functions {
		sc.vars[ref.Name] = ref
	}
	for name, ct := range ld.customTypes {
		argTypes := make([]hir.ExprType, len(ct.Fields))
		for i, field := range ct.Fields {
			argTypes[i] = field.Type
		}
		sc.vars[name] = hir.VarReference{
			Type:             hir.FunctionType{ArgTypes: argTypes, Returns: ct},
			Name:             name,
			IsGlobalFunction: true,
		}
	}
	return sc
}

type namedType struct {
	name string
	typ  hir.ExprType
}

// namedTypeList parses an ordered [{name: ..., type: ...}] list, the
// encoding used for function arguments and custom-type fields.
func (ld *moduleLoader) namedTypeList(v cue.Value, field string) ([]namedType, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var decls []namedType
	for iter.Next() {
		entry := iter.Value()
		name, err := entry.LookupPath(cue.ParsePath("name")).String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		typeVal := entry.LookupPath(cue.ParsePath("type"))
		if !typeVal.Exists() {
			return nil, errAt(entry, field, "%s has no type", name)
		}
		typ, err := ld.parseType(typeVal, field+"."+name)
		if err != nil {
			return nil, err
		}
		decls = append(decls, namedType{name: name, typ: typ})
	}
	return decls, nil
}

// scope tracks the bindings visible to an expression. Statement lists
// share their function's scope; comprehension loop variables, match
// bindings and caught exceptions live in child scopes.
type scope struct {
	parent *scope
	vars   map[string]hir.VarReference
}

func (s *scope) lookup(name string) (hir.VarReference, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if ref, ok := sc.vars[name]; ok {
			return ref, true
		}
	}
	return hir.VarReference{}, false
}

func (s *scope) bind(ref hir.VarReference) {
	s.vars[ref.Name] = ref
}

func (s *scope) child() *scope {
	return &scope{parent: s, vars: make(map[string]hir.VarReference)}
}
