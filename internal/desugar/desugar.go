package desugar

import (
	"fmt"

	"github.com/tmppy/tmppyc/internal/hir"
	"github.com/tmppy/tmppyc/internal/mir"
	"github.com/tmppy/tmppyc/internal/names"
)

// Module lowers a front-end module into the mid-level representation.
// Output order: custom types, the error-classification check, function
// definitions (the synthesized is_error function first, then helpers
// and user functions in creation order), module-level statements.
//
// Fresh identifiers come from gen, which the caller shares across the
// whole compilation.
func Module(module *hir.Module, gen *names.Generator) (*mir.Module, error) {
	fw := newFunWriter(gen)

	for _, fn := range module.Functions {
		if err := functionDefnToMIR(fn, fw); err != nil {
			return nil, fmt.Errorf("function %s: %w", fn.Name, err)
		}
	}

	// Module-level assertions have no error channel: a failing call
	// there is a hard instantiation error, not a catchable one.
	topFC := &funcCompilation{mod: fw, obf: names.NewObfuscator(gen)}
	topWriter := &stmtWriter{fc: topFC}
	for _, assertion := range module.Assertions {
		if err := assertToMIR(assertion, topWriter); err != nil {
			return nil, fmt.Errorf("module-level assertion: %w", err)
		}
	}

	var body []mir.TopLevel
	for _, ct := range module.CustomTypes {
		converted, err := fw.customType(ct)
		if err != nil {
			return nil, err
		}
		body = append(body, converted)
	}
	body = append(body, checkIfErrorDefn(module, fw))
	for _, fn := range fw.functions {
		body = append(body, fn)
	}
	for _, stmt := range topWriter.stmts {
		top, ok := stmt.(mir.TopLevel)
		if !ok {
			return nil, fmt.Errorf("unsupported statement at module scope %T", stmt)
		}
		body = append(body, top)
	}
	return &mir.Module{Body: body}, nil
}

func functionDefnToMIR(fn *hir.FunctionDefn, fw *funWriter) error {
	returnType, err := fw.typeOf(fn.ReturnType)
	if err != nil {
		return err
	}

	fc := &funcCompilation{mod: fw, obf: names.NewObfuscator(fw.gen)}
	w := &stmtWriter{fc: fc, returnType: returnType}
	if err := stmtsToMIR(fn.Body, w); err != nil {
		return err
	}

	args := make([]mir.FunctionArgDecl, len(fn.Args))
	for i, arg := range fn.Args {
		argType, err := fw.typeOf(arg.Type)
		if err != nil {
			return err
		}
		args[i] = mir.FunctionArgDecl{Name: fc.obf.Obfuscate(arg.Name), Type: argType}
	}

	fw.writeFunction(&mir.FunctionDefn{
		Name:       fn.Name,
		Args:       args,
		Body:       w.stmts,
		ReturnType: returnType,
		MayThrow:   fn.MayThrow,
	})
	return nil
}

func checkIfErrorDefn(module *hir.Module, fw *funWriter) *mir.CheckIfErrorDefn {
	defn := &mir.CheckIfErrorDefn{}
	for _, ct := range module.CustomTypes {
		if !ct.IsException {
			continue
		}
		converted := fw.customTypes[ct.Name]
		defn.Errors = append(defn.Errors, mir.ErrorSpec{
			Type:    converted,
			Message: ct.ExceptionMessage,
		})
	}
	return defn
}
