package emit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tmppy/tmppyc/internal/tmpl"
)

const preamble = "#include <tmppy/tmppy.h>\n#include <type_traits>\n"

// Module prints a generated module as one C++ translation unit.
func Module(module *tmpl.Module) string {
	p := &printer{}
	p.raw(preamble)
	for _, elem := range module.Body {
		p.raw("\n")
		p.bodyElement(elem, 0)
	}
	return p.b.String()
}

type printer struct {
	b strings.Builder
}

func (p *printer) raw(s string) {
	p.b.WriteString(s)
}

func (p *printer) line(indent int, s string) {
	for i := 0; i < indent; i++ {
		p.b.WriteString("  ")
	}
	p.b.WriteString(s)
	p.b.WriteString("\n")
}

func (p *printer) bodyElement(elem tmpl.BodyElement, indent int) {
	switch e := elem.(type) {
	case *tmpl.StaticAssert:
		p.line(indent, fmt.Sprintf("static_assert(%s, %q);", exprString(e.Cond), e.Message))
	case *tmpl.ConstantDef:
		p.line(indent, fmt.Sprintf("static constexpr %s %s = %s;", constantType(e.Expr), e.Name, exprString(e.Expr)))
	case *tmpl.Typedef:
		p.line(indent, fmt.Sprintf("using %s = %s;", e.Name, exprString(e.Expr)))
	case *tmpl.AliasTemplate:
		p.line(indent, fmt.Sprintf("template <%s>", paramDecls(e.Params)))
		p.line(indent, fmt.Sprintf("using %s = %s;", e.Name, exprString(e.Target)))
	case *tmpl.TemplateDefn:
		p.templateDefn(e, indent)
	}
}

func (p *printer) templateDefn(defn *tmpl.TemplateDefn, indent int) {
	if defn.Main != nil {
		p.structDefn(defn.Name, defn.Main, indent)
	} else {
		p.line(indent, fmt.Sprintf("template <%s>", paramDecls(defn.Params)))
		p.line(indent, fmt.Sprintf("struct %s;", defn.Name))
	}
	for _, spec := range defn.Specializations {
		p.structDefn(defn.Name, spec, indent)
	}
}

// structDefn prints one definition of a template: the main definition
// when the specialization carries no patterns, a partial or full
// specialization otherwise. A definition with no parameters and no
// patterns is a plain struct.
func (p *printer) structDefn(name string, spec *tmpl.Specialization, indent int) {
	head := fmt.Sprintf("struct %s {", name)
	if spec.Patterns != nil {
		patterns := make([]string, len(spec.Patterns))
		for i, pattern := range spec.Patterns {
			patterns[i] = exprString(pattern)
		}
		head = fmt.Sprintf("struct %s<%s> {", name, strings.Join(patterns, ", "))
	}
	if spec.Patterns != nil || len(spec.Params) > 0 {
		p.line(indent, fmt.Sprintf("template <%s>", paramDecls(spec.Params)))
	}
	p.line(indent, head)
	for _, elem := range spec.Body {
		p.bodyElement(elem, indent+1)
	}
	p.line(indent, "};")
}

func paramDecls(params []tmpl.Param) string {
	decls := make([]string, len(params))
	for i, param := range params {
		decls[i] = paramDecl(param)
	}
	return strings.Join(decls, ", ")
}

func paramDecl(param tmpl.Param) string {
	var decl string
	switch param.Kind {
	case tmpl.KindBool:
		decl = "bool"
	case tmpl.KindInt64:
		decl = "int64_t"
	case tmpl.KindType:
		decl = "typename"
	case tmpl.KindTemplate:
		decl = fmt.Sprintf("template <%s> class", paramDecls(param.Args))
	}
	if param.Name == "" {
		return decl
	}
	return decl + " " + param.Name
}

// constantType picks the declared type of a constant definition from
// the expression's kind.
func constantType(e tmpl.Expr) string {
	if e.Kind() == tmpl.KindInt64 {
		return "int64_t"
	}
	return "bool"
}

func exprString(e tmpl.Expr) string {
	switch x := e.(type) {
	case *tmpl.BoolLiteral:
		if x.Value {
			return "true"
		}
		return "false"
	case *tmpl.Int64Literal:
		return strconv.FormatInt(x.Value, 10)
	case *tmpl.Name:
		return x.Cpp
	case *tmpl.TypeText:
		return x.Cpp
	case *tmpl.PatternText:
		return x.Cpp
	case *tmpl.UnaryOp:
		return x.Op + operandString(x.Operand)
	case *tmpl.BinaryOp:
		return operandString(x.LHS) + " " + x.Op + " " + operandString(x.RHS)
	case *tmpl.Instantiation:
		args := make([]string, len(x.Args))
		for i, arg := range x.Args {
			args[i] = exprString(arg)
		}
		return exprString(x.Template) + "<" + strings.Join(args, ", ") + ">"
	case *tmpl.MemberAccess:
		class := exprString(x.Class)
		switch x.MemberKind {
		case tmpl.KindType:
			return "typename " + class + "::" + x.MemberName
		case tmpl.KindTemplate:
			return class + "::template " + x.MemberName
		default:
			return class + "::" + x.MemberName
		}
	}
	return ""
}

// operandString parenthesizes compound operands of unary and binary
// operators; atoms print bare.
func operandString(e tmpl.Expr) string {
	switch e.(type) {
	case *tmpl.UnaryOp, *tmpl.BinaryOp:
		return "(" + exprString(e) + ")"
	default:
		return exprString(e)
	}
}
