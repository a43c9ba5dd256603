package tmpl

// ReferencesAnyOf reports whether expr mentions any of the given names
// (by C++ spelling). Template generation uses it to decide whether a
// static assert already depends on a template parameter or needs an
// anchoring conjunct.
func ReferencesAnyOf(expr Expr, names map[string]bool) bool {
	switch e := expr.(type) {
	case *BoolLiteral, *Int64Literal, *TypeText, *PatternText:
		return false
	case *Name:
		return names[e.Cpp]
	case *UnaryOp:
		return ReferencesAnyOf(e.Operand, names)
	case *BinaryOp:
		return ReferencesAnyOf(e.LHS, names) || ReferencesAnyOf(e.RHS, names)
	case *Instantiation:
		if ReferencesAnyOf(e.Template, names) {
			return true
		}
		for _, arg := range e.Args {
			if ReferencesAnyOf(arg, names) {
				return true
			}
		}
		return false
	case *MemberAccess:
		return ReferencesAnyOf(e.Class, names)
	}
	return false
}
