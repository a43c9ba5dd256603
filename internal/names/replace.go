package names

import "strings"

// ReplaceIdentifiers rewrites every identifier token in a C++ type
// pattern string according to repl, leaving all other tokens untouched.
// Identifiers not present in repl pass through unchanged.
//
// Pattern strings are token streams like "std::pair<T, U>*"; only
// maximal [A-Za-z_][A-Za-z0-9_]* runs are candidates for replacement, so
// a mapping for "T" never touches "Tuple".
func ReplaceIdentifiers(pattern string, repl map[string]string) string {
	if len(repl) == 0 {
		return pattern
	}
	var b strings.Builder
	b.Grow(len(pattern))
	for i := 0; i < len(pattern); {
		c := pattern[i]
		if !isIdentStart(c) {
			b.WriteByte(c)
			i++
			continue
		}
		j := i + 1
		for j < len(pattern) && isIdentPart(pattern[j]) {
			j++
		}
		ident := pattern[i:j]
		if mapped, ok := repl[ident]; ok {
			b.WriteString(mapped)
		} else {
			b.WriteString(ident)
		}
		i = j
	}
	return b.String()
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
