package tmpl

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind classifies template-level entities: what a template parameter
// declares, what a member holds, how a value is read at an
// instantiation site.
type Kind int

const (
	// KindBool values are constexpr bools, read through `::value`.
	KindBool Kind = iota
	// KindInt64 values are constexpr int64_t, read through `::value`.
	KindInt64
	// KindType values are C++ types, read through `typename ...::type`.
	KindType
	// KindTemplate values are class templates, read through
	// `...::template type`.
	KindTemplate
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt64:
		return "int64"
	case KindType:
		return "type"
	case KindTemplate:
		return "template"
	}
	return "unknown"
}

var titleCaser = cases.Title(language.Und)

// CppIdentifier maps a source identifier to its C++ spelling for the
// given kind. Bool and int64 identifiers pass through unchanged; type
// and template identifiers have each underscore-separated segment
// title-cased and the underscores removed, so `checked_list` becomes
// `CheckedList`. The mapping is not injective: `foo_bar` and `fooBar`
// both yield `FooBar`. Synthesized names carry a numeric suffix, which
// keeps them out of each other's way.
func CppIdentifier(kind Kind, name string) string {
	switch kind {
	case KindBool, KindInt64:
		return name
	default:
		var b strings.Builder
		for _, segment := range strings.Split(name, "_") {
			b.WriteString(titleCaser.String(segment))
		}
		return b.String()
	}
}
