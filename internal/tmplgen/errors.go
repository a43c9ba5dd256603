package tmplgen

import "fmt"

// AssertAnchorError reports an assertion that cannot be deferred to
// instantiation time: its condition is constant and the enclosing
// function has no bool or type parameter to anchor it to. This is a
// user-actionable error, unlike the internal invariant failures the
// generator reports for malformed input trees.
type AssertAnchorError struct {
	Function string
}

func (e *AssertAnchorError) Error() string {
	return fmt.Sprintf(
		"cannot defer an assertion in %s to instantiation time: the condition is constant and %s has no bool or type parameters; reference one of the function's parameters in the assertion or move it out of the function",
		e.Function, e.Function)
}
