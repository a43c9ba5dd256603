// Package tmplgen generates the C++ template model from a normalized
// module.
//
// Each function becomes a class template whose body is a sequence of
// constant definitions, type aliases and static asserts ending in the
// result member (`value` for bool and int64 results, `type` otherwise)
// and, for functions carrying an error channel, a `using error` member.
// Branches and match expressions become synthesized dispatch templates
// specialized per outcome; assignment of a function-valued expression
// recurses into a nested template parameterized by that function's
// argument list.
//
// Static asserts whose condition does not mention a template parameter
// would be evaluated at template definition time, before any caller
// instantiates the function. Such asserts are anchored to the first
// bool or type parameter through AlwaysTrueFromBool/AlwaysTrueFromType;
// when no such parameter exists the generation fails with an
// AssertAnchorError naming the function.
package tmplgen
