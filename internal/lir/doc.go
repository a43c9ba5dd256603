// Package lir defines the low-level intermediate representation produced
// by representation normalization (internal/normalize) and consumed by
// template generation (internal/tmplgen).
//
// At this level the set/list vocabulary of internal/mir is gone: every
// collection operation has been rewritten into an instantiation of a
// named runtime-library template (BoolList, TypeListConcat, AddToInt64Set
// and so on) plus a class member access reading its `type` or `value`
// member. List and set types have been erased to the type-value type.
// Custom-type constructor calls are direct template instantiations.
//
// What survives from mir unchanged: ANF statements, the result+error
// return channels, match expressions and comprehensions (the latter now
// carrying the backing transform template name), and the sealed-interface
// shape of every union.
package lir
