// Package normalize is the second lowering pass: it turns the
// mid-level representation (internal/mir) into the normalized one
// (internal/lir).
//
// The pass erases the list/set vocabulary. Every collection operation
// becomes an instantiation of a named runtime-library template, with
// the template chosen from the element kind (BoolList vs Int64List vs
// List, AddToBoolSet vs AddToInt64Set vs AddToTypeSet, and so on), plus
// a member access reading the instantiation's `type` or `value`
// member. The same element-kind choice picks the backing transform
// template for comprehensions. Custom-type constructor calls become
// direct template instantiations. List types erase to the type-value
// type.
//
// The pass creates no new functions and no new variables; it is a
// node-for-node rewrite.
package normalize
