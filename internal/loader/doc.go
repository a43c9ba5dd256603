// Package loader deserializes a CUE description of a front-end module
// into hir trees.
//
// The CUE surface is a direct encoding of the hir vocabulary: a module
// declares custom types, functions and module-level assertions, and
// every expression is a one-label struct naming its node kind. The
// loader resolves names against the declared functions and the
// surrounding bindings so that each node comes out carrying its static
// type, but it performs no semantic analysis beyond that resolution:
// the input is trusted to be a well-typed tree.
package loader
