// Package hir defines the front-end intermediate representation: the
// tree handed to the lowering pipeline by semantic analysis.
//
// This is the richest vocabulary in the compiler. It still contains
// exceptions (raise, try/except), first-class sets, list and set
// comprehensions, short-circuit boolean operators and multi-value
// pattern matching. Every later stage removes some of these until only
// constructs with a direct template-metaprogramming mapping remain:
//
//	[hir] → desugar → [mir] → normalize → [lir] → tmplgen → [tmpl] → emit
//
// The package contains type definitions and small structural helpers
// only. The pipeline consumes hir; nothing in this repository produces
// it except the loader (and tests).
//
// SEALED INTERFACES:
//
// ExprType, Expr and Stmt are sealed interfaces using the marker method
// pattern. Only types in this package implement them. This enables
// exhaustive type switches in the lowering passes: a default arm there
// signals an internal compiler defect, not a user error, because input
// modules are type-checked before they reach the pipeline.
//
// Expressions are immutable trees with single-parent ownership. The one
// exception is VarReference, which is a lightweight name+type value,
// not a pointer into a shared table; copying one is free and carries no
// aliasing.
package hir
