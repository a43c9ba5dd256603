// Package mir defines the mid-level intermediate representation: the
// output vocabulary of the desugar pass.
//
// Compared to the front-end IR, mir has:
//
//   - no raise and no try/except: a function that may fail communicates
//     failure through a parallel error channel (ReturnStmt carries a
//     result slot and an error slot; exactly one is populated at every
//     return, never both)
//   - no short-circuit boolean operators
//   - no comprehension sugar: a ListComprehension's per-element logic
//     is already outlined into a named function, and the node only
//     records the call
//   - no first-class sets: sets are list-backed, with explicit
//     conversion, membership and order-insensitive equality operations
//   - A-normal form: every operand of every expression is a
//     VarReference, so evaluation order is the statement order
//
// The result/error exclusivity invariant is the single most important
// correctness property of the pipeline; every transformation that
// introduces new intermediate functions must preserve it.
//
// Expr, Stmt, ExprType and TopLevel are sealed interfaces (marker
// method pattern), consumed by exhaustive type switches downstream.
package mir
