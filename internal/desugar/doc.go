// Package desugar is the first lowering pass: it turns the front-end
// representation (internal/hir) into the mid-level one (internal/mir).
//
// Everything exception-shaped disappears here. Raises become error
// returns or direct handler calls, try/except blocks split into
// continuation and handler functions, and every call into a
// possibly-failing function is expanded into an error check that
// dispatches to the innermost matching handler or propagates. A
// synthesized is_error function, created once per module before any
// user code, performs the error test.
//
// The pass also rewrites boolean and/or into if/else, outlines match
// arms and comprehension bodies into their own functions, lowers set
// literals onto lists, and brings the whole module into A-normal form:
// every composite expression is bound to a fresh variable drawn from
// the compilation-wide identifier generator.
//
// Local identifiers are obfuscated through a per-function memo so that
// names bound by match patterns can be spliced into pattern strings
// without colliding with anything the user wrote.
package desugar
