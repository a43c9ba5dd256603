// Package tmpl models generated C++ template code structurally: kinds,
// template definitions with a main definition and partial
// specializations, and the small expression and body-element
// vocabularies that appear inside them.
//
// Nothing here is text. The model is produced by internal/tmplgen and
// serialized by internal/emit; keeping the two apart means generation
// decisions (which helper templates exist, which specialization is the
// main definition, where static asserts anchor) are testable without
// string comparisons.
package tmpl
