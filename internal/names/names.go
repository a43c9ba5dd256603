package names

import "strconv"

// Generator produces identifiers that are unique across one whole
// compilation. Every pass that synthesizes helper functions, fresh
// variables or helper templates draws from the same Generator, so no
// two synthesized names can ever collide.
//
// The zero value is not usable; call NewGenerator.
type Generator struct {
	prefix string
	next   int
}

// NewGenerator creates a Generator for a single compilation.
func NewGenerator() *Generator {
	return &Generator{prefix: "tmppy_internal_"}
}

// Next returns a fresh identifier. Identifiers are valid both as source
// names and, after the kind-directed transform, as C++ identifiers.
func (g *Generator) Next() string {
	id := g.prefix + strconv.Itoa(g.next)
	g.next++
	return id
}

// Count returns how many identifiers have been handed out so far.
func (g *Generator) Count() int {
	return g.next
}

// Obfuscator memoizes the mapping from user-visible identifiers to
// generated opaque names. The mapping is scoped to the compilation of a
// single source function: repeated references to the same source name
// yield the same generated name, and two Obfuscators never share state.
//
// Global function names are never run through an Obfuscator; they must
// stay linkable by name across scopes.
type Obfuscator struct {
	gen    *Generator
	byName map[string]string
}

// NewObfuscator creates an Obfuscator drawing fresh names from gen.
func NewObfuscator(gen *Generator) *Obfuscator {
	return &Obfuscator{
		gen:    gen,
		byName: make(map[string]string),
	}
}

// Obfuscate returns the generated name for a source identifier,
// allocating one on first use.
func (o *Obfuscator) Obfuscate(name string) string {
	if mapped, ok := o.byName[name]; ok {
		return mapped
	}
	mapped := o.gen.Next()
	o.byName[name] = mapped
	return mapped
}
