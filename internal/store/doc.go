// Package store is the compile cache: a SQLite database mapping the
// BLAKE3 hash of a module's source to the compiler's emitted output,
// stored xz-compressed.
//
// The cache is a pure lookaside: a hit returns the stored text, a miss
// compiles and stores. Entries are immutable once written; writing the
// same source hash twice is a no-op.
package store
