// Package pipeline runs the full compilation: front-end tree in, C++
// source text out.
//
// The passes run strictly in sequence over in-memory trees, sharing
// one identifier generator so that every synthesized name is unique
// across the whole compilation. There is no I/O and no concurrency
// here; callers that want caching or file handling wrap this package.
package pipeline
