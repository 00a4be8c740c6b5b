// Package compiler turns policy source into the intermediate policy
// representation. DSL source compiles deterministically through the PDL
// toolchain; free-text source goes through a lossless, non-inventive
// extractor that reports confidence and warnings instead of guessing.
//
// The extraction vocabulary is a policy choice, not a correctness
// requirement, so the extractor sits behind the Extractor interface and
// the default implementation takes its vocabulary as data.
package compiler
