// Package pptx implements the slide-content mapping and update engine.
//
// A .pptx file is a ZIP package of XML parts. This package treats each
// slide part as a sequence of paragraph/run/text fragments and table
// row/cell structures located by structural pattern matching, not by a
// full schema-validating parser. That keeps the engine tolerant of the
// attribute noise real decks accumulate, while the typed spans returned
// by the tokenizer let every mapper edit cells in place without
// corrupting the surrounding formatting markup.
//
// The package is pure and CPU-bound: callers hand it bytes and data,
// it hands back bytes and an audit of what it changed. All I/O lives
// in the connector and adapter layers.
package pptx
