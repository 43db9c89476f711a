// Package domain defines the core business entities for slipdeck.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - PlacementData: Structured data extracted from a placement slip
//   - SlideSignature: Content patterns identifying a logical slide type
//   - DetectionReport: Result of mapping slide types to physical slides
//   - UpdateResult: Full audit of a document update run
//   - Campaign / Recipient: Outbound mail campaign state
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
