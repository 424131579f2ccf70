// Package domain defines the core entities of the canvai retrieval engine.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Record: One row of an exported LMS table
//   - Document: A retrievable unit of text with provenance metadata
//   - IndexStore: A named, persisted collection of vector/document pairs
//   - QueryPlan: The structured interpretation of a natural-language question
//   - IdentifierSet: Course codes, assignment references and numbers in a query
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
