// Package domain defines the core business entities for syllabus matching.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - SyllabusRecord: Fields extracted from one uploaded syllabus
//   - Signature: The canonical identity of a course offering
//   - Embedding: A unit-length vector tied 1:1 to a Signature
//   - MatchCandidate: One scored comparison against the corpus
//   - Decision: The join/create/confirm recommendation for an upload
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
