// Package domain defines the core business entities for quest.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Session: One generation request and its parameters
//   - Document: An uploaded PDF and its extracted text
//   - Chunk: A retrievable slice of document text
//   - QuestionSeed: An uploaded image of an existing question
//   - Question: A generated, persisted question
//   - QuestionVersion: One entry of a question's edit history
//
// It also defines the error taxonomy shared by every layer.
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
