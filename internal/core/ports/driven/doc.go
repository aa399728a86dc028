// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Model Interfaces
//
//   - ChatModel: Chat completion with optional inline images
//   - EmbeddingService: Text to vector embeddings
//
// # Storage Interfaces
//
//   - SessionStore: Sessions and question seeds
//   - DocumentStore: Documents, chunks and chunk embeddings
//   - QuestionStore: Questions and their version history
//   - ChunkRetriever: Owner and document scoped similarity search
//   - ChunkIndexer: Optional, for retrievers with their own vector copy
//   - BlobStore: Uploaded file bytes
//
// # Support Interfaces
//
//   - TextExtractor: PDF to plain text
//   - PromptStore: Editable prompt templates
//   - ConfigStore: Application configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
