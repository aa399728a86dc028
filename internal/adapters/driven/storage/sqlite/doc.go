// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO. A single database connection backs several stores:
//
//   - SessionStore: sessions and question seeds
//   - DocumentStore: documents, chunks and chunk embeddings
//   - QuestionStore: generated questions and their version history
//   - ChunkRetriever: cosine similarity search over one document's chunks
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Similarity
//
// The store registers a cosine_similarity(a, b) SQL function so that chunk
// scoring, ordering and the LIMIT run inside the query.
//
// # Data Location
//
// By default, the database is stored at ~/.quest/data/quest.db
package sqlite
