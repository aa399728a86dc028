package sqlite

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"embed"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	sqlitedriver "modernc.org/sqlite"

	"github.com/busraauz/ai-quest-platform/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/busraauz/ai-quest-platform/internal/core/domain"
	"github.com/busraauz/ai-quest-platform/internal/core/ports/driven"
)

// jsonNull is the JSON representation of null.
const jsonNull = "null"

func init() {
	// Registered once per process; every connection of the driver sees it.
	if err := sqlitedriver.RegisterDeterministicScalarFunction("cosine_similarity", 2, cosineFunc); err != nil {
		panic(fmt.Sprintf("sqlite: registering cosine_similarity: %v", err))
	}
}

// Store is a unified SQLite-based storage that provides access to
// all store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.quest/data/quest.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".quest", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "quest.db")

	// WAL lets the HTTP server read while a pipeline writes.
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// SessionStore returns a SessionStore interface backed by this store.
func (s *Store) SessionStore() driven.SessionStore {
	return &sessionStore{store: s}
}

// DocumentStore returns a DocumentStore interface backed by this store.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{store: s}
}

// QuestionStore returns a QuestionStore interface backed by this store.
func (s *Store) QuestionStore() driven.QuestionStore {
	return &questionStore{store: s}
}

// ChunkRetriever returns a ChunkRetriever that searches this store's chunks.
func (s *Store) ChunkRetriever() driven.ChunkRetriever {
	return &documentStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Session Store ====================

// sessionStore implements driven.SessionStore.
type sessionStore struct {
	store *Store
}

var _ driven.SessionStore = (*sessionStore)(nil)

// CreateSession inserts a new session.
func (s *sessionStore) CreateSession(ctx context.Context, session *domain.Session) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO sessions (id, owner_id, title, source_type, question_type, quantity, difficulty, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, session.ID, session.OwnerID, session.Title, string(session.SourceType),
		string(session.QuestionType), session.Quantity, string(session.Difficulty), session.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

// GetSession retrieves a session owned by ownerID.
func (s *sessionStore) GetSession(ctx context.Context, ownerID, id string) (*domain.Session, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, owner_id, title, source_type, question_type, quantity, difficulty, created_at
		FROM sessions WHERE id = ? AND owner_id = ?
	`, id, ownerID)

	var session domain.Session
	var sourceType, questionType, difficulty string
	if err := row.Scan(&session.ID, &session.OwnerID, &session.Title, &sourceType,
		&questionType, &session.Quantity, &difficulty, &session.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning session: %w", err)
	}
	session.SourceType = domain.SourceType(sourceType)
	session.QuestionType = domain.QuestionType(questionType)
	session.Difficulty = domain.Difficulty(difficulty)
	return &session, nil
}

// CreateSeed inserts a question seed placeholder.
func (s *sessionStore) CreateSeed(ctx context.Context, seed *domain.QuestionSeed) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO question_seeds (id, owner_id, session_id, input_mode, seed_text,
			image_path, image_mime, image_size, extracted_text, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, seed.ID, seed.OwnerID, seed.SessionID, string(seed.InputMode), seed.SeedText,
		seed.ImagePath, seed.ImageMime, seed.ImageSize, seed.ExtractedText, seed.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("inserting seed: %w", err)
	}
	return nil
}

// UpdateSeedImage records where a seed's image was stored.
func (s *sessionStore) UpdateSeedImage(ctx context.Context, ownerID, id string, update domain.SeedImageUpdate) error {
	res, err := s.store.db.ExecContext(ctx, `
		UPDATE question_seeds SET image_path = ?, image_mime = ?, image_size = ?
		WHERE id = ? AND owner_id = ?
	`, update.Path, update.Mime, update.Size, id, ownerID)
	if err != nil {
		return fmt.Errorf("updating seed: %w", err)
	}
	return requireRow(res)
}

// GetSeed retrieves a seed owned by ownerID.
func (s *sessionStore) GetSeed(ctx context.Context, ownerID, id string) (*domain.QuestionSeed, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, owner_id, session_id, input_mode, seed_text, image_path, image_mime,
			image_size, extracted_text, created_at
		FROM question_seeds WHERE id = ? AND owner_id = ?
	`, id, ownerID)

	var seed domain.QuestionSeed
	var inputMode string
	if err := row.Scan(&seed.ID, &seed.OwnerID, &seed.SessionID, &inputMode, &seed.SeedText,
		&seed.ImagePath, &seed.ImageMime, &seed.ImageSize, &seed.ExtractedText, &seed.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning seed: %w", err)
	}
	seed.InputMode = domain.InputMode(inputMode)
	return &seed, nil
}

// ==================== Document Store ====================

// documentStore implements driven.DocumentStore and driven.ChunkRetriever.
type documentStore struct {
	store *Store
}

var (
	_ driven.DocumentStore  = (*documentStore)(nil)
	_ driven.ChunkRetriever = (*documentStore)(nil)
)

// CreateDocument inserts a new document row.
func (s *documentStore) CreateDocument(ctx context.Context, doc *domain.Document) error {
	status := doc.Status
	if status == "" {
		status = domain.DocumentUploaded
	}
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO documents (id, owner_id, session_id, filename, storage_path, mime_type,
			extracted_text, status, error_message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, doc.ID, doc.OwnerID, doc.SessionID, doc.Filename, doc.StoragePath, doc.MimeType,
		doc.ExtractedText, string(status), doc.ErrorMessage, doc.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("inserting document: %w", err)
	}
	return nil
}

// GetDocument retrieves a document owned by ownerID.
func (s *documentStore) GetDocument(ctx context.Context, ownerID, id string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, owner_id, session_id, filename, storage_path, mime_type,
			extracted_text, status, error_message, created_at
		FROM documents WHERE id = ? AND owner_id = ?
	`, id, ownerID)

	var doc domain.Document
	var status string
	if err := row.Scan(&doc.ID, &doc.OwnerID, &doc.SessionID, &doc.Filename, &doc.StoragePath,
		&doc.MimeType, &doc.ExtractedText, &status, &doc.ErrorMessage, &doc.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	doc.Status = domain.DocumentStatus(status)
	return &doc, nil
}

// UpdateExtractedText stores the full extracted text of a document.
func (s *documentStore) UpdateExtractedText(ctx context.Context, ownerID, id, text string) error {
	res, err := s.store.db.ExecContext(ctx,
		"UPDATE documents SET extracted_text = ? WHERE id = ? AND owner_id = ?", text, id, ownerID)
	if err != nil {
		return fmt.Errorf("updating extracted text: %w", err)
	}
	return requireRow(res)
}

// UpdateStatus sets the processing status and error message of a document.
func (s *documentStore) UpdateStatus(
	ctx context.Context,
	ownerID, id string,
	status domain.DocumentStatus,
	errMsg string,
) error {
	res, err := s.store.db.ExecContext(ctx,
		"UPDATE documents SET status = ?, error_message = ? WHERE id = ? AND owner_id = ?",
		string(status), errMsg, id, ownerID)
	if err != nil {
		return fmt.Errorf("updating document status: %w", err)
	}
	return requireRow(res)
}

// InsertChunks stores chunks in one transaction.
func (s *documentStore) InsertChunks(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, owner_id, session_id, document_id, chunk_index, content, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.OwnerID, chunk.SessionID, chunk.DocumentID,
			chunk.Index, chunk.Content, float32SliceToBytes(chunk.Embedding)); err != nil {
			return fmt.Errorf("inserting chunk %d: %w", chunk.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// UpdateEmbeddings stores the embedding of each chunk, keyed by chunk ID.
func (s *documentStore) UpdateEmbeddings(
	ctx context.Context,
	ownerID string,
	embeddings map[string][]float32,
) (int, error) {
	if len(embeddings) == 0 {
		return 0, nil
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, "UPDATE chunks SET embedding = ? WHERE id = ? AND owner_id = ?")
	if err != nil {
		return 0, fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	updated := 0
	for id, vec := range embeddings {
		res, err := stmt.ExecContext(ctx, float32SliceToBytes(vec), id, ownerID)
		if err != nil {
			return 0, fmt.Errorf("updating embedding for chunk %s: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("reading rows affected: %w", err)
		}
		updated += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return updated, nil
}

// GetChunks returns a document's chunks ordered by index.
func (s *documentStore) GetChunks(ctx context.Context, ownerID, documentID string) ([]domain.Chunk, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, owner_id, session_id, document_id, chunk_index, content, embedding
		FROM chunks WHERE owner_id = ? AND document_id = ?
		ORDER BY chunk_index
	`, ownerID, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		var chunk domain.Chunk
		var embeddingBlob []byte
		if err := rows.Scan(&chunk.ID, &chunk.OwnerID, &chunk.SessionID, &chunk.DocumentID,
			&chunk.Index, &chunk.Content, &embeddingBlob); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		chunk.Embedding = bytesToFloat32Slice(embeddingBlob)
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return chunks, nil
}

// MatchChunks scores the scoped document's embedded chunks inside SQLite and
// returns the k best, ties broken by chunk index.
func (s *documentStore) MatchChunks(
	ctx context.Context,
	scope domain.ChunkScope,
	query []float32,
	k int,
) ([]domain.RetrievedChunk, error) {
	if k <= 0 {
		return nil, nil
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, chunk_index, content, cosine_similarity(embedding, ?) AS similarity
		FROM chunks
		WHERE owner_id = ? AND document_id = ? AND embedding IS NOT NULL
		ORDER BY similarity DESC, chunk_index ASC
		LIMIT ?
	`, float32SliceToBytes(query), scope.OwnerID, scope.DocumentID, k)
	if err != nil {
		return nil, fmt.Errorf("matching chunks: %w", err)
	}
	defer rows.Close()

	var hits []domain.RetrievedChunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		var hit domain.RetrievedChunk
		if err := rows.Scan(&hit.ChunkID, &hit.Index, &hit.Content, &hit.Similarity); err != nil {
			return nil, fmt.Errorf("scanning match: %w", err)
		}
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating matches: %w", err)
	}
	return hits, nil
}

// ==================== Helper Functions ====================

// cosineFunc implements cosine_similarity(a, b) over two float32 blobs.
// NULL or malformed input scores 0.
func cosineFunc(_ *sqlitedriver.FunctionContext, args []driver.Value) (driver.Value, error) {
	a, okA := args[0].([]byte)
	b, okB := args[1].([]byte)
	if !okA || !okB || len(a)%4 != 0 || len(b)%4 != 0 {
		return 0.0, nil
	}
	return domain.CosineSimilarity(bytesToFloat32Slice(a), bytesToFloat32Slice(b)), nil
}

// requireRow maps an UPDATE that touched nothing to domain.ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// nullString converts an empty string to SQL NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
