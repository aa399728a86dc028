package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/busraauz/ai-quest-platform/internal/core/domain"
	"github.com/busraauz/ai-quest-platform/internal/core/ports/driven"
)

// questionStore implements driven.QuestionStore.
type questionStore struct {
	store *Store
}

var _ driven.QuestionStore = (*questionStore)(nil)

const questionColumns = `id, owner_id, session_id, document_id, source_type, question_type,
	question_text, options, correct_answer, explanation, tags, confidence_score, created_at`

// InsertQuestions stores all questions in one transaction.
func (s *questionStore) InsertQuestions(ctx context.Context, questions []domain.Question) error {
	if len(questions) == 0 {
		return nil
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO questions (`+questionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i := range questions {
		q := &questions[i]
		options, err := marshalNullable(q.Options)
		if err != nil {
			return fmt.Errorf("marshalling options: %w", err)
		}
		tags, err := marshalNullable(q.Tags)
		if err != nil {
			return fmt.Errorf("marshalling tags: %w", err)
		}
		var confidence sql.NullFloat64
		if q.ConfidenceScore != nil {
			confidence = sql.NullFloat64{Float64: *q.ConfidenceScore, Valid: true}
		}

		if _, err := stmt.ExecContext(ctx, q.ID, q.OwnerID, q.SessionID, nullString(q.DocumentID),
			string(q.SourceType), string(q.QuestionType), q.QuestionText, options,
			q.CorrectAnswer, q.Explanation, tags, confidence, q.CreatedAt.UTC()); err != nil {
			return fmt.Errorf("inserting question %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetQuestion retrieves a question by ID regardless of owner.
func (s *questionStore) GetQuestion(ctx context.Context, id string) (*domain.Question, error) {
	rows, err := s.store.db.QueryContext(ctx, "SELECT "+questionColumns+" FROM questions WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("querying question: %w", err)
	}
	defer rows.Close()

	questions, err := scanQuestions(rows)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, domain.ErrNotFound
	}
	return &questions[0], nil
}

// ListBySession returns a session's questions, newest first.
func (s *questionStore) ListBySession(ctx context.Context, ownerID, sessionID string) ([]domain.Question, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+questionColumns+` FROM questions
		WHERE owner_id = ? AND session_id = ?
		ORDER BY created_at DESC, rowid ASC
	`, ownerID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying session questions: %w", err)
	}
	defer rows.Close()
	return scanQuestions(rows)
}

// ListRecent returns at most limit of the owner's questions, newest first.
// A limit of zero or less returns every question.
func (s *questionStore) ListRecent(ctx context.Context, ownerID string, limit int) ([]domain.Question, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+questionColumns+` FROM questions
		WHERE owner_id = ?
		ORDER BY created_at DESC, rowid ASC
		LIMIT ?
	`, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent questions: %w", err)
	}
	defer rows.Close()
	return scanQuestions(rows)
}

// LatestVersion returns the highest version of a question.
func (s *questionStore) LatestVersion(ctx context.Context, questionID string) (*domain.QuestionVersion, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, question_id, owner_id, version, instruction, content, created_at
		FROM question_versions WHERE question_id = ?
		ORDER BY version DESC LIMIT 1
	`, questionID)
	if err != nil {
		return nil, fmt.Errorf("querying latest version: %w", err)
	}
	defer rows.Close()

	versions, err := scanVersions(rows)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, domain.ErrNotFound
	}
	return &versions[0], nil
}

// InsertVersion appends a version. The insert is conditional on the
// (question_id, version) pair being free; losing that race writes nothing and
// returns *domain.VersionConflictError.
func (s *questionStore) InsertVersion(ctx context.Context, version *domain.QuestionVersion) error {
	content, err := json.Marshal(version.Content)
	if err != nil {
		return fmt.Errorf("marshalling version content: %w", err)
	}

	res, err := s.store.db.ExecContext(ctx, `
		INSERT INTO question_versions (id, question_id, owner_id, version, instruction, content, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(question_id, version) DO NOTHING
	`, version.ID, version.QuestionID, version.OwnerID, version.Version,
		version.Instruction, string(content), version.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("inserting version: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading rows affected: %w", err)
	}
	if n == 0 {
		return &domain.VersionConflictError{QuestionID: version.QuestionID, Version: version.Version}
	}
	return nil
}

// ListVersions returns a question's versions, highest first.
func (s *questionStore) ListVersions(ctx context.Context, questionID string) ([]domain.QuestionVersion, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, question_id, owner_id, version, instruction, content, created_at
		FROM question_versions WHERE question_id = ?
		ORDER BY version DESC
	`, questionID)
	if err != nil {
		return nil, fmt.Errorf("querying versions: %w", err)
	}
	defer rows.Close()

	versions, err := scanVersions(rows)
	if err != nil {
		return nil, err
	}
	if versions == nil {
		versions = []domain.QuestionVersion{}
	}
	return versions, nil
}

// scanQuestions scans question rows selected with questionColumns.
func scanQuestions(rows *sql.Rows) ([]domain.Question, error) {
	var questions []domain.Question //nolint:prealloc // size unknown from query
	for rows.Next() {
		var q domain.Question
		var documentID, options, tags sql.NullString
		var confidence sql.NullFloat64
		var sourceType, questionType string

		if err := rows.Scan(&q.ID, &q.OwnerID, &q.SessionID, &documentID, &sourceType, &questionType,
			&q.QuestionText, &options, &q.CorrectAnswer, &q.Explanation, &tags, &confidence,
			&q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning question: %w", err)
		}

		q.DocumentID = documentID.String
		q.SourceType = domain.SourceType(sourceType)
		q.QuestionType = domain.QuestionType(questionType)
		if err := unmarshalNullable(options, &q.Options); err != nil {
			return nil, fmt.Errorf("unmarshaling options: %w", err)
		}
		if err := unmarshalNullable(tags, &q.Tags); err != nil {
			return nil, fmt.Errorf("unmarshaling tags: %w", err)
		}
		if confidence.Valid {
			score := confidence.Float64
			q.ConfidenceScore = &score
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating questions: %w", err)
	}
	return questions, nil
}

// scanVersions scans question_versions rows.
func scanVersions(rows *sql.Rows) ([]domain.QuestionVersion, error) {
	var versions []domain.QuestionVersion //nolint:prealloc // size unknown from query
	for rows.Next() {
		var v domain.QuestionVersion
		var content string
		if err := rows.Scan(&v.ID, &v.QuestionID, &v.OwnerID, &v.Version,
			&v.Instruction, &content, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning version: %w", err)
		}
		if err := json.Unmarshal([]byte(content), &v.Content); err != nil {
			return nil, fmt.Errorf("unmarshaling version content: %w", err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating versions: %w", err)
	}
	return versions, nil
}

// marshalNullable stores nil maps as SQL NULL.
func marshalNullable[M ~map[string]V, V any](m M) (sql.NullString, error) {
	if m == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// unmarshalNullable decodes a JSON column, leaving dst nil for NULL.
func unmarshalNullable(src sql.NullString, dst any) error {
	if !src.Valid || src.String == "" || src.String == jsonNull {
		return nil
	}
	return json.Unmarshal([]byte(src.String), dst)
}
