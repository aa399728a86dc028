package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden indicates the entity exists but belongs to another owner.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoChunks indicates the extracted text produced no chunks to embed.
	ErrNoChunks = errors.New("no chunks extracted from document")

	// ErrLLMUnavailable indicates the chat model is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrRateLimited indicates the provider rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)

// ExtractionError reports an unreadable, encrypted or corrupt source document.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("text extraction failed: %v", e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// DimensionMismatchError reports an embedding whose width differs from the
// configured vector dimension. It is a configuration error and never retried.
type DimensionMismatchError struct {
	Expected int
	Got      int
	Index    int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("embedding %d has dimension %d, expected %d", e.Index, e.Got, e.Expected)
}

// ParseError reports model output that is not exactly one JSON value.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid JSON: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// SchemaValidationError reports JSON that parsed but violates the question contract.
// Path locates the offending value, e.g. "questions[1].options.C".
type SchemaValidationError struct {
	Path       string
	Constraint string
}

func (e *SchemaValidationError) Error() string {
	if e.Path == "" {
		return "schema validation failed: " + e.Constraint
	}
	return fmt.Sprintf("schema validation failed at %s: %s", e.Path, e.Constraint)
}

// AgentExhaustedError reports that every attempt of an agent run failed.
// LastErr is the final parse, validation or transport error.
type AgentExhaustedError struct {
	Agent    string
	Attempts int
	LastErr  error
}

func (e *AgentExhaustedError) Error() string {
	return fmt.Sprintf("%s agent failed after %d attempts: %v", e.Agent, e.Attempts, e.LastErr)
}

func (e *AgentExhaustedError) Unwrap() error { return e.LastErr }

// VersionConflictError reports that another refinement already appended Version.
type VersionConflictError struct {
	QuestionID string
	Version    int
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("question %s already has version %d", e.QuestionID, e.Version)
}

// Stable error kinds exposed to callers.
const (
	KindInvalidInput      = "invalid_input"
	KindNotFound          = "not_found"
	KindForbidden         = "forbidden"
	KindExtractionFailed  = "extraction_failed"
	KindNoChunks          = "no_chunks"
	KindDimensionMismatch = "dimension_mismatch"
	KindAgentExhausted    = "agent_exhausted"
	KindVersionConflict   = "version_conflict"
	KindUnavailable       = "unavailable"
	KindInternal          = "internal"
)

// ErrorKind classifies err into one of the stable error kinds.
func ErrorKind(err error) string {
	var (
		extractErr  *ExtractionError
		dimErr      *DimensionMismatchError
		agentErr    *AgentExhaustedError
		conflictErr *VersionConflictError
	)

	// Agent exhaustion wraps parse and schema errors, so it is checked first.
	switch {
	case err == nil:
		return ""
	case errors.As(err, &agentErr):
		return KindAgentExhausted
	case errors.As(err, &extractErr):
		return KindExtractionFailed
	case errors.As(err, &dimErr):
		return KindDimensionMismatch
	case errors.As(err, &conflictErr):
		return KindVersionConflict
	case errors.Is(err, ErrNoChunks):
		return KindNoChunks
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrLLMUnavailable), errors.Is(err, ErrEmbeddingUnavailable):
		return KindUnavailable
	default:
		return KindInternal
	}
}
