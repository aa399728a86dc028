package domain

import (
	"slices"
	"time"
)

// QuestionType is the discriminant of a generated question's shape.
type QuestionType string

// Supported question types.
const (
	// QuestionMCQ is a multiple choice question with options A-D.
	QuestionMCQ QuestionType = "mcq"

	// QuestionOpen is a free-response question without options.
	QuestionOpen QuestionType = "open"
)

// IsValid returns true if the question type is recognised.
func (t QuestionType) IsValid() bool {
	return t == QuestionMCQ || t == QuestionOpen
}

// String returns the string representation.
func (t QuestionType) String() string {
	return string(t)
}

// SourceType records which pipeline produced a question.
type SourceType string

// Question source types.
const (
	SourceDocument   SourceType = "document"
	SourceSimilarity SourceType = "similarity"
)

// Difficulty is the requested difficulty for similarity generation.
type Difficulty string

// Supported difficulties.
const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// IsValid returns true if the difficulty is recognised.
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	default:
		return false
	}
}

// OptionKeys are the exact option letters of a multiple choice question, in order.
var OptionKeys = []string{"A", "B", "C", "D"}

// IsOptionKey reports whether s is one of A, B, C or D.
func IsOptionKey(s string) bool {
	return slices.Contains(OptionKeys, s)
}

// QuestionContent is the editable body of a question.
// It is the shape the agents produce and the shape stored in each QuestionVersion.
//
// When QuestionType is mcq, Options holds exactly A-D and CorrectAnswer is one of them.
// When QuestionType is open, Options is nil and CorrectAnswer is free text.
type QuestionContent struct {
	QuestionType    QuestionType      `json:"question_type"`
	QuestionText    string            `json:"question_text"`
	Options         map[string]string `json:"options"`
	CorrectAnswer   string            `json:"correct_answer"`
	Explanation     string            `json:"explanation"`
	Tags            map[string]any    `json:"tags"`
	ConfidenceScore *float64          `json:"confidence_score"`
}

// Question is a persisted generated question.
type Question struct {
	QuestionContent

	// ID is the unique identifier for the question.
	ID string `json:"id"`

	// OwnerID is the user the question was generated for.
	OwnerID string `json:"owner_id"`

	// SessionID links to the generation Session.
	SessionID string `json:"session_id"`

	// DocumentID is set for questions generated from a document.
	DocumentID string `json:"document_id,omitempty"`

	// SourceType is the pipeline that produced the question.
	SourceType SourceType `json:"source_type"`

	// CreatedAt is when the question was stored.
	CreatedAt time.Time `json:"created_at"`
}

// SeedInstruction is the instruction recorded on the lazily created version 1,
// which is a verbatim snapshot of the question before its first refinement.
const SeedInstruction = "__seed__"

// QuestionVersion is one entry of a question's append-only edit history.
type QuestionVersion struct {
	ID          string          `json:"id"`
	QuestionID  string          `json:"question_id"`
	OwnerID     string          `json:"owner_id"`
	Version     int             `json:"version"`
	Instruction string          `json:"instruction"`
	Content     QuestionContent `json:"content"`
	CreatedAt   time.Time       `json:"created_at"`
}
