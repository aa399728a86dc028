package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Request limits.
const (
	DefaultDocumentQuantity = 10
	MaxDocumentQuantity     = 50

	MaxSimilarQuantity     = 20
	MinSimilarInstruction  = 3
	MaxSimilarInstruction  = 2000
	MinRefineInstruction   = 2
	MaxRefineInstruction   = 500
	DefaultSimilarQuantity = 10
)

// DocumentGenerateRequest asks for questions generated from a PDF.
type DocumentGenerateRequest struct {
	Filename     string
	Data         []byte
	Quantity     int
	QuestionType QuestionType
}

// Normalise applies defaults and validates the request.
func (r *DocumentGenerateRequest) Normalise() error {
	if r.Quantity == 0 {
		r.Quantity = DefaultDocumentQuantity
	}
	if r.QuestionType == "" {
		r.QuestionType = QuestionMCQ
	}
	if r.Filename == "" {
		r.Filename = "document.pdf"
	}
	if len(r.Data) == 0 {
		return fmt.Errorf("%w: empty file", ErrInvalidInput)
	}
	if r.Quantity < 1 || r.Quantity > MaxDocumentQuantity {
		return fmt.Errorf("%w: quantity must be between 1 and %d", ErrInvalidInput, MaxDocumentQuantity)
	}
	if !r.QuestionType.IsValid() {
		return fmt.Errorf("%w: question_type must be mcq or open", ErrInvalidInput)
	}
	return nil
}

// DocumentGenerateResult is returned by document generation.
type DocumentGenerateResult struct {
	SessionID  string     `json:"session_id"`
	DocumentID string     `json:"document_id"`
	Questions  []Question `json:"questions"`
}

// SimilarGenerateRequest asks for questions cloned from an image of a question.
type SimilarGenerateRequest struct {
	Image       []byte
	ImageMime   string
	Instruction string
	Quantity    int
	Difficulty  Difficulty
}

// Normalise applies defaults and validates the request.
func (r *SimilarGenerateRequest) Normalise() error {
	if r.Quantity == 0 {
		r.Quantity = DefaultSimilarQuantity
	}
	if r.Difficulty == "" {
		r.Difficulty = DifficultyEasy
	}
	if r.ImageMime == "" {
		r.ImageMime = "image/png"
	}
	r.Instruction = strings.TrimSpace(r.Instruction)
	if len(r.Image) == 0 {
		return fmt.Errorf("%w: empty image", ErrInvalidInput)
	}
	if !strings.HasPrefix(r.ImageMime, "image/") {
		return fmt.Errorf("%w: unsupported image type %q", ErrInvalidInput, r.ImageMime)
	}
	n := utf8.RuneCountInString(r.Instruction)
	if n < MinSimilarInstruction || n > MaxSimilarInstruction {
		return fmt.Errorf("%w: instruction must be between %d and %d characters",
			ErrInvalidInput, MinSimilarInstruction, MaxSimilarInstruction)
	}
	if r.Quantity < 1 || r.Quantity > MaxSimilarQuantity {
		return fmt.Errorf("%w: quantity must be between 1 and %d", ErrInvalidInput, MaxSimilarQuantity)
	}
	if !r.Difficulty.IsValid() {
		return fmt.Errorf("%w: difficulty must be easy, medium or hard", ErrInvalidInput)
	}
	return nil
}

// SimilarGenerateResult is returned by similarity generation.
type SimilarGenerateResult struct {
	SessionID string     `json:"session_id"`
	Questions []Question `json:"questions"`
}

// ValidateRefineInstruction checks the length bounds of a refinement instruction.
func ValidateRefineInstruction(instruction string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(instruction))
	if n < MinRefineInstruction || n > MaxRefineInstruction {
		return fmt.Errorf("%w: instruction must be between %d and %d characters",
			ErrInvalidInput, MinRefineInstruction, MaxRefineInstruction)
	}
	return nil
}

// RefineResult is returned by a refinement.
type RefineResult struct {
	QuestionID string          `json:"question_id"`
	Version    int             `json:"version"`
	Question   QuestionContent `json:"question"`
}
