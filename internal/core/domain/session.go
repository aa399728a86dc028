package domain

import "time"

// Session groups the questions produced by one generation request.
type Session struct {
	ID           string       `json:"id"`
	OwnerID      string       `json:"owner_id"`
	Title        string       `json:"title"`
	SourceType   SourceType   `json:"source_type"`
	QuestionType QuestionType `json:"question_type,omitempty"`
	Quantity     int          `json:"quantity"`
	Difficulty   Difficulty   `json:"difficulty,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}

// InputMode records what a QuestionSeed was created from.
type InputMode string

// Seed input modes.
const (
	InputText  InputMode = "text"
	InputImage InputMode = "image"
)

// QuestionSeed is the similarity-path analogue of Document: the uploaded
// image of an existing question plus any text taken from it.
// It is inserted as a placeholder and updated once the image is stored.
type QuestionSeed struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"owner_id"`
	SessionID     string    `json:"session_id"`
	InputMode     InputMode `json:"input_mode"`
	SeedText      string    `json:"seed_text,omitempty"`
	ImagePath     string    `json:"seed_image_path,omitempty"`
	ImageMime     string    `json:"seed_image_mime,omitempty"`
	ImageSize     int64     `json:"seed_image_size,omitempty"`
	ExtractedText string    `json:"extracted_text,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// SeedImageUpdate is the patch applied to a seed once its image is stored.
type SeedImageUpdate struct {
	Path string
	Mime string
	Size int64
}

// SessionSummary groups a session's questions for the recent-activity view.
type SessionSummary struct {
	SessionID    string       `json:"session_id"`
	SourceType   SourceType   `json:"source_type"`
	QuestionType QuestionType `json:"question_type"`
	Quantity     int          `json:"quantity"`
	CreatedAt    time.Time    `json:"created_at"`
	Questions    []Question   `json:"questions"`
}
