// Package api provides the HTTP driving adapter: a JSON API over the
// generation, refinement and question services.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/busraauz/ai-quest-platform/internal/core/domain"
	"github.com/busraauz/ai-quest-platform/internal/core/ports/driving"
)

// DefaultMaxUploadBytes bounds multipart uploads.
const DefaultMaxUploadBytes = 50 << 20

// Services holds the driving ports the API exposes.
type Services struct {
	Documents  driving.DocumentGenerationService
	Similar    driving.SimilarGenerationService
	Refinement driving.RefinementService
	Questions  driving.QuestionService
}

// Validate checks that every service is present.
func (s *Services) Validate() error {
	if s == nil || s.Documents == nil || s.Similar == nil || s.Refinement == nil || s.Questions == nil {
		return errors.New("api: all services are required")
	}
	return nil
}

// Handler serves the API endpoints.
type Handler struct {
	services       *Services
	maxUploadBytes int64
}

// NewHandler creates a handler over services.
func NewHandler(services *Services) (*Handler, error) {
	if err := services.Validate(); err != nil {
		return nil, err
	}
	return &Handler{services: services, maxUploadBytes: DefaultMaxUploadBytes}, nil
}

// Root answers GET /.
func (h *Handler) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to the Quest API"})
}

// Health answers GET /health.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// GenerateFromDocument handles POST /api/documents/generate
// (multipart: file, quantity, question_type).
func (h *Handler) GenerateFromDocument(w http.ResponseWriter, r *http.Request) {
	if err := h.parseMultipart(w, r); err != nil {
		writeError(w, err)
		return
	}

	data, header, err := readFormFile(r, "file")
	if err != nil {
		writeError(w, err)
		return
	}
	quantity, err := formInt(r, "quantity")
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := h.services.Documents.Generate(r.Context(), ownerFrom(r.Context()), domain.DocumentGenerateRequest{
		Filename:     header.Filename,
		Data:         data,
		Quantity:     quantity,
		QuestionType: domain.QuestionType(r.FormValue("question_type")),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// GenerateSimilar handles POST /api/similar/generate
// (multipart: image, instruction, quantity, difficulty).
func (h *Handler) GenerateSimilar(w http.ResponseWriter, r *http.Request) {
	if err := h.parseMultipart(w, r); err != nil {
		writeError(w, err)
		return
	}

	data, header, err := readFormFile(r, "image")
	if err != nil {
		writeError(w, err)
		return
	}
	quantity, err := formInt(r, "quantity")
	if err != nil {
		writeError(w, err)
		return
	}

	mime := header.Header.Get("Content-Type")
	if mime == "" || mime == "application/octet-stream" {
		mime = http.DetectContentType(data)
	}

	result, err := h.services.Similar.Generate(r.Context(), ownerFrom(r.Context()), domain.SimilarGenerateRequest{
		Image:       data,
		ImageMime:   mime,
		Instruction: r.FormValue("instruction"),
		Quantity:    quantity,
		Difficulty:  domain.Difficulty(r.FormValue("difficulty")),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

type refineRequest struct {
	Instruction string `json:"instruction"`
}

// Refine handles POST /api/refine/{question_id} with body {"instruction": "..."}.
func (h *Handler) Refine(w http.ResponseWriter, r *http.Request) {
	questionID, err := pathID(r, "question_id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req refineRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: invalid JSON body: %v", domain.ErrInvalidInput, err))
		return
	}

	result, err := h.services.Refinement.Refine(r.Context(), ownerFrom(r.Context()), questionID, req.Instruction)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// RecentQuestions handles GET /api/questions/recent.
func (h *Handler) RecentQuestions(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.services.Questions.Recent(r.Context(), ownerFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

// GetQuestion handles GET /api/questions/{id}.
func (h *Handler) GetQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	question, err := h.services.Questions.Get(r.Context(), ownerFrom(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, question)
}

// SessionQuestions handles GET /api/questions/session/{session_id}.
func (h *Handler) SessionQuestions(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r, "session_id")
	if err != nil {
		writeError(w, err)
		return
	}
	questions, err := h.services.Questions.ListBySession(r.Context(), ownerFrom(r.Context()), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	if questions == nil {
		questions = []domain.Question{}
	}
	writeJSON(w, http.StatusOK, questions)
}

// QuestionVersions handles GET /api/questions/{id}/versions.
func (h *Handler) QuestionVersions(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	versions, err := h.services.Questions.Versions(r.Context(), ownerFrom(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, versions)
}

func (h *Handler) parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		return fmt.Errorf("%w: invalid multipart form: %v", domain.ErrInvalidInput, err)
	}
	return nil
}

func readFormFile(r *http.Request, field string) ([]byte, *multipart.FileHeader, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: missing %s", domain.ErrInvalidInput, field)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", field, err)
	}
	return data, header, nil
}

// formInt parses an optional integer form value; empty means zero.
func formInt(r *http.Request, field string) (int, error) {
	raw := r.FormValue(field)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, field)
	}
	return n, nil
}

func pathID(r *http.Request, name string) (string, error) {
	raw := mux.Vars(r)[name]
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %s must be a UUID", domain.ErrInvalidInput, name)
	}
	return id.String(), nil
}
