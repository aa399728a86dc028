package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/busraauz/ai-quest-platform/internal/core/domain"
)

// NewRouter builds the HTTP handler: routes, owner check, CORS and request logging.
// frontendURL is allowed alongside http://localhost:3000.
func NewRouter(h *Handler, frontendURL string) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/", h.Root).Methods(http.MethodGet)
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(requireOwner)

	api.HandleFunc("/documents/generate", h.GenerateFromDocument).Methods(http.MethodPost)
	api.HandleFunc("/similar/generate", h.GenerateSimilar).Methods(http.MethodPost)
	api.HandleFunc("/refine/{question_id}", h.Refine).Methods(http.MethodPost)

	// "recent" and "session" must be registered before "{id}".
	api.HandleFunc("/questions/recent", h.RecentQuestions).Methods(http.MethodGet)
	api.HandleFunc("/questions/session/{session_id}", h.SessionQuestions).Methods(http.MethodGet)
	api.HandleFunc("/questions/{id}", h.GetQuestion).Methods(http.MethodGet)
	api.HandleFunc("/questions/{id}/versions", h.QuestionVersions).Methods(http.MethodGet)

	origins := []string{domain.DefaultFrontendURL}
	if frontendURL != "" && frontendURL != domain.DefaultFrontendURL {
		origins = append(origins, frontendURL)
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Set-Cookie"},
		AllowCredentials: true,
	})

	return logRequests(c.Handler(r))
}
