package api

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/busraauz/ai-quest-platform/internal/logger"
)

// OwnerHeader carries the caller's owner ID. Authentication happens upstream.
const OwnerHeader = "X-Owner-ID"

type ownerKey struct{}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// logRequests logs one line per request: METHOD path - Status: N - Time: Xms.
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		elapsed := float64(time.Since(start).Microseconds()) / 1000
		logger.Info("%s %s - Status: %d - Time: %.2fms", r.Method, r.URL.Path, rec.status, elapsed)
	})
}

// requireOwner rejects requests without a valid owner UUID.
func requireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		raw := r.Header.Get(OwnerHeader)
		id, err := uuid.Parse(raw)
		if raw == "" || err != nil {
			writeErrorKind(w, http.StatusUnauthorized, "unauthorized", "missing or invalid "+OwnerHeader+" header")
			return
		}
		ctx := context.WithValue(r.Context(), ownerKey{}, id.String())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ownerFrom returns the owner set by requireOwner.
func ownerFrom(ctx context.Context) string {
	id, _ := ctx.Value(ownerKey{}).(string)
	return id
}
