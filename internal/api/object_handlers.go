package api

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Object serving bypasses Huma: the response is a raw image stream, not
// an enveloped JSON body. Access control is the grant token minted into
// each signed URL, so no Authorization header is required.
func (s *Server) registerObjectRoutes() {
	s.router.Get("/api/v1/objects/*", s.handleServeObject)
}

func (s *Server) handleServeObject(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	if key == "" {
		http.Error(w, "object key required", http.StatusBadRequest)
		return
	}

	grant := r.URL.Query().Get("grant")
	if grant == "" {
		http.Error(w, "grant required", http.StatusUnauthorized)
		return
	}

	if err := s.signer.Verify(grant, key); err != nil {
		s.logger.Debug("rejected object grant", "key", key, "error", err)
		http.Error(w, "invalid or expired grant", http.StatusForbidden)
		return
	}

	rc, err := s.objects.Open(r.Context(), key)
	if err != nil {
		http.Error(w, "object not found", http.StatusNotFound)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", CacheOneDayPrivate)
	if _, err := io.Copy(w, rc); err != nil {
		s.logger.Debug("object stream interrupted", "key", key, "error", err)
	}
}
