package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/munin/internal/knowledge"
	"github.com/starford/munin/internal/retrieval"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// searcher may be nil when the search cache is disabled.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(engine *knowledge.Engine, retr *retrieval.Service, searcher Searcher, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(engine, retr, searcher)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Ingestion.
	r.Post("/ingest/url", h.IngestURL)
	r.Post("/ingest/note", h.IngestNote)
	r.Post("/context", h.UpdateContext)

	// Status and retrieval.
	r.Get("/status", h.Status)
	r.Get("/tags", h.Tags)
	r.Get("/knowledge", h.Knowledge)
	r.Get("/search", h.Search)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
