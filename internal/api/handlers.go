package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/starford/munin/internal/apperr"
	"github.com/starford/munin/internal/index"
	"github.com/starford/munin/internal/knowledge"
	"github.com/starford/munin/internal/models"
	"github.com/starford/munin/internal/retrieval"
)

// Searcher is the full-text search surface backed by the derived cache.
type Searcher interface {
	Search(query string, limit int) ([]index.SearchResult, error)
}

// Handler holds API route handlers.
type Handler struct {
	engine   *knowledge.Engine
	retr     *retrieval.Service
	searcher Searcher
}

// NewHandler creates a new Handler. searcher may be nil when the search
// cache is disabled.
func NewHandler(engine *knowledge.Engine, retr *retrieval.Service, searcher Searcher) *Handler {
	return &Handler{engine: engine, retr: retr, searcher: searcher}
}

// writeIngestError maps engine errors onto HTTP statuses. A gate rejection
// is not a failure: it returns 422 with the per-dimension reasons so the
// caller can decide whether to resubmit.
func writeIngestError(w http.ResponseWriter, op string, err error) {
	var review *apperr.ReviewRequiredError
	var invalid *apperr.InvalidScoreError
	switch {
	case errors.As(err, &review):
		writeJSON(w, http.StatusUnprocessableEntity, ReviewResponse{
			Status:  "review_required",
			Reasons: review.Reasons,
		})
	case errors.As(err, &invalid):
		writeJSON(w, http.StatusBadRequest, errorBody(invalid.Error()))
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrDuplicateConflict):
		writeJSON(w, http.StatusConflict, errorBody("duplicate records for one URL, manual review needed"))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// IngestURL handles POST /api/ingest/url.
//
//	@Summary		Add or update a URL in the reference index
//	@Tags			ingest
//	@Accept			json
//	@Produce		json
//	@Param			body	body		IngestURLRequest	true	"URL to ingest"
//	@Success		200		{object}	ReceiptResponse
//	@Failure		400		{object}	errResponse
//	@Failure		422		{object}	ReviewResponse
//	@Security		BearerAuth
//	@Router			/ingest/url [post]
func (h *Handler) IngestURL(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req IngestURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("url is required"))
		return
	}
	receipt, err := h.engine.IngestURL(r.Context(), models.URLIngest{
		URL:     req.URL,
		Title:   req.Title,
		Domain:  req.Domain,
		Context: req.Context,
		Summary: req.Summary,
		Tags:    req.Tags,
	}, models.Scores{Confidence: req.Confidence, Relevance: req.Relevance})
	if err != nil {
		writeIngestError(w, "ingest url", err)
		return
	}
	writeJSON(w, http.StatusOK, ReceiptResponse{Store: receipt.Store, Location: receipt.Location})
}

// IngestNote handles POST /api/ingest/note.
//
//	@Summary		Create a note, or rewrite one in place when filename is set
//	@Tags			ingest
//	@Accept			json
//	@Produce		json
//	@Param			body	body		IngestNoteRequest	true	"Note to ingest"
//	@Success		201		{object}	ReceiptResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		422		{object}	ReviewResponse
//	@Security		BearerAuth
//	@Router			/ingest/note [post]
func (h *Handler) IngestNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req IngestNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("title is required"))
		return
	}
	receipt, err := h.engine.IngestNote(r.Context(), models.NoteIngest{
		Topic:     req.Topic,
		Title:     req.Title,
		Body:      req.Body,
		Domain:    req.Domain,
		Category:  req.Category,
		Tags:      req.Tags,
		Summary:   req.Summary,
		SourceURL: req.SourceURL,
		Filename:  req.Filename,
	}, models.Scores{Confidence: req.Confidence, Relevance: req.Relevance})
	if err != nil {
		writeIngestError(w, "ingest note", err)
		return
	}
	status := http.StatusCreated
	if req.Filename != "" {
		status = http.StatusOK
	}
	writeJSON(w, status, ReceiptResponse{Store: receipt.Store, Location: receipt.Location})
}

// UpdateContext handles POST /api/context.
//
//	@Summary		Replace or append a section of the context document
//	@Tags			ingest
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ContextUpdateRequest	true	"Section update"
//	@Success		200		{object}	ReceiptResponse
//	@Failure		400		{object}	errResponse
//	@Failure		422		{object}	ReviewResponse
//	@Security		BearerAuth
//	@Router			/context [post]
func (h *Handler) UpdateContext(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req ContextUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if strings.TrimSpace(req.Section) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("section is required"))
		return
	}
	receipt, err := h.engine.UpdateContext(r.Context(), models.ContextUpdate{
		Section: req.Section,
		Body:    req.Body,
		Mode:    models.ContextMode(req.Mode),
	}, models.Scores{Confidence: req.Confidence, Relevance: req.Relevance})
	if err != nil {
		writeIngestError(w, "update context", err)
		return
	}
	writeJSON(w, http.StatusOK, ReceiptResponse{Store: receipt.Store, Location: receipt.Location})
}

// Status handles GET /api/status.
//
//	@Summary		Report store health and counts
//	@Tags			status
//	@Produce		json
//	@Success		200	{object}	StatusResponse
//	@Security		BearerAuth
//	@Router			/status [get]
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	st, err := h.engine.Status(r.Context())
	if err != nil {
		slog.Error("status failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// Tags handles GET /api/tags.
//
//	@Summary		List every known tag with usage counts
//	@Tags			retrieval
//	@Produce		json
//	@Success		200	{object}	TagsResponse
//	@Security		BearerAuth
//	@Router			/tags [get]
func (h *Handler) Tags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.retr.AvailableTags()
	if err != nil {
		slog.Error("tags failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, TagsResponse{Tags: tags})
}

// Knowledge handles GET /api/knowledge.
//
//	@Summary		Search indexed knowledge by tags
//	@Tags			retrieval
//	@Produce		json
//	@Param			tags	query		string	true	"Comma-separated tags"
//	@Param			mode	query		string	false	"Match mode"	Enums(any, all)
//	@Success		200		{object}	KnowledgeResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/knowledge [get]
func (h *Handler) Knowledge(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	raw := q.Get("tags")
	if strings.TrimSpace(raw) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'tags' is required"))
		return
	}
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	mode, err := retrieval.ParseMatchMode(q.Get("mode"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	matches, err := h.retr.SearchByTags(tags, mode)
	if err != nil {
		slog.Error("knowledge search failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, KnowledgeResponse{Matches: matches})
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across notes and URL references
//	@Tags			retrieval
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	if h.searcher == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("search cache disabled"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	hits, err := h.searcher.Search(q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	results := make([]SearchResult, 0, len(hits))
	for _, hit := range hits {
		results = append(results, SearchResult{
			Kind:       hit.Kind,
			Identifier: hit.Identifier,
			Title:      hit.Title,
			Snippet:    hit.Snippet,
		})
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}
