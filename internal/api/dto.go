package api

import (
	"github.com/starford/munin/internal/apperr"
	"github.com/starford/munin/internal/knowledge"
	"github.com/starford/munin/internal/retrieval"
)

// IngestURLRequest is the request body for adding a URL to the reference index.
type IngestURLRequest struct {
	URL        string   `json:"url" example:"https://docs.python.org/3/" validate:"required"`
	Title      string   `json:"title" example:"Python 3 Documentation" validate:"required"`
	Domain     string   `json:"domain" example:"engineering"`
	Context    string   `json:"context" example:"mentioned during onboarding"`
	Summary    string   `json:"summary" example:"Official language reference"`
	Tags       []string `json:"tags" example:"python,reference"`
	Confidence float64  `json:"confidence" example:"0.9" validate:"required"`
	Relevance  float64  `json:"relevance" example:"0.8" validate:"required"`
}

// IngestNoteRequest is the request body for creating or updating a note.
// Filename, when set, rewrites that note in place instead of creating one.
type IngestNoteRequest struct {
	Topic      string   `json:"topic" example:"engineering"`
	Title      string   `json:"title" example:"CI pipeline conventions" validate:"required"`
	Body       string   `json:"body" example:"## Overview\n..."`
	Domain     string   `json:"domain" example:"engineering"`
	Category   string   `json:"category" example:"process"`
	Tags       []string `json:"tags" example:"ci,conventions"`
	Summary    string   `json:"summary" example:"How we run CI"`
	SourceURL  string   `json:"source_url,omitempty" example:"https://example.com/doc"`
	Filename   string   `json:"filename,omitempty" example:"20260831-ci-pipeline.md"`
	Confidence float64  `json:"confidence" example:"0.9" validate:"required"`
	Relevance  float64  `json:"relevance" example:"0.8" validate:"required"`
}

// ContextUpdateRequest is the request body for updating a context section.
type ContextUpdateRequest struct {
	Section    string  `json:"section" example:"Team Structure" validate:"required"`
	Body       string  `json:"body" example:"Three squads, one platform team." validate:"required"`
	Mode       string  `json:"mode,omitempty" example:"replace" enums:"replace,append"`
	Confidence float64 `json:"confidence" example:"0.9" validate:"required"`
	Relevance  float64 `json:"relevance" example:"0.8" validate:"required"`
}

// ReceiptResponse reports where a committed ingest landed.
type ReceiptResponse struct {
	Store    string `json:"store" example:"url_index" validate:"required"`
	Location string `json:"location" example:"references/url-index.yaml" validate:"required"`
}

// ReviewResponse is returned when an ingest fails the scoring gate.
type ReviewResponse struct {
	Status  string               `json:"status" example:"review_required" validate:"required"`
	Reasons []apperr.ReviewReason `json:"reasons" validate:"required"`
}

// TagsResponse wraps the available-tags listing.
type TagsResponse struct {
	Tags []retrieval.TagCount `json:"tags" validate:"required"`
}

// KnowledgeResponse wraps tag-search matches.
type KnowledgeResponse struct {
	Matches []retrieval.Match `json:"matches" validate:"required"`
}

// SearchResult is a single full-text search hit.
type SearchResult struct {
	Kind       string `json:"kind" example:"note" validate:"required"`
	Identifier string `json:"identifier" example:"engineering/20260831-ci-pipeline.md" validate:"required"`
	Title      string `json:"title" example:"CI pipeline conventions" validate:"required"`
	Snippet    string `json:"snippet" example:"...matched text..."`
}

// SearchResponse wraps full-text search results.
type SearchResponse struct {
	Results []SearchResult `json:"results" validate:"required"`
}

// StatusResponse is the store health report (aliased from the domain layer).
type StatusResponse = knowledge.Status
