// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Munin knowledge tools for LLM integration via stdio
// transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/munin/internal/apperr"
	"github.com/starford/munin/internal/index"
	"github.com/starford/munin/internal/knowledge"
	"github.com/starford/munin/internal/models"
	"github.com/starford/munin/internal/retrieval"
)

// Server wraps the MCP server with Munin tools.
type Server struct {
	mcp    *server.MCPServer
	engine *knowledge.Engine
	retr   *retrieval.Service
	db     *index.DB
}

// New creates a new MCP server with all Munin tools registered.
// db may be nil when the search cache is disabled.
func New(engine *knowledge.Engine, retr *retrieval.Service, db *index.DB) *Server {
	s := &Server{engine: engine, retr: retr, db: db}

	s.mcp = server.NewMCPServer(
		"Munin",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("add_url_to_index",
		mcp.WithDescription("Add a URL to the reference index, or merge into the "+
			"existing record when the URL is already indexed. Requires confidence "+
			"and relevance scores; read the munin://ingest-contract resource first."),
		mcp.WithString("url", mcp.Required(), mcp.Description("The URL to index")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Human-readable title")),
		mcp.WithString("domain", mcp.Description("Knowledge domain (e.g. engineering, hr)")),
		mcp.WithString("context", mcp.Description("Where or why this URL came up")),
		mcp.WithString("summary", mcp.Description("One-sentence summary of the content")),
		mcp.WithString("tags", mcp.Description("Comma-separated tags")),
		mcp.WithNumber("confidence", mcp.Required(), mcp.Description("Accuracy score in [0,1]")),
		mcp.WithNumber("relevance", mcp.Required(), mcp.Description("Relevance score in [0,1]")),
	), s.addURLToIndex)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a Markdown note under a topic, or rewrite an "+
			"existing note in place when filename is given. Unknown topics fall back "+
			"to the default topic. Requires confidence and relevance scores."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Note title")),
		mcp.WithString("body", mcp.Description("Markdown body")),
		mcp.WithString("topic", mcp.Description("Topic partition (empty for default)")),
		mcp.WithString("domain", mcp.Description("Knowledge domain")),
		mcp.WithString("category", mcp.Description("Note category")),
		mcp.WithString("tags", mcp.Description("Comma-separated tags")),
		mcp.WithString("summary", mcp.Description("One-sentence summary")),
		mcp.WithString("source_url", mcp.Description("URL the note was derived from")),
		mcp.WithString("filename", mcp.Description("Existing filename to rewrite in place")),
		mcp.WithNumber("confidence", mcp.Required(), mcp.Description("Accuracy score in [0,1]")),
		mcp.WithNumber("relevance", mcp.Required(), mcp.Description("Relevance score in [0,1]")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("update_context_section",
		mcp.WithDescription("Replace or append a '## Section' of the organizational "+
			"context document. Requires confidence and relevance scores."),
		mcp.WithString("section", mcp.Required(), mcp.Description("Section header, without the '## ' prefix")),
		mcp.WithString("body", mcp.Required(), mcp.Description("Section content in Markdown")),
		mcp.WithString("mode", mcp.Description("'replace' (default) or 'append'")),
		mcp.WithNumber("confidence", mcp.Required(), mcp.Description("Accuracy score in [0,1]")),
		mcp.WithNumber("relevance", mcp.Required(), mcp.Description("Relevance score in [0,1]")),
	), s.updateContextSection)

	s.mcp.AddTool(mcp.NewTool("get_knowledge_status",
		mcp.WithDescription("Report store health: context sections, URL count, "+
			"per-topic note counts, orphaned and missing notes."),
	), s.getKnowledgeStatus)

	s.mcp.AddTool(mcp.NewTool("get_available_tags",
		mcp.WithDescription("List every tag in the knowledge base with per-store usage counts."),
	), s.getAvailableTags)

	s.mcp.AddTool(mcp.NewTool("search_by_tags",
		mcp.WithDescription("Find notes and URLs by tags. Mode 'any' matches items "+
			"carrying at least one tag, 'all' requires every tag."),
		mcp.WithString("tags", mcp.Required(), mcp.Description("Comma-separated tags")),
		mcp.WithString("mode", mcp.Description("'any' (default) or 'all'")),
	), s.searchByTags)

	s.mcp.AddTool(mcp.NewTool("search_knowledge",
		mcp.WithDescription("Full-text search across note and URL titles and summaries."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchKnowledge)

	s.mcp.AddTool(mcp.NewTool("get_ingest_contract",
		mcp.WithDescription("Returns the scoring contract for the ingest tools. "+
			"Call this before persisting anything."),
	), s.getIngestContract)

	// Resource: ingest contract.
	s.mcp.AddResource(
		mcp.NewResource("munin://ingest-contract", "Ingest Contract",
			mcp.WithResourceDescription("Scoring rules every ingest tool call must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readIngestContractResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func splitTags(raw string) []string {
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func requireScores(req mcp.CallToolRequest) (models.Scores, error) {
	confidence, err := req.RequireFloat("confidence")
	if err != nil {
		return models.Scores{}, err
	}
	relevance, err := req.RequireFloat("relevance")
	if err != nil {
		return models.Scores{}, err
	}
	return models.Scores{Confidence: confidence, Relevance: relevance}, nil
}

// ingestResult renders an engine outcome. Gate rejections are reported as
// structured review_required payloads instead of plain errors so LLM
// clients can react to the failing dimensions.
func ingestResult(receipt *models.Receipt, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		var review *apperr.ReviewRequiredError
		if errors.As(err, &review) {
			out, _ := json.MarshalIndent(map[string]any{
				"status":  "review_required",
				"reasons": review.Reasons,
			}, "", "  ")
			return mcp.NewToolResultText(string(out)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("committed to %s at %s", receipt.Store, receipt.Location)), nil
}

func (s *Server) addURLToIndex(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rawURL, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	scores, err := requireScores(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	receipt, err := s.engine.IngestURL(ctx, models.URLIngest{
		URL:     rawURL,
		Title:   title,
		Domain:  req.GetString("domain", ""),
		Context: req.GetString("context", ""),
		Summary: req.GetString("summary", ""),
		Tags:    splitTags(req.GetString("tags", "")),
	}, scores)
	return ingestResult(receipt, err)
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	scores, err := requireScores(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	receipt, err := s.engine.IngestNote(ctx, models.NoteIngest{
		Topic:     req.GetString("topic", ""),
		Title:     title,
		Body:      req.GetString("body", ""),
		Domain:    req.GetString("domain", ""),
		Category:  req.GetString("category", ""),
		Tags:      splitTags(req.GetString("tags", "")),
		Summary:   req.GetString("summary", ""),
		SourceURL: req.GetString("source_url", ""),
		Filename:  req.GetString("filename", ""),
	}, scores)
	return ingestResult(receipt, err)
}

func (s *Server) updateContextSection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	section, err := req.RequireString("section")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	body, err := req.RequireString("body")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	scores, err := requireScores(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	receipt, err := s.engine.UpdateContext(ctx, models.ContextUpdate{
		Section: section,
		Body:    body,
		Mode:    models.ContextMode(req.GetString("mode", "")),
	}, scores)
	return ingestResult(receipt, err)
}

func (s *Server) getKnowledgeStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, err := s.engine.Status(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(st, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getAvailableTags(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tags, err := s.retr.AvailableTags()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(tags) == 0 {
		return mcp.NewToolResultText("no tags yet"), nil
	}
	out, _ := json.MarshalIndent(tags, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchByTags(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("tags")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	mode, err := retrieval.ParseMatchMode(req.GetString("mode", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	matches, err := s.retr.SearchByTags(splitTags(raw), mode)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(matches) == 0 {
		return mcp.NewToolResultText("no matches"), nil
	}
	out, _ := json.MarshalIndent(matches, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchKnowledge(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if s.db == nil {
		return mcp.NewToolResultError("search cache disabled"), nil
	}
	results, err := s.db.Search(query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("no results"), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getIngestContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(IngestContract), nil
}

func (s *Server) readIngestContractResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "munin://ingest-contract",
			MIMEType: "text/markdown",
			Text:     IngestContract,
		},
	}, nil
}
