package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/munin/internal/retrieval"
	"github.com/starford/munin/internal/testutil"
)

func testMCP(t *testing.T) *Server {
	t.Helper()
	engine, store := testutil.TestEngine(t)
	cfg := engine.Config()
	retr := retrieval.New(store, cfg.URLIndexFile, cfg.Topics)
	return New(engine, retr, nil)
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	var result *mcp.CallToolResult
	var err error

	switch name {
	case "add_url_to_index":
		result, err = srv.addURLToIndex(ctx, req)
	case "create_note":
		result, err = srv.createNote(ctx, req)
	case "update_context_section":
		result, err = srv.updateContextSection(ctx, req)
	case "get_knowledge_status":
		result, err = srv.getKnowledgeStatus(ctx, req)
	case "get_available_tags":
		result, err = srv.getAvailableTags(ctx, req)
	case "search_by_tags":
		result, err = srv.searchByTags(ctx, req)
	case "search_knowledge":
		result, err = srv.searchKnowledge(ctx, req)
	case "get_ingest_contract":
		result, err = srv.getIngestContract(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestAddURLToIndexTool(t *testing.T) {
	srv := testMCP(t)

	res := callTool(t, srv, "add_url_to_index", map[string]interface{}{
		"url":        "https://docs.python.org/3/",
		"title":      "Python Docs",
		"tags":       "python, reference",
		"confidence": 0.9,
		"relevance":  0.8,
	})
	if res.IsError {
		t.Fatalf("unexpected error: %s", resultText(res))
	}
	if !strings.Contains(resultText(res), "url_index") {
		t.Errorf("result = %q", resultText(res))
	}
}

func TestAddURLReviewRequired(t *testing.T) {
	srv := testMCP(t)

	res := callTool(t, srv, "add_url_to_index", map[string]interface{}{
		"url":        "https://example.com",
		"title":      "Example",
		"confidence": 0.2,
		"relevance":  0.9,
	})
	if res.IsError {
		t.Fatalf("gate rejection should not be a tool error: %s", resultText(res))
	}
	text := resultText(res)
	if !strings.Contains(text, "review_required") || !strings.Contains(text, "confidence") {
		t.Errorf("result = %q", text)
	}
}

func TestAddURLMissingScores(t *testing.T) {
	srv := testMCP(t)

	res := callTool(t, srv, "add_url_to_index", map[string]interface{}{
		"url":   "https://example.com",
		"title": "Example",
	})
	if !res.IsError {
		t.Fatalf("expected error, got %q", resultText(res))
	}
}

func TestCreateNoteTool(t *testing.T) {
	srv := testMCP(t)

	res := callTool(t, srv, "create_note", map[string]interface{}{
		"title":      "Meeting cadence",
		"body":       "Weekly on Mondays.",
		"tags":       "process",
		"confidence": 0.9,
		"relevance":  0.8,
	})
	if res.IsError {
		t.Fatalf("unexpected error: %s", resultText(res))
	}
	if !strings.Contains(resultText(res), "notes/general/") {
		t.Errorf("result = %q", resultText(res))
	}
}

func TestUpdateContextSectionTool(t *testing.T) {
	srv := testMCP(t)

	res := callTool(t, srv, "update_context_section", map[string]interface{}{
		"section":    "Team Structure",
		"body":       "Three squads.",
		"confidence": 0.9,
		"relevance":  0.8,
	})
	if res.IsError {
		t.Fatalf("unexpected error: %s", resultText(res))
	}
	if !strings.Contains(resultText(res), "context.md#Team Structure") {
		t.Errorf("result = %q", resultText(res))
	}
}

func TestStatusAndTagsTools(t *testing.T) {
	srv := testMCP(t)

	callTool(t, srv, "add_url_to_index", map[string]interface{}{
		"url":        "https://example.com",
		"title":      "Example",
		"tags":       "reference",
		"confidence": 0.9,
		"relevance":  0.8,
	})

	res := callTool(t, srv, "get_knowledge_status", nil)
	if res.IsError {
		t.Fatalf("status error: %s", resultText(res))
	}
	if !strings.Contains(resultText(res), "\"url_count\": 1") {
		t.Errorf("status = %q", resultText(res))
	}

	res = callTool(t, srv, "get_available_tags", nil)
	if res.IsError {
		t.Fatalf("tags error: %s", resultText(res))
	}
	if !strings.Contains(resultText(res), "reference") {
		t.Errorf("tags = %q", resultText(res))
	}
}

func TestSearchByTagsTool(t *testing.T) {
	srv := testMCP(t)

	callTool(t, srv, "add_url_to_index", map[string]interface{}{
		"url":        "https://example.com",
		"title":      "Example",
		"tags":       "reference",
		"confidence": 0.9,
		"relevance":  0.8,
	})

	res := callTool(t, srv, "search_by_tags", map[string]interface{}{
		"tags": "reference",
	})
	if res.IsError {
		t.Fatalf("search error: %s", resultText(res))
	}
	if !strings.Contains(resultText(res), "https://example.com") {
		t.Errorf("matches = %q", resultText(res))
	}

	res = callTool(t, srv, "search_by_tags", map[string]interface{}{
		"tags": "nothing-uses-this",
	})
	if resultText(res) != "no matches" {
		t.Errorf("result = %q", resultText(res))
	}
}

func TestSearchKnowledgeWithoutCache(t *testing.T) {
	srv := testMCP(t)

	res := callTool(t, srv, "search_knowledge", map[string]interface{}{
		"query": "anything",
	})
	if !res.IsError {
		t.Fatalf("expected error when cache disabled, got %q", resultText(res))
	}
}

func TestIngestContractTool(t *testing.T) {
	srv := testMCP(t)

	res := callTool(t, srv, "get_ingest_contract", nil)
	if !strings.Contains(resultText(res), "confidence") {
		t.Errorf("contract = %q", resultText(res))
	}
}
