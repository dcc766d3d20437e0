// Package testutil provides shared test helpers for setting up knowledge
// trees, engines, and search cache databases.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/starford/munin/internal/gate"
	"github.com/starford/munin/internal/index"
	"github.com/starford/munin/internal/knowledge"
	"github.com/starford/munin/internal/models"
	"github.com/starford/munin/internal/storage"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "munin-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestRoot creates a temporary knowledge root with a storage.Provider.
func TestRoot(t *testing.T) (string, storage.Provider) {
	t.Helper()
	root := t.TempDir()
	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	return root, store
}

// TestConfig returns an engine configuration with a default and an
// engineering topic and 0.7 thresholds on both dimensions.
func TestConfig() knowledge.Config {
	return knowledge.Config{
		Thresholds:   gate.Thresholds{Confidence: 0.7, Relevance: 0.7},
		ContextFile:  "context.md",
		URLIndexFile: "references/url-index.yaml",
		Topics: map[string]models.TopicConfig{
			"default":     {Directory: "notes/general"},
			"engineering": {Directory: "notes/engineering"},
		},
	}
}

// TestEngine creates an engine over a fresh temporary knowledge root.
func TestEngine(t *testing.T, opts ...knowledge.Option) (*knowledge.Engine, storage.Provider) {
	t.Helper()
	_, store := TestRoot(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine, err := knowledge.New(store, TestConfig(), logger, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return engine, store
}
