package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func tempRoot(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempRoot(t)
	content := []byte("# Hello\nWorld\n")
	if err := s.Write("context.md", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("context.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestWriteCreatesSubdirs(t *testing.T) {
	s := tempRoot(t)
	if err := s.Write("notes/default/a.md", []byte("deep")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("notes/default/a.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "deep" {
		t.Errorf("content = %q", got)
	}
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	s := tempRoot(t)
	if err := s.Write("a.md", []byte("one")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := s.Write("a.md", []byte("two")); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	entries, err := os.ReadDir(s.root)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".munin-tmp-") {
			t.Errorf("leftover temp file: %s", e.Name())
		}
	}
}

func TestExists(t *testing.T) {
	s := tempRoot(t)
	ok, err := s.Exists("missing.md")
	if err != nil || ok {
		t.Errorf("Exists(missing) = %v, %v", ok, err)
	}
	_ = s.Write("here.md", []byte("x"))
	ok, err = s.Exists("here.md")
	if err != nil || !ok {
		t.Errorf("Exists(here) = %v, %v", ok, err)
	}
}

func TestList(t *testing.T) {
	s := tempRoot(t)
	_ = s.Write("notes/default/a.md", []byte("a"))
	_ = s.Write("notes/default/b.md", []byte("b"))
	_ = s.Write("notes/default/_index.yaml", []byte("notes: []"))

	items, err := s.List("notes/default")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("len = %d, want 2 (yaml files excluded)", len(items))
	}
	for _, p := range items {
		if filepath.Dir(p) != filepath.Join("notes", "default") {
			t.Errorf("path %q should be relative to root", p)
		}
	}
}

func TestListMissingDir(t *testing.T) {
	s := tempRoot(t)
	items, err := s.List("notes/nope")
	if err != nil {
		t.Fatalf("List on missing dir: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("len = %d, want 0", len(items))
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempRoot(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.md",
		"/etc/shadow",
	}
	for _, p := range cases {
		if _, err := s.Read(p); err == nil {
			t.Errorf("Read(%q) should be rejected", p)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("Write(%q) should be rejected", p)
		}
	}
}
