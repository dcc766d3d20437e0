package retrieval

import (
	"testing"

	"github.com/starford/munin/internal/models"
	"github.com/starford/munin/internal/storage"
)

const urlIndexYAML = `urls:
  - url: https://x.test/python
    title: Python Guide
    summary: Language guide
    tags: [python, reference]
    added_date: "2026-08-01T10:00:00Z"
  - url: https://x.test/devops
    title: DevOps Handbook
    summary: Ops practices
    tags: [devops]
    added_date: "2026-08-02T10:00:00Z"
    updated: "2026-08-20T10:00:00Z"
`

const notesIndexYAML = `topic: default
description: General notes
notes:
  - filename: 20260810-python-tips.md
    title: Python Tips
    domain: engineering
    category: technical
    summary: Handy tricks
    tags: [python, devops]
    created: "2026-08-10"
    updated: "2026-08-25"
  - filename: 20260811-hr-policy.md
    title: HR Policy
    domain: hr
    category: policy
    summary: Leave policy
    tags: [hr]
    created: "2026-08-11"
    updated: "2026-08-11"
`

func testService(t *testing.T) *Service {
	t.Helper()
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Write("sources/url_index.yaml", []byte(urlIndexYAML)); err != nil {
		t.Fatal(err)
	}
	if err := store.Write("notes/default/_index.yaml", []byte(notesIndexYAML)); err != nil {
		t.Fatal(err)
	}
	topics := map[string]models.TopicConfig{
		"default": {Directory: "notes/default"},
	}
	return New(store, "sources/url_index.yaml", topics)
}

func TestAvailableTags(t *testing.T) {
	s := testService(t)
	tags, err := s.AvailableTags()
	if err != nil {
		t.Fatalf("AvailableTags: %v", err)
	}
	if len(tags) != 4 {
		t.Fatalf("tag count = %d, want 4: %+v", len(tags), tags)
	}
	// python and devops both have total 2; alphabetical tie-break puts
	// devops first.
	if tags[0].Tag != "devops" || tags[0].Total != 2 {
		t.Errorf("tags[0] = %+v", tags[0])
	}
	if tags[1].Tag != "python" || tags[1].Notes != 1 || tags[1].URLs != 1 {
		t.Errorf("tags[1] = %+v", tags[1])
	}
}

func TestSearchByTags_Any(t *testing.T) {
	s := testService(t)
	matches, err := s.SearchByTags([]string{"python", "devops"}, MatchAny)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 3 {
		t.Fatalf("matches = %d, want 3", len(matches))
	}
	// The note tagged with both query tags ranks first.
	if matches[0].Kind != "note" || matches[0].Score != 2 {
		t.Errorf("matches[0] = %+v", matches[0])
	}
	if matches[0].Identifier != "notes/default/20260810-python-tips.md" {
		t.Errorf("identifier = %q", matches[0].Identifier)
	}
	// Single-tag hits tie on score; recency breaks the tie.
	if matches[1].Score != 1 || matches[2].Score != 1 {
		t.Errorf("tail scores = %d, %d", matches[1].Score, matches[2].Score)
	}
	if matches[1].Updated < matches[2].Updated {
		t.Errorf("ties must order most-recent first: %q then %q", matches[1].Updated, matches[2].Updated)
	}
}

func TestSearchByTags_All(t *testing.T) {
	s := testService(t)
	matches, err := s.SearchByTags([]string{"python", "devops"}, MatchAll)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 {
		t.Fatalf("matches = %d, want 1 (only the note carries both)", len(matches))
	}
	if matches[0].Identifier != "notes/default/20260810-python-tips.md" {
		t.Errorf("identifier = %q", matches[0].Identifier)
	}
}

func TestSearchByTags_NoMatchesIsEmptyNotError(t *testing.T) {
	s := testService(t)
	matches, err := s.SearchByTags([]string{"nonexistent"}, MatchAny)
	if err != nil {
		t.Fatalf("no matches must not be an error: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("matches = %v", matches)
	}
}

func TestSearchByTags_CaseInsensitive(t *testing.T) {
	s := testService(t)
	matches, err := s.SearchByTags([]string{" PYTHON "}, MatchAny)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 2 {
		t.Fatalf("matches = %d, want 2", len(matches))
	}
}

func TestInvalidateReflectsNewWrites(t *testing.T) {
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	topics := map[string]models.TopicConfig{"default": {Directory: "notes/default"}}
	s := New(store, "sources/url_index.yaml", topics)

	tags, err := s.AvailableTags()
	if err != nil {
		t.Fatal(err)
	}
	if len(tags) != 0 {
		t.Fatalf("tags = %v", tags)
	}

	if err := store.Write("sources/url_index.yaml", []byte(urlIndexYAML)); err != nil {
		t.Fatal(err)
	}

	// Stale cache until invalidated.
	tags, _ = s.AvailableTags()
	if len(tags) != 0 {
		t.Fatalf("cache should still be empty, got %v", tags)
	}
	s.Invalidate()
	tags, err = s.AvailableTags()
	if err != nil {
		t.Fatal(err)
	}
	if len(tags) != 3 {
		t.Errorf("tags after invalidate = %v", tags)
	}
}

func TestParseMatchMode(t *testing.T) {
	cases := []struct {
		in      string
		want    MatchMode
		wantErr bool
	}{
		{"", MatchAny, false},
		{"any", MatchAny, false},
		{"ALL", MatchAll, false},
		{"bogus", MatchAny, true},
	}
	for _, c := range cases {
		got, err := ParseMatchMode(c.in)
		if (err != nil) != c.wantErr {
			t.Errorf("ParseMatchMode(%q) err = %v", c.in, err)
		}
		if err == nil && got != c.want {
			t.Errorf("ParseMatchMode(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestSearchByTags_DuplicateItemTagsCountOnce(t *testing.T) {
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	idx := `urls:
  - url: https://x.test/dup
    title: Duplicated Tags
    tags: [python, python]
    added_date: "2026-08-01T10:00:00Z"
`
	if err := store.Write("sources/url_index.yaml", []byte(idx)); err != nil {
		t.Fatal(err)
	}
	s := New(store, "sources/url_index.yaml", map[string]models.TopicConfig{
		"default": {Directory: "notes/default"},
	})

	// A repeated tag is one distinct match, so ALL of two query tags
	// must not be satisfied.
	matches, err := s.SearchByTags([]string{"python", "devops"}, MatchAll)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 0 {
		t.Fatalf("matches = %+v, want none", matches)
	}

	matches, err = s.SearchByTags([]string{"python", "devops"}, MatchAny)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 || matches[0].Score != 1 {
		t.Fatalf("matches = %+v, want one hit with score 1", matches)
	}
}
