package markdown

import (
	"strings"
	"testing"

	"github.com/starford/munin/internal/models"
)

func TestBuildAndParseNote(t *testing.T) {
	fm := models.NoteFrontmatter{
		Title:      "CI Pipeline Overview",
		Created:    "2026-08-30",
		Updated:    "2026-08-31",
		Domain:     "engineering",
		Category:   "processes",
		Tags:       []string{"ci", "devops"},
		Summary:    "How the pipeline is wired.",
		SourceURL:  "https://ci.example.test/docs",
		Confidence: 0.9,
		Relevance:  0.8,
		Reviewed:   true,
		Priority:   "high",
	}
	data, err := BuildNote(fm, "# CI\n\nBody text.")
	if err != nil {
		t.Fatalf("BuildNote: %v", err)
	}
	if !strings.HasPrefix(string(data), "---\n") {
		t.Errorf("note should start with frontmatter delimiter")
	}

	got, body, err := ParseNote(data)
	if err != nil {
		t.Fatalf("ParseNote: %v", err)
	}
	if got.Title != fm.Title || got.Created != fm.Created || got.Reviewed != fm.Reviewed {
		t.Errorf("frontmatter mismatch: %+v", got)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "ci" {
		t.Errorf("tags = %v", got.Tags)
	}
	if !strings.HasPrefix(body, "# CI") {
		t.Errorf("body = %q", body)
	}
}

func TestParseNote_MissingFrontmatter(t *testing.T) {
	if _, _, err := ParseNote([]byte("# Just a heading\n")); err == nil {
		t.Error("expected error for missing frontmatter")
	}
}

func TestParseNote_UnterminatedFrontmatter(t *testing.T) {
	if _, _, err := ParseNote([]byte("---\ntitle: x\n")); err == nil {
		t.Error("expected error for unterminated frontmatter")
	}
}

func TestParseNote_InvalidYAML(t *testing.T) {
	if _, _, err := ParseNote([]byte("---\n\t{bad\n---\nbody")); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestSlug(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Hello World", "hello-world"},
		{"  CI/CD: The Basics!  ", "cicd-the-basics"},
		{"already-slugged", "already-slugged"},
		{"---", ""},
	}
	for _, c := range cases {
		if got := Slug(c.in); got != c.want {
			t.Errorf("Slug(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

const sampleDoc = `# Organizational Context

Last Updated: 2026-08-30

## Team Structure

Three squads, one platform team.

## Development Processes

Trunk-based development.
`

func TestParseDocument(t *testing.T) {
	doc := ParseDocument(sampleDoc)
	if !strings.Contains(doc.Preamble, "Last Updated") {
		t.Errorf("preamble = %q", doc.Preamble)
	}
	headers := doc.Headers()
	if len(headers) != 2 || headers[0] != "Team Structure" || headers[1] != "Development Processes" {
		t.Fatalf("headers = %v", headers)
	}
	if s := doc.Find("Development Processes"); s == nil || !strings.Contains(s.Body, "Trunk-based") {
		t.Errorf("section body = %+v", s)
	}
	if doc.Find("Nope") != nil {
		t.Error("Find should return nil for unknown header")
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	doc := ParseDocument(sampleDoc)
	rendered := doc.Render()
	again := ParseDocument(rendered)
	if again.Render() != rendered {
		t.Error("render should be stable across parse cycles")
	}
}

func TestRenderReplacesOnlyTargetSection(t *testing.T) {
	doc := ParseDocument(sampleDoc)
	before := doc.Find("Team Structure").Body

	doc.Find("Development Processes").Body = "Ship twice a day."
	out := ParseDocument(doc.Render())

	if got := out.Find("Team Structure").Body; got != before {
		t.Errorf("untouched section changed: %q != %q", got, before)
	}
	if got := out.Find("Development Processes").Body; got != "Ship twice a day." {
		t.Errorf("replaced section = %q", got)
	}
}

func TestParseDocumentSectionBodyHasNoLeadingNewline(t *testing.T) {
	doc := ParseDocument("# T\n\n## A\n\nalpha\n\n## B\nbeta\n")
	if got := doc.Find("A").Body; got != "alpha" {
		t.Errorf("section A body = %q, want %q", got, "alpha")
	}
	if got := doc.Find("B").Body; got != "beta" {
		t.Errorf("section B body = %q, want %q", got, "beta")
	}
}
