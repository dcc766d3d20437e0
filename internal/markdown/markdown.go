// Package markdown handles the on-disk text shapes: note front-matter
// blocks, deterministic filenames, and the sectioned context document.
package markdown

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/munin/internal/models"
)

const delim = "---"

var (
	slugStripRe    = regexp.MustCompile(`[^\w\s-]`)
	slugCollapseRe = regexp.MustCompile(`[-\s]+`)
)

// BuildNote serializes front-matter and body into a note file.
func BuildNote(fm models.NoteFrontmatter, body string) ([]byte, error) {
	block, err := yaml.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("markdown: marshal frontmatter: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString(delim + "\n")
	buf.Write(block)
	buf.WriteString(delim + "\n\n")
	buf.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}

// ParseNote splits a note file into typed front-matter and body.
// A missing or unparsable front-matter block is an error here; the caller
// decides whether that means a corrupt store.
func ParseNote(data []byte) (models.NoteFrontmatter, string, error) {
	var fm models.NoteFrontmatter

	trimmed := bytes.TrimLeft(data, "\n\r")
	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return fm, "", fmt.Errorf("markdown: missing frontmatter block")
	}
	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return fm, "", fmt.Errorf("markdown: unterminated frontmatter block")
	}
	if err := yaml.Unmarshal(rest[:idx], &fm); err != nil {
		return fm, "", fmt.Errorf("markdown: parse frontmatter: %w", err)
	}
	body := strings.TrimLeft(string(rest[idx+1+len(delim):]), "\n\r")
	return fm, body, nil
}

// Slug lowercases a title and reduces it to hyphen-separated word
// characters, suitable for filenames.
func Slug(title string) string {
	s := strings.ToLower(title)
	s = slugStripRe.ReplaceAllString(s, "")
	s = slugCollapseRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Section is one `## ` block of the context document.
type Section struct {
	Header string
	Body   string
}

// Document is the parsed context document: free-form preamble followed by
// uniquely-headed sections.
type Document struct {
	Preamble string
	Sections []Section
}

// ParseDocument splits content on level-two headings. Everything before
// the first `## ` line is preamble.
func ParseDocument(content string) *Document {
	doc := &Document{}
	lines := strings.Split(content, "\n")

	var cur *Section
	var buf []string

	flush := func() {
		text := strings.TrimRight(strings.Join(buf, "\n"), "\n")
		if cur == nil {
			doc.Preamble = text
		} else {
			// The blank separator after the header belongs to the layout,
			// not the body; Render re-inserts it.
			cur.Body = strings.TrimLeft(text, "\n")
			doc.Sections = append(doc.Sections, *cur)
		}
		buf = buf[:0]
	}

	for _, line := range lines {
		if strings.HasPrefix(line, "## ") {
			flush()
			cur = &Section{Header: strings.TrimSpace(strings.TrimPrefix(line, "## "))}
			continue
		}
		buf = append(buf, line)
	}
	flush()
	return doc
}

// Find returns a pointer into the document's section with the exact
// header, or nil.
func (d *Document) Find(header string) *Section {
	for i := range d.Sections {
		if d.Sections[i].Header == header {
			return &d.Sections[i]
		}
	}
	return nil
}

// Headers lists the section headers in document order.
func (d *Document) Headers() []string {
	out := make([]string, len(d.Sections))
	for i, s := range d.Sections {
		out[i] = s.Header
	}
	return out
}

// Render serializes the document back to markdown. Sections are separated
// by blank lines; untouched sections round-trip byte-identical.
func (d *Document) Render() string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(d.Preamble, "\n"))
	for _, s := range d.Sections {
		b.WriteString("\n\n## ")
		b.WriteString(s.Header)
		b.WriteString("\n\n")
		b.WriteString(strings.TrimSpace(s.Body))
	}
	b.WriteString("\n")
	return b.String()
}
