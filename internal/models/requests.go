package models

// Scores carries the confidence/relevance pair attached to every ingest
// request. Both are expected in [0,1]; the gate rejects anything else.
type Scores struct {
	Confidence float64 `json:"confidence"`
	Relevance  float64 `json:"relevance"`
}

// URLIngest is the request payload for adding or updating a URL record.
type URLIngest struct {
	URL     string   `json:"url"`
	Title   string   `json:"title"`
	Domain  string   `json:"domain"`
	Context string   `json:"context"`
	Summary string   `json:"summary"`
	Tags    []string `json:"tags"`
}

// NoteIngest is the request payload for creating or updating a note.
// An empty Filename creates a new note (collision-suffixed); a non-empty
// Filename rewrites that note and its index entry in place.
type NoteIngest struct {
	Topic     string   `json:"topic"`
	Title     string   `json:"title"`
	Body      string   `json:"body"`
	Domain    string   `json:"domain"`
	Category  string   `json:"category"`
	Tags      []string `json:"tags"`
	Summary   string   `json:"summary"`
	SourceURL string   `json:"source_url,omitempty"`
	Filename  string   `json:"filename,omitempty"`
}

// ContextMode selects how UpdateContext treats an existing section.
type ContextMode string

const (
	// ContextReplace swaps the section body for the new content.
	ContextReplace ContextMode = "replace"
	// ContextAppend adds the new content after the existing body.
	ContextAppend ContextMode = "append"
)

// ContextUpdate is the request payload for updating the context document.
type ContextUpdate struct {
	Section string      `json:"section"`
	Body    string      `json:"body"`
	Mode    ContextMode `json:"mode,omitempty"`
}

// Receipt reports where a committed ingest landed.
type Receipt struct {
	Store    string `json:"store"`
	Location string `json:"location"`
}
