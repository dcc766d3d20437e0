// Package models defines the domain types for Munin.
package models

import "time"

// DateLayout is the day-resolution stamp used in note front-matter and
// index entries.
const DateLayout = "2006-01-02"

// URLRecord is one entry in the URL index. URL (normalized) is the unique
// key; re-ingestion merges mutable fields into the existing record.
type URLRecord struct {
	URL        string   `yaml:"url" json:"url"`
	Title      string   `yaml:"title" json:"title"`
	Domain     string   `yaml:"domain" json:"domain"`
	Context    string   `yaml:"context" json:"context"`
	Summary    string   `yaml:"summary" json:"summary"`
	Tags       []string `yaml:"tags" json:"tags"`
	AddedDate  string   `yaml:"added_date" json:"added_date"`
	Updated    string   `yaml:"updated,omitempty" json:"updated,omitempty"`
	Confidence float64  `yaml:"confidence" json:"confidence"`
	Relevance  float64  `yaml:"relevance" json:"relevance"`
}

// URLIndex is the on-disk shape of the URL index file.
type URLIndex struct {
	URLs []URLRecord `yaml:"urls"`
}

// NoteFrontmatter is the metadata block prefixed to every note file.
// Field order here is the serialization order.
type NoteFrontmatter struct {
	Title      string   `yaml:"title" json:"title"`
	Created    string   `yaml:"created" json:"created"`
	Updated    string   `yaml:"updated" json:"updated"`
	Domain     string   `yaml:"domain" json:"domain"`
	Category   string   `yaml:"category" json:"category"`
	Tags       []string `yaml:"tags" json:"tags"`
	Summary    string   `yaml:"summary" json:"summary"`
	SourceURL  string   `yaml:"source_url,omitempty" json:"source_url,omitempty"`
	Confidence float64  `yaml:"confidence" json:"confidence"`
	Relevance  float64  `yaml:"relevance" json:"relevance"`
	Reviewed   bool     `yaml:"reviewed" json:"reviewed"`
	Priority   string   `yaml:"priority" json:"priority"`
}

// NoteIndexEntry mirrors a note's front-matter inside the topic index,
// keyed by filename. The pairing with the note file is the unit of
// consistency.
type NoteIndexEntry struct {
	Filename   string   `yaml:"filename" json:"filename"`
	Title      string   `yaml:"title" json:"title"`
	Domain     string   `yaml:"domain" json:"domain"`
	Category   string   `yaml:"category" json:"category"`
	Summary    string   `yaml:"summary" json:"summary"`
	Tags       []string `yaml:"tags" json:"tags"`
	Created    string   `yaml:"created" json:"created"`
	Updated    string   `yaml:"updated" json:"updated"`
	Confidence float64  `yaml:"confidence" json:"confidence"`
	Relevance  float64  `yaml:"relevance" json:"relevance"`
}

// NotesIndex is the on-disk shape of a topic's _index.yaml.
type NotesIndex struct {
	Topic       string           `yaml:"topic"`
	Description string           `yaml:"description"`
	Notes       []NoteIndexEntry `yaml:"notes"`
}

// FrontmatterDefaults are topic-level defaults merged under caller-supplied
// note fields (caller fields win).
type FrontmatterDefaults struct {
	Domain   string   `yaml:"domain" json:"domain"`
	Category string   `yaml:"category" json:"category"`
	Priority string   `yaml:"priority" json:"priority"`
	Reviewed bool     `yaml:"reviewed" json:"reviewed"`
	Tags     []string `yaml:"tags" json:"tags"`
}

// TopicConfig describes one partition of the note store.
type TopicConfig struct {
	Directory           string              `yaml:"directory" json:"directory"`
	Template            string              `yaml:"template" json:"template"`
	Description         string              `yaml:"description" json:"description"`
	FrontmatterDefaults FrontmatterDefaults `yaml:"frontmatter_defaults" json:"frontmatter_defaults"`
}

// DateStamp formats t at day resolution for front-matter fields.
func DateStamp(t time.Time) string {
	return t.Format(DateLayout)
}

// TimeStamp formats t for the URL index's added_date/updated fields.
func TimeStamp(t time.Time) string {
	return t.Format(time.RFC3339)
}
