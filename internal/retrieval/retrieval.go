// Package retrieval builds the derived tag index over the URL and notes
// indexes and answers tag queries. It is read-only: it scans index files,
// never note bodies, and never mutates the stores.
package retrieval

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/starford/munin/internal/knowledge"
	"github.com/starford/munin/internal/models"
	"github.com/starford/munin/internal/storage"
)

// MatchMode selects how multiple query tags combine.
type MatchMode int

const (
	// MatchAny returns items carrying at least one query tag (union).
	MatchAny MatchMode = iota
	// MatchAll returns only items carrying every query tag (intersection).
	MatchAll
)

// ParseMatchMode maps the wire strings "any"/"all" (default any).
func ParseMatchMode(s string) (MatchMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any":
		return MatchAny, nil
	case "all":
		return MatchAll, nil
	default:
		return MatchAny, fmt.Errorf("retrieval: unknown match mode %q", s)
	}
}

// TagCount aggregates one tag across both index families.
type TagCount struct {
	Tag   string `json:"tag"`
	Notes int    `json:"notes"`
	URLs  int    `json:"urls"`
	Total int    `json:"total"`
}

// Match is one ranked search hit.
type Match struct {
	Kind       string   `json:"kind"` // "note" or "url"
	Identifier string   `json:"identifier"`
	Title      string   `json:"title"`
	Summary    string   `json:"summary"`
	Tags       []string `json:"tags"`
	Domain     string   `json:"domain,omitempty"`
	Category   string   `json:"category,omitempty"`
	Score      int      `json:"score"`
	Updated    string   `json:"updated,omitempty"`
}

type noteItem struct {
	entry models.NoteIndexEntry
	dir   string
}

type snapshot struct {
	notes []noteItem
	urls  []models.URLRecord
}

// Service answers tag queries over a cached snapshot of the indexes.
// The cache is dropped on Invalidate (wired to engine commits and the
// file watcher) and rebuilt lazily on the next query.
type Service struct {
	store        storage.Provider
	urlIndexFile string
	topics       map[string]models.TopicConfig

	mu    sync.Mutex
	cache *snapshot
}

// New creates a retrieval service over the configured index files.
func New(store storage.Provider, urlIndexFile string, topics map[string]models.TopicConfig) *Service {
	return &Service{store: store, urlIndexFile: urlIndexFile, topics: topics}
}

// Invalidate drops the cached snapshot.
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.cache = nil
	s.mu.Unlock()
}

func (s *Service) load() (*snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cache != nil {
		return s.cache, nil
	}

	snap := &snapshot{}
	urlIdx, err := knowledge.LoadURLIndex(s.store, s.urlIndexFile)
	if err != nil {
		return nil, err
	}
	snap.urls = urlIdx.URLs

	names := make([]string, 0, len(s.topics))
	for name := range s.topics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		dir := s.topics[name].Directory
		idx, err := knowledge.LoadNotesIndex(s.store, knowledge.NotesIndexPath(dir))
		if err != nil {
			return nil, err
		}
		for _, entry := range idx.Notes {
			snap.notes = append(snap.notes, noteItem{entry: entry, dir: dir})
		}
	}

	s.cache = snap
	return snap, nil
}

func normalizeTag(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}

// AvailableTags aggregates tag counts across both indexes, sorted by total
// count descending with alphabetical tie-break for deterministic output.
func (s *Service) AvailableTags() ([]TagCount, error) {
	snap, err := s.load()
	if err != nil {
		return nil, err
	}

	counts := make(map[string]*TagCount)
	bump := func(tag string, isNote bool) {
		tag = normalizeTag(tag)
		if tag == "" {
			return
		}
		tc, ok := counts[tag]
		if !ok {
			tc = &TagCount{Tag: tag}
			counts[tag] = tc
		}
		if isNote {
			tc.Notes++
		} else {
			tc.URLs++
		}
		tc.Total++
	}
	for _, n := range snap.notes {
		for _, t := range n.entry.Tags {
			bump(t, true)
		}
	}
	for _, u := range snap.urls {
		for _, t := range u.Tags {
			bump(t, false)
		}
	}

	out := make([]TagCount, 0, len(counts))
	for _, tc := range counts {
		out = append(out, *tc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Tag < out[j].Tag
	})
	return out, nil
}

// SearchByTags returns items matching the query tags, scored by the number
// of query tags hit, with most-recently-updated breaking ties. An empty
// result is an empty slice, never an error.
func (s *Service) SearchByTags(tags []string, mode MatchMode) ([]Match, error) {
	query := make(map[string]struct{})
	for _, t := range tags {
		if n := normalizeTag(t); n != "" {
			query[n] = struct{}{}
		}
	}
	if len(query) == 0 {
		return []Match{}, nil
	}

	snap, err := s.load()
	if err != nil {
		return nil, err
	}

	matches := []Match{}
	consider := func(m Match) {
		if m.Score == 0 {
			return
		}
		if mode == MatchAll && m.Score < len(query) {
			return
		}
		matches = append(matches, m)
	}

	for _, n := range snap.notes {
		e := n.entry
		consider(Match{
			Kind:       "note",
			Identifier: path.Join(n.dir, e.Filename),
			Title:      e.Title,
			Summary:    e.Summary,
			Tags:       e.Tags,
			Domain:     e.Domain,
			Category:   e.Category,
			Score:      scoreTags(e.Tags, query),
			Updated:    e.Updated,
		})
	}
	for _, u := range snap.urls {
		updated := u.Updated
		if updated == "" {
			updated = u.AddedDate
		}
		consider(Match{
			Kind:       "url",
			Identifier: u.URL,
			Title:      u.Title,
			Summary:    u.Summary,
			Tags:       u.Tags,
			Domain:     u.Domain,
			Score:      scoreTags(u.Tags, query),
			Updated:    updated,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		if matches[i].Updated != matches[j].Updated {
			return matches[i].Updated > matches[j].Updated
		}
		return matches[i].Identifier < matches[j].Identifier
	})
	return matches, nil
}

// scoreTags counts how many distinct query tags the item carries; a tag
// repeated on one item must not count twice.
func scoreTags(tags []string, query map[string]struct{}) int {
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		n := normalizeTag(t)
		if _, ok := query[n]; ok {
			seen[n] = struct{}{}
		}
	}
	return len(seen)
}
