package knowledge

import (
	"context"
	"errors"
	"os"
	"path"
	"sort"

	"github.com/starford/munin/internal/apperr"
	"github.com/starford/munin/internal/markdown"
)

// TopicStatus reports one note partition, including both halves of the
// note/index pairing invariant: files without an index entry (orphans)
// and entries whose file is gone.
type TopicStatus struct {
	Topic         string   `json:"topic"`
	Directory     string   `json:"directory"`
	NoteCount     int      `json:"note_count"`
	OrphanedFiles []string `json:"orphaned_files,omitempty"`
	MissingFiles  []string `json:"missing_files,omitempty"`
}

// Status is the read-only aggregate view across all stores.
type Status struct {
	ContextPresent      bool          `json:"context_present"`
	ContextSize         int           `json:"context_size"`
	ContextSections     []string      `json:"context_sections"`
	URLCount            int           `json:"url_count"`
	URLIndexError       string        `json:"url_index_error,omitempty"`
	Topics              []TopicStatus `json:"topics"`
	ConfidenceThreshold float64       `json:"confidence_threshold"`
	RelevanceThreshold  float64       `json:"relevance_threshold"`
}

// Status scans every store without mutating anything. A corrupt index is
// reported inside the status rather than failing the whole scan; the
// other stores stay usable.
func (e *Engine) Status(ctx context.Context) (*Status, error) {
	st := &Status{
		ContextSections:     []string{},
		Topics:              []TopicStatus{},
		ConfidenceThreshold: e.cfg.Thresholds.Confidence,
		RelevanceThreshold:  e.cfg.Thresholds.Relevance,
	}

	if raw, err := e.store.Read(e.cfg.ContextFile); err == nil {
		st.ContextPresent = true
		st.ContextSize = len(raw)
		st.ContextSections = markdown.ParseDocument(string(raw)).Headers()
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, &apperr.IOError{Op: "read", Path: e.cfg.ContextFile, Err: err}
	}

	urlIdx, err := LoadURLIndex(e.store, e.cfg.URLIndexFile)
	if err != nil {
		var corrupt *apperr.CorruptStoreError
		if !errors.As(err, &corrupt) {
			return nil, err
		}
		st.URLIndexError = corrupt.Error()
	} else {
		st.URLCount = len(urlIdx.URLs)
	}

	names := make([]string, 0, len(e.cfg.Topics))
	for name := range e.cfg.Topics {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ts, err := e.topicStatus(name, e.cfg.Topics[name].Directory)
		if err != nil {
			return nil, err
		}
		st.Topics = append(st.Topics, ts)
	}
	return st, nil
}

func (e *Engine) topicStatus(name, dir string) (TopicStatus, error) {
	ts := TopicStatus{Topic: name, Directory: dir}

	idx, err := LoadNotesIndex(e.store, NotesIndexPath(dir))
	if err != nil {
		var corrupt *apperr.CorruptStoreError
		if !errors.As(err, &corrupt) {
			return ts, err
		}
		// A corrupt index makes every file in the topic look unindexed;
		// report the files instead of guessing.
		idx.Notes = nil
	}
	ts.NoteCount = len(idx.Notes)

	files, err := e.store.List(dir)
	if err != nil {
		return ts, &apperr.IOError{Op: "list", Path: dir, Err: err}
	}
	onDisk := make(map[string]struct{}, len(files))
	for _, f := range files {
		onDisk[path.Base(f)] = struct{}{}
	}

	indexed := make(map[string]struct{}, len(idx.Notes))
	for _, entry := range idx.Notes {
		indexed[entry.Filename] = struct{}{}
		if _, ok := onDisk[entry.Filename]; !ok {
			ts.MissingFiles = append(ts.MissingFiles, entry.Filename)
		}
	}
	for _, f := range files {
		if _, ok := indexed[path.Base(f)]; !ok {
			ts.OrphanedFiles = append(ts.OrphanedFiles, path.Base(f))
		}
	}
	sort.Strings(ts.OrphanedFiles)
	sort.Strings(ts.MissingFiles)
	return ts, nil
}
