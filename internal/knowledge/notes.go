package knowledge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/starford/munin/internal/apperr"
	"github.com/starford/munin/internal/gate"
	"github.com/starford/munin/internal/markdown"
	"github.com/starford/munin/internal/models"
)

// IngestNote commits a note as a paired write: the note file first, then
// its entry in the topic's _index.yaml. When the note write succeeds but
// the index write fails, the note is left as a detectable orphan and the
// error is an *apperr.OrphanedNoteError.
//
// An empty req.Filename creates a new note with a date+slug filename
// (collision-suffixed, never overwritten); a non-empty one rewrites that
// note and its index entry in place, preserving the created stamp.
func (e *Engine) IngestNote(ctx context.Context, req models.NoteIngest, sc models.Scores) (*models.Receipt, error) {
	if err := gate.Evaluate(sc, e.cfg.Thresholds); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("knowledge: note title is required")
	}

	topic := e.ResolveTopic(req.Topic)
	now := e.now()
	indexPath := NotesIndexPath(topic.Directory)

	var notePath string
	err := e.withStoreLock(indexPath, func() error {
		fm := e.buildFrontmatter(req, sc, topic.Defaults, models.DateStamp(now))

		body := req.Body
		filename := req.Filename
		if filename == "" {
			// New notes without content start from the topic's skeleton.
			if body == "" {
				body = topic.Template
			}
			var err error
			filename, err = e.pickFilename(topic.Directory, req.Title, now)
			if err != nil {
				return err
			}
		} else {
			existing, err := e.readFrontmatter(topic.Directory, filename)
			if err != nil {
				return err
			}
			fm.Created = existing.Created
		}
		notePath = path.Join(topic.Directory, filename)

		content, err := markdown.BuildNote(fm, body)
		if err != nil {
			return err
		}
		if err := e.store.Write(notePath, content); err != nil {
			return &apperr.IOError{Op: "write", Path: notePath, Err: err}
		}

		// Note file is durable; an index failure past this point is the
		// documented orphan window and must stay distinguishable.
		if err := e.upsertIndexEntry(topic, filename, fm); err != nil {
			e.logger.Error("orphaned note: index update failed after note commit",
				slog.String("note", notePath),
				slog.String("error", err.Error()))
			return &apperr.OrphanedNoteError{NotePath: notePath, Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.committed(StoreNotes, notePath)
	return &models.Receipt{Store: StoreNotes, Location: notePath}, nil
}

// buildFrontmatter merges caller fields over the topic defaults; caller
// fields win. created is overwritten later for in-place updates.
func (e *Engine) buildFrontmatter(req models.NoteIngest, sc models.Scores, def models.FrontmatterDefaults, today string) models.NoteFrontmatter {
	fm := models.NoteFrontmatter{
		Title:      req.Title,
		Created:    today,
		Updated:    today,
		Domain:     req.Domain,
		Category:   req.Category,
		Tags:       req.Tags,
		Summary:    req.Summary,
		SourceURL:  req.SourceURL,
		Confidence: sc.Confidence,
		Relevance:  sc.Relevance,
		Reviewed:   def.Reviewed,
		Priority:   def.Priority,
	}
	if fm.Domain == "" {
		fm.Domain = def.Domain
	}
	if fm.Domain == "" {
		fm.Domain = "general"
	}
	if fm.Category == "" {
		fm.Category = def.Category
	}
	if fm.Category == "" {
		fm.Category = "general"
	}
	if fm.Priority == "" {
		fm.Priority = "medium"
	}
	if len(fm.Tags) == 0 {
		fm.Tags = def.Tags
	}
	return fm
}

// pickFilename builds <YYYYMMDD>-<slug>.md, appending -1, -2, ... until
// the name is free.
func (e *Engine) pickFilename(dir, title string, now time.Time) (string, error) {
	slug := markdown.Slug(title)
	if slug == "" {
		slug = "note"
	}
	base := now.Format("20060102") + "-" + slug

	name := base + ".md"
	for counter := 1; ; counter++ {
		exists, err := e.store.Exists(path.Join(dir, name))
		if err != nil {
			return "", err
		}
		if !exists {
			return name, nil
		}
		name = fmt.Sprintf("%s-%d.md", base, counter)
	}
}

// readFrontmatter loads an existing note for an in-place update.
func (e *Engine) readFrontmatter(dir, filename string) (models.NoteFrontmatter, error) {
	p := path.Join(dir, filename)
	data, err := e.store.Read(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return models.NoteFrontmatter{}, fmt.Errorf("knowledge: note %s: %w", p, apperr.ErrNotFound)
		}
		return models.NoteFrontmatter{}, &apperr.IOError{Op: "read", Path: p, Err: err}
	}
	fm, _, err := markdown.ParseNote(data)
	if err != nil {
		return models.NoteFrontmatter{}, &apperr.CorruptStoreError{Path: p, Err: err}
	}
	return fm, nil
}

// upsertIndexEntry rewrites the topic index with the note's entry added or
// replaced, keyed by filename.
func (e *Engine) upsertIndexEntry(topic ResolvedTopic, filename string, fm models.NoteFrontmatter) error {
	indexPath := NotesIndexPath(topic.Directory)
	idx, err := LoadNotesIndex(e.store, indexPath)
	if err != nil {
		return err
	}
	idx.Topic = topic.Name
	idx.Description = topic.Description

	entry := models.NoteIndexEntry{
		Filename:   filename,
		Title:      fm.Title,
		Domain:     fm.Domain,
		Category:   fm.Category,
		Summary:    fm.Summary,
		Tags:       fm.Tags,
		Created:    fm.Created,
		Updated:    fm.Updated,
		Confidence: fm.Confidence,
		Relevance:  fm.Relevance,
	}

	replaced := false
	for i := range idx.Notes {
		if idx.Notes[i].Filename == filename {
			idx.Notes[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		idx.Notes = append(idx.Notes, entry)
	}

	data, err := yaml.Marshal(idx)
	if err != nil {
		return fmt.Errorf("knowledge: marshal notes index: %w", err)
	}
	if err := e.store.Write(indexPath, data); err != nil {
		return &apperr.IOError{Op: "write", Path: indexPath, Err: err}
	}
	return nil
}
