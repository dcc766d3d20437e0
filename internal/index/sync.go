package index

import (
	"log/slog"
	"path"

	"github.com/starford/munin/internal/knowledge"
	"github.com/starford/munin/internal/models"
	"github.com/starford/munin/internal/storage"
)

// Sync rebuilds the search cache from the YAML indexes:
//   - every URL record and note index entry is upserted
//   - cached items no longer present in any index are deleted
//
// A corrupt index is logged and skipped; the cache keeps serving the last
// good state for that store.
func Sync(db *DB, store storage.Provider, urlIndexFile string, topics map[string]models.TopicConfig, logger *slog.Logger) error {
	desired := make(map[string]Item)

	urlIdx, err := knowledge.LoadURLIndex(store, urlIndexFile)
	if err != nil {
		logger.Warn("sync: url index unreadable", slog.String("error", err.Error()))
	} else {
		for _, u := range urlIdx.URLs {
			updated := u.Updated
			if updated == "" {
				updated = u.AddedDate
			}
			it := Item{
				Kind:       "url",
				Identifier: u.URL,
				Title:      u.Title,
				Summary:    u.Summary,
				Tags:       u.Tags,
				Domain:     u.Domain,
				UpdatedAt:  updated,
			}
			desired[it.ID()] = it
		}
	}

	for name, tc := range topics {
		idx, err := knowledge.LoadNotesIndex(store, knowledge.NotesIndexPath(tc.Directory))
		if err != nil {
			logger.Warn("sync: notes index unreadable",
				slog.String("topic", name),
				slog.String("error", err.Error()))
			continue
		}
		for _, e := range idx.Notes {
			it := Item{
				Kind:       "note",
				Identifier: path.Join(tc.Directory, e.Filename),
				Title:      e.Title,
				Summary:    e.Summary,
				Tags:       e.Tags,
				Domain:     e.Domain,
				UpdatedAt:  e.Updated,
			}
			desired[it.ID()] = it
		}
	}

	cached, err := db.AllIDs()
	if err != nil {
		return err
	}

	for id, it := range desired {
		if err := db.UpsertItem(it); err != nil {
			logger.Warn("sync: upsert failed", slog.String("id", id), slog.String("error", err.Error()))
		}
	}
	for id := range cached {
		if _, ok := desired[id]; ok {
			continue
		}
		if err := db.DeleteItem(id); err != nil {
			logger.Warn("sync: delete failed", slog.String("id", id), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: removed stale", slog.String("id", id))
		}
	}
	return nil
}
