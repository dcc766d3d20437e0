package knowledge

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/starford/munin/internal/apperr"
	"github.com/starford/munin/internal/models"
	"github.com/starford/munin/internal/storage"
)

// LoadURLIndex reads and parses the URL index at path. A missing file is
// an empty index; a parse failure is a CorruptStoreError and the file is
// left untouched.
func LoadURLIndex(store storage.Provider, path string) (models.URLIndex, error) {
	var idx models.URLIndex
	data, err := store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return idx, nil
		}
		return idx, &apperr.IOError{Op: "read", Path: path, Err: err}
	}
	if err := yaml.Unmarshal(data, &idx); err != nil {
		return models.URLIndex{}, &apperr.CorruptStoreError{Path: path, Err: err}
	}
	return idx, nil
}

// LoadNotesIndex reads and parses a topic's _index.yaml at path, with the
// same missing/corrupt semantics as LoadURLIndex.
func LoadNotesIndex(store storage.Provider, path string) (models.NotesIndex, error) {
	var idx models.NotesIndex
	data, err := store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return idx, nil
		}
		return idx, &apperr.IOError{Op: "read", Path: path, Err: err}
	}
	if err := yaml.Unmarshal(data, &idx); err != nil {
		return models.NotesIndex{}, &apperr.CorruptStoreError{Path: path, Err: err}
	}
	return idx, nil
}

// NotesIndexPath returns the index file path for a topic directory.
func NotesIndexPath(dir string) string {
	return dir + "/_index.yaml"
}
