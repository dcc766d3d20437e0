package knowledge

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/munin/internal/apperr"
	"github.com/starford/munin/internal/gate"
	"github.com/starford/munin/internal/models"
)

// NormalizeURL produces the identity key for the URL index: trimmed, with
// scheme and host lowercased. Tracking-parameter stripping is deliberately
// out of scope; beyond case folding the key is the exact string.
func NormalizeURL(raw string) string {
	s := strings.TrimSpace(raw)
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return s
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	return u.String()
}

// IngestURL adds a URL record to the index or, when the normalized URL is
// already present, merges the non-empty incoming fields into the existing
// record. The original added_date is preserved; updates stamp a separate
// updated field.
func (e *Engine) IngestURL(ctx context.Context, req models.URLIngest, sc models.Scores) (*models.Receipt, error) {
	if err := gate.Evaluate(sc, e.cfg.Thresholds); err != nil {
		return nil, err
	}
	key := NormalizeURL(req.URL)
	if key == "" {
		return nil, fmt.Errorf("knowledge: url is required")
	}

	now := e.now()
	path := e.cfg.URLIndexFile

	err := e.withStoreLock(path, func() error {
		idx, err := LoadURLIndex(e.store, path)
		if err != nil {
			return err
		}

		found := -1
		for i := range idx.URLs {
			if NormalizeURL(idx.URLs[i].URL) != key {
				continue
			}
			if found >= 0 {
				// Two records under one key means an unserialized writer
				// got here before us; surface it instead of guessing.
				return fmt.Errorf("knowledge: url %s indexed twice: %w", key, apperr.ErrDuplicateConflict)
			}
			found = i
		}

		if found >= 0 {
			mergeURLRecord(&idx.URLs[found], req, sc)
			idx.URLs[found].Updated = models.TimeStamp(now)
		} else {
			idx.URLs = append(idx.URLs, models.URLRecord{
				URL:        key,
				Title:      req.Title,
				Domain:     req.Domain,
				Context:    req.Context,
				Summary:    req.Summary,
				Tags:       req.Tags,
				AddedDate:  models.TimeStamp(now),
				Confidence: sc.Confidence,
				Relevance:  sc.Relevance,
			})
		}

		data, err := yaml.Marshal(idx)
		if err != nil {
			return fmt.Errorf("knowledge: marshal url index: %w", err)
		}
		if err := e.store.Write(path, data); err != nil {
			return &apperr.IOError{Op: "write", Path: path, Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.committed(StoreURLIndex, path)
	return &models.Receipt{Store: StoreURLIndex, Location: path}, nil
}

// mergeURLRecord folds non-empty incoming fields over the existing record.
// added_date is never touched.
func mergeURLRecord(dst *models.URLRecord, req models.URLIngest, sc models.Scores) {
	if req.Title != "" {
		dst.Title = req.Title
	}
	if req.Domain != "" {
		dst.Domain = req.Domain
	}
	if req.Context != "" {
		dst.Context = req.Context
	}
	if req.Summary != "" {
		dst.Summary = req.Summary
	}
	if len(req.Tags) > 0 {
		dst.Tags = req.Tags
	}
	dst.Confidence = sc.Confidence
	dst.Relevance = sc.Relevance
}
