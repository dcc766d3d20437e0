package knowledge

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/starford/munin/internal/apperr"
	"github.com/starford/munin/internal/gate"
	"github.com/starford/munin/internal/markdown"
	"github.com/starford/munin/internal/models"
)

var lastUpdatedRe = regexp.MustCompile(`Last Updated: \d{4}-\d{2}-\d{2}`)

const contextTemplate = "# Organizational Context\n\nLast Updated: %s\n"

// UpdateContext applies a section update to the context document: an
// existing header gets its body replaced (or appended to, per Mode), an
// unknown header becomes a new section at the end. The whole document is
// rewritten atomically.
func (e *Engine) UpdateContext(ctx context.Context, req models.ContextUpdate, sc models.Scores) (*models.Receipt, error) {
	if err := gate.Evaluate(sc, e.cfg.Thresholds); err != nil {
		return nil, err
	}
	section := strings.TrimSpace(req.Section)
	if section == "" {
		return nil, fmt.Errorf("knowledge: section header is required")
	}
	mode := req.Mode
	if mode == "" {
		mode = models.ContextReplace
	}

	today := models.DateStamp(e.now())
	path := e.cfg.ContextFile

	err := e.withStoreLock(path, func() error {
		raw, err := e.store.Read(path)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return &apperr.IOError{Op: "read", Path: path, Err: err}
			}
			raw = []byte(fmt.Sprintf(contextTemplate, today))
		}

		doc := markdown.ParseDocument(string(raw))
		if s := doc.Find(section); s != nil {
			if mode == models.ContextAppend {
				s.Body = strings.TrimRight(s.Body, "\n") + "\n\n" + req.Body
			} else {
				s.Body = req.Body
			}
		} else {
			doc.Sections = append(doc.Sections, markdown.Section{Header: section, Body: req.Body})
		}
		doc.Preamble = lastUpdatedRe.ReplaceAllString(doc.Preamble, "Last Updated: "+today)

		if err := e.store.Write(path, []byte(doc.Render())); err != nil {
			return &apperr.IOError{Op: "write", Path: path, Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	location := path + "#" + section
	e.committed(StoreContext, location)
	return &models.Receipt{Store: StoreContext, Location: location}, nil
}
