package knowledge

import (
	"log/slog"

	"github.com/starford/munin/internal/models"
)

// ResolvedTopic is the outcome of topic resolution: the effective topic
// with its directory, template, and front-matter defaults.
type ResolvedTopic struct {
	Name         string
	Directory    string
	Template     string
	Description  string
	Defaults     models.FrontmatterDefaults
	UsedFallback bool
}

// ResolveTopic maps a requested topic name to its configuration. An exact
// key match wins; anything else resolves to the default topic with
// UsedFallback set. Resolution never fails: New guarantees the default
// topic exists.
func (e *Engine) ResolveTopic(requested string) ResolvedTopic {
	name := requested
	fallback := false
	tc, ok := e.cfg.Topics[name]
	if !ok || name == "" {
		if requested != "" {
			e.logger.Warn("unknown topic, falling back to default",
				slog.String("requested", requested))
		}
		name = DefaultTopic
		tc = e.cfg.Topics[DefaultTopic]
		fallback = requested != "" && requested != DefaultTopic
	}
	return ResolvedTopic{
		Name:         name,
		Directory:    tc.Directory,
		Template:     tc.Template,
		Description:  tc.Description,
		Defaults:     tc.FrontmatterDefaults,
		UsedFallback: fallback,
	}
}
