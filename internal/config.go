package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/munin/internal/gate"
	"github.com/starford/munin/internal/knowledge"
	"github.com/starford/munin/internal/models"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Knowledge KnowledgeConfig   `yaml:"knowledge"`
	Cache     CacheConfig       `yaml:"cache"`
	Auth      AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Knowledge.Validate(); err != nil {
		return err
	}
	if err := c.Cache.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// KnowledgeConfig holds the knowledge tree layout and the scoring gate
// thresholds. All file paths are relative to Root.
type KnowledgeConfig struct {
	Root                string                        `yaml:"root"`
	ContextFile         string                        `yaml:"context_file"`
	URLIndexFile        string                        `yaml:"url_index_file"`
	ConfidenceThreshold float64                       `yaml:"confidence_threshold"`
	RelevanceThreshold  float64                       `yaml:"relevance_threshold"`
	Topics              map[string]models.TopicConfig `yaml:"notes_topics"`
}

// Validate validates the knowledge configuration. The default topic must
// exist so that topic fallback can never fail at write time.
func (c *KnowledgeConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.Required),
		validation.Field(&c.ContextFile, validation.Required),
		validation.Field(&c.URLIndexFile, validation.Required),
		validation.Field(&c.ConfidenceThreshold, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&c.RelevanceThreshold, validation.Min(0.0), validation.Max(1.0)),
	); err != nil {
		return err
	}
	if _, ok := c.Topics[knowledge.DefaultTopic]; !ok {
		return fmt.Errorf("knowledge: notes_topics must contain the %q topic", knowledge.DefaultTopic)
	}
	for name, topic := range c.Topics {
		if topic.Directory == "" {
			return fmt.Errorf("knowledge: topic %q has no directory", name)
		}
	}
	return nil
}

// Engine maps the configured layout onto the store engine's configuration.
func (c *KnowledgeConfig) Engine() knowledge.Config {
	return knowledge.Config{
		Thresholds: gate.Thresholds{
			Confidence: c.ConfidenceThreshold,
			Relevance:  c.RelevanceThreshold,
		},
		ContextFile:  c.ContextFile,
		URLIndexFile: c.URLIndexFile,
		Topics:       c.Topics,
	}
}

// CacheConfig holds the derived SQLite search cache configuration.
// The cache is rebuildable from the YAML indexes at any time; Disabled
// turns full-text search off entirely.
type CacheConfig struct {
	Path     string `yaml:"path"`
	Disabled bool   `yaml:"disabled"`
}

// Validate validates the cache configuration.
func (c *CacheConfig) Validate() error {
	if c.Disabled {
		return nil
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Knowledge: KnowledgeConfig{
			Root:                "./knowledge",
			ContextFile:         "context.md",
			URLIndexFile:        "references/url-index.yaml",
			ConfidenceThreshold: 0.7,
			RelevanceThreshold:  0.7,
			Topics: map[string]models.TopicConfig{
				knowledge.DefaultTopic: {
					Directory:   "notes/general",
					Description: "Uncategorized notes",
				},
			},
		},
		Cache: CacheConfig{
			Path: "./munin.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
