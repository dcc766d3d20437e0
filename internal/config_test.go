package internal

import (
	"strings"
	"testing"

	"github.com/starford/munin/internal/models"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestKnowledgeConfig_MissingDefaultTopic(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Knowledge.Topics = map[string]models.TopicConfig{
		"engineering": {Directory: "notes/engineering"},
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("missing default topic should fail validation")
	}
	if !strings.Contains(err.Error(), "default") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestKnowledgeConfig_TopicWithoutDirectory(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Knowledge.Topics["broken"] = models.TopicConfig{}
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty topic directory should fail validation")
	}
}

func TestKnowledgeConfig_ThresholdRange(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Knowledge.ConfidenceThreshold = 1.5
	if err := cfg.Validate(); err == nil {
		t.Fatal("threshold above 1 should fail validation")
	}
}

func TestKnowledgeConfig_EngineMapping(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Knowledge.ConfidenceThreshold = 0.8
	cfg.Knowledge.RelevanceThreshold = 0.6

	ec := cfg.Knowledge.Engine()
	if ec.Thresholds.Confidence != 0.8 || ec.Thresholds.Relevance != 0.6 {
		t.Errorf("thresholds = %+v", ec.Thresholds)
	}
	if ec.ContextFile != cfg.Knowledge.ContextFile {
		t.Errorf("context file = %q", ec.ContextFile)
	}
	if _, ok := ec.Topics["default"]; !ok {
		t.Error("default topic not carried into engine config")
	}
}

func TestCacheConfig_DisabledSkipsPathCheck(t *testing.T) {
	cfg := CacheConfig{Disabled: true}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled cache should not require a path: %v", err)
	}
	cfg = CacheConfig{Disabled: false, Path: ""}
	if err := cfg.Validate(); err == nil {
		t.Fatal("enabled cache without path should fail")
	}
}

func TestHTTPConfig_PortRange(t *testing.T) {
	for _, port := range []int{0, -1, 70000} {
		cfg := HTTPConfig{Port: port}
		if err := cfg.Validate(); err == nil {
			t.Errorf("port %d should fail validation", port)
		}
	}
	cfg := HTTPConfig{Port: 8080}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid port rejected: %v", err)
	}
	if cfg.Address() != ":8080" {
		t.Errorf("address = %q", cfg.Address())
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validation should surface auth errors")
	}
}
