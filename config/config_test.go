package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Image.MaxWidth != 1200 {
		t.Errorf("MaxWidth = %d, want 1200", cfg.Image.MaxWidth)
	}
	if cfg.Image.WebPQuality != 85 {
		t.Errorf("WebPQuality = %v, want 85", cfg.Image.WebPQuality)
	}
	if cfg.Pipeline.InternalLinkCount != 5 {
		t.Errorf("InternalLinkCount = %d, want 5", cfg.Pipeline.InternalLinkCount)
	}
	want := map[int]int{0: 0, 1: 2, 2: 5}
	for k, v := range want {
		if cfg.Pipeline.BodyImageSlots[k] != v {
			t.Errorf("BodyImageSlots[%d] = %d, want %d", k, cfg.Pipeline.BodyImageSlots[k], v)
		}
	}
	if cfg.Categories.DefaultID != 86 {
		t.Errorf("DefaultID = %d, want 86", cfg.Categories.DefaultID)
	}
}

func TestLoadParsesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{"llm":{"model":"gpt-4o-mini"},"wordpress":{"url":"https://blog.example"},"pipeline":{"internal_link_count":3}}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Errorf("Model = %q", cfg.LLM.Model)
	}
	if cfg.WordPress.URL != "https://blog.example" {
		t.Errorf("URL = %q", cfg.WordPress.URL)
	}
	if cfg.Pipeline.InternalLinkCount != 3 {
		t.Errorf("InternalLinkCount = %d, want 3", cfg.Pipeline.InternalLinkCount)
	}
}

func TestLoadRejectsBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"OPENAI_API_KEY": "sk-test",
		"WP_URL":         "https://wp.example",
		"WP_USERNAME":    "editor",
		"WP_PASSWORD":    "app-pass",
		"LOG_MODE":       "production",
	}
	var cfg Config
	applyEnv(&cfg, func(k string) string { return env[k] })
	if cfg.LLM.APIKey != "sk-test" || cfg.WordPress.URL != "https://wp.example" ||
		cfg.WordPress.Username != "editor" || cfg.WordPress.Password != "app-pass" {
		t.Errorf("env not applied: %+v", cfg)
	}
	if cfg.LogMode != "production" {
		t.Errorf("LogMode = %q", cfg.LogMode)
	}
	if cfg.Image.APIKey != "sk-test" {
		t.Errorf("image key = %q, want OPENAI_API_KEY fallback", cfg.Image.APIKey)
	}
}

func TestImageKeyFollowsProvider(t *testing.T) {
	tests := []struct {
		provider string
		want     string
	}{
		{"openai", "llm-key"},
		{"deepseek", ""},
	}
	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			cfg := Config{LLM: LLMConfig{Provider: tt.provider, APIKey: "llm-key"}}
			ApplyDefaults(&cfg)
			if cfg.Image.APIKey != tt.want {
				t.Errorf("image key = %q, want %q", cfg.Image.APIKey, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"complete", func(*Config) {}, ""},
		{"missing key", func(c *Config) { c.LLM.APIKey = "" }, "OPENAI_API_KEY"},
		{"missing all wp", func(c *Config) { c.WordPress = WordPressConfig{} }, "WP_URL, WP_USERNAME, WP_PASSWORD"},
		{"deepseek needs base url", func(c *Config) { c.LLM.Provider = "deepseek" }, "base_url"},
		{"deepseek needs image key", func(c *Config) {
			c.LLM = LLMConfig{Provider: "deepseek", APIKey: "ds-key", BaseURL: "https://api.deepseek.example"}
			c.Image.APIKey = ""
		}, "image.api_key"},
		{"negative slot", func(c *Config) { c.Pipeline.BodyImageSlots = map[int]int{0: -1} }, "negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{
				LLM:       LLMConfig{APIKey: "k"},
				WordPress: WordPressConfig{URL: "u", Username: "n", Password: "p"},
			}
			ApplyDefaults(&cfg)
			tt.mutate(&cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
