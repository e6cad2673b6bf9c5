package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Config is built once at process start and handed to every constructor.
type Config struct {
	LLM        LLMConfig       `json:"llm"`
	Image      ImageConfig     `json:"image"`
	WordPress  WordPressConfig `json:"wordpress"`
	Pipeline   PipelineConfig  `json:"pipeline"`
	Categories CategoryConfig  `json:"categories"`
	ServerAddr string          `json:"server_addr,omitempty"`
	LedgerPath string          `json:"ledger_path,omitempty"`
	LogMode    string          `json:"log_mode,omitempty"`
}

// LLMConfig selects the text-generation provider.
type LLMConfig struct {
	Provider    string  `json:"provider,omitempty"`
	Model       string  `json:"model,omitempty"`
	APIKey      string  `json:"api_key,omitempty"`
	BaseURL     string  `json:"base_url,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

// ImageConfig controls image synthesis and re-encoding.
type ImageConfig struct {
	// APIKey is the OpenAI key for image generation. It defaults to the llm key
	// when the llm provider is openai.
	APIKey      string  `json:"api_key,omitempty"`
	Model       string  `json:"model,omitempty"`
	Size        string  `json:"size,omitempty"`
	Quality     string  `json:"quality,omitempty"`
	MaxWidth    int     `json:"max_width,omitempty"`
	WebPQuality float32 `json:"webp_quality,omitempty"`
	Concurrency int     `json:"concurrency,omitempty"`
	OutputDir   string  `json:"output_dir,omitempty"`
}

// WordPressConfig holds the REST API endpoint and application password.
type WordPressConfig struct {
	URL      string `json:"url"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// PipelineConfig tunes a single document build.
type PipelineConfig struct {
	CallTimeoutSeconds    int    `json:"call_timeout_seconds,omitempty"`
	InternalLinkCount     int    `json:"internal_link_count,omitempty"`
	SectionConcurrency    int    `json:"section_concurrency,omitempty"`
	ValidateExternalLinks bool   `json:"validate_external_links,omitempty"`
	VerifyAfterPublish    bool   `json:"verify_after_publish,omitempty"`
	TagSampleSize         int    `json:"tag_sample_size,omitempty"`
	VerifiedTagsPath      string `json:"verified_tags_path,omitempty"`
	// BodyImageSlots maps body image ordinal to the zero-based heading it follows.
	BodyImageSlots map[int]int `json:"body_image_slots,omitempty"`
}

// CategoryConfig maps topics to category ids.
type CategoryConfig struct {
	DefaultID int            `json:"default_id,omitempty"`
	Rules     []CategoryRule `json:"rules,omitempty"`
}

// CategoryRule assigns ID when any keyword occurs in the topic or focus keyword.
type CategoryRule struct {
	ID       int      `json:"id"`
	Keywords []string `json:"keywords"`
}

// Load reads the JSON config at path (optional when empty or missing), applies
// environment overrides and defaults. It does not validate.
func Load(path string) (Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := json.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	applyEnv(&cfg, os.Getenv)
	ApplyDefaults(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string) {
	if v := getenv("OPENAI_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
		if cfg.Image.APIKey == "" {
			cfg.Image.APIKey = v
		}
	}
	if v := getenv("WP_URL"); v != "" {
		cfg.WordPress.URL = v
	}
	if v := getenv("WP_USERNAME"); v != "" {
		cfg.WordPress.Username = v
	}
	if v := getenv("WP_PASSWORD"); v != "" {
		cfg.WordPress.Password = v
	}
	if v := getenv("LOG_MODE"); v != "" {
		cfg.LogMode = v
	}
}

// ApplyDefaults fills every unset tunable.
func ApplyDefaults(cfg *Config) {
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "openai"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gpt-4o"
	}
	if cfg.Image.APIKey == "" && cfg.LLM.Provider == "openai" {
		cfg.Image.APIKey = cfg.LLM.APIKey
	}
	if cfg.Image.Model == "" {
		cfg.Image.Model = "dall-e-3"
	}
	if cfg.Image.Size == "" {
		cfg.Image.Size = "1024x1024"
	}
	if cfg.Image.Quality == "" {
		cfg.Image.Quality = "standard"
	}
	if cfg.Image.MaxWidth <= 0 {
		cfg.Image.MaxWidth = 1200
	}
	if cfg.Image.WebPQuality <= 0 {
		cfg.Image.WebPQuality = 85
	}
	if cfg.Image.Concurrency <= 0 {
		cfg.Image.Concurrency = 2
	}
	if cfg.Pipeline.CallTimeoutSeconds <= 0 {
		cfg.Pipeline.CallTimeoutSeconds = 120
	}
	if cfg.Pipeline.InternalLinkCount <= 0 {
		cfg.Pipeline.InternalLinkCount = 5
	}
	if cfg.Pipeline.SectionConcurrency <= 0 {
		cfg.Pipeline.SectionConcurrency = 1
	}
	if cfg.Pipeline.TagSampleSize <= 0 {
		cfg.Pipeline.TagSampleSize = 7
	}
	if len(cfg.Pipeline.BodyImageSlots) == 0 {
		cfg.Pipeline.BodyImageSlots = map[int]int{0: 0, 1: 2, 2: 5}
	}
	if cfg.Categories.DefaultID == 0 && len(cfg.Categories.Rules) == 0 {
		cfg.Categories = CategoryConfig{
			DefaultID: 86,
			Rules: []CategoryRule{
				{ID: 2, Keywords: []string{"지원금", "정책", "보조금", "수당", "복지"}},
			},
		}
	}
	if cfg.ServerAddr == "" {
		cfg.ServerAddr = ":8080"
	}
	if cfg.LedgerPath == "" {
		cfg.LedgerPath = "data/campaigns.db"
	}
}

// Validate reports every missing required setting in one error.
func Validate(cfg Config) error {
	var missing []string
	if cfg.LLM.APIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if cfg.Image.APIKey == "" {
		missing = append(missing, "image.api_key")
	}
	if cfg.WordPress.URL == "" {
		missing = append(missing, "WP_URL")
	}
	if cfg.WordPress.Username == "" {
		missing = append(missing, "WP_USERNAME")
	}
	if cfg.WordPress.Password == "" {
		missing = append(missing, "WP_PASSWORD")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}
	if cfg.LLM.Provider == "deepseek" && cfg.LLM.BaseURL == "" {
		return errors.New("llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
	}
	for slot, heading := range cfg.Pipeline.BodyImageSlots {
		if slot < 0 || heading < 0 {
			return fmt.Errorf("body_image_slots: negative entry %d→%d", slot, heading)
		}
	}
	return nil
}

// CallTimeout is the per external call deadline.
func (c Config) CallTimeout() time.Duration {
	return time.Duration(c.Pipeline.CallTimeoutSeconds) * time.Second
}
