package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"auto_wp_seo_publisher/config"
	"auto_wp_seo_publisher/generator"
	"auto_wp_seo_publisher/images"
	"auto_wp_seo_publisher/linkcheck"
	"auto_wp_seo_publisher/logger"
	"auto_wp_seo_publisher/pipeline"
	"auto_wp_seo_publisher/publisher"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app is the wired object graph shared by the subcommands.
type app struct {
	cfg     config.Config
	log     *logger.Logger
	wp      *publisher.Client
	builder *pipeline.Builder
}

// loadApp reads configuration and builds the backend client. withBuilder also
// wires the generation and image stages, which need provider credentials.
func loadApp(withBuilder bool) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogMode, debug)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	a := &app{cfg: cfg, log: log}

	httpClient := &http.Client{Timeout: cfg.CallTimeout()}
	if a.wp, err = publisher.New(cfg.WordPress, httpClient, log); err != nil {
		return nil, err
	}
	if !withBuilder {
		return a, nil
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	llm, err := buildLLM(cfg)
	if err != nil {
		return nil, err
	}
	tags, err := generator.LoadVerifiedTags(cfg.Pipeline.VerifiedTagsPath)
	if err != nil {
		return nil, err
	}
	agent, err := generator.NewAgent(llm,
		generator.WithLogger(log),
		generator.WithTimeout(cfg.CallTimeout()),
		generator.WithRand(generator.NewLockedRand(time.Now().UnixNano())),
		generator.WithSectionConcurrency(cfg.Pipeline.SectionConcurrency),
		generator.WithTags(tags, cfg.Pipeline.TagSampleSize),
	)
	if err != nil {
		return nil, err
	}

	// image generation always talks to the OpenAI endpoint
	imageBaseURL := ""
	if cfg.LLM.Provider == "openai" {
		imageBaseURL = cfg.LLM.BaseURL
	}
	synth, err := images.NewOpenAISynthesizer(cfg.Image.APIKey, imageBaseURL, cfg.Image)
	if err != nil {
		return nil, err
	}
	imgs := images.NewPipeline(synth, images.NewProcessor(httpClient, cfg.Image.MaxWidth, cfg.Image.WebPQuality), a.wp,
		images.WithWorkers(cfg.Image.Concurrency),
		images.WithCallTimeout(cfg.CallTimeout()),
		images.WithOutputDir(cfg.Image.OutputDir),
		images.WithPipelineLogger(log),
	)

	a.builder, err = pipeline.New(cfg, pipeline.Deps{
		Agent:       agent,
		Images:      imgs,
		Backend:     a.wp,
		LinkChecker: linkcheck.New(&http.Client{Timeout: 10 * time.Second}, []string{linkcheck.HostOf(cfg.WordPress.URL)}, log),
		Log:         log,
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func buildLLM(cfg config.Config) (generator.LLMClient, error) {
	settings := &generator.LLMSettings{
		Provider:    cfg.LLM.Provider,
		Model:       cfg.LLM.Model,
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Temperature: cfg.LLM.Temperature,
	}
	switch cfg.LLM.Provider {
	case "openai":
		return generator.NewOpenAILLMFromConfig(settings)
	case "deepseek":
		// OpenAI-compatible endpoint
		if cfg.LLM.BaseURL == "" {
			return nil, fmt.Errorf("llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
		}
		return generator.NewOpenAILLMFromConfig(settings)
	case "mock":
		return &generator.MockLLM{}, nil
	default:
		return nil, fmt.Errorf("llm provider %s not supported", cfg.LLM.Provider)
	}
}
