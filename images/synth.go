package images

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"auto_wp_seo_publisher/config"
)

// Synthesizer turns a prompt into a transient URL of a generated image.
type Synthesizer interface {
	Synthesize(ctx context.Context, prompt string) (string, error)
}

// StylePrompt wraps a descriptor prompt with the house illustration style.
func StylePrompt(prompt string) string {
	return fmt.Sprintf("A high-quality, modern, and clean blog illustration about: %s. "+
		"ABSOLUTELY NO TEXT, NO LETTERS, NO NUMBERS, NO CHARTS WITH DATA VALUES inside the image. "+
		"Use 3D isometric or flat vector illustration style, minimalist, abstract, professional, "+
		"infographic elements without text labels.", prompt)
}

// OpenAISynthesizer generates images with the images endpoint of openai-go.
type OpenAISynthesizer struct {
	Model   string
	Size    string
	Quality string
	client  openai.Client
}

func NewOpenAISynthesizer(apiKey, baseURL string, cfg config.ImageConfig) (*OpenAISynthesizer, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key missing for image synthesis")
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAISynthesizer{
		Model:   cfg.Model,
		Size:    cfg.Size,
		Quality: cfg.Quality,
		client:  openai.NewClient(opts...),
	}, nil
}

func (s *OpenAISynthesizer) Synthesize(ctx context.Context, prompt string) (string, error) {
	params := openai.ImageGenerateParams{
		Prompt:         StylePrompt(prompt),
		Model:          openai.ImageModel(s.Model),
		N:              openai.Int(1),
		ResponseFormat: openai.ImageGenerateParamsResponseFormatURL,
	}
	if s.Size != "" {
		params.Size = openai.ImageGenerateParamsSize(s.Size)
	}
	if s.Quality != "" {
		params.Quality = openai.ImageGenerateParamsQuality(s.Quality)
	}
	resp, err := s.client.Images.Generate(ctx, params)
	if err != nil {
		return "", err
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return "", errors.New("openai: image response without url")
	}
	return resp.Data[0].URL, nil
}
