// Package imagegen sends synthesized prompts to an image-generation backend.
package imagegen

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"siteprompt-go-crawler/internal/config"
	"siteprompt-go-crawler/internal/models"
	"siteprompt-go-crawler/pkg/logger"
)

// ErrNotConfigured is returned by New when no provider is selected.
var ErrNotConfigured = errors.New("image generation is not configured")

// Image is a generated picture and what it cost.
type Image struct {
	Data          []byte
	MIMEType      string
	RevisedPrompt string
	Cost          float64
}

// Generator turns a prompt into an image.
type Generator interface {
	Generate(ctx context.Context, prompt string, actx models.AnalysisContext) (*Image, error)
}

// New builds the generator selected by cfg.Provider.
func New(cfg config.ImageConfig, log *logger.Logger) (Generator, error) {
	switch cfg.Provider {
	case "", "none":
		return nil, ErrNotConfigured
	case "openai":
		g, err := NewOpenAIGenerator(cfg, log)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unsupported image provider %q", cfg.Provider)
	}
}

// OpenAIGenerator calls the OpenAI images endpoint.
type OpenAIGenerator struct {
	client  *openai.Client
	model   string
	size    string
	quality string
	cost    float64
	log     *logger.Logger
}

func NewOpenAIGenerator(cfg config.ImageConfig, log *logger.Logger) (*OpenAIGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY or image.api_key required")
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	model := cfg.Model
	if model == "" {
		model = openai.CreateImageModelDallE3
	}
	size := cfg.Size
	if size == "" {
		size = openai.CreateImageSize1792x1024
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &OpenAIGenerator{
		client:  openai.NewClientWithConfig(oc),
		model:   model,
		size:    size,
		quality: cfg.Quality,
		cost:    cfg.CostPerImage,
		log:     log,
	}, nil
}

func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string, actx models.AnalysisContext) (*Image, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, errors.New("empty prompt")
	}
	resp, err := g.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		Model:          g.model,
		N:              1,
		Size:           g.size,
		Quality:        g.quality,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("empty response from OpenAI")
	}

	item := resp.Data[0]
	data, err := base64.StdEncoding.DecodeString(item.B64JSON)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	g.log.Infof("image generated: industry=%s content_type=%s bytes=%d", actx.Industry, actx.ContentType, len(data))
	return &Image{
		Data:          data,
		MIMEType:      http.DetectContentType(data),
		RevisedPrompt: item.RevisedPrompt,
		Cost:          g.cost,
	}, nil
}
