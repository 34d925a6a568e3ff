// Package gemini implements the kitchen's AI operations on the Gemini API.
package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/dukerupert/reciperescue/internal/ai"
)

const (
	DefaultVisionModel = "gemini-3-flash-preview"
	DefaultRecipeModel = "gemini-3-flash-preview"
	DefaultMapsModel   = "gemini-2.5-flash"
	DefaultImageModel  = "gemini-2.5-flash-image"
)

// Config holds Gemini settings from environment variables.
type Config struct {
	APIKey      string
	VisionModel string
	RecipeModel string
	MapsModel   string
	ImageModel  string
	// QPS caps outbound calls across all kitchens. Zero means 2.
	QPS     float64
	Burst   int
	Timeout time.Duration
}

func (c *Config) setDefaults() {
	if c.VisionModel == "" {
		c.VisionModel = DefaultVisionModel
	}
	if c.RecipeModel == "" {
		c.RecipeModel = DefaultRecipeModel
	}
	if c.MapsModel == "" {
		c.MapsModel = DefaultMapsModel
	}
	if c.ImageModel == "" {
		c.ImageModel = DefaultImageModel
	}
	if c.QPS <= 0 {
		c.QPS = 2
	}
	if c.Burst <= 0 {
		c.Burst = 4
	}
	if c.Timeout <= 0 {
		c.Timeout = 90 * time.Second
	}
}

// generator is the slice of the genai client this package uses.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client is an ai.Gateway backed by Gemini.
type Client struct {
	cfg     Config
	gen     generator
	limiter *rate.Limiter
	logger  *slog.Logger
	now     func() time.Time
}

var _ ai.Gateway = (*Client)(nil)

// New connects to the Gemini API. It fails with ai.ErrNotConfigured when
// no API key is set.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ai.ErrNotConfigured
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newClient(cfg, gc.Models, logger), nil
}

func newClient(cfg Config, gen generator, logger *slog.Logger) *Client {
	cfg.setDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:     cfg,
		gen:     gen,
		limiter: rate.NewLimiter(rate.Limit(cfg.QPS), cfg.Burst),
		logger:  logger.With("component", "gemini"),
		now:     time.Now,
	}
}

// generate runs one throttled, time-boxed model call and logs its outcome.
func (c *Client) generate(ctx context.Context, op, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s: wait for rate limit: %w", op, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.gen.GenerateContent(ctx, model, contents, config)
	elapsed := time.Since(start)

	if err != nil {
		c.logger.Error("model call failed", "op", op, "model", model, "duration", elapsed, "error", err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		c.logger.Warn("model returned no candidates", "op", op, "model", model, "duration", elapsed)
		return nil, fmt.Errorf("%s: %w", op, ai.ErrEmptyResponse)
	}

	c.logger.Info("model call", "op", op, "model", model, "duration", elapsed)
	return resp, nil
}
