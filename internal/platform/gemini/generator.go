package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/phrazzld/career-coach/internal/config"
	"github.com/phrazzld/career-coach/internal/generation"
	"google.golang.org/genai"
)

// contentGenerator is the subset of *genai.Models the generator calls.
type contentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Generator implements generation.TextGenerator with the Gemini API.
type Generator struct {
	logger  *slog.Logger
	models  contentGenerator
	model   string
	genCfg  *genai.GenerateContentConfig
	retry   generation.RetryPolicy
	timeout time.Duration
}

var _ generation.TextGenerator = (*Generator)(nil)

// NewGenerator creates a Gemini client from the LLM configuration.
func NewGenerator(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Generator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	return newGenerator(logger, client.Models, cfg), nil
}

func newGenerator(logger *slog.Logger, models contentGenerator, cfg config.LLMConfig) *Generator {
	return &Generator{
		logger: logger.With("component", "gemini_generator", "model", cfg.ModelName),
		models: models,
		model:  cfg.ModelName,
		genCfg: &genai.GenerateContentConfig{
			Temperature:     genai.Ptr(float32(cfg.Temperature)),
			MaxOutputTokens: int32(cfg.MaxTokens),
		},
		retry: generation.RetryPolicy{
			MaxRetries: cfg.MaxRetries,
			BaseDelay:  time.Duration(cfg.RetryDelaySeconds) * time.Second,
		},
		timeout: cfg.RequestTimeout,
	}
}

// Generate sends prompt to Gemini, retrying transient failures with backoff.
// Safety blocks and malformed responses are returned without retrying.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("%w: prompt cannot be empty", generation.ErrGenerationFailed)
	}
	return generation.WithRetry(ctx, g.logger, g.retry, func(ctx context.Context) (string, error) {
		return g.call(ctx, prompt)
	})
}

func (g *Generator) call(ctx context.Context, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	g.logger.DebugContext(ctx, "calling Gemini API", "prompt_length", len(prompt))
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), g.genCfg)
	if err != nil {
		return "", classifyError(err)
	}

	switch {
	case resp == nil:
		return "", fmt.Errorf("%w: nil response", generation.ErrInvalidResponse)
	case len(resp.Candidates) == 0:
		return "", fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	case resp.Candidates[0].FinishReason == genai.FinishReasonSafety:
		return "", fmt.Errorf("%w: finish reason %s", generation.ErrContentBlocked, resp.Candidates[0].FinishReason)
	case resp.Candidates[0].Content == nil:
		return "", fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("%w: response has no text", generation.ErrInvalidResponse)
	}
	return text, nil
}

// classifyError marks rate limits, server errors and timeouts as transient.
func classifyError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError {
			return fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
		}
		return fmt.Errorf("%w: %v", generation.ErrGenerationFailed, err)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", generation.ErrGenerationFailed, err)
	}
	return fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
}
