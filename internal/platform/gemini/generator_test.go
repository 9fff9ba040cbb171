package gemini

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/phrazzld/career-coach/internal/config"
	"github.com/phrazzld/career-coach/internal/generation"
	"github.com/phrazzld/career-coach/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeModels struct {
	responses []*genai.GenerateContentResponse
	errs      []error
	calls     int
	lastModel string
	lastCfg   *genai.GenerateContentConfig
}

func (f *fakeModels) GenerateContent(
	_ context.Context,
	model string,
	_ []*genai.Content,
	cfg *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	i := f.calls
	f.calls++
	f.lastModel = model
	f.lastCfg = cfg
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	var resp *genai.GenerateContentResponse
	if i < len(f.responses) {
		resp = f.responses[i]
	}
	return resp, err
}

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{Role: "model"}
	for _, p := range parts {
		content.Parts = append(content.Parts, &genai.Part{Text: p})
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: content, FinishReason: genai.FinishReasonStop}},
	}
}

func testConfig() config.LLMConfig {
	return config.LLMConfig{
		Provider:          "gemini",
		GeminiAPIKey:      "key",
		ModelName:         "gemini-2.0-flash",
		MaxTokens:         1500,
		Temperature:       0.7,
		MaxRetries:        2,
		RetryDelaySeconds: 1,
	}
}

func newTestGenerator(f *fakeModels) *Generator {
	g := newGenerator(logger.Discard(), f, testConfig())
	g.retry.BaseDelay = time.Millisecond
	return g
}

func TestGenerate_Success(t *testing.T) {
	f := &fakeModels{responses: []*genai.GenerateContentResponse{textResponse("1. first\n", "2. second")}}
	g := newTestGenerator(f)

	text, err := g.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "1. first\n2. second", text)
	assert.Equal(t, "gemini-2.0-flash", f.lastModel)
	require.NotNil(t, f.lastCfg.Temperature)
	assert.InDelta(t, 0.7, *f.lastCfg.Temperature, 0.0001)
	assert.Equal(t, int32(1500), f.lastCfg.MaxOutputTokens)
}

func TestGenerate_EmptyPrompt(t *testing.T) {
	f := &fakeModels{}
	_, err := newTestGenerator(f).Generate(context.Background(), "  ")
	assert.ErrorIs(t, err, generation.ErrGenerationFailed)
	assert.Zero(t, f.calls)
}

func TestGenerate_RetriesTransientErrors(t *testing.T) {
	f := &fakeModels{
		errs: []error{
			genai.APIError{Code: http.StatusServiceUnavailable, Message: "overloaded"},
			genai.APIError{Code: http.StatusTooManyRequests, Message: "slow down"},
		},
		responses: []*genai.GenerateContentResponse{nil, nil, textResponse("done")},
	}

	text, err := newTestGenerator(f).Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "done", text)
	assert.Equal(t, 3, f.calls)
}

func TestGenerate_ExhaustsRetries(t *testing.T) {
	netErr := errors.New("connection reset")
	f := &fakeModels{errs: []error{netErr, netErr, netErr, netErr}}

	_, err := newTestGenerator(f).Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, generation.ErrTransientFailure)
	assert.Equal(t, 3, f.calls)
}

func TestGenerate_PermanentFailures(t *testing.T) {
	blocked := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}},
	}

	tests := []struct {
		name   string
		resp   *genai.GenerateContentResponse
		err    error
		target error
	}{
		{"client error", nil, genai.APIError{Code: http.StatusBadRequest}, generation.ErrGenerationFailed},
		{"nil response", nil, nil, generation.ErrInvalidResponse},
		{"no candidates", &genai.GenerateContentResponse{}, nil, generation.ErrInvalidResponse},
		{"safety block", blocked, nil, generation.ErrContentBlocked},
		{"blank text", textResponse("  "), nil, generation.ErrInvalidResponse},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := &fakeModels{
				responses: []*genai.GenerateContentResponse{tc.resp},
				errs:      []error{tc.err},
			}
			_, err := newTestGenerator(f).Generate(context.Background(), "prompt")
			assert.ErrorIs(t, err, tc.target)
			assert.Equal(t, 1, f.calls, "permanent failures are not retried")
		})
	}
}

func TestNewGenerator_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.GeminiAPIKey = ""
	_, err := NewGenerator(context.Background(), logger.Discard(), cfg)
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)

	cfg = testConfig()
	cfg.ModelName = ""
	_, err = NewGenerator(context.Background(), logger.Discard(), cfg)
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)

	_, err = NewGenerator(context.Background(), nil, testConfig())
	assert.Error(t, err)
}
