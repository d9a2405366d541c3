package gemini

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"net/http"
	"text/template"
	"time"

	"github.com/phrazzld/bandpath/internal/config"
	"github.com/phrazzld/bandpath/internal/domain"
	"github.com/phrazzld/bandpath/internal/grading"
	"github.com/phrazzld/bandpath/internal/platform/logger"
	"google.golang.org/genai"
)

//go:embed prompt.tmpl
var promptSource string

const (
	defaultMaxRetries        = 3
	defaultRetryDelaySeconds = 2
)

// contentGenerator is the subset of genai.Models the grader calls.
type contentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Grader implements grading.Grader with a Gemini model.
type Grader struct {
	logger            *slog.Logger
	models            contentGenerator
	model             string
	maxRetries        int
	retryDelaySeconds int
	promptTemplate    *template.Template
	sleep             func(ctx context.Context, d time.Duration) error
}

var _ grading.Grader = (*Grader)(nil)

// NewGrader creates a Grader from the grading configuration.
func NewGrader(ctx context.Context, log *slog.Logger, cfg config.GradingConfig) (*Grader, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", grading.ErrInvalidConfig)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", grading.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", grading.ErrInvalidConfig, err)
	}

	return newGrader(log, client.Models, cfg)
}

func newGrader(log *slog.Logger, models contentGenerator, cfg config.GradingConfig) (*Grader, error) {
	if log == nil {
		log = slog.Default()
	}
	tmpl, err := template.New("grade").Parse(promptSource)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt template: %v", grading.ErrInvalidConfig, err)
	}

	g := &Grader{
		logger:            log.With(slog.String("component", "gemini_grader")),
		models:            models,
		model:             cfg.Model,
		maxRetries:        cfg.MaxRetries,
		retryDelaySeconds: cfg.RetryDelaySeconds,
		promptTemplate:    tmpl,
		sleep:             sleepContext,
	}
	if g.maxRetries < 0 {
		g.maxRetries = defaultMaxRetries
	}
	if g.retryDelaySeconds < 1 {
		g.retryDelaySeconds = defaultRetryDelaySeconds
	}
	return g, nil
}

// Grade implements grading.Grader.
func (g *Grader) Grade(ctx context.Context, sub grading.Submission) (*grading.Result, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)

	if err := sub.Validate(); err != nil {
		return nil, err
	}

	prompt, err := g.createPrompt(sub)
	if err != nil {
		return nil, err
	}

	log.DebugContext(ctx, "grading submission",
		slog.String("format", string(sub.Format)),
		slog.Int("text_length", len(sub.Text)))

	resp, err := g.callWithRetry(ctx, log, prompt)
	if err != nil {
		return nil, err
	}

	result, err := parseResponse(resp)
	if err != nil {
		log.WarnContext(ctx, "discarding malformed grade", slog.String("error", err.Error()))
		return nil, err
	}

	log.InfoContext(ctx, "submission graded", slog.String("overall", result.Overall.String()))
	return result, nil
}

func (g *Grader) createPrompt(sub grading.Submission) (string, error) {
	format := string(sub.Format)
	if format == "" {
		format = string(domain.FormatTask2)
	}
	var buf bytes.Buffer
	if err := g.promptTemplate.Execute(&buf, promptData{
		Prompt: sub.Prompt,
		Text:   sub.Text,
		Format: format,
	}); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}
	return buf.String(), nil
}

func (g *Grader) generateConfig() *genai.GenerateContentConfig {
	temperature := float32(0.2)
	return &genai.GenerateContentConfig{
		Temperature:      &temperature,
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema,
	}
}

// callWithRetry calls the model up to maxRetries+1 times. Between attempts it
// waits baseDelay * 2^attempt scaled by a jitter factor in [0.5, 1.0).
func (g *Grader) callWithRetry(ctx context.Context, log *slog.Logger, prompt string) (*gradeResponse, error) {
	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: prompt}},
	}}

	for attempt := 0; ; attempt++ {
		resp, err := g.models.GenerateContent(ctx, g.model, contents, g.generateConfig())
		if err == nil {
			return decodeResponse(resp)
		}

		transient := isTransient(err)
		log.ErrorContext(ctx, "Gemini API call failed",
			slog.Int("attempt", attempt+1),
			slog.Bool("transient", transient),
			slog.String("error", err.Error()))

		if !transient {
			return nil, fmt.Errorf("%w: %v", grading.ErrGradingFailed, err)
		}
		if attempt >= g.maxRetries {
			return nil, fmt.Errorf("%w: exceeded maximum retry attempts (%d): %v",
				grading.ErrTransientFailure, g.maxRetries, err)
		}

		backoff := float64(g.retryDelaySeconds) * math.Pow(2, float64(attempt))
		delay := time.Duration(backoff * (0.5 + rand.Float64()*0.5) * float64(time.Second))
		if err := g.sleep(ctx, delay); err != nil {
			return nil, fmt.Errorf("%w: %v", grading.ErrTransientFailure, err)
		}
	}
}

func decodeResponse(resp *genai.GenerateContentResponse) (*gradeResponse, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("%w: no candidates", grading.ErrInvalidResponse)
	}
	if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return nil, grading.ErrContentBlocked
	}
	if resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("%w: empty content", grading.ErrInvalidResponse)
	}

	var out gradeResponse
	if err := json.Unmarshal([]byte(resp.Text()), &out); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON response: %v", grading.ErrInvalidResponse, err)
	}
	return &out, nil
}

// parseResponse converts model bands to scores. Bands must lie in [0,9];
// values off the half-band grid are rounded to it.
func parseResponse(resp *gradeResponse) (*grading.Result, error) {
	bands := map[domain.FocusArea]float64{
		domain.FocusGrammaticalAccuracy: resp.GrammaticalAccuracy,
		domain.FocusCoherenceCohesion:   resp.CoherenceCohesion,
		domain.FocusLexicalResource:     resp.LexicalResource,
		domain.FocusTaskAchievement:     resp.TaskAchievement,
	}

	result := &grading.Result{
		SubScores: make(map[domain.FocusArea]domain.Score, len(bands)),
		Feedback:  resp.Feedback,
	}
	for area, v := range bands {
		if v < 0 || v > 9 {
			return nil, fmt.Errorf("%w: %s band %.2f out of range", grading.ErrInvalidResponse, area, v)
		}
		result.SubScores[area] = domain.QuantizeScore(v)
	}
	if resp.Overall < 0 || resp.Overall > 9 {
		return nil, fmt.Errorf("%w: overall band %.2f out of range", grading.ErrInvalidResponse, resp.Overall)
	}
	result.Overall = domain.QuantizeScore(resp.Overall)

	if err := result.Validate(); err != nil {
		return nil, err
	}
	return result, nil
}

func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500
	}
	return true
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
