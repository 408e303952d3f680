package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"appreview/roster-evaluator/internal/config"
)

// ScoringClient is the scoring backend: one structured request in, one
// structured (JSON text) response out.
type ScoringClient interface {
	Review(ctx context.Context, prompt string) (string, error)
}

// Transcriber is the media-to-text collaborator for the media lane.
type Transcriber interface {
	Transcribe(ctx context.Context, media []byte, mimeType string) (string, error)
}

// GeminiService backs both the scoring call and media transcription with
// the Gemini API.
type GeminiService interface {
	ScoringClient
	Transcriber
}

type geminiService struct {
	client          *genai.Client
	model           string
	transcribeModel string
	logger          *zap.Logger
}

func NewGeminiService(ctx context.Context, cfg config.GeminiConfig, logger *zap.Logger) (GeminiService, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiService{
		client:          client,
		model:           cfg.Model,
		transcribeModel: cfg.TranscribeModel,
		logger:          logger,
	}, nil
}

// Review sends the scoring prompt and returns the raw JSON response text.
// The call is retried at most once to keep batch latency bounded.
func (g *geminiService) Review(ctx context.Context, prompt string) (string, error) {
	temperature := float32(0)
	seed := int32(42)
	genConfig := &genai.GenerateContentConfig{
		Temperature:      &temperature,
		Seed:             &seed,
		MaxOutputTokens:  4096,
		ResponseMIMEType: "application/json",
	}

	var lastErr error
	for attempt := 1; attempt <= 2; attempt++ {
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
		}

		resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), genConfig)
		if err != nil {
			lastErr = fmt.Errorf("failed to generate review: %w", err)
			g.logger.Warn("scoring call failed", zap.Int("attempt", attempt), zap.Error(err))
			continue
		}

		text := strings.TrimSpace(resp.Text())
		if text == "" {
			lastErr = fmt.Errorf("scoring backend returned an empty response")
			g.logger.Warn("scoring call returned no text", zap.Int("attempt", attempt))
			continue
		}

		return text, nil
	}

	return "", lastErr
}

// Transcribe sends the media bytes inline and asks for a verbatim
// transcript.
func (g *geminiService) Transcribe(ctx context.Context, media []byte, mimeType string) (string, error) {
	contents := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: media}},
			{Text: "Transcribe the spoken content of this recording verbatim. Return only the transcript text."},
		},
	}}

	resp, err := g.client.Models.GenerateContent(ctx, g.transcribeModel, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to transcribe media: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("transcription returned no text")
	}

	return text, nil
}
