package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"appreview/roster-evaluator/internal/models"
)

// EvaluatorService evaluates a single candidate end to end: extraction,
// scoring request assembly, response validation, outcome derivation. It
// never returns an error; anything irrecoverable for the candidate becomes
// an Error outcome with the cause in ProcessingErrors.
type EvaluatorService interface {
	Evaluate(ctx context.Context, candidate *models.CandidateRecord, criteria string) *models.CandidateResult
}

type evaluatorService struct {
	extractor      ContentExtractor
	scoring        ScoringClient
	prompts        *PromptBuilder
	scoringTimeout time.Duration
	logger         *zap.Logger
}

func NewEvaluatorService(
	extractor ContentExtractor,
	scoring ScoringClient,
	scoringTimeout time.Duration,
	logger *zap.Logger,
) EvaluatorService {
	return &evaluatorService{
		extractor:      extractor,
		scoring:        scoring,
		prompts:        NewPromptBuilder(),
		scoringTimeout: scoringTimeout,
		logger:         logger,
	}
}

// candidateReview is the strict expected shape of the scoring backend's
// response. Pointer fields distinguish absent from zero.
type candidateReview struct {
	Outcome   string   `json:"outcome"`
	Score     *float64 `json:"score"`
	Rationale string   `json:"rationale"`
}

func (e *evaluatorService) Evaluate(ctx context.Context, candidate *models.CandidateRecord, criteria string) *models.CandidateResult {
	extraction := e.extractor.Extract(ctx, candidate)

	result := &models.CandidateResult{
		Candidate:        candidate,
		ProcessingErrors: extraction.Errors,
		DocumentText:     extraction.DocumentText,
		MediaTranscript:  extraction.MediaTranscript,
		EvaluatedAt:      time.Now().UTC(),
	}

	narrative := e.prompts.BuildCandidateNarrative(candidate)
	prompt := e.prompts.BuildEvaluationPrompt(criteria, narrative, extraction.DocumentText, extraction.MediaTranscript, extraction.Errors)

	scoringCtx, cancel := context.WithTimeout(ctx, e.scoringTimeout)
	defer cancel()

	raw, err := e.scoring.Review(scoringCtx, prompt)
	if err != nil {
		return e.failCandidate(result, &ModelError{Reason: "scoring backend unavailable", Err: err})
	}

	review, err := parseReview(raw)
	if err != nil {
		return e.failCandidate(result, err)
	}

	score := *review.Score
	outcome := models.OutcomeRejected
	if score >= models.AcceptanceThreshold {
		outcome = models.OutcomeAccepted
	}

	// The backend's own label is advisory; the numeric score decides.
	if review.Outcome != string(outcome) {
		e.logger.Warn("scoring backend label disagrees with score threshold",
			zap.String("email", candidate.Email),
			zap.String("label", review.Outcome),
			zap.Float64("score", score))
	}

	result.Outcome = outcome
	result.Score = &score
	result.Rationale = review.Rationale

	return result
}

func (e *evaluatorService) failCandidate(result *models.CandidateResult, cause error) *models.CandidateResult {
	e.logger.Warn("candidate evaluation failed",
		zap.String("email", result.Candidate.Email),
		zap.Error(cause))

	result.Outcome = models.OutcomeError
	result.Rationale = "Evaluation could not be completed"
	result.ProcessingErrors = append(result.ProcessingErrors, cause.Error())
	return result
}

// parseReview validates the scoring backend's response against the strict
// expected shape. Violations are ModelErrors, never coerced.
func parseReview(raw string) (*candidateReview, error) {
	var review candidateReview
	if err := json.Unmarshal([]byte(extractJSON(raw)), &review); err != nil {
		return nil, &ModelError{Reason: "malformed response", Err: err}
	}

	if review.Outcome != string(models.OutcomeAccepted) && review.Outcome != string(models.OutcomeRejected) {
		return nil, &ModelError{Reason: fmt.Sprintf("unexpected outcome %q", review.Outcome)}
	}
	if strings.TrimSpace(review.Rationale) == "" {
		return nil, &ModelError{Reason: "empty rationale"}
	}
	if review.Score == nil {
		return nil, &ModelError{Reason: "missing score"}
	}
	if *review.Score < 0 || *review.Score > 100 {
		return nil, &ModelError{Reason: fmt.Sprintf("score %.2f out of range", *review.Score)}
	}

	return &review, nil
}

// extractJSON strips markdown fences and surrounding prose the backend may
// wrap around its JSON object.
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end != -1 && end > start {
		return text[start : end+1]
	}

	return text
}
