package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"appreview/roster-evaluator/internal/models"
	"appreview/roster-evaluator/internal/repositories"
)

// BatchScheduler runs a roster through the evaluator in sequential batches,
// with bounded concurrency inside each batch. Candidate failures are
// recorded as error outcomes and never stop the run; only persistence
// failures and cancellation do.
type BatchScheduler struct {
	evaluator   EvaluatorService
	results     repositories.EvaluationRepository
	batchSize   int
	concurrency int
	logger      *zap.Logger
}

func NewBatchScheduler(evaluator EvaluatorService, results repositories.EvaluationRepository, batchSize, concurrency int, logger *zap.Logger) *BatchScheduler {
	if batchSize < 1 {
		batchSize = 1
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &BatchScheduler{
		evaluator:   evaluator,
		results:     results,
		batchSize:   batchSize,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Run evaluates the candidates and persists each result as it completes.
// It returns the rows that were persisted, in completion order, even when
// the run ends early. The error is non-nil only for run-fatal conditions.
func (s *BatchScheduler) Run(ctx context.Context, tracker *SessionTracker, owner *models.Owner, candidates []*models.CandidateRecord, criteria string) ([]models.CandidateEvaluation, error) {
	batches := partition(candidates, s.batchSize)

	if err := tracker.Start(len(candidates), len(batches)); err != nil {
		tracker.Fail(err.Error())
		return nil, err
	}

	pool, err := ants.NewPool(s.concurrency)
	if err != nil {
		tracker.Fail(fmt.Sprintf("worker pool: %v", err))
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()

	session := tracker.Snapshot()

	var (
		mu    sync.Mutex
		saved = make([]models.CandidateEvaluation, 0, len(candidates))
		fatal error
	)

	for i, batch := range batches {
		if cancelled, reason := tracker.Cancelled(); cancelled {
			tracker.Fail("cancelled: " + reason)
			return saved, nil
		}
		if err := ctx.Err(); err != nil {
			tracker.Fail("cancelled: " + err.Error())
			return saved, nil
		}

		s.logger.Info("starting batch",
			zap.String("session_id", session.ID.String()),
			zap.Int("batch", i+1),
			zap.Int("total_batches", len(batches)),
			zap.Int("candidates", len(batch)))

		var wg sync.WaitGroup
		for _, candidate := range batch {
			candidate := candidate
			wg.Add(1)
			submitErr := pool.Submit(func() {
				defer wg.Done()

				result := s.evaluator.Evaluate(ctx, candidate, criteria)
				row := toEvaluation(owner.ID, session.ID, result)

				if err := s.results.Upsert(&row); err != nil {
					mu.Lock()
					if fatal == nil {
						fatal = &PersistenceError{Err: err}
					}
					mu.Unlock()
					return
				}

				tracker.RecordOutcome(result.Outcome)

				mu.Lock()
				saved = append(saved, row)
				mu.Unlock()
			})
			if submitErr != nil {
				wg.Done()
				mu.Lock()
				if fatal == nil {
					fatal = fmt.Errorf("failed to submit candidate job: %w", submitErr)
				}
				mu.Unlock()
			}
		}
		wg.Wait()

		mu.Lock()
		runErr := fatal
		mu.Unlock()
		if runErr != nil {
			tracker.Fail(runErr.Error())
			return saved, runErr
		}

		if err := tracker.FinishBatch(i + 1); err != nil {
			tracker.Fail(err.Error())
			return saved, err
		}
	}

	if cancelled, reason := tracker.Cancelled(); cancelled {
		tracker.Fail("cancelled: " + reason)
		return saved, nil
	}

	if err := tracker.Complete(); err != nil {
		return saved, err
	}
	return saved, nil
}

func partition(candidates []*models.CandidateRecord, size int) [][]*models.CandidateRecord {
	var batches [][]*models.CandidateRecord
	for start := 0; start < len(candidates); start += size {
		end := start + size
		if end > len(candidates) {
			end = len(candidates)
		}
		batches = append(batches, candidates[start:end])
	}
	return batches
}

func toEvaluation(ownerID, sessionID uuid.UUID, result *models.CandidateResult) models.CandidateEvaluation {
	c := result.Candidate
	evaluatedAt := result.EvaluatedAt
	if evaluatedAt.IsZero() {
		evaluatedAt = time.Now().UTC()
	}

	return models.CandidateEvaluation{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		SessionID: sessionID,
		Email:     c.Email,

		Name:                       c.Name,
		Gender:                     c.Gender,
		DateOfBirth:                c.DateOfBirth,
		MaritalStatus:              c.MaritalStatus,
		Religion:                   c.Religion,
		PhoneNumber:                c.PhoneNumber,
		ResidentialAddress:         c.ResidentialAddress,
		CurrentEmployment:          c.CurrentEmployment,
		EmploymentCategory:         c.EmploymentCategory,
		UniversityAttended:         c.UniversityAttended,
		EducationQualifications:    c.EducationQualifications,
		ProfessionalQualifications: c.ProfessionalQualifications,
		CareerInterests:            c.CareerInterests,
		PreviousApplications:       c.PreviousApplications,
		Essay:                      c.Essay,

		Outcome:          result.Outcome,
		Score:            result.Score,
		Rationale:        result.Rationale,
		ProcessingErrors: result.ProcessingErrors,

		DocumentURL:     c.DocumentURL,
		MediaURL:        c.MediaURL,
		DocumentText:    result.DocumentText,
		MediaTranscript: result.MediaTranscript,
		FilesProcessed:  result.DocumentText != "" || result.MediaTranscript != "",

		EvaluatedAt: evaluatedAt,
	}
}

// IsPersistence reports whether the error chain contains a PersistenceError.
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
