package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"appreview/roster-evaluator/internal/models"
	"appreview/roster-evaluator/internal/repositories"
)

// PipelineService ties roster ingestion, scheduling and session bookkeeping
// together. One EvaluateRoster call is one session, start to finish.
type PipelineService interface {
	EvaluateRoster(ctx context.Context, ownerEmail, sessionName string, file io.Reader) (*models.SubmitResponse, error)
	CancelSession(sessionID uuid.UUID, reason string) bool
}

type pipelineService struct {
	owners    repositories.OwnerRepository
	sessions  repositories.SessionRepository
	criteria  repositories.CriteriaRepository
	scheduler *BatchScheduler
	registry  *TrackerRegistry
	logger    *zap.Logger
}

func NewPipelineService(
	owners repositories.OwnerRepository,
	sessions repositories.SessionRepository,
	criteria repositories.CriteriaRepository,
	scheduler *BatchScheduler,
	registry *TrackerRegistry,
	logger *zap.Logger,
) PipelineService {
	return &pipelineService{
		owners:    owners,
		sessions:  sessions,
		criteria:  criteria,
		scheduler: scheduler,
		registry:  registry,
		logger:    logger,
	}
}

func (p *pipelineService) EvaluateRoster(ctx context.Context, ownerEmail, sessionName string, file io.Reader) (*models.SubmitResponse, error) {
	roster, err := ParseRoster(file)
	if err != nil {
		return nil, err
	}
	if len(roster.Candidates) == 0 {
		return nil, &ValidationError{Reason: "roster contains no valid candidate rows"}
	}

	owner, err := p.owners.CreateOrGet(NormalizeEmail(ownerEmail), "")
	if err != nil {
		return nil, &PersistenceError{Err: err}
	}

	criteriaContent := DefaultEligibilityCriteria
	active, err := p.criteria.Active(owner.ID)
	switch {
	case err == nil:
		criteriaContent = active.Content
	case errors.Is(err, repositories.ErrNoCriteria):
		p.logger.Info("owner has no configured criteria, using defaults",
			zap.String("owner_email", owner.Email))
	default:
		return nil, &PersistenceError{Err: err}
	}

	if sessionName == "" {
		sessionName = fmt.Sprintf("Roster %s (%s)", time.Now().Format("2006-01-02 15:04"), owner.Email)
	}

	session := &models.EvaluationSession{
		ID:        uuid.New(),
		OwnerID:   owner.ID,
		Name:      sessionName,
		Status:    models.SessionPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := p.sessions.Create(session); err != nil {
		return nil, &PersistenceError{Err: err}
	}

	tracker := NewSessionTracker(session, p.sessions, p.logger)
	p.registry.Add(tracker)
	defer p.registry.Remove(session.ID)

	p.logger.Info("starting roster evaluation",
		zap.String("session_id", session.ID.String()),
		zap.String("owner_email", owner.Email),
		zap.Int("candidates", len(roster.Candidates)),
		zap.Int("roster_warnings", len(roster.Warnings)))

	saved, runErr := p.scheduler.Run(ctx, tracker, owner, roster.Candidates, criteriaContent)
	if runErr != nil {
		return nil, runErr
	}

	final := tracker.Snapshot()

	resp := &models.SubmitResponse{
		Status:    "success",
		Message:   fmt.Sprintf("Evaluated %d candidates", final.ProcessedCandidates),
		SessionID: session.ID.String(),
		Results:   saved,
		Summary: models.Summary{
			TotalProcessed: final.ProcessedCandidates,
			Accepted:       final.AcceptedCount,
			Rejected:       final.RejectedCount,
			Errors:         final.ErrorCount,
		},
		Warnings: roster.Warnings,
	}
	if final.Status == models.SessionFailed {
		resp.Status = "failed"
		resp.Message = final.FailureReason
	}
	return resp, nil
}

// CancelSession requests cooperative cancellation of a running session.
// Returns false when no run with that id is in flight.
func (p *pipelineService) CancelSession(sessionID uuid.UUID, reason string) bool {
	return p.registry.Cancel(sessionID, reason)
}
