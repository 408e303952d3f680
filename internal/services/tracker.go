package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"appreview/roster-evaluator/internal/models"
	"appreview/roster-evaluator/internal/repositories"
)

// SessionTracker owns one session's state machine and progress counters.
// Workers report outcomes through RecordOutcome; all mutation goes through
// the tracker's mutex, so counters never race and progress only moves
// forward.
type SessionTracker struct {
	mu       sync.Mutex
	session  *models.EvaluationSession
	sessions repositories.SessionRepository
	logger   *zap.Logger

	cancelled    bool
	cancelReason string
}

func NewSessionTracker(session *models.EvaluationSession, sessions repositories.SessionRepository, logger *zap.Logger) *SessionTracker {
	return &SessionTracker{
		session:  session,
		sessions: sessions,
		logger:   logger,
	}
}

// Start moves the session from pending to processing and records the run
// totals. A persistence failure here is run-fatal.
func (t *SessionTracker) Start(totalCandidates, totalBatches int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session.Status != models.SessionPending {
		return fmt.Errorf("cannot start session in state %q", t.session.Status)
	}

	t.session.Status = models.SessionProcessing
	t.session.TotalCandidates = totalCandidates
	t.session.TotalBatches = totalBatches

	if err := t.sessions.Update(t.session); err != nil {
		return &PersistenceError{Err: err}
	}
	return nil
}

// RecordOutcome counts one completed candidate. Progress is flushed best
// effort; a failed progress write is logged, not fatal, since the result
// row itself has already been persisted.
func (t *SessionTracker) RecordOutcome(outcome models.Outcome) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch outcome {
	case models.OutcomeAccepted:
		t.session.AcceptedCount++
	case models.OutcomeRejected:
		t.session.RejectedCount++
	default:
		t.session.ErrorCount++
	}

	t.session.ProcessedCandidates++
	if t.session.TotalCandidates > 0 {
		t.session.ProgressPercentage = float64(t.session.ProcessedCandidates) / float64(t.session.TotalCandidates) * 100
	}

	if err := t.sessions.Update(t.session); err != nil {
		t.logger.Warn("failed to flush session progress",
			zap.String("session_id", t.session.ID.String()),
			zap.Error(err))
	}
}

// FinishBatch finalizes counters for a completed batch before the next one
// starts.
func (t *SessionTracker) FinishBatch(batch int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.session.CurrentBatch = batch
	if err := t.sessions.Update(t.session); err != nil {
		return &PersistenceError{Err: err}
	}
	return nil
}

// Complete marks the session finished. Individual candidate errors do not
// prevent completion.
func (t *SessionTracker) Complete() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session.Terminal() {
		return nil
	}

	now := time.Now().UTC()
	t.session.Status = models.SessionCompleted
	t.session.CompletedAt = &now

	if err := t.sessions.Update(t.session); err != nil {
		return &PersistenceError{Err: err}
	}
	return nil
}

// Fail marks the session failed with a reason. Already-persisted results
// are left in place. Safe to call in terminal states (no-op).
func (t *SessionTracker) Fail(reason string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session.Terminal() {
		return
	}

	now := time.Now().UTC()
	t.session.Status = models.SessionFailed
	t.session.FailureReason = reason
	t.session.CompletedAt = &now

	if err := t.sessions.Update(t.session); err != nil {
		t.logger.Error("failed to persist session failure",
			zap.String("session_id", t.session.ID.String()),
			zap.Error(err))
	}
}

// Cancel requests cooperative cancellation: the in-flight batch finishes,
// later batches are not scheduled.
func (t *SessionTracker) Cancel(reason string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if reason == "" {
		reason = "cancelled by owner"
	}
	t.cancelled = true
	t.cancelReason = reason
}

func (t *SessionTracker) Cancelled() (bool, string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancelled, t.cancelReason
}

// Snapshot returns a copy of the session row for building responses.
func (t *SessionTracker) Snapshot() models.EvaluationSession {
	t.mu.Lock()
	defer t.mu.Unlock()
	return *t.session
}

// TrackerRegistry indexes the trackers of in-flight sessions so a cancel
// request can reach a running pipeline.
type TrackerRegistry struct {
	mu     sync.Mutex
	active map[uuid.UUID]*SessionTracker
}

func NewTrackerRegistry() *TrackerRegistry {
	return &TrackerRegistry{active: make(map[uuid.UUID]*SessionTracker)}
}

func (r *TrackerRegistry) Add(t *SessionTracker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active[t.session.ID] = t
}

func (r *TrackerRegistry) Remove(sessionID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, sessionID)
}

// Cancel requests cancellation of a running session. Returns false when the
// session is not currently running.
func (r *TrackerRegistry) Cancel(sessionID uuid.UUID, reason string) bool {
	r.mu.Lock()
	tracker, ok := r.active[sessionID]
	r.mu.Unlock()

	if !ok {
		return false
	}
	tracker.Cancel(reason)
	return true
}
