package models

import (
	"time"

	"github.com/google/uuid"
)

type SessionStatus string

const (
	SessionPending    SessionStatus = "pending"
	SessionProcessing SessionStatus = "processing"
	SessionCompleted  SessionStatus = "completed"
	SessionFailed     SessionStatus = "failed"
)

// EvaluationSession tracks one run over an uploaded roster. Counters are
// only written through the session tracker; accepted+rejected+error always
// sums to processed_candidates.
type EvaluationSession struct {
	ID                  uuid.UUID     `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	OwnerID             uuid.UUID     `gorm:"type:uuid;not null;index" json:"owner_id"`
	Name                string        `gorm:"type:text" json:"name"`
	Status              SessionStatus `gorm:"not null;default:'pending'" json:"status"`
	TotalCandidates     int           `gorm:"not null;default:0" json:"total_candidates"`
	ProcessedCandidates int           `gorm:"not null;default:0" json:"processed_candidates"`
	AcceptedCount       int           `gorm:"not null;default:0" json:"accepted_count"`
	RejectedCount       int           `gorm:"not null;default:0" json:"rejected_count"`
	ErrorCount          int           `gorm:"not null;default:0" json:"error_count"`
	CurrentBatch        int           `gorm:"not null;default:0" json:"current_batch"`
	TotalBatches        int           `gorm:"not null;default:0" json:"total_batches"`
	ProgressPercentage  float64       `gorm:"not null;default:0" json:"progress_percentage"`
	FailureReason       string        `gorm:"type:text" json:"failure_reason,omitempty"`
	CreatedAt           time.Time     `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	CompletedAt         *time.Time    `json:"completed_at,omitempty"`
}

func (EvaluationSession) TableName() string {
	return "evaluation_sessions"
}

// Terminal reports whether the session can no longer change state.
func (s *EvaluationSession) Terminal() bool {
	return s.Status == SessionCompleted || s.Status == SessionFailed
}
