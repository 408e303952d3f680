package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"appreview/roster-evaluator/internal/models"
)

type SessionRepository interface {
	Create(session *models.EvaluationSession) error
	FindByID(id uuid.UUID) (*models.EvaluationSession, error)
	Update(session *models.EvaluationSession) error
	ListByOwner(ownerID uuid.UUID) ([]models.EvaluationSession, error)
	// Delete removes a session and its results, returning the number of
	// results removed with it.
	Delete(id uuid.UUID) (int64, error)
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(session *models.EvaluationSession) error {
	if err := r.db.Create(session).Error; err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *sessionRepository) FindByID(id uuid.UUID) (*models.EvaluationSession, error) {
	var session models.EvaluationSession
	if err := r.db.Where("id = ?", id).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("session not found")
		}
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	return &session, nil
}

func (r *sessionRepository) Update(session *models.EvaluationSession) error {
	result := r.db.Save(session)
	if result.Error != nil {
		return fmt.Errorf("failed to update session: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("session not found")
	}
	return nil
}

func (r *sessionRepository) ListByOwner(ownerID uuid.UUID) ([]models.EvaluationSession, error) {
	var sessions []models.EvaluationSession
	err := r.db.
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

func (r *sessionRepository) Delete(id uuid.UUID) (int64, error) {
	var resultsDeleted int64

	err := r.db.Transaction(func(tx *gorm.DB) error {
		results := tx.Where("session_id = ?", id).Delete(&models.CandidateEvaluation{})
		if results.Error != nil {
			return fmt.Errorf("failed to delete session results: %w", results.Error)
		}
		resultsDeleted = results.RowsAffected

		session := tx.Where("id = ?", id).Delete(&models.EvaluationSession{})
		if session.Error != nil {
			return fmt.Errorf("failed to delete session: %w", session.Error)
		}
		if session.RowsAffected == 0 {
			return fmt.Errorf("session not found")
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return resultsDeleted, nil
}
