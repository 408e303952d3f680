package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"appreview/roster-evaluator/internal/models"
)

type EvaluationRepository interface {
	// Upsert stores one result per (owner, session, email); re-evaluating
	// the same candidate within a session overwrites the earlier row.
	Upsert(eval *models.CandidateEvaluation) error
	FindByID(id uuid.UUID) (*models.CandidateEvaluation, error)
	ListBySession(sessionID uuid.UUID) ([]models.CandidateEvaluation, error)
	// LatestPerCandidate is the owner's cross-session display view: the most
	// recently evaluated result per candidate identity.
	LatestPerCandidate(ownerID uuid.UUID) ([]models.CandidateEvaluation, error)
}

type evaluationRepository struct {
	db *gorm.DB
}

func NewEvaluationRepository(db *gorm.DB) EvaluationRepository {
	return &evaluationRepository{db: db}
}

func (r *evaluationRepository) Upsert(eval *models.CandidateEvaluation) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_id"}, {Name: "session_id"}, {Name: "email"}},
		UpdateAll: true,
	}).Create(eval).Error
	if err != nil {
		return fmt.Errorf("failed to save evaluation: %w", err)
	}
	return nil
}

func (r *evaluationRepository) FindByID(id uuid.UUID) (*models.CandidateEvaluation, error) {
	var eval models.CandidateEvaluation
	if err := r.db.Where("id = ?", id).First(&eval).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("evaluation not found")
		}
		return nil, fmt.Errorf("failed to find evaluation: %w", err)
	}
	return &eval, nil
}

func (r *evaluationRepository) ListBySession(sessionID uuid.UUID) ([]models.CandidateEvaluation, error) {
	var evals []models.CandidateEvaluation
	err := r.db.
		Where("session_id = ?", sessionID).
		Order("evaluated_at DESC").
		Find(&evals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list session evaluations: %w", err)
	}
	return evals, nil
}

func (r *evaluationRepository) LatestPerCandidate(ownerID uuid.UUID) ([]models.CandidateEvaluation, error) {
	var evals []models.CandidateEvaluation
	err := r.db.Raw(`
		SELECT DISTINCT ON (email) *
		FROM candidate_evaluations
		WHERE owner_id = ?
		ORDER BY email, evaluated_at DESC`, ownerID).
		Scan(&evals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list latest evaluations: %w", err)
	}
	return evals, nil
}
