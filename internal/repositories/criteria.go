package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"appreview/roster-evaluator/internal/models"
)

// ErrNoCriteria is returned when an owner has never configured criteria.
var ErrNoCriteria = errors.New("no active criteria")

type CriteriaRepository interface {
	Active(ownerID uuid.UUID) (*models.EligibilityCriteria, error)
	// Replace deactivates the owner's current criteria and inserts the new
	// content as the active version.
	Replace(ownerID uuid.UUID, content string) (*models.EligibilityCriteria, error)
}

type criteriaRepository struct {
	db *gorm.DB
}

func NewCriteriaRepository(db *gorm.DB) CriteriaRepository {
	return &criteriaRepository{db: db}
}

func (r *criteriaRepository) Active(ownerID uuid.UUID) (*models.EligibilityCriteria, error) {
	var criteria models.EligibilityCriteria
	err := r.db.
		Where("owner_id = ? AND is_active = ?", ownerID, true).
		Order("created_at DESC").
		First(&criteria).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoCriteria
		}
		return nil, fmt.Errorf("failed to load criteria: %w", err)
	}
	return &criteria, nil
}

func (r *criteriaRepository) Replace(ownerID uuid.UUID, content string) (*models.EligibilityCriteria, error) {
	criteria := &models.EligibilityCriteria{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Content:   content,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		deactivate := tx.Model(&models.EligibilityCriteria{}).
			Where("owner_id = ? AND is_active = ?", ownerID, true).
			Update("is_active", false)
		if deactivate.Error != nil {
			return fmt.Errorf("failed to deactivate criteria: %w", deactivate.Error)
		}

		if err := tx.Create(criteria).Error; err != nil {
			return fmt.Errorf("failed to create criteria: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return criteria, nil
}
