package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"appreview/roster-evaluator/internal/models"
)

type OwnerRepository interface {
	CreateOrGet(email, name string) (*models.Owner, error)
	FindByEmail(email string) (*models.Owner, error)
	// PurgeData deletes all of an owner's sessions and results in one
	// transaction and reports how many of each were removed.
	PurgeData(ownerID uuid.UUID) (sessionsDeleted, resultsDeleted int64, err error)
}

type ownerRepository struct {
	db *gorm.DB
}

func NewOwnerRepository(db *gorm.DB) OwnerRepository {
	return &ownerRepository{db: db}
}

func (r *ownerRepository) CreateOrGet(email, name string) (*models.Owner, error) {
	var owner models.Owner
	err := r.db.Where("email = ?", email).First(&owner).Error
	if err == nil {
		if name != "" && owner.Name != name {
			owner.Name = name
			owner.UpdatedAt = time.Now().UTC()
			if err := r.db.Save(&owner).Error; err != nil {
				return nil, fmt.Errorf("failed to update owner: %w", err)
			}
		}
		return &owner, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up owner: %w", err)
	}

	owner = models.Owner{
		ID:        uuid.New(),
		Email:     email,
		Name:      name,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := r.db.Create(&owner).Error; err != nil {
		return nil, fmt.Errorf("failed to create owner: %w", err)
	}

	return &owner, nil
}

func (r *ownerRepository) FindByEmail(email string) (*models.Owner, error) {
	var owner models.Owner
	if err := r.db.Where("email = ?", email).First(&owner).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("owner not found")
		}
		return nil, fmt.Errorf("failed to find owner: %w", err)
	}
	return &owner, nil
}

func (r *ownerRepository) PurgeData(ownerID uuid.UUID) (int64, int64, error) {
	var sessionsDeleted, resultsDeleted int64

	err := r.db.Transaction(func(tx *gorm.DB) error {
		results := tx.Where("owner_id = ?", ownerID).Delete(&models.CandidateEvaluation{})
		if results.Error != nil {
			return fmt.Errorf("failed to delete results: %w", results.Error)
		}
		resultsDeleted = results.RowsAffected

		sessions := tx.Where("owner_id = ?", ownerID).Delete(&models.EvaluationSession{})
		if sessions.Error != nil {
			return fmt.Errorf("failed to delete sessions: %w", sessions.Error)
		}
		sessionsDeleted = sessions.RowsAffected

		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	return sessionsDeleted, resultsDeleted, nil
}
