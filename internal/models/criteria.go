package models

import (
	"time"

	"github.com/google/uuid"
)

// EligibilityCriteria is one version of an owner's eligibility policy text.
// Rows are insert-only; replacing criteria deactivates the previous row, so
// exactly one active row exists per owner.
type EligibilityCriteria struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	OwnerID   uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (EligibilityCriteria) TableName() string {
	return "eligibility_criteria"
}
