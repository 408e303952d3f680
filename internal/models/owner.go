package models

import (
	"time"

	"github.com/google/uuid"
)

// Owner is the end user submitting rosters. All sessions, results and
// criteria hang off an owner and are deleted with it.
type Owner struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Email     string    `gorm:"type:text;not null;uniqueIndex" json:"email"`
	Name      string    `gorm:"type:text" json:"name,omitempty"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Owner) TableName() string {
	return "owners"
}
