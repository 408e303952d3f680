package models

import (
	"time"

	"github.com/google/uuid"
)

type Outcome string

const (
	OutcomeAccepted Outcome = "Accepted"
	OutcomeRejected Outcome = "Rejected"
	OutcomeError    Outcome = "Error"
)

// AcceptanceThreshold is the inclusive lower score bound for acceptance.
const AcceptanceThreshold = 60.0

// CandidateEvaluation is the persisted result of evaluating one candidate
// in one session. Exactly one row exists per (owner, session, email).
type CandidateEvaluation struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	OwnerID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_owner_session_email" json:"owner_id"`
	SessionID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_owner_session_email" json:"session_id"`
	Email     string    `gorm:"type:text;not null;index;uniqueIndex:idx_owner_session_email" json:"email"`

	Outcome   Outcome  `gorm:"not null" json:"outcome"`
	Score     *float64 `json:"score,omitempty"`
	Rationale string   `gorm:"type:text" json:"rationale"`

	Name                       string `gorm:"type:text" json:"name,omitempty"`
	Gender                     string `gorm:"type:text" json:"gender,omitempty"`
	DateOfBirth                string `gorm:"type:text" json:"date_of_birth,omitempty"`
	MaritalStatus              string `gorm:"type:text" json:"marital_status,omitempty"`
	Religion                   string `gorm:"type:text" json:"religion,omitempty"`
	PhoneNumber                string `gorm:"type:text" json:"phone_number,omitempty"`
	ResidentialAddress         string `gorm:"type:text" json:"residential_address,omitempty"`
	CurrentEmployment          string `gorm:"type:text" json:"current_employment,omitempty"`
	EmploymentCategory         string `gorm:"type:text" json:"employment_category,omitempty"`
	UniversityAttended         string `gorm:"type:text" json:"university_attended,omitempty"`
	EducationQualifications    string `gorm:"type:text" json:"education_qualifications,omitempty"`
	ProfessionalQualifications string `gorm:"type:text" json:"professional_qualifications,omitempty"`
	CareerInterests            string `gorm:"type:text" json:"career_interests,omitempty"`
	PreviousApplications       string `gorm:"type:text" json:"previous_applications,omitempty"`
	Essay                      string `gorm:"type:text" json:"candidate_essay,omitempty"`

	DocumentURL     string `gorm:"type:text" json:"document_url,omitempty"`
	MediaURL        string `gorm:"type:text" json:"media_url,omitempty"`
	DocumentText    string `gorm:"type:text" json:"document_text,omitempty"`
	MediaTranscript string `gorm:"type:text" json:"media_transcript,omitempty"`

	ProcessingErrors []string  `gorm:"serializer:json;type:jsonb" json:"processing_errors"`
	FilesProcessed   bool      `gorm:"not null;default:false" json:"files_processed_successfully"`
	EvaluatedAt      time.Time `gorm:"default:CURRENT_TIMESTAMP;index" json:"evaluated_at"`
}

func (CandidateEvaluation) TableName() string {
	return "candidate_evaluations"
}
