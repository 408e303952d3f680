package models

import "time"

// CandidateRecord is one validated roster row. Identity is the
// case-normalized email; everything else is optional. Records are built by
// the roster ingestor and immutable afterwards.
type CandidateRecord struct {
	Email string

	Timestamp                  string
	Name                       string
	Gender                     string
	DateOfBirth                string
	MaritalStatus              string
	Religion                   string
	PhoneNumber                string
	ResidentialAddress         string
	CurrentEmployment          string
	EmploymentCategory         string
	CompanyAddress             string
	UniversityAttended         string
	UndergraduateDegree        string
	UndergraduateProgramme     string
	UndergraduateClass         string
	UndergraduateCompletion    string
	PostgraduateDegree         string
	PostgraduateProgramme      string
	PostgraduateClass          string
	PostgraduateCompletion     string
	EducationQualifications    string
	ProfessionalQualifications string
	CareerInterests            string
	PreviousApplications       string
	Essay                      string

	// Locators into the external file store. Empty means the lane is absent.
	DocumentURL string
	MediaURL    string
}

// ExtractionResult carries the output of the two extraction lanes. Either
// lane may be empty with a corresponding entry in Errors; partial success
// is the normal case, not a failure.
type ExtractionResult struct {
	DocumentText    string
	MediaTranscript string
	Errors          []string
}

// CandidateResult is the transient outcome of evaluating one candidate,
// before persistence.
type CandidateResult struct {
	Candidate        *CandidateRecord
	Outcome          Outcome
	Score            *float64
	Rationale        string
	ProcessingErrors []string
	DocumentText     string
	MediaTranscript  string
	EvaluatedAt      time.Time
}
