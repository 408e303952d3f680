package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"appreview/roster-evaluator/internal/models"
)

// Roster is a parsed, validated upload: candidates deduplicated by email
// (last row wins) plus warnings for rows that were dropped.
type Roster struct {
	Candidates []*models.CandidateRecord
	Warnings   []string
}

// emailColumns are the accepted headers for the required identity column.
var emailColumns = map[string]bool{
	"email address": true,
	"email":         true,
}

// optionalColumns maps normalized roster headers to candidate fields.
// Headers not listed here are ignored.
var optionalColumns = map[string]func(*models.CandidateRecord, string){
	"timestamp":                            func(c *models.CandidateRecord, v string) { c.Timestamp = v },
	"name (surname first)":                 func(c *models.CandidateRecord, v string) { c.Name = v },
	"name":                                 func(c *models.CandidateRecord, v string) { c.Name = v },
	"gender":                               func(c *models.CandidateRecord, v string) { c.Gender = v },
	"date of birth":                        func(c *models.CandidateRecord, v string) { c.DateOfBirth = v },
	"marital status":                       func(c *models.CandidateRecord, v string) { c.MaritalStatus = v },
	"religion":                             func(c *models.CandidateRecord, v string) { c.Religion = v },
	"phone number":                         func(c *models.CandidateRecord, v string) { c.PhoneNumber = v },
	"residential address":                  func(c *models.CandidateRecord, v string) { c.ResidentialAddress = v },
	"current employment":                   func(c *models.CandidateRecord, v string) { c.CurrentEmployment = v },
	"employment category":                  func(c *models.CandidateRecord, v string) { c.EmploymentCategory = v },
	"company address":                      func(c *models.CandidateRecord, v string) { c.CompanyAddress = v },
	"university attended":                  func(c *models.CandidateRecord, v string) { c.UniversityAttended = v },
	"degree type (undergraduate)":          func(c *models.CandidateRecord, v string) { c.UndergraduateDegree = v },
	"programme (undergraduate)":            func(c *models.CandidateRecord, v string) { c.UndergraduateProgramme = v },
	"class of degree (undergraduate)":      func(c *models.CandidateRecord, v string) { c.UndergraduateClass = v },
	"date of completion (undergraduate)":   func(c *models.CandidateRecord, v string) { c.UndergraduateCompletion = v },
	"degree type (postgraduate)":           func(c *models.CandidateRecord, v string) { c.PostgraduateDegree = v },
	"programme (postgraduate)":             func(c *models.CandidateRecord, v string) { c.PostgraduateProgramme = v },
	"class of degree (postgraduate)":       func(c *models.CandidateRecord, v string) { c.PostgraduateClass = v },
	"date of completion (postgraduate)":    func(c *models.CandidateRecord, v string) { c.PostgraduateCompletion = v },
	"education qualification(s)":           func(c *models.CandidateRecord, v string) { c.EducationQualifications = v },
	"professional qualification(s)":        func(c *models.CandidateRecord, v string) { c.ProfessionalQualifications = v },
	"career interests":                     func(c *models.CandidateRecord, v string) { c.CareerInterests = v },
	"have you applied for this programme before?": func(c *models.CandidateRecord, v string) { c.PreviousApplications = v },
	"previous applications":                func(c *models.CandidateRecord, v string) { c.PreviousApplications = v },
	"essay":                                func(c *models.CandidateRecord, v string) { c.Essay = v },
	"candidate essay":                      func(c *models.CandidateRecord, v string) { c.Essay = v },
	"curriculum vitae":                     func(c *models.CandidateRecord, v string) { c.DocumentURL = v },
	"cv":                                   func(c *models.CandidateRecord, v string) { c.DocumentURL = v },
	"video presentation":                   func(c *models.CandidateRecord, v string) { c.MediaURL = v },
	"video":                                func(c *models.CandidateRecord, v string) { c.MediaURL = v },
}

// ParseRoster reads a CSV roster into validated candidate records. The
// email column is required and checked before any row is processed; rows
// without a usable email are dropped and reported as warnings, and when the
// same email appears more than once the last row wins.
func ParseRoster(r io.Reader) (*Roster, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &ValidationError{Reason: "roster file is empty"}
	}
	if err != nil {
		return nil, &ValidationError{Reason: fmt.Sprintf("failed to parse roster header: %v", err)}
	}

	emailIdx := -1
	setters := make(map[int]func(*models.CandidateRecord, string))
	for i, col := range header {
		name := normalizeHeader(col)
		if emailColumns[name] && emailIdx == -1 {
			emailIdx = i
			continue
		}
		if set, ok := optionalColumns[name]; ok {
			setters[i] = set
		}
	}

	if emailIdx == -1 {
		return nil, &ValidationError{
			Reason: fmt.Sprintf("roster is missing the required email column; found columns: %s", strings.Join(header, ", ")),
		}
	}

	roster := &Roster{}
	index := make(map[string]int)
	line := 1

	for {
		line++
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			roster.Warnings = append(roster.Warnings, fmt.Sprintf("row %d: unparsable, skipped (%v)", line, err))
			continue
		}

		if emailIdx >= len(row) {
			roster.Warnings = append(roster.Warnings, fmt.Sprintf("row %d: missing email, skipped", line))
			continue
		}

		email := NormalizeEmail(row[emailIdx])
		if email == "" || !strings.Contains(email, "@") {
			roster.Warnings = append(roster.Warnings, fmt.Sprintf("row %d: empty or invalid email, skipped", line))
			continue
		}

		candidate := &models.CandidateRecord{Email: email}
		for i, set := range setters {
			if i < len(row) {
				set(candidate, strings.TrimSpace(row[i]))
			}
		}

		// Last occurrence wins: drop the earlier record and keep upload
		// order of the surviving row.
		if prev, ok := index[email]; ok {
			roster.Candidates = append(roster.Candidates[:prev], roster.Candidates[prev+1:]...)
			for e, idx := range index {
				if idx > prev {
					index[e] = idx - 1
				}
			}
		}
		index[email] = len(roster.Candidates)
		roster.Candidates = append(roster.Candidates, candidate)
	}

	return roster, nil
}

// NormalizeEmail lowercases and trims a candidate identity.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizeHeader(col string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(col))), " ")
}
