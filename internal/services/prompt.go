package services

import (
	"fmt"
	"strings"

	"appreview/roster-evaluator/internal/models"
)

// DefaultEligibilityCriteria is used when an owner has not configured
// criteria of their own.
const DefaultEligibilityCriteria = `ELIGIBILITY CRITERIA
→ Completed undergraduate degree from a recognized university
→ Demonstrable professional or academic achievement relevant to the programme
→ Clear articulation of career goals and motivation in the essay
→ Evidence of communication skills in the submitted materials`

// reviewSchema is the exact response shape the scoring backend must return.
const reviewSchema = `{
  "outcome": "<'Accepted' or 'Rejected'>",
  "score": <number between 0 and 100>,
  "rationale": "<detailed explanation of the decision, 3-5 sentences>"
}`

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildCandidateNarrative renders a candidate's profile fields into prose
// for the scoring prompt. Absent fields read as "Not provided" so the
// backend never has to guess at missing columns.
func (pb *PromptBuilder) BuildCandidateNarrative(c *models.CandidateRecord) string {
	return strings.TrimSpace(fmt.Sprintf(`CANDIDATE PROFILE

Personal Information:
%s is a %s candidate born on %s. Their marital status is %s and their religion is %s.

Contact Details:
The candidate can be reached at %s or by phone at %s. They reside at: %s.

Professional Background:
Currently employed as %s in the %s sector. Workplace address: %s.

Educational Background:
Undergraduate: %s degree in %s at %s, class %s, completed %s.
Postgraduate: %s in %s, class %s, completed %s.
Education qualifications: %s.
Professional qualifications: %s.

Career Aspirations:
%s

Previous Applications: %s.

Candidate's Essay:
%s

Application Date: %s`,
		orNotProvided(c.Name),
		strings.ToLower(orNotProvided(c.Gender)),
		orNotProvided(c.DateOfBirth),
		strings.ToLower(orNotProvided(c.MaritalStatus)),
		orNotProvided(c.Religion),
		c.Email,
		orNotProvided(c.PhoneNumber),
		orNotProvided(c.ResidentialAddress),
		orNotProvided(c.CurrentEmployment),
		orNotProvided(c.EmploymentCategory),
		orNotProvided(c.CompanyAddress),
		orNotProvided(c.UndergraduateDegree),
		orNotProvided(c.UndergraduateProgramme),
		orNotProvided(c.UniversityAttended),
		orNotProvided(c.UndergraduateClass),
		orNotProvided(c.UndergraduateCompletion),
		orNotProvided(c.PostgraduateDegree),
		orNotProvided(c.PostgraduateProgramme),
		orNotProvided(c.PostgraduateClass),
		orNotProvided(c.PostgraduateCompletion),
		orNotProvided(c.EducationQualifications),
		orNotProvided(c.ProfessionalQualifications),
		orNotProvided(c.CareerInterests),
		orNotProvided(c.PreviousApplications),
		orNotProvided(c.Essay),
		orNotProvided(c.Timestamp),
	))
}

// BuildEvaluationPrompt assembles the full scoring request: criteria,
// profile narrative, extracted artifact text, and the response schema.
func (pb *PromptBuilder) BuildEvaluationPrompt(criteria, narrative, documentText, transcript string, processingErrors []string) string {
	notes := "None"
	if len(processingErrors) > 0 {
		notes = strings.Join(processingErrors, "; ")
	}

	return fmt.Sprintf(`You are an expert admissions reviewer evaluating a candidate against a programme's eligibility policy.

ELIGIBILITY CRITERIA:
%s

%s

EXTRACTED CV CONTENT:
%s

VIDEO PRESENTATION TRANSCRIPT:
%s

PROCESSING NOTES:
Errors encountered while retrieving the candidate's files: %s

Evaluate the candidate strictly against the eligibility criteria above. A missing CV or transcript is not disqualifying on its own; judge the evidence you have. Score from 0 to 100 where 60 and above means the candidate meets the criteria.

Return ONLY a JSON object in exactly this format:
%s`,
		criteria,
		narrative,
		orAbsent(truncateText(documentText, 2000)),
		orAbsent(truncateText(transcript, 2000)),
		notes,
		reviewSchema,
	)
}

func orNotProvided(v string) string {
	if strings.TrimSpace(v) == "" {
		return "Not provided"
	}
	return v
}

func orAbsent(v string) string {
	if strings.TrimSpace(v) == "" {
		return "(not available)"
	}
	return v
}

func truncateText(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
