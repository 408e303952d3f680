package models

type Summary struct {
	TotalProcessed int `json:"total_processed"`
	Accepted       int `json:"accepted"`
	Rejected       int `json:"rejected"`
	Errors         int `json:"errors"`
}

type SubmitResponse struct {
	Status    string                `json:"status"`
	Message   string                `json:"message"`
	SessionID string                `json:"session_id"`
	Results   []CandidateEvaluation `json:"results"`
	Summary   Summary               `json:"summary"`
	Warnings  []string              `json:"warnings,omitempty"`
}

type CriteriaUpdateRequest struct {
	OwnerEmail string `json:"owner_email" validate:"required,email"`
	Content    string `json:"content" validate:"required"`
}

type CriteriaValidateRequest struct {
	Content string `json:"content"`
}

type CriteriaValidateResponse struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
	Preview string `json:"preview,omitempty"`
}

type CriteriaResponse struct {
	Status  string `json:"status"`
	Content string `json:"content"`
	Version string `json:"version,omitempty"`
}

type CancelRequest struct {
	Reason string `json:"reason"`
}

type PurgeOwnerResponse struct {
	SessionsDeleted int64 `json:"sessions_deleted"`
	ResultsDeleted  int64 `json:"results_deleted"`
}
