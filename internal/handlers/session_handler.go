package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"appreview/roster-evaluator/internal/models"
	"appreview/roster-evaluator/internal/repositories"
	"appreview/roster-evaluator/internal/services"
)

type SessionHandler struct {
	owners      repositories.OwnerRepository
	sessions    repositories.SessionRepository
	evaluations repositories.EvaluationRepository
	pipeline    services.PipelineService
}

func NewSessionHandler(
	owners repositories.OwnerRepository,
	sessions repositories.SessionRepository,
	evaluations repositories.EvaluationRepository,
	pipeline services.PipelineService,
) *SessionHandler {
	return &SessionHandler{
		owners:      owners,
		sessions:    sessions,
		evaluations: evaluations,
		pipeline:    pipeline,
	}
}

// HandleListSessions handles GET /sessions
func (h *SessionHandler) HandleListSessions(c *fiber.Ctx) error {
	ownerEmail := c.Query("owner_email")
	if ownerEmail == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "owner_email query parameter is required",
		})
	}

	owner, err := h.owners.FindByEmail(services.NormalizeEmail(ownerEmail))
	if err != nil {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"sessions": []models.EvaluationSession{},
		})
	}

	sessions, err := h.sessions.ListByOwner(owner.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to list sessions",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"sessions": sessions,
	})
}

// HandleSessionCandidates handles GET /sessions/:id/candidates
func (h *SessionHandler) HandleSessionCandidates(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session id format",
		})
	}

	session, err := h.sessions.FindByID(sessionID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Session not found",
		})
	}

	results, err := h.evaluations.ListBySession(session.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to list candidates",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"session":    session,
		"candidates": results,
	})
}

// HandleOwnerCandidates handles GET /owners/:email/candidates. A candidate
// evaluated in several sessions appears once, with the most recent result.
func (h *SessionHandler) HandleOwnerCandidates(c *fiber.Ctx) error {
	ownerEmail := c.Params("email")
	if ownerEmail == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "owner email is required",
		})
	}

	owner, err := h.owners.FindByEmail(services.NormalizeEmail(ownerEmail))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Owner not found",
		})
	}

	results, err := h.evaluations.LatestPerCandidate(owner.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to list candidates",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"candidates": results,
	})
}

// HandleCandidate handles GET /candidates/:id
func (h *SessionHandler) HandleCandidate(c *fiber.Ctx) error {
	candidateID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid candidate id format",
		})
	}

	evaluation, err := h.evaluations.FindByID(candidateID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Candidate evaluation not found",
		})
	}

	return c.Status(fiber.StatusOK).JSON(evaluation)
}

// HandleCancelSession handles POST /sessions/:id/cancel. Cancellation is
// cooperative: the current batch finishes, the rest are skipped and the
// session ends up failed with the reason recorded.
func (h *SessionHandler) HandleCancelSession(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session id format",
		})
	}

	var req models.CancelRequest
	// An empty body is fine; reason is optional.
	_ = c.BodyParser(&req)

	if ok := h.pipeline.CancelSession(sessionID, req.Reason); !ok {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Session is not currently running",
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message": "Cancellation requested",
	})
}

// HandleDeleteSession handles DELETE /sessions/:id
func (h *SessionHandler) HandleDeleteSession(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session id format",
		})
	}

	if _, err := h.sessions.FindByID(sessionID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Session not found",
		})
	}

	resultsDeleted, err := h.sessions.Delete(sessionID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to delete session",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":         "Session deleted",
		"results_deleted": resultsDeleted,
	})
}

// HandlePurgeOwner handles DELETE /owners/:email/sessions
func (h *SessionHandler) HandlePurgeOwner(c *fiber.Ctx) error {
	ownerEmail := c.Params("email")
	if ownerEmail == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "owner email is required",
		})
	}

	owner, err := h.owners.FindByEmail(services.NormalizeEmail(ownerEmail))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Owner not found",
		})
	}

	sessionsDeleted, resultsDeleted, err := h.owners.PurgeData(owner.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to purge owner data",
		})
	}

	return c.Status(fiber.StatusOK).JSON(models.PurgeOwnerResponse{
		SessionsDeleted: sessionsDeleted,
		ResultsDeleted:  resultsDeleted,
	})
}
