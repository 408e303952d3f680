package handlers

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"appreview/roster-evaluator/internal/models"
	"appreview/roster-evaluator/internal/repositories"
	"appreview/roster-evaluator/internal/services"
)

const criteriaPreviewLength = 200

type CriteriaHandler struct {
	owners   repositories.OwnerRepository
	criteria repositories.CriteriaRepository
	validate *validator.Validate
}

func NewCriteriaHandler(owners repositories.OwnerRepository, criteria repositories.CriteriaRepository) *CriteriaHandler {
	return &CriteriaHandler{
		owners:   owners,
		criteria: criteria,
		validate: validator.New(),
	}
}

// HandleGet handles GET /eligibility-criteria. Owners that never configured
// criteria get the built-in defaults.
func (h *CriteriaHandler) HandleGet(c *fiber.Ctx) error {
	ownerEmail := c.Query("owner_email")
	if ownerEmail == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "owner_email query parameter is required",
		})
	}

	owner, err := h.owners.FindByEmail(services.NormalizeEmail(ownerEmail))
	if err != nil {
		return c.Status(fiber.StatusOK).JSON(models.CriteriaResponse{
			Status:  "default",
			Content: services.DefaultEligibilityCriteria,
		})
	}

	active, err := h.criteria.Active(owner.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrNoCriteria) {
			return c.Status(fiber.StatusOK).JSON(models.CriteriaResponse{
				Status:  "default",
				Content: services.DefaultEligibilityCriteria,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load criteria",
		})
	}

	return c.Status(fiber.StatusOK).JSON(models.CriteriaResponse{
		Status:  "custom",
		Content: active.Content,
		Version: active.ID.String(),
	})
}

// HandleUpdate handles PUT /eligibility-criteria. Updates are insert-only:
// the previous version is deactivated, never overwritten, so sessions that
// already ran keep their provenance.
func (h *CriteriaHandler) HandleUpdate(c *fiber.Ctx) error {
	var req models.CriteriaUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	req.Content = strings.TrimSpace(req.Content)
	if err := h.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	owner, err := h.owners.CreateOrGet(services.NormalizeEmail(req.OwnerEmail), "")
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to resolve owner",
		})
	}

	saved, err := h.criteria.Replace(owner.ID, req.Content)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to save criteria",
		})
	}

	return c.Status(fiber.StatusOK).JSON(models.CriteriaResponse{
		Status:  "custom",
		Content: saved.Content,
		Version: saved.ID.String(),
	})
}

// HandleValidate handles POST /eligibility-criteria/validate. This is a
// structural sanity check only; any non-empty text is accepted, with a
// warning when it does not look like the expected bullet format.
func (h *CriteriaHandler) HandleValidate(c *fiber.Ctx) error {
	var req models.CriteriaValidateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return c.Status(fiber.StatusOK).JSON(models.CriteriaValidateResponse{
			Valid:   false,
			Message: "Criteria content is empty",
		})
	}

	resp := models.CriteriaValidateResponse{
		Valid:   true,
		Message: "Criteria look valid",
		Preview: preview(content, criteriaPreviewLength),
	}
	if !strings.Contains(content, "→") {
		resp.Message = "Criteria accepted, but no '→' bullets found; consider the bullet format used by the defaults"
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

func preview(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
