package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"appreview/roster-evaluator/internal/services"
)

type EvaluateHandler struct {
	pipeline    services.PipelineService
	maxFileSize int64
}

func NewEvaluateHandler(pipeline services.PipelineService, maxFileSize int64) *EvaluateHandler {
	return &EvaluateHandler{
		pipeline:    pipeline,
		maxFileSize: maxFileSize,
	}
}

// HandleEvaluate handles POST /evaluate-candidates. The multipart form
// carries the roster CSV under "file"; evaluation runs synchronously and
// the full result set comes back in the response.
func (h *EvaluateHandler) HandleEvaluate(c *fiber.Ctx) error {
	ownerEmail := c.FormValue("owner_email")
	if ownerEmail == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "owner_email is required",
		})
	}
	sessionName := c.FormValue("session_name")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "roster file is required under field 'file'",
		})
	}

	if fileHeader.Size > h.maxFileSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("Roster file too large. Max size: %d bytes", h.maxFileSize),
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to open uploaded file",
		})
	}
	defer file.Close()

	resp, err := h.pipeline.EvaluateRoster(c.UserContext(), ownerEmail, sessionName, file)
	if err != nil {
		if services.IsValidation(err) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}
