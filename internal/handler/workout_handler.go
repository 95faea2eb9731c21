package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/workoutlog/internal/middleware"
	"github.com/mansoorceksport/workoutlog/internal/service"
)

// WorkoutHandler serves the daily workout view for the signed-in user
type WorkoutHandler struct {
	logService *service.WorkoutLogService
}

func NewWorkoutHandler(logService *service.WorkoutLogService) *WorkoutHandler {
	return &WorkoutHandler{logService: logService}
}

// Today handles GET /v1/me/today
func (h *WorkoutHandler) Today(c *fiber.Ctx) error {
	view, err := h.logService.Today(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(view)
}

// Submit handles POST /v1/me/today
func (h *WorkoutHandler) Submit(c *fiber.Ctx) error {
	var req service.LogSubmission
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}

	view, err := h.logService.Submit(c.UserContext(), middleware.GetUserID(c), req)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Workout saved.",
		"data":    view,
	})
}
