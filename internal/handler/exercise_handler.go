package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/workoutlog/internal/domain"
	"github.com/mansoorceksport/workoutlog/internal/service"
)

type ExerciseHandler struct {
	exerciseService *service.ExerciseService
}

func NewExerciseHandler(exerciseService *service.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService}
}

func (h *ExerciseHandler) ListExercises(c *fiber.Ctx) error {
	exs, err := h.exerciseService.List(c.UserContext(), c.Query("name"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(exs)
}

func (h *ExerciseHandler) CreateExercise(c *fiber.Ctx) error {
	var req domain.Exercise
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	req.ID = ""
	if err := h.exerciseService.Create(c.UserContext(), &req); err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(req)
}

func (h *ExerciseHandler) UpdateExercise(c *fiber.Ctx) error {
	var req domain.Exercise
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	req.ID = c.Params("id")
	if err := h.exerciseService.Update(c.UserContext(), &req); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(req)
}

func (h *ExerciseHandler) DeleteExercise(c *fiber.Ctx) error {
	if err := h.exerciseService.Delete(c.UserContext(), c.Params("id")); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "deleted"})
}
