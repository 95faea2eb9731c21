package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/workoutlog/internal/domain"
)

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	var (
		structural *domain.StructuralValidationError
		malformed  *domain.MalformedCSVError
		rowErr     *domain.RowParseError
		refErr     *domain.ReferenceError
		conflict   *domain.StorageConflictError
		repsErr    *domain.InvalidRepsError
	)

	switch {
	case errors.As(err, &structural), errors.As(err, &malformed),
		errors.As(err, &rowErr), errors.As(err, &repsErr):
		return fiber.StatusBadRequest
	case errors.As(err, &refErr):
		return fiber.StatusNotFound
	case errors.As(err, &conflict):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidPlanDate),
		errors.Is(err, domain.ErrExerciseNameEmpty):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrPlanNotFound),
		errors.Is(err, domain.ErrExerciseNotFound),
		errors.Is(err, domain.ErrNoPlanToday):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrDuplicatePlanDate),
		errors.Is(err, domain.ErrDuplicateExercise),
		errors.Is(err, domain.ErrPlanHasLogs),
		errors.Is(err, domain.ErrExerciseInUse):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

func errorResponse(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
}
