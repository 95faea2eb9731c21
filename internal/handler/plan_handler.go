package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/workoutlog/internal/middleware"
	"github.com/mansoorceksport/workoutlog/internal/service"
	"github.com/mansoorceksport/workoutlog/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// ImportFormField is the multipart field carrying the plan CSV
const ImportFormField = "csv_file"

type PlanHandler struct {
	planService   *service.PlanService
	importService *service.PlanImportService
	maxUploadMB   int64
}

func NewPlanHandler(planService *service.PlanService, importService *service.PlanImportService, maxUploadMB int64) *PlanHandler {
	return &PlanHandler{
		planService:   planService,
		importService: importService,
		maxUploadMB:   maxUploadMB,
	}
}

type planRequest struct {
	Date  string `json:"date"`
	Title string `json:"title"`
}

func (h *PlanHandler) ListPlans(c *fiber.Ctx) error {
	plans, err := h.planService.ListPlans(c.UserContext())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(plans)
}

func (h *PlanHandler) CreatePlan(c *fiber.Ctx) error {
	var req planRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}

	plan, err := h.planService.CreatePlan(c.UserContext(), req.Date, req.Title, middleware.GetUserID(c))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(plan)
}

func (h *PlanHandler) GetPlan(c *fiber.Ctx) error {
	plan, err := h.planService.GetPlan(c.UserContext(), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(plan)
}

func (h *PlanHandler) UpdatePlan(c *fiber.Ctx) error {
	var req planRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}

	plan, err := h.planService.UpdatePlan(c.UserContext(), c.Params("id"), req.Date, req.Title)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(plan)
}

func (h *PlanHandler) DeletePlan(c *fiber.Ctx) error {
	if err := h.planService.DeletePlan(c.UserContext(), c.Params("id")); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "deleted"})
}

// ImportCSV handles POST /v1/admin/plans/:id/import
// Replaces the plan's items with the rows of the uploaded csv_file
func (h *PlanHandler) ImportCSV(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid multipart form: " + err.Error(),
		})
	}

	files := form.File[ImportFormField]
	if len(files) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   fmt.Sprintf("missing '%s' field in form data", ImportFormField),
		})
	}
	csvFile := files[0]

	maxBytes := h.maxUploadMB * 1024 * 1024
	if csvFile.Size > maxBytes {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
			"success": false,
			"error":   fmt.Sprintf("file too large: max %dMB allowed", h.maxUploadMB),
		})
	}

	file, err := csvFile.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "failed to open uploaded file",
		})
	}
	defer file.Close()

	telemetry.AddSpanEvent(c, "csv.received",
		attribute.String("csv.filename", csvFile.Filename),
		attribute.Int64("csv.size", csvFile.Size),
	)

	summary, err := h.importService.Import(c.UserContext(), c.Params("id"), file)
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{
			"success": false,
			"error":   "CSV import failed: " + err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    summary,
		"message": summary.Message(),
	})
}
