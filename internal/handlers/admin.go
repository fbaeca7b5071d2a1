package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/safemeet/internal/middleware"
	"github.com/example/safemeet/internal/models"
	"github.com/example/safemeet/internal/services"
	"github.com/example/safemeet/internal/utils"
)

// AdminHandler serves the reviewer endpoints.
type AdminHandler struct {
	db           *gorm.DB
	verification *services.VerificationService
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(db *gorm.DB, verification *services.VerificationService) *AdminHandler {
	return &AdminHandler{db: db, verification: verification}
}

// PendingDocuments lists documents awaiting review, oldest first.
func (h *AdminHandler) PendingDocuments(c *fiber.Ctx) error {
	pagination := utils.ParsePagination(c)

	query := h.db.Model(&models.VerificationDocument{}).
		Where("state IN ?", []models.VerificationState{models.StatePending, models.StateUnderReview})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var docs []models.VerificationDocument
	if err := query.Order("created_at asc").
		Limit(pagination.Limit).Offset(pagination.Offset).
		Find(&docs).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"documents": docs,
		"total":     total,
		"page":      pagination.Page,
		"limit":     pagination.Limit,
	})
}

type reviewRequest struct {
	Outcome string `json:"outcome"`
	Reason  string `json:"reason"`
}

// ReviewDocument records the authenticated reviewer's decision.
func (h *AdminHandler) ReviewDocument(c *fiber.Ctx) error {
	reviewerID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	docID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid document id")
	}

	var req reviewRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	doc, err := h.verification.ReviewDocument(docID,
		services.ReviewOutcome(req.Outcome), reviewerID, req.Reason)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"document": doc,
	})
}

type completeCheckRequest struct {
	Outcome   string `json:"outcome"`
	Passed    bool   `json:"passed"`
	RiskLevel string `json:"risk_level"`
}

// CompleteBackgroundCheck records the screening provider's outcome.
func (h *AdminHandler) CompleteBackgroundCheck(c *fiber.Ctx) error {
	checkID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid background check id")
	}

	var req completeCheckRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	check, err := h.verification.CompleteBackgroundCheck(checkID,
		services.ReviewOutcome(req.Outcome), req.Passed, req.RiskLevel)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":          true,
		"background_check": check,
	})
}

// PendingBackgroundChecks lists open screening requests, oldest first.
func (h *AdminHandler) PendingBackgroundChecks(c *fiber.Ctx) error {
	pagination := utils.ParsePagination(c)

	query := h.db.Model(&models.BackgroundCheck{}).
		Where("state IN ?", []models.VerificationState{models.StatePending, models.StateUnderReview})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var checks []models.BackgroundCheck
	if err := query.Order("created_at asc").
		Limit(pagination.Limit).Offset(pagination.Offset).
		Find(&checks).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":           true,
		"background_checks": checks,
		"total":             total,
		"page":              pagination.Page,
		"limit":             pagination.Limit,
	})
}
