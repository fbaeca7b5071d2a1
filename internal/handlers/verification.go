package handlers

import (
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/safemeet/internal/middleware"
	"github.com/example/safemeet/internal/models"
	"github.com/example/safemeet/internal/services"
)

// maxDocumentSize caps uploads at 10 MB.
const maxDocumentSize = 10 << 20

// VerificationHandler exposes the user-facing verification endpoints.
type VerificationHandler struct {
	verification *services.VerificationService
}

// NewVerificationHandler constructs a VerificationHandler.
func NewVerificationHandler(verification *services.VerificationService) *VerificationHandler {
	return &VerificationHandler{verification: verification}
}

// UploadDocument accepts a multipart upload with a "file" part and a "kind"
// form field.
func (h *VerificationHandler) UploadDocument(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	kind := models.DocumentKind(c.FormValue("kind"))

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "file is required")
	}
	if fileHeader.Size > maxDocumentSize {
		return fiber.NewError(fiber.StatusBadRequest, "file exceeds 10MB limit")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "failed to open uploaded file")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "failed to read uploaded file")
	}

	doc, err := h.verification.UploadDocument(userID, kind,
		fileHeader.Filename, fileHeader.Header.Get("Content-Type"), data)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":  true,
		"document": doc,
	})
}

// ListDocuments returns the caller's documents newest first.
func (h *VerificationHandler) ListDocuments(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	docs, err := h.verification.ListDocuments(userID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"documents": docs,
		"count":     len(docs),
	})
}

// GetDocument returns one of the caller's documents.
func (h *VerificationHandler) GetDocument(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	docID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid document id")
	}

	doc, err := h.verification.GetDocument(userID, docID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "document": doc})
}

// DeleteDocument removes a non-approved document.
func (h *VerificationHandler) DeleteDocument(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	docID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid document id")
	}

	if err := h.verification.DeleteDocument(userID, docID); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "document deleted"})
}

// Status returns the aggregated verification picture for the caller.
func (h *VerificationHandler) Status(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	status, err := h.verification.VerificationStatus(userID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "status": status})
}

// RequestBackgroundCheck opens a screening request for the caller.
func (h *VerificationHandler) RequestBackgroundCheck(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	check, err := h.verification.RequestBackgroundCheck(userID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":          true,
		"background_check": check,
	})
}
