package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/safemeet/internal/middleware"
	"github.com/example/safemeet/internal/services"
)

// ContactHandler exposes emergency contact management.
type ContactHandler struct {
	contacts *services.ContactService
}

// NewContactHandler constructs a ContactHandler.
func NewContactHandler(contacts *services.ContactService) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

type contactRequest struct {
	Name               string `json:"name"`
	Phone              string `json:"phone"`
	Email              string `json:"email"`
	Relation           string `json:"relation"`
	Priority           int    `json:"priority"`
	NotifyOnEmergency  *bool  `json:"notify_on_emergency"`
	NotifyOnCheckIn    *bool  `json:"notify_on_check_in"`
	NotifyOnLateReturn *bool  `json:"notify_on_late_return"`
}

func (r *contactRequest) toInput() services.ContactInput {
	return services.ContactInput{
		Name:               r.Name,
		Phone:              r.Phone,
		Email:              r.Email,
		Relation:           r.Relation,
		Priority:           r.Priority,
		NotifyOnEmergency:  r.NotifyOnEmergency,
		NotifyOnCheckIn:    r.NotifyOnCheckIn,
		NotifyOnLateReturn: r.NotifyOnLateReturn,
	}
}

// Create adds a new emergency contact for the caller.
func (h *ContactHandler) Create(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req contactRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	contact, err := h.contacts.Create(userID, req.toInput())
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"contact": contact,
	})
}

// List returns the caller's contacts. Pass active_only=true to hide
// deactivated entries.
func (h *ContactHandler) List(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	activeOnly := c.Query("active_only") == "true"

	contacts, err := h.contacts.List(userID, activeOnly)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"contacts": contacts,
		"count":    len(contacts),
	})
}

// Update applies partial changes to an owned contact.
func (h *ContactHandler) Update(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	contactID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid contact id")
	}

	var req contactRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	contact, err := h.contacts.Update(userID, contactID, req.toInput())
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "contact": contact})
}

// Deactivate soft-disables a contact.
func (h *ContactHandler) Deactivate(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	contactID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid contact id")
	}

	contact, err := h.contacts.Deactivate(userID, contactID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "contact": contact})
}

// Delete removes a contact permanently.
func (h *ContactHandler) Delete(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	contactID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid contact id")
	}

	if err := h.contacts.Delete(userID, contactID); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "contact deleted"})
}
