package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/safemeet/internal/middleware"
	"github.com/example/safemeet/internal/models"
	"github.com/example/safemeet/internal/services"
	"github.com/example/safemeet/internal/utils"
)

// EmergencyHandler exposes the safety alert endpoints.
type EmergencyHandler struct {
	emergency *services.EmergencyService
}

// NewEmergencyHandler constructs an EmergencyHandler.
func NewEmergencyHandler(emergency *services.EmergencyService) *EmergencyHandler {
	return &EmergencyHandler{emergency: emergency}
}

type alertRequest struct {
	Type               string   `json:"type"`
	Priority           string   `json:"priority"`
	Message            string   `json:"message"`
	Latitude           *float64 `json:"latitude"`
	Longitude          *float64 `json:"longitude"`
	DurationMinutes    int      `json:"duration_minutes"`
	ContactAuthorities bool     `json:"contact_authorities"`
}

func (r *alertRequest) toInput() services.CreateAlertInput {
	return services.CreateAlertInput{
		Type:               models.AlertType(r.Type),
		Priority:           models.AlertPriority(r.Priority),
		Message:            r.Message,
		Latitude:           r.Latitude,
		Longitude:          r.Longitude,
		DurationMinutes:    r.DurationMinutes,
		ContactAuthorities: r.ContactAuthorities,
	}
}

// CreateAlert raises an alert of any type and fans it out to the caller's
// eligible contacts.
func (h *EmergencyHandler) CreateAlert(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req alertRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	alert, err := h.emergency.CreateAlert(userID, req.toInput())
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"alert":   alert,
	})
}

// CheckIn is the convenience path for a check-in alert.
func (h *EmergencyHandler) CheckIn(c *fiber.Ctx) error {
	return h.fixedTypeAlert(c, models.AlertCheckIn)
}

// ShareLocation raises a timed location-share alert.
func (h *EmergencyHandler) ShareLocation(c *fiber.Ctx) error {
	return h.fixedTypeAlert(c, models.AlertLocationShare)
}

func (h *EmergencyHandler) fixedTypeAlert(c *fiber.Ctx, t models.AlertType) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req alertRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	input := req.toInput()
	input.Type = t

	alert, err := h.emergency.CreateAlert(userID, input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"alert":   alert,
	})
}

type notifyContactsRequest struct {
	ContactIDs []uuid.UUID `json:"contact_ids"`
	Message    string      `json:"message"`
}

// NotifyContacts sends an emergency alert to a caller-chosen set of
// contacts, bypassing the channel opt-in filter.
func (h *EmergencyHandler) NotifyContacts(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req notifyContactsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	alert, notified, err := h.emergency.NotifyContacts(userID, req.ContactIDs, req.Message)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":  true,
		"alert":    alert,
		"notified": notified,
	})
}

// ListAlerts returns the caller's alert history, optionally filtered by
// status.
func (h *EmergencyHandler) ListAlerts(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	pagination := utils.ParsePagination(c)
	status := models.AlertStatus(c.Query("status"))

	alerts, total, err := h.emergency.ListAlerts(userID, status, pagination.Limit, pagination.Offset)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"alerts":  alerts,
		"total":   total,
		"page":    pagination.Page,
		"limit":   pagination.Limit,
	})
}

// GetAlert returns one alert owned by the caller.
func (h *EmergencyHandler) GetAlert(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	alertID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid alert id")
	}

	alert, err := h.emergency.GetAlert(userID, alertID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "alert": alert})
}

type alertStatusRequest struct {
	Status    string     `json:"status"`
	Notes     string     `json:"notes"`
	ContactID *uuid.UUID `json:"contact_id"`
}

// UpdateStatus moves an alert through its lifecycle: acknowledged,
// resolved, or false_alarm.
func (h *EmergencyHandler) UpdateStatus(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	alertID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid alert id")
	}

	var req alertStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	var alert *models.SafetyAlert
	switch models.AlertStatus(req.Status) {
	case models.AlertAcknowledged:
		alert, err = h.emergency.Acknowledge(userID, alertID, req.ContactID)
	case models.AlertResolved:
		alert, err = h.emergency.Resolve(userID, alertID, req.Notes)
	case models.AlertFalseAlarm:
		alert, err = h.emergency.MarkFalseAlarm(userID, alertID)
	default:
		return fiber.NewError(fiber.StatusBadRequest, "status must be acknowledged, resolved or false_alarm")
	}
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "alert": alert})
}

// EmergencyInfo returns the static South African emergency numbers the
// mobile app shows alongside the panic button.
func (h *EmergencyHandler) EmergencyInfo(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"emergency_numbers": []fiber.Map{
			{"name": "Police", "number": "10111"},
			{"name": "Ambulance", "number": "10177"},
			{"name": "Emergency (mobile)", "number": "112"},
			{"name": "GBV Command Centre", "number": "0800 428 428"},
		},
		"safety_tips": []string{
			"Share your meeting details with a trusted contact before you go.",
			"Meet in a public, well-lit place for first meetings.",
			"Keep your phone charged and location services on.",
			"Trust your instincts. Leave if something feels wrong.",
		},
	})
}
