package handlers

import (
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/example/safemeet/internal/middleware"
	"github.com/example/safemeet/internal/services"
)

// SafetyHandler exposes safety preferences and area guidance.
type SafetyHandler struct {
	safety *services.SafetyService
}

// NewSafetyHandler constructs a SafetyHandler.
func NewSafetyHandler(safety *services.SafetyService) *SafetyHandler {
	return &SafetyHandler{safety: safety}
}

// GetPreferences returns the caller's safety settings, defaults included.
func (h *SafetyHandler) GetPreferences(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	pref, err := h.safety.Preferences(userID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "preferences": pref})
}

type preferencesRequest struct {
	LocationSharing   *bool `json:"location_sharing"`
	EmergencyAlerts   *bool `json:"emergency_alerts"`
	GroupVerification *bool `json:"group_verification"`
	BackgroundCheck   *bool `json:"background_check"`
	AutoCheckIn       *bool `json:"auto_check_in"`

	CheckInIntervalMinutes     *int `json:"check_in_interval_minutes"`
	LateReturnThresholdMinutes *int `json:"late_return_threshold_minutes"`
}

// UpdatePreferences applies a partial settings update.
func (h *SafetyHandler) UpdatePreferences(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req preferencesRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	pref, err := h.safety.UpdatePreferences(userID, services.SafetyPreferenceInput{
		LocationSharing:            req.LocationSharing,
		EmergencyAlerts:            req.EmergencyAlerts,
		GroupVerification:          req.GroupVerification,
		BackgroundCheck:            req.BackgroundCheck,
		AutoCheckIn:                req.AutoCheckIn,
		CheckInIntervalMinutes:     req.CheckInIntervalMinutes,
		LateReturnThresholdMinutes: req.LateReturnThresholdMinutes,
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "preferences": pref})
}

// AreaInfo returns safety guidance for coordinates inside South Africa.
func (h *SafetyHandler) AreaInfo(c *fiber.Ctx) error {
	lat, err := strconv.ParseFloat(c.Query("latitude"), 64)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "latitude is required")
	}
	lng, err := strconv.ParseFloat(c.Query("longitude"), 64)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "longitude is required")
	}

	info, err := h.safety.AreaInfo(lat, lng)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "area": info})
}

// CityInfo returns curated guidance for a supported city.
func (h *SafetyHandler) CityInfo(c *fiber.Ctx) error {
	city, err := url.PathUnescape(c.Params("city"))
	if err != nil || city == "" {
		return fiber.NewError(fiber.StatusBadRequest, "city is required")
	}

	info, err := h.safety.CityInfo(city)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "city_info": info})
}
