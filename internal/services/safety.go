package services

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/safemeet/internal/apperrors"
	"github.com/example/safemeet/internal/models"
)

// safetyCities are the cities with curated safety guidance.
var safetyCities = []string{"Cape Town", "Johannesburg", "Durban", "Pretoria"}

// SafetyService serves safety preferences and area guidance.
type SafetyService struct {
	db       *gorm.DB
	geocoder Geocoder
}

// NewSafetyService constructs a SafetyService.
func NewSafetyService(db *gorm.DB, geocoder Geocoder) *SafetyService {
	return &SafetyService{db: db, geocoder: geocoder}
}

// Preferences returns the user's saved settings, or the defaults when the
// user has never saved any.
func (s *SafetyService) Preferences(userID uuid.UUID) (*models.SafetyPreference, error) {
	var pref models.SafetyPreference
	err := s.db.Where("user_id = ?", userID).First(&pref).Error
	if err == gorm.ErrRecordNotFound {
		def := models.DefaultSafetyPreference(userID)
		return &def, nil
	}
	if err != nil {
		return nil, err
	}
	return &pref, nil
}

// SafetyPreferenceInput carries a partial preferences update; nil fields
// keep their current value.
type SafetyPreferenceInput struct {
	LocationSharing   *bool
	EmergencyAlerts   *bool
	GroupVerification *bool
	BackgroundCheck   *bool
	AutoCheckIn       *bool

	CheckInIntervalMinutes     *int
	LateReturnThresholdMinutes *int
}

func applyPreferenceUpdate(pref *models.SafetyPreference, input SafetyPreferenceInput) error {
	if input.CheckInIntervalMinutes != nil && *input.CheckInIntervalMinutes <= 0 {
		return apperrors.Validation("check_in_interval_minutes", "interval must be positive")
	}
	if input.LateReturnThresholdMinutes != nil && *input.LateReturnThresholdMinutes <= 0 {
		return apperrors.Validation("late_return_threshold_minutes", "threshold must be positive")
	}

	if input.LocationSharing != nil {
		pref.LocationSharing = *input.LocationSharing
	}
	if input.EmergencyAlerts != nil {
		pref.EmergencyAlerts = *input.EmergencyAlerts
	}
	if input.GroupVerification != nil {
		pref.GroupVerification = *input.GroupVerification
	}
	if input.BackgroundCheck != nil {
		pref.BackgroundCheck = *input.BackgroundCheck
	}
	if input.AutoCheckIn != nil {
		pref.AutoCheckIn = *input.AutoCheckIn
	}
	if input.CheckInIntervalMinutes != nil {
		pref.CheckInIntervalMinutes = *input.CheckInIntervalMinutes
	}
	if input.LateReturnThresholdMinutes != nil {
		pref.LateReturnThresholdMinutes = *input.LateReturnThresholdMinutes
	}
	return nil
}

// UpdatePreferences applies a partial update on top of the saved settings,
// creating the row from defaults on first write.
func (s *SafetyService) UpdatePreferences(userID uuid.UUID, input SafetyPreferenceInput) (*models.SafetyPreference, error) {
	var pref models.SafetyPreference
	err := s.db.Where("user_id = ?", userID).First(&pref).Error
	if err == gorm.ErrRecordNotFound {
		pref = models.DefaultSafetyPreference(userID)
	} else if err != nil {
		return nil, err
	}

	if err := applyPreferenceUpdate(&pref, input); err != nil {
		return nil, err
	}

	if err := s.db.Save(&pref).Error; err != nil {
		return nil, err
	}
	return &pref, nil
}

// InSouthAfrica reports whether the coordinates fall inside the approximate
// South African bounding box (lat -34.8..-22.1, lng 16.5..32.9).
func InSouthAfrica(lat, lng float64) bool {
	return lat >= -34.8 && lat <= -22.1 && lng >= 16.5 && lng <= 32.9
}

// AreaInfo returns the safety picture for a location inside South Africa:
// the resolved address, a neutral assessment (no incident provider is
// wired), the police fallback contact, and general recommendations.
func (s *SafetyService) AreaInfo(lat, lng float64) (map[string]interface{}, error) {
	if err := ValidateCoordinates(&lat, &lng); err != nil {
		return nil, err
	}
	if !InSouthAfrica(lat, lng) {
		return nil, apperrors.Validation("location", "coordinates must be within South African borders")
	}

	address := s.geocoder.ReverseGeocode(lat, lng)

	return map[string]interface{}{
		"location": map[string]interface{}{
			"latitude":  lat,
			"longitude": lng,
			"address":   address,
		},
		"safety_assessment": map[string]interface{}{
			"safety_score": 50,
			"description":  "Detailed assessment unavailable for this area",
		},
		"nearest_police_station": map[string]interface{}{
			"name":    "Nearest SAPS station",
			"contact": "10111",
		},
		"recommendations": []string{
			"Meet in well-lit public places",
			"Share your live location with a trusted contact",
			"Keep 10111 saved for emergencies",
		},
	}, nil
}

// CityInfo returns curated guidance for one of the supported cities.
func (s *SafetyService) CityInfo(city string) (map[string]interface{}, error) {
	if !validSafetyCity(city) {
		return nil, apperrors.Validation("city", "city must be one of: %s", strings.Join(safetyCities, ", "))
	}

	return map[string]interface{}{
		"city": city,
		"safe_areas": []string{
			"Shopping centres and malls",
			"Police station precincts",
			"Hospital surroundings",
		},
		"emergency_services": map[string]string{
			"police":    "10111",
			"ambulance": "10177",
			"mobile":    "112",
		},
		"safety_tips": []string{
			"Always meet in well-lit public places",
			"Share your location with trusted contacts",
			"Trust your instincts",
		},
	}, nil
}

func validSafetyCity(city string) bool {
	for _, known := range safetyCities {
		if strings.EqualFold(city, known) {
			return true
		}
	}
	return false
}
