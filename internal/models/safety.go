package models

import (
	"github.com/google/uuid"
)

// SafetyPreference holds a user's safety settings, one row per user.
// Accounts without a row get the defaults.
type SafetyPreference struct {
	BaseModel
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"user_id"`

	LocationSharing   bool `gorm:"default:true" json:"location_sharing"`
	EmergencyAlerts   bool `gorm:"default:true" json:"emergency_alerts"`
	GroupVerification bool `gorm:"default:true" json:"group_verification"`
	BackgroundCheck   bool `gorm:"default:false" json:"background_check"`
	AutoCheckIn       bool `gorm:"default:false" json:"auto_check_in"`

	CheckInIntervalMinutes     int `gorm:"default:60" json:"check_in_interval_minutes"`
	LateReturnThresholdMinutes int `gorm:"default:30" json:"late_return_threshold_minutes"`
}

// DefaultSafetyPreference returns the settings a user holds before saving
// any of their own.
func DefaultSafetyPreference(userID uuid.UUID) SafetyPreference {
	return SafetyPreference{
		UserID:                     userID,
		LocationSharing:            true,
		EmergencyAlerts:            true,
		GroupVerification:          true,
		BackgroundCheck:            false,
		AutoCheckIn:                false,
		CheckInIntervalMinutes:     60,
		LateReturnThresholdMinutes: 30,
	}
}
