package models

import (
	"github.com/google/uuid"
)

// EmergencyContact is a person notified when the owning user raises a
// safety alert. Priority orders delivery: lower values are contacted first.
type EmergencyContact struct {
	BaseModel
	UserID uuid.UUID `gorm:"type:uuid;index" json:"user_id"`

	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email,omitempty"`
	Relation string `json:"relation"`
	Priority int    `gorm:"default:1" json:"priority"`

	NotifyOnEmergency  bool `gorm:"default:true" json:"notify_on_emergency"`
	NotifyOnCheckIn    bool `gorm:"default:true" json:"notify_on_check_in"`
	NotifyOnLateReturn bool `gorm:"default:true" json:"notify_on_late_return"`

	IsActive bool `gorm:"default:true" json:"is_active"`
	Verified bool `gorm:"default:false" json:"verified"`
}
