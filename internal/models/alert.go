package models

import (
	"time"

	"github.com/google/uuid"
)

// AlertType enumerates the safety events a user can raise.
type AlertType string

const (
	AlertEmergency          AlertType = "emergency"
	AlertCheckIn            AlertType = "check_in"
	AlertLateReturn         AlertType = "late_return"
	AlertLocationShare      AlertType = "location_share"
	AlertSuspiciousActivity AlertType = "suspicious_activity"
	AlertSafeArrival        AlertType = "safe_arrival"
)

// ValidAlertType reports whether t is a known alert type.
func ValidAlertType(t AlertType) bool {
	switch t {
	case AlertEmergency, AlertCheckIn, AlertLateReturn,
		AlertLocationShare, AlertSuspiciousActivity, AlertSafeArrival:
		return true
	}
	return false
}

// AlertStatus moves strictly forward: active → acknowledged → resolved,
// or active → false_alarm.
type AlertStatus string

const (
	AlertActive       AlertStatus = "active"
	AlertAcknowledged AlertStatus = "acknowledged"
	AlertResolved     AlertStatus = "resolved"
	AlertFalseAlarm   AlertStatus = "false_alarm"
)

// Terminal reports whether no further status transition is permitted.
func (s AlertStatus) Terminal() bool {
	return s == AlertResolved || s == AlertFalseAlarm
}

// AlertPriority ranks delivery urgency.
type AlertPriority string

const (
	PriorityLow      AlertPriority = "low"
	PriorityMedium   AlertPriority = "medium"
	PriorityHigh     AlertPriority = "high"
	PriorityCritical AlertPriority = "critical"
)

// ValidAlertPriority reports whether p is a known priority.
func ValidAlertPriority(p AlertPriority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// SafetyAlert is a recorded safety event owned by its sender. ContactID
// optionally references the contact who responded and is nulled if that
// contact is deleted.
type SafetyAlert struct {
	BaseModel
	UserID    uuid.UUID  `gorm:"type:uuid;index" json:"user_id"`
	ContactID *uuid.UUID `gorm:"type:uuid;constraint:OnDelete:SET NULL" json:"contact_id"`

	Type     AlertType     `gorm:"type:varchar(30)" json:"type"`
	Status   AlertStatus   `gorm:"type:varchar(20);default:active" json:"status"`
	Priority AlertPriority `gorm:"type:varchar(10);default:medium" json:"priority"`

	Message      string   `json:"message,omitempty"`
	LocationText string   `json:"location_text,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`

	// Stub flag: set when the alert requested official emergency services.
	EmergencyServicesContacted bool `gorm:"default:false" json:"emergency_services_contacted"`

	SharedUntil   *time.Time `json:"shared_until,omitempty"`
	ResolvedAt    *time.Time `json:"resolved_at"`
	ResponseNotes string     `json:"response_notes,omitempty"`
}
