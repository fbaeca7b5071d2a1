package services

import (
	"bytes"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/safemeet/internal/apperrors"
	"github.com/example/safemeet/internal/models"
)

// Notifier is the outbound notification channel: one attempt per message,
// no retry, no delivery receipt.
type Notifier interface {
	Send(to, body string) error
}

// Geocoder enriches coordinates with a human-readable address. It never
// fails; implementations fall back to a coordinate string.
type Geocoder interface {
	ReverseGeocode(lat, lng float64) string
}

// EmergencyService creates safety alerts and fans them out to the sender's
// emergency contacts. The alert row is authoritative: it commits before any
// notification is attempted, and send failures never surface to the caller.
type EmergencyService struct {
	db       *gorm.DB
	notifier Notifier
	geocoder Geocoder
}

// NewEmergencyService constructs an EmergencyService.
func NewEmergencyService(db *gorm.DB, notifier Notifier, geocoder Geocoder) *EmergencyService {
	return &EmergencyService{db: db, notifier: notifier, geocoder: geocoder}
}

// CreateAlertInput carries everything needed to raise an alert.
type CreateAlertInput struct {
	Type      models.AlertType
	Priority  models.AlertPriority // empty means the type's default
	Message   string
	Latitude  *float64
	Longitude *float64
	// DurationMinutes bounds a timed location share.
	DurationMinutes int
	// ContactAuthorities sets the emergency-services stub flag.
	ContactAuthorities bool
}

// DefaultPriority maps an alert type to its delivery urgency when the
// caller does not specify one.
func DefaultPriority(t models.AlertType) models.AlertPriority {
	switch t {
	case models.AlertEmergency:
		return models.PriorityCritical
	case models.AlertLateReturn, models.AlertSuspiciousActivity:
		return models.PriorityHigh
	case models.AlertLocationShare:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}

// CheckAlertPermission enforces the verification gates: emergency and
// location-share alerts need a verified phone, and location sharing
// additionally needs full (standard or better) verification.
func CheckAlertPermission(user *models.User, t models.AlertType) error {
	switch t {
	case models.AlertEmergency:
		if !user.PhoneVerified {
			return apperrors.Permission("phone verification required for emergency alerts")
		}
	case models.AlertLocationShare:
		if !user.PhoneVerified {
			return apperrors.Permission("phone verification required for location sharing")
		}
		if user.VerificationTier.Rank() < models.TierStandard.Rank() {
			return apperrors.Permission("full verification required for location sharing")
		}
	}
	return nil
}

// ValidateCoordinates checks that latitude and longitude come as a pair
// within WGS84 bounds.
func ValidateCoordinates(lat, lng *float64) error {
	if lat == nil && lng == nil {
		return nil
	}
	if lat == nil || lng == nil {
		return apperrors.Validation("location", "latitude and longitude must both be provided")
	}
	if *lat < -90 || *lat > 90 {
		return apperrors.Validation("latitude", "latitude must be between -90 and 90")
	}
	if *lng < -180 || *lng > 180 {
		return apperrors.Validation("longitude", "longitude must be between -180 and 180")
	}
	return nil
}

// EligibleContacts filters and orders the contacts an alert of this type
// reaches: active, opted into the matching channel, lowest priority number
// first with the contact id as a deterministic tie-break.
func EligibleContacts(t models.AlertType, contacts []models.EmergencyContact) []models.EmergencyContact {
	eligible := make([]models.EmergencyContact, 0, len(contacts))
	for _, contact := range contacts {
		if !contact.IsActive {
			continue
		}
		switch t {
		case models.AlertEmergency:
			if !contact.NotifyOnEmergency {
				continue
			}
		case models.AlertCheckIn:
			if !contact.NotifyOnCheckIn {
				continue
			}
		case models.AlertLateReturn:
			if !contact.NotifyOnLateReturn {
				continue
			}
		}
		eligible = append(eligible, contact)
	}

	return orderContacts(eligible)
}

// orderContacts sorts in delivery order: lowest priority number first, the
// contact id as a deterministic tie-break.
func orderContacts(contacts []models.EmergencyContact) []models.EmergencyContact {
	sort.SliceStable(contacts, func(i, j int) bool {
		if contacts[i].Priority != contacts[j].Priority {
			return contacts[i].Priority < contacts[j].Priority
		}
		return bytes.Compare(contacts[i].ID[:], contacts[j].ID[:]) < 0
	})
	return contacts
}

// FormatAlertMessage builds the SMS body sent to a contact.
func FormatAlertMessage(user *models.User, alert *models.SafetyAlert) string {
	var parts []string

	switch alert.Type {
	case models.AlertEmergency:
		parts = append(parts, "EMERGENCY ALERT - SafeMeet", fmt.Sprintf("%s needs help!", user.FullName()))
	case models.AlertCheckIn:
		parts = append(parts, "SafeMeet Check-in", fmt.Sprintf("%s checked in.", user.FullName()))
	case models.AlertLateReturn:
		parts = append(parts, "SafeMeet Late Return", fmt.Sprintf("%s has not returned as planned.", user.FullName()))
	case models.AlertLocationShare:
		parts = append(parts, "SafeMeet Location Share", fmt.Sprintf("%s is sharing their location with you.", user.FullName()))
	case models.AlertSafeArrival:
		parts = append(parts, "SafeMeet Safe Arrival", fmt.Sprintf("%s arrived safely.", user.FullName()))
	default:
		parts = append(parts, "SafeMeet Alert", fmt.Sprintf("%s sent a safety alert.", user.FullName()))
	}

	if alert.Message != "" {
		parts = append(parts, "Message: "+alert.Message)
	}
	if alert.LocationText != "" {
		parts = append(parts, alert.LocationText)
	}
	if alert.Latitude != nil && alert.Longitude != nil {
		parts = append(parts, fmt.Sprintf("GPS: https://maps.google.com/maps?q=%f,%f", *alert.Latitude, *alert.Longitude))
	}
	if alert.Type == models.AlertEmergency {
		parts = append(parts, "If this is a real emergency, contact 10111 (Police) or 10177 (Ambulance) immediately.")
	}

	return strings.Join(parts, "\n")
}

// CreateAlert validates the request, persists the alert as active, and
// fans it out to the sender's eligible contacts. The alert transaction
// commits before fanout begins; a crash mid-fanout leaves a correctly
// recorded alert with partial notification.
func (s *EmergencyService) CreateAlert(userID uuid.UUID, input CreateAlertInput) (*models.SafetyAlert, error) {
	if !models.ValidAlertType(input.Type) {
		return nil, apperrors.Validation("type", "unknown alert type %q", input.Type)
	}
	if input.Priority != "" && !models.ValidAlertPriority(input.Priority) {
		return nil, apperrors.Validation("priority", "unknown priority %q", input.Priority)
	}
	if err := ValidateCoordinates(input.Latitude, input.Longitude); err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, err
	}

	if err := CheckAlertPermission(&user, input.Type); err != nil {
		return nil, err
	}

	priority := input.Priority
	if priority == "" {
		priority = DefaultPriority(input.Type)
	}

	alert := models.SafetyAlert{
		UserID:                     userID,
		Type:                       input.Type,
		Status:                     models.AlertActive,
		Priority:                   priority,
		Message:                    input.Message,
		Latitude:                   input.Latitude,
		Longitude:                  input.Longitude,
		EmergencyServicesContacted: input.ContactAuthorities,
	}

	if input.Latitude != nil && input.Longitude != nil {
		alert.LocationText = s.geocoder.ReverseGeocode(*input.Latitude, *input.Longitude)
	}

	if input.Type == models.AlertLocationShare && input.DurationMinutes > 0 {
		until := time.Now().Add(time.Duration(input.DurationMinutes) * time.Minute)
		alert.SharedUntil = &until
	}

	if err := s.db.Create(&alert).Error; err != nil {
		return nil, err
	}

	// Alert is committed; notification failures stay local from here on.
	s.fanout(&user, &alert, nil)

	return &alert, nil
}

// fanout delivers the alert to each eligible contact independently and
// returns how many sends were attempted. When only is non-nil, delivery goes
// to exactly that pre-validated set in priority order; the channel opt-in
// filter applies only to the default everyone path. Every send is one
// attempt; failures are logged and counted, never escalated.
func (s *EmergencyService) fanout(user *models.User, alert *models.SafetyAlert, only []models.EmergencyContact) int {
	var eligible []models.EmergencyContact
	if only != nil {
		eligible = orderContacts(only)
	} else {
		var all []models.EmergencyContact
		if err := s.db.Where("user_id = ?", user.ID).Find(&all).Error; err != nil {
			log.Printf("[Fanout] failed to load contacts for alert %s: %v", alert.ID, err)
			return 0
		}
		eligible = EligibleContacts(alert.Type, all)
	}

	body := FormatAlertMessage(user, alert)

	sent, failed := 0, 0
	for _, contact := range eligible {
		if err := s.notifier.Send(contact.Phone, body); err != nil {
			log.Printf("[Fanout] alert %s: send to contact %s failed: %v", alert.ID, contact.ID, err)
			failed++
			continue
		}
		sent++
	}

	log.Printf("[Fanout] alert %s: %d sent, %d failed, %d eligible", alert.ID, sent, failed, len(eligible))
	return len(eligible)
}

// NotifyContacts is the manual retry path: it validates that every
// requested contact belongs to the caller and is active, records an
// emergency alert, and notifies exactly those contacts. The caller chose
// them by hand, so channel opt-outs do not apply here.
func (s *EmergencyService) NotifyContacts(userID uuid.UUID, contactIDs []uuid.UUID, message string) (*models.SafetyAlert, int, error) {
	contacts, err := ValidateOwnership(s.db, contactIDs, userID)
	if err != nil {
		return nil, 0, err
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, 0, apperrors.NotFound("user not found")
		}
		return nil, 0, err
	}

	if err := CheckAlertPermission(&user, models.AlertEmergency); err != nil {
		return nil, 0, err
	}

	alert := models.SafetyAlert{
		UserID:   userID,
		Type:     models.AlertEmergency,
		Status:   models.AlertActive,
		Priority: models.PriorityCritical,
		Message:  message,
	}
	if err := s.db.Create(&alert).Error; err != nil {
		return nil, 0, err
	}

	attempted := s.fanout(&user, &alert, contacts)

	return &alert, attempted, nil
}

// Acknowledge marks an active alert as seen, optionally recording the
// responding contact.
func (s *EmergencyService) Acknowledge(userID, alertID uuid.UUID, contactID *uuid.UUID) (*models.SafetyAlert, error) {
	alert, err := s.ownedAlert(userID, alertID)
	if err != nil {
		return nil, err
	}

	if alert.Status != models.AlertActive {
		return nil, apperrors.InvalidState("only active alerts can be acknowledged (alert is %s)", alert.Status)
	}

	alert.Status = models.AlertAcknowledged
	if contactID != nil {
		if _, err := ValidateOwnership(s.db, []uuid.UUID{*contactID}, userID); err != nil {
			return nil, err
		}
		alert.ContactID = contactID
	}

	if err := s.db.Save(alert).Error; err != nil {
		return nil, err
	}
	return alert, nil
}

// Resolve closes an active or acknowledged alert.
func (s *EmergencyService) Resolve(userID, alertID uuid.UUID, notes string) (*models.SafetyAlert, error) {
	alert, err := s.ownedAlert(userID, alertID)
	if err != nil {
		return nil, err
	}

	if alert.Status != models.AlertActive && alert.Status != models.AlertAcknowledged {
		return nil, apperrors.InvalidState("cannot resolve a %s alert", alert.Status)
	}

	now := time.Now()
	alert.Status = models.AlertResolved
	alert.ResolvedAt = &now
	alert.ResponseNotes = notes

	if err := s.db.Save(alert).Error; err != nil {
		return nil, err
	}
	return alert, nil
}

// MarkFalseAlarm flags an active alert as a false alarm.
func (s *EmergencyService) MarkFalseAlarm(userID, alertID uuid.UUID) (*models.SafetyAlert, error) {
	alert, err := s.ownedAlert(userID, alertID)
	if err != nil {
		return nil, err
	}

	if alert.Status != models.AlertActive {
		return nil, apperrors.InvalidState("only active alerts can be marked false alarm (alert is %s)", alert.Status)
	}

	now := time.Now()
	alert.Status = models.AlertFalseAlarm
	alert.ResolvedAt = &now

	if err := s.db.Save(alert).Error; err != nil {
		return nil, err
	}
	return alert, nil
}

// ListAlerts returns the caller's alerts newest first. Visibility is always
// scoped to the sender.
func (s *EmergencyService) ListAlerts(userID uuid.UUID, statusFilter models.AlertStatus, limit, offset int) ([]models.SafetyAlert, int64, error) {
	query := s.db.Model(&models.SafetyAlert{}).Where("user_id = ?", userID)
	if statusFilter != "" {
		query = query.Where("status = ?", statusFilter)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var alerts []models.SafetyAlert
	if err := query.Order("created_at desc").
		Limit(limit).Offset(offset).
		Find(&alerts).Error; err != nil {
		return nil, 0, err
	}

	return alerts, total, nil
}

// GetAlert fetches one alert owned by the caller.
func (s *EmergencyService) GetAlert(userID, alertID uuid.UUID) (*models.SafetyAlert, error) {
	return s.ownedAlert(userID, alertID)
}

func (s *EmergencyService) ownedAlert(userID, alertID uuid.UUID) (*models.SafetyAlert, error) {
	var alert models.SafetyAlert
	if err := s.db.First(&alert, "id = ? AND user_id = ?", alertID, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("alert not found")
		}
		return nil, err
	}
	return &alert, nil
}
