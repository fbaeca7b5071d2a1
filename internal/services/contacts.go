package services

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/safemeet/internal/apperrors"
	"github.com/example/safemeet/internal/models"
	"github.com/example/safemeet/internal/utils"
)

// knownRelations bounds the free-text relation field to recognizable values.
var knownRelations = map[string]bool{
	"parent": true, "sibling": true, "spouse": true, "partner": true,
	"child": true, "friend": true, "colleague": true, "neighbour": true,
	"other": true,
}

// ContactService manages the emergency contact directory.
type ContactService struct {
	db *gorm.DB
}

// NewContactService constructs a ContactService.
func NewContactService(db *gorm.DB) *ContactService {
	return &ContactService{db: db}
}

// ContactInput carries the writable contact fields.
type ContactInput struct {
	Name               string
	Phone              string
	Email              string
	Relation           string
	Priority           int
	NotifyOnEmergency  *bool
	NotifyOnCheckIn    *bool
	NotifyOnLateReturn *bool
}

func validateContactInput(input *ContactInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return apperrors.Validation("name", "name is required")
	}
	if strings.TrimSpace(input.Phone) == "" {
		return apperrors.Validation("phone", "phone is required")
	}
	if input.Relation != "" && !knownRelations[strings.ToLower(input.Relation)] {
		return apperrors.Validation("relation", "unknown relation type %q", input.Relation)
	}
	if input.Priority < 0 {
		return apperrors.Validation("priority", "priority cannot be negative")
	}
	return nil
}

// Create adds a contact for the user. Channel flags default to on.
func (s *ContactService) Create(userID uuid.UUID, input ContactInput) (*models.EmergencyContact, error) {
	if err := validateContactInput(&input); err != nil {
		return nil, err
	}

	contact := models.EmergencyContact{
		UserID:             userID,
		Name:               strings.TrimSpace(input.Name),
		Phone:              utils.NormalizePhone(input.Phone),
		Email:              strings.TrimSpace(input.Email),
		Relation:           strings.ToLower(input.Relation),
		Priority:           input.Priority,
		NotifyOnEmergency:  boolOr(input.NotifyOnEmergency, true),
		NotifyOnCheckIn:    boolOr(input.NotifyOnCheckIn, true),
		NotifyOnLateReturn: boolOr(input.NotifyOnLateReturn, true),
		IsActive:           true,
	}
	if contact.Priority == 0 {
		contact.Priority = 1
	}

	if err := s.db.Create(&contact).Error; err != nil {
		return nil, err
	}
	return &contact, nil
}

// List returns the user's contacts ordered the same way fanout walks them.
func (s *ContactService) List(userID uuid.UUID, activeOnly bool) ([]models.EmergencyContact, error) {
	query := s.db.Where("user_id = ?", userID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var contacts []models.EmergencyContact
	if err := query.Order("priority asc, id asc").Find(&contacts).Error; err != nil {
		return nil, err
	}
	return contacts, nil
}

// Update applies partial changes to an owned contact.
func (s *ContactService) Update(userID, contactID uuid.UUID, input ContactInput) (*models.EmergencyContact, error) {
	contact, err := s.owned(userID, contactID)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		contact.Name = strings.TrimSpace(input.Name)
	}
	if input.Phone != "" {
		contact.Phone = utils.NormalizePhone(input.Phone)
	}
	if input.Email != "" {
		contact.Email = strings.TrimSpace(input.Email)
	}
	if input.Relation != "" {
		if !knownRelations[strings.ToLower(input.Relation)] {
			return nil, apperrors.Validation("relation", "unknown relation type %q", input.Relation)
		}
		contact.Relation = strings.ToLower(input.Relation)
	}
	if input.Priority > 0 {
		contact.Priority = input.Priority
	}
	if input.NotifyOnEmergency != nil {
		contact.NotifyOnEmergency = *input.NotifyOnEmergency
	}
	if input.NotifyOnCheckIn != nil {
		contact.NotifyOnCheckIn = *input.NotifyOnCheckIn
	}
	if input.NotifyOnLateReturn != nil {
		contact.NotifyOnLateReturn = *input.NotifyOnLateReturn
	}

	if err := s.db.Save(contact).Error; err != nil {
		return nil, err
	}
	return contact, nil
}

// Deactivate soft-disables a contact without losing its alert history.
func (s *ContactService) Deactivate(userID, contactID uuid.UUID) (*models.EmergencyContact, error) {
	contact, err := s.owned(userID, contactID)
	if err != nil {
		return nil, err
	}

	contact.IsActive = false
	if err := s.db.Save(contact).Error; err != nil {
		return nil, err
	}
	return contact, nil
}

// Delete removes a contact. Alerts that referenced it keep a null contact.
func (s *ContactService) Delete(userID, contactID uuid.UUID) error {
	contact, err := s.owned(userID, contactID)
	if err != nil {
		return err
	}
	return s.db.Delete(contact).Error
}

func (s *ContactService) owned(userID, contactID uuid.UUID) (*models.EmergencyContact, error) {
	var contact models.EmergencyContact
	if err := s.db.First(&contact, "id = ? AND user_id = ?", contactID, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("contact not found")
		}
		return nil, err
	}
	return &contact, nil
}

// ValidateOwnership checks that every requested contact id resolves to an
// active contact owned by the user. The check is set-equality against the
// full id set, so a duplicated or foreign id fails even when counts match.
func ValidateOwnership(db *gorm.DB, contactIDs []uuid.UUID, userID uuid.UUID) ([]models.EmergencyContact, error) {
	if len(contactIDs) == 0 {
		return nil, apperrors.Validation("contact_ids", "at least one contact id is required")
	}

	var contacts []models.EmergencyContact
	if err := db.Where("id IN ? AND user_id = ? AND is_active = ?", contactIDs, userID, true).
		Order("priority asc, id asc").
		Find(&contacts).Error; err != nil {
		return nil, err
	}

	found := make(map[uuid.UUID]bool, len(contacts))
	for _, contact := range contacts {
		found[contact.ID] = true
	}

	var missing []string
	seen := make(map[uuid.UUID]bool, len(contactIDs))
	for _, id := range contactIDs {
		if seen[id] {
			return nil, apperrors.Validation("contact_ids", "duplicate contact id %s", id)
		}
		seen[id] = true
		if !found[id] {
			missing = append(missing, id.String())
		}
	}

	if len(missing) > 0 {
		return nil, apperrors.Validation("contact_ids",
			"contacts not found, inactive or not yours: %s", strings.Join(missing, ", "))
	}

	return contacts, nil
}

func boolOr(value *bool, fallback bool) bool {
	if value != nil {
		return *value
	}
	return fallback
}
