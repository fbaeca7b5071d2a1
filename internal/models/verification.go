package models

import (
	"time"

	"github.com/google/uuid"
)

// DocumentKind enumerates the document types a user can submit.
type DocumentKind string

const (
	DocumentID             DocumentKind = "id_document"
	DocumentProofOfAddress DocumentKind = "proof_of_address"
	DocumentSelfie         DocumentKind = "selfie_photo"
	DocumentBackground     DocumentKind = "background_check"
)

// ValidDocumentKind reports whether kind is one of the known document types.
func ValidDocumentKind(kind DocumentKind) bool {
	switch kind {
	case DocumentID, DocumentProofOfAddress, DocumentSelfie, DocumentBackground:
		return true
	}
	return false
}

// VerificationState is shared by documents and background checks.
type VerificationState string

const (
	StatePending     VerificationState = "pending"
	StateUnderReview VerificationState = "under_review"
	StateApproved    VerificationState = "approved"
	StateRejected    VerificationState = "rejected"
	StateExpired     VerificationState = "expired"
)

// Terminal reports whether no further transition is permitted. Approved is
// terminal for reviews; the only way out is the time-triggered expiry.
func (s VerificationState) Terminal() bool {
	switch s {
	case StateApproved, StateRejected, StateExpired:
		return true
	}
	return false
}

// VerificationDocument is a single submitted document moving through the
// review lifecycle. The partial unique index enforces at most one
// non-terminal document per (user, kind).
type VerificationDocument struct {
	BaseModel
	UserID uuid.UUID    `gorm:"type:uuid;index;uniqueIndex:idx_open_doc_per_kind,where:state IN ('pending','under_review')" json:"user_id"`
	Kind   DocumentKind `gorm:"type:varchar(30);uniqueIndex:idx_open_doc_per_kind,where:state IN ('pending','under_review')" json:"kind"`

	State VerificationState `gorm:"type:varchar(20);default:pending;column:state" json:"state"`

	FileURL  string `json:"file_url"`
	FileName string `json:"file_name"`
	FileSize int64  `json:"file_size"`
	MimeType string `json:"mime_type"`

	VerifiedAt      *time.Time `json:"verified_at"`
	VerifiedBy      *uuid.UUID `gorm:"type:uuid" json:"verified_by"`
	RejectionReason string     `json:"rejection_reason,omitempty"`

	ExpiresAt *time.Time `json:"expires_at"`
}

// ExpiredNow reports whether an approved document's expiry has passed.
func (d *VerificationDocument) ExpiredNow(now time.Time) bool {
	return d.State == StateApproved && d.ExpiresAt != nil && d.ExpiresAt.Before(now)
}

// BackgroundCheck records a third-party screening request and its outcome.
// Passed is only meaningful once the check reaches a terminal state.
type BackgroundCheck struct {
	BaseModel
	UserID uuid.UUID `gorm:"type:uuid;index" json:"user_id"`

	CheckType         string `gorm:"type:varchar(50);default:comprehensive" json:"check_type"`
	Provider          string `json:"provider"`
	ProviderReference string `json:"provider_reference"`

	State     VerificationState `gorm:"type:varchar(20);default:pending;column:state" json:"state"`
	Passed    *bool             `json:"passed"`
	RiskLevel string            `gorm:"type:varchar(20)" json:"risk_level,omitempty"`

	CompletedAt *time.Time `json:"completed_at"`
	ExpiresAt   *time.Time `json:"expires_at"`
}
