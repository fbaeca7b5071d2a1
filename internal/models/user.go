package models

import (
	"time"
)

// AccountStatus describes the lifecycle state of a user account.
type AccountStatus string

const (
	AccountPendingVerification AccountStatus = "pending_verification"
	AccountActive              AccountStatus = "active"
	AccountSuspended           AccountStatus = "suspended"
	AccountDeactivated         AccountStatus = "deactivated"
)

// VerificationTier is the derived trust level gating safety features.
// It is recomputed from verification facts and never set by a client.
type VerificationTier string

const (
	TierNone     VerificationTier = "none"
	TierBasic    VerificationTier = "basic"
	TierStandard VerificationTier = "standard"
	TierPremium  VerificationTier = "premium"
)

// Rank orders tiers so gates can be expressed as "tier >= standard".
func (t VerificationTier) Rank() int {
	switch t {
	case TierBasic:
		return 1
	case TierStandard:
		return 2
	case TierPremium:
		return 3
	default:
		return 0
	}
}

// UserRole separates regular users from document reviewers.
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// User represents an account holder. The verification tier and the derived
// booleans (IDVerified, BackgroundCheckPassed) are owned by the trust ledger
// and written only inside recompute transactions.
type User struct {
	BaseModel
	FirstName    string   `json:"first_name"`
	LastName     string   `json:"last_name"`
	Email        string   `gorm:"uniqueIndex" json:"email"`
	Phone        string   `gorm:"uniqueIndex" json:"phone"`
	PasswordHash string   `json:"-"`
	Role         UserRole `gorm:"type:varchar(20);default:user" json:"role"`

	Status           AccountStatus    `gorm:"type:varchar(30);default:pending_verification" json:"status"`
	VerificationTier VerificationTier `gorm:"type:varchar(20);default:none" json:"verification_level"`

	EmailVerified         bool `gorm:"default:false" json:"email_verified"`
	PhoneVerified         bool `gorm:"default:false" json:"phone_verified"`
	IDVerified            bool `gorm:"default:false" json:"id_verified"`
	BackgroundCheckPassed bool `gorm:"default:false" json:"background_check_passed"`

	City     string `json:"city"`
	Province string `json:"province"`

	LastLoginAt *time.Time `json:"last_login_at"`

	EmergencyContacts []EmergencyContact     `gorm:"constraint:OnDelete:CASCADE" json:"emergency_contacts,omitempty"`
	Documents         []VerificationDocument `gorm:"constraint:OnDelete:CASCADE" json:"documents,omitempty"`
	BackgroundChecks  []BackgroundCheck      `gorm:"constraint:OnDelete:CASCADE" json:"background_checks,omitempty"`
	Alerts            []SafetyAlert          `gorm:"constraint:OnDelete:CASCADE" json:"alerts,omitempty"`
}

// FullName joins first and last name for notification messages.
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// PhoneVerification keeps track of OTP codes sent to users for phone or
// email confirmation.
type PhoneVerification struct {
	BaseModel
	Phone     string     `gorm:"index" json:"phone"`
	Channel   string     `gorm:"type:varchar(10)" json:"channel"` // "phone" or "email"
	Code      string     `json:"code"`
	ExpiresAt time.Time  `json:"expires_at"`
	Verified  bool       `json:"verified"`
	UsedAt    *time.Time `json:"used_at"`
}

// PasswordResetToken backs the forgot-password flow.
type PasswordResetToken struct {
	BaseModel
	Phone     string     `gorm:"index" json:"phone"`
	Token     string     `gorm:"uniqueIndex" json:"token"`
	Code      string     `json:"code"`
	ExpiresAt time.Time  `json:"expires_at"`
	Verified  bool       `json:"verified"`
	UsedAt    *time.Time `json:"used_at"`
}
