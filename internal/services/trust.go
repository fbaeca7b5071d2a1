package services

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/safemeet/internal/models"
)

// requiredStandardKinds are the document approvals needed for the standard
// tier, on top of verified email and phone.
var requiredStandardKinds = []models.DocumentKind{
	models.DocumentID,
	models.DocumentProofOfAddress,
	models.DocumentSelfie,
}

// ComputeTier derives a user's verification tier from accumulated facts.
// Pure and order-independent over the approved-kind set:
//
//	basic    = email and phone verified
//	standard = basic + id document, proof of address and selfie approved
//	premium  = standard + background check passed
func ComputeTier(emailVerified, phoneVerified bool, approvedKinds map[models.DocumentKind]bool, backgroundPassed bool) models.VerificationTier {
	if !emailVerified || !phoneVerified {
		return models.TierNone
	}

	for _, kind := range requiredStandardKinds {
		if !approvedKinds[kind] {
			return models.TierBasic
		}
	}

	if backgroundPassed {
		return models.TierPremium
	}
	return models.TierStandard
}

// deriveFacts computes the tier and the dependent booleans together.
// IDVerified only holds once the tier itself reaches standard, so it can
// never be true on an account still missing its basic facts.
func deriveFacts(emailVerified, phoneVerified bool, approvedKinds map[models.DocumentKind]bool, backgroundPassed bool) (models.VerificationTier, bool, bool) {
	tier := ComputeTier(emailVerified, phoneVerified, approvedKinds, backgroundPassed)
	idVerified := tier.Rank() >= models.TierStandard.Rank()
	return tier, idVerified, backgroundPassed && idVerified
}

// RecomputeVerification re-derives the user's tier and the dependent
// booleans from the documents and background checks currently on record,
// then writes them onto the user row. It must run inside the same
// transaction as the fact-changing transition that triggered it; the user
// row is locked FOR UPDATE so concurrent reviews serialize.
func RecomputeVerification(tx *gorm.DB, userID uuid.UUID) error {
	var user models.User
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&user, "id = ?", userID).Error; err != nil {
		return err
	}

	now := time.Now()

	// Lazily expire approved documents whose expiry has passed. This is
	// what can make a tier drop.
	if err := tx.Model(&models.VerificationDocument{}).
		Where("user_id = ? AND state = ? AND expires_at IS NOT NULL AND expires_at < ?",
			userID, models.StateApproved, now).
		Update("state", models.StateExpired).Error; err != nil {
		return err
	}

	var approvedDocs []models.VerificationDocument
	if err := tx.Where("user_id = ? AND state = ?", userID, models.StateApproved).
		Find(&approvedDocs).Error; err != nil {
		return err
	}

	approvedKinds := make(map[models.DocumentKind]bool, len(approvedDocs))
	for _, doc := range approvedDocs {
		approvedKinds[doc.Kind] = true
	}

	var passedChecks int64
	if err := tx.Model(&models.BackgroundCheck{}).
		Where("user_id = ? AND state = ? AND passed = ?", userID, models.StateApproved, true).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Count(&passedChecks).Error; err != nil {
		return err
	}
	backgroundPassed := passedChecks > 0

	tier, idVerified, checkPassed := deriveFacts(user.EmailVerified, user.PhoneVerified, approvedKinds, backgroundPassed)

	return tx.Model(&models.User{}).Where("id = ?", userID).
		Updates(map[string]interface{}{
			"verification_tier":       tier,
			"id_verified":             idVerified,
			"background_check_passed": checkPassed,
			"updated_at":              now,
		}).Error
}
