package services

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/safemeet/internal/apperrors"
	"github.com/example/safemeet/internal/models"
)

// ReviewOutcome is a reviewer's decision on a document or check.
type ReviewOutcome string

const (
	OutcomeApprove ReviewOutcome = "approve"
	OutcomeReject  ReviewOutcome = "reject"
)

// idDocumentValidity is how long an approved ID document satisfies tier
// requirements before it lapses.
const idDocumentValidity = 2 * 365 * 24 * time.Hour

// backgroundCheckValidity bounds how long a passed check keeps counting.
const backgroundCheckValidity = 365 * 24 * time.Hour

// VerificationService governs the document lifecycle and background checks.
// Every transition that changes verification facts recomputes the user's
// tier inside the same transaction.
type VerificationService struct {
	db      *gorm.DB
	storage *StorageService
}

// NewVerificationService constructs a VerificationService.
func NewVerificationService(db *gorm.DB, storage *StorageService) *VerificationService {
	return &VerificationService{db: db, storage: storage}
}

// validDocTransition is the document state machine:
// pending → under_review → {approved, rejected}; approved → expired.
func validDocTransition(from, to models.VerificationState) bool {
	switch from {
	case models.StatePending:
		return to == models.StateUnderReview || to == models.StateApproved || to == models.StateRejected
	case models.StateUnderReview:
		return to == models.StateApproved || to == models.StateRejected
	case models.StateApproved:
		return to == models.StateExpired
	default:
		return false
	}
}

// uploadConflict checks the at-most-one-open-document invariant against the
// user's existing documents of the same kind.
func uploadConflict(existing []models.VerificationDocument, now time.Time) error {
	for i := range existing {
		doc := &existing[i]
		switch doc.State {
		case models.StatePending, models.StateUnderReview:
			return apperrors.Conflict("a %s document is already awaiting review (id %s)", doc.Kind, doc.ID)
		case models.StateApproved:
			if !doc.ExpiredNow(now) {
				return apperrors.Conflict("an approved %s document already exists (id %s)", doc.Kind, doc.ID)
			}
		}
	}
	return nil
}

// UploadDocument stores the file and creates a document in pending state,
// then runs the automated scoring pass which moves it under review.
func (s *VerificationService) UploadDocument(userID uuid.UUID, kind models.DocumentKind, fileName, mimeType string, data []byte) (*models.VerificationDocument, error) {
	if !models.ValidDocumentKind(kind) {
		return nil, apperrors.Validation("kind", "unknown document kind %q", kind)
	}
	if len(data) == 0 {
		return nil, apperrors.Validation("file", "file is empty")
	}

	// Blob storage happens outside the transaction; the handle is opaque
	// to everything below.
	fileURL, err := s.storage.Store(data, fileName)
	if err != nil {
		return nil, err
	}

	doc := models.VerificationDocument{
		UserID:   userID,
		Kind:     kind,
		State:    models.StatePending,
		FileURL:  fileURL,
		FileName: fileName,
		FileSize: int64(len(data)),
		MimeType: mimeType,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Serializes with concurrent uploads and reviews for this user.
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&user, "id = ?", userID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.NotFound("user not found")
			}
			return err
		}

		now := time.Now()
		if err := tx.Model(&models.VerificationDocument{}).
			Where("user_id = ? AND kind = ? AND state = ? AND expires_at IS NOT NULL AND expires_at < ?",
				userID, kind, models.StateApproved, now).
			Update("state", models.StateExpired).Error; err != nil {
			return err
		}

		var existing []models.VerificationDocument
		if err := tx.Where("user_id = ? AND kind = ?", userID, kind).
			Find(&existing).Error; err != nil {
			return err
		}
		if err := uploadConflict(existing, now); err != nil {
			return err
		}

		if err := tx.Create(&doc).Error; err != nil {
			return err
		}

		// Automated scoring pass. A real scorer would run async; moving
		// straight to under_review keeps the reviewer queue accurate.
		doc.State = models.StateUnderReview
		return tx.Model(&doc).Update("state", models.StateUnderReview).Error
	})
	if err != nil {
		return nil, err
	}

	return &doc, nil
}

// applyReview mutates a freshly locked document with the reviewer decision.
// Approval sets the audit fields and stamps an expiry for perishable kinds;
// rejection records the reason. Terminal documents never move again.
func applyReview(doc *models.VerificationDocument, outcome ReviewOutcome, reviewerID uuid.UUID, reason string, now time.Time) error {
	if doc.State.Terminal() {
		return apperrors.InvalidState("document is already %s", doc.State)
	}

	doc.VerifiedAt = &now
	doc.VerifiedBy = &reviewerID

	if outcome == OutcomeApprove {
		if !validDocTransition(doc.State, models.StateApproved) {
			return apperrors.InvalidState("cannot approve a %s document", doc.State)
		}
		doc.State = models.StateApproved
		if doc.Kind == models.DocumentID {
			expires := now.Add(idDocumentValidity)
			doc.ExpiresAt = &expires
		}
		return nil
	}

	if !validDocTransition(doc.State, models.StateRejected) {
		return apperrors.InvalidState("cannot reject a %s document", doc.State)
	}
	doc.State = models.StateRejected
	doc.RejectionReason = reason
	return nil
}

// ReviewDocument applies a reviewer decision. Approval recomputes the tier
// in the same transaction; rejection requires a reason and never touches
// tier. Concurrent reviews of the same document serialize on the owner's
// row lock, and the document is re-read under its own lock afterwards so
// the loser of the race sees the committed terminal state, not its stale
// first read.
func (s *VerificationService) ReviewDocument(docID uuid.UUID, outcome ReviewOutcome, reviewerID uuid.UUID, reason string) (*models.VerificationDocument, error) {
	if outcome != OutcomeApprove && outcome != OutcomeReject {
		return nil, apperrors.Validation("outcome", "outcome must be approve or reject")
	}
	if outcome == OutcomeReject && reason == "" {
		return nil, apperrors.Validation("reason", "rejection requires a reason")
	}

	var doc models.VerificationDocument
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Unlocked read to discover the owner; lock order is always user
		// first, then document, matching the upload path.
		if err := tx.First(&doc, "id = ?", docID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.NotFound("document not found")
			}
			return err
		}

		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&user, "id = ?", doc.UserID).Error; err != nil {
			return err
		}

		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&doc, "id = ?", docID).Error; err != nil {
			return err
		}

		if err := applyReview(&doc, outcome, reviewerID, reason, time.Now()); err != nil {
			return err
		}

		if err := tx.Save(&doc).Error; err != nil {
			return err
		}

		if doc.State == models.StateApproved {
			return RecomputeVerification(tx, doc.UserID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &doc, nil
}

// ExpireIfDue lazily transitions an approved document past its expiry and
// recomputes the owner's tier. Called on reads; a no-op otherwise.
func (s *VerificationService) ExpireIfDue(doc *models.VerificationDocument) error {
	if !doc.ExpiredNow(time.Now()) {
		return nil
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		// RecomputeVerification expires all due documents for the user
		// under the row lock, this one included.
		if err := RecomputeVerification(tx, doc.UserID); err != nil {
			return err
		}
		doc.State = models.StateExpired
		return nil
	})
}

// ListDocuments returns the user's documents newest first, expiring any
// whose approval has lapsed.
func (s *VerificationService) ListDocuments(userID uuid.UUID) ([]models.VerificationDocument, error) {
	var due int64
	if err := s.db.Model(&models.VerificationDocument{}).
		Where("user_id = ? AND state = ? AND expires_at IS NOT NULL AND expires_at < ?",
			userID, models.StateApproved, time.Now()).
		Count(&due).Error; err != nil {
		return nil, err
	}
	if due > 0 {
		if err := s.db.Transaction(func(tx *gorm.DB) error {
			return RecomputeVerification(tx, userID)
		}); err != nil {
			return nil, err
		}
	}

	var docs []models.VerificationDocument
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at desc").Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

// GetDocument returns one owned document, applying lazy expiry on the way
// out so a caller never sees a stale approval.
func (s *VerificationService) GetDocument(userID, docID uuid.UUID) (*models.VerificationDocument, error) {
	var doc models.VerificationDocument
	if err := s.db.First(&doc, "id = ? AND user_id = ?", docID, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("document not found")
		}
		return nil, err
	}

	if err := s.ExpireIfDue(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// DeleteDocument removes a non-approved document and its stored blob.
func (s *VerificationService) DeleteDocument(userID, docID uuid.UUID) error {
	var doc models.VerificationDocument
	if err := s.db.First(&doc, "id = ? AND user_id = ?", docID, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperrors.NotFound("document not found")
		}
		return err
	}

	if doc.State == models.StateApproved {
		return apperrors.InvalidState("approved documents cannot be deleted")
	}

	if err := s.db.Delete(&doc).Error; err != nil {
		return err
	}

	if err := s.storage.Delete(doc.FileURL); err != nil {
		// The record is gone; an orphaned blob is not worth failing over.
		return nil
	}
	return nil
}

// RequestBackgroundCheck opens a screening request. ID verification is a
// hard precondition, and only one check may be in flight per user.
func (s *VerificationService) RequestBackgroundCheck(userID uuid.UUID) (*models.BackgroundCheck, error) {
	check := models.BackgroundCheck{
		UserID:    userID,
		CheckType: "comprehensive",
		Provider:  "safemeet_screening",
		State:     models.StatePending,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&user, "id = ?", userID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.NotFound("user not found")
			}
			return err
		}

		if !user.IDVerified {
			return apperrors.Permission("ID verification required before requesting a background check")
		}

		var open int64
		if err := tx.Model(&models.BackgroundCheck{}).
			Where("user_id = ? AND state IN ?", userID,
				[]models.VerificationState{models.StatePending, models.StateUnderReview}).
			Count(&open).Error; err != nil {
			return err
		}
		if open > 0 {
			return apperrors.Conflict("a background check is already in progress")
		}

		return tx.Create(&check).Error
	})
	if err != nil {
		return nil, err
	}

	return &check, nil
}

// CompleteBackgroundCheck records the provider outcome and recomputes the
// tier. Passed is only written here, at the terminal transition.
func (s *VerificationService) CompleteBackgroundCheck(checkID uuid.UUID, outcome ReviewOutcome, passed bool, riskLevel string) (*models.BackgroundCheck, error) {
	var check models.BackgroundCheck
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Owner discovery, then user lock, then a locked re-read so a
		// concurrent completion cannot be overwritten from a stale row.
		if err := tx.First(&check, "id = ?", checkID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.NotFound("background check not found")
			}
			return err
		}

		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&user, "id = ?", check.UserID).Error; err != nil {
			return err
		}

		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&check, "id = ?", checkID).Error; err != nil {
			return err
		}

		if check.State.Terminal() {
			return apperrors.InvalidState("background check is already %s", check.State)
		}

		now := time.Now()
		check.CompletedAt = &now
		check.Passed = &passed
		check.RiskLevel = riskLevel

		if outcome == OutcomeApprove {
			check.State = models.StateApproved
			expires := now.Add(backgroundCheckValidity)
			check.ExpiresAt = &expires
		} else {
			check.State = models.StateRejected
		}

		if err := tx.Save(&check).Error; err != nil {
			return err
		}

		return RecomputeVerification(tx, check.UserID)
	})
	if err != nil {
		return nil, err
	}

	return &check, nil
}

// DocumentKindStatus summarizes the latest document of one kind.
type DocumentKindStatus struct {
	Status          string     `json:"status"`
	UploadedAt      *time.Time `json:"uploaded_at,omitempty"`
	VerifiedAt      *time.Time `json:"verified_at,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
}

// VerificationStatus aggregates a user's verification picture: tier, the
// fact booleans, the latest document per kind and all background checks.
func (s *VerificationService) VerificationStatus(userID uuid.UUID) (map[string]interface{}, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, err
	}

	docs, err := s.ListDocuments(userID)
	if err != nil {
		return nil, err
	}

	perKind := map[models.DocumentKind]DocumentKindStatus{}
	kinds := []models.DocumentKind{
		models.DocumentID, models.DocumentProofOfAddress,
		models.DocumentSelfie, models.DocumentBackground,
	}
	for _, kind := range kinds {
		perKind[kind] = DocumentKindStatus{Status: "not_uploaded"}
	}
	// docs are newest first, so only record the first seen per kind.
	for i := range docs {
		doc := &docs[i]
		if st, ok := perKind[doc.Kind]; ok && st.Status != "not_uploaded" {
			continue
		}
		created := doc.CreatedAt
		perKind[doc.Kind] = DocumentKindStatus{
			Status:          string(doc.State),
			UploadedAt:      &created,
			VerifiedAt:      doc.VerifiedAt,
			RejectionReason: doc.RejectionReason,
		}
	}

	var checks []models.BackgroundCheck
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at desc").Find(&checks).Error; err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"user_id":                 user.ID,
		"verification_level":      user.VerificationTier,
		"email_verified":          user.EmailVerified,
		"phone_verified":          user.PhoneVerified,
		"id_verified":             user.IDVerified,
		"background_check_passed": user.BackgroundCheckPassed,
		"documents":               perKind,
		"background_checks":       checks,
	}, nil
}
