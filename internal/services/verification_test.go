package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/safemeet/internal/apperrors"
	"github.com/example/safemeet/internal/models"
)

func TestValidDocTransition(t *testing.T) {
	tests := []struct {
		from models.VerificationState
		to   models.VerificationState
		ok   bool
	}{
		{models.StatePending, models.StateUnderReview, true},
		{models.StatePending, models.StateApproved, true},
		{models.StatePending, models.StateRejected, true},
		{models.StateUnderReview, models.StateApproved, true},
		{models.StateUnderReview, models.StateRejected, true},
		{models.StateApproved, models.StateExpired, true},

		{models.StateUnderReview, models.StatePending, false},
		{models.StateApproved, models.StateRejected, false},
		{models.StateApproved, models.StatePending, false},
		{models.StateRejected, models.StateApproved, false},
		{models.StateRejected, models.StateUnderReview, false},
		{models.StateExpired, models.StateApproved, false},
		{models.StateExpired, models.StatePending, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.ok, validDocTransition(tt.from, tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestVerificationStateTerminal(t *testing.T) {
	assert.False(t, models.StatePending.Terminal())
	assert.False(t, models.StateUnderReview.Terminal())
	assert.True(t, models.StateApproved.Terminal())
	assert.True(t, models.StateRejected.Terminal())
	assert.True(t, models.StateExpired.Terminal())
}

func TestUploadConflict(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	doc := func(state models.VerificationState, expires *time.Time) models.VerificationDocument {
		return models.VerificationDocument{
			Kind:      models.DocumentID,
			State:     state,
			ExpiresAt: expires,
		}
	}

	t.Run("no existing documents", func(t *testing.T) {
		assert.NoError(t, uploadConflict(nil, now))
	})

	t.Run("pending document blocks", func(t *testing.T) {
		err := uploadConflict([]models.VerificationDocument{doc(models.StatePending, nil)}, now)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
	})

	t.Run("under review blocks", func(t *testing.T) {
		err := uploadConflict([]models.VerificationDocument{doc(models.StateUnderReview, nil)}, now)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
	})

	t.Run("unexpired approval blocks", func(t *testing.T) {
		err := uploadConflict([]models.VerificationDocument{doc(models.StateApproved, &future)}, now)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
	})

	t.Run("approval without expiry blocks", func(t *testing.T) {
		err := uploadConflict([]models.VerificationDocument{doc(models.StateApproved, nil)}, now)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
	})

	t.Run("lapsed approval allows re-upload", func(t *testing.T) {
		assert.NoError(t, uploadConflict([]models.VerificationDocument{doc(models.StateApproved, &past)}, now))
	})

	t.Run("rejected allows re-upload", func(t *testing.T) {
		assert.NoError(t, uploadConflict([]models.VerificationDocument{doc(models.StateRejected, nil)}, now))
	})

	t.Run("expired allows re-upload", func(t *testing.T) {
		assert.NoError(t, uploadConflict([]models.VerificationDocument{doc(models.StateExpired, nil)}, now))
	})
}

func TestApplyReview(t *testing.T) {
	reviewer := uuid.New()
	now := time.Now()

	t.Run("approve sets audit fields and id expiry", func(t *testing.T) {
		doc := models.VerificationDocument{Kind: models.DocumentID, State: models.StateUnderReview}
		require.NoError(t, applyReview(&doc, OutcomeApprove, reviewer, "", now))

		assert.Equal(t, models.StateApproved, doc.State)
		require.NotNil(t, doc.VerifiedBy)
		assert.Equal(t, reviewer, *doc.VerifiedBy)
		require.NotNil(t, doc.ExpiresAt)
		assert.Equal(t, now.Add(idDocumentValidity), *doc.ExpiresAt)
	})

	t.Run("only id documents get an expiry", func(t *testing.T) {
		doc := models.VerificationDocument{Kind: models.DocumentSelfie, State: models.StateUnderReview}
		require.NoError(t, applyReview(&doc, OutcomeApprove, reviewer, "", now))
		assert.Nil(t, doc.ExpiresAt)
	})

	t.Run("reject records the reason", func(t *testing.T) {
		doc := models.VerificationDocument{Kind: models.DocumentID, State: models.StateUnderReview}
		require.NoError(t, applyReview(&doc, OutcomeReject, reviewer, "photo unreadable", now))

		assert.Equal(t, models.StateRejected, doc.State)
		assert.Equal(t, "photo unreadable", doc.RejectionReason)
	})

	// A review that lost the race re-reads a terminal row; the decision must
	// bounce instead of overwriting the committed state.
	t.Run("second decision on a terminal document fails", func(t *testing.T) {
		doc := models.VerificationDocument{Kind: models.DocumentID, State: models.StateUnderReview}
		require.NoError(t, applyReview(&doc, OutcomeApprove, reviewer, "", now))

		err := applyReview(&doc, OutcomeReject, reviewer, "changed my mind", now)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidState))
		assert.Equal(t, models.StateApproved, doc.State)

		rejected := models.VerificationDocument{Kind: models.DocumentID, State: models.StateRejected}
		err = applyReview(&rejected, OutcomeApprove, reviewer, "", now)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidState))
	})
}

// ExpireIfDue must be a pure no-op for documents that are not past their
// expiry; it only opens a transaction when there is something to expire.
func TestExpireIfDueNoOp(t *testing.T) {
	svc := &VerificationService{}
	future := time.Now().Add(time.Hour)

	stillValid := models.VerificationDocument{State: models.StateApproved, ExpiresAt: &future}
	require.NoError(t, svc.ExpireIfDue(&stillValid))
	assert.Equal(t, models.StateApproved, stillValid.State)

	pending := models.VerificationDocument{State: models.StatePending}
	require.NoError(t, svc.ExpireIfDue(&pending))
	assert.Equal(t, models.StatePending, pending.State)
}

func TestDocumentExpiredNow(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	approved := models.VerificationDocument{State: models.StateApproved, ExpiresAt: &past}
	assert.True(t, approved.ExpiredNow(now))

	stillValid := models.VerificationDocument{State: models.StateApproved, ExpiresAt: &future}
	assert.False(t, stillValid.ExpiredNow(now))

	noExpiry := models.VerificationDocument{State: models.StateApproved}
	assert.False(t, noExpiry.ExpiredNow(now))

	pendingPast := models.VerificationDocument{State: models.StatePending, ExpiresAt: &past}
	assert.False(t, pendingPast.ExpiredNow(now))
}
