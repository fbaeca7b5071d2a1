package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/safemeet/internal/models"
)

func kinds(ks ...models.DocumentKind) map[models.DocumentKind]bool {
	m := make(map[models.DocumentKind]bool, len(ks))
	for _, k := range ks {
		m[k] = true
	}
	return m
}

func TestComputeTier(t *testing.T) {
	allDocs := kinds(models.DocumentID, models.DocumentProofOfAddress, models.DocumentSelfie)

	tests := []struct {
		name       string
		email      bool
		phone      bool
		approved   map[models.DocumentKind]bool
		background bool
		want       models.VerificationTier
	}{
		{"fresh account", false, false, nil, false, models.TierNone},
		{"email only", true, false, nil, false, models.TierNone},
		{"phone only", false, true, nil, false, models.TierNone},
		{"email and phone", true, true, nil, false, models.TierBasic},
		{"one document short", true, true, kinds(models.DocumentID, models.DocumentSelfie), false, models.TierBasic},
		{"all three documents", true, true, allDocs, false, models.TierStandard},
		{"extra kinds do not help", true, true, kinds(models.DocumentID, models.DocumentBackground), false, models.TierBasic},
		{"standard plus background", true, true, allDocs, true, models.TierPremium},
		{"background without documents", true, true, kinds(models.DocumentID), true, models.TierBasic},
		{"background without basic facts", true, false, allDocs, true, models.TierNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTier(tt.email, tt.phone, tt.approved, tt.background)
			assert.Equal(t, tt.want, got)
		})
	}
}

// The tier is a pure function of the approved set, so the order in which
// approvals accumulated must not matter.
func TestComputeTierOrderIndependence(t *testing.T) {
	orderings := [][]models.DocumentKind{
		{models.DocumentID, models.DocumentProofOfAddress, models.DocumentSelfie},
		{models.DocumentSelfie, models.DocumentID, models.DocumentProofOfAddress},
		{models.DocumentProofOfAddress, models.DocumentSelfie, models.DocumentID},
	}

	for _, order := range orderings {
		approved := map[models.DocumentKind]bool{}
		for _, k := range order {
			approved[k] = true
		}
		assert.Equal(t, models.TierStandard, ComputeTier(true, true, approved, false))
		assert.Equal(t, models.TierPremium, ComputeTier(true, true, approved, true))
	}
}

// IDVerified is derived, not accumulated: approved documents alone must not
// set it while the basic facts (email, phone) are missing.
func TestDeriveFacts(t *testing.T) {
	allDocs := kinds(models.DocumentID, models.DocumentProofOfAddress, models.DocumentSelfie)

	t.Run("documents without basic facts", func(t *testing.T) {
		tier, idVerified, checkPassed := deriveFacts(false, true, allDocs, false)
		assert.Equal(t, models.TierNone, tier)
		assert.False(t, idVerified)
		assert.False(t, checkPassed)
	})

	t.Run("standard implies id verified", func(t *testing.T) {
		tier, idVerified, checkPassed := deriveFacts(true, true, allDocs, false)
		assert.Equal(t, models.TierStandard, tier)
		assert.True(t, idVerified)
		assert.False(t, checkPassed)
	})

	t.Run("premium implies all facts", func(t *testing.T) {
		tier, idVerified, checkPassed := deriveFacts(true, true, allDocs, true)
		assert.Equal(t, models.TierPremium, tier)
		assert.True(t, idVerified)
		assert.True(t, checkPassed)
	})

	t.Run("passed check does not survive losing documents", func(t *testing.T) {
		tier, idVerified, checkPassed := deriveFacts(true, true, kinds(models.DocumentID), true)
		assert.Equal(t, models.TierBasic, tier)
		assert.False(t, idVerified)
		assert.False(t, checkPassed)
	})
}

func TestTierRankOrdering(t *testing.T) {
	assert.Less(t, models.TierNone.Rank(), models.TierBasic.Rank())
	assert.Less(t, models.TierBasic.Rank(), models.TierStandard.Rank())
	assert.Less(t, models.TierStandard.Rank(), models.TierPremium.Rank())
}
