package services

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/safemeet/internal/apperrors"
	"github.com/example/safemeet/internal/models"
)

func contact(name string, priority int, active bool) models.EmergencyContact {
	c := models.EmergencyContact{
		Name:               name,
		Phone:              "+27821234567",
		Priority:           priority,
		IsActive:           active,
		NotifyOnEmergency:  true,
		NotifyOnCheckIn:    true,
		NotifyOnLateReturn: true,
	}
	c.ID = uuid.New()
	return c
}

type captureNotifier struct {
	sent []string
}

func (n *captureNotifier) Send(to, body string) error {
	n.sent = append(n.sent, to)
	return nil
}

// A hand-picked contact set must be delivered to as given: channel opt-outs
// only apply when fanout targets everyone.
func TestFanoutExplicitSetIgnoresChannelOptOut(t *testing.T) {
	notifier := &captureNotifier{}
	svc := &EmergencyService{notifier: notifier}

	user := &models.User{FirstName: "Thandi"}
	alert := &models.SafetyAlert{Type: models.AlertEmergency}

	optedOut := contact("Mom", 1, true)
	optedOut.NotifyOnEmergency = false
	optedOut.Phone = "+27820000001"
	second := contact("Friend", 2, true)
	second.Phone = "+27820000002"

	attempted := svc.fanout(user, alert, []models.EmergencyContact{second, optedOut})

	assert.Equal(t, 2, attempted)
	require.Len(t, notifier.sent, 2)
	assert.Equal(t, "+27820000001", notifier.sent[0])
	assert.Equal(t, "+27820000002", notifier.sent[1])
}

func TestDefaultPriority(t *testing.T) {
	assert.Equal(t, models.PriorityCritical, DefaultPriority(models.AlertEmergency))
	assert.Equal(t, models.PriorityHigh, DefaultPriority(models.AlertLateReturn))
	assert.Equal(t, models.PriorityHigh, DefaultPriority(models.AlertSuspiciousActivity))
	assert.Equal(t, models.PriorityMedium, DefaultPriority(models.AlertLocationShare))
	assert.Equal(t, models.PriorityLow, DefaultPriority(models.AlertCheckIn))
	assert.Equal(t, models.PriorityLow, DefaultPriority(models.AlertSafeArrival))
}

func TestCheckAlertPermission(t *testing.T) {
	t.Run("emergency requires verified phone", func(t *testing.T) {
		user := &models.User{PhoneVerified: false}
		err := CheckAlertPermission(user, models.AlertEmergency)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindPermission))
	})

	t.Run("emergency allowed with verified phone", func(t *testing.T) {
		user := &models.User{PhoneVerified: true}
		assert.NoError(t, CheckAlertPermission(user, models.AlertEmergency))
	})

	t.Run("location share requires standard tier", func(t *testing.T) {
		user := &models.User{PhoneVerified: true, VerificationTier: models.TierBasic}
		err := CheckAlertPermission(user, models.AlertLocationShare)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindPermission))
	})

	t.Run("location share allowed at standard and above", func(t *testing.T) {
		standard := &models.User{PhoneVerified: true, VerificationTier: models.TierStandard}
		assert.NoError(t, CheckAlertPermission(standard, models.AlertLocationShare))

		premium := &models.User{PhoneVerified: true, VerificationTier: models.TierPremium}
		assert.NoError(t, CheckAlertPermission(premium, models.AlertLocationShare))
	})

	t.Run("check-in is ungated", func(t *testing.T) {
		user := &models.User{}
		assert.NoError(t, CheckAlertPermission(user, models.AlertCheckIn))
	})
}

func TestValidateCoordinates(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	assert.NoError(t, ValidateCoordinates(nil, nil))
	assert.NoError(t, ValidateCoordinates(f(-33.92), f(18.42)))
	assert.NoError(t, ValidateCoordinates(f(90), f(180)))
	assert.NoError(t, ValidateCoordinates(f(-90), f(-180)))

	assert.Error(t, ValidateCoordinates(f(1), nil))
	assert.Error(t, ValidateCoordinates(nil, f(1)))
	assert.Error(t, ValidateCoordinates(f(90.1), f(0)))
	assert.Error(t, ValidateCoordinates(f(-90.1), f(0)))
	assert.Error(t, ValidateCoordinates(f(0), f(180.1)))
	assert.Error(t, ValidateCoordinates(f(0), f(-180.1)))
}

func TestEligibleContacts(t *testing.T) {
	t.Run("inactive contacts are skipped", func(t *testing.T) {
		mom := contact("Mom", 1, true)
		old := contact("Old Friend", 1, false)

		eligible := EligibleContacts(models.AlertEmergency, []models.EmergencyContact{old, mom})
		require.Len(t, eligible, 1)
		assert.Equal(t, "Mom", eligible[0].Name)
	})

	t.Run("channel opt-out filters by type", func(t *testing.T) {
		mom := contact("Mom", 1, true)
		friend := contact("Friend", 2, true)
		friend.NotifyOnCheckIn = false

		eligible := EligibleContacts(models.AlertCheckIn, []models.EmergencyContact{mom, friend})
		require.Len(t, eligible, 1)
		assert.Equal(t, "Mom", eligible[0].Name)

		// The same contact still receives emergencies.
		eligible = EligibleContacts(models.AlertEmergency, []models.EmergencyContact{mom, friend})
		assert.Len(t, eligible, 2)
	})

	t.Run("ordered by priority then id", func(t *testing.T) {
		friend := contact("Friend", 2, true)
		mom := contact("Mom", 1, true)
		dad := contact("Dad", 1, true)

		eligible := EligibleContacts(models.AlertEmergency, []models.EmergencyContact{friend, mom, dad})
		require.Len(t, eligible, 3)
		assert.Equal(t, 1, eligible[0].Priority)
		assert.Equal(t, 1, eligible[1].Priority)
		assert.Equal(t, "Friend", eligible[2].Name)

		// Equal priorities break ties on id bytes, so the order is stable
		// across calls.
		again := EligibleContacts(models.AlertEmergency, []models.EmergencyContact{dad, friend, mom})
		assert.Equal(t, eligible[0].ID, again[0].ID)
		assert.Equal(t, eligible[1].ID, again[1].ID)
	})

	t.Run("location share ignores channel flags", func(t *testing.T) {
		c := contact("Mom", 1, true)
		c.NotifyOnEmergency = false
		c.NotifyOnCheckIn = false
		c.NotifyOnLateReturn = false

		eligible := EligibleContacts(models.AlertLocationShare, []models.EmergencyContact{c})
		assert.Len(t, eligible, 1)
	})
}

func TestFormatAlertMessage(t *testing.T) {
	user := &models.User{FirstName: "Thandi", LastName: "Nkosi"}

	t.Run("emergency includes help line numbers", func(t *testing.T) {
		lat, lng := -33.92, 18.42
		alert := &models.SafetyAlert{
			Type:         models.AlertEmergency,
			Message:      "Meeting went wrong",
			LocationText: "12 Long Street, Cape Town",
			Latitude:     &lat,
			Longitude:    &lng,
		}

		body := FormatAlertMessage(user, alert)
		assert.Contains(t, body, "EMERGENCY ALERT")
		assert.Contains(t, body, "Thandi Nkosi needs help!")
		assert.Contains(t, body, "Meeting went wrong")
		assert.Contains(t, body, "12 Long Street, Cape Town")
		assert.Contains(t, body, "maps.google.com")
		assert.Contains(t, body, "10111")
		assert.Contains(t, body, "10177")
	})

	t.Run("check-in is calm and omits help lines", func(t *testing.T) {
		alert := &models.SafetyAlert{Type: models.AlertCheckIn}
		body := FormatAlertMessage(user, alert)
		assert.Contains(t, body, "checked in")
		assert.NotContains(t, body, "10111")
		assert.NotContains(t, body, "GPS")
	})

	t.Run("no location lines without coordinates", func(t *testing.T) {
		alert := &models.SafetyAlert{Type: models.AlertLateReturn, Message: "still out"}
		body := FormatAlertMessage(user, alert)
		assert.Contains(t, body, "has not returned")
		assert.False(t, strings.Contains(body, "GPS"))
	})
}

func TestAlertStatusTerminal(t *testing.T) {
	assert.False(t, models.AlertActive.Terminal())
	assert.False(t, models.AlertAcknowledged.Terminal())
	assert.True(t, models.AlertResolved.Terminal())
	assert.True(t, models.AlertFalseAlarm.Terminal())
}
