package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/safemeet/internal/apperrors"
	"github.com/example/safemeet/internal/models"
)

func TestInSouthAfrica(t *testing.T) {
	tests := []struct {
		name string
		lat  float64
		lng  float64
		want bool
	}{
		{"Cape Town", -33.92, 18.42, true},
		{"Johannesburg", -26.20, 28.05, true},
		{"Durban", -29.86, 31.02, true},
		{"London", 51.51, -0.13, false},
		{"Nairobi", -1.29, 36.82, false},
		{"north of border", -22.0, 28.0, false},
		{"west of border", -30.0, 16.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InSouthAfrica(tt.lat, tt.lng))
		})
	}
}

func TestDefaultSafetyPreference(t *testing.T) {
	userID := uuid.New()
	pref := models.DefaultSafetyPreference(userID)

	assert.Equal(t, userID, pref.UserID)
	assert.True(t, pref.LocationSharing)
	assert.True(t, pref.EmergencyAlerts)
	assert.True(t, pref.GroupVerification)
	assert.False(t, pref.BackgroundCheck)
	assert.False(t, pref.AutoCheckIn)
	assert.Equal(t, 60, pref.CheckInIntervalMinutes)
	assert.Equal(t, 30, pref.LateReturnThresholdMinutes)
}

func TestApplyPreferenceUpdate(t *testing.T) {
	t.Run("nil fields keep current values", func(t *testing.T) {
		pref := models.DefaultSafetyPreference(uuid.New())
		off := false
		interval := 15

		err := applyPreferenceUpdate(&pref, SafetyPreferenceInput{
			LocationSharing:        &off,
			CheckInIntervalMinutes: &interval,
		})
		require.NoError(t, err)

		assert.False(t, pref.LocationSharing)
		assert.Equal(t, 15, pref.CheckInIntervalMinutes)
		assert.True(t, pref.EmergencyAlerts)
		assert.Equal(t, 30, pref.LateReturnThresholdMinutes)
	})

	t.Run("non-positive intervals rejected", func(t *testing.T) {
		pref := models.DefaultSafetyPreference(uuid.New())
		zero := 0

		err := applyPreferenceUpdate(&pref, SafetyPreferenceInput{CheckInIntervalMinutes: &zero})
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

		negative := -5
		err = applyPreferenceUpdate(&pref, SafetyPreferenceInput{LateReturnThresholdMinutes: &negative})
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
		assert.Equal(t, 30, pref.LateReturnThresholdMinutes)
	})
}

func TestValidSafetyCity(t *testing.T) {
	assert.True(t, validSafetyCity("Cape Town"))
	assert.True(t, validSafetyCity("cape town"))
	assert.True(t, validSafetyCity("Pretoria"))
	assert.False(t, validSafetyCity("Bloemfontein"))
	assert.False(t, validSafetyCity(""))
}

func TestAreaInfoBounds(t *testing.T) {
	svc := NewSafetyService(nil, coordinateGeocoder{})

	t.Run("inside South Africa", func(t *testing.T) {
		info, err := svc.AreaInfo(-33.92, 18.42)
		require.NoError(t, err)
		assert.Contains(t, info, "safety_assessment")
		assert.Contains(t, info, "nearest_police_station")
	})

	t.Run("outside South Africa", func(t *testing.T) {
		_, err := svc.AreaInfo(51.51, -0.13)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	})
}

type coordinateGeocoder struct{}

func (coordinateGeocoder) ReverseGeocode(lat, lng float64) string {
	return "somewhere"
}
