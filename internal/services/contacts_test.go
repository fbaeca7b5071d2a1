package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/safemeet/internal/apperrors"
)

func TestValidateContactInput(t *testing.T) {
	valid := ContactInput{Name: "Mom", Phone: "0821234567", Relation: "parent"}
	assert.NoError(t, validateContactInput(&valid))

	t.Run("name required", func(t *testing.T) {
		input := ContactInput{Phone: "0821234567"}
		err := validateContactInput(&input)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	})

	t.Run("phone required", func(t *testing.T) {
		input := ContactInput{Name: "Mom"}
		err := validateContactInput(&input)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	})

	t.Run("unknown relation rejected", func(t *testing.T) {
		input := ContactInput{Name: "Mom", Phone: "0821234567", Relation: "acquaintance"}
		err := validateContactInput(&input)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	})

	t.Run("empty relation allowed", func(t *testing.T) {
		input := ContactInput{Name: "Mom", Phone: "0821234567"}
		assert.NoError(t, validateContactInput(&input))
	})

	t.Run("negative priority rejected", func(t *testing.T) {
		input := ContactInput{Name: "Mom", Phone: "0821234567", Priority: -1}
		err := validateContactInput(&input)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	})
}

func TestBoolOr(t *testing.T) {
	yes, no := true, false
	assert.True(t, boolOr(nil, true))
	assert.False(t, boolOr(nil, false))
	assert.True(t, boolOr(&yes, false))
	assert.False(t, boolOr(&no, true))
}
