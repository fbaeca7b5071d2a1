package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	withField := Validation("phone", "phone is required")
	assert.Equal(t, "phone: phone is required", withField.Error())

	plain := NotFound("alert not found")
	assert.Equal(t, "alert not found", plain.Error())

	formatted := Conflict("document %s already exists", "abc")
	assert.Equal(t, "document abc already exists", formatted.Error())
}

func TestIsKind(t *testing.T) {
	err := Permission("phone verification required")
	assert.True(t, IsKind(err, KindPermission))
	assert.False(t, IsKind(err, KindValidation))

	wrapped := fmt.Errorf("create alert: %w", err)
	assert.True(t, IsKind(wrapped, KindPermission))

	assert.False(t, IsKind(errors.New("plain"), KindPermission))
	assert.False(t, IsKind(nil, KindPermission))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, fiber.StatusBadRequest, HTTPStatus(KindValidation))
	assert.Equal(t, fiber.StatusForbidden, HTTPStatus(KindPermission))
	assert.Equal(t, fiber.StatusConflict, HTTPStatus(KindConflict))
	assert.Equal(t, fiber.StatusNotFound, HTTPStatus(KindNotFound))
	assert.Equal(t, fiber.StatusUnprocessableEntity, HTTPStatus(KindInvalidState))
	assert.Equal(t, fiber.StatusInternalServerError, HTTPStatus(Kind(99)))
}
