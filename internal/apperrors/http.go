package apperrors

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// HTTPStatus maps an error kind to its response status.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return fiber.StatusBadRequest
	case KindPermission:
		return fiber.StatusForbidden
	case KindConflict:
		return fiber.StatusConflict
	case KindNotFound:
		return fiber.StatusNotFound
	case KindInvalidState:
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler translates service errors into JSON responses. Wired into
// fiber.Config so handlers can return errors directly.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var appErr *Error
	if errors.As(err, &appErr) {
		body := fiber.Map{"success": false, "error": appErr.Message}
		if appErr.Field != "" {
			body["field"] = appErr.Field
		}
		return c.Status(HTTPStatus(appErr.Kind)).JSON(body)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{"success": false, "error": fiberErr.Message})
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "resource not found"})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "internal server error"})
}
