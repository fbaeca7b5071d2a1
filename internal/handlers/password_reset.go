package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/safemeet/internal/models"
	"github.com/example/safemeet/internal/services"
	"github.com/example/safemeet/internal/utils"
)

// PasswordResetHandler implements the three-step forgot-password flow:
// request a code, verify the code, then set a new password with the token.
type PasswordResetHandler struct {
	db  *gorm.DB
	sms *services.SMSService
}

// NewPasswordResetHandler constructs a PasswordResetHandler.
func NewPasswordResetHandler(db *gorm.DB, sms *services.SMSService) *PasswordResetHandler {
	return &PasswordResetHandler{db: db, sms: sms}
}

type forgotPasswordRequest struct {
	Phone string `json:"phone"`
}

// Forgot sends a reset code to the account's phone. The response does not
// reveal whether the phone is registered.
func (h *PasswordResetHandler) Forgot(c *fiber.Ctx) error {
	var req forgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	phone := utils.NormalizePhone(req.Phone)

	var user models.User
	err := h.db.Where("phone = ?", phone).First(&user).Error
	if err == nil {
		if sendErr := h.sendResetCode(phone); sendErr != nil {
			log.Printf("[PasswordReset] failed to send code to %s: %v", phone, sendErr)
		}
	} else if err != gorm.ErrRecordNotFound {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "if the phone number is registered, a reset code has been sent",
	})
}

type verifyResetRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

// VerifyCode checks the reset code and returns a one-time token for the
// final step.
func (h *PasswordResetHandler) VerifyCode(c *fiber.Ctx) error {
	var req verifyResetRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	phone := utils.NormalizePhone(req.Phone)

	var reset models.PasswordResetToken
	err := h.db.Where("phone = ?", phone).
		Order("created_at desc").
		First(&reset).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "reset code not found")
		}
		return err
	}

	if reset.UsedAt != nil {
		return fiber.NewError(fiber.StatusBadRequest, "reset code already used")
	}
	if reset.Code != req.Code {
		return fiber.NewError(fiber.StatusBadRequest, "invalid reset code")
	}
	if reset.ExpiresAt.Before(time.Now()) {
		return fiber.NewError(fiber.StatusBadRequest, "reset code expired")
	}

	reset.Verified = true
	if err := h.db.Save(&reset).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"token":   reset.Token,
	})
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// Reset sets a new password using a verified token.
func (h *PasswordResetHandler) Reset(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if len(req.NewPassword) < 8 {
		return fiber.NewError(fiber.StatusBadRequest, "password must be at least 8 characters")
	}

	var reset models.PasswordResetToken
	if err := h.db.Where("token = ?", req.Token).First(&reset).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "reset token not found")
		}
		return err
	}

	if !reset.Verified {
		return fiber.NewError(fiber.StatusBadRequest, "reset code has not been verified")
	}
	if reset.UsedAt != nil {
		return fiber.NewError(fiber.StatusBadRequest, "reset token already used")
	}
	if reset.ExpiresAt.Before(time.Now()) {
		return fiber.NewError(fiber.StatusBadRequest, "reset token expired")
	}

	passwordHash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to hash password")
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).
			Where("phone = ?", reset.Phone).
			Update("password_hash", passwordHash).Error; err != nil {
			return err
		}

		now := time.Now()
		reset.UsedAt = &now
		return tx.Save(&reset).Error
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "password updated"})
}

func (h *PasswordResetHandler) sendResetCode(phone string) error {
	code, err := generateVerificationCode()
	if err != nil {
		return err
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return err
	}

	reset := models.PasswordResetToken{
		Phone:     phone,
		Token:     hex.EncodeToString(tokenBytes),
		Code:      code,
		ExpiresAt: time.Now().Add(15 * time.Minute),
	}
	if err := h.db.Create(&reset).Error; err != nil {
		return err
	}

	body := fmt.Sprintf("Your SafeMeet password reset code is: %s\nThis code expires in 15 minutes.", code)
	return h.sms.Send(phone, body)
}
