package handlers

import (
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/safemeet/internal/config"
	"github.com/example/safemeet/internal/models"
	"github.com/example/safemeet/internal/services"
	"github.com/example/safemeet/internal/utils"
)

// AuthHandler bundles dependencies for authentication endpoints.
type AuthHandler struct {
	db  *gorm.DB
	cfg *config.Config
	sms *services.SMSService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config, sms *services.SMSService) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg, sms: sms}
}

type registerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
	City      string `json:"city"`
	Province  string `json:"province"`
}

// Register creates a new user account and sends a phone verification code.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Email == "" || req.Phone == "" || req.Password == "" || req.FirstName == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing required fields")
	}
	if len(req.Password) < 8 {
		return fiber.NewError(fiber.StatusBadRequest, "password must be at least 8 characters")
	}

	phone := utils.NormalizePhone(req.Phone)

	var existing models.User
	if err := h.db.Where("email = ? OR phone = ?", req.Email, phone).First(&existing).Error; err == nil {
		return fiber.NewError(fiber.StatusConflict, "user already exists")
	} else if err != gorm.ErrRecordNotFound {
		return err
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to hash password")
	}

	user := models.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Phone:        phone,
		PasswordHash: passwordHash,
		Role:         models.RoleUser,
		Status:       models.AccountPendingVerification,
		City:         req.City,
		Province:     req.Province,
	}

	if err := h.db.Create(&user).Error; err != nil {
		return err
	}

	if err := h.sendVerificationCode(phone, "phone"); err != nil {
		log.Printf("[Auth] failed to send verification code to %s: %v", phone, err)
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, user.ID, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"user": fiber.Map{
			"id":                 user.ID,
			"first_name":         user.FirstName,
			"last_name":          user.LastName,
			"email":              user.Email,
			"phone":              user.Phone,
			"status":             user.Status,
			"verification_level": user.VerificationTier,
		},
		"token": token,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates an existing user.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
		}
		return err
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}

	if user.Status == models.AccountSuspended || user.Status == models.AccountDeactivated {
		return fiber.NewError(fiber.StatusForbidden, "account is not active")
	}

	now := time.Now()
	h.db.Model(&user).Update("last_login_at", now)

	token, err := utils.GenerateToken(h.cfg.JWTSecret, user.ID, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user": fiber.Map{
			"id":                 user.ID,
			"first_name":         user.FirstName,
			"last_name":          user.LastName,
			"email":              user.Email,
			"phone":              user.Phone,
			"verification_level": user.VerificationTier,
		},
		"token": token,
	})
}

type verifyRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

// VerifyPhone validates an SMS code and flips the phone-verified fact,
// recomputing the tier in the same transaction.
func (h *AuthHandler) VerifyPhone(c *fiber.Ctx) error {
	return h.verifyChannel(c, "phone")
}

// VerifyEmail validates an emailed code and flips the email-verified fact.
// Delivery uses the same code table; only the channel differs.
func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	return h.verifyChannel(c, "email")
}

func (h *AuthHandler) verifyChannel(c *fiber.Ctx, channel string) error {
	var req verifyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	phone := utils.NormalizePhone(req.Phone)

	var verification models.PhoneVerification
	err := h.db.Where("phone = ? AND channel = ?", phone, channel).
		Order("created_at desc").
		First(&verification).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "verification code not found")
		}
		return err
	}

	if verification.UsedAt != nil {
		return fiber.NewError(fiber.StatusBadRequest, "verification code already used")
	}
	if verification.Code != req.Code {
		return fiber.NewError(fiber.StatusBadRequest, "invalid verification code")
	}
	if verification.ExpiresAt.Before(time.Now()) {
		return fiber.NewError(fiber.StatusBadRequest, "verification code expired")
	}

	var user models.User
	if err := h.db.Where("phone = ?", phone).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "user not found")
		}
		return err
	}

	column := "phone_verified"
	if channel == "email" {
		column = "email_verified"
	}

	// The verified flag feeds the basic tier, so the write and the
	// recompute share one transaction.
	err = h.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		verification.Verified = true
		verification.UsedAt = &now
		if err := tx.Save(&verification).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{column: true}
		if user.Status == models.AccountPendingVerification {
			updates["status"] = models.AccountActive
		}
		if err := tx.Model(&models.User{}).Where("id = ?", user.ID).
			Updates(updates).Error; err != nil {
			return err
		}

		return services.RecomputeVerification(tx, user.ID)
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"verified": true,
	})
}

type resendRequest struct {
	Phone   string `json:"phone"`
	Channel string `json:"channel"`
}

// ResendCode issues a fresh verification code for the given channel.
func (h *AuthHandler) ResendCode(c *fiber.Ctx) error {
	var req resendRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	channel := req.Channel
	if channel != "email" {
		channel = "phone"
	}

	phone := utils.NormalizePhone(req.Phone)

	var user models.User
	if err := h.db.Where("phone = ?", phone).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "user not found")
		}
		return err
	}

	if err := h.sendVerificationCode(phone, channel); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to send verification code")
	}

	return c.JSON(fiber.Map{"success": true, "message": "verification code sent"})
}

func (h *AuthHandler) sendVerificationCode(phone, channel string) error {
	code, err := generateVerificationCode()
	if err != nil {
		return err
	}

	verification := models.PhoneVerification{
		Phone:     phone,
		Channel:   channel,
		Code:      code,
		ExpiresAt: time.Now().Add(10 * time.Minute),
	}
	if err := h.db.Create(&verification).Error; err != nil {
		return err
	}

	body := fmt.Sprintf("Your SafeMeet verification code is: %s\nThis code expires in 10 minutes.", code)
	return h.sms.Send(phone, body)
}

func generateVerificationCode() (string, error) {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
