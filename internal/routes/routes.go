package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/safemeet/internal/config"
	"github.com/example/safemeet/internal/handlers"
	"github.com/example/safemeet/internal/middleware"
	"github.com/example/safemeet/internal/services"
)

// Register wires all services, handlers and routes onto the app.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	sms := services.NewSMSService(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber)
	geocoder := services.NewGeocodeService(cfg.GoogleMapsAPIKey)
	storage := services.NewStorageService(cfg.UploadDir)

	verificationService := services.NewVerificationService(db, storage)
	contactService := services.NewContactService(db)
	emergencyService := services.NewEmergencyService(db, sms, geocoder)
	safetyService := services.NewSafetyService(db, geocoder)

	authHandler := handlers.NewAuthHandler(db, cfg, sms)
	resetHandler := handlers.NewPasswordResetHandler(db, sms)
	profileHandler := handlers.NewProfileHandler(db)
	verificationHandler := handlers.NewVerificationHandler(verificationService)
	adminHandler := handlers.NewAdminHandler(db, verificationService)
	contactHandler := handlers.NewContactHandler(contactService)
	emergencyHandler := handlers.NewEmergencyHandler(emergencyService)
	safetyHandler := handlers.NewSafetyHandler(safetyService)

	app.Get("/health", handlers.Health(db))

	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/verify-phone", authHandler.VerifyPhone)
	auth.Post("/verify-email", authHandler.VerifyEmail)
	auth.Post("/resend-code", authHandler.ResendCode)
	auth.Post("/forgot-password", resetHandler.Forgot)
	auth.Post("/verify-reset-code", resetHandler.VerifyCode)
	auth.Post("/reset-password", resetHandler.Reset)

	authed := middleware.AuthMiddleware(cfg)

	profile := api.Group("/profile", authed)
	profile.Get("", profileHandler.Get)
	profile.Put("", profileHandler.Update)

	verification := api.Group("/verification", authed)
	verification.Post("/documents", verificationHandler.UploadDocument)
	verification.Get("/documents", verificationHandler.ListDocuments)
	verification.Get("/documents/:id", verificationHandler.GetDocument)
	verification.Delete("/documents/:id", verificationHandler.DeleteDocument)
	verification.Get("/status", verificationHandler.Status)
	verification.Post("/background-check", verificationHandler.RequestBackgroundCheck)

	contacts := api.Group("/contacts", authed)
	contacts.Post("", contactHandler.Create)
	contacts.Get("", contactHandler.List)
	contacts.Put("/:id", contactHandler.Update)
	contacts.Post("/:id/deactivate", contactHandler.Deactivate)
	contacts.Delete("/:id", contactHandler.Delete)

	emergency := api.Group("/emergency", authed)
	emergency.Post("/alert", emergencyHandler.CreateAlert)
	emergency.Post("/check-in", emergencyHandler.CheckIn)
	emergency.Post("/share-location", emergencyHandler.ShareLocation)
	emergency.Post("/notify-contacts", emergencyHandler.NotifyContacts)
	emergency.Get("/alerts", emergencyHandler.ListAlerts)
	emergency.Get("/alerts/:id", emergencyHandler.GetAlert)
	emergency.Put("/alerts/:id/status", emergencyHandler.UpdateStatus)
	emergency.Get("/info", emergencyHandler.EmergencyInfo)

	safety := api.Group("/safety", authed)
	safety.Get("/preferences", safetyHandler.GetPreferences)
	safety.Put("/preferences", safetyHandler.UpdatePreferences)
	safety.Get("/area-info", safetyHandler.AreaInfo)
	safety.Get("/city-info/:city", safetyHandler.CityInfo)

	admin := api.Group("/admin", authed, middleware.RequireAdmin(db))
	admin.Get("/documents", adminHandler.PendingDocuments)
	admin.Put("/documents/:id/review", adminHandler.ReviewDocument)
	admin.Get("/background-checks", adminHandler.PendingBackgroundChecks)
	admin.Put("/background-checks/:id/complete", adminHandler.CompleteBackgroundCheck)
}
