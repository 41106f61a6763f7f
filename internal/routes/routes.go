package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/repotrack/backend/internal/handlers"
	"github.com/repotrack/backend/internal/middleware"
	"github.com/repotrack/backend/internal/roles"
)

// Handlers bundles every route handler plus the authenticator. main wires it
// once; tests can wire a subset.
type Handlers struct {
	Auth          *middleware.Authenticator
	AuthH         *handlers.AuthHandler
	OTP           *handlers.OTPHandler
	Users         *handlers.UserHandler
	Vehicles      *handlers.VehicleHandler
	Excel         *handlers.ExcelHandler
	BackOffice    *handlers.BackOfficeHandler
	Money         *handlers.MoneyHandler
	AppVersions   *handlers.AppVersionHandler
	Notifications *handlers.NotificationHandler
}

func SetupRoutes(r *chi.Mux, h Handlers) {
	// Public: login, the OTP second step, and the app-version listing the
	// field app polls for self-update.
	r.Post("/api/auth/login", h.AuthH.Login)
	r.Post("/api/auth/verify-otp", h.AuthH.VerifyOTP)
	r.Get("/api/app-versions", h.AppVersions.List)

	// Everything else requires a live session.
	r.Group(func(r chi.Router) {
		r.Use(h.Auth.RequireAuth)

		r.Get("/api/auth/me", h.AuthH.Me)
		r.Post("/api/auth/logout", h.AuthH.Logout)
		r.Post("/api/auth/change-password", h.AuthH.ChangePassword)

		// User management
		r.Group(func(r chi.Router) {
			r.Use(h.Auth.RequireCapability(roles.ActionManageUsers))
			r.Get("/api/users", h.Users.List)
			r.Post("/api/users", h.Users.Create)
			r.Put("/api/users/{id}", h.Users.Update)
			r.Patch("/api/users/{id}/active", h.Users.ToggleActive)
			r.Delete("/api/users/{id}", h.Users.Delete)
		})

		// OTP management
		r.Group(func(r chi.Router) {
			r.Use(h.Auth.RequireCapability(roles.ActionManageOTP))
			r.Get("/api/otp", h.OTP.List)
			r.Post("/api/otp/generate", h.OTP.Generate)
			r.Post("/api/otp/invalidate", h.OTP.Invalidate)
		})

		// Vehicles: every role lists (field agents see their assignments),
		// mutations are capability-gated per route.
		r.Get("/api/vehicles", h.Vehicles.List)
		r.Group(func(r chi.Router) {
			r.Use(h.Auth.RequireCapability(roles.ActionManageVehicles))
			r.Post("/api/vehicles", h.Vehicles.Create)
			r.Put("/api/vehicles/{id}", h.Vehicles.Update)
			r.Delete("/api/vehicles/{id}", h.Vehicles.Delete)
		})
		r.With(h.Auth.RequireCapability(roles.ActionAssignVehicles)).
			Post("/api/vehicles/{id}/assign", h.Vehicles.Assign)
		r.With(h.Auth.RequireCapability(roles.ActionUpdateVehicleWork)).
			Patch("/api/vehicles/{id}/status", h.Vehicles.UpdateStatus)
		r.With(h.Auth.RequireCapability(roles.ActionExportData)).
			Get("/api/vehicles/export", h.Vehicles.ExportCSV)

		// Dashboard stats
		r.Group(func(r chi.Router) {
			r.Use(h.Auth.RequireCapability(roles.ActionViewStats))
			r.Get("/api/stats/users", h.Users.Stats)
			r.Get("/api/stats/vehicles", h.Vehicles.Stats)
		})

		// Excel import and search
		r.Group(func(r chi.Router) {
			r.Use(h.Auth.RequireCapability(roles.ActionUploadExcel))
			r.Post("/api/excel/upload", h.Excel.Upload)
			r.Get("/api/excel/files", h.Excel.Files)
		})
		r.With(h.Auth.RequireCapability(roles.ActionSearchExcel)).
			Get("/api/excel/search", h.Excel.Search)
		r.With(h.Auth.RequireCapability(roles.ActionExportData)).
			Get("/api/excel/export", h.Excel.ExportCSV)

		// Back-office numbers: agents read the active set, admins manage.
		r.Get("/api/back-office/active", h.BackOffice.Active)
		r.Group(func(r chi.Router) {
			r.Use(h.Auth.RequireCapability(roles.ActionManageBackOffice))
			r.Get("/api/back-office", h.BackOffice.List)
			r.Post("/api/back-office", h.BackOffice.Create)
			r.Put("/api/back-office/{id}", h.BackOffice.Update)
			r.Patch("/api/back-office/{id}/active", h.BackOffice.Toggle)
			r.Delete("/api/back-office/{id}", h.BackOffice.Delete)
		})

		// Money records and the payment summary
		r.Group(func(r chi.Router) {
			r.Use(h.Auth.RequireCapability(roles.ActionViewMoney))
			r.Get("/api/money", h.Money.List)
			r.Get("/api/money/summary", h.Money.Summary)
		})
		r.With(h.Auth.RequireAdmin).Post("/api/money", h.Money.Create)

		// App versions: publish/delete need superAdmin and above.
		r.Group(func(r chi.Router) {
			r.Use(h.Auth.RequireCapability(roles.ActionManageAppVersions))
			r.Post("/api/app-versions", h.AppVersions.Publish)
			r.Delete("/api/app-versions/{id}", h.AppVersions.Delete)
		})

		// Notification feed
		r.Get("/api/notifications", h.Notifications.List)
		r.Post("/api/notifications/read", h.Notifications.MarkRead)
	})

	// WebSocket push gateway authenticates via ?token= inside the handler.
	r.Get("/ws/notifications", h.Notifications.WebSocket)
}
