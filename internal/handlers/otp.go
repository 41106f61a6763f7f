package handlers

import (
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/repotrack/backend/internal/middleware"
	"github.com/repotrack/backend/internal/roles"
	"github.com/repotrack/backend/internal/services"
	"github.com/repotrack/backend/internal/store"
)

// OTPHandler serves the console's OTP management table.
type OTPHandler struct {
	otp   *services.OTPService
	users store.UserStore
}

func NewOTPHandler(otp *services.OTPService, users store.UserStore) *OTPHandler {
	return &OTPHandler{otp: otp, users: users}
}

type generateOTPRequest struct {
	UserID string `json:"user_id"`
}

// Generate issues a fresh code for an OTP-role user. The plaintext code is
// returned once, to the admin who asked for it.
func (h *OTPHandler) Generate(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req generateOTPRequest
	if !decodeBody(w, r, &req) {
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		respondStoreError(w, err, "")
		return
	}
	if !roles.RequiresOTP(user.Role) {
		respondError(w, http.StatusBadRequest, "OTP login does not apply to this role")
		return
	}
	if !user.IsActive {
		respondError(w, http.StatusBadRequest, "Cannot generate OTP for a deactivated account")
		return
	}

	rec, err := h.otp.Generate(r.Context(), userID, claims.UserID)
	if err != nil {
		log.Printf("otp generate error: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to generate OTP")
		return
	}

	respondOK(w, map[string]interface{}{
		"otp":              rec.Code,
		"user_id":          rec.UserID,
		"expiresAt":        rec.ExpiresAt,
		"remainingSeconds": rec.RemainingSeconds(rec.CreatedAt),
	})
}

// Invalidate consumes a user's active code.
func (h *OTPHandler) Invalidate(w http.ResponseWriter, r *http.Request) {
	var req generateOTPRequest
	if !decodeBody(w, r, &req) {
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	if err := h.otp.Invalidate(r.Context(), userID); err != nil {
		log.Printf("otp invalidate error: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to invalidate OTP")
		return
	}
	respondMessage(w, http.StatusOK, "OTP invalidated", nil)
}

// List returns the active codes with countdowns. Codes generated by other
// admins come back masked.
func (h *OTPHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	entries, err := h.otp.ListActive(r.Context(), claims.UserID)
	if err != nil {
		log.Printf("otp list error: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to list OTPs")
		return
	}

	respondOK(w, map[string]interface{}{"otps": entries})
}
