package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/repotrack/backend/internal/auth"
	"github.com/repotrack/backend/internal/middleware"
	"github.com/repotrack/backend/internal/roles"
	"github.com/repotrack/backend/internal/services"
	"github.com/repotrack/backend/internal/store"
	"github.com/repotrack/backend/pkg/utils"
)

// AuthHandler serves login, the OTP second step, and session management.
type AuthHandler struct {
	users    store.UserStore
	otp      *services.OTPService
	jwt      *auth.JWTService
	sessions *auth.SessionStore
}

func NewAuthHandler(users store.UserStore, otp *services.OTPService, jwt *auth.JWTService, sessions *auth.SessionStore) *AuthHandler {
	return &AuthHandler{users: users, otp: otp, jwt: jwt, sessions: sessions}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyOTPRequest struct {
	UserID string `json:"user_id"`
	OTP    string `json:"otp"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// Login authenticates email and password. Admin-tier roles get a token
// immediately; field agents and auditors get requiresOTP and must complete
// the second step.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		// Same message for unknown email and wrong password
		respondError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	match, err := utils.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil || !match {
		respondError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	if !user.IsActive {
		respondError(w, http.StatusForbidden, "Your account has been deactivated. Contact an administrator")
		return
	}

	if roles.RequiresOTP(user.Role) {
		respondOK(w, map[string]interface{}{
			"requiresOTP": true,
			"user":        user.PublicProfile(),
		})
		return
	}

	token, tokenID, err := h.jwt.SignAccessToken(user.ID, user.Role)
	if err != nil {
		log.Printf("failed to sign token: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}
	if err := h.sessions.Create(r.Context(), user.ID, tokenID); err != nil {
		log.Printf("failed to create session: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	respondOK(w, map[string]interface{}{
		"requiresOTP": false,
		"token":       token,
		"user":        user,
	})
}

// VerifyOTP completes the login for OTP roles. Codes that are not exactly
// four digits are rejected before any store lookup.
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if !utils.IsOTPFormat(req.OTP) {
		respondError(w, http.StatusBadRequest, "OTP must be exactly 4 digits")
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Invalid or expired OTP")
		return
	}
	if !user.IsActive {
		respondError(w, http.StatusForbidden, "Your account has been deactivated. Contact an administrator")
		return
	}

	if err := h.otp.Verify(r.Context(), userID, req.OTP); err != nil {
		if errors.Is(err, services.ErrInvalidOTP) {
			respondError(w, http.StatusUnauthorized, "Invalid or expired OTP")
			return
		}
		log.Printf("otp verify error: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to verify OTP")
		return
	}

	token, tokenID, err := h.jwt.SignAccessToken(user.ID, user.Role)
	if err != nil {
		log.Printf("failed to sign token: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}
	if err := h.sessions.Create(r.Context(), user.ID, tokenID); err != nil {
		log.Printf("failed to create session: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	respondOK(w, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	user, err := h.users.GetByID(r.Context(), claims.UserID)
	if err != nil {
		respondStoreError(w, err, "")
		return
	}

	respondOK(w, map[string]interface{}{"user": user})
}

// Logout revokes the current session so the token stops working immediately.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	if err := h.sessions.Invalidate(r.Context(), claims.ID); err != nil {
		log.Printf("failed to invalidate session: %v", err)
	}
	respondMessage(w, http.StatusOK, "Logged out", nil)
}

// ChangePassword verifies the current password, applies the new one, and
// revokes the session so every device logs in again.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req changePasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := utils.ValidatePassword(req.NewPassword, req.ConfirmPassword); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.users.GetByID(r.Context(), claims.UserID)
	if err != nil {
		respondStoreError(w, err, "")
		return
	}

	match, err := utils.VerifyPassword(req.CurrentPassword, user.PasswordHash)
	if err != nil || !match {
		respondError(w, http.StatusUnauthorized, "Current password is incorrect")
		return
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		log.Printf("failed to hash password: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to update password")
		return
	}
	if err := h.users.UpdatePassword(r.Context(), user.ID, hash); err != nil {
		respondStoreError(w, err, "")
		return
	}

	if err := h.sessions.InvalidateUser(r.Context(), user.ID); err != nil {
		log.Printf("failed to invalidate sessions: %v", err)
	}
	respondMessage(w, http.StatusOK, "Password updated. Please log in again", nil)
}
