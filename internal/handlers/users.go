package handlers

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/repotrack/backend/internal/middleware"
	"github.com/repotrack/backend/internal/models"
	"github.com/repotrack/backend/internal/roles"
	"github.com/repotrack/backend/internal/services"
	"github.com/repotrack/backend/internal/store"
	"github.com/repotrack/backend/pkg/utils"
)

// UserHandler serves the console's account management table.
type UserHandler struct {
	users    store.UserStore
	stats    *services.StatsService
	notifier *services.Notifier
}

func NewUserHandler(users store.UserStore, stats *services.StatsService, notifier *services.Notifier) *UserHandler {
	return &UserHandler{users: users, stats: stats, notifier: notifier}
}

type createUserRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Role            string `json:"role"`
	City            string `json:"city"`
	State           string `json:"state"`
}

type updateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Role  string `json:"role"`
	City  string `json:"city"`
	State string `json:"state"`
}

// List returns a page of accounts with the pagination block.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = 10
	}

	filter := store.UserFilter{
		Search: q.Get("search"),
		Role:   roles.Role(q.Get("role")),
		Page:   page,
		Limit:  limit,
	}
	if v := q.Get("is_active"); v != "" {
		active := v == "true"
		filter.IsActive = &active
	}

	users, total, err := h.users.List(r.Context(), filter)
	if err != nil {
		respondStoreError(w, err, "")
		return
	}
	if users == nil {
		users = []models.User{}
	}

	pg := utils.NewPagination(total, page, limit)
	respondOK(w, map[string]interface{}{
		"users":      users,
		"pagination": pg,
		"range":      pg.RangeLabel(),
	})
}

// Create adds an account. The actor can only grant roles its own role may
// manage.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req createUserRequest
	if !decodeBody(w, r, &req) {
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.Email == "" {
		respondError(w, http.StatusBadRequest, "Name and email are required")
		return
	}

	role := roles.Role(req.Role)
	if !roles.Valid(role) {
		respondError(w, http.StatusBadRequest, "Invalid role")
		return
	}
	if !roles.CanManage(claims.Role, role) {
		respondError(w, http.StatusForbidden, "You cannot create accounts with this role")
		return
	}

	if err := utils.ValidatePassword(req.Password, req.ConfirmPassword); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		log.Printf("failed to hash password: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        strings.TrimSpace(req.Phone),
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		City:         strings.TrimSpace(req.City),
		State:        strings.TrimSpace(req.State),
		CreatedBy:    &claims.UserID,
	}
	if err := h.users.Create(r.Context(), &user); err != nil {
		respondStoreError(w, err, "A user with this email already exists")
		return
	}

	h.stats.InvalidateUserStats(r.Context())
	if h.notifier != nil {
		_ = h.notifier.Send(r.Context(), models.Notification{
			Kind:          models.NotificationUserCreated,
			Title:         "New account: " + user.Name,
			Body:          string(user.Role),
			RecipientRole: string(roles.SuperAdmin),
		})
	}

	respondMessage(w, http.StatusCreated, "User created", map[string]interface{}{"user": user})
}

// Update edits an account's profile fields and role.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	var req updateUserRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		respondStoreError(w, err, "")
		return
	}
	// Both the current and the requested role must be within reach.
	if !roles.CanManage(claims.Role, user.Role) {
		respondError(w, http.StatusForbidden, "You cannot modify this account")
		return
	}

	if req.Name != "" {
		user.Name = strings.TrimSpace(req.Name)
	}
	if req.Email != "" {
		user.Email = strings.TrimSpace(strings.ToLower(req.Email))
	}
	if req.Phone != "" {
		user.Phone = strings.TrimSpace(req.Phone)
	}
	if req.City != "" {
		user.City = strings.TrimSpace(req.City)
	}
	if req.State != "" {
		user.State = strings.TrimSpace(req.State)
	}
	if req.Role != "" {
		newRole := roles.Role(req.Role)
		if !roles.Valid(newRole) {
			respondError(w, http.StatusBadRequest, "Invalid role")
			return
		}
		if !roles.CanManage(claims.Role, newRole) {
			respondError(w, http.StatusForbidden, "You cannot grant this role")
			return
		}
		user.Role = newRole
	}

	if err := h.users.Update(r.Context(), &user); err != nil {
		respondStoreError(w, err, "A user with this email already exists")
		return
	}

	h.stats.InvalidateUserStats(r.Context())
	respondMessage(w, http.StatusOK, "User updated", map[string]interface{}{"user": user})
}

// ToggleActive flips an account's active flag. Deactivated users cannot log
// in and their OTPs stop verifying.
func (h *UserHandler) ToggleActive(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid user id")
		return
	}
	if id == claims.UserID {
		respondError(w, http.StatusBadRequest, "You cannot deactivate your own account")
		return
	}

	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		respondStoreError(w, err, "")
		return
	}
	if !roles.CanManage(claims.Role, user.Role) {
		respondError(w, http.StatusForbidden, "You cannot modify this account")
		return
	}

	if err := h.users.SetActive(r.Context(), id, !user.IsActive); err != nil {
		respondStoreError(w, err, "")
		return
	}

	h.stats.InvalidateUserStats(r.Context())
	respondMessage(w, http.StatusOK, "User updated", map[string]interface{}{"is_active": !user.IsActive})
}

// Delete removes an account. Self-deletion is refused so the console always
// keeps at least its own operator.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid user id")
		return
	}
	if id == claims.UserID {
		respondError(w, http.StatusBadRequest, "You cannot delete your own account")
		return
	}

	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		respondStoreError(w, err, "")
		return
	}
	if !roles.CanManage(claims.Role, user.Role) {
		respondError(w, http.StatusForbidden, "You cannot delete this account")
		return
	}

	if err := h.users.Delete(r.Context(), id); err != nil {
		respondStoreError(w, err, "")
		return
	}

	h.stats.InvalidateUserStats(r.Context())
	respondMessage(w, http.StatusOK, "User deleted", nil)
}

// Stats returns the dashboard counters for accounts.
func (h *UserHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.UserStats(r.Context())
	if err != nil {
		respondStoreError(w, err, "")
		return
	}
	respondOK(w, map[string]interface{}{"stats": stats})
}
