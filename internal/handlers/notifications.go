package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/repotrack/backend/internal/auth"
	"github.com/repotrack/backend/internal/middleware"
	"github.com/repotrack/backend/internal/models"
	"github.com/repotrack/backend/internal/services"
	"github.com/repotrack/backend/internal/store"
	"github.com/repotrack/backend/pkg/utils"
)

var notifyUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS for WebSocket is handled at the HTTP layer already.
		return true
	},
}

// NotificationHandler serves the console's notification feed and the
// realtime push gateway.
type NotificationHandler struct {
	notifications store.NotificationStore
	jwt           *auth.JWTService
	sessions      *auth.SessionStore
}

func NewNotificationHandler(notifications store.NotificationStore, jwt *auth.JWTService, sessions *auth.SessionStore) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, jwt: jwt, sessions: sessions}
}

// List returns notifications visible to the caller: addressed to them, to
// their role, or broadcast.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = 20
	}

	notifications, total, err := h.notifications.ListFor(r.Context(), claims.UserID.String(), string(claims.Role), page, limit)
	if err != nil {
		respondStoreError(w, err, "")
		return
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}

	pg := utils.NewPagination(total, page, limit)
	respondOK(w, map[string]interface{}{
		"notifications": notifications,
		"pagination":    pg,
	})
}

// MarkRead marks one notification read for the caller.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req struct {
		ID string `json:"id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.notifications.MarkRead(r.Context(), req.ID, claims.UserID.String(), string(claims.Role)); err != nil {
		respondStoreError(w, err, "")
		return
	}
	respondMessage(w, http.StatusOK, "Notification marked read", nil)
}

// WebSocket upgrades the connection and registers it with the notify hub.
// Browser WebSocket clients cannot set headers, so the token arrives as a
// query parameter.
func (h *NotificationHandler) WebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing session token", http.StatusUnauthorized)
		return
	}

	claims, err := h.jwt.VerifyToken(token)
	if err != nil || !h.sessions.Valid(r.Context(), claims.ID) {
		http.Error(w, "invalid session token", http.StatusUnauthorized)
		return
	}

	conn, err := notifyUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	services.RegisterNotifyConnection(claims.UserID, claims.Role, conn)
	defer services.UnregisterNotifyConnection(claims.UserID)

	// Reader loop keeps the connection alive; clients only send pings.
	conn.SetReadLimit(4 * 1024)
	_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	}
}
