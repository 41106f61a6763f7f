package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repotrack/backend/internal/auth"
	"github.com/repotrack/backend/internal/middleware"
	"github.com/repotrack/backend/internal/models"
	"github.com/repotrack/backend/internal/roles"
	"github.com/repotrack/backend/internal/services"
)

func testClaims(userID uuid.UUID, role roles.Role) *auth.Claims {
	return &auth.Claims{UserID: userID, Role: role}
}

// serveAs routes the request through a chi router so URL params resolve,
// with the given claims injected as if RequireAuth had run.
func serveAs(t *testing.T, claims *auth.Claims, method, pattern, path string, body interface{}, handler http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if claims != nil {
		req = req.WithContext(middleware.ContextWithClaims(req.Context(), claims))
	}

	r := chi.NewRouter()
	r.Method(method, pattern, handler)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func newUserHandlerForTest(users *fakeUserStore) *UserHandler {
	stats := services.NewStatsService(users, newFakeVehicleStore())
	return NewUserHandler(users, stats, nil)
}

func TestUserListPagination(t *testing.T) {
	users := newFakeUserStore(
		models.User{ID: uuid.New(), Name: "A", Email: "a@x.test", Role: roles.Admin, IsActive: true},
		models.User{ID: uuid.New(), Name: "B", Email: "b@x.test", Role: roles.FieldAgent, IsActive: true},
		models.User{ID: uuid.New(), Name: "C", Email: "c@x.test", Role: roles.FieldAgent, IsActive: true},
	)
	h := newUserHandlerForTest(users)

	rec := serveAs(t, testClaims(uuid.New(), roles.Admin),
		http.MethodGet, "/api/users", "/api/users?page=1&limit=2", nil, h.List)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeResponse(t, rec)

	pg, ok := body["pagination"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(3), pg["total"])
	assert.Equal(t, float64(2), pg["pages"])
	assert.Equal(t, float64(2), pg["limit"])
	assert.Equal(t, "1 to 2 of 3", body["range"])
	assert.Len(t, body["users"], 2)
}

func TestCreateUserRoleGate(t *testing.T) {
	users := newFakeUserStore()
	h := newUserHandlerForTest(users)

	// An admin cannot mint a superAdmin.
	rec := serveAs(t, testClaims(uuid.New(), roles.Admin),
		http.MethodPost, "/api/users", "/api/users", map[string]string{
			"name": "Boss", "email": "boss@x.test", "role": "superAdmin",
			"password": "secret1", "confirm_password": "secret1",
		}, h.Create)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, users.users)

	// A superAdmin can.
	rec = serveAs(t, testClaims(uuid.New(), roles.SuperAdmin),
		http.MethodPost, "/api/users", "/api/users", map[string]string{
			"name": "Boss", "email": "boss@x.test", "role": "superAdmin",
			"password": "secret1", "confirm_password": "secret1",
		}, h.Create)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Len(t, users.users, 1)
}

func TestCreateUserPasswordRules(t *testing.T) {
	users := newFakeUserStore()
	h := newUserHandlerForTest(users)
	claims := testClaims(uuid.New(), roles.SuperAdmin)

	rec := serveAs(t, claims, http.MethodPost, "/api/users", "/api/users", map[string]string{
		"name": "Short", "email": "s@x.test", "role": "fieldAgent",
		"password": "12345", "confirm_password": "12345",
	}, h.Create)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serveAs(t, claims, http.MethodPost, "/api/users", "/api/users", map[string]string{
		"name": "Mismatch", "email": "m@x.test", "role": "fieldAgent",
		"password": "secret1", "confirm_password": "secret2",
	}, h.Create)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Empty(t, users.users)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	existing := models.User{ID: uuid.New(), Name: "Dup", Email: "dup@x.test", Role: roles.FieldAgent, IsActive: true}
	users := newFakeUserStore(existing)
	h := newUserHandlerForTest(users)

	rec := serveAs(t, testClaims(uuid.New(), roles.SuperAdmin),
		http.MethodPost, "/api/users", "/api/users", map[string]string{
			"name": "Dup Two", "email": "dup@x.test", "role": "fieldAgent",
			"password": "secret1", "confirm_password": "secret1",
		}, h.Create)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSelfDeleteRefused(t *testing.T) {
	adminID := uuid.New()
	users := newFakeUserStore(models.User{ID: adminID, Email: "me@x.test", Role: roles.Admin, IsActive: true})
	h := newUserHandlerForTest(users)

	rec := serveAs(t, testClaims(adminID, roles.Admin),
		http.MethodDelete, "/api/users/{id}", "/api/users/"+adminID.String(), nil, h.Delete)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, users.users, 1, "the account survives")
}

func TestDeleteBelowRank(t *testing.T) {
	adminID := uuid.New()
	agent := models.User{ID: uuid.New(), Email: "agent@x.test", Role: roles.FieldAgent, IsActive: true}
	users := newFakeUserStore(
		models.User{ID: adminID, Email: "me@x.test", Role: roles.Admin, IsActive: true},
		agent,
	)
	h := newUserHandlerForTest(users)

	rec := serveAs(t, testClaims(adminID, roles.Admin),
		http.MethodDelete, "/api/users/{id}", "/api/users/"+agent.ID.String(), nil, h.Delete)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, users.users, 1)
}

func TestToggleActiveSelfRefused(t *testing.T) {
	adminID := uuid.New()
	users := newFakeUserStore(models.User{ID: adminID, Email: "me@x.test", Role: roles.Admin, IsActive: true})
	h := newUserHandlerForTest(users)

	rec := serveAs(t, testClaims(adminID, roles.Admin),
		http.MethodPatch, "/api/users/{id}/active", "/api/users/"+adminID.String()+"/active", nil, h.ToggleActive)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.True(t, users.users[adminID].IsActive)
}

func TestUserStats(t *testing.T) {
	users := newFakeUserStore(
		models.User{ID: uuid.New(), Role: roles.Admin, IsActive: true},
		models.User{ID: uuid.New(), Role: roles.FieldAgent, IsActive: true},
		models.User{ID: uuid.New(), Role: roles.FieldAgent, IsActive: false},
	)
	h := newUserHandlerForTest(users)

	rec := serveAs(t, testClaims(uuid.New(), roles.Auditor),
		http.MethodGet, "/api/stats/users", "/api/stats/users", nil, h.Stats)
	require.Equal(t, http.StatusOK, rec.Code)

	stats, ok := decodeResponse(t, rec)["stats"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(3), stats["total"])
	assert.Equal(t, float64(2), stats["active"])
	assert.Equal(t, float64(1), stats["inactive"])
}
