package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repotrack/backend/internal/models"
	"github.com/repotrack/backend/internal/roles"
	"github.com/repotrack/backend/internal/services"
	"github.com/repotrack/backend/internal/store"
	"github.com/repotrack/backend/pkg/utils"
)

// fakeOTPRecords is a minimal OTPStore that counts lookups so tests can
// assert the format gate short-circuits.
type fakeOTPRecords struct {
	records map[uuid.UUID]models.OTPRecord
	lookups int
}

func newFakeOTPRecords() *fakeOTPRecords {
	return &fakeOTPRecords{records: make(map[uuid.UUID]models.OTPRecord)}
}

func (f *fakeOTPRecords) Replace(_ context.Context, rec *models.OTPRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	f.records[rec.UserID] = *rec
	return nil
}

func (f *fakeOTPRecords) GetActiveByUser(_ context.Context, userID uuid.UUID) (models.OTPRecord, error) {
	f.lookups++
	rec, ok := f.records[userID]
	if !ok {
		return models.OTPRecord{}, store.ErrNotFound
	}
	return rec, nil
}

func (f *fakeOTPRecords) Consume(_ context.Context, id uuid.UUID) error {
	for userID, rec := range f.records {
		if rec.ID == id {
			delete(f.records, userID)
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeOTPRecords) InvalidateUser(_ context.Context, userID uuid.UUID) error {
	delete(f.records, userID)
	return nil
}

func (f *fakeOTPRecords) ListActive(_ context.Context) ([]models.OTPRecord, error) {
	var out []models.OTPRecord
	for _, rec := range f.records {
		out = append(out, rec)
	}
	return out, nil
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	return hash
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestLoginFieldAgentRequiresOTP(t *testing.T) {
	agent := models.User{
		ID:           uuid.New(),
		Name:         "Agent One",
		Email:        "agent@repotrack.test",
		PasswordHash: mustHash(t, "secret1"),
		Role:         roles.FieldAgent,
		IsActive:     true,
	}
	users := newFakeUserStore(agent)
	h := NewAuthHandler(users, services.NewOTPService(newFakeOTPRecords()), nil, nil)

	rec := postJSON(t, h.Login, "/api/auth/login", map[string]string{
		"email": "agent@repotrack.test", "password": "secret1",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeResponse(t, rec)
	assert.Equal(t, true, body["requiresOTP"])
	assert.NotContains(t, body, "token", "no token before the OTP step")

	user, ok := body["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, agent.Email, user["email"])
	assert.NotContains(t, user, "password_hash")
}

func TestLoginWrongPassword(t *testing.T) {
	agent := models.User{
		ID:           uuid.New(),
		Email:        "agent@repotrack.test",
		PasswordHash: mustHash(t, "secret1"),
		Role:         roles.FieldAgent,
		IsActive:     true,
	}
	h := NewAuthHandler(newFakeUserStore(agent), services.NewOTPService(newFakeOTPRecords()), nil, nil)

	rec := postJSON(t, h.Login, "/api/auth/login", map[string]string{
		"email": "agent@repotrack.test", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginUnknownEmailSameMessage(t *testing.T) {
	h := NewAuthHandler(newFakeUserStore(), services.NewOTPService(newFakeOTPRecords()), nil, nil)

	rec := postJSON(t, h.Login, "/api/auth/login", map[string]string{
		"email": "nobody@repotrack.test", "password": "whatever",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email or password", decodeResponse(t, rec)["message"])
}

func TestLoginDeactivatedAccount(t *testing.T) {
	agent := models.User{
		ID:           uuid.New(),
		Email:        "agent@repotrack.test",
		PasswordHash: mustHash(t, "secret1"),
		Role:         roles.FieldAgent,
		IsActive:     false,
	}
	h := NewAuthHandler(newFakeUserStore(agent), services.NewOTPService(newFakeOTPRecords()), nil, nil)

	rec := postJSON(t, h.Login, "/api/auth/login", map[string]string{
		"email": "agent@repotrack.test", "password": "secret1",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestVerifyOTPFormatGateSkipsStore(t *testing.T) {
	users := newFakeUserStore()
	otps := newFakeOTPRecords()
	h := NewAuthHandler(users, services.NewOTPService(otps), nil, nil)

	for _, code := range []string{"", "123", "12345", "12a4", "١٢٣٤"} {
		rec := postJSON(t, h.VerifyOTP, "/api/auth/verify-otp", map[string]string{
			"user_id": uuid.NewString(), "otp": code,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code, "code %q", code)
	}

	assert.Zero(t, users.getByID, "malformed codes never reach the user store")
	assert.Zero(t, otps.lookups, "malformed codes never reach the OTP store")
}

func TestVerifyOTPWrongCode(t *testing.T) {
	agent := models.User{ID: uuid.New(), Role: roles.FieldAgent, IsActive: true}
	users := newFakeUserStore(agent)
	otps := newFakeOTPRecords()

	svc := services.NewOTPService(otps)
	rec, err := svc.Generate(context.Background(), agent.ID, uuid.New())
	require.NoError(t, err)

	h := NewAuthHandler(users, svc, nil, nil)

	wrong := "0000"
	if rec.Code == wrong {
		wrong = "1111"
	}
	resp := postJSON(t, h.VerifyOTP, "/api/auth/verify-otp", map[string]string{
		"user_id": agent.ID.String(), "otp": wrong,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "Invalid or expired OTP", decodeResponse(t, resp)["message"])
}
