package handlers

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repotrack/backend/internal/models"
	"github.com/repotrack/backend/internal/roles"
)

func activeNumbers(n int) []models.BackOfficeNumber {
	numbers := make([]models.BackOfficeNumber, n)
	for i := range numbers {
		numbers[i] = models.BackOfficeNumber{
			ID:           uuid.New(),
			Name:         "Desk",
			MobileNumber: "9000000000",
			IsActive:     true,
			Position:     i,
		}
	}
	return numbers
}

func TestBackOfficeCreateAtCapConflicts(t *testing.T) {
	store := newFakeBackOfficeStore(activeNumbers(models.MaxActiveBackOfficeNumbers)...)
	h := NewBackOfficeHandler(store)
	claims := testClaims(uuid.New(), roles.Admin)

	rec := serveAs(t, claims, http.MethodPost, "/api/back-office", "/api/back-office",
		map[string]interface{}{"name": "Fifth", "mobile_number": "9111111111"}, h.Create)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Len(t, store.numbers, 4)

	// Creating inactive is still allowed at the cap.
	inactive := false
	rec = serveAs(t, claims, http.MethodPost, "/api/back-office", "/api/back-office",
		map[string]interface{}{"name": "Fifth", "mobile_number": "9111111111", "is_active": &inactive}, h.Create)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Len(t, store.numbers, 5)
}

func TestBackOfficeToggleAtCapConflicts(t *testing.T) {
	numbers := activeNumbers(models.MaxActiveBackOfficeNumbers)
	spare := models.BackOfficeNumber{ID: uuid.New(), Name: "Spare", MobileNumber: "9222222222", IsActive: false}
	store := newFakeBackOfficeStore(append(numbers, spare)...)
	h := NewBackOfficeHandler(store)
	claims := testClaims(uuid.New(), roles.Admin)

	rec := serveAs(t, claims, http.MethodPatch, "/api/back-office/{id}/active",
		"/api/back-office/"+spare.ID.String()+"/active", map[string]bool{"is_active": true}, h.Toggle)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.False(t, store.numbers[spare.ID].IsActive)

	// Deactivate one, then the toggle succeeds.
	rec = serveAs(t, claims, http.MethodPatch, "/api/back-office/{id}/active",
		"/api/back-office/"+numbers[0].ID.String()+"/active", map[string]bool{"is_active": false}, h.Toggle)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serveAs(t, claims, http.MethodPatch, "/api/back-office/{id}/active",
		"/api/back-office/"+spare.ID.String()+"/active", map[string]bool{"is_active": true}, h.Toggle)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, store.numbers[spare.ID].IsActive)
}

func TestBackOfficeListReportsCap(t *testing.T) {
	numbers := activeNumbers(3)
	numbers[2].IsActive = false
	h := NewBackOfficeHandler(newFakeBackOfficeStore(numbers...))

	rec := serveAs(t, testClaims(uuid.New(), roles.Admin),
		http.MethodGet, "/api/back-office", "/api/back-office", nil, h.List)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeResponse(t, rec)
	assert.Equal(t, float64(2), body["active_count"])
	assert.Equal(t, float64(models.MaxActiveBackOfficeNumbers), body["max_active"])
	assert.Len(t, body["numbers"], 3)
}

func TestBackOfficeCreateValidation(t *testing.T) {
	store := newFakeBackOfficeStore()
	h := NewBackOfficeHandler(store)

	rec := serveAs(t, testClaims(uuid.New(), roles.Admin),
		http.MethodPost, "/api/back-office", "/api/back-office",
		map[string]string{"name": "  ", "mobile_number": ""}, h.Create)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, store.numbers)
}
