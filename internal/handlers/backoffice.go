package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/repotrack/backend/internal/models"
	"github.com/repotrack/backend/internal/store"
)

// BackOfficeHandler serves the published contact numbers. At most four may
// be active; the store enforces the cap atomically and this layer translates
// the conflict into a 409.
type BackOfficeHandler struct {
	numbers store.BackOfficeStore
}

func NewBackOfficeHandler(numbers store.BackOfficeStore) *BackOfficeHandler {
	return &BackOfficeHandler{numbers: numbers}
}

const backOfficeCapMessage = "Maximum of 4 active back-office numbers reached. Deactivate one first"

type backOfficeRequest struct {
	Name         string `json:"name"`
	MobileNumber string `json:"mobile_number"`
	IsActive     *bool  `json:"is_active"`
	Position     int    `json:"order"`
}

// List returns every number with the active count, so the console can
// disable its add control at the cap.
func (h *BackOfficeHandler) List(w http.ResponseWriter, r *http.Request) {
	numbers, err := h.numbers.List(r.Context())
	if err != nil {
		respondStoreError(w, err, "")
		return
	}
	if numbers == nil {
		numbers = []models.BackOfficeNumber{}
	}

	active := 0
	for _, n := range numbers {
		if n.IsActive {
			active++
		}
	}

	respondOK(w, map[string]interface{}{
		"numbers":      numbers,
		"active_count": active,
		"max_active":   models.MaxActiveBackOfficeNumbers,
	})
}

// Active returns only the active numbers. This is what the field app reads.
func (h *BackOfficeHandler) Active(w http.ResponseWriter, r *http.Request) {
	numbers, err := h.numbers.ListActive(r.Context())
	if err != nil {
		respondStoreError(w, err, "")
		return
	}
	if numbers == nil {
		numbers = []models.BackOfficeNumber{}
	}
	respondOK(w, map[string]interface{}{"numbers": numbers})
}

// Create adds a number, active by default.
func (h *BackOfficeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req backOfficeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.MobileNumber = strings.TrimSpace(req.MobileNumber)
	if req.Name == "" || req.MobileNumber == "" {
		respondError(w, http.StatusBadRequest, "Name and mobile number are required")
		return
	}

	number := models.BackOfficeNumber{
		Name:         req.Name,
		MobileNumber: req.MobileNumber,
		IsActive:     true,
		Position:     req.Position,
	}
	if req.IsActive != nil {
		number.IsActive = *req.IsActive
	}

	if err := h.numbers.Create(r.Context(), &number); err != nil {
		respondStoreError(w, err, backOfficeCapMessage)
		return
	}
	respondMessage(w, http.StatusCreated, "Number created", map[string]interface{}{"number": number})
}

// Update edits a number's name, mobile number, and position.
func (h *BackOfficeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	var req backOfficeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	number := models.BackOfficeNumber{
		ID:           id,
		Name:         strings.TrimSpace(req.Name),
		MobileNumber: strings.TrimSpace(req.MobileNumber),
		Position:     req.Position,
	}
	if number.Name == "" || number.MobileNumber == "" {
		respondError(w, http.StatusBadRequest, "Name and mobile number are required")
		return
	}

	if err := h.numbers.Update(r.Context(), &number); err != nil {
		respondStoreError(w, err, "")
		return
	}
	respondMessage(w, http.StatusOK, "Number updated", map[string]interface{}{"number": number})
}

// Toggle flips activation. Activating a fifth number returns 409.
func (h *BackOfficeHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	var req struct {
		IsActive bool `json:"is_active"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.numbers.SetActive(r.Context(), id, req.IsActive); err != nil {
		respondStoreError(w, err, backOfficeCapMessage)
		return
	}
	respondMessage(w, http.StatusOK, "Number updated", map[string]interface{}{"is_active": req.IsActive})
}

// Delete removes a number.
func (h *BackOfficeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	if err := h.numbers.Delete(r.Context(), id); err != nil {
		respondStoreError(w, err, "")
		return
	}
	respondMessage(w, http.StatusOK, "Number deleted", nil)
}
