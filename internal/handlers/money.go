package handlers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/repotrack/backend/internal/middleware"
	"github.com/repotrack/backend/internal/models"
	"github.com/repotrack/backend/internal/store"
	"github.com/repotrack/backend/pkg/utils"
)

// MoneyHandler serves financial entries and the payment summary.
type MoneyHandler struct {
	money store.MoneyStore
}

func NewMoneyHandler(money store.MoneyStore) *MoneyHandler {
	return &MoneyHandler{money: money}
}

type moneyRequest struct {
	VehicleID string  `json:"vehicle_id"`
	Amount    float64 `json:"amount"`
	Kind      string  `json:"kind"`
	Note      string  `json:"note"`
}

// List returns a page of money records.
func (h *MoneyHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = 10
	}

	filter := store.MoneyFilter{
		Kind:  models.MoneyKind(q.Get("kind")),
		Page:  page,
		Limit: limit,
	}
	if v := q.Get("vehicle_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			filter.VehicleID = &id
		}
	}

	records, total, err := h.money.List(r.Context(), filter)
	if err != nil {
		respondStoreError(w, err, "")
		return
	}
	if records == nil {
		records = []models.MoneyRecord{}
	}

	pg := utils.NewPagination(total, page, limit)
	respondOK(w, map[string]interface{}{
		"records":    records,
		"pagination": pg,
		"range":      pg.RangeLabel(),
	})
}

// Create adds a financial entry, stamped with the recording admin.
func (h *MoneyHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req moneyRequest
	if !decodeBody(w, r, &req) {
		return
	}

	kind := models.MoneyKind(req.Kind)
	if !models.ValidMoneyKind(kind) {
		respondError(w, http.StatusBadRequest, "Invalid kind")
		return
	}
	if req.Amount <= 0 {
		respondError(w, http.StatusBadRequest, "Amount must be positive")
		return
	}

	rec := models.MoneyRecord{
		Amount:     req.Amount,
		Kind:       kind,
		RecordedBy: &claims.UserID,
		Note:       req.Note,
	}
	if req.VehicleID != "" {
		id, err := uuid.Parse(req.VehicleID)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid vehicle id")
			return
		}
		rec.VehicleID = &id
	}

	if err := h.money.Create(r.Context(), &rec); err != nil {
		respondStoreError(w, err, "")
		return
	}
	respondMessage(w, http.StatusCreated, "Record created", map[string]interface{}{"record": rec})
}

// Summary returns totals by kind plus the monthly series.
func (h *MoneyHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.money.Summary(r.Context())
	if err != nil {
		respondStoreError(w, err, "")
		return
	}
	respondOK(w, map[string]interface{}{"summary": summary})
}
