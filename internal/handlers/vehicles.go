package handlers

import (
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/repotrack/backend/internal/middleware"
	"github.com/repotrack/backend/internal/models"
	"github.com/repotrack/backend/internal/roles"
	"github.com/repotrack/backend/internal/services"
	"github.com/repotrack/backend/internal/store"
	"github.com/repotrack/backend/pkg/utils"
)

// VehicleHandler serves the repossession-target table.
type VehicleHandler struct {
	vehicles store.VehicleStore
	users    store.UserStore
	stats    *services.StatsService
	notifier *services.Notifier
}

func NewVehicleHandler(vehicles store.VehicleStore, users store.UserStore, stats *services.StatsService, notifier *services.Notifier) *VehicleHandler {
	return &VehicleHandler{vehicles: vehicles, users: users, stats: stats, notifier: notifier}
}

type vehicleRequest struct {
	RegistrationNumber string  `json:"registration_number"`
	OwnerName          string  `json:"owner_name"`
	OwnerPhone         string  `json:"owner_phone"`
	Make               string  `json:"make"`
	Model              string  `json:"model"`
	Year               int     `json:"year"`
	Priority           string  `json:"priority"`
	OutstandingAmount  float64 `json:"outstanding_amount"`
}

// vehicleUpdateRequest uses pointers so a partial update can distinguish an
// omitted field from an explicit zero (clearing year or outstanding amount).
type vehicleUpdateRequest struct {
	RegistrationNumber *string  `json:"registration_number"`
	OwnerName          *string  `json:"owner_name"`
	OwnerPhone         *string  `json:"owner_phone"`
	Make               *string  `json:"make"`
	Model              *string  `json:"model"`
	Year               *int     `json:"year"`
	Priority           *string  `json:"priority"`
	OutstandingAmount  *float64 `json:"outstanding_amount"`
}

type assignRequest struct {
	UserID string `json:"user_id"`
}

type statusRequest struct {
	Status string `json:"status"`
}

func vehicleFilterFromQuery(r *http.Request) (store.VehicleFilter, int, int) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = 10
	}

	filter := store.VehicleFilter{
		Search:   q.Get("search"),
		Status:   models.VehicleStatus(q.Get("status")),
		Priority: models.VehiclePriority(q.Get("priority")),
		Page:     page,
		Limit:    limit,
	}
	if v := q.Get("assigned_to"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			filter.AssignedTo = &id
		}
	}
	return filter, page, limit
}

// List returns a page of vehicles. Field agents only see their own
// assignments.
func (h *VehicleHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	filter, page, limit := vehicleFilterFromQuery(r)
	if claims.Role == roles.FieldAgent {
		filter.AssignedTo = &claims.UserID
	}

	vehicles, total, err := h.vehicles.List(r.Context(), filter)
	if err != nil {
		respondStoreError(w, err, "")
		return
	}
	if vehicles == nil {
		vehicles = []models.Vehicle{}
	}

	pg := utils.NewPagination(total, page, limit)
	respondOK(w, map[string]interface{}{
		"vehicles":   vehicles,
		"pagination": pg,
		"range":      pg.RangeLabel(),
	})
}

// Create adds a vehicle in pending status.
func (h *VehicleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req vehicleRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if req.RegistrationNumber == "" || req.OwnerName == "" {
		respondError(w, http.StatusBadRequest, "Registration number and owner name are required")
		return
	}
	priority := models.VehiclePriority(req.Priority)
	if req.Priority != "" && !models.ValidVehiclePriority(priority) {
		respondError(w, http.StatusBadRequest, "Invalid priority")
		return
	}

	vehicle := models.Vehicle{
		RegistrationNumber: req.RegistrationNumber,
		OwnerName:          req.OwnerName,
		OwnerPhone:         req.OwnerPhone,
		Make:               req.Make,
		Model:              req.Model,
		Year:               req.Year,
		Priority:           priority,
		OutstandingAmount:  req.OutstandingAmount,
	}
	if err := h.vehicles.Create(r.Context(), &vehicle); err != nil {
		respondStoreError(w, err, "A vehicle with this registration already exists")
		return
	}

	h.stats.InvalidateVehicleStats(r.Context())
	respondMessage(w, http.StatusCreated, "Vehicle created", map[string]interface{}{"vehicle": vehicle})
}

// Update edits a vehicle's descriptive fields. Status moves through
// UpdateStatus so the transitions stay in one place.
func (h *VehicleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid vehicle id")
		return
	}

	var req vehicleUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	vehicle, err := h.vehicles.GetByID(r.Context(), id)
	if err != nil {
		respondStoreError(w, err, "")
		return
	}

	if req.RegistrationNumber != nil {
		if strings.TrimSpace(*req.RegistrationNumber) == "" {
			respondError(w, http.StatusBadRequest, "Registration number is required")
			return
		}
		vehicle.RegistrationNumber = *req.RegistrationNumber
	}
	if req.OwnerName != nil {
		vehicle.OwnerName = *req.OwnerName
	}
	if req.OwnerPhone != nil {
		vehicle.OwnerPhone = *req.OwnerPhone
	}
	if req.Make != nil {
		vehicle.Make = *req.Make
	}
	if req.Model != nil {
		vehicle.Model = *req.Model
	}
	if req.Year != nil {
		vehicle.Year = *req.Year
	}
	if req.OutstandingAmount != nil {
		vehicle.OutstandingAmount = *req.OutstandingAmount
	}
	if req.Priority != nil {
		priority := models.VehiclePriority(*req.Priority)
		if !models.ValidVehiclePriority(priority) {
			respondError(w, http.StatusBadRequest, "Invalid priority")
			return
		}
		vehicle.Priority = priority
	}

	if err := h.vehicles.Update(r.Context(), &vehicle); err != nil {
		respondStoreError(w, err, "A vehicle with this registration already exists")
		return
	}
	respondMessage(w, http.StatusOK, "Vehicle updated", map[string]interface{}{"vehicle": vehicle})
}

// Assign hands a vehicle to a field agent and notifies them.
func (h *VehicleHandler) Assign(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid vehicle id")
		return
	}

	var req assignRequest
	if !decodeBody(w, r, &req) {
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	agent, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		respondStoreError(w, err, "")
		return
	}
	if agent.Role != roles.FieldAgent {
		respondError(w, http.StatusBadRequest, "Vehicles can only be assigned to field agents")
		return
	}
	if !agent.IsActive {
		respondError(w, http.StatusBadRequest, "Cannot assign to a deactivated account")
		return
	}

	if err := h.vehicles.Assign(r.Context(), id, userID); err != nil {
		respondStoreError(w, err, "")
		return
	}

	vehicle, err := h.vehicles.GetByID(r.Context(), id)
	if err != nil {
		respondStoreError(w, err, "")
		return
	}

	h.stats.InvalidateVehicleStats(r.Context())
	if h.notifier != nil {
		_ = h.notifier.Send(r.Context(), models.Notification{
			Kind:        models.NotificationVehicleAssigned,
			Title:       "Vehicle assigned: " + vehicle.RegistrationNumber,
			Body:        vehicle.OwnerName,
			RecipientID: userID.String(),
		})
	}

	respondMessage(w, http.StatusOK, "Vehicle assigned", map[string]interface{}{"vehicle": vehicle})
}

// UpdateStatus moves a vehicle through the recovery pipeline. Field agents
// may update their own assignments; the status set is closed.
func (h *VehicleHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid vehicle id")
		return
	}

	var req statusRequest
	if !decodeBody(w, r, &req) {
		return
	}
	status := models.VehicleStatus(req.Status)
	if !models.ValidVehicleStatus(status) {
		respondError(w, http.StatusBadRequest, "Invalid status")
		return
	}

	vehicle, err := h.vehicles.GetByID(r.Context(), id)
	if err != nil {
		respondStoreError(w, err, "")
		return
	}
	if claims.Role == roles.FieldAgent {
		if vehicle.AssignedTo == nil || *vehicle.AssignedTo != claims.UserID {
			respondError(w, http.StatusForbidden, "You can only update vehicles assigned to you")
			return
		}
	}

	if err := h.vehicles.UpdateStatus(r.Context(), id, status); err != nil {
		respondStoreError(w, err, "")
		return
	}

	h.stats.InvalidateVehicleStats(r.Context())
	if h.notifier != nil {
		_ = h.notifier.Send(r.Context(), models.Notification{
			Kind:          models.NotificationStatusChanged,
			Title:         fmt.Sprintf("%s is now %s", vehicle.RegistrationNumber, status),
			RecipientRole: string(roles.Admin),
		})
	}

	respondMessage(w, http.StatusOK, "Status updated", map[string]interface{}{"status": status})
}

// Delete removes a vehicle.
func (h *VehicleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid vehicle id")
		return
	}

	if err := h.vehicles.Delete(r.Context(), id); err != nil {
		respondStoreError(w, err, "")
		return
	}

	h.stats.InvalidateVehicleStats(r.Context())
	respondMessage(w, http.StatusOK, "Vehicle deleted", nil)
}

// Stats returns the dashboard counters by status.
func (h *VehicleHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.VehicleStats(r.Context())
	if err != nil {
		respondStoreError(w, err, "")
		return
	}
	respondOK(w, map[string]interface{}{"stats": stats})
}

// ExportCSV streams the full filtered set, not just the visible page.
func (h *VehicleHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	filter, _, _ := vehicleFilterFromQuery(r)

	vehicles, err := h.vehicles.ListAll(r.Context(), filter)
	if err != nil {
		respondStoreError(w, err, "")
		return
	}

	filename := fmt.Sprintf("vehicles-%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	cw := csv.NewWriter(w)
	defer cw.Flush()

	cw.Write([]string{"Registration", "Owner", "Phone", "Make", "Model", "Year", "Status", "Priority", "Outstanding", "Created"})
	for _, v := range vehicles {
		year := ""
		if v.Year != 0 {
			year = strconv.Itoa(v.Year)
		}
		if err := cw.Write([]string{
			v.RegistrationNumber,
			v.OwnerName,
			v.OwnerPhone,
			v.Make,
			v.Model,
			year,
			string(v.Status),
			string(v.Priority),
			strconv.FormatFloat(v.OutstandingAmount, 'f', 2, 64),
			v.CreatedAt.Format(time.RFC3339),
		}); err != nil {
			log.Printf("csv write error: %v", err)
			return
		}
	}
}
