package handlers

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repotrack/backend/internal/models"
	"github.com/repotrack/backend/internal/roles"
	"github.com/repotrack/backend/internal/services"
)

func newVehicleHandlerForTest(vehicles *fakeVehicleStore, users *fakeUserStore) *VehicleHandler {
	stats := services.NewStatsService(users, vehicles)
	return NewVehicleHandler(vehicles, users, stats, nil)
}

func TestFieldAgentListScopedToOwnAssignments(t *testing.T) {
	agentID := uuid.New()
	mine := models.Vehicle{ID: uuid.New(), RegistrationNumber: "MH12AB1234", OwnerName: "A",
		Status: models.VehicleStatusAssigned, AssignedTo: &agentID}
	other := models.Vehicle{ID: uuid.New(), RegistrationNumber: "KA05CD5678", OwnerName: "B",
		Status: models.VehicleStatusPending}

	h := newVehicleHandlerForTest(newFakeVehicleStore(mine, other), newFakeUserStore())

	rec := serveAs(t, testClaims(agentID, roles.FieldAgent),
		http.MethodGet, "/api/vehicles", "/api/vehicles", nil, h.List)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeResponse(t, rec)
	vehicles, ok := body["vehicles"].([]interface{})
	require.True(t, ok)
	require.Len(t, vehicles, 1)
	first := vehicles[0].(map[string]interface{})
	assert.Equal(t, "MH12AB1234", first["registration_number"])
}

func TestUpdateStatusValidation(t *testing.T) {
	v := models.Vehicle{ID: uuid.New(), RegistrationNumber: "MH12AB1234", OwnerName: "A",
		Status: models.VehicleStatusPending}
	h := newVehicleHandlerForTest(newFakeVehicleStore(v), newFakeUserStore())

	rec := serveAs(t, testClaims(uuid.New(), roles.Admin),
		http.MethodPatch, "/api/vehicles/{id}/status", "/api/vehicles/"+v.ID.String()+"/status",
		map[string]string{"status": "vanished"}, h.UpdateStatus)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateStatusForeignAssignmentForbidden(t *testing.T) {
	otherAgent := uuid.New()
	v := models.Vehicle{ID: uuid.New(), RegistrationNumber: "MH12AB1234", OwnerName: "A",
		Status: models.VehicleStatusAssigned, AssignedTo: &otherAgent}
	vehicles := newFakeVehicleStore(v)
	h := newVehicleHandlerForTest(vehicles, newFakeUserStore())

	rec := serveAs(t, testClaims(uuid.New(), roles.FieldAgent),
		http.MethodPatch, "/api/vehicles/{id}/status", "/api/vehicles/"+v.ID.String()+"/status",
		map[string]string{"status": "recovered"}, h.UpdateStatus)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, models.VehicleStatusAssigned, vehicles.vehicles[v.ID].Status)
}

func TestUpdateStatusOwnAssignment(t *testing.T) {
	agentID := uuid.New()
	v := models.Vehicle{ID: uuid.New(), RegistrationNumber: "MH12AB1234", OwnerName: "A",
		Status: models.VehicleStatusAssigned, AssignedTo: &agentID}
	vehicles := newFakeVehicleStore(v)
	h := newVehicleHandlerForTest(vehicles, newFakeUserStore())

	rec := serveAs(t, testClaims(agentID, roles.FieldAgent),
		http.MethodPatch, "/api/vehicles/{id}/status", "/api/vehicles/"+v.ID.String()+"/status",
		map[string]string{"status": "recovered"}, h.UpdateStatus)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.VehicleStatusRecovered, vehicles.vehicles[v.ID].Status)
}

func TestAssignRequiresActiveFieldAgent(t *testing.T) {
	v := models.Vehicle{ID: uuid.New(), RegistrationNumber: "MH12AB1234", OwnerName: "A",
		Status: models.VehicleStatusPending}
	auditor := models.User{ID: uuid.New(), Role: roles.Auditor, IsActive: true}
	inactive := models.User{ID: uuid.New(), Role: roles.FieldAgent, IsActive: false}
	agent := models.User{ID: uuid.New(), Role: roles.FieldAgent, IsActive: true}

	vehicles := newFakeVehicleStore(v)
	h := newVehicleHandlerForTest(vehicles, newFakeUserStore(auditor, inactive, agent))
	claims := testClaims(uuid.New(), roles.Admin)

	rec := serveAs(t, claims, http.MethodPost, "/api/vehicles/{id}/assign",
		"/api/vehicles/"+v.ID.String()+"/assign", map[string]string{"user_id": auditor.ID.String()}, h.Assign)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "auditors cannot take assignments")

	rec = serveAs(t, claims, http.MethodPost, "/api/vehicles/{id}/assign",
		"/api/vehicles/"+v.ID.String()+"/assign", map[string]string{"user_id": inactive.ID.String()}, h.Assign)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "deactivated agents cannot take assignments")

	rec = serveAs(t, claims, http.MethodPost, "/api/vehicles/{id}/assign",
		"/api/vehicles/"+v.ID.String()+"/assign", map[string]string{"user_id": agent.ID.String()}, h.Assign)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.VehicleStatusAssigned, vehicles.vehicles[v.ID].Status)
	assert.Equal(t, agent.ID, *vehicles.vehicles[v.ID].AssignedTo)
}

func TestExportCSVStreamsFullSet(t *testing.T) {
	vehicles := newFakeVehicleStore(
		models.Vehicle{ID: uuid.New(), RegistrationNumber: "MH12AB1234", OwnerName: "A", Status: models.VehicleStatusPending, Priority: models.VehiclePriorityMedium},
		models.Vehicle{ID: uuid.New(), RegistrationNumber: "KA05CD5678", OwnerName: "B", Status: models.VehicleStatusPending, Priority: models.VehiclePriorityMedium},
		models.Vehicle{ID: uuid.New(), RegistrationNumber: "DL01EF9012", OwnerName: "C", Status: models.VehicleStatusPending, Priority: models.VehiclePriorityMedium},
	)
	h := newVehicleHandlerForTest(vehicles, newFakeUserStore())

	// limit=1 must not truncate the export
	rec := serveAs(t, testClaims(uuid.New(), roles.Admin),
		http.MethodGet, "/api/vehicles/export", "/api/vehicles/export?limit=1", nil, h.ExportCSV)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	assert.Len(t, lines, 4, "header plus every row, not just the visible page")
}

func TestCreateVehicleValidation(t *testing.T) {
	vehicles := newFakeVehicleStore()
	h := newVehicleHandlerForTest(vehicles, newFakeUserStore())
	claims := testClaims(uuid.New(), roles.Admin)

	rec := serveAs(t, claims, http.MethodPost, "/api/vehicles", "/api/vehicles",
		map[string]interface{}{"owner_name": "No Reg"}, h.Create)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serveAs(t, claims, http.MethodPost, "/api/vehicles", "/api/vehicles",
		map[string]interface{}{"registration_number": "MH12AB1234", "owner_name": "A", "priority": "extreme"}, h.Create)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serveAs(t, claims, http.MethodPost, "/api/vehicles", "/api/vehicles",
		map[string]interface{}{"registration_number": "MH12AB1234", "owner_name": "A"}, h.Create)
	require.Equal(t, http.StatusCreated, rec.Code)

	require.Len(t, vehicles.vehicles, 1)
	for _, v := range vehicles.vehicles {
		assert.Equal(t, models.VehicleStatusPending, v.Status, "new vehicles start pending")
		assert.Equal(t, models.VehiclePriorityMedium, v.Priority)
	}
}

func TestUpdateVehiclePartialFields(t *testing.T) {
	v := models.Vehicle{ID: uuid.New(), RegistrationNumber: "MH12AB1234", OwnerName: "A",
		Status: models.VehicleStatusPending, Year: 2019, OutstandingAmount: 250000}
	vehicles := newFakeVehicleStore(v)
	h := newVehicleHandlerForTest(vehicles, newFakeUserStore())
	claims := testClaims(uuid.New(), roles.Admin)

	// Omitted fields keep their values.
	rec := serveAs(t, claims, http.MethodPut, "/api/vehicles/{id}", "/api/vehicles/"+v.ID.String(),
		map[string]interface{}{"owner_name": "B"}, h.Update)
	require.Equal(t, http.StatusOK, rec.Code)

	got, err := vehicles.GetByID(context.Background(), v.ID)
	require.NoError(t, err)
	assert.Equal(t, "B", got.OwnerName)
	assert.Equal(t, 2019, got.Year)
	assert.Equal(t, 250000.0, got.OutstandingAmount)

	// An explicit zero clears year and outstanding amount.
	rec = serveAs(t, claims, http.MethodPut, "/api/vehicles/{id}", "/api/vehicles/"+v.ID.String(),
		map[string]interface{}{"year": 0, "outstanding_amount": 0}, h.Update)
	require.Equal(t, http.StatusOK, rec.Code)

	got, err = vehicles.GetByID(context.Background(), v.ID)
	require.NoError(t, err)
	assert.Zero(t, got.Year)
	assert.Zero(t, got.OutstandingAmount)

	// Registration numbers cannot be blanked.
	rec = serveAs(t, claims, http.MethodPut, "/api/vehicles/{id}", "/api/vehicles/"+v.ID.String(),
		map[string]interface{}{"registration_number": "  "}, h.Update)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
