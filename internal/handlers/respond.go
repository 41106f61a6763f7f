package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/repotrack/backend/internal/store"
)

// Response is the JSON envelope every endpoint returns.
type Response struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message,omitempty"`
	Data    map[string]interface{} `json:"-"`
}

// MarshalJSON flattens Data alongside the envelope fields so the console
// reads {"success":true,"users":[...],"pagination":{...}}.
func (r Response) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(r.Data)+2)
	out["success"] = r.Success
	if r.Message != "" {
		out["message"] = r.Message
	}
	for k, v := range r.Data {
		out[k] = v
	}
	return json.Marshal(out)
}

func respondJSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, Response{Success: false, Message: message})
}

func respondOK(w http.ResponseWriter, data map[string]interface{}) {
	respondJSON(w, http.StatusOK, Response{Success: true, Data: data})
}

func respondMessage(w http.ResponseWriter, status int, message string, data map[string]interface{}) {
	respondJSON(w, status, Response{Success: true, Message: message, Data: data})
}

// respondStoreError maps the store sentinels onto HTTP statuses; anything
// else is a 500 with a generic message.
func respondStoreError(w http.ResponseWriter, err error, conflictMessage string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, store.ErrConflict):
		respondError(w, http.StatusConflict, conflictMessage)
	default:
		log.Printf("store error: %v", err)
		respondError(w, http.StatusInternalServerError, "Database error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
