package handlers

import (
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/repotrack/backend/internal/models"
	"github.com/repotrack/backend/internal/services"
	"github.com/repotrack/backend/internal/store"
)

// maxBuildUploadBytes caps app-build uploads at 200 MB.
const maxBuildUploadBytes = 200 << 20

// AppVersionHandler serves published mobile-app builds. Listing is public so
// the field app can self-update without a session.
type AppVersionHandler struct {
	versions store.AppVersionStore
	cloud    *services.CloudinaryService
}

func NewAppVersionHandler(versions store.AppVersionStore, cloud *services.CloudinaryService) *AppVersionHandler {
	return &AppVersionHandler{versions: versions, cloud: cloud}
}

// List returns builds newest-first, optionally filtered by ?platform=.
func (h *AppVersionHandler) List(w http.ResponseWriter, r *http.Request) {
	versions, err := h.versions.List(r.Context(), r.URL.Query().Get("platform"))
	if err != nil {
		respondStoreError(w, err, "")
		return
	}
	if versions == nil {
		versions = []models.AppVersion{}
	}
	respondOK(w, map[string]interface{}{"versions": versions})
}

// Publish uploads a build file and marks it latest for its platform.
// Multipart form: file, version, platform, release_notes.
func (h *AppVersionHandler) Publish(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBuildUploadBytes)
	if err := r.ParseMultipartForm(maxBuildUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "File too large or invalid form")
		return
	}

	version := strings.TrimSpace(r.FormValue("version"))
	platform := strings.ToLower(strings.TrimSpace(r.FormValue("platform")))
	if version == "" {
		respondError(w, http.StatusBadRequest, "Version is required")
		return
	}
	if platform != "android" && platform != "ios" {
		respondError(w, http.StatusBadRequest, "Platform must be android or ios")
		return
	}

	headers := r.MultipartForm.File["file"]
	if len(headers) == 0 {
		respondError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	header := headers[0]

	if h.cloud == nil {
		respondError(w, http.StatusServiceUnavailable, "File uploads are not available")
		return
	}

	folder := "app-builds/" + platform
	fileURL, err := h.cloud.UploadFileFromHeader(r.Context(), header, folder)
	if err != nil {
		log.Printf("build upload failed: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to upload build")
		return
	}

	build := models.AppVersion{
		Version:      version,
		Platform:     platform,
		FileURL:      fileURL,
		ReleaseNotes: strings.TrimSpace(r.FormValue("release_notes")),
		IsLatest:     true,
	}
	if err := h.versions.Publish(r.Context(), &build); err != nil {
		respondStoreError(w, err, "")
		return
	}

	log.Printf("✅ Published %s build %s (%s)", platform, version, filepath.Base(header.Filename))
	respondMessage(w, http.StatusCreated, "Version published", map[string]interface{}{"version": build})
}

// Delete removes a published build.
func (h *AppVersionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	if err := h.versions.Delete(r.Context(), id); err != nil {
		respondStoreError(w, err, "")
		return
	}
	respondMessage(w, http.StatusOK, "Version deleted", nil)
}
