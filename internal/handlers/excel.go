package handlers

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/repotrack/backend/internal/middleware"
	"github.com/repotrack/backend/internal/models"
	"github.com/repotrack/backend/internal/services"
	"github.com/repotrack/backend/internal/store"
	"github.com/repotrack/backend/pkg/utils"
)

// maxExcelUploadBytes caps workbook uploads at 20 MB.
const maxExcelUploadBytes = 20 << 20

// ExcelHandler serves the bulk-import pipeline and the imported-record
// search the field app runs on.
type ExcelHandler struct {
	excel    store.ExcelStore
	cloud    *services.CloudinaryService
	notifier *services.Notifier
}

func NewExcelHandler(excel store.ExcelStore, cloud *services.CloudinaryService, notifier *services.Notifier) *ExcelHandler {
	return &ExcelHandler{excel: excel, cloud: cloud, notifier: notifier}
}

// Upload ingests an .xlsx workbook: parse rows, archive the original file in
// Cloudinary, store the rows in MongoDB.
func (h *ExcelHandler) Upload(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxExcelUploadBytes)
	if err := r.ParseMultipartForm(maxExcelUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "File too large or invalid form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != ".xlsx" {
		respondError(w, http.StatusBadRequest, "Only .xlsx files are supported")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to read file")
		return
	}

	records, err := services.ParseWorkbook(data)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Could not parse workbook: "+err.Error())
		return
	}
	if len(records) == 0 {
		respondError(w, http.StatusBadRequest, "Workbook contains no usable rows")
		return
	}

	fileURL := ""
	if h.cloud != nil {
		fileURL, err = h.cloud.UploadBytes(r.Context(), data, "excel-imports")
		if err != nil {
			// The parsed rows matter more than the archived original.
			log.Printf("cloudinary upload failed: %v", err)
		}
	}

	excelFile := models.ExcelFile{
		FileName:   header.Filename,
		FileURL:    fileURL,
		RowCount:   len(records),
		UploadedBy: claims.UserID.String(),
		CreatedAt:  time.Now().UTC(),
	}
	if err := h.excel.InsertFile(r.Context(), &excelFile); err != nil {
		respondStoreError(w, err, "")
		return
	}

	for i := range records {
		records[i].FileID = excelFile.ID
	}
	if err := h.excel.InsertRecords(r.Context(), records); err != nil {
		respondStoreError(w, err, "")
		return
	}

	if h.notifier != nil {
		_ = h.notifier.Send(r.Context(), models.Notification{
			Kind:  models.NotificationExcelImported,
			Title: fmt.Sprintf("Imported %d records from %s", len(records), header.Filename),
		})
	}

	log.Printf("✅ Imported %d records from %s", len(records), header.Filename)
	respondMessage(w, http.StatusCreated, "File imported", map[string]interface{}{
		"file":      excelFile,
		"row_count": len(records),
	})
}

// Files lists uploaded workbooks, newest first.
func (h *ExcelHandler) Files(w http.ResponseWriter, r *http.Request) {
	files, err := h.excel.ListFiles(r.Context())
	if err != nil {
		respondStoreError(w, err, "")
		return
	}
	if files == nil {
		files = []models.ExcelFile{}
	}
	respondOK(w, map[string]interface{}{"files": files})
}

// Search queries the imported rows. Digit-only queries also match the last
// digits of registration numbers, which is how agents read plates.
func (h *ExcelHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = 10
	}

	filter := store.ExcelFilter{
		Query:  strings.TrimSpace(q.Get("q")),
		FileID: q.Get("file_id"),
		Page:   page,
		Limit:  limit,
	}

	records, total, err := h.excel.Search(r.Context(), filter)
	if err != nil {
		respondStoreError(w, err, "")
		return
	}
	if records == nil {
		records = []models.ExcelVehicleRecord{}
	}

	pg := utils.NewPagination(total, page, limit)
	respondOK(w, map[string]interface{}{
		"records":    records,
		"pagination": pg,
		"range":      pg.RangeLabel(),
	})
}

// ExportCSV streams the full filtered set of imported rows.
func (h *ExcelHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.ExcelFilter{
		Query:  strings.TrimSpace(q.Get("q")),
		FileID: q.Get("file_id"),
	}

	records, err := h.excel.SearchAll(r.Context(), filter)
	if err != nil {
		respondStoreError(w, err, "")
		return
	}

	filename := fmt.Sprintf("excel-records-%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	cw := csv.NewWriter(w)
	defer cw.Flush()

	cw.Write([]string{"Registration", "Loan", "Customer", "Chassis", "Engine", "Make", "Model", "Confirmer", "Confirmer Phone", "Outstanding", "EMI", "Bucket", "Branch"})
	for _, rec := range records {
		if err := cw.Write([]string{
			rec.RegistrationNumber,
			rec.LoanNumber,
			rec.CustomerName,
			rec.ChassisNumber,
			rec.EngineNumber,
			rec.Make,
			rec.Model,
			rec.ConfirmerName,
			rec.ConfirmerPhone,
			rec.OutstandingAmount,
			rec.EMIAmount,
			rec.BucketStatus,
			rec.Branch,
		}); err != nil {
			log.Printf("csv write error: %v", err)
			return
		}
	}
}
