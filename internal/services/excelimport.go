package services

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/repotrack/backend/internal/models"
)

// headerAliases maps normalized workbook column headers to record fields.
// Finance companies name the same column a dozen ways, so each field accepts
// several spellings.
var headerAliases = map[string]string{
	"registration number": "registration",
	"registration no":     "registration",
	"reg no":              "registration",
	"vehicle no":          "registration",
	"vehicle number":      "registration",

	"loan number":    "loan",
	"loan no":        "loan",
	"agreement no":   "loan",
	"account number": "loan",
	"account no":     "loan",

	"customer name": "customer",
	"customer":      "customer",
	"borrower name": "customer",

	"chassis number": "chassis",
	"chassis no":     "chassis",

	"engine number": "engine",
	"engine no":     "engine",

	"make":  "make",
	"model": "model",

	"confirmer name":    "confirmer_name",
	"confirmer":         "confirmer_name",
	"confirmer phone":   "confirmer_phone",
	"confirmer contact": "confirmer_phone",
	"confirmer phone 2": "confirmer_phone2",
	"confirmer phone2":  "confirmer_phone2",

	"outstanding amount": "outstanding",
	"outstanding":        "outstanding",
	"pos":                "outstanding",
	"emi amount":         "emi",
	"emi":                "emi",
	"bucket":             "bucket",
	"bucket status":      "bucket",
	"branch":             "branch",
}

// ParseWorkbook reads the first sheet of an .xlsx workbook into vehicle
// records. The first non-empty row is the header; rows missing both a
// registration and a loan number are skipped.
func ParseWorkbook(data []byte) ([]models.ExcelVehicleRecord, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	columns, start := mapHeader(rows)
	if columns == nil {
		return nil, fmt.Errorf("no recognizable header row")
	}

	now := time.Now().UTC()
	records := make([]models.ExcelVehicleRecord, 0, len(rows)-start)
	for _, row := range rows[start:] {
		rec := recordFromRow(row, columns)
		if rec.RegistrationNumber == "" && rec.LoanNumber == "" {
			continue
		}
		rec.CreatedAt = now
		records = append(records, rec)
	}
	return records, nil
}

// mapHeader finds the header row and returns field name by column index,
// plus the index of the first data row.
func mapHeader(rows [][]string) (map[int]string, int) {
	for i, row := range rows {
		columns := make(map[int]string)
		for col, cell := range row {
			key := strings.ToLower(strings.TrimSpace(cell))
			if field, ok := headerAliases[key]; ok {
				columns[col] = field
			}
		}
		if len(columns) >= 2 {
			return columns, i + 1
		}
	}
	return nil, 0
}

func recordFromRow(row []string, columns map[int]string) models.ExcelVehicleRecord {
	var rec models.ExcelVehicleRecord
	for col, field := range columns {
		if col >= len(row) {
			continue
		}
		val := strings.TrimSpace(row[col])
		if val == "" {
			continue
		}
		switch field {
		case "registration":
			rec.RegistrationNumber = strings.ToUpper(strings.ReplaceAll(val, " ", ""))
		case "loan":
			rec.LoanNumber = val
		case "customer":
			rec.CustomerName = val
		case "chassis":
			rec.ChassisNumber = strings.ToUpper(val)
		case "engine":
			rec.EngineNumber = strings.ToUpper(val)
		case "make":
			rec.Make = val
		case "model":
			rec.Model = val
		case "confirmer_name":
			rec.ConfirmerName = val
		case "confirmer_phone":
			rec.ConfirmerPhone = val
		case "confirmer_phone2":
			rec.ConfirmerPhone2 = val
		case "outstanding":
			rec.OutstandingAmount = val
		case "emi":
			rec.EMIAmount = val
		case "bucket":
			rec.BucketStatus = val
		case "branch":
			rec.Branch = val
		}
	}
	return rec
}
