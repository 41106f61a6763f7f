package store

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/repotrack/backend/internal/models"
)

// ExcelFilter is the filter tuple for the imported-record search.
type ExcelFilter struct {
	Query  string
	FileID string
	Page   int
	Limit  int
}

// ExcelStore persists uploaded workbook metadata and the denormalized
// imported rows in MongoDB.
type ExcelStore interface {
	InsertFile(ctx context.Context, f *models.ExcelFile) error
	ListFiles(ctx context.Context) ([]models.ExcelFile, error)
	InsertRecords(ctx context.Context, records []models.ExcelVehicleRecord) error
	Search(ctx context.Context, f ExcelFilter) ([]models.ExcelVehicleRecord, int, error)
	// SearchAll returns the full filtered set with no page cap, for CSV export.
	SearchAll(ctx context.Context, f ExcelFilter) ([]models.ExcelVehicleRecord, error)
}

type excelStore struct {
	db *mongo.Database
}

// NewExcelStore creates the Mongo-backed ExcelStore.
func NewExcelStore(db *mongo.Database) ExcelStore {
	return &excelStore{db: db}
}

func (s *excelStore) files() *mongo.Collection   { return s.db.Collection("excel_files") }
func (s *excelStore) records() *mongo.Collection { return s.db.Collection("excel_vehicles") }

func (s *excelStore) InsertFile(ctx context.Context, f *models.ExcelFile) error {
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now()
	}
	res, err := s.files().InsertOne(ctx, f)
	if err != nil {
		return fmt.Errorf("insert excel file: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		f.ID = oid
	}
	return nil
}

func (s *excelStore) ListFiles(ctx context.Context) ([]models.ExcelFile, error) {
	cursor, err := s.files().Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		return nil, fmt.Errorf("list excel files: %w", err)
	}
	defer cursor.Close(ctx)

	var files []models.ExcelFile
	if err := cursor.All(ctx, &files); err != nil {
		return nil, fmt.Errorf("decode excel files: %w", err)
	}
	return files, nil
}

func (s *excelStore) InsertRecords(ctx context.Context, records []models.ExcelVehicleRecord) error {
	if len(records) == 0 {
		return nil
	}
	docs := make([]interface{}, len(records))
	for i := range records {
		if records[i].CreatedAt.IsZero() {
			records[i].CreatedAt = time.Now()
		}
		docs[i] = records[i]
	}
	if _, err := s.records().InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert excel records: %w", err)
	}
	return nil
}

var digitsOnly = regexp.MustCompile(`^[0-9]+$`)

// searchFilter builds the Mongo filter for the query. A purely numeric query
// additionally matches the tail of registration/chassis/engine numbers so
// agents can search by the last digits painted on the plate.
func (s *excelStore) searchFilter(f ExcelFilter) (bson.M, error) {
	filter := bson.M{}

	if f.FileID != "" {
		oid, err := primitive.ObjectIDFromHex(f.FileID)
		if err != nil {
			return nil, fmt.Errorf("invalid file id: %w", err)
		}
		filter["file_id"] = oid
	}

	q := strings.TrimSpace(f.Query)
	if q == "" {
		return filter, nil
	}

	escaped := regexp.QuoteMeta(q)
	contains := primitive.Regex{Pattern: escaped, Options: "i"}
	or := []bson.M{
		{"registration_number": contains},
		{"loan_number": contains},
		{"chassis_number": contains},
		{"engine_number": contains},
		{"customer_name": contains},
	}
	if digitsOnly.MatchString(q) {
		tail := primitive.Regex{Pattern: escaped + "$", Options: "i"}
		or = append(or,
			bson.M{"registration_number": tail},
			bson.M{"chassis_number": tail},
			bson.M{"engine_number": tail},
		)
	}
	filter["$or"] = or
	return filter, nil
}

func (s *excelStore) Search(ctx context.Context, f ExcelFilter) ([]models.ExcelVehicleRecord, int, error) {
	filter, err := s.searchFilter(f)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.records().CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count excel records: %w", err)
	}

	if f.Limit < 1 {
		f.Limit = 10
	}
	if f.Page < 1 {
		f.Page = 1
	}
	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetSkip(int64((f.Page - 1) * f.Limit)).
		SetLimit(int64(f.Limit))

	cursor, err := s.records().Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("search excel records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []models.ExcelVehicleRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, 0, fmt.Errorf("decode excel records: %w", err)
	}
	return records, int(total), nil
}

func (s *excelStore) SearchAll(ctx context.Context, f ExcelFilter) ([]models.ExcelVehicleRecord, error) {
	filter, err := s.searchFilter(f)
	if err != nil {
		return nil, err
	}

	cursor, err := s.records().Find(ctx, filter, options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		return nil, fmt.Errorf("search excel records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []models.ExcelVehicleRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode excel records: %w", err)
	}
	return records, nil
}
