package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExcelFile is the metadata of one uploaded workbook.
type ExcelFile struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FileName   string             `bson:"file_name" json:"file_name"`
	FileURL    string             `bson:"file_url" json:"file_url"`
	RowCount   int                `bson:"row_count" json:"row_count"`
	UploadedBy string             `bson:"uploaded_by" json:"uploaded_by"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
}

// ExcelVehicleRecord is the denormalized bag of loan/vehicle fields produced
// by the bulk import. Fields mirror the workbook columns; missing cells stay
// empty strings.
type ExcelVehicleRecord struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FileID primitive.ObjectID `bson:"file_id" json:"file_id"`

	RegistrationNumber string `bson:"registration_number" json:"registration_number"`
	LoanNumber         string `bson:"loan_number" json:"loan_number"`
	CustomerName       string `bson:"customer_name" json:"customer_name"`
	ChassisNumber      string `bson:"chassis_number" json:"chassis_number"`
	EngineNumber       string `bson:"engine_number" json:"engine_number"`
	Make               string `bson:"make" json:"make,omitempty"`
	Model              string `bson:"model" json:"model,omitempty"`

	ConfirmerName   string `bson:"confirmer_name" json:"confirmer_name,omitempty"`
	ConfirmerPhone  string `bson:"confirmer_phone" json:"confirmer_phone,omitempty"`
	ConfirmerPhone2 string `bson:"confirmer_phone2" json:"confirmer_phone2,omitempty"`

	OutstandingAmount string `bson:"outstanding_amount" json:"outstanding_amount,omitempty"`
	EMIAmount         string `bson:"emi_amount" json:"emi_amount,omitempty"`
	BucketStatus      string `bson:"bucket_status" json:"bucket_status,omitempty"`
	Branch            string `bson:"branch" json:"branch,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
