package database

import (
	"database/sql"
	"log"
	"time"

	_ "github.com/lib/pq"
)

var PostgresDB *sql.DB

// ConnectPostgres connects to PostgreSQL database
func ConnectPostgres(postgresURI string) error {
	var err error

	PostgresDB, err = sql.Open("postgres", postgresURI)
	if err != nil {
		return err
	}

	// Set connection pool settings
	PostgresDB.SetMaxOpenConns(25)
	PostgresDB.SetMaxIdleConns(5)
	PostgresDB.SetConnMaxLifetime(5 * time.Minute)

	// Test connection
	if err = PostgresDB.Ping(); err != nil {
		return err
	}

	log.Println("✅ Connected to PostgreSQL")

	// Initialize tables
	if err = InitPostgresTables(); err != nil {
		return err
	}

	return nil
}

// InitPostgresTables creates all necessary tables if they don't exist
func InitPostgresTables() error {
	queries := []string{
		// Users table (console accounts: admins, field agents, auditors)
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL UNIQUE,
			phone VARCHAR(50),
			password_hash VARCHAR(255) NOT NULL,
			role VARCHAR(50) NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			city VARCHAR(255),
			state VARCHAR(255),
			created_by UUID REFERENCES users(id) ON DELETE SET NULL
		)`,

		// Vehicles table (repossession targets)
		`CREATE TABLE IF NOT EXISTS vehicles (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
			registration_number VARCHAR(50) NOT NULL,
			owner_name VARCHAR(255) NOT NULL,
			owner_phone VARCHAR(50),
			make VARCHAR(100),
			model VARCHAR(100),
			year INTEGER,
			status VARCHAR(50) NOT NULL DEFAULT 'pending',
			priority VARCHAR(20) NOT NULL DEFAULT 'medium',
			assigned_to UUID REFERENCES users(id) ON DELETE SET NULL,
			outstanding_amount NUMERIC(14,2) NOT NULL DEFAULT 0
		)`,

		// OTP records (one active record per user, 300s lifetime)
		`CREATE TABLE IF NOT EXISTS otp_records (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			code VARCHAR(4) NOT NULL,
			generated_by UUID REFERENCES users(id) ON DELETE SET NULL,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			expires_at TIMESTAMP NOT NULL,
			consumed_at TIMESTAMP
		)`,

		// Back-office contact numbers shown to field agents (at most 4 active)
		`CREATE TABLE IF NOT EXISTS back_office_numbers (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
			name VARCHAR(255) NOT NULL,
			mobile_number VARCHAR(50) NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT FALSE,
			position INTEGER NOT NULL DEFAULT 0
		)`,

		// Money records (per-vehicle financial entries)
		`CREATE TABLE IF NOT EXISTS money_records (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			vehicle_id UUID REFERENCES vehicles(id) ON DELETE SET NULL,
			amount NUMERIC(14,2) NOT NULL,
			kind VARCHAR(50) NOT NULL,
			recorded_by UUID REFERENCES users(id) ON DELETE SET NULL,
			note TEXT
		)`,

		// App versions (public mobile-app build listing)
		`CREATE TABLE IF NOT EXISTS app_versions (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			version VARCHAR(50) NOT NULL,
			platform VARCHAR(20) NOT NULL,
			file_url TEXT NOT NULL,
			release_notes TEXT,
			is_latest BOOLEAN NOT NULL DEFAULT FALSE
		)`,

		// Create indexes for better performance
		`CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)`,
		`CREATE INDEX IF NOT EXISTS idx_users_role ON users(role)`,
		`CREATE INDEX IF NOT EXISTS idx_users_is_active ON users(is_active)`,
		`CREATE INDEX IF NOT EXISTS idx_vehicles_registration ON vehicles(registration_number)`,
		`CREATE INDEX IF NOT EXISTS idx_vehicles_status ON vehicles(status)`,
		`CREATE INDEX IF NOT EXISTS idx_vehicles_priority ON vehicles(priority)`,
		`CREATE INDEX IF NOT EXISTS idx_vehicles_assigned_to ON vehicles(assigned_to)`,
		`CREATE INDEX IF NOT EXISTS idx_otp_records_user_id ON otp_records(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_otp_records_expires_at ON otp_records(expires_at)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_otp_records_active ON otp_records(user_id) WHERE consumed_at IS NULL`,
		`CREATE INDEX IF NOT EXISTS idx_back_office_numbers_is_active ON back_office_numbers(is_active)`,
		`CREATE INDEX IF NOT EXISTS idx_money_records_vehicle_id ON money_records(vehicle_id)`,
		`CREATE INDEX IF NOT EXISTS idx_money_records_kind ON money_records(kind)`,
		`CREATE INDEX IF NOT EXISTS idx_money_records_created_at ON money_records(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_app_versions_platform ON app_versions(platform)`,
	}

	for _, query := range queries {
		if _, err := PostgresDB.Exec(query); err != nil {
			return err
		}
	}

	log.Println("✅ PostgreSQL tables initialized")
	return nil
}

// DisconnectPostgres closes the PostgreSQL connection
func DisconnectPostgres() error {
	if PostgresDB != nil {
		return PostgresDB.Close()
	}
	return nil
}
