// Package store holds the persistence layer: Postgres for console-owned
// entities, MongoDB for the Excel import bag and the notification feed.
// Every store is an interface so handlers can be tested against fakes.
package store

import "errors"

// ErrNotFound is returned when the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrConflict is returned when a uniqueness or business rule blocks a write
// (duplicate email, back-office active cap).
var ErrConflict = errors.New("conflict")
