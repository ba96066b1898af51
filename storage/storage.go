// Package storage owns all query shaping against the relational backend:
// soft-delete filtering, category/file joins, and ordering. Handlers and the
// upload pipeline never touch gorm directly.
package storage

import (
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrNotFound means the id did not resolve to an active record.
	ErrNotFound = errors.New("record not found")
	// ErrConflict means a category slug is already taken.
	ErrConflict = errors.New("slug already exists")
	// ErrInvalidCategory means a referenced category does not exist.
	ErrInvalidCategory = errors.New("category does not exist")
)

// Store wraps the gorm handle with the vault's query surface.
type Store struct {
	db *gorm.DB
}

// New creates a Store on top of an initialized database.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}
