package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdminSettings holds the single admin identity. Exactly one row is expected;
// a default row is seeded lazily on first read. Passwords are stored as
// bcrypt hashes only.
type AdminSettings struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Username     string    `gorm:"size:100;not null" json:"username"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TableName keeps the historical table name.
func (AdminSettings) TableName() string { return "admin_settings" }

// BeforeCreate assigns a UUID primary key when none was provided.
func (s *AdminSettings) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
