package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// File is the metadata record of a stored upload. The bytes live in the
// content directory under Filename; OriginalName is only used for display
// and download headers and never appears on the filesystem.
type File struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Filename     string    `gorm:"size:500;not null" json:"filename"`
	OriginalName string    `gorm:"size:500;not null" json:"originalName"`
	MimeType     string    `gorm:"size:200;not null" json:"mimeType"`
	Size         int64     `gorm:"not null" json:"size"`
	CategoryID   *string   `gorm:"size:36;index" json:"categoryId"`
	UploadedBy   string    `gorm:"size:255;not null" json:"uploadedBy"`
	IsActive     bool      `gorm:"not null;default:true" json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	Category     *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// BeforeCreate assigns a UUID primary key when none was provided.
func (f *File) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
