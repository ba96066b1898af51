package storage

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"neovault/models"
)

// FilePatch enumerates exactly which file fields an admin may change.
// Nil fields are left untouched; an empty CategoryID detaches the file
// from its category.
type FilePatch struct {
	OriginalName *string `json:"originalName"`
	CategoryID   *string `json:"categoryId"`
	IsActive     *bool   `json:"isActive"`
}

// ListFiles returns all active files, newest first, joined with their
// (possibly absent) category.
func (s *Store) ListFiles() ([]models.File, error) {
	var files []models.File
	err := s.db.
		Preload("Category").
		Where("is_active = ?", true).
		Order("created_at DESC").
		Find(&files).Error
	if err != nil {
		return nil, err
	}
	return files, nil
}

// ListFilesByCategory is ListFiles scoped to one category.
func (s *Store) ListFilesByCategory(categoryID string) ([]models.File, error) {
	var files []models.File
	err := s.db.
		Preload("Category").
		Where("category_id = ? AND is_active = ?", categoryID, true).
		Order("created_at DESC").
		Find(&files).Error
	if err != nil {
		return nil, err
	}
	return files, nil
}

// GetFile returns the active file with the given id, or ErrNotFound.
// Soft-deleted files are invisible here by design.
func (s *Store) GetFile(id string) (*models.File, error) {
	var file models.File
	err := s.db.
		Preload("Category").
		Where("id = ? AND is_active = ?", id, true).
		First(&file).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &file, nil
}

// CreateFile records upload metadata. Bytes must already be durable.
func (s *Store) CreateFile(file *models.File) error {
	return s.db.Create(file).Error
}

// SoftDeleteFile flips isActive off and refreshes updatedAt. Deleting an
// already-inactive file is a no-op success.
func (s *Store) SoftDeleteFile(id string) error {
	return s.db.Model(&models.File{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_active": false, "updated_at": time.Now()}).Error
}

// UpdateFile merges the patch into an active file row. A changed category is
// re-validated against the categories table.
func (s *Store) UpdateFile(id string, patch FilePatch) (*models.File, error) {
	var file models.File
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND is_active = ?", id, true).First(&file).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if patch.OriginalName != nil && *patch.OriginalName != "" {
			file.OriginalName = *patch.OriginalName
		}
		if patch.CategoryID != nil {
			if *patch.CategoryID == "" {
				file.CategoryID = nil
			} else {
				var count int64
				if err := tx.Model(&models.Category{}).Where("id = ?", *patch.CategoryID).Count(&count).Error; err != nil {
					return err
				}
				if count == 0 {
					return ErrInvalidCategory
				}
				file.CategoryID = patch.CategoryID
			}
		}
		if patch.IsActive != nil {
			file.IsActive = *patch.IsActive
		}
		file.UpdatedAt = time.Now()
		return tx.Save(&file).Error
	})
	if err != nil {
		return nil, err
	}

	file.Category = nil
	if file.CategoryID != nil {
		var cat models.Category
		if err := s.db.Where("id = ?", *file.CategoryID).First(&cat).Error; err == nil {
			file.Category = &cat
		}
	}
	return &file, nil
}

// ListInactiveFilesBefore returns files soft-deleted before the cutoff.
// Used by the byte reaper.
func (s *Store) ListInactiveFilesBefore(cutoff time.Time, limit int) ([]models.File, error) {
	var files []models.File
	err := s.db.
		Where("is_active = ? AND updated_at < ?", false, cutoff).
		Limit(limit).
		Find(&files).Error
	if err != nil {
		return nil, err
	}
	return files, nil
}

// PurgeFile removes a file row outright. Only the reaper calls this, after
// the bytes are gone.
func (s *Store) PurgeFile(id string) error {
	return s.db.Where("id = ?", id).Delete(&models.File{}).Error
}
