package storage

import (
	"errors"

	"gorm.io/gorm"

	"neovault/models"
)

// ListCategoriesWithFiles returns all categories ordered by name, each
// carrying only its active files, newest first.
func (s *Store) ListCategoriesWithFiles() ([]models.Category, error) {
	var cats []models.Category
	err := s.db.
		Preload("Files", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_active = ?", true).Order("created_at DESC")
		}).
		Order("name ASC").
		Find(&cats).Error
	if err != nil {
		return nil, err
	}
	for i := range cats {
		if cats[i].Files == nil {
			cats[i].Files = []models.File{}
		}
	}
	return cats, nil
}

// GetCategoryBySlug returns the category with the given slug, or ErrNotFound.
func (s *Store) GetCategoryBySlug(slug string) (*models.Category, error) {
	var cat models.Category
	if err := s.db.Where("slug = ?", slug).First(&cat).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &cat, nil
}

// CategoryExists reports whether a category id resolves to a row.
func (s *Store) CategoryExists(id string) (bool, error) {
	var count int64
	if err := s.db.Model(&models.Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateCategory inserts a category after checking the slug is free.
// The unique index on slug backs up the check-then-insert.
func (s *Store) CreateCategory(name, slug, description string) (*models.Category, error) {
	var count int64
	if err := s.db.Model(&models.Category{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrConflict
	}
	cat := models.Category{Name: name, Slug: slug, Description: description}
	if err := s.db.Create(&cat).Error; err != nil {
		return nil, err
	}
	return &cat, nil
}

// DeleteCategory removes the category and cascades over its files in one
// transaction, matching the database-level cascade of the schema.
func (s *Store) DeleteCategory(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", id).Delete(&models.File{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Category{}).Error
	})
}
