package storage

import (
	"errors"
	"sync"

	"gorm.io/gorm"

	"neovault/models"
	"neovault/utils"
)

// Defaults for the lazily created admin row. The password is hashed before it
// ever reaches the database.
const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin123"
)

// settingsMu serializes the read-or-seed path so concurrent first reads
// converge on exactly one row.
var settingsMu sync.Mutex

// GetAdminSettings returns the single admin row, seeding the default one when
// the table is empty.
func (s *Store) GetAdminSettings() (*models.AdminSettings, error) {
	settingsMu.Lock()
	defer settingsMu.Unlock()

	var settings models.AdminSettings
	err := s.db.First(&settings).Error
	if err == nil {
		return &settings, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := utils.HashPassword(DefaultAdminPassword)
	if err != nil {
		return nil, err
	}
	settings = models.AdminSettings{Username: DefaultAdminUsername, PasswordHash: hash}
	if err := s.db.Create(&settings).Error; err != nil {
		return nil, err
	}
	return &settings, nil
}

// UpdateAdminSettings replaces the admin identity, update-if-exists else
// insert. The plaintext password is hashed here and discarded.
func (s *Store) UpdateAdminSettings(username, password string) (*models.AdminSettings, error) {
	settingsMu.Lock()
	defer settingsMu.Unlock()

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	var settings models.AdminSettings
	err = s.db.First(&settings).Error
	switch {
	case err == nil:
		settings.Username = username
		settings.PasswordHash = hash
		if err := s.db.Save(&settings).Error; err != nil {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		settings = models.AdminSettings{Username: username, PasswordHash: hash}
		if err := s.db.Create(&settings).Error; err != nil {
			return nil, err
		}
	default:
		return nil, err
	}
	return &settings, nil
}
