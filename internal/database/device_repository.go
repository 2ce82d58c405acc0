// internal/database/device_repository.go
package database

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/reelshop/internal/models"
	"github.com/javajoker/reelshop/internal/store"
)

var ErrDeviceNotFound = errors.New("device not found")

type DeviceRepository struct {
	db *gorm.DB
}

func NewDeviceRepository(db *gorm.DB) *DeviceRepository {
	return &DeviceRepository{db: db}
}

func (r *DeviceRepository) Create(name, userAgent string) (*models.Device, error) {
	now := time.Now().UTC()
	device := &models.Device{
		ID:         uuid.New().String(),
		Name:       name,
		UserAgent:  userAgent,
		LastSeenAt: now,
		CreatedAt:  now,
	}
	if err := r.db.Create(device).Error; err != nil {
		return nil, err
	}
	return device, nil
}

func (r *DeviceRepository) Get(id string) (*models.Device, error) {
	var device models.Device
	if err := r.db.Where("id = ?", id).First(&device).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeviceNotFound
		}
		return nil, err
	}
	return &device, nil
}

func (r *DeviceRepository) Touch(id string) error {
	return r.db.Model(&models.Device{}).Where("id = ?", id).Update("last_seen_at", time.Now().UTC()).Error
}

// Forget removes the device together with its state snapshot.
func (r *DeviceRepository) Forget(id string) error {
	return WithTransaction(r.db, func(tx *gorm.DB) error {
		result := tx.Where("id = ?", id).Delete(&models.Device{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrDeviceNotFound
		}
		return tx.Where("key = ?", store.SnapshotKey(id)).Delete(&models.StateSnapshot{}).Error
	})
}
