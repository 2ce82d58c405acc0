// internal/database/snapshot_repository.go
package database

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/javajoker/reelshop/internal/models"
	"github.com/javajoker/reelshop/internal/store"
)

// SnapshotRepository keeps state snapshots in the state_snapshots table.
type SnapshotRepository struct {
	db *gorm.DB
}

func NewSnapshotRepository(db *gorm.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

func (r *SnapshotRepository) Load(key string) ([]byte, error) {
	var snapshot models.StateSnapshot
	if err := r.db.Where("key = ?", key).First(&snapshot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrNoSnapshot
		}
		return nil, err
	}
	return []byte(snapshot.Payload), nil
}

func (r *SnapshotRepository) Save(key string, payload []byte) error {
	snapshot := models.StateSnapshot{
		Key:       key,
		Payload:   string(payload),
		UpdatedAt: time.Now().UTC(),
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&snapshot).Error
}

func (r *SnapshotRepository) Delete(key string) error {
	return r.db.Where("key = ?", key).Delete(&models.StateSnapshot{}).Error
}
