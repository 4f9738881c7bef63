package repository

import (
	"encoding/json"
	"errors"
	"time"

	"afri_portal_backend/internal/model"

	"gorm.io/gorm"
)

// SnapshotRepository keeps the last successful roster refresh so the service
// can come up with stale data when the remote store is unreachable at boot.
type SnapshotRepository struct {
	DB *gorm.DB
}

func NewSnapshotRepository(db *gorm.DB) *SnapshotRepository {
	return &SnapshotRepository{DB: db}
}

func (r *SnapshotRepository) Save(data *model.RosterData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	rec := model.RosterSnapshot{
		ID:        1,
		Data:      string(raw),
		FetchedAt: time.Now(),
	}
	return r.DB.Save(&rec).Error
}

func (r *SnapshotRepository) Load() (*model.RosterData, error) {
	var rec model.RosterSnapshot
	err := r.DB.First(&rec, 1).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var data model.RosterData
	if err := json.Unmarshal([]byte(rec.Data), &data); err != nil {
		return nil, err
	}
	return &data, nil
}
