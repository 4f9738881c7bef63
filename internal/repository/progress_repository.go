package repository

import (
	"errors"
	"time"

	"afri_portal_backend/internal/model"

	"gorm.io/gorm"
)

// ProgressRepository stores the per-user completion map as a single JSON blob,
// rewritten whole on every toggle. It deliberately mirrors the portal's
// localStorage contract: one opaque document per user, no partial updates.
type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

// LoadRaw returns the stored JSON document for the user, or "" when none exists.
func (r *ProgressRepository) LoadRaw(email string) (string, error) {
	var rec model.UserProgress
	err := r.DB.Where("email = ?", email).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return rec.Data, nil
}

// SaveRaw upserts the whole document for the user.
func (r *ProgressRepository) SaveRaw(email, data string, completed int) error {
	rec := model.UserProgress{
		Email:     email,
		Data:      data,
		Completed: completed,
		UpdatedAt: time.Now(),
	}
	return r.DB.Save(&rec).Error
}

// Delete removes the user's stored map (sign-out).
func (r *ProgressRepository) Delete(email string) error {
	return r.DB.Where("email = ?", email).Delete(&model.UserProgress{}).Error
}
