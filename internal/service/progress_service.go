package service

import (
	"afri_portal_backend/internal/model"
	"afri_portal_backend/pkg/logger"

	"go.uber.org/zap"
)

type progressStore interface {
	LoadRaw(email string) (string, error)
	SaveRaw(email, data string, completed int) error
	Delete(email string) error
}

// ProgressService owns the durable per-user completion map. Reads never fail:
// a missing or corrupt document degrades to an empty map so the portal always
// renders, matching how the rest of the progress pipeline treats bad data.
type ProgressService struct {
	store progressStore
}

func NewProgressService(store progressStore) *ProgressService {
	return &ProgressService{store: store}
}

func (s *ProgressService) Load(email string) map[string]bool {
	raw, err := s.store.LoadRaw(email)
	if err != nil {
		logger.Log.Warn("progress load failed", zap.String("email", email), zap.Error(err))
		return map[string]bool{}
	}
	if raw == "" {
		return map[string]bool{}
	}

	m, err := model.ParseProgressMap(raw)
	if err != nil {
		logger.Log.Warn("corrupt progress document, starting fresh",
			zap.String("email", email), zap.Error(err))
		return map[string]bool{}
	}
	return m
}

// Toggle flips one session key and persists the whole map. The returned map
// and status reflect the new state even if persistence failed; durability
// problems are logged, never surfaced to the caller.
func (s *ProgressService) Toggle(email string, weekID, sessionNumber int) (map[string]bool, bool) {
	m := s.Load(email)
	key := model.ProgressKey(weekID, sessionNumber)
	status := !m[key]
	m[key] = status

	if err := s.store.SaveRaw(email, model.SerializeProgressMap(m), model.CountCompleted(m)); err != nil {
		logger.Log.Error("progress save failed", zap.String("email", email), zap.Error(err))
	}
	return m, status
}

// Seed replaces the stored map with the remote copy at sign-in. A nil map
// means the remote store had nothing for this user and the local document,
// if any, is left alone.
func (s *ProgressService) Seed(email string, details map[string]bool) {
	if details == nil {
		return
	}
	if err := s.store.SaveRaw(email, model.SerializeProgressMap(details), model.CountCompleted(details)); err != nil {
		logger.Log.Error("progress seed failed", zap.String("email", email), zap.Error(err))
	}
}

func (s *ProgressService) Clear(email string) {
	if err := s.store.Delete(email); err != nil {
		logger.Log.Warn("progress clear failed", zap.String("email", email), zap.Error(err))
	}
}
