package service

import (
	"afri_portal_backend/internal/model"
	"afri_portal_backend/internal/util"
)

// WeekProgress is one row of the dashboard's per-week breakdown.
type WeekProgress struct {
	WeekID    int    `json:"weekId"`
	Title     string `json:"title"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
}

type Dashboard struct {
	User       model.User     `json:"user"`
	Percentage int            `json:"percentage"`
	Weeks      []WeekProgress `json:"weeks"`
}

// DashboardService derives the student's overview from the active user record
// and the locally stored completion map.
type DashboardService struct {
	state    *StateService
	progress *ProgressService
}

func NewDashboardService(state *StateService, progress *ProgressService) *DashboardService {
	return &DashboardService{state: state, progress: progress}
}

func (s *DashboardService) GetDashboard(email string) (*Dashboard, error) {
	user := s.state.CurrentUser(email)
	if user == nil {
		return nil, util.ErrUserNotFound
	}

	progress := s.progress.Load(email)

	weeks := make([]WeekProgress, 0, len(model.Curriculum))
	for _, week := range model.Curriculum {
		wp := WeekProgress{
			WeekID: week.ID,
			Title:  week.Title,
			Total:  len(week.Sessions),
		}
		for _, session := range week.Sessions {
			if progress[model.ProgressKey(week.ID, session.SessionNumber)] {
				wp.Completed++
			}
		}
		weeks = append(weeks, wp)
	}

	percentage := 0
	if user.Progress.Total > 0 {
		percentage = user.Progress.Completed * 100 / user.Progress.Total
	}

	return &Dashboard{
		User:       *user,
		Percentage: percentage,
		Weeks:      weeks,
	}, nil
}
