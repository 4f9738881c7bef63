package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"afri_portal_backend/internal/config"
	"afri_portal_backend/internal/model"
	"afri_portal_backend/pkg/logger"

	"go.uber.org/zap"
)

// SheetsService reads the four roster resources from the spreadsheet values
// API. A refresh is all-or-nothing: if any of the four fetches fails the whole
// refresh fails closed and the caller keeps whatever state it already had.
type SheetsService struct {
	cfg    config.SheetsConfig
	client *http.Client
}

func NewSheetsService(cfg config.SheetsConfig) *SheetsService {
	return &SheetsService{
		cfg:    cfg,
		client: &http.Client{},
	}
}

type valuesResponse struct {
	Values [][]string `json:"values"`
}

func (s *SheetsService) fetchValues(ctx context.Context, rangeName string) ([][]string, error) {
	endpoint := fmt.Sprintf("%s/%s/values/%s?key=%s",
		strings.TrimRight(s.cfg.BaseURL, "/"),
		s.cfg.SpreadsheetID,
		url.PathEscape(rangeName),
		url.QueryEscape(s.cfg.APIKey),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sheets API error (status %d) for range %s", resp.StatusCode, rangeName)
	}

	var vr valuesResponse
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		return nil, err
	}
	return vr.Values, nil
}

// FetchAll pulls users, skills, progress and videos in parallel and assembles
// the roster. Row order of the users sheet is preserved.
func (s *SheetsService) FetchAll(ctx context.Context) (*model.RosterData, error) {
	ranges := []string{
		s.cfg.UsersRange,
		s.cfg.SkillsRange,
		s.cfg.ProgressRange,
		s.cfg.VideosRange,
	}

	grids := make([][][]string, len(ranges))
	errs := make([]error, len(ranges))

	var wg sync.WaitGroup
	for i, rangeName := range ranges {
		wg.Add(1)
		go func(i int, rangeName string) {
			defer wg.Done()
			grids[i], errs[i] = s.fetchValues(ctx, rangeName)
		}(i, rangeName)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			logger.Log.Warn("roster refresh failed",
				zap.String("range", ranges[i]),
				zap.Error(err))
			return nil, err
		}
	}

	return assembleRoster(grids[0], grids[1], grids[2], grids[3]), nil
}

// cell returns the i-th column of a row, "" when the row is too short.
func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}

// dataRows drops the header row of a value grid.
func dataRows(grid [][]string) [][]string {
	if len(grid) == 0 {
		return nil
	}
	return grid[1:]
}

// Typed row schemas. Each parse validates one positional row and either yields
// a record or a skip decision; malformed rows never abort the batch.

type rosterRow struct {
	email string
	name  string
	role  string
}

func parseRosterRow(row []string) (rosterRow, bool) {
	r := rosterRow{
		email: strings.TrimSpace(cell(row, 0)),
		name:  strings.TrimSpace(cell(row, 1)),
		role:  strings.TrimSpace(cell(row, 2)),
	}
	if r.email == "" || r.name == "" {
		return rosterRow{}, false
	}
	if r.role == "" {
		r.role = model.DefaultRole
	}
	return r, true
}

type skillsRow struct {
	email  string
	skills model.Skills
}

func parseSkillsRow(row []string) (skillsRow, bool) {
	email := strings.TrimSpace(cell(row, 0))
	if email == "" {
		return skillsRow{}, false
	}
	return skillsRow{
		email: email,
		skills: model.Skills{
			Prompting: atoiDefault(cell(row, 3), 0),
			Tools:     atoiDefault(cell(row, 4), 0),
			Analysis:  atoiDefault(cell(row, 5), 0),
		},
	}, true
}

type progressRow struct {
	email     string
	completed int
	details   map[string]bool
}

func parseProgressRow(row []string) (progressRow, bool) {
	email := strings.TrimSpace(cell(row, 0))
	if email == "" {
		return progressRow{}, false
	}
	r := progressRow{
		email:     email,
		completed: atoiDefault(cell(row, 5), 0),
	}
	if raw := cell(row, 7); raw != "" {
		details, err := model.ParseProgressMap(raw)
		if err != nil {
			// Only the details cell is bad; the summary count still counts.
			logger.Log.Warn("invalid progress details cell",
				zap.String("email", email),
				zap.Error(err))
		} else {
			r.details = details
		}
	}
	return r, true
}

type videoRow struct {
	key     string
	videoID string
}

func parseVideoRow(row []string) (videoRow, bool) {
	week := strings.TrimSpace(cell(row, 1))
	label := cell(row, 2)
	if week == "" || strings.TrimSpace(label) == "" {
		return videoRow{}, false
	}
	return videoRow{
		key:     week + "-" + model.NormalizeSessionLabel(label),
		videoID: cell(row, 3),
	}, true
}

func assembleRoster(userGrid, skillsGrid, progressGrid, videoGrid [][]string) *model.RosterData {
	skillsByEmail := map[string]model.Skills{}
	for _, row := range dataRows(skillsGrid) {
		if r, ok := parseSkillsRow(row); ok {
			skillsByEmail[r.email] = r.skills
		}
	}

	summaryByEmail := map[string]model.ProgressSummary{}
	details := map[string]map[string]bool{}
	for _, row := range dataRows(progressGrid) {
		r, ok := parseProgressRow(row)
		if !ok {
			continue
		}
		summaryByEmail[r.email] = model.ProgressSummary{
			Completed: r.completed,
			Total:     model.TotalSessions,
		}
		if r.details != nil {
			details[r.email] = r.details
		}
	}

	var users []model.User
	for i, row := range dataRows(userGrid) {
		r, ok := parseRosterRow(row)
		if !ok {
			continue
		}

		user := model.User{
			ID:       fmt.Sprintf("u-%d", i),
			Email:    r.email,
			Name:     r.name,
			Role:     r.role,
			Avatar:   model.AvatarGlyph(r.name),
			Skills:   skillsByEmail[r.email],
			Progress: model.ProgressSummary{Completed: 0, Total: model.TotalSessions},
		}
		if summary, ok := summaryByEmail[r.email]; ok {
			user.Progress = summary
		}
		// When the detailed map exists it is authoritative for the count;
		// the summary column only covers rows without a details cell.
		if d, ok := details[r.email]; ok {
			user.ProgressDetails = d
			user.Progress.Completed = model.CountCompleted(d)
		}
		users = append(users, user)
	}

	videos := map[string]string{}
	for _, row := range dataRows(videoGrid) {
		if r, ok := parseVideoRow(row); ok {
			videos[r.key] = r.videoID
		}
	}

	return &model.RosterData{
		Users:   users,
		Videos:  videos,
		Details: details,
	}
}
