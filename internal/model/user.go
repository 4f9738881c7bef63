package model

import "strings"

const (
	// DefaultRole is assigned when the roster sheet leaves the role column blank.
	DefaultRole = "Estudiante"

	// TotalSessions is the fixed size of the program: 6 weeks, 2 classes each.
	TotalSessions = 12
)

// Skills are the three 0-100 scores tracked per learner in the skills sheet.
type Skills struct {
	Prompting int `json:"prompting"`
	Tools     int `json:"tools"`
	Analysis  int `json:"analysis"`
}

// ProgressSummary is the headline completion counter shown on the dashboard.
type ProgressSummary struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// User is one learner as assembled from the remote roster. Email is the
// natural key; the roster holds exactly one record per email. ProgressDetails
// is the optional per-class completion map stored as JSON in the sheet.
type User struct {
	ID              string          `json:"id"`
	Email           string          `json:"email"`
	Name            string          `json:"name"`
	Role            string          `json:"role"`
	Avatar          string          `json:"avatar"`
	Skills          Skills          `json:"stats"`
	Progress        ProgressSummary `json:"progress"`
	ProgressDetails map[string]bool `json:"progress_details,omitempty"`
}

// AvatarGlyph derives the display avatar: the first rune of the name, uppercased.
func AvatarGlyph(name string) string {
	for _, r := range name {
		return strings.ToUpper(string(r))
	}
	return ""
}
