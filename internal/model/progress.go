package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ProgressKey is the composite key used everywhere a class completion bit is
// stored: "s{week}-c{session}", e.g. "s1-c2".
func ProgressKey(weekID, sessionNumber int) string {
	return fmt.Sprintf("s%d-c%d", weekID, sessionNumber)
}

// VideoKey addresses the video map assembled from the videos sheet:
// "{week}-{session}".
func VideoKey(weekID, sessionNumber int) string {
	return fmt.Sprintf("%d-%d", weekID, sessionNumber)
}

// NormalizeSessionLabel folds the session cell of the videos sheet onto the
// bare session number: "Clase 1", "clase1" and "CLASE 1" all become "1".
func NormalizeSessionLabel(label string) string {
	s := strings.ToLower(label)
	s = strings.Replace(s, "clase", "", 1)
	return strings.TrimSpace(s)
}

// CountCompleted counts the true entries of a completion map. This is the
// single definition of "completed" used for dashboards and remote writes.
func CountCompleted(m map[string]bool) int {
	n := 0
	for _, done := range m {
		if done {
			n++
		}
	}
	return n
}

// ParseProgressMap decodes a JSON completion map, the format stored both in
// the progress sheet cell and in the local blob.
func ParseProgressMap(raw string) (map[string]bool, error) {
	var m map[string]bool
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, err
	}
	if m == nil {
		m = map[string]bool{}
	}
	return m, nil
}

// SerializeProgressMap is the inverse of ParseProgressMap.
func SerializeProgressMap(m map[string]bool) string {
	data, _ := json.Marshal(m)
	return string(data)
}

// UserProgress is the durable per-user completion map, written whole on every
// toggle. It is the server-side analog of the portal's localStorage key.
type UserProgress struct {
	Email     string    `gorm:"size:100;primaryKey" json:"email"`
	Data      string    `gorm:"type:longtext" json:"data"`
	Completed int       `gorm:"default:0" json:"completed"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (UserProgress) TableName() string {
	return "user_progress"
}

// RosterSnapshot caches the last successful remote refresh so a restart during
// a remote outage still comes up with stale-but-usable data.
type RosterSnapshot struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Data      string    `gorm:"type:longtext" json:"data"`
	FetchedAt time.Time `json:"fetchedAt"`
}

func (RosterSnapshot) TableName() string {
	return "roster_snapshots"
}

// RosterData is one fully assembled remote refresh: the roster in sheet order,
// the video map, and the per-email detailed completion maps.
type RosterData struct {
	Users   []User                     `json:"users"`
	Videos  map[string]string          `json:"videos"`
	Details map[string]map[string]bool `json:"details"`
}
