package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"afri_portal_backend/internal/config"
)

type sheetFixture struct {
	users    [][]string
	skills   [][]string
	progress [][]string
	videos   [][]string
	failOn   string
}

func newSheetsServer(t *testing.T, fx sheetFixture) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(r.URL.Path, "/")
		rangeName := parts[len(parts)-1]

		if rangeName == fx.failOn {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}

		var grid [][]string
		switch rangeName {
		case "Usuarios":
			grid = fx.users
		case "Habilidades":
			grid = fx.skills
		case "Progreso":
			grid = fx.progress
		case "Videos":
			grid = fx.videos
		default:
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(valuesResponse{Values: grid})
	}))
}

func sheetsConfigFor(server *httptest.Server) config.SheetsConfig {
	return config.SheetsConfig{
		BaseURL:       server.URL,
		SpreadsheetID: "sheet-id",
		APIKey:        "test-key",
		UsersRange:    "Usuarios",
		SkillsRange:   "Habilidades",
		ProgressRange: "Progreso",
		VideosRange:   "Videos",
	}
}

func TestFetchAllAssemblesRoster(t *testing.T) {
	fx := sheetFixture{
		users: [][]string{
			{"Email", "Nombre", "Rol"},
			{"ana@x.com", "Ana Torres", "Estudiante"},
			{"ben@x.com", "Ben Ríos"},
			{"", "Sin Email"},
			{"carla@x.com", "Carla Díaz", "Mentora"},
		},
		skills: [][]string{
			{"Email", "?", "?", "Prompting", "Tools", "Analysis"},
			{"ana@x.com", "", "", "80", "60", "40"},
			{"carla@x.com", "", "", "bad", "90", ""},
		},
		progress: [][]string{
			{"Email", "", "", "", "", "Completadas", "", "JSON"},
			{"ana@x.com", "", "", "", "", "3", "", `{"s1-c1":true,"s1-c2":true,"s2-c1":false}`},
			{"ben@x.com", "", "", "", "", "5", "", ""},
		},
		videos: [][]string{
			{"", "Semana", "Clase", "Video"},
			{"", "1", "Clase 1", "https://youtu.be/dQw4w9WgXcQ"},
			{"", "1", "clase2", "https://youtu.be/abcdefghijk"},
			{"", "2", "CLASE 1", "https://youtu.be/lmnopqrstuv"},
			{"", "", "Clase 1", "skipped"},
		},
	}
	server := newSheetsServer(t, fx)
	defer server.Close()

	svc := NewSheetsService(sheetsConfigFor(server))
	data, err := svc.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}

	if len(data.Users) != 3 {
		t.Fatalf("got %d users, want 3 (malformed row skipped)", len(data.Users))
	}

	ana := data.Users[0]
	if ana.Email != "ana@x.com" || ana.Name != "Ana Torres" {
		t.Fatalf("unexpected first user: %+v", ana)
	}
	if ana.Avatar != "A" {
		t.Errorf("avatar = %q, want A", ana.Avatar)
	}
	if ana.Skills.Prompting != 80 || ana.Skills.Tools != 60 || ana.Skills.Analysis != 40 {
		t.Errorf("unexpected skills: %+v", ana.Skills)
	}
	// Details cell has 2 true entries; the summary column (3) loses.
	if ana.Progress.Completed != 2 || ana.Progress.Total != 12 {
		t.Errorf("progress = %+v, want 2/12 derived from details", ana.Progress)
	}
	if ana.ProgressDetails == nil || !ana.ProgressDetails["s1-c1"] {
		t.Errorf("details not attached: %v", ana.ProgressDetails)
	}

	ben := data.Users[1]
	if ben.Role != "Estudiante" {
		t.Errorf("blank role should default, got %q", ben.Role)
	}
	// No details cell: the summary column stands.
	if ben.Progress.Completed != 5 {
		t.Errorf("ben completed = %d, want 5 from summary column", ben.Progress.Completed)
	}
	if ben.ProgressDetails != nil {
		t.Errorf("ben should have no details, got %v", ben.ProgressDetails)
	}

	carla := data.Users[2]
	if carla.Role != "Mentora" {
		t.Errorf("explicit role lost, got %q", carla.Role)
	}
	if carla.Skills.Prompting != 0 || carla.Skills.Tools != 90 {
		t.Errorf("non-numeric skill should default to 0: %+v", carla.Skills)
	}
	if carla.Progress.Completed != 0 || carla.Progress.Total != 12 {
		t.Errorf("user without progress row should get 0/12, got %+v", carla.Progress)
	}
}

func TestFetchAllVideoKeyNormalization(t *testing.T) {
	fx := sheetFixture{
		users:    [][]string{{"h"}, {"ana@x.com", "Ana"}},
		skills:   [][]string{{"h"}},
		progress: [][]string{{"h"}},
		videos: [][]string{
			{"h", "h", "h", "h"},
			{"", "1", "Clase 1", "https://youtu.be/aaaaaaaaaaa"},
			{"", "1", "clase1", "https://youtu.be/bbbbbbbbbbb"},
			{"", "1", "  CLASE 1 ", "https://youtu.be/ccccccccccc"},
		},
	}
	server := newSheetsServer(t, fx)
	defer server.Close()

	svc := NewSheetsService(sheetsConfigFor(server))
	data, err := svc.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}

	// All three label spellings collapse onto the same key; last row wins.
	if len(data.Videos) != 1 {
		t.Fatalf("got %d video entries, want 1: %v", len(data.Videos), data.Videos)
	}
	if data.Videos["1-1"] != "https://youtu.be/ccccccccccc" {
		t.Errorf("unexpected winner for key 1-1: %q", data.Videos["1-1"])
	}
}

func TestFetchAllFailsClosed(t *testing.T) {
	fx := sheetFixture{
		users:    [][]string{{"h"}, {"ana@x.com", "Ana"}},
		skills:   [][]string{{"h"}},
		progress: [][]string{{"h"}},
		videos:   [][]string{{"h"}},
		failOn:   "Progreso",
	}
	server := newSheetsServer(t, fx)
	defer server.Close()

	svc := NewSheetsService(sheetsConfigFor(server))
	if _, err := svc.FetchAll(context.Background()); err == nil {
		t.Fatal("one failing range must fail the whole refresh")
	}
}

func TestFetchAllInvalidDetailsCellKeptAsSummary(t *testing.T) {
	fx := sheetFixture{
		users:    [][]string{{"h"}, {"ana@x.com", "Ana"}},
		skills:   [][]string{{"h"}},
		progress: [][]string{
			{"h"},
			{"ana@x.com", "", "", "", "", "4", "", "{broken"},
		},
		videos: [][]string{{"h"}},
	}
	server := newSheetsServer(t, fx)
	defer server.Close()

	svc := NewSheetsService(sheetsConfigFor(server))
	data, err := svc.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}

	ana := data.Users[0]
	if ana.ProgressDetails != nil {
		t.Errorf("broken details cell must not attach a map: %v", ana.ProgressDetails)
	}
	if ana.Progress.Completed != 4 {
		t.Errorf("summary column should survive a broken details cell, got %d", ana.Progress.Completed)
	}
}
