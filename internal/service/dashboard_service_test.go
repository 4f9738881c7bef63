package service

import (
	"context"
	"errors"
	"testing"

	"afri_portal_backend/internal/util"
)

func TestGetDashboard(t *testing.T) {
	fetcher := &fakeFetcher{data: rosterWith(nil)}
	state, progress := newTestState(fetcher, newFakePublisher(), &fakeSnapshots{})
	if err := state.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := state.SignIn("ana@x.com"); err != nil {
		t.Fatal(err)
	}

	svc := NewDashboardService(state, progress)

	// Both sessions of week 1 plus one of week 2.
	for _, toggle := range [][2]int{{1, 1}, {1, 2}, {2, 1}} {
		if _, _, err := state.ToggleCompletion("ana@x.com", toggle[0], toggle[1]); err != nil {
			t.Fatal(err)
		}
	}

	d, err := svc.GetDashboard("ana@x.com")
	if err != nil {
		t.Fatalf("GetDashboard: %v", err)
	}
	if d.User.Progress.Completed != 3 {
		t.Errorf("completed = %d, want 3", d.User.Progress.Completed)
	}
	if d.Percentage != 25 {
		t.Errorf("percentage = %d, want 25", d.Percentage)
	}
	if len(d.Weeks) != 6 {
		t.Fatalf("got %d weeks, want 6", len(d.Weeks))
	}
	if d.Weeks[0].Completed != 2 || d.Weeks[0].Total != 2 {
		t.Errorf("week 1 = %d/%d, want 2/2", d.Weeks[0].Completed, d.Weeks[0].Total)
	}
	if d.Weeks[1].Completed != 1 {
		t.Errorf("week 2 completed = %d, want 1", d.Weeks[1].Completed)
	}
	if d.Weeks[5].Completed != 0 {
		t.Errorf("week 6 completed = %d, want 0", d.Weeks[5].Completed)
	}
}

func TestGetDashboardUnknownUser(t *testing.T) {
	fetcher := &fakeFetcher{data: rosterWith(nil)}
	state, progress := newTestState(fetcher, newFakePublisher(), &fakeSnapshots{})
	svc := NewDashboardService(state, progress)

	if _, err := svc.GetDashboard("stranger@x.com"); !errors.Is(err, util.ErrUserNotFound) {
		t.Errorf("got %v, want ErrUserNotFound", err)
	}
}
