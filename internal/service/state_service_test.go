package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"afri_portal_backend/internal/model"
	"afri_portal_backend/internal/util"
)

type fakeFetcher struct {
	data *model.RosterData
	err  error
}

func (f *fakeFetcher) FetchAll(ctx context.Context) (*model.RosterData, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.data, nil
}

type publishCall struct {
	user     model.User
	progress map[string]bool
}

type fakePublisher struct {
	calls chan publishCall
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{calls: make(chan publishCall, 8)}
}

func (f *fakePublisher) Publish(user model.User, progress map[string]bool) {
	f.calls <- publishCall{user: user, progress: progress}
}

type fakeSnapshots struct {
	data    *model.RosterData
	saveErr error
	saves   int
}

func (f *fakeSnapshots) Save(data *model.RosterData) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.data = data
	f.saves++
	return nil
}

func (f *fakeSnapshots) Load() (*model.RosterData, error) {
	return f.data, nil
}

func rosterWith(details map[string]map[string]bool) *model.RosterData {
	users := []model.User{
		{
			ID: "u-0", Email: "ana@x.com", Name: "Ana Torres", Role: "Estudiante",
			Avatar:   "A",
			Progress: model.ProgressSummary{Completed: 0, Total: model.TotalSessions},
		},
		{
			ID: "u-1", Email: "ben@x.com", Name: "Ben Ríos", Role: "Estudiante",
			Avatar:   "B",
			Progress: model.ProgressSummary{Completed: 0, Total: model.TotalSessions},
		},
	}
	for i := range users {
		if d, ok := details[users[i].Email]; ok {
			users[i].ProgressDetails = d
			users[i].Progress.Completed = model.CountCompleted(d)
		}
	}
	return &model.RosterData{
		Users:   users,
		Videos:  map[string]string{"1-1": "https://youtu.be/dQw4w9WgXcQ"},
		Details: details,
	}
}

func newTestState(fetcher *fakeFetcher, publisher *fakePublisher, snapshots *fakeSnapshots) (*StateService, *ProgressService) {
	progress := NewProgressService(newFakeProgressStore())
	state := NewStateService(fetcher, progress, publisher, snapshots, time.Second)
	return state, progress
}

func TestSignInNewUser(t *testing.T) {
	fetcher := &fakeFetcher{data: rosterWith(nil)}
	state, _ := newTestState(fetcher, newFakePublisher(), &fakeSnapshots{})
	if err := state.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	user, err := state.SignIn("ana@x.com")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if user.Progress.Completed != 0 || user.Progress.Total != 12 {
		t.Errorf("new user progress = %+v, want 0/12", user.Progress)
	}

	if _, err := state.SignIn("stranger@x.com"); !errors.Is(err, util.ErrUserNotFound) {
		t.Errorf("unknown email: got %v, want ErrUserNotFound", err)
	}
}

func TestSignInSeedsLocalProgress(t *testing.T) {
	details := map[string]map[string]bool{
		"ana@x.com": {"s1-c1": true, "s1-c2": true},
	}
	fetcher := &fakeFetcher{data: rosterWith(details)}
	state, progress := newTestState(fetcher, newFakePublisher(), &fakeSnapshots{})
	if err := state.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	user, err := state.SignIn("ana@x.com")
	if err != nil {
		t.Fatal(err)
	}
	if user.Progress.Completed != 2 {
		t.Errorf("returning user completed = %d, want 2", user.Progress.Completed)
	}

	local := progress.Load("ana@x.com")
	if !local["s1-c1"] || !local["s1-c2"] {
		t.Errorf("remote details not seeded locally: %v", local)
	}
}

func TestToggleCompletionTwoPhase(t *testing.T) {
	fetcher := &fakeFetcher{data: rosterWith(nil)}
	publisher := newFakePublisher()
	state, progress := newTestState(fetcher, publisher, &fakeSnapshots{})
	if err := state.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := state.SignIn("ana@x.com"); err != nil {
		t.Fatal(err)
	}

	m, status, err := state.ToggleCompletion("ana@x.com", 2, 1)
	if err != nil {
		t.Fatalf("ToggleCompletion: %v", err)
	}
	if !status || !m["s2-c1"] {
		t.Fatalf("toggle did not mark complete: status=%v map=%v", status, m)
	}

	// Phase one is synchronous: durable document and in-memory record agree
	// before the publish lands.
	if local := progress.Load("ana@x.com"); !local["s2-c1"] {
		t.Error("local document missing toggled key")
	}
	if u := state.CurrentUser("ana@x.com"); u.Progress.Completed != 1 {
		t.Errorf("active record completed = %d, want 1", u.Progress.Completed)
	}
	var anaInList *model.User
	for _, u := range state.Users() {
		if u.Email == "ana@x.com" {
			anaInList = &u
			break
		}
	}
	if anaInList == nil || anaInList.Progress.Completed != 1 {
		t.Error("roster list entry not updated by toggle")
	}

	// Phase two: fire-and-forget publish with the full snapshot.
	select {
	case call := <-publisher.calls:
		if call.user.Email != "ana@x.com" {
			t.Errorf("published for %q", call.user.Email)
		}
		if model.CountCompleted(call.progress) != 1 || !call.progress["s2-c1"] {
			t.Errorf("published map wrong: %v", call.progress)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("publisher never invoked")
	}
}

func TestToggleCompletionValidation(t *testing.T) {
	fetcher := &fakeFetcher{data: rosterWith(nil)}
	state, _ := newTestState(fetcher, newFakePublisher(), &fakeSnapshots{})
	if err := state.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	if _, _, err := state.ToggleCompletion("ana@x.com", 7, 1); !errors.Is(err, util.ErrWeekNotFound) {
		t.Errorf("week 7: got %v, want ErrWeekNotFound", err)
	}
	if _, _, err := state.ToggleCompletion("ana@x.com", 1, 3); !errors.Is(err, util.ErrSessionNotFound) {
		t.Errorf("session 3: got %v, want ErrSessionNotFound", err)
	}
	if _, _, err := state.ToggleCompletion("stranger@x.com", 1, 1); !errors.Is(err, util.ErrUserNotFound) {
		t.Errorf("unknown user: got %v, want ErrUserNotFound", err)
	}
}

// slowLoadStore widens the window between loading and saving the document so
// an unserialized read-modify-write would lose one of two concurrent flips.
type slowLoadStore struct {
	*fakeProgressStore
	delay time.Duration
}

func (s *slowLoadStore) LoadRaw(email string) (string, error) {
	time.Sleep(s.delay)
	return s.fakeProgressStore.LoadRaw(email)
}

func TestConcurrentTogglesKeepEveryFlip(t *testing.T) {
	store := &slowLoadStore{fakeProgressStore: newFakeProgressStore(), delay: 10 * time.Millisecond}
	progress := NewProgressService(store)
	fetcher := &fakeFetcher{data: rosterWith(nil)}
	state := NewStateService(fetcher, progress, newFakePublisher(), &fakeSnapshots{}, time.Second)
	if err := state.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := state.SignIn("ana@x.com"); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for session := 1; session <= 2; session++ {
		wg.Add(1)
		go func(session int) {
			defer wg.Done()
			if _, _, err := state.ToggleCompletion("ana@x.com", 1, session); err != nil {
				t.Errorf("toggle session %d: %v", session, err)
			}
		}(session)
	}
	wg.Wait()

	final := progress.Load("ana@x.com")
	if !final["s1-c1"] || !final["s1-c2"] {
		t.Fatalf("a concurrent flip was lost: %v", final)
	}
	if u := state.CurrentUser("ana@x.com"); u.Progress.Completed != 2 {
		t.Errorf("active record completed = %d, want 2", u.Progress.Completed)
	}
}

func TestToggleUnknownUserWritesNothing(t *testing.T) {
	store := newFakeProgressStore()
	progress := NewProgressService(store)
	fetcher := &fakeFetcher{data: rosterWith(nil)}
	state := NewStateService(fetcher, progress, newFakePublisher(), &fakeSnapshots{}, time.Second)
	if err := state.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	if _, _, err := state.ToggleCompletion("stranger@x.com", 1, 1); !errors.Is(err, util.ErrUserNotFound) {
		t.Fatalf("unknown user: got %v, want ErrUserNotFound", err)
	}
	if doc, ok := store.docs["stranger@x.com"]; ok {
		t.Errorf("rejected toggle persisted a document: %q", doc)
	}
}

func TestRefreshFailureKeepsState(t *testing.T) {
	fetcher := &fakeFetcher{data: rosterWith(nil)}
	state, _ := newTestState(fetcher, newFakePublisher(), &fakeSnapshots{})
	if err := state.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	fetcher.err = errors.New("sheets down")
	if err := state.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh error")
	}
	if len(state.Users()) != 2 {
		t.Errorf("failed refresh must keep previous roster, got %d users", len(state.Users()))
	}
}

func TestApplyRefreshReplacesActiveOnlyOnChange(t *testing.T) {
	fetcher := &fakeFetcher{data: rosterWith(nil)}
	state, _ := newTestState(fetcher, newFakePublisher(), &fakeSnapshots{})
	if err := state.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := state.SignIn("ana@x.com"); err != nil {
		t.Fatal(err)
	}

	// Identical refetch: the active record is untouched.
	state.ApplyRefresh(rosterWith(nil))
	if u := state.CurrentUser("ana@x.com"); u.Progress.Completed != 0 {
		t.Errorf("unchanged refresh altered active record: %+v", u.Progress)
	}

	// Remote progress changed: the active record is re-derived.
	state.ApplyRefresh(rosterWith(map[string]map[string]bool{
		"ana@x.com": {"s1-c1": true, "s1-c2": true, "s2-c1": true},
	}))
	if u := state.CurrentUser("ana@x.com"); u.Progress.Completed != 3 {
		t.Errorf("changed refresh not applied: %+v", u.Progress)
	}
}

func TestBootstrapFallsBackToSnapshot(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("sheets down")}
	snapshots := &fakeSnapshots{data: rosterWith(nil)}
	state, _ := newTestState(fetcher, newFakePublisher(), snapshots)

	state.Bootstrap(context.Background())
	if len(state.Users()) != 2 {
		t.Errorf("bootstrap should load the snapshot, got %d users", len(state.Users()))
	}
}

func TestRefreshSavesSnapshot(t *testing.T) {
	fetcher := &fakeFetcher{data: rosterWith(nil)}
	snapshots := &fakeSnapshots{}
	state, _ := newTestState(fetcher, newFakePublisher(), snapshots)

	if err := state.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	if snapshots.saves != 1 {
		t.Errorf("snapshot saves = %d, want 1", snapshots.saves)
	}
}

func TestSignOutClearsLocalProgress(t *testing.T) {
	details := map[string]map[string]bool{
		"ana@x.com": {"s1-c1": true},
	}
	fetcher := &fakeFetcher{data: rosterWith(details)}
	state, progress := newTestState(fetcher, newFakePublisher(), &fakeSnapshots{})
	if err := state.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := state.SignIn("ana@x.com"); err != nil {
		t.Fatal(err)
	}

	state.SignOut("ana@x.com")
	if local := progress.Load("ana@x.com"); len(local) != 0 {
		t.Errorf("sign-out must clear the local document, got %v", local)
	}

	// Next sign-in re-seeds from the remote copy.
	if _, err := state.SignIn("ana@x.com"); err != nil {
		t.Fatal(err)
	}
	if local := progress.Load("ana@x.com"); !local["s1-c1"] {
		t.Errorf("re-sign-in did not re-seed: %v", local)
	}
}

func TestPollerStartStop(t *testing.T) {
	fetcher := &fakeFetcher{data: rosterWith(nil)}
	state, _ := newTestState(fetcher, newFakePublisher(), &fakeSnapshots{})

	state.Start()
	state.Stop()
	// Stop with no running poller is a no-op.
	state.Stop()
}
