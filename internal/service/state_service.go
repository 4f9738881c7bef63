package service

import (
	"context"
	"reflect"
	"sync"
	"time"

	"afri_portal_backend/internal/model"
	"afri_portal_backend/internal/util"
	"afri_portal_backend/pkg/logger"
	"afri_portal_backend/pkg/monitoring"

	"go.uber.org/zap"
)

type rosterFetcher interface {
	FetchAll(ctx context.Context) (*model.RosterData, error)
}

type progressPublisher interface {
	Publish(user model.User, progress map[string]bool)
}

type snapshotStore interface {
	Save(data *model.RosterData) error
	Load() (*model.RosterData, error)
}

// StateService is the single holder of in-memory portal state: the latest
// roster, the video map and the active (signed-in) user records. All mutation
// goes through its methods under one lock; callers only ever see copies.
type StateService struct {
	fetcher   rosterFetcher
	progress  *ProgressService
	publisher progressPublisher
	snapshots snapshotStore

	mu      sync.RWMutex
	users   []model.User
	videos  map[string]string
	details map[string]map[string]bool
	active  map[string]*model.User

	pollInterval time.Duration
	cancel       context.CancelFunc
	done         chan struct{}
}

func NewStateService(fetcher rosterFetcher, progress *ProgressService, publisher progressPublisher, snapshots snapshotStore, pollInterval time.Duration) *StateService {
	if pollInterval <= 0 {
		pollInterval = 10 * time.Second
	}
	return &StateService{
		fetcher:      fetcher,
		progress:     progress,
		publisher:    publisher,
		snapshots:    snapshots,
		videos:       map[string]string{},
		details:      map[string]map[string]bool{},
		active:       map[string]*model.User{},
		pollInterval: pollInterval,
	}
}

// Bootstrap does the first blocking refresh. If the remote store is down it
// falls back to the last persisted snapshot so the portal starts with stale
// data instead of an empty roster.
func (s *StateService) Bootstrap(ctx context.Context) {
	if err := s.Refresh(ctx); err == nil {
		return
	}

	if s.snapshots == nil {
		return
	}
	data, err := s.snapshots.Load()
	if err != nil {
		logger.Log.Warn("roster snapshot load failed", zap.Error(err))
		return
	}
	if data == nil {
		logger.Log.Warn("remote store unreachable and no roster snapshot available")
		return
	}
	logger.Log.Info("starting from roster snapshot", zap.Int("users", len(data.Users)))
	s.ApplyRefresh(data)
}

// Start launches the background poller. Stop cancels it and waits for exit.
func (s *StateService) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.Refresh(ctx); err != nil {
					logger.Log.Warn("background roster refresh failed", zap.Error(err))
				}
			}
		}
	}()
}

func (s *StateService) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.cancel = nil
}

// Refresh fetches the roster and swaps it in. On failure the previous state
// stays untouched.
func (s *StateService) Refresh(ctx context.Context) error {
	data, err := s.fetcher.FetchAll(ctx)
	if err != nil {
		monitoring.RosterRefreshCounter.WithLabelValues("failure").Inc()
		return err
	}
	monitoring.RosterRefreshCounter.WithLabelValues("success").Inc()

	s.ApplyRefresh(data)

	if s.snapshots != nil {
		if err := s.snapshots.Save(data); err != nil {
			logger.Log.Warn("roster snapshot save failed", zap.Error(err))
		}
	}
	return nil
}

// ApplyRefresh installs a new roster. Active user records are replaced only
// when their progress actually changed remotely, so an unchanged refetch
// never churns a signed-in record.
func (s *StateService) ApplyRefresh(data *model.RosterData) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = data.Users
	s.videos = data.Videos
	s.details = data.Details

	for email, current := range s.active {
		fresh := findUser(s.users, email)
		if fresh == nil {
			continue
		}
		if progressChanged(current, fresh) {
			copied := *fresh
			s.active[email] = &copied
		}
	}
}

func progressChanged(a, b *model.User) bool {
	return a.Progress != b.Progress || !reflect.DeepEqual(a.ProgressDetails, b.ProgressDetails)
}

func findUser(users []model.User, email string) *model.User {
	for i := range users {
		if users[i].Email == email {
			return &users[i]
		}
	}
	return nil
}

// SignIn resolves the email against the roster, seeds the local progress
// document from the remote copy and marks the user active.
func (s *StateService) SignIn(email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.users) == 0 {
		return nil, util.ErrRosterUnavailable
	}
	u := findUser(s.users, email)
	if u == nil {
		return nil, util.ErrUserNotFound
	}

	s.progress.Seed(email, s.details[email])

	copied := *u
	s.active[email] = &copied
	out := copied
	return &out, nil
}

// SignOut drops the active record and the local progress document; the next
// sign-in re-seeds from whatever the remote store has.
func (s *StateService) SignOut(email string) {
	s.mu.Lock()
	delete(s.active, email)
	s.mu.Unlock()

	s.progress.Clear(email)
}

// CurrentUser returns the active record for the email, activating it from the
// roster when a valid token outlives the in-memory session.
func (s *StateService) CurrentUser(email string) *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.active[email]; ok {
		out := *u
		return &out
	}

	u := findUser(s.users, email)
	if u == nil {
		return nil
	}
	copied := *u
	s.active[email] = &copied
	out := copied
	return &out
}

func (s *StateService) Users() []model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.User, len(s.users))
	copy(out, s.users)
	return out
}

func (s *StateService) Videos() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.videos))
	for k, v := range s.videos {
		out[k] = v
	}
	return out
}

// ToggleCompletion runs the two-phase save: the local commit (durable document
// plus in-memory user record) completes synchronously, then the remote publish
// runs fire-and-forget. A publish failure never rolls back phase one.
// The load-flip-save of the blob happens under the state mutex so concurrent
// toggles for the same user serialize instead of erasing each other's flips.
func (s *StateService) ToggleCompletion(email string, weekID, sessionNumber int) (map[string]bool, bool, error) {
	week := model.WeekByID(weekID)
	if week == nil {
		return nil, false, util.ErrWeekNotFound
	}
	if week.SessionByNumber(sessionNumber) == nil {
		return nil, false, util.ErrSessionNotFound
	}

	s.mu.Lock()
	u, ok := s.active[email]
	if !ok {
		if fromRoster := findUser(s.users, email); fromRoster != nil {
			copied := *fromRoster
			s.active[email] = &copied
			u = &copied
		}
	}
	if u == nil {
		s.mu.Unlock()
		return nil, false, util.ErrUserNotFound
	}

	progress, status := s.progress.Toggle(email, weekID, sessionNumber)

	updated := *u
	updated.Progress = model.ProgressSummary{
		Completed: model.CountCompleted(progress),
		Total:     model.TotalSessions,
	}
	updated.ProgressDetails = cloneProgress(progress)
	s.active[email] = &updated
	for i := range s.users {
		if s.users[i].Email == email {
			s.users[i] = updated
		}
	}
	snapshot := updated
	s.mu.Unlock()

	go s.publisher.Publish(snapshot, cloneProgress(progress))

	return progress, status, nil
}

func cloneProgress(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
