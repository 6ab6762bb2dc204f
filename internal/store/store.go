// Package store holds one session's cache of backend entities. Every
// mutation goes to the backend first and is followed by a full reload of
// all seven collections.
package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"taskflow-gateway/internal/backend"
	"taskflow-gateway/internal/entities"
	"taskflow-gateway/internal/transformers"
	"taskflow-gateway/pkg/config"
	apperrors "taskflow-gateway/pkg/errors"
	"taskflow-gateway/pkg/eventbus"
)

// Backend is the slice of backend.Client the store drives.
type Backend interface {
	Services(ctx context.Context) ([]entities.Service, error)
	Tasks(ctx context.Context) ([]entities.Task, error)
	Projects(ctx context.Context) ([]entities.Project, error)
	Notifications(ctx context.Context) ([]entities.Notification, error)
	EmployeeLoans(ctx context.Context) ([]entities.EmployeeLoan, error)
	UrgencyModes(ctx context.Context) ([]entities.UrgencyMode, error)
	Users(ctx context.Context) ([]entities.User, error)

	CreateTask(ctx context.Context, payload map[string]any) (entities.Task, error)
	UpdateTask(ctx context.Context, id string, payload map[string]any) (entities.Task, error)
	DeleteTask(ctx context.Context, id string) error

	CreateProject(ctx context.Context, payload map[string]any) (entities.Project, error)
	UpdateProject(ctx context.Context, id string, payload map[string]any) (entities.Project, error)
	DeleteProject(ctx context.Context, id string) error

	CreateService(ctx context.Context, payload map[string]any) (entities.Service, error)
	UpdateService(ctx context.Context, id string, payload map[string]any) (entities.Service, error)
	DeleteService(ctx context.Context, id string) error

	Register(ctx context.Context, u transformers.NewUser) (*entities.User, error)
	UpdateUser(ctx context.Context, id string, payload map[string]any) (entities.User, error)

	CreateComment(ctx context.Context, taskID string, payload map[string]any) (entities.Comment, error)
	UpdateComment(ctx context.Context, taskID, commentID string, payload map[string]any) (entities.Comment, error)
	DeleteComment(ctx context.Context, taskID, commentID string) error

	UploadAttachment(ctx context.Context, up backend.Upload) (entities.Attachment, error)
	DeleteAttachment(ctx context.Context, id string) error

	CreateNotification(ctx context.Context, n entities.Notification) (entities.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) (entities.Notification, error)
	DeleteNotification(ctx context.Context, id string) error

	CreateEmployeeLoan(ctx context.Context, payload map[string]any) (entities.EmployeeLoan, error)
	UpdateEmployeeLoan(ctx context.Context, id string, payload map[string]any) (entities.EmployeeLoan, error)

	ActivateUrgencyMode(ctx context.Context, payload map[string]any) (entities.UrgencyMode, error)
	DeactivateUrgencyMode(ctx context.Context, id string, at time.Time) (entities.UrgencyMode, error)
}

// Notifier raises the notifications that follow a mutation. notify.Dispatcher
// implements it.
type Notifier interface {
	TaskAssigned(ctx context.Context, actorID string, task entities.Task, userIDs []string) error
	CommentMention(ctx context.Context, comment entities.Comment, task entities.Task, usernames []string, users []entities.User) error
	DeadlineApproaching(ctx context.Context, task entities.Task, now time.Time) error
}

// Publisher is the event bus.
type Publisher interface {
	Publish(ctx context.Context, event eventbus.Event)
}

type Collection string

const (
	CollectionServices      Collection = "services"
	CollectionTasks         Collection = "tasks"
	CollectionProjects      Collection = "projects"
	CollectionNotifications Collection = "notifications"
	CollectionEmployeeLoans Collection = "employee_loans"
	CollectionUrgencyModes  Collection = "urgency_modes"
	CollectionUsers         Collection = "users"
)

var Collections = []Collection{
	CollectionServices, CollectionTasks, CollectionProjects, CollectionNotifications,
	CollectionEmployeeLoans, CollectionUrgencyModes, CollectionUsers,
}

type State string

const (
	StateUninitialized State = "uninitialized"
	StateLoading       State = "loading"
	StateReady         State = "ready"
)

// Snapshot is a copy of the seven cached collections.
type Snapshot struct {
	Services      []entities.Service      `json:"services"`
	Tasks         []entities.Task         `json:"tasks"`
	Projects      []entities.Project      `json:"projects"`
	Notifications []entities.Notification `json:"notifications"`
	EmployeeLoans []entities.EmployeeLoan `json:"employeeLoans"`
	UrgencyModes  []entities.UrgencyMode  `json:"urgencyModes"`
	Users         []entities.User         `json:"users"`
}

func (s Snapshot) clone() Snapshot {
	return Snapshot{
		Services:      slices.Clone(s.Services),
		Tasks:         slices.Clone(s.Tasks),
		Projects:      slices.Clone(s.Projects),
		Notifications: slices.Clone(s.Notifications),
		EmployeeLoans: slices.Clone(s.EmployeeLoans),
		UrgencyModes:  slices.Clone(s.UrgencyModes),
		Users:         slices.Clone(s.Users),
	}
}

type Option func(*Store)

func WithPublisher(p Publisher) Option {
	return func(s *Store) { s.publisher = p }
}

// WithSessionID tags published events with the owning session.
func WithSessionID(id string) Option {
	return func(s *Store) { s.sessionID = id }
}

type Store struct {
	backend   Backend
	notifier  Notifier
	deduper   Deduper
	now       func() time.Time
	cfg       config.SyncConfig
	logger    *zap.Logger
	publisher Publisher
	sessionID string

	mu         sync.RWMutex
	user       *entities.User
	data       Snapshot
	states     map[Collection]State
	loaded     map[Collection]bool
	lastErr    error
	generation uint64
	stale      uint64

	stopScanner context.CancelFunc
	scannerDone chan struct{}
}

// New builds an uninitialised store. A nil deduper means NoDedup; a nil
// clock means time.Now.
func New(b Backend, n Notifier, d Deduper, clock func() time.Time, cfg config.SyncConfig, logger *zap.Logger, opts ...Option) *Store {
	if d == nil || !cfg.DeduplicateDeadlines {
		d = NoDedup{}
	}
	if clock == nil {
		clock = time.Now
	}
	if cfg.DeadlineWindow <= 0 {
		cfg.DeadlineWindow = 24 * time.Hour
	}
	s := &Store{
		backend:  b,
		notifier: n,
		deduper:  d,
		now:      clock,
		cfg:      cfg,
		logger:   logger.Named("data_store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.resetStates()
	return s
}

func (s *Store) resetStates() {
	s.states = make(map[Collection]State, len(Collections))
	s.loaded = make(map[Collection]bool, len(Collections))
	for _, c := range Collections {
		s.states[c] = StateUninitialized
	}
}

// Init performs the first full load for user and starts the deadline
// scanner. It is a no-op when the store is already initialised.
func (s *Store) Init(ctx context.Context, user *entities.User) error {
	if user == nil {
		return apperrors.ErrNoUser
	}

	s.mu.Lock()
	if s.user != nil {
		s.mu.Unlock()
		return nil
	}
	u := *user
	s.user = &u
	s.mu.Unlock()

	s.logger.Info("initialising data store", zap.String("user", u.Username))
	if err := s.Refresh(ctx); err != nil {
		return err
	}
	s.startScanner()
	return nil
}

// Teardown stops the timers and forgets every cached entity. A reload in
// flight is discarded when it completes.
func (s *Store) Teardown() {
	s.mu.Lock()
	stop, done := s.stopScanner, s.scannerDone
	s.stopScanner, s.scannerDone = nil, nil
	s.user = nil
	s.data = Snapshot{}
	s.lastErr = nil
	s.generation++
	s.resetStates()
	s.mu.Unlock()

	if stop != nil {
		stop()
		<-done
	}
	s.logger.Info("data store torn down")
}

func (s *Store) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// User returns a copy of the session user, nil before Init.
func (s *Store) User() *entities.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// SetUser replaces the session user after a profile update.
func (s *Store) SetUser(u entities.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user != nil {
		s.user = &u
	}
}

func (s *Store) State() map[Collection]State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[Collection]State, len(s.states))
	for k, v := range s.states {
		out[k] = v
	}
	return out
}

// Ready reports whether every collection has finished loading at least once.
func (s *Store) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, st := range s.states {
		if st != StateReady {
			return false
		}
	}
	return true
}

// LastError is the aggregated fetch failure of the latest applied reload.
func (s *Store) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// StaleReloads counts reloads discarded because a newer one had started.
func (s *Store) StaleReloads() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stale
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.clone()
}

func (s *Store) Tasks() []entities.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.data.Tasks)
}

func (s *Store) Projects() []entities.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.data.Projects)
}

func (s *Store) Users() []entities.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.data.Users)
}

func (s *Store) Services() []entities.Service {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.data.Services)
}

func (s *Store) Notifications() []entities.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.data.Notifications)
}

func (s *Store) FindTask(id string) (entities.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.data.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return entities.Task{}, false
}

func (s *Store) FindProject(id string) (entities.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.data.Projects {
		if p.ID == id {
			return p, true
		}
	}
	return entities.Project{}, false
}

func (s *Store) FindUser(id string) (entities.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.data.Users {
		if u.ID == id {
			return u, true
		}
	}
	return entities.User{}, false
}

func (s *Store) FindUserByUsername(username string) (entities.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.data.Users {
		if u.Username == username {
			return u, true
		}
	}
	return entities.User{}, false
}
