// Package session owns the per-login state of the gateway: the backend
// client with its tokens, the data store and the message poller.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"taskflow-gateway/internal/authz"
	"taskflow-gateway/internal/backend"
	"taskflow-gateway/internal/entities"
	"taskflow-gateway/internal/events"
	"taskflow-gateway/internal/messages"
	"taskflow-gateway/internal/notify"
	"taskflow-gateway/internal/store"
	"taskflow-gateway/pkg/config"
	apperrors "taskflow-gateway/pkg/errors"
	"taskflow-gateway/pkg/eventbus"
	"taskflow-gateway/pkg/service"
)

type Publisher interface {
	Publish(ctx context.Context, event eventbus.Event)
}

// Session is one logged-in browser.
type Session struct {
	ID     string
	Client *backend.Client
	Store  *store.Store
	Poller *messages.Poller
}

func (s *Session) close() {
	s.Poller.Stop()
	s.Store.Teardown()
}

type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

type LoginResult struct {
	Tokens
	User        entities.User         `json:"user"`
	Permissions authz.UserPermissions `json:"permissions"`
}

type Option func(*Manager)

func WithHTTPClient(hc *http.Client) Option {
	return func(m *Manager) { m.httpClient = hc }
}

func WithClock(clock func() time.Time) Option {
	return func(m *Manager) { m.clock = clock }
}

type Manager struct {
	cfg        *config.Config
	tokens     backend.TokenStore
	deduper    store.Deduper
	bus        Publisher
	jwt        service.JWTService
	logger     *zap.Logger
	httpClient *http.Client
	clock      func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
	restores singleflight.Group
}

// NewManager builds a manager. deduper and bus may be nil.
func NewManager(cfg *config.Config, tokens backend.TokenStore, deduper store.Deduper, bus Publisher, jwt service.JWTService, logger *zap.Logger, opts ...Option) *Manager {
	m := &Manager{
		cfg:      cfg,
		tokens:   tokens,
		deduper:  deduper,
		bus:      bus,
		jwt:      jwt,
		logger:   logger.Named("sessions"),
		clock:    time.Now,
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) newSession(id string) *Session {
	logger := m.logger.With(zap.String("session", id))

	clientOpts := []backend.Option{backend.WithUnauthorizedHook(m.onUnauthorized)}
	if m.httpClient != nil {
		clientOpts = append(clientOpts, backend.WithHTTPClient(m.httpClient))
	}
	client := backend.New(m.cfg.Backend.BaseURL, m.cfg.Backend.Timeout, id, m.tokens, logger, clientOpts...)

	var storeOpts []store.Option
	var dispatcherBus notify.Publisher
	if m.bus != nil {
		storeOpts = append(storeOpts, store.WithPublisher(m.bus))
		dispatcherBus = m.bus
	}
	storeOpts = append(storeOpts, store.WithSessionID(id))

	dispatcher := notify.NewDispatcher(client, dispatcherBus, logger)
	st := store.New(client, dispatcher, m.deduper, m.clock, m.cfg.Sync, logger, storeOpts...)

	sess := &Session{ID: id, Client: client, Store: st}
	sess.Poller = messages.NewPoller(client, m.cfg.Sync.MessagePollInterval, func(conversationID string, msgs []entities.Message) {
		u := st.User()
		if u == nil || m.bus == nil {
			return
		}
		m.bus.Publish(context.Background(), events.MessagesPolledEvent{
			UserID:         u.ID,
			ConversationID: conversationID,
			Messages:       msgs,
		})
	}, logger)
	return sess
}

// PublicClient serves the backend calls that need no session.
func (m *Manager) PublicClient() *backend.Client {
	var opts []backend.Option
	if m.httpClient != nil {
		opts = append(opts, backend.WithHTTPClient(m.httpClient))
	}
	return backend.New(m.cfg.Backend.BaseURL, m.cfg.Backend.Timeout, "", m.tokens, m.logger, opts...)
}

// Login authenticates against the backend, loads the session's data and
// issues the gateway token pair.
func (m *Manager) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, apperrors.NewInvalidInputError("username and password are required")
	}
	id := uuid.NewString()
	sess := m.newSession(id)

	embedded, err := sess.Client.Login(ctx, username, password)
	if err != nil {
		m.logger.Warn("backend login failed", zap.String("username", username), zap.Error(err))
		return nil, err
	}
	me, err := sess.Client.Me(ctx)
	if err != nil {
		if embedded == nil {
			_ = sess.Client.Logout(ctx)
			return nil, fmt.Errorf("failed to load current user: %w", err)
		}
		m.logger.Warn("falling back to the user embedded in the login response", zap.Error(err))
		me = *embedded
	}
	if err := sess.Store.Init(ctx, &me); err != nil {
		sess.close()
		_ = sess.Client.Logout(ctx)
		return nil, err
	}

	tokens, err := m.issue(id, me.ID)
	if err != nil {
		sess.close()
		_ = sess.Client.Logout(ctx)
		return nil, err
	}

	m.mu.Lock()
	m.sessions[id] = sess
	m.mu.Unlock()
	m.logger.Info("session opened", zap.String("session", id), zap.String("user", me.Username))

	return &LoginResult{Tokens: *tokens, User: me, Permissions: authz.For(&me).Summary()}, nil
}

func (m *Manager) issue(sessionID, userID string) (*Tokens, error) {
	access, refresh, err := m.jwt.GenerateTokens(sessionID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session tokens: %w", err)
	}
	return &Tokens{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(m.jwt.GetAccessTokenTTL().Seconds()),
	}, nil
}

// tokenToucher is implemented by token stores with expiring entries;
// repositories.TokenRepository is one.
type tokenToucher interface {
	Touch(ctx context.Context, sessionID string) (bool, error)
}

// Get returns the live session for claims. After a gateway restart the
// session is rebuilt from the backend tokens kept in the token store.
func (m *Manager) Get(ctx context.Context, claims *service.SessionClaims) (*Session, error) {
	if claims == nil {
		return nil, apperrors.ErrUnauthorized
	}
	m.mu.Lock()
	sess, ok := m.sessions[claims.SessionID]
	m.mu.Unlock()
	if ok {
		return sess, nil
	}

	v, err, _ := m.restores.Do(claims.SessionID, func() (interface{}, error) {
		return m.restore(ctx, claims.SessionID, claims.UserID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

func (m *Manager) restore(ctx context.Context, id, userID string) (*Session, error) {
	m.mu.Lock()
	if sess, ok := m.sessions[id]; ok {
		m.mu.Unlock()
		return sess, nil
	}
	m.mu.Unlock()

	if _, err := m.tokens.Get(ctx, id); err != nil {
		if errors.Is(err, apperrors.ErrSessionNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}
	sess := m.newSession(id)
	me, err := sess.Client.Me(ctx)
	if err != nil {
		return nil, err
	}
	if me.ID != userID {
		m.logger.Warn("session token user mismatch", zap.String("session", id))
		return nil, apperrors.ErrUnauthorized
	}
	if err := sess.Store.Init(ctx, &me); err != nil {
		sess.close()
		return nil, err
	}

	if t, ok := m.tokens.(tokenToucher); ok {
		if _, err := t.Touch(ctx, id); err != nil {
			m.logger.Warn("failed to extend session tokens", zap.String("session", id), zap.Error(err))
		}
	}

	m.mu.Lock()
	m.sessions[id] = sess
	m.mu.Unlock()
	m.logger.Info("session restored", zap.String("session", id))
	return sess, nil
}

// Refresh exchanges a gateway refresh token for a new pair and rotates the
// backend tokens behind it.
func (m *Manager) Refresh(ctx context.Context, refreshToken string) (*Tokens, error) {
	claims, err := m.jwt.ValidateToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if !claims.IsRefreshToken {
		return nil, apperrors.ErrTokenIsNotRefresh
	}
	sess, err := m.Get(ctx, claims)
	if err != nil {
		return nil, err
	}
	if err := sess.Client.Refresh(ctx); err != nil {
		return nil, err
	}
	return m.issue(claims.SessionID, claims.UserID)
}

// Logout ends the session and forgets its backend tokens.
func (m *Manager) Logout(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	sess, ok := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	m.mu.Unlock()

	if !ok {
		return m.tokens.Delete(ctx, sessionID)
	}
	sess.close()
	m.logger.Info("session closed", zap.String("session", sessionID))
	return sess.Client.Logout(ctx)
}

// onUnauthorized runs inside a backend call, possibly on the store's own
// scanner goroutine, so the teardown happens asynchronously.
func (m *Manager) onUnauthorized(sessionID string) {
	m.mu.Lock()
	sess, ok := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	m.mu.Unlock()
	if !ok {
		return
	}
	m.logger.Warn("backend rejected session tokens, closing session", zap.String("session", sessionID))
	go sess.close()
}

// RefreshTTL is the lifetime of issued refresh tokens.
func (m *Manager) RefreshTTL() time.Duration { return m.jwt.GetRefreshTokenTTL() }

func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close stops every session. Backend tokens stay in the token store so the
// sessions can be restored by the next process.
func (m *Manager) Close() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	var wg sync.WaitGroup
	for _, sess := range sessions {
		wg.Add(1)
		go func(s *Session) {
			defer wg.Done()
			s.close()
		}(sess)
	}
	wg.Wait()
}
