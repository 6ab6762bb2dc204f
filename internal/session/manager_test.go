package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskflow-gateway/internal/backend"
	"taskflow-gateway/pkg/config"
	apperrors "taskflow-gateway/pkg/errors"
	"taskflow-gateway/pkg/service"
)

const userID = "3b8f0e2c-5d7a-4b61-9f0e-1a2b3c4d5e6f"

type memoryTokens struct {
	mu      sync.Mutex
	rows    map[string]backend.Tokens
	touched []string
}

func (m *memoryTokens) Touch(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touched = append(m.touched, id)
	_, ok := m.rows[id]
	return ok, nil
}

func (m *memoryTokens) Get(_ context.Context, id string) (backend.Tokens, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.rows[id]
	if !ok {
		return backend.Tokens{}, apperrors.ErrSessionNotFound
	}
	return t, nil
}

func (m *memoryTokens) Save(_ context.Context, id string, t backend.Tokens) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rows == nil {
		m.rows = map[string]backend.Tokens{}
	}
	m.rows[id] = t
	return nil
}

func (m *memoryTokens) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

func (m *memoryTokens) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

// fakeBackend accepts alice/secret and serves empty collections.
func fakeBackend(t *testing.T, meCalls *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	writeJSON := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}
	mux.HandleFunc("/api/token/", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["username"] != "alice" || body["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(w, map[string]any{"access": "a-1", "refresh": "r-1"})
	})
	mux.HandleFunc("/api/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"access": "a-2"})
	})
	mux.HandleFunc("/api/users/me/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(meCalls, 1)
		writeJSON(w, map[string]any{"id": userID, "username": "alice", "role": "MANAGER"})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []any{})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newManager(t *testing.T, baseURL string, tokens backend.TokenStore) *Manager {
	cfg := &config.Config{
		Backend: config.BackendConfig{BaseURL: baseURL, Timeout: time.Second},
		Sync:    config.SyncConfig{DeadlineWindow: time.Hour, MessagePollInterval: time.Hour},
	}
	m := NewManager(cfg, tokens, nil, nil, service.NewJWTService("k", time.Hour, 24*time.Hour), zap.NewNop())
	t.Cleanup(m.Close)
	return m
}

func TestManager_LoginGetLogout(t *testing.T) {
	var me int32
	srv := fakeBackend(t, &me)
	tokens := &memoryTokens{}
	m := newManager(t, srv.URL, tokens)

	res, err := m.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, userID, res.User.ID)
	assert.True(t, res.Permissions.CanCreateProjects)
	assert.Equal(t, 1, m.Count())
	assert.Equal(t, 1, tokens.Len())

	claims, err := service.NewJWTService("k", time.Hour, time.Hour).ValidateToken(res.AccessToken)
	require.NoError(t, err)
	sess, err := m.Get(context.Background(), claims)
	require.NoError(t, err)
	assert.True(t, sess.Store.Initialized())

	require.NoError(t, m.Logout(context.Background(), claims.SessionID))
	assert.Zero(t, m.Count())
	assert.Zero(t, tokens.Len())
	assert.False(t, sess.Store.Initialized())
}

func TestManager_LoginRejectsBadCredentials(t *testing.T) {
	var me int32
	srv := fakeBackend(t, &me)
	m := newManager(t, srv.URL, &memoryTokens{})

	_, err := m.Login(context.Background(), "alice", "wrong")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = m.Login(context.Background(), "", "")
	assert.True(t, apperrors.IsInvalidInput(err))
	assert.Zero(t, m.Count())
}

func TestManager_RestoresSessionFromStoredTokens(t *testing.T) {
	var me int32
	srv := fakeBackend(t, &me)
	tokens := &memoryTokens{}

	first := newManager(t, srv.URL, tokens)
	res, err := first.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	first.Close()

	second := newManager(t, srv.URL, tokens)
	claims, err := service.NewJWTService("k", time.Hour, time.Hour).ValidateToken(res.AccessToken)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := second.Get(context.Background(), claims)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, second.Count())
	assert.Equal(t, []string{claims.SessionID}, tokens.touched, "a restore extends the stored tokens once")

	_, err = second.Get(context.Background(), &service.SessionClaims{SessionID: "gone", UserID: userID})
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func TestManager_Refresh(t *testing.T) {
	var me int32
	srv := fakeBackend(t, &me)
	tokens := &memoryTokens{}
	m := newManager(t, srv.URL, tokens)

	res, err := m.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)

	_, err = m.Refresh(context.Background(), res.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenIsNotRefresh)

	next, err := m.Refresh(context.Background(), res.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, next.AccessToken)

	for _, stored := range tokens.rows {
		assert.Equal(t, "a-2", stored.Access)
		assert.Equal(t, "r-1", stored.Refresh)
	}
}
