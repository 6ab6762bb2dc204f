package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"taskflow-gateway/internal/backend"
	"taskflow-gateway/internal/entities"
	"taskflow-gateway/internal/services"
	"taskflow-gateway/internal/session"
	"taskflow-gateway/pkg/config"
	apperrors "taskflow-gateway/pkg/errors"
	"taskflow-gateway/pkg/service"
	"taskflow-gateway/pkg/validation"
	appwebsocket "taskflow-gateway/pkg/websocket"
)

type memoryTokens struct {
	mu   sync.Mutex
	rows map[string]backend.Tokens
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

type memoryPreferences struct {
	mu   sync.Mutex
	rows map[string]entities.TaskPreferences
}

func (m *memoryPreferences) FindByUser(_ context.Context, userID string) (*entities.TaskPreferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[userID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &p, nil
}

func (m *memoryPreferences) Upsert(_ context.Context, p entities.TaskPreferences) (*entities.TaskPreferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rows == nil {
		m.rows = map[string]entities.TaskPreferences{}
	}
	m.rows[p.UserID] = p
	return &p, nil
}

func (m *memoryPreferences) Delete(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, userID)
	return nil
}

var backendUsers = map[string]map[string]any{
	"alice": {"id": "10", "username": "alice", "role": "MANAGER", "service": "1"},
	"bob":   {"id": "20", "username": "bob", "role": "EMPLOYEE", "service": "2"},
}

// fakeBackend issues "acc-<username>" access tokens and serves a small
// fixed dataset.
func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	deadline := time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339)
	writeJSON := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/token/", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if _, ok := backendUsers[body["username"]]; !ok || body["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(w, map[string]any{"access": "acc-" + body["username"], "refresh": "ref-" + body["username"]})
	})
	mux.HandleFunc("/api/users/me/", func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer acc-")
		u, ok := backendUsers[name]
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(w, u)
	})
	mux.HandleFunc("/api/users/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []any{backendUsers["alice"], backendUsers["bob"]})
	})
	mux.HandleFunc("/api/services/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []any{
			map[string]any{"id": "1", "name": "Engineering", "headId": "10"},
			map[string]any{"id": "2", "name": "Support"},
		})
	})
	mux.HandleFunc("/api/tasks/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"results": []any{
			map[string]any{"id": "100", "title": "Ship release", "status": "todo", "priority": "high",
				"assignedTo": []string{"20"}, "creatorId": "10", "serviceId": "1", "deadline": deadline, "workloadPoints": 3},
			map[string]any{"id": "101", "title": "Budget review", "status": "completed", "priority": "low",
				"assignedTo": []string{"10"}, "creatorId": "10", "serviceId": "1", "deadline": deadline, "workloadPoints": 2},
		}})
	})
	mux.HandleFunc("/api/projects/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []any{map[string]any{"id": "5", "name": "Launch", "status": "active", "service": "1", "memberIds": []string{"10"}}})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []any{})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

type GatewayTestSuite struct {
	suite.Suite
	Echo     *echo.Echo
	Sessions *session.Manager
	Tokens   map[string]string
}

func (suite *GatewayTestSuite) SetupSuite() {
	srv := fakeBackend(suite.T())
	nopLogger := zap.NewNop()

	cfg := &config.Config{
		Backend: config.BackendConfig{BaseURL: srv.URL, Timeout: 2 * time.Second},
		Sync:    config.SyncConfig{DeadlineWindow: time.Hour, MessagePollInterval: time.Hour},
		Upload:  config.UploadConfig{MaxSizeMB: 1, AllowedMimeTypes: []string{"text/plain; charset=utf-8"}},
	}
	jwtSvc := service.NewJWTService("test-secret", time.Hour, 24*time.Hour)
	suite.Sessions = session.NewManager(cfg, &memoryTokens{}, nil, nil, jwtSvc, nopLogger)

	e := echo.New()
	e.Validator = validation.New()
	InitRouter(e, Dependencies{
		Config:      cfg,
		Sessions:    suite.Sessions,
		JWT:         jwtSvc,
		Preferences: services.NewPreferencesService(&memoryPreferences{}, nopLogger),
		Hub:         appwebsocket.NewHub(nopLogger),
	}, &Loggers{Main: nopLogger, Auth: nopLogger, Task: nopLogger, Push: nopLogger})
	suite.Echo = e

	suite.Tokens = map[string]string{}
	for _, name := range []string{"alice", "bob"} {
		rec := suite.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": name, "password": "secret"})
		require.Equal(suite.T(), http.StatusOK, rec.Code, rec.Body.String())

		var resp struct {
			Body session.LoginResult `json:"body"`
		}
		require.NoError(suite.T(), json.Unmarshal(rec.Body.Bytes(), &resp))
		require.NotEmpty(suite.T(), resp.Body.AccessToken)
		suite.Tokens[name] = resp.Body.AccessToken
	}
}

func (suite *GatewayTestSuite) TearDownSuite() {
	suite.Sessions.Close()
}

func (suite *GatewayTestSuite) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	suite.Echo.ServeHTTP(rec, req)
	return rec
}

func taskIDs(t *testing.T, rec *httptest.ResponseRecorder) []string {
	var resp struct {
		Body struct {
			List []entities.Task `json:"list"`
		} `json:"body"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	ids := make([]string, 0, len(resp.Body.List))
	for _, task := range resp.Body.List {
		ids = append(ids, task.ID)
	}
	return ids
}

func (suite *GatewayTestSuite) TestRequiresToken() {
	rec := suite.do(http.MethodGet, "/api/board/tasks", "", nil)
	assert.Equal(suite.T(), http.StatusUnauthorized, rec.Code)

	rec = suite.do(http.MethodGet, "/api/board/tasks", "not-a-token", nil)
	assert.Equal(suite.T(), http.StatusUnauthorized, rec.Code)
}

func (suite *GatewayTestSuite) TestLoginRejectsWrongPassword() {
	rec := suite.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "bob", "password": "nope"})
	assert.Equal(suite.T(), http.StatusUnauthorized, rec.Code)
}

func (suite *GatewayTestSuite) TestBoardShowsOnlyVisibleTasks() {
	t := suite.T()

	rec := suite.do(http.MethodGet, "/api/board/tasks", suite.Tokens["bob"], nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []string{"100"}, taskIDs(t, rec))

	rec = suite.do(http.MethodGet, "/api/board/tasks", suite.Tokens["alice"], nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.ElementsMatch(t, []string{"100", "101"}, taskIDs(t, rec))

	rec = suite.do(http.MethodGet, "/api/board/tasks?priority=high", suite.Tokens["alice"], nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"100"}, taskIDs(t, rec))
}

func (suite *GatewayTestSuite) TestHiddenTaskIsNotFound() {
	rec := suite.do(http.MethodGet, "/api/tasks/101", suite.Tokens["bob"], nil)
	assert.Equal(suite.T(), http.StatusNotFound, rec.Code)

	rec = suite.do(http.MethodGet, "/api/tasks/100", suite.Tokens["bob"], nil)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
}

func (suite *GatewayTestSuite) TestCreateTaskValidatesBody() {
	rec := suite.do(http.MethodPost, "/api/tasks", suite.Tokens["alice"], map[string]any{"priority": "whenever"})
	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code, rec.Body.String())
}

func (suite *GatewayTestSuite) TestAnalyticsIsGated() {
	t := suite.T()

	rec := suite.do(http.MethodGet, "/api/analytics", suite.Tokens["bob"], nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = suite.do(http.MethodGet, "/api/analytics?period=month", suite.Tokens["alice"], nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"totalTasks":2`)

	rec = suite.do(http.MethodGet, "/api/analytics?period=decade", suite.Tokens["alice"], nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func (suite *GatewayTestSuite) TestTaskReportDownload() {
	rec := suite.do(http.MethodGet, "/api/reports/tasks.xlsx", suite.Tokens["alice"], nil)
	require.Equal(suite.T(), http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(suite.T(), "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get(echo.HeaderContentType))
	assert.Contains(suite.T(), rec.Header().Get("Content-Disposition"), ".xlsx")
	assert.NotZero(suite.T(), rec.Body.Len())
}

func (suite *GatewayTestSuite) TestPreferencesRoundTrip() {
	t := suite.T()
	token := suite.Tokens["bob"]

	rec := suite.do(http.MethodGet, "/api/preferences", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"defaultView":"board"`)

	rec = suite.do(http.MethodPut, "/api/preferences", token, map[string]any{"defaultView": "gallery", "columns": []string{"todo"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = suite.do(http.MethodPut, "/api/preferences", token, map[string]any{"defaultView": "list", "columns": []string{"todo", "completed"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = suite.do(http.MethodGet, "/api/preferences", token, nil)
	assert.Contains(t, rec.Body.String(), `"defaultView":"list"`)

	rec = suite.do(http.MethodDelete, "/api/preferences", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"defaultView":"board"`)
}

func (suite *GatewayTestSuite) TestServiceManagementIsForbiddenToEmployees() {
	rec := suite.do(http.MethodPost, "/api/services", suite.Tokens["bob"], map[string]any{"name": "Ops"})
	assert.Equal(suite.T(), http.StatusForbidden, rec.Code)
}

func (suite *GatewayTestSuite) TestMeIncludesPermissions() {
	rec := suite.do(http.MethodGet, "/api/auth/me", suite.Tokens["alice"], nil)
	require.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.Contains(suite.T(), rec.Body.String(), `"username":"alice"`)
	assert.Contains(suite.T(), rec.Body.String(), `"permissions"`)
}

func (suite *GatewayTestSuite) TestZLogoutEndsSession() {
	t := suite.T()
	rec := suite.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "bob", "password": "secret"})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Body session.LoginResult `json:"body"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	token := resp.Body.AccessToken

	rec = suite.do(http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = suite.do(http.MethodGet, "/api/dashboard", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = suite.do(http.MethodGet, "/api/dashboard", suite.Tokens["bob"], nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGatewayTestSuite(t *testing.T) {
	suite.Run(t, new(GatewayTestSuite))
}
