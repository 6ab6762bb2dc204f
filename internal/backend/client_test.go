package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskflow-gateway/internal/entities"
	apperrors "taskflow-gateway/pkg/errors"
)

const taskID = "7c9e6679-7425-40de-944b-e07fc1f90ae7"

type memoryTokens struct {
	mu     sync.Mutex
	tokens map[string]Tokens
}

func newMemoryTokens() *memoryTokens {
	return &memoryTokens{tokens: map[string]Tokens{}}
}

func (m *memoryTokens) Get(_ context.Context, id string) (Tokens, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[id]
	if !ok {
		return Tokens{}, apperrors.ErrSessionNotFound
	}
	return t, nil
}

func (m *memoryTokens) Save(_ context.Context, id string, t Tokens) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[id] = t
	return nil
}

func (m *memoryTokens) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, id)
	return nil
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) (*Client, *memoryTokens, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	tokens := newMemoryTokens()
	require.NoError(t, tokens.Save(context.Background(), "s1", Tokens{Access: "acc", Refresh: "ref"}))
	c := New(srv.URL+"/api/", time.Second, "s1", tokens, zap.NewNop(), opts...)
	return c, tokens, &calls
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestValidateID(t *testing.T) {
	assert.NoError(t, ValidateID(taskID, "task"))
	assert.NoError(t, ValidateID("42", "task"))

	err := ValidateID("not-a-uuid", "task")
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidInput(err))
	assert.Contains(t, err.Error(), "task")

	assert.True(t, apperrors.IsInvalidInput(ValidateID("", "task")))
	for _, id := range []string{"urn:uuid:" + taskID, "{" + taskID + "}", strings.ReplaceAll(taskID, "-", "")} {
		assert.True(t, apperrors.IsInvalidInput(ValidateID(id, "task")), id)
	}
}

func TestClient_InvalidIDMakesNoRequest(t *testing.T) {
	c, _, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{})
	})
	ctx := context.Background()

	_, err := c.UpdateTask(ctx, "not-a-uuid", map[string]any{"title": "x"})
	assert.True(t, apperrors.IsInvalidInput(err))
	assert.True(t, apperrors.IsInvalidInput(c.DeleteProject(ctx, "../etc")))
	assert.True(t, apperrors.IsInvalidInput(c.DeleteComment(ctx, taskID, "nope")))
	_, err = c.MarkNotificationRead(ctx, "x y")
	assert.True(t, apperrors.IsInvalidInput(err))

	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
}

func TestClient_BearerAndPaginatedList(t *testing.T) {
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer acc", r.Header.Get("Authorization"))
		assert.Equal(t, "/api/tasks/", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{
			"count":   2,
			"results": []any{map[string]any{"id": "a", "titre": "Un"}, map[string]any{"id": "b", "title": "Two"}},
		})
	})

	tasks, err := c.Tasks(context.Background())

	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "Un", tasks[0].Title)
	assert.Equal(t, "Two", tasks[1].Title)
}

func TestClient_UnauthorizedClearsTokens(t *testing.T) {
	var hooked string
	c, tokens, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "expired"})
	}, WithUnauthorizedHook(func(id string) { hooked = id }))

	_, err := c.Services(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
	assert.Equal(t, http.StatusUnauthorized, apperrors.StatusCode(err))
	assert.Equal(t, "s1", hooked)
	_, err = tokens.Get(context.Background(), "s1")
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)

	// the next call fails locally: there is nothing left to send
	_, err = c.Services(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func TestClient_APIError(t *testing.T) {
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"title": "required"})
	})

	_, err := c.CreateTask(context.Background(), map[string]any{})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Contains(t, apiErr.Body, "required")
	assert.Equal(t, http.StatusBadRequest, apperrors.StatusCode(err))

	assert.Equal(t, http.StatusBadGateway, (&APIError{Status: 503}).HTTPStatus())
}

func TestClient_Login(t *testing.T) {
	c, tokens, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/token/", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != "secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "bad"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"access": "new-acc", "refresh": "new-ref",
			"user": map[string]any{"id": "u1", "username": "alice", "role": "MANAGER"},
		})
	})
	ctx := context.Background()

	_, err := c.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	u, err := c.Login(ctx, "alice", "secret")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, entities.RoleManager, u.Role)

	stored, err := tokens.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, Tokens{Access: "new-acc", Refresh: "new-ref"}, stored)
}

func TestClient_RefreshKeepsRefreshToken(t *testing.T) {
	c, tokens, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ref", body["refresh"])
		writeJSON(w, http.StatusOK, map[string]string{"access": "rotated"})
	})

	require.NoError(t, c.Refresh(context.Background()))

	stored, err := tokens.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, Tokens{Access: "rotated", Refresh: "ref"}, stored)
}

func TestClient_DeactivateUrgencyMode(t *testing.T) {
	at := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, false, body["isActive"])
		assert.Equal(t, "2025-02-01T10:00:00Z", body["endDate"])
		writeJSON(w, http.StatusOK, map[string]any{"id": taskID, "isActive": false})
	})

	m, err := c.DeactivateUrgencyMode(context.Background(), taskID, at)

	require.NoError(t, err)
	assert.False(t, m.IsActive)
}

func TestClient_UploadAttachment(t *testing.T) {
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/attachments/upload/", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "task", r.FormValue("related_to"))
		assert.Equal(t, taskID, r.FormValue("related_id"))
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		content, _ := io.ReadAll(f)
		assert.Equal(t, "hello", string(content))
		writeJSON(w, http.StatusCreated, map[string]any{"id": "att-1", "nom": hdr.Filename, "taille": len(content)})
	})

	a, err := c.UploadAttachment(context.Background(), Upload{
		Owner:    entities.TaskOwner(taskID),
		Filename: "notes.txt",
		Content:  strings.NewReader("hello"),
	})

	require.NoError(t, err)
	assert.Equal(t, "notes.txt", a.Name)
	assert.Equal(t, int64(5), a.Size)
	assert.Equal(t, entities.TaskOwner(taskID), a.Owner)
}

func TestClient_UploadRejectsUnknownOwner(t *testing.T) {
	c, _, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := c.UploadAttachment(context.Background(), Upload{
		Owner:   entities.AttachmentOwner{Kind: "invoice", ID: taskID},
		Content: strings.NewReader("x"),
	})

	assert.True(t, apperrors.IsInvalidInput(err))
	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
}
