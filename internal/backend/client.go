// Package backend is the HTTP client of the external REST backend. One
// Client is bound to one gateway session and its bearer tokens.
package backend

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "taskflow-gateway/pkg/errors"
)

const defaultTimeout = 10 * time.Second

// Tokens is the backend's JWT pair.
type Tokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// TokenStore keeps each session's tokens. Get returns
// apperrors.ErrSessionNotFound when nothing is stored.
type TokenStore interface {
	Get(ctx context.Context, sessionID string) (Tokens, error)
	Save(ctx context.Context, sessionID string, tokens Tokens) error
	Delete(ctx context.Context, sessionID string) error
}

// APIError is a non-2xx backend response other than 401.
type APIError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend %s %s returned %d: %s", e.Method, e.Path, e.Status, e.Body)
}

// HTTPStatus passes 4xx through to the browser; backend failures become 502.
func (e *APIError) HTTPStatus() int {
	if e.Status >= 400 && e.Status < 500 {
		return e.Status
	}
	return http.StatusBadGateway
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithUnauthorizedHook is called after a 401 has cleared the session's tokens.
func WithUnauthorizedHook(hook func(sessionID string)) Option {
	return func(c *Client) { c.onUnauthorized = hook }
}

type Client struct {
	httpClient     *http.Client
	baseURL        string
	sessionID      string
	tokens         TokenStore
	logger         *zap.Logger
	onUnauthorized func(sessionID string)

	cached     Tokens
	tokenMutex sync.RWMutex
}

func New(baseURL string, timeout time.Duration, sessionID string, tokens TokenStore, logger *zap.Logger, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    normalizeBaseURL(baseURL),
		sessionID:  sessionID,
		tokens:     tokens,
		logger:     logger.Named("backend_client").With(zap.String("session", sessionID)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var apiSuffix = regexp.MustCompile(`/?api/?$`)

// normalizeBaseURL strips a trailing /api: every path already carries it.
func normalizeBaseURL(raw string) string {
	return strings.TrimRight(apiSuffix.ReplaceAllString(raw, ""), "/")
}

func (c *Client) SessionID() string { return c.sessionID }

// ValidateID accepts a hyphenated UUID or, as the backend converts them, a
// numeric id.
// It is called before any request that carries the id.
func ValidateID(id, resource string) error {
	if id == "" {
		return apperrors.NewInvalidInputError("missing id for %s", resource)
	}
	if len(id) == 36 {
		if _, err := uuid.Parse(id); err == nil {
			return nil
		}
	}
	if isNumeric(id) {
		return nil
	}
	return apperrors.NewInvalidInputError("invalid UUID for %s: %s", resource, id)
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.tokenMutex.RLock()
	if c.cached.Access != "" {
		defer c.tokenMutex.RUnlock()
		return c.cached.Access, nil
	}
	c.tokenMutex.RUnlock()

	c.tokenMutex.Lock()
	defer c.tokenMutex.Unlock()
	if c.cached.Access != "" {
		return c.cached.Access, nil
	}
	tokens, err := c.tokens.Get(ctx, c.sessionID)
	if err != nil {
		return "", err
	}
	c.cached = tokens
	return tokens.Access, nil
}

func (c *Client) storeTokens(ctx context.Context, tokens Tokens) error {
	c.tokenMutex.Lock()
	c.cached = tokens
	c.tokenMutex.Unlock()
	return c.tokens.Save(ctx, c.sessionID, tokens)
}

// dropTokens is the 401 path: tokens are gone locally and in the store.
func (c *Client) dropTokens(ctx context.Context) {
	c.tokenMutex.Lock()
	c.cached = Tokens{}
	c.tokenMutex.Unlock()
	if err := c.tokens.Delete(context.WithoutCancel(ctx), c.sessionID); err != nil {
		c.logger.Warn("failed to delete session tokens", zap.Error(err))
	}
	if c.onUnauthorized != nil {
		c.onUnauthorized(c.sessionID)
	}
}
