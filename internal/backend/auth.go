package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"taskflow-gateway/internal/entities"
	"taskflow-gateway/internal/transformers"
	apperrors "taskflow-gateway/pkg/errors"
)

type loginResponse struct {
	Access  string         `json:"access"`
	Refresh string         `json:"refresh"`
	User    map[string]any `json:"user"`
}

// doPublic is a JSON request without a bearer token.
func (c *Client) doPublic(ctx context.Context, method, path string, body any, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("failed to build %s %s: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return apperrors.ErrInvalidCredentials
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var msg bytes.Buffer
		_, _ = msg.ReadFrom(resp.Body)
		return &APIError{Method: method, Path: path, Status: resp.StatusCode, Body: msg.String()}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

// Login exchanges credentials for backend tokens and stores them for the
// session. The user embedded in the response is returned when present.
func (c *Client) Login(ctx context.Context, username, password string) (*entities.User, error) {
	var resp loginResponse
	err := c.doPublic(ctx, http.MethodPost, "/api/token/", map[string]string{
		"username": username,
		"password": password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Access == "" {
		return nil, fmt.Errorf("backend did not return an access token: %w", apperrors.ErrInvalidCredentials)
	}
	if err := c.storeTokens(ctx, Tokens{Access: resp.Access, Refresh: resp.Refresh}); err != nil {
		return nil, fmt.Errorf("failed to save session tokens: %w", err)
	}
	if resp.User == nil {
		return nil, nil
	}
	u := transformers.User(resp.User)
	return &u, nil
}

// Refresh rotates the access token with the stored refresh token.
func (c *Client) Refresh(ctx context.Context) error {
	c.tokenMutex.RLock()
	current := c.cached
	c.tokenMutex.RUnlock()
	if current.Refresh == "" {
		stored, err := c.tokens.Get(ctx, c.sessionID)
		if err != nil {
			return err
		}
		current = stored
	}
	if current.Refresh == "" {
		return apperrors.ErrTokenNotFound
	}

	var resp Tokens
	err := c.doPublic(ctx, http.MethodPost, "/api/token/refresh/", map[string]string{"refresh": current.Refresh}, &resp)
	if errors.Is(err, apperrors.ErrInvalidCredentials) {
		c.dropTokens(ctx)
		return apperrors.ErrUnauthorized
	}
	if err != nil {
		return err
	}
	if resp.Refresh == "" {
		resp.Refresh = current.Refresh
	}
	return c.storeTokens(ctx, resp)
}

// Logout forgets the session's tokens; the backend keeps no session state.
func (c *Client) Logout(ctx context.Context) error {
	c.tokenMutex.Lock()
	c.cached = Tokens{}
	c.tokenMutex.Unlock()
	return c.tokens.Delete(ctx, c.sessionID)
}

// Register creates an account; it needs no session.
func (c *Client) Register(ctx context.Context, u transformers.NewUser) (*entities.User, error) {
	var raw map[string]any
	if err := c.doPublic(ctx, http.MethodPost, "/api/register/", transformers.UserToBackend(u), &raw); err != nil {
		return nil, err
	}
	rec := transformers.Record(raw)
	if nested, ok := rec.Record(transformers.Keys{"user"}); ok {
		rec = nested
	}
	created := transformers.User(rec)
	return &created, nil
}

func (c *Client) Me(ctx context.Context) (entities.User, error) {
	return requestEntity(c, ctx, http.MethodGet, "/api/users/me/", nil, transformers.User)
}

func (c *Client) UpdateMe(ctx context.Context, fields map[string]any) (entities.User, error) {
	return requestEntity(c, ctx, http.MethodPatch, "/api/users/me/", fields, transformers.User)
}

func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	return c.do(ctx, http.MethodPost, "/api/users/me/change-password/", map[string]string{
		"current_password": current,
		"new_password":     next,
	}, nil)
}

type availability struct {
	Available bool `json:"available"`
}

func (c *Client) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	var out availability
	err := c.doPublicGet(ctx, "/api/check-username/?username="+url.QueryEscape(username), &out)
	return out.Available, err
}

func (c *Client) EmailAvailable(ctx context.Context, email string) (bool, error) {
	var out availability
	err := c.doPublicGet(ctx, "/api/check-email/?email="+url.QueryEscape(email), &out)
	return out.Available, err
}

func (c *Client) doPublicGet(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build GET %s: %w", path, err)
	}
	return c.send(req, out)
}
