package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"taskflow-gateway/internal/backend"
	apperrors "taskflow-gateway/pkg/errors"
)

const tokenKeyPrefix = "session:tokens:"

// TokenRepository keeps backend tokens per gateway session in the cache.
// It implements backend.TokenStore.
type TokenRepository struct {
	cache CacheRepositoryInterface
	ttl   time.Duration
}

func NewTokenRepository(cache CacheRepositoryInterface, ttl time.Duration) *TokenRepository {
	return &TokenRepository{cache: cache, ttl: ttl}
}

func (r *TokenRepository) Get(ctx context.Context, sessionID string) (backend.Tokens, error) {
	raw, err := r.cache.Get(ctx, tokenKeyPrefix+sessionID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return backend.Tokens{}, apperrors.ErrSessionNotFound
	}
	if err != nil {
		return backend.Tokens{}, fmt.Errorf("failed to read session tokens: %w", err)
	}
	var tokens backend.Tokens
	if err := json.Unmarshal([]byte(raw), &tokens); err != nil {
		return backend.Tokens{}, fmt.Errorf("corrupt session tokens: %w", err)
	}
	return tokens, nil
}

func (r *TokenRepository) Save(ctx context.Context, sessionID string, tokens backend.Tokens) error {
	raw, err := json.Marshal(tokens)
	if err != nil {
		return err
	}
	return r.cache.Set(ctx, tokenKeyPrefix+sessionID, raw, r.ttl)
}

func (r *TokenRepository) Delete(ctx context.Context, sessionID string) error {
	return r.cache.Del(ctx, tokenKeyPrefix+sessionID)
}

// Touch restarts the expiry of a session's tokens and reports whether they
// were still stored.
func (r *TokenRepository) Touch(ctx context.Context, sessionID string) (bool, error) {
	return r.cache.Expire(ctx, tokenKeyPrefix+sessionID, r.ttl)
}
