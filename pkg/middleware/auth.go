package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"taskflow-gateway/internal/session"
	"taskflow-gateway/pkg/api"
	"taskflow-gateway/pkg/contextkeys"
	apperrors "taskflow-gateway/pkg/errors"
	"taskflow-gateway/pkg/service"
)

// SessionResolver finds the live session behind validated claims.
type SessionResolver interface {
	Get(ctx context.Context, claims *service.SessionClaims) (*session.Session, error)
}

type AuthMiddleware struct {
	jwtService service.JWTService
	sessions   SessionResolver
	logger     *zap.Logger
}

func NewAuthMiddleware(jwtSvc service.JWTService, sessions SessionResolver, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtSvc,
		sessions:   sessions,
		logger:     logger.Named("auth"),
	}
}

// bearerToken reads "Authorization: Bearer <token>". Websocket upgrades
// cannot set headers, so they may pass ?token= instead.
func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		if token := c.QueryParam("token"); token != "" && c.IsWebSocket() {
			return token, nil
		}
		return "", apperrors.ErrEmptyAuthHeader
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", apperrors.ErrInvalidAuthHeader
	}
	return parts[1], nil
}

// Auth validates the gateway access token and attaches the session to the
// request.
func (m *AuthMiddleware) Auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		tokenString, err := bearerToken(c)
		if err != nil {
			m.logger.Debug("rejected request without token", zap.String("uri", c.Request().RequestURI), zap.Error(err))
			return api.ErrorResponse(c, err)
		}

		claims, err := m.jwtService.ValidateToken(tokenString)
		if err != nil {
			m.logger.Warn("token validation failed", zap.Error(err))
			return api.ErrorResponse(c, err)
		}
		if claims.IsRefreshToken {
			m.logger.Warn("refresh token used for access")
			return api.ErrorResponse(c, apperrors.ErrTokenIsNotAccess)
		}

		sess, err := m.sessions.Get(c.Request().Context(), claims)
		if err != nil {
			m.logger.Info("session unavailable", zap.String("session", claims.SessionID), zap.Error(err))
			return api.ErrorResponse(c, err)
		}

		ctx := c.Request().Context()
		ctx = context.WithValue(ctx, contextkeys.UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, contextkeys.SessionIDKey, claims.SessionID)
		ctx = context.WithValue(ctx, contextkeys.SessionKey, sess)
		ctx = context.WithValue(ctx, contextkeys.ClaimsKey, claims)
		c.SetRequest(c.Request().WithContext(ctx))

		return next(c)
	}
}

// CurrentSession is the session attached by Auth.
func CurrentSession(ctx context.Context) (*session.Session, error) {
	sess, ok := ctx.Value(contextkeys.SessionKey).(*session.Session)
	if !ok || sess == nil {
		return nil, apperrors.ErrUnauthorized
	}
	return sess, nil
}

func CurrentSessionID(ctx context.Context) string {
	id, _ := ctx.Value(contextkeys.SessionIDKey).(string)
	return id
}
