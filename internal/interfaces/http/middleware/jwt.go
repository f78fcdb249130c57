package middleware

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hazchem/backend/internal/domain/shared"
	"github.com/hazchem/backend/internal/infrastructure/auth"
	"github.com/hazchem/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Gin context keys written by the JWT middleware
const (
	JWTClaimsKey  = "jwt_claims"
	JWTUserIDKey  = "jwt_user_id"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// Authenticator validates a bearer token, revocation included
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
}

// JWTConfig holds configuration for the JWT middleware
type JWTConfig struct {
	Authenticator Authenticator
	// SkipPaths are matched against the route pattern and the raw path
	SkipPaths []string
}

// DefaultSkipPaths are the endpoints reachable without a token
var DefaultSkipPaths = []string{
	"/health",
	"/metrics",
	"/api/v1/user/login",
	"/api/v1/user/register",
	"/api/v1/user/check-token",
}

// JWT rejects requests without a valid bearer token. On success the claims
// are stored in the gin context and the user ID in the request context.
func JWT(cfg JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if slices.Contains(cfg.SkipPaths, c.Request.URL.Path) || slices.Contains(cfg.SkipPaths, c.FullPath()) {
			c.Next()
			return
		}

		token, ok := BearerToken(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "未登录或token缺失")
			return
		}

		ctx := c.Request.Context()
		claims, err := cfg.Authenticator.Authenticate(ctx, token)
		if err != nil {
			if errors.Is(err, shared.ErrUnauthorized) {
				logger.FromContext(ctx).Debug("Token rejected", zap.Error(err))
				abort(c, http.StatusUnauthorized, err.Error())
				return
			}
			logger.FromContext(ctx).Error("Token check failed", zap.Error(err))
			abort(c, http.StatusInternalServerError, "服务器内部错误")
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTUserIDKey, claims.Subject)
		c.Request = c.Request.WithContext(logger.WithUserID(ctx, claims.Subject))
		c.Next()
	}
}

// BearerToken extracts the token of an "Authorization: Bearer" header
func BearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader(AuthHeaderKey)
	if !strings.HasPrefix(header, BearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
	return token, token != ""
}

// GetJWTClaims returns the claims stored by JWT, or nil
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(JWTClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}
