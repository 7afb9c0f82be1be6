package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/weiawesome/exa-people-search/pkg/jwt"
	pkglog "github.com/weiawesome/exa-people-search/pkg/log"
	"github.com/weiawesome/exa-people-search/pkg/response"
)

const (
	SubjectKey    = pkglog.FieldSubject
	ScopeKey      = pkglog.FieldScope
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// TokenValidator validates bearer tokens.
type TokenValidator interface {
	ValidateToken(token string) (*jwt.Claims, error)
}

// AuthMiddleware guards trigger endpoints with HS256 bearer tokens.
type AuthMiddleware struct {
	validator TokenValidator
}

// NewAuthMiddleware creates a new auth middleware. A nil validator lets
// every request through.
func NewAuthMiddleware(validator TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{validator: validator}
}

// RequireAuth returns a Gin middleware that validates JWT tokens.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.validator == nil {
			c.Next()
			return
		}

		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}

		if !strings.HasPrefix(authHeader, BearerPrefix) {
			response.Unauthorized(c, "invalid authorization format")
			c.Abort()
			return
		}

		claims, err := m.validator.ValidateToken(strings.TrimPrefix(authHeader, BearerPrefix))
		if err != nil {
			response.Unauthorized(c, err.Error())
			c.Abort()
			return
		}

		c.Set(SubjectKey, claims.Subject)
		c.Set(ScopeKey, claims.Scope)

		c.Next()
	}
}

// GetScope extracts the token scope from Gin context.
func GetScope(c *gin.Context) string {
	if s, exists := c.Get(ScopeKey); exists {
		return s.(string)
	}
	return ""
}

// GetSubject extracts the token subject from Gin context.
func GetSubject(c *gin.Context) string {
	if s, exists := c.Get(SubjectKey); exists {
		return s.(string)
	}
	return ""
}
