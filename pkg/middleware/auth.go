package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/landonharris622-gif/Primal-live/pkg/jwt"
)

const (
	UserIDKey     = "user_id"
	EmailKey      = "email"
	UsernameKey   = "username"
	RoleKey       = "role"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// AuthMiddleware validates JWT access tokens.
type AuthMiddleware struct {
	tokens *jwt.Manager
}

// NewAuthMiddleware creates a new auth middleware.
func NewAuthMiddleware(tokens *jwt.Manager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// RequireAuth returns a Gin middleware that validates JWT tokens.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := m.authenticate(c)
		if !ok {
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

// RequireRole returns a Gin middleware that validates JWT tokens and
// requires the user to hold one of the given roles.
func (m *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := m.authenticate(c)
		if !ok {
			return
		}

		allowed := false
		for _, r := range roles {
			if claims.Role == r {
				allowed = true
				break
			}
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "forbidden",
			})
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth populates user info when a valid token is present but does
// not reject anonymous requests. Used by the heartbeat endpoint, which
// accepts both logged-in and anonymous viewers.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthHeaderKey)
		if strings.HasPrefix(authHeader, BearerPrefix) {
			token := strings.TrimPrefix(authHeader, BearerPrefix)
			if claims, err := m.tokens.ValidateToken(token); err == nil && claims.Type == "access" {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}

func (m *AuthMiddleware) authenticate(c *gin.Context) (*jwt.Claims, bool) {
	authHeader := c.GetHeader(AuthHeaderKey)
	if authHeader == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "missing authorization header",
		})
		return nil, false
	}

	if !strings.HasPrefix(authHeader, BearerPrefix) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid authorization format",
		})
		return nil, false
	}

	token := strings.TrimPrefix(authHeader, BearerPrefix)
	claims, err := m.tokens.ValidateToken(token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": err.Error(),
		})
		return nil, false
	}

	if claims.Type != "access" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "access token required",
		})
		return nil, false
	}

	return claims, true
}

func setClaims(c *gin.Context, claims *jwt.Claims) {
	c.Set(UserIDKey, claims.UserID)
	c.Set(EmailKey, claims.Email)
	c.Set(UsernameKey, claims.Username)
	c.Set(RoleKey, claims.Role)
}

// GetUserID extracts user ID from Gin context.
func GetUserID(c *gin.Context) string {
	if id, exists := c.Get(UserIDKey); exists {
		return id.(string)
	}
	return ""
}

// GetUsername extracts username from Gin context.
func GetUsername(c *gin.Context) string {
	if username, exists := c.Get(UsernameKey); exists {
		return username.(string)
	}
	return ""
}

// GetRole extracts the user role from Gin context.
func GetRole(c *gin.Context) string {
	if role, exists := c.Get(RoleKey); exists {
		return role.(string)
	}
	return ""
}
