package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"vgroup-backoffice/internal/database/models"
	"vgroup-backoffice/internal/utils"
)

const (
	ContextUserID    = "user_id"
	ContextUserEmail = "user_email"
	ContextUserRole  = "user_role"
)

type TokenParser interface {
	ParseToken(token string) (*utils.Claims, error)
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": message,
		"error":   "UNAUTHENTICATED",
	})
}

// JWTAuth accepts a bearer token, or a token query parameter for websocket
// upgrades where browsers cannot set headers.
func JWTAuth(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := ""
		if header := c.GetHeader("Authorization"); header != "" {
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				unauthorized(c, "Authorization header format must be Bearer {token}")
				return
			}
			raw = strings.TrimSpace(parts[1])
		} else if c.IsWebsocket() {
			raw = c.Query("token")
		}

		if raw == "" {
			unauthorized(c, "Authorization token required")
			return
		}

		claims, err := tokens.ParseToken(raw)
		if err != nil {
			unauthorized(c, "Invalid or expired token")
			return
		}

		c.Set(ContextUserID, claims.UserId)
		c.Set(ContextUserEmail, claims.Email)
		c.Set(ContextUserRole, models.UserRole(claims.Role))
		c.Next()
	}
}

// RequireRole must run after JWTAuth.
func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := CurrentRole(c)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"success": false,
			"message": "You do not have permission to perform this action",
			"error":   "PERMISSION_DENIED",
		})
	}
}

// CurrentUserID is zero on unauthenticated routes.
func CurrentUserID(c *gin.Context) int64 {
	return c.GetInt64(ContextUserID)
}

func CurrentRole(c *gin.Context) models.UserRole {
	if v, ok := c.Get(ContextUserRole); ok {
		if role, ok := v.(models.UserRole); ok {
			return role
		}
	}
	return ""
}
