package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campuslib/library-service/internal/models"
	"github.com/campuslib/library-service/internal/repositories"
)

const currentUserKey = "current_user"

// TokenAuthMiddleware resolves the caller from one of two headers: students
// send the opaque X-Auth-Token issued at registration, librarians send their
// numeric id in X-User-ID.
type TokenAuthMiddleware struct {
	users repositories.UserRepository
}

func NewTokenAuthMiddleware(users repositories.UserRepository) *TokenAuthMiddleware {
	return &TokenAuthMiddleware{users: users}
}

func (m *TokenAuthMiddleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := m.resolveUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Authentication required or invalid credentials",
			})
			return
		}

		c.Set(currentUserKey, user)
		c.Set("user_id", user.ID)
		c.Next()
	}
}

func (m *TokenAuthMiddleware) resolveUser(c *gin.Context) *models.User {
	ctx := c.Request.Context()

	if token := c.GetHeader("X-Auth-Token"); token != "" {
		user, err := m.users.GetByToken(ctx, token)
		if err != nil {
			return nil
		}
		return user
	}

	if raw := c.GetHeader("X-User-ID"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return nil
		}
		user, err := m.users.GetByID(ctx, uint(id))
		if err != nil {
			return nil
		}
		return user
	}

	return nil
}

// RequireRoleMiddleware gates a route group to one role.
func (m *TokenAuthMiddleware) RequireRoleMiddleware(role models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || user.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Message: "Access denied: " + string(role) + " role required",
			})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user, or nil when auth middleware
// did not run.
func CurrentUser(c *gin.Context) *models.User {
	if v, exists := c.Get(currentUserKey); exists {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}
