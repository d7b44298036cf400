package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"finance-tracker/internal/handler"
	"finance-tracker/internal/models"
	"finance-tracker/internal/service"
	"finance-tracker/internal/util"

	"github.com/gin-gonic/gin"
)

// UserLoader resolves the user an access token was issued to.
type UserLoader interface {
	UserByID(ctx context.Context, id uint) (*models.User, error)
}

// tokenFrom looks for the access token in, in order, the Authorization
// header, the accessToken cookie and the token query parameter (downloads).
func tokenFrom(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if v, err := c.Cookie(handler.AccessCookie); err == nil && v != "" {
		return v
	}
	return c.Query("token")
}

// AuthMiddleware validates the access token and stores the user under
// handler.CurrentUserKey.
func AuthMiddleware(tokens *util.TokenIssuer, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := tokenFrom(c)
		if tokenStr == "" {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Not authenticated")
			c.Abort()
			return
		}

		claims, err := tokens.ParseAccess(tokenStr)
		if err != nil {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Session expired, please log in again")
			c.Abort()
			return
		}

		user, err := users.UserByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				util.Error(c, http.StatusUnauthorized, util.CodeAuth, "User not found")
			} else {
				util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Error loading user")
			}
			c.Abort()
			return
		}

		c.Set(handler.CurrentUserKey, user)
		c.Next()
	}
}

// RequireAdmin rejects callers without the admin role. It must run after
// AuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		v, _ := c.Get(handler.CurrentUserKey)
		if user, ok := v.(*models.User); !ok || !user.IsAdmin() {
			util.Error(c, http.StatusForbidden, util.CodeForbidden, "Forbidden")
			c.Abort()
			return
		}
		c.Next()
	}
}
