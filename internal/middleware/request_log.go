package middleware

import (
	"log/slog"
	"time"

	"finance-tracker/internal/handler"
	"finance-tracker/internal/models"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs one slog record per request; 5xx responses at error
// level, 4xx at warn and the rest at info.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		var userID uint
		if v, ok := c.Get(handler.CurrentUserKey); ok {
			if u, ok := v.(*models.User); ok && u != nil {
				userID = u.ID
			}
		}

		status := c.Writer.Status()
		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}
		slog.Log(c.Request.Context(), level, "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"user_id", userID,
			"remote_addr", c.ClientIP(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
