// Package handler adapts the service layer to gin routes.
package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"finance-tracker/internal/models"
	"finance-tracker/internal/service"
	"finance-tracker/internal/util"

	"github.com/gin-gonic/gin"
)

// CurrentUserKey is where the auth middleware stores the *models.User.
const CurrentUserKey = "currentUser"

// currentUser returns the authenticated user or writes a 401.
func currentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(CurrentUserKey)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Not authenticated")
		return nil, false
	}
	user, ok := v.(*models.User)
	if !ok || user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Not authenticated")
		return nil, false
	}
	return user, true
}

func callerOf(u *models.User) service.Caller {
	return service.Caller{UserID: u.ID, Admin: u.IsAdmin()}
}

// respondError maps a service error onto the response. resource names the
// entity in 404 messages; action completes "Error <action>" for 500s.
func respondError(c *gin.Context, err error, resource, action string) {
	var bulkErr *service.BulkError
	var verr *service.ValidationError
	switch {
	case errors.As(err, &bulkErr):
		util.ErrorWithDetails(c, http.StatusBadRequest, util.CodeInvalidParam, bulkErr.Error(), bulkErr.Failed)
	case errors.As(err, &verr):
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, verr.Error())
	case errors.Is(err, service.ErrNotFound):
		util.Error(c, http.StatusNotFound, util.CodeNotFound, resource+" not found or unauthorized")
	case errors.Is(err, service.ErrForbidden):
		util.Error(c, http.StatusForbidden, util.CodeForbidden, "Forbidden")
	case errors.Is(err, service.ErrConflict):
		util.Error(c, http.StatusConflict, util.CodeConflict, resource+" already exists")
	case errors.Is(err, service.ErrUnauthorized):
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Invalid credentials")
	default:
		slog.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"err", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Error "+action)
	}
}

func badBody(c *gin.Context) {
	util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request body")
}
