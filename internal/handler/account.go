package handler

import (
	"net/http"

	"finance-tracker/internal/service"
	"finance-tracker/internal/util"

	"github.com/gin-gonic/gin"
)

// GetAccount returns the logged-in user.
func GetAccount() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}
		util.JSON(c, http.StatusOK, util.Response{"user": user})
	}
}

// UpdateAccount changes name, email or password of the logged-in user.
func UpdateAccount(svc *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		var in service.AccountInput
		if err := c.ShouldBindJSON(&in); err != nil {
			badBody(c)
			return
		}
		updated, err := svc.UpdateAccount(c.Request.Context(), user.ID, in)
		if err != nil {
			respondError(c, err, "User", "updating user information")
			return
		}
		util.JSON(c, http.StatusOK, util.Response{"message": "User updated successfully", "user": updated})
	}
}

// DeleteAccount removes the logged-in user and all of their data.
func DeleteAccount(svc *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}
		if err := svc.DeleteAccount(c.Request.Context(), user.ID); err != nil {
			respondError(c, err, "User", "deleting user")
			return
		}
		c.SetCookie(AccessCookie, "", -1, "/", "", false, true)
		c.SetCookie(RefreshCookie, "", -1, "/", "", false, true)
		util.JSON(c, http.StatusOK, util.Response{"message": "User deleted successfully"})
	}
}

// ListUsers is the admin-only GET /api/auth/all-users.
func ListUsers(svc *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}
		users, err := svc.ListUsers(c.Request.Context(), callerOf(user))
		if err != nil {
			respondError(c, err, "User", "listing users")
			return
		}
		util.JSON(c, http.StatusOK, users)
	}
}
