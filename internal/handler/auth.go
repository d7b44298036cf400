package handler

import (
	"net/http"
	"time"

	"finance-tracker/internal/service"
	"finance-tracker/internal/util"

	"github.com/gin-gonic/gin"
)

const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"
)

// AuthHandler serves the /api/auth session routes.
type AuthHandler struct {
	Svc           *service.AuthService
	SecureCookies bool
}

func NewAuthHandler(svc *service.AuthService, secureCookies bool) *AuthHandler {
	return &AuthHandler{Svc: svc, SecureCookies: secureCookies}
}

func (h *AuthHandler) setCookie(c *gin.Context, name, value string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, int(ttl.Seconds()), "/", "", h.SecureCookies, true)
}

func (h *AuthHandler) setSession(c *gin.Context, sess *service.Session) {
	tokens := h.Svc.Tokens()
	h.setCookie(c, AccessCookie, sess.Tokens.AccessToken, tokens.AccessTTL())
	h.setCookie(c, RefreshCookie, sess.Tokens.RefreshToken, tokens.RefreshTTL())
}

func (h *AuthHandler) clearSession(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessCookie, "", -1, "/", "", h.SecureCookies, true)
	c.SetCookie(RefreshCookie, "", -1, "/", "", h.SecureCookies, true)
}

func sessionBody(sess *service.Session) util.Response {
	return util.Response{
		"user":         sess.User,
		"accessToken":  sess.Tokens.AccessToken,
		"refreshToken": sess.Tokens.RefreshToken,
	}
}

// refreshTokenFrom reads the refresh token from its cookie, falling back to
// a JSON body {"refreshToken": "..."} for non-browser clients.
func refreshTokenFrom(c *gin.Context) string {
	if v, err := c.Cookie(RefreshCookie); err == nil && v != "" {
		return v
	}
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if c.Request.ContentLength > 0 {
		_ = c.ShouldBindJSON(&body)
	}
	return body.RefreshToken
}

func (h *AuthHandler) Register(c *gin.Context) {
	var in service.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badBody(c)
		return
	}
	user, err := h.Svc.Register(c.Request.Context(), in)
	if err != nil {
		respondError(c, err, "User", "registering user")
		return
	}
	util.JSON(c, http.StatusCreated, util.Response{
		"message": "Activation link is sent to your email, please activate your account",
		"user":    user,
	})
}

func (h *AuthHandler) Activate(c *gin.Context) {
	if err := h.Svc.Activate(c.Request.Context(), c.Param("link")); err != nil {
		respondError(c, err, "User", "activating account")
		return
	}
	util.JSON(c, http.StatusOK, util.Response{"message": "Account activated"})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var in service.LoginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badBody(c)
		return
	}
	sess, err := h.Svc.Login(c.Request.Context(), in)
	if err != nil {
		respondError(c, err, "User", "logging in")
		return
	}
	h.setSession(c, sess)
	util.JSON(c, http.StatusOK, sessionBody(sess))
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	sess, err := h.Svc.Refresh(c.Request.Context(), refreshTokenFrom(c))
	if err != nil {
		h.clearSession(c)
		respondError(c, err, "User", "refreshing session")
		return
	}
	h.setSession(c, sess)
	util.JSON(c, http.StatusOK, sessionBody(sess))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.Svc.Logout(c.Request.Context(), refreshTokenFrom(c)); err != nil {
		respondError(c, err, "User", "logging out")
		return
	}
	h.clearSession(c)
	util.JSON(c, http.StatusOK, util.Response{"message": "Logged out successfully"})
}
