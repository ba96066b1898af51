package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"neovault/middleware"
	"neovault/sessions"
	"neovault/storage"
	"neovault/utils"
)

// AuthController handles login, logout, the session probe, and admin settings.
type AuthController struct {
	store    *storage.Store
	sessions *sessions.Manager
}

// NewAuthController creates a new AuthController instance.
func NewAuthController(store *storage.Store, mgr *sessions.Manager) *AuthController {
	return &AuthController{store: store, sessions: mgr}
}

// Login verifies credentials against the admin settings row and issues a
// session cookie on success.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		utils.Message(ctx, http.StatusBadRequest, "Username and password are required")
		return
	}

	settings, err := a.store.GetAdminSettings()
	if err != nil {
		utils.Sugar.Errorf("login: fetching admin settings failed: %v", err)
		utils.Message(ctx, http.StatusInternalServerError, "Login failed")
		return
	}

	if req.Username != settings.Username || !utils.CheckPassword(settings.PasswordHash, req.Password) {
		utils.Message(ctx, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	cookie, err := a.sessions.Issue(ctx.Request.Context(), req.Username)
	if err != nil {
		utils.Sugar.Errorf("login: issuing session failed: %v", err)
		utils.Message(ctx, http.StatusInternalServerError, "Login failed")
		return
	}

	ctx.SetCookie(sessions.CookieName, cookie, int(a.sessions.TTL().Seconds()), "/", "", false, true)
	utils.Message(ctx, http.StatusOK, "Login successful")
}

// CurrentUser reports the authenticated admin identity.
func (a *AuthController) CurrentUser(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"username": middleware.Username(ctx),
		"isAdmin":  true,
	})
}

// Logout invalidates the session behind the cookie. It is idempotent: calls
// without a live session still succeed.
func (a *AuthController) Logout(ctx *gin.Context) {
	if cookie, err := ctx.Cookie(sessions.CookieName); err == nil {
		if err := a.sessions.Revoke(ctx.Request.Context(), cookie); err != nil {
			utils.Sugar.Errorf("logout: revoking session failed: %v", err)
			utils.Message(ctx, http.StatusInternalServerError, "Logout failed")
			return
		}
	}
	ctx.SetCookie(sessions.CookieName, "", -1, "/", "", false, true)
	utils.Message(ctx, http.StatusOK, "Logout successful")
}

// GetSettings returns the admin settings without the password hash.
func (a *AuthController) GetSettings(ctx *gin.Context) {
	settings, err := a.store.GetAdminSettings()
	if err != nil {
		utils.Sugar.Errorf("fetching admin settings failed: %v", err)
		utils.Message(ctx, http.StatusInternalServerError, "Failed to fetch settings")
		return
	}
	ctx.JSON(http.StatusOK, settings)
}

// UpdateSettings replaces username and password as a whole.
func (a *AuthController) UpdateSettings(ctx *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required,min=1"`
		Password string `json:"password" binding:"required,min=1"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.ValidationFailure(ctx, "Invalid settings data", err.Error())
		return
	}

	username := strings.TrimSpace(req.Username)
	if username == "" {
		utils.ValidationFailure(ctx, "Invalid settings data", "username must not be blank")
		return
	}

	settings, err := a.store.UpdateAdminSettings(username, req.Password)
	if err != nil {
		utils.Sugar.Errorf("updating admin settings failed: %v", err)
		utils.Message(ctx, http.StatusInternalServerError, "Failed to update settings")
		return
	}
	ctx.JSON(http.StatusOK, settings)
}
