package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"neovault/sessions"
	"neovault/utils"
)

// ContextUsernameKey stores the authenticated admin's username inside the Gin context.
const ContextUsernameKey = "username"

// AuthRequired ensures the request carries a valid admin session cookie.
// It gates every mutating endpoint; listings and downloads stay public.
func AuthRequired(mgr *sessions.Manager) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		cookie, err := ctx.Cookie(sessions.CookieName)
		if err != nil {
			utils.Message(ctx, http.StatusUnauthorized, "Unauthorized")
			ctx.Abort()
			return
		}

		sess, err := mgr.Resolve(ctx.Request.Context(), cookie)
		if err != nil {
			utils.Message(ctx, http.StatusUnauthorized, "Unauthorized")
			ctx.Abort()
			return
		}

		ctx.Set(ContextUsernameKey, sess.Username)
		ctx.Next()
	}
}

// Username returns the authenticated username from the context, defaulting to
// the canonical admin name when the gate did not run.
func Username(ctx *gin.Context) string {
	if v, ok := ctx.Get(ContextUsernameKey); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return "admin"
}
