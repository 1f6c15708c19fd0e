package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/farellandr/theatre/internal/helpers"
)

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// AdminOrAuthenticatedReadOnly lets any authenticated user read and only staff write.
// It must run after JWTAuthMiddleware.
func AdminOrAuthenticatedReadOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := GetCurrentUser(c)
		if user == nil {
			helpers.RespondWithError(c, http.StatusUnauthorized, "Authentication credentials were not provided.")
			return
		}
		if isSafeMethod(c.Request.Method) || user.CanManage() {
			c.Next()
			return
		}
		helpers.RespondWithError(c, http.StatusForbidden, "You do not have permission to perform this action.")
	}
}

func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := GetCurrentUser(c)
		if user == nil {
			helpers.RespondWithError(c, http.StatusUnauthorized, "Authentication credentials were not provided.")
			return
		}
		if !user.CanManage() {
			helpers.RespondWithError(c, http.StatusForbidden, "You do not have permission to perform this action.")
			return
		}
		c.Next()
	}
}
