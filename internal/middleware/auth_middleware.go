package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/farellandr/theatre/internal/helpers"
	"github.com/farellandr/theatre/internal/models"
)

const (
	userKey   = "user"
	userIDKey = "user_id"
)

// JWTAuthMiddleware authenticates the bearer access token and loads the user
// so that permission checks see the current staff flags.
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			helpers.RespondWithError(c, http.StatusUnauthorized, "Authentication credentials were not provided.")
			return
		}

		parts := strings.SplitN(auth, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			helpers.RespondWithError(c, http.StatusUnauthorized, "Invalid Authorization header.")
			return
		}

		cfg := GetConfig(c)
		gormDB := GetDB(c)
		if cfg == nil || gormDB == nil {
			helpers.RespondWithError(c, http.StatusInternalServerError, "Server is not configured.")
			return
		}

		claims, err := helpers.ParseToken(cfg.JWTSecret, strings.TrimSpace(parts[1]), helpers.AccessToken)
		if err != nil {
			helpers.RespondWithError(c, http.StatusUnauthorized, "Given token not valid for any token type.")
			return
		}

		var user models.User
		if err := gormDB.First(&user, claims.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				helpers.RespondWithError(c, http.StatusUnauthorized, "User not found.")
				return
			}
			GetLogger(c).Sugar().Errorw("failed to load authenticated user", "user_id", claims.UserID, "error", err)
			helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving user.")
			return
		}

		c.Set(userKey, &user)
		c.Set(userIDKey, user.ID)
		c.Next()
	}
}

func GetCurrentUser(c *gin.Context) *models.User {
	user, exists := c.Get(userKey)
	if !exists {
		return nil
	}
	return user.(*models.User)
}
