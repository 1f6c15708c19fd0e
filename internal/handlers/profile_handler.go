package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/farellandr/theatre/internal/helpers"
	"github.com/farellandr/theatre/internal/middleware"
)

type UpdateProfileRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,max=150"`
	LastName  *string `json:"last_name" binding:"omitempty,max=150"`
	Password  *string `json:"password" binding:"omitempty,min=5"`
}

func GetProfile(c *gin.Context) {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		helpers.RespondWithError(c, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return
	}

	c.JSON(http.StatusOK, newUserResponse(user))
}

func UpdateProfile(c *gin.Context) {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		helpers.RespondWithError(c, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithBindError(c, err)
		return
	}

	gormDB, _, ok := requireDeps(c)
	if !ok {
		return
	}

	updates := map[string]interface{}{}
	if req.FirstName != nil {
		updates["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		updates["last_name"] = *req.LastName
	}
	if req.Password != nil {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			internalError(c, "Failed to hash the password.", err)
			return
		}
		updates["password"] = string(hashedPassword)
	}

	if len(updates) > 0 {
		if err := gormDB.Model(user).Updates(updates).Error; err != nil {
			internalError(c, "Failed to update profile.", err)
			return
		}
	}

	if err := gormDB.First(user, user.ID).Error; err != nil {
		internalError(c, "Error retrieving user.", err)
		return
	}

	c.JSON(http.StatusOK, newUserResponse(user))
}
