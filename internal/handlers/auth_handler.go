package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/farellandr/theatre/internal/helpers"
	"github.com/farellandr/theatre/internal/middleware"
	"github.com/farellandr/theatre/internal/models"
)

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=5"`
	FirstName string `json:"first_name" binding:"max=150"`
	LastName  string `json:"last_name" binding:"max=150"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

func Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithBindError(c, err)
		return
	}

	gormDB, _, ok := requireDeps(c)
	if !ok {
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var existingUser models.User
	if result := gormDB.Where("email = ?", email).First(&existingUser); result.Error == nil {
		helpers.RespondWithError(c, http.StatusConflict, "User with this email already exists.")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		internalError(c, "Failed to hash the password.", err)
		return
	}

	user := models.User{
		Email:     email,
		Password:  string(hashedPassword),
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}

	if err := gormDB.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			helpers.RespondWithError(c, http.StatusConflict, "User with this email already exists.")
			return
		}
		internalError(c, "Failed to create user.", err)
		return
	}

	middleware.GetLogger(c).Sugar().Infow("user registered", "user_id", user.ID)
	c.JSON(http.StatusCreated, newUserResponse(&user))
}

func Token(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithBindError(c, err)
		return
	}

	gormDB, cfg, ok := requireDeps(c)
	if !ok {
		return
	}

	var user models.User
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := gormDB.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusUnauthorized, "No active account found with the given credentials.")
			return
		}
		internalError(c, "Error retrieving user.", err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		helpers.RespondWithError(c, http.StatusUnauthorized, "No active account found with the given credentials.")
		return
	}

	access, err := helpers.GenerateToken(cfg.JWTSecret, user.ID, helpers.AccessToken, cfg.AccessTokenTTL)
	if err != nil {
		internalError(c, "Failed to generate token.", err)
		return
	}
	refresh, err := helpers.GenerateToken(cfg.JWTSecret, user.ID, helpers.RefreshToken, cfg.RefreshTokenTTL)
	if err != nil {
		internalError(c, "Failed to generate token.", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access":  access,
		"refresh": refresh,
	})
}

func RefreshToken(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithBindError(c, err)
		return
	}

	gormDB, cfg, ok := requireDeps(c)
	if !ok {
		return
	}

	claims, err := helpers.ParseToken(cfg.JWTSecret, req.Refresh, helpers.RefreshToken)
	if err != nil {
		helpers.RespondWithError(c, http.StatusUnauthorized, "Token is invalid or expired.")
		return
	}

	var user models.User
	if err := gormDB.First(&user, claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusUnauthorized, "Token is invalid or expired.")
			return
		}
		internalError(c, "Error retrieving user.", err)
		return
	}

	access, err := helpers.GenerateToken(cfg.JWTSecret, user.ID, helpers.AccessToken, cfg.AccessTokenTTL)
	if err != nil {
		internalError(c, "Failed to generate token.", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"access": access})
}
