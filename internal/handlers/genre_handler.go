package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/farellandr/theatre/internal/helpers"
	"github.com/farellandr/theatre/internal/models"
)

type GenreRequest struct {
	Name string `json:"name" form:"name" binding:"required,notblank,max=255"`
}

func ListGenres(c *gin.Context) {
	gormDB, _, ok := requireDeps(c)
	if !ok {
		return
	}

	genres := []models.Genre{}
	if err := gormDB.Order("id").Find(&genres).Error; err != nil {
		internalError(c, "Error retrieving genres.", err)
		return
	}

	c.JSON(http.StatusOK, genres)
}

func CreateGenre(c *gin.Context) {
	var req GenreRequest
	if err := c.ShouldBind(&req); err != nil {
		helpers.RespondWithBindError(c, err)
		return
	}

	gormDB, _, ok := requireDeps(c)
	if !ok {
		return
	}

	name := strings.TrimSpace(req.Name)

	var existing models.Genre
	if result := gormDB.Where("name = ?", name).First(&existing); result.Error == nil {
		helpers.RespondWithError(c, http.StatusConflict, "Genre with this name already exists.")
		return
	}

	genre := models.Genre{Name: name}
	if err := gormDB.Create(&genre).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			helpers.RespondWithError(c, http.StatusConflict, "Genre with this name already exists.")
			return
		}
		internalError(c, "Failed to create genre.", err)
		return
	}

	c.JSON(http.StatusCreated, genre)
}
