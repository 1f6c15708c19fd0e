package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/farellandr/theatre/internal/helpers"
	"github.com/farellandr/theatre/internal/models"
)

type TheatreHallRequest struct {
	Name       string `json:"name" form:"name" binding:"required,notblank,max=255"`
	Rows       int    `json:"rows" form:"rows" binding:"required,gt=0"`
	SeatsInRow int    `json:"seats_in_row" form:"seats_in_row" binding:"required,gt=0"`
}

func ListTheatreHalls(c *gin.Context) {
	gormDB, _, ok := requireDeps(c)
	if !ok {
		return
	}

	var halls []models.TheatreHall
	if err := gormDB.Order("id").Find(&halls).Error; err != nil {
		internalError(c, "Error retrieving theatre halls.", err)
		return
	}

	response := make([]TheatreHallResponse, 0, len(halls))
	for _, h := range halls {
		response = append(response, newTheatreHallResponse(h))
	}

	c.JSON(http.StatusOK, response)
}

func CreateTheatreHall(c *gin.Context) {
	var req TheatreHallRequest
	if err := c.ShouldBind(&req); err != nil {
		helpers.RespondWithBindError(c, err)
		return
	}

	gormDB, _, ok := requireDeps(c)
	if !ok {
		return
	}

	hall := models.TheatreHall{
		Name:       strings.TrimSpace(req.Name),
		Rows:       req.Rows,
		SeatsInRow: req.SeatsInRow,
	}
	if err := gormDB.Create(&hall).Error; err != nil {
		internalError(c, "Failed to create theatre hall.", err)
		return
	}

	c.JSON(http.StatusCreated, newTheatreHallResponse(hall))
}
