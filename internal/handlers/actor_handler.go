package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/farellandr/theatre/internal/helpers"
	"github.com/farellandr/theatre/internal/models"
)

type ActorRequest struct {
	FirstName string `json:"first_name" form:"first_name" binding:"required,notblank,max=255"`
	LastName  string `json:"last_name" form:"last_name" binding:"required,notblank,max=255"`
}

func ListActors(c *gin.Context) {
	gormDB, _, ok := requireDeps(c)
	if !ok {
		return
	}

	var actors []models.Actor
	if err := gormDB.Order("id").Find(&actors).Error; err != nil {
		internalError(c, "Error retrieving actors.", err)
		return
	}

	response := make([]ActorResponse, 0, len(actors))
	for _, a := range actors {
		response = append(response, newActorResponse(a))
	}

	c.JSON(http.StatusOK, response)
}

func CreateActor(c *gin.Context) {
	var req ActorRequest
	if err := c.ShouldBind(&req); err != nil {
		helpers.RespondWithBindError(c, err)
		return
	}

	gormDB, _, ok := requireDeps(c)
	if !ok {
		return
	}

	actor := models.Actor{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
	}
	if err := gormDB.Create(&actor).Error; err != nil {
		internalError(c, "Failed to create actor.", err)
		return
	}

	c.JSON(http.StatusCreated, newActorResponse(actor))
}
