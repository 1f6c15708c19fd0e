package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/farellandr/theatre/internal/helpers"
	"github.com/farellandr/theatre/internal/middleware"
	"github.com/farellandr/theatre/internal/models"
)

type PlayRequest struct {
	Title       string `json:"title" form:"title" binding:"required,notblank,max=255"`
	Description string `json:"description" form:"description" binding:"required,notblank"`
	Duration    int    `json:"duration" form:"duration" binding:"required,gt=0"`
	Genres      []uint `json:"genres" form:"genres"`
	Actors      []uint `json:"actors" form:"actors"`
}

func ListPlays(c *gin.Context) {
	gormDB, cfg, ok := requireDeps(c)
	if !ok {
		return
	}

	query := gormDB.Model(&models.Play{})

	if raw := c.Query("genres"); raw != "" {
		genreIDs, err := helpers.ParseIDList(raw)
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid genres filter.")
			return
		}
		if len(genreIDs) > 0 {
			query = query.Where("plays.id IN (?)", gormDB.Table("play_genres").Select("play_id").Where("genre_id IN ?", genreIDs))
		}
	}

	if raw := c.Query("actors"); raw != "" {
		actorIDs, err := helpers.ParseIDList(raw)
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid actors filter.")
			return
		}
		if len(actorIDs) > 0 {
			query = query.Where("plays.id IN (?)", gormDB.Table("play_actors").Select("play_id").Where("actor_id IN ?", actorIDs))
		}
	}

	if title := strings.TrimSpace(c.Query("title")); title != "" {
		query = query.Where(`LOWER(plays.title) LIKE ? ESCAPE '\'`, "%"+helpers.EscapeLike(strings.ToLower(title))+"%")
	}

	var plays []models.Play
	if err := query.Preload("Genres").Preload("Actors").Order("plays.id").Find(&plays).Error; err != nil {
		internalError(c, "Error retrieving plays.", err)
		return
	}

	response := make([]PlayListResponse, 0, len(plays))
	for _, play := range plays {
		response = append(response, newPlayListResponse(play, cfg.MediaURL))
	}

	c.JSON(http.StatusOK, response)
}

func GetPlay(c *gin.Context) {
	playID, ok := pathID(c, "id")
	if !ok {
		return
	}

	gormDB, cfg, ok := requireDeps(c)
	if !ok {
		return
	}

	var play models.Play
	if err := gormDB.Preload("Genres").Preload("Actors").First(&play, playID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Play not found.")
			return
		}
		internalError(c, "Error retrieving play.", err)
		return
	}

	c.JSON(http.StatusOK, newPlayDetailResponse(play, cfg.MediaURL))
}

func CreatePlay(c *gin.Context) {
	var req PlayRequest
	if err := c.ShouldBind(&req); err != nil {
		helpers.RespondWithBindError(c, err)
		return
	}

	gormDB, _, ok := requireDeps(c)
	if !ok {
		return
	}

	genres, err := findGenres(gormDB, req.Genres)
	if err != nil {
		if errors.Is(err, errUnknownID) {
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid genre id.")
			return
		}
		internalError(c, "Error processing genres.", err)
		return
	}

	actors, err := findActors(gormDB, req.Actors)
	if err != nil {
		if errors.Is(err, errUnknownID) {
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid actor id.")
			return
		}
		internalError(c, "Error processing actors.", err)
		return
	}

	play := models.Play{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Duration:    req.Duration,
		Genres:      genres,
		Actors:      actors,
	}

	if err := gormDB.Create(&play).Error; err != nil {
		internalError(c, "Failed to create play.", err)
		return
	}

	middleware.GetLogger(c).Sugar().Infow("play created", "play_id", play.ID, "title", play.Title)
	c.JSON(http.StatusCreated, newPlayResponse(play))
}

func UploadPlayImage(c *gin.Context) {
	playID, ok := pathID(c, "id")
	if !ok {
		return
	}

	gormDB, cfg, ok := requireDeps(c)
	if !ok {
		return
	}

	var play models.Play
	if err := gormDB.First(&play, playID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Play not found.")
			return
		}
		internalError(c, "Error retrieving play.", err)
		return
	}

	imageFile, err := c.FormFile("image")
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "The submitted data was not a file. Check the encoding type on the form.")
		return
	}

	uploadConfig := helpers.DefaultImageUploadConfig
	uploadConfig.MediaRoot = cfg.MediaRoot

	imagePath, err := helpers.UploadImage(c, imageFile, "plays", play.Title, uploadConfig)
	if err != nil {
		if errors.Is(err, helpers.ErrInvalidImage) || errors.Is(err, helpers.ErrFileTooLarge) {
			helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		internalError(c, "Failed to store image.", err)
		return
	}

	previous := play.Image
	if err := gormDB.Model(&play).Update("image", imagePath).Error; err != nil {
		_ = helpers.DeleteFile(cfg.MediaRoot, imagePath)
		internalError(c, "Failed to update play image.", err)
		return
	}
	play.Image = &imagePath

	if previous != nil {
		if err := helpers.DeleteFile(cfg.MediaRoot, *previous); err != nil {
			middleware.GetLogger(c).Sugar().Warnw("failed to delete previous play image", "path", *previous, "error", err)
		}
	}

	c.JSON(http.StatusOK, PlayImageResponse{
		ID:    play.ID,
		Image: helpers.MediaURL(cfg.MediaURL, play.Image),
	})
}
