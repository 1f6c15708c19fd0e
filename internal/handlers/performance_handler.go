package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/farellandr/theatre/internal/helpers"
	"github.com/farellandr/theatre/internal/middleware"
	"github.com/farellandr/theatre/internal/models"
)

type PerformanceRequest struct {
	Play        uint   `json:"play" form:"play" binding:"required"`
	TheatreHall uint   `json:"theatre_hall" form:"theatre_hall" binding:"required"`
	ShowTime    string `json:"show_time" form:"show_time" binding:"required"`
}

type PerformancePatchRequest struct {
	Play        *uint   `json:"play" form:"play"`
	TheatreHall *uint   `json:"theatre_hall" form:"theatre_hall"`
	ShowTime    *string `json:"show_time" form:"show_time"`
}

func ListPerformances(c *gin.Context) {
	gormDB, cfg, ok := requireDeps(c)
	if !ok {
		return
	}

	query := gormDB.Model(&models.Performance{})

	if raw := c.Query("date"); raw != "" {
		day, err := helpers.ParseDate(raw)
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid date format. Use YYYY-MM-DD.")
			return
		}
		query = query.Where("show_time >= ? AND show_time < ?", day, day.AddDate(0, 0, 1))
	}

	if raw := c.Query("play"); raw != "" {
		playID, err := helpers.StringToID(raw)
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid play filter.")
			return
		}
		query = query.Where("play_id = ?", playID)
	}

	var performances []models.Performance
	if err := query.Preload("Play").Preload("TheatreHall").Order("id").Find(&performances).Error; err != nil {
		internalError(c, "Error retrieving performances.", err)
		return
	}

	ids := make([]uint, 0, len(performances))
	for _, p := range performances {
		ids = append(ids, p.ID)
	}
	taken, err := takenCounts(gormDB, ids)
	if err != nil {
		internalError(c, "Error counting tickets.", err)
		return
	}

	response := make([]PerformanceListResponse, 0, len(performances))
	for _, p := range performances {
		response = append(response, newPerformanceListResponse(p, taken[p.ID], cfg.MediaURL))
	}

	c.JSON(http.StatusOK, response)
}

func GetPerformance(c *gin.Context) {
	performanceID, ok := pathID(c, "id")
	if !ok {
		return
	}

	gormDB, cfg, ok := requireDeps(c)
	if !ok {
		return
	}

	var performance models.Performance
	err := gormDB.
		Preload("Play.Genres").
		Preload("Play.Actors").
		Preload("TheatreHall").
		Preload("Tickets").
		First(&performance, performanceID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Performance not found.")
			return
		}
		internalError(c, "Error retrieving performance.", err)
		return
	}

	c.JSON(http.StatusOK, newPerformanceDetailResponse(performance, cfg.MediaURL))
}

func CreatePerformance(c *gin.Context) {
	var req PerformanceRequest
	if err := c.ShouldBind(&req); err != nil {
		helpers.RespondWithBindError(c, err)
		return
	}

	gormDB, _, ok := requireDeps(c)
	if !ok {
		return
	}

	showTime, err := helpers.ParseShowTime(req.ShowTime)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid show_time format.")
		return
	}

	if !checkPerformanceRefs(c, gormDB, req.Play, req.TheatreHall) {
		return
	}

	performance := models.Performance{
		PlayID:        req.Play,
		TheatreHallID: req.TheatreHall,
		ShowTime:      showTime,
	}

	if err := gormDB.Create(&performance).Error; err != nil {
		internalError(c, "Failed to create performance.", err)
		return
	}

	middleware.GetLogger(c).Sugar().Infow("performance created", "performance_id", performance.ID, "play_id", performance.PlayID)
	c.JSON(http.StatusCreated, newPerformanceResponse(performance))
}

// UpdatePerformance serves both PUT (every field required) and PATCH.
func UpdatePerformance(c *gin.Context) {
	performanceID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req PerformancePatchRequest
	if c.Request.Method == http.MethodPut {
		var full PerformanceRequest
		if err := c.ShouldBind(&full); err != nil {
			helpers.RespondWithBindError(c, err)
			return
		}
		req = PerformancePatchRequest{Play: &full.Play, TheatreHall: &full.TheatreHall, ShowTime: &full.ShowTime}
	} else if err := c.ShouldBind(&req); err != nil {
		helpers.RespondWithBindError(c, err)
		return
	}

	gormDB, _, ok := requireDeps(c)
	if !ok {
		return
	}

	var performance models.Performance
	if err := gormDB.First(&performance, performanceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Performance not found.")
			return
		}
		internalError(c, "Error retrieving performance.", err)
		return
	}

	if req.Play != nil {
		performance.PlayID = *req.Play
	}
	if req.TheatreHall != nil {
		performance.TheatreHallID = *req.TheatreHall
	}
	if req.ShowTime != nil {
		showTime, err := helpers.ParseShowTime(*req.ShowTime)
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid show_time format.")
			return
		}
		performance.ShowTime = showTime
	}

	if !checkPerformanceRefs(c, gormDB, performance.PlayID, performance.TheatreHallID) {
		return
	}

	if req.TheatreHall != nil {
		var hall models.TheatreHall
		if err := gormDB.First(&hall, performance.TheatreHallID).Error; err != nil {
			internalError(c, "Error retrieving theatre hall.", err)
			return
		}
		outside, err := ticketsOutsideHall(gormDB, performance.ID, hall)
		if err != nil {
			internalError(c, "Error checking sold tickets.", err)
			return
		}
		if outside > 0 {
			helpers.RespondWithError(c, http.StatusConflict, "Theatre hall is too small for the tickets already sold.")
			return
		}
	}

	err := gormDB.Model(&performance).Updates(map[string]interface{}{
		"play_id":         performance.PlayID,
		"theatre_hall_id": performance.TheatreHallID,
		"show_time":       performance.ShowTime,
	}).Error
	if err != nil {
		internalError(c, "Failed to update performance.", err)
		return
	}

	c.JSON(http.StatusOK, newPerformanceResponse(performance))
}

func DeletePerformance(c *gin.Context) {
	performanceID, ok := pathID(c, "id")
	if !ok {
		return
	}

	gormDB, _, ok := requireDeps(c)
	if !ok {
		return
	}

	var performance models.Performance
	if err := gormDB.First(&performance, performanceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Performance not found.")
			return
		}
		internalError(c, "Error retrieving performance.", err)
		return
	}

	var ticketCount int64
	if err := gormDB.Model(&models.Ticket{}).Where("performance_id = ?", performance.ID).Count(&ticketCount).Error; err != nil {
		internalError(c, "Error counting tickets.", err)
		return
	}
	if ticketCount > 0 {
		helpers.RespondWithError(c, http.StatusConflict, "Cannot delete a performance that already has tickets.")
		return
	}

	if err := gormDB.Delete(&performance).Error; err != nil {
		internalError(c, "Failed to delete performance.", err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ticketsOutsideHall counts sold tickets whose place does not exist in hall.
func ticketsOutsideHall(db *gorm.DB, performanceID uint, hall models.TheatreHall) (int64, error) {
	var count int64
	err := db.Model(&models.Ticket{}).
		Where("performance_id = ?", performanceID).
		Where(clause.Or(
			clause.Gt{Column: clause.Column{Name: "row"}, Value: hall.Rows},
			clause.Gt{Column: clause.Column{Name: "seat"}, Value: hall.SeatsInRow},
		)).
		Count(&count).Error
	return count, err
}

func checkPerformanceRefs(c *gin.Context, db *gorm.DB, playID, hallID uint) bool {
	var count int64
	if err := db.Model(&models.Play{}).Where("id = ?", playID).Count(&count).Error; err != nil {
		internalError(c, "Error retrieving play.", err)
		return false
	}
	if count == 0 {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid play id.")
		return false
	}

	if err := db.Model(&models.TheatreHall{}).Where("id = ?", hallID).Count(&count).Error; err != nil {
		internalError(c, "Error retrieving theatre hall.", err)
		return false
	}
	if count == 0 {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid theatre hall id.")
		return false
	}
	return true
}
