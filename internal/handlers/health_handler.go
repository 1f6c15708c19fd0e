package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/farellandr/theatre/internal/helpers"
	"github.com/farellandr/theatre/internal/middleware"
)

func HealthCheck(c *gin.Context) {
	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RespondWithError(c, http.StatusServiceUnavailable, "Database connection not found.")
		return
	}

	sqlDB, err := gormDB.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		middleware.GetLogger(c).Sugar().Warnw("health check failed", "error", err)
		helpers.RespondWithError(c, http.StatusServiceUnavailable, "Database is unreachable.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
