package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/farellandr/theatre/config"
	"github.com/farellandr/theatre/internal/helpers"
	"github.com/farellandr/theatre/internal/middleware"
)

func init() {
	helpers.RegisterValidations()
}

// requireDeps fetches the database and config injected by the server
// middleware, writing a 500 when either is missing.
func requireDeps(c *gin.Context) (*gorm.DB, *config.Config, bool) {
	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return nil, nil, false
	}
	cfg := middleware.GetConfig(c)
	if cfg == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Configuration not found.")
		return nil, nil, false
	}
	return gormDB, cfg, true
}

func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := helpers.StringToID(c.Param(name))
	if err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Not found.")
		return 0, false
	}
	return id, true
}

func internalError(c *gin.Context, message string, err error) {
	middleware.GetLogger(c).Sugar().Errorw(message, "error", err)
	helpers.RespondWithError(c, http.StatusInternalServerError, message)
}
