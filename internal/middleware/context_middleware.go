package middleware

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/farellandr/theatre/config"
	"github.com/farellandr/theatre/internal/events"
)

const (
	dbKey        = "db"
	configKey    = "config"
	publisherKey = "publisher"
)

func DatabaseMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(dbKey, db.WithContext(c.Request.Context()))
		c.Next()
	}
}

func GetDB(c *gin.Context) *gorm.DB {
	db, exists := c.Get(dbKey)
	if !exists {
		return nil
	}
	return db.(*gorm.DB)
}

func ConfigMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(configKey, cfg)
		c.Next()
	}
}

func GetConfig(c *gin.Context) *config.Config {
	cfg, exists := c.Get(configKey)
	if !exists {
		return nil
	}
	return cfg.(*config.Config)
}

func PublisherMiddleware(publisher events.Publisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(publisherKey, publisher)
		c.Next()
	}
}

// GetPublisher never returns nil; without a configured broker events are dropped.
func GetPublisher(c *gin.Context) events.Publisher {
	publisher, exists := c.Get(publisherKey)
	if !exists {
		return events.NopPublisher{}
	}
	return publisher.(events.Publisher)
}
