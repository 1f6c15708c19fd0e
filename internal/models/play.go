package models

import (
	"time"
)

type Play struct {
	ID          uint   `gorm:"primaryKey"`
	Title       string `gorm:"size:255;not null;index"`
	Description string `gorm:"type:text"`
	Duration    int    `gorm:"not null"`
	Image       *string
	Genres      []Genre `gorm:"many2many:play_genres;"`
	Actors      []Actor `gorm:"many2many:play_actors;"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
