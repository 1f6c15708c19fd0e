package models

import (
	"time"
)

type Performance struct {
	ID            uint        `gorm:"primaryKey"`
	PlayID        uint        `gorm:"not null;index"`
	Play          Play        `gorm:"constraint:OnDelete:CASCADE;"`
	TheatreHallID uint        `gorm:"not null;index"`
	TheatreHall   TheatreHall `gorm:"constraint:OnDelete:CASCADE;"`
	ShowTime      time.Time   `gorm:"not null;index"`
	Tickets       []Ticket
}
