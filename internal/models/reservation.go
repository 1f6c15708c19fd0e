package models

import (
	"time"
)

type Reservation struct {
	ID        uint     `gorm:"primaryKey"`
	UserID    uint     `gorm:"not null;index"`
	User      User     `gorm:"constraint:OnDelete:CASCADE;"`
	Tickets   []Ticket `gorm:"constraint:OnDelete:CASCADE;"`
	CreatedAt time.Time
}

type Ticket struct {
	ID            uint `gorm:"primaryKey"`
	Row           int  `gorm:"not null;uniqueIndex:idx_ticket_place"`
	Seat          int  `gorm:"not null;uniqueIndex:idx_ticket_place"`
	PerformanceID uint `gorm:"not null;uniqueIndex:idx_ticket_place"`
	Performance   Performance
	ReservationID uint `gorm:"not null;index"`
	Reservation   Reservation
}
