// Package events defines the domain events the API emits and the broker
// publishers that deliver them.
package events

import "time"

const ReservationCreated = "reservation.created"

type TicketPlace struct {
	PerformanceID uint      `json:"performance_id"`
	PlayTitle     string    `json:"play_title"`
	TheatreHall   string    `json:"theatre_hall"`
	ShowTime      time.Time `json:"show_time"`
	Row           int       `json:"row"`
	Seat          int       `json:"seat"`
}

type ReservationCreatedEvent struct {
	ReservationID uint          `json:"reservation_id"`
	UserID        uint          `json:"user_id"`
	UserEmail     string        `json:"user_email"`
	Tickets       []TicketPlace `json:"tickets"`
	CreatedAt     time.Time     `json:"created_at"`
}
