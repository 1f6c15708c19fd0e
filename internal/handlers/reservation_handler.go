package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/farellandr/theatre/internal/events"
	"github.com/farellandr/theatre/internal/helpers"
	"github.com/farellandr/theatre/internal/middleware"
	"github.com/farellandr/theatre/internal/models"
)

type TicketRequest struct {
	Row         int  `json:"row" binding:"required,gt=0"`
	Seat        int  `json:"seat" binding:"required,gt=0"`
	Performance uint `json:"performance" binding:"required"`
}

type ReservationRequest struct {
	Tickets []TicketRequest `json:"tickets" binding:"required,min=1,dive"`
}

// ticketError carries a client facing validation message out of the reservation transaction.
type ticketError struct {
	Message string
}

func (e *ticketError) Error() string {
	return e.Message
}

func ListReservations(c *gin.Context) {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		helpers.RespondWithError(c, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return
	}

	pagination, err := helpers.ParsePagination(c.DefaultQuery("page", "1"), c.DefaultQuery("limit", "10"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	gormDB, cfg, ok := requireDeps(c)
	if !ok {
		return
	}

	var total int64
	if err := gormDB.Model(&models.Reservation{}).Where("user_id = ?", user.ID).Count(&total).Error; err != nil {
		internalError(c, "Error counting reservations.", err)
		return
	}

	var reservations []models.Reservation
	err = preloadReservation(gormDB).
		Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Order("id DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit).
		Find(&reservations).Error
	if err != nil {
		internalError(c, "Error retrieving reservations.", err)
		return
	}

	var performanceIDs []uint
	for _, r := range reservations {
		for _, t := range r.Tickets {
			performanceIDs = append(performanceIDs, t.PerformanceID)
		}
	}
	taken, err := takenCounts(gormDB, performanceIDs)
	if err != nil {
		internalError(c, "Error counting tickets.", err)
		return
	}

	response := make([]ReservationResponse, 0, len(reservations))
	for _, r := range reservations {
		response = append(response, newReservationResponse(r, taken, cfg.MediaURL))
	}

	c.JSON(http.StatusOK, gin.H{
		"reservations": response,
		"total":        total,
		"page":         pagination.Page,
		"limit":        pagination.Limit,
		"total_pages":  pagination.TotalPages(total),
	})
}

func CreateReservation(c *gin.Context) {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		helpers.RespondWithError(c, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return
	}

	var req ReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithBindError(c, err)
		return
	}

	gormDB, cfg, ok := requireDeps(c)
	if !ok {
		return
	}

	reservation := models.Reservation{UserID: user.ID}
	err := gormDB.Transaction(func(tx *gorm.DB) error {
		tickets, err := buildTickets(tx, req.Tickets)
		if err != nil {
			return err
		}

		if err := tx.Omit(clause.Associations).Create(&reservation).Error; err != nil {
			return fmt.Errorf("create reservation: %w", err)
		}

		for i := range tickets {
			tickets[i].ReservationID = reservation.ID
		}
		if err := tx.Omit(clause.Associations).Create(&tickets).Error; err != nil {
			return fmt.Errorf("create tickets: %w", err)
		}
		return nil
	})
	if err != nil {
		var te *ticketError
		switch {
		case errors.As(err, &te):
			helpers.RespondWithError(c, http.StatusBadRequest, te.Message)
		case errors.Is(err, gorm.ErrDuplicatedKey):
			helpers.RespondWithError(c, http.StatusBadRequest, "Seat already taken.")
		default:
			internalError(c, "Failed to create reservation.", err)
		}
		return
	}

	if err := preloadReservation(gormDB).First(&reservation, reservation.ID).Error; err != nil {
		internalError(c, "Error retrieving reservation.", err)
		return
	}

	performanceIDs := make([]uint, 0, len(reservation.Tickets))
	for _, t := range reservation.Tickets {
		performanceIDs = append(performanceIDs, t.PerformanceID)
	}
	taken, err := takenCounts(gormDB, performanceIDs)
	if err != nil {
		internalError(c, "Error counting tickets.", err)
		return
	}

	publishReservationCreated(c, user, reservation)

	c.JSON(http.StatusCreated, newReservationResponse(reservation, taken, cfg.MediaURL))
}

func preloadReservation(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Tickets", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Tickets.Performance.Play").
		Preload("Tickets.Performance.TheatreHall")
}

// buildTickets validates every requested place against its hall and the
// tickets already sold. The unique index on tickets still guards races
// between concurrent transactions.
func buildTickets(tx *gorm.DB, requested []TicketRequest) ([]models.Ticket, error) {
	halls := map[uint]models.TheatreHall{}
	type seatKey struct {
		performance uint
		row, seat   int
	}
	seen := map[seatKey]bool{}
	tickets := make([]models.Ticket, 0, len(requested))

	for _, item := range requested {
		hall, cached := halls[item.Performance]
		if !cached {
			var performance models.Performance
			if err := tx.Preload("TheatreHall").First(&performance, item.Performance).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, &ticketError{Message: fmt.Sprintf("Invalid performance id %d.", item.Performance)}
				}
				return nil, fmt.Errorf("load performance: %w", err)
			}
			hall = performance.TheatreHall
			halls[item.Performance] = hall
		}

		if item.Row < 1 || item.Row > hall.Rows {
			return nil, &ticketError{Message: fmt.Sprintf("row number must be in available range: (1, rows): (1, %d)", hall.Rows)}
		}
		if item.Seat < 1 || item.Seat > hall.SeatsInRow {
			return nil, &ticketError{Message: fmt.Sprintf("seat number must be in available range: (1, seats_in_row): (1, %d)", hall.SeatsInRow)}
		}

		key := seatKey{performance: item.Performance, row: item.Row, seat: item.Seat}
		if seen[key] {
			return nil, &ticketError{Message: fmt.Sprintf("Seat (%d, %d) is requested more than once.", item.Row, item.Seat)}
		}
		seen[key] = true

		place := models.Ticket{Row: item.Row, Seat: item.Seat, PerformanceID: item.Performance}

		var taken int64
		if err := tx.Model(&models.Ticket{}).Where(&place).Count(&taken).Error; err != nil {
			return nil, fmt.Errorf("check seat: %w", err)
		}
		if taken > 0 {
			return nil, &ticketError{Message: fmt.Sprintf("Seat (%d, %d) already taken.", item.Row, item.Seat)}
		}

		tickets = append(tickets, place)
	}
	return tickets, nil
}

func publishReservationCreated(c *gin.Context, user *models.User, reservation models.Reservation) {
	event := events.ReservationCreatedEvent{
		ReservationID: reservation.ID,
		UserID:        user.ID,
		UserEmail:     user.Email,
		CreatedAt:     reservation.CreatedAt,
	}
	for _, t := range reservation.Tickets {
		event.Tickets = append(event.Tickets, events.TicketPlace{
			PerformanceID: t.PerformanceID,
			PlayTitle:     t.Performance.Play.Title,
			TheatreHall:   t.Performance.TheatreHall.Name,
			ShowTime:      t.Performance.ShowTime,
			Row:           t.Row,
			Seat:          t.Seat,
		})
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := middleware.GetPublisher(c).Publish(ctx, events.ReservationCreated, event); err != nil {
		middleware.GetLogger(c).Sugar().Warnw("failed to publish reservation event", "reservation_id", reservation.ID, "error", err)
	}
}
