package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
	"gorm.io/gorm"

	"github.com/farellandr/theatre/internal/helpers"
	"github.com/farellandr/theatre/internal/middleware"
	"github.com/farellandr/theatre/internal/models"
)

const TicketCodeHeader = "X-Ticket-Code"

type ValidateTicketRequest struct {
	Code string `json:"code" binding:"required"`
}

type ValidatedTicketResponse struct {
	ID          uint                    `json:"id"`
	Reservation uint                    `json:"reservation"`
	Row         int                     `json:"row"`
	Seat        int                     `json:"seat"`
	Performance PerformanceListResponse `json:"performance"`
}

func GetTicketQRCode(c *gin.Context) {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		helpers.RespondWithError(c, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return
	}

	reservationID, ok := pathID(c, "id")
	if !ok {
		return
	}
	ticketID, ok := pathID(c, "ticket_id")
	if !ok {
		return
	}

	gormDB, cfg, ok := requireDeps(c)
	if !ok {
		return
	}

	var reservation models.Reservation
	if err := gormDB.Where("id = ? AND user_id = ?", reservationID, user.ID).First(&reservation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Reservation not found.")
			return
		}
		internalError(c, "Error retrieving reservation.", err)
		return
	}

	var ticket models.Ticket
	if err := gormDB.Where("id = ? AND reservation_id = ?", ticketID, reservation.ID).First(&ticket).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Ticket not found.")
			return
		}
		internalError(c, "Error retrieving ticket.", err)
		return
	}

	code := helpers.NewTicketSigner(cfg.JWTSecret).Encode(ticketClaims(ticket))
	png, err := qrcode.Encode(code, qrcode.Medium, 256)
	if err != nil {
		internalError(c, "Failed to generate QR code.", err)
		return
	}

	c.Header(TicketCodeHeader, code)
	c.Data(http.StatusOK, "image/png", png)
}

func ValidateTicket(c *gin.Context) {
	var req ValidateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithBindError(c, err)
		return
	}

	gormDB, cfg, ok := requireDeps(c)
	if !ok {
		return
	}

	claims, err := helpers.NewTicketSigner(cfg.JWTSecret).Decode(strings.TrimSpace(req.Code))
	if err != nil {
		if errors.Is(err, helpers.ErrBadTicketSignature) {
			helpers.RespondWithError(c, http.StatusForbidden, "Ticket signature is not valid.")
			return
		}
		helpers.RespondWithError(c, http.StatusBadRequest, "Ticket code is malformed.")
		return
	}

	var ticket models.Ticket
	err = gormDB.
		Preload("Performance.Play").
		Preload("Performance.TheatreHall").
		First(&ticket, claims.TicketID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Ticket not found.")
			return
		}
		internalError(c, "Error retrieving ticket.", err)
		return
	}
	if ticketClaims(ticket) != claims {
		helpers.RespondWithError(c, http.StatusNotFound, "Ticket not found.")
		return
	}

	taken, err := takenCounts(gormDB, []uint{ticket.PerformanceID})
	if err != nil {
		internalError(c, "Error counting tickets.", err)
		return
	}

	middleware.GetLogger(c).Sugar().Infow("ticket validated", "ticket_id", ticket.ID, "performance_id", ticket.PerformanceID)
	c.JSON(http.StatusOK, ValidatedTicketResponse{
		ID:          ticket.ID,
		Reservation: ticket.ReservationID,
		Row:         ticket.Row,
		Seat:        ticket.Seat,
		Performance: newPerformanceListResponse(ticket.Performance, taken[ticket.PerformanceID], cfg.MediaURL),
	})
}

func ticketClaims(t models.Ticket) helpers.TicketClaims {
	return helpers.TicketClaims{
		TicketID:      t.ID,
		ReservationID: t.ReservationID,
		PerformanceID: t.PerformanceID,
		Row:           t.Row,
		Seat:          t.Seat,
	}
}
