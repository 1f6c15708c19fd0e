package handlers

import (
	"sort"
	"time"

	"github.com/farellandr/theatre/internal/helpers"
	"github.com/farellandr/theatre/internal/models"
)

type ActorResponse struct {
	ID        uint   `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	FullName  string `json:"full_name"`
}

type TheatreHallResponse struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	Rows       int    `json:"rows"`
	SeatsInRow int    `json:"seats_in_row"`
	Capacity   int    `json:"capacity"`
}

type PlayListResponse struct {
	ID          uint     `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Duration    int      `json:"duration"`
	Genres      []string `json:"genres"`
	Actors      []string `json:"actors"`
	Image       *string  `json:"image"`
}

type PlayDetailResponse struct {
	ID          uint            `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Duration    int             `json:"duration"`
	Image       *string         `json:"image"`
	Genres      []models.Genre  `json:"genres"`
	Actors      []ActorResponse `json:"actors"`
}

type PlayResponse struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Duration    int    `json:"duration"`
	Genres      []uint `json:"genres"`
	Actors      []uint `json:"actors"`
}

type PlayImageResponse struct {
	ID    uint    `json:"id"`
	Image *string `json:"image"`
}

type PerformanceResponse struct {
	ID          uint      `json:"id"`
	ShowTime    time.Time `json:"show_time"`
	Play        uint      `json:"play"`
	TheatreHall uint      `json:"theatre_hall"`
}

type PerformanceListResponse struct {
	ID                  uint      `json:"id"`
	ShowTime            time.Time `json:"show_time"`
	PlayTitle           string    `json:"play_title"`
	PlayImage           *string   `json:"play_image"`
	TheatreHallName     string    `json:"theatre_hall_name"`
	TheatreHallCapacity int       `json:"theatre_hall_capacity"`
	TicketsAvailable    int       `json:"tickets_available"`
}

type TakenPlace struct {
	Row  int `json:"row"`
	Seat int `json:"seat"`
}

type PerformanceDetailResponse struct {
	ID          uint                `json:"id"`
	ShowTime    time.Time           `json:"show_time"`
	Play        PlayListResponse    `json:"play"`
	TheatreHall TheatreHallResponse `json:"theatre_hall"`
	TakenPlaces []TakenPlace        `json:"taken_places"`
}

type TicketResponse struct {
	ID          uint                    `json:"id"`
	Row         int                     `json:"row"`
	Seat        int                     `json:"seat"`
	Performance PerformanceListResponse `json:"performance"`
}

type ReservationResponse struct {
	ID        uint             `json:"id"`
	CreatedAt time.Time        `json:"created_at"`
	Tickets   []TicketResponse `json:"tickets"`
}

type UserResponse struct {
	ID          uint   `json:"id"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
}

func newUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
	}
}

func newActorResponse(a models.Actor) ActorResponse {
	return ActorResponse{
		ID:        a.ID,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		FullName:  a.FullName(),
	}
}

func newTheatreHallResponse(h models.TheatreHall) TheatreHallResponse {
	return TheatreHallResponse{
		ID:         h.ID,
		Name:       h.Name,
		Rows:       h.Rows,
		SeatsInRow: h.SeatsInRow,
		Capacity:   h.Capacity(),
	}
}

func newPlayListResponse(p models.Play, mediaURL string) PlayListResponse {
	genres := make([]string, 0, len(p.Genres))
	for _, g := range p.Genres {
		genres = append(genres, g.Name)
	}
	actors := make([]string, 0, len(p.Actors))
	for _, a := range p.Actors {
		actors = append(actors, a.FullName())
	}

	return PlayListResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Duration:    p.Duration,
		Genres:      genres,
		Actors:      actors,
		Image:       helpers.MediaURL(mediaURL, p.Image),
	}
}

func newPlayDetailResponse(p models.Play, mediaURL string) PlayDetailResponse {
	genres := make([]models.Genre, 0, len(p.Genres))
	genres = append(genres, p.Genres...)
	actors := make([]ActorResponse, 0, len(p.Actors))
	for _, a := range p.Actors {
		actors = append(actors, newActorResponse(a))
	}

	return PlayDetailResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Duration:    p.Duration,
		Image:       helpers.MediaURL(mediaURL, p.Image),
		Genres:      genres,
		Actors:      actors,
	}
}

func newPlayResponse(p models.Play) PlayResponse {
	genres := make([]uint, 0, len(p.Genres))
	for _, g := range p.Genres {
		genres = append(genres, g.ID)
	}
	actors := make([]uint, 0, len(p.Actors))
	for _, a := range p.Actors {
		actors = append(actors, a.ID)
	}

	return PlayResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Duration:    p.Duration,
		Genres:      genres,
		Actors:      actors,
	}
}

func newPerformanceResponse(p models.Performance) PerformanceResponse {
	return PerformanceResponse{
		ID:          p.ID,
		ShowTime:    p.ShowTime,
		Play:        p.PlayID,
		TheatreHall: p.TheatreHallID,
	}
}

// newPerformanceListResponse expects Play and TheatreHall to be preloaded.
func newPerformanceListResponse(p models.Performance, taken int, mediaURL string) PerformanceListResponse {
	return PerformanceListResponse{
		ID:                  p.ID,
		ShowTime:            p.ShowTime,
		PlayTitle:           p.Play.Title,
		PlayImage:           helpers.MediaURL(mediaURL, p.Play.Image),
		TheatreHallName:     p.TheatreHall.Name,
		TheatreHallCapacity: p.TheatreHall.Capacity(),
		TicketsAvailable:    p.TheatreHall.Capacity() - taken,
	}
}

func newPerformanceDetailResponse(p models.Performance, mediaURL string) PerformanceDetailResponse {
	places := make([]TakenPlace, 0, len(p.Tickets))
	for _, t := range p.Tickets {
		places = append(places, TakenPlace{Row: t.Row, Seat: t.Seat})
	}
	sort.Slice(places, func(i, j int) bool {
		if places[i].Row != places[j].Row {
			return places[i].Row < places[j].Row
		}
		return places[i].Seat < places[j].Seat
	})

	return PerformanceDetailResponse{
		ID:          p.ID,
		ShowTime:    p.ShowTime,
		Play:        newPlayListResponse(p.Play, mediaURL),
		TheatreHall: newTheatreHallResponse(p.TheatreHall),
		TakenPlaces: places,
	}
}

func newReservationResponse(r models.Reservation, taken map[uint]int, mediaURL string) ReservationResponse {
	tickets := make([]TicketResponse, 0, len(r.Tickets))
	for _, t := range r.Tickets {
		tickets = append(tickets, TicketResponse{
			ID:          t.ID,
			Row:         t.Row,
			Seat:        t.Seat,
			Performance: newPerformanceListResponse(t.Performance, taken[t.PerformanceID], mediaURL),
		})
	}

	return ReservationResponse{
		ID:        r.ID,
		CreatedAt: r.CreatedAt,
		Tickets:   tickets,
	}
}
