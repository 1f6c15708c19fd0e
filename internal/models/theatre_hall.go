package models

type TheatreHall struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Name       string `gorm:"size:255;not null" json:"name"`
	Rows       int    `gorm:"not null" json:"rows"`
	SeatsInRow int    `gorm:"not null" json:"seats_in_row"`
}

func (h TheatreHall) Capacity() int {
	return h.Rows * h.SeatsInRow
}
