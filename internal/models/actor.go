package models

type Actor struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	FirstName string `gorm:"size:255;not null" json:"first_name"`
	LastName  string `gorm:"size:255;not null" json:"last_name"`
}

func (a Actor) FullName() string {
	return a.FirstName + " " + a.LastName
}
