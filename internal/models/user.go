package models

import (
	"time"
)

type User struct {
	ID          uint   `gorm:"primaryKey"`
	Email       string `gorm:"uniqueIndex;not null"`
	Password    string `gorm:"not null"`
	FirstName   string
	LastName    string
	IsStaff     bool `gorm:"not null;default:false"`
	IsSuperuser bool `gorm:"not null;default:false"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CanManage reports whether the user may perform write operations on the catalogue.
func (u *User) CanManage() bool {
	return u.IsStaff || u.IsSuperuser
}
