package models

import (
	"time"

	"gorm.io/datatypes"
)

// DefaultMaxGuests is the implicit capacity of a date with no availability row.
const DefaultMaxGuests = 6

type Availability struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Date            datatypes.Date `gorm:"column:date;uniqueIndex" json:"date"`
	IsAvailable     bool           `gorm:"column:is_available;default:true" json:"is_available"`
	MaxGuests       int            `gorm:"column:max_guests;default:6" json:"max_guests"`
	CurrentBookings int            `gorm:"column:current_bookings;default:0" json:"current_bookings"`
}

// Bookable reports whether the date still accepts bookings, ignoring the
// past-date rule (that one belongs to the resolver).
func (a *Availability) Bookable() bool {
	return a.IsAvailable && a.CurrentBookings < a.MaxGuests
}

func (a *Availability) SpotsRemaining() int {
	if !a.IsAvailable {
		return 0
	}
	remaining := a.MaxGuests - a.CurrentBookings
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (a *Availability) DateString() string {
	return time.Time(a.Date).Format("2006-01-02")
}
