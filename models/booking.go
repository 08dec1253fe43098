package models

import (
	"time"

	"gorm.io/datatypes"
)

// Booking status domain is closed: no other values are accepted by the store.
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

func IsValidBookingStatus(status string) bool {
	switch status {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled:
		return true
	}
	return false
}

type Booking struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	FirstName string `gorm:"column:first_name;size:100" json:"first_name"`
	LastName  string `gorm:"column:last_name;size:100" json:"last_name"`
	Email     string `gorm:"column:email;size:150;index" json:"email"`
	Phone     string `gorm:"column:phone;size:50" json:"phone"`

	BookingDate     datatypes.Date `gorm:"column:booking_date;index" json:"booking_date"`
	Guests          int            `gorm:"column:guests" json:"guests"`
	SpecialRequests string         `gorm:"column:special_requests;type:text" json:"special_requests,omitempty"`

	Status        string `gorm:"column:status;size:32;default:pending" json:"status"`
	EmailVerified bool   `gorm:"column:email_verified;default:false" json:"email_verified"`

	// Set once at creation, never rotated afterwards.
	VerificationCode string `gorm:"column:verification_code;size:6" json:"-"`
}

// DateString renders the stay date as yyyy-MM-dd.
func (b *Booking) DateString() string {
	return time.Time(b.BookingDate).Format("2006-01-02")
}
