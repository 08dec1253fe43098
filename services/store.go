package services

import (
	"errors"
	"fmt"
	"time"

	"shelter-backend/models"
)

// Store-level sentinel errors. Controllers and the workflow map these onto
// localized error codes.
var (
	ErrBookingNotFound = errors.New("booking_not_found")
	ErrDateUnavailable = errors.New("date_unavailable")
	ErrInvalidStatus   = errors.New("invalid_status")
)

// PersistenceError wraps a failed store call. The operation name ends up in
// logs, never in user-facing messages.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure in %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// BookingStore is the capability contract toward the persistence layer.
// Any storage satisfying it is substitutable; the workflow and resolver only
// ever talk through this interface.
type BookingStore interface {
	// FetchAvailability returns the availability rows intersecting the
	// inclusive date range. Dates with no row are simply absent.
	FetchAvailability(start, end time.Time) ([]models.Availability, error)

	// CreateBooking persists a new booking, assigning identity and
	// timestamps. It enforces the capacity invariant server-side and fails
	// with ErrDateUnavailable when the date cannot accept another booking.
	CreateBooking(b *models.Booking) (*models.Booking, error)

	// GetBooking fails with ErrBookingNotFound when the id does not resolve.
	GetBooking(id uint) (*models.Booking, error)

	// VerifyCode reports whether code exactly matches the stored
	// verification code of the booking.
	VerifyCode(id uint, code string) (bool, error)

	// UpdateBookingStatus moves a booking to the given status and verified
	// flag and returns the updated record.
	UpdateBookingStatus(id uint, status string, emailVerified bool) (*models.Booking, error)

	// UpdateAvailability creates or overwrites the availability row for the
	// record's date (keeper-facing: blocking dates, adjusting capacity).
	UpdateAvailability(a *models.Availability) (*models.Availability, error)
}
