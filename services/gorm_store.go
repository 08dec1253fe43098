package services

import (
	"errors"
	"fmt"
	"time"

	mysql "github.com/go-sql-driver/mysql"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shelter-backend/models"
)

// GormBookingStore is the MySQL-backed BookingStore.
type GormBookingStore struct {
	DB *gorm.DB
}

func NewGormBookingStore(db *gorm.DB) *GormBookingStore {
	return &GormBookingStore{DB: db}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func isDuplicateKey(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == 1062
}

func (s *GormBookingStore) FetchAvailability(start, end time.Time) ([]models.Availability, error) {
	var rows []models.Availability
	if err := s.DB.
		Where("date BETWEEN ? AND ?", datatypes.Date(dateOnly(start)), datatypes.Date(dateOnly(end))).
		Order("date ASC").
		Find(&rows).Error; err != nil {
		return nil, &PersistenceError{Op: "fetch_availability", Err: err}
	}
	return rows, nil
}

// CreateBooking enforces capacity inside one transaction: the availability
// row for the date is locked, checked, and its booking count incremented
// together with the insert. A missing row is created with default capacity.
func (s *GormBookingStore) CreateBooking(b *models.Booking) (*models.Booking, error) {
	if b.Status == "" {
		b.Status = models.BookingStatusPending
	}
	if b.Status != models.BookingStatusPending {
		return nil, ErrInvalidStatus
	}

	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		var avail models.Availability
		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("date = ?", b.BookingDate).
			First(&avail).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			avail = models.Availability{
				Date:        b.BookingDate,
				IsAvailable: true,
				MaxGuests:   models.DefaultMaxGuests,
			}
			if err := tx.Create(&avail).Error; err != nil {
				return fmt.Errorf("failed to create availability row: %w", err)
			}
		} else if err != nil {
			return fmt.Errorf("failed to load availability: %w", err)
		}

		if !avail.Bookable() {
			return ErrDateUnavailable
		}

		if err := tx.Create(b).Error; err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}

		if err := tx.Model(&models.Availability{}).
			Where("id = ?", avail.ID).
			UpdateColumn("current_bookings", gorm.Expr("current_bookings + 1")).Error; err != nil {
			return fmt.Errorf("failed to update booking count: %w", err)
		}
		return nil
	})

	if txErr != nil {
		if errors.Is(txErr, ErrDateUnavailable) {
			return nil, ErrDateUnavailable
		}
		if isDuplicateKey(txErr) {
			return nil, &PersistenceError{Op: "create_booking", Err: fmt.Errorf("constraint violation: %w", txErr)}
		}
		return nil, &PersistenceError{Op: "create_booking", Err: txErr}
	}
	return b, nil
}

func (s *GormBookingStore) GetBooking(id uint) (*models.Booking, error) {
	var b models.Booking
	if err := s.DB.First(&b, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, &PersistenceError{Op: "get_booking", Err: err}
	}
	return &b, nil
}

func (s *GormBookingStore) VerifyCode(id uint, code string) (bool, error) {
	b, err := s.GetBooking(id)
	if err != nil {
		return false, err
	}
	return b.VerificationCode != "" && b.VerificationCode == code, nil
}

// UpdateBookingStatus also keeps the availability booking count honest: a
// booking leaving the accepted set (-> cancelled) releases its slot.
func (s *GormBookingStore) UpdateBookingStatus(id uint, status string, emailVerified bool) (*models.Booking, error) {
	if !models.IsValidBookingStatus(status) {
		return nil, ErrInvalidStatus
	}

	var updated models.Booking
	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		var b models.Booking
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&b, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return err
		}

		releasing := status == models.BookingStatusCancelled && b.Status != models.BookingStatusCancelled

		if err := tx.Model(&b).Updates(map[string]interface{}{
			"status":         status,
			"email_verified": emailVerified,
		}).Error; err != nil {
			return err
		}

		if releasing {
			if err := tx.Model(&models.Availability{}).
				Where("date = ? AND current_bookings > 0", b.BookingDate).
				UpdateColumn("current_bookings", gorm.Expr("current_bookings - 1")).Error; err != nil {
				return err
			}
		}

		return tx.First(&updated, id).Error
	})

	if txErr != nil {
		if errors.Is(txErr, ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, &PersistenceError{Op: "update_booking_status", Err: txErr}
	}
	return &updated, nil
}

func (s *GormBookingStore) UpdateAvailability(a *models.Availability) (*models.Availability, error) {
	var existing models.Availability
	err := s.DB.Where("date = ?", a.Date).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if a.MaxGuests <= 0 {
			a.MaxGuests = models.DefaultMaxGuests
		}
		if err := s.DB.Create(a).Error; err != nil {
			return nil, &PersistenceError{Op: "update_availability", Err: err}
		}
		return a, nil
	}
	if err != nil {
		return nil, &PersistenceError{Op: "update_availability", Err: err}
	}

	existing.IsAvailable = a.IsAvailable
	if a.MaxGuests > 0 {
		existing.MaxGuests = a.MaxGuests
	}
	if err := s.DB.Save(&existing).Error; err != nil {
		return nil, &PersistenceError{Op: "update_availability", Err: err}
	}
	return &existing, nil
}
