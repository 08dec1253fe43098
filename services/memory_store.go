package services

import (
	"sync"
	"time"

	"gorm.io/datatypes"

	"shelter-backend/models"
)

// MemoryStore is an in-process BookingStore with the same semantics as the
// MySQL one. Selected with DB_DRIVER=memory; also the substrate for tests.
type MemoryStore struct {
	mu           sync.Mutex
	nextID       uint
	bookings     map[uint]models.Booking
	availability map[string]models.Availability
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID:       1,
		bookings:     make(map[uint]models.Booking),
		availability: make(map[string]models.Availability),
	}
}

func (s *MemoryStore) FetchAvailability(start, end time.Time) ([]models.Availability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	from := dateOnly(start)
	to := dateOnly(end)
	out := make([]models.Availability, 0)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if a, ok := s.availability[d.Format("2006-01-02")]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *MemoryStore) CreateBooking(b *models.Booking) (*models.Booking, error) {
	if b.Status == "" {
		b.Status = models.BookingStatusPending
	}
	if b.Status != models.BookingStatusPending {
		return nil, ErrInvalidStatus
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := b.DateString()
	avail, ok := s.availability[key]
	if !ok {
		avail = models.Availability{
			ID:          uint(len(s.availability) + 1),
			Date:        b.BookingDate,
			IsAvailable: true,
			MaxGuests:   models.DefaultMaxGuests,
		}
	}
	if !avail.Bookable() {
		return nil, ErrDateUnavailable
	}
	avail.CurrentBookings++
	s.availability[key] = avail

	now := time.Now().UTC()
	b.ID = s.nextID
	s.nextID++
	b.CreatedAt = now
	b.UpdatedAt = now

	s.bookings[b.ID] = *b
	return b, nil
}

func (s *MemoryStore) GetBooking(id uint) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	return &b, nil
}

func (s *MemoryStore) VerifyCode(id uint, code string) (bool, error) {
	b, err := s.GetBooking(id)
	if err != nil {
		return false, err
	}
	return b.VerificationCode != "" && b.VerificationCode == code, nil
}

func (s *MemoryStore) UpdateBookingStatus(id uint, status string, emailVerified bool) (*models.Booking, error) {
	if !models.IsValidBookingStatus(status) {
		return nil, ErrInvalidStatus
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}

	if status == models.BookingStatusCancelled && b.Status != models.BookingStatusCancelled {
		key := b.DateString()
		if a, ok := s.availability[key]; ok && a.CurrentBookings > 0 {
			a.CurrentBookings--
			s.availability[key] = a
		}
	}

	b.Status = status
	b.EmailVerified = emailVerified
	b.UpdatedAt = time.Now().UTC()
	s.bookings[id] = b
	return &b, nil
}

func (s *MemoryStore) UpdateAvailability(a *models.Availability) (*models.Availability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := a.DateString()
	existing, ok := s.availability[key]
	if !ok {
		if a.MaxGuests <= 0 {
			a.MaxGuests = models.DefaultMaxGuests
		}
		if a.ID == 0 {
			a.ID = uint(len(s.availability) + 1)
		}
		s.availability[key] = *a
		out := *a
		return &out, nil
	}

	existing.IsAvailable = a.IsAvailable
	if a.MaxGuests > 0 {
		existing.MaxGuests = a.MaxGuests
	}
	s.availability[key] = existing
	out := existing
	return &out, nil
}

// SeedBlockedDate marks a date fully unavailable; used by the seeding step in
// memory mode.
func (s *MemoryStore) SeedBlockedDate(date time.Time) {
	_, _ = s.UpdateAvailability(&models.Availability{
		Date:        datatypes.Date(dateOnly(date)),
		IsAvailable: false,
		MaxGuests:   models.DefaultMaxGuests,
	})
}
