package services_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"shelter-backend/models"
	"shelter-backend/services"
)

func day(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return t
}

// flakyStore fails availability fetches on demand.
type flakyStore struct {
	services.BookingStore
	fetchErr error
}

func (s *flakyStore) FetchAvailability(start, end time.Time) ([]models.Availability, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return s.BookingStore.FetchAvailability(start, end)
}

func newResolver(t *testing.T, store services.BookingStore, today string) *services.AvailabilityResolver {
	t.Helper()
	r := services.NewAvailabilityResolver(store)
	r.Now = func() time.Time { return day(today) }
	return r
}

func TestResolveDefaultsAndCapacity(t *testing.T) {
	store := services.NewMemoryStore()
	_, err := store.UpdateAvailability(&models.Availability{
		Date:            datatypes.Date(day("2025-01-15")),
		IsAvailable:     true,
		MaxGuests:       6,
		CurrentBookings: 6,
	})
	require.NoError(t, err)

	r := newResolver(t, store, "2025-01-10")

	result, err := r.Resolve(day("2025-01-01"), day("2025-01-31"))
	require.NoError(t, err)
	assert.Len(t, result, 31)

	// Fully booked date.
	assert.False(t, result["2025-01-15"].Bookable)
	assert.Equal(t, 0, result["2025-01-15"].SpotsRemaining)

	// Past dates are never bookable, record or not.
	assert.False(t, result["2025-01-01"].Bookable)
	assert.False(t, result["2025-01-09"].Bookable)

	// Everything else defaults to full capacity.
	assert.True(t, result["2025-01-10"].Bookable)
	assert.True(t, result["2025-01-20"].Bookable)
	assert.Equal(t, 6, result["2025-01-20"].SpotsRemaining)
}

func TestResolveBlockedDate(t *testing.T) {
	store := services.NewMemoryStore()
	_, err := store.UpdateAvailability(&models.Availability{
		Date:        datatypes.Date(day("2025-03-08")),
		IsAvailable: false,
		MaxGuests:   6,
	})
	require.NoError(t, err)

	r := newResolver(t, store, "2025-03-01")
	result, err := r.Resolve(day("2025-03-01"), day("2025-03-31"))
	require.NoError(t, err)

	assert.False(t, result["2025-03-08"].Bookable)
	assert.Equal(t, 0, result["2025-03-08"].SpotsRemaining)
	assert.True(t, result["2025-03-09"].Bookable)
}

func TestResolveMonthsWindow(t *testing.T) {
	store := services.NewMemoryStore()
	r := newResolver(t, store, "2025-05-20")

	result, err := r.ResolveMonths(day("2025-05-20"))
	require.NoError(t, err)

	// May + June 2025: 31 + 30 days.
	assert.Len(t, result, 61)
	_, hasFirst := result["2025-05-01"]
	_, hasLast := result["2025-06-30"]
	assert.True(t, hasFirst)
	assert.True(t, hasLast)
	_, hasJuly := result["2025-07-01"]
	assert.False(t, hasJuly)
}

func TestResolveFetchFailureKeepsLastResult(t *testing.T) {
	mem := services.NewMemoryStore()
	store := &flakyStore{BookingStore: mem}
	r := newResolver(t, store, "2025-02-01")

	_, err := r.Resolve(day("2025-02-01"), day("2025-02-28"))
	require.NoError(t, err)

	store.fetchErr = errors.New("store unreachable")
	_, err = r.Resolve(day("2025-02-01"), day("2025-02-28"))
	require.Error(t, err)

	// Prior good classification is still served for rendering and guards.
	view, ok := r.LastKnown(day("2025-02-10"))
	assert.True(t, ok)
	assert.True(t, view.Bookable)
}

func TestIsBookableUsesCachedResult(t *testing.T) {
	mem := services.NewMemoryStore()
	store := &flakyStore{BookingStore: mem}
	r := newResolver(t, store, "2025-02-01")

	_, err := r.Resolve(day("2025-02-01"), day("2025-02-28"))
	require.NoError(t, err)

	// Even with the store down, cached dates answer without a fetch.
	store.fetchErr = errors.New("store unreachable")
	assert.True(t, r.IsBookable(day("2025-02-10")))
	assert.False(t, r.IsBookable(day("2025-01-15")))

	// Never-resolved date with a broken store fails closed.
	assert.False(t, r.IsBookable(day("2025-04-01")))
}

func TestTodayStaysBookableBehindUTC(t *testing.T) {
	store := services.NewMemoryStore()
	r := services.NewAvailabilityResolver(store)

	// Server clock in a zone behind UTC, range dates UTC-parsed: the
	// current calendar day must not be classified as past.
	zone := time.FixedZone("UTC-5", -5*60*60)
	r.Now = func() time.Time { return time.Date(2025, 6, 10, 8, 0, 0, 0, zone) }

	result, err := r.Resolve(day("2025-06-01"), day("2025-06-30"))
	require.NoError(t, err)

	assert.True(t, result["2025-06-10"].Bookable)
	assert.Equal(t, 6, result["2025-06-10"].SpotsRemaining)
	assert.False(t, result["2025-06-09"].Bookable)
	assert.True(t, result["2025-06-11"].Bookable)

	assert.True(t, r.IsBookable(day("2025-06-10")))
	assert.False(t, r.IsBookable(day("2025-06-09")))
}

func TestTodayStaysBookableAheadOfUTC(t *testing.T) {
	store := services.NewMemoryStore()
	r := services.NewAvailabilityResolver(store)

	zone := time.FixedZone("UTC+13", 13*60*60)
	r.Now = func() time.Time { return time.Date(2025, 6, 10, 8, 0, 0, 0, zone) }

	result, err := r.Resolve(day("2025-06-01"), day("2025-06-30"))
	require.NoError(t, err)

	assert.True(t, result["2025-06-10"].Bookable)
	assert.False(t, result["2025-06-09"].Bookable)
	assert.True(t, r.IsBookable(day("2025-06-10")))
}

func TestInvalidRange(t *testing.T) {
	r := newResolver(t, services.NewMemoryStore(), "2025-01-01")
	_, err := r.Resolve(day("2025-01-31"), day("2025-01-01"))
	assert.Error(t, err)
}
