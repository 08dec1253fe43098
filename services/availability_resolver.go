package services

import (
	"fmt"
	"sync"
	"time"

	"shelter-backend/models"
)

// AvailabilityView is what the calendar renders for one date.
type AvailabilityView struct {
	Bookable       bool `json:"bookable"`
	SpotsRemaining int  `json:"spots_remaining"`
}

// AvailabilityResolver classifies calendar dates as past, unavailable or
// available-with-N-spots. It keeps the last successful result so a failed
// refresh never silently downgrades to "everything bookable", and so the
// workflow can re-check a date at submit time without another fetch.
type AvailabilityResolver struct {
	Store BookingStore
	Now   func() time.Time

	mu   sync.Mutex
	last map[string]AvailabilityView
}

func NewAvailabilityResolver(store BookingStore) *AvailabilityResolver {
	return &AvailabilityResolver{Store: store, Now: time.Now}
}

// Resolve fetches availability for the inclusive range in one batched call
// and classifies every date in it. Dates with no row default to bookable with
// full capacity; dates before today are never bookable.
func (r *AvailabilityResolver) Resolve(start, end time.Time) (map[string]AvailabilityView, error) {
	from := dateOnly(start)
	to := dateOnly(end)
	if to.Before(from) {
		return nil, fmt.Errorf("invalid range: %s after %s", from.Format("2006-01-02"), to.Format("2006-01-02"))
	}

	rows, err := r.Store.FetchAvailability(from, to)
	if err != nil {
		// Retryable: the previous good result stays cached for rendering.
		return nil, err
	}

	byDate := make(map[string]AvailabilityView, len(rows))
	for i := range rows {
		byDate[rows[i].DateString()] = AvailabilityView{
			Bookable:       rows[i].Bookable(),
			SpotsRemaining: rows[i].SpotsRemaining(),
		}
	}

	// Calendar-date comparison: range dates arrive UTC-parsed while the
	// clock runs in the server zone, so comparing instants would misclassify
	// the current day in zones behind UTC.
	today := r.Now().Format("2006-01-02")
	result := make(map[string]AvailabilityView)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		view, ok := byDate[key]
		if !ok {
			view = AvailabilityView{Bookable: true, SpotsRemaining: models.DefaultMaxGuests}
		}
		if key < today {
			view.Bookable = false
			view.SpotsRemaining = 0
		}
		result[key] = view
	}

	r.mu.Lock()
	if r.last == nil {
		r.last = make(map[string]AvailabilityView)
	}
	for k, v := range result {
		r.last[k] = v
	}
	r.mu.Unlock()

	return result, nil
}

// ResolveMonths resolves the month containing ref plus the following month,
// the window the calendar prefetches for forward navigation.
func (r *AvailabilityResolver) ResolveMonths(ref time.Time) (map[string]AvailabilityView, error) {
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	last := first.AddDate(0, 2, -1)
	return r.Resolve(first, last)
}

// LastKnown returns the cached view for a date, if any was ever resolved.
func (r *AvailabilityResolver) LastKnown(date time.Time) (AvailabilityView, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	view, ok := r.last[dateOnly(date).Format("2006-01-02")]
	return view, ok
}

// IsBookable is the submit-time guard. Past dates fail outright; a cached
// classification is answered without touching the store, and only a date
// never resolved before triggers a single-day fetch.
func (r *AvailabilityResolver) IsBookable(date time.Time) bool {
	d := dateOnly(date)
	if d.Format("2006-01-02") < r.Now().Format("2006-01-02") {
		return false
	}
	if view, ok := r.LastKnown(d); ok {
		return view.Bookable
	}
	result, err := r.Resolve(d, d)
	if err != nil {
		return false
	}
	return result[d.Format("2006-01-02")].Bookable
}
