package services

import (
	"errors"
	"log"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"shelter-backend/models"
	"shelter-backend/utils"
)

// Workflow states. SelectingDate and FormEntry share one screen but are
// distinct states: submit is only reachable from FormEntry.
type WorkflowState string

const (
	StateSelectingDate        WorkflowState = "selecting_date"
	StateFormEntry            WorkflowState = "form_entry"
	StateSubmitting           WorkflowState = "submitting"
	StateAwaitingVerification WorkflowState = "awaiting_verification"
	StateConfirmed            WorkflowState = "confirmed"
)

// ResendCooldown is how long the resend action stays disabled after firing.
const ResendCooldown = 60 * time.Second

var (
	ErrSessionNotFound = errors.New("session_not_found")
	ErrDateNotBookable = errors.New("date_not_bookable")
	ErrCodeMismatch    = errors.New("verification_mismatch")
	ErrResendCooldown  = errors.New("resend_cooldown")
	ErrWrongState      = errors.New("wrong_state")
)

// ValidationError points at a single malformed form field. Key is the i18n
// message key for the inline error.
type ValidationError struct {
	Field string
	Key   string
}

func (e *ValidationError) Error() string {
	return "invalid field: " + e.Field
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// BookingForm carries the contact fields of the draft.
type BookingForm struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Guests          int    `json:"guests"`
	SpecialRequests string `json:"special_requests"`
}

// BookingSession is the draft threading the multi-step flow. It is owned by
// the WorkflowService and discarded wholesale on back-to-start.
type BookingSession struct {
	ID       string
	Language string
	State    WorkflowState

	SelectedDate time.Time
	Form         BookingForm

	BookingID uint
	Email     string
	Booking   *models.Booking

	ResendAvailableAt time.Time
}

// WorkflowService owns every active booking session and is the only place
// session state mutates. One session drives at most one booking at a time.
type WorkflowService struct {
	Store    BookingStore
	Resolver *AvailabilityResolver
	Now      func() time.Time

	// SendEmail delivers the verification code out of band. Best-effort:
	// delivery failure never fails the transition.
	SendEmail func(toEmail, code, language, bookingDate string) error

	mu       sync.Mutex
	sessions map[string]*BookingSession
}

func NewWorkflowService(store BookingStore, resolver *AvailabilityResolver) *WorkflowService {
	return &WorkflowService{
		Store:     store,
		Resolver:  resolver,
		Now:       time.Now,
		SendEmail: utils.SendVerificationEmail,
		sessions:  make(map[string]*BookingSession),
	}
}

func (w *WorkflowService) StartSession(language string) *BookingSession {
	if language != "sk" && language != "en" {
		language = "sk"
	}
	session := &BookingSession{
		ID:       uuid.NewString(),
		Language: language,
		State:    StateSelectingDate,
	}

	w.mu.Lock()
	w.sessions[session.ID] = session
	w.mu.Unlock()
	return session
}

func (w *WorkflowService) GetSession(id string) (*BookingSession, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	session, ok := w.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// SelectDate moves the session into FormEntry. Selecting a non-bookable or
// past date is rejected up front, mirroring the disabled calendar cells.
func (w *WorkflowService) SelectDate(id string, date time.Time) (*BookingSession, error) {
	session, err := w.GetSession(id)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if session.State != StateSelectingDate && session.State != StateFormEntry {
		return nil, ErrWrongState
	}
	if !w.Resolver.IsBookable(date) {
		return nil, ErrDateNotBookable
	}

	session.SelectedDate = dateOnly(date)
	session.State = StateFormEntry
	return session, nil
}

func validateForm(f BookingForm) error {
	if strings.TrimSpace(f.FirstName) == "" {
		return &ValidationError{Field: "first_name", Key: "error.required"}
	}
	if strings.TrimSpace(f.LastName) == "" {
		return &ValidationError{Field: "last_name", Key: "error.required"}
	}
	if strings.TrimSpace(f.Email) == "" {
		return &ValidationError{Field: "email", Key: "error.required"}
	}
	if !emailPattern.MatchString(strings.TrimSpace(f.Email)) {
		return &ValidationError{Field: "email", Key: "error.invalidEmail"}
	}
	if strings.TrimSpace(f.Phone) == "" {
		return &ValidationError{Field: "phone", Key: "error.required"}
	}
	if f.Guests < 1 || f.Guests > models.DefaultMaxGuests {
		return &ValidationError{Field: "guests", Key: "error.invalidGuests"}
	}
	return nil
}

// Submit validates the form, re-checks the bookable guard against the
// resolver's latest result, and only then calls the store. On a store
// failure the session falls back to FormEntry with the entered values
// retained so the user can retry.
func (w *WorkflowService) Submit(id string, form BookingForm) (*BookingSession, error) {
	session, err := w.GetSession(id)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if session.State != StateFormEntry {
		return nil, ErrWrongState
	}
	if session.SelectedDate.IsZero() {
		return nil, &ValidationError{Field: "date", Key: "error.selectDateFirst"}
	}

	session.Form = form
	if err := validateForm(form); err != nil {
		return nil, err
	}

	// Guard fires before any repository call.
	if !w.Resolver.IsBookable(session.SelectedDate) {
		return nil, ErrDateNotBookable
	}

	code, err := utils.GenerateVerificationCode()
	if err != nil {
		return nil, &PersistenceError{Op: "generate_code", Err: err}
	}

	session.State = StateSubmitting

	booking := &models.Booking{
		FirstName:        strings.TrimSpace(form.FirstName),
		LastName:         strings.TrimSpace(form.LastName),
		Email:            strings.TrimSpace(form.Email),
		Phone:            strings.TrimSpace(form.Phone),
		BookingDate:      datatypes.Date(session.SelectedDate),
		Guests:           form.Guests,
		SpecialRequests:  strings.TrimSpace(form.SpecialRequests),
		Status:           models.BookingStatusPending,
		EmailVerified:    false,
		VerificationCode: code,
	}

	created, err := w.Store.CreateBooking(booking)
	if err != nil {
		// Back to the form, values intact.
		session.State = StateFormEntry
		if errors.Is(err, ErrDateUnavailable) {
			return nil, ErrDateNotBookable
		}
		return nil, err
	}

	session.BookingID = created.ID
	session.Email = created.Email
	session.Booking = created
	session.State = StateAwaitingVerification
	session.ResendAvailableAt = time.Time{}

	if mailErr := w.SendEmail(created.Email, code, session.Language, created.DateString()); mailErr != nil {
		log.Printf("warning: verification email to %s failed: %v", created.Email, mailErr)
	}

	return session, nil
}

// Verify compares the entered code against stored truth and confirms the
// booking exactly once. A vanished booking is fatal to the session: the
// draft resets and the caller routes back to date selection.
func (w *WorkflowService) Verify(id string, code string) (*BookingSession, error) {
	session, err := w.GetSession(id)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if session.State == StateConfirmed {
		return session, nil
	}
	if session.State != StateAwaitingVerification {
		return nil, ErrWrongState
	}

	code = strings.TrimSpace(code)
	if !utils.IsValidVerificationCodeFormat(code) {
		return nil, &ValidationError{Field: "code", Key: "error.invalidCode"}
	}

	match, err := w.Store.VerifyCode(session.BookingID, code)
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			w.resetLocked(session)
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if !match {
		return nil, ErrCodeMismatch
	}

	updated, err := w.Store.UpdateBookingStatus(session.BookingID, models.BookingStatusConfirmed, true)
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			w.resetLocked(session)
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	session.Booking = updated
	session.State = StateConfirmed
	return session, nil
}

// Resend re-delivers the code issued at creation and arms the cooldown. The
// stored code is never rotated by a resend.
func (w *WorkflowService) Resend(id string) (*BookingSession, error) {
	session, err := w.GetSession(id)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if session.State != StateAwaitingVerification {
		return nil, ErrWrongState
	}

	now := w.Now()
	if !session.ResendAvailableAt.IsZero() && now.Before(session.ResendAvailableAt) {
		return nil, ErrResendCooldown
	}

	booking, err := w.Store.GetBooking(session.BookingID)
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			w.resetLocked(session)
		}
		return nil, err
	}

	session.ResendAvailableAt = now.Add(ResendCooldown)

	if mailErr := w.SendEmail(booking.Email, booking.VerificationCode, session.Language, booking.DateString()); mailErr != nil {
		log.Printf("warning: verification email to %s failed: %v", booking.Email, mailErr)
	}

	return session, nil
}

// BackToStart clears the entire draft from any state. Full reset, not a
// partial rewind.
func (w *WorkflowService) BackToStart(id string) (*BookingSession, error) {
	session, err := w.GetSession(id)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.resetLocked(session)
	return session, nil
}

func (w *WorkflowService) resetLocked(session *BookingSession) {
	session.State = StateSelectingDate
	session.SelectedDate = time.Time{}
	session.Form = BookingForm{}
	session.BookingID = 0
	session.Email = ""
	session.Booking = nil
	session.ResendAvailableAt = time.Time{}
}
