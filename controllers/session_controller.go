package controllers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shelter-backend/i18n"
	"shelter-backend/services"
	"shelter-backend/utils"
)

// SessionController projects the booking workflow over HTTP. It holds no
// business rules: every mutation goes through WorkflowService transitions.
type SessionController struct {
	Workflow *services.WorkflowService
}

func NewSessionController(workflow *services.WorkflowService) *SessionController {
	return &SessionController{Workflow: workflow}
}

type startSessionPayload struct {
	Language string `json:"language"`
}

type selectDatePayload struct {
	Date string `json:"date" binding:"required"`
}

type verifyPayload struct {
	Code string `json:"code" binding:"required"`
}

// sessionView renders whichever stage the workflow is in.
func sessionView(s *services.BookingSession) gin.H {
	view := gin.H{
		"id":       s.ID,
		"language": s.Language,
		"state":    s.State,
		"form":     s.Form,
	}
	if !s.SelectedDate.IsZero() {
		view["selected_date"] = s.SelectedDate.Format("2006-01-02")
	}
	if s.BookingID != 0 {
		view["booking_id"] = s.BookingID
		view["email"] = s.Email
	}
	if s.State == services.StateAwaitingVerification && !s.ResendAvailableAt.IsZero() {
		view["resend_available_at"] = s.ResendAvailableAt.UTC().Format(time.RFC3339)
	}
	if s.State == services.StateConfirmed && s.Booking != nil {
		view["booking"] = s.Booking
		view["message"] = i18n.T(s.Language, "bookingConfirmed")
	}
	return view
}

// respondWorkflowError maps workflow/store errors to the structured JSON
// error shape, localized to the session's language.
func respondWorkflowError(c *gin.Context, lang string, err error) {
	var vErr *services.ValidationError
	var pErr *services.PersistenceError

	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "error.validation",
				"field":   vErr.Field,
				"message": i18n.T(lang, vErr.Key),
			},
		})
	case errors.Is(err, services.ErrSessionNotFound):
		utils.JSONError(c, http.StatusNotFound, "error.sessionNotFound", i18n.T(lang, "error.sessionNotFound"))
	case errors.Is(err, services.ErrDateNotBookable):
		utils.JSONError(c, http.StatusConflict, "error.dateUnavailable", i18n.T(lang, "error.dateUnavailable"))
	case errors.Is(err, services.ErrCodeMismatch):
		utils.JSONError(c, http.StatusUnauthorized, "error.invalidCode", i18n.T(lang, "error.invalidCode"))
	case errors.Is(err, services.ErrResendCooldown):
		utils.JSONError(c, http.StatusTooManyRequests, "error.resendCooldown", i18n.T(lang, "error.resendCooldown"))
	case errors.Is(err, services.ErrBookingNotFound):
		utils.JSONError(c, http.StatusNotFound, "error.bookingNotFound", i18n.T(lang, "error.bookingNotFound"))
	case errors.Is(err, services.ErrWrongState):
		utils.JSONError(c, http.StatusConflict, "error.wrongState", i18n.T(lang, "error.wrongState"))
	case errors.As(err, &pErr):
		log.Printf("store failure: %v", err)
		utils.JSONError(c, http.StatusBadGateway, "error.submitFailed", i18n.T(lang, "error.submitFailed"))
	default:
		log.Printf("unexpected workflow error: %v", err)
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", i18n.T(lang, "error.internal"))
	}
}

func (ctrl *SessionController) sessionLang(id string) string {
	if s, err := ctrl.Workflow.GetSession(id); err == nil {
		return s.Language
	}
	return i18n.DefaultLanguage
}

// StartSession (POST /api/sessions)
func (ctrl *SessionController) StartSession(c *gin.Context) {
	var payload startSessionPayload
	_ = c.ShouldBindJSON(&payload)

	session := ctrl.Workflow.StartSession(payload.Language)
	utils.JSONSuccess(c, http.StatusCreated, sessionView(session))
}

// GetSession (GET /api/sessions/:id)
func (ctrl *SessionController) GetSession(c *gin.Context) {
	session, err := ctrl.Workflow.GetSession(c.Param("id"))
	if err != nil {
		respondWorkflowError(c, i18n.DefaultLanguage, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, sessionView(session))
}

// SelectDate (POST /api/sessions/:id/select-date)
func (ctrl *SessionController) SelectDate(c *gin.Context) {
	id := c.Param("id")
	lang := ctrl.sessionLang(id)

	var payload selectDatePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondWorkflowError(c, lang, &services.ValidationError{Field: "date", Key: "error.invalidDate"})
		return
	}
	date, err := time.Parse("2006-01-02", payload.Date)
	if err != nil {
		respondWorkflowError(c, lang, &services.ValidationError{Field: "date", Key: "error.invalidDate"})
		return
	}

	session, err := ctrl.Workflow.SelectDate(id, date)
	if err != nil {
		respondWorkflowError(c, lang, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, sessionView(session))
}

// Submit (POST /api/sessions/:id/submit)
func (ctrl *SessionController) Submit(c *gin.Context) {
	id := c.Param("id")
	lang := ctrl.sessionLang(id)

	var form services.BookingForm
	if err := c.ShouldBindJSON(&form); err != nil {
		respondWorkflowError(c, lang, &services.ValidationError{Field: "form", Key: "error.required"})
		return
	}

	session, err := ctrl.Workflow.Submit(id, form)
	if err != nil {
		respondWorkflowError(c, lang, err)
		return
	}

	view := sessionView(session)
	view["message"] = i18n.T(lang, "bookingSubmitted")
	utils.JSONSuccess(c, http.StatusOK, view)
}

// Verify (POST /api/sessions/:id/verify)
func (ctrl *SessionController) Verify(c *gin.Context) {
	id := c.Param("id")
	lang := ctrl.sessionLang(id)

	var payload verifyPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondWorkflowError(c, lang, &services.ValidationError{Field: "code", Key: "error.invalidCode"})
		return
	}

	session, err := ctrl.Workflow.Verify(id, payload.Code)
	if err != nil {
		respondWorkflowError(c, lang, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, sessionView(session))
}

// Resend (POST /api/sessions/:id/resend)
func (ctrl *SessionController) Resend(c *gin.Context) {
	id := c.Param("id")
	lang := ctrl.sessionLang(id)

	session, err := ctrl.Workflow.Resend(id)
	if err != nil {
		respondWorkflowError(c, lang, err)
		return
	}

	view := sessionView(session)
	view["message"] = i18n.T(lang, "verificationSent") + " " + session.Email
	utils.JSONSuccess(c, http.StatusOK, view)
}

// BackToStart (POST /api/sessions/:id/back)
func (ctrl *SessionController) BackToStart(c *gin.Context) {
	id := c.Param("id")
	lang := ctrl.sessionLang(id)

	session, err := ctrl.Workflow.BackToStart(id)
	if err != nil {
		respondWorkflowError(c, lang, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, sessionView(session))
}
