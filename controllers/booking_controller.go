package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"shelter-backend/models"
	"shelter-backend/services"
	"shelter-backend/utils"
)

type BookingController struct {
	Store services.BookingStore
}

func NewBookingController(store services.BookingStore) *BookingController {
	return &BookingController{Store: store}
}

func bookingID(c *gin.Context) (uint, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}

// GetBooking (GET /api/bookings/:id) is read-only: the shell renders booking
// state, it never mutates it.
func (ctrl *BookingController) GetBooking(c *gin.Context) {
	lang := requestLang(c)

	id, ok := bookingID(c)
	if !ok {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidPayload", "invalid booking id")
		return
	}

	b, err := ctrl.Store.GetBooking(id)
	if err != nil {
		respondWorkflowError(c, lang, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, b)
}

// CancelBooking (POST /api/bookings/:id/cancel) is the out-of-band path to
// the cancelled status; the guest workflow never drives it.
func (ctrl *BookingController) CancelBooking(c *gin.Context) {
	lang := requestLang(c)

	id, ok := bookingID(c)
	if !ok {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidPayload", "invalid booking id")
		return
	}

	current, err := ctrl.Store.GetBooking(id)
	if err != nil {
		respondWorkflowError(c, lang, err)
		return
	}

	updated, err := ctrl.Store.UpdateBookingStatus(id, models.BookingStatusCancelled, current.EmailVerified)
	if err != nil {
		respondWorkflowError(c, lang, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, updated)
}
