package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shelter-backend/controllers"
	"shelter-backend/models"
	"shelter-backend/routes"
	"shelter-backend/services"
)

type apiResponse struct {
	Status string         `json:"status"`
	Data   map[string]any `json:"data"`
	Error  *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Field   string `json:"field"`
	} `json:"error"`
}

func setupAPI(t *testing.T) (*gin.Engine, *services.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := services.NewMemoryStore()
	resolver := services.NewAvailabilityResolver(store)
	workflow := services.NewWorkflowService(store, resolver)
	workflow.SendEmail = func(to, code, lang, date string) error { return nil }

	router := routes.SetupRouter(
		controllers.NewSessionController(workflow),
		controllers.NewAvailabilityController(resolver, store),
		controllers.NewBookingController(store),
		controllers.NewSettingsController(nil, models.ShelterSetting{Name: "Mountain Shelter"}),
	)
	return router, store
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var parsed apiResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &parsed)
	return rec, parsed
}

func TestBookingFlowOverHTTP(t *testing.T) {
	router, store := setupAPI(t)

	stayDate := time.Now().AddDate(0, 1, 3)
	dateStr := stayDate.Format("2006-01-02")
	monthStr := stayDate.Format("2006-01")

	// Start a session.
	rec, res := doJSON(t, router, http.MethodPost, "/api/sessions", gin.H{"language": "en"})
	require.Equal(t, http.StatusCreated, rec.Code)
	sessionID, _ := res.Data["id"].(string)
	require.NotEmpty(t, sessionID)
	assert.Equal(t, "selecting_date", res.Data["state"])

	base := "/api/sessions/" + sessionID

	// Calendar shows the date bookable with full capacity.
	rec, res = doJSON(t, router, http.MethodGet, "/api/availability?month="+monthStr, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	days, _ := res.Data["days"].(map[string]any)
	require.NotNil(t, days)
	view, _ := days[dateStr].(map[string]any)
	require.NotNil(t, view)
	assert.Equal(t, true, view["bookable"])
	assert.Equal(t, float64(6), view["spots_remaining"])

	// Select the date.
	rec, res = doJSON(t, router, http.MethodPost, base+"/select-date", gin.H{"date": dateStr})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "form_entry", res.Data["state"])

	// Submitting an incomplete form fails inline, before the store.
	rec, res = doJSON(t, router, http.MethodPost, base+"/submit", gin.H{
		"first_name": "Jana", "last_name": "", "email": "jana@example.com",
		"phone": "+421900123456", "guests": 2,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, res.Error)
	assert.Equal(t, "last_name", res.Error.Field)

	// Valid submission moves to verification.
	rec, res = doJSON(t, router, http.MethodPost, base+"/submit", gin.H{
		"first_name": "Jana", "last_name": "Nováková", "email": "jana@example.com",
		"phone": "+421900123456", "guests": 2, "special_requests": "vegetarian dinner",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "awaiting_verification", res.Data["state"])
	assert.Equal(t, "Booking request submitted! We will contact you soon.", res.Data["message"])
	bookingID := uint(res.Data["booking_id"].(float64))
	require.NotZero(t, bookingID)

	stored, err := store.GetBooking(bookingID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusPending, stored.Status)

	// Resend confirms where the code went.
	rec, res = doJSON(t, router, http.MethodPost, base+"/resend", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "We sent a verification code to jana@example.com", res.Data["message"])

	// Wrong code is rejected, state unchanged.
	wrong := "000000"
	if stored.VerificationCode == wrong {
		wrong = "000001"
	}
	rec, res = doJSON(t, router, http.MethodPost, base+"/verify", gin.H{"code": wrong})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NotNil(t, res.Error)
	assert.Equal(t, "error.invalidCode", res.Error.Code)

	// Correct code confirms the booking.
	rec, res = doJSON(t, router, http.MethodPost, base+"/verify", gin.H{"code": stored.VerificationCode})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "confirmed", res.Data["state"])

	confirmed, err := store.GetBooking(bookingID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, confirmed.Status)
	assert.True(t, confirmed.EmailVerified)

	// The slot is consumed.
	rec, res = doJSON(t, router, http.MethodGet, "/api/availability?month="+monthStr, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	days, _ = res.Data["days"].(map[string]any)
	view, _ = days[dateStr].(map[string]any)
	assert.Equal(t, float64(5), view["spots_remaining"])

	// Back to start clears the draft entirely.
	rec, res = doJSON(t, router, http.MethodPost, base+"/back", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "selecting_date", res.Data["state"])
	_, hasDate := res.Data["selected_date"]
	assert.False(t, hasDate)
	_, hasBooking := res.Data["booking_id"]
	assert.False(t, hasBooking)
}

func TestSelectPastDateRejected(t *testing.T) {
	router, _ := setupAPI(t)

	_, res := doJSON(t, router, http.MethodPost, "/api/sessions", gin.H{"language": "en"})
	base := "/api/sessions/" + res.Data["id"].(string)

	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	rec, res := doJSON(t, router, http.MethodPost, base+"/select-date", gin.H{"date": yesterday})
	require.Equal(t, http.StatusConflict, rec.Code)
	require.NotNil(t, res.Error)
	assert.Equal(t, "error.dateUnavailable", res.Error.Code)
}

func TestKeeperBlocksDate(t *testing.T) {
	router, _ := setupAPI(t)

	target := time.Now().AddDate(0, 1, 0)
	dateStr := target.Format("2006-01-02")

	rec, _ := doJSON(t, router, http.MethodPut, "/api/availability", gin.H{
		"date": dateStr, "is_available": false,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	_, res := doJSON(t, router, http.MethodGet, "/api/availability?month="+target.Format("2006-01"), nil)
	days, _ := res.Data["days"].(map[string]any)
	view, _ := days[dateStr].(map[string]any)
	require.NotNil(t, view)
	assert.Equal(t, false, view["bookable"])
}

func TestCancelReleasesSlotOverHTTP(t *testing.T) {
	router, store := setupAPI(t)

	stayDate := time.Now().AddDate(0, 1, 5)
	dateStr := stayDate.Format("2006-01-02")

	_, res := doJSON(t, router, http.MethodPost, "/api/sessions", gin.H{"language": "sk"})
	base := "/api/sessions/" + res.Data["id"].(string)

	_, _ = doJSON(t, router, http.MethodPost, base+"/select-date", gin.H{"date": dateStr})
	rec, res := doJSON(t, router, http.MethodPost, base+"/submit", gin.H{
		"first_name": "Peter", "last_name": "Kováč", "email": "peter@example.com",
		"phone": "+421900654321", "guests": 1,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	bookingID := uint(res.Data["booking_id"].(float64))

	rec, _ = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/bookings/%d/cancel", bookingID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	cancelled, err := store.GetBooking(bookingID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, cancelled.Status)

	rows, err := store.FetchAvailability(stayDate, stayDate)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 0, rows[0].CurrentBookings)
}

func TestUnknownSessionIs404(t *testing.T) {
	router, _ := setupAPI(t)
	rec, res := doJSON(t, router, http.MethodGet, "/api/sessions/nope", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, res.Error)
	assert.Equal(t, "error.sessionNotFound", res.Error.Code)
}

func TestShelterSettingsFallback(t *testing.T) {
	router, _ := setupAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/api/settings/shelter", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Shelter models.ShelterSetting `json:"shelter"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Mountain Shelter", body.Shelter.Name)
}
