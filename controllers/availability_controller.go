package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"shelter-backend/i18n"
	"shelter-backend/models"
	"shelter-backend/services"
	"shelter-backend/utils"
)

type AvailabilityController struct {
	Resolver *services.AvailabilityResolver
	Store    services.BookingStore
}

func NewAvailabilityController(resolver *services.AvailabilityResolver, store services.BookingStore) *AvailabilityController {
	return &AvailabilityController{Resolver: resolver, Store: store}
}

func requestLang(c *gin.Context) string {
	lang := c.Query("lang")
	if !i18n.Supported(lang) {
		return i18n.DefaultLanguage
	}
	return lang
}

// GetCalendar (GET /api/availability?month=YYYY-MM) resolves the requested
// month plus the following one. Called on month navigation, not per render.
func (ctrl *AvailabilityController) GetCalendar(c *gin.Context) {
	lang := requestLang(c)

	ref := time.Now()
	if month := c.Query("month"); month != "" {
		parsed, err := time.Parse("2006-01", month)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "error.invalidDate", i18n.T(lang, "error.invalidDate"))
			return
		}
		ref = parsed
	}

	days, err := ctrl.Resolver.ResolveMonths(ref)
	if err != nil {
		// Retryable: the client keeps its previous view and shows a banner.
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": gin.H{
				"code":      "error.availabilityFetch",
				"message":   i18n.T(lang, "error.availabilityFetch"),
				"retryable": true,
			},
		})
		return
	}

	utils.JSONSuccess(c, http.StatusOK, gin.H{
		"month": ref.Format("2006-01"),
		"days":  days,
	})
}

type updateAvailabilityPayload struct {
	Date        string `json:"date" binding:"required"`
	IsAvailable *bool  `json:"is_available" binding:"required"`
	MaxGuests   int    `json:"max_guests"`
}

// UpdateAvailability (PUT /api/availability) lets the shelter keeper block a
// date or adjust its capacity.
func (ctrl *AvailabilityController) UpdateAvailability(c *gin.Context) {
	lang := requestLang(c)

	var payload updateAvailabilityPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidDate", i18n.T(lang, "error.invalidDate"))
		return
	}
	date, err := time.Parse("2006-01-02", payload.Date)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidDate", i18n.T(lang, "error.invalidDate"))
		return
	}

	row, err := ctrl.Store.UpdateAvailability(&models.Availability{
		Date:        datatypes.Date(date),
		IsAvailable: *payload.IsAvailable,
		MaxGuests:   payload.MaxGuests,
	})
	if err != nil {
		respondWorkflowError(c, lang, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, row)
}
