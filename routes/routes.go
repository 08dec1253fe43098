package routes

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"shelter-backend/controllers"
	"shelter-backend/middleware"
)

func parseCorsOrigins() []string {
	raw := strings.TrimSpace(os.Getenv("CORS_ORIGINS"))
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func SetupRouter(
	sc *controllers.SessionController,
	ac *controllers.AvailabilityController,
	bc *controllers.BookingController,
	stc *controllers.SettingsController,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger())

	origins := parseCorsOrigins()
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		sessions := api.Group("/sessions")
		{
			sessions.POST("", sc.StartSession)
			sessions.GET("/:id", sc.GetSession)
			sessions.POST("/:id/select-date", sc.SelectDate)
			sessions.POST("/:id/submit", sc.Submit)
			sessions.POST("/:id/verify", sc.Verify)
			sessions.POST("/:id/resend", sc.Resend)
			sessions.POST("/:id/back", sc.BackToStart)
		}

		availability := api.Group("/availability")
		{
			availability.GET("", ac.GetCalendar)
			availability.PUT("", ac.UpdateAvailability)
		}

		bookings := api.Group("/bookings")
		{
			bookings.GET("/:id", bc.GetBooking)
			bookings.POST("/:id/cancel", bc.CancelBooking)
		}

		settings := api.Group("/settings")
		{
			settings.GET("/shelter", stc.GetShelterSettings)
			settings.PUT("/shelter", stc.UpdateShelterSettings)
		}
	}

	return r
}
