package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"shelter-backend/config"
	"shelter-backend/controllers"
	"shelter-backend/routes"
	"shelter-backend/services"
	"shelter-backend/utils"
)

func main() {
	// Load .env (optional)
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env not found or couldn't load it; continuing with environment variables")
	}

	var store services.BookingStore

	switch os.Getenv("DB_DRIVER") {
	case "memory":
		mem := services.NewMemoryStore()
		for _, date := range config.BlockedDates() {
			mem.SeedBlockedDate(date)
		}
		store = mem
		log.Println("✅ Using in-memory store (DB_DRIVER=memory)")
	default:
		if err := config.ConnectDatabase(); err != nil {
			log.Fatalf("❌ Database connect failed: %v", err)
		}
		if config.DB == nil {
			log.Fatal("❌ config.DB is nil after ConnectDatabase()")
		}
		store = services.NewGormBookingStore(config.DB)
		log.Println("✅ Database connection established and migrations applied")
	}

	// Initialize services
	resolver := services.NewAvailabilityResolver(store)
	workflow := services.NewWorkflowService(store, resolver)

	// Initialize controllers
	sessionController := controllers.NewSessionController(workflow)
	availabilityController := controllers.NewAvailabilityController(resolver, store)
	bookingController := controllers.NewBookingController(store)
	settingsController := controllers.NewSettingsController(config.DB, config.DefaultShelterSetting())

	router := routes.SetupRouter(sessionController, availabilityController, bookingController, settingsController)

	addr := ":" + utils.EnvOrDefault("PORT", "8080")

	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("🚀 Server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ ListenAndServe(): %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("⚠️  Shutdown signal received, shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}
