package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shelter-backend/models"
	"shelter-backend/utils"
)

var DB *gorm.DB

func mysqlDSNFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	user := u.User.Username()
	pass, _ := u.User.Password()
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "3306"
	}

	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return "", fmt.Errorf("mysql url missing database name")
	}

	q := u.Query()
	if q.Get("charset") == "" {
		q.Set("charset", "utf8mb4")
	}
	if q.Get("parseTime") == "" {
		q.Set("parseTime", "True")
	}
	if q.Get("loc") == "" {
		q.Set("loc", "Local")
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", user, pass, host, port, dbName, q.Encode()), nil
}

func resolveMySQLDSN() (string, error) {
	raw := strings.TrimSpace(os.Getenv("MYSQL_URL"))
	if raw == "" {
		raw = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}

	if raw != "" {
		if strings.HasPrefix(raw, "mysql://") {
			return mysqlDSNFromURL(raw)
		}
		return raw, nil
	}

	user := utils.EnvOrDefault("DB_USER", "root")
	pass := utils.EnvOrDefault("DB_PASS", "")
	host := utils.EnvOrDefault("DB_HOST", "127.0.0.1")
	port := utils.EnvOrDefault("DB_PORT", "3306")
	dbName := utils.EnvOrDefault("DB_NAME", "shelter_db")

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, pass, host, port, dbName,
	), nil
}

// DefaultShelterSetting is the seed contact record for the shelter.
func DefaultShelterSetting() models.ShelterSetting {
	return models.ShelterSetting{
		Name:    utils.EnvOrDefault("SHELTER_NAME", "Mountain Shelter"),
		Address: utils.EnvOrDefault("SHELTER_ADDRESS", "Polomy, 962 63 Pliešovce, Slovakia"),
		Phone:   utils.EnvOrDefault("SHELTER_PHONE", "+421902436871"),
		Email:   utils.EnvOrDefault("SHELTER_EMAIL", "muzeum.zajezova@gmail.com"),
		Website: utils.EnvOrDefault("SHELTER_WEBSITE", ""),
	}
}

// BlockedDates parses BLOCKED_DATES (comma-separated yyyy-MM-dd) into dates
// the keeper wants closed from the start.
func BlockedDates() []time.Time {
	raw := strings.TrimSpace(os.Getenv("BLOCKED_DATES"))
	if raw == "" {
		return nil
	}
	out := make([]time.Time, 0)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		t, err := time.Parse("2006-01-02", part)
		if err != nil {
			log.Printf("warning: skipping invalid BLOCKED_DATES entry %q: %v", part, err)
			continue
		}
		out = append(out, t)
	}
	return out
}

func SeedDatabase() {
	var settingCount int64
	DB.Model(&models.ShelterSetting{}).Count(&settingCount)
	if settingCount == 0 {
		setting := DefaultShelterSetting()
		if err := DB.Create(&setting).Error; err != nil {
			log.Printf("warning: failed to seed shelter settings: %v", err)
		} else {
			log.Println("Shelter settings seeded")
		}
	}

	for _, date := range BlockedDates() {
		var count int64
		DB.Model(&models.Availability{}).Where("date = ?", datatypes.Date(date)).Count(&count)
		if count > 0 {
			continue
		}
		row := models.Availability{
			Date:        datatypes.Date(date),
			IsAvailable: false,
			MaxGuests:   models.DefaultMaxGuests,
		}
		if err := DB.Create(&row).Error; err != nil {
			log.Printf("warning: failed to seed blocked date %s: %v", date.Format("2006-01-02"), err)
		}
	}
}

func ConnectDatabase() error {
	dsn, err := resolveMySQLDSN()
	if err != nil {
		return err
	}

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Warn,
			Colorful:      true,
		},
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: newLogger})
	if err != nil {
		return err
	}

	DB = db

	if err := DB.AutoMigrate(
		&models.ShelterSetting{},
		&models.Availability{},
		&models.Booking{},
	); err != nil {
		return err
	}

	SeedDatabase()
	return nil
}
