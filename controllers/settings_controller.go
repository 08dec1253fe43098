package controllers

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"shelter-backend/models"
)

type shelterSettingsPayload struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Website string `json:"website"`
}

// SettingsController serves the shelter contact record shown with the final
// check-in instructions. With no database (memory driver) it falls back to an
// in-process record.
type SettingsController struct {
	DB *gorm.DB

	mu  sync.Mutex
	mem models.ShelterSetting
}

func NewSettingsController(db *gorm.DB, fallback models.ShelterSetting) *SettingsController {
	return &SettingsController{DB: db, mem: fallback}
}

func (ctrl *SettingsController) GetShelterSettings(c *gin.Context) {
	if ctrl.DB == nil {
		ctrl.mu.Lock()
		defer ctrl.mu.Unlock()
		c.JSON(http.StatusOK, gin.H{"shelter": ctrl.mem})
		return
	}

	var shelter models.ShelterSetting
	if err := ctrl.DB.First(&shelter).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusOK, gin.H{"shelter": models.ShelterSetting{}})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"shelter": shelter})
}

func (ctrl *SettingsController) UpdateShelterSettings(c *gin.Context) {
	var payload shelterSettingsPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if ctrl.DB == nil {
		ctrl.mu.Lock()
		defer ctrl.mu.Unlock()
		ctrl.mem.Name = payload.Name
		ctrl.mem.Address = payload.Address
		ctrl.mem.Phone = payload.Phone
		ctrl.mem.Email = payload.Email
		ctrl.mem.Website = payload.Website
		c.JSON(http.StatusOK, gin.H{"shelter": ctrl.mem})
		return
	}

	var shelter models.ShelterSetting
	err := ctrl.DB.First(&shelter).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			shelter = models.ShelterSetting{
				Name:    payload.Name,
				Address: payload.Address,
				Phone:   payload.Phone,
				Email:   payload.Email,
				Website: payload.Website,
			}
			if err := ctrl.DB.Create(&shelter).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"shelter": shelter})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	shelter.Name = payload.Name
	shelter.Address = payload.Address
	shelter.Phone = payload.Phone
	shelter.Email = payload.Email
	shelter.Website = payload.Website

	if err := ctrl.DB.Save(&shelter).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"shelter": shelter})
}
