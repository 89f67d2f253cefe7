// controllers/service_type.go
package controllers

import (
	"errors"
	"net/http"

	"wellness-backend/config"
	"wellness-backend/models"
	"wellness-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateServiceTypeInput defines the expected JSON structure for creating a service type
type CreateServiceTypeInput struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Duration    int     `json:"duration" binding:"min=0"` // in minutes
	Price       float64 `json:"price" binding:"min=0"`
}

// UpdateServiceTypeInput defines the expected JSON structure for updating a service type
type UpdateServiceTypeInput struct {
	Description *string  `json:"description"`
	Duration    *int     `json:"duration"`
	Price       *float64 `json:"price"`
	IsActive    *bool    `json:"isActive"`
}

// CreateServiceType creates a new service type
func CreateServiceType(c *gin.Context) {
	var input CreateServiceTypeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var existing models.ServiceType
	if err := config.DB.Where("name = ?", input.Name).First(&existing).Error; err == nil {
		utils.RespondWithError(c, http.StatusConflict, "Service type with this name already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	serviceType := models.ServiceType{
		Name:        input.Name,
		Description: input.Description,
		Duration:    input.Duration,
		Price:       input.Price,
		IsActive:    true,
	}
	if serviceType.Duration == 0 {
		serviceType.Duration = 60
	}

	if err := config.DB.Create(&serviceType).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create service type")
		return
	}

	c.JSON(http.StatusCreated, serviceType)
}

// GetServiceTypes retrieves all service types
func GetServiceTypes(c *gin.Context) {
	var serviceTypes []models.ServiceType
	if err := config.DB.Order("created_at ASC").Find(&serviceTypes).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve service types")
		return
	}

	c.JSON(http.StatusOK, serviceTypes)
}

// GetServiceType retrieves a specific service type by ID
func GetServiceType(c *gin.Context) {
	serviceTypeUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid service type ID format")
		return
	}

	var serviceType models.ServiceType
	if err := config.DB.First(&serviceType, "id = ?", serviceTypeUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Service type not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, serviceType)
}

// UpdateServiceType updates an existing service type. The name is the anchor
// for package-pool matching and stays immutable.
func UpdateServiceType(c *gin.Context) {
	serviceTypeUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid service type ID format")
		return
	}

	var input UpdateServiceTypeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var serviceType models.ServiceType
	if err := config.DB.First(&serviceType, "id = ?", serviceTypeUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Service type not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.Description != nil {
		serviceType.Description = *input.Description
	}
	if input.Duration != nil {
		serviceType.Duration = *input.Duration
	}
	if input.Price != nil {
		serviceType.Price = *input.Price
	}
	if input.IsActive != nil {
		serviceType.IsActive = *input.IsActive
	}

	if err := config.DB.Save(&serviceType).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update service type")
		return
	}

	c.JSON(http.StatusOK, serviceType)
}

// DeleteServiceType soft deletes a service type
func DeleteServiceType(c *gin.Context) {
	serviceTypeUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid service type ID format")
		return
	}

	result := config.DB.Where("id = ?", serviceTypeUUID).Delete(&models.ServiceType{})
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete service type")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Service type not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Service type deleted successfully"})
}
