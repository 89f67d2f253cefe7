// controllers/reservation.go
package controllers

import (
	"net/http"

	"wellness-backend/config"
	"wellness-backend/models"
	"wellness-backend/services"
	"wellness-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CreateReservationRequest defines the expected JSON structure for booking
type CreateReservationRequest struct {
	CustomerID    uuid.UUID  `json:"customerId" binding:"required"`
	ServiceTypeID uuid.UUID  `json:"serviceTypeId" binding:"required"`
	StaffID       *uuid.UUID `json:"staffId"`
	PurchaseID    *uuid.UUID `json:"purchaseId"`
	Date          string     `json:"date" binding:"required"` // YYYY-MM-DD
	Time          string     `json:"time" binding:"required"` // HH:MM
	Duration      int        `json:"duration"`
	Notes         string     `json:"notes"`
}

// UpdateReservationRequest defines the expected JSON structure for rescheduling
type UpdateReservationRequest struct {
	ServiceTypeID *uuid.UUID `json:"serviceTypeId"`
	StaffID       *uuid.UUID `json:"staffId"`
	ClearStaff    bool       `json:"clearStaff"`
	PurchaseID    *uuid.UUID `json:"purchaseId"`
	Date          *string    `json:"date"`
	Time          *string    `json:"time"`
	Duration      *int       `json:"duration"`
	Notes         *string    `json:"notes"`
}

// CreateReservation books a new pending reservation
func CreateReservation(c *gin.Context) {
	var input CreateReservationRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	date, err := utils.ParseDate(input.Date)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid date format. Use YYYY-MM-DD")
		return
	}

	svc := newReservationService()
	reservation, err := svc.Create(services.CreateReservationInput{
		CustomerID:    input.CustomerID,
		ServiceTypeID: input.ServiceTypeID,
		StaffID:       input.StaffID,
		PurchaseID:    input.PurchaseID,
		Date:          date,
		Time:          input.Time,
		Duration:      input.Duration,
		Notes:         input.Notes,
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, reservation)
}

// GetReservations lists reservations with optional date/status/staff filters
func GetReservations(c *gin.Context) {
	query := config.DB.Model(&models.Reservation{}).
		Preload("Customer").Preload("ServiceType").Preload("Staff")

	if dateStr := c.Query("date"); dateStr != "" {
		date, err := utils.ParseDate(dateStr)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid date format. Use YYYY-MM-DD")
			return
		}
		query = query.Where("reservation_date = ?", utils.BeginningOfDay(date))
	}
	if fromStr := c.Query("from"); fromStr != "" {
		from, err := utils.ParseDate(fromStr)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid from date. Use YYYY-MM-DD")
			return
		}
		query = query.Where("reservation_date >= ?", utils.BeginningOfDay(from))
	}
	if toStr := c.Query("to"); toStr != "" {
		to, err := utils.ParseDate(toStr)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid to date. Use YYYY-MM-DD")
			return
		}
		query = query.Where("reservation_date <= ?", utils.BeginningOfDay(to))
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if staffIDStr := c.Query("staff_id"); staffIDStr != "" {
		staffUUID, err := uuid.Parse(staffIDStr)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid staff ID format")
			return
		}
		query = query.Where("staff_id = ?", staffUUID)
	}
	if customerIDStr := c.Query("customer_id"); customerIDStr != "" {
		customerUUID, err := uuid.Parse(customerIDStr)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid customer ID format")
			return
		}
		query = query.Where("customer_id = ?", customerUUID)
	}

	var reservations []models.Reservation
	if err := query.Order("reservation_date ASC, reservation_time ASC").
		Find(&reservations).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve reservations")
		return
	}

	c.JSON(http.StatusOK, reservations)
}

// GetReservation retrieves a single reservation by ID
func GetReservation(c *gin.Context) {
	reservationUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid reservation ID format")
		return
	}

	var reservation models.Reservation
	if err := config.DB.Preload("Customer").Preload("ServiceType").Preload("Staff").
		First(&reservation, "id = ?", reservationUUID).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "Reservation not found")
		return
	}

	c.JSON(http.StatusOK, reservation)
}

// UpdateReservation reschedules or edits an active reservation
func UpdateReservation(c *gin.Context) {
	reservationUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid reservation ID format")
		return
	}

	var input UpdateReservationRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	update := services.UpdateReservationInput{
		ServiceTypeID: input.ServiceTypeID,
		StaffID:       input.StaffID,
		ClearStaff:    input.ClearStaff,
		PurchaseID:    input.PurchaseID,
		Duration:      input.Duration,
		Notes:         input.Notes,
		Time:          input.Time,
	}
	if input.Date != nil {
		date, err := utils.ParseDate(*input.Date)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid date format. Use YYYY-MM-DD")
			return
		}
		update.Date = &date
	}

	svc := newReservationService()
	reservation, err := svc.Update(reservationUUID, update)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, reservation)
}

// ConfirmReservation moves a pending reservation to confirmed
func ConfirmReservation(c *gin.Context) {
	reservationUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid reservation ID format")
		return
	}

	svc := newReservationService()
	reservation, err := svc.Confirm(reservationUUID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, reservation)
}

// CancelReservationInput carries the cancellation reason
type CancelReservationInput struct {
	Reason string `json:"reason"`
}

// CancelReservation cancels an active reservation
func CancelReservation(c *gin.Context) {
	reservationUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid reservation ID format")
		return
	}

	var input CancelReservationInput
	c.ShouldBindJSON(&input) // reason is optional

	svc := newReservationService()
	reservation, err := svc.Cancel(reservationUUID, input.Reason)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, reservation)
}

// CompleteReservationInput carries optional free-text session detail
type CompleteReservationInput struct {
	Detail string `json:"detail"`
}

// CompleteReservation runs the completion transaction: ledger draw, usage
// record, customer rollup and the final state change, all-or-nothing
func CompleteReservation(c *gin.Context) {
	reservationUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid reservation ID format")
		return
	}

	var input CompleteReservationInput
	c.ShouldBindJSON(&input) // detail is optional

	svc := newReservationService()
	reservation, err := svc.Complete(reservationUUID, input.Detail)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, reservation)
}

// NoShowReservation marks a confirmed reservation as a no-show
func NoShowReservation(c *gin.Context) {
	reservationUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid reservation ID format")
		return
	}

	svc := newReservationService()
	reservation, err := svc.NoShow(reservationUUID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, reservation)
}

// PurgeCancelledReservations physically removes cancelled reservations.
// Admin only.
func PurgeCancelledReservations(c *gin.Context) {
	role, _ := c.Get("role")
	if role != "admin" {
		utils.RespondWithError(c, http.StatusForbidden, "Admin role required")
		return
	}

	svc := newReservationService()
	purged, err := svc.PurgeCancelled()
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to purge reservations")
		return
	}

	c.JSON(http.StatusOK, gin.H{"purged": purged})
}

// GetAvailableSlots returns the open 15-minute slots for a date and service
func GetAvailableSlots(c *gin.Context) {
	dateStr := c.Query("date")
	serviceTypeIDStr := c.Query("service_type_id")
	if dateStr == "" || serviceTypeIDStr == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "date and service_type_id are required")
		return
	}

	date, err := utils.ParseDate(dateStr)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid date format. Use YYYY-MM-DD")
		return
	}
	serviceTypeUUID, err := uuid.Parse(serviceTypeIDStr)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid service type ID format")
		return
	}

	var staffID *uuid.UUID
	if staffIDStr := c.Query("staff_id"); staffIDStr != "" {
		staffUUID, err := uuid.Parse(staffIDStr)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid staff ID format")
			return
		}
		staffID = &staffUUID
	}

	svc := newReservationService()
	slots, err := svc.Scheduler().AvailableSlots(date, serviceTypeUUID, staffID)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to compute available slots")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":  dateStr,
		"slots": slots,
	})
}
