package controllers

import (
	"errors"
	"net/http"

	"wellness-backend/config"
	"wellness-backend/services"
	"wellness-backend/utils"

	"github.com/gin-gonic/gin"
)

// newReservationService builds the scheduling/ledger core for one request.
// The gateway picks Twilio when credentials are configured.
func newReservationService() *services.ReservationService {
	return services.NewReservationService(config.DB, services.NewGateway(config.DB))
}

// respondDomainError translates the service error taxonomy into HTTP
// statuses. Domain errors are never retried here; the staff UI decides what
// to do next.
func respondDomainError(c *gin.Context, err error) {
	var conflict *services.ConflictError
	var invalid *services.InvalidTransitionError

	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.RespondWithError(c, http.StatusNotFound, err.Error())
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{
			"error":           conflict.Error(),
			"serviceConflict": conflict.Service,
			"staffConflict":   conflict.Staff,
		})
	case errors.As(err, &invalid):
		utils.RespondWithError(c, http.StatusConflict, invalid.Error())
	case errors.Is(err, services.ErrInsufficientSessions):
		utils.RespondWithError(c, http.StatusUnprocessableEntity, "No remaining sessions in the selected package")
	case errors.Is(err, services.ErrPackageExpired):
		utils.RespondWithError(c, http.StatusUnprocessableEntity, "The selected package has expired")
	case errors.Is(err, services.ErrValidation):
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	default:
		utils.RespondWithError(c, http.StatusInternalServerError, "Internal server error")
	}
}
