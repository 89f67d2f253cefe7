package controllers

import (
	"net/http"
	"time"

	"wellness-backend/config"
	"wellness-backend/models"
	"wellness-backend/utils"

	"github.com/gin-gonic/gin"
)

type DashboardOverview struct {
	TotalCustomers    int64               `json:"totalCustomers"`
	CustomersByStatus map[string]int64    `json:"customersByStatus"`
	TodayByStatus     map[string]int64    `json:"todayByStatus"`
	TodayReservations []TodayReservation  `json:"todayReservations"`
	UpcomingWeek      int64               `json:"upcomingWeek"`
	LowBalance        []LowBalancePackage `json:"lowBalancePackages"`
}

type TodayReservation struct {
	ID           string `json:"id"`
	CustomerName string `json:"customerName"`
	ServiceName  string `json:"serviceName"`
	Time         string `json:"time"`
	Status       string `json:"status"`
}

type LowBalancePackage struct {
	CustomerName string `json:"customerName"`
	PackageName  string `json:"packageName"`
	Remaining    int    `json:"remaining"`
}

func GetDashboardOverview(c *gin.Context) {
	today := utils.BeginningOfDay(time.Now())
	weekEnd := today.AddDate(0, 0, 7)

	var overview DashboardOverview
	overview.CustomersByStatus = make(map[string]int64)
	overview.TodayByStatus = make(map[string]int64)

	config.DB.Model(&models.Customer{}).Count(&overview.TotalCustomers)

	for _, status := range []models.CustomerStatus{models.CustomerActive, models.CustomerInactive, models.CustomerDormant} {
		var count int64
		config.DB.Model(&models.Customer{}).Where("status = ?", status).Count(&count)
		overview.CustomersByStatus[string(status)] = count
	}

	for _, status := range []models.ReservationStatus{
		models.ReservationPending, models.ReservationConfirmed,
		models.ReservationCompleted, models.ReservationCancelled, models.ReservationNoShow,
	} {
		var count int64
		config.DB.Model(&models.Reservation{}).
			Where("reservation_date = ? AND status = ?", today, status).
			Count(&count)
		overview.TodayByStatus[string(status)] = count
	}

	var reservations []models.Reservation
	config.DB.Preload("Customer").Preload("ServiceType").
		Where("reservation_date = ?", today).
		Order("reservation_time ASC").
		Find(&reservations)
	for _, r := range reservations {
		overview.TodayReservations = append(overview.TodayReservations, TodayReservation{
			ID:           r.ID.String(),
			CustomerName: r.Customer.Name,
			ServiceName:  r.ServiceType.Name,
			Time:         r.ReservationTime,
			Status:       string(r.Status),
		})
	}

	config.DB.Model(&models.Reservation{}).
		Where("reservation_date > ? AND reservation_date <= ? AND status IN ?",
			today, weekEnd, []models.ReservationStatus{models.ReservationPending, models.ReservationConfirmed}).
		Count(&overview.UpcomingWeek)

	// Packages close to running out, for upsell follow-up.
	rows, err := config.DB.Raw(`
        SELECT c.name AS customer_name, p.name AS package_name, p.remaining_sessions AS remaining
        FROM package_purchases p
        JOIN customers c ON c.id = p.customer_id
        WHERE p.deleted_at IS NULL AND p.remaining_sessions > 0 AND p.remaining_sessions <= 3
          AND (p.expiry_date IS NULL OR p.expiry_date > ?)
        ORDER BY p.remaining_sessions ASC
        LIMIT 10
    `, time.Now()).Rows()
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var item LowBalancePackage
			rows.Scan(&item.CustomerName, &item.PackageName, &item.Remaining)
			overview.LowBalance = append(overview.LowBalance, item)
		}
	}

	c.JSON(http.StatusOK, overview)
}
