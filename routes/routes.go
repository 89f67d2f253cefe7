package routes

import (
	"wellness-backend/config"
	"wellness-backend/controllers"
	"wellness-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(config.PerformanceLogger())

	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)

		auth.Use(utils.AuthMiddleware())
		auth.GET("/me", controllers.Me)
	}

	api := r.Group("/api")
	api.Use(utils.AuthMiddleware())
	{
		// Customer routes
		customers := api.Group("/customers")
		{
			customers.POST("", controllers.CreateCustomer)
			customers.GET("", controllers.GetCustomers)
			customers.GET("/:id", controllers.GetCustomer)
			customers.PUT("/:id", controllers.UpdateCustomer)
			customers.DELETE("/:id", controllers.DeleteCustomer)

			// Package purchases and sub-pool allocation
			customers.POST("/:id/packages", controllers.CreatePackagePurchase)
			customers.GET("/:id/packages", controllers.GetCustomerPackages)
			customers.PUT("/:id/packages/:purchaseId/services", controllers.AllocatePackageServices)
			customers.GET("/:id/packages/:purchaseId/pools", controllers.GetPackagePools)
		}

		// Service type routes
		serviceTypes := api.Group("/service-types")
		{
			serviceTypes.POST("", controllers.CreateServiceType)
			serviceTypes.GET("", controllers.GetServiceTypes)
			serviceTypes.GET("/:id", controllers.GetServiceType)
			serviceTypes.PUT("/:id", controllers.UpdateServiceType)
			serviceTypes.DELETE("/:id", controllers.DeleteServiceType)
		}

		// Reservation routes
		reservations := api.Group("/reservations")
		{
			reservations.POST("", controllers.CreateReservation)
			reservations.GET("", controllers.GetReservations)
			reservations.DELETE("/purge", controllers.PurgeCancelledReservations)
			reservations.GET("/:id", controllers.GetReservation)
			reservations.PUT("/:id", controllers.UpdateReservation)
			reservations.POST("/:id/confirm", controllers.ConfirmReservation)
			reservations.POST("/:id/cancel", controllers.CancelReservation)
			reservations.POST("/:id/complete", controllers.CompleteReservation)
			reservations.POST("/:id/no-show", controllers.NoShowReservation)
		}

		// Slot availability
		api.GET("/slots/available", controllers.GetAvailableSlots)

		// Staff listing for booking
		api.GET("/staff", controllers.GetStaff)

		// Dashboard routes
		api.GET("/dashboard", controllers.GetDashboardOverview)
	}

	return r
}
