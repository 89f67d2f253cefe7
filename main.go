package main

import (
	"fmt"
	"log"
	"os"

	"wellness-backend/config"
	"wellness-backend/models"
	"wellness-backend/routes"
	"wellness-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func init() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	config.ConnectDB()

	config.DB.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.ServiceType{},
		&models.PackagePurchase{},
		&models.ServicePool{},
		&models.ServiceUsage{},
		&models.Reservation{},
		&models.DeliveryLog{},
	)

	if err := config.EnsureIndexes(config.DB); err != nil {
		log.Fatalf("Failed to create reservation indexes: %v", err)
	}

	seedServiceTypes()
}

func seedServiceTypes() {
	for _, name := range models.DefaultServiceNames {
		serviceType := models.ServiceType{Name: name, Duration: 60, IsActive: true}
		config.DB.Where("name = ?", name).FirstOrCreate(&serviceType)
	}
}

func main() {
	notifier := services.NewGateway(config.DB)
	reminders := services.NewReminderService(config.DB, notifier)
	reminders.StartScheduler()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r := routes.SetupRouter()
	printRoutes(r)
	r.Run(":" + port)
}

func printRoutes(r *gin.Engine) {
	routes := r.Routes()
	for _, route := range routes {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
