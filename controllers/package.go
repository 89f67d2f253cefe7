// controllers/package.go
package controllers

import (
	"errors"
	"net/http"
	"time"

	"wellness-backend/config"
	"wellness-backend/models"
	"wellness-backend/services"
	"wellness-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreatePackageInput defines the expected JSON structure for a package purchase
type CreatePackageInput struct {
	Name          string                    `json:"name" binding:"required"`
	TotalSessions int                       `json:"totalSessions" binding:"required,min=1"`
	Price         float64                   `json:"price" binding:"min=0"`
	ExpiryDate    *time.Time                `json:"expiryDate"`
	Pools         []services.PoolAllocation `json:"pools"` // optional initial sub-pool split
}

// AllocatePoolsInput carries a sub-pool (re)definition
type AllocatePoolsInput struct {
	Pools []services.PoolAllocation `json:"pools" binding:"required"`
}

// CreatePackagePurchase records a new prepaid package for a customer
func CreatePackagePurchase(c *gin.Context) {
	customerUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid customer ID format")
		return
	}

	var input CreatePackageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var customer models.Customer
	if err := config.DB.First(&customer, "id = ?", customerUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	purchase := models.PackagePurchase{
		CustomerID:        customer.ID,
		Name:              input.Name,
		TotalSessions:     input.TotalSessions,
		UsedSessions:      0,
		RemainingSessions: input.TotalSessions,
		Price:             input.Price,
		PurchaseDate:      time.Now(),
		ExpiryDate:        input.ExpiryDate,
	}
	if err := config.DB.Create(&purchase).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create package purchase")
		return
	}

	if len(input.Pools) > 0 {
		ledger := services.NewSessionLedger(config.DB)
		if err := ledger.Allocate(purchase.ID, input.Pools); err != nil {
			// The purchase exists without pools at this point; report the
			// allocation problem so the caller can retry the split.
			respondDomainError(c, err)
			return
		}
		config.DB.Preload("Pools").First(&purchase, "id = ?", purchase.ID)
	}

	c.JSON(http.StatusCreated, purchase)
}

// GetCustomerPackages lists a customer's package purchases with pools
func GetCustomerPackages(c *gin.Context) {
	customerUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid customer ID format")
		return
	}

	var packages []models.PackagePurchase
	if err := config.DB.Preload("Pools").
		Where("customer_id = ?", customerUUID).
		Order("purchase_date DESC").
		Find(&packages).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve packages")
		return
	}

	c.JSON(http.StatusOK, packages)
}

// AllocatePackageServices (re)defines the per-service sub-pools of a purchase
func AllocatePackageServices(c *gin.Context) {
	customerUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid customer ID format")
		return
	}
	purchaseUUID, err := uuid.Parse(c.Param("purchaseId"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid purchase ID format")
		return
	}

	var input AllocatePoolsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	purchase, ok := loadCustomerPurchase(c, customerUUID, purchaseUUID)
	if !ok {
		return
	}

	ledger := services.NewSessionLedger(config.DB)
	if err := ledger.Allocate(purchase.ID, input.Pools); err != nil {
		respondDomainError(c, err)
		return
	}

	config.DB.Preload("Pools").First(purchase, "id = ?", purchase.ID)
	c.JSON(http.StatusOK, purchase)
}

// GetPackagePools returns the purchase's sub-pools: the stored rows when they
// exist, otherwise the deterministic reconciled view for legacy rows.
func GetPackagePools(c *gin.Context) {
	customerUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid customer ID format")
		return
	}
	purchaseUUID, err := uuid.Parse(c.Param("purchaseId"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid purchase ID format")
		return
	}

	purchase, ok := loadCustomerPurchase(c, customerUUID, purchaseUUID)
	if !ok {
		return
	}

	var pools []models.ServicePool
	if err := config.DB.Where("purchase_id = ?", purchase.ID).Find(&pools).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	if len(pools) > 0 {
		views := make([]services.PoolView, 0, len(pools))
		for _, p := range pools {
			views = append(views, services.PoolView{ServiceName: p.ServiceName, Total: p.Total, Used: p.Used})
		}
		c.JSON(http.StatusOK, gin.H{"pools": views, "reconciled": false})
		return
	}

	counts, err := usageCountsByService(purchase.ID)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	views := services.ReconcilePools(purchase, counts, knownServiceNames())
	c.JSON(http.StatusOK, gin.H{"pools": views, "reconciled": true})
}

func loadCustomerPurchase(c *gin.Context, customerID, purchaseID uuid.UUID) (*models.PackagePurchase, bool) {
	var purchase models.PackagePurchase
	if err := config.DB.First(&purchase, "id = ? AND customer_id = ?", purchaseID, customerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Package purchase not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return nil, false
	}
	return &purchase, true
}

// usageCountsByService tallies historical consumption per service name for a
// purchase, feeding the legacy reconcile view.
func usageCountsByService(purchaseID uuid.UUID) (map[string]int, error) {
	var rows []struct {
		Name  string
		Count int
	}
	err := config.DB.Model(&models.ServiceUsage{}).
		Select("service_types.name AS name, COUNT(*) AS count").
		Joins("JOIN service_types ON service_types.id = service_usages.service_type_id").
		Where("service_usages.purchase_id = ?", purchaseID).
		Group("service_types.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.Name] = r.Count
	}
	return counts, nil
}

// knownServiceNames returns the service catalog in creation order, falling
// back to the seeded defaults when the table is empty.
func knownServiceNames() []string {
	var names []string
	config.DB.Model(&models.ServiceType{}).Order("created_at ASC").Pluck("name", &names)
	if len(names) == 0 {
		return models.DefaultServiceNames
	}
	return names
}
