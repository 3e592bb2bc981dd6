package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"homechef-api/apperrors"
	"homechef-api/cache"
	"homechef-api/middleware"
	"homechef-api/models"
)

const (
	adminStatsCacheKey = "stats:admin"
	adminStatsCacheTTL = 30 * time.Second
)

// GetAllUsers returns all users with optional role/status filters — admin only
func GetAllUsers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var users []models.User
		query := db.Order("created_at desc")
		if role := c.Query("role"); role != "" {
			query = query.Where("role = ?", role)
		}
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}
		query.Find(&users)
		c.JSON(http.StatusOK, gin.H{"count": len(users), "users": users})
	}
}

// MarkFraud flips a user's status to fraud. One-way valve: there is no
// un-fraud transition. Existing orders are left untouched; the freeze is
// enforced prospectively by the authorization guard.
func MarkFraud(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := middleware.GetPrincipal(c)

		var user models.User
		if err := db.First(&user, c.Param("id")).Error; err != nil {
			writeError(c, fmt.Errorf("%w: user", apperrors.ErrNotFound))
			return
		}
		if user.Status == models.StatusFraud {
			writeError(c, fmt.Errorf("%w: user %d", apperrors.ErrAlreadyFraud, user.ID))
			return
		}

		res := db.Model(&models.User{}).
			Where("id = ? AND status = ?", user.ID, models.StatusActive).
			Update("status", models.StatusFraud)
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
			return
		}
		if res.RowsAffected == 0 {
			writeError(c, fmt.Errorf("%w: user %d", apperrors.ErrAlreadyFraud, user.ID))
			return
		}

		logrus.WithFields(logrus.Fields{
			"user_id":   user.ID,
			"marked_by": p.ID,
		}).Warn("user marked as fraud")

		c.JSON(http.StatusOK, gin.H{"message": "User marked as fraud", "user_id": user.ID})
	}
}

type platformStats struct {
	TotalUsers      int64  `json:"total_users"`
	TotalMeals      int64  `json:"total_meals"`
	PendingOrders   int64  `json:"pending_orders"`
	DeliveredOrders int64  `json:"delivered_orders"`
	TotalPaidAmount string `json:"total_paid_amount"`
}

// GetPlatformStats returns the admin dashboard aggregates, cached briefly
func GetPlatformStats(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var stats platformStats
		if hit, err := cache.Get(c.Request.Context(), rdb, adminStatsCacheKey, &stats); err == nil && hit {
			c.JSON(http.StatusOK, gin.H{"stats": stats, "cached": true})
			return
		}

		db.Model(&models.User{}).Count(&stats.TotalUsers)
		db.Model(&models.Meal{}).Count(&stats.TotalMeals)
		db.Model(&models.Order{}).Where("order_status = ?", models.OrderPending).Count(&stats.PendingOrders)
		db.Model(&models.Order{}).Where("order_status = ?", models.OrderDelivered).Count(&stats.DeliveredOrders)

		var paidOrders []models.Order
		db.Where("payment_status = ?", models.PaymentPaid).Find(&paidOrders)
		total := decimal.Zero
		for i := range paidOrders {
			total = total.Add(paidOrders[i].Total())
		}
		stats.TotalPaidAmount = total.String()

		_ = cache.Set(c.Request.Context(), rdb, adminStatsCacheKey, stats, adminStatsCacheTTL)
		c.JSON(http.StatusOK, gin.H{"stats": stats})
	}
}
