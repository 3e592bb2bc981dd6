package handlers

import (
	"crypto/subtle"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"homechef-api/apperrors"
	"homechef-api/cache"
	"homechef-api/config"
	"homechef-api/middleware"
	"homechef-api/models"
	"homechef-api/payments"
)

// CreateCheckoutSession starts payment for an accepted, unpaid order.
// Only the order's customer may pay. The call never mutates payment
// state — the provider is the source of truth until its confirmation
// arrives on the webhook.
func CreateCheckoutSession(db *gorm.DB, provider payments.Provider, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := middleware.GetPrincipal(c)

		var order models.Order
		if err := db.First(&order, c.Param("id")).Error; err != nil {
			writeError(c, apperrors.ErrOrderNotFound)
			return
		}
		if order.CustomerID != p.ID {
			writeError(c, fmt.Errorf("%w: only the order's customer can pay", apperrors.ErrOrderNotPayable))
			return
		}
		if order.OrderStatus != models.OrderAccepted || order.PaymentStatus != models.PaymentPending {
			writeError(c, fmt.Errorf("%w: order_status=%s payment_status=%s",
				apperrors.ErrOrderNotPayable, order.OrderStatus, order.PaymentStatus))
			return
		}

		session, err := provider.CreateCheckoutSession(c.Request.Context(), payments.CheckoutParams{
			OrderID:    order.ID,
			MealName:   order.MealName,
			Amount:     order.Total(),
			SuccessURL: cfg.PaymentSuccessURL,
			CancelURL:  cfg.PaymentCancelURL,
		})
		if err != nil {
			logrus.WithFields(logrus.Fields{"order_id": order.ID, "error": err.Error()}).
				Error("checkout session creation failed")
			c.JSON(http.StatusBadGateway, gin.H{"error": "Payment provider unavailable"})
			return
		}

		logrus.WithFields(logrus.Fields{
			"order_id":   order.ID,
			"session_id": session.ID,
			"amount":     order.Total().String(),
		}).Info("checkout session created")

		c.JSON(http.StatusOK, gin.H{"session_id": session.ID, "url": session.URL})
	}
}

type ConfirmPaymentRequest struct {
	OrderID uint   `json:"order_id" binding:"required"`
	Status  string `json:"status" binding:"required,oneof=paid failed"`
}

// ConfirmPayment is the provider's webhook. It is idempotent: the
// provider may deliver the same confirmation more than once, and the
// client may reload the confirmation page, but at most one state change
// results. It never touches orderStatus.
func ConfirmPayment(db *gorm.DB, rdb *redis.Client, webhookSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		secret := c.GetHeader("X-Webhook-Secret")
		if subtle.ConstantTimeCompare([]byte(secret), []byte(webhookSecret)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid webhook secret"})
			return
		}

		var req ConfirmPaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if req.Status == "failed" {
			// A failed or expired session leaves the order legitimately
			// unpaid; nothing to record.
			logrus.WithField("order_id", req.OrderID).Info("payment failed signal received")
			c.JSON(http.StatusOK, gin.H{"message": "Payment not completed", "payment_status": models.PaymentPending})
			return
		}

		// Conditional update enforces both idempotency and the
		// cross-invariant: paid is only reachable while the order is
		// accepted or delivered.
		res := db.Model(&models.Order{}).
			Where("id = ? AND payment_status = ? AND order_status IN ?",
				req.OrderID, models.PaymentPending,
				[]models.OrderStatus{models.OrderAccepted, models.OrderDelivered}).
			Update("payment_status", models.PaymentPaid)
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record payment"})
			return
		}

		if res.RowsAffected == 0 {
			var order models.Order
			if err := db.First(&order, req.OrderID).Error; err != nil {
				writeError(c, apperrors.ErrOrderNotFound)
				return
			}
			if order.PaymentStatus == models.PaymentPaid {
				// Duplicate webhook delivery: success as a no-op.
				c.JSON(http.StatusOK, gin.H{"message": "Payment already recorded", "payment_status": models.PaymentPaid})
				return
			}
			writeError(c, fmt.Errorf("%w: order_status=%s", apperrors.ErrOrderNotPayable, order.OrderStatus))
			return
		}

		_ = cache.Delete(c.Request.Context(), rdb, adminStatsCacheKey)
		logrus.WithField("order_id", req.OrderID).Info("payment confirmed")
		c.JSON(http.StatusOK, gin.H{"message": "Payment recorded", "payment_status": models.PaymentPaid})
	}
}
