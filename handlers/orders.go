package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"homechef-api/apperrors"
	"homechef-api/authz"
	"homechef-api/middleware"
	"homechef-api/models"
	"homechef-api/statemachine"
)

type PlaceOrderRequest struct {
	MealID          uint   `json:"meal_id" binding:"required"`
	Quantity        int    `json:"quantity" binding:"required,min=1"`
	DeliveryAddress string `json:"delivery_address" binding:"required"`
}

// PlaceOrder creates a new order, snapshotting the meal's name and price
// so later catalog edits never change what the customer agreed to pay.
func PlaceOrder(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := middleware.GetPrincipal(c)
		if err := authz.Authorize(p, authz.ActionCreateOrder, authz.Target{}); err != nil {
			writeError(c, err)
			return
		}

		var req PlaceOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var meal models.Meal
		if err := db.First(&meal, req.MealID).Error; err != nil {
			writeError(c, fmt.Errorf("%w: meal", apperrors.ErrNotFound))
			return
		}

		order := models.Order{
			MealID:          meal.ID,
			MealName:        meal.Name,
			Price:           meal.Price,
			Quantity:        req.Quantity,
			ChefID:          meal.ChefID,
			CustomerID:      p.ID,
			DeliveryAddress: req.DeliveryAddress,
			OrderStatus:     models.OrderPending,
			PaymentStatus:   models.PaymentPending,
			OrderTime:       time.Now(),
		}
		if err := db.Create(&order).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to place order"})
			return
		}

		db.Create(&models.OrderStatusHistory{
			OrderID:   order.ID,
			ToStatus:  models.OrderPending,
			ChangedBy: p.ID,
			Note:      "Order placed by customer",
		})

		logrus.WithFields(logrus.Fields{
			"order_id":    order.ID,
			"customer_id": p.ID,
			"chef_id":     order.ChefID,
			"total":       order.Total().String(),
		}).Info("order placed")

		c.JSON(http.StatusCreated, gin.H{"message": "Order placed successfully", "order": order})
	}
}

// GetMyOrders returns all orders for the logged-in customer
func GetMyOrders(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := middleware.GetPrincipal(c)
		var orders []models.Order
		db.Where("customer_id = ?", p.ID).Order("created_at desc").Find(&orders)
		c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
	}
}

// GetOrderDetail returns a single order with its status history.
// Customers see their own orders, chefs the ones against their meals,
// admins everything.
func GetOrderDetail(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := middleware.GetPrincipal(c)

		var order models.Order
		if err := db.First(&order, c.Param("id")).Error; err != nil {
			writeError(c, apperrors.ErrOrderNotFound)
			return
		}
		if p.Role != models.RoleAdmin && order.CustomerID != p.ID && (p.ChefID == "" || order.ChefID != p.ChefID) {
			writeError(c, fmt.Errorf("%w: order", apperrors.ErrNotOwner))
			return
		}

		var history []models.OrderStatusHistory
		db.Where("order_id = ?", order.ID).Order("created_at asc").Find(&history)
		c.JSON(http.StatusOK, gin.H{"order": order, "status_history": history})
	}
}

// GetChefOrders returns the orders placed against the calling chef's meals
func GetChefOrders(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := middleware.GetPrincipal(c)

		var orders []models.Order
		query := db.Where("chef_id = ?", p.ChefID)
		if status := c.Query("status"); status != "" {
			query = query.Where("order_status = ?", status)
		}
		query.Order("created_at desc").Find(&orders)

		summary := map[string]int{}
		for _, o := range orders {
			summary[string(o.OrderStatus)]++
		}
		c.JSON(http.StatusOK, gin.H{"count": len(orders), "order_summary": summary, "orders": orders})
	}
}

// CancelOrder cancels an order as the customer (pending orders only —
// once the chef has accepted, cancellation is no longer possible).
func CancelOrder(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		transitionOrder(c, db, models.OrderCancelled, "Order cancelled by customer")
	}
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
	Note   string             `json:"note"`
}

// UpdateOrderStatus handles chef (and admin) state transitions:
// accept, cancel, deliver.
func UpdateOrderStatus(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		switch req.Status {
		case models.OrderAccepted, models.OrderCancelled, models.OrderDelivered:
		default:
			writeError(c, fmt.Errorf("%w: unknown status %q", apperrors.ErrInvalidRequest, req.Status))
			return
		}
		transitionOrder(c, db, req.Status, req.Note)
	}
}

// transitionOrder is the single mutation boundary for orderStatus. The
// guard decides who may touch the order, the state machine decides which
// edge is legal for that actor, and the write is a compare-and-set on
// the state observed at read time, so two racing transitions can never
// both succeed.
func transitionOrder(c *gin.Context, db *gorm.DB, to models.OrderStatus, note string) {
	p := middleware.GetPrincipal(c)

	var order models.Order
	if err := db.First(&order, c.Param("id")).Error; err != nil {
		writeError(c, apperrors.ErrOrderNotFound)
		return
	}

	target := authz.Target{
		OrderChefID:     order.ChefID,
		OrderCustomerID: order.CustomerID,
		Cancellation:    to == models.OrderCancelled,
	}
	if err := authz.Authorize(p, authz.ActionOrderTransition, target); err != nil {
		writeError(c, err)
		return
	}

	actor := actorFor(p, &order)
	if err := statemachine.CanTransition(order.OrderStatus, to, actor); err != nil {
		writeError(c, err)
		return
	}

	updates := map[string]any{"order_status": to}
	if to == models.OrderDelivered {
		updates["delivery_time"] = time.Now()
	}
	res := db.Model(&models.Order{}).
		Where("id = ? AND order_status = ?", order.ID, order.OrderStatus).
		Updates(updates)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order"})
		return
	}
	if res.RowsAffected == 0 {
		writeError(c, fmt.Errorf("%w: order state changed concurrently, re-fetch and retry",
			apperrors.ErrInvalidTransition))
		return
	}

	db.Create(&models.OrderStatusHistory{
		OrderID:    order.ID,
		FromStatus: order.OrderStatus,
		ToStatus:   to,
		ChangedBy:  p.ID,
		Note:       note,
	})

	logrus.WithFields(logrus.Fields{
		"order_id":   order.ID,
		"from":       order.OrderStatus,
		"to":         to,
		"actor":      actor,
		"changed_by": p.ID,
	}).Info("order transition applied")

	c.JSON(http.StatusOK, gin.H{
		"message":         "Order status updated",
		"order_id":        order.ID,
		"previous_status": order.OrderStatus,
		"current_status":  to,
	})
}

// actorFor derives the capacity in which the principal acts on the
// order. The guard has already established one of these holds.
func actorFor(p authz.Principal, order *models.Order) statemachine.Actor {
	switch {
	case p.Role == models.RoleAdmin:
		return statemachine.ActorAdmin
	case p.ChefID != "" && p.ChefID == order.ChefID:
		return statemachine.ActorChef
	default:
		return statemachine.ActorCustomer
	}
}

// AdminGetAllOrders returns all orders with optional filters — admin only
func AdminGetAllOrders(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var orders []models.Order
		query := db.Order("created_at desc")
		if status := c.Query("status"); status != "" {
			query = query.Where("order_status = ?", status)
		}
		if payment := c.Query("payment_status"); payment != "" {
			query = query.Where("payment_status = ?", payment)
		}
		if customerID := c.Query("customer_id"); customerID != "" {
			query = query.Where("customer_id = ?", customerID)
		}
		if chefID := c.Query("chef_id"); chefID != "" {
			query = query.Where("chef_id = ?", chefID)
		}
		query.Find(&orders)

		summary := map[string]int{}
		for _, o := range orders {
			summary[string(o.OrderStatus)]++
		}
		c.JSON(http.StatusOK, gin.H{"count": len(orders), "order_summary": summary, "orders": orders})
	}
}
