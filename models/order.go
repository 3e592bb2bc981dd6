package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the delivery lifecycle of an order
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderAccepted  OrderStatus = "accepted"
	OrderCancelled OrderStatus = "cancelled"
	OrderDelivered OrderStatus = "delivered"
)

// PaymentStatus is independent of OrderStatus, with one cross-invariant:
// it may only become paid while the order is accepted or delivered.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

type Order struct {
	ID     uint `json:"id" gorm:"primaryKey"`
	MealID uint `json:"meal_id" gorm:"not null;index"`
	// MealName and Price are snapshots taken at order time.
	MealName        string          `json:"meal_name" gorm:"not null"`
	Price           decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Quantity        int             `json:"quantity" gorm:"not null"`
	ChefID          string          `json:"chef_id" gorm:"not null;index"`
	CustomerID      uint            `json:"customer_id" gorm:"not null;index"`
	DeliveryAddress string          `json:"delivery_address" gorm:"not null"`
	OrderStatus     OrderStatus     `json:"order_status" gorm:"not null;default:'pending';index"`
	PaymentStatus   PaymentStatus   `json:"payment_status" gorm:"not null;default:'pending'"`
	OrderTime       time.Time       `json:"order_time"`
	DeliveryTime    *time.Time      `json:"delivery_time,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Total is the snapshotted line total (price at order time times quantity).
func (o *Order) Total() decimal.Decimal {
	return o.Price.Mul(decimal.NewFromInt(int64(o.Quantity)))
}

// OrderStatusHistory tracks every status change for auditing
type OrderStatusHistory struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    uint        `json:"order_id" gorm:"not null;index"`
	FromStatus OrderStatus `json:"from_status"`
	ToStatus   OrderStatus `json:"to_status" gorm:"not null"`
	ChangedBy  uint        `json:"changed_by"`
	Note       string      `json:"note"`
	CreatedAt  time.Time   `json:"created_at"`
}
