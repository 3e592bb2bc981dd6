package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Meal struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	ChefID   string `json:"chef_id" gorm:"not null;index"`
	ChefName string `json:"chef_name"`
	Name     string `json:"name" gorm:"not null"`
	// Price is what new orders snapshot; editing it never touches
	// existing orders.
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Ingredients []string        `json:"ingredients" gorm:"serializer:json"`
	// Rating is system-computed from reviews, never client-settable.
	Rating    float64   `json:"rating" gorm:"default:0"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Review struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	MealID     uint      `json:"meal_id" gorm:"not null;index"`
	CustomerID uint      `json:"customer_id" gorm:"not null;index"`
	Rating     int       `json:"rating" gorm:"not null"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Favorite struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	CustomerID uint      `json:"customer_id" gorm:"not null;uniqueIndex:idx_favorite_customer_meal"`
	MealID     uint      `json:"meal_id" gorm:"not null;uniqueIndex:idx_favorite_customer_meal"`
	Meal       Meal      `json:"meal,omitempty" gorm:"foreignKey:MealID"`
	CreatedAt  time.Time `json:"created_at"`
}
