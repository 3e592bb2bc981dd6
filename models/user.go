package models

import "time"

// UserRole defines allowed roles in the system
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleChef  UserRole = "chef"
	RoleAdmin UserRole = "admin"
)

// UserStatus is the fraud flag. There is no transition back from fraud.
type UserStatus string

const (
	StatusActive UserStatus = "active"
	StatusFraud  UserStatus = "fraud"
)

type User struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	Name         string     `json:"name" gorm:"not null"`
	Email        string     `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string     `json:"-" gorm:"not null"`
	Role         UserRole   `json:"role" gorm:"not null;default:'user'"`
	Status       UserStatus `json:"status" gorm:"not null;default:'active'"`
	// ChefID is assigned once, when a role request for chef is approved.
	ChefID    *string   `json:"chef_id,omitempty" gorm:"uniqueIndex"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
