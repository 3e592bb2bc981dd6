package models

import "time"

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// RoleRequest is a user's ask to be promoted to chef or admin.
// Approved and rejected are terminal; approval also mutates the user's role.
type RoleRequest struct {
	ID            uint          `json:"id" gorm:"primaryKey"`
	RequesterID   uint          `json:"requester_id" gorm:"not null;index"`
	Requester     User          `json:"requester,omitempty" gorm:"foreignKey:RequesterID"`
	RequestedRole UserRole      `json:"requested_role" gorm:"not null"`
	Status        RequestStatus `json:"status" gorm:"not null;default:'pending';index"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}
