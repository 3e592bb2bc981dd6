package authz

import (
	"fmt"

	"homechef-api/apperrors"
	"homechef-api/models"
)

// Principal is the authenticated actor performing an action, resolved
// fresh from the user record on every request. There is no ambient
// session state anywhere below the middleware layer; every core call
// receives an explicit Principal.
type Principal struct {
	ID     uint
	Email  string
	Role   models.UserRole
	Status models.UserStatus
	// ChefID is empty unless the user has been promoted to chef.
	ChefID string
}

// Action names every capability the guard arbitrates.
type Action string

const (
	ActionCreateOrder         Action = "order:create"
	ActionOrderTransition     Action = "order:transition"
	ActionCreateMeal          Action = "meal:create"
	ActionManageMeal          Action = "meal:manage"
	ActionCreateReview        Action = "review:create"
	ActionManageReview        Action = "review:manage"
	ActionCreateFavorite      Action = "favorite:create"
	ActionCreateRoleRequest   Action = "rolerequest:create"
	ActionFinalizeRoleRequest Action = "rolerequest:finalize"
	ActionMarkFraud           Action = "user:markfraud"
	ActionChefAccess          Action = "chef:access"
	ActionAdminAccess         Action = "admin:access"
)

// Target carries the ownership facts the guard needs about the entity an
// action touches. Zero value means the action has no target entity.
type Target struct {
	// OrderChefID / OrderCustomerID identify an order's owners for
	// transition checks.
	OrderChefID     string
	OrderCustomerID uint
	// Cancellation marks the transition as a cancel; customers may only
	// touch their own orders for cancellation, nothing else.
	Cancellation bool
	// OwnerChefID / OwnerCustomerID identify the owner of a meal or a
	// review/favorite record for manage actions.
	OwnerChefID     string
	OwnerCustomerID uint
}

// fraudBlocked lists the write capabilities frozen for a fraud-flagged
// user. Existing records stay untouched; the freeze is prospective only.
var fraudBlocked = map[Action]bool{
	ActionCreateOrder:    true,
	ActionCreateMeal:     true,
	ActionCreateReview:   true,
	ActionCreateFavorite: true,
}

// requiredRole maps actions to the role they demand. Admin always
// satisfies a role requirement. Actions absent from the map are open to
// any authenticated principal.
var requiredRole = map[Action]models.UserRole{
	ActionCreateMeal:          models.RoleChef,
	ActionChefAccess:          models.RoleChef,
	ActionFinalizeRoleRequest: models.RoleAdmin,
	ActionMarkFraud:           models.RoleAdmin,
	ActionAdminAccess:         models.RoleAdmin,
}

// Authorize decides whether principal p may perform action on target t.
// It is pure: no storage access, no side effects. Rules are evaluated in
// order and the first match wins:
//
//  1. fraud status freezes creation of orders, meals, reviews, favorites
//  2. role requirements (admin satisfies any)
//  3. ownership of the touched entity
//
// A nil return means allow.
func Authorize(p Principal, action Action, t Target) error {
	if p.Status == models.StatusFraud && fraudBlocked[action] {
		return fmt.Errorf("%w: %s", apperrors.ErrFraudBlocked, action)
	}

	if role, ok := requiredRole[action]; ok {
		if p.Role != role && p.Role != models.RoleAdmin {
			if role == models.RoleAdmin {
				return fmt.Errorf("%w: %s requires admin", apperrors.ErrForbidden, action)
			}
			return fmt.Errorf("%w: %s requires role %s", apperrors.ErrInsufficientRole, action, role)
		}
	}

	switch action {
	case ActionOrderTransition:
		switch {
		case p.Role == models.RoleAdmin:
		case p.ChefID != "" && p.ChefID == t.OrderChefID:
		case t.Cancellation && p.ID == t.OrderCustomerID:
		default:
			return fmt.Errorf("%w: order belongs to another chef/customer", apperrors.ErrNotOwner)
		}
	case ActionManageMeal:
		if p.Role != models.RoleAdmin && (p.ChefID == "" || p.ChefID != t.OwnerChefID) {
			return fmt.Errorf("%w: meal belongs to another chef", apperrors.ErrNotOwner)
		}
	case ActionManageReview:
		if p.Role != models.RoleAdmin && p.ID != t.OwnerCustomerID {
			return fmt.Errorf("%w: review belongs to another user", apperrors.ErrNotOwner)
		}
	}

	return nil
}
