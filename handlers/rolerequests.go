package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"homechef-api/apperrors"
	"homechef-api/middleware"
	"homechef-api/models"
)

type CreateRoleRequestRequest struct {
	RequestedRole models.UserRole `json:"requested_role" binding:"required"`
}

// CreateRoleRequest files a request to be promoted to chef or admin.
// At most one pending request may exist per (user, role); holding the
// role already is rejected up front.
func CreateRoleRequest(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := middleware.GetPrincipal(c)

		var req CreateRoleRequestRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.RequestedRole != models.RoleChef && req.RequestedRole != models.RoleAdmin {
			writeError(c, fmt.Errorf("%w: requested_role must be chef or admin", apperrors.ErrInvalidRequest))
			return
		}
		if p.Role == req.RequestedRole || p.Role == models.RoleAdmin {
			writeError(c, fmt.Errorf("%w: %s", apperrors.ErrRoleAlreadyHeld, req.RequestedRole))
			return
		}

		request := models.RoleRequest{
			RequesterID:   p.ID,
			RequestedRole: req.RequestedRole,
			Status:        models.RequestPending,
		}
		// The duplicate check and the insert run in one transaction so
		// concurrent submissions cannot both slip past the check.
		err := db.Transaction(func(tx *gorm.DB) error {
			var count int64
			tx.Model(&models.RoleRequest{}).
				Where("requester_id = ? AND requested_role = ? AND status = ?",
					p.ID, req.RequestedRole, models.RequestPending).
				Count(&count)
			if count > 0 {
				return fmt.Errorf("%w: %s", apperrors.ErrDuplicateRequest, req.RequestedRole)
			}
			return tx.Create(&request).Error
		})
		if err != nil {
			writeError(c, err)
			return
		}

		logrus.WithFields(logrus.Fields{
			"request_id":     request.ID,
			"requester_id":   p.ID,
			"requested_role": req.RequestedRole,
		}).Info("role request created")

		c.JSON(http.StatusCreated, gin.H{"message": "Role request submitted", "request": request})
	}
}

// GetMyRoleRequests lists the caller's own role requests
func GetMyRoleRequests(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := middleware.GetPrincipal(c)
		var requests []models.RoleRequest
		db.Where("requester_id = ?", p.ID).Order("created_at desc").Find(&requests)
		c.JSON(http.StatusOK, gin.H{"count": len(requests), "requests": requests})
	}
}

// GetAllRoleRequests lists every role request — admin only
func GetAllRoleRequests(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var requests []models.RoleRequest
		query := db.Preload("Requester").Order("created_at desc")
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}
		query.Find(&requests)
		c.JSON(http.StatusOK, gin.H{"count": len(requests), "requests": requests})
	}
}

// ApproveRoleRequest approves a pending request and promotes the user in
// the same transaction: the request flip and the role write either both
// commit or the request stays pending. A chef promotion also assigns a
// chef id if the user has none yet.
func ApproveRoleRequest(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := middleware.GetPrincipal(c)

		var request models.RoleRequest
		if err := db.First(&request, c.Param("id")).Error; err != nil {
			writeError(c, fmt.Errorf("%w: role request", apperrors.ErrNotFound))
			return
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&models.RoleRequest{}).
				Where("id = ? AND status = ?", request.ID, models.RequestPending).
				Update("status", models.RequestApproved)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w: request %d", apperrors.ErrRequestAlreadyFinalized, request.ID)
			}

			var user models.User
			if err := tx.First(&user, request.RequesterID).Error; err != nil {
				return err
			}
			updates := map[string]any{"role": request.RequestedRole}
			if request.RequestedRole == models.RoleChef && user.ChefID == nil {
				updates["chef_id"] = uuid.NewString()
			}
			return tx.Model(&user).Updates(updates).Error
		})
		if err != nil {
			writeError(c, err)
			return
		}

		logrus.WithFields(logrus.Fields{
			"request_id":     request.ID,
			"requester_id":   request.RequesterID,
			"requested_role": request.RequestedRole,
			"approved_by":    p.ID,
		}).Info("role request approved")

		c.JSON(http.StatusOK, gin.H{"message": "Role request approved", "request_id": request.ID})
	}
}

// RejectRoleRequest rejects a pending request — terminal, immutable
func RejectRoleRequest(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := middleware.GetPrincipal(c)

		var request models.RoleRequest
		if err := db.First(&request, c.Param("id")).Error; err != nil {
			writeError(c, fmt.Errorf("%w: role request", apperrors.ErrNotFound))
			return
		}

		res := db.Model(&models.RoleRequest{}).
			Where("id = ? AND status = ?", request.ID, models.RequestPending).
			Update("status", models.RequestRejected)
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reject request"})
			return
		}
		if res.RowsAffected == 0 {
			writeError(c, fmt.Errorf("%w: request %d", apperrors.ErrRequestAlreadyFinalized, request.ID))
			return
		}

		logrus.WithFields(logrus.Fields{
			"request_id":  request.ID,
			"rejected_by": p.ID,
		}).Info("role request rejected")

		c.JSON(http.StatusOK, gin.H{"message": "Role request rejected", "request_id": request.ID})
	}
}
