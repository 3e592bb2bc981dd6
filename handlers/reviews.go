package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"homechef-api/apperrors"
	"homechef-api/authz"
	"homechef-api/middleware"
	"homechef-api/models"
)

type CreateReviewRequest struct {
	MealID  uint   `json:"meal_id" binding:"required"`
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

// CreateReview posts a review for a meal (fraud-gated)
func CreateReview(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := middleware.GetPrincipal(c)
		if err := authz.Authorize(p, authz.ActionCreateReview, authz.Target{}); err != nil {
			writeError(c, err)
			return
		}

		var req CreateReviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		var meal models.Meal
		if err := db.First(&meal, req.MealID).Error; err != nil {
			writeError(c, fmt.Errorf("%w: meal", apperrors.ErrNotFound))
			return
		}

		review := models.Review{
			MealID:     req.MealID,
			CustomerID: p.ID,
			Rating:     req.Rating,
			Comment:    req.Comment,
		}
		if err := db.Create(&review).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create review"})
			return
		}
		recalcMealRating(db, req.MealID)
		c.JSON(http.StatusCreated, gin.H{"message": "Review posted", "review": review})
	}
}

// GetMealReviews lists all reviews for a meal (public)
func GetMealReviews(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var reviews []models.Review
		db.Where("meal_id = ?", c.Param("id")).Order("created_at desc").Find(&reviews)
		c.JSON(http.StatusOK, gin.H{"count": len(reviews), "reviews": reviews})
	}
}

// GetMyReviews lists the caller's own reviews
func GetMyReviews(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := middleware.GetPrincipal(c)
		var reviews []models.Review
		db.Where("customer_id = ?", p.ID).Order("created_at desc").Find(&reviews)
		c.JSON(http.StatusOK, gin.H{"count": len(reviews), "reviews": reviews})
	}
}

type UpdateReviewRequest struct {
	Rating  *int    `json:"rating" binding:"omitempty,min=1,max=5"`
	Comment *string `json:"comment"`
}

// UpdateReview edits the caller's own review
func UpdateReview(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := middleware.GetPrincipal(c)

		var review models.Review
		if err := db.First(&review, c.Param("id")).Error; err != nil {
			writeError(c, fmt.Errorf("%w: review", apperrors.ErrNotFound))
			return
		}
		if err := authz.Authorize(p, authz.ActionManageReview, authz.Target{OwnerCustomerID: review.CustomerID}); err != nil {
			writeError(c, err)
			return
		}

		var req UpdateReviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		updates := map[string]any{}
		if req.Rating != nil {
			updates["rating"] = *req.Rating
		}
		if req.Comment != nil {
			updates["comment"] = *req.Comment
		}
		if len(updates) > 0 {
			if err := db.Model(&review).Updates(updates).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update review"})
				return
			}
			recalcMealRating(db, review.MealID)
		}
		db.First(&review, review.ID)
		c.JSON(http.StatusOK, gin.H{"message": "Review updated", "review": review})
	}
}

// DeleteReview removes a review (owner or admin)
func DeleteReview(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := middleware.GetPrincipal(c)

		var review models.Review
		if err := db.First(&review, c.Param("id")).Error; err != nil {
			writeError(c, fmt.Errorf("%w: review", apperrors.ErrNotFound))
			return
		}
		if err := authz.Authorize(p, authz.ActionManageReview, authz.Target{OwnerCustomerID: review.CustomerID}); err != nil {
			writeError(c, err)
			return
		}
		if err := db.Delete(&review).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete review"})
			return
		}
		recalcMealRating(db, review.MealID)
		c.JSON(http.StatusOK, gin.H{"message": "Review deleted", "review_id": review.ID})
	}
}

// recalcMealRating recomputes a meal's system-managed average rating
func recalcMealRating(db *gorm.DB, mealID uint) {
	var avg *float64
	db.Model(&models.Review{}).Where("meal_id = ?", mealID).
		Select("AVG(rating)").Scan(&avg)
	rating := 0.0
	if avg != nil {
		rating = *avg
	}
	db.Model(&models.Meal{}).Where("id = ?", mealID).Update("rating", rating)
}
