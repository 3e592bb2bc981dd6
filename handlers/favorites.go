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

type AddFavoriteRequest struct {
	MealID uint `json:"meal_id" binding:"required"`
}

// AddFavorite bookmarks a meal for the caller (fraud-gated)
func AddFavorite(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := middleware.GetPrincipal(c)
		if err := authz.Authorize(p, authz.ActionCreateFavorite, authz.Target{}); err != nil {
			writeError(c, err)
			return
		}

		var req AddFavoriteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		var meal models.Meal
		if err := db.First(&meal, req.MealID).Error; err != nil {
			writeError(c, fmt.Errorf("%w: meal", apperrors.ErrNotFound))
			return
		}

		var existing models.Favorite
		if err := db.Where("customer_id = ? AND meal_id = ?", p.ID, req.MealID).First(&existing).Error; err == nil {
			writeError(c, fmt.Errorf("%w: meal already in favorites", apperrors.ErrConflict))
			return
		}

		favorite := models.Favorite{CustomerID: p.ID, MealID: req.MealID}
		if err := db.Create(&favorite).Error; err != nil {
			// Unique index backs up the check under concurrent inserts.
			writeError(c, fmt.Errorf("%w: meal already in favorites", apperrors.ErrConflict))
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Added to favorites", "favorite": favorite})
	}
}

// GetMyFavorites lists the caller's favorite meals
func GetMyFavorites(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := middleware.GetPrincipal(c)
		var favorites []models.Favorite
		db.Preload("Meal").Where("customer_id = ?", p.ID).Order("created_at desc").Find(&favorites)
		c.JSON(http.StatusOK, gin.H{"count": len(favorites), "favorites": favorites})
	}
}

// RemoveFavorite deletes one of the caller's own favorites
func RemoveFavorite(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := middleware.GetPrincipal(c)

		var favorite models.Favorite
		if err := db.First(&favorite, c.Param("id")).Error; err != nil {
			writeError(c, fmt.Errorf("%w: favorite", apperrors.ErrNotFound))
			return
		}
		if favorite.CustomerID != p.ID {
			writeError(c, fmt.Errorf("%w: favorite", apperrors.ErrNotOwner))
			return
		}
		if err := db.Delete(&favorite).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove favorite"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Removed from favorites", "favorite_id": favorite.ID})
	}
}
