package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"homechef-api/apperrors"
	"homechef-api/authz"
	"homechef-api/cache"
	"homechef-api/middleware"
	"homechef-api/models"
)

const (
	mealListCacheKey = "meals:all"
	mealCacheTTL     = 2 * time.Minute
)

// ListMeals returns the public meal catalog. The unfiltered listing is
// served from redis when available.
func ListMeals(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		search := c.Query("search")
		chefID := c.Query("chef_id")
		cacheable := search == "" && chefID == ""

		if cacheable {
			var cached []models.Meal
			if hit, err := cache.Get(c.Request.Context(), rdb, mealListCacheKey, &cached); err == nil && hit {
				c.JSON(http.StatusOK, gin.H{"count": len(cached), "meals": cached, "cached": true})
				return
			}
		}

		var meals []models.Meal
		query := db.Order("created_at desc")
		if search != "" {
			query = query.Where("name LIKE ?", "%"+search+"%")
		}
		if chefID != "" {
			query = query.Where("chef_id = ?", chefID)
		}
		query.Find(&meals)

		if cacheable {
			_ = cache.Set(c.Request.Context(), rdb, mealListCacheKey, meals, mealCacheTTL)
		}
		c.JSON(http.StatusOK, gin.H{"count": len(meals), "meals": meals})
	}
}

// GetMeal returns a single meal (public)
func GetMeal(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var meal models.Meal
		if err := db.First(&meal, c.Param("id")).Error; err != nil {
			writeError(c, fmt.Errorf("%w: meal", apperrors.ErrNotFound))
			return
		}
		c.JSON(http.StatusOK, gin.H{"meal": meal})
	}
}

type CreateMealRequest struct {
	Name        string          `json:"name" binding:"required"`
	Price       decimal.Decimal `json:"price"`
	Ingredients []string        `json:"ingredients" binding:"required,min=1"`
	ImageURL    string          `json:"image_url"`
}

// CreateMeal creates a meal owned by the calling chef. Rating always
// initializes to 0 regardless of what the client sends.
func CreateMeal(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := middleware.GetPrincipal(c)
		if err := authz.Authorize(p, authz.ActionCreateMeal, authz.Target{}); err != nil {
			writeError(c, err)
			return
		}

		var req CreateMealRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if !req.Price.IsPositive() {
			writeError(c, fmt.Errorf("%w: price must be positive", apperrors.ErrInvalidRequest))
			return
		}

		meal := models.Meal{
			ChefID:      p.ChefID,
			ChefName:    nameOf(db, p.ID),
			Name:        req.Name,
			Price:       req.Price,
			Ingredients: req.Ingredients,
			Rating:      0,
			ImageURL:    req.ImageURL,
		}
		if err := db.Create(&meal).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create meal"})
			return
		}

		_ = cache.Delete(c.Request.Context(), rdb, mealListCacheKey)
		logrus.WithFields(logrus.Fields{"meal_id": meal.ID, "chef_id": meal.ChefID}).Info("meal created")
		c.JSON(http.StatusCreated, gin.H{"message": "Meal created successfully", "meal": meal})
	}
}

// ListMyMeals returns the calling chef's own meals
func ListMyMeals(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := middleware.GetPrincipal(c)
		var meals []models.Meal
		db.Where("chef_id = ?", p.ChefID).Order("created_at desc").Find(&meals)
		c.JSON(http.StatusOK, gin.H{"count": len(meals), "meals": meals})
	}
}

type UpdateMealRequest struct {
	Name        *string          `json:"name"`
	Price       *decimal.Decimal `json:"price"`
	Ingredients []string         `json:"ingredients"`
	ImageURL    *string          `json:"image_url"`
}

// UpdateMeal mutates a meal's catalog fields. Rating is excluded: it is
// system-computed. Price edits never touch existing orders, which carry
// their own snapshot.
func UpdateMeal(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := middleware.GetPrincipal(c)

		var meal models.Meal
		if err := db.First(&meal, c.Param("id")).Error; err != nil {
			writeError(c, fmt.Errorf("%w: meal", apperrors.ErrNotFound))
			return
		}
		if err := authz.Authorize(p, authz.ActionManageMeal, authz.Target{OwnerChefID: meal.ChefID}); err != nil {
			writeError(c, err)
			return
		}

		var req UpdateMealRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		updates := map[string]any{}
		if req.Name != nil {
			updates["name"] = *req.Name
		}
		if req.Price != nil {
			if !req.Price.IsPositive() {
				writeError(c, fmt.Errorf("%w: price must be positive", apperrors.ErrInvalidRequest))
				return
			}
			updates["price"] = *req.Price
		}
		if req.Ingredients != nil {
			meal.Ingredients = req.Ingredients
			if err := db.Model(&meal).Update("ingredients", meal.Ingredients).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update meal"})
				return
			}
		}
		if req.ImageURL != nil {
			updates["image_url"] = *req.ImageURL
		}
		if len(updates) > 0 {
			if err := db.Model(&meal).Updates(updates).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update meal"})
				return
			}
		}

		_ = cache.Delete(c.Request.Context(), rdb, mealListCacheKey)
		db.First(&meal, meal.ID)
		c.JSON(http.StatusOK, gin.H{"message": "Meal updated", "meal": meal})
	}
}

// DeleteMeal removes a meal from the catalog (owner chef or admin)
func DeleteMeal(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := middleware.GetPrincipal(c)

		var meal models.Meal
		if err := db.First(&meal, c.Param("id")).Error; err != nil {
			writeError(c, fmt.Errorf("%w: meal", apperrors.ErrNotFound))
			return
		}
		if err := authz.Authorize(p, authz.ActionManageMeal, authz.Target{OwnerChefID: meal.ChefID}); err != nil {
			writeError(c, err)
			return
		}

		if err := db.Delete(&meal).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete meal"})
			return
		}
		_ = cache.Delete(c.Request.Context(), rdb, mealListCacheKey)
		logrus.WithFields(logrus.Fields{"meal_id": meal.ID, "deleted_by": p.ID}).Info("meal deleted")
		c.JSON(http.StatusOK, gin.H{"message": "Meal deleted", "meal_id": meal.ID})
	}
}

func nameOf(db *gorm.DB, userID uint) string {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logrus.WithField("user_id", userID).Warn("failed to resolve user name")
		}
		return ""
	}
	return user.Name
}
