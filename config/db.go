package config

import (
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"homechef-api/models"
)

// InitDB opens the sqlite database and migrates all models.
func InitDB(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate runs the schema migration for every model the engine owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Meal{},
		&models.Order{},
		&models.OrderStatusHistory{},
		&models.RoleRequest{},
		&models.Review{},
		&models.Favorite{},
	)
}
