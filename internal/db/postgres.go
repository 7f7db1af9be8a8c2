package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"linkfly/internal/config"
	"linkfly/models"
)

// Connect opens the postgres connection and migrates the schema.
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	database, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(&models.User{}, &models.Link{}, &models.ClickEvent{}); err != nil {
		return nil, err
	}
	return database, nil
}
