package persistence

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"vidmarket/infrastructure/configuration"
	"vidmarket/infrastructure/logger"
)

// NewVideoDB opens the video-metadata database (MySQL via gorm).
func NewVideoDB() (*gorm.DB, error) {
	cfg := configuration.C.Database.MySql
	dsn := fmt.Sprintf(
		"%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name,
	)
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while opening MySQL connection")
		return nil, err
	}
	return db, nil
}
