package persistence

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"vidmarket/infrastructure/configuration"
	"vidmarket/infrastructure/logger"
)

// NewPostgreSQLDB opens the ledger database (purchases, sellers, users).
func NewPostgreSQLDB() (*sql.DB, error) {
	cfg := configuration.C.Database.Psql
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name,
	)
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while opening PostgreSQL connection")
		return nil, err
	}
	if err := db.Ping(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while pinging PostgreSQL")
		return nil, err
	}
	return db, nil
}
