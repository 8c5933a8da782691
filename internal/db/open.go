package db

import (
	"gorm.io/gorm"

	"dtbank/internal/config"
)

// Open connects to the datastore selected by cfg.DBDriver.
func Open(cfg *config.Config) (*gorm.DB, error) {
	if cfg.DBDriver == config.DriverSQLite {
		return NewSQLite(cfg.SQLitePath)
	}
	return NewMySQL(cfg.MySQLDSN, PoolOptions{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
}
