package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Lamb-Project/lamb-sub000/internal/model"
	"github.com/Lamb-Project/lamb-sub000/pkg/config"
)

var db *gorm.DB

// InitDB opens the PostgreSQL connection and migrates the schema.
func InitDB(cfg *config.Config) error {
	logLevel := cfg.DB.LogLevel
	if logLevel == 0 {
		logLevel = logger.Warn
	}

	// PreferSimpleProtocol avoids "prepared statement already exists" errors
	// behind connection poolers.
	pgConfig := postgres.Config{
		DSN:                  cfg.DB.GetDSN(),
		PreferSimpleProtocol: true,
	}

	var err error
	db, err = gorm.Open(postgres.New(pgConfig), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get database handle: %w", err)
	}

	if cfg.DB.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	}
	if cfg.DB.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	}
	if cfg.DB.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)
	}

	return AutoMigrate(db)
}

// AutoMigrate creates or updates the tables for every platform model.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Organization{},
		&model.OrganizationRole{},
		&model.Account{},
		&model.Assistant{},
		&model.PromptTemplate{},
		&model.KnowledgeBaseEntry{},
		&model.UsageLogEntry{},
	)
}

// GetDB returns the database instance.
func GetDB() *gorm.DB {
	return db
}
