package database

import (
	"context"
	"fmt"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kbukum/insane/logger"
)

// CreateOptionsEnv overrides the WITH clause used by Create.
const CreateOptionsEnv = "INSANE_POSTGRES_DB_OPTIONS"

const defaultCreateOptions = "ENCODING='UTF8'"

// CreateStatement builds the CREATE DATABASE statement for the database named
// in uri.
func CreateStatement(uri string) (string, error) {
	dialect, err := ParseDialect(uri)
	if err != nil {
		return "", err
	}
	if dialect != Postgres {
		return "", fmt.Errorf("only postgres databases can be created, got %s", dialect)
	}
	name, err := DatabaseName(uri)
	if err != nil {
		return "", err
	}
	options := os.Getenv(CreateOptionsEnv)
	if options == "" {
		options = defaultCreateOptions
	}
	return fmt.Sprintf("CREATE DATABASE %s WITH %s", name, options), nil
}

// Create creates the database named in uri by connecting to the postgres
// maintenance database on the same server.
func Create(ctx context.Context, uri string, log *logger.Logger) error {
	stmt, err := CreateStatement(uri)
	if err != nil {
		return err
	}
	maintenance, err := MaintenanceURI(uri)
	if err != nil {
		return err
	}

	db, err := gorm.Open(postgres.Open(maintenance), &gorm.Config{Logger: gormlogger.Discard})
	if err != nil {
		return fmt.Errorf("connect to maintenance database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if log != nil {
		log.Info("creating postgres database", logger.Fields("query", stmt))
	}
	if err := db.WithContext(ctx).Exec(stmt).Error; err != nil {
		return fmt.Errorf("create database: %w", err)
	}
	return nil
}
