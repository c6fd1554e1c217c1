package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/krishkalaria12/imagehost/logger"
	"github.com/krishkalaria12/imagehost/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var (
	ErrRecordNotFound    = errors.New("record not found")
	ErrDuplicateUsername = errors.New("username already exists")
)

// Connect opens a pooled Postgres connection and verifies it with a ping.
func Connect(dsn string, log *logger.Logger) (*gorm.DB, error) {
	db, err := Open(postgres.Open(dsn), log)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get DB object: %w", err)
	}

	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(30 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping DB: %w", err)
	}

	log.Info("Successfully connected to Postgres database")
	return db, nil
}

// Open wraps gorm.Open with logging through logrus and translated driver errors.
func Open(dialector gorm.Dialector, log *logger.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.New(log, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return db, nil
}

// Migrate creates or updates the users and images tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{}, &models.Image{})
}

func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
