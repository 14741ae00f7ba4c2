package database

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"pi-monitor/internal/incident"
	"pi-monitor/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database is the delivery journal.
type Database struct {
	DB    *gorm.DB
	mutex sync.Mutex
}

func InitializeDatabase(path string) (*Database, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return open(path)
}

// InitializeTestDatabase opens a private in-memory journal.
func InitializeTestDatabase() (*Database, error) {
	return open(":memory:")
}

func open(dsn string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}

	// A single connection avoids SQLITE_BUSY on writes and keeps an
	// in-memory database alive for the lifetime of the handle.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&models.Delivery{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database schema: %w", err)
	}

	return &Database{DB: db}, nil
}

func (db *Database) RecordDelivery(delivery *models.Delivery) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	return db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(delivery).Error; err != nil {
			return fmt.Errorf("failed to save delivery: %w", err)
		}
		return nil
	})
}

// RecentDeliveries returns up to limit deliveries, newest first. An empty
// kind matches every kind.
func (db *Database) RecentDeliveries(kind incident.Kind, limit int) ([]models.Delivery, error) {
	if limit <= 0 {
		limit = 100
	}

	query := db.DB.Order("created_at DESC").Limit(limit)
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}

	var deliveries []models.Delivery
	if err := query.Find(&deliveries).Error; err != nil {
		return nil, fmt.Errorf("failed to query deliveries: %w", err)
	}

	return deliveries, nil
}

// PruneDeliveries removes journal rows older than the cutoff.
func (db *Database) PruneDeliveries(before time.Time) (int64, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	result := db.DB.Where("created_at < ?", before).Delete(&models.Delivery{})
	return result.RowsAffected, result.Error
}

func (db *Database) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
