package slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// slotRecord is the row layout of the slots table.
type slotRecord struct {
	Key       string `gorm:"column:slot_key;primaryKey"`
	Value     []byte `gorm:"not null"`
	UpdatedAt time.Time
}

// TableName specifies the table name for GORM.
func (slotRecord) TableName() string {
	return "slots"
}

// SQLiteBackend stores slots in a SQLite table through GORM.
type SQLiteBackend struct {
	db *gorm.DB
}

// OpenSQLite opens (or creates) the database file at path and migrates the slots table.
func OpenSQLite(path string, debug bool) (*SQLiteBackend, error) {
	logLevel := logger.Silent
	if debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying database: %w", err)
	}
	// One writer at a time; also keeps ":memory:" databases on a single connection.
	sqlDB.SetMaxOpenConns(1)

	return NewSQLiteBackend(db)
}

// NewSQLiteBackend migrates the slots table on db and returns a backend using it.
func NewSQLiteBackend(db *gorm.DB) (*SQLiteBackend, error) {
	if err := db.AutoMigrate(&slotRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &SQLiteBackend{db: db}, nil
}

// Get retrieves the value stored under key.
func (b *SQLiteBackend) Get(ctx context.Context, key string) ([]byte, error) {
	var record slotRecord
	if err := b.db.WithContext(ctx).Take(&record, "slot_key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find slot: %w", err)
	}
	return record.Value, nil
}

// Set inserts or replaces the value stored under key.
func (b *SQLiteBackend) Set(ctx context.Context, key string, value []byte) error {
	record := slotRecord{Key: key, Value: value, UpdatedAt: time.Now()}
	err := b.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slot_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("failed to save slot: %w", err)
	}
	return nil
}

// Delete removes key. Missing keys are ignored.
func (b *SQLiteBackend) Delete(ctx context.Context, key string) error {
	if err := b.db.WithContext(ctx).Delete(&slotRecord{}, "slot_key = ?", key).Error; err != nil {
		return fmt.Errorf("failed to delete slot: %w", err)
	}
	return nil
}

// Ping checks the database connection.
func (b *SQLiteBackend) Ping(ctx context.Context) error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection.
func (b *SQLiteBackend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
