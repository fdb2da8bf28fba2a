package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// kvRecord is the single table behind the GORM-backed store. The composite
// primary key (kind, key) gives one row per entity.
type kvRecord struct {
	Kind      string `gorm:"primaryKey;size:64"`
	Key       string `gorm:"primaryKey;size:128"`
	Value     []byte `gorm:"type:bytes"`
	UpdatedAt time.Time
}

func (kvRecord) TableName() string {
	return "kv_records"
}

// GormStore backs the Store contract with a relational database through
// GORM. SQLite serves single-node deployments, PostgreSQL shared ones.
type GormStore struct {
	db *gorm.DB
}

// NewSQLiteStore opens (or creates) a SQLite-backed store at path
func NewSQLiteStore(path string) (*GormStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	return newGormStore(db)
}

// NewPostgresStore connects to PostgreSQL with the given DSN
func NewPostgresStore(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return newGormStore(db)
}

func newGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&kvRecord{}); err != nil {
		return nil, fmt.Errorf("migrate kv table: %w", err)
	}
	return &GormStore{db: db}, nil
}

// Get returns the value for kind/key, or ErrKeyNotFound
func (s *GormStore) Get(ctx context.Context, kind, key string) ([]byte, error) {
	var rec kvRecord
	err := s.db.WithContext(ctx).
		Where("kind = ? AND key = ?", kind, key).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("kv get %s/%s: %w", kind, key, err)
	}
	return rec.Value, nil
}

// Set writes the value for kind/key, creating or overwriting
func (s *GormStore) Set(ctx context.Context, kind, key string, value []byte) error {
	rec := kvRecord{Kind: kind, Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).Save(&rec).Error
	if err != nil {
		return fmt.Errorf("kv set %s/%s: %w", kind, key, err)
	}
	return nil
}

// Delete removes kind/key
func (s *GormStore) Delete(ctx context.Context, kind, key string) error {
	err := s.db.WithContext(ctx).
		Where("kind = ? AND key = ?", kind, key).
		Delete(&kvRecord{}).Error
	if err != nil {
		return fmt.Errorf("kv delete %s/%s: %w", kind, key, err)
	}
	return nil
}

// List returns every record under kind
func (s *GormStore) List(ctx context.Context, kind string) ([]Record, error) {
	var rows []kvRecord
	err := s.db.WithContext(ctx).
		Where("kind = ?", kind).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("kv list %s: %w", kind, err)
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, Record{Key: row.Key, Value: row.Value})
	}
	return records, nil
}

// Close closes the underlying database connection
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var _ Store = (*GormStore)(nil)
