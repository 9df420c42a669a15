package localstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/spec-kit/device-cost-service/internal/persistence"
)

// MirrorRecord is one mirrored key in the secondary store.
type MirrorRecord struct {
	Key       string `gorm:"column:id;primaryKey"`
	Data      []byte `gorm:"column:data"`
	UpdatedAt time.Time
}

// TableName keeps the table name stable across struct renames.
func (MirrorRecord) TableName() string { return "mirror_entries" }

// SQLiteSecondary is a Secondary on a gorm SQLite database.
//
// The connection is opened and the table created on first use; a failed
// attempt is retried by the next Put.
type SQLiteSecondary struct {
	dsn    string
	logger *zap.Logger

	mu sync.Mutex
	db *gorm.DB
}

// NewSQLiteSecondary returns a secondary store for dsn. Nothing is opened yet.
func NewSQLiteSecondary(dsn string, logger *zap.Logger) *SQLiteSecondary {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLiteSecondary{dsn: dsn, logger: logger}
}

func (s *SQLiteSecondary) open(ctx context.Context) (*gorm.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return s.db, nil
	}
	db, err := persistence.NewSQLite(s.dsn, s.logger)
	if err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).AutoMigrate(&MirrorRecord{}); err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
		return nil, fmt.Errorf("create mirror table: %w", err)
	}
	s.db = db
	return db, nil
}

// Put upserts data under key inside a read-write transaction.
func (s *SQLiteSecondary) Put(ctx context.Context, key string, data []byte) error {
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec := MirrorRecord{Key: key, Data: data, UpdatedAt: time.Now().UTC()}
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rec).Error
	})
}

// Get returns the mirrored bytes for key. Used for diagnostics only.
func (s *SQLiteSecondary) Get(ctx context.Context, key string) ([]byte, error) {
	db, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	var rec MirrorRecord
	if err := db.WithContext(ctx).First(&rec, "id = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMiss
		}
		return nil, err
	}
	return rec.Data, nil
}

// Close releases the connection if one was opened.
func (s *SQLiteSecondary) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	s.db = nil
	return sqlDB.Close()
}
