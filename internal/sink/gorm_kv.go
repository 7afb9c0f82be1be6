package sink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/weiawesome/exa-people-search/pkg/database"
)

// KeyValueRecord is one row of the key_value_records table.
type KeyValueRecord struct {
	StoreID   string `gorm:"primaryKey;size:64"`
	Key       string `gorm:"primaryKey;size:255"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (KeyValueRecord) TableName() string {
	return "key_value_records"
}

// GormKeyValueBackend stores records in a SQL table.
type GormKeyValueBackend struct {
	db *gorm.DB
}

// NewGormKeyValueBackend opens the database and migrates the table.
func NewGormKeyValueBackend(cfg database.Config) (*GormKeyValueBackend, error) {
	db, err := database.New(&cfg)
	if err != nil {
		return nil, err
	}
	return newGormKeyValueBackend(db)
}

func newGormKeyValueBackend(db *gorm.DB) (*GormKeyValueBackend, error) {
	if err := database.AutoMigrate(db, &KeyValueRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate key_value_records: %w", err)
	}
	return &GormKeyValueBackend{db: db}, nil
}

func (b *GormKeyValueBackend) Store(storeID string) KeyValueStore {
	return &gormKV{db: b.db, storeID: storeID}
}

func (b *GormKeyValueBackend) Close() error {
	return database.Close(b.db)
}

type gormKV struct {
	db      *gorm.DB
	storeID string
}

func (s *gormKV) SetValue(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	rec := KeyValueRecord{StoreID: s.storeID, Key: key, Value: string(data)}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "store_id"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("failed to upsert record %s: %w", key, err)
	}
	return nil
}

func (s *gormKV) GetValue(ctx context.Context, key string) (json.RawMessage, error) {
	var rec KeyValueRecord
	err := s.db.WithContext(ctx).
		Where(&KeyValueRecord{StoreID: s.storeID, Key: key}).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get record %s: %w", key, err)
	}
	return json.RawMessage(rec.Value), nil
}
