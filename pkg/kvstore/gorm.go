package kvstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KVEntry is the relational row behind GormStore.
type KVEntry struct {
	Key       string    `gorm:"column:entry_key;primaryKey;size:512"`
	Value     string    `gorm:"column:entry_value;type:text;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName provides the explicit table binding for GORM.
func (KVEntry) TableName() string {
	return "kv_entries"
}

// GormStore implements Store on top of a GORM connection (PostgreSQL in production).
type GormStore struct {
	db *gorm.DB
}

// NewGormStore migrates the kv_entries table and returns the store.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if db == nil {
		return nil, errors.New("kvstore gorm: db is nil")
	}
	if err := db.AutoMigrate(&KVEntry{}); err != nil {
		return nil, fmt.Errorf("kvstore gorm: auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) Get(ctx context.Context, key string) (string, bool, error) {
	var entry KVEntry
	if err := s.db.WithContext(ctx).Where("entry_key = ?", key).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, unavailable("gorm get", err)
	}
	return entry.Value, true, nil
}

func (s *GormStore) Set(ctx context.Context, key, value string) error {
	entry := KVEntry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"entry_value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return unavailable("gorm set", err)
	}
	return nil
}

func (s *GormStore) Remove(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where("entry_key = ?", key).Delete(&KVEntry{}).Error; err != nil {
		return unavailable("gorm remove", err)
	}
	return nil
}

func (s *GormStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	keys := make([]string, 0)
	err := s.db.WithContext(ctx).Model(&KVEntry{}).
		Where("entry_key LIKE ?", escapeLike(prefix)+"%").
		Order("entry_key ASC").
		Pluck("entry_key", &keys).Error
	if err != nil {
		return nil, unavailable("gorm keys", err)
	}
	return keys, nil
}

// Close closes the pooled SQL connection behind the GORM handle.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike escapes LIKE wildcards; PostgreSQL uses backslash as the default escape.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
