package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/anonto42/vaxtop/backend/pkg/kvstore"
	"github.com/anonto42/vaxtop/backend/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Sentinel errors returned by the repositories.
var (
	ErrNotFound                = errors.New("record not found")
	ErrCorruptRecord           = errors.New("corrupt record")
	ErrAlreadyExists           = errors.New("record already exists")
	ErrUnknownField            = errors.New("unknown field")
	ErrInvalidFieldValue       = errors.New("invalid field value")
	ErrInvalidNotificationType = errors.New("invalid notification type")
)

// Option configures a repository.
type Option func(*base)

// WithLogger sets the logger used for degraded reads and writes.
func WithLogger(l *zap.Logger) Option {
	return func(b *base) { b.logger = logger.OrNop(l) }
}

// WithKeys sets the storage key layout.
func WithKeys(k Keys) Option {
	return func(b *base) { b.keys = k }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(b *base) { b.now = now }
}

// base holds what every key-value repository shares.
type base struct {
	store  kvstore.Store
	keys   Keys
	logger *zap.Logger
	now    func() time.Time
}

func newBase(store kvstore.Store, opts []Option) base {
	b := base{
		store:  store,
		keys:   NewKeys(""),
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// load decodes the JSON stored under key into v. A missing key reports
// found == false; undecodable content reports ErrCorruptRecord.
func (b *base) load(ctx context.Context, key string, v any) (bool, error) {
	raw, ok, err := b.store.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrCorruptRecord, key, err)
	}
	return true, nil
}

// loadLenient is load for read-modify-write paths: a corrupt record is
// logged, v is reset and the key is reported as absent.
func (b *base) loadLenient(ctx context.Context, key string, v any) (bool, error) {
	found, err := b.load(ctx, key, v)
	if errors.Is(err, ErrCorruptRecord) {
		b.logger.Warn("discarding corrupt record", zap.String("key", key), zap.Error(err))
		reflect.ValueOf(v).Elem().SetZero()
		return false, nil
	}
	return found, err
}

func (b *base) save(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := b.store.Set(ctx, key, string(raw)); err != nil {
		b.logger.Warn("storage write failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

func (b *base) remove(ctx context.Context, key string) error {
	if err := b.store.Remove(ctx, key); err != nil {
		b.logger.Warn("storage remove failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

// newID builds identifiers shaped like "<prefix>_<unixMillis>_<random>".
func newID(prefix string, now time.Time, randomLen int) string {
	return fmt.Sprintf("%s_%d_%s", prefix, now.UnixMilli(), randomString(randomLen))
}

func randomString(n int) string {
	s := strings.ReplaceAll(uuid.NewString(), "-", "")
	if n > len(s) {
		n = len(s)
	}
	return s[:n]
}
