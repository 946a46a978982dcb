package config

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/vaxtop/backend/pkg/kvstore"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// OpenStorage opens the key-value backend selected by cfg.StorageDriver.
func OpenStorage(ctx context.Context, cfg *Config, log *zap.Logger) (kvstore.Store, error) {
	switch cfg.StorageDriver {
	case DriverMemory:
		log.Warn("using in-memory storage, data is lost on exit")
		return kvstore.NewMemoryStore(), nil

	case DriverSQLite:
		store, err := kvstore.NewSQLiteStore(kvstore.SQLiteStoreConfig{DSN: cfg.SQLitePath})
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite: %w", err)
		}
		log.Info("storage opened", zap.String("driver", DriverSQLite), zap.String("path", cfg.SQLitePath))
		return store, nil

	case DriverPostgres:
		if cfg.PostgresConnStr == "" {
			return nil, fmt.Errorf("POSTGRES_CONN_STR environment variable not set")
		}
		db, err := initPostgres(cfg.PostgresConnStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		store, err := kvstore.NewGormStore(db)
		if err != nil {
			return nil, err
		}
		log.Info("storage opened", zap.String("driver", DriverPostgres))
		return store, nil

	case DriverMongo:
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("MONGO_URI environment variable not set")
		}
		client, err := initMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		log.Info("storage opened", zap.String("driver", DriverMongo), zap.String("database", cfg.MongoDatabase))
		return kvstore.NewMongoStore(client, client.Database(cfg.MongoDatabase)), nil
	}
	return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
}

// initPostgres initializes the PostgreSQL database connection using GORM
func initPostgres(connStr string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(connStr), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}

	// Ping the database to verify connection
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err = sqlDB.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// initMongo initializes the MongoDB connection
func initMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(uri)
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	// Ping the primary to verify connection
	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}
