package db

import (
	"context"
	"fmt"
	"time"

	"github.com/civicline/backend/internal/config"
	"github.com/civicline/backend/internal/logger"
	"github.com/civicline/backend/internal/repository"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ConnectPostgres opens the SQL store and installs the tracing plugin
func ConnectPostgres(cfg config.StoreConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.URL), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Error),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Use(otelgorm.NewPlugin()); err != nil {
		return nil, fmt.Errorf("failed to install tracing plugin: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

// ConnectMongo opens the document store and verifies it answers
func ConnectMongo(ctx context.Context, cfg config.StoreConfig) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URL))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	return client, nil
}

// Open connects to the configured store and returns its repository with a
// close function. The SQL schema is migrated on the way.
func Open(ctx context.Context, cfg config.StoreConfig) (repository.IncidentRepository, func() error, error) {
	switch cfg.Driver {
	case config.StoreDriverMongo:
		client, err := ConnectMongo(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Connected to mongo", map[string]interface{}{"database": cfg.Database})
		closeFn := func() error { return client.Disconnect(context.Background()) }
		return repository.NewMongoRepository(client, cfg.Database), closeFn, nil

	case config.StoreDriverPostgres, "":
		gdb, err := ConnectPostgres(cfg)
		if err != nil {
			return nil, nil, err
		}
		repo := repository.NewGormRepository(gdb)
		if err := repo.AutoMigrate(); err != nil {
			return nil, nil, err
		}
		logger.Info("Connected to postgres and migrated incidents table", nil)
		closeFn := func() error {
			sqlDB, err := gdb.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		}
		return repo, closeFn, nil

	default:
		return nil, nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}
}
