package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tradelog/backend/internal/infrastructure/config"
	"github.com/tradelog/backend/internal/infrastructure/logger"
)

// Database owns the GORM handle and the pool beneath it
type Database struct {
	DB    *gorm.DB
	sqlDB *sql.DB
}

type databaseOptions struct {
	gorm       *gorm.Config
	dialector  func(dsn string) gorm.Dialector
	retries    int
	retryDelay time.Duration
}

// DatabaseOption customizes how the connection is opened
type DatabaseOption func(*databaseOptions)

// WithZapLogger routes GORM logs through zap at the given level
func WithZapLogger(l *zap.Logger, level gormlogger.LogLevel, opts ...logger.GormLoggerOption) DatabaseOption {
	return func(o *databaseOptions) {
		o.gorm.Logger = logger.NewGormLogger(l, level, opts...)
	}
}

// WithConnectRetries retries the initial ping, for compose setups where the
// service can start before Postgres accepts connections
func WithConnectRetries(retries int, delay time.Duration) DatabaseOption {
	return func(o *databaseOptions) {
		o.retries = retries
		o.retryDelay = delay
	}
}

// NewDatabase opens the pool described by cfg and waits until it answers a ping
func NewDatabase(ctx context.Context, cfg *config.DatabaseConfig, opts ...DatabaseOption) (*Database, error) {
	o := &databaseOptions{
		gorm: &gorm.Config{
			Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
			SkipDefaultTransaction: true,
			PrepareStmt:            true,
		},
		dialector:  postgres.Open,
		retryDelay: time.Second,
	}
	for _, opt := range opts {
		opt(o)
	}

	db, err := gorm.Open(o.dialector(cfg.DSN()), o.gorm)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	d := &Database{DB: db, sqlDB: sqlDB}
	if err := d.waitReady(ctx, o.retries, o.retryDelay); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return d, nil
}

func (d *Database) waitReady(ctx context.Context, retries int, delay time.Duration) error {
	var err error
	for attempt := 0; ; attempt++ {
		if err = d.Ping(ctx); err == nil {
			return nil
		}
		if attempt >= retries {
			return fmt.Errorf("ping database after %d attempts: %w", attempt+1, err)
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("ping database: %w", ctx.Err())
		case <-time.After(delay):
		}
	}
}

// Ping checks the pool can reach the server. Used by the health endpoint.
func (d *Database) Ping(ctx context.Context) error {
	return d.sqlDB.PingContext(ctx)
}

func (d *Database) Close() error {
	return d.sqlDB.Close()
}
