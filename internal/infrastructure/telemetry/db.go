package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tradelog/backend/internal/infrastructure/config"
)

const (
	queryStartKey       = "telemetry:query_start"
	defaultSlowQuery    = 200 * time.Millisecond
	callbackNamePrefix  = "telemetry"
	defaultDBSystemName = "postgresql"
)

// DBInstrumentation records per-statement spans, query counts, latency and
// connection pool usage for a GORM database.
type DBInstrumentation struct {
	slowThreshold time.Duration
	logger        *zap.Logger

	queryTotal     *Counter
	slowQueryTotal *Counter
	queryDuration  *Histogram
	registration   metric.Registration
}

// callbackRegistrar matches gorm's Before/After callback builders
type callbackRegistrar interface {
	Register(name string, fn func(*gorm.DB)) error
}

// InstrumentDB installs otelgorm (when db tracing is enabled) and the
// metric callbacks on db. The returned value must be closed on shutdown to
// stop observing the pool.
func InstrumentDB(db *gorm.DB, cfg config.TelemetryConfig, meter metric.Meter, logger *zap.Logger) (*DBInstrumentation, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	thresh := cfg.DBSlowQueryThresh
	if thresh <= 0 {
		thresh = defaultSlowQuery
	}
	in := &DBInstrumentation{slowThreshold: thresh, logger: logger}

	if cfg.DBTraceEnabled {
		opts := []otelgorm.Option{otelgorm.WithDBName(defaultDBSystemName)}
		if !cfg.DBLogFullSQL {
			opts = append(opts, otelgorm.WithoutQueryVariables())
		}
		if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
			return nil, fmt.Errorf("register otelgorm: %w", err)
		}
	}

	var err error
	if in.queryTotal, err = NewCounter(meter, "db_query_total", "Database statements by operation and table", "{query}"); err != nil {
		return nil, err
	}
	if in.slowQueryTotal, err = NewCounter(meter, "db_slow_query_total", "Database statements slower than the configured threshold", "{query}"); err != nil {
		return nil, err
	}
	if in.queryDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "db_query_duration_seconds",
		Description: "Database statement latency",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	}); err != nil {
		return nil, err
	}

	if err := in.registerCallbacks(db); err != nil {
		return nil, err
	}
	if err := in.observePool(db, meter); err != nil {
		return nil, err
	}

	logger.Info("Database instrumentation enabled",
		zap.Bool("tracing", cfg.DBTraceEnabled),
		zap.Duration("slow_query_threshold", thresh),
	)
	return in, nil
}

func (in *DBInstrumentation) registerCallbacks(db *gorm.DB) error {
	cb := db.Callback()
	ops := []struct {
		name          string
		before, after callbackRegistrar
	}{
		{"create", cb.Create().Before("gorm:create"), cb.Create().After("gorm:create")},
		{"query", cb.Query().Before("gorm:query"), cb.Query().After("gorm:query")},
		{"update", cb.Update().Before("gorm:update"), cb.Update().After("gorm:update")},
		{"delete", cb.Delete().Before("gorm:delete"), cb.Delete().After("gorm:delete")},
		{"row", cb.Row().Before("gorm:row"), cb.Row().After("gorm:row")},
		{"raw", cb.Raw().Before("gorm:raw"), cb.Raw().After("gorm:raw")},
	}
	for _, op := range ops {
		if err := op.before.Register(callbackNamePrefix+":before_"+op.name, in.before); err != nil {
			return fmt.Errorf("register %s callback: %w", op.name, err)
		}
		if err := op.after.Register(callbackNamePrefix+":after_"+op.name, in.after(op.name)); err != nil {
			return fmt.Errorf("register %s callback: %w", op.name, err)
		}
	}
	return nil
}

func (in *DBInstrumentation) before(db *gorm.DB) {
	db.InstanceSet(queryStartKey, time.Now())
}

func (in *DBInstrumentation) after(operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		v, ok := db.InstanceGet(queryStartKey)
		if !ok {
			return
		}
		start, ok := v.(time.Time)
		if !ok {
			return
		}
		elapsed := time.Since(start)
		ctx := db.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}

		attrs := []attribute.KeyValue{AttrDBOperation.String(operation), AttrDBTable.String(db.Statement.Table)}
		in.queryTotal.Inc(ctx, attrs...)
		in.queryDuration.RecordDuration(ctx, elapsed, attrs...)

		span := trace.SpanFromContext(ctx)
		if span.IsRecording() {
			span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
			if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
				span.RecordError(db.Error)
				span.SetStatus(codes.Error, db.Error.Error())
			}
		}

		if elapsed > in.slowThreshold {
			in.slowQueryTotal.Inc(ctx, attrs...)
			if span.IsRecording() {
				span.AddEvent("slow_query", trace.WithAttributes(
					attribute.Int64("duration_ms", elapsed.Milliseconds()),
					attribute.Int64("threshold_ms", in.slowThreshold.Milliseconds()),
				))
			}
		}
	}
}

// observePool publishes sql.DBStats as observable gauges on every collection
func (in *DBInstrumentation) observePool(db *gorm.DB, meter metric.Meter) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}

	connections, err := meter.Int64ObservableGauge("db_pool_connections",
		metric.WithDescription("Connections in the pool by state"),
		metric.WithUnit("{connection}"))
	if err != nil {
		return err
	}
	maxOpen, err := meter.Int64ObservableGauge("db_pool_connections_max",
		metric.WithDescription("Maximum open connections allowed"),
		metric.WithUnit("{connection}"))
	if err != nil {
		return err
	}
	waits, err := meter.Int64ObservableCounter("db_pool_wait_total",
		metric.WithDescription("Connections waited for because the pool was exhausted"),
		metric.WithUnit("{wait}"))
	if err != nil {
		return err
	}

	in.registration, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		s := sqlDB.Stats()
		o.ObserveInt64(connections, int64(s.InUse), metric.WithAttributes(AttrDBState.String("in_use")))
		o.ObserveInt64(connections, int64(s.Idle), metric.WithAttributes(AttrDBState.String("idle")))
		o.ObserveInt64(maxOpen, int64(s.MaxOpenConnections))
		o.ObserveInt64(waits, s.WaitCount)
		return nil
	}, connections, maxOpen, waits)
	return err
}

// Close stops observing the connection pool
func (in *DBInstrumentation) Close() error {
	if in.registration == nil {
		return nil
	}
	return in.registration.Unregister()
}
