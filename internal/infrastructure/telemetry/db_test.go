package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tradelog/backend/internal/infrastructure/config"
)

type instrumentedParty struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

func newInstrumentedDB(t *testing.T, cfg config.TelemetryConfig) (*gorm.DB, func() map[string]metricdata.Metrics) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	meter, reader := newTestMeter(t)
	in, err := InstrumentDB(db, cfg, meter, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = in.Close() })

	require.NoError(t, db.AutoMigrate(&instrumentedParty{}))
	return db, func() map[string]metricdata.Metrics { return collect(t, reader) }
}

func TestInstrumentDB_CountsStatements(t *testing.T) {
	db, snapshot := newInstrumentedDB(t, config.TelemetryConfig{DBSlowQueryThresh: time.Hour})
	ctx := context.Background()

	require.NoError(t, db.WithContext(ctx).Create(&instrumentedParty{Name: "Gulf Freight"}).Error)
	var got instrumentedParty
	require.NoError(t, db.WithContext(ctx).First(&got).Error)
	require.NoError(t, db.WithContext(ctx).Model(&got).Update("name", "Gulf Freight Co").Error)

	metrics := snapshot()
	assert.Equal(t, int64(1), sumInt64(t, metrics["db_query_total"], "db.operation", "create"))
	assert.Equal(t, int64(1), sumInt64(t, metrics["db_query_total"], "db.operation", "query"))
	assert.Equal(t, int64(1), sumInt64(t, metrics["db_query_total"], "db.operation", "update"))
	assert.NotContains(t, metrics, "db_slow_query_total")

	hist, ok := metrics["db_query_duration_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	assert.NotEmpty(t, hist.DataPoints)
}

func TestInstrumentDB_SlowQueries(t *testing.T) {
	db, snapshot := newInstrumentedDB(t, config.TelemetryConfig{DBSlowQueryThresh: time.Nanosecond})

	require.NoError(t, db.Create(&instrumentedParty{Name: "Customs Broker"}).Error)

	metrics := snapshot()
	assert.GreaterOrEqual(t, sumInt64(t, metrics["db_slow_query_total"], "db.operation", "create"), int64(1))
}

func TestInstrumentDB_ObservesPool(t *testing.T) {
	_, snapshot := newInstrumentedDB(t, config.TelemetryConfig{})

	metrics := snapshot()
	gauge, ok := metrics["db_pool_connections_max"].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, int64(1), gauge.DataPoints[0].Value)

	states, ok := metrics["db_pool_connections"].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	assert.Len(t, states.DataPoints, 2)
}

func TestInstrumentDB_WithTracing(t *testing.T) {
	recorder := installRecorder(t)
	db, _ := newInstrumentedDB(t, config.TelemetryConfig{DBTraceEnabled: true})

	ctx, span := StartSpan(context.Background(), "test.parent")
	require.NoError(t, db.WithContext(ctx).Create(&instrumentedParty{Name: "Clearing Agent"}).Error)
	span.End()

	var names []string
	for _, s := range recorder.Ended() {
		names = append(names, s.Name())
	}
	assert.Contains(t, names, "test.parent")
	assert.Greater(t, len(names), 1, "otelgorm should add a statement span")
}
