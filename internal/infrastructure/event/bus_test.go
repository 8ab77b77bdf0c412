package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/tradelog/backend/internal/domain/landedcost"
	"github.com/tradelog/backend/internal/domain/settlement"
	"github.com/tradelog/backend/internal/domain/shared"
	"github.com/tradelog/backend/internal/infrastructure/cache"
)

type testEvent struct {
	shared.BaseDomainEvent
	VoucherNumber string `json:"voucher_number"`
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, landedcost.AggregateTypeVoucher, uuid.New()),
		VoucherNumber:   "LCV-0001",
	}
}

type testHandler struct {
	mu         sync.Mutex
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	panicMsg   string
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{eventTypes: eventTypes}
}

func (h *testHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	if h.panicMsg != "" {
		panic(h.panicMsg)
	}
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func TestInMemoryEventBus_RoutesByType(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	created := newTestHandler(landedcost.EventTypeVoucherCreated)
	paid := newTestHandler(landedcost.EventTypeVoucherPayablePaid)
	all := newTestHandler()
	bus.Subscribe(created)
	bus.Subscribe(paid)
	bus.Subscribe(all)

	err := bus.Publish(context.Background(),
		newTestEvent(landedcost.EventTypeVoucherCreated),
		newTestEvent(landedcost.EventTypeVoucherPayablePaid),
		newTestEvent(landedcost.EventTypeVoucherPayablePaid),
	)

	require.NoError(t, err)
	assert.Equal(t, 1, created.count())
	assert.Equal(t, 2, paid.count())
	assert.Equal(t, 3, all.count())
}

func TestInMemoryEventBus_ExplicitTypesOverrideHandler(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	h := newTestHandler("Ignored")
	bus.Subscribe(h, landedcost.EventTypeVoucherDeleted)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent(landedcost.EventTypeVoucherDeleted)))
	assert.Equal(t, 1, h.count())
}

func TestInMemoryEventBus_FailuresDoNotStopOthers(t *testing.T) {
	core, recorded := observer.New(zapcore.ErrorLevel)
	bus := NewInMemoryEventBus(zap.New(core))

	failing := newTestHandler("E")
	failing.err = errors.New("downstream unavailable")
	panicking := newTestHandler("E")
	panicking.panicMsg = "boom"
	healthy := newTestHandler("E")
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("E")))

	assert.Equal(t, 1, healthy.count())
	assert.Len(t, recorded.FilterMessage("handler failed to process event").All(), 2)
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := newTestHandler("E")
	bus.Subscribe(h)

	_ = bus.Publish(context.Background(), newTestEvent("E"))
	bus.Unsubscribe(h)
	_ = bus.Publish(context.Background(), newTestEvent("E"))

	assert.Equal(t, 1, h.count())
	assert.Empty(t, bus.registry.GetHandlers("E"))
}

func TestAuditLogHandler(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	h := NewAuditLogHandler(zap.New(core))
	assert.Empty(t, h.EventTypes())

	event := newTestEvent(landedcost.EventTypeVoucherCreated)
	require.NoError(t, h.Handle(context.Background(), event))

	logs := recorded.FilterMessage("domain event").All()
	require.Len(t, logs, 1)
	assert.Equal(t, "audit", logs[0].LoggerName)
	fields := logs[0].ContextMap()
	assert.Equal(t, landedcost.EventTypeVoucherCreated, fields["event_type"])
	assert.Contains(t, fields["payload"], `"voucher_number":"LCV-0001"`)
}

func TestIdempotentHandler(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore(time.Hour)
	defer store.Close()
	cfg := shared.IdempotencyConfig{Enabled: true, TTL: time.Hour}

	inner := newTestHandler(landedcost.EventTypeVoucherPayablePaid)
	h := NewIdempotentHandler(inner, store, cfg, nil)
	assert.Equal(t, inner.EventTypes(), h.EventTypes())

	event := newTestEvent(landedcost.EventTypeVoucherPayablePaid)
	require.NoError(t, h.Handle(context.Background(), event))
	require.NoError(t, h.Handle(context.Background(), event))

	assert.Equal(t, 1, inner.count())
	assert.Equal(t, IdempotencyStats{Processed: 1, Duplicate: 1}, h.Stats())
}

func TestIdempotentHandler_FailureReleasesKey(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore(time.Hour)
	defer store.Close()
	cfg := shared.IdempotencyConfig{Enabled: true, TTL: time.Hour}

	inner := newTestHandler("E")
	inner.err = errors.New("temporary")
	h := NewIdempotentHandler(inner, store, cfg, zap.NewNop())

	event := newTestEvent("E")
	assert.Error(t, h.Handle(context.Background(), event))

	inner.mu.Lock()
	inner.err = nil
	inner.mu.Unlock()
	require.NoError(t, h.Handle(context.Background(), event))

	assert.Equal(t, 2, inner.count())
	assert.Equal(t, IdempotencyStats{Processed: 1, Failed: 1}, h.Stats())
}

func TestIdempotentHandler_Disabled(t *testing.T) {
	inner := newTestHandler("E")
	h := NewIdempotentHandler(inner, nil, shared.IdempotencyConfig{}, nil)

	event := newTestEvent("E")
	require.NoError(t, h.Handle(context.Background(), event))
	require.NoError(t, h.Handle(context.Background(), event))
	assert.Equal(t, 2, inner.count())
}

func TestInMemoryEventBus_DeliversInSubscriptionOrder(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	var order []string
	record := func(name string) *orderedHandler {
		return &orderedHandler{name: name, order: &order}
	}
	audit := record("audit")
	metrics := record("metrics")
	bus.Subscribe(audit)
	bus.Subscribe(metrics, settlement.EventTypeSettlementFinalized)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent(settlement.EventTypeSettlementFinalized)))
	assert.Equal(t, []string{"audit", "metrics"}, order)
}

func TestHandlerRegistry_RegisterTwiceWidens(t *testing.T) {
	r := NewHandlerRegistry()
	h := newTestHandler()

	r.Register(h, landedcost.EventTypeVoucherCreated)
	r.Register(h, landedcost.EventTypeVoucherDeleted)
	assert.Len(t, r.GetHandlers(landedcost.EventTypeVoucherCreated), 1)
	assert.Len(t, r.GetHandlers(landedcost.EventTypeVoucherDeleted), 1)
	assert.Empty(t, r.GetHandlers(landedcost.EventTypeVoucherRevised))

	r.Register(h)
	assert.Len(t, r.GetHandlers(landedcost.EventTypeVoucherRevised), 1)

	// A wildcard subscription is not narrowed by a later typed one.
	r.Register(h, landedcost.EventTypeVoucherCreated)
	assert.Len(t, r.GetHandlers(settlement.EventTypeSettlementCreated), 1)
}

type orderedHandler struct {
	name  string
	order *[]string
}

func (h *orderedHandler) Handle(context.Context, shared.DomainEvent) error {
	*h.order = append(*h.order, h.name)
	return nil
}

func (h *orderedHandler) EventTypes() []string { return nil }
