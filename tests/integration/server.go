// Package integration exercises the landed cost API end to end: real
// handlers, services, repositories and the transactional scope running on a
// real database.
package integration

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	applc "github.com/tradelog/backend/internal/application/landedcost"
	"github.com/tradelog/backend/internal/infrastructure/cache"
	"github.com/tradelog/backend/internal/infrastructure/event"
	"github.com/tradelog/backend/internal/infrastructure/persistence"
	"github.com/tradelog/backend/internal/interfaces/http/handler"
	"github.com/tradelog/backend/internal/interfaces/http/middleware"
	"github.com/tradelog/backend/internal/interfaces/http/router"
	"github.com/tradelog/backend/tests/testutil"
)

// APIPrefix is where the landed cost routes are mounted
const APIPrefix = "/api/v1/landed-cost"

// TestServer is the HTTP stack wired the way cmd/server wires it
type TestServer struct {
	Engine *gin.Engine
	Events *testutil.MockEventHandler
	Store  *cache.InMemoryIdempotencyStore
	DB     *gorm.DB
	t      *testing.T
}

// NewTestServer builds the full stack on db
func NewTestServer(t *testing.T, db *gorm.DB) *TestServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, middleware.SetupValidator())

	log := zap.NewNop()
	txScope := persistence.NewGormTransactionScope(db, persistence.DefaultNumberFormat())
	voucherRepo := persistence.NewGormVoucherRepository(db)
	settlementRepo := persistence.NewGormSettlementRepository(db)
	parties := persistence.NewGormPartyDirectory(db)
	orders := persistence.NewGormPurchaseOrderDirectory(db)

	events := testutil.NewMockEventHandler()
	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(events)

	vouchers := applc.NewVoucherService(txScope, voucherRepo, orders, parties, log)
	vouchers.SetEventPublisher(bus)
	settlements := applc.NewSettlementService(txScope, settlementRepo, voucherRepo, parties, log)
	settlements.SetEventPublisher(bus)

	store := cache.NewInMemoryIdempotencyStore(0)
	t.Cleanup(func() { _ = store.Close() })

	engine := gin.New()
	engine.Use(middleware.RequestID(), middleware.BodyLimit(1<<20))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(router.LandedCostRoutes(
		handler.NewVoucherHandler(vouchers),
		handler.NewSettlementHandler(settlements),
		middleware.Idempotency(store, time.Hour),
	))
	r.Setup()

	return &TestServer{Engine: engine, Events: events, Store: store, DB: db, t: t}
}

// Do sends a JSON request to a path below APIPrefix
func (s *TestServer) Do(method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	s.t.Helper()
	return testutil.PerformJSON(s.t, s.Engine, method, APIPrefix+path, body, headers)
}
