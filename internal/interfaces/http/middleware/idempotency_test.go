package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tradelog/backend/internal/infrastructure/cache"
	"github.com/tradelog/backend/internal/interfaces/http/dto"
)

type mockIdempotencyStore struct {
	mock.Mock
}

func (m *mockIdempotencyStore) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *mockIdempotencyStore) Complete(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	return m.Called(ctx, key, response, ttl).Error(0)
}

func (m *mockIdempotencyStore) Lookup(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(ctx, key)
	resp, _ := args.Get(0).([]byte)
	return resp, args.Bool(1), args.Error(2)
}

func (m *mockIdempotencyStore) Release(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *mockIdempotencyStore) Close() error { return nil }

func newIdempotentRouter(t *testing.T, store *cache.InMemoryIdempotencyStore, status int, calls *int32) *gin.Engine {
	t.Helper()
	router := gin.New()
	router.Use(RequestID())
	router.POST("/settlements/:id/finalize", Idempotency(store, time.Hour), func(c *gin.Context) {
		n := atomic.AddInt32(calls, 1)
		if status >= http.StatusBadRequest {
			c.JSON(status, dto.NewErrorResponse(dto.ErrCodeInvalidState, "not pending"))
			return
		}
		c.JSON(status, dto.NewSuccessResponse(gin.H{"call": n}))
	})
	return router
}

func post(router *gin.Engine, path, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, nil)
	if key != "" {
		req.Header.Set(HeaderIdempotencyKey, key)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestIdempotency_ReplaysFirstSuccess(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore(time.Minute)
	t.Cleanup(func() { _ = store.Close() })

	var calls int32
	router := newIdempotentRouter(t, store, http.StatusOK, &calls)

	first := post(router, "/settlements/1/finalize", "key-1")
	second := post(router, "/settlements/1/finalize", "key-1")

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get(HeaderIdempotentReplay))
	assert.Empty(t, first.Header().Get(HeaderIdempotentReplay))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestIdempotency_KeysAreScopedToPath(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore(time.Minute)
	t.Cleanup(func() { _ = store.Close() })

	var calls int32
	router := newIdempotentRouter(t, store, http.StatusOK, &calls)

	post(router, "/settlements/1/finalize", "same-key")
	post(router, "/settlements/2/finalize", "same-key")

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestIdempotency_WithoutKeyAlwaysRuns(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore(time.Minute)
	t.Cleanup(func() { _ = store.Close() })

	var calls int32
	router := newIdempotentRouter(t, store, http.StatusOK, &calls)

	post(router, "/settlements/1/finalize", "")
	post(router, "/settlements/1/finalize", "")

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, 0, store.Size())
}

func TestIdempotency_FailureReleasesKey(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore(time.Minute)
	t.Cleanup(func() { _ = store.Close() })

	var calls int32
	router := newIdempotentRouter(t, store, http.StatusUnprocessableEntity, &calls)

	first := post(router, "/settlements/1/finalize", "key-2")
	second := post(router, "/settlements/1/finalize", "key-2")

	assert.Equal(t, http.StatusUnprocessableEntity, first.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, second.Code)
	assert.Empty(t, second.Header().Get(HeaderIdempotentReplay))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestIdempotency_InFlightKeyConflicts(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore(time.Minute)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	_, err := store.Reserve(ctx, "http:POST:/settlements/1/finalize:busy", time.Hour)
	require.NoError(t, err)

	var calls int32
	router := newIdempotentRouter(t, store, http.StatusOK, &calls)

	w := post(router, "/settlements/1/finalize", "busy")

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), dto.ErrCodeRequestInFlight)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestIdempotency_StoreErrorFailsOpen(t *testing.T) {
	store := new(mockIdempotencyStore)
	store.On("Lookup", mock.Anything, mock.Anything).Return(nil, false, errors.New("redis down"))

	router := gin.New()
	router.POST("/pay", Idempotency(store, time.Hour), func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.NewSuccessResponse("paid"))
	})

	w := post(router, "/pay", "key-3")

	assert.Equal(t, http.StatusOK, w.Code)
	store.AssertNotCalled(t, "Reserve", mock.Anything, mock.Anything, mock.Anything)
}

func TestIdempotency_RejectsOversizedKey(t *testing.T) {
	store := new(mockIdempotencyStore)

	router := gin.New()
	router.POST("/pay", Idempotency(store, time.Hour), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := post(router, "/pay", strings.Repeat("k", MaxIdempotencyKeyLength+1))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	store.AssertExpectations(t)
}
