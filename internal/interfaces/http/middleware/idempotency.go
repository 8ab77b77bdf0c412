package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tradelog/backend/internal/domain/shared"
	"github.com/tradelog/backend/internal/infrastructure/logger"
	"github.com/tradelog/backend/internal/interfaces/http/dto"
)

// HeaderIdempotentReplay marks a response served from the idempotency store
const HeaderIdempotentReplay = "Idempotent-Replayed"

// MaxIdempotencyKeyLength caps client supplied keys
const MaxIdempotencyKeyLength = 255

// storedResponse is what the store keeps for a completed key
type storedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// capturingWriter tees the response body so it can be stored after the handler ran
type capturingWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *capturingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *capturingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency makes a route safe to retry. A request carrying an
// Idempotency-Key runs once per key and ttl; repeats get the first 2xx
// response back with the Idempotent-Replayed header set. A repeat that
// arrives while the first request is still running gets 409. Failed requests
// release their key so the client can retry.
//
// Store errors never block the request: the middleware logs them and runs
// the handler without protection.
func Idempotency(store shared.IdempotencyStore, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" || store == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		log := logger.FromContext(ctx)

		if len(key) > MaxIdempotencyKeyLength {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeBadRequest, "Idempotency-Key is too long", GetRequestID(c)))
			return
		}

		storeKey := "http:" + c.Request.Method + ":" + c.Request.URL.Path + ":" + key

		stored, found, err := store.Lookup(ctx, storeKey)
		if err != nil {
			log.Warn("Idempotency lookup failed", zap.String("idempotency_key", key), zap.Error(err))
			c.Next()
			return
		}
		if found {
			replay(c, stored)
			return
		}

		reserved, err := store.Reserve(ctx, storeKey, ttl)
		if err != nil {
			log.Warn("Idempotency reserve failed", zap.String("idempotency_key", key), zap.Error(err))
			c.Next()
			return
		}
		if !reserved {
			// Lost the race against a concurrent request with the same key
			inFlight(c)
			return
		}

		writer := &capturingWriter{ResponseWriter: c.Writer}
		c.Writer = writer

		c.Next()

		status := writer.Status()
		if status < http.StatusOK || status >= http.StatusMultipleChoices {
			if err := store.Release(ctx, storeKey); err != nil {
				log.Warn("Idempotency release failed", zap.String("idempotency_key", key), zap.Error(err))
			}
			return
		}

		payload, err := json.Marshal(storedResponse{
			Status:      status,
			ContentType: writer.Header().Get("Content-Type"),
			Body:        writer.body.Bytes(),
		})
		if err == nil {
			err = store.Complete(ctx, storeKey, payload, ttl)
		}
		if err != nil {
			log.Warn("Idempotency complete failed", zap.String("idempotency_key", key), zap.Error(err))
		}
	}
}

func replay(c *gin.Context, stored []byte) {
	if stored == nil {
		inFlight(c)
		return
	}
	var resp storedResponse
	if err := json.Unmarshal(stored, &resp); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeInternal, "Stored response could not be read", GetRequestID(c)))
		return
	}
	contentType := resp.ContentType
	if contentType == "" {
		contentType = "application/json; charset=utf-8"
	}
	c.Header(HeaderIdempotentReplay, "true")
	if len(resp.Body) == 0 {
		c.AbortWithStatus(resp.Status)
		return
	}
	c.Data(resp.Status, contentType, resp.Body)
	c.Abort()
}

func inFlight(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusConflict, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeRequestInFlight,
		"A request with this Idempotency-Key is still being processed",
		GetRequestID(c),
	))
}
