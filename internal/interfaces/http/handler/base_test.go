package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradelog/backend/internal/domain/shared"
	"github.com/tradelog/backend/internal/infrastructure/logger"
	"github.com/tradelog/backend/internal/interfaces/http/dto"
)

func newBaseContext() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Set(logger.RequestIDKey, "base-request")
	return c, w
}

func decodeBase(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{"not found", shared.NewNotFoundError("voucher", uuid.New()), http.StatusNotFound, dto.ErrCodeNotFound},
		{"validation", shared.NewValidationError("quantity must be positive"), http.StatusBadRequest, dto.ErrCodeValidation},
		{"invalid state", shared.NewInvalidStateError("settlement is finalized"), http.StatusUnprocessableEntity, dto.ErrCodeInvalidState},
		{"conflict", shared.NewConflictError("voucher is settled"), http.StatusConflict, dto.ErrCodeConflict},
		{"concurrency", shared.ErrConcurrencyConflict, http.StatusConflict, dto.ErrCodeConcurrencyConflict},
		{"wrapped domain error", fmt.Errorf("pay freight: %w", shared.NewInvalidStateError("already paid")), http.StatusUnprocessableEntity, dto.ErrCodeInvalidState},
		{"plain error", errors.New("disk full"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newBaseContext()
			h := &BaseHandler{}

			h.HandleError(c, tt.err)

			assert.Equal(t, tt.expectedStatus, w.Code)
			resp := decodeBase(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.expectedCode, resp.Error.Code)
			assert.Equal(t, "base-request", resp.Error.RequestID)
		})
	}
}

func TestBaseHandler_HandleErrorNil(t *testing.T) {
	c, w := newBaseContext()
	h := &BaseHandler{}

	h.HandleError(c, nil)

	assert.False(t, c.Writer.Written())
	assert.Empty(t, w.Body.Bytes())
}

func TestBaseHandler_BindError(t *testing.T) {
	var v map[string]any
	syntaxErr := json.Unmarshal([]byte("{bad"), &v)

	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{"empty body", io.EOF, http.StatusBadRequest, dto.ErrCodeInvalidJSON},
		{"truncated body", io.ErrUnexpectedEOF, http.StatusBadRequest, dto.ErrCodeInvalidJSON},
		{"syntax error", syntaxErr, http.StatusBadRequest, dto.ErrCodeInvalidJSON},
		{"oversized body", &http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge},
		{"other", errors.New("unsupported media"), http.StatusBadRequest, dto.ErrCodeBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newBaseContext()
			h := &BaseHandler{}

			h.BindError(c, tt.err)

			assert.Equal(t, tt.expectedStatus, w.Code)
			resp := decodeBase(t, w)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.expectedCode, resp.Error.Code)
		})
	}
}

func TestBaseHandler_BindErrorTypeMismatch(t *testing.T) {
	engine := newTestEngine()
	h := &BaseHandler{}
	engine.POST("/bind", func(c *gin.Context) {
		var req struct {
			Quantity int64 `json:"quantity"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindError(c, err)
			return
		}
		h.Success(c, req)
	})

	w := doJSON(t, engine, http.MethodPost, "/bind", `{"quantity":"many"}`)

	requireErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeInvalidJSON)
}

func TestBaseHandler_PathUUID(t *testing.T) {
	engine := newTestEngine()
	h := &BaseHandler{}
	engine.GET("/things/:id", func(c *gin.Context) {
		id, ok := h.pathUUID(c, "id")
		if !ok {
			return
		}
		h.Success(c, id)
	})

	t.Run("valid", func(t *testing.T) {
		id := uuid.New()
		w := doJSON(t, engine, http.MethodGet, "/things/"+id.String(), nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), id.String())
	})

	t.Run("invalid", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodGet, "/things/LCV-0001", nil)
		resp := requireErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
		assert.True(t, strings.Contains(resp.Error.Message, "id"))
	})
}

func TestBaseHandler_Responses(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		c, w := newBaseContext()
		(&BaseHandler{}).Created(c, map[string]string{"voucher_number": "LCV-0001"})
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, decodeBase(t, w).Success)
	})

	t.Run("no content", func(t *testing.T) {
		engine := newTestEngine()
		engine.DELETE("/x", func(c *gin.Context) { (&BaseHandler{}).NoContent(c) })
		w := doJSON(t, engine, http.MethodDelete, "/x", nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("paginated", func(t *testing.T) {
		c, w := newBaseContext()
		Paginated(c, shared.NewPaginated([]string{"a", "b"}, 5, 1, 2))
		resp := decodeBase(t, w)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, int64(5), resp.Meta.Total)
		assert.Equal(t, 3, resp.Meta.TotalPages)
	})

	t.Run("error carries request id", func(t *testing.T) {
		engine := newTestEngine()
		engine.GET("/x", func(c *gin.Context) { (&BaseHandler{}).BadRequest(c, "nope") })
		w := doJSON(t, engine, http.MethodGet, "/x", nil)
		requireErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeBadRequest)
	})
}
