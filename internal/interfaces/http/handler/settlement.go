package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	applc "github.com/tradelog/backend/internal/application/landedcost"
	"github.com/tradelog/backend/internal/domain/shared"
)

// SettlementService is the application surface the settlement endpoints call
type SettlementService interface {
	PendingDues(ctx context.Context, partyType, category string) ([]applc.PartyDuesResponse, error)
	Create(ctx context.Context, req applc.CreateSettlementRequest) (*applc.SettlementResponse, error)
	Finalize(ctx context.Context, id uuid.UUID, req applc.FinalizeSettlementRequest) (*applc.FinalizeResult, error)
	GetByID(ctx context.Context, id uuid.UUID) (*applc.SettlementResponse, error)
	List(ctx context.Context, filter applc.SettlementListFilter) (shared.Paginated[applc.SettlementResponse], error)
}

// PendingDuesQuery selects whose dues to list
type PendingDuesQuery struct {
	PartyType string `form:"party_type" binding:"required,oneof=partner packing logistic"`
	Category  string `form:"category" binding:"omitempty,oneof=freight partner packing"`
}

// SettlementHandler handles multi-party settlement endpoints
type SettlementHandler struct {
	BaseHandler
	service SettlementService
}

// NewSettlementHandler creates a new SettlementHandler
func NewSettlementHandler(service SettlementService) *SettlementHandler {
	return &SettlementHandler{service: service}
}

// PendingDues godoc
// @ID           listPendingDues
// @Summary      What each party of a type is owed
// @Tags         settlements
// @Produce      json
// @Param        party_type query    string true  "partner, packing or logistic"
// @Param        category   query    string false "Must match the party type"
// @Success      200        {object} dto.Response
// @Failure      400        {object} dto.Response
// @Router       /landed-cost/settlements/pending-dues [get]
func (h *SettlementHandler) PendingDues(c *gin.Context) {
	var q PendingDuesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}

	dues, err := h.service.PendingDues(c.Request.Context(), q.PartyType, q.Category)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dues)
}

// Create godoc
// @ID           createSettlement
// @Summary      Capture pending vouchers of a party into a settlement
// @Tags         settlements
// @Accept       json
// @Produce      json
// @Param        request body     applc.CreateSettlementRequest true "Settlement"
// @Success      201     {object} dto.Response
// @Failure      400     {object} dto.Response
// @Failure      422     {object} dto.Response
// @Router       /landed-cost/settlements [post]
func (h *SettlementHandler) Create(c *gin.Context) {
	var req applc.CreateSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	settlement, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, settlement)
}

// List godoc
// @ID           listSettlements
// @Summary      List settlements
// @Tags         settlements
// @Produce      json
// @Param        party_type query    string false "partner, packing or logistic"
// @Param        party_id   query    string false "Payee party"
// @Param        status     query    string false "pending or finalized"
// @Param        period     query    string false "YYYY-MM"
// @Success      200        {object} dto.Response
// @Router       /landed-cost/settlements [get]
func (h *SettlementHandler) List(c *gin.Context) {
	var filter applc.SettlementListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	page, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(c, page)
}

// GetByID godoc
// @ID           getSettlement
// @Summary      Get a settlement
// @Tags         settlements
// @Produce      json
// @Param        id  path     string true "Settlement ID"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /landed-cost/settlements/{id} [get]
func (h *SettlementHandler) GetByID(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	settlement, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, settlement)
}

// Finalize godoc
// @ID           finalizeSettlement
// @Summary      Pay every captured voucher and close the settlement
// @Description  Vouchers paid elsewhere since capture are skipped and reported. Honors the Idempotency-Key header.
// @Tags         settlements
// @Accept       json
// @Produce      json
// @Param        id              path     string                          true  "Settlement ID"
// @Param        Idempotency-Key header   string                          false "Retry key"
// @Param        request         body     applc.FinalizeSettlementRequest true  "Account reference"
// @Success      200             {object} dto.Response
// @Failure      422             {object} dto.Response
// @Router       /landed-cost/settlements/{id}/finalize [post]
func (h *SettlementHandler) Finalize(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req applc.FinalizeSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.service.Finalize(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
