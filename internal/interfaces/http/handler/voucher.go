package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	applc "github.com/tradelog/backend/internal/application/landedcost"
	"github.com/tradelog/backend/internal/domain/landedcost"
	"github.com/tradelog/backend/internal/domain/shared"
)

// VoucherService is the application surface the voucher endpoints call
type VoucherService interface {
	PreviewAllocation(ctx context.Context, req applc.AllocationPreviewRequest) (*applc.AllocationPreviewResponse, error)
	Create(ctx context.Context, req applc.VoucherRequest) (*applc.VoucherResponse, error)
	Update(ctx context.Context, id uuid.UUID, req applc.VoucherRequest) (*applc.VoucherResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	PayCategory(ctx context.Context, id uuid.UUID, category landedcost.PayableCategory, req applc.PayCategoryRequest) (*applc.VoucherResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*applc.VoucherResponse, error)
	List(ctx context.Context, filter applc.VoucherListFilter) (shared.Paginated[applc.VoucherResponse], error)
}

// VoucherHandler handles landed-cost voucher endpoints
type VoucherHandler struct {
	BaseHandler
	service VoucherService
}

// NewVoucherHandler creates a new VoucherHandler
func NewVoucherHandler(service VoucherService) *VoucherHandler {
	return &VoucherHandler{service: service}
}

// PreviewAllocation godoc
// @ID           previewAllocation
// @Summary      Preview a landed-cost allocation
// @Description  Allocates the charges over the pooled purchase-order lines without saving anything
// @Tags         landed-cost
// @Accept       json
// @Produce      json
// @Param        request body     applc.AllocationPreviewRequest true "Charges and purchase orders"
// @Success      200     {object} dto.Response
// @Failure      400     {object} dto.Response
// @Failure      404     {object} dto.Response
// @Router       /landed-cost/allocation/preview [post]
func (h *VoucherHandler) PreviewAllocation(c *gin.Context) {
	var req applc.AllocationPreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	preview, err := h.service.PreviewAllocation(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, preview)
}

// Create godoc
// @ID           createVoucher
// @Summary      Create a landed-cost voucher
// @Tags         landed-cost
// @Accept       json
// @Produce      json
// @Param        request body     applc.VoucherRequest true "Voucher"
// @Success      201     {object} dto.Response
// @Failure      400     {object} dto.Response
// @Failure      404     {object} dto.Response
// @Router       /landed-cost/vouchers [post]
func (h *VoucherHandler) Create(c *gin.Context) {
	var req applc.VoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	voucher, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, voucher)
}

// List godoc
// @ID           listVouchers
// @Summary      List landed-cost vouchers
// @Tags         landed-cost
// @Produce      json
// @Param        page      query    int    false "Page number"
// @Param        page_size query    int    false "Page size"
// @Param        search    query    string false "Voucher number search"
// @Param        category  query    string false "Payable category (freight, partner, packing)"
// @Param        status    query    string false "Payable status (pending, paid)"
// @Param        party_id  query    string false "Payee party"
// @Success      200       {object} dto.Response
// @Router       /landed-cost/vouchers [get]
func (h *VoucherHandler) List(c *gin.Context) {
	var filter applc.VoucherListFilter
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
// @ID           getVoucher
// @Summary      Get a landed-cost voucher
// @Tags         landed-cost
// @Produce      json
// @Param        id  path     string true "Voucher ID"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /landed-cost/vouchers/{id} [get]
func (h *VoucherHandler) GetByID(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	voucher, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, voucher)
}

// Update godoc
// @ID           updateVoucher
// @Summary      Revise a landed-cost voucher
// @Description  Re-runs the allocation; categories that are already settled cannot change
// @Tags         landed-cost
// @Accept       json
// @Produce      json
// @Param        id      path     string               true "Voucher ID"
// @Param        request body     applc.VoucherRequest true "Voucher"
// @Success      200     {object} dto.Response
// @Failure      409     {object} dto.Response
// @Failure      422     {object} dto.Response
// @Router       /landed-cost/vouchers/{id} [put]
func (h *VoucherHandler) Update(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req applc.VoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	voucher, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, voucher)
}

// Delete godoc
// @ID           deleteVoucher
// @Summary      Delete a landed-cost voucher
// @Tags         landed-cost
// @Param        id  path string true "Voucher ID"
// @Success      204
// @Failure      409 {object} dto.Response
// @Router       /landed-cost/vouchers/{id} [delete]
func (h *VoucherHandler) Delete(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// PayCategory godoc
// @ID           payVoucherCategory
// @Summary      Pay one payable of a voucher
// @Description  Honors the Idempotency-Key header
// @Tags         landed-cost
// @Accept       json
// @Produce      json
// @Param        id              path     string                   true  "Voucher ID"
// @Param        category        path     string                   true  "freight, partner or packing"
// @Param        Idempotency-Key header   string                   false "Retry key"
// @Param        request         body     applc.PayCategoryRequest false "Payment details"
// @Success      200             {object} dto.Response
// @Failure      422             {object} dto.Response
// @Router       /landed-cost/vouchers/{id}/payables/{category}/pay [post]
func (h *VoucherHandler) PayCategory(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	category, err := landedcost.ParsePayableCategory(c.Param("category"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req applc.PayCategoryRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindError(c, err)
			return
		}
	}

	voucher, err := h.service.PayCategory(c.Request.Context(), id, category, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, voucher)
}
