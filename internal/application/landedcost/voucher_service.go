package landedcost

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tradelog/backend/internal/domain/landedcost"
	"github.com/tradelog/backend/internal/domain/partner"
	"github.com/tradelog/backend/internal/domain/shared"
	"github.com/tradelog/backend/internal/infrastructure/telemetry"
)

// PaymentDetails describes how a payable is paid
type PaymentDetails struct {
	PaymentDate      time.Time
	AccountReference string
	Notes            string
}

// VoucherService handles landed cost voucher operations
type VoucherService struct {
	scope           TransactionScope
	voucherRepo     landedcost.VoucherRepository
	orders          landedcost.PurchaseOrderDirectory
	parties         partner.PartyDirectory
	defaults        PartyDefaults
	eventPublisher  shared.EventPublisher
	businessMetrics *telemetry.BusinessMetrics
	logger          *zap.Logger
}

// NewVoucherService creates a new VoucherService
func NewVoucherService(
	scope TransactionScope,
	voucherRepo landedcost.VoucherRepository,
	orders landedcost.PurchaseOrderDirectory,
	parties partner.PartyDirectory,
	logger *zap.Logger,
) *VoucherService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VoucherService{
		scope:       scope,
		voucherRepo: voucherRepo,
		orders:      orders,
		parties:     parties,
		logger:      logger,
	}
}

// SetPartyDefaults sets the configured default party per category
func (s *VoucherService) SetPartyDefaults(defaults PartyDefaults) {
	s.defaults = defaults
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *VoucherService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics collector
func (s *VoucherService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// PreviewAllocation runs the allocation for the selected orders without persisting anything
func (s *VoucherService) PreviewAllocation(ctx context.Context, req AllocationPreviewRequest) (*AllocationPreviewResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "voucher", "preview_allocation")
	defer span.End()

	if len(req.PurchaseOrderIDs) == 0 {
		return nil, shared.NewValidationError("no purchase order selected")
	}
	charges := landedcost.VoucherInput{
		HKToDXBKwd:        req.HKToDXBKwd.Amount(),
		DXBToKWIKwd:       req.DXBToKWIKwd.Amount(),
		PartnerProfitKwd:  req.PartnerProfitKwd.Amount(),
		PackingChargesKwd: req.PackingChargesKwd.Amount(),
	}
	if req.HKToDXBKwd.IsNegative() || req.DXBToKWIKwd.IsNegative() {
		return nil, shared.NewValidationError("freight cannot be negative")
	}
	totals := charges.Charges()
	if err := totals.Validate(); err != nil {
		return nil, err
	}

	lines, err := s.poolLineItems(ctx, req.PurchaseOrderIDs)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	result := landedcost.Allocate(lines, totals)
	telemetry.SetAttributes(span, telemetry.SpanAttrQuantity, result.TotalQuantity)
	response := ToAllocationPreviewResponse(result)
	return &response, nil
}

// Create creates a new voucher
func (s *VoucherService) Create(ctx context.Context, req VoucherRequest) (*VoucherResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "voucher", "create")
	defer span.End()

	in, err := s.prepareInput(ctx, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	lines, err := s.poolLineItems(ctx, in.PurchaseOrderIDs)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var voucher *landedcost.Voucher
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		number, err := repos.Numbers().NextVoucherNumber(ctx)
		if err != nil {
			return fmt.Errorf("next voucher number: %w", err)
		}
		voucher, err = landedcost.NewVoucher(number, in, lines)
		if err != nil {
			return err
		}
		return repos.VoucherRepo().Save(ctx, voucher)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrVoucherID, voucher.ID.String(),
		telemetry.SpanAttrVoucherNumber, voucher.VoucherNumber,
	)
	s.publishDomainEvents(ctx, voucher.PullDomainEvents()...)
	if s.businessMetrics != nil {
		s.businessMetrics.RecordVoucherCreated(ctx)
	}

	response := ToVoucherResponse(voucher)
	return &response, nil
}

// Update replaces the inputs of a voucher and re-runs the allocation
func (s *VoucherService) Update(ctx context.Context, id uuid.UUID, req VoucherRequest) (*VoucherResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "voucher", "update")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrVoucherID, id.String())

	in, err := s.prepareInput(ctx, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	voucher, err := s.voucherRepo.FindByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	lines, err := s.revisionLines(ctx, voucher, in.PurchaseOrderIDs)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	// SaveWithLock rejects the revision if the voucher changed since it was read
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := voucher.Revise(in, lines); err != nil {
			return err
		}
		return repos.VoucherRepo().SaveWithLock(ctx, voucher)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishDomainEvents(ctx, voucher.PullDomainEvents()...)

	response := ToVoucherResponse(voucher)
	return &response, nil
}

// Delete removes a voucher and drops it from any pending settlement
func (s *VoucherService) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "voucher", "delete")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrVoucherID, id.String())

	var voucher *landedcost.Voucher
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		voucher, err = repos.VoucherRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := voucher.MarkDeleted(); err != nil {
			return err
		}

		pending, err := repos.SettlementRepo().FindPendingByVoucher(ctx, id)
		if err != nil {
			return err
		}
		for i := range pending {
			stl := &pending[i]
			removed, err := stl.ExcludeVoucher(id)
			if err != nil {
				return err
			}
			if !removed {
				continue
			}
			if stl.IsEmpty() {
				if err := repos.SettlementRepo().Delete(ctx, stl.ID); err != nil {
					return err
				}
				s.logger.Info("Pending settlement removed with its last voucher",
					zap.String("voucher_number", voucher.VoucherNumber),
					zap.String("settlement_number", stl.SettlementNumber),
				)
				continue
			}
			if err := repos.SettlementRepo().SaveWithLock(ctx, stl); err != nil {
				return err
			}
			s.logger.Info("Voucher removed from pending settlement",
				zap.String("voucher_number", voucher.VoucherNumber),
				zap.String("settlement_number", stl.SettlementNumber),
				zap.String("settlement_total_kwd", stl.TotalAmountKwd.StringFixed(3)),
			)
		}
		return repos.VoucherRepo().Delete(ctx, id)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	s.publishDomainEvents(ctx, voucher.PullDomainEvents()...)
	return nil
}

// PayCategory pays one payable of a voucher
func (s *VoucherService) PayCategory(ctx context.Context, id uuid.UUID, category landedcost.PayableCategory, req PayCategoryRequest) (*VoucherResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "voucher", "pay_category")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrVoucherID, id.String(),
		telemetry.SpanAttrCategory, string(category),
	)

	if !category.IsValid() {
		err := shared.NewValidationError("unknown payable category %q", category)
		telemetry.RecordError(span, err)
		return nil, err
	}
	details := PaymentDetails{
		PaymentDate:      time.Now(),
		AccountReference: req.AccountReference,
		Notes:            req.Notes,
	}
	if req.PaymentDate != "" {
		date, err := time.Parse(DateLayout, req.PaymentDate)
		if err != nil {
			return nil, shared.NewValidationError("payment date %q must be YYYY-MM-DD", req.PaymentDate)
		}
		details.PaymentDate = date
	}

	var voucher *landedcost.Voucher
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		voucher, err = repos.VoucherRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		return payVoucher(ctx, repos, voucher, category, voucher.AmountFor(category), details, voucher.VoucherNumber)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishDomainEvents(ctx, voucher.PullDomainEvents()...)
	if s.businessMetrics != nil {
		s.businessMetrics.RecordPayablePaid(ctx, string(category), voucher.AmountFor(category))
	}

	response := ToVoucherResponse(voucher)
	return &response, nil
}

// GetByID retrieves a voucher by ID
func (s *VoucherService) GetByID(ctx context.Context, id uuid.UUID) (*VoucherResponse, error) {
	voucher, err := s.voucherRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToVoucherResponse(voucher)
	return &response, nil
}

// List retrieves vouchers with filtering and pagination
func (s *VoucherService) List(ctx context.Context, filter VoucherListFilter) (shared.Paginated[VoucherResponse], error) {
	domainFilter := landedcost.VoucherFilter{Filter: shared.DefaultFilter()}
	domainFilter.OrderBy = "voucher_number"
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	domainFilter.Search = filter.Search
	if filter.PartyID != "" {
		partyID, err := uuid.Parse(filter.PartyID)
		if err != nil {
			return shared.Paginated[VoucherResponse]{}, shared.NewValidationError("invalid party_id %q", filter.PartyID)
		}
		domainFilter.PartyID = &partyID
	}
	if filter.Category != "" {
		category, err := landedcost.ParsePayableCategory(filter.Category)
		if err != nil {
			return shared.Paginated[VoucherResponse]{}, err
		}
		domainFilter.Category = &category
	}
	if filter.Status != "" {
		status := landedcost.PayableStatus(filter.Status)
		domainFilter.Status = &status
	}

	vouchers, err := s.voucherRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return shared.Paginated[VoucherResponse]{}, err
	}
	total, err := s.voucherRepo.Count(ctx, domainFilter)
	if err != nil {
		return shared.Paginated[VoucherResponse]{}, err
	}

	items := make([]VoucherResponse, 0, len(vouchers))
	for i := range vouchers {
		items = append(items, ToVoucherResponse(&vouchers[i]))
	}
	return shared.NewPaginated(items, total, domainFilter.Page, domainFilter.Limit()), nil
}

// prepareInput converts the request, applies configured default parties and
// checks every assigned party against the directory.
func (s *VoucherService) prepareInput(ctx context.Context, req VoucherRequest) (landedcost.VoucherInput, error) {
	in, err := req.ToInput()
	if err != nil {
		return in, err
	}
	s.defaults.Apply(&in)
	if err := in.Validate(); err != nil {
		return in, err
	}
	for _, c := range landedcost.Categories {
		partyID := in.PartyFor(c)
		if partyID == nil {
			continue
		}
		if err := s.checkPayee(ctx, *partyID, c); err != nil {
			return in, err
		}
	}
	return in, nil
}

func (s *VoucherService) checkPayee(ctx context.Context, partyID uuid.UUID, c landedcost.PayableCategory) error {
	party, err := s.parties.GetParty(ctx, partyID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewValidationError("%s party %s not found", c, partyID)
		}
		return fmt.Errorf("lookup %s party: %w", c, err)
	}
	if party.Type != c.PartyType() {
		return shared.NewValidationError("%s party %s is a %s, expected %s", c, party.Name, party.Type, c.PartyType())
	}
	return nil
}

// poolLineItems collects the line items of every selected order in selection order
func (s *VoucherService) poolLineItems(ctx context.Context, ids []uuid.UUID) ([]landedcost.PurchaseOrderLineItem, error) {
	lines := make([]landedcost.PurchaseOrderLineItem, 0)
	for _, id := range ids {
		items, err := s.orders.ListLineItems(ctx, id)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewValidationError("purchase order %s not found", id)
			}
			return nil, fmt.Errorf("list line items of purchase order %s: %w", id, err)
		}
		lines = append(lines, items...)
	}
	return lines, nil
}

// revisionLines fetches the live line items for an update. When the directory
// cannot serve the same orders the voucher was built from, the allocation falls
// back to the quantities and prices already committed on the voucher.
func (s *VoucherService) revisionLines(ctx context.Context, voucher *landedcost.Voucher, ids []uuid.UUID) ([]landedcost.PurchaseOrderLineItem, error) {
	lines, err := s.poolLineItems(ctx, ids)
	if err == nil && len(lines) > 0 {
		return lines, nil
	}
	if voucher.HasSamePurchaseOrders(ids) && len(voucher.LineItems) > 0 {
		fields := []zap.Field{
			zap.String("voucher_number", voucher.VoucherNumber),
			zap.Int("line_items", len(voucher.LineItems)),
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
		}
		s.logger.Warn("Purchase order data unavailable, reallocating from persisted line items", fields...)
		return voucher.PersistedLines(), nil
	}
	return lines, err
}

// publishDomainEvents publishes events after commit; failures are logged by the bus
func (s *VoucherService) publishDomainEvents(ctx context.Context, events ...shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
}

// payVoucher records a payment of amount and flips the payable inside the
// caller's transaction. Direct payments pass the voucher's stored total;
// settlements pass the amount captured when the settlement was created.
func payVoucher(
	ctx context.Context,
	repos TransactionalRepositories,
	voucher *landedcost.Voucher,
	category landedcost.PayableCategory,
	amount decimal.Decimal,
	details PaymentDetails,
	reference string,
) error {
	if err := voucher.CanPay(category); err != nil {
		return err
	}
	paymentID, err := repos.Payments().RecordPayment(ctx, landedcost.PaymentRecord{
		PayeeID:   *voucher.PartyFor(category),
		AmountKwd: amount,
		Date:      details.PaymentDate,
		Type:      landedcost.PaymentTypeFor(category),
		Reference: reference,
		Account:   details.AccountReference,
		Notes:     details.Notes,
	})
	if err != nil {
		return fmt.Errorf("record payment: %w", err)
	}
	if err := voucher.Pay(category, paymentID, details.PaymentDate); err != nil {
		return err
	}
	return repos.VoucherRepo().SaveWithLock(ctx, voucher)
}
