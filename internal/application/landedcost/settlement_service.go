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
	"github.com/tradelog/backend/internal/domain/settlement"
	"github.com/tradelog/backend/internal/domain/shared"
	"github.com/tradelog/backend/internal/infrastructure/telemetry"
)

// SettlementService batches pending dues of a party into settlements and pays them
type SettlementService struct {
	scope           TransactionScope
	settlementRepo  settlement.Repository
	voucherRepo     landedcost.VoucherRepository
	parties         partner.PartyDirectory
	eventPublisher  shared.EventPublisher
	businessMetrics *telemetry.BusinessMetrics
	logger          *zap.Logger
}

// NewSettlementService creates a new SettlementService
func NewSettlementService(
	scope TransactionScope,
	settlementRepo settlement.Repository,
	voucherRepo landedcost.VoucherRepository,
	parties partner.PartyDirectory,
	logger *zap.Logger,
) *SettlementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettlementService{
		scope:          scope,
		settlementRepo: settlementRepo,
		voucherRepo:    voucherRepo,
		parties:        parties,
		logger:         logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *SettlementService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics collector
func (s *SettlementService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// PendingDues lists what every party of the given type is owed.
// category is optional and must match the party type when given.
func (s *SettlementService) PendingDues(ctx context.Context, partyType, category string) ([]PartyDuesResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "settlement", "pending_dues")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrPartyType, partyType)

	c, err := resolveCategory(partner.PartyType(partyType), category)
	if err != nil {
		return nil, err
	}

	vouchers, err := s.voucherRepo.FindPendingByCategory(ctx, c)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	names := make(map[uuid.UUID]string)
	for i := range vouchers {
		partyID := vouchers[i].PartyFor(c)
		if partyID == nil {
			continue
		}
		if _, seen := names[*partyID]; seen {
			continue
		}
		names[*partyID] = s.partyName(ctx, *partyID)
	}

	dues := settlement.GroupPendingDues(c, vouchers, names)
	telemetry.SetAttributes(span, telemetry.SpanAttrVoucherCount, len(vouchers))
	return ToPartyDuesResponse(dues), nil
}

// Create captures the selected pending vouchers of a party into a new settlement
func (s *SettlementService) Create(ctx context.Context, req CreateSettlementRequest) (*SettlementResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "settlement", "create")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrPartyType, req.PartyType,
		telemetry.SpanAttrPartyID, req.PartyID.String(),
		telemetry.SpanAttrVoucherCount, len(req.VoucherIDs),
	)

	category, err := resolveCategory(partner.PartyType(req.PartyType), "")
	if err != nil {
		return nil, err
	}
	if err := settlement.ValidatePeriod(req.SettlementPeriod); err != nil {
		return nil, err
	}
	var date time.Time
	if req.SettlementDate != "" {
		date, err = time.Parse(DateLayout, req.SettlementDate)
		if err != nil {
			return nil, shared.NewValidationError("settlement date %q must be YYYY-MM-DD", req.SettlementDate)
		}
	}

	payee, err := s.parties.GetParty(ctx, req.PartyID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewValidationError("party %s not found", req.PartyID)
		}
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("lookup party: %w", err)
	}
	if string(payee.Type) != req.PartyType {
		return nil, shared.NewValidationError("party %s is a %s, not a %s", payee.Name, payee.Type, req.PartyType)
	}

	var stl *settlement.Settlement
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		lines, err := captureLines(ctx, repos, category, payee.ID, req.VoucherIDs)
		if err != nil {
			return err
		}
		number, err := repos.Numbers().NextSettlementNumber(ctx)
		if err != nil {
			return fmt.Errorf("next settlement number: %w", err)
		}
		stl, err = settlement.NewSettlement(number, *payee, req.SettlementPeriod, date, lines)
		if err != nil {
			return err
		}
		stl.Notes = req.Notes
		return repos.SettlementRepo().Save(ctx, stl)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrSettlementID, stl.ID.String(),
		telemetry.SpanAttrSettlementNumber, stl.SettlementNumber,
		telemetry.SpanAttrAmount, stl.TotalAmountKwd.StringFixed(3),
	)
	s.publishDomainEvents(ctx, stl.PullDomainEvents()...)
	if s.businessMetrics != nil {
		s.businessMetrics.RecordSettlementCreated(ctx, string(category))
	}

	response := ToSettlementResponse(stl)
	return &response, nil
}

// captureLines checks every selected voucher and snapshots its due
func captureLines(
	ctx context.Context,
	repos TransactionalRepositories,
	category landedcost.PayableCategory,
	partyID uuid.UUID,
	voucherIDs []uuid.UUID,
) ([]settlement.Line, error) {
	lines := make([]settlement.Line, 0, len(voucherIDs))
	for _, id := range voucherIDs {
		v, err := repos.VoucherRepo().FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewValidationError("voucher %s not found", id)
			}
			return nil, err
		}
		if err := v.CanPay(category); err != nil {
			return nil, shared.NewInvalidStateError("voucher %s: %s", v.VoucherNumber, shared.ErrorMessage(err))
		}
		if p := v.PartyFor(category); *p != partyID {
			return nil, shared.NewValidationError("voucher %s %s payable belongs to another party", v.VoucherNumber, category)
		}

		pending, err := repos.SettlementRepo().FindPendingByVoucher(ctx, id)
		if err != nil {
			return nil, err
		}
		for _, other := range pending {
			if other.Category == category {
				return nil, shared.NewConflictError("voucher %s is already captured by pending settlement %s",
					v.VoucherNumber, other.SettlementNumber)
			}
		}

		lines = append(lines, settlement.Line{
			VoucherID:     v.ID,
			VoucherNumber: v.VoucherNumber,
			AmountKwd:     v.AmountFor(category),
		})
	}
	return lines, nil
}

// Finalize pays every captured voucher and closes the settlement.
// A voucher that cannot be paid is skipped and reported; the others still commit.
func (s *SettlementService) Finalize(ctx context.Context, id uuid.UUID, req FinalizeSettlementRequest) (*FinalizeResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "settlement", "finalize")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrSettlementID, id.String())

	if req.AccountReference == "" {
		return nil, shared.NewValidationError("account reference is required to finalize a settlement")
	}

	var (
		stl     *settlement.Settlement
		paid    []paidVoucher
		skipped []settlement.SkippedVoucher
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		paid, skipped = nil, nil

		var err error
		stl, err = repos.SettlementRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if !stl.IsPending() {
			return shared.NewInvalidStateError("settlement %s is already %s", stl.SettlementNumber, stl.Status)
		}

		details := PaymentDetails{
			PaymentDate:      time.Now(),
			AccountReference: req.AccountReference,
			Notes:            req.Notes,
		}
		for _, line := range stl.Lines {
			var voucher *landedcost.Voucher
			err := repos.Savepoint(ctx, func(tx TransactionalRepositories) error {
				v, err := tx.VoucherRepo().FindByID(ctx, line.VoucherID)
				if err != nil {
					return err
				}
				if p := v.PartyFor(stl.Category); p == nil || *p != stl.PartyID {
					return shared.NewInvalidStateError("%s party changed since capture", stl.Category)
				}
				if err := payVoucher(ctx, tx, v, stl.Category, line.AmountKwd, details, stl.SettlementNumber); err != nil {
					return err
				}
				voucher = v
				return nil
			})
			if err != nil {
				s.logger.Warn("Skipping voucher in settlement finalize",
					zap.String("settlement_number", stl.SettlementNumber),
					zap.String("voucher_number", line.VoucherNumber),
					zap.Error(err),
				)
				skipped = append(skipped, settlement.SkippedVoucher{
					VoucherID:     line.VoucherID,
					VoucherNumber: line.VoucherNumber,
					Reason:        skipReason(err),
				})
				continue
			}
			paid = append(paid, paidVoucher{voucher: voucher, amount: line.AmountKwd})
		}

		if err := stl.Finalize(req.AccountReference, req.Notes, skipped); err != nil {
			return err
		}
		return repos.SettlementRepo().SaveWithLock(ctx, stl)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrSettlementNumber, stl.SettlementNumber,
		telemetry.SpanAttrVoucherCount, len(paid),
		telemetry.SpanAttrSkippedCount, len(skipped),
	)
	for _, p := range paid {
		s.publishDomainEvents(ctx, p.voucher.PullDomainEvents()...)
		if s.businessMetrics != nil {
			s.businessMetrics.RecordPayablePaid(ctx, string(stl.Category), p.amount)
		}
	}
	s.publishDomainEvents(ctx, stl.PullDomainEvents()...)
	if s.businessMetrics != nil {
		s.businessMetrics.RecordSettlementFinalized(ctx, string(stl.Category), len(skipped))
	}

	result := &FinalizeResult{
		Settlement:        ToSettlementResponse(stl),
		SkippedVoucherIDs: make([]uuid.UUID, 0, len(skipped)),
	}
	for _, sv := range skipped {
		result.SkippedVoucherIDs = append(result.SkippedVoucherIDs, sv.VoucherID)
	}
	return result, nil
}

type paidVoucher struct {
	voucher *landedcost.Voucher
	amount  decimal.Decimal
}

// GetByID retrieves a settlement by ID
func (s *SettlementService) GetByID(ctx context.Context, id uuid.UUID) (*SettlementResponse, error) {
	stl, err := s.settlementRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToSettlementResponse(stl)
	return &response, nil
}

// List retrieves settlements with filtering and pagination
func (s *SettlementService) List(ctx context.Context, filter SettlementListFilter) (shared.Paginated[SettlementResponse], error) {
	domainFilter := settlement.Filter{Filter: shared.DefaultFilter()}
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.PartyType != "" {
		pt := partner.PartyType(filter.PartyType)
		domainFilter.PartyType = &pt
	}
	if filter.Status != "" {
		status := settlement.Status(filter.Status)
		domainFilter.Status = &status
	}
	if filter.PartyID != "" {
		partyID, err := uuid.Parse(filter.PartyID)
		if err != nil {
			return shared.Paginated[SettlementResponse]{}, shared.NewValidationError("invalid party_id %q", filter.PartyID)
		}
		domainFilter.PartyID = &partyID
	}
	domainFilter.Period = filter.Period

	settlements, err := s.settlementRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return shared.Paginated[SettlementResponse]{}, err
	}
	total, err := s.settlementRepo.Count(ctx, domainFilter)
	if err != nil {
		return shared.Paginated[SettlementResponse]{}, err
	}

	items := make([]SettlementResponse, 0, len(settlements))
	for i := range settlements {
		items = append(items, ToSettlementResponse(&settlements[i]))
	}
	return shared.NewPaginated(items, total, domainFilter.Page, domainFilter.Limit()), nil
}

func (s *SettlementService) partyName(ctx context.Context, id uuid.UUID) string {
	party, err := s.parties.GetParty(ctx, id)
	if err != nil {
		s.logger.Warn("Party not resolvable for pending dues",
			zap.String("party_id", id.String()),
			zap.Error(err),
		)
		return ""
	}
	return party.Name
}

func (s *SettlementService) publishDomainEvents(ctx context.Context, events ...shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
}

// resolveCategory maps a payee party type to its category and checks an
// explicitly requested category against it
func resolveCategory(partyType partner.PartyType, category string) (landedcost.PayableCategory, error) {
	if !partyType.IsPayee() {
		return "", shared.NewValidationError("party type %q does not collect landed-cost charges", partyType)
	}
	c, err := landedcost.CategoryForPartyType(partyType)
	if err != nil {
		return "", err
	}
	if category != "" && category != string(c) {
		return "", shared.NewValidationError("category %q does not match party type %q", category, partyType)
	}
	return c, nil
}

func skipReason(err error) string {
	if msg := shared.ErrorMessage(err); msg != "" {
		return msg
	}
	return "payment failed"
}
