package landedcost

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradelog/backend/internal/domain/shared"
)

func ptr(id uuid.UUID) *uuid.UUID {
	return &id
}

func baseInput(poIDs ...uuid.UUID) VoucherInput {
	return VoucherInput{
		PurchaseOrderIDs:  poIDs,
		VoucherDate:       time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		HKToDXBKwd:        d("30.000"),
		DXBToKWIKwd:       d("0.000"),
		PartnerProfitKwd:  d("15.000"),
		PackingChargesKwd: d("0.000"),
		FreightPartyID:    ptr(uuid.New()),
		PartnerPartyID:    ptr(uuid.New()),
	}
}

func scenarioLines(poA, poB uuid.UUID) []PurchaseOrderLineItem {
	return []PurchaseOrderLineItem{
		line(poA, "shirt", 10, "5.000"),
		line(poB, "bag", 5, "8.000"),
	}
}

func createTestVoucher(t *testing.T) *Voucher {
	poA, poB := uuid.New(), uuid.New()
	v, err := NewVoucher("LCV-0001", baseInput(poA, poB), scenarioLines(poA, poB))
	require.NoError(t, err)
	return v
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, code, de.Code)
}

// ============================================
// NewVoucher Tests
// ============================================

func TestNewVoucher(t *testing.T) {
	t.Run("end to end allocation", func(t *testing.T) {
		poA, poB := uuid.New(), uuid.New()
		v, err := NewVoucher("LCV-0001", baseInput(poA, poB), scenarioLines(poA, poB))
		require.NoError(t, err)

		assert.Equal(t, "LCV-0001", v.VoucherNumber)
		assert.Equal(t, poA, v.PrimaryPurchaseOrderID())
		assert.Equal(t, int64(15), v.TotalQuantity())
		assert.Equal(t, "30.000", v.TotalFreightKwd.StringFixed(3))
		assert.Equal(t, "45.000", v.GrandTotalKwd.StringFixed(3))
		require.Len(t, v.LineItems, 2)
		assert.Equal(t, "2.000", v.LineItems[0].FreightPerUnitKwd.StringFixed(3))
		assert.Equal(t, "1.000", v.LineItems[0].PartnerProfitPerUnitKwd.StringFixed(3))
		assert.Equal(t, "8.000", v.LineItems[0].LandedCostPerUnitKwd.StringFixed(3))
		assert.Equal(t, "80.000", v.LineItems[0].TotalLandedCostKwd.StringFixed(3))
		assert.Equal(t, 1, v.GetVersion())

		events := v.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeVoucherCreated, events[0].EventType())
	})

	t.Run("grand total sums both freight legs", func(t *testing.T) {
		in := baseInput(uuid.New())
		in.HKToDXBKwd = d("12.345")
		in.DXBToKWIKwd = d("7.655")
		in.PackingChargesKwd = d("3.5")
		v, err := NewVoucher("LCV-0002", in, nil)
		require.NoError(t, err)
		assert.Equal(t, "20.000", v.TotalFreightKwd.StringFixed(3))
		assert.Equal(t, "38.500", v.GrandTotalKwd.StringFixed(3))
	})

	t.Run("requires a purchase order", func(t *testing.T) {
		_, err := NewVoucher("LCV-0001", baseInput(), nil)
		assertCode(t, err, shared.CodeValidation)
		assert.Contains(t, err.Error(), "no purchase order selected")
	})

	t.Run("rejects duplicate purchase orders", func(t *testing.T) {
		po := uuid.New()
		_, err := NewVoucher("LCV-0001", baseInput(po, po), nil)
		assertCode(t, err, shared.CodeValidation)
	})

	t.Run("rejects negative charges", func(t *testing.T) {
		in := baseInput(uuid.New())
		in.PartnerProfitKwd = d("-1")
		_, err := NewVoucher("LCV-0001", in, nil)
		assertCode(t, err, shared.CodeValidation)

		in = baseInput(uuid.New())
		in.DXBToKWIKwd = d("-0.5")
		_, err = NewVoucher("LCV-0001", in, nil)
		assertCode(t, err, shared.CodeValidation)
	})

	t.Run("requires freight party when freight is charged", func(t *testing.T) {
		in := baseInput(uuid.New())
		in.FreightPartyID = nil
		_, err := NewVoucher("LCV-0001", in, nil)
		assertCode(t, err, shared.CodeValidation)
	})

	t.Run("rejects negative quantities", func(t *testing.T) {
		po := uuid.New()
		_, err := NewVoucher("LCV-0001", baseInput(po), []PurchaseOrderLineItem{line(po, "x", -1, "1")})
		assertCode(t, err, shared.CodeValidation)
	})

	t.Run("requires number and date", func(t *testing.T) {
		_, err := NewVoucher("", baseInput(uuid.New()), nil)
		assertCode(t, err, shared.CodeValidation)

		in := baseInput(uuid.New())
		in.VoucherDate = time.Time{}
		_, err = NewVoucher("LCV-0001", in, nil)
		assertCode(t, err, shared.CodeValidation)
	})
}

func TestNewVoucher_DefaultPaidRule(t *testing.T) {
	t.Run("partner without party is paid", func(t *testing.T) {
		in := baseInput(uuid.New())
		in.PartnerPartyID = nil
		in.PartnerProfitKwd = d("50.000")
		v, err := NewVoucher("LCV-0001", in, nil)
		require.NoError(t, err)
		assert.Equal(t, PayableStatusPaid, v.Payable(CategoryPartner).Status)
		assert.False(t, v.Payable(CategoryPartner).IsSettled())
	})

	t.Run("partner with party is pending", func(t *testing.T) {
		in := baseInput(uuid.New())
		in.PartnerProfitKwd = d("50.000")
		v, err := NewVoucher("LCV-0001", in, nil)
		require.NoError(t, err)
		assert.Equal(t, PayableStatusPending, v.Payable(CategoryPartner).Status)
	})

	t.Run("zero amount with party is paid", func(t *testing.T) {
		in := baseInput(uuid.New())
		in.PackingPartyID = ptr(uuid.New())
		v, err := NewVoucher("LCV-0001", in, nil)
		require.NoError(t, err)
		assert.Equal(t, PayableStatusPaid, v.Payable(CategoryPacking).Status)
	})

	t.Run("freight is pending whenever charged", func(t *testing.T) {
		v := createTestVoucher(t)
		assert.Equal(t, PayableStatusPending, v.Payable(CategoryFreight).Status)
	})

	t.Run("no freight charged is paid", func(t *testing.T) {
		in := baseInput(uuid.New())
		in.HKToDXBKwd = decimal.Zero
		in.FreightPartyID = nil
		v, err := NewVoucher("LCV-0001", in, nil)
		require.NoError(t, err)
		assert.Equal(t, PayableStatusPaid, v.Payable(CategoryFreight).Status)
	})
}

// ============================================
// Pay Tests
// ============================================

func TestVoucher_Pay(t *testing.T) {
	t.Run("pays a pending category", func(t *testing.T) {
		v := createTestVoucher(t)
		v.ClearDomainEvents()
		paymentID := uuid.New()
		paidAt := time.Now()

		require.NoError(t, v.Pay(CategoryPartner, paymentID, paidAt))

		p := v.Payable(CategoryPartner)
		assert.Equal(t, PayableStatusPaid, p.Status)
		assert.Equal(t, paymentID, *p.PaymentID)
		assert.True(t, p.IsSettled())
		assert.Equal(t, PayableStatusPending, v.Payable(CategoryFreight).Status)
		assert.Equal(t, 2, v.GetVersion())

		events := v.GetDomainEvents()
		require.Len(t, events, 1)
		paid := events[0].(*VoucherPayablePaidEvent)
		assert.Equal(t, CategoryPartner, paid.Category)
		assert.Equal(t, "15.000", paid.AmountKwd.StringFixed(3))
	})

	t.Run("second payment is rejected without changes", func(t *testing.T) {
		v := createTestVoucher(t)
		require.NoError(t, v.Pay(CategoryFreight, uuid.New(), time.Now()))
		before := v.Payable(CategoryFreight)
		version := v.GetVersion()

		err := v.Pay(CategoryFreight, uuid.New(), time.Now())

		assertCode(t, err, shared.CodeInvalidState)
		assert.Equal(t, before, v.Payable(CategoryFreight))
		assert.Equal(t, version, v.GetVersion())
	})

	t.Run("categories are independent", func(t *testing.T) {
		in := baseInput(uuid.New())
		in.PackingChargesKwd = d("4")
		in.PackingPartyID = ptr(uuid.New())
		v, err := NewVoucher("LCV-0003", in, nil)
		require.NoError(t, err)

		require.NoError(t, v.Pay(CategoryPacking, uuid.New(), time.Now()))
		require.NoError(t, v.Pay(CategoryFreight, uuid.New(), time.Now()))
		assert.Equal(t, PayableStatusPending, v.Payable(CategoryPartner).Status)
		require.NoError(t, v.Pay(CategoryPartner, uuid.New(), time.Now()))
	})

	t.Run("nothing to collect", func(t *testing.T) {
		v := createTestVoucher(t)
		assertCode(t, v.Pay(CategoryPacking, uuid.New(), time.Now()), shared.CodeInvalidState)
	})

	t.Run("no party", func(t *testing.T) {
		in := baseInput(uuid.New())
		in.PartnerPartyID = nil
		v, err := NewVoucher("LCV-0001", in, nil)
		require.NoError(t, err)
		assertCode(t, v.Pay(CategoryPartner, uuid.New(), time.Now()), shared.CodeInvalidState)
	})

	t.Run("unknown category", func(t *testing.T) {
		v := createTestVoucher(t)
		assertCode(t, v.Pay(PayableCategory("tax"), uuid.New(), time.Now()), shared.CodeValidation)
	})
}

// ============================================
// Revise Tests
// ============================================

func TestVoucher_Revise(t *testing.T) {
	t.Run("re-runs allocation and statuses", func(t *testing.T) {
		v := createTestVoucher(t)
		in := baseInput(v.PurchaseOrderIDs...)
		in.FreightPartyID = v.PartyFor(CategoryFreight)
		in.PartnerPartyID = nil
		in.HKToDXBKwd = d("45")

		require.NoError(t, v.Revise(in, v.PersistedLines()))

		assert.Equal(t, "3.000", v.LineItems[0].FreightPerUnitKwd.StringFixed(3))
		assert.Equal(t, "60.000", v.GrandTotalKwd.StringFixed(3))
		assert.Equal(t, PayableStatusPaid, v.Payable(CategoryPartner).Status)
		assert.Equal(t, 2, v.GetVersion())
	})

	t.Run("settled category keeps paid status", func(t *testing.T) {
		v := createTestVoucher(t)
		require.NoError(t, v.Pay(CategoryPartner, uuid.New(), time.Now()))
		in := baseInput(v.PurchaseOrderIDs...)
		in.FreightPartyID = v.PartyFor(CategoryFreight)
		in.PartnerPartyID = v.PartyFor(CategoryPartner)
		in.HKToDXBKwd = d("60")

		require.NoError(t, v.Revise(in, v.PersistedLines()))
		assert.True(t, v.Payable(CategoryPartner).IsSettled())
		assert.Equal(t, "60.000", v.TotalFreightKwd.StringFixed(3))
	})

	t.Run("settled category amount cannot change", func(t *testing.T) {
		v := createTestVoucher(t)
		require.NoError(t, v.Pay(CategoryPartner, uuid.New(), time.Now()))
		in := baseInput(v.PurchaseOrderIDs...)
		in.FreightPartyID = v.PartyFor(CategoryFreight)
		in.PartnerPartyID = v.PartyFor(CategoryPartner)
		in.PartnerProfitKwd = d("20")

		assertCode(t, v.Revise(in, v.PersistedLines()), shared.CodeInvalidState)
		assert.Equal(t, "15.000", v.TotalPartnerProfitKwd.StringFixed(3))
	})

	t.Run("settled category party cannot change", func(t *testing.T) {
		v := createTestVoucher(t)
		require.NoError(t, v.Pay(CategoryFreight, uuid.New(), time.Now()))
		in := baseInput(v.PurchaseOrderIDs...)
		in.PartnerPartyID = v.PartyFor(CategoryPartner)

		assertCode(t, v.Revise(in, v.PersistedLines()), shared.CodeInvalidState)
	})

	t.Run("persisted lines keep quantities", func(t *testing.T) {
		v := createTestVoucher(t)
		lines := v.PersistedLines()
		require.Len(t, lines, 2)
		assert.Equal(t, int64(10), lines[0].Quantity)
		assert.Equal(t, "5.000", lines[0].UnitPriceKwd.StringFixed(3))
		assert.Equal(t, v.LineItems[0].SourceLineItemID, lines[0].ID)
	})
}

func TestVoucher_HasSamePurchaseOrders(t *testing.T) {
	v := createTestVoucher(t)
	ids := v.PurchaseOrderIDs
	assert.True(t, v.HasSamePurchaseOrders([]uuid.UUID{ids[1], ids[0]}))
	assert.False(t, v.HasSamePurchaseOrders([]uuid.UUID{ids[0]}))
	assert.False(t, v.HasSamePurchaseOrders([]uuid.UUID{ids[0], uuid.New()}))
}

func TestVoucher_MarkDeleted(t *testing.T) {
	t.Run("unpaid voucher can be deleted", func(t *testing.T) {
		v := createTestVoucher(t)
		v.ClearDomainEvents()
		require.NoError(t, v.MarkDeleted())
		require.Len(t, v.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeVoucherDeleted, v.GetDomainEvents()[0].EventType())
	})

	t.Run("voucher with a payment conflicts", func(t *testing.T) {
		v := createTestVoucher(t)
		require.NoError(t, v.Pay(CategoryFreight, uuid.New(), time.Now()))
		assertCode(t, v.MarkDeleted(), shared.CodeConflict)
	})
}
