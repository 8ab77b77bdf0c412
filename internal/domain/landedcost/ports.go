package landedcost

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseOrderDirectory serves purchase order data owned by the trade module
type PurchaseOrderDirectory interface {
	// ListLineItems returns the line items of one purchase order;
	// shared.ErrNotFound when the order is unknown
	ListLineItems(ctx context.Context, purchaseOrderID uuid.UUID) ([]PurchaseOrderLineItem, error)
	GetSupplierName(ctx context.Context, purchaseOrderID uuid.UUID) (string, error)
}

// NumberGenerator hands out strictly increasing document numbers
type NumberGenerator interface {
	NextVoucherNumber(ctx context.Context) (string, error)
	NextSettlementNumber(ctx context.Context) (string, error)
}

// PaymentType labels a payment record by the category it settles
type PaymentType string

// PaymentTypeFor returns the payment type recorded for a category
func PaymentTypeFor(c PayableCategory) PaymentType {
	return PaymentType("landed_cost_" + string(c))
}

// PaymentRecord is what the payment sink stores for one payable
type PaymentRecord struct {
	PayeeID   uuid.UUID
	AmountKwd decimal.Decimal
	Date      time.Time
	Type      PaymentType
	Reference string // Voucher or settlement number
	Account   string // Funding account reference
	Notes     string
}

// PaymentSink records outgoing payments and returns the payment id
type PaymentSink interface {
	RecordPayment(ctx context.Context, payment PaymentRecord) (uuid.UUID, error)
}
