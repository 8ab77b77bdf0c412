package partner

import (
	"context"

	"github.com/google/uuid"
)

// PartyType classifies a counter-party in the external directory
type PartyType string

const (
	PartyTypeSupplier PartyType = "supplier"
	PartyTypeCustomer PartyType = "customer"
	PartyTypeSalesman PartyType = "salesman"
	PartyTypeLogistic PartyType = "logistic" // Freight forwarder, paid for freight legs
	PartyTypePacking  PartyType = "packing"
	PartyTypePartner  PartyType = "partner" // Profit-sharing partner
)

// IsValid returns true if the party type is known
func (t PartyType) IsValid() bool {
	switch t {
	case PartyTypeSupplier, PartyTypeCustomer, PartyTypeSalesman,
		PartyTypeLogistic, PartyTypePacking, PartyTypePartner:
		return true
	}
	return false
}

// IsPayee returns true if parties of this type can receive landed-cost payments
func (t PartyType) IsPayee() bool {
	return t == PartyTypeLogistic || t == PartyTypePacking || t == PartyTypePartner
}

// Party is the read-only view of a directory record.
// Its lifecycle is owned by the directory, never by this service.
type Party struct {
	ID   uuid.UUID
	Name string
	Type PartyType
}

// PartyDirectory looks parties up by id.
// GetParty returns shared.ErrNotFound when the id is unknown.
type PartyDirectory interface {
	GetParty(ctx context.Context, id uuid.UUID) (*Party, error)
}
