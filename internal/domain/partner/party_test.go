package partner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartyType(t *testing.T) {
	tests := []struct {
		partyType PartyType
		valid     bool
		payee     bool
	}{
		{PartyTypeSupplier, true, false},
		{PartyTypeCustomer, true, false},
		{PartyTypeSalesman, true, false},
		{PartyTypeLogistic, true, true},
		{PartyTypePacking, true, true},
		{PartyTypePartner, true, true},
		{PartyType("bank"), false, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.partyType), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.partyType.IsValid())
			assert.Equal(t, tt.payee, tt.partyType.IsPayee())
		})
	}
}
