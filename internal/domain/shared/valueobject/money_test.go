package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoneyScale(t *testing.T) {
	assert.Equal(t, int32(3), MoneyScale)
	assert.Equal(t, int32(2), currencyScale("USD"))
}

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid amount and currency", func(t *testing.T) {
		m, err := NewMoney(decimal.RequireFromString("100.5"), KWD)
		require.NoError(t, err)
		assert.Equal(t, KWD, m.Currency())
		assert.Equal(t, "100.500", m.StringFixed())
	})

	t.Run("returns error for empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(100), "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "currency cannot be empty")
	})

	t.Run("invalid string", func(t *testing.T) {
		_, err := NewMoneyFromString("not-a-number", KWD)
		assert.Error(t, err)
	})
}

func TestMoney_DivideRound(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		divisor  int64
		expected string
	}{
		{"exact", "300", 30, "10.000"},
		{"repeating third", "100", 3, "33.333"},
		{"half rounds away from zero", "0.0025", 1, "0.003"},
		{"two thirds", "2", 3, "0.667"},
		{"negative half", "-0.0025", 1, "-0.003"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MustKWD(tt.amount).DivideRound(tt.divisor)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got.StringFixed())
		})
	}

	t.Run("zero divisor", func(t *testing.T) {
		_, err := MustKWD("1").DivideRound(0)
		assert.Error(t, err)
	})
}

func TestMoney_Arithmetic(t *testing.T) {
	a := MustKWD("1.105")
	b := MustKWD("0.2")

	assert.Equal(t, "1.305", a.Add(b).StringFixed())
	assert.Equal(t, "0.905", a.Subtract(b).StringFixed())
	assert.Equal(t, "4.420", a.MultiplyByInt(4).StringFixed())
	assert.Equal(t, "1.305", Sum(a, b, ZeroKWD()).StringFixed())
	assert.True(t, a.GreaterThan(b))
	assert.True(t, MustKWD("1.1000").Equals(MustKWD("1.1")))
	assert.Equal(t, "0.001", MustKWD("0.0005").Round3().StringFixed())
}

func TestMoney_JSON(t *testing.T) {
	t.Run("marshals as fixed string", func(t *testing.T) {
		data, err := json.Marshal(MustKWD("12.5"))
		require.NoError(t, err)
		assert.Equal(t, `"12.500"`, string(data))
	})

	t.Run("unmarshals string and number", func(t *testing.T) {
		var fromString, fromNumber Money
		require.NoError(t, json.Unmarshal([]byte(`"7.25"`), &fromString))
		require.NoError(t, json.Unmarshal([]byte(`7.25`), &fromNumber))
		assert.True(t, fromString.Equals(fromNumber))
		assert.Equal(t, KWD, fromNumber.Currency())
	})

	t.Run("rejects non numeric", func(t *testing.T) {
		var m Money
		assert.Error(t, json.Unmarshal([]byte(`"abc"`), &m))
	})
}

func TestMoney_ValueScan(t *testing.T) {
	v, err := MustKWD("3.1").Value()
	require.NoError(t, err)
	assert.Equal(t, "3.100", v)

	var m Money
	require.NoError(t, m.Scan([]byte("9.999")))
	assert.Equal(t, "9.999", m.StringFixed())
	require.NoError(t, m.Scan(nil))
	assert.True(t, m.IsZero())
	assert.Error(t, m.Scan(struct{}{}))
}
