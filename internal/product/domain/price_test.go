package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	cases := []struct {
		in       string
		amount   int64
		currency string
	}{
		{"$120.50", 12050, "USD"},
		{"$9.49", 949, "USD"},
		{"$1,250", 125000, "USD"},
		{"500", 50000, "USD"},
		{"₦2,000,000", 200000000, "NGN"},
		{"$12abc", 1200, "USD"},
		{"$0.005", 1, "USD"},
		{"N/A", 0, "USD"},
		{"", 0, "USD"},
		{"-$5", -500, "USD"},
		{"$-5.25", -525, "USD"},
		{"$١٢", 0, "USD"},
		{"$١٢3", 0, "USD"},
		{"$99999999999999999999", 0, "USD"},
		{"$92233720368547758.08", 0, "USD"},
		{"$92233720368547757", 9223372036854775700, "USD"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			p := ParsePrice(tc.in)
			assert.Equal(t, tc.amount, p.Amount)
			assert.Equal(t, tc.currency, p.Currency)
		})
	}
}

func TestPrice_Sum(t *testing.T) {
	total := NewPrice(0, "")
	for _, s := range []string{"$120.50", "$9.49", "N/A"} {
		total = total.Add(ParsePrice(s))
	}
	assert.Equal(t, int64(12999), total.Amount)
	assert.Equal(t, "$129.99", total.String())
}

func TestPrice_JSON(t *testing.T) {
	b, err := json.Marshal(ParsePrice("$500"))
	require.NoError(t, err)
	assert.Equal(t, `"$500.00"`, string(b))

	var p Price
	require.NoError(t, json.Unmarshal([]byte(`42.5`), &p))
	assert.Equal(t, int64(4250), p.Amount)

	require.NoError(t, json.Unmarshal([]byte(`"garbage"`), &p))
	assert.Equal(t, int64(0), p.Amount)
}

func TestPrice_StringExtremes(t *testing.T) {
	assert.Equal(t, "-$92233720368547758.08", Price{Amount: math.MinInt64, Currency: "USD"}.String())
	assert.Equal(t, "$92233720368547758.07", Price{Amount: math.MaxInt64, Currency: "USD"}.String())
	assert.Equal(t, "-$5.00", ParsePrice("-$5").String())
}

func TestFormatPriceInput(t *testing.T) {
	assert.Equal(t, "$1250.99", FormatPriceInput("1,250.999"))
	assert.Equal(t, "$1.23", FormatPriceInput("1.2.3"))
	assert.Equal(t, "$500", FormatPriceInput("$500"))
	assert.Equal(t, "", FormatPriceInput("abc"))
	assert.Equal(t, "$3", FormatPriceInput("١٢3"))
}

func TestCategory(t *testing.T) {
	assert.True(t, ParseCategory(" Furniture ").IsKnown())
	assert.False(t, ParseCategory("boats").IsKnown())
	assert.Len(t, Categories(), 3)
}

func TestErrors(t *testing.T) {
	var err error = &NotFoundError{ID: "x"}
	assert.ErrorIs(t, err, ErrNotFound)

	err = &StoreError{Op: "add", Err: assert.AnError}
	assert.ErrorIs(t, err, ErrStore)
	assert.ErrorIs(t, err, assert.AnError)

	err = NewValidationError("missing required fields", "name", "price")
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Equal(t, "missing required fields (name, price)", err.Error())
}
