package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

const DefaultCurrency = "USD"

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"NGN": "₦",
}

// Price is an amount in minor units (cents) plus an ISO currency code. The display
// string is derived by String and is what JSON and the text DB column carry.
type Price struct {
	Amount   int64
	Currency string
}

func NewPrice(minor int64, currency string) Price {
	if currency == "" {
		currency = DefaultCurrency
	}
	return Price{Amount: minor, Currency: currency}
}

// maxWhole keeps whole*100 + 99 (+1 for rounding) inside int64.
const maxWhole = (math.MaxInt64 - 100) / 100

// ParsePrice reads a display price such as "$1,250.99" or "-$5". A leading sign may sit
// before or after the currency symbol. Thousands separators are stripped and the leading
// ASCII numeric part is used. Text with no numeric prefix ("N/A", ""), or with more whole
// units than fit in int64 minor units, parses to zero; this never fails.
func ParsePrice(s string) Price {
	s = strings.TrimSpace(s)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = strings.TrimSpace(s[1:])
	}
	currency := DefaultCurrency
	for code, sym := range currencySymbols {
		if strings.HasPrefix(s, sym) {
			currency = code
			s = strings.TrimPrefix(s, sym)
			break
		}
	}
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if !neg && strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}

	var whole, frac int64
	fracDigits := 0
	seenDot := false
	roundUp := false
scan:
	for _, r := range s {
		switch {
		case r == '.' && !seenDot:
			seenDot = true
		case '0' <= r && r <= '9':
			d := int64(r - '0')
			if !seenDot {
				if whole > (maxWhole-d)/10 {
					return Price{Currency: currency}
				}
				whole = whole*10 + d
			} else if fracDigits < 2 {
				frac = frac*10 + d
				fracDigits++
			} else if fracDigits == 2 {
				roundUp = d >= 5
				fracDigits++
			}
		default:
			break scan
		}
	}
	for ; fracDigits < 2; fracDigits++ {
		frac *= 10
	}
	amount := whole*100 + frac
	if roundUp {
		amount++
	}
	if neg {
		amount = -amount
	}
	return Price{Amount: amount, Currency: currency}
}

func (p Price) Add(o Price) Price {
	cur := p.Currency
	if cur == "" {
		cur = o.Currency
	}
	return Price{Amount: p.Amount + o.Amount, Currency: cur}
}

func (p Price) String() string {
	cur := p.Currency
	if cur == "" {
		cur = DefaultCurrency
	}
	sign := ""
	amt := uint64(p.Amount)
	if p.Amount < 0 {
		sign = "-"
		amt = -amt
	}
	num := fmt.Sprintf("%d.%02d", amt/100, amt%100)
	if sym, ok := currencySymbols[cur]; ok {
		return sign + sym + num
	}
	return sign + cur + " " + num
}

func (p Price) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON accepts the display string and, for hand-edited files, a bare number.
func (p *Price) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("price: %w", err)
		}
		s = n.String()
	}
	*p = ParsePrice(s)
	return nil
}

// FormatPriceInput mirrors the admin price field behaviour: keep digits and one decimal
// point, at most two decimals, and prefix the dollar sign.
func FormatPriceInput(raw string) string {
	var b strings.Builder
	seenDot := false
	decimals := 0
	for _, r := range raw {
		switch {
		case '0' <= r && r <= '9':
			if seenDot {
				if decimals == 2 {
					continue
				}
				decimals++
			}
			b.WriteRune(r)
		case r == '.' && !seenDot:
			seenDot = true
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return ""
	}
	return "$" + b.String()
}
