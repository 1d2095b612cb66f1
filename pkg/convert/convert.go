// Package convert renders extracted amounts in the target currency.
package convert

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/tinyland-inc/rainrelay/pkg/rates"
)

var usdValue = regexp.MustCompile(`\$\s?([\d,]+(?:\.\d+)?)`)

// Converter turns dollar-tagged amount strings into a dual-currency
// display form using the live rate cache.
type Converter struct {
	cache  *rates.Cache
	symbol string
}

// DefaultSymbol is the display symbol for the target currency.
const DefaultSymbol = "₹"

func New(cache *rates.Cache, symbol string) *Converter {
	if symbol == "" {
		symbol = DefaultSymbol
	}
	return &Converter{cache: cache, symbol: symbol}
}

// Display converts the first dollar value in amount into the target
// currency and renders "<sym><converted> ($<usd>) <currency>". The
// currency suffix is appended whenever the code is non-empty,
// including the CRYPTO sentinel. Amounts without a dollar value are
// returned unchanged.
func (c *Converter) Display(ctx context.Context, amount, currency string) string {
	m := usdValue.FindStringSubmatch(amount)
	if m == nil {
		return amount
	}

	usd, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return amount
	}

	converted := usd * c.cache.Rate(ctx)

	var b strings.Builder
	b.WriteString(c.symbol)
	b.WriteString(FormatMoney(converted))
	b.WriteString(" ($")
	b.WriteString(FormatMoney(usd))
	b.WriteString(")")
	if currency != "" {
		b.WriteString(" ")
		b.WriteString(currency)
	}
	return b.String()
}

// FormatMoney renders a non-negative value with two decimals and
// comma-grouped thousands, e.g. 9000 -> "9,000.00".
func FormatMoney(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	whole, frac, _ := strings.Cut(s, ".")

	neg := strings.HasPrefix(whole, "-")
	if neg {
		whole = whole[1:]
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, d := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}
