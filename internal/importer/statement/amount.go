package statement

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// parseEuropeanDecimal parses "1.234,56" style numbers.
func parseEuropeanDecimal(s string) (decimal.Decimal, error) {
	clean := strings.ReplaceAll(s, " ", "")
	clean = strings.TrimSuffix(clean, "EUR")
	clean = strings.ReplaceAll(clean, ".", "")
	clean = strings.ReplaceAll(clean, ",", ".")

	return decimal.NewFromString(clean)
}

// parseEuropeanAmount parses a European-formatted amount string into cents.
// "1.234,56" -> 123456, "-588,74" -> -58874, "10,00" -> 1000.
func parseEuropeanAmount(s string) (int64, error) {
	d, err := parseEuropeanDecimal(s)
	if err != nil {
		return 0, err
	}

	return d.Mul(hundred).Round(0).IntPart(), nil
}
