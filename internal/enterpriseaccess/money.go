package enterpriseaccess

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// parseUSD reads a JSON number (or empty) as an exact decimal.
func parseUSD(n json.Number) (decimal.Decimal, error) {
	if n == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(n.String())
}
