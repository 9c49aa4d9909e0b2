package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// FormatMoney prints an amount held in minor units as major units with
// two decimals, e.g. "BDT 600.00".
func FormatMoney(minor decimal.Decimal, currency string) string {
	return fmt.Sprintf("%s %s", currency, minor.Shift(-2).StringFixed(2))
}
