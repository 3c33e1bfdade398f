package money

import "github.com/shopspring/decimal"

const CurrencySymbol = "S/."

// Fixed renders an amount with two decimals, e.g. "28.00".
func Fixed(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Soles renders an amount for humans, e.g. "S/. 28.00".
func Soles(d decimal.Decimal) string {
	return CurrencySymbol + " " + Fixed(d)
}
