package shared

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// RupeeSymbol prefixes formatted amounts
const RupeeSymbol = "₹"

var inrPrinter = message.NewPrinter(language.MustParse("en-IN"))

// FormatRupees formats an amount with Indian digit grouping and two
// decimals, e.g. 1180.5 -> "₹1,180.50".
func FormatRupees(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Abs()
	}
	return sign + RupeeSymbol + FormatAmount(amount)
}

// FormatAmount formats an amount like FormatRupees without the symbol
func FormatAmount(amount decimal.Decimal) string {
	f := amount.Round(2).InexactFloat64()
	return inrPrinter.Sprint(number.Decimal(f, number.Scale(2)))
}
