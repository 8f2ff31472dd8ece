package utils

import (
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var moneyPrinter = message.NewPrinter(language.English)

// FormatMinorAmount renders an amount held in minor units (paise, cents) with
// its currency symbol, e.g. 49900 INR -> "₹ 499.00". Unknown currency codes
// fall back to the upper-cased code followed by the major amount.
func FormatMinorAmount(minor int64, currencyCode string) string {
	code := strings.ToUpper(strings.TrimSpace(currencyCode))
	major := float64(minor) / 100

	unit, err := currency.ParseISO(code)
	if err != nil {
		return moneyPrinter.Sprintf("%s %.2f", code, major)
	}
	return moneyPrinter.Sprint(currency.Symbol(unit.Amount(major)))
}
