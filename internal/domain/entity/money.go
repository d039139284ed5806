package entity

import (
	"strings"

	"github.com/shopspring/decimal"
)

var zeroDecimalCurrencies = map[string]bool{
	"JPY": true, "KRW": true, "VND": true, "CLP": true, "ISK": true, "UGX": true,
}

func currencyExponent(currency string) int32 {
	if zeroDecimalCurrencies[strings.ToUpper(currency)] {
		return 0
	}
	return 2
}

// ToMinorUnits converts a major-unit amount to the gateway's smallest unit, rounding half away from zero.
func ToMinorUnits(amount float64, currency string) int64 {
	exp := currencyExponent(currency)
	return decimal.NewFromFloat(amount).Shift(exp).Round(0).IntPart()
}

// FromMinorUnits converts a smallest-unit amount back to major units.
func FromMinorUnits(amount int64, currency string) float64 {
	f, _ := decimal.New(amount, -currencyExponent(currency)).Float64()
	return f
}

// SameAmount compares two major-unit amounts at the currency's precision.
func SameAmount(a, b float64, currency string) bool {
	return ToMinorUnits(a, currency) == ToMinorUnits(b, currency)
}
