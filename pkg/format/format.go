// Package format renders KPI values the way the calculator displays them:
// US-locale digit grouping, rounding the exact binary value half away from
// zero (so 0.15, stored as 0.1499..., shows as "0.1").
package format

import (
	"math"
	"math/big"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// Currency returns a whole-dollar currency string with thousands separators
// (e.g., "$129,480", "-$1,234").
func Currency(amount float64) string {
	return withSign(amount, "$"+grouped(amount, 0))
}

// CurrencyCents returns a currency string with cents (e.g., "$0.65", "$1,250.50").
func CurrencyCents(amount float64) string {
	return withSign(amount, "$"+grouped(amount, 2))
}

// Number returns a grouped number with a fixed number of decimals
// (e.g., "1.50", "12,480").
func Number(value float64, places int32) string {
	return withSign(value, grouped(value, places))
}

// Percent returns a percentage with one decimal place (e.g., "85.6%").
func Percent(value float64) string {
	return Number(value, 1) + "%"
}

// withSign prefixes negative values, including those that round to zero,
// matching the browser's Intl output ("-$0").
func withSign(value float64, body string) string {
	if value < 0 {
		return "-" + body
	}
	return body
}

func grouped(value float64, places int32) string {
	d := exact(value).Abs().Round(places)
	intPart := d.IntPart()
	out := printer.Sprintf("%d", intPart)
	if places <= 0 {
		return out
	}
	frac := d.Sub(decimal.NewFromInt(intPart)).StringFixed(places)
	// frac is "0.xx"
	return out + frac[1:]
}

// exact returns the decimal holding exactly the binary value of f, rather
// than the shortest string that parses back to f.
func exact(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	frac, exp := math.Frexp(f)
	mant := big.NewInt(int64(math.Ldexp(frac, 53)))
	exp -= 53
	if exp >= 0 {
		return decimal.NewFromBigInt(mant.Lsh(mant, uint(exp)), 0)
	}
	// mant / 2^n == mant * 5^n / 10^n
	n := int64(-exp)
	scaled := new(big.Int).Exp(big.NewInt(5), big.NewInt(n), nil)
	return decimal.NewFromBigInt(scaled.Mul(scaled, mant), int32(exp))
}
