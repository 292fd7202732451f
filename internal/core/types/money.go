// Package types provides monetary helpers on top of shopspring/decimal.
package types

import (
	"github.com/shopspring/decimal"
)

// Money is an exact decimal amount.
type Money = decimal.Decimal

func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney panics on malformed input. Use for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func Zero() Money {
	return decimal.Zero
}

// LineAmount returns qty * price without rounding.
func LineAmount(qty int64, price Money) Money {
	return price.Mul(decimal.NewFromInt(qty))
}
