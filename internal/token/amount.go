// Package token holds the value types the client validates before anything
// reaches the wallet provider: addresses and decimal token amounts.
package token

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
)

// Amount errors.
var (
	ErrAmountFormat    = errors.New("amount must be a non-negative decimal number")
	ErrAmountPrecision = errors.New("amount has more decimal places than the token supports")
	ErrAmountRange     = errors.New("amount does not fit in uint256")
	ErrAmountZero      = errors.New("amount must be greater than zero")
)

// ParseAmount converts a user-supplied decimal string such as "1.5" into base
// units for a token with the given decimals. The conversion is exact.
func ParseAmount(s string, decimals uint8) (*big.Int, error) {
	whole, frac, hasDot := strings.Cut(s, ".")
	if whole == "" || (hasDot && frac == "") || !allDigits(whole) || !allDigits(frac) {
		return nil, fmt.Errorf("%w: %q", ErrAmountFormat, s)
	}
	// Zeros past the last significant digit do not change the value.
	frac = strings.TrimRight(frac, "0")
	if len(frac) > int(decimals) {
		return nil, fmt.Errorf("%w: %q has %d, max %d", ErrAmountPrecision, s, len(frac), decimals)
	}

	digits := whole + frac + strings.Repeat("0", int(decimals)-len(frac))
	v, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrAmountFormat, s)
	}
	if _, overflow := uint256.FromBig(v); overflow {
		return nil, fmt.Errorf("%w: %q", ErrAmountRange, s)
	}
	return v, nil
}

// ParsePositiveAmount is ParseAmount that also rejects zero.
func ParsePositiveAmount(s string, decimals uint8) (*big.Int, error) {
	v, err := ParseAmount(s, decimals)
	if err != nil {
		return nil, err
	}
	if v.Sign() == 0 {
		return nil, fmt.Errorf("%w: %q", ErrAmountZero, s)
	}
	return v, nil
}

// FormatUnits renders base units as a decimal string with exactly decimals
// fractional digits: FormatUnits(1000, 3) == "1.000".
func FormatUnits(v *big.Int, decimals uint8) string {
	if v == nil {
		return "0"
	}
	sign := ""
	abs := new(big.Int).Set(v)
	if abs.Sign() < 0 {
		sign = "-"
		abs.Neg(abs)
	}
	if decimals == 0 {
		return sign + abs.String()
	}

	div := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	q, r := new(big.Int).QuoRem(abs, div, new(big.Int))
	frac := r.String()
	frac = strings.Repeat("0", int(decimals)-len(frac)) + frac
	return sign + q.String() + "." + frac
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
