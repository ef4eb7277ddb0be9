// Package units converts between human readable decimal amounts and integer base units.
package units

import (
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

// EtherDecimals is the exponent between ether and wei.
const EtherDecimals = 18

var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrNonPositive    = errors.New("amount must be greater than zero")
	plainDecimalRegex = regexp.MustCompile(`^(\d+\.?\d*|\.\d+)$`)
)

// ParseUnits converts a plain decimal string (no sign, exponent or hex) into base units.
// Digits past the exponent are rounded half up.
func ParseUnits(value string, decimals int) (*big.Int, error) {
	value = strings.TrimSpace(value)
	if !plainDecimalRegex.MatchString(value) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, value)
	}

	whole, frac, _ := strings.Cut(value, ".")
	if whole == "" {
		whole = "0"
	}

	if len(frac) > decimals {
		roundUp := frac[decimals] >= '5'
		frac = frac[:decimals]
		result, err := combine(whole, frac, decimals)
		if err != nil {
			return nil, err
		}
		if roundUp {
			result.Add(result, big.NewInt(1))
		}
		return result, nil
	}

	return combine(whole, frac, decimals)
}

func combine(whole, frac string, decimals int) (*big.Int, error) {
	digits := whole + frac + strings.Repeat("0", decimals-len(frac))
	result, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrInvalidAmount, whole, frac)
	}
	return result, nil
}

// ParsePositive parses an amount and rejects anything that is not strictly positive in
// base units.
func ParsePositive(value string, decimals int) (*big.Int, error) {
	amount, err := ParseUnits(value, decimals)
	if err != nil {
		return nil, err
	}
	if amount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: %q", ErrNonPositive, value)
	}
	return amount, nil
}

// FormatUnits renders base units as a decimal string without trailing zeros.
func FormatUnits(amount *big.Int, decimals int) string {
	if amount == nil {
		return "0"
	}

	negative := amount.Sign() < 0
	digits := new(big.Int).Abs(amount).String()
	if len(digits) <= decimals {
		digits = strings.Repeat("0", decimals-len(digits)+1) + digits
	}

	whole := digits[:len(digits)-decimals]
	frac := strings.TrimRight(digits[len(digits)-decimals:], "0")

	out := whole
	if frac != "" {
		out += "." + frac
	}
	if negative {
		out = "-" + out
	}
	return out
}
