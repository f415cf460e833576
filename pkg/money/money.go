// Package money converts between human decimal strings and integer atomic
// units. Atomic values are *big.Int throughout; nothing here touches floats.
package money

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrMalformedAmount = errors.New("malformed amount")
	ErrInvalidScale    = errors.New("invalid asset scale")
)

var (
	humanPattern  = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)$`)
	atomicPattern = regexp.MustCompile(`^[+-]?\d+$`)
)

// Amount is a value in atomic units of an asset.
type Amount struct {
	Value      *big.Int
	AssetCode  string
	AssetScale int
}

// Human renders the amount at its own scale.
func (a Amount) Human() string {
	return ToHuman(a.Value, a.AssetScale)
}

// ToAtomic parses a human decimal string into atomic units at scale.
// Fractional digits beyond scale are truncated, never rounded. Empty input is zero.
func ToAtomic(human string, scale int) (*big.Int, error) {
	if err := checkScale(scale); err != nil {
		return nil, err
	}
	human = strings.TrimSpace(human)
	if human == "" {
		return new(big.Int), nil
	}
	if !humanPattern.MatchString(human) {
		return nil, fmt.Errorf("%w: %q", ErrMalformedAmount, human)
	}

	sign := ""
	switch human[0] {
	case '-':
		sign = "-"
		human = human[1:]
	case '+':
		human = human[1:]
	}
	intPart, fracPart, _ := strings.Cut(human, ".")
	if intPart == "" {
		intPart = "0"
	}
	normalized := sign + intPart
	if fracPart != "" {
		normalized += "." + fracPart
	}

	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedAmount, err)
	}
	return d.Shift(int32(scale)).Truncate(0).BigInt(), nil
}

// ToHuman renders atomic units as a fixed-point string with exactly scale
// fractional digits. The sign applies to the whole string.
func ToHuman(atomic *big.Int, scale int) string {
	if atomic == nil {
		atomic = new(big.Int)
	}
	if scale < 0 || scale > math.MaxInt32 {
		scale = 0
	}
	return decimal.NewFromBigInt(atomic, -int32(scale)).StringFixed(int32(scale))
}

// ParseAtomic parses an integer string as sent by the payment network.
func ParseAtomic(value string) (*big.Int, error) {
	value = strings.TrimSpace(value)
	if !atomicPattern.MatchString(value) {
		return nil, fmt.Errorf("%w: %q is not an integer", ErrMalformedAmount, value)
	}
	v, ok := new(big.Int).SetString(strings.TrimPrefix(value, "+"), 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMalformedAmount, value)
	}
	return v, nil
}

// Sum adds values; nil entries count as zero.
func Sum(values ...*big.Int) *big.Int {
	total := new(big.Int)
	for _, v := range values {
		if v != nil {
			total.Add(total, v)
		}
	}
	return total
}

// Neg returns -v without modifying v.
func Neg(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Neg(v)
}

func checkScale(scale int) error {
	if scale < 0 || scale > math.MaxInt32 {
		return fmt.Errorf("%w: %d", ErrInvalidScale, scale)
	}
	return nil
}
