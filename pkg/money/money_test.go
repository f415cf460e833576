package money

import (
	"math/big"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToAtomic(t *testing.T) {
	tests := []struct {
		name  string
		human string
		scale int
		want  string
	}{
		{"whole", "12", 2, "1200"},
		{"exact fraction", "12.34", 2, "1234"},
		{"short fraction padded", "12.3", 2, "1230"},
		{"long fraction truncated", "12.349", 2, "1234"},
		{"negative", "-12.34", 2, "-1234"},
		{"negative truncated toward zero", "-0.019", 2, "-1"},
		{"explicit plus", "+5.5", 1, "55"},
		{"leading dot", ".5", 2, "50"},
		{"trailing dot", "7.", 2, "700"},
		{"scale zero", "42.99", 0, "42"},
		{"empty is zero", "", 2, "0"},
		{"whitespace is zero", "   ", 9, "0"},
		{"zero", "0.00", 2, "0"},
		{"scale 18", "1.000000000000000001", 18, "1000000000000000001"},
		{"beyond int64", "123456789012345678901234567890.12", 2, "12345678901234567890123456789012"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToAtomic(tt.human, tt.scale)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestToAtomic_Malformed(t *testing.T) {
	for _, in := range []string{"abc", "1.2.3", "--1", "1e5", "12,34", ".", "-", "0x10", "1 000"} {
		t.Run(in, func(t *testing.T) {
			_, err := ToAtomic(in, 2)
			assert.ErrorIs(t, err, ErrMalformedAmount)
		})
	}
}

func TestToAtomic_InvalidScale(t *testing.T) {
	_, err := ToAtomic("1", -1)
	assert.ErrorIs(t, err, ErrInvalidScale)
}

func TestToHuman(t *testing.T) {
	tests := []struct {
		atomic string
		scale  int
		want   string
	}{
		{"1234", 2, "12.34"},
		{"5", 2, "0.05"},
		{"-5", 2, "-0.05"},
		{"-1234", 2, "-12.34"},
		{"0", 2, "0.00"},
		{"1200", 0, "1200"},
		{"1000000000000000001", 18, "1.000000000000000001"},
	}

	for _, tt := range tests {
		t.Run(tt.atomic, func(t *testing.T) {
			v, ok := new(big.Int).SetString(tt.atomic, 10)
			require.True(t, ok)
			assert.Equal(t, tt.want, ToHuman(v, tt.scale))
		})
	}

	assert.Equal(t, "0.00", ToHuman(nil, 2))
}

// toHuman(toAtomic(s, n), n) equals s once both are normalized.
func TestRoundTrip(t *testing.T) {
	inputs := []string{"0", "1", "-1", "12.34", "-12.3", "0.001", "999999999999.999999", "-0.000000000000000001", "3.10"}
	for _, scale := range []int{0, 2, 6, 18} {
		for _, in := range inputs {
			frac := ""
			if _, f, ok := strings.Cut(in, "."); ok {
				frac = f
			}
			if len(frac) > scale {
				continue
			}
			atomic, err := ToAtomic(in, scale)
			require.NoError(t, err)

			want := decimal.RequireFromString(in)
			got := decimal.RequireFromString(ToHuman(atomic, scale))
			assert.True(t, want.Equal(got), "scale %d: %s -> %s", scale, in, ToHuman(atomic, scale))
		}
	}
}

func TestParseAtomic(t *testing.T) {
	v, err := ParseAtomic("1234")
	require.NoError(t, err)
	assert.Equal(t, int64(1234), v.Int64())

	v, err = ParseAtomic("+7")
	require.NoError(t, err)
	assert.Equal(t, int64(7), v.Int64())

	_, err = ParseAtomic("12.5")
	assert.ErrorIs(t, err, ErrMalformedAmount)
	_, err = ParseAtomic("")
	assert.ErrorIs(t, err, ErrMalformedAmount)
}

func TestSumAndNeg(t *testing.T) {
	total := Sum(big.NewInt(5), nil, big.NewInt(-2))
	assert.Equal(t, int64(3), total.Int64())

	orig := big.NewInt(9)
	assert.Equal(t, int64(-9), Neg(orig).Int64())
	assert.Equal(t, int64(9), orig.Int64())
	assert.Equal(t, int64(0), Neg(nil).Int64())
}

func TestAmount_Human(t *testing.T) {
	a := Amount{Value: big.NewInt(1234), AssetCode: "USD", AssetScale: 2}
	assert.Equal(t, "12.34", a.Human())
}
