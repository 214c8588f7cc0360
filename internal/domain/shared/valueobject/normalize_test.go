package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		bounds Bounds
		want   Money
	}{
		{name: "empty yields zero", raw: "", bounds: NonNegative(), want: Zero()},
		{name: "blank yields zero", raw: "   ", bounds: NonNegative(), want: Zero()},
		{name: "garbage yields zero", raw: "abc", bounds: NonNegative(), want: Zero()},
		{name: "dot decimal", raw: "600.50", bounds: NonNegative(), want: Cents(60050)},
		{name: "comma decimal", raw: "600,5", bounds: NonNegative(), want: Cents(60050)},
		{name: "thousands dot with comma decimal", raw: "1.234,56", bounds: NonNegative(), want: Cents(123456)},
		{name: "thousands comma with dot decimal", raw: "1,234.56", bounds: NonNegative(), want: Cents(123456)},
		{name: "currency sign and spaces", raw: " $ 1 000 ", bounds: NonNegative(), want: Units(1000)},
		{name: "negative clamps to min", raw: "-25", bounds: NonNegative(), want: Zero()},
		{name: "above max clamps to max", raw: "1500", bounds: UpTo(Units(1000)), want: Units(1000)},
		{name: "inside bounds kept", raw: "999,99", bounds: UpTo(Units(1000)), want: Cents(99999)},
		{name: "custom min", raw: "1", bounds: Bounds{Min: Units(5)}, want: Units(5)},
		{name: "two commas are not a number", raw: "1,2,3", bounds: NonNegative(), want: Zero()},
		{name: "rounds to cents", raw: "0,005", bounds: NonNegative(), want: Cents(1)},
		{name: "beyond int64 clamps to max", raw: "100000000000000000", bounds: UpTo(Units(1000)), want: Units(1000)},
		{name: "exponent beyond int64 clamps to max", raw: "1e20", bounds: UpTo(Units(1000)), want: Units(1000)},
		{name: "unbounded huge input saturates", raw: "1e30", bounds: NonNegative(), want: MaxAmount()},
		{name: "huge negative clamps to min", raw: "-1e30", bounds: NonNegative(), want: Zero()},
		{name: "tiny exponent is zero", raw: "1e-30", bounds: NonNegative(), want: Zero()},
		{name: "thousands separated huge input", raw: "999.999.999.999.999.999,99", bounds: UpTo(Units(1000)), want: Units(1000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.raw, tt.bounds))
		})
	}
}

func TestNormalizeQuantity(t *testing.T) {
	tests := []struct {
		raw  string
		want int64
	}{
		{raw: "", want: 0},
		{raw: "3", want: 3},
		{raw: " 12 ", want: 12},
		{raw: "3,0", want: 3},
		{raw: "2.5", want: 0},
		{raw: "2,5", want: 0},
		{raw: "-4", want: 0},
		{raw: "x", want: 0},
		{raw: "1000000", want: MaxQuantity},
		{raw: "1000001", want: MaxQuantity},
		{raw: "9999999999999999", want: MaxQuantity},
		{raw: "18446744073709551617", want: MaxQuantity},
		{raw: "1e20", want: MaxQuantity},
		{raw: "1e999999999", want: MaxQuantity},
		{raw: "1e-20", want: 0},
		{raw: "-1e20", want: 0},
		{raw: "2e3", want: 2000},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeQuantity(tt.raw))
		})
	}
}
