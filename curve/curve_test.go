package curve

import (
	"testing"

	"github.com/fanbase-labs/keymarket/types"
)

func TestPriceKnownValues(t *testing.T) {
	tests := []struct {
		name   string
		supply uint64
		amount uint64
		want   types.Amount
	}{
		// Σ k² over [supply, supply+amount) × 10^18 / 16000
		{"FirstKeyIsFree", 0, 1, types.Zero()},
		{"SecondKey", 1, 1, types.MustParseAmount("62500000000000")},
		{"FirstTen", 0, 10, types.MustParseAmount("17812500000000000")},
		{"ZeroAmount", 5, 0, types.Zero()},
		{"DeepSupply", 1000, 1, types.Tokens(1000 * 1000).DivUint64(Denominator)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Price(tt.supply, tt.amount)
			if !got.Equal(tt.want) {
				t.Errorf("Price(%d, %d): got %s, want %s", tt.supply, tt.amount, got, tt.want)
			}
		})
	}
}

func TestPriceMonotonicInSupply(t *testing.T) {
	prev := Price(0, 3)
	for supply := uint64(1); supply < 2000; supply += 37 {
		cur := Price(supply, 3)
		if !prev.Less(cur) {
			t.Fatalf("Price(%d, 3) = %s not greater than previous %s", supply, cur, prev)
		}
		prev = cur
	}
}

func TestPriceMonotonicInAmount(t *testing.T) {
	prev := Price(5, 1)
	for amount := uint64(2); amount < 500; amount++ {
		cur := Price(5, amount)
		if !prev.Less(cur) {
			t.Fatalf("Price(5, %d) = %s not greater than previous %s", amount, cur, prev)
		}
		prev = cur
	}
}

// Splitting a purchase into consecutive blocks must cost exactly the same as
// buying the whole block at once.
func TestPriceAdditivity(t *testing.T) {
	tests := []struct {
		supply uint64
		a, b   uint64
	}{
		{0, 1, 1},
		{0, 10, 5},
		{7, 3, 9},
		{100, 50, 50},
		{12345, 678, 910},
	}

	for _, tt := range tests {
		whole := Price(tt.supply, tt.a+tt.b)
		split := Price(tt.supply, tt.a).Add(Price(tt.supply+tt.a, tt.b))
		if !whole.Equal(split) {
			t.Errorf("Price(%d, %d+%d): whole %s != split %s", tt.supply, tt.a, tt.b, whole, split)
		}
	}
}

func TestPriceDeterministic(t *testing.T) {
	first := Price(777, 42)
	second := Price(777, 42)
	if !first.Equal(second) {
		t.Errorf("price not deterministic: %s vs %s", first, second)
	}
}
