package types

import (
	"encoding/json"
	"testing"
)

func TestAmountConstructors(t *testing.T) {
	tests := []struct {
		name    string
		amount  Amount
		decimal string
	}{
		{"Zero", Zero(), "0"},
		{"Wei", Wei(42), "0.000000000000000042"},
		{"OneToken", Tokens(1), "1"},
		{"Supply", Tokens(21_000_000), "21000000"},
		{"Parsed", MustParseAmount("1050000000000000000"), "1.05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.amount.Decimal(); got != tt.decimal {
				t.Errorf("Decimal: got %s, want %s", got, tt.decimal)
			}
		})
	}
}

func TestAmountArithmetic(t *testing.T) {
	tests := []struct {
		name     string
		op       func() Amount
		expected Amount
	}{
		{"Add", func() Amount { return Tokens(100).Add(Tokens(200)) }, Tokens(300)},
		{"Sub", func() Amount { return Tokens(500).Sub(Tokens(200)) }, Tokens(300)},
		{"MulUint64", func() Amount { return Tokens(100).MulUint64(3) }, Tokens(300)},
		{"DivUint64", func() Amount { return Tokens(900).DivUint64(3) }, Tokens(300)},
		{"MulDivFloor", func() Amount { return Wei(1001).MulDiv(5, 100) }, Wei(50)},
		{"PermilleFloor", func() Amount { return Wei(1999).MulDiv(50, 1000) }, Wei(99)},
		{"Sum", func() Amount { return Sum(Tokens(1), Tokens(2), Tokens(3)) }, Tokens(6)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.op(); !got.Equal(tt.expected) {
				t.Errorf("got %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestAmountSubUnderflowPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on underflow")
		}
	}()
	_ = Tokens(1).Sub(Tokens(2))
}

func TestAmountComparisons(t *testing.T) {
	small, big := Tokens(1), Tokens(2)

	if !small.Less(big) {
		t.Error("expected 1 < 2")
	}
	if small.Cmp(big) != -1 || big.Cmp(small) != 1 || small.Cmp(small) != 0 {
		t.Error("Cmp ordering wrong")
	}
	if !Zero().IsZero() || Zero().IsPositive() {
		t.Error("Zero classification wrong")
	}
	if small.IsZero() || !small.IsPositive() {
		t.Error("positive classification wrong")
	}
}

func TestAmountJSONRoundTrip(t *testing.T) {
	original := MustParseAmount("123456789000000000000")

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"123456789000000000000"` {
		t.Errorf("unexpected encoding: %s", data)
	}

	var decoded Amount
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !decoded.Equal(original) {
		t.Errorf("round trip: got %s, want %s", decoded, original)
	}
}

func TestAmountSQLRoundTrip(t *testing.T) {
	original := Tokens(777)

	v, err := original.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}

	var scanned Amount
	if err := scanned.Scan(v); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if !scanned.Equal(original) {
		t.Errorf("round trip: got %s, want %s", scanned, original)
	}

	var fromBytes Amount
	if err := fromBytes.Scan([]byte("12345")); err != nil {
		t.Fatalf("scan bytes: %v", err)
	}
	if !fromBytes.Equal(Wei(12345)) {
		t.Errorf("scan bytes: got %s", fromBytes)
	}
}
