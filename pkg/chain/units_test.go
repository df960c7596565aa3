package chain

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
)

func TestToBaseUnits(t *testing.T) {
	amount := decimal.RequireFromString("1250.50")
	got, err := ToBaseUnits(amount, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := big.NewInt(1250500000)
	if got.Cmp(want) != 0 {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestToBaseUnitsRejectsExcessPrecision(t *testing.T) {
	amount := decimal.RequireFromString("0.1234567")
	if _, err := ToBaseUnits(amount, 6); err == nil {
		t.Fatal("expected error for more fractional digits than token supports")
	}
}

func TestToBaseUnitsRejectsNonPositive(t *testing.T) {
	for _, raw := range []string{"0", "-5"} {
		if _, err := ToBaseUnits(decimal.RequireFromString(raw), 6); err == nil {
			t.Fatalf("expected error for amount %s", raw)
		}
	}
}

func TestFromBaseUnitsRoundTrips(t *testing.T) {
	amount := decimal.RequireFromString("42.000001")
	base, err := ToBaseUnits(amount, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	back := FromBaseUnits(base, 6)
	if !back.Equal(amount) {
		t.Fatalf("round trip mismatch: got %s, want %s", back, amount)
	}
}
