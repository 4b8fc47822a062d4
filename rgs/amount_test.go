package rgs

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestToAPIAmount(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"1.00", 1_000_000},
		{"10.50", 10_500_000},
		{"0.000001", 1},
		{"0", 0},
		{"123.456789", 123_456_789},
	}

	for _, tt := range tests {
		got, err := ToAPIAmount(decimal.RequireFromString(tt.in))
		if err != nil {
			t.Errorf("ToAPIAmount(%s): unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ToAPIAmount(%s): expected %d, got %d", tt.in, tt.want, got)
		}
	}
}

func TestToAPIAmountRejectsInexact(t *testing.T) {
	_, err := ToAPIAmount(decimal.RequireFromString("0.0000001"))
	if err == nil {
		t.Fatal("expected error for amount below one API minor unit")
	}
}

func TestToAPIAmountRejectsNegative(t *testing.T) {
	_, err := ToAPIAmount(decimal.RequireFromString("-1"))
	if err == nil {
		t.Fatal("expected error for negative amount")
	}
}

func TestToBookAmount(t *testing.T) {
	got, err := ToBookAmount(decimal.RequireFromString("10.50"))
	if err != nil {
		t.Fatalf("ToBookAmount failed: %v", err)
	}
	if got != 1050 {
		t.Errorf("expected 1050, got %d", got)
	}

	// Book records use hundredths; sub-cent amounts don't fit.
	_, err = ToBookAmount(decimal.RequireFromString("10.505"))
	if err == nil {
		t.Fatal("expected error for sub-cent book amount")
	}
}

func TestMultipliersAreDistinct(t *testing.T) {
	api, _ := ToAPIAmount(decimal.RequireFromString("1"))
	book, _ := ToBookAmount(decimal.RequireFromString("1"))
	if api != 1_000_000 || book != 100 {
		t.Errorf("multiplier mixup: api=%d book=%d", api, book)
	}
}
