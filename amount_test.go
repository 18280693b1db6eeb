package rentchain

import (
	"math/big"
	"testing"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"1000", 1000, true},
		{"0x3e8", 1000, true},
		{" 42 ", 42, true},
		{"0", 0, true},
		{"-5", 0, false},
		{"1.5", 0, false},
		{"abc", 0, false},
	}

	for _, tc := range tests {
		got, err := ParseAmount(tc.in)
		if tc.ok != (err == nil) {
			t.Fatalf("ParseAmount(%q): unexpected error state %v", tc.in, err)
		}
		if tc.ok && got.Cmp(big.NewInt(tc.want)) != 0 {
			t.Fatalf("ParseAmount(%q): expected %d, got %s", tc.in, tc.want, got)
		}
	}
}

func TestEther(t *testing.T) {
	half, err := ParseEther("0.5")
	if err != nil {
		t.Fatalf("ParseEther: %v", err)
	}
	if half.String() != "500000000000000000" {
		t.Fatalf("unexpected wei %s", half)
	}
	if FormatEther(half) != "0.5" {
		t.Fatalf("unexpected format %s", FormatEther(half))
	}
	if FormatEther(MustEther("3")) != "3" {
		t.Fatalf("unexpected format %s", FormatEther(MustEther("3")))
	}
	if FormatEther(nil) != "0" {
		t.Fatalf("nil should format as 0")
	}

	if _, err := ParseEther("0.0000000000000000001"); err == nil {
		t.Fatalf("expected error for sub-wei precision")
	}
	if _, err := ParseEther("-1"); err == nil {
		t.Fatalf("expected error for negative ether")
	}
}

func TestAddresses(t *testing.T) {
	lower := "0x2c7536e3605d9c16a7a3d7b1898e529396a65c23"

	normalized, err := NormalizeAddress(lower)
	if err != nil {
		t.Fatalf("NormalizeAddress: %v", err)
	}
	if normalized != testAddress {
		t.Fatalf("expected checksum form %s, got %s", testAddress, normalized)
	}
	if !SameAddress(lower, testAddress) {
		t.Fatalf("expected addresses to match")
	}
	if SameAddress("0x123", "0x123") {
		t.Fatalf("malformed addresses never match")
	}
	if _, err := NormalizeAddress("2c7536e3605d9c16a7a3d7b1898e529396a65c23"); err == nil {
		t.Fatalf("expected error without 0x prefix")
	}

	if BigOf(nil) != nil || Amount(nil) != nil {
		t.Fatalf("nil amounts should stay nil")
	}
	if BigOf(Amount(big.NewInt(7))).Int64() != 7 {
		t.Fatalf("amount round trip failed")
	}
}
