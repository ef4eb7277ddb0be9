package units

import (
	"errors"
	"math/big"
	"testing"
)

func TestParseUnitsEther(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1", "1000000000000000000"},
		{"0.05", "50000000000000000"},
		{".5", "500000000000000000"},
		{"2.", "2000000000000000000"},
		{" 0.000000000000000001 ", "1"},
		{"0.0000000000000000015", "2"},
		{"0.0000000000000000014", "1"},
		{"0", "0"},
	}

	for _, tc := range cases {
		got, err := ParseUnits(tc.in, EtherDecimals)
		if err != nil {
			t.Fatalf("ParseUnits(%q): %v", tc.in, err)
		}
		if got.String() != tc.want {
			t.Errorf("ParseUnits(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestParsePositiveRejects(t *testing.T) {
	cases := []string{"", "abc", "-1", "+1", "1e3", "0x10", "Infinity", "NaN", "1.2.3", ".", "0", "0.000", "0.0000000000000000001"}

	for _, in := range cases {
		if _, err := ParsePositive(in, EtherDecimals); err == nil {
			t.Errorf("ParsePositive(%q) should fail", in)
		}
	}

	_, err := ParsePositive("abc", EtherDecimals)
	if !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	_, err = ParsePositive("0", EtherDecimals)
	if !errors.Is(err, ErrNonPositive) {
		t.Fatalf("expected ErrNonPositive, got %v", err)
	}
}

func TestFormatUnitsEther(t *testing.T) {
	cases := []struct {
		wei  string
		want string
	}{
		{"0", "0"},
		{"1", "0.000000000000000001"},
		{"50000000000000000", "0.05"},
		{"1000000000000000000", "1"},
		{"1234500000000000000000", "1234.5"},
		{"-1500000000000000000", "-1.5"},
	}

	for _, tc := range cases {
		wei, _ := new(big.Int).SetString(tc.wei, 10)
		if got := FormatUnits(wei, EtherDecimals); got != tc.want {
			t.Errorf("FormatUnits(%s) = %s, want %s", tc.wei, got, tc.want)
		}
	}

	if got := FormatUnits(nil, EtherDecimals); got != "0" {
		t.Errorf("FormatUnits(nil, EtherDecimals) = %s", got)
	}
}

func TestFormatUnitsSmallExponent(t *testing.T) {
	if got := FormatUnits(big.NewInt(123456), 6); got != "0.123456" {
		t.Fatalf("got %s", got)
	}
	if got := FormatUnits(big.NewInt(5), 0); got != "5" {
		t.Fatalf("got %s", got)
	}
}
