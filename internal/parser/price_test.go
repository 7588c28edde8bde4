package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const testSymbols = "$€£"

func TestIsPriceToken(t *testing.T) {
	cases := []struct {
		tok  string
		want bool
	}{
		{"$45.00", true},
		{"$1,234.50", true},
		{"€99", true},
		{"120.00", true},
		{"99.99.9", true}, // candidate, rejected later by NormalizePrice
		{"120", false},    // bare integer: quantity, year, postcode
		{"2024", false},
		{"$", false},
		{"chrome", false},
		{"", false},
	}
	for _, tc := range cases {
		t.Run(tc.tok, func(t *testing.T) {
			assert.Equal(t, tc.want, isPriceToken(tc.tok, testSymbols))
		})
	}
}

func TestNormalizePrice(t *testing.T) {
	cases := []struct {
		tok   string
		want  string
		valid bool
	}{
		{"$45.00", "45.00", true},
		{"$1,234.50", "1234.50", true},
		{"€99", "99", true},
		{"1 250.00", "1250.00", true},
		{"99.99.9", "", false},
		{"$", "", false},
		{"n/a", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.tok, func(t *testing.T) {
			got, ok := NormalizePrice(tc.tok, testSymbols)
			assert.Equal(t, tc.valid, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}
