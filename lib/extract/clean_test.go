package extract

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCleanPrice(t *testing.T) {
	testCases := []struct {
		in       string
		expected string
	}{
		{"959.00", "959.00"},
		{"1.899,99 ₼", "1899.99"},
		{"1,299.00", "1299.00"},
		{"₼ 2,499.00", "2499.00"},
		{"169.00 ₼", "169.00"},
		{"44,39 AZN", "44.39"},
		{"1.299.99", "1299.99"},
		{"799", "799"},
		{"", ""},
		{"qiymət yoxdur", ""},
	}
	for _, test := range testCases {
		require.Equal(t, test.expected, CleanPrice(test.in), "input %q", test.in)
	}
}

func TestCleanStock(t *testing.T) {
	testCases := []struct {
		in       string
		expected string
	}{
		{"var", "true"},
		{"Yoxdur", "false"},
		{"stokda", "true"},
		{"True", "true"},
		{"false", "false"},
		{"", ""},
		{"bilinmir", ""},
	}
	for _, test := range testCases {
		require.Equal(t, test.expected, CleanStock(test.in), "input %q", test.in)
	}
}

func TestCleanPercent(t *testing.T) {
	require.Equal(t, "15", CleanPercent("-15%"))
	require.Equal(t, "15", CleanPercent("endirim -15 %"))
	require.Equal(t, "7.5", CleanPercent("7,5%"))
	require.Equal(t, "", CleanPercent("yeni"))
}

func TestInstallmentCleaners(t *testing.T) {
	testCases := []struct {
		in      string
		monthly string
		term    string
	}{
		{"7.05 ₼ x 24 ay", "7.05", "24 ay"},
		{"14,58 ₼ x 12 ay", "14.58", "12 ay"},
		{"108 ₼ × 6 ay", "108", "6 ay"},
		{"pulsuz çatdırılma", "", ""},
	}
	for _, test := range testCases {
		require.Equal(t, test.monthly, cleanInstallmentMonthly(test.in), "input %q", test.in)
		require.Equal(t, test.term, cleanInstallmentTerm(test.in), "input %q", test.in)
	}
}

func TestCleanTerm(t *testing.T) {
	require.Equal(t, "12 ay", cleanTerm("12 ay"))
	require.Equal(t, "24 ay", cleanTerm("24"))
	require.Equal(t, "", cleanTerm("ay"))
}

func TestCleanNegate(t *testing.T) {
	require.Equal(t, "false", cleanNegate("true"))
	require.Equal(t, "true", cleanNegate("False"))
	require.Equal(t, "", cleanNegate("maybe"))
}

func TestCleanList(t *testing.T) {
	require.Equal(t, "a; b", cleanList(`["a", "b"]`))
	require.Equal(t, "a", cleanList(`["a", ""]`))
	require.Equal(t, "", cleanList(`[]`))
	require.Equal(t, "plain text", cleanList("  plain   text "))
}
