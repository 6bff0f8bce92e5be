package bidtab

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeItemCode(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"30608033", "306-08033"},
		{"306-08033", "306-08033"},
		{"306 08033", "306-08033"},
		{"105–06845", "105-06845"}, // en dash
		{"105—06845", "105-06845"}, // em dash
		{" sp-1 ", "SP-1"},
		{"B*#7", "B7"},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeItemCode(tc.in), "input %q", tc.in)
	}
}

func TestNormalizeKey(t *testing.T) {
	assert.Equal(t, "10506845", NormalizeKey("105-06845"))
	assert.Equal(t, "10506845", NormalizeKey("105 06845"))
	assert.Equal(t, "10506845", NormalizeKey("10506845"))
	assert.Equal(t, "SP1", NormalizeKey("sp-1"))
	assert.Equal(t, "", NormalizeKey("--- "))
}

func TestParsePrice(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"95", 95, true},
		{" $1,250.50 ", 1250.50, true},
		{"0", 0, false},
		{"-10", 0, false},
		{"", 0, false},
		{"N/A", 0, false},
		{"inf", 0, false},
	}
	for _, tc := range cases {
		got, ok := parsePrice(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		if tc.ok {
			assert.InDelta(t, tc.want, got, 1e-9, "input %q", tc.in)
		}
	}
}

func TestStdHeader(t *testing.T) {
	assert.Equal(t, "UNIT_PRICE", stdHeader("Unit Price "))
	assert.Equal(t, "PAY_ITEM", stdHeader("PAY ITEM"))
	assert.Equal(t, "ITEM_CODE", stdHeader("item.code"))
}

func TestFindPriceColumn_Fallback(t *testing.T) {
	aliases := DefaultAliases()
	assert.Equal(t, 1, findPriceColumn([]string{"ITEM", "UNIT PRICE"}, aliases))
	assert.Equal(t, 2, findPriceColumn([]string{"A", "B", "Awarded Price Each"}, aliases))
	assert.Equal(t, -1, findPriceColumn([]string{"A", "B"}, aliases))
}
