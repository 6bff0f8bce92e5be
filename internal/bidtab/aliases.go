package bidtab

import (
	"os"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Aliases maps our internal column names to the header spellings that
// historical exports use for them. Matching is done on standardized header
// text (uppercase, non-alphanumerics collapsed to underscores), so "Unit
// Price" and "UNIT_PRICE" both resolve.
type Aliases struct {
	ItemCode    []string `yaml:"item_code"`
	Description []string `yaml:"description"`
	Unit        []string `yaml:"unit"`
	Quantity    []string `yaml:"quantity"`
	Price       []string `yaml:"price"`
}

// DefaultAliases covers the header variants seen across historical bid-tab
// exports, including BID-era spellings.
func DefaultAliases() Aliases {
	return Aliases{
		ItemCode:    []string{"ITEM_CODE", "ITEM NO", "ITEMID", "ITEM ID", "PAY ITEM", "PAY_ITEM", "PAYITEM", "ITEM"},
		Description: []string{"ITEM_DESCRIPTION", "DESCRIPTION", "ITEM DESC", "ITEM DESCRIPTION"},
		Unit:        []string{"UNIT", "UOM"},
		Quantity:    []string{"QUANTITY", "QTY"},
		Price:       []string{"UNIT_PRICE", "UNIT PRICE", "PRICE"},
	}
}

// LoadAliases reads alias overrides from a YAML file and merges them over
// the defaults. Lists in the file are prepended so overrides win. An empty
// path returns the defaults unchanged.
func LoadAliases(path string) (Aliases, error) {
	base := DefaultAliases()
	if path == "" {
		return base, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return base, eris.Wrapf(err, "bidtab: read aliases %s", path)
	}

	var override Aliases
	if err := yaml.Unmarshal(data, &override); err != nil {
		return base, eris.Wrap(err, "bidtab: parse aliases")
	}

	base.ItemCode = append(override.ItemCode, base.ItemCode...)
	base.Description = append(override.Description, base.Description...)
	base.Unit = append(override.Unit, base.Unit...)
	base.Quantity = append(override.Quantity, base.Quantity...)
	base.Price = append(override.Price, base.Price...)
	return base, nil
}

var headerStd = regexp.MustCompile(`[^A-Z0-9]+`)

// stdHeader standardizes a header cell: "Unit Price " -> "UNIT_PRICE".
func stdHeader(name string) string {
	return strings.Trim(headerStd.ReplaceAllString(strings.ToUpper(name), "_"), "_")
}

// findColumn returns the index of the first header matching any alias, or
// -1. Aliases are tried in order so more specific spellings win.
func findColumn(headers []string, aliases []string) int {
	std := make([]string, len(headers))
	for i, h := range headers {
		std[i] = stdHeader(h)
	}
	for _, alias := range aliases {
		want := stdHeader(alias)
		for i, h := range std {
			if h == want {
				return i
			}
		}
	}
	return -1
}

// findPriceColumn resolves the price column: exact aliases first, then any
// header containing "PRICE" as a fallback for odd exports.
func findPriceColumn(headers []string, aliases Aliases) int {
	if idx := findColumn(headers, aliases.Price); idx >= 0 {
		return idx
	}
	for i, h := range headers {
		if strings.Contains(stdHeader(h), "PRICE") {
			return i
		}
	}
	return -1
}
