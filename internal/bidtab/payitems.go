package bidtab

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"
)

// ReadPayItems loads the project pay-item list from an XLSX or CSV file.
// The item-code and description columns are required; quantity and unit are
// carried when present. Input row order is preserved because the mapping
// report mirrors it.
func ReadPayItems(path string, aliases Aliases) ([]PayItem, error) {
	var rows [][]string

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls":
		f, err := xlsx.OpenFile(path)
		if err != nil {
			return nil, eris.Wrapf(ErrDataSource, "open pay items %s: %v", path, err)
		}
		if len(f.Sheets) == 0 {
			return nil, eris.Wrapf(ErrDataSource, "pay items %s: workbook has no sheets", path)
		}
		for _, row := range f.Sheets[0].Rows {
			rows = append(rows, rowStrings(row))
		}
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(ErrDataSource, "open pay items %s: %v", path, err)
		}
		defer f.Close() //nolint:errcheck

		reader := csv.NewReader(f)
		reader.FieldsPerRecord = -1
		rows, err = reader.ReadAll()
		if err != nil {
			return nil, eris.Wrapf(ErrDataSource, "parse pay items %s: %v", path, err)
		}
	}

	if len(rows) == 0 {
		return nil, eris.Wrapf(ErrDataSource, "pay items %s: file is empty", path)
	}

	header := rows[0]
	codeIdx := findColumn(header, aliases.ItemCode)
	if codeIdx < 0 {
		return nil, eris.Wrapf(ErrDataSource, "pay items %s: no item-code column (have %v)", path, header)
	}
	descIdx := findColumn(header, aliases.Description)
	qtyIdx := findColumn(header, aliases.Quantity)
	unitIdx := findColumn(header, aliases.Unit)

	var items []PayItem
	for _, fields := range rows[1:] {
		if codeIdx >= len(fields) {
			continue
		}
		code := NormalizeItemCode(fields[codeIdx])
		if code == "" {
			continue
		}
		item := PayItem{ItemCode: code}
		if descIdx >= 0 && descIdx < len(fields) {
			item.Description = strings.TrimSpace(fields[descIdx])
		}
		if unitIdx >= 0 && unitIdx < len(fields) {
			item.Unit = strings.TrimSpace(fields[unitIdx])
		}
		if qtyIdx >= 0 && qtyIdx < len(fields) {
			if q, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(fields[qtyIdx]), ",", ""), 64); err == nil {
				item.Quantity = q
			}
		}
		items = append(items, item)
	}

	zap.L().Info("bidtab: pay items loaded", zap.String("path", path), zap.Int("items", len(items)))
	return items, nil
}
