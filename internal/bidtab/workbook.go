package bidtab

import (
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"
)

// ReadWorkbook loads a sheet-per-item price-history workbook. Each sheet
// holds the history for one pay item; the sheet name carries the item code.
// Every data row with a parseable finite positive price becomes one Record.
// Rows that don't parse are counted and skipped, never fatal. A missing or
// unreadable path is ErrDataSource.
func ReadWorkbook(path string, aliases Aliases) ([]Record, ReadStats, error) {
	var stats ReadStats

	if _, err := os.Stat(path); err != nil {
		return nil, stats, eris.Wrapf(ErrDataSource, "open workbook %s: %v", path, err)
	}

	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, stats, eris.Wrapf(ErrDataSource, "parse workbook %s: %v", path, err)
	}

	var records []Record
	for _, sheet := range f.Sheets {
		recs, sheetStats := readSheet(sheet, aliases)
		records = append(records, recs...)
		stats.Merge(sheetStats)
	}

	zap.L().Info("bidtab: workbook loaded",
		zap.String("path", path),
		zap.Int("sheets", stats.Sources),
		zap.Int("records", stats.Records),
		zap.Int("skipped", stats.Skipped),
	)
	return records, stats, nil
}

// readSheet extracts price records from one item sheet. The price column is
// resolved from the header row; a sheet with no header gets column 0.
func readSheet(sheet *xlsx.Sheet, aliases Aliases) ([]Record, ReadStats) {
	stats := ReadStats{Sources: 1}
	code := NormalizeItemCode(sheet.Name)

	if len(sheet.Rows) == 0 {
		return nil, stats
	}

	header := rowStrings(sheet.Rows[0])
	priceIdx := findPriceColumn(header, aliases)
	dataStart := 1
	if priceIdx < 0 {
		// Headerless sheet: treat every row as data, first column is price.
		priceIdx = 0
		dataStart = 0
	}

	var records []Record
	for i := dataStart; i < len(sheet.Rows); i++ {
		cells := rowStrings(sheet.Rows[i])
		if priceIdx >= len(cells) {
			stats.Skipped++
			continue
		}
		price, ok := parsePrice(cells[priceIdx])
		if !ok {
			stats.Skipped++
			stats.BadPrice++
			continue
		}
		records = append(records, Record{
			ItemCode:       sheet.Name,
			NormalizedCode: NormalizeKey(code),
			UnitPrice:      price,
			Source:         SourceRef{Kind: KindWorkbookSheet, Name: sheet.Name, Row: i + 1},
		})
		stats.Records++
	}
	return records, stats
}

func rowStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for i, cell := range row.Cells {
		cells[i] = cell.String()
	}
	return cells
}

// parsePrice parses a currency cell. Dollar signs, thousands separators and
// surrounding whitespace are tolerated; only finite positive values qualify.
func parsePrice(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, false
	}
	return v, true
}
