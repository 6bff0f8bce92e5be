package mutate

import (
	"math"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/sells-group/costest-cli/internal/bidtab"
	"github.com/sells-group/costest-cli/internal/stats"
)

// UpdateWorkbook inserts (or, on rerun, overwrites) a CONFIDENCE column in
// the estimate workbook, immediately after the DATA_POINTS_USED anchor
// column of the named sheet. Rows are matched by normalized item code; rows
// with no computed statistics get a blank confidence cell and are otherwise
// untouched. byCode is keyed by bidtab.NormalizeKey output.
//
// The anchor column and sheet are located by name, never by position, so
// artifact revisions that shuffle columns keep working. A missing sheet or
// anchor is ErrWorkbookStructure and leaves the file byte-identical.
func UpdateWorkbook(path, sheetName string, byCode map[string]stats.Summary) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return eris.Wrapf(ErrWorkbookStructure, "open %s: %v", path, err)
	}
	defer f.Close() //nolint:errcheck

	idx, err := f.GetSheetIndex(sheetName)
	if err != nil || idx < 0 {
		return eris.Wrapf(ErrWorkbookStructure, "sheet %q not found in %s", sheetName, path)
	}

	confCol, itemCol, err := ensureConfidenceColumn(f, sheetName)
	if err != nil {
		return err
	}

	// Re-read after the potential insert so row snapshots and column
	// numbers agree.
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return eris.Wrapf(err, "mutate: read rows of %q", sheetName)
	}

	written := 0
	for r := 2; r <= len(rows); r++ {
		fields := rows[r-1]
		if itemCol > len(fields) {
			continue
		}
		code := strings.TrimSpace(fields[itemCol-1])
		if code == "" {
			continue
		}

		cell, err := excelize.CoordinatesToCellName(confCol, r)
		if err != nil {
			return eris.Wrap(err, "mutate: cell name")
		}

		summary, ok := byCode[bidtab.NormalizeKey(code)]
		if !ok || summary.DataPoints == 0 {
			// No pay item, no statistics, or no usable history for this
			// row: blank, not an error.
			if err := f.SetCellValue(sheetName, cell, ""); err != nil {
				return eris.Wrapf(err, "mutate: blank %s", cell)
			}
			continue
		}

		if err := f.SetCellValue(sheetName, cell, round(summary.Confidence, 4)); err != nil {
			return eris.Wrapf(err, "mutate: write %s", cell)
		}
		written++
	}

	tmp := tempPath(path)
	defer os.Remove(tmp) //nolint:errcheck
	if err := f.SaveAs(tmp); err != nil {
		return eris.Wrapf(err, "mutate: save workbook %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		return eris.Wrapf(err, "mutate: replace %s", path)
	}

	zap.L().Info("mutate: workbook updated",
		zap.String("path", path),
		zap.String("sheet", sheetName),
		zap.Int("rows_written", written),
	)
	return nil
}

// ensureConfidenceColumn locates the anchor and item-code headers and makes
// sure a CONFIDENCE column exists immediately after the anchor, inserting
// it when absent and reusing it when a previous run already added one.
// Returns 1-based column numbers for CONFIDENCE and ITEM_CODE.
func ensureConfidenceColumn(f *excelize.File, sheetName string) (confCol, itemCol int, err error) {
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return 0, 0, eris.Wrapf(err, "mutate: read sheet %q", sheetName)
	}
	if len(rows) == 0 {
		return 0, 0, eris.Wrapf(ErrWorkbookStructure, "sheet %q is empty", sheetName)
	}

	headers := rows[0]
	anchor := findHeader(headers, anchorColumn)
	if anchor < 0 {
		return 0, 0, eris.Wrapf(ErrWorkbookStructure, "column %q not found in sheet %q", anchorColumn, sheetName)
	}
	itemCol = findHeader(headers, "ITEM_CODE")
	if itemCol < 0 {
		return 0, 0, eris.Wrapf(ErrWorkbookStructure, "column %q not found in sheet %q", "ITEM_CODE", sheetName)
	}

	if existing := findHeader(headers, confColumn); existing > 0 {
		return existing, itemCol, nil
	}

	confCol = anchor + 1
	colName, err := excelize.ColumnNumberToName(confCol)
	if err != nil {
		return 0, 0, eris.Wrap(err, "mutate: column name")
	}
	if err := f.InsertCols(sheetName, colName, 1); err != nil {
		return 0, 0, eris.Wrapf(err, "mutate: insert column %s", colName)
	}

	headerCell, err := excelize.CoordinatesToCellName(confCol, 1)
	if err != nil {
		return 0, 0, eris.Wrap(err, "mutate: header cell name")
	}
	if err := f.SetCellValue(sheetName, headerCell, confColumn); err != nil {
		return 0, 0, eris.Wrapf(err, "mutate: write header %s", headerCell)
	}

	if itemCol >= confCol {
		itemCol++
	}
	return confCol, itemCol, nil
}

// findHeader returns the 1-based column of the named header, matched
// case-insensitively on trimmed text, or -1.
func findHeader(headers []string, name string) int {
	for i, h := range headers {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i + 1
		}
	}
	return -1
}

func round(v float64, places int) float64 {
	scale := math.Pow10(places)
	return math.Round(v*scale) / scale
}
