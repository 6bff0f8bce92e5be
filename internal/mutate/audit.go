package mutate

import (
	"encoding/csv"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/costest-cli/internal/bidtab"
	"github.com/sells-group/costest-cli/internal/stats"
)

// UpdateAuditCSV inserts (or, on rerun, overwrites) STD_DEV and COEF_VAR
// columns in the estimate audit file, immediately after DATA_POINTS_USED.
// Rows are matched by normalized item code; zero-data items render "N/A"
// and rows with no computed statistics are left blank. Missing anchor or
// item-code column is ErrAuditStructure and leaves the file untouched.
func UpdateAuditCSV(path string, byCode map[string]stats.Summary) error {
	f, err := os.Open(path)
	if err != nil {
		return eris.Wrapf(ErrAuditStructure, "open %s: %v", path, err)
	}

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	f.Close() //nolint:errcheck
	if err != nil {
		return eris.Wrapf(ErrAuditStructure, "parse %s: %v", path, err)
	}
	if len(rows) == 0 {
		return eris.Wrapf(ErrAuditStructure, "%s is empty", path)
	}

	header := rows[0]
	anchor := findHeader(header, anchorColumn)
	if anchor < 0 {
		return eris.Wrapf(ErrAuditStructure, "column %q not found in %s", anchorColumn, path)
	}
	itemCol := findItemCodeColumn(header)
	if itemCol < 0 {
		return eris.Wrapf(ErrAuditStructure, "item-code column not found in %s", path)
	}

	// Each derived column is inserted independently so a partially
	// migrated file gains only what it is missing, never a duplicate.
	stdCol := findHeader(header, stdDevColumn)
	cvCol := findHeader(header, coefVarColumn)
	if stdCol < 0 {
		rows = insertColumns(rows, anchor, stdDevColumn)
		stdCol = anchor + 1
		if cvCol > anchor {
			cvCol++
		}
		if itemCol > anchor {
			itemCol++
		}
	}
	if cvCol < 0 {
		rows = insertColumns(rows, stdCol, coefVarColumn)
		cvCol = stdCol + 1
		if itemCol > stdCol {
			itemCol++
		}
	}

	written := 0
	for i := 1; i < len(rows); i++ {
		rows[i] = padRow(rows[i], max(stdCol, cvCol, itemCol))
		code := strings.TrimSpace(rows[i][itemCol-1])
		if code == "" {
			continue
		}
		summary, ok := byCode[bidtab.NormalizeKey(code)]
		if !ok {
			rows[i][stdCol-1] = ""
			rows[i][cvCol-1] = ""
			continue
		}

		if summary.DataPoints == 0 {
			rows[i][stdCol-1] = "N/A"
			rows[i][cvCol-1] = "N/A"
		} else {
			rows[i][stdCol-1] = strconv.FormatFloat(round(summary.StdDev, 2), 'f', 2, 64)
			rows[i][cvCol-1] = summary.FormatCoefVar()
		}
		written++
	}

	tmp := tempPath(path)
	defer os.Remove(tmp) //nolint:errcheck
	out, err := os.Create(tmp)
	if err != nil {
		return eris.Wrapf(err, "mutate: create %s", tmp)
	}

	w := csv.NewWriter(out)
	if err := w.WriteAll(rows); err != nil {
		out.Close() //nolint:errcheck
		return eris.Wrapf(err, "mutate: write %s", tmp)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		out.Close() //nolint:errcheck
		return eris.Wrap(err, "mutate: flush audit csv")
	}
	if err := out.Close(); err != nil {
		return eris.Wrap(err, "mutate: close audit csv")
	}
	if err := os.Rename(tmp, path); err != nil {
		return eris.Wrapf(err, "mutate: replace %s", path)
	}

	zap.L().Info("mutate: audit csv updated",
		zap.String("path", path),
		zap.Int("rows_written", written),
	)
	return nil
}

// findItemCodeColumn matches any header containing both ITEM and CODE
// ("ITEM_CODE", "Pay Item Code", ...), 1-based.
func findItemCodeColumn(header []string) int {
	for i, h := range header {
		up := strings.ToUpper(h)
		if strings.Contains(up, "ITEM") && strings.Contains(up, "CODE") {
			return i + 1
		}
	}
	return -1
}

// insertColumns splices the named columns into every row immediately after
// the 1-based anchor column, padding ragged rows first.
func insertColumns(rows [][]string, anchor int, names ...string) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		row = padRow(row, anchor)
		next := make([]string, 0, len(row)+len(names))
		next = append(next, row[:anchor]...)
		if i == 0 {
			next = append(next, names...)
		} else {
			next = append(next, make([]string, len(names))...)
		}
		next = append(next, row[anchor:]...)
		out[i] = next
	}
	return out
}

func padRow(row []string, width int) []string {
	for len(row) < width {
		row = append(row, "")
	}
	return row
}
