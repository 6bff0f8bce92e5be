// Package report emits the per-item mapping debug file engineers use to
// audit which historical sources backed each estimate line.
package report

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/costest-cli/internal/textutil"
)

// Row is one audit line, one per pay item, in estimate input order.
type Row struct {
	ItemCode           string
	NormalizedCode     string
	Description        string
	Status             string // match.Status* value
	SourceNames        []string
	SourceKinds        []string
	MatchedSourceCount int
	DataPoints         int
	Mean               float64
	StdDev             float64
	CoefVar            float64
	Confidence         float64
	Note               string
}

var header = []string{
	"ITEM_CODE", "NORMALIZED_CODE", "DESCRIPTION", "MATCH_STATUS",
	"SOURCE_NAMES", "SOURCE_KINDS", "MATCHED_SOURCE_COUNT",
	"DATA_POINTS_USED", "MEAN_UNIT_PRICE", "STD_DEV", "COEF_VAR",
	"CONFIDENCE", "RUN_ID", "NOTES",
}

// WriteMapping writes the mapping debug CSV at path, replacing any previous
// run's file. Sources are semicolon-joined so every contributing source
// stays individually identifiable. The write goes to a temp sibling and is
// renamed into place so a rerun never appends to, or partially overwrites,
// stale content.
func WriteMapping(path, runID string, rows []Row) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrapf(err, "report: create dir %s", dir)
		}
	}

	tmp := fmt.Sprintf("%s.tmp-%d", path, os.Getpid())
	f, err := os.Create(tmp)
	if err != nil {
		return eris.Wrapf(err, "report: create %s", tmp)
	}
	defer os.Remove(tmp) //nolint:errcheck

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close() //nolint:errcheck
		return eris.Wrap(err, "report: write header")
	}
	for _, row := range rows {
		if err := w.Write(row.fields(runID)); err != nil {
			f.Close() //nolint:errcheck
			return eris.Wrapf(err, "report: write row %s", row.ItemCode)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close() //nolint:errcheck
		return eris.Wrap(err, "report: flush")
	}
	if err := f.Close(); err != nil {
		return eris.Wrap(err, "report: close")
	}

	if err := os.Rename(tmp, path); err != nil {
		return eris.Wrapf(err, "report: replace %s", path)
	}

	zap.L().Info("report: mapping debug written",
		zap.String("path", path),
		zap.Int("rows", len(rows)),
		zap.String("run_id", runID),
	)
	return nil
}

func (r Row) fields(runID string) []string {
	clean := func(s string) string {
		return textutil.Sanitize(s, textutil.Options{ASCIIOnly: true, CollapseWhitespace: true})
	}
	return []string{
		clean(r.ItemCode),
		r.NormalizedCode,
		clean(r.Description),
		r.Status,
		clean(strings.Join(r.SourceNames, ";")),
		strings.Join(r.SourceKinds, ";"),
		strconv.Itoa(r.MatchedSourceCount),
		strconv.Itoa(r.DataPoints),
		formatFloat(r.Mean, 2, r.DataPoints > 0),
		formatFloat(r.StdDev, 2, r.DataPoints > 0),
		formatFloat(r.CoefVar, 4, true),
		strconv.FormatFloat(r.Confidence, 'f', 4, 64),
		runID,
		clean(r.Note),
	}
}

// formatFloat renders a statistic, using "N/A" for undefined values so a
// zero-confidence item is visibly distinct from one that averaged to zero.
func formatFloat(v float64, prec int, defined bool) string {
	if !defined || math.IsNaN(v) || math.IsInf(v, 0) {
		return "N/A"
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}
