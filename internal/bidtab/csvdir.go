package bidtab

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ReadCSVDir loads every *.csv in a directory of historical price files.
// Each file has a header row; the item code comes from the item-code column
// when one exists, otherwise from the file stem (sheet-export layouts name
// the file after the item). A missing directory is ErrDataSource; a file
// that fails to parse is logged and skipped so one bad export cannot sink
// the run.
func ReadCSVDir(dir string, aliases Aliases) ([]Record, ReadStats, error) {
	var stats ReadStats

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, stats, eris.Wrapf(ErrDataSource, "open directory %s: %v", dir, err)
	}

	paths, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, stats, eris.Wrapf(ErrDataSource, "glob %s: %v", dir, err)
	}
	sort.Strings(paths)

	var records []Record
	for _, path := range paths {
		recs, fileStats, err := readCSVFile(path, aliases)
		if err != nil {
			zap.L().Warn("bidtab: skipping unreadable csv", zap.String("path", path), zap.Error(err))
			continue
		}
		records = append(records, recs...)
		stats.Merge(fileStats)
	}

	zap.L().Info("bidtab: csv directory loaded",
		zap.String("dir", dir),
		zap.Int("files", stats.Sources),
		zap.Int("records", stats.Records),
		zap.Int("skipped", stats.Skipped),
	)
	return records, stats, nil
}

func readCSVFile(path string, aliases Aliases) ([]Record, ReadStats, error) {
	stats := ReadStats{Sources: 1}

	f, err := os.Open(path)
	if err != nil {
		return nil, stats, eris.Wrapf(err, "bidtab: open csv %s", path)
	}
	defer f.Close() //nolint:errcheck

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // historical exports have ragged rows

	header, err := reader.Read()
	if err == io.EOF {
		return nil, stats, nil
	}
	if err != nil {
		return nil, stats, eris.Wrapf(err, "bidtab: read header %s", path)
	}

	name := filepath.Base(path)
	stemCode := NormalizeItemCode(strings.TrimSuffix(name, filepath.Ext(name)))

	priceIdx := findPriceColumn(header, aliases)
	codeIdx := findColumn(header, aliases.ItemCode)
	if priceIdx < 0 {
		// No price column at all: nothing usable in this file.
		return nil, stats, nil
	}

	var records []Record
	for row := 2; ; row++ {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			stats.Skipped++
			continue
		}

		if priceIdx >= len(fields) {
			stats.Skipped++
			continue
		}
		price, ok := parsePrice(fields[priceIdx])
		if !ok {
			stats.Skipped++
			stats.BadPrice++
			continue
		}

		raw := stemCode
		if codeIdx >= 0 && codeIdx < len(fields) && strings.TrimSpace(fields[codeIdx]) != "" {
			raw = NormalizeItemCode(fields[codeIdx])
		}
		if raw == "" {
			stats.Skipped++
			continue
		}

		records = append(records, Record{
			ItemCode:       raw,
			NormalizedCode: NormalizeKey(raw),
			UnitPrice:      price,
			Source:         SourceRef{Kind: KindCSV, Name: name, Row: row},
		})
		stats.Records++
	}
	return records, stats, nil
}
