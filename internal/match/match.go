// Package match resolves pay-item codes to the historical records that
// share them, across every loaded source.
package match

import (
	"sort"

	"github.com/sells-group/costest-cli/internal/bidtab"
)

// Match status values reported in the mapping debug file.
const (
	StatusMatched   = "matched"
	StatusUnmatched = "unmatched"
	StatusEmpty     = "empty"
)

// Result is the outcome of matching one pay-item code.
type Result struct {
	Status  string
	Records []bidtab.Record
	// Sources lists each distinct contributing source once, in load order.
	Sources []bidtab.SourceID
}

// Prices returns the unit prices of the matched records.
func (r Result) Prices() []float64 {
	out := make([]float64, len(r.Records))
	for i, rec := range r.Records {
		out[i] = rec.UnitPrice
	}
	return out
}

// Matcher indexes historical records by normalized item code. It is built
// once per run from the merged output of all readers and never mutated
// afterward, so matching is safe from concurrent goroutines.
type Matcher struct {
	byKey map[string][]bidtab.Record
}

// NewMatcher indexes records. Records whose code normalizes to the empty
// string are unmatchable and dropped from the index.
func NewMatcher(records []bidtab.Record) *Matcher {
	byKey := make(map[string][]bidtab.Record)
	for _, rec := range records {
		key := rec.NormalizedCode
		if key == "" {
			key = bidtab.NormalizeKey(rec.ItemCode)
		}
		if key == "" {
			continue
		}
		byKey[key] = append(byKey[key], rec)
	}
	return &Matcher{byKey: byKey}
}

// Match returns every record whose normalized code equals the normalized
// target. Aggregation across all sources holding the code is deliberate:
// historical data for one item is commonly split over several files and a
// first-match-wins lookup would undercount it. Matching is exact on the
// normalized key; approximate fallbacks belong to the alternate-seek
// collaborator, not this layer.
func (m *Matcher) Match(itemCode string) Result {
	key := bidtab.NormalizeKey(itemCode)
	if key == "" {
		return Result{Status: StatusEmpty}
	}

	records := m.byKey[key]
	if len(records) == 0 {
		return Result{Status: StatusUnmatched}
	}

	return Result{
		Status:  StatusMatched,
		Records: records,
		Sources: distinctSources(records),
	}
}

// Keys returns every indexed normalized code, sorted, with its record
// count. Used by the sources inventory command.
func (m *Matcher) Keys() []KeyCount {
	out := make([]KeyCount, 0, len(m.byKey))
	for k, recs := range m.byKey {
		out = append(out, KeyCount{Key: k, Records: len(recs)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// KeyCount pairs a normalized code with its indexed record count.
type KeyCount struct {
	Key     string
	Records int
}

func distinctSources(records []bidtab.Record) []bidtab.SourceID {
	seen := make(map[bidtab.SourceID]struct{}, len(records))
	var out []bidtab.SourceID
	for _, rec := range records {
		id := rec.Source.ID()
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
