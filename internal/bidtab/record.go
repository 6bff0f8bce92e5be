// Package bidtab loads historical unit-price records (bid tabs) and project
// pay-item lists from workbook and delimited-file sources, normalizing the
// heterogeneous layouts into a common record shape.
package bidtab

import (
	"fmt"

	"github.com/rotisserie/eris"
)

// Source kinds recorded for audit traceability.
const (
	KindWorkbookSheet = "workbook"
	KindCSV           = "csv"
)

// ErrDataSource marks a declared historical-data path that is missing or
// unreadable. It aborts the run before any artifact is touched.
var ErrDataSource = eris.New("bidtab: data source unavailable")

// SourceID identifies one historical source (a sheet or a file) without row
// detail. Comparable so matchers can deduplicate provenance.
type SourceID struct {
	Kind string
	Name string
}

func (s SourceID) String() string {
	return s.Kind + ":" + s.Name
}

// SourceRef pinpoints the origin of a single record.
type SourceRef struct {
	Kind string
	Name string // sheet name or file name
	Row  int    // 1-based row within the source
}

// ID strips the row so refs from the same sheet or file compare equal.
func (s SourceRef) ID() SourceID {
	return SourceID{Kind: s.Kind, Name: s.Name}
}

func (s SourceRef) String() string {
	return fmt.Sprintf("%s:%s:%d", s.Kind, s.Name, s.Row)
}

// Record is one historical observation of a unit price for a pay item.
// Records are created fresh each run and never mutated.
type Record struct {
	ItemCode       string // original spelling, preserved for display
	NormalizedCode string
	UnitPrice      float64
	Source         SourceRef
}

// PayItem is one line item on the project's estimate.
type PayItem struct {
	ItemCode    string
	Description string
	Quantity    float64
	Unit        string
}

// ReadStats counts rows a reader accepted and skipped. Row-level parse
// failures are absorbed here, never raised.
type ReadStats struct {
	Sources  int
	Records  int
	Skipped  int
	BadPrice int
}

// Merge accumulates another reader's counts.
func (s *ReadStats) Merge(other ReadStats) {
	s.Sources += other.Sources
	s.Records += other.Records
	s.Skipped += other.Skipped
	s.BadPrice += other.BadPrice
}
