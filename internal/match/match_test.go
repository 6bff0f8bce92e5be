package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/costest-cli/internal/bidtab"
)

func rec(code string, price float64, kind, name string) bidtab.Record {
	return bidtab.Record{
		ItemCode:       code,
		NormalizedCode: bidtab.NormalizeKey(code),
		UnitPrice:      price,
		Source:         bidtab.SourceRef{Kind: kind, Name: name, Row: 1},
	}
}

func TestMatch_AggregatesAcrossSources(t *testing.T) {
	// Two sources, different raw spellings, same normalized code: all 20
	// records must aggregate, not just the first source found.
	var records []bidtab.Record
	for i := 0; i < 10; i++ {
		records = append(records, rec("105-06845", 100, bidtab.KindWorkbookSheet, "105-06845"))
	}
	for i := 0; i < 10; i++ {
		records = append(records, rec("105 06845", 110, bidtab.KindCSV, "bidtabs_2023.csv"))
	}

	m := NewMatcher(records)
	res := m.Match("10506845")

	require.Equal(t, StatusMatched, res.Status)
	assert.Len(t, res.Records, 20)
	assert.Len(t, res.Prices(), 20)
	require.Len(t, res.Sources, 2)
	assert.Equal(t, bidtab.SourceID{Kind: bidtab.KindWorkbookSheet, Name: "105-06845"}, res.Sources[0])
	assert.Equal(t, bidtab.SourceID{Kind: bidtab.KindCSV, Name: "bidtabs_2023.csv"}, res.Sources[1])
}

func TestMatch_ExactOnly(t *testing.T) {
	m := NewMatcher([]bidtab.Record{rec("105-06845", 100, bidtab.KindCSV, "a.csv")})

	// A prefix of the code is not a match; approximate lookup is the
	// alternate-seek collaborator's job.
	res := m.Match("105")
	assert.Equal(t, StatusUnmatched, res.Status)
	assert.Empty(t, res.Records)
}

func TestMatch_EmptyCode(t *testing.T) {
	m := NewMatcher(nil)
	assert.Equal(t, StatusEmpty, m.Match("  -- ").Status)
	assert.Equal(t, StatusEmpty, m.Match("").Status)
}

func TestMatch_Unmatched(t *testing.T) {
	m := NewMatcher([]bidtab.Record{rec("201-52990", 10, bidtab.KindCSV, "a.csv")})
	res := m.Match("999-99999")
	assert.Equal(t, StatusUnmatched, res.Status)
}

func TestNewMatcher_DropsEmptyKeys(t *testing.T) {
	m := NewMatcher([]bidtab.Record{rec("---", 10, bidtab.KindCSV, "a.csv")})
	assert.Empty(t, m.Keys())
}

func TestKeys_SortedWithCounts(t *testing.T) {
	m := NewMatcher([]bidtab.Record{
		rec("306-08033", 50, bidtab.KindCSV, "a.csv"),
		rec("105-06845", 95, bidtab.KindCSV, "a.csv"),
		rec("105-06845", 96, bidtab.KindCSV, "b.csv"),
	})

	keys := m.Keys()
	require.Len(t, keys, 2)
	assert.Equal(t, KeyCount{Key: "10506845", Records: 2}, keys[0])
	assert.Equal(t, KeyCount{Key: "30608033", Records: 1}, keys[1])
}
