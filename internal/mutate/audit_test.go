package mutate

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAuditCSV(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readAuditCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	require.NoError(t, err)
	return rows
}

func TestUpdateAuditCSV_InsertsBothColumnsAfterAnchor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Estimate_Audit.csv")
	writeAuditCSV(t, path,
		"ITEM_CODE,DESCRIPTION,DATA_POINTS_USED,MEAN_UNIT_PRICE,SOURCE\n"+
			"105-06845,QC/QA PATCHING,4,102.50,bidtabs\n"+
			"306-08033,HMA SURFACE,0,,none\n"+
			"777-00001,UNKNOWN ROW,,,manual\n")

	require.NoError(t, UpdateAuditCSV(path, summaries()))

	rows := readAuditCSV(t, path)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"ITEM_CODE", "DESCRIPTION", "DATA_POINTS_USED", "STD_DEV", "COEF_VAR", "MEAN_UNIT_PRICE", "SOURCE"}, rows[0])

	// Matched row: rounded statistics.
	assert.Equal(t, "6.45", rows[1][3])
	assert.Equal(t, "0.0630", rows[1][4])
	// Zero-data pay item: explicit N/A, distinguishable from blank.
	assert.Equal(t, "N/A", rows[2][3])
	assert.Equal(t, "N/A", rows[2][4])
	// Row with no computed statistics: blank, preserved.
	assert.Equal(t, "", rows[3][3])
	assert.Equal(t, "", rows[3][4])

	// Pre-existing values ride along unchanged.
	assert.Equal(t, "102.50", rows[1][5])
	assert.Equal(t, "bidtabs", rows[1][6])
	assert.Equal(t, "manual", rows[3][6])
}

func TestUpdateAuditCSV_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Estimate_Audit.csv")
	writeAuditCSV(t, path,
		"ITEM_CODE,DATA_POINTS_USED\n105-06845,4\n")

	require.NoError(t, UpdateAuditCSV(path, summaries()))
	once, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, UpdateAuditCSV(path, summaries()))
	twice, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, string(once), string(twice))

	rows := readAuditCSV(t, path)
	count := 0
	for _, h := range rows[0] {
		if h == "STD_DEV" {
			count++
		}
	}
	assert.Equal(t, 1, count, "rerun must not duplicate inserted columns")
}

func TestUpdateAuditCSV_MissingAnchor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Estimate_Audit.csv")
	writeAuditCSV(t, path, "ITEM_CODE,DESCRIPTION\n105-06845,PATCHING\n")

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	uerr := UpdateAuditCSV(path, summaries())
	require.Error(t, uerr)
	assert.ErrorIs(t, uerr, ErrAuditStructure)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after, "failed mutation must not modify the artifact")
}

func TestUpdateAuditCSV_MissingFile(t *testing.T) {
	err := UpdateAuditCSV(filepath.Join(t.TempDir(), "none.csv"), summaries())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuditStructure)
}

func TestUpdateAuditCSV_RaggedRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Estimate_Audit.csv")
	writeAuditCSV(t, path,
		"ITEM_CODE,DATA_POINTS_USED,NOTES\n"+
			"105-06845\n") // row shorter than header

	require.NoError(t, UpdateAuditCSV(path, summaries()))
	rows := readAuditCSV(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, "6.45", rows[1][2])
	assert.Equal(t, "0.0630", rows[1][3])
}

func TestUpdateAuditCSV_RaggedRowWithItemCodeRightOfAnchor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Estimate_Audit.csv")
	writeAuditCSV(t, path,
		"DATA_POINTS_USED,ITEM_CODE\n"+
			"4,105-06845\n"+
			"4\n") // ragged row ends before the item-code column

	require.NoError(t, UpdateAuditCSV(path, summaries()))

	rows := readAuditCSV(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"DATA_POINTS_USED", "STD_DEV", "COEF_VAR", "ITEM_CODE"}, rows[0])
	assert.Equal(t, "6.45", rows[1][1])
	assert.Equal(t, "105-06845", rows[1][3])
	// The ragged row is padded and left blank, never dropped.
	assert.Equal(t, []string{"4", "", "", ""}, rows[2])
}

func TestUpdateAuditCSV_InsertsOnlyMissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Estimate_Audit.csv")
	writeAuditCSV(t, path,
		"ITEM_CODE,DATA_POINTS_USED,STD_DEV,MEAN_UNIT_PRICE\n"+
			"105-06845,4,stale,102.50\n")

	require.NoError(t, UpdateAuditCSV(path, summaries()))

	rows := readAuditCSV(t, path)
	assert.Equal(t, []string{"ITEM_CODE", "DATA_POINTS_USED", "STD_DEV", "COEF_VAR", "MEAN_UNIT_PRICE"}, rows[0])
	assert.Equal(t, "6.45", rows[1][2])
	assert.Equal(t, "0.0630", rows[1][3])
	assert.Equal(t, "102.50", rows[1][4])

	for _, name := range []string{"STD_DEV", "COEF_VAR"} {
		count := 0
		for _, h := range rows[0] {
			if h == name {
				count++
			}
		}
		assert.Equal(t, 1, count, "column %s must not be duplicated", name)
	}
}

func TestUpdateAuditCSV_InsertsMissingStdDevBeforeExistingCoefVar(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Estimate_Audit.csv")
	writeAuditCSV(t, path,
		"DATA_POINTS_USED,COEF_VAR,ITEM_CODE\n"+
			"4,stale,105-06845\n")

	require.NoError(t, UpdateAuditCSV(path, summaries()))

	rows := readAuditCSV(t, path)
	assert.Equal(t, []string{"DATA_POINTS_USED", "STD_DEV", "COEF_VAR", "ITEM_CODE"}, rows[0])
	assert.Equal(t, "6.45", rows[1][1])
	assert.Equal(t, "0.0630", rows[1][2])
	assert.Equal(t, "105-06845", rows[1][3])
}
