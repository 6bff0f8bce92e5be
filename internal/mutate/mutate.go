// Package mutate performs structure-preserving, in-place updates of
// existing estimate artifacts: it inserts derived columns at a fixed
// position relative to a named anchor column and fills them row-by-row,
// leaving every other cell, row, and sheet untouched.
//
// Both mutators are idempotent: when the target column already exists by
// name, its values are overwritten in place instead of inserting a second
// copy. All writes go to a temp sibling that is renamed over the original,
// so an interrupted or failed run never leaves a half-written artifact.
package mutate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrWorkbookStructure marks an estimate workbook missing its expected
// sheet or anchor column. Fatal for that artifact: a configuration mismatch
// between code and artifact, not something to retry.
var ErrWorkbookStructure = eris.New("mutate: workbook structure mismatch")

// ErrAuditStructure is the delimited-file equivalent of ErrWorkbookStructure.
var ErrAuditStructure = eris.New("mutate: audit structure mismatch")

// Column names written by the mutators.
const (
	anchorColumn  = "DATA_POINTS_USED"
	confColumn    = "CONFIDENCE"
	stdDevColumn  = "STD_DEV"
	coefVarColumn = "COEF_VAR"
)

// tempPath returns the sibling temp path used for atomic replacement.
// Keeping it in the same directory guarantees os.Rename stays on one
// filesystem, and keeping the original extension satisfies writers that
// validate the target format by suffix (excelize rejects anything else).
func tempPath(path string) string {
	dir, base := filepath.Split(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d%s", stem, os.Getpid(), ext))
}
