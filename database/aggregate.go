package database

import (
	"fmt"
	"strings"

	"shiftstat/cells"
	"shiftstat/shiftcal"
)

// Placeholder serials the stations record for non-serialized units. They
// are blanked everywhere a serial number is shown.
var placeholderSNs = []string{"FCH11111111", "FCH12345678"}

// RedactSN blanks the placeholder serial numbers.
func RedactSN(sn string) string {
	for _, p := range placeholderSNs {
		if sn == p {
			return ""
		}
	}
	return sn
}

// IsPlaceholderSN reports whether sn is one of the non-serialized-unit
// placeholders.
func IsPlaceholderSN(sn string) bool {
	return RedactSN(sn) == "" && sn != ""
}

// ShortCell extracts the human-readable cell id from a composite legacy
// key, e.g. "UCEBU Automatic BST New|PCBDG|BST-01|BST_01:DUT_02" ->
// "BST_01:DUT_02". A key without separators passes through unchanged.
func ShortCell(key string) string {
	sp := strings.Split(key, "|")
	return sp[len(sp)-1]
}

// CellKey builds the composite key the stations write into tst_record.
// The two FST lines are physical instances "1" and "2"; BST stations are
// always numbered -01 regardless of line.
func CellKey(line, station, cell string) string {
	if strings.Contains(line, "fst") {
		n := "1"
		if line == "fst2" {
			n = "2"
		}
		return fmt.Sprintf("Bgibest Auto FST %s|PCBINT|%s-%s|%s", n, station, n, cell)
	}
	return fmt.Sprintf("UCEBU Automatic BST New|PCBDG|%s-01|%s", station, cell)
}

// Tally holds result-code counts over some set of records.
type Tally struct {
	Skip    int
	Pass    int
	Fail    int
	Unknown int
}

// Add counts one result code. Codes outside S/P/F/U are ignored, matching
// the store's loose contract.
func (t *Tally) Add(result string) {
	switch result {
	case "S":
		t.Skip++
	case "P":
		t.Pass++
	case "F":
		t.Fail++
	case "U":
		t.Unknown++
	}
}

// YieldString formats the pass rate over terminal outcomes to one decimal
// place. The skip!=0 && fail!=0 gate reproduces the legacy reports
// verbatim; it is very likely meant to be (pass+fail)!=0, but the floor
// reads these numbers daily and the rendering must not shift under them.
func (t Tally) YieldString() string {
	if t.Skip == 0 || t.Fail == 0 {
		return ""
	}
	return fmt.Sprintf("%.1f %%", 100*float64(t.Pass)/float64(t.Pass+t.Fail))
}

// FormatPassFail renders one cell of the pass/fail grid: blank when both
// counts are zero, the bare pass count when only passes exist, and a
// "pass | fail" pair otherwise (with the pass token omitted when zero).
func FormatPassFail(pass, fail int) string {
	switch {
	case pass == 0 && fail == 0:
		return ""
	case fail == 0:
		return fmt.Sprintf("%d", pass)
	case pass == 0:
		return fmt.Sprintf(" | %d", fail)
	default:
		return fmt.Sprintf("%d | %d", pass, fail)
	}
}

// bucketIndex locates the hour bucket containing ts. The caller only
// feeds rows already filtered to the shift window, so a miss means the
// bucket arithmetic itself is broken.
func bucketIndex(buckets [12]shiftcal.Bucket, ts int64) int {
	for i, b := range buckets {
		if b.Contains(ts) {
			return i
		}
	}
	panic(fmt.Sprintf("database: timestamp %d outside every hour bucket [%d, %d)",
		ts, buckets[0].Start, buckets[11].End))
}

// cellColumn maps a composite cell key to its 1-based matrix column.
// Column 0 is the per-hour station total. An unknown cell in a station's
// own store indicates registry drift, which is a defect.
func cellColumn(key, station string) int {
	cell := ShortCell(key)
	j := cells.Index(cell, station)
	if j < 0 {
		panic(fmt.Sprintf("database: cell %q not registered for station %s", cell, station))
	}
	return j + 1
}
