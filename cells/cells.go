// Package cells is the fixed registry of test cells per station. The four
// sets are disjoint configuration data owned by the test floor; they are
// not discovered at runtime.
package cells

// Station codes.
const (
	BST    = "BST"
	LCDLED = "LCDLED"
	DIAG   = "DIAG"
	KEYPAD = "KEYPAD"
)

var bstCells = []string{
	"BST_01:DUT_01", "BST_01:DUT_02", "BST_01:DUT_03", "BST_01:DUT_04",
	"BST_01:DUT_05", "BST_01:DUT_06", "BST_01:DUT_07", "BST_01:DUT_08",
}

var lcdledCells = []string{
	"CELL_81", "CELL_82", "CELL_83", "CELL_84", "CELL_85", "CELL_86",
}

var diagCells = []string{
	"CELL_53", "CELL_55", "CELL_57", "CELL_59", "CELL_61", "CELL_63", "CELL_65", "CELL_67",
}

var keypadCells = []string{
	"CELL_69", "CELL_71", "CELL_73", "CELL_75", "CELL_77", "CELL_79",
}

// List returns the ordered cell ids of a station, or nil for an unknown
// station code.
func List(station string) []string {
	switch station {
	case BST:
		return bstCells
	case LCDLED:
		return lcdledCells
	case DIAG:
		return diagCells
	case KEYPAD:
		return keypadCells
	}
	return nil
}

// StationOf reverse-maps a cell id to its station.
func StationOf(cell string) (string, bool) {
	for _, station := range []string{LCDLED, DIAG, KEYPAD, BST} {
		for _, c := range List(station) {
			if c == cell {
				return station, true
			}
		}
	}
	return "", false
}

// Index returns the position of cell within its station's ordered list,
// or -1 when the cell does not belong to that station.
func Index(cell, station string) int {
	for i, c := range List(station) {
		if c == cell {
			return i
		}
	}
	return -1
}
