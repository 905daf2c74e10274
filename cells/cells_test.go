package cells

import "testing"

func TestListSizes(t *testing.T) {
	sizes := map[string]int{BST: 8, LCDLED: 6, DIAG: 8, KEYPAD: 6}
	for station, want := range sizes {
		if got := len(List(station)); got != want {
			t.Errorf("%s has %d cells, want %d", station, got, want)
		}
	}
	if List("AP3") != nil {
		t.Error("unknown station should have no cells")
	}
}

func TestStationOf(t *testing.T) {
	cases := map[string]string{
		"CELL_85":       LCDLED,
		"CELL_53":       DIAG,
		"CELL_79":       KEYPAD,
		"BST_01:DUT_08": BST,
	}
	for cell, want := range cases {
		got, ok := StationOf(cell)
		if !ok || got != want {
			t.Errorf("StationOf(%q) = %q, %v", cell, got, ok)
		}
	}
	if _, ok := StationOf("CELL_99"); ok {
		t.Error("CELL_99 should be unknown")
	}
}

func TestStationsAreDisjoint(t *testing.T) {
	seen := map[string]string{}
	for _, station := range []string{BST, LCDLED, DIAG, KEYPAD} {
		for _, c := range List(station) {
			if prev, dup := seen[c]; dup {
				t.Errorf("cell %q in both %s and %s", c, prev, station)
			}
			seen[c] = station
		}
	}
}

func TestIndex(t *testing.T) {
	if got := Index("CELL_85", LCDLED); got != 4 {
		t.Errorf("Index(CELL_85, LCDLED) = %d", got)
	}
	if got := Index("CELL_85", DIAG); got != -1 {
		t.Errorf("cross-station lookup = %d", got)
	}
	for _, station := range []string{BST, LCDLED, DIAG, KEYPAD} {
		for i, c := range List(station) {
			if got := Index(c, station); got != i {
				t.Errorf("Index(%q, %s) = %d, want %d", c, station, got, i)
			}
		}
	}
}
