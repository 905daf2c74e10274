package shiftcal

import (
	"testing"
	"time"
)

// The plant timezone has no DST, so a fixed offset is equivalent and keeps
// the tests independent of the host tzdata.
var hcm = time.FixedZone("+07", 7*3600)

func TestPrevDayRollover(t *testing.T) {
	cases := []struct {
		in   Window
		want Window
	}{
		{Window{2024, 3, 1, Day}, Window{2024, 2, 29, Day}},
		{Window{2022, 3, 1, Day}, Window{2022, 2, 28, Day}},
		{Window{2024, 1, 1, Night}, Window{2023, 12, 31, Night}},
		{Window{2024, 1, 5, Day}, Window{2024, 1, 4, Day}},
	}
	for _, c := range cases {
		if got := c.in.PrevDay(); got != c.want {
			t.Errorf("PrevDay(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestPrevShift(t *testing.T) {
	if got := (Window{2024, 1, 5, Night}).PrevShift(); got != (Window{2024, 1, 5, Day}) {
		t.Errorf("PrevShift night = %v", got)
	}
	if got := (Window{2024, 3, 1, Day}).PrevShift(); got != (Window{2024, 2, 29, Night}) {
		t.Errorf("PrevShift day = %v", got)
	}
}

func TestCurrentBoundaries(t *testing.T) {
	at := func(h, m int) time.Time {
		return time.Date(2024, 1, 5, h, m, 0, 0, hcm)
	}
	cases := []struct {
		h, m int
		want Window
	}{
		{7, 29, Window{2024, 1, 4, Night}},
		{7, 30, Window{2024, 1, 5, Day}},
		{19, 29, Window{2024, 1, 5, Day}},
		{19, 30, Window{2024, 1, 5, Night}},
		{23, 59, Window{2024, 1, 5, Night}},
		{0, 0, Window{2024, 1, 4, Night}},
	}
	for _, c := range cases {
		if got := Current(at(c.h, c.m)); got != c.want {
			t.Errorf("Current(%02d:%02d) = %v, want %v", c.h, c.m, got, c.want)
		}
	}
}

func TestBounds(t *testing.T) {
	start, end := Window{2024, 1, 5, Day}.Bounds(hcm)
	if start != 1704414600 || end != 1704457800 {
		t.Fatalf("day bounds = (%d, %d)", start, end)
	}
	start, end = Window{2024, 1, 5, Night}.Bounds(hcm)
	if start != 1704457800 || end != 1704501000 {
		t.Fatalf("night bounds = (%d, %d)", start, end)
	}
	if end-start != ShiftSeconds {
		t.Fatalf("shift span = %d", end-start)
	}
}

func TestHourBucketsTileShift(t *testing.T) {
	for _, s := range []Shift{Day, Night} {
		w := Window{2024, 2, 29, s}
		start, end := w.Bounds(hcm)
		buckets := w.HourBuckets(hcm)
		if buckets[0].Start != start {
			t.Errorf("%v: first bucket starts at %d, shift at %d", s, buckets[0].Start, start)
		}
		if buckets[11].End != end {
			t.Errorf("%v: last bucket ends at %d, shift at %d", s, buckets[11].End, end)
		}
		for i, b := range buckets {
			if b.End-b.Start != 3600 {
				t.Errorf("%v bucket %d spans %d seconds", s, i, b.End-b.Start)
			}
			if i > 0 && buckets[i-1].End != b.Start {
				t.Errorf("%v bucket %d not contiguous", s, i)
			}
		}
	}
}

func TestHourLabels(t *testing.T) {
	day := HourLabels(Day, true)
	if len(day) != 13 || day[12] != "SUM" {
		t.Fatalf("day labels = %v", day)
	}
	if day[0] != " 7:30 -  8:30" {
		t.Errorf("first day label = %q", day[0])
	}
	night := HourLabels(Night, false)
	if len(night) != 12 {
		t.Fatalf("night labels = %v", night)
	}
	if night[4] != "23:30 -  0:30" {
		t.Errorf("midnight label = %q", night[4])
	}
}

func TestParseWindow(t *testing.T) {
	w, ok := ParseWindow("2024-01-06", "DAY")
	if !ok || w != (Window{2024, 1, 6, Day}) {
		t.Fatalf("ParseWindow = %v, %v", w, ok)
	}
	bad := []struct{ date, shift string }{
		{"2019-01-06", "DAY"},  // outside the 2020s
		{"2024-13-06", "DAY"},  // month
		{"2024-00-06", "DAY"},  // month
		{"2024-01-32", "DAY"},  // day
		{"2024-1-06", "DAY"},   // not zero padded
		{"2024-01-06", "day"},  // shift case
		{"2024-01-06", "BOTH"}, // unknown shift
		{"", "NIGHT"},
	}
	for _, c := range bad {
		if _, ok := ParseWindow(c.date, c.shift); ok {
			t.Errorf("ParseWindow(%q, %q) accepted", c.date, c.shift)
		}
	}
}

// A rendered previous-day link, when parsed back, must match direct
// computation from the original window.
func TestPrevDayRoundTrip(t *testing.T) {
	w := Window{2024, 3, 1, Night}
	pre := w.PrevDay()
	got, ok := ParseWindow(pre.Date(), pre.Shift.String())
	if !ok || got != pre {
		t.Fatalf("round trip = %v, %v", got, ok)
	}
}
