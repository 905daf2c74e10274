// Package shiftcal converts wall-clock time into 12-hour production shift
// windows. Shifts run 07:30-19:30 (DAY) and 19:30-07:30 next day (NIGHT);
// a window is always keyed by the shift's start date.
package shiftcal

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Shift is one of the two operational periods.
type Shift int

const (
	Day Shift = iota
	Night
)

func (s Shift) String() string {
	if s == Day {
		return "DAY"
	}
	return "NIGHT"
}

// Wall-clock boundaries as hour*100+minute. The three classification
// ranges [dayStart,nightStart), [nightStart,2400), [0,dayStart) must tile
// the full day.
const (
	dayStart   = 730
	nightStart = 1930
)

// ShiftSeconds is the exact length of one shift.
const ShiftSeconds = 12 * 3600

var dayHours = [13][2]int{
	{7, 30}, {8, 30}, {9, 30}, {10, 30}, {11, 30}, {12, 30},
	{13, 30}, {14, 30}, {15, 30}, {16, 30}, {17, 30}, {18, 30}, {19, 30},
}

var nightHours = [13][2]int{
	{19, 30}, {20, 30}, {21, 30}, {22, 30}, {23, 30},
	{0, 30}, {1, 30}, {2, 30}, {3, 30}, {4, 30}, {5, 30}, {6, 30}, {7, 30},
}

// Window identifies one reporting shift. Year/Month/Day refer to the
// shift's start date: the NIGHT shift that ends at 07:30 on the 6th is
// keyed by the 5th.
type Window struct {
	Year  int
	Month int
	Day   int
	Shift Shift
}

// Date formats the window's start date as YYYY-MM-DD.
func (w Window) Date() string {
	return fmt.Sprintf("%04d-%02d-%02d", w.Year, w.Month, w.Day)
}

// Current classifies a local instant into its shift window. The instant
// must already be in the plant's local timezone. An hour:minute value that
// escapes all three ranges means the range constants no longer tile the
// day, which is a defect, not an input problem.
func Current(now time.Time) Window {
	hm := now.Hour()*100 + now.Minute()
	y, m, d := now.Date()
	switch {
	case dayStart <= hm && hm < nightStart:
		return Window{y, int(m), d, Day}
	case nightStart <= hm && hm < 2400:
		return Window{y, int(m), d, Night}
	case 0 <= hm && hm < dayStart:
		// Tail of the shift that started the prior evening.
		return Window{y, int(m), d, Night}.PrevDay()
	}
	panic(fmt.Sprintf("shiftcal: %04d outside every shift range", hm))
}

// PrevDay returns the same shift kind one calendar day earlier.
func (w Window) PrevDay() Window {
	t := time.Date(w.Year, time.Month(w.Month), w.Day, 8, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	return Window{t.Year(), int(t.Month()), t.Day(), w.Shift}
}

// PrevShift returns the shift immediately before this one. NIGHT's start
// date already names the prior evening, so NIGHT maps to DAY of the same
// date while DAY maps to NIGHT of the previous date.
func (w Window) PrevShift() Window {
	if w.Shift == Night {
		return Window{w.Year, w.Month, w.Day, Day}
	}
	p := w.PrevDay()
	p.Shift = Night
	return p
}

func (w Window) startTime(loc *time.Location) time.Time {
	h := 7
	if w.Shift == Night {
		h = 19
	}
	return time.Date(w.Year, time.Month(w.Month), w.Day, h, 30, 0, 0, loc)
}

// Bounds returns the shift's [start, end) as epoch seconds in loc.
func (w Window) Bounds(loc *time.Location) (int64, int64) {
	start := w.startTime(loc).Unix()
	return start, start + ShiftSeconds
}

// Bucket is one half-open [Start, End) hour interval of a shift.
type Bucket struct {
	Start int64
	End   int64
}

// Contains reports whether ts falls inside the bucket.
func (b Bucket) Contains(ts int64) bool {
	return b.Start <= ts && ts < b.End
}

// HourBuckets partitions the shift into 12 contiguous one-hour buckets.
// Bucket boundaries follow the local shift start (xx:30), not UTC hours.
func (w Window) HourBuckets(loc *time.Location) [12]Bucket {
	var r [12]Bucket
	start := w.startTime(loc).Unix()
	for i := range r {
		r[i] = Bucket{start + int64(i)*3600, start + int64(i+1)*3600}
	}
	return r
}

// HourLabels returns the 12 "HH:MM - HH:MM" bucket headers for a shift,
// plus a trailing "SUM" header when withSum is set.
func HourLabels(s Shift, withSum bool) []string {
	hours := dayHours
	if s == Night {
		hours = nightHours
	}
	r := make([]string, 0, 13)
	for i := 0; i < 12; i++ {
		r = append(r, fmt.Sprintf("%2d:%02d - %2d:%02d",
			hours[i][0], hours[i][1], hours[i+1][0], hours[i+1][1]))
	}
	if withSum {
		r = append(r, "SUM")
	}
	return r
}

// Date parameters are restricted to the 2020s on purpose: the stores hold
// no older data and a wider pattern would let typos through.
var dateRe = regexp.MustCompile(`^(202\d)-(0[1-9]|1[012])-(0[1-9]|[12]\d|3[01])$`)

// ParseWindow validates user-supplied querydate/shift parameters and
// builds a window from them.
func ParseWindow(date, shift string) (Window, bool) {
	var s Shift
	switch shift {
	case "DAY":
		s = Day
	case "NIGHT":
		s = Night
	default:
		return Window{}, false
	}
	m := dateRe.FindStringSubmatch(date)
	if m == nil {
		return Window{}, false
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	return Window{year, month, day, s}, true
}
