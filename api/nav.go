package api

import (
	"net/http"
	"regexp"
	"time"

	"shiftstat/shiftcal"
)

// refererRe matches the dashboard's own page URLs, with or without the
// querydate/shift pair. Old bookmarks hit preday/preshift without query
// parameters, so the referer is the only hint which window the user was
// looking at.
var refererRe = regexp.MustCompile(
	`^https?://[\w.:-]+/(\w\w-\w\w)/(\w+)/(\w+)/?(\?querydate=(20\d\d-[01]\d-[0-3]\d)&shift=(\w+))?$`)

// requestWindow resolves the shift window a navigation request refers
// to: the request's own querydate/shift parameters win, then the referer
// URL's (legacy shim), then the current instant.
func requestWindow(r *http.Request, now time.Time, loc *time.Location) shiftcal.Window {
	q := r.URL.Query()
	if w, ok := shiftcal.ParseWindow(q.Get("querydate"), q.Get("shift")); ok {
		return w
	}
	if w, ok := refererWindow(r.Header.Get("Referer")); ok {
		return w
	}
	return shiftcal.Current(now.In(loc))
}

func refererWindow(ref string) (shiftcal.Window, bool) {
	m := refererRe.FindStringSubmatch(ref)
	if m == nil || m[4] == "" {
		return shiftcal.Window{}, false
	}
	return shiftcal.ParseWindow(m[5], m[6])
}
