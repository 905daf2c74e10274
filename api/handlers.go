package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"shiftstat/cells"
	"shiftstat/charting"
	"shiftstat/config"
	"shiftstat/database"
	"shiftstat/i18n"
	"shiftstat/shiftcal"
	"shiftstat/web"
)

// queryCount is the record window of the per-cell yield pages.
const queryCount = 400

// queryTimeout bounds every store query. The stores live on network
// shares; a hung mount must not pin request goroutines forever.
const queryTimeout = 15 * time.Second

var snRe = regexp.MustCompile(`^[A-Z0-9]{11}$`)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	cfg    *config.Config
	db     *database.DB
	langs  i18n.Table
	render *web.Renderer
	charts *charting.Generator
	now    func() time.Time
}

// NewHandler creates a new handler instance
func NewHandler(cfg *config.Config, db *database.DB, langs i18n.Table, render *web.Renderer) *Handler {
	return &Handler{
		cfg:    cfg,
		db:     db,
		langs:  langs,
		render: render,
		charts: charting.NewGenerator(),
		now:    time.Now,
	}
}

// vars pulls and validates the lang/line path segments. A miss is a 404;
// these URLs are hand-typed often enough that guessing is unhelpful.
func (h *Handler) vars(w http.ResponseWriter, r *http.Request) (lang, line string, ok bool) {
	v := mux.Vars(r)
	lang, line = v["lang"], v["line"]
	if !h.langs.Supported(lang) || !config.ValidLine(line) {
		http.NotFound(w, r)
		return "", "", false
	}
	return lang, line, true
}

func (h *Handler) pageContext(lang, line, title string) web.PageContext {
	hostname, _ := h.cfg.Hostname(line)
	return web.PageContext{
		Title:      title,
		Lang:       lang,
		Line:       line,
		Hostname:   hostname,
		UpdateTime: h.now().In(h.cfg.Location).Format("2006-01-02 15:04:05"),
		T:          h.langs.Strings(lang),
	}
}

func stations(line string) []string {
	if strings.Contains(line, "bst") {
		return []string{cells.BST}
	}
	return []string{cells.LCDLED, cells.DIAG, cells.KEYPAD}
}

func (h *Handler) renderPage(w http.ResponseWriter, page string, ctx web.PageContext) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.render.Render(w, page, ctx); err != nil {
		log.Printf("render %s: %v", page, err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
	}
}

// windowOrRedirect parses querydate/shift. On anything malformed or
// missing it redirects to the same page pinned to the current shift, so
// every rendered page has a canonical bookmarkable URL.
func (h *Handler) windowOrRedirect(w http.ResponseWriter, r *http.Request, lang, line, item string) (shiftcal.Window, bool) {
	q := r.URL.Query()
	win, ok := shiftcal.ParseWindow(q.Get("querydate"), q.Get("shift"))
	if ok {
		return win, true
	}
	cur := shiftcal.Current(h.now().In(h.cfg.Location))
	http.Redirect(w, r, shiftURL(lang, line, item, cur), http.StatusSeeOther)
	return shiftcal.Window{}, false
}

func shiftURL(lang, line, item string, w shiftcal.Window) string {
	return fmt.Sprintf("/%s/%s/%s/?querydate=%s&shift=%s", lang, line, item, w.Date(), w.Shift)
}

// Homepage shows the configured stores and which files are reachable.
func (h *Handler) Homepage(w http.ResponseWriter, r *http.Request) {
	data := web.HomepageData{
		ConfigPath: h.cfg.ConfigPath,
		DBDir:      h.cfg.DBDir,
	}
	labels := []struct{ label, line, station string }{
		{"bst1 BST", "bst1", cells.BST},
		{"bst2 BST", "bst2", cells.BST},
		{"fst1 LCDLED", "fst1", cells.LCDLED},
		{"fst1 DIAG", "fst1", cells.DIAG},
		{"fst1 KEYPAD", "fst1", cells.KEYPAD},
		{"fst2 LCDLED", "fst2", cells.LCDLED},
		{"fst2 DIAG", "fst2", cells.DIAG},
		{"fst2 KEYPAD", "fst2", cells.KEYPAD},
	}
	for _, l := range labels {
		path, _ := h.cfg.StorePath(l.line, l.station)
		hostname, _ := h.cfg.Hostname(l.line)
		data.Stores = append(data.Stores, web.StoreStatus{
			Label:    l.label,
			Hostname: hostname,
			Path:     path,
			Missing:  !h.db.StoreExists(l.line, l.station),
		})
	}

	ctx := h.pageContext("en-US", "", "Test Report Dashboard")
	ctx.Data = data
	h.renderPage(w, "homepage.html", ctx)
}

// HealthCheck reports process liveness plus per-store reachability.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	stores := make(map[string]bool)
	for _, line := range config.Lines {
		for _, station := range stations(line) {
			stores[line+"/"+station] = h.db.StoreExists(line, station)
		}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"stores": stores,
	})
}

// JSONToday returns the shift window covering the current instant.
func (h *Handler) JSONToday(w http.ResponseWriter, r *http.Request) {
	cur := shiftcal.Current(h.now().In(h.cfg.Location))
	respondJSON(w, http.StatusOK, map[string]string{
		"date":  cur.Date(),
		"shift": cur.Shift.String(),
	})
}

// LinePage lands on the line's pass/fail grid.
func (h *Handler) LinePage(w http.ResponseWriter, r *http.Request) {
	lang, line, ok := h.vars(w, r)
	if !ok {
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/%s/%s/pf_data", lang, line), http.StatusSeeOther)
}

// PFData renders the per-hour pass/fail grid of every station on a line.
func (h *Handler) PFData(w http.ResponseWriter, r *http.Request) {
	lang, line, ok := h.vars(w, r)
	if !ok {
		return
	}
	win, ok := h.windowOrRedirect(w, r, lang, line, "pf_data")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	var data []web.StationMatrix
	for _, station := range stations(line) {
		rows, err := h.db.PassFailMatrix(ctx, line, station, win)
		if err != nil {
			log.Printf("pf_data %s %s: %v", line, station, err)
			http.Error(w, "failed to query store", http.StatusInternalServerError)
			return
		}
		data = append(data, web.StationMatrix{
			Name:      station,
			CellNames: cells.List(station),
			Rows:      rows,
		})
	}

	page := h.pageContext(lang, line, "Pass | Fail data")
	page.Item = "pf_data"
	page.Date = win.Date()
	page.Shift = win.Shift.String()
	page.Data = data
	h.renderPage(w, "pf_data.html", page)
}

// DayYield renders the hourly S/P/F/U tables of every station on a line.
func (h *Handler) DayYield(w http.ResponseWriter, r *http.Request) {
	lang, line, ok := h.vars(w, r)
	if !ok {
		return
	}
	win, ok := h.windowOrRedirect(w, r, lang, line, "day_yield")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	var data []web.StationHours
	for _, station := range stations(line) {
		hours, err := h.db.DayYield(ctx, line, station, win)
		if err != nil {
			log.Printf("day_yield %s %s: %v", line, station, err)
			http.Error(w, "failed to query store", http.StatusInternalServerError)
			return
		}
		data = append(data, web.StationHours{Name: station, Hours: hours})
	}

	page := h.pageContext(lang, line, "Day Yield")
	page.Item = "day_yield"
	page.Date = win.Date()
	page.Shift = win.Shift.String()
	page.Data = data
	h.renderPage(w, "day_yield.html", page)
}

// YieldChart renders the line's hourly pass/fail counts as a PNG, summed
// over the line's stations.
func (h *Handler) YieldChart(w http.ResponseWriter, r *http.Request) {
	_, line, ok := h.vars(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	win, ok := shiftcal.ParseWindow(q.Get("querydate"), q.Get("shift"))
	if !ok {
		win = shiftcal.Current(h.now().In(h.cfg.Location))
	}
	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	var total []database.HourTally
	for _, station := range stations(line) {
		hours, err := h.db.DayYield(ctx, line, station, win)
		if err != nil {
			log.Printf("yield_chart %s %s: %v", line, station, err)
			http.Error(w, "failed to query store", http.StatusInternalServerError)
			return
		}
		if total == nil {
			total = hours
			continue
		}
		for i := range total {
			total[i].Skip += hours[i].Skip
			total[i].Pass += hours[i].Pass
			total[i].Fail += hours[i].Fail
			total[i].Unknown += hours[i].Unknown
		}
	}

	png, err := h.charts.HourlyPassFail(total)
	if err != nil {
		log.Printf("yield_chart %s: %v", line, err)
		http.Error(w, "failed to render chart", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

// FailDetail renders the F/U records of the shift, per station.
func (h *Handler) FailDetail(w http.ResponseWriter, r *http.Request) {
	lang, line, ok := h.vars(w, r)
	if !ok {
		return
	}
	win, ok := h.windowOrRedirect(w, r, lang, line, "fail_detail")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	var data []web.StationRecords
	for _, station := range stations(line) {
		rows, err := h.db.FailDetail(ctx, line, station, win)
		if err != nil {
			log.Printf("fail_detail %s %s: %v", line, station, err)
			http.Error(w, "failed to query store", http.StatusInternalServerError)
			return
		}
		data = append(data, web.StationRecords{Name: station, Rows: rows})
	}

	page := h.pageContext(lang, line, "Fail Detail")
	page.Item = "fail_detail"
	page.Date = win.Date()
	page.Shift = win.Shift.String()
	page.Data = data
	h.renderPage(w, "fail_detail.html", page)
}

// QueryCell shows one cell's recent records when ?cell= names a known
// cell; otherwise the per-cell yield summary of the whole line.
func (h *Handler) QueryCell(w http.ResponseWriter, r *http.Request) {
	lang, line, ok := h.vars(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	cell := r.URL.Query().Get("cell")
	if _, known := cells.StationOf(cell); known {
		tally, fails, err := h.db.CellRecords(ctx, line, cell, queryCount)
		if err != nil {
			log.Printf("query_cell %s %s: %v", line, cell, err)
			http.Error(w, "failed to query store", http.StatusInternalServerError)
			return
		}
		page := h.pageContext(lang, line, "Query Cell")
		page.Data = web.CellRecordData{
			QueryCount: queryCount,
			Cell:       cell,
			Tally:      tally,
			Fails:      fails,
		}
		h.renderPage(w, "cell_record.html", page)
		return
	}

	var yields []database.CellYield
	for _, station := range stations(line) {
		ys, err := h.db.StationYield(ctx, line, station, queryCount)
		if err != nil {
			log.Printf("query_cell %s %s: %v", line, station, err)
			http.Error(w, "failed to query store", http.StatusInternalServerError)
			return
		}
		yields = append(yields, ys...)
	}
	page := h.pageContext(lang, line, "Query Cell")
	page.Data = yields
	h.renderPage(w, "station_yield.html", page)
}

// QuerySN shows a serial number's history across all stores. Bad or
// placeholder serials render the empty form rather than an error.
func (h *Handler) QuerySN(w http.ResponseWriter, r *http.Request) {
	lang, line, ok := h.vars(w, r)
	if !ok {
		return
	}
	page := h.pageContext(lang, line, "Query Sn")

	sn := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("sn")))
	if !snRe.MatchString(sn) || database.IsPlaceholderSN(sn) {
		page.Data = web.SNData{}
		h.renderPage(w, "sn_record.html", page)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()
	rows, err := h.db.SNRecord(ctx, sn)
	if err != nil {
		log.Printf("query_sn %s: %v", sn, err)
		http.Error(w, "failed to query stores", http.StatusInternalServerError)
		return
	}
	page.Data = web.SNData{SN: sn, Rows: rows}
	h.renderPage(w, "sn_record.html", page)
}

// Portconfig is the static terminal-server port reference.
func (h *Handler) Portconfig(w http.ResponseWriter, r *http.Request) {
	lang, line, ok := h.vars(w, r)
	if !ok {
		return
	}
	h.renderPage(w, "portconfig.html", h.pageContext(lang, line, "Port Config"))
}

// Keyname is the static tester hotkey reference.
func (h *Handler) Keyname(w http.ResponseWriter, r *http.Request) {
	lang, line, ok := h.vars(w, r)
	if !ok {
		return
	}
	h.renderPage(w, "keyname.html", h.pageContext(lang, line, "Key Name"))
}

// navItems are the pages the preday/preshift links navigate between.
var navItems = map[string]bool{
	"pf_data":     true,
	"day_yield":   true,
	"fail_detail": true,
}

// PreDay redirects to the same page one calendar day earlier.
func (h *Handler) PreDay(w http.ResponseWriter, r *http.Request) {
	h.preNav(w, r, shiftcal.Window.PrevDay)
}

// PreShift redirects to the same page one shift earlier.
func (h *Handler) PreShift(w http.ResponseWriter, r *http.Request) {
	h.preNav(w, r, shiftcal.Window.PrevShift)
}

func (h *Handler) preNav(w http.ResponseWriter, r *http.Request, step func(shiftcal.Window) shiftcal.Window) {
	lang, line, ok := h.vars(w, r)
	if !ok {
		return
	}
	item := mux.Vars(r)["item"]
	if !navItems[item] {
		http.NotFound(w, r)
		return
	}
	win := requestWindow(r, h.now(), h.cfg.Location)
	http.Redirect(w, r, shiftURL(lang, line, item, step(win)), http.StatusSeeOther)
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
