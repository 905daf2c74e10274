package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"shiftstat/config"
	"shiftstat/jobs"
	"shiftstat/shiftcal"
)

func hcmZone() *time.Location {
	return time.FixedZone("+07", 7*3600)
}

// testConfig wires all eight stores into a temp dir. Only the files a
// test seeds will exist on disk.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		OverfetchFactor: 2,
		Location:        hcmZone(),
		Bst1:            config.BstLine{Hostname: "bst1-host", BstDB: filepath.Join(dir, "bst1.db")},
		Bst2:            config.BstLine{Hostname: "bst2-host", BstDB: filepath.Join(dir, "bst2.db")},
		Fst1: config.FstLine{
			Hostname: "fst1-host",
			LcdDB:    filepath.Join(dir, "fst1_lcd.db"),
			DiagDB:   filepath.Join(dir, "fst1_diag.db"),
			KeyDB:    filepath.Join(dir, "fst1_key.db"),
		},
		Fst2: config.FstLine{
			Hostname: "fst2-host",
			LcdDB:    filepath.Join(dir, "fst2_lcd.db"),
			DiagDB:   filepath.Join(dir, "fst2_diag.db"),
			KeyDB:    filepath.Join(dir, "fst2_key.db"),
		},
	}
}

type testRow struct {
	sn     string
	result string
	cell   string
	msg    string
	ts     int64
}

func seedStore(t *testing.T, path string, rows []testRow) {
	t.Helper()
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Exec(createTableSQL); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	for _, r := range rows {
		_, err := conn.Exec(`INSERT INTO tst_record
			(beijing_str, sn, pid, pn, result, cell, msg, msg_detail, time_int)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			time.Unix(r.ts, 0).In(hcmZone()).Format("2006-01-02 15:04:05"),
			r.sn, "PID000001", "73-101942-02", r.result, r.cell, r.msg, "", float64(r.ts))
		if err != nil {
			t.Fatalf("failed to insert row: %v", err)
		}
	}
}

func newTestDB(t *testing.T, cfg *config.Config) *DB {
	t.Helper()
	pool := jobs.NewWorkerPool(4)
	t.Cleanup(pool.Stop)
	db := New(cfg, pool)
	t.Cleanup(db.Close)
	return db
}

func TestStationYield(t *testing.T) {
	cfg := testConfig(t)
	key := CellKey("bst1", "BST", "BST_01:DUT_01")
	rows := []testRow{
		{"FCH00000001", "P", key, "", 1704414600},
		{"FCH00000002", "P", key, "", 1704414660},
		{"FCH00000003", "F", key, "boot fail", 1704414720},
		{"FCH00000004", "S", key, "", 1704414780},
	}
	seedStore(t, cfg.Bst1.BstDB, rows)

	db := newTestDB(t, cfg)
	yields, err := db.StationYield(context.Background(), "bst1", "BST", 100)
	if err != nil {
		t.Fatalf("StationYield: %v", err)
	}
	if len(yields) != 8 {
		t.Fatalf("expected 8 cells, got %d", len(yields))
	}
	first := yields[0]
	if first.Cell != "BST_01:DUT_01" {
		t.Errorf("unexpected first cell %q", first.Cell)
	}
	want := Tally{Skip: 1, Pass: 2, Fail: 1}
	if first.Tally != want {
		t.Errorf("tally = %+v, want %+v", first.Tally, want)
	}
	if first.Yield != "66.7 %" {
		t.Errorf("yield = %q, want %q", first.Yield, "66.7 %")
	}
	// Cells with no records come back all-zero, not missing.
	if yields[7].Tally != (Tally{}) {
		t.Errorf("empty cell has tally %+v", yields[7].Tally)
	}
}

func TestStationYieldRespectsCount(t *testing.T) {
	cfg := testConfig(t)
	key := CellKey("fst1", "DIAG", "CELL_53")
	var rows []testRow
	// 10 old fails then 4 recent passes. With count=2 and overfetch 2 the
	// window is the last 4 rows only.
	for i := 0; i < 10; i++ {
		rows = append(rows, testRow{"FCH00000010", "F", key, "x", int64(1704414600 + i)})
	}
	for i := 0; i < 4; i++ {
		rows = append(rows, testRow{"FCH00000011", "P", key, "", int64(1704415600 + i)})
	}
	seedStore(t, cfg.Fst1.DiagDB, rows)

	db := newTestDB(t, cfg)
	yields, err := db.StationYield(context.Background(), "fst1", "DIAG", 2)
	if err != nil {
		t.Fatalf("StationYield: %v", err)
	}
	if got := yields[0].Tally; got.Fail != 0 || got.Pass != 4 {
		t.Errorf("window not limited: %+v", got)
	}
}

func TestCellRecords(t *testing.T) {
	cfg := testConfig(t)
	key := CellKey("fst2", "KEYPAD", "CELL_69")
	rows := []testRow{
		{"FCH00000001", "P", key, "", 1704414600},
		{"FCH11111111", "F", key, "key stuck", 1704414700},
		{"FCH00000003", "U", key, "timeout", 1704414800},
		{"FCH00000004", "P", key, "", 1704414900},
	}
	seedStore(t, cfg.Fst2.KeyDB, rows)

	db := newTestDB(t, cfg)
	tally, fails, err := db.CellRecords(context.Background(), "fst2", "CELL_69", 100)
	if err != nil {
		t.Fatalf("CellRecords: %v", err)
	}
	if (tally != Tally{Pass: 2, Fail: 1, Unknown: 1}) {
		t.Errorf("tally = %+v", tally)
	}
	if len(fails) != 2 {
		t.Fatalf("expected 2 fail rows, got %d", len(fails))
	}
	// Newest first: the U at 1704414800 precedes the F at 1704414700.
	if fails[0].Result != "U" || fails[1].Result != "F" {
		t.Errorf("fail order wrong: %q then %q", fails[0].Result, fails[1].Result)
	}
	if fails[1].SN != "" {
		t.Errorf("placeholder serial not blanked: %q", fails[1].SN)
	}
	if fails[0].Cell != "CELL_69" {
		t.Errorf("cell key not shortened: %q", fails[0].Cell)
	}
	if fails[0].Seq != 2 || fails[1].Seq != 3 {
		t.Errorf("batch positions wrong: %d, %d", fails[0].Seq, fails[1].Seq)
	}
}

func TestCellRecordsUnknownCell(t *testing.T) {
	db := newTestDB(t, testConfig(t))
	if _, _, err := db.CellRecords(context.Background(), "fst1", "CELL_99", 10); err == nil {
		t.Fatal("expected error for unknown cell")
	}
}

func TestFailDetail(t *testing.T) {
	cfg := testConfig(t)
	w := shiftcal.Window{Year: 2024, Month: 1, Day: 5, Shift: shiftcal.Day}
	start, end := w.Bounds(hcmZone())
	key := CellKey("bst2", "BST", "BST_01:DUT_02")
	rows := []testRow{
		{"FCH00000001", "F", key, "in window", start},
		{"FCH00000002", "U", key, "in window", end - 1},
		{"FCH00000003", "P", key, "pass ignored", start + 100},
		{"FCH00000004", "F", key, "before window", start - 1},
		{"FCH00000005", "F", key, "after window", end},
	}
	seedStore(t, cfg.Bst2.BstDB, rows)

	db := newTestDB(t, cfg)
	got, err := db.FailDetail(context.Background(), "bst2", "BST", w)
	if err != nil {
		t.Fatalf("FailDetail: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	for _, r := range got {
		if r.Msg != "in window" {
			t.Errorf("unexpected row: %+v", r)
		}
	}
}

func TestDayYield(t *testing.T) {
	cfg := testConfig(t)
	w := shiftcal.Window{Year: 2024, Month: 1, Day: 5, Shift: shiftcal.Day}
	buckets := w.HourBuckets(hcmZone())
	key := CellKey("fst1", "LCDLED", "CELL_81")
	rows := []testRow{
		{"FCH00000001", "P", key, "", buckets[0].Start},
		{"FCH00000002", "P", key, "", buckets[0].End - 1},
		{"FCH00000003", "F", key, "", buckets[5].Start},
		{"FCH00000004", "S", key, "", buckets[11].End - 1},
		{"FCH00000005", "P", key, "", buckets[11].End}, // out of shift
	}
	seedStore(t, cfg.Fst1.LcdDB, rows)

	db := newTestDB(t, cfg)
	got, err := db.DayYield(context.Background(), "fst1", "LCDLED", w)
	if err != nil {
		t.Fatalf("DayYield: %v", err)
	}
	if len(got) != 13 {
		t.Fatalf("expected 13 rows, got %d", len(got))
	}
	if got[0].Pass != 2 {
		t.Errorf("bucket 0 pass = %d, want 2", got[0].Pass)
	}
	if got[5].Fail != 1 {
		t.Errorf("bucket 5 fail = %d, want 1", got[5].Fail)
	}
	if got[11].Skip != 1 {
		t.Errorf("bucket 11 skip = %d, want 1", got[11].Skip)
	}
	sum := got[12]
	if sum.Label != "SUM" {
		t.Errorf("last row label = %q", sum.Label)
	}
	if sum.Pass != 2 || sum.Fail != 1 || sum.Skip != 1 {
		t.Errorf("sum row = %+v", sum.Tally)
	}
	// The per-bucket tallies must add up to the SUM row exactly.
	var total Tally
	for i := 0; i < 12; i++ {
		total.Skip += got[i].Skip
		total.Pass += got[i].Pass
		total.Fail += got[i].Fail
		total.Unknown += got[i].Unknown
	}
	if total != sum.Tally {
		t.Errorf("bucket total %+v != sum row %+v", total, sum.Tally)
	}
}

func TestPassFailMatrix(t *testing.T) {
	cfg := testConfig(t)
	w := shiftcal.Window{Year: 2024, Month: 1, Day: 5, Shift: shiftcal.Night}
	buckets := w.HourBuckets(hcmZone())
	k1 := CellKey("bst1", "BST", "BST_01:DUT_01")
	k2 := CellKey("bst1", "BST", "BST_01:DUT_03")
	rows := []testRow{
		{"FCH00000001", "P", k1, "", buckets[0].Start},
		{"FCH00000002", "F", k1, "x", buckets[0].Start + 10},
		{"FCH00000003", "P", k2, "", buckets[2].Start},
		{"FCH00000004", "S", k2, "", buckets[2].Start + 10}, // skips not in grid
	}
	seedStore(t, cfg.Bst1.BstDB, rows)

	db := newTestDB(t, cfg)
	got, err := db.PassFailMatrix(context.Background(), "bst1", "BST", w)
	if err != nil {
		t.Fatalf("PassFailMatrix: %v", err)
	}
	if len(got) != 13 {
		t.Fatalf("expected 13 rows, got %d", len(got))
	}
	if len(got[0].Cells) != 8 {
		t.Fatalf("expected 8 cell columns, got %d", len(got[0].Cells))
	}
	if got[0].Total != "1 | 1" {
		t.Errorf("hour 0 total = %q", got[0].Total)
	}
	if got[0].Cells[0] != "1 | 1" {
		t.Errorf("hour 0 DUT_01 = %q", got[0].Cells[0])
	}
	if got[2].Cells[2] != "1" {
		t.Errorf("hour 2 DUT_03 = %q", got[2].Cells[2])
	}
	if got[2].Cells[1] != "" {
		t.Errorf("untouched cell not blank: %q", got[2].Cells[1])
	}
	if got[12].Total != "2 | 1" {
		t.Errorf("sum total = %q", got[12].Total)
	}
}

func TestSNRecordPartial(t *testing.T) {
	cfg := testConfig(t)
	sn := "FCH24310XYZ"
	// Only two of the eight stores exist; the rest are offline lines.
	seedStore(t, cfg.Bst1.BstDB, []testRow{
		{sn, "P", CellKey("bst1", "BST", "BST_01:DUT_04"), "", 1704414600},
	})
	seedStore(t, cfg.Fst2.DiagDB, []testRow{
		{sn, "F", CellKey("fst2", "DIAG", "CELL_57"), "diag fail", 1704457900},
		{"FCH99999999", "P", CellKey("fst2", "DIAG", "CELL_57"), "", 1704457910},
	})

	db := newTestDB(t, cfg)
	got, err := db.SNRecord(context.Background(), sn)
	if err != nil {
		t.Fatalf("SNRecord: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(got))
	}
	// Store order is fixed: bst1 before fst2 regardless of worker timing.
	if got[0].Area != "PCBDG" || got[0].Hostname != "bst1-host" {
		t.Errorf("first hit from %s %s", got[0].Area, got[0].Hostname)
	}
	if got[1].Area != "PCBINT" || got[1].Hostname != "fst2-host" {
		t.Errorf("second hit from %s %s", got[1].Area, got[1].Hostname)
	}
	if got[1].Cell != "CELL_57" {
		t.Errorf("cell key not shortened: %q", got[1].Cell)
	}
}

func TestSNRecordNoStores(t *testing.T) {
	db := newTestDB(t, testConfig(t))
	got, err := db.SNRecord(context.Background(), "FCH24310XYZ")
	if err != nil {
		t.Fatalf("SNRecord with no stores: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no hits, got %d", len(got))
	}
}

func TestStoreNotFound(t *testing.T) {
	db := newTestDB(t, testConfig(t))
	_, err := db.StationYield(context.Background(), "bst1", "BST", 10)
	if err == nil {
		t.Fatal("expected error for missing store")
	}
	if !errors.Is(err, ErrStoreNotFound) {
		t.Errorf("error not marked as store-not-found: %v", err)
	}
}
