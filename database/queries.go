package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"shiftstat/cells"
	"shiftstat/config"
	"shiftstat/jobs"
	"shiftstat/shiftcal"
)

// CellYield is one cell's recent-record breakdown on the station summary.
type CellYield struct {
	Cell  string
	Tally Tally
	Yield string
}

// Record is one tst_record row surfaced on a page. Seq is the 1-based
// position within the fetched batch (newest first); zero when unused.
type Record struct {
	Seq       int
	Time      string
	SN        string
	PID       string
	PN        string
	Result    string
	Cell      string
	Msg       string
	MsgDetail string
}

// HourTally is one row of the hourly yield table.
type HourTally struct {
	Label string
	Tally
}

// MatrixRow is one hour of the pass/fail grid. Total is the station-wide
// pair for that hour; Cells has one rendered pair per registered cell.
type MatrixRow struct {
	Label string
	Total string
	Cells []string
}

// SNRow is one hit of the cross-store serial-number scan.
type SNRow struct {
	Time      string
	SN        string
	PID       string
	PN        string
	Area      string
	Result    string
	Hostname  string
	Cell      string
	Msg       string
	MsgDetail string
}

// StationYield tallies the most recent records per cell of a station.
// count is the nominal record window; the query over-fetches by the
// configured factor to ride out runs of skip noise.
func (db *DB) StationYield(ctx context.Context, line, station string, count int) ([]CellYield, error) {
	conn, err := db.store(line, station)
	if err != nil {
		return nil, err
	}

	limit := count * db.cfg.OverfetchFactor
	out := make([]CellYield, 0, len(cells.List(station)))
	for _, cell := range cells.List(station) {
		key := CellKey(line, station, cell)
		rows, err := conn.QueryContext(ctx, `
			SELECT result, COUNT(result) FROM
				(SELECT result FROM tst_record WHERE cell = ? ORDER BY id DESC LIMIT ?)
			GROUP BY result`, key, limit)
		if err != nil {
			return nil, fmt.Errorf("station yield query for %s: %w", cell, err)
		}

		var t Tally
		for rows.Next() {
			var result string
			var n int
			if err := rows.Scan(&result, &n); err != nil {
				rows.Close()
				return nil, err
			}
			switch result {
			case "S":
				t.Skip = n
			case "P":
				t.Pass = n
			case "F":
				t.Fail = n
			case "U":
				t.Unknown = n
			}
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()

		out = append(out, CellYield{Cell: cell, Tally: t, Yield: t.YieldString()})
	}
	return out, nil
}

// CellRecords fetches the most recent records of one cell: the full S/P/F/U
// tally of the batch plus the F/U rows for the detail table.
func (db *DB) CellRecords(ctx context.Context, line, cell string, count int) (Tally, []Record, error) {
	station, ok := cells.StationOf(cell)
	if !ok {
		return Tally{}, nil, fmt.Errorf("unknown cell %q", cell)
	}
	conn, err := db.store(line, station)
	if err != nil {
		return Tally{}, nil, err
	}

	key := CellKey(line, station, cell)
	rows, err := conn.QueryContext(ctx, `
		SELECT id, beijing_str, sn, pid, pn, result, cell, msg, msg_detail
		FROM tst_record WHERE cell = ? ORDER BY id DESC LIMIT ?`,
		key, count*db.cfg.OverfetchFactor)
	if err != nil {
		return Tally{}, nil, fmt.Errorf("cell records query for %s: %w", cell, err)
	}
	defer rows.Close()

	var t Tally
	var fails []Record
	seq := 0
	for rows.Next() {
		var id int64
		var r Record
		if err := rows.Scan(&id, &r.Time, &r.SN, &r.PID, &r.PN, &r.Result, &r.Cell, &r.Msg, &r.MsgDetail); err != nil {
			return Tally{}, nil, err
		}
		seq++
		t.Add(r.Result)
		if r.Result == "F" || r.Result == "U" {
			r.Seq = seq
			r.SN = RedactSN(r.SN)
			r.Cell = ShortCell(r.Cell)
			fails = append(fails, r)
		}
	}
	return t, fails, rows.Err()
}

// FailDetail returns the F/U records of a station within a shift window.
func (db *DB) FailDetail(ctx context.Context, line, station string, w shiftcal.Window) ([]Record, error) {
	conn, err := db.store(line, station)
	if err != nil {
		return nil, err
	}

	start, end := w.Bounds(db.cfg.Location)
	rows, err := conn.QueryContext(ctx, `
		SELECT id, beijing_str, sn, pid, pn, result, cell, msg, msg_detail
		FROM tst_record
		WHERE (result = 'F' OR result = 'U') AND ? <= time_int AND time_int < ?`,
		start, end)
	if err != nil {
		return nil, fmt.Errorf("fail detail query for %s %s: %w", line, station, err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var id int64
		var r Record
		if err := rows.Scan(&id, &r.Time, &r.SN, &r.PID, &r.PN, &r.Result, &r.Cell, &r.Msg, &r.MsgDetail); err != nil {
			return nil, err
		}
		r.SN = RedactSN(r.SN)
		r.Cell = ShortCell(r.Cell)
		out = append(out, r)
	}
	return out, rows.Err()
}

// DayYield buckets a station's shift records into 12 hourly S/P/F/U
// tallies plus a trailing SUM row.
func (db *DB) DayYield(ctx context.Context, line, station string, w shiftcal.Window) ([]HourTally, error) {
	conn, err := db.store(line, station)
	if err != nil {
		return nil, err
	}

	buckets := w.HourBuckets(db.cfg.Location)
	labels := shiftcal.HourLabels(w.Shift, true)
	out := make([]HourTally, 13)
	for i := range out {
		out[i].Label = labels[i]
	}

	rows, err := conn.QueryContext(ctx, `
		SELECT result, time_int FROM tst_record WHERE ? <= time_int AND time_int < ?`,
		buckets[0].Start, buckets[11].End)
	if err != nil {
		return nil, fmt.Errorf("day yield query for %s %s: %w", line, station, err)
	}
	defer rows.Close()

	for rows.Next() {
		var result string
		var ts float64 // stations write time_int as REAL
		if err := rows.Scan(&result, &ts); err != nil {
			return nil, err
		}
		i := bucketIndex(buckets, int64(ts))
		out[i].Add(result)
		out[12].Add(result)
	}
	return out, rows.Err()
}

// PassFailMatrix builds the 13x(cells+1) per-hour pass/fail grid for a
// station's shift. Skip and Unknown results are not part of this view.
func (db *DB) PassFailMatrix(ctx context.Context, line, station string, w shiftcal.Window) ([]MatrixRow, error) {
	conn, err := db.store(line, station)
	if err != nil {
		return nil, err
	}

	buckets := w.HourBuckets(db.cfg.Location)
	labels := shiftcal.HourLabels(w.Shift, true)
	cols := len(cells.List(station)) + 1

	type pf struct{ pass, fail int }
	counts := make([][]pf, 13)
	for i := range counts {
		counts[i] = make([]pf, cols)
	}

	rows, err := conn.QueryContext(ctx, `
		SELECT result, time_int, cell FROM tst_record WHERE ? <= time_int AND time_int < ?`,
		buckets[0].Start, buckets[11].End)
	if err != nil {
		return nil, fmt.Errorf("pass/fail query for %s %s: %w", line, station, err)
	}
	defer rows.Close()

	for rows.Next() {
		var result, key string
		var ts float64
		if err := rows.Scan(&result, &ts, &key); err != nil {
			return nil, err
		}
		i := bucketIndex(buckets, int64(ts))
		j := cellColumn(key, station)
		switch result {
		case "P":
			counts[i][j].pass++
			counts[i][0].pass++
			counts[12][j].pass++
			counts[12][0].pass++
		case "F":
			counts[i][j].fail++
			counts[i][0].fail++
			counts[12][j].fail++
			counts[12][0].fail++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]MatrixRow, 13)
	for i := range out {
		out[i].Label = labels[i]
		out[i].Total = FormatPassFail(counts[i][0].pass, counts[i][0].fail)
		out[i].Cells = make([]string, cols-1)
		for j := 1; j < cols; j++ {
			out[i].Cells[j-1] = FormatPassFail(counts[i][j].pass, counts[i][j].fail)
		}
	}
	return out, nil
}

// SNRecord scans all eight stores for a serial number, fanned out over the
// worker pool. A missing store is logged and skipped so one offline line
// cannot blank the whole history; any other store error fails the scan.
func (db *DB) SNRecord(ctx context.Context, sn string) ([]SNRow, error) {
	stores := db.cfg.AllStores()
	results := make([][]SNRow, len(stores))
	errs := make([]error, len(stores))

	var wg sync.WaitGroup
	for i, ref := range stores {
		wg.Add(1)
		job := jobs.Job{
			ID: fmt.Sprintf("sn-scan-%d", i),
			Execute: func() error {
				defer wg.Done()
				results[i], errs[i] = db.snScanStore(ctx, ref, sn)
				return errs[i]
			},
		}
		if err := db.pool.Submit(job); err != nil {
			wg.Done()
			errs[i] = err
		}
	}
	wg.Wait()

	var out []SNRow
	for i := range stores {
		if errs[i] != nil {
			return nil, errs[i]
		}
		out = append(out, results[i]...)
	}
	return out, nil
}

func (db *DB) snScanStore(ctx context.Context, ref config.StoreRef, sn string) ([]SNRow, error) {
	conn, err := db.storeByPath(ref.Path)
	if errors.Is(err, ErrStoreNotFound) {
		log.Printf("sn scan: skipping %s %s: %v", ref.Area, ref.Hostname, err)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := conn.QueryContext(ctx, `
		SELECT beijing_str, sn, pid, pn, result, cell, msg, msg_detail
		FROM tst_record WHERE sn = ?`, sn)
	if err != nil {
		return nil, fmt.Errorf("sn scan query on %s: %w", ref.Path, err)
	}
	defer rows.Close()

	var out []SNRow
	for rows.Next() {
		r := SNRow{Area: ref.Area, Hostname: ref.Hostname}
		if err := rows.Scan(&r.Time, &r.SN, &r.PID, &r.PN, &r.Result, &r.Cell, &r.Msg, &r.MsgDetail); err != nil {
			return nil, err
		}
		r.Cell = ShortCell(r.Cell)
		out = append(out, r)
	}
	return out, rows.Err()
}
