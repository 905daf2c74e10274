package database

import (
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"shiftstat/cells"
	"shiftstat/config"
)

const createTableSQL = `CREATE TABLE IF NOT EXISTS tst_record (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	beijing_str TEXT,
	sn TEXT,
	pid TEXT,
	pn TEXT,
	result TEXT,
	cell TEXT,
	msg TEXT,
	msg_detail TEXT,
	time_int REAL
)`

// SeedGenerator writes realistic mock test records into the configured
// store layout so the dashboard can be exercised without a live floor.
type SeedGenerator struct {
	cfg  *config.Config
	rand *rand.Rand
}

// NewSeedGenerator creates a seeded generator. A fixed seed makes the
// mock floor reproducible across runs.
func NewSeedGenerator(cfg *config.Config, seed int64) *SeedGenerator {
	return &SeedGenerator{
		cfg:  cfg,
		rand: rand.New(rand.NewSource(seed)),
	}
}

// result draws a result code with roughly production-shaped weights.
func (g *SeedGenerator) result() string {
	switch r := g.rand.Float64(); {
	case r < 0.70:
		return "P"
	case r < 0.85:
		return "S"
	case r < 0.95:
		return "F"
	default:
		return "U"
	}
}

func (g *SeedGenerator) serial() string {
	// A slice of units run non-serialized; the stations log a placeholder.
	if g.rand.Float64() < 0.05 {
		return placeholderSNs[g.rand.Intn(len(placeholderSNs))]
	}
	return fmt.Sprintf("FCH%08d", g.rand.Intn(100000000))
}

// SeedStore creates one store file and fills it with hours of records for
// every cell of the station, ending at now.
func (g *SeedGenerator) SeedStore(path, line, station string, hours int, now time.Time) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("failed to create store %s: %w", path, err)
	}
	defer conn.Close()

	if _, err := conn.Exec(createTableSQL); err != nil {
		return fmt.Errorf("failed to create tst_record: %w", err)
	}

	tx, err := conn.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO tst_record
		(beijing_str, sn, pid, pn, result, cell, msg, msg_detail, time_int)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	start := now.Add(-time.Duration(hours) * time.Hour)
	for _, cell := range cells.List(station) {
		key := CellKey(line, station, cell)
		// 4-10 records per cell per hour.
		for h := 0; h < hours; h++ {
			n := 4 + g.rand.Intn(7)
			for i := 0; i < n; i++ {
				ts := start.Add(time.Duration(h)*time.Hour +
					time.Duration(g.rand.Intn(3600))*time.Second)
				result := g.result()
				msg, detail := "", ""
				if result == "F" || result == "U" {
					msg = fmt.Sprintf("step %d failed", 1+g.rand.Intn(30))
					detail = fmt.Sprintf("expected 0 got %d", 1+g.rand.Intn(255))
				}
				_, err := stmt.Exec(
					ts.In(g.cfg.Location).Format("2006-01-02 15:04:05"),
					g.serial(),
					fmt.Sprintf("PID%06d", g.rand.Intn(1000000)),
					"73-101942-02",
					result,
					key,
					msg,
					detail,
					float64(ts.Unix()),
				)
				if err != nil {
					tx.Rollback()
					return fmt.Errorf("failed to insert record: %w", err)
				}
			}
		}
	}
	return tx.Commit()
}

// SeedAll fills every configured store with the given span of history.
func (g *SeedGenerator) SeedAll(hours int, now time.Time) error {
	targets := []struct{ line, station string }{
		{"bst1", "BST"},
		{"bst2", "BST"},
		{"fst1", "LCDLED"}, {"fst1", "DIAG"}, {"fst1", "KEYPAD"},
		{"fst2", "LCDLED"}, {"fst2", "DIAG"}, {"fst2", "KEYPAD"},
	}
	for _, t := range targets {
		path, ok := g.cfg.StorePath(t.line, t.station)
		if !ok {
			return fmt.Errorf("no store configured for %s %s", t.line, t.station)
		}
		if err := g.SeedStore(path, t.line, t.station, hours, now); err != nil {
			return err
		}
		fmt.Printf("Seeded %s (%s %s)\n", path, t.line, t.station)
	}
	return nil
}
