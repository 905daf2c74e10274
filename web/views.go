package web

import "shiftstat/database"

// StoreStatus is one row of the homepage store table.
type StoreStatus struct {
	Label    string
	Hostname string
	Path     string
	Missing  bool
}

// HomepageData backs homepage.html.
type HomepageData struct {
	ConfigPath string
	DBDir      string
	Stores     []StoreStatus
}

// CellRecordData backs cell_record.html.
type CellRecordData struct {
	QueryCount int
	Cell       string
	Tally      database.Tally
	Fails      []database.Record
}

// StationRecords is one station's block on the fail-detail page.
type StationRecords struct {
	Name string
	Rows []database.Record
}

// StationHours is one station's hourly table on the day-yield page.
type StationHours struct {
	Name  string
	Hours []database.HourTally
}

// StationMatrix is one station's grid on the pass/fail page.
type StationMatrix struct {
	Name      string
	CellNames []string
	Rows      []database.MatrixRow
}

// SNData backs sn_record.html.
type SNData struct {
	SN   string
	Rows []database.SNRow
}
