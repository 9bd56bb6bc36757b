// Package facdb persists facility enumeration results in a local sqlite
// database with an H3 spatial index, so "what is near me" queries do not
// need a round trip to the host.
package facdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/uber/h3-go/v4"
	_ "modernc.org/sqlite" // register driver

	"aerolink/pkg/wire"
)

// cellResolution is the H3 resolution facilities are bucketed at. Cells at
// this resolution have an edge length around 8 km, a good match for the
// radii airborne queries use.
const cellResolution = 5

// DB wraps the sql.DB connection.
type DB struct {
	*sql.DB
}

// Init opens the database, creating it and its directory if needed.
func Init(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	// WAL mode and a single connection keep concurrent writers from
	// tripping over SQLITE_BUSY
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=30000;"); err != nil {
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	db.SetMaxOpenConns(1)

	d := &DB{db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return d, nil
}

func (d *DB) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS airports (
			ident TEXT PRIMARY KEY,
			region TEXT,
			lat REAL,
			lon REAL,
			alt REAL,
			h3_cell INTEGER,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE INDEX IF NOT EXISTS idx_airports_cell ON airports(h3_cell);`,
		`CREATE TABLE IF NOT EXISTS navaids (
			ident TEXT,
			region TEXT,
			kind TEXT,
			lat REAL,
			lon REAL,
			alt REAL,
			frequency INTEGER,
			h3_cell INTEGER,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (ident, region, kind)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_navaids_cell ON navaids(h3_cell);`,
	}
	for _, q := range queries {
		if _, err := d.Exec(q); err != nil {
			return fmt.Errorf("exec error: %w query: %s", err, q)
		}
	}
	return nil
}

func cellOf(lat, lon float64) (int64, error) {
	cell, err := h3.LatLngToCell(h3.LatLng{Lat: lat, Lng: lon}, cellResolution)
	if err != nil {
		return 0, fmt.Errorf("h3 cell for %f,%f: %w", lat, lon, err)
	}
	return int64(cell), nil
}

// UpsertAirports stores or refreshes a batch of airport entries.
func (d *DB) UpsertAirports(airports []wire.FacilityAirport) error {
	tx, err := d.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO airports (ident, region, lat, lon, alt, h3_cell)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(ident) DO UPDATE SET
			region=excluded.region, lat=excluded.lat, lon=excluded.lon,
			alt=excluded.alt, h3_cell=excluded.h3_cell,
			updated_at=CURRENT_TIMESTAMP`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, a := range airports {
		cell, err := cellOf(a.Latitude, a.Longitude)
		if err != nil {
			return err
		}
		if _, err := stmt.Exec(a.Ident, a.Region, a.Latitude, a.Longitude, a.Altitude, cell); err != nil {
			return fmt.Errorf("upsert airport %s: %w", a.Ident, err)
		}
	}
	return tx.Commit()
}

// NavaidKind distinguishes the navaid rows.
const (
	NavaidVOR      = "VOR"
	NavaidNDB      = "NDB"
	NavaidWaypoint = "WPT"
)

// UpsertVORs stores or refreshes a batch of VOR entries.
func (d *DB) UpsertVORs(vors []wire.FacilityVOR) error {
	tx, err := d.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO navaids (ident, region, kind, lat, lon, alt, frequency, h3_cell)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(ident, region, kind) DO UPDATE SET
			lat=excluded.lat, lon=excluded.lon, alt=excluded.alt,
			frequency=excluded.frequency, h3_cell=excluded.h3_cell,
			updated_at=CURRENT_TIMESTAMP`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, v := range vors {
		cell, err := cellOf(v.Latitude, v.Longitude)
		if err != nil {
			return err
		}
		if _, err := stmt.Exec(v.Ident, v.Region, NavaidVOR, v.Latitude, v.Longitude, v.Altitude, v.Frequency, cell); err != nil {
			return fmt.Errorf("upsert vor %s: %w", v.Ident, err)
		}
	}
	return tx.Commit()
}

// Airport is one stored airport with its distance from a query point.
type Airport struct {
	Ident     string
	Region    string
	Latitude  float64
	Longitude float64
	Altitude  float64
	DistanceM float64
}

// AirportsNear returns stored airports within radiusM meters of a point,
// nearest first. Candidate rows are narrowed by H3 cell before the exact
// great-circle distance check.
func (d *DB) AirportsNear(lat, lon float64, radiusM float64) ([]Airport, error) {
	cells, err := coveringCells(lat, lon, radiusM)
	if err != nil {
		return nil, err
	}

	query := `SELECT ident, region, lat, lon, alt FROM airports WHERE h3_cell IN (` +
		placeholders(len(cells)) + `)`
	rows, err := d.Query(query, cells...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	origin := orb.Point{lon, lat}
	var out []Airport
	for rows.Next() {
		var a Airport
		if err := rows.Scan(&a.Ident, &a.Region, &a.Latitude, &a.Longitude, &a.Altitude); err != nil {
			return nil, err
		}
		a.DistanceM = geo.Distance(origin, orb.Point{a.Longitude, a.Latitude})
		if a.DistanceM <= radiusM {
			out = append(out, a)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool { return out[i].DistanceM < out[j].DistanceM })
	return out, nil
}

// AirportCount returns the number of stored airports.
func (d *DB) AirportCount() (int, error) {
	var n int
	err := d.QueryRow("SELECT count(*) FROM airports").Scan(&n)
	return n, err
}

func coveringCells(lat, lon, radiusM float64) ([]any, error) {
	center, err := h3.LatLngToCell(h3.LatLng{Lat: lat, Lng: lon}, cellResolution)
	if err != nil {
		return nil, fmt.Errorf("h3 cell for query point: %w", err)
	}
	// ring count sized from the ~8km edge length at this resolution
	k := int(radiusM/8000) + 1
	cells, err := h3.GridDisk(center, k)
	if err != nil {
		return nil, fmt.Errorf("h3 grid disk: %w", err)
	}
	out := make([]any, len(cells))
	for i, c := range cells {
		out[i] = int64(c)
	}
	return out, nil
}

func placeholders(n int) string {
	if n == 0 {
		return ""
	}
	b := make([]byte, 0, 2*n)
	for i := 0; i < n; i++ {
		if i > 0 {
			b = append(b, ',')
		}
		b = append(b, '?')
	}
	return string(b)
}
