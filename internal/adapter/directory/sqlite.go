package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/couchcryptid/weather-ranking/internal/domain"
)

const schema = `CREATE TABLE IF NOT EXISTS cities (
	position  INTEGER PRIMARY KEY AUTOINCREMENT,
	name      TEXT NOT NULL UNIQUE COLLATE NOCASE,
	source    TEXT NOT NULL DEFAULT '',
	latitude  REAL NOT NULL,
	longitude REAL NOT NULL
)`

// SQLite is a directory stored in a SQLite database. Catalogue order is
// insertion order.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and ensures the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if path == ":memory:" || strings.Contains(path, "mode=memory") {
		// Each connection to an in-memory database is a separate database.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create cities table: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Add inserts locations, replacing the coordinates of names already present.
func (s *SQLite) Add(ctx context.Context, locs ...domain.Location) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO cities (name, latitude, longitude) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET latitude = excluded.latitude, longitude = excluded.longitude`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, l := range locs {
		if l.Name == "" || l.Coords == nil {
			return fmt.Errorf("city %q: name and coordinates are required", l.Label())
		}
		if _, err := stmt.ExecContext(ctx, l.Name, l.Coords.Lat, l.Coords.Lon); err != nil {
			return fmt.Errorf("insert city %q: %w", l.Name, err)
		}
	}
	return tx.Commit()
}

// Locations lists every city in insertion order.
func (s *SQLite) Locations(ctx context.Context) ([]domain.Location, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, latitude, longitude FROM cities ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query cities: %w", err)
	}
	defer rows.Close()

	var locs []domain.Location
	for rows.Next() {
		var (
			name string
			c    domain.Coordinates
		)
		if err := rows.Scan(&name, &c.Lat, &c.Lon); err != nil {
			return nil, fmt.Errorf("scan city: %w", err)
		}
		locs = append(locs, domain.Location{Name: name}.WithCoords(c))
	}
	return locs, rows.Err()
}

// Lookup finds a city by case-insensitive name.
func (s *SQLite) Lookup(ctx context.Context, name string) (domain.Coordinates, error) {
	var c domain.Coordinates
	err := s.db.QueryRowContext(ctx, `SELECT latitude, longitude FROM cities WHERE name = ?`, name).Scan(&c.Lat, &c.Lon)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Coordinates{}, domain.ErrLocationNotFound
	}
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("lookup city %q: %w", name, err)
	}
	return c, nil
}

// SeedIfEmpty copies every location from src into the store when the store
// has no cities yet. It returns the number of cities copied.
func (s *SQLite) SeedIfEmpty(ctx context.Context, src domain.LocationDirectory) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cities`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count cities: %w", err)
	}
	if n > 0 {
		return 0, nil
	}
	locs, err := src.Locations(ctx)
	if err != nil {
		return 0, fmt.Errorf("list seed cities: %w", err)
	}
	if err := s.Add(ctx, locs...); err != nil {
		return 0, err
	}
	return len(locs), nil
}
