// Package store holds the active AQI dataset in an in-memory SQLite table
// and answers filter and aggregate queries over it. Loading a dataset
// replaces the records wholesale; queries never mutate, so every render pass
// sees a consistent snapshot.
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lox/aqidash/internal/models"
)

const dateLayout = "2006-01-02"

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// ReplaceDataset swaps the active dataset for a new one in a single
// transaction and stamps a fresh dataset row describing it.
func (s *Store) ReplaceDataset(ds *models.Dataset, source string) (models.DatasetInfo, error) {
	info := models.DatasetInfo{
		ID:           uuid.NewString(),
		Source:       source,
		LoadedAt:     time.Now().UTC(),
		RowCount:     len(ds.Records),
		HasPollutant: ds.HasPollutant,
	}

	tx, err := s.db.Begin()
	if err != nil {
		return models.DatasetInfo{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM records"); err != nil {
		return models.DatasetInfo{}, fmt.Errorf("clear records: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM datasets"); err != nil {
		return models.DatasetInfo{}, fmt.Errorf("clear datasets: %w", err)
	}

	stmt, err := tx.Prepare("INSERT INTO records (date, city, pollutant, aqi) VALUES (?, ?, ?, ?)")
	if err != nil {
		return models.DatasetInfo{}, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range ds.Records {
		pollutant := sql.NullString{String: rec.Pollutant, Valid: ds.HasPollutant}
		if _, err := stmt.Exec(rec.Date.Format(dateLayout), rec.City, pollutant, rec.AQI); err != nil {
			return models.DatasetInfo{}, fmt.Errorf("insert record: %w", err)
		}
	}

	if _, err := tx.Exec(
		"INSERT INTO datasets (id, source, loaded_at, row_count, has_pollutant) VALUES (?, ?, ?, ?, ?)",
		info.ID, info.Source, info.LoadedAt, info.RowCount, info.HasPollutant,
	); err != nil {
		return models.DatasetInfo{}, fmt.Errorf("insert dataset: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.DatasetInfo{}, fmt.Errorf("commit: %w", err)
	}
	return info, nil
}

// DatasetInfo returns the active dataset's metadata, or nil when nothing has
// been loaded yet.
func (s *Store) DatasetInfo() (*models.DatasetInfo, error) {
	row := s.db.QueryRow("SELECT id, source, loaded_at, row_count, has_pollutant FROM datasets LIMIT 1")

	var info models.DatasetInfo
	err := row.Scan(&info.ID, &info.Source, &info.LoadedAt, &info.RowCount, &info.HasPollutant)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// Cities returns the distinct city labels in the full dataset, sorted. The
// sidebar builds its selection from this, not from the filtered view.
func (s *Store) Cities() ([]string, error) {
	return s.distinct("SELECT DISTINCT city FROM records ORDER BY city")
}

// Pollutants returns the distinct pollutant labels, sorted; empty when the
// dataset has no pollutant column.
func (s *Store) Pollutants() ([]string, error) {
	return s.distinct("SELECT DISTINCT pollutant FROM records WHERE pollutant IS NOT NULL AND pollutant <> '' ORDER BY pollutant")
}

func (s *Store) distinct(query string) ([]string, error) {
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// AQIRange returns the min and max AQI across the full dataset for the range
// slider bounds; ok is false for an empty dataset.
func (s *Store) AQIRange() (min, max int, ok bool, err error) {
	var lo, hi sql.NullInt64
	row := s.db.QueryRow("SELECT MIN(aqi), MAX(aqi) FROM records")
	if err := row.Scan(&lo, &hi); err != nil {
		return 0, 0, false, err
	}
	if !lo.Valid {
		return 0, 0, false, nil
	}
	return int(lo.Int64), int(hi.Int64), true, nil
}

// DateRange returns the span of dates in the full dataset.
func (s *Store) DateRange() (start, end time.Time, ok bool, err error) {
	var lo, hi sql.NullString
	row := s.db.QueryRow("SELECT MIN(date), MAX(date) FROM records")
	if err := row.Scan(&lo, &hi); err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	if !lo.Valid {
		return time.Time{}, time.Time{}, false, nil
	}
	start, err = time.Parse(dateLayout, lo.String)
	if err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	end, err = time.Parse(dateLayout, hi.String)
	if err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	return start, end, true, nil
}
