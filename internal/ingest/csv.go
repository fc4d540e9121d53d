// Package ingest parses and serializes the tabular AQI dataset.
//
// The input contract is a delimited file with a header row containing at
// least Date, City and AQI columns. Pollutant is optional and any other
// columns are ignored. Validation failure is the system's only terminal
// error path; filtering and aggregation downstream are total.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lox/aqidash/internal/models"
)

const (
	colDate      = "Date"
	colCity      = "City"
	colPollutant = "Pollutant"
	colAQI       = "AQI"
)

// DateLayout is the canonical serialization format for dates.
const DateLayout = "2006-01-02"

// dateLayouts are the accepted input formats, tried in order. Timestamps are
// truncated to their calendar date.
var dateLayouts = []string{
	DateLayout,
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
}

// MissingColumnsError reports required columns absent from the input header.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return "missing required columns: " + strings.Join(e.Columns, ", ")
}

// ReadFile parses a CSV file from disk.
func ReadFile(path string) (*models.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV parses delimited text into a dataset. The header row is matched by
// exact column name; required columns missing produce a *MissingColumnsError.
func ReadCSV(r io.Reader) (*models.Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &MissingColumnsError{Columns: []string{colDate, colCity, colAQI}}
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, name := range []string{colDate, colCity, colAQI} {
		if _, ok := idx[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	pollutantIdx, hasPollutant := idx[colPollutant]

	ds := &models.Dataset{HasPollutant: hasPollutant}
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		date, err := ParseDate(row[idx[colDate]])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		aqi, err := parseAQI(row[idx[colAQI]])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		rec := models.Record{
			Date: date,
			City: strings.TrimSpace(row[idx[colCity]]),
			AQI:  aqi,
		}
		if hasPollutant {
			rec.Pollutant = strings.TrimSpace(row[pollutantIdx])
		}
		ds.Records = append(ds.Records, rec)
	}

	return ds, nil
}

// ParseDate parses a date in any accepted layout, normalized to UTC midnight.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

// parseAQI accepts integers and integral-looking floats. Negative values are
// rejected at ingestion rather than silently classifying as Good.
func parseAQI(s string) (int, error) {
	s = strings.TrimSpace(s)
	v, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return 0, fmt.Errorf("unparseable AQI %q", s)
		}
		v = int(f)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative AQI %d", v)
	}
	return v, nil
}

// WriteCSV re-serializes a dataset to the input schema. The Pollutant column
// is emitted only when the dataset carries one.
func WriteCSV(w io.Writer, ds *models.Dataset) error {
	cw := csv.NewWriter(w)

	header := []string{colDate, colCity, colAQI}
	if ds.HasPollutant {
		header = []string{colDate, colCity, colPollutant, colAQI}
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, rec := range ds.Records {
		row := recordRow(rec, ds.HasPollutant)
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func recordRow(rec models.Record, hasPollutant bool) []string {
	date := rec.Date.Format(DateLayout)
	aqi := strconv.Itoa(rec.AQI)
	if hasPollutant {
		return []string{date, rec.City, rec.Pollutant, aqi}
	}
	return []string{date, rec.City, aqi}
}
