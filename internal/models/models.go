package models

import (
	"time"
)

// Record is a single AQI measurement. Pollutant is empty when the source
// dataset has no pollutant column. Duplicate (Date, City, Pollutant) tuples
// are independent samples and get averaged by the aggregate views.
type Record struct {
	Date      time.Time `json:"date"`
	City      string    `json:"city"`
	Pollutant string    `json:"pollutant,omitempty"`
	AQI       int       `json:"aqi"`
}

// Dataset is the parsed form of one tabular input. It is immutable once
// loaded; filtering always produces new derived record sets.
type Dataset struct {
	Records      []Record
	HasPollutant bool
}

// Criteria are the sidebar filters, applied as an AND conjunction. A nil or
// empty field means that predicate is skipped. Date and AQI bounds are
// inclusive.
type Criteria struct {
	Start      *time.Time
	End        *time.Time
	Cities     []string
	Pollutants []string
	MinAQI     *int
	MaxAQI     *int
}

// Empty reports whether no predicate is active.
func (c Criteria) Empty() bool {
	return c.Start == nil && c.End == nil && len(c.Cities) == 0 &&
		len(c.Pollutants) == 0 && c.MinAQI == nil && c.MaxAQI == nil
}

// DatasetInfo describes the currently loaded dataset.
type DatasetInfo struct {
	ID           string    `json:"id"`
	Source       string    `json:"source"`
	LoadedAt     time.Time `json:"loaded_at"`
	RowCount     int       `json:"row_count"`
	HasPollutant bool      `json:"has_pollutant"`
}

// LatestReading is the mean AQI for one city on the most recent date present
// in the filtered dataset.
type LatestReading struct {
	City    string    `json:"city"`
	Date    time.Time `json:"date"`
	MeanAQI float64   `json:"mean_aqi"`
}

// ExtremeReading attributes a global max or min AQI value to a city and date.
// Ties resolve to the earliest date, then the smallest city name.
type ExtremeReading struct {
	AQI  int       `json:"aqi"`
	City string    `json:"city"`
	Date time.Time `json:"date"`
}

// CityStats are per-city summary statistics over the filtered dataset.
// Std is the sample standard deviation; 0 for a single sample.
type CityStats struct {
	City  string  `json:"city"`
	Mean  float64 `json:"mean"`
	Min   int     `json:"min"`
	Max   int     `json:"max"`
	Std   float64 `json:"std"`
	Count int     `json:"count"`
}

// TrendPoint is the mean AQI for one (date, city) group.
type TrendPoint struct {
	Date    time.Time `json:"date"`
	City    string    `json:"city"`
	MeanAQI float64   `json:"mean_aqi"`
}

// CalendarDay is one cell of the day-by-month calendar grid for a single
// city: the mean AQI for that date, decomposed for grid layout.
type CalendarDay struct {
	Date    time.Time `json:"date"`
	Year    int       `json:"year"`
	Month   string    `json:"month"`
	Day     int       `json:"day"`
	MeanAQI float64   `json:"mean_aqi"`
}
