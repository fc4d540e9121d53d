package store

import (
	"database/sql"
	"math"
	"time"

	"github.com/lox/aqidash/internal/models"
)

// LatestByCity returns the mean AQI per city for the most recent date in the
// filtered dataset. Empty when nothing matches.
func (s *Store) LatestByCity(c models.Criteria) ([]models.LatestReading, error) {
	where, args, err := s.criteriaWhere(c)
	if err != nil {
		return nil, err
	}

	var latest sql.NullString
	if err := s.db.QueryRow("SELECT MAX(date) FROM records"+where, args...).Scan(&latest); err != nil {
		return nil, err
	}
	if !latest.Valid {
		return nil, nil
	}

	query := "SELECT city, AVG(aqi) FROM records" + where
	if where == "" {
		query += " WHERE date = ?"
	} else {
		query += " AND date = ?"
	}
	query += " GROUP BY city ORDER BY city"

	rows, err := s.db.Query(query, append(args, latest.String)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	date, err := time.Parse(dateLayout, latest.String)
	if err != nil {
		return nil, err
	}

	var readings []models.LatestReading
	for rows.Next() {
		r := models.LatestReading{Date: date}
		if err := rows.Scan(&r.City, &r.MeanAQI); err != nil {
			return nil, err
		}
		readings = append(readings, r)
	}
	return readings, rows.Err()
}

// Extremes returns the highest and lowest AQI readings in the filtered
// dataset with city and date attribution. Ties resolve to the earliest date,
// then the smallest city name, independent of storage order. Both are nil
// for an empty result.
func (s *Store) Extremes(c models.Criteria) (max, min *models.ExtremeReading, err error) {
	where, args, err := s.criteriaWhere(c)
	if err != nil {
		return nil, nil, err
	}

	max, err = s.extreme(where, args, "DESC")
	if err != nil {
		return nil, nil, err
	}
	min, err = s.extreme(where, args, "ASC")
	if err != nil {
		return nil, nil, err
	}
	return max, min, nil
}

func (s *Store) extreme(where string, args []any, dir string) (*models.ExtremeReading, error) {
	row := s.db.QueryRow(
		"SELECT aqi, city, date FROM records"+where+" ORDER BY aqi "+dir+", date ASC, city ASC LIMIT 1",
		args...)

	var r models.ExtremeReading
	var dateStr string
	err := row.Scan(&r.AQI, &r.City, &dateStr)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	r.Date, err = time.Parse(dateLayout, dateStr)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// CityStats returns per-city mean/min/max/std/count ordered by city name.
// The standard deviation is the sample deviation, 0 for a single sample.
func (s *Store) CityStats(c models.Criteria) ([]models.CityStats, error) {
	where, args, err := s.criteriaWhere(c)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(
		"SELECT city, AVG(aqi), MIN(aqi), MAX(aqi), COUNT(*), SUM(aqi * aqi) FROM records"+where+
			" GROUP BY city ORDER BY city",
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []models.CityStats
	for rows.Next() {
		var st models.CityStats
		var sumSq float64
		if err := rows.Scan(&st.City, &st.Mean, &st.Min, &st.Max, &st.Count, &sumSq); err != nil {
			return nil, err
		}
		st.Std = sampleStd(st.Mean, sumSq, st.Count)
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

// sampleStd derives the sample standard deviation from the sum of squares.
// Floating point can push the variance a hair below zero; clamp it.
func sampleStd(mean, sumSq float64, n int) float64 {
	if n < 2 {
		return 0
	}
	variance := (sumSq - float64(n)*mean*mean) / float64(n-1)
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}

// MostPolluted returns the city with the highest mean AQI. Ties resolve to
// the smallest city name since the grouped rows arrive in city order and the
// comparison is strict. Nil for an empty result.
func (s *Store) MostPolluted(c models.Criteria) (*models.CityStats, error) {
	stats, err := s.CityStats(c)
	if err != nil {
		return nil, err
	}

	var worst *models.CityStats
	for i := range stats {
		if worst == nil || stats[i].Mean > worst.Mean {
			worst = &stats[i]
		}
	}
	return worst, nil
}

// Trend returns the mean AQI per (date, city), optionally restricted to one
// pollutant, ordered by date then city.
func (s *Store) Trend(c models.Criteria, pollutant string) ([]models.TrendPoint, error) {
	where, args, err := s.trendWhere(c, pollutant)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(
		"SELECT date, city, AVG(aqi) FROM records"+where+" GROUP BY date, city ORDER BY date, city",
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []models.TrendPoint
	for rows.Next() {
		var p models.TrendPoint
		var dateStr string
		if err := rows.Scan(&dateStr, &p.City, &p.MeanAQI); err != nil {
			return nil, err
		}
		p.Date, err = time.Parse(dateLayout, dateStr)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// Calendar returns the mean AQI per date for one city, decomposed into
// (year, month name, day) for the day-by-month grid.
func (s *Store) Calendar(c models.Criteria, city, pollutant string) ([]models.CalendarDay, error) {
	where, args, err := s.trendWhere(c, pollutant)
	if err != nil {
		return nil, err
	}
	if where == "" {
		where = " WHERE city = ?"
	} else {
		where += " AND city = ?"
	}
	args = append(args, city)

	rows, err := s.db.Query(
		"SELECT date, AVG(aqi) FROM records"+where+" GROUP BY date ORDER BY date",
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []models.CalendarDay
	for rows.Next() {
		var d models.CalendarDay
		var dateStr string
		if err := rows.Scan(&dateStr, &d.MeanAQI); err != nil {
			return nil, err
		}
		d.Date, err = time.Parse(dateLayout, dateStr)
		if err != nil {
			return nil, err
		}
		d.Year = d.Date.Year()
		d.Month = d.Date.Month().String()
		d.Day = d.Date.Day()
		days = append(days, d)
	}
	return days, rows.Err()
}

func (s *Store) trendWhere(c models.Criteria, pollutant string) (string, []any, error) {
	where, args, err := s.criteriaWhere(c)
	if err != nil {
		return "", nil, err
	}
	if pollutant != "" {
		if where == "" {
			where = " WHERE pollutant = ?"
		} else {
			where += " AND pollutant = ?"
		}
		args = append(args, pollutant)
	}
	return where, args, nil
}
