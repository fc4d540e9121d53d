// Package sample generates a synthetic AQI dataset for when no file is
// loaded, mirroring the shape of a real upload: 5 cities, 6 pollutants, one
// record per day over the trailing 30 days.
package sample

import (
	"math/rand"
	"time"

	"github.com/lox/aqidash/internal/models"
)

// Cities and Pollutants are emitted in this order; the generator draws one
// random base value per (city, date, pollutant) in nested order, so a fixed
// seed fully determines the dataset.
var (
	Cities     = []string{"New York", "Los Angeles", "Chicago", "Houston", "Phoenix"}
	Pollutants = []string{"PM2.5", "PM10", "O3", "NO2", "SO2", "CO"}
)

var cityFactor = map[string]float64{
	"New York":    1.1,
	"Los Angeles": 1.3,
	"Chicago":     0.9,
	"Houston":     1.0,
	"Phoenix":     1.2,
}

var pollutantFactor = map[string]float64{
	"PM2.5": 1.2,
	"PM10":  1.1,
	"O3":    1.0,
	"NO2":   0.9,
	"SO2":   0.8,
	"CO":    0.7,
}

// trailingDays is the span of the generated date range; the range is
// inclusive of both ends, so 31 dates are produced.
const trailingDays = 30

type Generator struct {
	rng *rand.Rand
	now time.Time
}

// New returns a generator anchored at now's calendar date. The same seed and
// anchor always produce the same dataset.
func New(seed int64, now time.Time) *Generator {
	return &Generator{
		rng: rand.New(rand.NewSource(seed)),
		now: now,
	}
}

// Generate produces the synthetic dataset.
func (g *Generator) Generate() *models.Dataset {
	end := time.Date(g.now.Year(), g.now.Month(), g.now.Day(), 0, 0, 0, 0, time.UTC)
	start := end.AddDate(0, 0, -trailingDays)

	records := make([]models.Record, 0, len(Cities)*(trailingDays+1)*len(Pollutants))
	for _, city := range Cities {
		for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
			for _, pollutant := range Pollutants {
				base := g.rng.Intn(150) + 30 // uniform in [30,180)
				value := Value(base, date, city, pollutant)
				records = append(records, models.Record{
					Date:      date,
					City:      city,
					Pollutant: pollutant,
					AQI:       value,
				})
			}
		}
	}

	return &models.Dataset{Records: records, HasPollutant: true}
}

// Value applies the deterministic part of the formula to a random base:
// floor(base * weekdayFactor * cityFactor * pollutantFactor). Weekdays run
// higher than weekends.
func Value(base int, date time.Time, city, pollutant string) int {
	weekday := 0.8
	if wd := date.Weekday(); wd >= time.Monday && wd <= time.Friday {
		weekday = 1.2
	}
	return int(float64(base) * weekday * cityFactor[city] * pollutantFactor[pollutant])
}
