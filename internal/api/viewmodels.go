package api

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/lox/aqidash/internal/aqi"
	"github.com/lox/aqidash/internal/models"
)

const pageDateLayout = "2006-01-02"

var seriesColors = []string{"#4fc3f7", "#81c784", "#ffb74d", "#f48fb1", "#ba68c8", "#a1887f"}

type KPICard struct {
	Title  string
	Value  string
	Detail string
	Color  string
}

type SummaryData struct {
	Cards  []KPICard
	Latest []LatestRow
	Empty  bool
}

type LatestRow struct {
	models.LatestReading
	Color string
}

type StatsRow struct {
	models.CityStats
	Color string
}

type StatsData struct {
	Rows  []StatsRow
	Empty bool
}

type ChartData struct {
	Labels []string      `json:"labels"`
	Series []ChartSeries `json:"series"`
}

// ChartSeries data is pointer-valued so cities missing a date serialize as
// null and Chart.js leaves a gap instead of drawing through zero.
type ChartSeries struct {
	Name  string     `json:"name"`
	Data  []*float64 `json:"data"`
	Color string     `json:"color"`
}

type CalendarCell struct {
	models.CalendarDay
	Color string
}

type CalendarData struct {
	City  string
	Days  []CalendarCell
	Empty bool
}

// FilterForm echoes the active query back into the sidebar so the form keeps
// its state across submits.
type FilterForm struct {
	Start      string
	End        string
	Cities     []string
	Pollutants []string
	Min        string
	Max        string
}

type IndexData struct {
	Info          *models.DatasetInfo
	Form          FilterForm
	Cities        []string
	Pollutants    []string
	MinAQI        int
	MaxAQI        int
	StartDate     string
	EndDate       string
	FilteredCount int
	Summary       *SummaryData
	Stats         *StatsData
	Trend         ChartData
	Comparison    ChartData
	Calendar      CalendarData
	Bands         []aqi.Band
}

func meanColor(mean float64) string {
	return aqi.Classify(int(math.Round(mean))).Color
}

// getSummaryData assembles the KPI cards and the latest-per-city table for
// the given criteria.
func (s *Server) getSummaryData(c models.Criteria) (*SummaryData, error) {
	latest, err := s.store.LatestByCity(c)
	if err != nil {
		return nil, err
	}
	if len(latest) == 0 {
		return &SummaryData{Empty: true}, nil
	}

	data := &SummaryData{}
	for _, lr := range latest {
		data.Latest = append(data.Latest, LatestRow{LatestReading: lr, Color: meanColor(lr.MeanAQI)})
	}

	// Current AQI reads the first selected city, or the first city in the
	// table when no city filter is active.
	current := data.Latest[0]
	if len(c.Cities) > 0 {
		for _, lr := range data.Latest {
			if lr.City == c.Cities[0] {
				current = lr
				break
			}
		}
	}
	data.Cards = append(data.Cards, KPICard{
		Title:  "Current AQI",
		Value:  fmt.Sprintf("%.0f", current.MeanAQI),
		Detail: fmt.Sprintf("%s on %s", current.City, current.Date.Format(pageDateLayout)),
		Color:  meanColor(current.MeanAQI),
	})

	maxR, minR, err := s.store.Extremes(c)
	if err != nil {
		return nil, err
	}
	if maxR != nil {
		data.Cards = append(data.Cards, KPICard{
			Title:  "Highest AQI",
			Value:  fmt.Sprintf("%d", maxR.AQI),
			Detail: fmt.Sprintf("%s on %s", maxR.City, maxR.Date.Format(pageDateLayout)),
			Color:  aqi.Classify(maxR.AQI).Color,
		})
	}
	if minR != nil {
		data.Cards = append(data.Cards, KPICard{
			Title:  "Lowest AQI",
			Value:  fmt.Sprintf("%d", minR.AQI),
			Detail: fmt.Sprintf("%s on %s", minR.City, minR.Date.Format(pageDateLayout)),
			Color:  aqi.Classify(minR.AQI).Color,
		})
	}

	worst, err := s.store.MostPolluted(c)
	if err != nil {
		return nil, err
	}
	if worst != nil {
		data.Cards = append(data.Cards, KPICard{
			Title:  "Most Polluted",
			Value:  worst.City,
			Detail: fmt.Sprintf("mean AQI %.1f", worst.Mean),
			Color:  meanColor(worst.Mean),
		})
	}

	return data, nil
}

func (s *Server) getStatsData(c models.Criteria) (*StatsData, error) {
	stats, err := s.store.CityStats(c)
	if err != nil {
		return nil, err
	}
	data := &StatsData{Empty: len(stats) == 0}
	for _, cs := range stats {
		data.Rows = append(data.Rows, StatsRow{CityStats: cs, Color: meanColor(cs.Mean)})
	}
	return data, nil
}

// trendChart pivots (date, city) means into one labelled series per city.
func trendChart(points []models.TrendPoint) ChartData {
	var labels []string
	seen := make(map[string]bool)
	for _, p := range points {
		key := p.Date.Format(pageDateLayout)
		if !seen[key] {
			seen[key] = true
			labels = append(labels, key)
		}
	}
	sort.Strings(labels)
	index := make(map[string]int, len(labels))
	for i, l := range labels {
		index[l] = i
	}

	byCity := make(map[string][]*float64)
	var cities []string
	for _, p := range points {
		if _, ok := byCity[p.City]; !ok {
			byCity[p.City] = make([]*float64, len(labels))
			cities = append(cities, p.City)
		}
		v := p.MeanAQI
		byCity[p.City][index[p.Date.Format(pageDateLayout)]] = &v
	}
	sort.Strings(cities)

	chart := ChartData{Labels: labels, Series: make([]ChartSeries, 0, len(cities))}
	for i, city := range cities {
		chart.Series = append(chart.Series, ChartSeries{
			Name:  city,
			Data:  byCity[city],
			Color: seriesColors[i%len(seriesColors)],
		})
	}
	return chart
}

// comparisonChart is the per-city mean AQI bar chart, one point per city in
// a single series with per-band colors carried separately by the template.
func comparisonChart(stats []StatsRow) ChartData {
	chart := ChartData{}
	series := ChartSeries{Name: "Mean AQI"}
	for _, row := range stats {
		chart.Labels = append(chart.Labels, row.City)
		v := row.Mean
		series.Data = append(series.Data, &v)
	}
	chart.Series = append(chart.Series, series)
	return chart
}

func (s *Server) getCalendarData(c models.Criteria, city, pollutant string) (*CalendarData, error) {
	days, err := s.store.Calendar(c, city, pollutant)
	if err != nil {
		return nil, err
	}
	data := &CalendarData{City: city, Empty: len(days) == 0}
	for _, d := range days {
		data.Days = append(data.Days, CalendarCell{CalendarDay: d, Color: meanColor(d.MeanAQI)})
	}
	return data, nil
}

// calendarCity picks the city shown in the calendar grid: the explicit
// query value, else the first selected city, else the first city present.
func calendarCity(q string, c models.Criteria, cities []string) string {
	if q != "" {
		return q
	}
	if len(c.Cities) > 0 {
		return c.Cities[0]
	}
	if len(cities) > 0 {
		return cities[0]
	}
	return ""
}

func (s *Server) getIndexData(c models.Criteria, calCity string) (*IndexData, error) {
	info, err := s.store.DatasetInfo()
	if err != nil {
		return nil, err
	}
	cities, err := s.store.Cities()
	if err != nil {
		return nil, err
	}
	pollutants, err := s.store.Pollutants()
	if err != nil {
		return nil, err
	}

	data := &IndexData{
		Info:       info,
		Cities:     cities,
		Pollutants: pollutants,
		Bands:      aqi.Bands,
		Form:       formFromCriteria(c),
	}

	if min, max, ok, err := s.store.AQIRange(); err != nil {
		return nil, err
	} else if ok {
		data.MinAQI, data.MaxAQI = min, max
	}
	if start, end, ok, err := s.store.DateRange(); err != nil {
		return nil, err
	} else if ok {
		data.StartDate = start.Format(pageDateLayout)
		data.EndDate = end.Format(pageDateLayout)
	}

	records, err := s.store.FilterRecords(c)
	if err != nil {
		return nil, err
	}
	data.FilteredCount = len(records)

	if data.Summary, err = s.getSummaryData(c); err != nil {
		return nil, err
	}
	if data.Stats, err = s.getStatsData(c); err != nil {
		return nil, err
	}

	points, err := s.store.Trend(c, "")
	if err != nil {
		return nil, err
	}
	data.Trend = trendChart(points)
	data.Comparison = comparisonChart(data.Stats.Rows)

	cal, err := s.getCalendarData(c, calendarCity(calCity, c, cities), "")
	if err != nil {
		return nil, err
	}
	data.Calendar = *cal

	return data, nil
}

func formFromCriteria(c models.Criteria) FilterForm {
	f := FilterForm{Cities: c.Cities, Pollutants: c.Pollutants}
	if c.Start != nil {
		f.Start = c.Start.Format(pageDateLayout)
	}
	if c.End != nil {
		f.End = c.End.Format(pageDateLayout)
	}
	if c.MinAQI != nil {
		f.Min = fmt.Sprintf("%d", *c.MinAQI)
	}
	if c.MaxAQI != nil {
		f.Max = fmt.Sprintf("%d", *c.MaxAQI)
	}
	return f
}

// age is the elapsed time since the dataset load, rounded for the health
// payload.
func age(loadedAt time.Time) int {
	return int(time.Since(loadedAt).Seconds())
}
