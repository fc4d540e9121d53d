package store

import (
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/lox/aqidash/internal/models"
)

func intPtr(v int) *int            { return &v }
func datePtr(t time.Time) *time.Time { return &t }

func recordKeys(records []models.Record) []string {
	keys := make([]string, len(records))
	for i, r := range records {
		keys[i] = fmt.Sprintf("%s|%s|%s|%d", r.Date.Format("2006-01-02"), r.City, r.Pollutant, r.AQI)
	}
	sort.Strings(keys)
	return keys
}

func sameRecords(a, b []models.Record) bool {
	ka, kb := recordKeys(a), recordKeys(b)
	if len(ka) != len(kb) {
		return false
	}
	for i := range ka {
		if ka[i] != kb[i] {
			return false
		}
	}
	return true
}

func TestFilterRecords_Predicates(t *testing.T) {
	tests := []struct {
		name     string
		criteria models.Criteria
		want     int
	}{
		{"none", models.Criteria{}, 5},
		{"date range", models.Criteria{Start: datePtr(date(2024, 1, 2)), End: datePtr(date(2024, 1, 3))}, 3},
		{"start only", models.Criteria{Start: datePtr(date(2024, 1, 3))}, 1},
		{"cities", models.Criteria{Cities: []string{"CityA"}}, 3},
		{"pollutants", models.Criteria{Pollutants: []string{"O3"}}, 2},
		{"aqi range", models.Criteria{MinAQI: intPtr(0), MaxAQI: intPtr(50)}, 1},
		{"conjunction", models.Criteria{Cities: []string{"CityA"}, Pollutants: []string{"PM2.5"}, MaxAQI: intPtr(50)}, 1},
		{"no match", models.Criteria{Cities: []string{"CityZ"}}, 0},
	}

	s := setupTestStore(t)
	mustReplace(t, s, testDataset())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := s.FilterRecords(tt.criteria)
			if err != nil {
				t.Fatalf("FilterRecords: %v", err)
			}
			if len(records) != tt.want {
				t.Errorf("len(records) = %d, want %d", len(records), tt.want)
			}
		})
	}
}

func TestFilterRecords_InclusiveBounds(t *testing.T) {
	s := setupTestStore(t)
	mustReplace(t, s, testDataset())

	records, err := s.FilterRecords(models.Criteria{
		Start:  datePtr(date(2024, 1, 1)),
		End:    datePtr(date(2024, 1, 1)),
		MinAQI: intPtr(40),
		MaxAQI: intPtr(120),
	})
	if err != nil {
		t.Fatalf("FilterRecords: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2 (both bounds inclusive)", len(records))
	}
}

func TestFilterRecords_PollutantIgnoredWithoutColumn(t *testing.T) {
	s := setupTestStore(t)
	mustReplace(t, s, &models.Dataset{
		Records: []models.Record{
			{Date: date(2024, 1, 1), City: "CityA", AQI: 40},
			{Date: date(2024, 1, 1), City: "CityB", AQI: 80},
		},
	})

	records, err := s.FilterRecords(models.Criteria{Pollutants: []string{"PM2.5"}})
	if err != nil {
		t.Fatalf("FilterRecords: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("len(records) = %d, want 2 (pollutant filter skipped)", len(records))
	}
}

func TestFilterRecords_AQIBounds(t *testing.T) {
	s := setupTestStore(t)
	mustReplace(t, s, &models.Dataset{
		Records: []models.Record{
			{Date: date(2024, 1, 1), City: "CityA", AQI: 40},
			{Date: date(2024, 1, 1), City: "CityB", AQI: 120},
		},
	})

	records, err := s.FilterRecords(models.Criteria{MinAQI: intPtr(0), MaxAQI: intPtr(50)})
	if err != nil {
		t.Fatalf("FilterRecords: %v", err)
	}
	if len(records) != 1 || records[0].City != "CityA" {
		t.Errorf("records = %+v, want single CityA row", records)
	}
}

func permutations(n int) [][]int {
	if n == 1 {
		return [][]int{{0}}
	}
	var out [][]int
	for _, sub := range permutations(n - 1) {
		for i := 0; i <= len(sub); i++ {
			perm := make([]int, 0, n)
			perm = append(perm, sub[:i]...)
			perm = append(perm, n-1)
			perm = append(perm, sub[i:]...)
			out = append(out, perm)
		}
	}
	return out
}

// The four filter predicates form a conjunction; every compilation order
// must yield the same record set.
func TestFilter_Commutative(t *testing.T) {
	s := setupTestStore(t)
	mustReplace(t, s, testDataset())

	criteria := models.Criteria{
		Start:      datePtr(date(2024, 1, 1)),
		End:        datePtr(date(2024, 1, 2)),
		Cities:     []string{"CityA", "CityB"},
		Pollutants: []string{"PM2.5", "O3"},
		MinAQI:     intPtr(50),
		MaxAQI:     intPtr(120),
	}

	clauses := compileCriteria(criteria, true)
	if len(clauses) != 6 {
		t.Fatalf("len(clauses) = %d, want 6", len(clauses))
	}

	baseline, err := s.FilterRecords(criteria)
	if err != nil {
		t.Fatalf("FilterRecords: %v", err)
	}
	if len(baseline) == 0 {
		t.Fatal("baseline should not be empty")
	}

	// Permute the first four clauses (4! = 24 orders) ahead of the rest.
	for _, perm := range permutations(4) {
		ordered := make([]clause, 0, len(clauses))
		for _, i := range perm {
			ordered = append(ordered, clauses[i])
		}
		ordered = append(ordered, clauses[4:]...)

		where, args := whereSQL(ordered)
		rows, err := s.db.Query("SELECT date, city, COALESCE(pollutant, ''), aqi FROM records"+where, args...)
		if err != nil {
			t.Fatalf("query perm %v: %v", perm, err)
		}

		var got []models.Record
		for rows.Next() {
			var dateStr string
			var rec models.Record
			if err := rows.Scan(&dateStr, &rec.City, &rec.Pollutant, &rec.AQI); err != nil {
				t.Fatalf("scan: %v", err)
			}
			rec.Date, _ = time.Parse("2006-01-02", dateStr)
			got = append(got, rec)
		}
		rows.Close()

		if !sameRecords(got, baseline) {
			t.Errorf("clause order %v changed the result: %d rows vs %d", perm, len(got), len(baseline))
		}
	}
}

// Applying the same criteria to an already-filtered dataset changes nothing.
func TestFilter_Idempotent(t *testing.T) {
	criteria := models.Criteria{
		Start:  datePtr(date(2024, 1, 1)),
		End:    datePtr(date(2024, 1, 2)),
		Cities: []string{"CityA", "CityB"},
		MinAQI: intPtr(50),
	}

	s := setupTestStore(t)
	mustReplace(t, s, testDataset())

	once, err := s.FilteredDataset(criteria)
	if err != nil {
		t.Fatalf("FilteredDataset: %v", err)
	}

	s2 := setupTestStore(t)
	mustReplace(t, s2, once)
	twice, err := s2.FilterRecords(criteria)
	if err != nil {
		t.Fatalf("FilterRecords: %v", err)
	}

	if !sameRecords(once.Records, twice) {
		t.Errorf("second application changed the result: %d vs %d rows", len(once.Records), len(twice))
	}
}

func TestCriteria_Empty(t *testing.T) {
	if !(models.Criteria{}).Empty() {
		t.Error("zero criteria should be Empty")
	}
	if (models.Criteria{MinAQI: intPtr(0)}).Empty() {
		t.Error("criteria with a bound should not be Empty")
	}
}
