package store

import (
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lox/aqidash/internal/models"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// A second connection would see a fresh empty in-memory database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	store := New(db)
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return store
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustReplace(t *testing.T, s *Store, ds *models.Dataset) models.DatasetInfo {
	t.Helper()
	info, err := s.ReplaceDataset(ds, "test")
	if err != nil {
		t.Fatalf("ReplaceDataset: %v", err)
	}
	return info
}

func testDataset() *models.Dataset {
	return &models.Dataset{
		HasPollutant: true,
		Records: []models.Record{
			{Date: date(2024, 1, 1), City: "CityA", Pollutant: "PM2.5", AQI: 40},
			{Date: date(2024, 1, 1), City: "CityB", Pollutant: "PM2.5", AQI: 120},
			{Date: date(2024, 1, 2), City: "CityA", Pollutant: "O3", AQI: 60},
			{Date: date(2024, 1, 2), City: "CityB", Pollutant: "O3", AQI: 90},
			{Date: date(2024, 1, 3), City: "CityA", Pollutant: "PM2.5", AQI: 55},
		},
	}
}

func TestReplaceDataset_Info(t *testing.T) {
	s := setupTestStore(t)
	info := mustReplace(t, s, testDataset())

	if info.ID == "" {
		t.Error("dataset ID should be set")
	}
	if info.RowCount != 5 {
		t.Errorf("RowCount = %d, want 5", info.RowCount)
	}
	if !info.HasPollutant {
		t.Error("HasPollutant = false, want true")
	}

	got, err := s.DatasetInfo()
	if err != nil {
		t.Fatalf("DatasetInfo: %v", err)
	}
	if got == nil {
		t.Fatal("DatasetInfo returned nil")
	}
	if got.ID != info.ID || got.Source != "test" {
		t.Errorf("DatasetInfo = %+v, want id %s source test", got, info.ID)
	}
}

func TestReplaceDataset_Replaces(t *testing.T) {
	s := setupTestStore(t)
	first := mustReplace(t, s, testDataset())

	second := mustReplace(t, s, &models.Dataset{
		Records: []models.Record{{Date: date(2024, 2, 1), City: "CityC", AQI: 75}},
	})

	if second.ID == first.ID {
		t.Error("new load should get a new dataset ID")
	}

	records, err := s.FilterRecords(models.Criteria{})
	if err != nil {
		t.Fatalf("FilterRecords: %v", err)
	}
	if len(records) != 1 || records[0].City != "CityC" {
		t.Errorf("records = %+v, want single CityC row", records)
	}

	info, err := s.DatasetInfo()
	if err != nil {
		t.Fatalf("DatasetInfo: %v", err)
	}
	if info.HasPollutant {
		t.Error("HasPollutant = true for dataset without pollutant column")
	}
}

func TestDatasetInfo_Empty(t *testing.T) {
	s := setupTestStore(t)

	info, err := s.DatasetInfo()
	if err != nil {
		t.Fatalf("DatasetInfo: %v", err)
	}
	if info != nil {
		t.Errorf("DatasetInfo = %+v, want nil before any load", info)
	}
}

func TestCitiesAndPollutants(t *testing.T) {
	s := setupTestStore(t)
	mustReplace(t, s, testDataset())

	cities, err := s.Cities()
	if err != nil {
		t.Fatalf("Cities: %v", err)
	}
	if len(cities) != 2 || cities[0] != "CityA" || cities[1] != "CityB" {
		t.Errorf("Cities = %v, want [CityA CityB]", cities)
	}

	pollutants, err := s.Pollutants()
	if err != nil {
		t.Fatalf("Pollutants: %v", err)
	}
	if len(pollutants) != 2 || pollutants[0] != "O3" || pollutants[1] != "PM2.5" {
		t.Errorf("Pollutants = %v, want [O3 PM2.5]", pollutants)
	}
}

func TestPollutants_NoColumn(t *testing.T) {
	s := setupTestStore(t)
	mustReplace(t, s, &models.Dataset{
		Records: []models.Record{{Date: date(2024, 1, 1), City: "CityA", AQI: 40}},
	})

	pollutants, err := s.Pollutants()
	if err != nil {
		t.Fatalf("Pollutants: %v", err)
	}
	if len(pollutants) != 0 {
		t.Errorf("Pollutants = %v, want empty", pollutants)
	}
}

func TestAQIRange(t *testing.T) {
	s := setupTestStore(t)

	_, _, ok, err := s.AQIRange()
	if err != nil {
		t.Fatalf("AQIRange: %v", err)
	}
	if ok {
		t.Error("AQIRange ok = true on empty dataset")
	}

	mustReplace(t, s, testDataset())
	min, max, ok, err := s.AQIRange()
	if err != nil {
		t.Fatalf("AQIRange: %v", err)
	}
	if !ok || min != 40 || max != 120 {
		t.Errorf("AQIRange = (%d, %d, %v), want (40, 120, true)", min, max, ok)
	}
}

func TestDateRange(t *testing.T) {
	s := setupTestStore(t)
	mustReplace(t, s, testDataset())

	start, end, ok, err := s.DateRange()
	if err != nil {
		t.Fatalf("DateRange: %v", err)
	}
	if !ok {
		t.Fatal("DateRange ok = false")
	}
	if !start.Equal(date(2024, 1, 1)) || !end.Equal(date(2024, 1, 3)) {
		t.Errorf("DateRange = (%v, %v)", start, end)
	}
}

func TestMigrationVersion(t *testing.T) {
	s := setupTestStore(t)

	version, err := s.MigrationVersion()
	if err != nil {
		t.Fatalf("MigrationVersion: %v", err)
	}
	if version < 1 {
		t.Errorf("MigrationVersion = %d, want >= 1", version)
	}
}
