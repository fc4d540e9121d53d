package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/lox/aqidash/internal/aqi"
	"github.com/lox/aqidash/internal/ingest"
	"github.com/lox/aqidash/internal/metrics"
	"github.com/lox/aqidash/internal/models"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func (s *Server) handleAPIRecords(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.FilterRecords(criteriaFromQuery(r.URL.Query()))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []models.Record{}
	}
	writeJSON(w, records)
}

func (s *Server) handleAPISummary(w http.ResponseWriter, r *http.Request) {
	c := criteriaFromQuery(r.URL.Query())

	latest, err := s.store.LatestByCity(c)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	maxR, minR, err := s.store.Extremes(c)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	worst, err := s.store.MostPolluted(c)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, struct {
		Latest       []models.LatestReading `json:"latest"`
		Highest      *models.ExtremeReading `json:"highest"`
		Lowest       *models.ExtremeReading `json:"lowest"`
		MostPolluted *models.CityStats      `json:"most_polluted"`
	}{latest, maxR, minR, worst})
}

func (s *Server) handleAPIStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.CityStats(criteriaFromQuery(r.URL.Query()))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if stats == nil {
		stats = []models.CityStats{}
	}
	writeJSON(w, stats)
}

func (s *Server) handleAPITrend(w http.ResponseWriter, r *http.Request) {
	points, err := s.store.Trend(criteriaFromQuery(r.URL.Query()), "")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if points == nil {
		points = []models.TrendPoint{}
	}
	writeJSON(w, points)
}

func (s *Server) handleAPICalendar(w http.ResponseWriter, r *http.Request) {
	c := criteriaFromQuery(r.URL.Query())

	cities, err := s.store.Cities()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	city := calendarCity(r.URL.Query().Get("calendar_city"), c, cities)

	days, err := s.store.Calendar(c, city, r.URL.Query().Get("calendar_pollutant"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if days == nil {
		days = []models.CalendarDay{}
	}
	writeJSON(w, struct {
		City string               `json:"city"`
		Days []models.CalendarDay `json:"days"`
	}{city, days})
}

func (s *Server) handleAPICategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, aqi.Bands)
}

// handleDataset replaces the active dataset with an uploaded CSV body.
// Validation failures come back as 400 with the parse error text so the
// uploader can see which columns were missing.
func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ds, err := ingest.ReadCSV(r.Body)
	if err != nil {
		metrics.DatasetLoadsTotal.WithLabelValues("upload", "error").Inc()
		var missing *ingest.MissingColumnsError
		if errors.As(err, &missing) {
			http.Error(w, missing.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	info, err := s.store.ReplaceDataset(ds, "upload")
	if err != nil {
		metrics.DatasetLoadsTotal.WithLabelValues("upload", "error").Inc()
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	metrics.DatasetLoadsTotal.WithLabelValues("upload", "ok").Inc()
	metrics.DatasetRecords.Set(float64(info.RowCount))
	log.Printf("dataset replaced: %s (%d records)", info.ID, info.RowCount)

	writeJSON(w, info)
}

// handleDownload re-serializes the currently filtered dataset.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	ds, err := s.store.FilteredDataset(criteriaFromQuery(r.URL.Query()))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="aqi-data.csv"`)
		if err := ingest.WriteCSV(w, ds); err != nil {
			log.Printf("write csv: %v", err)
		}
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="aqi-data.xlsx"`)
		if err := ingest.WriteXLSX(w, ds); err != nil {
			log.Printf("write xlsx: %v", err)
		}
	default:
		http.Error(w, fmt.Sprintf("unknown format %q", format), http.StatusBadRequest)
	}
}

type healthStatus struct {
	Status     string `json:"status"`
	DatasetID  string `json:"dataset_id,omitempty"`
	Source     string `json:"source,omitempty"`
	RowCount   int    `json:"row_count"`
	AgeSeconds int    `json:"age_seconds,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	info, err := s.store.DatasetInfo()
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		writeJSON(w, map[string]string{"status": "error", "error": err.Error()})
		return
	}

	health := healthStatus{Status: "ok"}
	if info == nil {
		health.Status = "empty"
	} else {
		health.DatasetID = info.ID
		health.Source = info.Source
		health.RowCount = info.RowCount
		health.AgeSeconds = age(info.LoadedAt)
	}
	writeJSON(w, health)
}
