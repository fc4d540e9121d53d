package api

import (
	"log"
	"net/http"
	"time"

	"github.com/lox/aqidash/internal/metrics"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	start := time.Now()
	c := criteriaFromQuery(r.URL.Query())

	data, err := s.getIndexData(c, r.URL.Query().Get("calendar_city"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := s.tmpl.ExecuteTemplate(w, "index.html", data); err != nil {
		log.Printf("template error: %v", err)
	}
	metrics.PageRendersTotal.WithLabelValues("index").Inc()
	metrics.RenderLatency.WithLabelValues("index").Observe(time.Since(start).Seconds())
}

func (s *Server) handleSummaryPartial(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	c := criteriaFromQuery(r.URL.Query())

	data, err := s.getSummaryData(c)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := s.tmpl.ExecuteTemplate(w, "summary.html", data); err != nil {
		log.Printf("template error: %v", err)
	}
	metrics.PageRendersTotal.WithLabelValues("summary").Inc()
	metrics.RenderLatency.WithLabelValues("summary").Observe(time.Since(start).Seconds())
}

func (s *Server) handleStatsPartial(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	c := criteriaFromQuery(r.URL.Query())

	data, err := s.getStatsData(c)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := s.tmpl.ExecuteTemplate(w, "stats.html", data); err != nil {
		log.Printf("template error: %v", err)
	}
	metrics.PageRendersTotal.WithLabelValues("stats").Inc()
	metrics.RenderLatency.WithLabelValues("stats").Observe(time.Since(start).Seconds())
}
