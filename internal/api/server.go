package api

import (
	"context"
	"html/template"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lox/aqidash/internal/store"
)

type Server struct {
	store *store.Store
	port  string
	tmpl  *template.Template
}

func NewServer(store *store.Store, port string) *Server {
	return &Server{
		store: store,
		port:  port,
		tmpl:  newTemplates(),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/partials/summary", s.handleSummaryPartial)
	mux.HandleFunc("/partials/stats", s.handleStatsPartial)
	mux.HandleFunc("/api/records", s.handleAPIRecords)
	mux.HandleFunc("/api/summary", s.handleAPISummary)
	mux.HandleFunc("/api/stats", s.handleAPIStats)
	mux.HandleFunc("/api/trend", s.handleAPITrend)
	mux.HandleFunc("/api/calendar", s.handleAPICalendar)
	mux.HandleFunc("/api/categories", s.handleAPICategories)
	mux.HandleFunc("/api/dataset", s.handleDataset)
	mux.HandleFunc("/download", s.handleDownload)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:    ":" + s.port,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
