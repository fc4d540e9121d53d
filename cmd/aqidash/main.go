package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	"github.com/lox/aqidash/internal/api"
	"github.com/lox/aqidash/internal/ingest"
	"github.com/lox/aqidash/internal/metrics"
	"github.com/lox/aqidash/internal/models"
	"github.com/lox/aqidash/internal/sample"
	"github.com/lox/aqidash/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("load .env: %v", err)
	}

	defaultPort := os.Getenv("PORT")
	if defaultPort == "" {
		defaultPort = "8080"
	}

	port := flag.String("port", defaultPort, "HTTP server port")
	csvPath := flag.String("csv", "", "serve this CSV file instead of sample data")
	seed := flag.Int64("seed", 0, "sample generator seed (0 = time-based)")
	watch := flag.Bool("watch", false, "reload -csv when the file changes")
	export := flag.String("export", "", "write the loaded dataset as CSV to this path and exit")
	flag.Parse()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	// The dataset engine is a single in-memory connection; a second
	// connection would see an empty database.
	db.SetMaxOpenConns(1)

	st := store.New(db)
	if err := st.Migrate(); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	if *csvPath != "" {
		if err := loadCSV(st, *csvPath); err != nil {
			log.Fatalf("load %s: %v", *csvPath, err)
		}
	} else {
		s := *seed
		if s == 0 {
			s = time.Now().UnixNano()
		}
		ds := sample.New(s, time.Now()).Generate()
		info, err := st.ReplaceDataset(ds, "sample")
		if err != nil {
			log.Fatalf("load sample data: %v", err)
		}
		metrics.DatasetLoadsTotal.WithLabelValues("sample", "ok").Inc()
		metrics.DatasetRecords.Set(float64(info.RowCount))
		log.Printf("sample dataset loaded: %d records (seed %d)", info.RowCount, s)
	}

	if *export != "" {
		if err := exportCSV(st, *export); err != nil {
			log.Fatalf("export: %v", err)
		}
		log.Printf("dataset written to %s", *export)
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *watch {
		if *csvPath == "" {
			log.Fatal("-watch requires -csv")
		}
		watcher, err := ingest.NewWatcher(*csvPath)
		if err != nil {
			log.Fatalf("watch %s: %v", *csvPath, err)
		}
		defer watcher.Close()
		go func() {
			err := watcher.Run(ctx, func(path string) {
				if err := loadCSV(st, path); err != nil {
					log.Printf("reload %s: %v", path, err)
				}
			})
			if err != nil {
				log.Printf("watcher: %v", err)
			}
		}()
		log.Printf("watching %s for changes", *csvPath)
	}

	server := api.NewServer(st, *port)
	log.Printf("starting server on :%s", *port)
	if err := server.Run(ctx); err != nil {
		log.Fatalf("server: %v", err)
	}
}

func loadCSV(st *store.Store, path string) error {
	ds, err := ingest.ReadFile(path)
	if err != nil {
		metrics.DatasetLoadsTotal.WithLabelValues("csv", "error").Inc()
		return err
	}
	info, err := st.ReplaceDataset(ds, "csv:"+path)
	if err != nil {
		metrics.DatasetLoadsTotal.WithLabelValues("csv", "error").Inc()
		return err
	}
	metrics.DatasetLoadsTotal.WithLabelValues("csv", "ok").Inc()
	metrics.DatasetRecords.Set(float64(info.RowCount))
	log.Printf("dataset loaded from %s: %d records", path, info.RowCount)
	return nil
}

func exportCSV(st *store.Store, path string) error {
	ds, err := st.FilteredDataset(models.Criteria{})
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := ingest.WriteCSV(f, ds); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
