/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the store uptime monitoring server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Initialize SQLite store
  3. Bulk-load the CSV feeds if the store is empty and -data is set
  4. Configure HTTP router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port     HTTP server port (default: 8080)
  -db       SQLite database path (default: uptime.db)
            Use ":memory:" for an in-memory database
  -data     Directory holding status.csv / business_hours.csv /
            timezones.csv, loaded once when the database is empty
  -reports  Directory receiving exported report CSVs

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # First run, seeding from CSVs
  ./server -db=./data/uptime.db -data=./data

  # In-memory database on another port
  ./server -port=3000 -db=":memory:" -data=./data

SEE ALSO:
  - api/server.go: Router configuration
  - ingest/csv.go: CSV bulk loading
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pulse/uptime-engine/api"
	"github.com/pulse/uptime-engine/ingest"
	"github.com/pulse/uptime-engine/store/sqlite"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "uptime.db", "SQLite database path")
	dataDir := flag.String("data", "", "CSV feed directory (loaded when the database is empty)")
	reportsDir := flag.String("reports", "./csv_reports", "Directory for exported report CSVs")
	flag.Parse()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Seed from CSVs on first run
	if *dataDir != "" {
		count, err := store.CountObservations(context.Background())
		if err != nil {
			log.Fatalf("Failed to inspect database: %v", err)
		}
		if count == 0 {
			sum, err := ingest.LoadDir(context.Background(), store, *dataDir)
			if err != nil {
				log.Fatalf("Failed to load CSV feeds from %s: %v", *dataDir, err)
			}
			log.Printf("[Ingest] loaded %d observations, %d business-hours rows, %d timezones",
				sum.Observations, sum.BusinessHours, sum.Timezones)
		}
	}

	// Initialize handler and router
	handler := api.NewHandler(store, *reportsDir)
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Server starting on http://localhost:%d", *port)
		log.Printf("📊 API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
