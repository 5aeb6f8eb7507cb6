/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the estimating server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Initialize SQLite store and seed the NEC full-load table
  3. Create API handler with dependencies
  4. Configure HTTP router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080)
  -db      SQLite database path (default: estimator.db)
           Use ":memory:" for an in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/estimator.db"

  # Run on a different port
  ./server -port=3000

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/voltworks/estimator/api"
	"github.com/voltworks/estimator/store/sqlite"
)

func main() {
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "estimator.db", "SQLite database path")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	store, err := sqlite.New(*dbPath)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer store.Close()

	if err := seedNECTable(context.Background(), store); err != nil {
		logger.Fatal("failed to seed NEC full-load table", zap.Error(err))
	}

	handler := api.NewHandler(store, logger, api.NewMetrics())
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.Int("port", *port), zap.String("db", *dbPath))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

// seedNECTable loads the NEC 430.250 full-load currents for three-phase
// AC motors. Seeding is idempotent; existing rows are overwritten.
func seedNECTable(ctx context.Context, store *sqlite.Store) error {
	// hp: amps at 115V, 200V, 208V, 230V, 460V, 575V. Zero means the
	// table has no entry for that hp/voltage pair.
	table := map[string][6]string{
		"0.5":  {"4.4", "2.5", "2.4", "2.2", "1.1", "0.9"},
		"0.75": {"6.4", "3.7", "3.5", "3.2", "1.6", "1.3"},
		"1":    {"8.4", "4.8", "4.6", "4.2", "2.1", "1.7"},
		"1.5":  {"12", "6.9", "6.6", "6", "3", "2.4"},
		"2":    {"13.6", "7.8", "7.5", "6.8", "3.4", "2.7"},
		"3":    {"0", "11", "10.6", "9.6", "4.8", "3.9"},
		"5":    {"0", "17.5", "16.7", "15.2", "7.6", "6.1"},
		"7.5":  {"0", "25.3", "24.2", "22", "11", "9"},
		"10":   {"0", "32.2", "30.8", "28", "14", "11"},
		"15":   {"0", "48.3", "46.2", "42", "21", "17"},
		"20":   {"0", "62.1", "59.4", "54", "27", "22"},
		"25":   {"0", "78.2", "74.8", "68", "34", "27"},
		"30":   {"0", "92", "88", "80", "40", "32"},
		"40":   {"0", "120", "114", "104", "52", "41"},
		"50":   {"0", "150", "143", "130", "65", "52"},
		"60":   {"0", "177", "169", "154", "77", "62"},
		"75":   {"0", "221", "211", "192", "96", "77"},
		"100":  {"0", "285", "273", "248", "124", "99"},
		"125":  {"0", "359", "343", "312", "156", "125"},
		"150":  {"0", "414", "396", "360", "180", "144"},
		"200":  {"0", "552", "528", "480", "240", "192"},
	}
	voltages := [6]int{115, 200, 208, 230, 460, 575}

	for hp, amps := range table {
		hpDec := decimal.RequireFromString(hp)
		for i, v := range voltages {
			if amps[i] == "0" {
				continue
			}
			if err := store.SeedNECAmps(ctx, hpDec, v, decimal.RequireFromString(amps[i])); err != nil {
				return err
			}
		}
	}
	return nil
}
