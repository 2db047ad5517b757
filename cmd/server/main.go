/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the licença-prêmio engine server: configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Initialize SQLite store and reload persisted lotação rules
  3. Construct the engine components and aggregation facade
  4. Configure HTTP router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080)
  -db      SQLite database path (default: licenca.db)
           Use ":memory:" for an in-memory database
  -dias    Entitlement days per acquisition period (default: 90)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit
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

	"github.com/sigrh/licenca-engine/api"
	"github.com/sigrh/licenca-engine/dashboard"
	"github.com/sigrh/licenca-engine/licenca"
	"github.com/sigrh/licenca-engine/normalize"
	"github.com/sigrh/licenca-engine/retirement"
	"github.com/sigrh/licenca-engine/store/sqlite"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "licenca.db", "SQLite database path")
	dias := flag.Int("dias", 90, "entitlement days per acquisition period")
	flag.Parse()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Engine components: constructed once here, passed by reference.
	// No package-level singletons.
	lotacoes := normalize.NewLotacaoNormalizer()
	rules, err := store.LoadLotacaoRules(context.Background())
	if err != nil {
		log.Printf("Warning: failed to load lotação rules: %v", err)
	} else {
		lotacoes.LoadRules(rules)
	}

	facade := dashboard.New(dashboard.Deps{
		Records:    normalize.NewRecordNormalizer(),
		Lotacoes:   lotacoes,
		Reconciler: licenca.NewReconciler(licenca.ReconcilerConfig{DiasPorPeriodo: *dias}),
		Urgencia:   licenca.NewUrgencyClassifier(licenca.DefaultUrgencyThresholds()),
		Aposenta:   retirement.NewEngine(retirement.DefaultConfig()),
	})

	handler := api.NewHandler(facade, store)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on http://localhost:%d", *port)
		log.Printf("API available at http://localhost:%d/api", *port)
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
