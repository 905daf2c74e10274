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

	"shiftstat/api"
	"shiftstat/config"
	"shiftstat/database"
	"shiftstat/i18n"
	"shiftstat/jobs"
	"shiftstat/web"
)

func main() {
	seedHours := flag.Int("seed", 0, "seed every configured store with N hours of mock records and exit")
	flag.Parse()

	fmt.Println("=== shiftstat - Test Report Dashboard ===")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✓ Configuration loaded")

	if *seedHours > 0 {
		gen := database.NewSeedGenerator(cfg, time.Now().UnixNano())
		if err := gen.SeedAll(*seedHours, time.Now()); err != nil {
			log.Fatalf("Failed to seed stores: %v", err)
		}
		fmt.Println("✓ Stores seeded")
		return
	}

	// Locale tables
	langs, err := i18n.New()
	if err != nil {
		log.Fatalf("Failed to build locale tables: %v", err)
	}
	fmt.Println("✓ Locales loaded")

	// Initialize worker pool
	workerPool := jobs.NewWorkerPool(cfg.WorkerPoolSize)
	defer workerPool.Stop()
	fmt.Printf("✓ Worker pool started with %d workers\n", cfg.WorkerPoolSize)

	// Store access layer; connections open lazily per store
	db := database.New(cfg, workerPool)
	defer db.Close()

	// Page renderer
	render, err := web.NewRenderer()
	if err != nil {
		log.Fatalf("Failed to parse templates: %v", err)
	}
	fmt.Println("✓ Templates parsed")

	// Initialize API handler
	handler := api.NewHandler(cfg, db, langs, render)

	// Setup router
	router := api.SetupRouter(handler)
	router.Use(api.CORSMiddleware())
	router.Use(api.LoggingMiddleware())

	// Create HTTP server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		fmt.Printf("✓ Server listening on %s\n", addr)
		fmt.Println("\nPages:")
		fmt.Println("  GET  /")
		fmt.Println("  GET  /health")
		fmt.Println("  GET  /json/today")
		fmt.Println("  GET  /{lang}/{line}/pf_data")
		fmt.Println("  GET  /{lang}/{line}/day_yield")
		fmt.Println("  GET  /{lang}/{line}/fail_detail")
		fmt.Println("  GET  /{lang}/{line}/query_cell")
		fmt.Println("  GET  /{lang}/{line}/query_sn")
		fmt.Println("\nPress Ctrl+C to shutdown")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		fmt.Printf("Server forced to shutdown: %v\n", err)
	}

	fmt.Println("Server exited")
}
