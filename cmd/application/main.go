package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"gomercadona_api/config"
	"gomercadona_api/internal/mercadona/app"
	"gomercadona_api/metrics"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "config.yaml", "path to the yaml config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go serveOps(cfg.OpsAddr)

	exportApp := app.NewExportApp(cfg, os.Stdout)
	if err := exportApp.Run(ctx); err != nil {
		log.Fatalf("Export failed: %v", err)
	}
	log.Printf("Export finished")
}

func serveOps(addr string) {
	router := chi.NewRouter()
	router.Use(chimiddleware.Recoverer)
	router.Handle("/metrics", metrics.MetricsHandler())
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	log.Printf("Ops endpoints listening on %s", addr)
	if err := http.ListenAndServe(addr, router); err != nil {
		log.Printf("Ops server stopped: %v", err)
	}
}
