package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"gomercadona_api/config"
	"gomercadona_api/config/values"
	"gomercadona_api/internal/mercadona/business/services/discovery"
	"gomercadona_api/internal/mercadona/pkg/clients"
	"gomercadona_api/internal/mercadona/registry"
)

// warehousefinder runs the offline discovery crawl over postal codes
// and prints the distinct warehouse codes it observed. Expect tens of
// thousands of lookups on a full run.
func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "", "yaml config file supplying the crawl section")
	apiURL := flag.String("api-url", clients.DefaultAPIURL, "storefront base URL")
	workers := flag.Int("workers", discovery.DefaultWorkers, "concurrent point-lookups")
	batchSize := flag.Int("batch-size", discovery.DefaultBatchSize, "frontier codes dispatched per batch")
	rps := flag.Float64("rps", 0, "lookup rate limit (0 disables)")
	flag.Parse()

	crawl := values.CrawlValues{
		Workers:           *workers,
		BatchSize:         *batchSize,
		RequestsPerSecond: *rps,
	}
	if *configPath != "" {
		cfg, err := config.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		crawl = cfg.Crawl
		// Explicitly passed flags still win over the config file.
		flag.Visit(func(fl *flag.Flag) {
			switch fl.Name {
			case "workers":
				crawl.Workers = *workers
			case "batch-size":
				crawl.BatchSize = *batchSize
			case "rps":
				crawl.RequestsPerSecond = *rps
			}
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	resolver := clients.NewPostalCodeClient(*apiURL, os.Stdout)
	finder := discovery.NewWarehouseFinder(resolver, os.Stdout).WithCrawlValues(crawl)

	log.Printf("Starting the search for unique warehouse codes...")
	warehouses, err := finder.Find(ctx, discovery.SeedPostalCodes)
	if err != nil {
		log.Fatalf("Crawl aborted: %v", err)
	}

	known := registry.Default()
	fmt.Printf("Unique warehouse codes found (%d):\n", len(warehouses))
	for _, warehouse := range warehouses {
		if known.Has(warehouse) {
			fmt.Println(warehouse)
		} else {
			fmt.Printf("%s (new)\n", warehouse)
		}
	}
}
