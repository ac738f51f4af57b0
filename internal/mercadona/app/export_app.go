package app

import (
	"context"
	"fmt"
	"io"

	"gomercadona_api/config"
	"gomercadona_api/internal/mercadona/business/entities"
	"gomercadona_api/internal/mercadona/business/services"
	"gomercadona_api/internal/mercadona/pkg/clients"
	"gomercadona_api/internal/mercadona/registry"
	"gomercadona_api/pkg/business/service/catalog_export"
	"gomercadona_api/pkg/dbconnect/postgres"
	"gomercadona_api/pkg/logger"
)

// ExportApp wires a full catalog export run: clients, registry,
// per-warehouse sessions and the configured sinks.
type ExportApp struct {
	cfg    *config.AppConfig
	writer io.Writer
	log    logger.Logger
}

func NewExportApp(cfg *config.AppConfig, writer io.Writer) *ExportApp {
	return &ExportApp{
		cfg:    cfg,
		writer: writer,
		log:    logger.NewLogger(writer, "[export-app]"),
	}
}

func (a *ExportApp) Run(ctx context.Context) error {
	mercadonaCfg := a.cfg.Mercadona

	api := clients.NewAPIClient(mercadonaCfg.APIURL, a.writer, "[api]")
	search := clients.NewAlgoliaClient(a.writer)
	resolver := clients.NewPostalCodeClient(mercadonaCfg.APIURL, a.writer)
	warehouseRegistry := registry.Default()

	deps := services.Dependencies{
		API:      api,
		Search:   search,
		Resolver: resolver,
		Registry: warehouseRegistry,
		Retry: entities.RetryPolicy{
			Attempts:  mercadonaCfg.Retry.Attempts,
			BaseDelay: mercadonaCfg.BaseDelay(),
		},
		ProductRetry: entities.RetryPolicy{
			Attempts:  mercadonaCfg.Retry.Attempts,
			BaseDelay: mercadonaCfg.ProductBaseDelay(),
		},
		Writer: a.writer,
	}

	factory := func(ctx context.Context, warehouse string) (catalog_export.CatalogSource, error) {
		return services.NewMercadona(ctx, warehouse, mercadonaCfg.Language, deps)
	}

	sinks := []catalog_export.Sink{catalog_export.NewCSVWriter(a.cfg.Export.Directory)}
	if a.cfg.Export.Postgres {
		pgCfg, err := config.GetConfig()
		if err != nil {
			return err
		}
		db, err := postgres.NewPgConnector(pgCfg).Connect()
		if err != nil {
			return fmt.Errorf("connecting export database: %w", err)
		}
		updater := catalog_export.NewPostgresUpdater(db)
		if err := updater.EnsureSchema(ctx); err != nil {
			return err
		}
		sinks = append(sinks, updater)
	}

	warehouses := exportWarehouses(a.cfg)
	a.log.Log("Exporting %d warehouses to %s", len(warehouses), a.cfg.Export.Directory)

	exporter := catalog_export.NewExporter(factory, a.writer, sinks...)
	return exporter.Export(ctx, warehouses)
}

// exportWarehouses picks the export targets: the configured list, or
// the session warehouse when none are listed.
func exportWarehouses(cfg *config.AppConfig) []string {
	if len(cfg.Export.Warehouses) > 0 {
		return cfg.Export.Warehouses
	}
	return []string{cfg.Mercadona.Warehouse}
}
