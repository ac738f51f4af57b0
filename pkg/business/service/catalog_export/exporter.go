package catalog_export

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"gomercadona_api/internal/mercadona/business/entities"
	"gomercadona_api/pkg/logger"
)

// Columns is the canonical export row layout, shared by every sink.
var Columns = []string{
	"id", "ean", "name", "slug", "brand", "category",
	"unit_price", "bulk_price", "previous_price", "is_discounted", "iva",
	"is_new", "is_pack", "pack_size", "minimum_amount", "weight",
	"age_check", "alcohol_by_volume", "legal_name", "origin",
	"description", "suppliers", "photos",
}

// Row is one fully resolved product snapshot, keyed by column name.
type Row map[string]interface{}

// Sink persists the rows of one warehouse export.
type Sink interface {
	Write(ctx context.Context, warehouse, runID string, rows []Row) error
}

// CatalogSource is the slice of the catalog session the exporter needs.
type CatalogSource interface {
	Warehouse() string
	Catalog(ctx context.Context) ([]*entities.Product, error)
}

// SessionFactory builds a catalog session bound to one warehouse.
type SessionFactory func(ctx context.Context, warehouse string) (CatalogSource, error)

// Exporter walks full warehouse catalogs and hands the resolved rows to
// its sinks. Forcing ToMapping on every product makes this the slowest
// operation in the repository: it is meant for offline runs.
type Exporter struct {
	newSession SessionFactory
	sinks      []Sink
	log        logger.Logger
}

func NewExporter(factory SessionFactory, writer io.Writer, sinks ...Sink) *Exporter {
	return &Exporter{
		newSession: factory,
		sinks:      sinks,
		log:        logger.NewLogger(writer, "[export]"),
	}
}

// Export dumps the catalog of every listed warehouse. All rows of a run
// share one run id, so repeated runs can coexist in the same sink.
func (e *Exporter) Export(ctx context.Context, warehouses []string) error {
	runID := uuid.NewString()
	e.log.Log("Starting export run %s over %d warehouses", runID, len(warehouses))

	for _, warehouse := range warehouses {
		session, err := e.newSession(ctx, warehouse)
		if err != nil {
			return fmt.Errorf("creating session for warehouse %s: %w", warehouse, err)
		}

		products, err := session.Catalog(ctx)
		if err != nil {
			return fmt.Errorf("walking catalog of warehouse %s: %w", warehouse, err)
		}

		rows := make([]Row, 0, len(products))
		for _, product := range products {
			rows = append(rows, Row(product.ToMapping(ctx)))
		}

		for _, sink := range e.sinks {
			if err := sink.Write(ctx, warehouse, runID, rows); err != nil {
				return fmt.Errorf("writing warehouse %s: %w", warehouse, err)
			}
		}
		e.log.Log("Exported %d products from warehouse %s", len(rows), warehouse)
	}
	return nil
}
