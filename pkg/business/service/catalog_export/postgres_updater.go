package catalog_export

import (
	"context"
	"database/sql"
	"fmt"
)

const createCatalogTable = `
CREATE TABLE IF NOT EXISTS catalog_products (
	run_id        uuid         NOT NULL,
	warehouse     varchar(16)  NOT NULL,
	product_id    varchar(32)  NOT NULL,
	ean           varchar(32),
	name          text,
	slug          text,
	brand         text,
	category      text,
	unit_price    numeric,
	bulk_price    numeric,
	previous_price numeric,
	is_discounted boolean,
	iva           integer,
	origin        text,
	description   text,
	PRIMARY KEY (run_id, warehouse, product_id)
)`

const insertCatalogRow = `
INSERT INTO catalog_products
	(run_id, warehouse, product_id, ean, name, slug, brand, category,
	 unit_price, bulk_price, previous_price, is_discounted, iva, origin, description)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
ON CONFLICT (run_id, warehouse, product_id) DO NOTHING`

// PostgresUpdater loads export rows into the catalog_products table.
// One transaction per warehouse: either the whole warehouse lands or
// none of it does.
type PostgresUpdater struct {
	db *sql.DB
}

func NewPostgresUpdater(db *sql.DB) *PostgresUpdater {
	return &PostgresUpdater{db: db}
}

// EnsureSchema creates the target table when it does not exist yet.
func (u *PostgresUpdater) EnsureSchema(ctx context.Context) error {
	if _, err := u.db.ExecContext(ctx, createCatalogTable); err != nil {
		return fmt.Errorf("failed to create catalog_products table: %w", err)
	}
	return nil
}

func (u *PostgresUpdater) Write(ctx context.Context, warehouse, runID string, rows []Row) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertCatalogRow)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		_, err := stmt.ExecContext(ctx,
			runID,
			warehouse,
			row["id"],
			row["ean"],
			row["name"],
			row["slug"],
			row["brand"],
			row["category"],
			row["unit_price"],
			row["bulk_price"],
			row["previous_price"],
			row["is_discounted"],
			row["iva"],
			row["origin"],
			row["description"],
		)
		if err != nil {
			return fmt.Errorf("failed to insert product %v: %w", row["id"], err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
