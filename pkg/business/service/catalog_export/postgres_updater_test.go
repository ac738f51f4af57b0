package catalog_export

import (
	"context"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureSchemaCreatesTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS catalog_products").
		WillReturnResult(sqlmock.NewResult(0, 0))

	updater := NewPostgresUpdater(db)
	require.NoError(t, updater.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWriteInsertsRowsInOneTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	prepared := mock.ExpectPrepare("INSERT INTO catalog_products")
	prepared.ExpectExec().
		WithArgs("run-1", "mad1", "p1", "8480000000000", "Leche entera", "leche-entera", "Hacendado", "Leche",
			1.25, 2.5, nil, false, 10, "España", "").
		WillReturnResult(sqlmock.NewResult(0, 1))
	prepared.ExpectExec().
		WithArgs("run-1", "mad1", "p2", nil, nil, nil, nil, nil,
			nil, nil, nil, nil, nil, nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rows := []Row{
		{
			"id": "p1", "ean": "8480000000000", "name": "Leche entera",
			"slug": "leche-entera", "brand": "Hacendado", "category": "Leche",
			"unit_price": 1.25, "bulk_price": 2.5, "previous_price": nil,
			"is_discounted": false, "iva": 10, "origin": "España", "description": "",
		},
		{"id": "p2"},
	}

	updater := NewPostgresUpdater(db)
	require.NoError(t, updater.Write(context.Background(), "mad1", "run-1", rows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWriteRollsBackOnInsertFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	prepared := mock.ExpectPrepare("INSERT INTO catalog_products")
	prepared.ExpectExec().WillReturnError(fmt.Errorf("connection lost"))
	mock.ExpectRollback()

	updater := NewPostgresUpdater(db)
	err = updater.Write(context.Background(), "mad1", "run-1", []Row{{"id": "p1"}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "p1")
	assert.NoError(t, mock.ExpectationsWereMet())
}
