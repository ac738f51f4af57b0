package catalog_export

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gomercadona_api/pkg/business/service"
)

// CSVWriter writes one {warehouse}_catalog.csv file per warehouse into
// its directory.
type CSVWriter struct {
	dir  string
	text *service.TextService
}

func NewCSVWriter(dir string) *CSVWriter {
	return &CSVWriter{
		dir:  dir,
		text: service.NewTextService(),
	}
}

func (w *CSVWriter) Write(ctx context.Context, warehouse, runID string, rows []Row) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", w.dir, err)
	}

	name := fmt.Sprintf("%s_catalog.csv", w.text.SafeFileName(warehouse))
	file, err := os.Create(filepath.Join(w.dir, name))
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	header := append([]string{"run_id", "warehouse"}, Columns...)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		record := make([]string, 0, len(header))
		record = append(record, runID, warehouse)
		for _, column := range Columns {
			record = append(record, formatCell(row[column]))
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatCell(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
