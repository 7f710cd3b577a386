package store

import (
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
)

// ExportParquet writes rows to a single Parquet file at path, creating
// parent directories.
func ExportParquet(path string, rows []QuoteRow) error {
	return writeParquetFile(path, rows)
}

// ReadParquet reads back a file written by ExportParquet.
func ReadParquet(path string) ([]QuoteRow, error) {
	return readParquetFile[QuoteRow](path)
}

// ---------------------------------------------------------------------------
// Parquet file helpers
// ---------------------------------------------------------------------------

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

func readParquetFile[T any](path string) ([]T, error) {
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
