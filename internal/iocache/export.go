package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/assetload/internal/contract"
	"github.com/huangsam/assetload/internal/parquet"
)

// ExecuteJournalExport writes every journal record to a Parquet file.
func ExecuteJournalExport(store contract.JournalStore, outputFile string, w io.Writer) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get journal status: %w", err)
	}
	if status.TotalRecords == 0 {
		return errors.New("no journal records found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)

	records, err := store.GetAllRecords()
	if err != nil {
		return fmt.Errorf("failed to retrieve journal records: %w", err)
	}

	parquetRecords := parquet.ConvertJournalRecords(records)
	if err := parquet.WriteLoadRecordsParquet(parquetRecords, outputFile); err != nil {
		return fmt.Errorf("failed to write journal records: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d load records to: %s\n", len(parquetRecords), outputFile)
	return nil
}
