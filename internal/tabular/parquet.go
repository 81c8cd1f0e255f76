package tabular

import (
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"

	"github.com/btraven00/taripaq/pkg/canonical"
)

// ReadRecords loads labeled records from a parquet file.
func ReadRecords(path string) ([]canonical.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat parquet file: %w", err)
	}

	pf, err := parquet.OpenFile(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet file %s: %w", path, err)
	}

	reader := parquet.NewGenericReader[canonical.Record](pf)
	defer reader.Close()

	records := make([]canonical.Record, 0, pf.NumRows())
	buf := make([]canonical.Record, 1024)
	for {
		n, err := reader.Read(buf)
		records = append(records, buf[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows from %s: %w", path, err)
		}
	}

	return records, nil
}

// WriteRecords writes labeled records to a parquet file, replacing any
// existing file at path.
func WriteRecords(path string, records []canonical.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create parquet file: %w", err)
	}

	writer := parquet.NewGenericWriter[canonical.Record](f,
		parquet.Compression(&zstd.Codec{}),
	)

	if _, err := writer.Write(records); err != nil {
		f.Close()
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		f.Close()
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}

	return f.Close()
}
