package output

import (
	"encoding/csv"
	"fmt"
	"os"

	"supplynorm/catalog"
)

type CSVWriter struct{}

func (w *CSVWriter) Write(path string, records []catalog.Record) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv output %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(recordHeaders); err != nil {
		return fmt.Errorf("write csv headers: %w", err)
	}

	for _, record := range records {
		if err := writer.Write(recordValues(record)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv output: %w", err)
	}

	return nil
}
