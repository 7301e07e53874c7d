package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"supplynorm/normalizer"
)

// CSVReader reads comma-separated files. Use Comma for other delimiters.
type CSVReader struct {
	Comma rune
}

func (r *CSVReader) Read(path string) (*normalizer.FileData, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv file %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	if r.Comma != 0 {
		reader.Comma = r.Comma
	}

	rows, err := readAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read csv file %s: %w", path, err)
	}
	return newFileData(path, rows), nil
}

func readAll(reader *csv.Reader) ([][]string, error) {
	rows := make([][]string, 0, 128)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", len(rows)+1, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
