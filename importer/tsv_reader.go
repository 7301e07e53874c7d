package importer

import (
	"encoding/csv"
	"fmt"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"supplynorm/normalizer"
)

// TSVReader reads tab-separated exports. UTF-16 files with a byte order mark
// are decoded to UTF-8; files without one are read as UTF-8.
type TSVReader struct{}

func (r *TSVReader) Read(path string) (*normalizer.FileData, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tsv file %s: %w", path, err)
	}
	defer file.Close()

	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	utf8Reader := transform.NewReader(file, decoder)

	reader := csv.NewReader(utf8Reader)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := readAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read tsv file %s: %w", path, err)
	}
	return newFileData(path, rows), nil
}
