package importer

import (
	"fmt"
	"path/filepath"
	"strings"

	"supplynorm/normalizer"
)

// Reader loads every physical row of a source file. Header and title rows
// are kept; the supplier's data start row decides where data begins.
type Reader interface {
	Read(path string) (*normalizer.FileData, error)
}

func ReaderForFormat(format string) (Reader, error) {
	switch normalizeFormat(format) {
	case "csv":
		return &CSVReader{}, nil
	case "excel", "xlsx", "xlsm", "xls":
		return &ExcelReader{}, nil
	case "tsv", "utf16", "txt":
		return &TSVReader{}, nil
	default:
		return nil, fmt.Errorf("unsupported input format: %s", format)
	}
}

func inferFormat(path string, format string) (string, error) {
	if strings.TrimSpace(format) != "" {
		return normalizeFormat(format), nil
	}

	extension := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch extension {
	case "csv":
		return "csv", nil
	case "xlsx", "xlsm", "xls":
		return "excel", nil
	case "tsv", "txt":
		return "tsv", nil
	default:
		return "", fmt.Errorf("unsupported file extension for %s", path)
	}
}

func normalizeFormat(format string) string {
	trimmed := strings.TrimSpace(strings.ToLower(format))
	trimmed = strings.ReplaceAll(trimmed, "-", "")
	return strings.ReplaceAll(trimmed, "_", "")
}

func newFileData(path string, rows [][]string) *normalizer.FileData {
	data := &normalizer.FileData{
		Path: path,
		Name: filepath.Base(path),
		Rows: make([]normalizer.RawRow, 0, len(rows)),
	}
	for i, cells := range rows {
		data.Rows = append(data.Rows, normalizer.NewRawRow(i, cells))
	}
	return data
}
