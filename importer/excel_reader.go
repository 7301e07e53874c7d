package importer

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"supplynorm/normalizer"
)

// ExcelReader reads one worksheet; the first sheet unless Sheet is set.
type ExcelReader struct {
	Sheet string
}

func (r *ExcelReader) Read(path string) (*normalizer.FileData, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open excel file %s: %w", path, err)
	}
	defer file.Close()

	sheetName := r.Sheet
	if sheetName == "" {
		sheetName = file.GetSheetName(0)
	}
	if sheetName == "" {
		return nil, fmt.Errorf("excel file has no sheets: %s", path)
	}

	rows, err := file.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("read rows from sheet %s: %w", sheetName, err)
	}
	return newFileData(path, rows), nil
}
