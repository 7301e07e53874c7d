package output

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"supplynorm/catalog"
)

type ExcelWriter struct{}

func (w *ExcelWriter) Write(path string, records []catalog.Record) error {
	file := excelize.NewFile()
	defer file.Close()

	sheet := file.GetSheetName(0)
	if err := writeExcelHeaders(file, sheet, recordHeaders); err != nil {
		return err
	}

	for i, record := range records {
		row := i + 2
		for col, value := range excelRecordValues(record) {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("set excel value %s: %w", cell, err)
			}
		}
	}

	if err := file.SaveAs(path); err != nil {
		return fmt.Errorf("save excel output %s: %w", path, err)
	}

	return nil
}

// excelRecordValues keeps numbers numeric so spreadsheets can sum them.
func excelRecordValues(record catalog.Record) []any {
	text := recordValues(record)
	values := make([]any, len(text))
	for i, value := range text {
		values[i] = value
	}
	values[0] = record.RowIndex
	if offer := record.Offer; offer != nil {
		if offer.Price != nil {
			values[4] = offer.Price.InexactFloat64()
		}
		if offer.Quantity != nil {
			values[5] = *offer.Quantity
		}
	}
	return values
}

func writeExcelHeaders(file *excelize.File, sheet string, headers []string) error {
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := file.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("set excel header %s: %w", cell, err)
		}
	}
	return nil
}
