package output

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

func writePriceSummariesExcel(path string, summaries []PriceSummary) error {
	file := excelize.NewFile()
	defer file.Close()

	sheet := file.GetSheetName(0)
	if err := writeExcelHeaders(file, sheet, priceSummaryHeaders); err != nil {
		return err
	}

	for i, summary := range summaries {
		row := i + 2
		for col, value := range priceSummaryValues(summary) {
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
