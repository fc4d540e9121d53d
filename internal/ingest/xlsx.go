package ingest

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/lox/aqidash/internal/models"
)

const xlsxSheet = "AQI"

// WriteXLSX writes the dataset as a single-sheet workbook with the same
// schema as the CSV form.
func WriteXLSX(w io.Writer, ds *models.Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := []string{colDate, colCity, colAQI}
	if ds.HasPollutant {
		header = []string{colDate, colCity, colPollutant, colAQI}
	}
	for i, name := range header {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(xlsxSheet, cell, name); err != nil {
			return err
		}
	}

	for rowIdx, rec := range ds.Records {
		row := recordRow(rec, ds.HasPollutant)
		for colIdx, val := range row {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return err
			}
			// Keep AQI numeric in the sheet; everything else is text.
			if colIdx == len(row)-1 {
				n, _ := strconv.Atoi(val)
				err = f.SetCellValue(xlsxSheet, cell, n)
			} else {
				err = f.SetCellValue(xlsxSheet, cell, val)
			}
			if err != nil {
				return err
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
