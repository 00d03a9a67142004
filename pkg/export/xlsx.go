package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"keywordlens/pkg/normalize"
)

const sheetName = "Keywords"

// XLSX serializes metrics as a single-sheet workbook with the same columns
// as the CSV export. Numeric cells stay numeric so the spreadsheet sorts
// and charts without manual conversion.
func XLSX(rows []normalize.KeywordMetric) ([]byte, error) {
	book := excelize.NewFile()
	defer book.Close()

	index, err := book.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	book.SetActiveSheet(index)
	if err := book.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	for col, title := range csvHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := book.SetCellValue(sheetName, cell, title); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for i, row := range rows {
		values := []interface{}{
			row.Keyword,
			cellInt(row.SearchVolume),
			cellFloat(row.CPC),
			cellFloat(row.Difficulty),
			string(row.CompetitionLevel),
			cellFloat(row.TrendYearlyPct),
		}
		for col, value := range values {
			if value == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := book.SetCellValue(sheetName, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", i+1, err)
			}
		}
	}

	var buf bytes.Buffer
	if err := book.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func cellInt(v *int64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func cellFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
