package export

import (
	"github.com/xuri/excelize/v2"

	"github.com/WesselBraakman/NoBBQ/internal/store"
)

const (
	itemsSheet     = "Items"
	responsesSheet = "Responses"
)

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]string) error {
	for col, h := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	for r, row := range rows {
		for col, v := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// StudyXLSX writes the review workbook: an Items sheet for the reviewers
// and a Responses sheet with everything archived so far.
func StudyXLSX(s *store.Store, category, path string) (int, error) {
	items, err := s.SampledItems(category)
	if err != nil {
		return 0, err
	}
	responses, err := s.ResponsesForExport()
	if err != nil {
		return 0, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", itemsSheet); err != nil {
		return 0, err
	}
	if _, err := f.NewSheet(responsesSheet); err != nil {
		return 0, err
	}

	itemRows := make([][]string, len(items))
	for i := range items {
		itemRows[i] = itemRow(&items[i])
	}
	if err := writeSheet(f, itemsSheet, itemHeader, itemRows); err != nil {
		return 0, err
	}

	respRows := make([][]string, len(responses))
	for i := range responses {
		respRows[i] = responseRow(&responses[i])
	}
	if err := writeSheet(f, responsesSheet, responseHeader, respRows); err != nil {
		return 0, err
	}

	if err := f.SaveAs(path); err != nil {
		return 0, err
	}
	return len(items), nil
}

// readXLSXItems returns the Items sheet as string rows, header first.
func readXLSXItems(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.GetRows(itemsSheet)
}
