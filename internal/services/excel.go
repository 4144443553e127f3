package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"vocalhire/campaign-api/internal/models"
)

const candidateSheet = "Candidates"

// workbookColumns is the fixed initial column set. Row identity is the id
// column; analysis columns start empty and are filled per candidate as
// webhooks arrive.
var workbookColumns = []string{
	"id",
	"name",
	"phone_number",
	"email",
	"linkedin",
	"conversation_id",
	"performance_metrics",
	"field_experience",
	"overall_analysis",
	"overall_score",
	"transcript",
}

type WorkbookService interface {
	BuildInitial(candidates []models.Candidate) ([]byte, error)
	ApplyUpdate(current []byte, candidateID string, fields map[string]interface{}) ([]byte, bool, error)
}

type workbookService struct{}

func NewWorkbookService() WorkbookService {
	return &workbookService{}
}

// BuildInitial implements WorkbookService. One row per candidate, analysis
// columns empty.
func (w *workbookService) BuildInitial(candidates []models.Candidate) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), candidateSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(workbookColumns))
	for i, col := range workbookColumns {
		header[i] = col
	}
	if err := f.SetSheetRow(candidateSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header row: %w", err)
	}

	for i, candidate := range candidates {
		row := []interface{}{
			candidate.ID,
			candidate.Name,
			candidate.PhoneNumber,
			candidate.Email,
			candidate.LinkedIn,
			"", "", "", "", "", "",
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to compute cell name: %w", err)
		}
		if err := f.SetSheetRow(candidateSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write candidate row: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}

	return buf.Bytes(), nil
}

// ApplyUpdate implements WorkbookService. The target row is located by a
// keyed lookup on the id column; fields are merged into that row, adding
// columns when needed, with all other rows untouched. When no row matches
// the input is returned unchanged with found=false.
func (w *workbookService) ApplyUpdate(current []byte, candidateID string, fields map[string]interface{}) ([]byte, bool, error) {
	f, err := excelize.OpenReader(bytes.NewReader(current))
	if err != nil {
		return nil, false, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read workbook rows: %w", err)
	}
	if len(rows) == 0 {
		return current, false, nil
	}

	header := rows[0]
	colIndex := make(map[string]int, len(header))
	for i, name := range header {
		colIndex[name] = i
	}

	idCol, ok := colIndex["id"]
	if !ok {
		return nil, false, fmt.Errorf("workbook has no id column")
	}

	// id -> sheet row number (1-based), built once instead of rescanning
	rowByID := make(map[string]int, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		if idCol < len(rows[i]) {
			rowByID[rows[i][idCol]] = i + 1
		}
	}

	rowNum, found := rowByID[candidateID]
	if !found {
		return current, false, nil
	}

	for name, value := range fields {
		col, ok := colIndex[name]
		if !ok {
			// New column: extend the header in place.
			col = len(header)
			header = append(header, name)
			colIndex[name] = col
			headerCell, err := excelize.CoordinatesToCellName(col+1, 1)
			if err != nil {
				return nil, false, fmt.Errorf("failed to compute header cell: %w", err)
			}
			if err := f.SetCellValue(sheet, headerCell, name); err != nil {
				return nil, false, fmt.Errorf("failed to add column %q: %w", name, err)
			}
		}

		cell, err := excelize.CoordinatesToCellName(col+1, rowNum)
		if err != nil {
			return nil, false, fmt.Errorf("failed to compute cell name: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return nil, false, fmt.Errorf("failed to set cell %s: %w", cell, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, false, fmt.Errorf("failed to serialize workbook: %w", err)
	}

	return buf.Bytes(), true, nil
}
