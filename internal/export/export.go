// Package export builds spreadsheet snapshots of registered students.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"examportal/internal/model"
)

// SheetName is the worksheet holding the student rows.
const SheetName = "Students"

// Header is the first row of the export.
var Header = []interface{}{"name", "email", "phone", "class_name", "result", "mock"}

// Students returns an XLSX workbook with one row per student under Header.
func Students(rows []model.Student) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(SheetName, "A1", &Header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i, s := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{s.Name, s.Email, s.Phone, s.ClassName, s.Result, s.Mock}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
