package export

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Results"

// ErrEmptyWorkbook is returned when an uploaded workbook has no data rows.
var ErrEmptyWorkbook = errors.New("workbook has no data rows")

// XLSXExporter renders datasets as a single-sheet workbook.
type XLSXExporter struct{}

// NewXLSXExporter constructs an XLSX exporter.
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

func (e *XLSXExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (e *XLSXExporter) Extension() string { return "xlsx" }

// Render writes the title (if any) in the first row, then headers and rows.
// Numeric cells are stored as numbers so the sheet can be re-imported or
// summed by hand.
func (e *XLSXExporter) Render(data Dataset) ([]byte, error) {
	if err := data.validate("xlsx"); err != nil {
		return nil, err
	}
	file := excelize.NewFile()
	defer func() { _ = file.Close() }()

	if err := file.SetSheetName(file.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	rowNum := 1
	if data.Title != "" {
		if err := file.SetCellValue(sheetName, "A1", data.Title); err != nil {
			return nil, fmt.Errorf("write title: %w", err)
		}
		rowNum = 3
	}

	bold, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	headerCell, _ := excelize.CoordinatesToCellName(1, rowNum)
	if err := file.SetSheetRow(sheetName, headerCell, &data.Headers); err != nil {
		return nil, fmt.Errorf("write headers: %w", err)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(data.Headers), rowNum)
	if err := file.SetCellStyle(sheetName, headerCell, lastHeader, bold); err != nil {
		return nil, fmt.Errorf("style headers: %w", err)
	}

	for _, row := range data.Rows {
		rowNum++
		values := make([]interface{}, len(data.Headers))
		for i := range data.Headers {
			values[i] = typedCell(cell(row, i))
		}
		start, _ := excelize.CoordinatesToCellName(1, rowNum)
		if err := file.SetSheetRow(sheetName, start, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", rowNum, err)
		}
	}

	if len(data.Footer) > 0 {
		rowNum++
		for _, line := range data.Footer {
			rowNum++
			ref, _ := excelize.CoordinatesToCellName(1, rowNum)
			if err := file.SetCellValue(sheetName, ref, line); err != nil {
				return nil, fmt.Errorf("write footer: %w", err)
			}
		}
	}

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func typedCell(value string) interface{} {
	if f, err := strconv.ParseFloat(value, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	return value
}

// ReadRows returns the rows of the first worksheet of an uploaded workbook.
// The first returned row is the header.
func ReadRows(data []byte) ([][]string, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = file.Close() }()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyWorkbook
	}
	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, ErrEmptyWorkbook
	}
	return rows, nil
}
