package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/carmenjuyo/forecast-converter/internal/model"
)

const (
	// XLSXContentType XLSX 下载的 MIME 类型
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	dataSheet = "data"
)

// WriteXLSX 将宽表写为单 Sheet 工作簿，数值单元格保持数值类型
func WriteXLSX(w io.Writer, table *model.Table) error {
	if table == nil {
		return fmt.Errorf("nil table")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), dataSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(dataSheet)
	if err != nil {
		return fmt.Errorf("create stream writer: %w", err)
	}

	header := make([]interface{}, len(table.Columns))
	for i, c := range table.Columns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, row := range table.Rows {
		values := make([]interface{}, len(table.Columns))
		for j, col := range table.Columns {
			switch col {
			case model.ColumnFilename:
				values[j] = row.Filename
			case model.ColumnDate:
				values[j] = row.Date
			default:
				values[j] = row.Get(col)
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, values); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush stream writer: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
