package exporter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/carmenjuyo/forecast-converter/internal/model"
)

// CSVContentType CSV 下载的 MIME 类型
const CSVContentType = "text/csv; charset=utf-8"

// FormatCSV 将宽表序列化为 UTF-8 CSV（含表头）
func FormatCSV(table *model.Table) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, table); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteCSV 按表的当前行顺序写出 CSV
func WriteCSV(w io.Writer, table *model.Table) error {
	if table == nil {
		return fmt.Errorf("nil table")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(table.Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	record := make([]string, len(table.Columns))
	for i, row := range table.Rows {
		for j, col := range table.Columns {
			switch col {
			case model.ColumnFilename:
				record[j] = row.Filename
			case model.ColumnDate:
				record[j] = row.Date
			default:
				record[j] = FormatFloat(row.Get(col))
			}
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// FormatFloat 以最短的完整精度输出浮点数，与 pandas to_csv 一致：
// 十进制指数在 [-4, 16) 内用定点表示，整数值保留 ".0"（120 -> "120.0"）；
// 范围外用科学计数（1e16 -> "1e+16"，0.00001 -> "1e-05"）
func FormatFloat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	e := strconv.FormatFloat(v, 'e', -1, 64)
	exp, err := strconv.Atoi(e[strings.IndexByte(e, 'e')+1:])
	if err != nil {
		return e
	}
	if v != 0 && (exp < -4 || exp >= 16) {
		return e
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}
