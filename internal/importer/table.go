package importer

import (
	"sort"
	"time"

	"github.com/carmenjuyo/forecast-converter/internal/model"
	"github.com/carmenjuyo/forecast-converter/internal/parser"
)

// DateLayout 输出日期格式 DD/MM/YYYY
const DateLayout = "02/01/2006"

// BuildTable 生成最终宽表：确定列顺序、补 0、按 (filename, date) 排序
func BuildTable(rows []*model.DataRow, catalog *parser.SegmentCatalog) *model.Table {
	columns := []string{model.ColumnFilename, model.ColumnDate}
	columns = append(columns, catalog.Columns()...)

	known := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		known[c] = struct{}{}
	}
	// 残余列：不符合分段命名方案的列，保持首次出现顺序
	for _, row := range rows {
		for _, k := range row.Keys() {
			if _, ok := known[k]; ok {
				continue
			}
			known[k] = struct{}{}
			columns = append(columns, k)
		}
	}

	numeric := columns[2:]
	for _, row := range rows {
		for _, c := range numeric {
			if !row.Has(c) {
				row.Set(c, 0)
			}
		}
	}

	sorted := make([]*model.DataRow, len(rows))
	copy(sorted, rows)
	sortRows(sorted)

	return &model.Table{
		Columns: columns,
		Rows:    sorted,
	}
}

// sortRows 按 (filename, 日期) 稳定升序排序，并重新渲染日期
func sortRows(rows []*model.DataRow) {
	parsed := make(map[*model.DataRow]time.Time, len(rows))
	for _, row := range rows {
		// 无法解析的日期按零值排在同文件最前
		t, err := time.Parse(DateLayout, row.Date)
		if err == nil {
			row.Date = t.Format(DateLayout)
		}
		parsed[row] = t
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Filename != rows[j].Filename {
			return rows[i].Filename < rows[j].Filename
		}
		return parsed[rows[i]].Before(parsed[rows[j]])
	})
}
