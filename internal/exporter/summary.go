package exporter

import (
	"github.com/montanaflynn/stats"

	"github.com/carmenjuyo/forecast-converter/internal/model"
)

// ColumnSummary 数值列汇总（用于预览）
type ColumnSummary struct {
	Column string  `json:"column"`
	Sum    float64 `json:"sum"`
	Mean   float64 `json:"mean"`
	Max    float64 `json:"max"`
}

// Summarize 按列顺序汇总全部数值列
func Summarize(table *model.Table) []ColumnSummary {
	if table.Empty() {
		return []ColumnSummary{}
	}

	columns := table.NumericColumns()
	out := make([]ColumnSummary, 0, len(columns))
	for _, col := range columns {
		data := make(stats.Float64Data, 0, len(table.Rows))
		for _, row := range table.Rows {
			data = append(data, row.Get(col))
		}

		sum, _ := data.Sum()
		mean, _ := data.Mean()
		maxVal, _ := data.Max()
		out = append(out, ColumnSummary{
			Column: col,
			Sum:    sum,
			Mean:   mean,
			Max:    maxVal,
		})
	}
	return out
}
