package model

import "sort"

// 固定列名
const (
	ColumnFilename = "filename"
	ColumnDate     = "date"
)

// 指标后缀
const (
	SuffixRN  = "_RN"
	SuffixREV = "_REV"
)

// RNColumn 分段的客房间夜列名
func RNColumn(segment string) string {
	return segment + SuffixRN
}

// REVColumn 分段的收入列名
func REVColumn(segment string) string {
	return segment + SuffixREV
}

// DataRow 一行输出记录：(文件, 月份 Sheet, 年份) 三元组
// Values 以 "{segment}_RN" / "{segment}_REV" 为键
type DataRow struct {
	Filename string             `json:"filename"`
	Date     string             `json:"date"` // DD/MM/YYYY
	Values   map[string]float64 `json:"values"`

	// 列首次写入顺序，用于残余列的稳定排序
	keys []string
}

// NewDataRow 创建数据行
func NewDataRow(filename, date string) *DataRow {
	return &DataRow{
		Filename: filename,
		Date:     date,
		Values:   make(map[string]float64),
	}
}

// Set 写入列值，保留首次写入顺序
func (r *DataRow) Set(column string, value float64) {
	if _, ok := r.Values[column]; !ok {
		r.keys = append(r.keys, column)
	}
	r.Values[column] = value
}

// Has 判断列是否存在
func (r *DataRow) Has(column string) bool {
	_, ok := r.Values[column]
	return ok
}

// Get 读取列值，缺失列返回 0
func (r *DataRow) Get(column string) float64 {
	return r.Values[column]
}

// Keys 按首次写入顺序返回列名
func (r *DataRow) Keys() []string {
	if len(r.keys) != len(r.Values) {
		// 直接构造的 Values 没有顺序信息，缺失键按字典序补齐
		seen := make(map[string]struct{}, len(r.keys))
		for _, k := range r.keys {
			seen[k] = struct{}{}
		}
		var missing []string
		for k := range r.Values {
			if _, ok := seen[k]; !ok {
				missing = append(missing, k)
			}
		}
		sort.Strings(missing)
		r.keys = append(r.keys, missing...)
	}
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Table 聚合后的宽表
type Table struct {
	Columns []string   `json:"columns"`
	Rows    []*DataRow `json:"rows"`
}

// Empty 是否没有任何数据行
func (t *Table) Empty() bool {
	return t == nil || len(t.Rows) == 0
}

// NumericColumns 返回除 filename/date 之外的列
func (t *Table) NumericColumns() []string {
	out := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		if c == ColumnFilename || c == ColumnDate {
			continue
		}
		out = append(out, c)
	}
	return out
}
