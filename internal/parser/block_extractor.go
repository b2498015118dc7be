package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/carmenjuyo/forecast-converter/internal/model"
)

// 单元格查找 / 转换错误
var (
	ErrHeaderNotFound   = errors.New("header row not found")
	ErrSegmentNotFound  = errors.New("segment row not found")
	ErrColumnOutOfRange = errors.New("column out of range")
	ErrEmptyCell        = errors.New("empty cell")
	ErrNotNumeric       = errors.New("cell is not numeric")
)

// SheetReader 工作簿读取接口，*excelize.File 满足该接口
type SheetReader interface {
	GetSheetList() []string
	GetRows(sheet string, opts ...excelize.Options) ([][]string, error)
}

// cellTyper 可报告单元格存储类型的工作簿（*excelize.File 满足该接口）
type cellTyper interface {
	GetCellType(sheet, cell string) (excelize.CellType, error)
}

// CellResult 单元格查找结果
type CellResult struct {
	Value float64
	Err   error
}

// OrZero 查找或转换失败时回退为 0
func (r CellResult) OrZero() float64 {
	if r.Err != nil {
		return 0
	}
	return r.Value
}

// SheetBlock 单个月份 Sheet 的抽取结果
type SheetBlock struct {
	SheetName     string
	Month         MonthSheet
	Segments      []string         // 本 Sheet 的有效分段（Sheet 内顺序）
	Rows          []*model.DataRow // 每个年份一行，按年份布局顺序
	DegradedCells int
	CellErrors    []error
}

// BlockExtractor 固定表头偏移的数据块抽取器
type BlockExtractor struct {
	opts ExtractOptions
}

// NewBlockExtractor 创建抽取器
func NewBlockExtractor(opts ExtractOptions) *BlockExtractor {
	return &BlockExtractor{opts: opts}
}

// Options 返回抽取选项
func (e *BlockExtractor) Options() ExtractOptions {
	return e.opts
}

// ExtractSheet 读取 Sheet 原始值并抽取数据块
func (e *BlockExtractor) ExtractSheet(wb SheetReader, sheetName string, month MonthSheet, filename string) (*SheetBlock, error) {
	rows, err := wb.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}

	var numericLabel func(int) bool
	if ct, ok := wb.(cellTyper); ok {
		numericLabel = e.numericLabelFunc(ct, sheetName, rows)
	}

	block, err := e.extract(rows, month, filename, numericLabel)
	if err != nil {
		return nil, err
	}
	block.SheetName = sheetName
	return block, nil
}

// Extract 从已读取的行中抽取数据块
// rows[HeaderRow] 为表头，其后均为数据行；没有单元格类型信息，第 0 列标签全部按文本处理
func (e *BlockExtractor) Extract(rows [][]string, month MonthSheet, filename string) (*SheetBlock, error) {
	return e.extract(rows, month, filename, nil)
}

// numericLabelFunc 判断第 i 条数据行的第 0 列是否以数字类型存储
// 数字单元格在 Excel 中通常不写 t 属性，CellTypeUnset 且有值也视为数字
func (e *BlockExtractor) numericLabelFunc(ct cellTyper, sheetName string, rows [][]string) func(int) bool {
	return func(i int) bool {
		rowIdx := e.opts.HeaderRow + 1 + i
		raw, ok := cellAt(rows[rowIdx], 0)
		if !ok || strings.TrimSpace(raw) == "" {
			return false
		}
		cell, err := excelize.CoordinatesToCellName(1, rowIdx+1)
		if err != nil {
			return false
		}
		typ, err := ct.GetCellType(sheetName, cell)
		if err != nil {
			return false
		}
		return typ == excelize.CellTypeNumber || typ == excelize.CellTypeUnset
	}
}

func (e *BlockExtractor) extract(rows [][]string, month MonthSheet, filename string, numericLabel func(int) bool) (*SheetBlock, error) {
	if len(rows) <= e.opts.HeaderRow {
		return nil, fmt.Errorf("%w: sheet has %d rows, header expected at row %d",
			ErrHeaderNotFound, len(rows), e.opts.HeaderRow+1)
	}

	data := newDataBlock(rows[e.opts.HeaderRow+1:])
	segments := e.activeSegments(data, numericLabel)

	block := &SheetBlock{
		SheetName: month.Label,
		Month:     month,
		Segments:  segments,
		Rows:      make([]*model.DataRow, 0, len(e.opts.Years)),
	}

	for _, year := range e.opts.Years {
		row := model.NewDataRow(filename, month.MonthDay+"/"+strconv.Itoa(year.Year))
		for _, seg := range segments {
			rn := data.lookup(seg, year.RNCol)
			rev := data.lookup(seg, year.REVCol)
			block.degrade(rn, seg, year.Year, model.SuffixRN)
			block.degrade(rev, seg, year.Year, model.SuffixREV)
			row.Set(model.RNColumn(seg), rn.OrZero())
			row.Set(model.REVColumn(seg), rev.OrZero())
		}
		block.Rows = append(block.Rows, row)
	}

	return block, nil
}

// activeSegments 确定本 Sheet 的分段列表
// fixed 模式直接使用声明列表；dynamic 模式跳过数字类型的标签单元格
func (e *BlockExtractor) activeSegments(data *dataBlock, numericLabel func(int) bool) []string {
	if e.opts.Mode == SegmentModeFixed {
		out := make([]string, len(e.opts.Segments))
		copy(out, e.opts.Segments)
		return out
	}

	var labels []string
	for i := e.opts.SegmentWindowOffset; i < len(data.rows); i++ {
		if numericLabel != nil && numericLabel(i) {
			continue
		}
		if label, ok := cellAt(data.rows[i], 0); ok {
			labels = append(labels, label)
		}
	}
	// 借用目录的去重与哨兵过滤
	return NewSegmentCatalog(e.opts.Sentinels).Observe(labels)
}

func (b *SheetBlock) degrade(r CellResult, segment string, year int, suffix string) {
	if r.Err == nil {
		return
	}
	b.DegradedCells++
	b.CellErrors = append(b.CellErrors, fmt.Errorf("%s%s/%d: %w", segment, suffix, year, r.Err))
}

// dataBlock 表头以下的数据行，按第 0 列标签建索引
type dataBlock struct {
	rows  [][]string
	index map[string]int
}

func newDataBlock(rows [][]string) *dataBlock {
	b := &dataBlock{
		rows:  rows,
		index: make(map[string]int),
	}
	for i, row := range rows {
		label, ok := cellAt(row, 0)
		if !ok {
			continue
		}
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		// 同名标签取第一行
		if _, exists := b.index[label]; !exists {
			b.index[label] = i
		}
	}
	return b
}

// lookup 定位分段所在行并读取指定列
func (b *dataBlock) lookup(segment string, col int) CellResult {
	idx, ok := b.index[strings.TrimSpace(segment)]
	if !ok {
		return CellResult{Err: fmt.Errorf("%w: %q", ErrSegmentNotFound, segment)}
	}
	raw, ok := cellAt(b.rows[idx], col)
	if !ok {
		return CellResult{Err: fmt.Errorf("%w: column %d", ErrColumnOutOfRange, col)}
	}
	v, err := parseFloat(raw)
	if err != nil {
		return CellResult{Err: err}
	}
	return CellResult{Value: v}
}
