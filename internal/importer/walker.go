package importer

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/carmenjuyo/forecast-converter/internal/parser"
)

// WalkResult 单个工作簿的遍历结果
type WalkResult struct {
	Blocks []*parser.SheetBlock
	Report *parser.FileReport
}

// Walker 按固定月份表遍历工作簿
type Walker struct {
	extractor *parser.BlockExtractor
	months    []parser.MonthSheet
	logger    *zap.Logger
}

// NewWalker 创建遍历器
func NewWalker(extractor *parser.BlockExtractor, logger *zap.Logger) *Walker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Walker{
		extractor: extractor,
		months:    parser.Months,
		logger:    logger,
	}
}

// Walk 按月份声明顺序抽取每个存在的月份 Sheet
// 缺失的 Sheet 静默跳过；单个 Sheet 失败只记录警告，不影响其他 Sheet
func (w *Walker) Walk(wb parser.SheetReader, filename string) WalkResult {
	startTime := time.Now()
	sheetList := wb.GetSheetList()

	result := WalkResult{
		Report: &parser.FileReport{
			Filename:    filename,
			TotalSheets: len(sheetList),
			Sheets:      []parser.ParseResult{},
		},
	}

	fold := w.extractor.Options().FoldSheetNames
	for _, month := range w.months {
		sheetName, ok := parser.FindSheet(sheetList, month, fold)
		if !ok {
			continue
		}
		if block := w.processSheet(wb, sheetName, month, filename, result.Report); block != nil {
			result.Blocks = append(result.Blocks, block)
		}
	}

	// 未映射到月份的 Sheet 计为跳过
	result.Report.SkippedSheets += len(sheetList) - len(result.Report.Sheets)
	result.Report.Duration = time.Since(startTime)
	return result
}

// processSheet 处理单个月份 Sheet
func (w *Walker) processSheet(wb parser.SheetReader, sheetName string, month parser.MonthSheet, filename string, report *parser.FileReport) *parser.SheetBlock {
	sheetStartTime := time.Now()

	block, err := w.extractSafely(wb, sheetName, month, filename)
	if err != nil {
		w.logger.Warn("could not process sheet",
			zap.String("file", filename),
			zap.String("sheet", sheetName),
			zap.Error(err),
		)
		report.Record(parser.ParseResult{
			SheetName: sheetName,
			MonthDay:  month.MonthDay,
			Status:    parser.StatusError,
			Errors:    []string{err.Error()},
			Duration:  time.Since(sheetStartTime),
		})
		return nil
	}

	if block.DegradedCells > 0 {
		w.logger.Debug("cells degraded to zero",
			zap.String("file", filename),
			zap.String("sheet", sheetName),
			zap.Int("cells", block.DegradedCells),
		)
	}

	report.Record(parser.ParseResult{
		SheetName:     sheetName,
		MonthDay:      month.MonthDay,
		Status:        parser.StatusImported,
		Segments:      block.Segments,
		ImportedRows:  len(block.Rows),
		DegradedCells: block.DegradedCells,
		Duration:      time.Since(sheetStartTime),
	})
	return block
}

// extractSafely 抽取单个 Sheet，panic 也按 Sheet 级失败处理
func (w *Walker) extractSafely(wb parser.SheetReader, sheetName string, month parser.MonthSheet, filename string) (block *parser.SheetBlock, err error) {
	defer func() {
		if r := recover(); r != nil {
			block = nil
			err = fmt.Errorf("panic while extracting sheet: %v", r)
		}
	}()
	return w.extractor.ExtractSheet(wb, sheetName, month, filename)
}
