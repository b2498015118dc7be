package importer

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/carmenjuyo/forecast-converter/internal/model"
	"github.com/carmenjuyo/forecast-converter/internal/parser"
)

// ErrEmptyResult 所有输入文件都没有抽取到任何数据行
var ErrEmptyResult = errors.New("no data extracted from the uploaded files")

// Source 一个上传的工作簿
type Source struct {
	Name   string // 原始文件名（可带路径和扩展名）
	Reader io.Reader
}

// AuditStore 导入审计记录（可选）
type AuditStore interface {
	CreateImportLog(runID, filename string) (int64, error)
	UpdateImportLog(log model.ImportLog) error
	InsertSheetMeta(meta model.SheetMeta) error
}

// ProgressEvent 进度事件
type ProgressEvent struct {
	Type      string      `json:"type"`    // start/file_start/file_done/warning/done
	Message   string      `json:"message"` // 事件消息
	Data      interface{} `json:"data"`    // 附加数据
	Timestamp time.Time   `json:"timestamp"`
}

// Options 聚合器选项
type Options struct {
	Extract  parser.ExtractOptions
	Logger   *zap.Logger
	Audit    AuditStore
	Progress func(ProgressEvent)
}

// Aggregator 多文件聚合器：一次运行内顺序处理全部文件
type Aggregator struct {
	opts   Options
	walker *Walker
	logger *zap.Logger
}

// NewAggregator 创建聚合器
func NewAggregator(opts Options) *Aggregator {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		opts:   opts,
		walker: NewWalker(parser.NewBlockExtractor(opts.Extract), logger),
		logger: logger,
	}
}

// runState 单次运行的累积状态，由聚合器独占
type runState struct {
	runID   string
	catalog *parser.SegmentCatalog
	rows    []*model.DataRow
	report  *parser.ImportReport
}

// Aggregate 抽取全部文件并合并为一张宽表
// 没有任何数据行时返回空表与 ErrEmptyResult
func (a *Aggregator) Aggregate(sources []Source) (*model.Table, *parser.ImportReport, error) {
	startTime := time.Now()

	state := &runState{
		runID:   uuid.New().String(),
		catalog: parser.NewSegmentCatalog(a.opts.Extract.Sentinels),
	}
	state.report = &parser.ImportReport{
		RunID: state.runID,
		Files: []*parser.FileReport{},
	}

	a.emit("start", fmt.Sprintf("extracting %d file(s)", len(sources)), map[string]interface{}{
		"run_id": state.runID,
		"files":  len(sources),
	})

	for _, src := range sources {
		a.processFile(state, src)
	}

	table := BuildTable(state.rows, state.catalog)
	state.report.TotalRows = len(table.Rows)
	state.report.Segments = state.catalog.Ordered()
	state.report.Duration = time.Since(startTime)

	if table.Empty() {
		msg := "no valid month sheets found in the uploaded files"
		state.report.Warnings = append(state.report.Warnings, msg)
		a.logger.Warn(msg, zap.String("run_id", state.runID), zap.Int("files", len(sources)))
		a.emit("warning", msg, nil)
		return table, state.report, ErrEmptyResult
	}

	a.logger.Info("extraction done",
		zap.String("run_id", state.runID),
		zap.Int("rows", len(table.Rows)),
		zap.Int("segments", state.catalog.Len()),
		zap.Duration("duration", state.report.Duration),
	)
	a.emit("done", "extraction done", state.report)
	return table, state.report, nil
}

// processFile 处理单个文件
func (a *Aggregator) processFile(state *runState, src Source) {
	filename := FileStem(src.Name)
	a.emit("file_start", fmt.Sprintf("reading %s", filename), map[string]string{"filename": filename})

	logID := a.createImportLog(state.runID, filename)

	file, err := excelize.OpenReader(src.Reader)
	if err != nil {
		msg := fmt.Sprintf("could not open %s: %v", filename, err)
		a.logger.Warn("could not open workbook", zap.String("file", filename), zap.Error(err))
		report := &parser.FileReport{Filename: filename, Error: err.Error(), Sheets: []parser.ParseResult{}}
		state.report.Files = append(state.report.Files, report)
		state.report.Warnings = append(state.report.Warnings, msg)
		a.emit("warning", msg, nil)
		a.finishImportLog(logID, state.runID, report)
		return
	}
	defer file.Close()

	res := a.walker.Walk(file, filename)
	for _, block := range res.Blocks {
		a.merge(state, block)
	}
	for _, s := range res.Report.Sheets {
		if s.Status == parser.StatusError {
			state.report.Warnings = append(state.report.Warnings,
				fmt.Sprintf("could not process sheet %s in %s: %s", s.SheetName, filename, strings.Join(s.Errors, "; ")))
		}
	}

	state.report.Files = append(state.report.Files, res.Report)
	a.finishImportLog(logID, state.runID, res.Report)

	a.emit("file_done", fmt.Sprintf("%s: %d row(s)", filename, res.Report.ImportedRows), res.Report)
}

// merge 合并一个 Sheet 块：新分段回补到已累积的行，新行补齐全部已知分段
func (a *Aggregator) merge(state *runState, block *parser.SheetBlock) {
	var added []string
	if a.opts.Extract.Mode == parser.SegmentModeFixed {
		added = state.catalog.Append(block.Segments)
	} else {
		added = state.catalog.Observe(block.Segments)
	}
	state.catalog.BackPatch(state.rows, added)

	segments := state.catalog.Ordered()
	for _, row := range block.Rows {
		state.catalog.EnsureColumns(row, segments)
		state.rows = append(state.rows, row)
	}
}

func (a *Aggregator) createImportLog(runID, filename string) int64 {
	if a.opts.Audit == nil {
		return 0
	}
	id, err := a.opts.Audit.CreateImportLog(runID, filename)
	if err != nil {
		a.logger.Warn("create import log failed", zap.String("file", filename), zap.Error(err))
		return 0
	}
	return id
}

func (a *Aggregator) finishImportLog(id int64, runID string, report *parser.FileReport) {
	if a.opts.Audit == nil || id == 0 {
		return
	}

	for _, s := range report.Sheets {
		meta := model.SheetMeta{
			ImportLogID:   id,
			SheetName:     s.SheetName,
			MonthDay:      s.MonthDay,
			Segments:      s.Segments,
			ImportedRows:  s.ImportedRows,
			DegradedCells: s.DegradedCells,
			Status:        s.Status,
			ErrorMessage:  strings.Join(s.Errors, "; "),
		}
		if err := a.opts.Audit.InsertSheetMeta(meta); err != nil {
			a.logger.Warn("insert sheet meta failed", zap.String("sheet", s.SheetName), zap.Error(err))
		}
	}

	status := "completed"
	if report.Error != "" {
		status = "failed"
	} else if report.ImportedSheets == 0 {
		status = "empty"
	}
	log := model.ImportLog{
		ID:             id,
		RunID:          runID,
		Filename:       report.Filename,
		TotalSheets:    report.TotalSheets,
		ImportedSheets: report.ImportedSheets,
		SkippedSheets:  report.SkippedSheets,
		ErrorSheets:    report.ErrorSheets,
		ImportedRows:   report.ImportedRows,
		DegradedCells:  report.DegradedCells,
		Status:         status,
		ErrorMessage:   report.Error,
	}
	if err := a.opts.Audit.UpdateImportLog(log); err != nil {
		a.logger.Warn("update import log failed", zap.String("file", report.Filename), zap.Error(err))
	}
}

// emit 发送进度事件
func (a *Aggregator) emit(typ, message string, data interface{}) {
	if a.opts.Progress == nil {
		return
	}
	a.opts.Progress(ProgressEvent{
		Type:      typ,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	})
}

// FileStem 去掉目录与扩展名："uploads/Hotel_A.xlsx" -> "Hotel_A"
func FileStem(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	return strings.TrimSuffix(base, filepath.Ext(base))
}
