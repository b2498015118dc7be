package parser

import "time"

// Sheet 处理状态
const (
	StatusImported = "imported"
	StatusSkipped  = "skipped"
	StatusError    = "error"
)

// ParseResult 单个 Sheet 的解析结果
type ParseResult struct {
	SheetName     string        `json:"sheetName"`
	MonthDay      string        `json:"monthDay"`
	Status        string        `json:"status"` // imported/skipped/error
	Segments      []string      `json:"segments,omitempty"`
	ImportedRows  int           `json:"importedRows"`
	DegradedCells int           `json:"degradedCells"` // 回退为 0 的单元格数
	Errors        []string      `json:"errors,omitempty"`
	Duration      time.Duration `json:"duration"`
}

// FileReport 单个文件的导入报告
type FileReport struct {
	Filename       string        `json:"filename"`
	TotalSheets    int           `json:"totalSheets"`
	ImportedSheets int           `json:"importedSheets"`
	SkippedSheets  int           `json:"skippedSheets"`
	ErrorSheets    int           `json:"errorSheets"`
	ImportedRows   int           `json:"importedRows"`
	DegradedCells  int           `json:"degradedCells"`
	Error          string        `json:"error,omitempty"` // 文件级错误（无法打开等）
	Duration       time.Duration `json:"duration"`
	Sheets         []ParseResult `json:"sheets"`
}

// Record 记录 Sheet 处理结果并累加统计
func (r *FileReport) Record(result ParseResult) {
	r.Sheets = append(r.Sheets, result)

	switch result.Status {
	case StatusImported:
		r.ImportedSheets++
		r.ImportedRows += result.ImportedRows
	case StatusSkipped:
		r.SkippedSheets++
	case StatusError:
		r.ErrorSheets++
	}
	r.DegradedCells += result.DegradedCells
}

// ImportReport 一次运行的导入报告
type ImportReport struct {
	RunID     string        `json:"runId"`
	Files     []*FileReport `json:"files"`
	TotalRows int           `json:"totalRows"`
	Segments  []string      `json:"segments"`
	Warnings  []string      `json:"warnings,omitempty"`
	Duration  time.Duration `json:"duration"`
}
