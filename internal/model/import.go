package model

import "time"

// ImportLog 导入日志（一次运行中的一个文件）
type ImportLog struct {
	ID             int64      `json:"id"`
	RunID          string     `json:"runId"`
	Filename       string     `json:"filename"`
	TotalSheets    int        `json:"totalSheets"`
	ImportedSheets int        `json:"importedSheets"`
	SkippedSheets  int        `json:"skippedSheets"`
	ErrorSheets    int        `json:"errorSheets"`
	ImportedRows   int        `json:"importedRows"`
	DegradedCells  int        `json:"degradedCells"`
	Status         string     `json:"status"`
	ErrorMessage   string     `json:"errorMessage"`
	StartedAt      time.Time  `json:"startedAt"`
	CompletedAt    *time.Time `json:"completedAt"`
}

// SheetMeta Sheet 元信息（用于追溯与容错）
type SheetMeta struct {
	ID            int64     `json:"id"`
	ImportLogID   int64     `json:"importLogId"`
	SheetName     string    `json:"sheetName"`
	MonthDay      string    `json:"monthDay"`
	Segments      []string  `json:"segments"`
	ImportedRows  int       `json:"importedRows"`
	DegradedCells int       `json:"degradedCells"`
	Status        string    `json:"status"`
	ErrorMessage  string    `json:"errorMessage"`
	CreatedAt     time.Time `json:"createdAt"`
}
