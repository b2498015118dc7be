package store

import (
	"encoding/json"
	"fmt"

	"github.com/carmenjuyo/forecast-converter/internal/model"
)

// InsertSheetMeta 写入 Sheet 元信息（用于追溯与容错）
func (s *Store) InsertSheetMeta(meta model.SheetMeta) error {
	_, err := s.db.Exec(`
		INSERT INTO sheets_meta (
			import_log_id, sheet_name, month_day,
			segments_json, imported_rows, degraded_cells,
			status, error_message
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		meta.ImportLogID, meta.SheetName, meta.MonthDay,
		BuildSegmentsJSON(meta.Segments), meta.ImportedRows, meta.DegradedCells,
		meta.Status, meta.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to insert sheets_meta: %w", err)
	}
	return nil
}

// ListSheetMeta 列出某条导入日志下的 Sheet 元信息
func (s *Store) ListSheetMeta(importLogID int64) ([]model.SheetMeta, error) {
	rows, err := s.db.Query(`
		SELECT id, import_log_id, sheet_name, month_day, segments_json,
			imported_rows, degraded_cells, status, error_message, created_at
		FROM sheets_meta
		WHERE import_log_id = ?
		ORDER BY id
	`, importLogID)
	if err != nil {
		return nil, fmt.Errorf("query sheets_meta failed: %w", err)
	}
	defer rows.Close()

	var out []model.SheetMeta
	for rows.Next() {
		var it model.SheetMeta
		var segmentsJSON string
		if err := rows.Scan(
			&it.ID, &it.ImportLogID, &it.SheetName, &it.MonthDay, &segmentsJSON,
			&it.ImportedRows, &it.DegradedCells, &it.Status, &it.ErrorMessage, &it.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan sheets_meta failed: %w", err)
		}
		if err := json.Unmarshal([]byte(segmentsJSON), &it.Segments); err != nil {
			return nil, fmt.Errorf("decode segments of sheet %s: %w", it.SheetName, err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sheets_meta failed: %w", err)
	}
	return out, nil
}

// BuildSegmentsJSON 将分段列表序列化为 JSON
func BuildSegmentsJSON(segments []string) string {
	if segments == nil {
		segments = []string{}
	}
	b, err := json.Marshal(segments)
	if err != nil {
		return "[]"
	}
	return string(b)
}
