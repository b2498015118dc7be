package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/carmenjuyo/forecast-converter/internal/model"
)

// CreateImportLog 创建导入日志，返回 import_log_id
func (s *Store) CreateImportLog(runID, filename string) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO import_logs (run_id, filename, status)
		VALUES (?, ?, 'processing')
	`, runID, filename)
	if err != nil {
		return 0, fmt.Errorf("failed to create import log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get import log id: %w", err)
	}
	return id, nil
}

// UpdateImportLog 完成导入日志更新
func (s *Store) UpdateImportLog(log model.ImportLog) error {
	_, err := s.db.Exec(`
		UPDATE import_logs SET
			total_sheets = ?,
			imported_sheets = ?,
			skipped_sheets = ?,
			error_sheets = ?,
			imported_rows = ?,
			degraded_cells = ?,
			status = ?,
			error_message = ?,
			completed_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, log.TotalSheets, log.ImportedSheets, log.SkippedSheets, log.ErrorSheets,
		log.ImportedRows, log.DegradedCells, log.Status, log.ErrorMessage, log.ID)
	if err != nil {
		return fmt.Errorf("failed to update import log: %w", err)
	}
	return nil
}

// ListImportLogs 按时间倒序列出最近的导入日志
func (s *Store) ListImportLogs(limit int) ([]model.ImportLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT id, run_id, filename, total_sheets, imported_sheets, skipped_sheets,
			error_sheets, imported_rows, degraded_cells, status, error_message,
			started_at, completed_at
		FROM import_logs
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query import logs failed: %w", err)
	}
	defer rows.Close()

	var out []model.ImportLog
	for rows.Next() {
		var it model.ImportLog
		var completed sql.NullTime
		if err := rows.Scan(
			&it.ID, &it.RunID, &it.Filename, &it.TotalSheets, &it.ImportedSheets, &it.SkippedSheets,
			&it.ErrorSheets, &it.ImportedRows, &it.DegradedCells, &it.Status, &it.ErrorMessage,
			&it.StartedAt, &completed,
		); err != nil {
			return nil, fmt.Errorf("scan import log failed: %w", err)
		}
		if completed.Valid {
			t := completed.Time
			it.CompletedAt = &t
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate import logs failed: %w", err)
	}
	return out, nil
}

// LastImportTime 最近一次完成导入的时间，没有记录时返回 nil
func (s *Store) LastImportTime() (*time.Time, error) {
	var t time.Time
	err := s.db.QueryRow(`
		SELECT completed_at FROM import_logs
		WHERE completed_at IS NOT NULL
		ORDER BY completed_at DESC, id DESC
		LIMIT 1
	`).Scan(&t)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query last import time failed: %w", err)
	}
	return &t, nil
}
