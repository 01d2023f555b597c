package store

import (
	"context"
	"database/sql"
	"fmt"
)

// 转换日志状态
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// ConversionLog 一次转换会话的记录
type ConversionLog struct {
	ID           int64          `json:"id"`
	FileName     string         `json:"file_name"`
	TotalRows    int            `json:"total_rows"`
	RecordCount  int            `json:"record_count"`
	FlaggedCells int            `json:"flagged_cells"`
	OutputPath   string         `json:"output_path"`
	Status       string         `json:"status"`
	ErrorMessage string         `json:"error_message,omitempty"`
	StartedAt    string         `json:"started_at"`
	CompletedAt  sql.NullString `json:"-"`
}

// CreateConversionLog 创建转换日志，返回 id
func (s *Store) CreateConversionLog(ctx context.Context, fileName string, totalRows int) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO conversion_logs (file_name, total_rows, status)
		VALUES (?, ?, ?)
	`, fileName, totalRows, StatusProcessing)
	if err != nil {
		return 0, fmt.Errorf("failed to create conversion log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get conversion log id: %w", err)
	}
	return id, nil
}

// UpdateConversionLog 完成转换日志更新
func (s *Store) UpdateConversionLog(ctx context.Context, id int64, recordCount, flaggedCells int, outputPath, status, errorMessage string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE conversion_logs SET
			record_count = ?,
			flagged_cells = ?,
			output_path = ?,
			status = ?,
			error_message = ?,
			completed_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, recordCount, flaggedCells, outputPath, status, errorMessage, id)
	if err != nil {
		return fmt.Errorf("failed to update conversion log: %w", err)
	}
	return nil
}

// ListConversionLogs 最近的转换日志
func (s *Store) ListConversionLogs(ctx context.Context, limit int) ([]ConversionLog, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, file_name, total_rows, record_count, flagged_cells, output_path,
		       status, error_message, started_at, completed_at
		FROM conversion_logs
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversion logs: %w", err)
	}
	defer rows.Close()

	var logs []ConversionLog
	for rows.Next() {
		var l ConversionLog
		if err := rows.Scan(&l.ID, &l.FileName, &l.TotalRows, &l.RecordCount, &l.FlaggedCells, &l.OutputPath,
			&l.Status, &l.ErrorMessage, &l.StartedAt, &l.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversion log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
