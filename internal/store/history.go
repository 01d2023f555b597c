package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"ppconvert/internal/model"
)

// LoadHistory 读取全部空船历史，最近写入的在前
func (s *Store) LoadHistory(ctx context.Context) ([]model.HistoricalShipmentRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ship_name, dw, loaded_cargo_name, data_date
		FROM emps
		ORDER BY updated_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var out []model.HistoricalShipmentRecord
	for rows.Next() {
		var (
			rec      model.HistoricalShipmentRecord
			dw, date int64
		)
		if err := rows.Scan(&rec.ShipName, &dw, &rec.LoadedCargoName, &date); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		rec.DW = model.FlexInt(dw)
		rec.DataDate = model.FlexInt(date)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// SaveHistory 以同一会话 ID 批量写入历史
func (s *Store) SaveHistory(ctx context.Context, rows []model.HistoryWriteBack) error {
	_, err := s.InsertHistory(ctx, rows)
	return err
}

// InsertHistory 批量写入并返回会话 ID
func (s *Store) InsertHistory(ctx context.Context, rows []model.HistoryWriteBack) (string, error) {
	if len(rows) == 0 {
		return "", nil
	}
	sessionID := uuid.NewString()

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO emps (ship_name, dw, loaded_cargo_name, data_date, session_id, created_by)
			VALUES (?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, r := range rows {
			if _, err := stmt.ExecContext(ctx, r.ShipName, r.DW, r.LoadedCargoName, r.DataDate, sessionID, r.CreatedBy); err != nil {
				return fmt.Errorf("failed to insert history %q: %w", r.ShipName, err)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return sessionID, nil
}

// CountHistorySession 统计某会话写入的行数
func (s *Store) CountHistorySession(ctx context.Context, sessionID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM emps WHERE session_id = ?", sessionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count session: %w", err)
	}
	return n, nil
}
