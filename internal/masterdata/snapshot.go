package masterdata

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"ppconvert/internal/model"
)

// Snapshot 主数据 JSON 快照文件（离线运行时替代参照服务）
type Snapshot struct {
	Path string
}

// snapshotFile 快照文件格式：主数据集合 + 可选的空船历史
type snapshotFile struct {
	model.MasterData
	History []model.HistoricalShipmentRecord `json:"emps,omitempty"`
}

// LoadMaster 读取快照并补全泊位港名
func (s Snapshot) LoadMaster(ctx context.Context) (*model.MasterData, error) {
	f, err := s.read()
	if err != nil {
		return nil, err
	}
	m := f.MasterData
	m.EnrichBerths()
	return &m, nil
}

// LoadHistory 读取快照中的历史记录
func (s Snapshot) LoadHistory(ctx context.Context) ([]model.HistoricalShipmentRecord, error) {
	f, err := s.read()
	if err != nil {
		return nil, err
	}
	return f.History, nil
}

func (s Snapshot) read() (snapshotFile, error) {
	var f snapshotFile
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return f, fmt.Errorf("read snapshot: %w", err)
	}
	if err := json.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("parse snapshot %s: %w", s.Path, err)
	}
	return f, nil
}

// SaveSnapshot 将主数据与历史写为快照文件
func SaveSnapshot(path string, m *model.MasterData, history []model.HistoricalShipmentRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	data, err := json.MarshalIndent(snapshotFile{MasterData: *m, History: history}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}
