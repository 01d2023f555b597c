package main

import (
	"encoding/json"
	"fmt"
	"os"

	"ppconvert/internal/model"
)

// readRows 读取上游表格抽取产出的 JSON（对象数组，键为列标签）
func readRows(path string) ([]model.RawScheduleRow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}

	var cells []map[string]string
	if err := json.Unmarshal(data, &cells); err != nil {
		return nil, fmt.Errorf("parse rows %s: %w", path, err)
	}

	rows := make([]model.RawScheduleRow, 0, len(cells))
	for _, c := range cells {
		rows = append(rows, model.NewRawScheduleRow(c))
	}
	return rows, nil
}
