package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexInt 兼容数值与数值字符串两种 JSON 表示
type FlexInt int64

// UnmarshalJSON 解析 123 / "123" / "" / null
func (n *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*n = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
		if s == "" {
			*n = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q: %w", s, err)
		}
		*n = FlexInt(v)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = FlexInt(f)
	return nil
}

// HistoricalShipmentRecord 历史装载记录（用于空船回溯）
//
// DataDate 实为行参照号（顺序号），按数值比较，不是日历日期。
type HistoricalShipmentRecord struct {
	ShipName        string  `json:"ship_name"`
	DW              FlexInt `json:"dw"`
	LoadedCargoName string  `json:"loaded_cargo_name"`
	DataDate        FlexInt `json:"data_date"`
}

// HistoryWriteBack 导出后回写历史的字段子集
type HistoryWriteBack struct {
	ShipName        string `json:"ship_name"`
	DW              int    `json:"dw"`
	LoadedCargoName string `json:"loaded_cargo_name"`
	CreatedBy       string `json:"created_by"`
	DataDate        int    `json:"data_date"`
}
