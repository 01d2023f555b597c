package model

import (
	"fmt"
	"strconv"
)

// CellResult 单个派生字段的解析结果
//
// Unresolved 表示未能与主数据可靠匹配；Flagged 为渲染提示（需人工复核）。
type CellResult struct {
	Value      any  `json:"value"`
	Unresolved bool `json:"unresolved,omitempty"`
	Flagged    bool `json:"flagged,omitempty"`
}

// Resolved 已解析字段
func Resolved(v any) CellResult {
	return CellResult{Value: v}
}

// Unresolved 未解析字段（同时标记需复核）
func Unresolved(v any) CellResult {
	return CellResult{Value: v, Unresolved: true, Flagged: true}
}

// String 以字符串形式返回值
func (c CellResult) String() string {
	switch v := c.Value.(type) {
	case nil:
		return ""
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	default:
		return fmt.Sprint(v)
	}
}

// Int 以整数形式返回值，非数值返回 0
func (c CellResult) Int() int {
	switch v := c.Value.(type) {
	case int:
		return v
	case float64:
		return int(v)
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// IsZero 值为空串或 0（导出时留空）
func (c CellResult) IsZero() bool {
	switch v := c.Value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case int:
		return v == 0
	default:
		return false
	}
}
