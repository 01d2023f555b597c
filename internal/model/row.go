package model

import (
	"regexp"
	"strings"
)

// 上游 PDF 表格抽取产出的 8 个固定列标签
const (
	ColumnNo       = "№"
	ColumnShip     = "船  名／国  籍\n運航者／代理店"
	ColumnTonnage  = "D/W\nG/T"
	ColumnCargo    = "積荷内容\n(ｽﾗｽﾀｰ)"
	ColumnBoarding = "乗船地"
	ColumnLanding  = "下船地"
	ColumnRouting  = "航路通報"
	ColumnRemarks  = "備考"
)

// ScheduleColumns 列顺序（与 PDF 表头一致）
var ScheduleColumns = []string{
	ColumnNo,
	ColumnShip,
	ColumnTonnage,
	ColumnCargo,
	ColumnBoarding,
	ColumnLanding,
	ColumnRouting,
	ColumnRemarks,
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// NormalizeColumnName 规范化列名，去除所有空白（含换行、全角空格）
func NormalizeColumnName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "　", "")
	return whitespaceRe.ReplaceAllString(name, "")
}

// RawScheduleRow 一行原始排班数据（列标签 -> 多行单元格文本）
type RawScheduleRow map[string]string

// NewRawScheduleRow 按规范化列名归一输入，容忍抽取结果中列标签的空白差异
func NewRawScheduleRow(cells map[string]string) RawScheduleRow {
	canonical := make(map[string]string, len(ScheduleColumns))
	for _, col := range ScheduleColumns {
		canonical[NormalizeColumnName(col)] = col
	}

	row := make(RawScheduleRow, len(cells))
	for k, v := range cells {
		if col, ok := canonical[NormalizeColumnName(k)]; ok {
			row[col] = v
			continue
		}
		row[k] = v
	}
	return row
}

// Get 读取列文本，缺失列返回空串
func (r RawScheduleRow) Get(column string) string {
	if r == nil {
		return ""
	}
	return r[column]
}
