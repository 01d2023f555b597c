package parser

import (
	"strconv"
	"strings"

	"ppconvert/internal/model"
)

// ExtractNo 拼接文件名中的全部数字作为参照号（无数字为 0）
func ExtractNo(fileName string) int {
	return joinDigits(fileName)
}

// ExtractB 拼接 № 列中的全部数字
func ExtractB(col string) int {
	return joinDigits(col)
}

// ExtractC 文件名首字符
func ExtractC(fileName string) string {
	for _, r := range fileName {
		return string(r)
	}
	return ""
}

// ExtractShipName 船名：船名列首行
func ExtractShipName(col string) string {
	return FirstLine(col)
}

// ExtractDWT 载重吨：吨位列首行去千分位后解析
func ExtractDWT(col string) (int, bool) {
	s := strings.TrimSpace(strings.ReplaceAll(FirstLine(col), ",", ""))
	if s == "" {
		return 0, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return int(v), true
}

// OperatorName 运航者：船名列第 3 行 "/" 之前
func OperatorName(col string) (string, bool) {
	return slashHead(col, 2)
}

// AgentName 代理店：船名列第 4 行 "/" 之前
func AgentName(col string) (string, bool) {
	return slashHead(col, 3)
}

// ResolveOperator 运航船社匹配
func ResolveOperator(col string, list []model.NamedEntry) model.CellResult {
	name, ok := OperatorName(col)
	if !ok {
		return model.Unresolved("")
	}
	return MatchNamed(name, list)
}

// ResolveAgent 代理店匹配
func ResolveAgent(col string, list []model.NamedEntry) model.CellResult {
	name, ok := AgentName(col)
	if !ok {
		return model.Unresolved("")
	}
	return MatchNamed(name, list)
}

// MatchNamed 名称精确匹配（两侧去空白）→ 略称；未命中返回原文并标记
func MatchNamed(name string, list []model.NamedEntry) model.CellResult {
	for _, item := range list {
		if strings.TrimSpace(item.Name) == name {
			return model.Resolved(item.ShortName)
		}
	}
	return model.Unresolved(name)
}

// IsLNGShip 任一列含 ＬＮＧ 标记
func IsLNGShip(cols ...string) bool {
	for _, c := range cols {
		if strings.Contains(c, LNGMarker) {
			return true
		}
	}
	return false
}

func slashHead(col string, idx int) (string, bool) {
	line, ok := Line(col, idx)
	if !ok {
		return "", false
	}
	head, _, _ := strings.Cut(line, "/")
	return strings.TrimSpace(head), true
}

func joinDigits(text string) int {
	joined := strings.Join(digitsRe.FindAllString(text, -1), "")
	if joined == "" {
		return 0
	}
	n, err := strconv.Atoi(joined)
	if err != nil {
		return 0
	}
	return n
}
