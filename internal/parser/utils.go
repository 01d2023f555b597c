package parser

import (
	"strings"
)

// ContainsAny 检查字符串是否包含任意一个关键词
func ContainsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// Line 按换行取第 i 段（越界返回 false）
func Line(text string, i int) (string, bool) {
	lines := strings.Split(text, "\n")
	if i < 0 || i >= len(lines) {
		return "", false
	}
	return lines[i], true
}

// FirstLine 换行前的首段
func FirstLine(text string) string {
	line, _ := Line(text, 0)
	return line
}

// NonEmptyLines 拆分为去空白后的非空行
func NonEmptyLines(text string) []string {
	var out []string
	for _, l := range strings.Split(text, "\n") {
		l = strings.TrimSpace(l)
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

// RemoveWhitespace 去除所有空白（含全角空格）
func RemoveWhitespace(text string) string {
	return anyWhitespaceRe.ReplaceAllString(text, "")
}

// splitAt 按正则出现位置切分（等价于向前断言切分）
func splitAt(text string, positions [][]int) []string {
	if len(positions) == 0 {
		return []string{text}
	}
	var out []string
	if positions[0][0] > 0 {
		out = append(out, text[:positions[0][0]])
	}
	for i, loc := range positions {
		end := len(text)
		if i+1 < len(positions) {
			end = positions[i+1][0]
		}
		out = append(out, text[loc[0]:end])
	}
	return out
}
