package parser

import (
	"regexp"
	"strings"
)

var (
	japaneseRe      = regexp.MustCompile(`[\x{3040}-\x{30FF}\x{4E00}-\x{9FFF}\x{FF66}-\x{FF9F}]`)
	latinRe         = regexp.MustCompile(`[A-Za-z]`)
	fullWidthKanaRe = regexp.MustCompile(`[\x{30A0}-\x{30FF}]`)
	halfWidthKanaRe = regexp.MustCompile(`[\x{FF61}-\x{FF9F}]`)
)

const specialChars = "!@#$%^&*()_+=[]{};:\"\\|<>/~`"

// IsValidLine 前港・次港候选行校验
//
// 含数字、日文与英文混排、特殊字符、禁用词、全角/半角片假名混用之一即无效。
func IsValidLine(line string) bool {
	if digitRe.MatchString(line) {
		return false
	}
	if japaneseRe.MatchString(line) && latinRe.MatchString(line) {
		return false
	}
	if strings.ContainsAny(line, specialChars) {
		return false
	}
	if ContainsAny(line, ForbiddenWords) {
		return false
	}
	if fullWidthKanaRe.MatchString(line) && halfWidthKanaRe.MatchString(line) {
		return false
	}
	return true
}
