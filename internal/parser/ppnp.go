package parser

import "ppconvert/internal/model"

// ppnpLookahead 关键词之后最多检查的行数
const ppnpLookahead = 5

// ExtractPPNP 前港・次港
//
// 取不含舷侧/锚地标记的一侧文本，定位含关键词的首行，
// 在其后 5 行内返回第一条有效行。
func ExtractPPNP(work model.CellResult, boarding, landing string) model.CellResult {
	if !IsDockWorkCell(work) {
		return model.Unresolved("")
	}

	var opposite string
	switch {
	case hasDirection(boarding):
		opposite = landing
	case hasDirection(landing):
		opposite = boarding
	}
	if opposite == "" {
		return model.Unresolved("")
	}

	lines := NonEmptyLines(opposite)
	keywordIdx := -1
	for i, l := range lines {
		if ContainsAny(l, PPNPKeywords) {
			keywordIdx = i
			break
		}
	}
	if keywordIdx < 0 {
		return model.Unresolved("")
	}

	end := min(len(lines), keywordIdx+1+ppnpLookahead)
	for i := keywordIdx + 1; i < end; i++ {
		if IsValidLine(lines[i]) {
			return model.Resolved(lines[i])
		}
	}
	return model.Unresolved("")
}
