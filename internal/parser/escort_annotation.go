package parser

import (
	"regexp"
	"strings"

	"ppconvert/internal/model"
)

var (
	contextPairRe    = regexp.MustCompile(`[^:` + sp + `]{1,10}[:：][^` + sp + `]{1,10}`)
	contextArrowRe   = regexp.MustCompile(`[^` + sp + `→\-]{1,10}[→\-]{1,2}[^` + sp + `→\-]{1,10}`)
	danglingEscortRe = regexp.MustCompile(`(?i)(?:ｴｽｺｰﾄ|ES)[` + sp + `]*[:：][` + sp + `]*$`)

	pairRe        = regexp.MustCompile(`([^` + sp + `:：]+)[：:][` + sp + `]*([^` + sp + `、,]+)`)
	transitionRe  = regexp.MustCompile(`\(([^→\-\(\)]+)[→\-]+([^→\-\(\)]+)\)`)
	routeEscortRe = regexp.MustCompile(`(?i)(.+?[#by]+)[：:]*.*?(ｴｽｺｰﾄ|ES)[:：]?[` + sp + `]*(.+)`)
	routeShipRe   = regexp.MustCompile(`(?i)([^` + sp + `:：]+)[` + sp + `\-～]*[^` + sp + `]*[ｴｽｺｰﾄ|ES][:：]?[` + sp + `]*(.+)`)
)

// EscortRule 护航注记的单条匹配规则，命中时返回分组
type EscortRule interface {
	Name() string
	Match(line string) ([]model.EscortInfo, bool)
}

// AnnotationRules 按优先级排列的规则链，每行止于首个命中的规则
var AnnotationRules = []EscortRule{
	multiPairRule{},
	transitionRule{},
	routeEscortRule{known: DefaultBerths},
	routeShipRule{known: DefaultBerths},
	fallbackPairRule{},
}

// ParseAnnotations 从乗船地/下船地/備考中的自由注记提取护航分组
func ParseAnnotations(boarding, landing, remarks string) []model.EscortInfo {
	var lines []string
	lines = append(lines, relevantLines(boarding)...)
	lines = append(lines, relevantLines(landing)...)
	lines = append(lines, relevantLines(remarks)...)

	var results []model.EscortInfo
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for _, rule := range AnnotationRules {
			if groups, ok := rule.Match(line); ok {
				results = append(results, groups...)
				break
			}
		}
	}
	return results
}

// relevantLines 保留含护航标记、且不含交代的行，并合并上下文行
func relevantLines(raw string) []string {
	lines := strings.Split(raw, "\n")
	var out []string

	for i := range lines {
		line := strings.TrimSpace(lines[i])
		if !escortMarkerRe.MatchString(line) || strings.Contains(line, CrewChangeMark) {
			continue
		}

		before, after := "", ""
		if i > 0 {
			before = strings.TrimSpace(lines[i-1])
		}
		if i+1 < len(lines) {
			after = strings.TrimSpace(lines[i+1])
		}

		combined := line
		switch {
		case before != "" && strings.Contains(before, "#"):
			combined = before + line
		case after != "" && isFragmentLine(after) && !digitRe.MatchString(after):
			combined = line + "　" + after
		}

		if danglingEscortRe.MatchString(combined) {
			continue
		}
		out = append(out, combined)
	}
	return out
}

// isFragmentLine 形如 名:値 或 甲→乙 的短片段
func isFragmentLine(line string) bool {
	return contextPairRe.MatchString(line) || contextArrowRe.MatchString(line)
}

func pairGroups(matches [][]string) []model.EscortInfo {
	var out []model.EscortInfo
	for _, m := range matches {
		route := strings.TrimSpace(m[1])
		ship := strings.TrimSpace(m[2])
		if ship != "" {
			out = append(out, model.EscortInfo{Route: route, Ships: []string{ship}})
		}
	}
	return out
}

// multiPairRule 一行多航路：速吸:ｲｸﾀ　伊予灘:ｼﾘｳｽ
type multiPairRule struct{}

func (multiPairRule) Name() string { return "multi-pair" }

func (multiPairRule) Match(line string) ([]model.EscortInfo, bool) {
	matches := pairRe.FindAllStringSubmatch(line, -1)
	if len(matches) < 2 {
		return nil, false
	}
	return pairGroups(matches), true
}

// transitionRule 交接：(ﾀﾂﾀ→ﾊﾙﾀ)
type transitionRule struct{}

func (transitionRule) Name() string { return "transition" }

func (transitionRule) Match(line string) ([]model.EscortInfo, bool) {
	m := transitionRe.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}
	route := routeDashRe.Split(line, -1)[0]
	ships := []string{strings.TrimSpace(m[1]), strings.TrimSpace(m[2])}
	return []model.EscortInfo{{Route: route, Ships: ships}}, true
}

// routeEscortRule 航路(#/by) … ｴｽｺｰﾄ:船名：交差部～播磨灘#1by: ｴｽｺｰﾄ:ｵｵｼｵ
type routeEscortRule struct {
	known []string
}

func (routeEscortRule) Name() string { return "route-escort" }

func (r routeEscortRule) Match(line string) ([]model.EscortInfo, bool) {
	m := routeEscortRe.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}
	ship := strings.TrimSpace(m[3])
	if ship == "" {
		return nil, false
	}
	return []model.EscortInfo{{Route: ExtractRoute(line, r.known), Ships: []string{ship}}}, true
}

// routeShipRule 宽松版：播磨灘#1by-日出ｴｽｺｰﾄ:ﾚｲｺｳ
type routeShipRule struct {
	known []string
}

func (routeShipRule) Name() string { return "route-ship" }

func (r routeShipRule) Match(line string) ([]model.EscortInfo, bool) {
	if !routeShipRe.MatchString(line) {
		return nil, false
	}
	parts := escortSplitRe.Split(line, -1)
	if len(parts) < 2 {
		return nil, true
	}
	ship := strings.TrimSpace(parts[1])
	if ship == "" {
		return nil, true
	}
	return []model.EscortInfo{{Route: ExtractRoute(line, r.known), Ships: []string{ship}}}, true
}

// fallbackPairRule 兜底：单行中的 名:値
type fallbackPairRule struct{}

func (fallbackPairRule) Name() string { return "fallback-pair" }

func (fallbackPairRule) Match(line string) ([]model.EscortInfo, bool) {
	matches := pairRe.FindAllStringSubmatch(line, -1)
	if len(matches) == 0 {
		return nil, false
	}
	return pairGroups(matches), true
}
