package parser

import (
	"regexp"
	"strings"

	"ppconvert/internal/model"
)

// TowingColumns 主作业曳船检索的列
var TowingColumns = []string{
	model.ColumnShip,
	model.ColumnBoarding,
	model.ColumnLanding,
	model.ColumnRemarks,
}

var tokenSepRe = regexp.MustCompile(`[\n 　,]+`)

type towingPattern struct {
	name   string
	escort *regexp.Regexp // ｴｽｺｰﾄ:名 整体匹配（航路信息，不计数）
	hp     *regexp.Regexp // 名(数字)
	info   *regexp.Regexp // 名:任意
}

func compileTowing(name string) towingPattern {
	q := regexp.QuoteMeta(name)
	return towingPattern{
		name:   name,
		escort: regexp.MustCompile(`(?i)^(?:ｴｽｺｰﾄ|ES)[` + sp + `]*[:：][` + sp + `]*` + q + `$`),
		hp:     regexp.MustCompile(q + `[\(（][0-9０-９]+[\)）]`),
		info:   regexp.MustCompile(q + `[:：].+`),
	}
}

func (p towingPattern) matches(token string) bool {
	if p.escort.MatchString(token) {
		return false
	}
	return p.hp.MatchString(token) || p.info.MatchString(token)
}

// FindTowingShipNames 在指定列中查找登记曳船的出现，按首次出现去重
func FindTowingShipNames(row model.RawScheduleRow, towing []model.TowingVessel) []string {
	patterns := make([]towingPattern, 0, len(towing))
	for _, t := range towing {
		if t.TName == "" {
			continue
		}
		patterns = append(patterns, compileTowing(t.TName))
	}

	seen := make(map[string]bool)
	var result []string

	for _, col := range TowingColumns {
		val := row.Get(col)
		if val == "" {
			continue
		}
		tokens := tokenize(val)

		for _, p := range patterns {
			for _, token := range tokens {
				if !p.matches(token) || seen[p.name] {
					continue
				}
				seen[p.name] = true
				result = append(result, p.name)
			}
		}
	}
	return result
}

func tokenize(val string) []string {
	var tokens []string
	for _, t := range tokenSepRe.Split(val, -1) {
		t = strings.TrimSpace(t)
		if t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}
