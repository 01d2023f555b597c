package parser

import (
	"strings"

	"ppconvert/internal/model"
)

// ParseRouteNotice 从航路通报列提取护航分组
//
// 按航路名切段，每段须含 HH:MM-HH:MM 时段，时段之后的文本按空白拆为船名。
// LNG 船：明石段仅保留末位船；其余段合并为一条（取首段航路与船名）。
func ParseRouteNotice(raw string, isLNG bool) []model.EscortInfo {
	var result []model.EscortInfo
	if raw == "" {
		return result
	}

	for _, seg := range splitAt(raw, noticeRouteRe.FindAllStringIndex(raw, -1)) {
		loc := noticeRouteRe.FindStringIndex(seg)
		if loc == nil || loc[0] != 0 {
			continue
		}
		route := seg[:loc[1]]
		if route == IgnoredNoticeRoute {
			continue
		}

		parts := timeRangeRe.Split(seg, -1)
		if len(parts) < 2 || parts[1] == "" {
			continue
		}

		ships := strings.Fields(parts[1])
		if len(ships) > 0 {
			result = append(result, model.EscortInfo{Route: route, Ships: ships})
		}
	}

	if !isLNG {
		return result
	}
	return collapseLNG(result)
}

func collapseLNG(groups []model.EscortInfo) []model.EscortInfo {
	var updated []model.EscortInfo
	var rest []model.EscortInfo

	for _, g := range groups {
		if g.Route == LNGPrimaryRoute {
			updated = append(updated, model.EscortInfo{
				Route: g.Route,
				Ships: []string{g.Ships[len(g.Ships)-1]},
			})
			continue
		}
		rest = append(rest, g)
	}

	if len(rest) > 0 {
		updated = append(updated, model.EscortInfo{Route: rest[0].Route, Ships: rest[0].Ships})
	}
	return updated
}
