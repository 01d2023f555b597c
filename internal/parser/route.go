package parser

import "strings"

// ExtractRoute 从护航行中提取航路名
//
// 标记前的文本按 ～/- 拆为候选：优先命中已知名称，其次取首个含 # 的候选，
// 否则取标记前原文。结果去掉前导数字，并把 #<数字><杂项> 规整为 #<数字>。
func ExtractRoute(line string, known []string) string {
	prefix := escortSplitRe.Split(line, -1)[0]
	candidates := routeDashRe.Split(prefix, -1)

	route := ""
	for _, c := range candidates {
		for _, name := range known {
			if name != "" && strings.Contains(c, name) {
				route = name
				break
			}
		}
		if route != "" {
			break
		}
	}

	if route == "" {
		for _, c := range candidates {
			if strings.Contains(c, "#") {
				route = strings.TrimSpace(c)
				break
			}
		}
	}

	if route == "" {
		route = prefix
	}

	route = strings.TrimSpace(leadingDigitsRe.ReplaceAllString(route, ""))
	return sharpNumberRe.ReplaceAllString(route, "#${1}")
}
