package parser

import (
	"regexp"
	"strings"
)

// 舷侧/锚地标记
const (
	StarboardMarker = "右舷"
	PortsideMarker  = "左舷"
	LNGMarker       = "ＬＮＧ"
	CrewChangeMark  = "交代"
)

// AnchorMarkers 锚地协助标记（仅半角 ｱﾝｶｰ）
var AnchorMarkers = []string{"ｱﾝｶｰ"}

// NoticeRoutes 航路通报中可识别的航路名
var NoticeRoutes = []string{"明石", "備讃東", "備讃北", "備讃南", "来島", "水島", "伊予灘"}

// IgnoredNoticeRoute 航路通报中不计护航的航路
const IgnoredNoticeRoute = "備讃北"

// LNGPrimaryRoute LNG 船仅保留末位曳船的航路
const LNGPrimaryRoute = "明石"

// DefaultBerths 航路名提取时优先识别的名称
var DefaultBerths = []string{"明石", "備讃東", "備讃南", "来島", "水島"}

// PPNPKeywords 前港・次港定位关键词
var PPNPKeywords = []string{"部埼", "関埼", "和田"}

// ForbiddenWords 前港・次港候选行中的禁用词
var ForbiddenWords = []string{"なし", "未定", "BAY"}

// sp JS `\s` 语义（含全角空格）
const sp = `\s\x{3000}\x{00A0}\x{FEFF}`

var (
	escortMarkerRe  = regexp.MustCompile(`(?i)ｴｽｺｰﾄ|ES`)
	escortSplitRe   = regexp.MustCompile(`ｴｽｺｰﾄ:|ES:`)
	emptyVesselRe   = regexp.MustCompile(`空船|ｲﾅｰﾄ`)
	timeRangeRe     = regexp.MustCompile(`\d{2}:\d{2}-\d{2}:\d{2}`)
	routeDashRe     = regexp.MustCompile(`～|-`)
	digitRe         = regexp.MustCompile(`\d`)
	digitsRe        = regexp.MustCompile(`\d+`)
	leadingDigitsRe = regexp.MustCompile(`^\d+`)
	sharpNumberRe   = regexp.MustCompile(`#(\d+)[^\d` + sp + `]*`)
	anyWhitespaceRe = regexp.MustCompile(`[` + sp + `]+`)
	noticeRouteRe   = regexp.MustCompile(alternation(NoticeRoutes))
)

// IsEmptyVessel 积荷是否为空船标记
func IsEmptyVessel(load string) bool {
	return emptyVesselRe.MatchString(load)
}

func alternation(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(quoted, "|")
}
