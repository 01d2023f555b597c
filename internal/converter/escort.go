package converter

import "ppconvert/internal/model"

// 护航泊位代码
const (
	EscortOthers    = "OTHERS"
	EscortLNG       = "LNGES"
	EscortLNGAkashi = "AKASHIL"
	akashiShortName = "AKASHI"
)

// EscortBerth 护航记录的泊位：航路名精确匹配护航地略称，未命中为 OTHERS；
// LNG 船按是否为 AKASHI 改写为 AKASHIL / LNGES。
func EscortBerth(route string, locations []model.NamedEntry, isLNG bool) model.CellResult {
	var match *model.NamedEntry
	for i := range locations {
		if locations[i].Name == route {
			match = &locations[i]
			break
		}
	}

	if isLNG {
		if match != nil && match.ShortName == akashiShortName {
			return model.Resolved(EscortLNGAkashi)
		}
		return model.Resolved(EscortLNG)
	}
	if match != nil {
		return model.Resolved(match.ShortName)
	}
	return model.Resolved(EscortOthers)
}
