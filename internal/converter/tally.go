package converter

import (
	"strings"

	"ppconvert/internal/model"
)

// ShortCode 曳船名 → 登记略称（纯查找，不修改主数据）
func ShortCode(name string, towing []model.TowingVessel) (string, bool) {
	for _, t := range towing {
		if t.TName == name {
			return t.ShortName, t.ShortName != ""
		}
	}
	return "", false
}

// Tally 按船名累计到记录的计数列；未登记的计入 zz
func Tally(rec *model.OperationRecord, ships []string, towing []model.TowingVessel) {
	for _, ship := range ships {
		code, ok := ShortCode(strings.TrimSpace(ship), towing)
		if !ok {
			rec.Increment(model.UnmatchedTally)
			continue
		}
		rec.Increment(strings.ToLower(code))
	}
}
