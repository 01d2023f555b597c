package converter

import (
	"fmt"

	"ppconvert/internal/model"
	"ppconvert/internal/parser"
)

// ResolveCargo 积荷匹配
//
// 空船标记不参与主数据匹配：按 (船名, DWT) 查找参照号更早的历史记录，
// 输出 "EMP (<历史积荷>)"；未找到历史时为 "EMP ()"，均视为已解析。
func ResolveCargo(raw string, cargo []model.NamedEntry, shipName string, dwt, no int, history []model.HistoricalShipmentRecord) model.CellResult {
	load := parser.RemoveWhitespace(parser.FirstLine(raw))

	if parser.IsEmptyVessel(load) {
		prev := ""
		if hit, ok := FindPreviousLoad(history, shipName, dwt, no); ok {
			prev = hit.LoadedCargoName
		}
		return model.Resolved(fmt.Sprintf("EMP (%s)", prev))
	}

	return parser.MatchNamed(load, cargo)
}

// FindPreviousLoad 历史中首个同船名同 DWT 且参照号小于 no 的记录
func FindPreviousLoad(history []model.HistoricalShipmentRecord, shipName string, dwt, no int) (model.HistoricalShipmentRecord, bool) {
	for _, h := range history {
		if h.ShipName == shipName && int(h.DW) == dwt && no > int(h.DataDate) {
			return h, true
		}
	}
	return model.HistoricalShipmentRecord{}, false
}
