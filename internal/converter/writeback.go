package converter

import (
	"strings"

	"ppconvert/internal/model"
	"ppconvert/internal/parser"
)

// HistoryWriteBack 导出后回写历史的子集：排除空船/EMP 积荷与护航记录
func HistoryWriteBack(records []model.OperationRecord, createdBy string) []model.HistoryWriteBack {
	out := make([]model.HistoryWriteBack, 0, len(records))
	for _, r := range records {
		load := r.Load.String()
		if parser.IsEmptyVessel(load) || strings.Contains(load, "EMP") {
			continue
		}
		if r.Work.String() == model.WorkEscort {
			continue
		}
		out = append(out, model.HistoryWriteBack{
			ShipName:        r.ShipName.String(),
			DW:              r.DWT.Int(),
			LoadedCargoName: load,
			CreatedBy:       createdBy,
			DataDate:        r.No.Int(),
		})
	}
	return out
}
