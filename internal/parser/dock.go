package parser

import (
	"strings"

	"ppconvert/internal/model"
)

// HasDock 是否含舷侧标记（右舷/左舷）
func HasDock(text string) bool {
	return strings.Contains(text, StarboardMarker) || strings.Contains(text, PortsideMarker)
}

// HasAnchor 是否含锚地协助标记
func HasAnchor(text string) bool {
	return ContainsAny(text, AnchorMarkers)
}

// hasDirection 舷侧或锚地标记
func hasDirection(text string) bool {
	return HasDock(text) || HasAnchor(text)
}

// ClassifyWork 判定主作业类型
//
//	乗船地/下船地均有舷侧 → S；仅乗船地 → U；仅下船地 → M；
//	均无但下船地有锚地标记 → A；其余未解析。
func ClassifyWork(boarding, landing string) model.CellResult {
	boardingDock := HasDock(boarding)
	landingDock := HasDock(landing)

	switch {
	case boardingDock && landingDock:
		return model.Resolved(model.WorkBoth)
	case boardingDock:
		return model.Resolved(model.WorkUnberth)
	case landingDock:
		return model.Resolved(model.WorkBerth)
	case HasAnchor(landing):
		return model.Resolved(model.WorkAnchor)
	}
	return model.Unresolved("")
}

// findPortShortName 列表顺序首个被包含的港名
func findPortShortName(text string, ports []model.Port) (string, bool) {
	for _, p := range ports {
		if p.Name != "" && strings.Contains(text, p.Name) {
			return p.ShortName, true
		}
	}
	return "", false
}

// ResolvePort 港匹配
func ResolvePort(boarding, landing string, ports []model.Port) model.CellResult {
	boardingDock := HasDock(boarding)
	landingDock := HasDock(landing)

	if boardingDock {
		if short, ok := findPortShortName(boarding, ports); ok {
			return model.Resolved(short)
		}
	}
	if landingDock {
		if short, ok := findPortShortName(landing, ports); ok {
			return model.Resolved(short)
		}
	}
	if !boardingDock && !landingDock && HasAnchor(landing) {
		if short, ok := findPortShortName(landing, ports); ok {
			return model.Resolved(short)
		}
	}
	// 有舷侧但未命中：回退到下船地
	if boardingDock || landingDock {
		if short, ok := findPortShortName(landing, ports); ok {
			return model.Resolved(short)
		}
	}
	return model.Unresolved("")
}

// ResolveBerth 泊位匹配：限定已解析港，泊位名被任一侧包含
func ResolveBerth(work, port model.CellResult, boarding, landing string, berths []model.Berth) model.CellResult {
	portShort := port.String()
	if !IsDockWorkCell(work) || portShort == "" {
		return model.Unresolved("")
	}

	for _, b := range berths {
		if b.PortShortName != portShort || b.Name == "" {
			continue
		}
		if strings.Contains(boarding, b.Name) || strings.Contains(landing, b.Name) {
			return model.Resolved(b.ShortName)
		}
	}
	return model.Unresolved("")
}

// IsDockWorkCell 作业字段为主作业
func IsDockWorkCell(work model.CellResult) bool {
	return model.IsDockWork(work.String())
}
