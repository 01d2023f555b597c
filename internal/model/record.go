package model

// 作业类型代码
const (
	WorkBoth    = "S" // 双舷（离+靠）
	WorkUnberth = "U" // 离泊
	WorkBerth   = "M" // 靠泊
	WorkAnchor  = "A" // 锚地协助
	WorkEscort  = "E" // 航路护航
)

// IsDockWork 是否为主作业（离/靠/双舷/锚地）
func IsDockWork(work string) bool {
	switch work {
	case WorkBoth, WorkUnberth, WorkBerth, WorkAnchor:
		return true
	}
	return false
}

// UnmatchedTally 未登记曳船的计数列
const UnmatchedTally = "zz"

// TallyKeys 固定的曳船公司计数列（小写略称）
var TallyKeys = []string{
	"ne", "na", "sk", "nk", "nt", "sg", "hk", "fp", "ek", "up", "gs", "a",
	UnmatchedTally,
	"nnk", "or", "fk", "yk", "sb", "dm", "se",
}

// ColumnKeys 输出列顺序
var ColumnKeys = func() []string {
	keys := []string{"no", "b", "c", "shipName", "ovc", "agent", "dwt", "load", "loadDetail", "port", "berth", "work"}
	keys = append(keys, TallyKeys...)
	return append(keys, "ppnp")
}()

// ColumnHeaders 输出列表头
var ColumnHeaders = map[string]string{
	"no":         "No",
	"b":          "B",
	"c":          "C",
	"shipName":   "船名",
	"ovc":        "運航船社",
	"agent":      "代理店",
	"dwt":        "DWT",
	"load":       "積荷",
	"loadDetail": "積荷詳細",
	"port":       "港",
	"berth":      "バース",
	"work":       "作業",
	"ne":         "NE",
	"na":         "NA",
	"sk":         "SK",
	"nk":         "NK",
	"nt":         "NT",
	"sg":         "SG",
	"hk":         "HK",
	"fp":         "FP",
	"ek":         "EK",
	"up":         "UP",
	"gs":         "GS",
	"a":          "A",
	"zz":         "ZZ",
	"nnk":        "NNK",
	"or":         "OR",
	"fk":         "FK",
	"yk":         "YK",
	"sb":         "SB",
	"dm":         "DM",
	"se":         "SE",
	"ppnp":       "前港・次港",
}

// EscortInfo 护航分组：航路 + 参与曳船
type EscortInfo struct {
	Route string   `json:"route"`
	Ships []string `json:"ships"`
}

// OperationRecord 一条作业记录（PP 模板行）
type OperationRecord struct {
	No         CellResult     `json:"no"`
	B          CellResult     `json:"b"`
	C          CellResult     `json:"c"`
	ShipName   CellResult     `json:"shipName"`
	Ovc        CellResult     `json:"ovc"`
	Agent      CellResult     `json:"agent"`
	DWT        CellResult     `json:"dwt"`
	Load       CellResult     `json:"load"`
	LoadDetail CellResult     `json:"loadDetail"`
	Port       CellResult     `json:"port"`
	Berth      CellResult     `json:"berth"`
	Work       CellResult     `json:"work"`
	Tally      map[string]int `json:"tally"`
	PPNP       CellResult     `json:"ppnp"`
}

// Clone 复制记录（计数表独立）
func (r OperationRecord) Clone() OperationRecord {
	out := r
	out.Tally = make(map[string]int, len(r.Tally))
	for k, v := range r.Tally {
		out.Tally[k] = v
	}
	return out
}

// Increment 计数列 +1
func (r *OperationRecord) Increment(key string) {
	if r.Tally == nil {
		r.Tally = make(map[string]int)
	}
	r.Tally[key]++
}

// Field 按列键取值；计数列以数值 CellResult 返回
func (r OperationRecord) Field(key string) CellResult {
	switch key {
	case "no":
		return r.No
	case "b":
		return r.B
	case "c":
		return r.C
	case "shipName":
		return r.ShipName
	case "ovc":
		return r.Ovc
	case "agent":
		return r.Agent
	case "dwt":
		return r.DWT
	case "load":
		return r.Load
	case "loadDetail":
		return r.LoadDetail
	case "port":
		return r.Port
	case "berth":
		return r.Berth
	case "work":
		return r.Work
	case "ppnp":
		return r.PPNP
	}
	return Resolved(r.Tally[key])
}
