package exporter

// 导出阶段
const (
	StageHeader = "header"
	StageRows   = "rows"
	StageDone   = "done"
)

// ProgressEvent 导出进度事件（会话协调器转发给调用方）
type ProgressEvent struct {
	Percent int    `json:"percent"`
	Stage   string `json:"stage"`
}

func reportProgress(progress func(ProgressEvent), percent int, stage string) {
	if progress == nil {
		return
	}
	progress(ProgressEvent{
		Percent: min(max(percent, 0), 100),
		Stage:   stage,
	})
}
