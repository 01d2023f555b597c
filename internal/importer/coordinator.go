package importer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"ppconvert/internal/converter"
	"ppconvert/internal/exporter"
	"ppconvert/internal/model"
)

// 进度事件类型
const (
	EventStart        = "start"
	EventLoaded       = "loaded"
	EventConverted    = "converted"
	EventExported     = "exported"
	EventHistorySaved = "history_saved"
	EventWarning      = "warning"
	EventDone         = "done"
	EventError        = "error"
)

// 转换日志状态（与 store 一致）
const (
	statusCompleted = "completed"
	statusFailed    = "failed"
)

// MasterSource 主数据来源（参照服务或快照文件）
type MasterSource interface {
	LoadMaster(ctx context.Context) (*model.MasterData, error)
}

// HistoryStore 空船历史的读写端
type HistoryStore interface {
	LoadHistory(ctx context.Context) ([]model.HistoricalShipmentRecord, error)
	SaveHistory(ctx context.Context, rows []model.HistoryWriteBack) error
}

// Journal 转换日志与运行设置
type Journal interface {
	CreateConversionLog(ctx context.Context, fileName string, totalRows int) (int64, error)
	UpdateConversionLog(ctx context.Context, id int64, recordCount, flaggedCells int, outputPath, status, errorMessage string) error
	SetSetting(key, value string) error
}

// Options 协调器依赖
type Options struct {
	Master     MasterSource
	MasterName string       // 用于状态展示，例如服务地址或快照路径
	History    HistoryStore // nil 表示不读写历史
	Journal    Journal      // nil 表示不记录日志
	Exporter   *exporter.Exporter
	Logger     *zap.Logger
	CreatedBy  string
	Workers    int
}

// Coordinator 转换会话协调器：加载主数据/历史 → 转换 → 导出 → 回写
type Coordinator struct {
	opts   Options
	logger *zap.Logger

	mu       sync.RWMutex
	master   *model.MasterData
	loadedAt time.Time
}

// NewCoordinator 创建会话协调器
func NewCoordinator(opts Options) *Coordinator {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Exporter == nil {
		opts.Exporter = exporter.New(exporter.Options{})
	}
	if opts.CreatedBy == "" {
		opts.CreatedBy = "admin"
	}
	return &Coordinator{opts: opts, logger: opts.Logger}
}

// SessionOptions 单次会话参数
type SessionOptions struct {
	FileName   string
	Rows       []model.RawScheduleRow
	OutputPath string // 为空时不导出文件
	WriteBack  bool   // 导出后回写历史
}

// Report 会话结果
type Report struct {
	FileName     string                  `json:"file_name"`
	TotalRows    int                     `json:"total_rows"`
	RecordCount  int                     `json:"record_count"`
	FlaggedCells int                     `json:"flagged_cells"`
	OutputPath   string                  `json:"output_path,omitempty"`
	HistorySaved int                     `json:"history_saved"`
	Duration     time.Duration           `json:"duration"`
	Records      []model.OperationRecord `json:"records"`
}

// ProgressEvent 进度事件
type ProgressEvent struct {
	Type      string    `json:"type"`           // start/loaded/converted/exported/history_saved/warning/done/error
	Message   string    `json:"message"`        // 事件消息
	Data      any       `json:"data,omitempty"` // 附加数据
	Timestamp time.Time `json:"timestamp"`      // 时间戳
	Err       error     `json:"-"`
}

// Status 协调器状态
type Status struct {
	MasterSource   string    `json:"master_source"`
	MasterLoaded   bool      `json:"master_loaded"`
	MasterLoadedAt time.Time `json:"master_loaded_at,omitzero"`
	Ports          int       `json:"ports"`
	Berths         int       `json:"berths"`
	Towing         int       `json:"towing"`
	HistoryEnabled bool      `json:"history_enabled"`
}

// Status 当前主数据快照概况
func (c *Coordinator) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Status{
		MasterSource:   c.opts.MasterName,
		MasterLoaded:   c.master != nil,
		MasterLoadedAt: c.loadedAt,
		HistoryEnabled: c.opts.History != nil,
	}
	if c.master != nil {
		s.Ports = len(c.master.Ports)
		s.Berths = len(c.master.Berths)
		s.Towing = len(c.master.MasterTowing)
	}
	return s
}

// ReloadMaster 重新加载主数据快照
func (c *Coordinator) ReloadMaster(ctx context.Context) (*model.MasterData, error) {
	if c.opts.Master == nil {
		return nil, fmt.Errorf("no master data source configured")
	}
	m, err := c.opts.Master.LoadMaster(ctx)
	if err != nil {
		return nil, fmt.Errorf("load master data: %w", err)
	}

	c.mu.Lock()
	c.master = m
	c.loadedAt = time.Now()
	loadedAt := c.loadedAt
	c.mu.Unlock()

	if c.opts.Journal != nil {
		if err := c.opts.Journal.SetSetting("master_loaded_at", loadedAt.Format(time.RFC3339)); err != nil {
			c.logger.Warn("record master reload failed", zap.Error(err))
		}
	}
	return m, nil
}

// Master 返回缓存的主数据，首次调用时加载
func (c *Coordinator) Master(ctx context.Context) (*model.MasterData, error) {
	c.mu.RLock()
	m := c.master
	c.mu.RUnlock()
	if m != nil {
		return m, nil
	}
	return c.ReloadMaster(ctx)
}

// Convert 仅转换（不导出、不回写），供预览使用
func (c *Coordinator) Convert(ctx context.Context, rows []model.RawScheduleRow, fileName string) ([]model.OperationRecord, error) {
	conv, _, err := c.newConverter(ctx)
	if err != nil {
		return nil, err
	}
	return conv.ConvertConcurrent(ctx, rows, fileName, c.opts.Workers)
}

// newConverter 基于当前主数据与最新历史构建转换器；历史读取失败降级为空
func (c *Coordinator) newConverter(ctx context.Context) (*converter.Converter, []string, error) {
	master, err := c.Master(ctx)
	if err != nil {
		return nil, nil, err
	}

	var warnings []string
	var history []model.HistoricalShipmentRecord
	if c.opts.History != nil {
		history, err = c.opts.History.LoadHistory(ctx)
		if err != nil {
			c.logger.Warn("history unavailable, empty-vessel lookups will miss", zap.Error(err))
			warnings = append(warnings, fmt.Sprintf("历史读取失败: %v", err))
			history = nil
		}
	}
	return converter.New(master, history, c.logger), warnings, nil
}

// Run 执行会话，返回进度通道；通道在会话结束后关闭
func (c *Coordinator) Run(ctx context.Context, opts SessionOptions) <-chan ProgressEvent {
	progressChan := make(chan ProgressEvent, 16)

	go func() {
		defer close(progressChan)
		c.doRun(ctx, opts, progressChan)
	}()

	return progressChan
}

// RunSync 执行会话并等待结果
func (c *Coordinator) RunSync(ctx context.Context, opts SessionOptions) (*Report, error) {
	var report *Report
	var runErr error
	for ev := range c.Run(ctx, opts) {
		switch ev.Type {
		case EventDone:
			report, _ = ev.Data.(*Report)
		case EventError:
			runErr = ev.Err
		}
	}
	if runErr != nil {
		return nil, runErr
	}
	if report == nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("session ended without report")
	}
	return report, nil
}

func (c *Coordinator) doRun(ctx context.Context, opts SessionOptions, ch chan<- ProgressEvent) {
	start := time.Now()
	report := &Report{FileName: opts.FileName, TotalRows: len(opts.Rows)}

	send := func(typ, msg string, data any) {
		c.sendProgress(ctx, ch, ProgressEvent{Type: typ, Message: msg, Data: data, Timestamp: time.Now()})
	}

	// 日志失败不影响会话
	logID := int64(0)
	if c.opts.Journal != nil {
		id, err := c.opts.Journal.CreateConversionLog(ctx, opts.FileName, len(opts.Rows))
		if err != nil {
			c.logger.Warn("create conversion log failed", zap.Error(err))
		}
		logID = id
	}
	finish := func(status, errMsg string) {
		if c.opts.Journal == nil || logID == 0 {
			return
		}
		if err := c.opts.Journal.UpdateConversionLog(ctx, logID, report.RecordCount, report.FlaggedCells, report.OutputPath, status, errMsg); err != nil {
			c.logger.Warn("update conversion log failed", zap.Int64("id", logID), zap.Error(err))
		}
	}
	fail := func(stage string, err error) {
		err = fmt.Errorf("%s: %w", stage, err)
		c.logger.Error("conversion session failed", zap.String("file", opts.FileName), zap.Error(err))
		finish(statusFailed, err.Error())
		c.sendProgress(ctx, ch, ProgressEvent{Type: EventError, Message: err.Error(), Err: err, Timestamp: time.Now()})
	}

	send(EventStart, "开始转换", map[string]any{"file_name": opts.FileName, "rows": len(opts.Rows)})

	conv, warnings, err := c.newConverter(ctx)
	if err != nil {
		fail("load", err)
		return
	}
	for _, w := range warnings {
		send(EventWarning, w, nil)
	}
	send(EventLoaded, "主数据与历史已加载", c.Status())

	records, err := conv.ConvertConcurrent(ctx, opts.Rows, opts.FileName, c.opts.Workers)
	if err != nil {
		fail("convert", err)
		return
	}
	report.Records = records
	report.RecordCount = len(records)
	report.FlaggedCells = exporter.FlaggedCount(records)
	send(EventConverted, fmt.Sprintf("生成 %d 条记录", len(records)), map[string]int{
		"records": report.RecordCount,
		"flagged": report.FlaggedCells,
	})

	if opts.OutputPath != "" {
		if err := c.opts.Exporter.WriteFile(records, opts.OutputPath, nil); err != nil {
			fail("export", err)
			return
		}
		report.OutputPath = opts.OutputPath
		send(EventExported, "导出完成", map[string]string{"path": opts.OutputPath})
	}

	if opts.WriteBack && c.opts.History != nil {
		rows := converter.HistoryWriteBack(records, c.opts.CreatedBy)
		if err := c.opts.History.SaveHistory(ctx, rows); err != nil {
			c.logger.Warn("history write-back failed", zap.Error(err))
			send(EventWarning, fmt.Sprintf("历史回写失败: %v", err), nil)
		} else {
			report.HistorySaved = len(rows)
			send(EventHistorySaved, fmt.Sprintf("回写 %d 条历史", len(rows)), map[string]int{"rows": len(rows)})
		}
	}

	report.Duration = time.Since(start)
	finish(statusCompleted, "")
	c.logger.Info("conversion session done",
		zap.String("file", opts.FileName),
		zap.Int("rows", report.TotalRows),
		zap.Int("records", report.RecordCount),
		zap.Int("flagged", report.FlaggedCells),
		zap.Duration("duration", report.Duration),
	)
	send(EventDone, "转换完成", report)
}

// sendProgress 发送进度事件；调用方取消后不再阻塞
func (c *Coordinator) sendProgress(ctx context.Context, ch chan<- ProgressEvent, event ProgressEvent) {
	select {
	case ch <- event:
	case <-ctx.Done():
	}
}
