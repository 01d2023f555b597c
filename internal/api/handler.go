package api

import (
	"context"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ppconvert/internal/importer"
	"ppconvert/internal/store"
)

// LogLister 转换日志查询（本地 SQLite 存储提供）
type LogLister interface {
	ListConversionLogs(ctx context.Context, limit int) ([]store.ConversionLog, error)
}

// Handler API 处理器
type Handler struct {
	coord     *importer.Coordinator
	logs      LogLister
	exportDir string
	downloads *exportDownloadStore
	logger    *zap.Logger
}

// NewHandler 创建 API 处理器；exportDir 为空时使用系统临时目录，logs 可为 nil
func NewHandler(coord *importer.Coordinator, logs LogLister, exportDir string, logger *zap.Logger) *Handler {
	if exportDir == "" {
		exportDir = os.TempDir()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		coord:     coord,
		logs:      logs,
		exportDir: exportDir,
		downloads: newExportDownloadStore(),
		logger:    logger,
	}
}

// RegisterRoutes 注册 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)
	router.POST("/master/reload", h.ReloadMaster)

	// 转换预览
	router.POST("/convert", h.Convert)

	// 导出
	router.POST("/export", h.Export)
	router.POST("/export/stream", h.ExportStream)
	router.GET("/export/download/:token", h.DownloadExport)

	// 转换日志
	router.GET("/logs", h.ListLogs)
}
