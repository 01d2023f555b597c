package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"ppconvert/internal/exporter"
	"ppconvert/internal/importer"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportResponse 导出结果
type ExportResponse struct {
	DownloadURL  string `json:"downloadUrl"`
	FileName     string `json:"fileName"`
	RecordCount  int    `json:"recordCount"`
	FlaggedCells int    `json:"flaggedCells"`
	HistorySaved int    `json:"historySaved"`
}

func (h *Handler) sessionOptions(req ConvertRequest) importer.SessionOptions {
	return importer.SessionOptions{
		FileName:   req.FileName,
		Rows:       req.scheduleRows(),
		OutputPath: filepath.Join(h.exportDir, fmt.Sprintf("ppconvert_export_%s.xlsx", uuid.NewString())),
		WriteBack:  req.writeBack(),
	}
}

func downloadURL(c *gin.Context, token string) string {
	prefix := "/api"
	if strings.HasPrefix(c.Request.URL.Path, "/api/v1/") {
		prefix = "/api/v1"
	}
	return fmt.Sprintf("%s/export/download/%s", prefix, token)
}

// Export 转换 + 导出 + 回写，返回一次性下载地址
// POST /api/export
func (h *Handler) Export(c *gin.Context) {
	req, ok := bindConvertRequest(c)
	if !ok {
		return
	}

	opts := h.sessionOptions(req)
	report, err := h.coord.RunSync(c.Request.Context(), opts)
	if err != nil {
		_ = os.Remove(opts.OutputPath)
		c.JSON(http.StatusBadGateway, gin.H{"error": "导出失败: " + err.Error()})
		return
	}

	name := exporter.OutputName(req.FileName)
	token := h.downloads.put(report.OutputPath, name, report.RecordCount, downloadTTL)
	c.JSON(http.StatusOK, ExportResponse{
		DownloadURL:  downloadURL(c, token),
		FileName:     name,
		RecordCount:  report.RecordCount,
		FlaggedCells: report.FlaggedCells,
		HistorySaved: report.HistorySaved,
	})
}

// ExportStream 导出（SSE 进度 + 完成后提供下载地址）
// POST /api/export/stream
func (h *Handler) ExportStream(c *gin.Context) {
	req, ok := bindConvertRequest(c)
	if !ok {
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "不支持流式响应"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	send := func(event importer.ProgressEvent) {
		b, err := json.Marshal(event)
		if err != nil {
			return
		}
		fmt.Fprintf(c.Writer, "data: %s\n\n", b)
		flusher.Flush()
	}

	opts := h.sessionOptions(req)
	for event := range h.coord.Run(c.Request.Context(), opts) {
		switch event.Type {
		case importer.EventDone:
			report, _ := event.Data.(*importer.Report)
			if report == nil {
				continue
			}
			name := exporter.OutputName(req.FileName)
			token := h.downloads.put(report.OutputPath, name, report.RecordCount, downloadTTL)
			event.Data = ExportResponse{
				DownloadURL:  downloadURL(c, token),
				FileName:     name,
				RecordCount:  report.RecordCount,
				FlaggedCells: report.FlaggedCells,
				HistorySaved: report.HistorySaved,
			}
		case importer.EventError:
			_ = os.Remove(opts.OutputPath)
		}
		send(event)
	}
}

// DownloadExport 下载导出的 Excel 文件（一次性）
// GET /api/export/download/:token
func (h *Handler) DownloadExport(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少 token"})
		return
	}

	item, ok := h.downloads.take(token)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "下载链接已失效"})
		return
	}

	if _, err := os.Stat(item.path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "导出文件不存在"})
		return
	}

	h.logger.Info("export downloaded", zap.String("file", item.name), zap.Int("records", item.records))
	c.Header("Content-Disposition", buildExportContentDisposition(item.name))
	c.Header("Content-Type", xlsxContentType)
	c.File(item.path)

	if err := os.Remove(item.path); err != nil {
		h.logger.Warn("remove exported file failed", zap.String("path", item.path), zap.Error(err))
	}
}

// buildExportContentDisposition ASCII 回退名 + RFC 5987 UTF-8 文件名
func buildExportContentDisposition(fileName string) string {
	fallback := fmt.Sprintf("ppconvert-%s.xlsx", time.Now().Format("20060102"))
	if isASCII(fileName) {
		fallback = fileName
	}
	return fmt.Sprintf("attachment; filename=%q; filename*=UTF-8''%s", fallback, url.PathEscape(fileName))
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 || s[i] == '"' || s[i] == '\\' {
			return false
		}
	}
	return true
}
