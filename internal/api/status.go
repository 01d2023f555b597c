package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ppconvert/internal/importer"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	importer.Status
	Ready bool `json:"ready"` // 主数据已加载
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	s := h.coord.Status()
	c.JSON(http.StatusOK, StatusResponse{Status: s, Ready: s.MasterLoaded})
}

// ReloadMaster 重新加载主数据
// POST /api/master/reload
func (h *Handler) ReloadMaster(c *gin.Context) {
	if _, err := h.coord.ReloadMaster(c.Request.Context()); err != nil {
		h.logger.Warn("master reload failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "主数据加载失败: " + err.Error()})
		return
	}
	s := h.coord.Status()
	c.JSON(http.StatusOK, StatusResponse{Status: s, Ready: s.MasterLoaded})
}

// ListLogs 最近的转换日志
// GET /api/logs?limit=20
func (h *Handler) ListLogs(c *gin.Context) {
	if h.logs == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "未启用本地存储"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	logs, err := h.logs.ListConversionLogs(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取转换日志失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}
