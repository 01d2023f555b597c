package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ppconvert/internal/exporter"
	"ppconvert/internal/model"
)

// ConvertRequest 转换请求：上游 PDF 表格抽取得到的行（列标签 -> 文本）
type ConvertRequest struct {
	FileName  string              `json:"fileName" binding:"required"`
	Rows      []map[string]string `json:"rows"`
	WriteBack *bool               `json:"writeBack,omitempty"` // 仅导出时生效，默认 true
}

// ConvertResponse 转换结果
type ConvertResponse struct {
	Records      []model.OperationRecord `json:"records"`
	FlaggedCells int                     `json:"flaggedCells"`
}

func (r ConvertRequest) scheduleRows() []model.RawScheduleRow {
	rows := make([]model.RawScheduleRow, 0, len(r.Rows))
	for _, cells := range r.Rows {
		rows = append(rows, model.NewRawScheduleRow(cells))
	}
	return rows
}

func (r ConvertRequest) writeBack() bool {
	return r.WriteBack == nil || *r.WriteBack
}

func bindConvertRequest(c *gin.Context) (ConvertRequest, bool) {
	var req ConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求: " + err.Error()})
		return req, false
	}
	req.FileName = strings.TrimSpace(req.FileName)
	if req.FileName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少 fileName"})
		return req, false
	}
	return req, true
}

// Convert 转换预览（不导出、不回写）
// POST /api/convert
func (h *Handler) Convert(c *gin.Context) {
	req, ok := bindConvertRequest(c)
	if !ok {
		return
	}

	records, err := h.coord.Convert(c.Request.Context(), req.scheduleRows(), req.FileName)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "转换失败: " + err.Error()})
		return
	}
	if records == nil {
		records = []model.OperationRecord{}
	}
	c.JSON(http.StatusOK, ConvertResponse{Records: records, FlaggedCells: exporter.FlaggedCount(records)})
}
