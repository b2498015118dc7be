package v1

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/carmenjuyo/forecast-converter/internal/parser"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	AuditEnabled   bool     `json:"auditEnabled"`
	SegmentMode    string   `json:"segmentMode"`
	HeaderRow      int      `json:"headerRow"`
	Months         []string `json:"months"`
	LastImportTime string   `json:"lastImportTime"`
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	months := make([]string, 0, len(parser.Months))
	for _, m := range parser.Months {
		months = append(months, m.Label)
	}

	resp := StatusResponse{
		AuditEnabled: h.store != nil,
		SegmentMode:  string(h.extract.Mode),
		HeaderRow:    h.extract.HeaderRow,
		Months:       months,
	}

	if h.store != nil {
		if last, err := h.store.LastImportTime(); err == nil && last != nil {
			resp.LastImportTime = last.Format(time.RFC3339)
		}
	}

	c.JSON(http.StatusOK, resp)
}

// ListImports 列出最近的导入审计记录
// GET /api/imports?limit=20
func (h *Handler) ListImports(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusOK, gin.H{"items": []interface{}{}})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}

	logs, err := h.store.ListImportLogs(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if logs == nil {
		c.JSON(http.StatusOK, gin.H{"items": []interface{}{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": logs})
}
