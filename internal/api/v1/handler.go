package v1

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/carmenjuyo/forecast-converter/internal/parser"
	"github.com/carmenjuyo/forecast-converter/internal/store"
)

// Handler API 处理器
type Handler struct {
	store          *store.Store // 可为 nil（关闭审计）
	extract        parser.ExtractOptions
	exportFilename string
	logger         *zap.Logger
	downloads      *downloadStore
}

// NewHandler 创建 API 处理器
func NewHandler(st *store.Store, extract parser.ExtractOptions, exportFilename string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if exportFilename == "" {
		exportFilename = "combined_rn_rev_data.csv"
	}
	return &Handler{
		store:          st,
		extract:        extract,
		exportFilename: exportFilename,
		logger:         logger,
		downloads:      newDownloadStore(),
	}
}

// RegisterRoutes 注册 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)
	// 导入审计
	router.GET("/imports", h.ListImports)

	// 抽取与下载
	router.POST("/extract", h.Extract)
	router.GET("/extract/download/:token", h.Download)
}
