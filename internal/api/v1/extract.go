package v1

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/carmenjuyo/forecast-converter/internal/exporter"
	"github.com/carmenjuyo/forecast-converter/internal/importer"
	"github.com/carmenjuyo/forecast-converter/internal/model"
	"github.com/carmenjuyo/forecast-converter/internal/parser"
)

const previewRows = 5

// ExtractResponse 抽取结果
type ExtractResponse struct {
	Columns       []string                 `json:"columns"`
	Rows          int                      `json:"rows"`
	Preview       []map[string]interface{} `json:"preview"`
	Summary       []exporter.ColumnSummary `json:"summary"`
	Report        *parser.ImportReport     `json:"report"`
	Warning       string                   `json:"warning,omitempty"`
	DownloadToken string                   `json:"downloadToken,omitempty"`
}

// Extract 上传一个或多个 xlsx 并抽取 RN/REV 宽表
// POST /api/extract
func (h *Handler) Extract(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		files = form.File["file"]
	}
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no uploaded file"})
		return
	}

	sources := make([]importer.Source, 0, len(files))
	for _, fh := range files {
		if !strings.EqualFold(filepath.Ext(fh.Filename), ".xlsx") {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("%s is not an .xlsx file", fh.Filename)})
			return
		}
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("read %s: %v", fh.Filename, err)})
			return
		}
		defer f.Close()
		sources = append(sources, importer.Source{Name: fh.Filename, Reader: f})
	}

	opts := importer.Options{
		Extract: h.extract,
		Logger:  h.logger,
	}
	if h.store != nil {
		opts.Audit = h.store
	}
	agg := importer.NewAggregator(opts)

	table, report, err := agg.Aggregate(sources)
	if errors.Is(err, importer.ErrEmptyResult) {
		c.JSON(http.StatusOK, ExtractResponse{
			Columns: table.Columns,
			Preview: []map[string]interface{}{},
			Summary: []exporter.ColumnSummary{},
			Report:  report,
			Warning: "no data extracted: none of the uploaded files contains a recognized month sheet",
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, ExtractResponse{
		Columns:       table.Columns,
		Rows:          len(table.Rows),
		Preview:       buildPreview(table, previewRows),
		Summary:       exporter.Summarize(table),
		Report:        report,
		DownloadToken: h.downloads.put(table, downloadTTL),
	})
}

// Download 下载抽取结果
// GET /api/extract/download/:token?format=csv|xlsx
func (h *Handler) Download(c *gin.Context) {
	table, ok := h.downloads.get(c.Param("token"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "download link expired"})
		return
	}

	format := strings.ToLower(c.DefaultQuery("format", "csv"))
	switch format {
	case "csv":
		data, err := exporter.FormatCSV(table)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Header("Content-Disposition", contentDisposition(h.exportFilename))
		c.Data(http.StatusOK, exporter.CSVContentType, data)
	case "xlsx":
		name := strings.TrimSuffix(h.exportFilename, filepath.Ext(h.exportFilename)) + ".xlsx"
		c.Header("Content-Disposition", contentDisposition(name))
		c.Header("Content-Type", exporter.XLSXContentType)
		c.Status(http.StatusOK)
		if err := exporter.WriteXLSX(c.Writer, table); err != nil {
			h.logger.Error("write xlsx download failed", zap.Error(err))
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unsupported format %q", format)})
	}
}

// buildPreview 前 n 行，按列顺序展开
func buildPreview(table *model.Table, n int) []map[string]interface{} {
	if n > len(table.Rows) {
		n = len(table.Rows)
	}
	out := make([]map[string]interface{}, 0, n)
	for _, row := range table.Rows[:n] {
		item := make(map[string]interface{}, len(table.Columns))
		for _, col := range table.Columns {
			switch col {
			case model.ColumnFilename:
				item[col] = row.Filename
			case model.ColumnDate:
				item[col] = row.Date
			default:
				item[col] = row.Get(col)
			}
		}
		out = append(out, item)
	}
	return out
}

func contentDisposition(filename string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": filename})
}
