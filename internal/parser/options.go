package parser

import (
	"strings"

	"github.com/carmenjuyo/forecast-converter/internal/config"
)

// SegmentMode 分段识别模式
type SegmentMode string

const (
	SegmentModeDynamic SegmentMode = config.SegmentModeDynamic
	SegmentModeFixed   SegmentMode = config.SegmentModeFixed
)

// YearLayout 某一年份在数据块中的 RN / REV 列偏移
type YearLayout struct {
	Year   int
	RNCol  int
	REVCol int
}

// ExtractOptions 数据块抽取选项
type ExtractOptions struct {
	HeaderRow           int // 表头所在行（0 起）
	Mode                SegmentMode
	Segments            []string // fixed 模式下的分段列表
	Sentinels           []string
	SegmentWindowOffset int // dynamic 模式下从第几条数据行开始识别分段
	FoldSheetNames      bool
	Years               []YearLayout
}

// DefaultExtractOptions 默认抽取选项
func DefaultExtractOptions() ExtractOptions {
	return NewExtractOptions(config.DefaultConfig().Extract)
}

// NewExtractOptions 从配置构建抽取选项
func NewExtractOptions(cfg config.ExtractConfig) ExtractOptions {
	opts := ExtractOptions{
		HeaderRow:           cfg.HeaderRow,
		Mode:                SegmentMode(strings.ToLower(strings.TrimSpace(cfg.SegmentMode))),
		Sentinels:           append([]string(nil), cfg.Sentinels...),
		SegmentWindowOffset: cfg.SegmentWindowOffset,
		FoldSheetNames:      cfg.FoldSheetNames,
	}
	if opts.Mode == "" {
		opts.Mode = SegmentModeDynamic
	}
	if len(opts.Sentinels) == 0 {
		opts.Sentinels = append([]string(nil), DefaultSentinels...)
	}
	for _, seg := range cfg.Segments {
		if seg = strings.TrimSpace(seg); seg != "" {
			opts.Segments = append(opts.Segments, seg)
		}
	}
	years := cfg.Years
	if len(years) == 0 {
		years = config.DefaultYears()
	}
	for _, y := range years {
		opts.Years = append(opts.Years, YearLayout{Year: y.Year, RNCol: y.RN, REVCol: y.REV})
	}
	return opts
}
