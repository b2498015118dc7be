package parser

import (
	"strings"

	"github.com/carmenjuyo/forecast-converter/internal/model"
)

// DefaultSentinels 不属于分段的汇总 / 对比行标签
var DefaultSentinels = []string{"TOTAL", "VS BUD 25"}

// SegmentCatalog 分段目录：按首次出现顺序追加，只增不减
type SegmentCatalog struct {
	order     []string
	seen      map[string]struct{}
	sentinels map[string]struct{}
}

// NewSegmentCatalog 创建分段目录，sentinels 为空时使用默认哨兵
func NewSegmentCatalog(sentinels []string) *SegmentCatalog {
	if len(sentinels) == 0 {
		sentinels = DefaultSentinels
	}
	c := &SegmentCatalog{
		seen:      make(map[string]struct{}),
		sentinels: make(map[string]struct{}, len(sentinels)),
	}
	for _, s := range sentinels {
		c.sentinels[sentinelKey(s)] = struct{}{}
	}
	return c
}

// Qualifies 判断标签是否为有效分段：去空白后非空、非哨兵
func (c *SegmentCatalog) Qualifies(label string) bool {
	label = strings.TrimSpace(label)
	if label == "" {
		return false
	}
	_, sentinel := c.sentinels[sentinelKey(label)]
	return !sentinel
}

// Observe 记录一组标签，返回本次新增的分段（保持输入顺序）
func (c *SegmentCatalog) Observe(labels []string) []string {
	qualified := make([]string, 0, len(labels))
	for _, label := range labels {
		if c.Qualifies(label) {
			qualified = append(qualified, label)
		}
	}
	return c.Append(qualified)
}

// Append 追加分段且不做哨兵过滤，用于 fixed 模式的声明列表；返回新增分段
func (c *SegmentCatalog) Append(segments []string) []string {
	var added []string
	for _, label := range segments {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		if _, ok := c.seen[label]; ok {
			continue
		}
		c.seen[label] = struct{}{}
		c.order = append(c.order, label)
		added = append(added, label)
	}
	return added
}

// Ordered 按首次出现顺序返回全部分段
func (c *SegmentCatalog) Ordered() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Len 分段数量
func (c *SegmentCatalog) Len() int {
	return len(c.order)
}

// Columns 按分段顺序展开的指标列：{seg}_RN, {seg}_REV, ...
func (c *SegmentCatalog) Columns() []string {
	out := make([]string, 0, 2*len(c.order))
	for _, seg := range c.order {
		out = append(out, model.RNColumn(seg), model.REVColumn(seg))
	}
	return out
}

// EnsureColumns 为缺失的分段列补 0
func (c *SegmentCatalog) EnsureColumns(row *model.DataRow, segments []string) {
	for _, seg := range segments {
		if !row.Has(model.RNColumn(seg)) {
			row.Set(model.RNColumn(seg), 0)
		}
		if !row.Has(model.REVColumn(seg)) {
			row.Set(model.REVColumn(seg), 0)
		}
	}
}

// BackPatch 为已累积的行补齐新发现分段的列
func (c *SegmentCatalog) BackPatch(rows []*model.DataRow, segments []string) {
	if len(segments) == 0 {
		return
	}
	for _, row := range rows {
		c.EnsureColumns(row, segments)
	}
}
