package parser

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// sentinelKey 哨兵比较用的键：去除首尾空白、压缩内部空白并转大写
func sentinelKey(text string) string {
	text = strings.TrimSpace(text)
	return strings.ToUpper(whitespaceRe.ReplaceAllString(text, " "))
}

// parseFloat 严格转换为浮点数，失败返回错误
func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrEmptyCell
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNotNumeric, s)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q", ErrNotNumeric, s)
	}
	return f, nil
}

// cellAt 安全读取行内单元格
func cellAt(row []string, col int) (string, bool) {
	if col < 0 || col >= len(row) {
		return "", false
	}
	return row[col], true
}
