package parser

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MonthSheet 月份 Sheet：Sheet 名称与 "日/月" 字符串
type MonthSheet struct {
	Label    string `json:"label"`
	MonthDay string `json:"monthDay"`
}

// Months 固定的 12 个月份 Sheet，按声明顺序遍历
var Months = []MonthSheet{
	{Label: "Janvier", MonthDay: "01/01"},
	{Label: "Fevrier", MonthDay: "01/02"},
	{Label: "Mars", MonthDay: "01/03"},
	{Label: "Avril", MonthDay: "01/04"},
	{Label: "Mai", MonthDay: "01/05"},
	{Label: "Juin", MonthDay: "01/06"},
	{Label: "Juillet", MonthDay: "01/07"},
	{Label: "Aout", MonthDay: "01/08"},
	{Label: "Septembre", MonthDay: "01/09"},
	{Label: "Octobre", MonthDay: "01/10"},
	{Label: "Novembre", MonthDay: "01/11"},
	{Label: "Decembre", MonthDay: "01/12"},
}

// FindSheet 在工作簿的 Sheet 列表中查找月份 Sheet
// 精确匹配优先；fold 为 true 时再尝试忽略大小写与重音的匹配（"Février" / "AOÛT"）
func FindSheet(sheetList []string, month MonthSheet, fold bool) (string, bool) {
	for _, name := range sheetList {
		if name == month.Label {
			return name, true
		}
	}
	if !fold {
		return "", false
	}

	want := foldName(month.Label)
	for _, name := range sheetList {
		if foldName(name) == want {
			return name, true
		}
	}
	return "", false
}

// foldName 去除重音符号并转大写
func foldName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.TrimSpace(name))
	if err != nil {
		folded = strings.TrimSpace(name)
	}
	return strings.ToUpper(folded)
}
