package importer

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// segmentLine 一个分段行：RN (B/C/E) 与 REV (J/K/M)
type segmentLine struct {
	label               string
	rn23, rn24, rn25    interface{}
	rev23, rev24, rev25 interface{}
}

func (l segmentLine) values() []interface{} {
	return []interface{}{l.label, l.rn23, l.rn24, nil, l.rn25, nil, nil, nil, nil, l.rev23, l.rev24, nil, l.rev25}
}

// buildWorkbook 构造月度工作簿：表头在第 25 行，分段从第 26 行开始
func buildWorkbook(t *testing.T, sheets map[string][]segmentLine, extra ...string) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for name, lines := range sheets {
		_, err := f.NewSheet(name)
		require.NoError(t, err)

		header := []interface{}{"Segment", "RN 23", "RN 24", "BUD", "RN 25", "", "", "", "", "REV 23", "REV 24", "BUD", "REV 25"}
		require.NoError(t, f.SetSheetRow(name, "A25", &header))
		for i, line := range lines {
			vals := line.values()
			require.NoError(t, f.SetSheetRow(name, fmt.Sprintf("A%d", 26+i), &vals))
		}
	}
	for _, name := range extra {
		_, err := f.NewSheet(name)
		require.NoError(t, err)
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}
