package exporter

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/carmenjuyo/forecast-converter/internal/importer"
	"github.com/carmenjuyo/forecast-converter/internal/model"
	"github.com/carmenjuyo/forecast-converter/internal/parser"
)

func sampleTable() *model.Table {
	a := model.NewDataRow("Hotel_A", "01/01/2023")
	a.Set("BAR_RN", 120)
	a.Set("BAR_REV", 5000.25)
	b := model.NewDataRow("Hotel, \"B\"", "01/02/2024")
	b.Set("BAR_RN", 0)
	b.Set("BAR_REV", 0.1)
	return &model.Table{
		Columns: []string{"filename", "date", "BAR_RN", "BAR_REV"},
		Rows:    []*model.DataRow{a, b},
	}
}

func TestFormatCSV_HeaderAndFullPrecision(t *testing.T) {
	t.Parallel()

	got, err := FormatCSV(sampleTable())
	require.NoError(t, err)

	want := "filename,date,BAR_RN,BAR_REV\n" +
		"Hotel_A,01/01/2023,120.0,5000.25\n" +
		"\"Hotel, \"\"B\"\"\",01/02/2024,0.0,0.1\n"
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Fatalf("csv mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatFloat(t *testing.T) {
	t.Parallel()

	x, y := 0.1, 0.2
	cases := map[float64]string{
		120:         "120.0",
		5200.5:      "5200.5",
		-3:          "-3.0",
		x + y:       "0.30000000000000004",
		1234567.891: "1234567.891",
		0:           "0.0",
		1e15:        "1000000000000000.0",
		1e16:        "1e+16",
		1.5e17:      "1.5e+17",
		0.0001:      "0.0001",
		0.00001:     "1e-05",
		-2.5e-7:     "-2.5e-07",
	}
	for in, want := range cases {
		if got := FormatFloat(in); got != want {
			t.Fatalf("FormatFloat(%v) = %q, want %q", in, got, want)
		}
	}
}

func buildWorkbook(t *testing.T, sheet string, lines ...[]interface{}) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	_, err := f.NewSheet(sheet)
	require.NoError(t, err)
	header := []interface{}{"Segment"}
	require.NoError(t, f.SetSheetRow(sheet, "A25", &header))
	for i := range lines {
		require.NoError(t, f.SetSheetRow(sheet, fmt.Sprintf("A%d", 26+i), &lines[i]))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestFormatCSV_IdempotentAcrossRuns(t *testing.T) {
	t.Parallel()

	a := buildWorkbook(t, "Janvier",
		[]interface{}{"BAR", 120, 130, nil, 140, nil, nil, nil, nil, 5000, 5200, nil, 5400},
		[]interface{}{"GRP", 1.5, 2.5, nil, 3.5, nil, nil, nil, nil, 10, 20, nil, 30},
	).Bytes()
	b := buildWorkbook(t, "Octobre",
		[]interface{}{"PRO", "text", 8, nil, 9, nil, nil, nil, nil, 70, 80, nil, 90},
	).Bytes()

	run := func() []byte {
		agg := importer.NewAggregator(importer.Options{Extract: parser.DefaultExtractOptions()})
		table, _, err := agg.Aggregate([]importer.Source{
			{Name: "Hotel_B.xlsx", Reader: bytes.NewReader(b)},
			{Name: "Hotel_A.xlsx", Reader: bytes.NewReader(a)},
		})
		require.NoError(t, err)
		out, err := FormatCSV(table)
		require.NoError(t, err)
		return out
	}

	first := run()
	second := run()
	if !bytes.Equal(first, second) {
		t.Fatalf("csv output differs between runs:\n%s\n---\n%s", first, second)
	}

	lines := bytes.Split(bytes.TrimSpace(first), []byte("\n"))
	require.Len(t, lines, 7)
	// Hotel_B 先处理，其分段 PRO 先出现
	require.Equal(t, "filename,date,PRO_RN,PRO_REV,BAR_RN,BAR_REV,GRP_RN,GRP_REV", string(lines[0]))
	require.Equal(t, "Hotel_A,01/01/2023,0.0,0.0,120.0,5000.0,1.5,10.0", string(lines[1]))
	require.Equal(t, "Hotel_B,01/10/2023,0.0,70.0,0.0,0.0,0.0,0.0", string(lines[4]))
}
