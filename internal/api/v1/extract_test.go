package v1

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/carmenjuyo/forecast-converter/internal/parser"
	"github.com/carmenjuyo/forecast-converter/internal/store"
)

func newTestRouter(t *testing.T, st *store.Store) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := NewHandler(st, parser.DefaultExtractOptions(), "", nil)
	r := gin.New()
	h.RegisterRoutes(r.Group("/api"))
	return r
}

func workbookBytes(t *testing.T, sheet string, line []interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	if sheet != "" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
		header := []interface{}{"Segment"}
		require.NoError(t, f.SetSheetRow(sheet, "A25", &header))
		require.NoError(t, f.SetSheetRow(sheet, "A26", &line))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func multipartBody(t *testing.T, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for name, data := range files {
		fw, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestExtract_ThenDownloadCSVAndXLSX(t *testing.T) {
	st, err := store.New(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	r := newTestRouter(t, st)

	body, contentType := multipartBody(t, map[string][]byte{
		"Hotel_A.xlsx": workbookBytes(t, "Janvier",
			[]interface{}{"BAR", 120, 130, nil, 140, nil, nil, nil, nil, 5000, 5200, nil, 5400}),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/extract", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp ExtractResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Rows)
	assert.Equal(t, []string{"filename", "date", "BAR_RN", "BAR_REV"}, resp.Columns)
	assert.Len(t, resp.Preview, 3)
	assert.Empty(t, resp.Warning)
	require.NotEmpty(t, resp.DownloadToken)

	req = httptest.NewRequest(http.MethodGet, "/api/extract/download/"+resp.DownloadToken, nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "combined_rn_rev_data.csv")
	assert.Equal(t,
		"filename,date,BAR_RN,BAR_REV\n"+
			"Hotel_A,01/01/2023,120.0,5000.0\n"+
			"Hotel_A,01/01/2024,130.0,5200.0\n"+
			"Hotel_A,01/01/2025,140.0,5400.0\n",
		w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/api/extract/download/"+resp.DownloadToken+"?format=xlsx", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	rows, err := f.GetRows("data")
	require.NoError(t, err)
	assert.Len(t, rows, 4)

	// 审计记录
	req = httptest.NewRequest(http.MethodGet, "/api/imports", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"filename":"Hotel_A"`)
}

func TestExtract_EmptyResultHasNoDownload(t *testing.T) {
	r := newTestRouter(t, nil)

	body, contentType := multipartBody(t, map[string][]byte{
		"Nothing.xlsx": workbookBytes(t, "", nil),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/extract", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp ExtractResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Rows)
	assert.NotEmpty(t, resp.Warning)
	assert.Empty(t, resp.DownloadToken)
}

func TestExtract_RejectsNonXLSX(t *testing.T) {
	r := newTestRouter(t, nil)

	body, contentType := multipartBody(t, map[string][]byte{"notes.txt": []byte("hello")})
	req := httptest.NewRequest(http.MethodPost, "/api/extract", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDownload_UnknownToken(t *testing.T) {
	r := newTestRouter(t, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/extract/download/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetStatus(t *testing.T) {
	r := newTestRouter(t, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.AuditEnabled)
	assert.Equal(t, "dynamic", resp.SegmentMode)
	assert.Equal(t, 24, resp.HeaderRow)
	assert.Len(t, resp.Months, 12)
	assert.True(t, strings.HasPrefix(fmt.Sprint(resp.Months), "[Janvier"))
}
