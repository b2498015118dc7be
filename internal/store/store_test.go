package store

import (
	"path/filepath"
	"testing"

	"github.com/carmenjuyo/forecast-converter/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := New(filepath.Join(t.TempDir(), "nested", "audit.db"))
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestImportLog_Lifecycle(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)

	last, err := st.LastImportTime()
	if err != nil {
		t.Fatalf("last import time: %v", err)
	}
	if last != nil {
		t.Fatalf("expected no import yet, got %v", last)
	}

	id, err := st.CreateImportLog("run-1", "Hotel_A")
	if err != nil {
		t.Fatalf("create import log: %v", err)
	}

	logs, err := st.ListImportLogs(10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(logs) != 1 || logs[0].Status != "processing" || logs[0].CompletedAt != nil {
		t.Fatalf("unexpected pending log: %+v", logs)
	}

	if err := st.UpdateImportLog(model.ImportLog{
		ID:             id,
		TotalSheets:    13,
		ImportedSheets: 12,
		SkippedSheets:  1,
		ImportedRows:   36,
		DegradedCells:  4,
		Status:         "completed",
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	logs, err = st.ListImportLogs(10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	got := logs[0]
	if got.RunID != "run-1" || got.ImportedRows != 36 || got.DegradedCells != 4 || got.CompletedAt == nil {
		t.Fatalf("unexpected completed log: %+v", got)
	}

	last, err = st.LastImportTime()
	if err != nil || last == nil {
		t.Fatalf("last import time: %v %v", last, err)
	}
}

func TestSheetMeta_RoundTripSegments(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	id, err := st.CreateImportLog("run-2", "Hotel_B")
	if err != nil {
		t.Fatalf("create import log: %v", err)
	}

	if err := st.InsertSheetMeta(model.SheetMeta{
		ImportLogID: id,
		SheetName:   "Janvier",
		MonthDay:    "01/01",
		Segments:    []string{"BAR", "GRP"},
		Status:      "imported",
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := st.InsertSheetMeta(model.SheetMeta{
		ImportLogID:  id,
		SheetName:    "Fevrier",
		Status:       "error",
		ErrorMessage: "header row not found",
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	metas, err := st.ListSheetMeta(id)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(metas) != 2 {
		t.Fatalf("expected 2 metas, got %d", len(metas))
	}
	if len(metas[0].Segments) != 2 || metas[0].Segments[1] != "GRP" {
		t.Fatalf("segments not preserved: %v", metas[0].Segments)
	}
	if len(metas[1].Segments) != 0 || metas[1].ErrorMessage == "" {
		t.Fatalf("unexpected error meta: %+v", metas[1])
	}
}

func TestNew_ReopenKeepsAuditRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")

	st, err := New(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := st.CreateImportLog("run-1", "Hotel_A"); err != nil {
		t.Fatalf("create import log: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	st, err = New(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer st.Close()

	logs, err := st.ListImportLogs(10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(logs) != 1 || logs[0].Filename != "Hotel_A" {
		t.Fatalf("unexpected logs after reopen: %+v", logs)
	}
}
