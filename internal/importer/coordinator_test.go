package importer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"ppconvert/internal/model"
	"ppconvert/internal/store"
)

type fakeMaster struct {
	master *model.MasterData
	err    error
	calls  int
}

func (f *fakeMaster) LoadMaster(context.Context) (*model.MasterData, error) {
	f.calls++
	return f.master, f.err
}

type fakeHistory struct {
	records []model.HistoricalShipmentRecord
	loadErr error
	saved   []model.HistoryWriteBack
}

func (f *fakeHistory) LoadHistory(context.Context) ([]model.HistoricalShipmentRecord, error) {
	return f.records, f.loadErr
}

func (f *fakeHistory) SaveHistory(_ context.Context, rows []model.HistoryWriteBack) error {
	f.saved = append(f.saved, rows...)
	return nil
}

func testMaster() *model.MasterData {
	m := &model.MasterData{
		LoadedCargo: []model.NamedEntry{{Name: "原油", ShortName: "CRUDE"}},
		Ports:       []model.Port{{ID: 1, Name: "神戸", ShortName: "KOB"}},
		Berths:      []model.Berth{{PortID: 1, Name: "第一", ShortName: "K1"}},
		MasterTowing: []model.TowingVessel{
			{ShortName: "NE", TName: "あさひ"},
			{ShortName: "NA", TName: "ひかり"},
		},
	}
	m.EnrichBerths()
	return m
}

func testRows() []model.RawScheduleRow {
	return []model.RawScheduleRow{
		{
			model.ColumnNo:       "1",
			model.ColumnShip:     "さくら丸\nPANAMA\nNYK/X\nKDA/Y",
			model.ColumnTonnage:  "12,345",
			model.ColumnCargo:    "原油",
			model.ColumnBoarding: "神戸第一 右舷\nあさひ(1)",
			model.ColumnRouting:  "明石03:15-03:35\nひかり",
		},
		{
			model.ColumnNo:      "2",
			model.ColumnShip:    "ひまわり丸",
			model.ColumnTonnage: "800",
			model.ColumnCargo:   "空船",
			model.ColumnLanding: "神戸第一 左舷",
		},
	}
}

func TestCoordinator_RunSession(t *testing.T) {
	t.Parallel()

	master := &fakeMaster{master: testMaster()}
	history := &fakeHistory{}
	st, err := store.New(filepath.Join(t.TempDir(), "ppconvert.db"))
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	c := NewCoordinator(Options{Master: master, MasterName: "test", History: history, Journal: st, Workers: 2})
	out := filepath.Join(t.TempDir(), "R0512.xlsx")

	var types []string
	var report *Report
	for ev := range c.Run(context.Background(), SessionOptions{FileName: "R0512.pdf", Rows: testRows(), OutputPath: out, WriteBack: true}) {
		types = append(types, ev.Type)
		if ev.Type == EventError {
			t.Fatalf("error event: %v", ev.Err)
		}
		if ev.Type == EventDone {
			report = ev.Data.(*Report)
		}
	}

	want := []string{EventStart, EventLoaded, EventConverted, EventExported, EventHistorySaved, EventDone}
	if diff := cmp.Diff(want, types); diff != "" {
		t.Fatalf("event order (-want +got):\n%s", diff)
	}
	if report.RecordCount != 3 || report.TotalRows != 2 {
		t.Fatalf("report: %+v", report)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("export missing: %v", err)
	}

	// 空船与护航记录不回写
	if len(history.saved) != 1 || history.saved[0].ShipName != "さくら丸" || history.saved[0].DataDate != 512 {
		t.Fatalf("write-back: %+v", history.saved)
	}

	logs, err := st.ListConversionLogs(context.Background(), 1)
	if err != nil || len(logs) != 1 || logs[0].Status != store.StatusCompleted || logs[0].RecordCount != 3 {
		t.Fatalf("conversion log: %+v, %v", logs, err)
	}

	// 主数据缓存：再次转换不重复加载
	if _, err := c.Convert(context.Background(), testRows(), "R0512.pdf"); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if master.calls != 1 {
		t.Fatalf("master loaded %d times", master.calls)
	}
}

func TestCoordinator_HistoryFailureDegrades(t *testing.T) {
	t.Parallel()

	c := NewCoordinator(Options{
		Master:  &fakeMaster{master: testMaster()},
		History: &fakeHistory{loadErr: errors.New("offline")},
	})

	var warned bool
	for ev := range c.Run(context.Background(), SessionOptions{FileName: "R1.pdf", Rows: testRows()}) {
		if ev.Type == EventWarning {
			warned = true
		}
	}
	if !warned {
		t.Fatalf("expected warning event")
	}

	report, err := c.RunSync(context.Background(), SessionOptions{FileName: "R1.pdf", Rows: testRows()})
	if err != nil {
		t.Fatalf("RunSync: %v", err)
	}
	if got := report.Records[len(report.Records)-1].Load.String(); got != "EMP ()" {
		t.Fatalf("empty vessel without history: %q", got)
	}
}

func TestCoordinator_MasterFailure(t *testing.T) {
	t.Parallel()

	c := NewCoordinator(Options{Master: &fakeMaster{err: errors.New("down")}})
	if _, err := c.RunSync(context.Background(), SessionOptions{FileName: "R1.pdf", Rows: testRows()}); err == nil {
		t.Fatalf("expected error")
	}
	if c.Status().MasterLoaded {
		t.Fatalf("status should report unloaded master")
	}
}
