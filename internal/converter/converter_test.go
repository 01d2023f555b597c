package converter

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"ppconvert/internal/model"
)

func testMaster() *model.MasterData {
	m := &model.MasterData{
		OperatingVessels: []model.NamedEntry{{Name: "日本郵船", ShortName: "NYK"}},
		Agents:           []model.NamedEntry{{Name: "神戸代理", ShortName: "KDA"}},
		LoadedCargo:      []model.NamedEntry{{Name: "原油", ShortName: "CRUDE"}},
		Ports:            []model.Port{{ID: 1, Name: "神戸", ShortName: "KOB"}},
		Berths:           []model.Berth{{PortID: 1, Name: "第一", ShortName: "K1"}},
		EscortLocations:  []model.NamedEntry{{Name: "明石", ShortName: "AKASHI"}},
		MasterTowing: []model.TowingVessel{
			{Name: "日本曳船", ShortName: "NE", TName: "あさひ"},
			{Name: "中央曳船", ShortName: "NA", TName: "ひかり"},
		},
	}
	m.EnrichBerths()
	return m
}

func testRow() model.RawScheduleRow {
	return model.RawScheduleRow{
		model.ColumnNo:       "1",
		model.ColumnShip:     "さくら丸\nPANAMA\n日本郵船/NYK\n神戸代理/KA",
		model.ColumnTonnage:  "12,345\n8,000",
		model.ColumnCargo:    "原油",
		model.ColumnBoarding: "神戸第一 右舷\nあさひ(1)",
		model.ColumnRouting:  "明石03:15-03:35\nひかり",
	}
}

func TestConvertRow_PrimaryAndEscort(t *testing.T) {
	t.Parallel()

	conv := New(testMaster(), nil, nil)
	recs := conv.ConvertRow(testRow(), "R0512.pdf")
	if len(recs) != 2 {
		t.Fatalf("want 2 records, got %d: %+v", len(recs), recs)
	}

	primary, escort := recs[0], recs[1]
	if primary.No.Int() != 512 || primary.B.Int() != 1 || primary.C.String() != "R" {
		t.Fatalf("reference numbers: no=%v b=%v c=%v", primary.No, primary.B, primary.C)
	}
	if primary.Ovc.String() != "NYK" || primary.Agent.String() != "KDA" || primary.Load.String() != "CRUDE" {
		t.Fatalf("master lookups: ovc=%+v agent=%+v load=%+v", primary.Ovc, primary.Agent, primary.Load)
	}
	if primary.DWT.Int() != 12345 {
		t.Fatalf("dwt: %+v", primary.DWT)
	}
	if primary.Work.String() != model.WorkUnberth || primary.Port.String() != "KOB" || primary.Berth.String() != "K1" {
		t.Fatalf("primary work/port/berth: %+v %+v %+v", primary.Work, primary.Port, primary.Berth)
	}
	if primary.Tally["ne"] != 1 || primary.Tally["na"] != 0 {
		t.Fatalf("primary tally: %v", primary.Tally)
	}

	if escort.Work.String() != model.WorkEscort || escort.Berth.String() != "AKASHI" {
		t.Fatalf("escort work/berth: %+v %+v", escort.Work, escort.Berth)
	}
	if escort.Tally["na"] != 1 || escort.Tally["ne"] != 0 {
		t.Fatalf("escort tally must be independent: %v", escort.Tally)
	}
	if escort.ShipName.String() != "さくら丸" || escort.PPNP != primary.PPNP {
		t.Fatalf("escort shares base fields: %+v", escort)
	}
}

func TestConvertRow_DropsEmptyWork(t *testing.T) {
	t.Parallel()

	row := testRow()
	row[model.ColumnBoarding] = "神戸"

	conv := New(testMaster(), nil, nil)
	primary, escorts := conv.assemble(row, "R0512.pdf")
	if !primary.Work.Unresolved || len(escorts) != 1 {
		t.Fatalf("assemble: primary=%+v escorts=%d", primary.Work, len(escorts))
	}

	recs := conv.ConvertRow(row, "R0512.pdf")
	if len(recs) != 1 || recs[0].Work.String() != model.WorkEscort {
		t.Fatalf("only the escort record should survive: %+v", recs)
	}
}

func TestConvertRow_LNGEscortBerths(t *testing.T) {
	t.Parallel()

	row := testRow()
	row[model.ColumnCargo] = "ＬＮＧ"
	row[model.ColumnRouting] = "明石03:15-03:35\nあさひ ひかり\n伊予灘03:40-04:00\nひかり"

	recs := New(testMaster(), nil, nil).ConvertRow(row, "R0512.pdf")
	if len(recs) != 3 {
		t.Fatalf("want primary + 2 escorts, got %d", len(recs))
	}
	if got := recs[1].Berth.String(); got != EscortLNGAkashi {
		t.Fatalf("akashi escort: %q", got)
	}
	if got := recs[2].Berth.String(); got != EscortLNG {
		t.Fatalf("other lng escort: %q", got)
	}
	if recs[1].Tally["na"] != 1 || recs[1].Tally["ne"] != 0 {
		t.Fatalf("akashi keeps only the last vessel: %v", recs[1].Tally)
	}
}

func TestConvertRow_EmptyVesselCargo(t *testing.T) {
	t.Parallel()

	row := testRow()
	row[model.ColumnCargo] = "空船"

	got := New(testMaster(), nil, nil).ConvertRow(row, "R0512.pdf")[0].Load
	if diff := cmp.Diff(model.Resolved("EMP ()"), got); diff != "" {
		t.Fatalf("no history (-want +got):\n%s", diff)
	}

	history := []model.HistoricalShipmentRecord{
		{ShipName: "さくら丸", DW: 12345, LoadedCargoName: "重油", DataDate: 600},
		{ShipName: "さくら丸", DW: 12345, LoadedCargoName: "原油", DataDate: 100},
	}
	got = New(testMaster(), history, nil).ConvertRow(row, "R0512.pdf")[0].Load
	if diff := cmp.Diff(model.Resolved("EMP (原油)"), got); diff != "" {
		t.Fatalf("history match (-want +got):\n%s", diff)
	}
}

func TestConvert_SkipsEmptyShipAndIsIdempotent(t *testing.T) {
	t.Parallel()

	rows := []model.RawScheduleRow{
		testRow(),
		{model.ColumnNo: "2", model.ColumnBoarding: "神戸 右舷"},
		testRow(),
	}
	conv := New(testMaster(), nil, nil)

	first := conv.Convert(rows, "R0512.pdf")
	if len(first) != 4 {
		t.Fatalf("want 4 records from two populated rows, got %d", len(first))
	}
	if diff := cmp.Diff(first, conv.Convert(rows, "R0512.pdf")); diff != "" {
		t.Fatalf("not idempotent (-first +second):\n%s", diff)
	}

	concurrent, err := conv.ConvertConcurrent(context.Background(), rows, "R0512.pdf", 2)
	if err != nil {
		t.Fatalf("ConvertConcurrent: %v", err)
	}
	if diff := cmp.Diff(first, concurrent); diff != "" {
		t.Fatalf("concurrent order differs (-serial +concurrent):\n%s", diff)
	}
}

func TestConvertConcurrent_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(testMaster(), nil, nil).ConvertConcurrent(ctx, []model.RawScheduleRow{testRow()}, "R1.pdf", 1)
	if err == nil {
		t.Fatalf("expected context error")
	}
}
