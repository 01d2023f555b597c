package parser

import (
	"testing"

	"ppconvert/internal/model"
)

func TestClassifyWork(t *testing.T) {
	t.Parallel()

	cases := []struct {
		boarding, landing string
		want              string
		unresolved        bool
	}{
		{"右舷着岸", "", model.WorkUnberth, false},
		{"", "左舷着岸", model.WorkBerth, false},
		{"右舷", "左舷", model.WorkBoth, false},
		{"", "ｱﾝｶｰ", model.WorkAnchor, false},
		{"ｱﾝｶｰ", "", "", true},
		{"", "", "", true},
	}
	for _, tc := range cases {
		got := ClassifyWork(tc.boarding, tc.landing)
		if got.String() != tc.want || got.Unresolved != tc.unresolved {
			t.Fatalf("ClassifyWork(%q,%q) want=%q/%v got=%+v", tc.boarding, tc.landing, tc.want, tc.unresolved, got)
		}
	}
}

func TestResolvePort_Priority(t *testing.T) {
	t.Parallel()

	ports := []model.Port{
		{ID: 1, Name: "神戸", ShortName: "KOB"},
		{ID: 2, Name: "水島", ShortName: "MIZ"},
	}

	if got := ResolvePort("神戸 右舷", "水島 左舷", ports); got.String() != "KOB" {
		t.Fatalf("boarding side first: %+v", got)
	}
	if got := ResolvePort("右舷", "水島 左舷", ports); got.String() != "MIZ" {
		t.Fatalf("landing side when boarding misses: %+v", got)
	}
	if got := ResolvePort("", "水島 ｱﾝｶｰ", ports); got.String() != "MIZ" {
		t.Fatalf("anchor branch: %+v", got)
	}
	if got := ResolvePort("右舷", "水島", ports); got.String() != "MIZ" {
		t.Fatalf("fallback to landing: %+v", got)
	}
	if got := ResolvePort("神戸", "水島", ports); !got.Unresolved {
		t.Fatalf("no indicator should be unresolved: %+v", got)
	}
}

func TestResolveBerth(t *testing.T) {
	t.Parallel()

	berths := []model.Berth{
		{Name: "第1岸壁", ShortName: "K1", PortShortName: "KOB"},
		{Name: "第1岸壁", ShortName: "M1", PortShortName: "MIZ"},
		{Name: "", ShortName: "ANY", PortShortName: "MIZ"},
	}

	got := ResolveBerth(model.Resolved(model.WorkBerth), model.Resolved("MIZ"), "", "水島 第1岸壁 左舷", berths)
	if got.String() != "M1" {
		t.Fatalf("berth within port: %+v", got)
	}
	got = ResolveBerth(model.Resolved(model.WorkEscort), model.Resolved("MIZ"), "", "第1岸壁", berths)
	if !got.Unresolved {
		t.Fatalf("escort work never resolves a dock berth: %+v", got)
	}
	got = ResolveBerth(model.Resolved(model.WorkBerth), model.Unresolved(""), "", "第1岸壁", berths)
	if !got.Unresolved {
		t.Fatalf("unresolved port: %+v", got)
	}
	got = ResolveBerth(model.Resolved(model.WorkBerth), model.Resolved("MIZ"), "", "第2岸壁", berths)
	if !got.Unresolved {
		t.Fatalf("empty berth name must not match everything: %+v", got)
	}
}
