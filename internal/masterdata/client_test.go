package masterdata

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"ppconvert/internal/model"
)

func newTestServer(t *testing.T, flaky *atomic.Int32, posted *[]model.HistoryWriteBack) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc(PathPorts, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1,"name":"神戸","short_name":"KOB"}]`))
	})
	mux.HandleFunc(PathBerths, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"id":9,"port_id":1,"name":"第一","short_name":"K1"}]}`))
	})
	mux.HandleFunc(PathMasterTowing, func(w http.ResponseWriter, r *http.Request) {
		if flaky.Add(1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[{"name":"日本曳船","short_name":"NE","t_name":"あさひ","ps":""}]`))
	})
	mux.HandleFunc(PathAgents, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})
	mux.HandleFunc(PathOperatingVessels, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	})
	mux.HandleFunc(PathEscortLocations, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"name":"明石","short_name":"AKASHI"}]`))
	})
	mux.HandleFunc(PathLoadedCargo, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	mux.HandleFunc(PathHistory, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"ship_name":"さくら丸","dw":"12345","loaded_cargo_name":"原油","data_date":100}]`))
	})
	mux.HandleFunc(PathHistoryBulk, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method", http.StatusMethodNotAllowed)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(posted); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusCreated)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_LoadMaster(t *testing.T) {
	t.Parallel()

	var flaky atomic.Int32
	var posted []model.HistoryWriteBack
	srv := newTestServer(t, &flaky, &posted)

	c := NewClient(srv.URL+"/", WithRetry(3, time.Millisecond))
	m, err := c.LoadMaster(context.Background())
	if err != nil {
		t.Fatalf("LoadMaster: %v", err)
	}

	if len(m.MasterTowing) != 1 || flaky.Load() != 2 {
		t.Fatalf("towing should succeed after one retry: towing=%v calls=%d", m.MasterTowing, flaky.Load())
	}
	if m.Agents == nil || len(m.Agents) != 0 {
		t.Fatalf("404 collection should degrade to empty list: %#v", m.Agents)
	}
	if len(m.OperatingVessels) != 0 {
		t.Fatalf("null body should be empty: %#v", m.OperatingVessels)
	}

	want := []model.Berth{{ID: 9, PortID: 1, Name: "第一", ShortName: "K1", PortName: "神戸", PortShortName: "KOB"}}
	if diff := cmp.Diff(want, m.Berths); diff != "" {
		t.Fatalf("berths enriched from ports (-want +got):\n%s", diff)
	}
}

func TestClient_History(t *testing.T) {
	t.Parallel()

	var flaky atomic.Int32
	var posted []model.HistoryWriteBack
	srv := newTestServer(t, &flaky, &posted)
	c := NewClient(srv.URL, WithRetry(1, time.Millisecond))

	history, err := c.LoadHistory(context.Background())
	if err != nil {
		t.Fatalf("LoadHistory: %v", err)
	}
	if len(history) != 1 || history[0].DW != 12345 || history[0].DataDate != 100 {
		t.Fatalf("history: %+v", history)
	}

	rows := []model.HistoryWriteBack{{ShipName: "さくら丸", DW: 12345, LoadedCargoName: "CRUDE", CreatedBy: "admin", DataDate: 512}}
	if err := c.SaveHistory(context.Background(), rows); err != nil {
		t.Fatalf("SaveHistory: %v", err)
	}
	if diff := cmp.Diff(rows, posted); diff != "" {
		t.Fatalf("posted body (-want +got):\n%s", diff)
	}
}

func TestClient_PermanentStatusIsNotRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad", http.StatusBadRequest)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, WithRetry(5, time.Millisecond))
	if _, err := c.LoadHistory(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("4xx must not be retried, calls=%d", calls.Load())
	}
}

func TestSnapshot_RoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "snap", "master.json")
	m := &model.MasterData{
		Ports:  []model.Port{{ID: 2, Name: "水島", ShortName: "MIZ"}},
		Berths: []model.Berth{{PortID: 2, Name: "A", ShortName: "MA"}},
	}
	history := []model.HistoricalShipmentRecord{{ShipName: "さくら丸", DW: 1, LoadedCargoName: "原油", DataDate: 3}}
	if err := SaveSnapshot(path, m, history); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	snap := Snapshot{Path: path}
	got, err := snap.LoadMaster(context.Background())
	if err != nil {
		t.Fatalf("LoadMaster: %v", err)
	}
	if got.Berths[0].PortShortName != "MIZ" {
		t.Fatalf("snapshot berths not enriched: %+v", got.Berths)
	}

	gotHistory, err := snap.LoadHistory(context.Background())
	if err != nil {
		t.Fatalf("LoadHistory: %v", err)
	}
	if diff := cmp.Diff(history, gotHistory); diff != "" {
		t.Fatalf("history (-want +got):\n%s", diff)
	}
}

func TestDecodeList(t *testing.T) {
	t.Parallel()

	for _, body := range []string{`[{"name":"a"}]`, `{"data":[{"name":"a"}]}`, " \n[{\"name\":\"a\"}]"} {
		got, err := decodeList[model.NamedEntry]([]byte(body))
		if err != nil || len(got) != 1 || got[0].Name != "a" {
			t.Fatalf("decodeList(%q) = %v, %v", body, got, err)
		}
	}
	if _, err := decodeList[model.NamedEntry]([]byte(`{"data":`)); err == nil {
		t.Fatalf("expected decode error")
	}
}
