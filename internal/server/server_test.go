package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"ppconvert/internal/config"
	"ppconvert/internal/importer"
	"ppconvert/internal/model"
)

type emptyMaster struct{}

func (emptyMaster) LoadMaster(context.Context) (*model.MasterData, error) {
	return &model.MasterData{}, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.DefaultConfig()
	cfg.Server.DevMode = true
	coord := importer.NewCoordinator(importer.Options{Master: emptyMaster{}})
	return NewServer(cfg, Deps{Coordinator: coord, ExportDir: t.TempDir()})
}

func TestServer_Routes(t *testing.T) {
	s := newTestServer(t)

	for _, tc := range []struct {
		method string
		path   string
		want   int
	}{
		{method: http.MethodGet, path: "/api/status", want: http.StatusOK},
		{method: http.MethodPost, path: "/api/master/reload", want: http.StatusOK},
		{method: http.MethodOptions, path: "/api/convert", want: http.StatusNoContent},
		{method: http.MethodGet, path: "/api/logs", want: http.StatusNotImplemented},
		{method: http.MethodGet, path: "/nope", want: http.StatusNotFound},
	} {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, req)
		if w.Code != tc.want {
			t.Fatalf("%s %s = %d, want %d", tc.method, tc.path, w.Code, tc.want)
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Fatalf("%s %s missing CORS header", tc.method, tc.path)
		}
	}
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	s := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, "127.0.0.1:0") }()
	cancel()

	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
}
