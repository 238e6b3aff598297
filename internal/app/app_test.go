package app

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/dgnsrekt/pang/internal/analysis"
	"github.com/dgnsrekt/pang/internal/config"
	"github.com/dgnsrekt/pang/internal/types"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		APIBaseURL:       "http://localhost:5000",
		AnalysisBaseURL:  "http://localhost:5001",
		SessionBackend:   config.SessionBackendFile,
		SessionPath:      filepath.Join(dir, "session.json"),
		SnapshotDir:      filepath.Join(dir, "snapshots"),
		JournalDir:       filepath.Join(dir, "journal"),
		JournalMaxSizeMB: 1,
	}
}

func TestNewWiresComponents(t *testing.T) {
	a, err := New(testConfig(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })

	if a.API.BaseURL() != "http://localhost:5000" || a.Analysis.BaseURL() != "http://localhost:5001" {
		t.Fatalf("clients = %q %q", a.API.BaseURL(), a.Analysis.BaseURL())
	}
	if a.FormRecorder() == nil || a.AnalysisRecorder() == nil {
		t.Fatalf("journal recorders not wired")
	}

	if err := a.Session.Set("tok"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if tok, ok := a.Session.Get(); !ok || tok != "tok" {
		t.Fatalf("Get() = (%q, %v)", tok, ok)
	}
}

func TestNewWithoutJournal(t *testing.T) {
	cfg := testConfig(t)
	cfg.JournalDir = ""
	cfg.SessionBackend = config.SessionBackendMemory

	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })

	if a.FormRecorder() != nil || a.AnalysisRecorder() != nil {
		t.Fatalf("recorders should be nil without a journal")
	}
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.SessionBackend = "redis"
	if _, err := New(cfg); err == nil {
		t.Fatalf("New() error = nil; want unknown backend")
	}
}

func TestCaptureChartStoresSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("ticker") != "AAPL" {
			http.Error(w, `{"error":"unknown ticker"}`, http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"Dates":["2024-01-01","2024-01-02"],"True Values":[150,151],"Predicted Values":[149,152]}`))
	}))
	defer srv.Close()

	cfg := testConfig(t)
	cfg.APIBaseURL, cfg.AnalysisBaseURL = srv.URL, srv.URL
	cfg.SessionBackend = config.SessionBackendMemory
	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })

	meta, st, err := a.CaptureChart(context.Background(), types.AnalysisQuery{Ticker: "AAPL"}, analysis.FormatSVG, "first")
	if err != nil {
		t.Fatalf("CaptureChart() error = %v", err)
	}
	if st.Status != analysis.StatusReady {
		t.Fatalf("state = %q", st.Status)
	}
	if meta.Ticker != "AAPL" || meta.Period != "1mo" || meta.Points != 2 || meta.Notes != "first" {
		t.Fatalf("meta = %+v", meta)
	}
	if _, format, err := a.Snapshots.ReadImage(meta.ID); err != nil || format != "svg" {
		t.Fatalf("ReadImage() = %q, %v", format, err)
	}

	if _, st, err := a.CaptureChart(context.Background(), types.AnalysisQuery{Ticker: "NOPE"}, analysis.FormatPNG, ""); err == nil || st.Status != analysis.StatusError {
		t.Fatalf("CaptureChart(NOPE) = %q, %v; want error state", st.Status, err)
	}
	if got := a.Pipeline.Snapshot().Status; got != analysis.StatusIdle {
		t.Fatalf("shared pipeline status = %q; captures should use their own pipeline", got)
	}
	if a.NewPipeline() == a.NewPipeline() {
		t.Fatalf("NewPipeline() returned a shared pipeline")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"info":  slog.LevelInfo,
		"":      slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v; want %v", in, got, want)
		}
	}
}
