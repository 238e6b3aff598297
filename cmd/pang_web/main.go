package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgnsrekt/pang/internal/app"
	"github.com/dgnsrekt/pang/internal/config"
	"github.com/dgnsrekt/pang/internal/netutil"
	"github.com/dgnsrekt/pang/internal/web"
)

func main() {
	cfg, err := config.LoadWeb()
	if err != nil {
		slog.Error("failed to load web config", "error", err)
		os.Exit(1)
	}

	if err := app.SetupLogger(cfg.LogLevel, cfg.LogFile, nil); err != nil {
		if _, writeErr := io.WriteString(os.Stderr, "logger setup failed: "+err.Error()+"\n"); writeErr != nil {
			slog.Debug("logger setup stderr write failed", "error", writeErr)
		}
		os.Exit(1)
	}

	slog.Info("pang_web config loaded",
		"bind_addr", cfg.BindAddr,
		"port_auto_fallback", cfg.PortAutoFallback,
		"port_candidates", cfg.PortCandidates,
		"api_base_url", cfg.APIBaseURL,
		"analysis_base_url", cfg.AnalysisBaseURL,
		"session_backend", cfg.SessionBackend,
		"log_level", cfg.LogLevel,
		"log_file", cfg.LogFile,
		"snapshot_dir", cfg.SnapshotDir,
	)

	bindAddr, err := netutil.SelectBindAddr(cfg.BindAddr, cfg.PortCandidates, cfg.PortAutoFallback)
	if err != nil {
		slog.Error("failed to select bind address", "preferred", cfg.BindAddr, "error", err)
		os.Exit(1)
	}

	a, err := app.New(cfg.Config)
	if err != nil {
		slog.Error("failed to initialize client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := a.Close(); err != nil {
			slog.Warn("client close failed", "error", err)
		}
	}()

	h := web.NewServer(web.Deps{
		Session:     a.Session,
		Accounts:    a.API,
		NewPipeline: func() web.Pipeline { return a.NewPipeline() },
		Charts:      a.ChartStore(),
		Recorder:    a.FormRecorder(),
		CSRFKey:     cfg.CSRFKey,
	})

	srv := &http.Server{Addr: bindAddr, Handler: h, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		slog.Info("pang_web listening", "addr", bindAddr, "docs", "http://"+bindAddr+"/docs")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("pang_web server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("pang_web shutdown failed", "error", err)
	}
}
