// Package app builds the client's component graph from configuration.
package app

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgnsrekt/pang/internal/analysis"
	"github.com/dgnsrekt/pang/internal/apiclient"
	"github.com/dgnsrekt/pang/internal/config"
	"github.com/dgnsrekt/pang/internal/forms"
	"github.com/dgnsrekt/pang/internal/journal"
	"github.com/dgnsrekt/pang/internal/session"
	"github.com/dgnsrekt/pang/internal/snapshot"
)

const journalName = "activity"

// App wires the session, api clients, pipeline and local stores.
type App struct {
	Config    *config.Config
	Session   *session.Session
	API       *apiclient.Client
	Analysis  *apiclient.Client
	Pipeline  *analysis.Pipeline
	Snapshots *snapshot.Store
	Journal   *journal.Writer

	closers []func() error
}

// New builds an App. Call Close when done.
func New(cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	backend, closeBackend, err := openBackend(cfg)
	if err != nil {
		return nil, err
	}
	if closeBackend != nil {
		a.closers = append(a.closers, closeBackend)
	}
	a.Session = session.New(backend, session.WithExpiryCheck(cfg.SessionCheckExpiry))

	clientOpts := []apiclient.Option{
		apiclient.WithTokenSource(a.Session),
		apiclient.WithTimeout(cfg.HTTPTimeout()),
	}
	if a.API, err = apiclient.New(cfg.APIBaseURL, clientOpts...); err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Analysis = a.API
	if cfg.AnalysisBaseURL != cfg.APIBaseURL {
		if a.Analysis, err = apiclient.New(cfg.AnalysisBaseURL, clientOpts...); err != nil {
			_ = a.Close()
			return nil, err
		}
	}

	if cfg.JournalDir != "" {
		a.Journal = journal.NewWriter(cfg.JournalDir, journalName, 256, cfg.JournalMaxSizeMB)
		a.closers = append(a.closers, a.Journal.Close)
	}

	a.Pipeline = a.NewPipeline()

	if a.Snapshots, err = snapshot.NewStore(cfg.SnapshotDir); err != nil {
		_ = a.Close()
		return nil, err
	}

	slog.Debug("app initialized",
		"api_base_url", cfg.APIBaseURL,
		"analysis_base_url", cfg.AnalysisBaseURL,
		"session_backend", cfg.SessionBackend,
		"journal_dir", cfg.JournalDir,
	)
	return a, nil
}

// NewPipeline returns a pipeline with its own state over the shared analysis
// client and journal. The long-lived Pipeline field backs the refresher.
func (a *App) NewPipeline() *analysis.Pipeline {
	return analysis.NewPipeline(a.Analysis, a.AnalysisRecorder())
}

// FormRecorder returns the journal as a forms.Recorder, or nil when journaling is off.
func (a *App) FormRecorder() forms.Recorder {
	if a.Journal == nil {
		return nil
	}
	return a.Journal
}

// AnalysisRecorder returns the journal as an analysis.Recorder, or nil when journaling is off.
func (a *App) AnalysisRecorder() analysis.Recorder {
	if a.Journal == nil {
		return nil
	}
	return a.Journal
}

// Close releases stores in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func openBackend(cfg *config.Config) (session.Backend, func() error, error) {
	switch cfg.SessionBackend {
	case config.SessionBackendFile, "":
		b, err := session.NewFileBackend(cfg.SessionPath)
		return b, nil, err
	case config.SessionBackendBadger:
		b, err := session.OpenBadgerBackend(cfg.SessionPath)
		if err != nil {
			return nil, nil, err
		}
		return b, b.Close, nil
	case config.SessionBackendMemory:
		return session.NewMemoryBackend(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown session backend %q", cfg.SessionBackend)
	}
}
