package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgnsrekt/pang/internal/analysis"
	"github.com/dgnsrekt/pang/internal/snapshot"
	"github.com/dgnsrekt/pang/internal/types"
)

// CaptureChart fetches q through a fresh pipeline, renders the chart and stores
// it as a snapshot. The returned state is the one the image was drawn from.
func (a *App) CaptureChart(ctx context.Context, q types.AnalysisQuery, format analysis.Format, notes string) (snapshot.Meta, analysis.State, error) {
	st := a.NewPipeline().Trigger(ctx, q)
	img, err := st.Image(format)
	if err != nil {
		return snapshot.Meta{}, st, fmt.Errorf("capture %s: %w", st.Query.Ticker, err)
	}

	meta, err := a.Snapshots.Save(snapshot.Meta{
		Ticker: st.Query.Ticker,
		Period: st.Query.Period,
		Format: string(format),
		Points: st.Chart.Points(),
		Notes:  notes,
	}, img)
	if err != nil {
		return snapshot.Meta{}, st, err
	}
	slog.Info("chart snapshot saved", "id", meta.ID, "ticker", meta.Ticker, "period", meta.Period, "format", meta.Format)
	return meta, st, nil
}

// ChartStore pairs chart capture with the snapshot store.
type ChartStore struct {
	*snapshot.Store
	app *App
}

// ChartStore returns the snapshot store bound to this app's pipeline.
func (a *App) ChartStore() ChartStore {
	return ChartStore{Store: a.Snapshots, app: a}
}

func (c ChartStore) CaptureChart(ctx context.Context, q types.AnalysisQuery, format analysis.Format, notes string) (snapshot.Meta, analysis.State, error) {
	return c.app.CaptureChart(ctx, q, format, notes)
}
