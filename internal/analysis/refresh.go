package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/dgnsrekt/pang/internal/types"
)

// Refresher re-triggers one query on a cron schedule. Overlapping runs are
// allowed; the pipeline's sequence guard keeps only the newest response.
type Refresher struct {
	ctx      context.Context
	pipeline *Pipeline
	query    types.AnalysisQuery
	onState  func(State)
	cron     *cron.Cron
}

// NewRefresher validates spec (standard 5-field cron or @every/@hourly descriptors).
func NewRefresher(ctx context.Context, p *Pipeline, q types.AnalysisQuery, spec string, onState func(State)) (*Refresher, error) {
	r := &Refresher{
		ctx:      ctx,
		pipeline: p,
		query:    Normalize(q),
		onState:  onState,
		cron:     cron.New(),
	}
	if _, err := r.cron.AddFunc(spec, r.RunNow); err != nil {
		return nil, fmt.Errorf("register refresh schedule %q: %w", spec, err)
	}
	return r, nil
}

// RunNow triggers the pipeline once and reports the resulting state.
func (r *Refresher) RunNow() {
	if r.ctx.Err() != nil {
		return
	}
	st := r.pipeline.Trigger(r.ctx, r.query)
	slog.Debug("analysis refreshed", "seq", st.Seq, "status", st.Status, "ticker", st.Query.Ticker)
	if r.onState != nil {
		r.onState(st)
	}
}

// Start begins the schedule.
func (r *Refresher) Start() {
	r.cron.Start()
	slog.Info("analysis refresh started", "ticker", r.query.Ticker, "period", r.query.Period)
}

// Stop halts the schedule and waits for running refreshes to finish.
func (r *Refresher) Stop() {
	<-r.cron.Stop().Done()
	slog.Info("analysis refresh stopped")
}
