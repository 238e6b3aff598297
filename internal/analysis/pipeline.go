package analysis

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/dgnsrekt/pang/internal/apiclient"
	"github.com/dgnsrekt/pang/internal/types"
)

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusError   Status = "error"
)

// Fetcher retrieves one analysis result.
type Fetcher interface {
	GetAnalysis(ctx context.Context, q types.AnalysisQuery) (types.AnalysisResult, error)
}

// Event describes one finished fetch.
type Event struct {
	Seq     uint64 `json:"seq"`
	Ticker  string `json:"ticker"`
	Period  string `json:"period"`
	Status  Status `json:"status"`
	Points  int    `json:"points"`
	Applied bool   `json:"applied"`
	Message string `json:"message,omitempty"`
}

// Recorder receives pipeline events.
type Recorder interface {
	RecordAnalysis(ev Event)
}

// State is what the analysis view renders.
type State struct {
	Seq     uint64                `json:"seq"`
	Query   types.AnalysisQuery   `json:"query"`
	Status  Status                `json:"status"`
	Result  *types.AnalysisResult `json:"result,omitempty"`
	Chart   *ChartData            `json:"chart,omitempty"`
	Message string                `json:"message,omitempty"`
	Code    string                `json:"code,omitempty"`
	Err     error                 `json:"-"`
}

// Pipeline fetches on every trigger. Each trigger takes the next sequence
// number and only the response for the latest one is applied.
type Pipeline struct {
	fetcher  Fetcher
	recorder Recorder

	mu     sync.Mutex
	latest uint64
	state  State
}

func NewPipeline(fetcher Fetcher, rec Recorder) *Pipeline {
	return &Pipeline{fetcher: fetcher, recorder: rec, state: State{Status: StatusIdle}}
}

// Trigger fetches q and returns the pipeline state after the fetch resolves.
// If a newer trigger started meanwhile, the stale response is discarded and
// the current state is returned instead.
func (p *Pipeline) Trigger(ctx context.Context, q types.AnalysisQuery) State {
	q = Normalize(q)

	p.mu.Lock()
	p.latest++
	seq := p.latest
	p.state = State{Seq: seq, Query: q, Status: StatusLoading}
	p.mu.Unlock()

	next := p.fetch(ctx, seq, q)

	p.mu.Lock()
	defer p.mu.Unlock()

	applied := seq == p.latest
	p.record(next, applied)
	if !applied {
		slog.Debug("stale analysis response discarded", "seq", seq, "latest", p.latest, "ticker", q.Ticker)
		return p.state
	}
	p.state = next
	return next
}

// Snapshot returns the current state.
func (p *Pipeline) Snapshot() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Pipeline) fetch(ctx context.Context, seq uint64, q types.AnalysisQuery) State {
	st := State{Seq: seq, Query: q}

	res, err := p.fetcher.GetAnalysis(ctx, q)
	if err == nil {
		err = res.CheckAligned()
	}
	if err != nil {
		st.Status = StatusError
		st.Err = err
		st.Code = apiclient.CodeOf(err)
		if st.Code == "" && errors.Is(err, types.ErrMisalignedSeries) {
			st.Code = apiclient.CodeMalformedResponse
		}
		st.Message = apiclient.MessageOf(err)
		if st.Message == "" {
			st.Message = "analysis request failed"
		}
		slog.Info("analysis fetch failed", "seq", seq, "ticker", q.Ticker, "period", q.Period, "error", err)
		return st
	}

	if res.Ticker == "" {
		res.Ticker = q.Ticker
	}
	chart := BuildChart(res)
	st.Status = StatusReady
	st.Result = &res
	st.Chart = &chart
	return st
}

func (p *Pipeline) record(st State, applied bool) {
	if p.recorder == nil {
		return
	}
	ev := Event{
		Seq:     st.Seq,
		Ticker:  st.Query.Ticker,
		Period:  st.Query.Period,
		Status:  st.Status,
		Applied: applied,
		Message: st.Message,
	}
	if st.Chart != nil {
		ev.Points = st.Chart.Points()
	}
	p.recorder.RecordAnalysis(ev)
}
