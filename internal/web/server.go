// Package web serves the client's routing surface as server-rendered HTML and
// exposes the same components through a JSON API.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/dgnsrekt/pang/internal/analysis"
	"github.com/dgnsrekt/pang/internal/apiclient"
	"github.com/dgnsrekt/pang/internal/forms"
	"github.com/dgnsrekt/pang/internal/session"
	"github.com/dgnsrekt/pang/internal/snapshot"
	"github.com/dgnsrekt/pang/internal/types"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Session is the token store the views read and write.
type Session interface {
	Set(token string) error
	Get() (string, bool)
	Clear() error
	Describe() session.Status
}

// Accounts is the account side of the api client.
type Accounts interface {
	forms.Accounts
	Protected(ctx context.Context) (types.MessageResponse, error)
}

// Pipeline drives analysis fetches.
type Pipeline interface {
	Trigger(ctx context.Context, q types.AnalysisQuery) analysis.State
}

// Charts stores rendered charts.
type Charts interface {
	CaptureChart(ctx context.Context, q types.AnalysisQuery, format analysis.Format, notes string) (snapshot.Meta, analysis.State, error)
	List() ([]snapshot.Meta, error)
	Get(id string) (snapshot.Meta, error)
	ReadImage(id string) ([]byte, string, error)
	Delete(id string) error
}

// Deps are the components behind the server. NewPipeline is called once per
// request so each view owns its analysis state. Recorder may be nil. CSRFKey
// signs form tokens; a random key is generated when it is empty.
type Deps struct {
	Session     Session
	Accounts    Accounts
	NewPipeline func() Pipeline
	Charts      Charts
	Recorder    forms.Recorder
	CSRFKey     []byte
}

func (d Deps) fetchAnalysis(ctx context.Context, q types.AnalysisQuery) analysis.State {
	return d.NewPipeline().Trigger(ctx, q)
}

func NewServer(deps Deps) http.Handler {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)

	cfg := huma.DefaultConfig("pang client API", "1.0.0")
	cfg.DocsPath = ""
	api := humachi.New(router, cfg)

	router.Get("/docs", func(w http.ResponseWriter, _ *http.Request) {
		render(w, http.StatusOK, "docs", page{Title: cfg.Info.Title})
	})

	registerPages(router, deps)
	registerAccountHandlers(api, deps)
	registerAnalysisHandlers(api, deps)
	registerSnapshotHandlers(api, deps)

	return router
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var coded *apiclient.CodedError
	if errors.As(err, &coded) {
		switch coded.Code {
		case apiclient.CodeAuthFailure:
			return huma.Error401Unauthorized(coded.Message)
		case apiclient.CodeNetworkFailure:
			return huma.Error504GatewayTimeout(coded.Message)
		case apiclient.CodeServerFailure, apiclient.CodeMalformedResponse:
			return huma.Error502BadGateway(coded.Message)
		default:
			return huma.Error500InternalServerError(fmt.Sprintf("%s: %s", coded.Code, coded.Message))
		}
	}
	switch {
	case errors.Is(err, snapshot.ErrNotFound):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, snapshot.ErrInvalid):
		return huma.Error400BadRequest(err.Error())
	case errors.Is(err, types.ErrMisalignedSeries):
		return huma.Error502BadGateway(err.Error())
	case errors.Is(err, analysis.ErrNoPoints):
		return huma.Error422UnprocessableEntity(err.Error())
	case errors.Is(err, analysis.ErrNotReady):
		return huma.Error503ServiceUnavailable(err.Error())
	}
	return huma.Error500InternalServerError(err.Error())
}
