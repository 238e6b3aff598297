package web

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/dgnsrekt/pang/internal/analysis"
	"github.com/dgnsrekt/pang/internal/types"
)

type analysisQueryInput struct {
	Ticker string `query:"ticker" doc:"Stock ticker symbol" example:"AAPL"`
	Period string `query:"period" doc:"History window; defaults to 1mo" example:"1mo"`
}

func (in analysisQueryInput) query() types.AnalysisQuery {
	return analysis.Normalize(types.AnalysisQuery{Ticker: in.Ticker, Period: in.Period})
}

func registerAnalysisHandlers(api huma.API, deps Deps) {
	type analysisOutput struct {
		Body analysis.State
	}
	huma.Register(api, huma.Operation{OperationID: "get-analysis", Method: http.MethodGet, Path: "/api/v1/analysis", Summary: "Fetch analysis and chart data", Description: "Every call fetches from the analysis service and reports the state for its own query.", Tags: []string{"Analysis"}},
		func(ctx context.Context, input *analysisQueryInput) (*analysisOutput, error) {
			st := deps.fetchAnalysis(ctx, input.query())
			if st.Status == analysis.StatusError {
				if st.Err != nil {
					return nil, mapErr(st.Err)
				}
				return nil, huma.Error502BadGateway(st.Message)
			}
			out := &analysisOutput{}
			out.Body = st
			return out, nil
		})
}
