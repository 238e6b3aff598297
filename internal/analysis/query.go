// Package analysis retrieves true-vs-predicted series for a ticker and turns
// them into chart-ready data.
package analysis

import (
	"net/url"
	"strings"

	"github.com/dgnsrekt/pang/internal/apiclient"
	"github.com/dgnsrekt/pang/internal/types"
)

// KnownPeriods are the history windows the backend accepts. The server stays
// the validator; this list only feeds the period selector.
var KnownPeriods = []string{"1d", "5d", "1mo", "3mo", "6mo", "1y", "2y", "5y", "10y", "ytd", "max"}

// ParseQuery reads ticker and period from URL query parameters.
func ParseQuery(v url.Values) types.AnalysisQuery {
	return Normalize(types.AnalysisQuery{Ticker: v.Get("ticker"), Period: v.Get("period")})
}

// Normalize trims both fields and applies the default period.
func Normalize(q types.AnalysisQuery) types.AnalysisQuery {
	q.Ticker = strings.TrimSpace(q.Ticker)
	q.Period = strings.TrimSpace(q.Period)
	if q.Period == "" {
		q.Period = types.DefaultPeriod
	}
	return q
}

// RequestPath is the backend path fetched for q.
func RequestPath(q types.AnalysisQuery) string {
	return apiclient.AnalysisPath(Normalize(q))
}

// ViewQuery renders q back into the query string of the analysis view.
func ViewQuery(q types.AnalysisQuery) string {
	q = Normalize(q)
	return "ticker=" + url.QueryEscape(q.Ticker) + "&period=" + url.QueryEscape(q.Period)
}
