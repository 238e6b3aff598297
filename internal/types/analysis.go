package types

import (
	"errors"
	"fmt"
)

// DefaultPeriod is used when the query string has no period.
const DefaultPeriod = "1mo"

// ErrMisalignedSeries is returned when the Dates, True Values and Predicted
// Values sequences of an AnalysisResult differ in length.
var ErrMisalignedSeries = errors.New("analysis series lengths differ")

// AnalysisQuery identifies one analysis request.
type AnalysisQuery struct {
	Ticker string `json:"ticker"`
	Period string `json:"period"`
}

// AnalysisResult is the decoded /api/get_analysis payload. Index i of every
// sequence refers to the same date.
type AnalysisResult struct {
	Ticker          string    `json:"Ticker"`
	Dates           []string  `json:"Dates" validate:"required"`
	TrueValues      []float64 `json:"True Values" validate:"required"`
	PredictedValues []float64 `json:"Predicted Values" validate:"required"`
}

// Len returns the number of aligned points.
func (r AnalysisResult) Len() int { return len(r.Dates) }

// CheckAligned reports ErrMisalignedSeries when the sequences differ in length.
func (r AnalysisResult) CheckAligned() error {
	if len(r.TrueValues) != len(r.Dates) || len(r.PredictedValues) != len(r.Dates) {
		return fmt.Errorf("%w: dates=%d true=%d predicted=%d",
			ErrMisalignedSeries, len(r.Dates), len(r.TrueValues), len(r.PredictedValues))
	}
	return nil
}
