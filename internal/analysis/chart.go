package analysis

import "github.com/dgnsrekt/pang/internal/types"

const (
	TrueSeriesLabel      = "True Values"
	PredictedSeriesLabel = "Predicted Values"

	trueSeriesColor      = "blue"
	predictedSeriesColor = "red"
)

// Dataset is one line of the chart.
type Dataset struct {
	Label       string    `json:"label"`
	Data        []float64 `json:"data"`
	BorderColor string    `json:"borderColor"`
	Fill        bool      `json:"fill"`
}

// ChartData is two series over a shared date axis.
type ChartData struct {
	Title    string    `json:"title"`
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Points returns the number of positions on the date axis.
func (c ChartData) Points() int { return len(c.Labels) }

// BuildChart maps an aligned result onto chart data. Callers check alignment first.
func BuildChart(res types.AnalysisResult) ChartData {
	return ChartData{
		Title:  "Stock Analysis for " + res.Ticker,
		Labels: append([]string(nil), res.Dates...),
		Datasets: []Dataset{
			{Label: TrueSeriesLabel, Data: append([]float64(nil), res.TrueValues...), BorderColor: trueSeriesColor},
			{Label: PredictedSeriesLabel, Data: append([]float64(nil), res.PredictedValues...), BorderColor: predictedSeriesColor},
		},
	}
}
