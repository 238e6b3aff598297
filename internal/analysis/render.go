package analysis

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	// ErrNoPoints is returned when there is nothing to draw.
	ErrNoPoints = errors.New("chart has no points")
	// ErrNotReady is returned when an image is requested from a state without a chart.
	ErrNotReady = errors.New("analysis not ready")
)

type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/svg+xml"
}

// ParseFormat accepts "svg" or "png"; empty means svg.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatSVG:
		return FormatSVG, nil
	case FormatPNG:
		return FormatPNG, nil
	default:
		return "", fmt.Errorf("unsupported chart format %q", s)
	}
}

const (
	defaultWidth  = 800
	defaultHeight = 400
	maxDateTicks  = 8
)

var namedColors = map[string]drawing.Color{
	trueSeriesColor:      drawing.ColorBlue,
	predictedSeriesColor: drawing.ColorRed,
}

// Render draws cd as a line chart. Series are lines without area fill.
func Render(w io.Writer, cd ChartData, format Format) error {
	n := cd.Points()
	if n == 0 {
		return ErrNoPoints
	}

	// A single date is drawn as a flat segment across x in [-0.5, 0.5] since
	// go-chart needs two distinct x values.
	single := n == 1
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}
	if single {
		xs = []float64{-0.5, 0.5}
	}

	series := make([]chart.Series, 0, len(cd.Datasets))
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, ds := range cd.Datasets {
		if len(ds.Data) != n {
			return fmt.Errorf("render %q: %d values for %d dates", ds.Label, len(ds.Data), n)
		}
		for _, v := range ds.Data {
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
		col, ok := namedColors[ds.BorderColor]
		if !ok {
			col = drawing.ColorBlack
		}
		ys := ds.Data
		if single {
			ys = []float64{ds.Data[0], ds.Data[0]}
		}
		series = append(series, chart.ContinuousSeries{
			Name:    ds.Label,
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: col,
				StrokeWidth: 2,
				DotColor:    col,
				DotWidth:    2,
			},
		})
	}

	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = 1
	}
	xMin, xMax := 0.0, float64(n-1)
	if single {
		xMin, xMax = -0.5, 0.5
	}

	ch := chart.Chart{
		Title:      cd.Title,
		Width:      defaultWidth,
		Height:     defaultHeight,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Range: &chart.ContinuousRange{Min: xMin, Max: xMax},
			Ticks: dateTicks(cd.Labels),
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: lo - pad, Max: hi + pad},
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	provider := chart.SVG
	if format == FormatPNG {
		provider = chart.PNG
	}
	if err := ch.Render(provider, w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

// Image renders the chart of a ready state. For any other state it returns the
// fetch error, or ErrNotReady when there is none.
func (st State) Image(format Format) ([]byte, error) {
	if st.Status != StatusReady || st.Chart == nil {
		if st.Err != nil {
			return nil, st.Err
		}
		return nil, fmt.Errorf("%w: status %s", ErrNotReady, st.Status)
	}
	var buf bytes.Buffer
	if err := Render(&buf, *st.Chart, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// dateTicks labels at most maxDateTicks evenly spaced dates, always including the last.
// go-chart takes the x range from the ticks, so a single date gets blank
// ticks at both edges.
func dateTicks(labels []string) []chart.Tick {
	n := len(labels)
	if n == 1 {
		return []chart.Tick{{Value: -0.5}, {Value: 0, Label: labels[0]}, {Value: 0.5}}
	}
	step := 1
	if n > maxDateTicks {
		step = int(math.Ceil(float64(n) / float64(maxDateTicks)))
	}
	ticks := make([]chart.Tick, 0, maxDateTicks+1)
	for i := 0; i < n; i += step {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: labels[i]})
	}
	if last := n - 1; last > 0 && last%step != 0 {
		ticks = append(ticks, chart.Tick{Value: float64(last), Label: labels[last]})
	}
	return ticks
}
