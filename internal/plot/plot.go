package plot

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/abhisek/gradetrend/internal/improvement"
	"github.com/abhisek/gradetrend/internal/trend"
)

const (
	// CurveSamples is the number of points drawn for the fitted overlay.
	CurveSamples = 100

	width  = 1000
	height = 600

	// reasonStep is the vertical gap, in score units, between reason lines.
	reasonStep = 3.0
	// reasonOffset places reason text just right of the last observed week.
	reasonOffset = 0.2

	axisPadLeft  = 0.5
	axisPadRight = 2.5
)

var (
	figureBg  = drawing.ColorFromHex("f0f0f0")
	plotBg    = drawing.ColorFromHex("e6f2ff")
	pointCol  = drawing.ColorFromHex("1f4fd6")
	curveCol  = drawing.ColorFromHex("d62728")
	reasonCol = drawing.ColorFromHex("1b7f3b")
)

// Input is everything needed to draw one student's improvement chart.
type Input struct {
	Name         string
	RollNo       string
	Category     string
	Observations []trend.Observation
	Curve        trend.Curve
	Reasons      []string
}

// FromResult builds the chart input for an analysis result.
func FromResult(res *improvement.Result) Input {
	return Input{
		Name:         res.Name,
		RollNo:       res.StudentID,
		Category:     res.Category.DisplayName(),
		Observations: res.Observations,
		Curve:        res.Curve,
		Reasons:      res.Reasons,
	}
}

// Title is the chart heading for in.
func (in Input) Title() string {
	return fmt.Sprintf("%s's Academic Improvement Curve | Roll No: %s | Category: %s",
		in.Name, in.RollNo, in.Category)
}

// Render draws the observations as points, the fitted curve as a line and
// the reasons as labels, and writes the PNG to w.
func Render(w io.Writer, in Input) error {
	if len(in.Observations) == 0 {
		return trend.ErrNoObservations
	}

	xs := make([]float64, len(in.Observations))
	ys := trend.Scores(in.Observations)
	for i, o := range in.Observations {
		xs[i] = float64(o.Week)
	}

	minWeek := float64(trend.MinWeek(in.Observations))
	maxWeek := float64(trend.MaxWeek(in.Observations))
	from, to := minWeek, maxWeek
	if from == to {
		from, to = from-0.5, to+0.5
	}
	cx, cy := in.Curve.Sample(from, to, CurveSamples)

	maxScore := maxOf(ys)
	var notes []chart.Value2
	for i, r := range in.Reasons {
		notes = append(notes, chart.Value2{
			XValue: maxWeek + reasonOffset,
			YValue: maxScore - reasonStep*float64(i),
			Label:  r,
		})
	}

	lo := math.Min(minOf(ys), minOf(cy))
	hi := math.Max(maxScore, maxOf(cy))
	if len(notes) > 0 {
		lo = math.Min(lo, notes[len(notes)-1].YValue)
	}
	lo, hi = lo-5, hi+5

	series := []chart.Series{
		chart.ContinuousSeries{
			Name:    "Actual Scores",
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotWidth:    5,
				DotColor:    pointCol,
			},
		},
		chart.ContinuousSeries{
			Name:    "Polynomial Fit",
			XValues: cx,
			YValues: cy,
			Style: chart.Style{
				StrokeColor: curveCol,
				StrokeWidth: 3,
			},
		},
	}
	if len(notes) > 0 {
		series = append(series, chart.AnnotationSeries{
			Annotations: notes,
			Style: chart.Style{
				FontColor:   reasonCol,
				FontSize:    10,
				StrokeColor: reasonCol,
				FillColor:   drawing.ColorWhite,
			},
		})
	}

	ch := chart.Chart{
		Title:      in.Title(),
		TitleStyle: chart.Style{FontSize: 12},
		Width:      width,
		Height:     height,
		Background: chart.Style{
			FillColor: figureBg,
			Padding:   chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16},
		},
		Canvas: chart.Style{FillColor: plotBg},
		XAxis: chart.XAxis{
			Name:  "Week",
			Ticks: weekTicks(int(minWeek), int(maxWeek)),
		},
		YAxis: chart.YAxis{
			Name:  "Test Score",
			Range: &chart.ContinuousRange{Min: lo, Max: hi},
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

// PNG renders in and returns the encoded image.
func PNG(in Input) ([]byte, error) {
	var buf bytes.Buffer
	if err := Render(&buf, in); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DataURI encodes a PNG for inline use in an HTML img tag.
func DataURI(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}

// SaveFile renders in to a PNG file at path.
func SaveFile(path string, in Input) error {
	b, err := PNG(in)
	if err != nil {
		return err
	}
	return WriteFile(path, b)
}

// WriteFile stores an already rendered PNG at path.
func WriteFile(path string, png []byte) error {
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	return nil
}

// weekTicks labels every week in [from, to]. go-chart takes the x range
// from the tick span, so two unlabeled ticks pad the axis: half a week on
// the left and room for the reason labels on the right.
func weekTicks(from, to int) []chart.Tick {
	ticks := make([]chart.Tick, 0, to-from+3)
	ticks = append(ticks, chart.Tick{Value: float64(from) - axisPadLeft})
	for w := from; w <= to; w++ {
		ticks = append(ticks, chart.Tick{Value: float64(w), Label: strconv.Itoa(w)})
	}
	return append(ticks, chart.Tick{Value: float64(to) + axisPadRight})
}

func minOf(v []float64) float64 {
	m := math.Inf(1)
	for _, x := range v {
		m = math.Min(m, x)
	}
	return m
}

func maxOf(v []float64) float64 {
	m := math.Inf(-1)
	for _, x := range v {
		m = math.Max(m, x)
	}
	return m
}
