package chart

import (
	"errors"
	"fmt"
	"io"
	"math"

	gochart "github.com/wcharczuk/go-chart/v2"
)

// ErrEmptySpec is returned when asked to draw a chart without data.
var ErrEmptySpec = errors.New("chart has no data")

// Format is an image encoding supported by the Renderer.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// ParseFormat validates a format taken from a request. Empty means PNG.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatPNG:
		return FormatPNG, nil
	case FormatSVG:
		return FormatSVG, nil
	default:
		return "", fmt.Errorf("unsupported chart format %q", s)
	}
}

// ContentType returns the MIME type of images in this format.
func (f Format) ContentType() string {
	if f == FormatSVG {
		return "image/svg+xml"
	}
	return "image/png"
}

func (f Format) provider() gochart.RendererProvider {
	if f == FormatSVG {
		return gochart.SVG
	}
	return gochart.PNG
}

// Renderer draws chart specs as images of a fixed size.
type Renderer struct {
	Width  int
	Height int
}

// NewRenderer creates a Renderer. Non-positive sizes fall back to 800x480.
func NewRenderer(width, height int) *Renderer {
	if width <= 0 {
		width = 800
	}
	if height <= 0 {
		height = 480
	}
	return &Renderer{Width: width, Height: height}
}

// Render draws spec to w.
func (r *Renderer) Render(spec *Spec, format Format, w io.Writer) error {
	if spec == nil || len(spec.Data) == 0 {
		return ErrEmptySpec
	}

	var err error
	switch spec.Kind {
	case KindBar:
		err = r.bar(spec).Render(format.provider(), w)
	case KindPie:
		err = r.pie(spec).Render(format.provider(), w)
	default:
		return fmt.Errorf("unsupported chart kind %q", spec.Kind)
	}
	if err != nil {
		return fmt.Errorf("render %s chart: %w", spec.Kind, err)
	}
	return nil
}

func (r *Renderer) bar(spec *Spec) gochart.BarChart {
	bars := make([]gochart.Value, 0, len(spec.Data))
	lo, hi := 0.0, 0.0
	for _, p := range spec.Data {
		bars = append(bars, gochart.Value{Label: p.Label, Value: p.Value})
		lo = math.Min(lo, p.Value)
		hi = math.Max(hi, p.Value)
	}
	// A flat range cannot be drawn.
	if hi == lo {
		hi = lo + 1
	}

	return gochart.BarChart{
		Title:      spec.Title,
		Width:      r.Width,
		Height:     r.Height,
		BarWidth:   barWidth(r.Width, len(bars)),
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 12, Bottom: 28}},
		YAxis: gochart.YAxis{
			Name:  spec.YField,
			Range: &gochart.ContinuousRange{Min: lo, Max: hi * 1.1},
		},
		Bars: bars,
	}
}

func (r *Renderer) pie(spec *Spec) gochart.PieChart {
	total := 0.0
	for _, p := range spec.Data {
		total += p.Value
	}

	values := make([]gochart.Value, 0, len(spec.Data))
	for _, p := range spec.Data {
		v := p.Value
		// go-chart cannot slice a zero total; draw equal slices instead.
		if total <= 0 {
			v = 1
		}
		values = append(values, gochart.Value{
			Label: fmt.Sprintf("%s (%.1f)", p.Label, p.Value),
			Value: v,
		})
	}
	return gochart.PieChart{
		Title:  spec.Title,
		Width:  r.Width,
		Height: r.Height,
		Values: values,
	}
}

func barWidth(width, n int) int {
	w := width / (2 * (n + 1))
	if w > 80 {
		return 80
	}
	if w < 8 {
		return 8
	}
	return w
}
