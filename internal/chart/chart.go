// Package chart renders impermanent-loss curves as PNG images.
package chart

import (
	"fmt"
	"math"
	"strconv"

	charts "github.com/vicanso/go-charts/v2"

	"yieldScope/internal/ilmath"
)

const (
	DefaultWidth  = 800
	DefaultHeight = 480
	defaultTitle  = "Impermanent loss vs price change"
)

// Options controls the rendered image.
type Options struct {
	Title  string
	Width  int
	Height int
}

// RenderCurve draws the curve with price change on the x axis and loss on the
// y axis, both in percent.
func RenderCurve(points []ilmath.CurvePoint, opts Options) ([]byte, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("render curve: no points")
	}
	if opts.Title == "" {
		opts.Title = defaultTitle
	}
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}

	labels := make([]string, len(points))
	values := make([]float64, len(points))
	yMin := 0.0
	for i, p := range points {
		labels[i] = strconv.FormatFloat(math.Round(p.PriceChangePercent), 'f', 0, 64) + "%"
		values[i] = p.ImpermanentLossPercent
		yMin = math.Min(yMin, p.ImpermanentLossPercent)
	}
	// Keep a little room below the deepest point.
	yMin = math.Floor(yMin*1.05 - 0.5)
	yMax := 0.0

	split := len(labels) / 5
	if split < 2 {
		split = 2
	}
	if split > 10 {
		split = 10
	}

	p, err := charts.LineRender(
		[][]float64{values},
		charts.TitleTextOptionFunc(opts.Title, "IL % by price change"),
		charts.XAxisOptionFunc(charts.XAxisOption{
			Data:        labels,
			SplitNumber: split,
			BoundaryGap: charts.FalseFlag(),
		}),
		charts.YAxisOptionFunc(charts.YAxisOption{
			Min:         &yMin,
			Max:         &yMax,
			DivideCount: 5,
		}),
		charts.WidthOptionFunc(opts.Width),
		charts.HeightOptionFunc(opts.Height),
		charts.PNGTypeOption(),
		charts.ThemeOptionFunc(charts.ThemeLight),
	)
	if err != nil {
		return nil, fmt.Errorf("render curve: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("encode curve: %w", err)
	}
	return buf, nil
}
