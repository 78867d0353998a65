package airquality

// horizontalDivisions fixes the horizontal grid at 11 lines (10 equal
// divisions) regardless of the data. verticalDivisions drives the label
// stride so roughly 10 positions get an X label whatever the series
// length.
const (
	horizontalDivisions = 10
	verticalDivisions   = 10
)

// LabelStride returns the index step between labeled X positions for a
// series of n points.
func LabelStride(n int) int {
	return n/verticalDivisions + 1
}

// Layout assembles the chart model for a series inside the given
// viewport and margins. An empty series produces a model with no plotted
// geometry so the renderer can still draw an empty frame.
func Layout(series TimeSeries, vp Viewport, m Margins) ChartModel {
	model := ChartModel{
		Series:       series,
		Statistics:   Analyze(series),
		Viewport:     vp,
		Margins:      m,
		GridLinesX:   []float64{},
		GridLinesY:   []YGridLine{},
		LabelIndices: []int{},
	}

	if len(series) == 0 {
		return model
	}

	n := len(series)
	drawWidth := float64(vp.Width - m.Left - m.Right)
	drawHeight := float64(vp.Height - m.Top - m.Bottom)

	// A single point has no horizontal extent; the renderer places it
	// at the left margin without interpolation.
	if n > 1 {
		model.ScaleX = drawWidth / float64(n-1)
	}

	yRange := model.Statistics.Max.Value - model.Statistics.Min.Value
	if yRange == 0 {
		// All values equal: draw a centered flat line instead of
		// collapsing the scale.
		yRange = 1
	}
	model.ScaleY = drawHeight / yRange

	stepY := drawHeight / horizontalDivisions
	for i := 0; i <= horizontalDivisions; i++ {
		model.GridLinesY = append(model.GridLinesY, YGridLine{
			Y:     float64(m.Top) + float64(i)*stepY,
			Label: model.Statistics.Max.Value - float64(i)*(yRange/horizontalDivisions),
		})
	}

	// The same stride picks both the vertical grid lines and the label
	// indices so they stay aligned.
	stride := LabelStride(n)
	for i := 0; i < n; i += stride {
		model.GridLinesX = append(model.GridLinesX, model.pointX(i))
		model.LabelIndices = append(model.LabelIndices, i)
	}

	model.MinPoint = model.mark(model.Statistics.Min)
	model.MaxPoint = model.mark(model.Statistics.Max)
	return model
}

func (c ChartModel) pointX(i int) float64 {
	return float64(c.Margins.Left) + float64(i)*c.ScaleX
}

func (c ChartModel) pointY(value float64) float64 {
	return float64(c.Viewport.Height-c.Margins.Bottom) -
		(value-c.Statistics.Min.Value)*c.ScaleY
}

func (c ChartModel) mark(e Extreme) *PointMark {
	return &PointMark{
		Index: e.Index,
		X:     c.pointX(e.Index),
		Y:     c.pointY(e.Value),
		Value: e.Value,
		Date:  c.Series[e.Index].Date.Format(DateLayout),
	}
}
