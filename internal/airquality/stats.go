package airquality

// TrendSlopeThreshold is the fixed slope (value units per index step)
// separating a stable series from a rising or falling one. The value was
// tuned against prior outputs and must not be re-derived.
const TrendSlopeThreshold = 0.1763

// Analyze computes min, max, mean and trend for a series in one pass
// over ascending-date order. Ties on the extremes go to the earliest
// index. For an empty series the trend is TrendInsufficientData and the
// remaining fields carry no meaning; callers must check emptiness first.
func Analyze(series TimeSeries) Statistics {
	if len(series) == 0 {
		return Statistics{Trend: TrendInsufficientData}
	}

	stats := Statistics{
		Min: Extreme{Value: series[0].Value},
		Max: Extreme{Value: series[0].Value},
	}

	var sum float64
	for i, r := range series {
		sum += r.Value
		if r.Value < stats.Min.Value {
			stats.Min = Extreme{Value: r.Value, Index: i}
		}
		if r.Value > stats.Max.Value {
			stats.Max = Extreme{Value: r.Value, Index: i}
		}
	}
	stats.Mean = sum / float64(len(series))
	stats.Trend = classifyTrend(series)
	return stats
}

// classifyTrend fits an ordinary least-squares line with the 0-based
// series index as x and the value as y, then compares the slope against
// TrendSlopeThreshold.
func classifyTrend(series TimeSeries) Trend {
	n := len(series)
	if n < 2 {
		return TrendInsufficientData
	}

	var sumX, sumY, sumXY, sumX2 float64
	for i, r := range series {
		x := float64(i)
		sumX += x
		sumY += r.Value
		sumXY += x * r.Value
		sumX2 += x * x
	}

	// Cannot be zero for distinct indices 0..n-1 with n >= 2, but the
	// degenerate case is guarded rather than divided through.
	denominator := float64(n)*sumX2 - sumX*sumX
	if denominator == 0 {
		return TrendUndefined
	}

	slope := (float64(n)*sumXY - sumX*sumY) / denominator
	switch {
	case slope > TrendSlopeThreshold:
		return TrendRising
	case slope < -TrendSlopeThreshold:
		return TrendFalling
	default:
		return TrendStable
	}
}
