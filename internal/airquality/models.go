package airquality

import (
	"time"
)

// DateLayout is the day-resolution date format used by the upstream API
// and by persisted station documents.
const DateLayout = "2006-01-02"

// Reading is one validated, timestamped observation for a sensor.
type Reading struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// TimeSeries is an ordered sequence of readings, ascending by date.
// An empty series is a valid, terminal state; every consumer in this
// package handles it without failing.
type TimeSeries []Reading

// Values returns the raw values of the series in order.
func (s TimeSeries) Values() []float64 {
	out := make([]float64, len(s))
	for i, r := range s {
		out[i] = r.Value
	}
	return out
}

// ValueEntry is the persisted wire form of a single observation.
// Value is nil for entries the upstream reported without a measurement;
// such entries are preserved on disk but dropped during extraction.
type ValueEntry struct {
	Date  string   `json:"date"`
	Value *float64 `json:"value"`
}

// Param describes the monitored parameter of a sensor, as delivered by
// the upstream sensor listing.
type Param struct {
	ParamName    string `json:"paramName"`
	ParamFormula string `json:"paramFormula,omitempty"`
	ParamCode    string `json:"paramCode,omitempty"`
	IDParam      int    `json:"idParam,omitempty"`
}

// SensorRecord is one monitored parameter at a station. Values holds the
// entries exactly as last fetched, newest first; it stays nil for sensors
// known from the station listing but never fetched.
type SensorRecord struct {
	ID    int    `json:"id"`
	Param *Param `json:"param,omitempty"`

	// Values must not carry omitempty: a fetched-but-empty payload
	// persists as [] while a never-fetched sensor persists as null, and
	// HasReadings depends on that distinction surviving a round trip.
	Values []ValueEntry `json:"values"`
}

// HasReadings reports whether sensor data has ever been fetched for this
// record. A fetched-but-empty payload still counts as fetched.
func (r SensorRecord) HasReadings() bool {
	return r.Values != nil
}

// StationDocument is the persisted multi-sensor document for one station,
// unique by sensor ID, in fetch order.
type StationDocument []SensorRecord

// Find returns the index of the record with the given sensor ID, or -1.
func (d StationDocument) Find(sensorID int) int {
	for i, rec := range d {
		if rec.ID == sensorID {
			return i
		}
	}
	return -1
}

// Upsert replaces the values of the record with the given sensor ID, or
// appends a new record when the sensor is not present yet. It returns a
// new document; the receiver is not modified.
func (d StationDocument) Upsert(sensorID int, values []ValueEntry) StationDocument {
	out := make(StationDocument, len(d))
	copy(out, d)

	if values == nil {
		values = []ValueEntry{}
	}

	if i := out.Find(sensorID); i >= 0 {
		out[i].Values = values
		return out
	}
	return append(out, SensorRecord{ID: sensorID, Values: values})
}

// DateRange is an inclusive date interval. Start after End is allowed and
// simply matches nothing.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the range, inclusive on both ends.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Trend classifies the slope of a series over its index positions.
type Trend string

const (
	TrendRising           Trend = "rising"
	TrendFalling          Trend = "falling"
	TrendStable           Trend = "stable"
	TrendUndefined        Trend = "undefined"
	TrendInsufficientData Trend = "insufficient_data"
)

// Extreme is a value together with the series index where it occurs.
type Extreme struct {
	Value float64 `json:"value"`
	Index int     `json:"index"`
}

// Statistics is the derived summary of a series. When Trend is
// TrendInsufficientData because the series was empty, Min, Max and Mean
// carry no meaning; callers must check series emptiness before reading
// them.
type Statistics struct {
	Min   Extreme `json:"min"`
	Max   Extreme `json:"max"`
	Mean  float64 `json:"mean"`
	Trend Trend   `json:"trend"`
}

// Viewport is the pixel size of the drawing surface.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Margins frame the drawable area inside the viewport.
type Margins struct {
	Left   int `json:"left"`
	Right  int `json:"right"`
	Top    int `json:"top"`
	Bottom int `json:"bottom"`
}

// DefaultMargins is the standard chart frame; the wide bottom margin
// leaves room for rotated date labels.
var DefaultMargins = Margins{Left: 60, Right: 50, Top: 50, Bottom: 200}

// YGridLine is one horizontal grid line: its pixel position and the value
// it labels.
type YGridLine struct {
	Y     float64 `json:"y"`
	Label float64 `json:"label"`
}

// PointMark pins a highlighted data point (the series min or max) to its
// pixel position for the renderer.
type PointMark struct {
	Index int     `json:"index"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Value float64 `json:"value"`
	Date  string  `json:"date"`
}

// ChartModel is the finished, immutable layout handed to the renderer.
// One instance per (series, viewport) pair; the renderer reads it and
// discards it when data or viewport change.
type ChartModel struct {
	Series     TimeSeries `json:"series"`
	Statistics Statistics `json:"statistics"`

	Viewport Viewport `json:"viewport"`
	Margins  Margins  `json:"margins"`

	// ScaleX is 0 for series of fewer than two points; the renderer
	// places a lone point at the left margin without interpolation.
	ScaleX float64 `json:"scaleX"`
	ScaleY float64 `json:"scaleY"`

	GridLinesX   []float64   `json:"gridLinesX"`
	GridLinesY   []YGridLine `json:"gridLinesY"`
	LabelIndices []int       `json:"labelIndices"`

	MinPoint *PointMark `json:"minPoint,omitempty"`
	MaxPoint *PointMark `json:"maxPoint,omitempty"`
}
