package airquality

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrMalformedPayload is returned when a raw payload is not
	// well-formed at the top level. Bad individual entries never cause
	// it; those are dropped silently.
	ErrMalformedPayload = errors.New("malformed payload")
)

// ExtractSeries turns raw value entries into a clean ascending series.
// Entries with a missing value or an unparseable date are dropped. The
// upstream delivers entries newest first, so the result is reversed to
// put the earliest date at index 0.
func ExtractSeries(entries []ValueEntry) TimeSeries {
	series := make(TimeSeries, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if e.Value == nil {
			continue
		}
		ts, err := time.Parse(DateLayout, e.Date)
		if err != nil {
			continue
		}
		series = append(series, Reading{Date: ts, Value: *e.Value})
	}
	return series
}

// ExtractDocument produces one series per sensor record, keyed by sensor
// ID. Records never fetched contribute nothing.
func ExtractDocument(doc StationDocument) map[int]TimeSeries {
	out := make(map[int]TimeSeries, len(doc))
	for _, rec := range doc {
		if !rec.HasReadings() {
			continue
		}
		out[rec.ID] = ExtractSeries(rec.Values)
	}
	return out
}

// DecodeStationDocument parses the persisted station document form: a
// JSON array of sensor records.
func DecodeStationDocument(raw []byte) (StationDocument, error) {
	var doc StationDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return doc, nil
}
