package airquality

import "time"

// FilterSeries returns the sub-series whose dates fall inside the range,
// inclusive on both ends, preserving order. The input is not modified.
// A range with Start after End yields an empty series.
func FilterSeries(s TimeSeries, r DateRange) TimeSeries {
	out := make(TimeSeries, 0, len(s))
	for _, reading := range s {
		if r.Contains(reading.Date) {
			out = append(out, reading)
		}
	}
	return out
}

// FilterDocument filters every record's raw entries by the range. Entries
// without a value or with an unparseable date are dropped along the way,
// and a record left with no entries is omitted entirely, so a sensor with
// nothing in range contributes no placeholder.
func FilterDocument(doc StationDocument, r DateRange) StationDocument {
	out := make(StationDocument, 0, len(doc))
	for _, rec := range doc {
		if !rec.HasReadings() {
			continue
		}
		kept := make([]ValueEntry, 0, len(rec.Values))
		for _, e := range rec.Values {
			if e.Value == nil {
				continue
			}
			ts, err := time.Parse(DateLayout, e.Date)
			if err != nil {
				continue
			}
			if r.Contains(ts) {
				kept = append(kept, e)
			}
		}
		if len(kept) == 0 {
			continue
		}
		filtered := rec
		filtered.Values = kept
		out = append(out, filtered)
	}
	return out
}
